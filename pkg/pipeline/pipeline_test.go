package pipeline

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/gsnviz/pkg/model"
	"github.com/dshills/gsnviz/pkg/text"
)

// testOptions returns hermetic run options: fallback font, silent
// logger, pinned clock, buffered streams.
func testOptions(t *testing.T, outDir string) (Options, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	nop := zerolog.Nop()
	stderr := &bytes.Buffer{}
	stdout := &bytes.Buffer{}
	return Options{
		OutputDir: outDir,
		Stderr:    stderr,
		Stdout:    stdout,
		Logger:    &nop,
		Font:      text.Load(nil),
		NoLegend:  true,
		Now:       func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) },
	}, stderr, stdout
}

func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const minimalSource = `
module:
  name: main
G1:
  text: ok
  supportedBy: [Sn1]
Sn1:
  text: ev
`

func TestRun_MinimalScenario(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	input := writeInput(t, dir, "main.gsn.yaml", minimalSource)

	opts, stderr, _ := testOptions(t, out)
	require.NoError(t, Run([]string{input}, opts))
	assert.Empty(t, stderr.String(), "no diagnostics expected")

	argView, err := os.ReadFile(filepath.Join(out, "gsn_main.gsn.svg"))
	require.NoError(t, err, "argument view missing")
	assert.Contains(t, string(argView), `id="G1"`)
	assert.Contains(t, string(argView), `id="Sn1"`)
	assert.Contains(t, string(argView), "gsnspby")

	_, err = os.Stat(filepath.Join(out, "complete.svg"))
	assert.NoError(t, err, "complete view missing")
	_, err = os.Stat(filepath.Join(out, "architecture.svg"))
	assert.NoError(t, err, "architecture view missing")

	evidence, err := os.ReadFile(filepath.Join(out, "evidences.md"))
	require.NoError(t, err)
	ids := ParseEvidence(evidence)
	require.Equal(t, []string{"Sn1"}, ids)
	assert.Contains(t, string(evidence), "**Sn1**: ev")
}

func TestRun_CycleFailsWithoutOutput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	input := writeInput(t, dir, "cycle.gsn.yaml", `
G1:
  text: a
  supportedBy: [G2]
G2:
  text: b
  supportedBy: [G1]
`)
	opts, stderr, _ := testOptions(t, out)
	err := Run([]string{input}, opts)
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, stderr.String(), "(C04)")

	entries, _ := os.ReadDir(out)
	assert.Empty(t, entries, "no output may be written on validation errors")
}

func TestRun_CheckOnlyWritesNothing(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	input := writeInput(t, dir, "main.gsn.yaml", minimalSource)

	opts, _, _ := testOptions(t, out)
	opts.CheckOnly = true
	require.NoError(t, Run([]string{input}, opts))
	entries, _ := os.ReadDir(out)
	assert.Empty(t, entries)
}

func TestRun_WarningsDoNotFail(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "warn.gsn.yaml", `
G1:
  text: bare claim
`)
	opts, stderr, _ := testOptions(t, filepath.Join(dir, "out"))
	require.NoError(t, Run([]string{input}, opts))
	assert.Contains(t, stderr.String(), "Warning: ")
	assert.Contains(t, stderr.String(), "(V02)")
}

func TestRun_UsesExpansion(t *testing.T) {
	dir := t.TempDir()
	writeInput(t, dir, "sub.gsn.yaml", `
module:
  name: sub
G2:
  text: supported elsewhere
  supportedBy: [Sn2]
Sn2:
  text: more evidence
`)
	input := writeInput(t, dir, "top.gsn.yaml", `
module:
  name: top
  uses: [sub.gsn.yaml]
G1:
  text: top claim
  supportedBy: [G2]
`)
	out := filepath.Join(dir, "out")
	opts, stderr, _ := testOptions(t, out)
	require.NoError(t, Run([]string{input}, opts), "uses-referenced module not loaded: %s", stderr.String())

	_, err := os.Stat(filepath.Join(out, "gsn_sub.gsn.svg"))
	assert.NoError(t, err, "argument view for used module missing")
}

func TestRun_ExtendsScenario(t *testing.T) {
	dir := t.TempDir()
	tpl := writeInput(t, dir, "template.gsn.yaml", `
module:
  name: template
G1:
  text: open claim
  undeveloped: true
`)
	inst := writeInput(t, dir, "instance.gsn.yaml", `
module:
  name: instance
  extends:
    - module: template
      develops:
        G1: [G2]
G2:
  text: development
  supportedBy: [Sn1]
Sn1:
  text: evidence
`)
	out := filepath.Join(dir, "out")
	opts, stderr, _ := testOptions(t, out)
	require.NoError(t, Run([]string{tpl, inst}, opts), "stderr: %s", stderr.String())
	assert.NotContains(t, stderr.String(), "(V03)")
	assert.NotContains(t, stderr.String(), "(C10)")

	arch, err := os.ReadFile(filepath.Join(out, "architecture.svg"))
	require.NoError(t, err)
	assert.Contains(t, string(arch), `id="instance"`)
	assert.Contains(t, string(arch), `id="template"`)
}

func TestRun_Deterministic(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "main.gsn.yaml", minimalSource)

	render := func(out string) []byte {
		opts, _, _ := testOptions(t, out)
		require.NoError(t, Run([]string{input}, opts))
		data, err := os.ReadFile(filepath.Join(out, "complete.svg"))
		require.NoError(t, err)
		return data
	}
	a := render(filepath.Join(dir, "out1"))
	b := render(filepath.Join(dir, "out2"))
	require.True(t, bytes.Equal(a, b), "two runs produced different SVG")
}

func TestRun_StatisticsToStdout(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "main.gsn.yaml", minimalSource)

	opts, _, stdout := testOptions(t, filepath.Join(dir, "out"))
	opts.StatisticsFile = "-"
	require.NoError(t, Run([]string{input}, opts))
	stats := stdout.String()
	assert.Contains(t, stats, "# Statistics")
	assert.Contains(t, stats, "## Module main")
	assert.Contains(t, stats, "| Goal | 1 |")
	assert.Contains(t, stats, "| Solution | 1 |")
}

func TestRun_EmbedStylesheet(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "main.gsn.yaml", minimalSource)
	css := writeInput(t, dir, "custom.css", ".gsngoal { fill: #fed; }")

	out := filepath.Join(dir, "out")
	opts, _, _ := testOptions(t, out)
	opts.Stylesheets = []string{css}
	opts.EmbedCSS = true
	require.NoError(t, Run([]string{input}, opts))

	svg, err := os.ReadFile(filepath.Join(out, "complete.svg"))
	require.NoError(t, err)
	assert.Contains(t, string(svg), ".gsngoal { fill: #fed; }")
}

func TestEvidence_RoundTrip(t *testing.T) {
	mod, err := model.ParseModule("m.yaml", []byte(`
module:
  name: m
G1:
  text: claim
  supportedBy: [Sn1, Sn2]
Sn1:
  text: first evidence
Sn2:
  text: second evidence
`))
	require.NoError(t, err)
	m := model.New([]*model.Module{mod})
	m.ResolveTypes()

	data := EvidenceMarkdown(m)
	assert.Equal(t, []string{"Sn1", "Sn2"}, ParseEvidence(data))
}

func TestStatisticsMarkdown_StableKeys(t *testing.T) {
	mod, err := model.ParseModule("m.yaml", []byte(minimalSource))
	require.NoError(t, err)
	m := model.New([]*model.Module{mod})
	m.ResolveTypes()

	stats := string(StatisticsMarkdown(m))
	for _, key := range []string{
		"| Goal |", "| Strategy |", "| Solution |", "| Context |",
		"| Assumption |", "| Justification |", "| CounterGoal |",
		"| CounterSolution |", "| Total |", "| Modules |",
	} {
		assert.Contains(t, stats, key)
	}
}

func TestWriteFileAtomic_NoPartialFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.svg")
	require.NoError(t, writeFileAtomic(path, []byte("<svg/>")))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", string(data))

	// No temporary files are left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
