package pipeline

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/gsnviz/pkg/layout"
	"github.com/dshills/gsnviz/pkg/model"
	"github.com/dshills/gsnviz/pkg/render"
	"github.com/dshills/gsnviz/pkg/text"
	"github.com/dshills/gsnviz/pkg/validation"
)

// ErrValidation marks a run aborted by validation errors. The messages
// have already been printed when it is returned.
var ErrValidation = errors.New("validation failed")

// Options selects outputs and modifiers for one run.
type Options struct {
	// CheckOnly validates and writes no diagrams.
	CheckOnly bool

	// Excluded module names skip cross-module checks (-x).
	Excluded []string

	// WarnDialectic enables the V11 presence warning.
	WarnDialectic bool

	NoArgumentViews bool

	CompleteFile string
	NoComplete   bool

	ArchitectureFile string
	NoArchitecture   bool

	EvidenceFile string
	NoEvidence   bool

	// OutputDir roots every output path when set.
	OutputDir string

	// StatisticsFile enables the statistics output; "-" means stdout.
	StatisticsFile string

	Layers      []string
	Stylesheets []string
	EmbedCSS    bool
	Masked      []string

	NoLegend      bool
	MinimalLegend bool

	// CharWrap is the global wrap width (-w).
	CharWrap int

	// Stderr receives validation messages; Stdout receives statistics
	// when no file is given. Both default to the process streams.
	Stderr io.Writer
	Stdout io.Writer

	Logger *zerolog.Logger

	// Now feeds the legend timestamp; nil means time.Now.
	Now func() time.Time

	// Font overrides the measurement font, for hermetic tests.
	Font *text.Font
}

func (o *Options) fill() {
	if o.CompleteFile == "" {
		o.CompleteFile = "complete.svg"
	}
	if o.ArchitectureFile == "" {
		o.ArchitectureFile = "architecture.svg"
	}
	if o.EvidenceFile == "" {
		o.EvidenceFile = "evidences.md"
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Logger == nil {
		l := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
		o.Logger = &l
	}
}

// Run executes the pipeline over the given input files. It returns
// ErrValidation when any Error-severity message was produced, or an
// operational error with its cause chain.
func Run(paths []string, opts Options) error {
	opts.fill()
	log := opts.Logger

	modules, err := loadModules(paths)
	if err != nil {
		return err
	}
	m := model.New(modules)

	msgs := validation.Validate(m, validation.Options{
		Excluded:      opts.Excluded,
		WarnDialectic: opts.WarnDialectic,
	})
	validation.Print(opts.Stderr, msgs)
	if validation.HasErrors(msgs) {
		return ErrValidation
	}
	if opts.CheckOnly {
		log.Info().Int("modules", len(modules)).Msg("check passed")
		return nil
	}

	lopts := layout.Options{Layers: opts.Layers, CharWrap: opts.CharWrap, Font: opts.Font}
	ropts, err := renderOptions(opts)
	if err != nil {
		return err
	}

	if !opts.NoArgumentViews {
		for _, mod := range modules {
			d := layout.Argument(m, mod.Name, lopts)
			logWarnings(log, d)
			out := argumentFileName(mod)
			if err := writeFileAtomic(outputPath(opts, out), render.Render(d, ropts)); err != nil {
				return fmt.Errorf("writing argument view for %s: %w", mod.Name, err)
			}
			log.Info().Str("module", mod.Name).Str("file", out).Msg("argument view written")
		}
	}
	if !opts.NoComplete {
		d := layout.Complete(m, opts.Masked, lopts)
		logWarnings(log, d)
		if err := writeFileAtomic(outputPath(opts, opts.CompleteFile), render.Render(d, ropts)); err != nil {
			return fmt.Errorf("writing complete view: %w", err)
		}
		log.Info().Str("file", opts.CompleteFile).Msg("complete view written")
	}
	if !opts.NoArchitecture {
		d := layout.Architecture(m, lopts)
		logWarnings(log, d)
		if err := writeFileAtomic(outputPath(opts, opts.ArchitectureFile), render.Render(d, ropts)); err != nil {
			return fmt.Errorf("writing architecture view: %w", err)
		}
		log.Info().Str("file", opts.ArchitectureFile).Msg("architecture view written")
	}
	if !opts.NoEvidence {
		if err := writeFileAtomic(outputPath(opts, opts.EvidenceFile), EvidenceMarkdown(m)); err != nil {
			return fmt.Errorf("writing evidence list: %w", err)
		}
	}
	if opts.StatisticsFile != "" {
		stats := StatisticsMarkdown(m)
		if opts.StatisticsFile == "-" {
			if _, err := opts.Stdout.Write(stats); err != nil {
				return fmt.Errorf("writing statistics: %w", err)
			}
		} else if err := writeFileAtomic(outputPath(opts, opts.StatisticsFile), stats); err != nil {
			return fmt.Errorf("writing statistics: %w", err)
		}
	}
	if err := copyStylesheets(opts); err != nil {
		return err
	}
	return nil
}

// loadModules reads and parses the inputs, expanding every module's
// uses-list transitively. Paths in uses are resolved relative to the
// file that names them.
func loadModules(paths []string) ([]*model.Module, error) {
	var modules []*model.Module
	seen := make(map[string]bool)
	queue := append([]string{}, paths...)

	for len(queue) > 0 {
		path := queue[0]
		queue = queue[1:]
		clean := filepath.Clean(path)
		if seen[clean] {
			continue
		}
		seen[clean] = true

		data, err := os.ReadFile(clean)
		if err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}
		mod, err := model.ParseModule(clean, data)
		if err != nil {
			return nil, err
		}
		modules = append(modules, mod)
		for _, used := range mod.Uses {
			queue = append(queue, filepath.Join(filepath.Dir(clean), used))
		}
	}
	return modules, nil
}

// renderOptions resolves stylesheet handling: embedded stylesheets are
// read now, linked ones pass through as hrefs.
func renderOptions(opts Options) (render.Options, error) {
	ropts := render.Options{Font: opts.Font, Now: opts.Now}
	switch {
	case opts.NoLegend:
		ropts.Legend = render.LegendNone
	case opts.MinimalLegend:
		ropts.Legend = render.LegendMinimal
	default:
		ropts.Legend = render.LegendFull
	}
	for _, css := range opts.Stylesheets {
		if opts.EmbedCSS {
			data, err := os.ReadFile(css)
			if err != nil {
				return ropts, fmt.Errorf("embedding stylesheet: %w", err)
			}
			ropts.EmbeddedCSS = append(ropts.EmbeddedCSS, string(data))
			continue
		}
		ropts.LinkedCSS = append(ropts.LinkedCSS, css)
	}
	return ropts, nil
}

// copyStylesheets mirrors linked, non-URL stylesheets into the output
// directory, preserving their relative layout.
func copyStylesheets(opts Options) error {
	if opts.OutputDir == "" || opts.EmbedCSS {
		return nil
	}
	for _, css := range opts.Stylesheets {
		if isURL(css) {
			continue
		}
		data, err := os.ReadFile(css)
		if err != nil {
			return fmt.Errorf("copying stylesheet: %w", err)
		}
		dest := filepath.Join(opts.OutputDir, css)
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return fmt.Errorf("copying stylesheet: %w", err)
		}
		if err := writeFileAtomic(dest, data); err != nil {
			return fmt.Errorf("copying stylesheet: %w", err)
		}
	}
	return nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// argumentFileName derives the per-module view file from the source
// file name.
func argumentFileName(mod *model.Module) string {
	base := filepath.Base(mod.FileName)
	ext := filepath.Ext(base)
	return "gsn_" + strings.TrimSuffix(base, ext) + ".svg"
}

// outputPath roots a file under the output directory when one is set.
func outputPath(opts Options, name string) string {
	if opts.OutputDir == "" {
		return name
	}
	return filepath.Join(opts.OutputDir, name)
}

// writeFileAtomic writes via a temporary file in the destination
// directory followed by a rename.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	tmp, err := os.CreateTemp(dir, ".gsnviz-*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return err
	}
	return nil
}

// logWarnings surfaces layout diagnostics without failing the run.
func logWarnings(log *zerolog.Logger, d *layout.Diagram) {
	for _, w := range render.SortedWarnings(d) {
		log.Warn().Str("view", d.Name).Msg(w)
	}
}
