package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dshills/gsnviz/pkg/pipeline"
)

const version = "1.0.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, pipeline.ErrValidation) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// nolint:gocyclo // Complexity acceptable: CLI flag surface mapping
func newRootCmd() *cobra.Command {
	var opts pipeline.Options
	var (
		noEvidenceFlag bool
		statsFlag      string
		verbose        bool
	)

	cmd := &cobra.Command{
		Use:     "gsnviz <input.gsn.yaml> [more inputs...]",
		Short:   "Render GSN assurance cases to SVG",
		Long:    "gsnviz validates Goal Structuring Notation modules and renders\nargument, architecture, and complete views as standalone SVG diagrams.",
		Version: version,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			level := zerolog.WarnLevel
			if verbose {
				level = zerolog.InfoLevel
			}
			logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
				Level(level).With().Timestamp().Logger()
			opts.Logger = &logger

			opts.NoEvidence = noEvidenceFlag
			opts.StatisticsFile = statsFlag
			if cmd.Flags().Changed("statistics") && statsFlag == "" {
				opts.StatisticsFile = "-"
			}
			return pipeline.Run(args, opts)
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&opts.CheckOnly, "check", "c", false, "validate only, produce no diagrams")
	flags.StringArrayVarP(&opts.Excluded, "exclude", "x", nil, "skip cross-module checks rooted at this module (repeatable)")
	flags.BoolVar(&opts.WarnDialectic, "warn-dialectic", false, "warn about dialectic (counter) elements")

	flags.BoolVarP(&opts.NoArgumentViews, "no-arg", "N", false, "omit per-module argument views")
	flags.StringVarP(&opts.CompleteFile, "complete", "f", "complete.svg", "complete view output file")
	flags.BoolVarP(&opts.NoComplete, "no-complete", "F", false, "omit the complete view")
	flags.StringVarP(&opts.ArchitectureFile, "arch", "a", "architecture.svg", "architecture view output file")
	flags.BoolVarP(&opts.NoArchitecture, "no-arch", "A", false, "omit the architecture view")
	flags.StringVarP(&opts.EvidenceFile, "evidence", "e", "evidences.md", "evidence list output file")
	flags.BoolVarP(&noEvidenceFlag, "no-evidence", "E", false, "omit the evidence list")
	flags.StringVarP(&opts.OutputDir, "output-dir", "o", "", "output directory root")
	flags.StringVar(&statsFlag, "statistics", "", "write statistics (Markdown); empty value means stdout")
	flags.Lookup("statistics").NoOptDefVal = "-"

	flags.StringArrayVarP(&opts.Layers, "layer", "l", nil, "enable an additional layer (repeatable)")
	flags.StringArrayVarP(&opts.Stylesheets, "stylesheet", "s", nil, "link a stylesheet (repeatable)")
	flags.BoolVarP(&opts.EmbedCSS, "embed-css", "t", false, "embed stylesheets instead of linking")
	flags.StringArrayVarP(&opts.Masked, "mask", "m", nil, "mask a module in the complete view (repeatable)")
	flags.BoolVarP(&opts.NoLegend, "no-legend", "G", false, "omit the legend")
	flags.BoolVarP(&opts.MinimalLegend, "minimal-legend", "g", false, "minimal legend without timestamp")
	flags.IntVarP(&opts.CharWrap, "wrap", "w", 0, "global character wrap width")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable progress output")

	return cmd
}
