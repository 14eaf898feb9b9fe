package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/pointshade/server/internal/data/field"
	"github.com/pointshade/server/internal/render"
	"github.com/pointshade/server/internal/service"
	"github.com/pointshade/server/internal/viewer"
	"github.com/pointshade/server/pkg/colormap"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type colorizeOptions struct {
	input    string
	fieldDir string
	output   string
	kind     string
	min, max *float64
	quiet    bool
}

func newColorizeCmd(configPath *string) *cobra.Command {
	var (
		opts     colorizeOptions
		min, max float64
	)

	cmd := &cobra.Command{
		Use:   "colorize [values.txt|-]",
		Short: "Map scalar values to a packed RGB float32 buffer",
		Long: "Reads whitespace or comma separated values (or a field directory with --field)\n" +
			"and writes little-endian float32 RGB triples. Outputs ending in .zst are zstd compressed.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.input = args[0]
			}
			if opts.input == "" && opts.fieldDir == "" {
				return fmt.Errorf("either an input file or --field is required")
			}
			if cmd.Flags().Changed("min") {
				opts.min = &min
			}
			if cmd.Flags().Changed("max") {
				opts.max = &max
			}

			cfg, closeLog, err := loadConfig(*configPath, true)
			if err != nil {
				return err
			}
			defer closeLog()
			if opts.kind == "" {
				opts.kind = cfg.Palette.Default
			}

			var s *spinner.Spinner
			if !opts.quiet {
				s = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
				s.Suffix = " Colorizing with " + opts.kind + " palette..."
				s.Start()
			}

			n, err := runColorize(opts)

			if s != nil {
				s.Stop()
			}
			if err != nil {
				return err
			}
			if !opts.quiet {
				fmt.Fprintf(os.Stderr, "Wrote %d colors to %s\n", n, opts.output)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.fieldDir, "field", "", "Field directory to colorize instead of a text file")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file (.zst for compressed)")
	cmd.Flags().StringVarP(&opts.kind, "kind", "k", "", "Palette: gray, jet, summer, winter, hot or label")
	cmd.Flags().Float64Var(&min, "min", 0, "Value mapped to the start of the palette")
	cmd.Flags().Float64Var(&max, "max", 1, "Value mapped to the end of the palette")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Suppress progress output")
	cmd.MarkFlagRequired("output")
	return cmd
}

// runColorize colorizes the input and writes the color buffer. It returns
// the number of points written.
func runColorize(opts colorizeOptions) (int, error) {
	kind, err := colormap.ParseKind(opts.kind)
	if err != nil {
		return 0, err
	}

	fields := service.NewFieldRegistry()
	defer fields.Close()
	svc := service.NewPaletteService(service.PaletteServiceConfig{
		Viewer: viewer.New(nil, nil),
		Fields: fields,
	})

	var rgb []float32
	if opts.fieldDir != "" {
		reader, err := field.NewReader(opts.fieldDir)
		if err != nil {
			return 0, err
		}
		fields.Register("input", reader)
		rgb, err = svc.FieldColors("input", &kind, opts.min, opts.max)
		if err != nil {
			return 0, err
		}
	} else {
		values, err := readValues(opts.input)
		if err != nil {
			return 0, err
		}
		var rng *render.Range
		if opts.min != nil || opts.max != nil {
			r, ok := render.AutoRange(values)
			if !ok {
				r = render.Range{Min: 0, Max: 1}
			}
			if opts.min != nil {
				r.Min = *opts.min
			}
			if opts.max != nil {
				r.Max = *opts.max
			}
			rng = &r
		}
		rgb = svc.Colorize(values, &kind, rng)
	}

	out, err := os.Create(opts.output)
	if err != nil {
		return 0, err
	}
	w := bufio.NewWriter(out)
	if err := field.WriteColors(w, rgb, strings.HasSuffix(opts.output, ".zst")); err != nil {
		out.Close()
		return 0, fmt.Errorf("failed to write colors: %w", err)
	}
	if err := w.Flush(); err != nil {
		out.Close()
		return 0, err
	}
	if err := out.Close(); err != nil {
		return 0, err
	}

	log.Debug().Str("context", "colorize").Str("palette", kind.String()).Int("points", len(rgb)/3).Msg("colorized")
	return len(rgb) / 3, nil
}

func readValues(path string) ([]float64, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	return field.ReadText(r)
}
