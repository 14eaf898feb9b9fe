package main

import (
	"fmt"
	"os"

	"github.com/pointshade/server/internal/render"
	"github.com/pointshade/server/pkg/colormap"
	"github.com/spf13/cobra"
)

func newColorbarCmd(configPath *string) *cobra.Command {
	var (
		output        string
		kindName      string
		width, height int
		legend        bool
		min, max      float64
	)

	cmd := &cobra.Command{
		Use:   "colorbar",
		Short: "Render a palette colorbar or the label legend as PNG",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, closeLog, err := loadConfig(*configPath, true)
			if err != nil {
				return err
			}
			defer closeLog()

			if kindName == "" {
				kindName = cfg.Palette.Default
			}
			var rng *render.Range
			if cmd.Flags().Changed("min") || cmd.Flags().Changed("max") {
				rng = &render.Range{Min: min, Max: max}
			}
			data, err := renderColorbar(newRenderer(cfg), kindName, width, height, legend, rng)
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Wrote %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "colorbar.png", "Output PNG file")
	cmd.Flags().StringVarP(&kindName, "kind", "k", "", "Palette: gray, jet, summer, winter, hot or label")
	cmd.Flags().IntVar(&width, "width", 0, "Width in pixels (config default when 0)")
	cmd.Flags().IntVar(&height, "height", 0, "Height in pixels (config default when 0); taller than wide draws vertically")
	cmd.Flags().BoolVar(&legend, "legend", false, "Render the numbered label legend instead")
	cmd.Flags().Float64Var(&min, "min", 0, "Label a value axis starting at min")
	cmd.Flags().Float64Var(&max, "max", 1, "Label a value axis ending at max")
	return cmd
}

// renderColorbar draws the palette named kindName. A non-nil rng adds a
// labelled value axis.
func renderColorbar(r *render.Renderer, kindName string, width, height int, legend bool, rng *render.Range) ([]byte, error) {
	if legend {
		return r.RenderLegend(colormap.NewLabels(), 0, 0)
	}
	kind, err := colormap.ParseKind(kindName)
	if err != nil {
		return nil, err
	}
	if rng != nil {
		return r.RenderScale(colormap.New(kind), *rng, width, height)
	}
	return r.RenderColorbar(colormap.New(kind), width, height)
}
