package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/pointshade/server/internal/preview"
	"github.com/pointshade/server/internal/viewer"
	"github.com/spf13/cobra"
)

func newPreviewCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "preview",
		Short: "Show the palettes in the terminal; keys 1-6 select, C cycles, Esc quits",
		RunE: func(cmd *cobra.Command, args []string) error {
			// The console logger would draw over the screen.
			cfg, closeLog, err := loadConfig(*configPath, true)
			if err != nil {
				return err
			}
			defer closeLog()

			screen, err := tcell.NewScreen()
			if err != nil {
				return fmt.Errorf("failed to create screen: %w", err)
			}
			if err := screen.Init(); err != nil {
				return fmt.Errorf("failed to initialize screen: %w", err)
			}
			defer screen.Fini()

			p := preview.New(screen)
			v := viewer.New(startupPalette(cfg), p)
			v.BindPaletteKeys()
			p.SetViewer(v)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return p.Run(ctx)
		},
	}
}
