// Command wireplot draws 3D models as hidden-line wireframes.
//
// Usage:
//
//	wireplot render model.stl -o plot.svg
//	wireplot view model.glb
//	wireplot stats model.obj
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/taigrr/wireplot/pkg/hidden"
	"github.com/taigrr/wireplot/pkg/scene"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          "wireplot",
		Short:        "Hidden-line wireframe plots of 3D models",
		Long:         "wireplot projects a triangle mesh through a perspective camera and draws only the parts of its edges that no face hides.",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(verbose)
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log frame and pass statistics")

	root.AddCommand(
		newRenderCmd(),
		newViewCmd(),
		newStatsCmd(),
	)
	return root
}

// setupLogging sends logs to stderr and wires the library loggers in when
// verbose.
func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if verbose {
		hidden.SetLogger(logger)
		scene.SetLogger(logger)
	}
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := fang.Execute(ctx, newRootCmd()); err != nil {
		cancel()
		os.Exit(1)
	}
}
