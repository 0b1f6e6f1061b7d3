package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/xtml-lang/xtml/pkgs/config"
	"github.com/xtml-lang/xtml/pkgs/engine"
	"github.com/xtml-lang/xtml/pkgs/registry"
	"github.com/xtml-lang/xtml/pkgs/stdlib"
)

const version = "0.1.0"

func main() {
	var (
		configPath string
		debug      bool
		noColor    bool
	)

	rootCmd := &cobra.Command{
		Use:           "xtml",
		Short:         "Build-time template preprocessor for xtml documents",
		SilenceErrors: true, // We handle error printing ourselves
		SilenceUsage:  true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to xtml.yaml project file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version banner",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("xtml version: %s\n", version)
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "build <path>...",
		Short: "Build files, writing output alongside each input with a .html extension",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(args, configPath, debug)
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "watch <path>",
		Short: "Build a file and rebuild it whenever it changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(args[0], configPath, debug, ShouldUseColor(noColor))
		},
	})

	if err := rootCmd.Execute(); err != nil {
		FormatError(os.Stderr, err, ShouldUseColor(noColor))
		os.Exit(1)
	}
}

// newEngine loads project configuration and wires the std bundle.
func newEngine(inputPath, configPath string, debug bool) (*engine.Engine, error) {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.LoadFromDir(filepath.Dir(inputPath))
	}
	if err != nil {
		return nil, err
	}

	reg := registry.New()
	stdlib.Register(reg)

	return engine.New(reg, engine.WithConfig(cfg), engine.WithDebug(debug)), nil
}

// runBuild builds every given path; independent files build
// concurrently, each with its own engine and environment.
func runBuild(paths []string, configPath string, debug bool) error {
	var g errgroup.Group

	for _, path := range paths {
		path := path
		g.Go(func() error {
			eng, err := newEngine(path, configPath, debug)
			if err != nil {
				return err
			}
			outputPath, err := eng.BuildToFile(path)
			if err != nil {
				return err
			}
			fmt.Printf("%s -> %s\n", path, outputPath)
			return nil
		})
	}

	return g.Wait()
}

// runWatch rebuilds one file on every change until interrupted.
func runWatch(path, configPath string, debug, useColor bool) error {
	eng, err := newEngine(path, configPath, debug)
	if err != nil {
		return err
	}

	ctx, cancel := newCancellableContext()
	defer cancel()

	fmt.Printf("Watching %s (Ctrl+C to stop)\n", path)
	return eng.Watch(ctx, path, func(outputPath string, err error) {
		if err != nil {
			FormatError(os.Stderr, err, useColor)
			return
		}
		fmt.Printf("%s -> %s\n", path, outputPath)
	})
}

// newCancellableContext creates a context that cancels on SIGINT/SIGTERM
// so Ctrl+C stops the watch loop cleanly.
func newCancellableContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		cancel()
	}()

	return ctx, cancel
}
