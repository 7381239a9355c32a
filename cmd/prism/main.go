package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/gekko3d/prism"
	"github.com/gekko3d/prism/render/app"
	"github.com/spf13/pflag"
)

type options struct {
	configPath  string
	assetsDir   string
	shaderDir   string
	debug       bool
	placeholder bool
}

func parseFlags(args []string) (options, *pflag.FlagSet, error) {
	var opts options
	fs := pflag.NewFlagSet("prism", pflag.ContinueOnError)
	fs.StringVarP(&opts.configPath, "config", "c", "", "config file (.toml, .yaml)")
	fs.StringVar(&opts.assetsDir, "assets", "", "assets directory")
	fs.StringVar(&opts.shaderDir, "shaders", "", "directory of WGSL overrides, watched for changes")
	fs.BoolVar(&opts.debug, "debug", false, "debug logging and frame stats")
	fs.BoolVar(&opts.placeholder, "placeholder", false, "start in placeholder mode")
	err := fs.Parse(args)
	return opts, fs, err
}

// applyFlags overrides cfg with the flags that were set on the command line.
func applyFlags(cfg *prism.Config, opts options, fs *pflag.FlagSet) {
	if fs.Changed("assets") {
		cfg.Assets.Dir = opts.assetsDir
	}
	if fs.Changed("shaders") {
		cfg.Render.ShaderDir = opts.shaderDir
	}
	if fs.Changed("debug") {
		cfg.Log.Debug = opts.debug
	}
	if fs.Changed("placeholder") {
		cfg.Render.Placeholder = opts.placeholder
	}
}

func loadConfig(args []string) (prism.Config, error) {
	opts, fs, err := parseFlags(args)
	if err != nil {
		return prism.Config{}, err
	}
	cfg, err := prism.LoadConfig(opts.configPath)
	if err != nil {
		return cfg, err
	}
	applyFlags(&cfg, opts, fs)
	return cfg, cfg.Validate()
}

func main() {
	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := prism.NewDefaultLogger(cfg.Log.Prefix, cfg.Log.Debug)

	if err := run(cfg, logger); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}

func run(cfg prism.Config, logger prism.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	window, err := prism.CreateWindow(cfg.Window)
	if err != nil {
		return err
	}
	defer window.Destroy()

	a := app.NewApp(window, cfg, logger)
	defer a.Release()
	if err := a.Init(ctx, nil); err != nil {
		return fmt.Errorf("init: %w", err)
	}

	var in prism.Input
	resized := false
	var width, height int
	window.BindInput(&in, func(w, h int) {
		resized, width, height = true, w, h
	})

	clock := prism.NewClock()
	for !window.ShouldClose() && ctx.Err() == nil {
		prism.PollEvents()
		if resized {
			resized = false
			if err := a.Resize(width, height); err != nil {
				return fmt.Errorf("resize: %w", err)
			}
		}

		dt, refreshed := clock.Tick()
		a.HandleInput(&in)
		in.EndFrame()

		if err := a.Update(dt); err != nil {
			return err
		}
		if err := a.Render(); err != nil {
			return err
		}
		if refreshed {
			a.Profiler.Report(logger, clock.FPS)
		}
	}
	return nil
}
