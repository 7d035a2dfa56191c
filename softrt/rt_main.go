package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"

	"github.com/gekko3d/orrery"
	"github.com/gekko3d/orrery/softrt/rt/app"
	"github.com/gekko3d/orrery/softrt/rt/session"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "YAML config file (defaults are used when empty)")
	writeConfig := flag.String("write-config", "", "write the effective config to this path and exit")
	debug := flag.Bool("debug", false, "Enable debug logging and per-second profiler dumps")
	quiet := flag.Bool("quiet", false, "log warnings and errors only")
	headless := flag.Bool("headless", false, "render frames to PNG files instead of opening a window")
	frames := flag.Int("frames", 120, "number of frames to render in headless mode")
	out := flag.String("out", "frames", "output directory for headless frames")
	tour := flag.Bool("tour", false, "visit every planet during a headless run")
	obj := flag.String("obj", "", "OBJ mesh used for every body instead of the generated sphere")
	workers := flag.Int("workers", 0, "raster workers (0 keeps the config value)")
	flag.Parse()

	log := orrery.NewDefaultLogger("orrery", *debug)
	if *quiet {
		log.SetLevel(orrery.LevelWarn)
	}
	if err := run(log, options{
		configPath:  *configPath,
		writeConfig: *writeConfig,
		headless:    *headless,
		frames:      *frames,
		out:         *out,
		tour:        *tour,
		obj:         *obj,
		workers:     *workers,
	}); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}

type options struct {
	configPath  string
	writeConfig string
	headless    bool
	frames      int
	out         string
	tour        bool
	obj         string
	workers     int
}

func loadConfig(opts options) (orrery.Config, error) {
	cfg := orrery.DefaultConfig()
	if opts.configPath != "" {
		var err error
		if cfg, err = orrery.LoadConfig(opts.configPath); err != nil {
			return cfg, err
		}
	}
	if opts.obj != "" {
		cfg.Scene.MeshPath = opts.obj
	}
	if opts.workers > 0 {
		cfg.Render.Workers = opts.workers
	}
	return cfg, nil
}

func run(log *orrery.DefaultLogger, opts options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if opts.writeConfig != "" {
		if err := orrery.WriteConfig(opts.writeConfig, cfg); err != nil {
			return err
		}
		log.Infof("config written to %s", opts.writeConfig)
		return nil
	}

	if opts.headless {
		s, err := session.New(cfg, log.Named("headless"))
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		return s.RenderBatch(ctx, session.BatchOptions{
			Frames:   opts.frames,
			OutDir:   opts.out,
			Tour:     opts.tour,
			Progress: os.Stderr,
		})
	}
	return runWindow(log, cfg)
}

func runWindow(log *orrery.DefaultLogger, cfg orrery.Config) error {
	s, err := session.New(cfg, log.Named("app"))
	if err != nil {
		return err
	}

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw init: %w", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	window, err := glfw.CreateWindow(cfg.Render.Width, cfg.Render.Height, "Orrery", nil, nil)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	defer window.Destroy()

	application := app.NewApp(window, s, log.Named("app"))
	if err := application.Init(); err != nil {
		return err
	}

	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		application.Resize(width, height)
	})
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		application.HandleKey(key, action, mods)
	})
	window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		application.HandleMouseButton(button, action)
	})
	window.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		application.HandleCursor(xpos, ypos)
	})
	window.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
		application.HandleScroll(yoff)
	})

	for !window.ShouldClose() {
		glfw.PollEvents()
		application.Update()
		application.Render()
	}
	return nil
}
