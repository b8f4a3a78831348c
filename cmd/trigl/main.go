package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/fosdem/trigl/lib/config"
	"github.com/fosdem/trigl/lib/eventloop"
	"github.com/fosdem/trigl/lib/gpu"
	"github.com/fosdem/trigl/lib/gpu/gldevice"
	"github.com/fosdem/trigl/lib/kbdctl"
	"github.com/fosdem/trigl/lib/log"
	"github.com/fosdem/trigl/lib/metrics"
	"github.com/fosdem/trigl/lib/rendering"
	"github.com/fosdem/trigl/lib/rendering/shaders"
	"github.com/fosdem/trigl/lib/window"
)

func init() {
	// The OpenGL stuff must be in one thread
	runtime.LockOSThread()
}

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Default()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	level, err := cfg.Level()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	slog.SetDefault(slog.New(log.NewHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	win, err := window.New(&cfg.Window, &cfg.Context)
	if err != nil {
		slog.Error(err.Error())
		return 1
	}
	defer win.Destroy()

	dev, err := gldevice.New()
	if err != nil {
		slog.Error(err.Error())
		return 1
	}

	return render(cfg, dev, win, os.Stdout, func(h eventloop.FrameHandler) {
		kbdctl.SetupShortcutKeys(win, h)
	})
}

// render runs everything after context creation on a current context: driver
// info, program, geometry, frames, release. attachInput wires the surface's
// input to the renderer before the first frame. It returns the exit code.
func render(cfg *config.Config, dev gpu.Device, surface eventloop.Surface, stdout io.Writer, attachInput func(eventloop.FrameHandler)) int {
	before, err := metrics.Snapshot()
	if err != nil {
		slog.Error(fmt.Sprintf("could not read metrics: %s", err))
		return 1
	}

	err = gpu.QueryDriverInfo(dev).Print(stdout)
	if err != nil {
		slog.Error(fmt.Sprintf("could not print driver info: %s", err))
		return 1
	}

	program, err := shaders.Build(dev, &shaders.ShaderData{GLSLVersion: cfg.Context.GLSLVersion()})
	if err != nil {
		reportShaderError(err)
		return 1
	}

	geometry := rendering.Upload(dev, rendering.Triangle)
	slog.Debug(fmt.Sprintf("uploaded %d vertices, first record reads back as %v", geometry.Count, geometry.ReadBack(dev, 5)))
	renderer := rendering.NewRenderer(dev, program, geometry, rendering.RenderOptions{
		ClearColour: cfg.ClearColour.Vec4(),
		CheckErrors: cfg.CheckErrors,
	})

	attachInput(renderer)
	eventloop.Run(surface, renderer)

	// the caller tears the context down after this returns
	renderer.Release()

	st := renderer.Stats()
	after, err := metrics.Snapshot()
	if err != nil {
		slog.Warn(fmt.Sprintf("could not read metrics: %s", err))
		return 0
	}
	totals := after.Since(before)
	slog.Info(fmt.Sprintf("drew %d frames in %s, last %d fps", totals.Frames, st.Uptime.Round(time.Millisecond), st.FPS))
	slog.Debug(fmt.Sprintf("%d resizes", totals.Resizes))
	if totals.Created != totals.Deleted {
		slog.Warn(fmt.Sprintf("released %d of %d GL objects", totals.Deleted, totals.Created))
	} else {
		slog.Info(fmt.Sprintf("released %d of %d GL objects", totals.Deleted, totals.Created))
	}
	return 0
}

func reportShaderError(err error) {
	var compileErr *shaders.CompileError
	var linkErr *shaders.LinkError

	switch {
	case errors.As(err, &compileErr):
		slog.Error(fmt.Sprintf("shader compile error (%s):\n%s", compileErr.Kind, compileErr.Log))
	case errors.As(err, &linkErr):
		slog.Error(fmt.Sprintf("program link error:\n%s", linkErr.Log))
	default:
		slog.Error(fmt.Sprintf("could not init GL program: %s", err))
	}
}
