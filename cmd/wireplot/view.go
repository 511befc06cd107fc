package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"path/filepath"
	"sync"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/spf13/cobra"
	"github.com/taigrr/wireplot/pkg/hidden"
	"github.com/taigrr/wireplot/pkg/render"
	"github.com/taigrr/wireplot/pkg/scene"
)

type viewerOptions struct {
	view       *viewOptions
	fps        int
	color      string
	background string
}

func newViewCmd() *cobra.Command {
	o := &viewerOptions{
		view:       newViewOptions(),
		fps:        30,
		color:      "0,255,128",
		background: "30,30,40",
	}

	cmd := &cobra.Command{
		Use:   "view <model>",
		Short: "Orbit a model interactively in the terminal",
		Long: `View draws the hidden-line wireframe of a model in the terminal and
recomputes it whenever the camera moves.

Controls:
  W/S/A/D, arrows  orbit
  Space            random spin
  +/-, scroll      zoom
  X                toggle axes
  F                toggle feature edges
  ?                toggle HUD
  R                reset view
  Esc, Q           quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd.Context(), args[0])
		},
	}

	fs := cmd.Flags()
	o.view.register(fs)
	fs.IntVar(&o.fps, "fps", o.fps, "target frames per second")
	fs.StringVar(&o.color, "color", o.color, "line color (R,G,B)")
	fs.StringVar(&o.background, "bg", o.background, "background color (R,G,B)")

	return cmd
}

// viewState is the viewer state shared between the event and draw loops.
type viewState struct {
	mu sync.Mutex

	orbit    *OrbitState
	width    int
	height   int
	axes     bool
	features bool
	showHUD  bool
	dirty    bool // force a recompute on the next frame
}

// HUD renders an overlay with model info and pass statistics
type HUD struct {
	filename  string
	triangles int
	fps       float64
	fpsFrames int
	fpsTime   time.Time
}

// NewHUD creates a new HUD
func NewHUD(filename string, triangles int) *HUD {
	return &HUD{
		filename:  filename,
		triangles: triangles,
		fpsTime:   time.Now(),
	}
}

// UpdateFPS updates the FPS counter (call once per frame)
func (h *HUD) UpdateFPS() {
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

// Render draws the HUD overlay directly to the terminal
func (h *HUD) Render(width, height int, show bool, st hidden.PassStats, took time.Duration) {
	const (
		reset     = "\x1b[0m"
		bold      = "\x1b[1m"
		bgBlack   = "\x1b[40m"
		fgWhite   = "\x1b[97m"
		fgGreen   = "\x1b[92m"
		fgCyan    = "\x1b[96m"
		clearLine = "\x1b[2K"
	)

	moveTo := func(row, col int) string {
		return fmt.Sprintf("\x1b[%d;%dH", row, col)
	}

	// Always clear the HUD rows so toggling off works
	fmt.Print(moveTo(1, 1) + clearLine)
	fmt.Print(moveTo(height, 1) + clearLine)
	if !show {
		return
	}

	fmt.Printf("%s%s%s %.0f FPS %s", moveTo(1, 1), bgBlack, fgGreen, h.fps, reset)

	titleCol := max((width-len(h.filename)-2)/2, 1)
	fmt.Printf("%s%s%s%s %s %s", moveTo(1, titleCol), bold, bgBlack, fgWhite, h.filename, reset)

	tris := fmt.Sprintf("%d tris", h.triangles)
	fmt.Printf("%s%s%s%s %s %s", moveTo(1, max(width-len(tris)-1, 1)), bgBlack, fgCyan, bold, tris, reset)

	pass := fmt.Sprintf(" %d edges  %d visible  %d hidden  %d split  %s ",
		st.Edges, st.Visible, st.Hidden, st.Split, took.Round(time.Microsecond))
	fmt.Print(moveTo(height, 1) + bgBlack + fgWhite + pass + reset)
}

func (o *viewerOptions) run(ctx context.Context, path string) error {
	if err := o.view.validate(); err != nil {
		return err
	}
	if o.fps <= 0 {
		return fmt.Errorf("--fps must be positive, got %d", o.fps)
	}
	ink, err := render.ParseColor(o.color)
	if err != nil {
		return err
	}
	paper, err := render.ParseColor(o.background)
	if err != nil {
		return err
	}

	mesh, err := o.view.loadMesh(path)
	if err != nil {
		return err
	}
	hud := NewHUD(filepath.Base(path), mesh.TriangleCount())

	term := uv.DefaultTerminal()
	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	cleanup := func() {
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	yaw, pitch, dist := o.view.orbit()
	state := &viewState{
		orbit:    NewOrbitState(o.fps, yaw, pitch, dist),
		width:    width,
		height:   height,
		features: o.view.featureAngle > 0,
		showHUD:  true,
		dirty:    true,
	}
	featureAngle := o.view.featureAngle
	if featureAngle == 0 {
		featureAngle = 30
	}

	const impulse = 0.04

	go func() {
		for ev := range term.Events() {
			state.mu.Lock()
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				state.width, state.height = ev.Width, ev.Height
				term.Erase()
				term.Resize(ev.Width, ev.Height)
				state.dirty = true

			case uv.KeyPressEvent:
				switch {
				case ev.MatchString("escape", "ctrl+c", "q"):
					cancel()
				case ev.MatchString("w", "up"):
					state.orbit.ApplyImpulse(0, impulse)
				case ev.MatchString("s", "down"):
					state.orbit.ApplyImpulse(0, -impulse)
				case ev.MatchString("a", "left"):
					state.orbit.ApplyImpulse(-impulse, 0)
				case ev.MatchString("d", "right"):
					state.orbit.ApplyImpulse(impulse, 0)
				case ev.MatchString("space"):
					state.orbit.ApplyImpulse((rand.Float64()-0.5)*0.5, (rand.Float64()-0.5)*0.2)
				case ev.MatchString("+", "="):
					state.orbit.Zoom(0.9)
					state.dirty = true
				case ev.MatchString("-", "_"):
					state.orbit.Zoom(1 / 0.9)
					state.dirty = true
				case ev.MatchString("r"):
					state.orbit.Reset()
					state.dirty = true
				case ev.MatchString("x"):
					state.axes = !state.axes
					state.dirty = true
				case ev.MatchString("f"):
					state.features = !state.features
					state.dirty = true
				case ev.MatchString("?", "shift+/"):
					state.showHUD = !state.showHUD
				}

			case uv.MouseWheelEvent:
				switch ev.Button {
				case uv.MouseWheelUp:
					state.orbit.Zoom(0.9)
				case uv.MouseWheelDown:
					state.orbit.Zoom(1 / 0.9)
				}
				state.dirty = true
			}
			state.mu.Unlock()
		}
	}()

	cam := o.view.camera()
	var (
		termRenderer *render.TerminalRenderer
		fb           *render.Framebuffer
		segs         []hidden.Segment
		stats        hidden.PassStats
		took         time.Duration
		axes         bool
	)

	targetDuration := time.Second / time.Duration(o.fps)

	for {
		select {
		case <-ctx.Done():
			cleanup()
			return nil
		default:
		}
		now := time.Now()

		state.mu.Lock()
		moved := state.orbit.Update()
		recompute := moved || state.dirty
		state.dirty = false
		if fb == nil || termRenderer == nil || recompute {
			termRenderer = render.NewTerminalRenderer(term, state.width, state.height)
		}
		w, h := state.width, state.height
		axes = state.axes
		showHUD := state.showHUD
		opts := o.view.sceneOptions(render.Viewport{})
		if state.features {
			opts.FeatureAngle = featureAngle
		} else {
			opts.FeatureAngle = 0
		}
		cam.Orbit(state.orbit.Yaw.Position, state.orbit.Pitch.Position, state.orbit.Distance)
		state.mu.Unlock()

		if recompute {
			fbw, fbh := termRenderer.FramebufferSize()
			if fb == nil || fb.Width != fbw || fb.Height != fbh {
				fb = render.NewFramebuffer(fbw, fbh)
			}
			opts.Viewport = render.FitViewport(fbw, fbh)

			cam.UpdateMatrix()
			start := time.Now()
			segs, stats, err = scene.Render(ctx, cam, mesh, opts)
			took = time.Since(start)
			if err != nil {
				cleanup()
				if ctx.Err() != nil {
					return nil
				}
				return err
			}

			fb.Clear(paper)
			wf := render.NewWireframe(fb)
			wf.DrawSegments(segs, ink)
			if axes {
				wf.DrawAxes(cam, math.Max(o.view.fit/2, 1))
			}
		}

		termRenderer.Render(fb)
		if err := termRenderer.Flush(); err != nil {
			cleanup()
			return fmt.Errorf("flush: %w", err)
		}

		hud.UpdateFPS()
		hud.Render(w, h, showHUD, stats, took)

		elapsed := time.Since(now)
		if elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}
