// Package viewer implements the interactive track editor window.
package viewer

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-tracks/internal/config"
	"github.com/Faultbox/midgard-tracks/internal/engine/camera"
	"github.com/Faultbox/midgard-tracks/internal/engine/debug"
	"github.com/Faultbox/midgard-tracks/internal/engine/input"
	"github.com/Faultbox/midgard-tracks/internal/engine/lighting"
	"github.com/Faultbox/midgard-tracks/internal/engine/picking"
	"github.com/Faultbox/midgard-tracks/internal/engine/renderer"
	"github.com/Faultbox/midgard-tracks/internal/engine/window"
	"github.com/Faultbox/midgard-tracks/internal/logger"
	"github.com/Faultbox/midgard-tracks/internal/preview"
	"github.com/Faultbox/midgard-tracks/internal/track"
	"github.com/Faultbox/midgard-tracks/pkg/math"
)

// Title is the window title prefix.
const Title = "Midgard Tracks"

// KeyBindings maps scancodes to editor actions.
var KeyBindings = map[sdl.Scancode]Action{
	sdl.SCANCODE_A: ActionAddSpline,
	sdl.SCANCODE_C: ActionCloseCurve,
	sdl.SCANCODE_X: ActionClearCurve,
	sdl.SCANCODE_D: ActionSplitLast,
	sdl.SCANCODE_N: ActionNewCurve,
	sdl.SCANCODE_B: ActionBifurcate,
	sdl.SCANCODE_E: ActionExtrude,
	sdl.SCANCODE_S: ActionSave,
	sdl.SCANCODE_L: ActionReload,
	sdl.SCANCODE_P: ActionToggleMode,
}

var lightDir = lighting.DefaultSun().Array()

// Viewer is the main viewer instance.
type Viewer struct {
	config   *config.Config
	log      *zap.Logger
	running  bool
	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	camera   *camera.OrbitCamera
	editor   *Editor
	shots    *debug.ScreenshotCapture
}

// New opens the window and loads the track found in cfg.Data.SaveDir.
func New(cfg *config.Config) (*Viewer, error) {
	log := logger.Component("viewer")
	log.Info("initializing viewer",
		zap.Int("width", cfg.Viewer.Width),
		zap.Int("height", cfg.Viewer.Height),
		zap.String("save_dir", cfg.Data.SaveDir),
	)

	v := &Viewer{
		config: cfg,
		log:    log,
		camera: camera.NewOrbitCamera(),
		input:  input.New(),
	}

	t := track.New(track.SettingsFromConfig(cfg.Track), nil, track.NewFileStore(cfg.Data.SaveDir), logger.Component("track"))
	if err := t.LoadAll(); err != nil {
		return nil, fmt.Errorf("failed to load track: %w", err)
	}
	v.editor = NewEditor(t, log)

	format, err := preview.ParseFormat(cfg.Preview.Format)
	if err != nil {
		format = preview.FormatPNG
	}
	v.shots = debug.NewScreenshotCapture(filepath.Join(cfg.Data.SaveDir, "screenshots"), "track", format)

	// Create window (this also creates OpenGL context)
	v.window, err = window.New(window.ConfigFromViewer(Title, cfg.Viewer))
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Create renderer (AFTER window, since OpenGL context must exist)
	width, height := v.window.GetSize()
	v.renderer, err = renderer.New(renderer.Config{
		Width:  width,
		Height: height,
		VSync:  cfg.Viewer.VSync,
	})
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	t.Extrude()
	v.frame()

	log.Info("viewer initialized",
		zap.Int("curves", len(t.Curves())),
		zap.Int("bifurcations", len(t.Bifurcations())))
	return v, nil
}

// Run starts the main loop.
func (v *Viewer) Run() error {
	v.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	v.log.Info("starting viewer loop")

	for v.running {
		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		if v.input.Update() {
			v.running = false
			break
		}
		v.handleEvents()

		if err := v.update(dt); err != nil {
			return fmt.Errorf("update error: %w", err)
		}
		v.render()
		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			st := v.editor.Track.Stats()
			v.window.SetTitle(fmt.Sprintf("%s [%s] %s - %d fps, %d tris",
				Title, v.editor.Track.Mode(), v.editor.Active().Name, frameCount, st.Triangles))
			v.log.Debug("fps", zap.Int("count", frameCount), zap.Float64("dt_ms", dt*1000))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (v *Viewer) handleEvents() {
	for _, event := range v.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			v.renderer.Resize(event.Width, event.Height)
		case input.EventMouseMove:
			if v.input.IsButtonHeld(sdl.BUTTON_LEFT) {
				v.camera.HandleDrag(float32(event.RelX), float32(event.RelY))
			}
		case input.EventMouseWheel:
			v.camera.HandleZoom(event.Wheel)
		case input.EventMouseDown:
			switch event.Button {
			case sdl.BUTTON_RIGHT:
				v.selectAt(event.MouseX, event.MouseY)
			case sdl.BUTTON_MIDDLE:
				v.startAt(event.MouseX, event.MouseY)
			}
		case input.EventKeyDown:
			switch event.Key {
			case sdl.SCANCODE_ESCAPE:
				v.running = false
			case sdl.SCANCODE_F:
				v.frame()
			case sdl.SCANCODE_F12:
				v.screenshot()
			default:
				if a, ok := KeyBindings[event.Key]; ok {
					if err := v.editor.Do(a); err != nil {
						v.log.Warn("action failed", zap.Error(err))
					}
				}
			}
		}
	}
}

func (v *Viewer) update(dt float64) error {
	keys := sdl.GetKeyboardState()
	var forward, right float32
	if keys[sdl.SCANCODE_UP] != 0 {
		forward++
	}
	if keys[sdl.SCANCODE_DOWN] != 0 {
		forward--
	}
	if keys[sdl.SCANCODE_RIGHT] != 0 {
		right++
	}
	if keys[sdl.SCANCODE_LEFT] != 0 {
		right--
	}
	if forward != 0 || right != 0 {
		scale := float32(dt * 60)
		v.camera.HandleMovement(forward*scale, right*scale, 0)
	}

	return v.editor.Track.Tick()
}

func (v *Viewer) render() {
	v.renderer.Tracks.Sync(v.editor.Track.Meshes())

	v.renderer.Begin()
	v.renderer.Tracks.Draw(v.camera.ViewProjection(v.renderer.Aspect()), lightDir)
	v.renderer.End()
}

// ray casts from a window position into the scene.
func (v *Viewer) ray(x, y int) picking.Ray {
	w, h := v.renderer.Size()
	inv := v.camera.ViewProjection(v.renderer.Aspect()).Inverse()
	return picking.ScreenToRay(float32(x), float32(y), float32(w), float32(h), inv)
}

// selectAt activates the nearest curve under the cursor.
func (v *Viewer) selectAt(x, y int) {
	curves := v.editor.Track.Curves()
	boxes := make([]picking.AABB, 0, len(curves))
	names := make([]string, 0, len(curves))
	for _, c := range curves {
		b := c.Bounds()
		if b.Empty() {
			continue
		}
		boxes = append(boxes, picking.NewAABB(b.Min[0], b.Min[1], b.Min[2], b.Max[0], b.Max[1], b.Max[2]))
		names = append(names, c.Name)
	}
	if i, ok := v.ray(x, y).Pick(boxes); ok {
		v.editor.Select(names[i])
	}
}

// startAt begins a new curve on the ground under the cursor, heading along
// the camera's view direction.
func (v *Viewer) startAt(x, y int) {
	if v.editor.Track.Mode() != track.ModeEditor {
		return
	}
	r := v.ray(x, y)
	gx, gz, ok := r.IntersectPlaneY(0)
	if !ok {
		return
	}
	heading := math.Vec3{X: r.Direction[0], Z: r.Direction[2]}
	if heading.Length() < math.Epsilon {
		heading = math.Vec3Forward
	}
	c := v.editor.StartCurve(track.Pose{
		Position: math.Vec3{X: gx, Z: gz},
		Rotation: math.QuatLookRotation(heading.Normalize(), math.Vec3Up),
	})
	v.log.Info("curve started", zap.String("curve", c.Name), zap.Float32("x", gx), zap.Float32("z", gz))
}

func (v *Viewer) screenshot() {
	pixels, w, h := v.renderer.ReadPixels()
	name, err := v.shots.CaptureFromPixels(pixels, w, h)
	if err != nil {
		v.log.Warn("screenshot failed", zap.Error(err))
		return
	}
	v.log.Info("screenshot saved", zap.String("file", name))
}

// frame points the camera at the whole track.
func (v *Viewer) frame() {
	b := v.editor.Track.Bounds()
	if b.Empty() {
		v.camera.SetCenter(0, 0, 0)
		return
	}
	v.camera.FitToBounds(b.Min[0], b.Min[1], b.Min[2], b.Max[0], b.Max[1], b.Max[2])
}

// Close cleans up viewer resources.
func (v *Viewer) Close() {
	v.log.Info("closing viewer")

	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}
