package viewer

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-tracks/internal/track"
)

// Action is an editing command bound to a key.
type Action int

// Editor actions.
const (
	ActionNone Action = iota
	ActionAddSpline
	ActionCloseCurve
	ActionClearCurve
	ActionSplitLast
	ActionNewCurve
	ActionBifurcate
	ActionExtrude
	ActionSave
	ActionReload
	ActionToggleMode
)

// String returns the action name used in logs.
func (a Action) String() string {
	switch a {
	case ActionAddSpline:
		return "add-spline"
	case ActionCloseCurve:
		return "close-curve"
	case ActionClearCurve:
		return "clear-curve"
	case ActionSplitLast:
		return "split-last"
	case ActionNewCurve:
		return "new-curve"
	case ActionBifurcate:
		return "bifurcate"
	case ActionExtrude:
		return "extrude"
	case ActionSave:
		return "save"
	case ActionReload:
		return "reload"
	case ActionToggleMode:
		return "toggle-mode"
	default:
		return "none"
	}
}

// Editor applies actions to a track. It tracks the curve currently being
// extended.
type Editor struct {
	Track *track.Track

	active *track.Curve
	log    *zap.Logger
}

// NewEditor wraps t. If t has no curves an empty one is created at the origin.
func NewEditor(t *track.Track, log *zap.Logger) *Editor {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Editor{Track: t, log: log}
	e.selectLast()
	return e
}

// Active returns the curve that AddSpline and friends operate on.
func (e *Editor) Active() *track.Curve { return e.active }

func (e *Editor) selectLast() {
	curves := e.Track.Curves()
	if len(curves) == 0 {
		e.active = e.Track.NewCurve(track.IdentityPose())
		return
	}
	e.active = curves[len(curves)-1]
}

// Select makes the named curve active.
func (e *Editor) Select(name string) bool {
	c := e.Track.Curve(name)
	if c == nil {
		return false
	}
	e.active = c
	e.log.Debug("curve selected", zap.String("curve", name))
	return true
}

// StartCurve adds an empty curve at pose and makes it active.
func (e *Editor) StartCurve(at track.Pose) *track.Curve {
	e.active = e.Track.NewCurve(at)
	return e.active
}

// Do runs one action.
func (e *Editor) Do(a Action) error {
	editing := e.Track.Mode() == track.ModeEditor
	switch a {
	case ActionAddSpline, ActionCloseCurve, ActionClearCurve, ActionSplitLast, ActionNewCurve, ActionBifurcate:
		if !editing {
			e.log.Debug("ignoring edit outside editor mode", zap.Stringer("action", a))
			return nil
		}
	}

	var err error
	switch a {
	case ActionAddSpline:
		err = e.active.AddSpline()
	case ActionCloseCurve:
		err = e.active.CloseCurve()
	case ActionClearCurve:
		e.active.ClearCurve()
	case ActionSplitLast:
		n := len(e.active.Splines())
		if n == 0 {
			return nil
		}
		err = e.active.SplitSpline(n - 1)
	case ActionNewCurve:
		e.StartCurve(e.active.Tail())
	case ActionBifurcate:
		err = e.bifurcate()
	case ActionExtrude:
		e.Track.Extrude()
	case ActionSave:
		err = e.Track.SaveAll()
	case ActionReload:
		if err = e.Track.LoadAll(); err == nil {
			e.selectLast()
		}
	case ActionToggleMode:
		next := track.ModePlay
		if !editing {
			next = track.ModeEditor
		}
		e.Track.SetMode(next)
		e.log.Info("mode changed", zap.Stringer("mode", next))
	default:
		return nil
	}

	if err != nil {
		return fmt.Errorf("%s: %w", a, err)
	}
	e.log.Debug("action", zap.Stringer("action", a), zap.String("curve", e.active.Name))
	return nil
}

// bifurcate branches the active curve and makes the right branch active.
func (e *Editor) bifurcate() error {
	b, err := e.Track.Branch(e.active.Tail())
	if err != nil {
		return err
	}
	e.active = b.NextRight
	return nil
}
