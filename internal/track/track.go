package track

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Track is a named collection of curves and bifurcations sharing one host,
// store and set of geometry settings.
type Track struct {
	settings Settings
	host     Host
	store    Store
	log      *zap.Logger
	mode     Mode

	curves       []*Curve
	bifurcations []*Bifurcation

	nextCurveID       int
	nextBifurcationID int
}

// New creates an empty track in editor mode.
func New(settings Settings, host Host, store Store, log *zap.Logger) *Track {
	if host == nil {
		host = NewRegistry()
	}
	if store == nil {
		store = NewMemoryStore()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Track{
		settings: settings,
		host:     host,
		store:    store,
		log:      log,
	}
}

// Host returns the track's host.
func (t *Track) Host() Host { return t.host }

// Store returns the track's store.
func (t *Track) Store() Store { return t.store }

// Mode returns the track mode.
func (t *Track) Mode() Mode { return t.mode }

// Curves returns the curves in creation order.
func (t *Track) Curves() []*Curve { return t.curves }

// Bifurcations returns the bifurcations in creation order.
func (t *Track) Bifurcations() []*Bifurcation { return t.bifurcations }

func (t *Track) config(name string, transform Pose) Config {
	return Config{
		Name:      name,
		Transform: transform,
		Settings:  t.settings,
		Host:      t.host,
		Store:     t.store,
		Logger:    t.log,
	}
}

// NewCurve adds an empty curve with a generated name.
func (t *Track) NewCurve(transform Pose) *Curve {
	name := fmt.Sprintf("curve-%d", t.nextCurveID)
	t.nextCurveID++
	return t.addCurve(name, transform)
}

func (t *Track) addCurve(name string, transform Pose) *Curve {
	c := NewCurve(t.config(name, transform))
	t.curves = append(t.curves, c)
	return c
}

// NewBifurcation adds a bifurcation with a generated name and default
// geometry.
func (t *Track) NewBifurcation(transform Pose) *Bifurcation {
	name := fmt.Sprintf("bif-%d", t.nextBifurcationID)
	t.nextBifurcationID++
	b := t.addBifurcation(name, transform)
	b.Create()
	b.mode.Apply()
	return b
}

func (t *Track) addBifurcation(name string, transform Pose) *Bifurcation {
	b := NewBifurcation(t.config(name, transform))
	if t.mode != ModeEditor {
		b.SetMode(t.mode)
	}
	t.bifurcations = append(t.bifurcations, b)
	return b
}

// Branch adds a bifurcation at pose and starts a one-spline curve on each
// exit. The exits are linked so the next Tick welds them.
func (t *Track) Branch(at Pose) (*Bifurcation, error) {
	b := t.NewBifurcation(at)

	exit := func(i int) Pose {
		n := b.Node(i)
		return Pose{Position: n.Position, Rotation: n.Rotation}
	}
	b.NextLeft = t.NewCurve(exit(BifurcationLeftExit))
	b.NextRight = t.NewCurve(exit(BifurcationRightExit))

	for _, c := range []*Curve{b.NextLeft, b.NextRight} {
		if err := c.AddSpline(); err != nil {
			return b, fmt.Errorf("seeding %s: %w", c.Name, err)
		}
	}
	t.log.Debug("branch added",
		zap.String("bifurcation", b.Name),
		zap.String("left", b.NextLeft.Name),
		zap.String("right", b.NextRight.Name))
	return b, nil
}

// Curve finds a curve by name.
func (t *Track) Curve(name string) *Curve {
	for _, c := range t.curves {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Bifurcation finds a bifurcation by name.
func (t *Track) Bifurcation(name string) *Bifurcation {
	for _, b := range t.bifurcations {
		if b.Name == name {
			return b
		}
	}
	return nil
}

// SetMode schedules a mode change on every bifurcation.
func (t *Track) SetMode(m Mode) {
	t.mode = m
	for _, b := range t.bifurcations {
		b.SetMode(m)
	}
}

// Tick runs one frame. All bifurcations update and weld first, then every
// object is re-extruded in editor mode.
func (t *Track) Tick() error {
	for _, b := range t.bifurcations {
		if _, err := b.Update(); err != nil {
			return err
		}
	}
	if t.mode != ModeEditor {
		return nil
	}
	t.Extrude()
	return nil
}

// Extrude rebuilds the geometry of every curve and bifurcation.
func (t *Track) Extrude() {
	for _, b := range t.bifurcations {
		b.Extrude()
	}
	for _, c := range t.curves {
		c.Extrude()
	}
}

// Index returns the persisted description of the track layout.
func (t *Track) Index() *Index {
	idx := &Index{
		NextCurveID:       t.nextCurveID,
		NextBifurcationID: t.nextBifurcationID,
	}
	for _, c := range t.curves {
		idx.Curves = append(idx.Curves, CurveEntry{
			Name:     c.Name,
			Position: c.Transform.Position.Array(),
			Rotation: quatArray(c.Transform.Rotation),
		})
	}
	for _, b := range t.bifurcations {
		e := BifurcationIndexEntry{
			Name:     b.Name,
			Position: b.Transform.Position.Array(),
			Rotation: quatArray(b.Transform.Rotation),
		}
		if b.NextRight != nil {
			e.NextRight = b.NextRight.Name
		}
		if b.NextLeft != nil {
			e.NextLeft = b.NextLeft.Name
		}
		idx.Bifurcations = append(idx.Bifurcations, e)
	}
	return idx
}

// SaveAll persists every object and the index.
func (t *Track) SaveAll() error {
	for _, c := range t.curves {
		if err := c.Save(); err != nil {
			return err
		}
	}
	for _, b := range t.bifurcations {
		if err := b.Save(); err != nil {
			return err
		}
	}
	if err := t.store.SaveIndex(t.Index()); err != nil {
		return fmt.Errorf("saving track index: %w", err)
	}
	t.log.Info("track saved",
		zap.Int("curves", len(t.curves)),
		zap.Int("bifurcations", len(t.bifurcations)))
	return nil
}

// LoadAll replaces the track with the persisted index and records. A
// missing index leaves an empty track.
func (t *Track) LoadAll() error {
	idx, err := t.store.LoadIndex()
	if err != nil {
		if errors.Is(err, ErrNoRecord) {
			t.log.Info("no saved track, starting empty")
			return nil
		}
		return fmt.Errorf("loading track index: %w", err)
	}

	t.Clear()
	t.nextCurveID = idx.NextCurveID
	t.nextBifurcationID = idx.NextBifurcationID

	for _, e := range idx.Curves {
		c := t.addCurve(e.Name, poseFromArrays(e.Position, e.Rotation))
		if err := c.Load(); err != nil {
			return err
		}
	}
	for _, e := range idx.Bifurcations {
		b := t.addBifurcation(e.Name, poseFromArrays(e.Position, e.Rotation))
		if e.NextRight != "" {
			b.NextRight = t.Curve(e.NextRight)
		}
		if e.NextLeft != "" {
			b.NextLeft = t.Curve(e.NextLeft)
		}
		if err := b.Load(); err != nil {
			return err
		}
		b.mode.Apply()
	}

	t.log.Info("track loaded",
		zap.Int("curves", len(t.curves)),
		zap.Int("bifurcations", len(t.bifurcations)))
	return nil
}

// Clear destroys every object.
func (t *Track) Clear() {
	for _, c := range t.curves {
		c.ClearCurve()
		t.host.Destroy(c.Object)
	}
	for _, b := range t.bifurcations {
		b.ClearCurve()
		t.host.Destroy(b.Object)
	}
	t.curves = nil
	t.bifurcations = nil
}

// Stats sums the stats of every object.
func (t *Track) Stats() Stats {
	var st Stats
	add := func(o Stats) {
		st.Nodes += o.Nodes
		st.Splines += o.Splines
		st.Vertices += o.Vertices
		st.Triangles += o.Triangles
		st.Length += o.Length
	}
	for _, c := range t.curves {
		add(c.Stats())
	}
	for _, b := range t.bifurcations {
		add(b.Stats())
	}
	return st
}

// Bounds returns the union of all mesh bounds.
func (t *Track) Bounds() Bounds {
	bounds := emptyBounds()
	for _, c := range t.curves {
		bounds.Union(c.Bounds())
	}
	for _, b := range t.bifurcations {
		bounds.Union(b.Bounds())
	}
	return bounds
}

// Meshes returns every mesh with a stable name, bifurcations first.
func (t *Track) Meshes() []NamedMesh {
	var out []NamedMesh
	for _, b := range t.bifurcations {
		for i, m := range b.meshes {
			out = append(out, NamedMesh{Name: fmt.Sprintf("%s/spline-%d", b.Name, i), Mesh: m})
		}
	}
	for _, c := range t.curves {
		for i, m := range c.meshes {
			out = append(out, NamedMesh{Name: fmt.Sprintf("%s/spline-%d", c.Name, i), Mesh: m})
		}
	}
	return out
}

// NamedMesh pairs a mesh with a display name.
type NamedMesh struct {
	Name string
	Mesh *Mesh
}
