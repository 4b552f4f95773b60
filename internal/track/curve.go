package track

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-tracks/pkg/formats"
	"github.com/Faultbox/midgard-tracks/pkg/math"
)

// Config holds construction parameters for curves and bifurcations.
type Config struct {
	Name      string
	Transform Pose
	Settings  Settings

	// Host owns scene objects. Defaults to a private Registry.
	Host Host
	// Store persists records. Defaults to a private MemoryStore.
	Store Store
	// Logger defaults to a no-op logger.
	Logger *zap.Logger
}

func (c *Config) applyDefaults() {
	if c.Host == nil {
		c.Host = NewRegistry()
	}
	if c.Store == nil {
		c.Store = NewMemoryStore()
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	if c.Transform.Rotation == (math.Quat{}) {
		c.Transform.Rotation = math.QuatIdentity()
	}
}

// Stats summarizes generated geometry.
type Stats struct {
	Nodes     int
	Splines   int
	Vertices  int
	Triangles int
	Length    float32
}

// Curve is an ordered chain of nodes joined by splines, optionally closed
// into a loop. Spline i joins node i to node i+1; on a closed curve the last
// spline joins the last node back to node 0. Meshes run parallel to splines.
type Curve struct {
	Name      string
	Transform Pose
	Object    ObjectID

	settings Settings
	host     Host
	store    Store
	log      *zap.Logger

	nodes   NodeArena
	order   []NodeHandle
	splines []*Spline
	meshes  []*Mesh
	closed  bool
	profile *Profile
}

// NewCurve creates an empty curve and spawns its host object.
func NewCurve(cfg Config) *Curve {
	cfg.applyDefaults()
	c := &Curve{
		Name:      cfg.Name,
		Transform: cfg.Transform,
		settings:  cfg.Settings,
		host:      cfg.Host,
		store:     cfg.Store,
		log:       cfg.Logger.With(zap.String("curve", cfg.Name)),
		profile:   NewProfile(cfg.Settings.BankAngle),
	}
	c.Object = c.host.Spawn(KindCurve, NoObject, c.Transform)
	return c
}

// Settings returns the curve's geometry parameters.
func (c *Curve) Settings() Settings {
	return c.settings
}

// SetSettings replaces the geometry parameters. Call Extrude to apply them.
func (c *Curve) SetSettings(s Settings) {
	c.settings = s
	c.profile = NewProfile(s.BankAngle)
}

// Closed reports whether the last spline loops back to node 0.
func (c *Curve) Closed() bool {
	return c.closed
}

// NodeCount returns the number of nodes.
func (c *Curve) NodeCount() int {
	return len(c.order)
}

// Node returns node i, or nil when out of range.
func (c *Curve) Node(i int) *Node {
	if i < 0 || i >= len(c.order) {
		return nil
	}
	return c.nodes.Get(c.order[i])
}

// Nodes returns the nodes in order.
func (c *Curve) Nodes() []*Node {
	out := make([]*Node, 0, len(c.order))
	for _, h := range c.order {
		if n := c.nodes.Get(h); n != nil {
			out = append(out, n)
		}
	}
	return out
}

// Splines returns the splines in order.
func (c *Curve) Splines() []*Spline {
	return c.splines
}

// Meshes returns the spline meshes in order.
func (c *Curve) Meshes() []*Mesh {
	return c.meshes
}

func (c *Curve) spawnNode(n Node) NodeHandle {
	n.Object = c.host.Spawn(KindNode, c.Object, Pose{Position: n.Position, Rotation: n.Rotation})
	h := c.nodes.Insert(n)
	return h
}

func (c *Curve) newSpline(start, end NodeHandle) (*Spline, *Mesh) {
	s := NewSpline(&c.nodes, start, end)
	pose := IdentityPose()
	if a := c.nodes.Get(start); a != nil {
		pose = Pose{Position: a.Position, Rotation: a.Rotation}
	}
	s.Object = c.host.Spawn(KindSpline, c.Object, pose)
	m := &Mesh{}
	m.Clear()
	m.Object = c.host.Spawn(KindMesh, s.Object, pose)
	return s, m
}

// Tail returns the pose of the last node, or the curve transform when the
// curve is empty.
func (c *Curve) Tail() Pose {
	if n := len(c.order); n > 0 {
		last := c.Node(n - 1)
		return Pose{Position: last.Position, Rotation: last.Rotation}
	}
	return c.Transform
}

// AddSpline appends a node one node spacing ahead of the last node and joins
// it with a new spline. On an empty curve it creates the first two nodes
// from the curve transform.
func (c *Curve) AddSpline() error {
	if c.closed {
		return ErrCurveClosed
	}
	spacing := c.settings.NodeSpacing
	handle := c.settings.HandleLength()

	if len(c.order) == 0 {
		first := NewNode(c.Transform.Position, c.Transform.Rotation, handle)
		c.order = append(c.order, c.spawnNode(first))
	}

	last := c.Node(len(c.order) - 1)
	next := NewNode(last.Position.Add(last.Forward().Scale(spacing)), last.Rotation, handle)
	next.WidthModifier = last.WidthModifier
	h := c.spawnNode(next)

	s, m := c.newSpline(c.order[len(c.order)-1], h)
	c.order = append(c.order, h)
	c.splines = append(c.splines, s)
	c.meshes = append(c.meshes, m)

	c.log.Debug("spline added", zap.Int("nodes", len(c.order)))
	return nil
}

// CloseCurve joins the last node back to node 0.
func (c *Curve) CloseCurve() error {
	if c.closed {
		return ErrCurveClosed
	}
	if len(c.order) < 2 {
		return ErrCurveTooShort
	}
	s, m := c.newSpline(c.order[len(c.order)-1], c.order[0])
	c.splines = append(c.splines, s)
	c.meshes = append(c.meshes, m)
	c.closed = true

	c.log.Debug("curve closed", zap.Int("splines", len(c.splines)))
	return nil
}

// ClearCurve destroys every node, spline and mesh and any remaining child
// objects. Objects already destroyed by the host are skipped.
func (c *Curve) ClearCurve() {
	for _, h := range c.order {
		if n := c.nodes.Get(h); n != nil {
			c.destroy(n.Object)
		}
	}
	for _, m := range c.meshes {
		c.destroy(m.Object)
	}
	for _, s := range c.splines {
		c.destroy(s.Object)
	}
	for _, child := range c.host.Children(c.Object) {
		c.host.Destroy(child)
	}

	c.nodes.Clear()
	c.order = nil
	c.splines = nil
	c.meshes = nil
	c.closed = false
}

func (c *Curve) destroy(id ObjectID) {
	if id == NoObject {
		return
	}
	c.host.Destroy(id)
}

// Extrude rebuilds every spline mesh.
func (c *Curve) Extrude() {
	for i, s := range c.splines {
		s.Extrude(c.meshes[i], c.profile, c.settings)
	}
	if len(c.splines) > 0 {
		st := c.Stats()
		c.log.Debug("curve extruded",
			zap.Int("splines", st.Splines),
			zap.Int("vertices", st.Vertices),
			zap.Int("triangles", st.Triangles))
	}
}

// SplitSpline divides spline i at its midpoint into two splines joined by a
// new node. The curve shape is unchanged.
func (c *Curve) SplitSpline(i int) error {
	if i < 0 || i >= len(c.splines) {
		return fmt.Errorf("%w: %d", ErrSplineIndex, i)
	}
	old := c.splines[i]
	a, b, ok := old.endpoints()
	if !ok {
		return fmt.Errorf("%w: spline %d is disconnected", ErrSplineIndex, i)
	}

	mid := splitNode(old, a, b)
	h := c.spawnNode(mid)

	// A closing spline ends at node 0, so its midpoint goes after the last node.
	if c.closed && i == len(c.splines)-1 {
		c.order = append(c.order, h)
	} else {
		c.order = append(c.order[:i+1], append([]NodeHandle{h}, c.order[i+1:]...)...)
	}

	c.destroy(c.meshes[i].Object)
	c.destroy(old.Object)

	s1, m1 := c.newSpline(old.Start, h)
	s2, m2 := c.newSpline(h, old.End)
	c.splines = append(c.splines[:i], append([]*Spline{s1, s2}, c.splines[i+1:]...)...)
	c.meshes = append(c.meshes[:i], append([]*Mesh{m1, m2}, c.meshes[i+1:]...)...)

	c.log.Debug("spline split", zap.Int("index", i), zap.Int("nodes", len(c.order)))
	return nil
}

// splitNode subdivides the curve at t = 0.5 with de Casteljau's construction
// and shortens the outer handles of a and b to match.
func splitNode(s *Spline, a, b *Node) Node {
	p0, p1, p2, p3, _ := s.ControlPoints()
	l1 := p0.Lerp(p1, 0.5)
	l2 := p1.Lerp(p2, 0.5)
	l3 := p2.Lerp(p3, 0.5)
	m1 := l1.Lerp(l2, 0.5)
	m2 := l2.Lerp(l3, 0.5)
	center := m1.Lerp(m2, 0.5)

	up := a.Up().Lerp(b.Up(), 0.5)
	mid := Node{
		Position:       center,
		Rotation:       s.Orientation(0.5, up),
		LeftCurvature:  math.Lerp(a.LeftCurvature, b.LeftCurvature, 0.5),
		RightCurvature: math.Lerp(a.RightCurvature, b.RightCurvature, 0.5),
		WidthModifier:  math.Lerp(a.WidthModifier, b.WidthModifier, 0.5),
	}
	mid.SetBackControl(m1)
	mid.SetFrontControl(m2)

	a.FrontHandle = a.FrontHandle.Scale(0.5)
	b.BackHandle = b.BackHandle.Scale(0.5)
	return mid
}

// Record returns the persisted form of the curve.
func (c *Curve) Record() *formats.TrackRecord {
	return newRecord(formats.TrackKindCurve, c.closed, c.Nodes())
}

// Save persists the curve under its name.
func (c *Curve) Save() error {
	if err := c.store.Save(c.Name, c.Record()); err != nil {
		return fmt.Errorf("saving curve %s: %w", c.Name, err)
	}
	return nil
}

// Load replaces the curve with its persisted state and rebuilds geometry.
// A missing record leaves the curve as it is.
func (c *Curve) Load() error {
	rec, err := c.store.Load(c.Name, formats.TrackKindCurve)
	if err != nil {
		if errors.Is(err, ErrNoRecord) {
			c.log.Info("no saved curve, starting empty")
			return nil
		}
		return fmt.Errorf("loading curve %s: %w", c.Name, err)
	}
	if err := c.Restore(rec); err != nil {
		return fmt.Errorf("loading curve %s: %w", c.Name, err)
	}
	c.Extrude()
	c.log.Info("curve loaded", zap.Int("nodes", len(c.order)), zap.Bool("closed", c.closed))
	return nil
}

// Restore rebuilds the node graph from rec without extruding.
func (c *Curve) Restore(rec *formats.TrackRecord) error {
	if rec.Kind != formats.TrackKindCurve {
		return fmt.Errorf("%w: %w", ErrMalformedRecord, formats.ErrTrackKindMismatch)
	}
	if len(rec.Nodes) == 1 {
		return fmt.Errorf("%w: curve has a single node", ErrMalformedRecord)
	}
	if rec.Closed && len(rec.Nodes) < 2 {
		return fmt.Errorf("%w: closed curve has %d nodes", ErrMalformedRecord, len(rec.Nodes))
	}

	c.ClearCurve()
	handle := c.settings.HandleLength()
	for _, nr := range rec.Nodes {
		c.order = append(c.order, c.spawnNode(nodeFromRecord(nr, rec.HasHandles, handle)))
	}
	for i := 1; i < len(c.order); i++ {
		s, m := c.newSpline(c.order[i-1], c.order[i])
		c.splines = append(c.splines, s)
		c.meshes = append(c.meshes, m)
	}
	if rec.Closed {
		return c.CloseCurve()
	}
	return nil
}

// Stats summarizes the curve's current geometry.
func (c *Curve) Stats() Stats {
	st := Stats{Nodes: len(c.order), Splines: len(c.splines)}
	for i, m := range c.meshes {
		st.Vertices += len(m.Vertices)
		st.Triangles += m.TriangleCount()
		st.Length += c.splines[i].ArcLength()
	}
	return st
}

// Bounds returns the union of all mesh bounds.
func (c *Curve) Bounds() Bounds {
	b := emptyBounds()
	for _, m := range c.meshes {
		b.Union(m.Bounds)
	}
	return b
}
