package track

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-tracks/pkg/formats"
)

// Bifurcation node slots. The right exit is offset along the junction's
// local +X, following the same convention as SideRight.
const (
	BifurcationEntry = iota
	BifurcationJunction
	BifurcationRightExit
	BifurcationLeftExit

	bifurcationNodes = 4
)

// Bifurcation is a fixed four-node junction: an entry spline into the
// junction node, then a right branch and a left branch. The branches carry
// one road half each so together they continue the full cross-section.
// Its exits are welded to the first node of the downstream curves.
type Bifurcation struct {
	Name      string
	Transform Pose
	Object    ObjectID

	// NextRight and NextLeft are the downstream curves fed by the exits.
	NextRight *Curve
	NextLeft  *Curve

	settings Settings
	host     Host
	store    Store
	log      *zap.Logger
	mode     *ModeMachine

	nodes   NodeArena
	order   []NodeHandle
	splines []*Spline
	meshes  []*Mesh
	profile *Profile
}

// NewBifurcation creates an empty bifurcation in editor mode. The first Tick
// loads its persisted state, creating default geometry on a first run.
func NewBifurcation(cfg Config) *Bifurcation {
	cfg.applyDefaults()
	b := &Bifurcation{
		Name:      cfg.Name,
		Transform: cfg.Transform,
		settings:  cfg.Settings,
		host:      cfg.Host,
		store:     cfg.Store,
		log:       cfg.Logger.With(zap.String("bifurcation", cfg.Name)),
		mode:      NewModeMachine(ModeEditor),
		profile:   NewProfile(cfg.Settings.BankAngle),
	}
	b.Object = b.host.Spawn(KindBifurcation, NoObject, b.Transform)
	return b
}

// Settings returns the geometry parameters.
func (b *Bifurcation) Settings() Settings {
	return b.settings
}

// Mode returns the active mode.
func (b *Bifurcation) Mode() Mode {
	return b.mode.Current()
}

// SetMode schedules a mode change applied by the next Tick.
func (b *Bifurcation) SetMode(m Mode) {
	b.mode.Change(m)
}

// Node returns node i, or nil when out of range.
func (b *Bifurcation) Node(i int) *Node {
	if i < 0 || i >= len(b.order) {
		return nil
	}
	return b.nodes.Get(b.order[i])
}

// Nodes returns the nodes in slot order.
func (b *Bifurcation) Nodes() []*Node {
	out := make([]*Node, 0, len(b.order))
	for _, h := range b.order {
		if n := b.nodes.Get(h); n != nil {
			out = append(out, n)
		}
	}
	return out
}

// Splines returns the entry, right and left splines.
func (b *Bifurcation) Splines() []*Spline {
	return b.splines
}

// Meshes returns the spline meshes in spline order.
func (b *Bifurcation) Meshes() []*Mesh {
	return b.meshes
}

// Create replaces the bifurcation with default geometry laid out from its
// transform: the junction one node spacing ahead of the entry, and both
// exits a further spacing ahead, offset half a spacing to either side.
func (b *Bifurcation) Create() {
	b.ClearCurve()

	spacing := b.settings.NodeSpacing
	handle := b.settings.HandleLength()

	entry := NewNode(b.Transform.Position, b.Transform.Rotation, handle)
	junction := NewNode(entry.Position.Add(entry.Forward().Scale(spacing)), entry.Rotation, handle)
	ahead := junction.Position.Add(junction.Forward().Scale(spacing))
	side := junction.Right().Scale(spacing / 2)
	right := NewNode(ahead.Add(side), junction.Rotation, handle)
	left := NewNode(ahead.Sub(side), junction.Rotation, handle)

	b.build([]Node{entry, junction, right, left})
	b.Extrude()
	b.log.Debug("bifurcation created")
}

func (b *Bifurcation) build(nodes []Node) {
	for _, n := range nodes {
		n.Object = b.host.Spawn(KindNode, b.Object, Pose{Position: n.Position, Rotation: n.Rotation})
		b.order = append(b.order, b.nodes.Insert(n))
	}
	links := [][2]int{
		{BifurcationEntry, BifurcationJunction},
		{BifurcationJunction, BifurcationRightExit},
		{BifurcationJunction, BifurcationLeftExit},
	}
	for _, l := range links {
		start := b.order[l[0]]
		s := NewSpline(&b.nodes, start, b.order[l[1]])
		pose := Pose{Position: nodes[l[0]].Position, Rotation: nodes[l[0]].Rotation}
		s.Object = b.host.Spawn(KindSpline, b.Object, pose)
		m := &Mesh{}
		m.Clear()
		m.Object = b.host.Spawn(KindMesh, s.Object, pose)
		b.splines = append(b.splines, s)
		b.meshes = append(b.meshes, m)
	}
}

// ClearCurve destroys every node, spline and mesh and any remaining child
// objects.
func (b *Bifurcation) ClearCurve() {
	for _, h := range b.order {
		if n := b.nodes.Get(h); n != nil && n.Object != NoObject {
			b.host.Destroy(n.Object)
		}
	}
	for i, s := range b.splines {
		if b.meshes[i].Object != NoObject {
			b.host.Destroy(b.meshes[i].Object)
		}
		if s.Object != NoObject {
			b.host.Destroy(s.Object)
		}
	}
	for _, child := range b.host.Children(b.Object) {
		b.host.Destroy(child)
	}
	b.nodes.Clear()
	b.order = nil
	b.splines = nil
	b.meshes = nil
}

// Extrude rebuilds the three meshes: the entry with both road halves, the
// right branch with the right half and the left branch with the mirrored
// left half.
func (b *Bifurcation) Extrude() {
	if len(b.splines) != 3 {
		return
	}
	b.splines[0].Extrude(b.meshes[0], b.profile, b.settings)
	b.splines[1].ExtrudeSide(b.meshes[1], b.profile, b.settings, SideRight)
	b.splines[2].ExtrudeSide(b.meshes[2], b.profile, b.settings, SideLeft)
}

// Record returns the persisted form of the bifurcation.
func (b *Bifurcation) Record() *formats.TrackRecord {
	return newRecord(formats.TrackKindBifurcation, false, b.Nodes())
}

// Save persists the four nodes under the bifurcation's name.
func (b *Bifurcation) Save() error {
	if len(b.order) != bifurcationNodes {
		return nil
	}
	if err := b.store.Save(b.Name, b.Record()); err != nil {
		return fmt.Errorf("saving bifurcation %s: %w", b.Name, err)
	}
	return nil
}

// Load replaces the bifurcation with its persisted state and rebuilds
// geometry. A missing record creates default geometry.
func (b *Bifurcation) Load() error {
	rec, err := b.store.Load(b.Name, formats.TrackKindBifurcation)
	if err != nil {
		if errors.Is(err, ErrNoRecord) {
			b.log.Info("no saved bifurcation, creating default")
			b.Create()
			return nil
		}
		return fmt.Errorf("loading bifurcation %s: %w", b.Name, err)
	}
	if err := rec.ValidateBifurcation(); err != nil {
		return fmt.Errorf("loading bifurcation %s: %w: %w", b.Name, ErrMalformedRecord, err)
	}

	b.ClearCurve()
	handle := b.settings.HandleLength()
	nodes := make([]Node, len(rec.Nodes))
	for i, nr := range rec.Nodes {
		nodes[i] = nodeFromRecord(nr, rec.HasHandles, handle)
	}
	b.build(nodes)
	b.Extrude()
	b.log.Info("bifurcation loaded")
	return nil
}

// Weld copies the right exit onto the first node of NextRight and the left
// exit onto the first node of NextLeft. Missing or empty curves are skipped.
func (b *Bifurcation) Weld() {
	weld(b.Node(BifurcationRightExit), b.NextRight)
	weld(b.Node(BifurcationLeftExit), b.NextLeft)
}

func weld(exit *Node, next *Curve) {
	if exit == nil || next == nil {
		return
	}
	if first := next.Node(0); first != nil {
		first.CopyFrom(exit)
	}
}

// Update applies a pending mode change, reloading persisted state, then in
// editor mode saves and welds. It reports whether geometry should be
// rebuilt this tick.
func (b *Bifurcation) Update() (bool, error) {
	if mode, changed := b.mode.Apply(); changed {
		b.log.Info("mode changed", zap.Stringer("mode", mode))
		if err := b.Load(); err != nil {
			return false, err
		}
	}
	if b.mode.Current() != ModeEditor {
		return false, nil
	}
	if err := b.Save(); err != nil {
		return false, err
	}
	b.Weld()
	return true, nil
}

// Tick runs one frame: Update, then Extrude when in editor mode.
func (b *Bifurcation) Tick() error {
	rebuild, err := b.Update()
	if err != nil {
		return err
	}
	if rebuild {
		b.Extrude()
	}
	return nil
}

// Stats summarizes the bifurcation's current geometry.
func (b *Bifurcation) Stats() Stats {
	st := Stats{Nodes: len(b.order), Splines: len(b.splines)}
	for i, m := range b.meshes {
		st.Vertices += len(m.Vertices)
		st.Triangles += m.TriangleCount()
		st.Length += b.splines[i].ArcLength()
	}
	return st
}

// Bounds returns the union of all mesh bounds.
func (b *Bifurcation) Bounds() Bounds {
	bounds := emptyBounds()
	for _, m := range b.meshes {
		bounds.Union(m.Bounds)
	}
	return bounds
}
