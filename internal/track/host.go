package track

import (
	"sort"

	"github.com/Faultbox/midgard-tracks/pkg/math"
)

// ObjectID identifies a scene object owned by the host. Zero means none.
type ObjectID uint32

// NoObject is the zero ObjectID.
const NoObject ObjectID = 0

// ObjectKind describes what a host object represents.
type ObjectKind uint8

// Object kinds spawned by curves and bifurcations.
const (
	KindCurve ObjectKind = iota + 1
	KindBifurcation
	KindNode
	KindSpline
	KindMesh
)

// String returns a human-readable kind name.
func (k ObjectKind) String() string {
	switch k {
	case KindCurve:
		return "curve"
	case KindBifurcation:
		return "bifurcation"
	case KindNode:
		return "node"
	case KindSpline:
		return "spline"
	case KindMesh:
		return "mesh"
	default:
		return "unknown"
	}
}

// Pose is a world-space position and orientation.
type Pose struct {
	Position math.Vec3
	Rotation math.Quat
}

// IdentityPose returns a pose at the origin with no rotation.
func IdentityPose() Pose {
	return Pose{Rotation: math.QuatIdentity()}
}

// Forward returns the pose's +Z axis.
func (p Pose) Forward() math.Vec3 {
	return p.Rotation.Forward()
}

// Host is the scene system that owns object lifetimes.
// Destroying an object also destroys its descendants.
type Host interface {
	// Spawn creates a child object of parent (NoObject for a root) at pose.
	Spawn(kind ObjectKind, parent ObjectID, pose Pose) ObjectID
	// Destroy removes id and its descendants. It returns false when id is
	// unknown or already destroyed.
	Destroy(id ObjectID) bool
	// Children lists the live direct children of parent in creation order.
	Children(parent ObjectID) []ObjectID
}

type registryEntry struct {
	kind   ObjectKind
	parent ObjectID
	pose   Pose
}

// Registry is an in-memory Host used by the CLI tools and tests.
type Registry struct {
	next    ObjectID
	objects map[ObjectID]registryEntry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		objects: make(map[ObjectID]registryEntry),
	}
}

// Spawn implements Host.
func (r *Registry) Spawn(kind ObjectKind, parent ObjectID, pose Pose) ObjectID {
	r.next++
	r.objects[r.next] = registryEntry{kind: kind, parent: parent, pose: pose}
	return r.next
}

// Destroy implements Host.
func (r *Registry) Destroy(id ObjectID) bool {
	if _, ok := r.objects[id]; !ok {
		return false
	}
	for _, child := range r.Children(id) {
		r.Destroy(child)
	}
	delete(r.objects, id)
	return true
}

// Children implements Host.
func (r *Registry) Children(parent ObjectID) []ObjectID {
	var ids []ObjectID
	for id, e := range r.objects {
		if e.parent == parent {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Alive reports whether id is a live object.
func (r *Registry) Alive(id ObjectID) bool {
	_, ok := r.objects[id]
	return ok
}

// Count returns the number of live objects of the given kind.
func (r *Registry) Count(kind ObjectKind) int {
	n := 0
	for _, e := range r.objects {
		if e.kind == kind {
			n++
		}
	}
	return n
}

// Len returns the number of live objects.
func (r *Registry) Len() int {
	return len(r.objects)
}
