package track

import "github.com/Faultbox/midgard-tracks/pkg/math"

// Node is an oriented control vertex of a track graph. Its front handle
// shapes the outgoing spline and its back handle the incoming one. Handles
// are offsets in the node's local space.
type Node struct {
	Position math.Vec3
	Rotation math.Quat

	FrontHandle math.Vec3
	BackHandle  math.Vec3

	LeftCurvature  float32
	RightCurvature float32
	WidthModifier  float32

	// Object is the host object carrying this node.
	Object ObjectID
}

// NewNode creates a node with straight handles of the given length along
// its forward axis.
func NewNode(position math.Vec3, rotation math.Quat, handleLength float32) Node {
	return Node{
		Position:      position,
		Rotation:      rotation,
		FrontHandle:   math.Vec3{Z: handleLength},
		BackHandle:    math.Vec3{Z: -handleLength},
		WidthModifier: 1,
	}
}

// Forward returns the node's world forward axis.
func (n *Node) Forward() math.Vec3 { return n.Rotation.Forward() }

// Up returns the node's world up axis.
func (n *Node) Up() math.Vec3 { return n.Rotation.Up() }

// Right returns the node's world right axis.
func (n *Node) Right() math.Vec3 { return n.Rotation.Right() }

// FrontControl returns the world position of the front control point.
func (n *Node) FrontControl() math.Vec3 {
	return n.Position.Add(n.Rotation.Rotate(n.FrontHandle))
}

// BackControl returns the world position of the back control point.
func (n *Node) BackControl() math.Vec3 {
	return n.Position.Add(n.Rotation.Rotate(n.BackHandle))
}

// SetFrontControl moves the front control point to a world position.
func (n *Node) SetFrontControl(p math.Vec3) {
	n.FrontHandle = n.Rotation.Conjugate().Rotate(p.Sub(n.Position))
}

// SetBackControl moves the back control point to a world position.
func (n *Node) SetBackControl(p math.Vec3) {
	n.BackHandle = n.Rotation.Conjugate().Rotate(p.Sub(n.Position))
}

// Curvature returns the banking weight of one side.
func (n *Node) Curvature(side Side) float32 {
	if side == SideLeft {
		return n.LeftCurvature
	}
	return n.RightCurvature
}

// CopyFrom copies pose, handles, curvatures and width from src. The host
// object is kept.
func (n *Node) CopyFrom(src *Node) {
	obj := n.Object
	*n = *src
	n.Object = obj
}

// NodeHandle refers to a node slot in a NodeArena. The zero handle refers
// to nothing.
type NodeHandle struct {
	index uint32
	gen   uint32
}

// Valid reports whether the handle was ever issued.
func (h NodeHandle) Valid() bool {
	return h.gen != 0
}

type nodeSlot struct {
	node *Node
	gen  uint32
}

// NodeArena owns the nodes of one curve or bifurcation. Handles to removed
// nodes become stale and resolve to nil.
type NodeArena struct {
	slots []nodeSlot
	free  []uint32
	live  int
}

// Insert stores a copy of n and returns its handle.
func (a *NodeArena) Insert(n Node) NodeHandle {
	node := n
	if len(a.free) > 0 {
		idx := a.free[len(a.free)-1]
		a.free = a.free[:len(a.free)-1]
		slot := &a.slots[idx]
		slot.gen++
		slot.node = &node
		a.live++
		return NodeHandle{index: idx, gen: slot.gen}
	}
	a.slots = append(a.slots, nodeSlot{node: &node, gen: 1})
	a.live++
	return NodeHandle{index: uint32(len(a.slots) - 1), gen: 1}
}

// Get resolves h. It returns nil for zero, stale or foreign handles.
func (a *NodeArena) Get(h NodeHandle) *Node {
	if !h.Valid() || int(h.index) >= len(a.slots) {
		return nil
	}
	slot := &a.slots[h.index]
	if slot.gen != h.gen || slot.node == nil {
		return nil
	}
	return slot.node
}

// Remove frees the slot behind h.
func (a *NodeArena) Remove(h NodeHandle) bool {
	if a.Get(h) == nil {
		return false
	}
	slot := &a.slots[h.index]
	slot.node = nil
	a.free = append(a.free, h.index)
	a.live--
	return true
}

// Len returns the number of live nodes.
func (a *NodeArena) Len() int {
	return a.live
}

// Clear removes every node. Outstanding handles become stale.
func (a *NodeArena) Clear() {
	for i := range a.slots {
		if a.slots[i].node != nil {
			a.slots[i].node = nil
			a.free = append(a.free, uint32(i))
		}
	}
	a.live = 0
}
