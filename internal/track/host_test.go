package track

import "testing"

func TestRegistrySpawnDestroy(t *testing.T) {
	r := NewRegistry()
	root := r.Spawn(KindCurve, NoObject, IdentityPose())
	child := r.Spawn(KindSpline, root, IdentityPose())
	grandchild := r.Spawn(KindMesh, child, IdentityPose())
	other := r.Spawn(KindNode, root, IdentityPose())

	if got := r.Children(root); len(got) != 2 || got[0] != child || got[1] != other {
		t.Errorf("Children(root) = %v, want [%d %d]", got, child, other)
	}

	if !r.Destroy(child) {
		t.Fatal("Destroy should succeed")
	}
	if r.Alive(grandchild) {
		t.Error("Destroy should remove descendants")
	}
	if r.Destroy(child) {
		t.Error("second Destroy should report false")
	}
	if r.Destroy(grandchild) {
		t.Error("Destroy of a removed descendant should report false")
	}
	if r.Len() != 2 {
		t.Errorf("Len = %d, want 2", r.Len())
	}
	if r.Count(KindNode) != 1 {
		t.Errorf("Count(node) = %d, want 1", r.Count(KindNode))
	}
	if r.Destroy(NoObject) {
		t.Error("Destroy(NoObject) should report false")
	}
}

func TestObjectKindString(t *testing.T) {
	tests := map[ObjectKind]string{
		KindCurve:       "curve",
		KindBifurcation: "bifurcation",
		KindNode:        "node",
		KindSpline:      "spline",
		KindMesh:        "mesh",
		ObjectKind(99):  "unknown",
	}
	for k, want := range tests {
		if got := k.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", k, got, want)
		}
	}
}
