package track

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/midgard-tracks/pkg/formats"
	"github.com/Faultbox/midgard-tracks/pkg/math"
)

func TestFileStoreMissing(t *testing.T) {
	s := NewFileStore(t.TempDir())

	if _, err := s.Load("nothing", formats.TrackKindCurve); !errors.Is(err, ErrNoRecord) {
		t.Errorf("Load = %v, want ErrNoRecord", err)
	}
	if _, err := s.LoadIndex(); !errors.Is(err, ErrNoRecord) {
		t.Errorf("LoadIndex = %v, want ErrNoRecord", err)
	}
}

func TestFileStoreCorrupt(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)
	if err := os.WriteFile(filepath.Join(dir, "bad.curve"), []byte("not a track file"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := s.Load("bad", formats.TrackKindCurve)
	if !errors.Is(err, ErrMalformedRecord) {
		t.Errorf("Load = %v, want ErrMalformedRecord", err)
	}
	if !errors.Is(err, formats.ErrInvalidTrackMagic) {
		t.Errorf("Load = %v, want wrapped ErrInvalidTrackMagic", err)
	}
}

func TestFileStoreTrailingNodeData(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)

	nodes := make([]*Node, 5)
	for i := range nodes {
		n := NewNode(math.Vec3{Z: float32(i) * 10}, math.QuatIdentity(), 3)
		nodes[i] = &n
	}
	data, err := newRecord(formats.TrackKindBifurcation, false, nodes).Encode()
	if err != nil {
		t.Fatal(err)
	}
	data[8] = 4 // header claims four nodes, five follow
	if err := os.WriteFile(s.Path("bif-0", formats.TrackKindBifurcation), data, 0o644); err != nil {
		t.Fatal(err)
	}

	_, err = s.Load("bif-0", formats.TrackKindBifurcation)
	if !errors.Is(err, ErrMalformedRecord) || !errors.Is(err, formats.ErrTrackLengthMismatch) {
		t.Errorf("Load = %v, want ErrMalformedRecord wrapping ErrTrackLengthMismatch", err)
	}
}

func TestFileStoreSaveLoadList(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "nested"))
	rec := &formats.TrackRecord{
		Version:    formats.CurrentTrackVersion,
		Kind:       formats.TrackKindCurve,
		HasHandles: true,
		Nodes: []formats.NodeRecord{
			{Rotation: [4]float32{0, 0, 0, 1}, WidthModifier: 1},
			{Position: [3]float32{1, 2, 3}, Rotation: [4]float32{0, 0, 0, 1}, WidthModifier: 1.5},
		},
	}
	for _, name := range []string{"b", "a"} {
		if err := s.Save(name, rec); err != nil {
			t.Fatalf("Save(%s): %v", name, err)
		}
	}

	got, err := s.Load("a", formats.TrackKindCurve)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Nodes) != 2 || got.Nodes[1].Position != [3]float32{1, 2, 3} || got.Nodes[1].WidthModifier != 1.5 {
		t.Errorf("loaded %+v", got.Nodes)
	}

	if _, err := s.Load("a", formats.TrackKindBifurcation); !errors.Is(err, ErrNoRecord) {
		t.Errorf("Load with other kind = %v, want ErrNoRecord", err)
	}

	names, err := s.List(formats.TrackKindCurve)
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("List = %v, want [a b]", names)
	}
}

func TestFileStoreIndex(t *testing.T) {
	s := NewFileStore(t.TempDir())
	idx := &Index{
		NextCurveID:       3,
		NextBifurcationID: 1,
		Curves:            []CurveEntry{{Name: "curve-0", Rotation: [4]float32{0, 0, 0, 1}}},
		Bifurcations: []BifurcationIndexEntry{{
			Name:      "bif-0",
			Rotation:  [4]float32{0, 0, 0, 1},
			NextRight: "curve-0",
		}},
	}
	if err := s.SaveIndex(idx); err != nil {
		t.Fatalf("SaveIndex: %v", err)
	}
	got, err := s.LoadIndex()
	if err != nil {
		t.Fatalf("LoadIndex: %v", err)
	}
	if got.NextCurveID != 3 || len(got.Curves) != 1 || got.Bifurcations[0].NextRight != "curve-0" {
		t.Errorf("LoadIndex = %+v", got)
	}
	if got.Bifurcations[0].NextLeft != "" {
		t.Errorf("NextLeft = %q, want empty", got.Bifurcations[0].NextLeft)
	}
}

func TestMemoryStoreCopies(t *testing.T) {
	s := NewMemoryStore()
	rec := &formats.TrackRecord{Kind: formats.TrackKindCurve, Nodes: make([]formats.NodeRecord, 2)}
	if err := s.Save("c", rec); err != nil {
		t.Fatal(err)
	}
	rec.Nodes[0].WidthModifier = 9

	got, err := s.Load("c", formats.TrackKindCurve)
	if err != nil {
		t.Fatal(err)
	}
	if got.Nodes[0].WidthModifier == 9 {
		t.Error("store should keep its own copy")
	}
	if _, err := s.Load("c", formats.TrackKindBifurcation); !errors.Is(err, ErrNoRecord) {
		t.Errorf("Load other kind = %v, want ErrNoRecord", err)
	}
}
