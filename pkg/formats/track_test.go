package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func testRecord(kind TrackKind, closed bool, n int) *TrackRecord {
	rec := &TrackRecord{Kind: kind, Closed: closed}
	for i := 0; i < n; i++ {
		rec.Nodes = append(rec.Nodes, NodeRecord{
			Position:       [3]float32{float32(i), 0.5, float32(i) * 2},
			Rotation:       [4]float32{0, 0.38268343, 0, 0.9238795},
			LeftCurvature:  0.25,
			RightCurvature: 0.75,
			WidthModifier:  1 + float32(i)/10,
			FrontHandle:    [3]float32{0, 0, 3},
			BackHandle:     [3]float32{0, 0, -3},
		})
	}
	return rec
}

func TestTrackRecordRoundTrip(t *testing.T) {
	rec := testRecord(TrackKindCurve, true, 5)

	data, err := rec.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if want := trackHeaderSize + 5*nodeRecordSizeV11; len(data) != want {
		t.Errorf("encoded size = %d, want %d", len(data), want)
	}

	got, err := ParseTrack(data)
	if err != nil {
		t.Fatalf("ParseTrack failed: %v", err)
	}

	if got.Version != CurrentTrackVersion {
		t.Errorf("expected version %s, got %s", CurrentTrackVersion, got.Version)
	}
	if got.Kind != TrackKindCurve {
		t.Errorf("expected kind Curve, got %s", got.Kind)
	}
	if !got.Closed {
		t.Error("expected closed flag to survive")
	}
	if !got.HasHandles {
		t.Error("expected 1.1 record to carry handles")
	}
	if len(got.Nodes) != len(rec.Nodes) {
		t.Fatalf("expected %d nodes, got %d", len(rec.Nodes), len(got.Nodes))
	}
	for i := range rec.Nodes {
		if got.Nodes[i] != rec.Nodes[i] {
			t.Errorf("node %d: got %+v, want %+v", i, got.Nodes[i], rec.Nodes[i])
		}
	}
}

func TestParseTrack_Version10(t *testing.T) {
	buf := new(bytes.Buffer)
	buf.WriteString("TRKG")
	buf.WriteByte(0) // minor
	buf.WriteByte(1) // major
	buf.WriteByte(byte(TrackKindCurve))
	buf.WriteByte(0)
	binary.Write(buf, binary.LittleEndian, uint32(2))
	for i := 0; i < 2; i++ {
		binary.Write(buf, binary.LittleEndian, nodeRecordV10{
			Position:      [3]float32{0, 0, float32(i) * 10},
			Rotation:      [4]float32{0, 0, 0, 1},
			WidthModifier: 1,
		})
	}

	rec, err := ParseTrack(buf.Bytes())
	if err != nil {
		t.Fatalf("ParseTrack failed: %v", err)
	}
	if rec.HasHandles {
		t.Error("1.0 record should not report handles")
	}
	if rec.Nodes[1].Position[2] != 10 {
		t.Errorf("expected second node z=10, got %v", rec.Nodes[1].Position[2])
	}
}

func TestParseTrack_Errors(t *testing.T) {
	valid, err := testRecord(TrackKindBifurcation, false, 4).Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	badVersion := append([]byte(nil), valid...)
	badVersion[5] = 7

	badKind := append([]byte(nil), valid...)
	badKind[6] = 9

	// Five encoded nodes behind a header that declares four.
	extra, err := testRecord(TrackKindBifurcation, false, 5).Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	extra[8] = 4

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrTruncatedTrackData},
		{"bad magic", append([]byte("NOPE"), valid[4:]...), ErrInvalidTrackMagic},
		{"bad version", badVersion, ErrUnsupportedTrackVersion},
		{"bad kind", badKind, ErrTrackKindMismatch},
		{"truncated nodes", valid[:len(valid)-10], ErrTruncatedTrackData},
		{"trailing node data", extra, ErrTrackLengthMismatch},
		{"trailing garbage", append(append([]byte(nil), valid...), 0xff), ErrTrackLengthMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTrack(tt.data)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestValidateBifurcation(t *testing.T) {
	if err := testRecord(TrackKindBifurcation, false, 4).ValidateBifurcation(); err != nil {
		t.Errorf("four-node bifurcation should validate: %v", err)
	}
	if err := testRecord(TrackKindBifurcation, false, 3).ValidateBifurcation(); err == nil {
		t.Error("three-node bifurcation should fail validation")
	}
	if err := testRecord(TrackKindCurve, false, 4).ValidateBifurcation(); !errors.Is(err, ErrTrackKindMismatch) {
		t.Errorf("curve record should be a kind mismatch, got %v", err)
	}
}

func TestWriteTrackFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "loop.curve")
	rec := testRecord(TrackKindCurve, false, 3)

	if err := WriteTrackFile(path, rec); err != nil {
		t.Fatalf("WriteTrackFile failed: %v", err)
	}
	got, err := ParseTrackFile(path)
	if err != nil {
		t.Fatalf("ParseTrackFile failed: %v", err)
	}
	if len(got.Nodes) != 3 {
		t.Errorf("expected 3 nodes, got %d", len(got.Nodes))
	}
}

func TestWriteOBJ(t *testing.T) {
	quad := OBJMesh{
		Name:      "quad",
		Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 0, 1}, {1, 0, 1}},
		Normals:   [][3]float32{{0, 1, 0}, {0, 1, 0}, {0, 1, 0}, {0, 1, 0}},
		UVs:       [][2]float32{{0, 0}, {1, 0}, {0, 1}, {1, 1}},
		Indices:   []uint32{0, 2, 1, 1, 2, 3},
	}

	var buf bytes.Buffer
	if err := WriteOBJ(&buf, []OBJMesh{quad, quad}); err != nil {
		t.Fatalf("WriteOBJ failed: %v", err)
	}
	out := buf.String()

	if n := strings.Count(out, "\nv "); n != 8 {
		t.Errorf("expected 8 vertex lines, got %d", n)
	}
	if !strings.Contains(out, "f 1/1/1 3/3/3 2/2/2") {
		t.Error("first mesh faces should use 1-based indices")
	}
	if !strings.Contains(out, "f 5/5/5 7/7/7 6/6/6") {
		t.Error("second mesh faces should be offset by the first mesh's vertex count")
	}

	bad := quad
	bad.Indices = []uint32{0, 1}
	if err := WriteOBJ(&buf, []OBJMesh{bad}); err == nil {
		t.Error("expected error for partial triangle")
	}
}
