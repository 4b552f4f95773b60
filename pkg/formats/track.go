package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Track record errors.
var (
	ErrInvalidTrackMagic       = errors.New("invalid track magic: expected 'TRKG'")
	ErrUnsupportedTrackVersion = errors.New("unsupported track version")
	ErrTruncatedTrackData      = errors.New("truncated track data")
	ErrTrackKindMismatch       = errors.New("track record kind mismatch")
	ErrTrackLengthMismatch     = errors.New("track data length does not match node count")
)

const (
	trackMagic      = "TRKG"
	trackHeaderSize = 12
	maxTrackNodes   = 1 << 20
)

// CurrentTrackVersion is the version written by Encode.
var CurrentTrackVersion = TrackVersion{Major: 1, Minor: 1}

// TrackVersion represents the record schema version.
type TrackVersion struct {
	Major uint8
	Minor uint8
}

// String returns the version as "Major.Minor".
func (v TrackVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// AtLeast reports whether v >= major.minor.
func (v TrackVersion) AtLeast(major, minor uint8) bool {
	return v.Major > major || (v.Major == major && v.Minor >= minor)
}

// TrackKind identifies which graph a record describes.
type TrackKind uint8

// Record kinds.
const (
	TrackKindCurve       TrackKind = 1
	TrackKindBifurcation TrackKind = 2
)

const (
	trackFlagClosed uint8 = 1 << 0

	bifurcationNodeCount = 4
	nodeRecordSizeV10    = 40
	nodeRecordSizeV11    = 64
)

// String returns a human-readable kind name.
func (k TrackKind) String() string {
	switch k {
	case TrackKindCurve:
		return "Curve"
	case TrackKindBifurcation:
		return "Bifurcation"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// Extension returns the file extension used for this kind.
func (k TrackKind) Extension() string {
	if k == TrackKindBifurcation {
		return ".bif"
	}
	return ".curve"
}

// NodeRecord is the persisted state of one node.
// Spline connectivity is never stored: node i connects to node i+1.
type NodeRecord struct {
	Position       [3]float32 `yaml:"position"`
	Rotation       [4]float32 `yaml:"rotation"` // x, y, z, w
	LeftCurvature  float32    `yaml:"left_curvature"`
	RightCurvature float32    `yaml:"right_curvature"`
	WidthModifier  float32    `yaml:"width_modifier"`

	// Handle offsets in the node's local space (since 1.1).
	FrontHandle [3]float32 `yaml:"front_handle"`
	BackHandle  [3]float32 `yaml:"back_handle"`
}

// nodeRecordV10 is the 1.0 node layout without handle offsets.
type nodeRecordV10 struct {
	Position       [3]float32
	Rotation       [4]float32
	LeftCurvature  float32
	RightCurvature float32
	WidthModifier  float32
}

// TrackRecord is a parsed curve or bifurcation record.
type TrackRecord struct {
	Version TrackVersion `yaml:"version"`
	Kind    TrackKind    `yaml:"kind"`
	Closed  bool         `yaml:"closed"`
	Nodes   []NodeRecord `yaml:"nodes"`

	// HasHandles is false for 1.0 records; loaders substitute default handles.
	HasHandles bool `yaml:"-"`
}

// ParseTrack parses a track record from raw bytes.
func ParseTrack(data []byte) (*TrackRecord, error) {
	if len(data) < trackHeaderSize {
		return nil, ErrTruncatedTrackData
	}

	if string(data[0:4]) != trackMagic {
		return nil, ErrInvalidTrackMagic
	}

	// Version is stored as [minor, major]
	version := TrackVersion{
		Major: data[5],
		Minor: data[4],
	}
	if version.Major != 1 || version.Minor > CurrentTrackVersion.Minor {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedTrackVersion, version)
	}

	kind := TrackKind(data[6])
	if kind != TrackKindCurve && kind != TrackKindBifurcation {
		return nil, fmt.Errorf("%w: %s", ErrTrackKindMismatch, kind)
	}
	flags := data[7]
	count := binary.LittleEndian.Uint32(data[8:12])
	if count > maxTrackNodes {
		return nil, fmt.Errorf("invalid track node count: %d", count)
	}

	rec := &TrackRecord{
		Version:    version,
		Kind:       kind,
		Closed:     flags&trackFlagClosed != 0,
		Nodes:      make([]NodeRecord, count),
		HasHandles: version.AtLeast(1, 1),
	}

	nodeSize := nodeRecordSizeV10
	if rec.HasHandles {
		nodeSize = nodeRecordSizeV11
	}
	want := trackHeaderSize + int(count)*nodeSize
	if len(data) < want {
		return nil, fmt.Errorf("%w: need %d bytes for %d nodes, have %d", ErrTruncatedTrackData, want, count, len(data))
	}
	if len(data) > want {
		return nil, fmt.Errorf("%w: %d trailing bytes after %d nodes", ErrTrackLengthMismatch, len(data)-want, count)
	}

	r := bytes.NewReader(data[trackHeaderSize:])
	for i := range rec.Nodes {
		if err := parseNodeRecord(r, &rec.Nodes[i], rec.HasHandles); err != nil {
			return nil, fmt.Errorf("parsing node %d: %w", i, err)
		}
	}

	return rec, nil
}

func parseNodeRecord(r io.Reader, n *NodeRecord, withHandles bool) error {
	if withHandles {
		if err := binary.Read(r, binary.LittleEndian, n); err != nil {
			return fmt.Errorf("%w: %v", ErrTruncatedTrackData, err)
		}
		return nil
	}

	var old nodeRecordV10
	if err := binary.Read(r, binary.LittleEndian, &old); err != nil {
		return fmt.Errorf("%w: %v", ErrTruncatedTrackData, err)
	}
	n.Position = old.Position
	n.Rotation = old.Rotation
	n.LeftCurvature = old.LeftCurvature
	n.RightCurvature = old.RightCurvature
	n.WidthModifier = old.WidthModifier
	return nil
}

// Encode serializes the record using CurrentTrackVersion.
func (rec *TrackRecord) Encode() ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Grow(trackHeaderSize + len(rec.Nodes)*nodeRecordSizeV11)

	buf.WriteString(trackMagic)
	buf.WriteByte(CurrentTrackVersion.Minor)
	buf.WriteByte(CurrentTrackVersion.Major)
	buf.WriteByte(byte(rec.Kind))

	var flags uint8
	if rec.Closed {
		flags |= trackFlagClosed
	}
	buf.WriteByte(flags)

	if err := binary.Write(buf, binary.LittleEndian, uint32(len(rec.Nodes))); err != nil {
		return nil, err
	}
	for i := range rec.Nodes {
		if err := binary.Write(buf, binary.LittleEndian, &rec.Nodes[i]); err != nil {
			return nil, fmt.Errorf("writing node %d: %w", i, err)
		}
	}

	return buf.Bytes(), nil
}

// ParseTrackFile parses a track record from disk.
func ParseTrackFile(path string) (*TrackRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading track file: %w", err)
	}
	return ParseTrack(data)
}

// WriteTrackFile encodes rec and writes it to path, creating parent directories.
func WriteTrackFile(path string, rec *TrackRecord) error {
	data, err := rec.Encode()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ValidateBifurcation checks the fixed four-node topology.
func (rec *TrackRecord) ValidateBifurcation() error {
	if rec.Kind != TrackKindBifurcation {
		return fmt.Errorf("%w: got %s, want %s", ErrTrackKindMismatch, rec.Kind, TrackKindBifurcation)
	}
	if len(rec.Nodes) != bifurcationNodeCount {
		return fmt.Errorf("bifurcation record has %d nodes, want %d", len(rec.Nodes), bifurcationNodeCount)
	}
	return nil
}
