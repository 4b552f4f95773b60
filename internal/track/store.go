package track

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/midgard-tracks/pkg/formats"
	"github.com/Faultbox/midgard-tracks/pkg/math"
)

// indexFile is the track index name inside a FileStore directory.
const indexFile = "track.yaml"

// Store persists node records by object name.
type Store interface {
	Save(name string, rec *formats.TrackRecord) error
	// Load returns ErrNoRecord when nothing was saved under name.
	Load(name string, kind formats.TrackKind) (*formats.TrackRecord, error)
	SaveIndex(idx *Index) error
	// LoadIndex returns ErrNoRecord when no index was saved.
	LoadIndex() (*Index, error)
}

// Index lists the objects of a track and their connections.
type Index struct {
	NextCurveID       int                     `yaml:"next_curve_id"`
	NextBifurcationID int                     `yaml:"next_bifurcation_id"`
	Curves            []CurveEntry            `yaml:"curves"`
	Bifurcations      []BifurcationIndexEntry `yaml:"bifurcations"`
}

// CurveEntry describes one curve in the index.
type CurveEntry struct {
	Name     string     `yaml:"name"`
	Position [3]float32 `yaml:"position"`
	Rotation [4]float32 `yaml:"rotation"`
}

// BifurcationIndexEntry describes one bifurcation in the index.
type BifurcationIndexEntry struct {
	Name      string     `yaml:"name"`
	Position  [3]float32 `yaml:"position"`
	Rotation  [4]float32 `yaml:"rotation"`
	NextRight string     `yaml:"next_right,omitempty"`
	NextLeft  string     `yaml:"next_left,omitempty"`
}

// FileStore keeps one record file per object in Dir.
type FileStore struct {
	Dir string
}

// NewFileStore creates a store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

// Path returns the record path for name.
func (s *FileStore) Path(name string, kind formats.TrackKind) string {
	return filepath.Join(s.Dir, name+kind.Extension())
}

// Save implements Store.
func (s *FileStore) Save(name string, rec *formats.TrackRecord) error {
	return formats.WriteTrackFile(s.Path(name, rec.Kind), rec)
}

// Load implements Store.
func (s *FileStore) Load(name string, kind formats.TrackKind) (*formats.TrackRecord, error) {
	path := s.Path(name, kind)
	rec, err := formats.ParseTrackFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoRecord, path)
		}
		return nil, fmt.Errorf("%w: %w", ErrMalformedRecord, err)
	}
	if rec.Kind != kind {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformedRecord, path, formats.ErrTrackKindMismatch)
	}
	return rec, nil
}

// List returns the names of saved records of kind, sorted.
func (s *FileStore) List(kind formats.TrackKind) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.Dir, "*"+kind.Extension()))
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(filepath.Base(m), kind.Extension()))
	}
	sort.Strings(names)
	return names, nil
}

// SaveIndex implements Store.
func (s *FileStore) SaveIndex(idx *Index) error {
	data, err := yaml.Marshal(idx)
	if err != nil {
		return fmt.Errorf("marshaling index: %w", err)
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.Dir, indexFile), data, 0o644); err != nil {
		return fmt.Errorf("writing index: %w", err)
	}
	return nil
}

// LoadIndex implements Store.
func (s *FileStore) LoadIndex() (*Index, error) {
	path := filepath.Join(s.Dir, indexFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoRecord, path)
		}
		return nil, fmt.Errorf("reading index: %w", err)
	}
	var idx Index
	if err := yaml.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("%w: parsing index: %w", ErrMalformedRecord, err)
	}
	return &idx, nil
}

// MemoryStore keeps records in memory.
type MemoryStore struct {
	records map[string]*formats.TrackRecord
	index   *Index
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*formats.TrackRecord)}
}

func memoryKey(name string, kind formats.TrackKind) string {
	return name + kind.Extension()
}

// Save implements Store. The record is copied.
func (s *MemoryStore) Save(name string, rec *formats.TrackRecord) error {
	c := *rec
	c.Nodes = append([]formats.NodeRecord(nil), rec.Nodes...)
	s.records[memoryKey(name, rec.Kind)] = &c
	return nil
}

// Load implements Store.
func (s *MemoryStore) Load(name string, kind formats.TrackKind) (*formats.TrackRecord, error) {
	rec, ok := s.records[memoryKey(name, kind)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoRecord, name)
	}
	c := *rec
	c.Nodes = append([]formats.NodeRecord(nil), rec.Nodes...)
	return &c, nil
}

// SaveIndex implements Store.
func (s *MemoryStore) SaveIndex(idx *Index) error {
	c := *idx
	s.index = &c
	return nil
}

// LoadIndex implements Store.
func (s *MemoryStore) LoadIndex() (*Index, error) {
	if s.index == nil {
		return nil, ErrNoRecord
	}
	c := *s.index
	return &c, nil
}

func newRecord(kind formats.TrackKind, closed bool, nodes []*Node) *formats.TrackRecord {
	rec := &formats.TrackRecord{
		Version:    formats.CurrentTrackVersion,
		Kind:       kind,
		Closed:     closed,
		Nodes:      make([]formats.NodeRecord, len(nodes)),
		HasHandles: true,
	}
	for i, n := range nodes {
		rec.Nodes[i] = formats.NodeRecord{
			Position:       n.Position.Array(),
			Rotation:       quatArray(n.Rotation),
			LeftCurvature:  n.LeftCurvature,
			RightCurvature: n.RightCurvature,
			WidthModifier:  n.WidthModifier,
			FrontHandle:    n.FrontHandle.Array(),
			BackHandle:     n.BackHandle.Array(),
		}
	}
	return rec
}

// nodeFromRecord restores a node. Records without handles get straight
// handles of handleLength.
func nodeFromRecord(r formats.NodeRecord, hasHandles bool, handleLength float32) Node {
	n := NewNode(vec3(r.Position), quat(r.Rotation), handleLength)
	n.LeftCurvature = r.LeftCurvature
	n.RightCurvature = r.RightCurvature
	n.WidthModifier = r.WidthModifier
	if hasHandles {
		n.FrontHandle = vec3(r.FrontHandle)
		n.BackHandle = vec3(r.BackHandle)
	}
	return n
}

func vec3(a [3]float32) math.Vec3 {
	return math.Vec3{X: a[0], Y: a[1], Z: a[2]}
}

func quat(a [4]float32) math.Quat {
	q := math.Quat{X: a[0], Y: a[1], Z: a[2], W: a[3]}
	if q.X == 0 && q.Y == 0 && q.Z == 0 && q.W == 0 {
		return math.QuatIdentity()
	}
	return q.Normalize()
}

func quatArray(q math.Quat) [4]float32 {
	return [4]float32{q.X, q.Y, q.Z, q.W}
}

func poseFromArrays(p [3]float32, r [4]float32) Pose {
	return Pose{Position: vec3(p), Rotation: quat(r)}
}
