package renderer

import (
	"fmt"
	"sort"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-tracks/internal/engine/renderer/shaders"
	"github.com/Faultbox/midgard-tracks/internal/engine/shader"
	"github.com/Faultbox/midgard-tracks/internal/track"
	"github.com/Faultbox/midgard-tracks/pkg/math"
)

// gpuMesh is one uploaded mesh slot.
type gpuMesh struct {
	vao, vbo, ebo uint32
	indexCount    int32

	src     *track.Mesh
	version uint64
}

// TrackRenderer keeps GPU copies of track meshes keyed by slot name.
type TrackRenderer struct {
	program *shader.Program
	log     *zap.Logger

	meshes map[string]*gpuMesh

	Surface [3]float32
	Marking [3]float32
	Ambient float32
}

// NewTrackRenderer compiles the track shader.
func NewTrackRenderer(log *zap.Logger) (*TrackRenderer, error) {
	program, err := shader.New(shaders.TrackVertexShader, shaders.TrackFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("track shader: %w", err)
	}

	tr := &TrackRenderer{
		program: program,
		log:     log,
		meshes:  make(map[string]*gpuMesh),
		Surface: [3]float32{0.47, 0.47, 0.5},
		Marking: [3]float32{0.94, 0.94, 0.9},
		Ambient: 0.35,
	}
	return tr, nil
}

// Upload replaces the GPU copy of slot id with mesh. Unchanged meshes are
// skipped; empty meshes remove the slot.
func (tr *TrackRenderer) Upload(id string, mesh *track.Mesh) {
	if existing, ok := tr.meshes[id]; ok && existing.src == mesh && existing.version == mesh.Version {
		return
	}
	tr.Remove(id)
	if len(mesh.Vertices) == 0 || len(mesh.Indices) == 0 {
		return
	}

	m := &gpuMesh{src: mesh, version: mesh.Version}
	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	vertexSize := int(unsafe.Sizeof(track.Vertex{}))
	gl.BufferData(gl.ARRAY_BUFFER, len(mesh.Vertices)*vertexSize, unsafe.Pointer(&mesh.Vertices[0]), gl.STATIC_DRAW)

	// Position
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, int32(vertexSize), 0)
	gl.EnableVertexAttribArray(0)
	// Normal
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, int32(vertexSize), 3*4)
	gl.EnableVertexAttribArray(1)
	// TexCoord
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, int32(vertexSize), 6*4)
	gl.EnableVertexAttribArray(2)

	gl.GenBuffers(1, &m.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(mesh.Indices)*4, unsafe.Pointer(&mesh.Indices[0]), gl.STATIC_DRAW)

	m.indexCount = int32(len(mesh.Indices))
	gl.BindVertexArray(0)

	tr.meshes[id] = m
}

// Remove frees slot id. Unknown slots are ignored.
func (tr *TrackRenderer) Remove(id string) {
	m, ok := tr.meshes[id]
	if !ok {
		return
	}
	gl.DeleteVertexArrays(1, &m.vao)
	gl.DeleteBuffers(1, &m.vbo)
	gl.DeleteBuffers(1, &m.ebo)
	delete(tr.meshes, id)
}

// Sync uploads every named mesh and removes slots no longer present.
func (tr *TrackRenderer) Sync(meshes []track.NamedMesh) {
	seen := make(map[string]bool, len(meshes))
	for _, nm := range meshes {
		seen[nm.Name] = true
		tr.Upload(nm.Name, nm.Mesh)
	}
	for id := range tr.meshes {
		if !seen[id] {
			tr.Remove(id)
		}
	}
}

// Count returns the number of uploaded slots.
func (tr *TrackRenderer) Count() int {
	return len(tr.meshes)
}

// Draw renders every uploaded slot.
func (tr *TrackRenderer) Draw(viewProj math.Mat4, lightDir [3]float32) {
	tr.program.Use()
	tr.program.SetMat4("uViewProj", (*[16]float32)(&viewProj))
	tr.program.SetVec3("uLightDir", lightDir)
	tr.program.SetVec3("uSurface", tr.Surface)
	tr.program.SetVec3("uMarking", tr.Marking)
	tr.program.SetFloat("uAmbient", tr.Ambient)

	ids := make([]string, 0, len(tr.meshes))
	for id := range tr.meshes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		m := tr.meshes[id]
		gl.BindVertexArray(m.vao)
		gl.DrawElements(gl.TRIANGLES, m.indexCount, gl.UNSIGNED_INT, nil)
	}
	gl.BindVertexArray(0)
}

// Destroy releases all GPU resources.
func (tr *TrackRenderer) Destroy() {
	for id := range tr.meshes {
		tr.Remove(id)
	}
	tr.program.Delete()
	tr.log.Debug("track renderer destroyed")
}
