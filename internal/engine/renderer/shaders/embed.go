// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// TrackVertexShader is the vertex shader for track meshes.
//
//go:embed track.vert
var TrackVertexShader string

// TrackFragmentShader is the fragment shader for track meshes.
//
//go:embed track.frag
var TrackFragmentShader string
