// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// SceneVertexShader transforms mesh vertices for both the shaded and id passes.
//
//go:embed scene.vert
var SceneVertexShader string

// SceneFragmentShader is the lit fragment shader for the visible frame.
//
//go:embed scene.frag
var SceneFragmentShader string

// IDFragmentShader writes the per-draw color unmodified.
//
//go:embed id.frag
var IDFragmentShader string

// LinesVertexShader is the vertex shader for overlay lines.
//
//go:embed lines.vert
var LinesVertexShader string

// LinesFragmentShader is the fragment shader for overlay lines.
//
//go:embed lines.frag
var LinesFragmentShader string
