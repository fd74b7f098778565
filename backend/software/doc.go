// Package software implements gpu.Device on the CPU.
//
// The device keeps float RGBA textures with row 0 at the bottom, the way
// OpenGL lays out framebuffers, and samples them with clamp-to-edge
// addressing. Triangles are rasterized at pixel centers with a top-left
// fill rule, so the two triangles of a quad never touch a pixel twice.
//
// Programs are accepted as GLSL. The device preprocesses each source with
// the subset of the C preprocessor used by the effect library, reads the
// preset constants that survive, and runs a Go kernel for the pass the
// fragment entry point calls. A source whose active branch hits #error, or
// that lacks a required constant, fails to compile just as it would on a
// GL driver.
//
// The device registers itself with package backend as "software".
package software
