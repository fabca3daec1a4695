// Package shader implements the shader build driver. It discovers shader
// sources under a source root, decides which of them carry a compilable
// entrypoint, and hands each of those to an external compiler, mirroring the
// source tree under an output root.
//
// A batch is strictly sequential and fail-fast: the first compiler failure
// stops the run and is returned to the caller as a *CompileError.
package shader
