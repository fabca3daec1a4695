// Package app contains the core application logic. It resolves the effective
// configuration from flags, the environment and an optional build file, and
// runs the shader build driver once or, in watch mode, on every change to
// the source tree.
package app
