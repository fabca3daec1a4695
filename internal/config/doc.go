// Package config defines the format-agnostic model of a build file together
// with the Loader interface used to read it.
//
// Every field of BuildFile is optional. Empty values mean "not set" and are
// resolved against command-line flags and built-in defaults by the app
// package. Concrete loaders, such as the HCL one, live in separate packages.
package config
