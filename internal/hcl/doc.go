// Package hcl provides the HCL implementation of the config.Loader interface.
// It parses a build file, evaluates its expressions against a small function
// library (currently just env), and translates the result into the
// format-agnostic config.BuildFile.
package hcl
