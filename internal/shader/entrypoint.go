package shader

import (
	"fmt"
	"os"
	"regexp"
)

// entrypointPattern matches a stage annotation followed by a return type, a
// function name and the opening parenthesis of the parameter list, e.g.
//
//	[[shader("fragment")]] float4 main(
//
// It is a syntactic heuristic, not a parse. Unusual formatting (comments
// between the annotation and the signature, qualified return types) is not
// recognised and such files are treated as includes. Identifiers may contain
// any Unicode letter or digit.
var entrypointPattern = regexp.MustCompile(`\[\[shader\("(` + ident + `)"\)\]\]\s*` + ident + `\s+(` + ident + `)\s*\(`)

const ident = `[\p{L}\p{N}_]+`

// Entrypoint is a single stage annotation found in a shader source.
type Entrypoint struct {
	Stage    string `json:"stage"`
	Function string `json:"function"`
}

// FindEntrypoints returns every non-overlapping entrypoint marker in source,
// in the order they appear.
func FindEntrypoints(source []byte) []Entrypoint {
	matches := entrypointPattern.FindAllSubmatch(source, -1)
	if len(matches) == 0 {
		return nil
	}

	entrypoints := make([]Entrypoint, 0, len(matches))
	for _, m := range matches {
		entrypoints = append(entrypoints, Entrypoint{
			Stage:    string(m[1]),
			Function: string(m[2]),
		})
	}
	return entrypoints
}

// HasEntrypoint reads the file at path and reports whether it contains at
// least one entrypoint marker. Files without one are shared includes.
func HasEntrypoint(path string) (bool, error) {
	entrypoints, err := readEntrypoints(path)
	if err != nil {
		return false, err
	}
	return len(entrypoints) > 0, nil
}

func readEntrypoints(path string) ([]Entrypoint, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read shader source %s: %w", path, err)
	}
	return FindEntrypoints(source), nil
}
