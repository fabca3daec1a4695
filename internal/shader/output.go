package shader

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DeriveOutputPath maps sourcePath, which must live under sourceRoot, to the
// same relative location under outputRoot with its extension replaced by ext.
//
//	DeriveOutputPath("assets/shaders/slang", "assets/shaders/spirv",
//		"assets/shaders/slang/foo/bar.slang", ".spv")
//	// assets/shaders/spirv/foo/bar.spv
func DeriveOutputPath(sourceRoot, outputRoot, sourcePath, ext string) (string, error) {
	rel, err := filepath.Rel(sourceRoot, sourcePath)
	if err != nil {
		return "", fmt.Errorf("cannot relate %s to source root %s: %w", sourcePath, sourceRoot, err)
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("shader source %s is not under source root %s", sourcePath, sourceRoot)
	}

	rel = strings.TrimSuffix(rel, suffix(filepath.Base(rel))) + ext
	return filepath.Join(outputRoot, rel), nil
}

// suffix returns the final extension of name. A leading dot does not start
// an extension and neither does a trailing one, so ".slang" has none.
func suffix(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 || i == len(name)-1 {
		return ""
	}
	return name[i:]
}
