package hcl

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/slangbuild/internal/config"
	"github.com/vk/slangbuild/internal/ctxlog"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct {
	lookupEnv func(string) (string, bool)
}

// NewLoader creates a new HCL build file loader whose env() function reads
// the process environment.
func NewLoader() *Loader {
	return NewLoaderWithEnv(os.LookupEnv)
}

// NewLoaderWithEnv creates a loader whose env() function uses lookup.
func NewLoaderWithEnv(lookup func(string) (string, bool)) *Loader {
	return &Loader{lookupEnv: lookup}
}

// Load parses and decodes the build file at path.
func (l *Loader) Load(ctx context.Context, path string) (*config.BuildFile, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path", path)

	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}

	var root fileRoot
	diags = gohcl.DecodeBody(hclFile.Body, l.evalContext(), &root)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}

	file, err := l.translate(ctx, path, &root)
	if err != nil {
		return nil, err
	}

	logger.Debug("HCL loading complete.", "source_root", file.SourceRoot, "output_root", file.OutputRoot, "notify", file.Notify.URL != "")
	return file, nil
}
