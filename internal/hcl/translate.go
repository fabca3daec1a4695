package hcl

import (
	"context"
	"fmt"

	"github.com/vk/slangbuild/internal/config"
)

// translate converts the HCL-specific schema into the agnostic model.
func (l *Loader) translate(ctx context.Context, path string, root *fileRoot) (*config.BuildFile, error) {
	file := &config.BuildFile{
		Path:             path,
		SourceRoot:       root.SourceRoot,
		OutputRoot:       root.OutputRoot,
		SourceExt:        root.SourceExt,
		ArtifactExt:      root.ArtifactExt,
		CreateOutputDirs: root.CreateOutputDirs,
	}

	if c := root.Compiler; c != nil {
		extraArgs, err := decodeArgs(ctx, c.ExtraArgs, l.evalContext())
		if err != nil {
			return nil, fmt.Errorf("in %s, compiler.extra_args: %w", path, err)
		}
		file.Compiler = config.CompilerSettings{
			Target:       c.Target,
			Optimization: c.Optimization,
			ExtraArgs:    extraArgs,
		}
	}

	if n := root.Notify; n != nil {
		file.Notify = config.NotifySettings{
			URL:                n.URL,
			Namespace:          n.Namespace,
			CompiledEvent:      n.Event,
			FailedEvent:        n.FailedEvent,
			InsecureSkipVerify: n.InsecureSkipVerify,
		}
	}

	return file, nil
}
