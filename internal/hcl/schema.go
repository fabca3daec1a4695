package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot is the top-level structure of a build file.
type fileRoot struct {
	SourceRoot       string         `hcl:"source_root,optional"`
	OutputRoot       string         `hcl:"output_root,optional"`
	SourceExt        string         `hcl:"source_ext,optional"`
	ArtifactExt      string         `hcl:"artifact_ext,optional"`
	CreateOutputDirs bool           `hcl:"create_output_dirs,optional"`
	Compiler         *compilerBlock `hcl:"compiler,block"`
	Notify           *notifyBlock   `hcl:"notify,block"`
}

// compilerBlock configures the external compiler invocation.
type compilerBlock struct {
	Target       string `hcl:"target,optional"`
	Optimization string `hcl:"optimization,optional"`
	// ExtraArgs is either a single shell-quoted string or a list of strings.
	ExtraArgs hcl.Expression `hcl:"extra_args,optional"`
}

// notifyBlock configures the socket.io build event publisher.
type notifyBlock struct {
	URL                string `hcl:"url"`
	Namespace          string `hcl:"namespace,optional"`
	Event              string `hcl:"event,optional"`
	FailedEvent        string `hcl:"failed_event,optional"`
	InsecureSkipVerify bool   `hcl:"insecure_skip_verify,optional"`
}
