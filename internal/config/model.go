package config

// BuildFile is the unified, format-agnostic representation of a build file.
type BuildFile struct {
	// Path is the file the model was loaded from.
	Path string

	SourceRoot       string
	OutputRoot       string
	SourceExt        string
	ArtifactExt      string
	CreateOutputDirs bool

	Compiler CompilerSettings
	Notify   NotifySettings
}

// CompilerSettings holds the `compiler` block.
type CompilerSettings struct {
	Target       string
	Optimization string
	ExtraArgs    []string
}

// NotifySettings holds the `notify` block.
type NotifySettings struct {
	URL                string
	Namespace          string
	CompiledEvent      string
	FailedEvent        string
	InsecureSkipVerify bool
}
