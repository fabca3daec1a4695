package shader

// Default layout and compiler settings.
const (
	DefaultSourceRoot   = "assets/shaders/slang"
	DefaultOutputRoot   = "assets/shaders/spirv"
	DefaultSourceExt    = ".slang"
	DefaultArtifactExt  = ".spv"
	DefaultTarget       = "spirv"
	DefaultOptimization = "-O3"
)

// entrypointNameFlag makes the compiler keep source function names for the
// compiled entry points instead of renaming them to "main".
const entrypointNameFlag = "-fvk-use-entrypoint-name"

// Options configures a Driver.
type Options struct {
	SourceRoot  string
	OutputRoot  string
	SourceExt   string
	ArtifactExt string

	Target       string
	Optimization string
	// ExtraArgs are appended after the fixed compiler flags.
	ExtraArgs []string

	// CreateOutputDirs creates the parent directory of each artifact before
	// invoking the compiler. When false a missing directory is left for the
	// compiler to report.
	CreateOutputDirs bool
}

// withDefaults returns a copy of o with empty fields set to their defaults.
func (o Options) withDefaults() Options {
	if o.SourceRoot == "" {
		o.SourceRoot = DefaultSourceRoot
	}
	if o.OutputRoot == "" {
		o.OutputRoot = DefaultOutputRoot
	}
	if o.SourceExt == "" {
		o.SourceExt = DefaultSourceExt
	}
	if o.ArtifactExt == "" {
		o.ArtifactExt = DefaultArtifactExt
	}
	if o.Target == "" {
		o.Target = DefaultTarget
	}
	if o.Optimization == "" {
		o.Optimization = DefaultOptimization
	}
	return o
}

// Args builds the compiler argument list for one source file:
//
//	<source> -o <output> -target <target> <optimization> -fvk-use-entrypoint-name [extra...]
func (o Options) Args(source, output string) []string {
	o = o.withDefaults()
	args := []string{
		source,
		"-o", output,
		"-target", o.Target,
		o.Optimization,
		entrypointNameFlag,
	}
	return append(args, o.ExtraArgs...)
}
