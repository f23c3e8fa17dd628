package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/xyproto/env/v2"
)

const (
	ExitSuccess           = 0
	ExitBuildFailure      = 1
	ExitInvalidInvocation = 2
	ExitConfigError       = 3
	ExitInternalError     = 4
)

// Invocation is the fully canonicalized description of a build run. All
// engine logic consumes this struct; nothing downstream reads flags or the
// environment again.
type Invocation struct {
	// Target is the build target triple.
	Target string

	// OutDir is the build output area for objects and the archive.
	OutDir string

	// AsmDirs are the assembly source directories, in configuration order.
	AsmDirs []string

	// BinaryFiles are the raw binary files to package, in configuration
	// order.
	BinaryFiles []string

	// ArchiveName is the linker-visible library name (lib<name>.a).
	ArchiveName string

	// Jobs bounds concurrent toolchain processes; 0 means NumCPU.
	Jobs int

	// TracePath, when set, receives the canonical build trace as JSON.
	TracePath string
}

// InvocationError is a parse/validation failure with its semantic exit
// code attached.
type InvocationError struct {
	ExitCode int
	Message  string
}

func (e *InvocationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func invalidInvocationf(format string, args ...any) error {
	return &InvocationError{ExitCode: ExitInvalidInvocation, Message: fmt.Sprintf(format, args...)}
}

// ParseInvocation parses CLI flags into a canonical Invocation.
//
// Flags win over the environment; the environment carries the original
// build-pipeline contract (TARGET, OUT_DIR, MASON_ASM_DIRS, MASON_FILES)
// so the tool drops into an existing pipeline without flag plumbing.
// List-valued settings are colon-separated, preserving order.
func ParseInvocation(args []string) (Invocation, error) {
	fs := flag.NewFlagSet("mason", flag.ContinueOnError)
	fs.SetOutput(io.Discard) // parsing errors are returned, not printed

	var target string
	var outDir string
	var asmDirs string
	var binFiles string
	var archiveName string
	var jobs int
	var tracePath string

	fs.StringVar(&target, "target", "", "Build target triple. Falls back to $TARGET.")
	fs.StringVar(&outDir, "out-dir", "", "Build output directory. Falls back to $OUT_DIR.")
	fs.StringVar(&asmDirs, "asm-dirs", "", "Colon-separated assembly source directories. Falls back to $MASON_ASM_DIRS.")
	fs.StringVar(&binFiles, "bin-files", "", "Colon-separated binary files to package. Falls back to $MASON_FILES.")
	fs.StringVar(&archiveName, "archive", "mason", "Linker-visible archive name (lib<name>.a).")
	fs.IntVar(&jobs, "jobs", 0, "Max concurrent toolchain processes (0 = number of CPUs).")
	fs.StringVar(&tracePath, "trace", "", "Write the canonical build trace to this path (optional).")

	if err := fs.Parse(args); err != nil {
		return Invocation{}, invalidInvocationf("%v", err)
	}
	if fs.NArg() != 0 {
		return Invocation{}, invalidInvocationf("unexpected positional arguments: %q", strings.Join(fs.Args(), " "))
	}

	if target == "" {
		target = env.Str("TARGET")
	}
	if outDir == "" {
		outDir = env.Str("OUT_DIR")
	}
	if asmDirs == "" {
		asmDirs = env.Str("MASON_ASM_DIRS")
	}
	if binFiles == "" {
		binFiles = env.Str("MASON_FILES")
	}

	if target == "" {
		return Invocation{}, invalidInvocationf("--target is required (or set TARGET)")
	}
	if outDir == "" {
		return Invocation{}, invalidInvocationf("--out-dir is required (or set OUT_DIR)")
	}
	if archiveName == "" {
		return Invocation{}, invalidInvocationf("--archive must not be empty")
	}
	if jobs < 0 {
		return Invocation{}, invalidInvocationf("--jobs must be >= 0 (got %d)", jobs)
	}

	return Invocation{
		Target:      target,
		OutDir:      outDir,
		AsmDirs:     splitList(asmDirs),
		BinaryFiles: splitList(binFiles),
		ArchiveName: archiveName,
		Jobs:        jobs,
		TracePath:   tracePath,
	}, nil
}

// splitList splits a colon-separated path list, dropping empty elements
// but preserving order.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ":") {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
