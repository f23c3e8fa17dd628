package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gookit/color"

	"mason/internal/core"
	"mason/internal/trace"
)

// Result is the outcome of executing an invocation.
type Result struct {
	ExitCode int

	// Archive is the produced archive on success.
	Archive *core.Archive
}

// Execute runs a canonical invocation against the real toolchain, with
// directives on stdout and diagnostics on stderr.
func Execute(ctx context.Context, inv Invocation) (Result, error) {
	return ExecuteWithRunner(ctx, inv, core.BinutilsRunner{}, os.Stdout, os.Stderr)
}

// ExecuteWithRunner is Execute with the toolchain runner and output
// streams injected, so tests can substitute a fake toolchain and capture
// both streams.
//
// Responsibilities:
//   - Resolve the target before any filesystem work; an unsupported
//     triple must fail before discovery touches anything.
//   - Wire the pipeline (directives to stdout, trace recording when
//     requested).
//   - Write the trace file even when the build fails.
//   - Translate the error taxonomy to semantic exit codes.
func ExecuteWithRunner(ctx context.Context, inv Invocation, runner core.ToolchainRunner, stdout, stderr io.Writer) (Result, error) {
	target, err := core.ResolveTarget(inv.Target)
	if err != nil {
		return failure(stderr, err)
	}

	var recorder *trace.Recorder
	if inv.TracePath != "" {
		recorder = trace.NewRecorder()
	}

	pipeline := &core.Pipeline{
		Target:      target,
		Runner:      runner,
		OutDir:      inv.OutDir,
		ArchiveName: inv.ArchiveName,
		Jobs:        inv.Jobs,
		Directives:  &core.DirectiveWriter{W: stdout},
	}
	if recorder != nil {
		pipeline.Observer = recorder
	}

	result, buildErr := pipeline.Run(ctx, inv.AsmDirs, inv.BinaryFiles)

	// The trace is written whatever the outcome, so a failed build still
	// leaves a canonical record of what completed before the abort.
	if recorder != nil {
		buildID := trace.BuildID(inv.Target, inv.AsmDirs, inv.BinaryFiles)
		if err := writeTrace(inv.TracePath, recorder.Trace(buildID)); err != nil {
			fmt.Fprintln(stderr, color.Danger.Sprintf("mason: %v", err))
			if buildErr == nil {
				return Result{ExitCode: ExitInternalError}, err
			}
		}
	}

	if buildErr != nil {
		return failure(stderr, buildErr)
	}

	for _, warning := range result.Warnings {
		fmt.Fprintln(stderr, color.Warn.Sprintf("mason: warning: %s", warning))
	}

	return Result{ExitCode: ExitSuccess, Archive: result.Archive}, nil
}

func failure(stderr io.Writer, err error) (Result, error) {
	fmt.Fprintln(stderr, color.Danger.Sprintf("mason: %v", err))
	return Result{ExitCode: exitCodeFor(err)}, err
}

// exitCodeFor maps the build error taxonomy to process exit codes:
// toolchain failures are distinguished from configuration errors so the
// invoking pipeline can tell a broken source from a broken setup.
func exitCodeFor(err error) int {
	var unsupported *core.UnsupportedTargetError
	var missing *core.MissingPathError
	var duplicate *core.DuplicateLeafnameError
	var collision *core.ObjectCollisionError
	var unreadable *core.UnreadableFileError
	var asmFailed *core.AssemblyFailedError
	var arFailed *core.ArchiveFailedError

	switch {
	case errors.As(err, &asmFailed), errors.As(err, &arFailed):
		return ExitBuildFailure
	case errors.As(err, &unsupported),
		errors.As(err, &missing),
		errors.As(err, &duplicate),
		errors.As(err, &collision),
		errors.As(err, &unreadable):
		return ExitConfigError
	default:
		return ExitInternalError
	}
}

func writeTrace(path string, tr trace.BuildTrace) error {
	data, err := tr.CanonicalJSON()
	if err != nil {
		return fmt.Errorf("encoding build trace: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing build trace: %w", err)
	}
	return nil
}
