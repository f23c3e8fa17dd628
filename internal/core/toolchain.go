package core

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// InvocationResult captures a completed toolchain process: its exit code
// plus both output streams. Stderr is preserved verbatim for diagnostics.
type InvocationResult struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// AssembleRequest describes a single assembler invocation: one source in,
// one object out.
type AssembleRequest struct {
	// Assembler is the executable name or path (e.g. "riscv64-linux-gnu-as").
	Assembler string

	// Source is the assembly source path, relative to WorkDir when WorkDir
	// is set.
	Source string

	// Object is the output object path (absolute).
	Object string

	// WorkDir is the process working directory, set so relative includes
	// inside the source resolve correctly.
	WorkDir string

	// CPUArch and ABI are forwarded as -march / -mabi.
	CPUArch string
	ABI     string

	// PointerWidth is exported to the source as the ptrwidth symbol.
	PointerWidth int
}

// Args returns the assembler argument list. Construction is deterministic:
// identical requests always produce identical argument vectors.
func (r AssembleRequest) Args() []string {
	return []string{
		"-march", r.CPUArch,
		"-mabi", r.ABI,
		"--defsym", fmt.Sprintf("ptrwidth=%d", r.PointerWidth),
		"-o", r.Object,
		r.Source,
	}
}

// ArchiveRequest describes a single archiver invocation over the complete
// object set.
type ArchiveRequest struct {
	// Archiver is the executable name or path (e.g. "riscv64-linux-gnu-ar").
	Archiver string

	// Archive is the output archive path.
	Archive string

	// Objects are the member object paths, in archive order.
	Objects []string

	WorkDir string
}

// Args returns the archiver argument list ("crus" plus the archive and its
// members, in order).
func (r ArchiveRequest) Args() []string {
	args := make([]string, 0, len(r.Objects)+2)
	args = append(args, "crus", r.Archive)
	args = append(args, r.Objects...)
	return args
}

// ToolchainRunner is the capability boundary between the build engine and
// the external binutils processes. The production implementation spawns
// subprocesses; tests substitute a recording fake so the engine is
// testable without a cross-toolchain installed.
type ToolchainRunner interface {
	Assemble(ctx context.Context, req AssembleRequest) (*InvocationResult, error)
	Archive(ctx context.Context, req ArchiveRequest) (*InvocationResult, error)
}

// BinutilsRunner runs the real toolchain executables as subprocesses.
//
// Invocation policy:
//   - stdout and stderr are fully captured, never inherited.
//   - A non-zero exit is reported through InvocationResult.ExitCode, not
//     as an error; callers decide fatality.
//   - An error return means the process could not be run at all (e.g. the
//     cross assembler is not installed).
//   - On context cancellation the whole process group is killed so no
//     toolchain child outlives an aborted build.
type BinutilsRunner struct{}

func (BinutilsRunner) Assemble(ctx context.Context, req AssembleRequest) (*InvocationResult, error) {
	return runTool(ctx, req.Assembler, req.Args(), req.WorkDir)
}

func (BinutilsRunner) Archive(ctx context.Context, req ArchiveRequest) (*InvocationResult, error) {
	return runTool(ctx, req.Archiver, req.Args(), req.WorkDir)
}

func runTool(ctx context.Context, tool string, args []string, workDir string) (*InvocationResult, error) {
	cmd := exec.Command(tool, args...)
	cmd.Dir = workDir

	// Own process group, so cancellation can kill the whole tree.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", tool, err)
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	var waitErr error
	select {
	case <-ctx.Done():
		if cmd.Process != nil {
			unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
		}
		<-done
		return nil, fmt.Errorf("running %s: %w", tool, ctx.Err())
	case waitErr = <-done:
	}

	exitCode := 0
	if waitErr != nil {
		exitErr, ok := waitErr.(*exec.ExitError)
		if !ok {
			return nil, fmt.Errorf("running %s: %w", tool, waitErr)
		}
		exitCode = exitErr.ExitCode()
	}

	return &InvocationResult{
		ExitCode: exitCode,
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
	}, nil
}
