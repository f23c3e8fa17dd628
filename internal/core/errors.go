package core

import (
	"fmt"
	"strings"
)

// The build error taxonomy. Every member is fatal and aborts the whole
// build; external-tool stderr is carried verbatim so the underlying
// toolchain diagnostic is never hidden. No member is retried: a failed
// assembly or archive is a configuration or source error, not a
// transient fault.

// UnsupportedTargetError reports a triple whose architecture field matches
// no entry in the target table.
type UnsupportedTargetError struct {
	Triple string
}

func (e *UnsupportedTargetError) Error() string {
	return fmt.Sprintf("unsupported target %q: no toolchain mapping for this architecture", e.Triple)
}

// MissingPathError reports a configured directory or file that does not
// exist. A missing build input must never silently degrade to an
// incomplete binary.
type MissingPathError struct {
	Path string
	Err  error
}

func (e *MissingPathError) Error() string {
	return fmt.Sprintf("missing build input %q: %v", e.Path, e.Err)
}

func (e *MissingPathError) Unwrap() error { return e.Err }

// DuplicateLeafnameError reports two binary files whose leafnames collide,
// either literally or after symbol-character substitution. Both conflicting
// paths are listed.
type DuplicateLeafnameError struct {
	Leafname string
	First    string
	Second   string
}

func (e *DuplicateLeafnameError) Error() string {
	return fmt.Sprintf("duplicate leafname %q: %q conflicts with %q", e.Leafname, e.Second, e.First)
}

// ObjectCollisionError reports two inputs whose planned object files would
// occupy the same path in the output directory.
type ObjectCollisionError struct {
	Object string
	First  string
	Second string
}

func (e *ObjectCollisionError) Error() string {
	return fmt.Sprintf("object %q already planned for %q, cannot also hold %q", e.Object, e.First, e.Second)
}

// UnreadableFileError reports a binary file that exists but cannot be
// opened or stat'd at embed time.
type UnreadableFileError struct {
	Path string
	Err  error
}

func (e *UnreadableFileError) Error() string {
	return fmt.Sprintf("unreadable binary file %q: %v", e.Path, e.Err)
}

func (e *UnreadableFileError) Unwrap() error { return e.Err }

// AssemblyFailedError reports a non-zero assembler exit. Stderr is the
// assembler's captured error stream, verbatim.
type AssemblyFailedError struct {
	Path     string
	ExitCode int
	Stderr   string
}

func (e *AssemblyFailedError) Error() string {
	return fmt.Sprintf("assembling %q failed (exit code %d):\n%s", e.Path, e.ExitCode, strings.TrimRight(e.Stderr, "\n"))
}

// ArchiveFailedError reports a non-zero archiver exit.
type ArchiveFailedError struct {
	Archive  string
	ExitCode int
	Stderr   string
}

func (e *ArchiveFailedError) Error() string {
	return fmt.Sprintf("archiving %q failed (exit code %d):\n%s", e.Archive, e.ExitCode, strings.TrimRight(e.Stderr, "\n"))
}
