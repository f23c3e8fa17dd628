package core

import (
	"context"
	"path/filepath"
)

// ArchiveBuilder packages the complete object set into one static archive
// via the target's external archiver. It is the build's join point: it
// must only run once every assemble/embed item has succeeded.
type ArchiveBuilder struct {
	Runner ToolchainRunner
	Target Target
	OutDir string

	// Name is the linker-visible library name; the archive file is
	// lib<Name>.a.
	Name string
}

// ArchivePath returns the planned archive path.
func (b *ArchiveBuilder) ArchivePath() string {
	return filepath.Join(b.OutDir, "lib"+b.Name+".a")
}

// Build archives the artifacts, in the order given, into lib<Name>.a.
//
// The member order is the discovery order fixed before any concurrent
// work started, so repeated builds with identical configuration produce
// identical archives. An empty artifact set is legal and yields an empty
// archive.
func (b *ArchiveBuilder) Build(ctx context.Context, artifacts []ObjectArtifact) (*Archive, error) {
	archivePath := b.ArchivePath()

	objects := make([]string, len(artifacts))
	for i, a := range artifacts {
		objects[i] = a.Path
	}

	res, err := b.Runner.Archive(ctx, ArchiveRequest{
		Archiver: b.Target.Archiver(),
		Archive:  archivePath,
		Objects:  objects,
		WorkDir:  b.OutDir,
	})
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		return nil, &ArchiveFailedError{
			Archive:  archivePath,
			ExitCode: res.ExitCode,
			Stderr:   string(res.Stderr),
		}
	}

	return &Archive{
		Path:      archivePath,
		Name:      b.Name,
		SearchDir: b.OutDir,
		Members:   artifacts,
	}, nil
}
