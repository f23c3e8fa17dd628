package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// BuildObserver receives logical build events. Implementations must be
// safe for concurrent use; the pipeline invokes them from worker
// goroutines.
type BuildObserver interface {
	SourceAssembled(source, object string)
	BinaryEmbedded(source, object string, symbols []string)
	Archived(archive string, members int)
}

// BuildResult is the outcome of a successful pipeline run.
type BuildResult struct {
	Archive   *Archive
	Artifacts []ObjectArtifact

	// Warnings are the non-fatal findings collected across the run.
	Warnings []string
}

// Pipeline wires the build stages together: discover, plan, assemble and
// embed concurrently, then archive and emit linker directives.
type Pipeline struct {
	Target Target
	Runner ToolchainRunner

	// OutDir is the build output area; created if absent.
	OutDir string

	// ArchiveName is the linker-visible library name (lib<name>.a).
	ArchiveName string

	// Jobs bounds concurrent toolchain processes; <= 0 means NumCPU.
	Jobs int

	// Directives receives build-pipeline output; optional.
	Directives *DirectiveWriter

	// Observer receives build events; optional.
	Observer BuildObserver
}

// workItem is one planned unit: either a source to assemble or a binary to
// embed. Planning happens single-threaded after discovery, so the planned
// object paths can be collision-checked before any worker starts.
type workItem struct {
	dir    string // set for assembly sources
	source string // leafname within dir
	binary *BinaryFileEntry
	object string
}

// Run executes the whole build.
//
// Fatal errors abort remaining work immediately and remove every planned
// output (objects, generated stubs, the archive) so a failed build never
// leaves stale artifacts for the link step to pick up.
func (p *Pipeline) Run(ctx context.Context, asmDirs, binaryFiles []string) (*BuildResult, error) {
	outDir, err := filepath.Abs(p.OutDir)
	if err != nil {
		return nil, fmt.Errorf("resolving output directory %q: %w", p.OutDir, err)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory %q: %w", outDir, err)
	}

	work, err := Discover(asmDirs, binaryFiles)
	if err != nil {
		return nil, err
	}
	warnings := work.Warnings

	for _, path := range work.InputPaths() {
		p.Directives.RerunIfChanged(path)
	}

	driver := &AssemblerDriver{Runner: p.Runner, Target: p.Target, OutDir: outDir}
	embedder := &BinaryEmbedder{Runner: p.Runner, Target: p.Target, OutDir: outDir}
	builder := &ArchiveBuilder{Runner: p.Runner, Target: p.Target, OutDir: outDir, Name: p.ArchiveName}

	items, err := planItems(work, driver, embedder)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		warnings = append(warnings, "no assembly sources or binary files configured; archive will be empty")
	}

	// Artifacts land at their planned index, so archive order is the
	// discovery order no matter which worker finishes first.
	artifacts := make([]ObjectArtifact, len(items))

	g, gctx := errgroup.WithContext(ctx)
	jobs := p.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	g.SetLimit(jobs)

	for i := range items {
		i := i
		g.Go(func() error {
			item := items[i]
			if item.binary != nil {
				artifact, err := embedder.Embed(gctx, *item.binary)
				if err != nil {
					return err
				}
				artifacts[i] = artifact
				if p.Observer != nil {
					p.Observer.BinaryEmbedded(artifact.Source, artifact.Path, artifact.Symbols)
				}
				return nil
			}
			artifact, err := driver.AssembleSource(gctx, item.dir, item.source)
			if err != nil {
				return err
			}
			artifacts[i] = artifact
			if p.Observer != nil {
				p.Observer.SourceAssembled(artifact.Source, artifact.Path)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		p.removeOutputs(items, embedder, builder)
		return nil, err
	}

	archive, err := builder.Build(ctx, artifacts)
	if err != nil {
		p.removeOutputs(items, embedder, builder)
		return nil, err
	}
	if p.Observer != nil {
		p.Observer.Archived(archive.Path, len(archive.Members))
	}

	p.Directives.LinkArchive(archive)

	return &BuildResult{
		Archive:   archive,
		Artifacts: artifacts,
		Warnings:  warnings,
	}, nil
}

// planItems flattens the work list into ordered items with planned object
// paths, rejecting any two inputs that would share an object path.
func planItems(work *WorkList, driver *AssemblerDriver, embedder *BinaryEmbedder) ([]workItem, error) {
	var items []workItem
	planned := make(map[string]string)

	register := func(object, source string) error {
		if first, ok := planned[object]; ok {
			return &ObjectCollisionError{Object: object, First: first, Second: source}
		}
		planned[object] = source
		return nil
	}

	for _, set := range work.Sources {
		for _, src := range set.Sources {
			object := driver.ObjectPathFor(src)
			srcPath := filepath.Join(set.Dir, src)
			if err := register(object, srcPath); err != nil {
				return nil, err
			}
			items = append(items, workItem{dir: set.Dir, source: src, object: object})
		}
	}
	for i := range work.Binaries {
		bin := &work.Binaries[i]
		object := embedder.ObjectPathFor(*bin)
		if err := register(object, bin.Path); err != nil {
			return nil, err
		}
		items = append(items, workItem{binary: bin, object: object})
	}
	return items, nil
}

// removeOutputs deletes every planned output after a failed build. Best
// effort: the build is already failing, and a leftover that cannot be
// removed will be reported by the archiver or linker anyway.
func (p *Pipeline) removeOutputs(items []workItem, embedder *BinaryEmbedder, builder *ArchiveBuilder) {
	for _, item := range items {
		os.Remove(item.object)
		if item.binary != nil {
			os.Remove(embedder.StubPathFor(*item.binary))
		}
	}
	os.Remove(builder.ArchivePath())
}
