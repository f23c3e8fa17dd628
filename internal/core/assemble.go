package core

import (
	"context"
	"path/filepath"
	"strings"
)

// AssemblerDriver turns assembly sources into object files by invoking the
// target's external assembler, one process per source file so each object
// stays traceable to exactly one input.
type AssemblerDriver struct {
	Runner ToolchainRunner
	Target Target
	OutDir string
}

// ObjectPathFor returns the planned object path for an assembly source
// leafname: the leafname with its extension replaced by ".o", placed in
// the output directory. Identical inputs always plan identical paths.
func (d *AssemblerDriver) ObjectPathFor(source string) string {
	leaf := filepath.Base(source)
	leaf = strings.TrimSuffix(strings.TrimSuffix(leaf, ".s"), ".S")
	return filepath.Join(d.OutDir, leaf+".o")
}

// AssembleSource assembles one source from a source set into its planned
// object file.
//
// The assembler's working directory is the source's own directory, so
// relative .include directives inside the source resolve against its
// siblings. A non-zero assembler exit is fatal for the whole build and is
// reported as *AssemblyFailedError carrying the captured stderr.
func (d *AssemblerDriver) AssembleSource(ctx context.Context, dir, source string) (ObjectArtifact, error) {
	srcPath := filepath.Join(dir, source)
	objPath := d.ObjectPathFor(source)

	res, err := d.Runner.Assemble(ctx, AssembleRequest{
		Assembler:    d.Target.Assembler(),
		Source:       source,
		Object:       objPath,
		WorkDir:      dir,
		CPUArch:      d.Target.CPUArch,
		ABI:          d.Target.ABI,
		PointerWidth: d.Target.Width,
	})
	if err != nil {
		return ObjectArtifact{}, err
	}
	if res.ExitCode != 0 {
		return ObjectArtifact{}, &AssemblyFailedError{
			Path:     srcPath,
			ExitCode: res.ExitCode,
			Stderr:   string(res.Stderr),
		}
	}

	return ObjectArtifact{Path: objPath, Source: srcPath}, nil
}
