package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// BinaryEmbedder packages raw binary files into linkable objects.
//
// For each binary it synthesizes a small assembly stub that pulls the
// file's bytes in verbatim and exports three global symbols:
//
//	_binary_<leaf>_start
//	_binary_<leaf>_end
//	_binary_<leaf>_size
//
// where <leaf> is the symbolized leafname. The size symbol is computed by
// the assembler from the two labels, so it stays exact even if the file is
// empty (start == end, size 0). The stub is assembled through the same
// driver path as hand-written sources.
type BinaryEmbedder struct {
	Runner ToolchainRunner
	Target Target
	OutDir string
}

// SymbolsFor returns the three exported symbol names for an entry, in
// declaration order (start, end, size).
func SymbolsFor(entry BinaryFileEntry) []string {
	prefix := "_binary_" + entry.Symbol + "_"
	return []string{prefix + "start", prefix + "end", prefix + "size"}
}

// ObjectPathFor returns the planned object path for a binary entry:
// "<leafname>.o" in the output directory. The extension is kept
// (font.bin -> font.bin.o) so binary objects never collide with objects
// assembled from sources of the same stem.
func (e *BinaryEmbedder) ObjectPathFor(entry BinaryFileEntry) string {
	return filepath.Join(e.OutDir, entry.Leafname+".o")
}

// StubPathFor returns the path of the generated stub source for an entry.
func (e *BinaryEmbedder) StubPathFor(entry BinaryFileEntry) string {
	return filepath.Join(e.OutDir, entry.Leafname+".embed.s")
}

// Embed converts one binary file into an object artifact exporting the
// three boundary symbols.
//
// The binary must still be readable at embed time; discovery's stat is no
// guarantee by the time a worker gets here. The generated stub references
// the binary by absolute path so the assembler finds it regardless of
// working directory.
func (e *BinaryEmbedder) Embed(ctx context.Context, entry BinaryFileEntry) (ObjectArtifact, error) {
	f, err := os.Open(entry.Path)
	if err != nil {
		return ObjectArtifact{}, &UnreadableFileError{Path: entry.Path, Err: err}
	}
	f.Close()

	binPath, err := filepath.Abs(entry.Path)
	if err != nil {
		return ObjectArtifact{}, &UnreadableFileError{Path: entry.Path, Err: err}
	}

	stubPath := e.StubPathFor(entry)
	if err := os.WriteFile(stubPath, []byte(embedStub(entry, binPath)), 0o644); err != nil {
		return ObjectArtifact{}, fmt.Errorf("writing embed stub for %q: %w", entry.Path, err)
	}

	objPath := e.ObjectPathFor(entry)
	res, err := e.Runner.Assemble(ctx, AssembleRequest{
		Assembler:    e.Target.Assembler(),
		Source:       filepath.Base(stubPath),
		Object:       objPath,
		WorkDir:      e.OutDir,
		CPUArch:      e.Target.CPUArch,
		ABI:          e.Target.ABI,
		PointerWidth: e.Target.Width,
	})
	if err != nil {
		return ObjectArtifact{}, err
	}
	if res.ExitCode != 0 {
		return ObjectArtifact{}, &AssemblyFailedError{
			Path:     entry.Path,
			ExitCode: res.ExitCode,
			Stderr:   string(res.Stderr),
		}
	}

	return ObjectArtifact{
		Path:    objPath,
		Source:  entry.Path,
		Symbols: SymbolsFor(entry),
	}, nil
}

// embedStub renders the assembly stub for one binary entry. The three
// symbols get global linkage; .incbin includes the file byte for byte; the
// size is an assembler-computed absolute symbol, not a precomputed
// constant.
func embedStub(entry BinaryFileEntry, binPath string) string {
	syms := SymbolsFor(entry)
	start, end, size := syms[0], syms[1], syms[2]

	var b strings.Builder
	fmt.Fprintf(&b, "\t.section .rodata\n")
	fmt.Fprintf(&b, "\t.globl %s\n", start)
	fmt.Fprintf(&b, "\t.globl %s\n", end)
	fmt.Fprintf(&b, "\t.globl %s\n", size)
	fmt.Fprintf(&b, "%s:\n", start)
	fmt.Fprintf(&b, "\t.incbin %q\n", binPath)
	fmt.Fprintf(&b, "%s:\n", end)
	fmt.Fprintf(&b, "\t.set %s, %s - %s\n", size, end, start)
	return b.String()
}
