package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestSymbolsFor(t *testing.T) {
	entry := BinaryFileEntry{Leafname: "font.bin", Symbol: "font_bin"}
	want := []string{"_binary_font_bin_start", "_binary_font_bin_end", "_binary_font_bin_size"}
	if got := SymbolsFor(entry); !reflect.DeepEqual(got, want) {
		t.Errorf("SymbolsFor = %v, want %v", got, want)
	}
}

func TestEmbedStub(t *testing.T) {
	entry := BinaryFileEntry{Path: "data/font.bin", Leafname: "font.bin", Symbol: "font_bin", Size: 1024}
	stub := embedStub(entry, "/abs/data/font.bin")

	for _, want := range []string{
		"\t.section .rodata\n",
		"\t.globl _binary_font_bin_start\n",
		"\t.globl _binary_font_bin_end\n",
		"\t.globl _binary_font_bin_size\n",
		"_binary_font_bin_start:\n",
		"\t.incbin \"/abs/data/font.bin\"\n",
		"_binary_font_bin_end:\n",
		"\t.set _binary_font_bin_size, _binary_font_bin_end - _binary_font_bin_start\n",
	} {
		if !strings.Contains(stub, want) {
			t.Errorf("stub missing %q:\n%s", want, stub)
		}
	}

	// The size must be assembler-computed, never a literal byte count.
	if strings.Contains(stub, "1024") {
		t.Errorf("stub precomputes the size:\n%s", stub)
	}

	// start label must precede incbin, end label must follow it.
	start := strings.Index(stub, "_binary_font_bin_start:")
	incbin := strings.Index(stub, ".incbin")
	end := strings.Index(stub, "_binary_font_bin_end:")
	if !(start < incbin && incbin < end) {
		t.Errorf("label ordering wrong:\n%s", stub)
	}
}

func TestBinaryEmbedder_Embed(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "embed-*")
	if err != nil {
		t.Fatalf("temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	outDir := filepath.Join(tmpDir, "out")
	if err := os.Mkdir(outDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	binPath := filepath.Join(tmpDir, "font.bin")
	writeFile(t, binPath, make([]byte, 1024))

	entry := BinaryFileEntry{Path: binPath, Leafname: "font.bin", Symbol: "font_bin", Size: 1024}
	runner := &fakeRunner{}
	embedder := &BinaryEmbedder{Runner: runner, Target: riscv64Target(t), OutDir: outDir}

	artifact, err := embedder.Embed(context.Background(), entry)
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	if artifact.Path != filepath.Join(outDir, "font.bin.o") {
		t.Errorf("object path = %q", artifact.Path)
	}
	if len(artifact.Symbols) != 3 {
		t.Fatalf("symbols = %v, want exactly three", artifact.Symbols)
	}

	// The stub must exist, reference the binary by absolute path, and have
	// been handed to the same assembler invocation path as real sources.
	stub, err := os.ReadFile(filepath.Join(outDir, "font.bin.embed.s"))
	if err != nil {
		t.Fatalf("read stub: %v", err)
	}
	if !strings.Contains(string(stub), binPath) {
		t.Errorf("stub does not reference %q:\n%s", binPath, stub)
	}

	if len(runner.assembles) != 1 {
		t.Fatalf("expected 1 assembler invocation, got %d", len(runner.assembles))
	}
	req := runner.assembles[0]
	if req.Source != "font.bin.embed.s" || req.WorkDir != outDir {
		t.Errorf("stub assembly request = %+v", req)
	}
	if req.CPUArch != "rv64gc" {
		t.Errorf("target flags not forwarded: %+v", req)
	}
}

func TestBinaryEmbedder_ZeroLengthFile(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "embed-zero-*")
	if err != nil {
		t.Fatalf("temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	binPath := filepath.Join(tmpDir, "empty.dat")
	writeFile(t, binPath, nil)

	entry := BinaryFileEntry{Path: binPath, Leafname: "empty.dat", Symbol: "empty_dat"}
	embedder := &BinaryEmbedder{Runner: &fakeRunner{}, Target: riscv64Target(t), OutDir: tmpDir}

	artifact, err := embedder.Embed(context.Background(), entry)
	if err != nil {
		t.Fatalf("Embed failed for zero-length file: %v", err)
	}
	want := []string{"_binary_empty_dat_start", "_binary_empty_dat_end", "_binary_empty_dat_size"}
	if !reflect.DeepEqual(artifact.Symbols, want) {
		t.Errorf("symbols = %v, want %v", artifact.Symbols, want)
	}
}

func TestBinaryEmbedder_UnreadableFile(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "embed-unreadable-*")
	if err != nil {
		t.Fatalf("temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	// The file vanished between discovery and embedding.
	entry := BinaryFileEntry{
		Path:     filepath.Join(tmpDir, "gone.bin"),
		Leafname: "gone.bin",
		Symbol:   "gone_bin",
	}
	embedder := &BinaryEmbedder{Runner: &fakeRunner{}, Target: riscv64Target(t), OutDir: tmpDir}

	_, err = embedder.Embed(context.Background(), entry)
	var unreadable *UnreadableFileError
	if !errors.As(err, &unreadable) {
		t.Fatalf("error = %v, want *UnreadableFileError", err)
	}
}

func TestBinaryEmbedder_AssemblyFailed(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "embed-fail-*")
	if err != nil {
		t.Fatalf("temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	binPath := filepath.Join(tmpDir, "font.bin")
	writeFile(t, binPath, []byte{1, 2, 3})

	runner := &fakeRunner{failSources: map[string]string{
		"font.bin.embed.s": "font.bin.embed.s: Error: file truncated",
	}}
	entry := BinaryFileEntry{Path: binPath, Leafname: "font.bin", Symbol: "font_bin"}
	embedder := &BinaryEmbedder{Runner: runner, Target: riscv64Target(t), OutDir: tmpDir}

	_, err = embedder.Embed(context.Background(), entry)
	var failed *AssemblyFailedError
	if !errors.As(err, &failed) {
		t.Fatalf("error = %v, want *AssemblyFailedError", err)
	}
	if failed.Path != binPath {
		t.Errorf("error path = %q, want the binary path %q", failed.Path, binPath)
	}
}
