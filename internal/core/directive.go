package core

import (
	"fmt"
	"io"
)

// DirectiveWriter emits build-pipeline directives on the invoking build
// system's protocol (the cargo build-script line format). Directives are
// the only thing the pipeline writes to its output stream; human
// diagnostics go elsewhere.
type DirectiveWriter struct {
	W io.Writer
}

// RerunIfChanged tells the invoking pipeline to re-run this tool when the
// given input file changes.
func (d *DirectiveWriter) RerunIfChanged(path string) {
	if d == nil || d.W == nil {
		return
	}
	fmt.Fprintf(d.W, "cargo:rerun-if-changed=%s\n", path)
}

// LinkArchive tells the downstream linker where to find the produced
// archive and to link it statically.
func (d *DirectiveWriter) LinkArchive(a *Archive) {
	if d == nil || d.W == nil {
		return
	}
	fmt.Fprintf(d.W, "cargo:rustc-link-search=%s\n", a.SearchDir)
	fmt.Fprintf(d.W, "cargo:rustc-link-lib=static=%s\n", a.Name)
}
