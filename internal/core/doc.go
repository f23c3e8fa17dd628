// Package core implements the build engine: target resolution, input
// discovery, assembler and archiver orchestration, and binary embedding.
//
// All state is scoped to a single build invocation. Discovery runs first
// and single-threaded, fixing archive member order and validating leafname
// uniqueness; per-item assembly work may then run concurrently; the
// archive step is a strict join point over the complete object set.
package core
