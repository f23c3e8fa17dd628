package core

// ObjectArtifact is one produced object file, owned by the build output
// directory and consumed by the archive builder.
type ObjectArtifact struct {
	// Path is the object file's location in the output directory.
	Path string

	// Source is the input that produced the object: an assembly source
	// path, or a binary file path for embedded binaries.
	Source string

	// Symbols lists the symbols this system guarantees the object exports.
	// Populated only for embedded binaries (start/end/size); symbols
	// declared by hand-written assembly are opaque to the build.
	Symbols []string
}

// Archive is the final aggregated package of all object artifacts: the
// build's output contract.
type Archive struct {
	// Path is the archive file's location (lib<Name>.a in the output
	// directory).
	Path string

	// Name is the linker-visible library name (linked as -l<Name>).
	Name string

	// SearchDir is the directory the linker must search to find the
	// archive.
	SearchDir string

	// Members are the archived objects, in archive order.
	Members []ObjectArtifact
}
