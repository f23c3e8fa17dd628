package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// AssemblySourceSet is one configured directory of assembly sources.
// Sources hold leafnames relative to Dir, in lexical order. The set is
// built during discovery and never mutated afterwards.
type AssemblySourceSet struct {
	Dir     string
	Sources []string
}

// BinaryFileEntry is one raw binary file to package for linkage.
type BinaryFileEntry struct {
	// Path is the configured path to the binary file.
	Path string

	// Leafname is the final path component; unique across the build.
	Leafname string

	// Symbol is the leafname with characters illegal in a symbol name
	// substituted by underscores. The exported symbols are
	// _binary_<Symbol>_start / _end / _size.
	Symbol string

	// Size is the file's byte length at discovery time.
	Size int64
}

// WorkList is the complete, ordered set of work produced by discovery.
// Ordering follows input configuration order; it determines archive member
// order and must be stable across repeated builds.
type WorkList struct {
	Sources  []AssemblySourceSet
	Binaries []BinaryFileEntry

	// Warnings holds non-fatal findings (e.g. a configured directory
	// containing no assembly sources).
	Warnings []string
}

// InputPaths returns every discovered input file, in configuration order.
// The build pipeline reports these to the invoking build system for
// change tracking.
func (w *WorkList) InputPaths() []string {
	var paths []string
	for _, set := range w.Sources {
		for _, src := range set.Sources {
			paths = append(paths, filepath.Join(set.Dir, src))
		}
	}
	for _, bin := range w.Binaries {
		paths = append(paths, bin.Path)
	}
	return paths
}

// Empty reports whether discovery produced no work at all.
func (w *WorkList) Empty() bool {
	for _, set := range w.Sources {
		if len(set.Sources) > 0 {
			return false
		}
	}
	return len(w.Binaries) == 0
}

// SymbolizeLeafname rewrites a leafname into a form legal inside a symbol
// name. Every character outside [A-Za-z0-9_] becomes an underscore. The
// substitution is deterministic; collisions between distinct leafnames that
// symbolize identically are rejected during discovery.
func SymbolizeLeafname(leaf string) string {
	var b strings.Builder
	b.Grow(len(leaf))
	for _, r := range leaf {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// isAssemblySource recognizes assembly sources by extension convention.
func isAssemblySource(name string) bool {
	return strings.HasSuffix(name, ".s") || strings.HasSuffix(name, ".S")
}

// Discover enumerates the configured assembly directories and binary files
// into a WorkList.
//
// Directories are scanned non-recursively; entries are taken in lexical
// order so the result is independent of filesystem enumeration order. A
// directory with no assembly sources yields an empty set plus a warning.
//
// Binary leafnames must be unique across the whole build, both literally
// and after symbol substitution; either collision is a fatal
// *DuplicateLeafnameError naming both paths. Discovery runs single-threaded
// and completes before any toolchain process is spawned.
func Discover(asmDirs, binaryFiles []string) (*WorkList, error) {
	w := &WorkList{}

	for _, dir := range asmDirs {
		set, warn, err := discoverDir(dir)
		if err != nil {
			return nil, err
		}
		if warn != "" {
			w.Warnings = append(w.Warnings, warn)
		}
		w.Sources = append(w.Sources, set)
	}

	// Uniqueness is keyed on the substituted symbol form, which also
	// covers literal leafname collisions.
	seen := make(map[string]string)
	for _, path := range binaryFiles {
		info, err := os.Stat(path)
		if err != nil {
			return nil, &MissingPathError{Path: path, Err: err}
		}
		if info.IsDir() {
			return nil, &MissingPathError{Path: path, Err: fmt.Errorf("is a directory, expected a file")}
		}

		leaf := filepath.Base(path)
		sym := SymbolizeLeafname(leaf)
		if first, ok := seen[sym]; ok {
			return nil, &DuplicateLeafnameError{Leafname: leaf, First: first, Second: path}
		}
		seen[sym] = path

		w.Binaries = append(w.Binaries, BinaryFileEntry{
			Path:     path,
			Leafname: leaf,
			Symbol:   sym,
			Size:     info.Size(),
		})
	}

	return w, nil
}

func discoverDir(dir string) (AssemblySourceSet, string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return AssemblySourceSet{}, "", &MissingPathError{Path: dir, Err: err}
	}
	if !info.IsDir() {
		return AssemblySourceSet{}, "", &MissingPathError{Path: dir, Err: fmt.Errorf("is not a directory")}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return AssemblySourceSet{}, "", &MissingPathError{Path: dir, Err: err}
	}

	set := AssemblySourceSet{Dir: dir}
	// os.ReadDir returns entries sorted by name.
	for _, entry := range entries {
		if entry.IsDir() || !isAssemblySource(entry.Name()) {
			continue
		}
		set.Sources = append(set.Sources, entry.Name())
	}

	if len(set.Sources) == 0 {
		return set, fmt.Sprintf("assembly directory %q contains no assembly sources", dir), nil
	}
	return set, "", nil
}
