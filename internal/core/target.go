package core

import "strings"

// Target describes the build target derived from a user-supplied triple.
//
// The triple's first dash-separated field selects the entry; the
// vendor/OS/ABI tail never influences toolchain selection. The resolved
// fields are immutable for the rest of the build.
type Target struct {
	// Triple is the full triple as supplied (e.g. "riscv64gc-unknown-none-elf").
	Triple string

	// GNUPrefix is the executable-name prefix for the binutils pair
	// (e.g. "riscv64-linux-gnu-").
	GNUPrefix string

	// CPUArch is the value passed to the assembler's -march flag.
	CPUArch string

	// ABI is the value passed to the assembler's -mabi flag.
	ABI string

	// Platform names the platform source tail (e.g. "riscv" for
	// src/platform-riscv).
	Platform string

	// Width is the target pointer width in bits, exported to assembly
	// sources as the ptrwidth symbol.
	Width int
}

// targetTable maps the architecture field of a triple to its target
// descriptor. Multiple architecture fields may share a GNU prefix.
var targetTable = map[string]Target{
	"riscv32imac": {
		GNUPrefix: "riscv32-linux-gnu-",
		CPUArch:   "rv32imac",
		ABI:       "ilp32",
		Platform:  "riscv",
		Width:     32,
	},
	"riscv64imac": {
		GNUPrefix: "riscv64-linux-gnu-",
		CPUArch:   "rv64imac",
		ABI:       "lp64",
		Platform:  "riscv",
		Width:     64,
	},
	"riscv64gc": {
		GNUPrefix: "riscv64-linux-gnu-",
		CPUArch:   "rv64gc",
		ABI:       "lp64",
		Platform:  "riscv",
		Width:     64,
	},
}

// ResolveTarget maps a build triple to its Target descriptor.
//
// Resolution is a pure lookup: no filesystem or environment access. An
// unrecognized architecture field fails with *UnsupportedTargetError; no
// fallback toolchain is ever attempted.
func ResolveTarget(triple string) (Target, error) {
	arch, _, _ := strings.Cut(triple, "-")
	t, ok := targetTable[arch]
	if !ok {
		return Target{}, &UnsupportedTargetError{Triple: triple}
	}
	t.Triple = triple
	return t, nil
}

// Assembler returns the executable name of the target's GNU assembler.
func (t Target) Assembler() string { return t.GNUPrefix + "as" }

// Archiver returns the executable name of the target's GNU archiver.
func (t Target) Archiver() string { return t.GNUPrefix + "ar" }

// Linker returns the executable name of the target's GNU linker.
func (t Target) Linker() string { return t.GNUPrefix + "ld" }

// ObjCopy returns the executable name of the target's GNU objcopy.
func (t Target) ObjCopy() string { return t.GNUPrefix + "objcopy" }
