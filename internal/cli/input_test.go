package cli

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseInvocation_Flags(t *testing.T) {
	inv, err := ParseInvocation([]string{
		"--target", "riscv64gc-unknown-none-elf",
		"--out-dir", "/build/out",
		"--asm-dirs", "src/platform-riscv/asm:src/common/asm",
		"--bin-files", "data/font.bin:data/logo.bin",
		"--archive", "hv",
		"--jobs", "4",
		"--trace", "/build/out/trace.json",
	})
	if err != nil {
		t.Fatalf("ParseInvocation failed: %v", err)
	}

	if inv.Target != "riscv64gc-unknown-none-elf" || inv.OutDir != "/build/out" {
		t.Errorf("invocation = %+v", inv)
	}
	if want := []string{"src/platform-riscv/asm", "src/common/asm"}; !reflect.DeepEqual(inv.AsmDirs, want) {
		t.Errorf("asm dirs = %v, want %v", inv.AsmDirs, want)
	}
	if want := []string{"data/font.bin", "data/logo.bin"}; !reflect.DeepEqual(inv.BinaryFiles, want) {
		t.Errorf("binary files = %v, want %v", inv.BinaryFiles, want)
	}
	if inv.ArchiveName != "hv" || inv.Jobs != 4 || inv.TracePath != "/build/out/trace.json" {
		t.Errorf("invocation = %+v", inv)
	}
}

func TestParseInvocation_EnvironmentFallbacks(t *testing.T) {
	t.Setenv("TARGET", "riscv64imac-unknown-none-elf")
	t.Setenv("OUT_DIR", "/env/out")
	t.Setenv("MASON_ASM_DIRS", "a:b")
	t.Setenv("MASON_FILES", "x.bin")

	inv, err := ParseInvocation(nil)
	if err != nil {
		t.Fatalf("ParseInvocation failed: %v", err)
	}
	if inv.Target != "riscv64imac-unknown-none-elf" || inv.OutDir != "/env/out" {
		t.Errorf("invocation = %+v", inv)
	}
	if !reflect.DeepEqual(inv.AsmDirs, []string{"a", "b"}) {
		t.Errorf("asm dirs = %v", inv.AsmDirs)
	}
	if !reflect.DeepEqual(inv.BinaryFiles, []string{"x.bin"}) {
		t.Errorf("binary files = %v", inv.BinaryFiles)
	}
	// Defaults still apply when the environment carries the settings.
	if inv.ArchiveName != "mason" {
		t.Errorf("archive name = %q", inv.ArchiveName)
	}
}

func TestParseInvocation_FlagsWinOverEnvironment(t *testing.T) {
	t.Setenv("TARGET", "riscv32imac-unknown-none-elf")
	t.Setenv("OUT_DIR", "/env/out")

	inv, err := ParseInvocation([]string{
		"--target", "riscv64gc-unknown-none-elf",
		"--out-dir", "/flag/out",
	})
	if err != nil {
		t.Fatalf("ParseInvocation failed: %v", err)
	}
	if inv.Target != "riscv64gc-unknown-none-elf" || inv.OutDir != "/flag/out" {
		t.Errorf("flags should win: %+v", inv)
	}
}

func TestParseInvocation_Errors(t *testing.T) {
	cases := []struct {
		name string
		args []string
	}{
		{"missing target", []string{"--out-dir", "/out"}},
		{"missing out dir", []string{"--target", "riscv64gc-unknown-none-elf"}},
		{"empty archive name", []string{"--target", "t", "--out-dir", "/out", "--archive", ""}},
		{"negative jobs", []string{"--target", "t", "--out-dir", "/out", "--jobs", "-1"}},
		{"unknown flag", []string{"--target", "t", "--out-dir", "/out", "--bogus"}},
		{"positional args", []string{"--target", "t", "--out-dir", "/out", "stray"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// Keep the environment from satisfying required settings.
			t.Setenv("TARGET", "")
			t.Setenv("OUT_DIR", "")

			_, err := ParseInvocation(tc.args)
			var invErr *InvocationError
			if !errors.As(err, &invErr) {
				t.Fatalf("error = %v, want *InvocationError", err)
			}
			if invErr.ExitCode != ExitInvalidInvocation {
				t.Errorf("exit code = %d, want %d", invErr.ExitCode, ExitInvalidInvocation)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{"a:b:c", []string{"a", "b", "c"}},
		{"a::b:", []string{"a", "b"}},
	}
	for _, tc := range cases {
		if got := splitList(tc.in); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("splitList(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
