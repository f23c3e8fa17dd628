package core

import (
	"context"
	"os"
	"sync"
)

// fakeRunner is a recording ToolchainRunner. It writes placeholder object
// and archive files (so cleanup behavior is observable) and can be told to
// fail specific sources or the archive step.
type fakeRunner struct {
	mu        sync.Mutex
	assembles []AssembleRequest
	archives  []ArchiveRequest

	// failSources maps a source leafname to the stderr its fake assembly
	// failure should carry (exit code 1).
	failSources map[string]string

	// failArchive, when non-empty, makes the archive step exit 1 with
	// this stderr.
	failArchive string
}

func (f *fakeRunner) Assemble(ctx context.Context, req AssembleRequest) (*InvocationResult, error) {
	f.mu.Lock()
	f.assembles = append(f.assembles, req)
	f.mu.Unlock()

	if stderr, ok := f.failSources[req.Source]; ok {
		return &InvocationResult{ExitCode: 1, Stderr: []byte(stderr)}, nil
	}
	if err := os.WriteFile(req.Object, []byte("\x7fELF fake object"), 0o644); err != nil {
		return nil, err
	}
	return &InvocationResult{}, nil
}

func (f *fakeRunner) Archive(ctx context.Context, req ArchiveRequest) (*InvocationResult, error) {
	f.mu.Lock()
	f.archives = append(f.archives, req)
	f.mu.Unlock()

	if f.failArchive != "" {
		return &InvocationResult{ExitCode: 1, Stderr: []byte(f.failArchive)}, nil
	}
	if err := os.WriteFile(req.Archive, []byte("!<arch>\nfake"), 0o644); err != nil {
		return nil, err
	}
	return &InvocationResult{}, nil
}

func (f *fakeRunner) assembleCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.assembles)
}
