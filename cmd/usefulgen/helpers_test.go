package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

//
// -----------------------------------------------------------------------------
// Shared fixtures
// -----------------------------------------------------------------------------

// clockSpecJSON returns a spec that passes validateSpec and references the
// time package, so run() needs an owner file importing it.
func clockSpecJSON() []byte {
	return []byte(`{
  "package": "svc",
  "interface": "Clock",
  "capability": "ClockCapability",
  "name": "svc.clock",
  "nullType": "nullClock",
  "constructor": "NewNullClock",
  "ops": [
    { "name": "Now", "results": [ { "type": "time.Time", "default": "time.Time{}" } ] }
  ]
}`)
}

// ownerSource is an owner file whose go:generate directive names specName.
func ownerSource(specName string, imports ...string) string {
	src := "package svc\n\nimport (\n"
	for _, imp := range imports {
		src += "\t" + imp + "\n"
	}
	src += ")\n\n//go:generate go run ../cmd/usefulgen -spec ./" + specName + " -out ./clock_null.gen.go\n"
	return src
}

//
// -----------------------------------------------------------------------------
// Small helpers
// -----------------------------------------------------------------------------

// writeTempFile writes a file under dir/name and returns its full path.
func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

// readFileString reads a file and returns its contents as string (fatal on error).
func readFileString(t *testing.T, p string) string {
	t.Helper()
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	return string(b)
}

// jsonUnmarshalFile decodes the JSON file at p into v.
func jsonUnmarshalFile(p string, v any) error {
	b, err := os.ReadFile(p)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// requirePanicContains asserts fn panics and the panic message contains wantSub.
func requirePanicContains(t *testing.T, wantSub string, fn func()) {
	t.Helper()

	defer func() {
		recovered := recover()
		require.NotNil(t, recovered)

		var message string
		switch v := recovered.(type) {
		case error:
			message = v.Error()
		case string:
			message = v
		default:
			message = fmt.Sprintf("%v", v)
		}
		require.Contains(t, message, wantSub)
	}()

	fn()
}

//
// -----------------------------------------------------------------------------
// writeFileAtomic() seam helpers
// -----------------------------------------------------------------------------

// fakeTempFile is a controllable file-like object for writeFileAtomic tests.
type fakeTempFile struct {
	fileName string
	writeErr error
	closeErr error
}

func (f *fakeTempFile) Name() string { return f.fileName }

func (f *fakeTempFile) Write(p []byte) (int, error) {
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	return len(p), nil
}

func (f *fakeTempFile) Close() error { return f.closeErr }

// restoreWriteSeams puts the real file seams back when t finishes.
func restoreWriteSeams(t *testing.T) {
	t.Helper()
	origCreate, origRemove, origChmod, origRename := createTempFile, removeFile, chmodFile, renameFile
	t.Cleanup(func() {
		createTempFile = origCreate
		removeFile = origRemove
		chmodFile = origChmod
		renameFile = origRename
	})
}
