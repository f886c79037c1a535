package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//
// -----------------------------------------------------------------------------
// must()
// -----------------------------------------------------------------------------

func TestMust_PanicsOnError(t *testing.T) {
	t.Parallel()

	require.NotPanics(t, func() { must(nil) })
	require.PanicsWithError(t, "boom", func() { must(errors.New("boom")) })
}

//
// -----------------------------------------------------------------------------
// writeFileAtomic()
// -----------------------------------------------------------------------------

func TestWriteFileAtomic_AllErrorBranches(t *testing.T) {
	// NOT parallel: mutates global seams.

	okFile := func(dir, pattern string) (tempFile, error) {
		return &fakeTempFile{fileName: filepath.Join(dir, "tmpfile")}, nil
	}

	testCases := []struct {
		name        string
		createTemp  func(dir, pattern string) (tempFile, error)
		chmodTmp    func(path string, mode os.FileMode) error
		renameTmp   func(oldpath, newpath string) error
		wantErr     string
		wantRemoved int
	}{
		{
			name: "create temp error",
			createTemp: func(dir, pattern string) (tempFile, error) {
				return nil, errors.New("create temp failed")
			},
			wantErr: "create temp failed",
		},
		{
			name: "write error removes temp",
			createTemp: func(dir, pattern string) (tempFile, error) {
				return &fakeTempFile{fileName: filepath.Join(dir, "tmpfile"), writeErr: errors.New("write failed")}, nil
			},
			wantErr:     "write failed",
			wantRemoved: 1,
		},
		{
			name: "close error removes temp",
			createTemp: func(dir, pattern string) (tempFile, error) {
				return &fakeTempFile{fileName: filepath.Join(dir, "tmpfile"), closeErr: errors.New("close failed")}, nil
			},
			wantErr:     "close failed",
			wantRemoved: 1,
		},
		{
			name:        "chmod error removes temp",
			createTemp:  okFile,
			chmodTmp:    func(string, os.FileMode) error { return errors.New("chmod failed") },
			wantErr:     "chmod failed",
			wantRemoved: 1,
		},
		{
			name:        "rename error removes temp",
			createTemp:  okFile,
			renameTmp:   func(string, string) error { return errors.New("rename failed") },
			wantErr:     "rename failed",
			wantRemoved: 1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			restoreWriteSeams(t)

			var removed []string
			createTempFile = tc.createTemp
			removeFile = func(path string) error {
				removed = append(removed, path)
				return nil
			}
			chmodFile = func(path string, mode os.FileMode) error {
				if tc.chmodTmp != nil {
					return tc.chmodTmp(path, mode)
				}
				return nil
			}
			renameFile = func(oldpath, newpath string) error {
				if tc.renameTmp != nil {
					return tc.renameTmp(oldpath, newpath)
				}
				return nil
			}

			err := writeFileAtomic(filepath.Join(t.TempDir(), "out.go"), []byte("x"), 0o644)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
			assert.Len(t, removed, tc.wantRemoved)
		})
	}
}

func TestWriteFileAtomic_Success(t *testing.T) {
	// NOT parallel: reads the global seams.
	outputPath := filepath.Join(t.TempDir(), "final.go")

	require.NoError(t, writeFileAtomic(outputPath, []byte("hello"), 0o644))
	assert.Equal(t, "hello", readFileString(t, outputPath))
}

//
// -----------------------------------------------------------------------------
// validateSpec()
// -----------------------------------------------------------------------------

func TestValidateSpec_AllBranches(t *testing.T) {
	t.Parallel()

	baseSpec := func() Spec {
		return Spec{
			Package:     "svc",
			Interface:   "Store",
			Capability:  "StoreCapability",
			Name:        "svc.store",
			NullType:    "nullStore",
			Constructor: "NewNullStore",
			Ops: []Op{
				{
					Name:    "Get",
					Params:  []Param{{Name: "key", Type: "string"}},
					Results: []Result{{Type: "string", Default: `""`}, {Type: "error"}},
				},
			},
		}
	}

	t.Run("valid spec gets defaults", func(t *testing.T) {
		spec := baseSpec()
		require.NotPanics(t, func() { validateSpec(&spec) })
		assert.Equal(t, defaultCapabilityImport, spec.Imports.Capability)
		assert.Equal(t, defaultNullImport, spec.Imports.Null)
		assert.Equal(t, "nil", spec.Ops[0].Results[1].Default)
		assert.Equal(t, `""`, spec.Ops[0].Results[0].Default)
	})

	t.Run("custom imports are kept", func(t *testing.T) {
		spec := baseSpec()
		spec.Imports = Imports{Capability: "example.com/cap", Null: "example.com/nullobj"}
		validateSpec(&spec)
		assert.Equal(t, "example.com/cap", spec.Imports.Capability)
		assert.Equal(t, "example.com/nullobj", spec.Imports.Null)
	})

	testCases := []struct {
		name    string
		mutate  func(*Spec)
		wantSub string
	}{
		{
			name:    "missing fields are collected",
			mutate:  func(s *Spec) { s.Package, s.NullType, s.Ops = "", " ", nil },
			wantSub: "spec missing required fields: [package nullType ops (must have at least 1)]",
		},
		{
			name:    "invalid identifier",
			mutate:  func(s *Spec) { s.Constructor = "New-Store" },
			wantSub: `invalid identifier: "New-Store"`,
		},
		{
			name:    "unexported op",
			mutate:  func(s *Spec) { s.Ops[0].Name = "get" },
			wantSub: "op name must be an exported identifier",
		},
		{
			name:    "duplicate op",
			mutate:  func(s *Spec) { s.Ops = append(s.Ops, Op{Name: "Get"}) },
			wantSub: "duplicate op: Get",
		},
		{
			name:    "param without type",
			mutate:  func(s *Spec) { s.Ops[0].Params[0].Type = "" },
			wantSub: "op Get: each param must have name/type",
		},
		{
			name:    "reserved param name",
			mutate:  func(s *Spec) { s.Ops[0].Params[0].Name = "r" },
			wantSub: `op Get: param name "r" is reserved`,
		},
		{
			name: "duplicate param",
			mutate: func(s *Spec) {
				s.Ops[0].Params = append(s.Ops[0].Params, Param{Name: "key", Type: "int"})
			},
			wantSub: "op Get: duplicate param: key",
		},
		{
			name:    "result without type",
			mutate:  func(s *Spec) { s.Ops[0].Results[1].Type = " " },
			wantSub: "op Get: result 1 has no type",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			spec := baseSpec()
			tc.mutate(&spec)
			requirePanicContains(t, tc.wantSub, func() { validateSpec(&spec) })
		})
	}
}

//
// -----------------------------------------------------------------------------
// Imports
// -----------------------------------------------------------------------------

func TestImportDefaultIdent(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		path string
		want string
	}{
		{path: "time", want: "time"},
		{path: "database/sql", want: "sql"},
		{path: " github.com/sghaida/useful/null ", want: "null"},
		{path: "github.com/jackc/pgx/v5", want: "pgx"},
		{path: "gopkg.in/yaml.v3", want: "yaml"},
		{path: "github.com/go-playground/validator", want: "validator"},
		{path: "example.com/go-lua", want: "go_lua"},
	}
	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.want, importDefaultIdent(tc.path))
		})
	}
}

func TestAliasFor(t *testing.T) {
	t.Parallel()

	assert.Empty(t, aliasFor(defaultCapabilityImport, "capability"))
	assert.Equal(t, "null", aliasFor("example.com/nullobj", "null"))
	assert.Equal(t, "x", importIdent(ImportSpec{Alias: "x", Path: "time"}))
	assert.Equal(t, "time", importIdent(ImportSpec{Path: "time"}))
}

func TestEnsureImport_DoesNotDuplicateByPath(t *testing.T) {
	t.Parallel()

	imports := []ImportSpec{{Alias: "t", Path: "time"}}
	ensureImport(&imports, ImportSpec{Path: "time"})
	ensureImport(&imports, ImportSpec{Path: "context"})

	assert.Equal(t, []ImportSpec{{Alias: "t", Path: "time"}, {Path: "context"}}, imports)
}

func TestReadImportsFromFile_SuccessAndParseError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := writeTempFile(t, dir, "good.go", ownerSource("x.json", `"time"`, `ctx "context"`, `_ "embed"`))
	bad := writeTempFile(t, dir, "bad.go", "package svc\nimport (\n")

	imports, err := readImportsFromFile(good)
	require.NoError(t, err)
	assert.Equal(t, []ImportSpec{{Path: "time"}, {Alias: "ctx", Path: "context"}, {Alias: "_", Path: "embed"}}, imports)

	_, err = readImportsFromFile(bad)
	assert.Error(t, err)
}

func TestResolveImports_AllBranches(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	owner := writeTempFile(t, dir, "owner.go", ownerSource("x.json",
		`"time"`, `"context"`, `"database/sql"`, `stdctx "context"`, `_ "embed"`,
	))
	broken := writeTempFile(t, dir, "broken.go", "package svc\nimport (\n")

	defaults := func() *Spec {
		return &Spec{Imports: Imports{Capability: defaultCapabilityImport, Null: defaultNullImport}}
	}
	used := func(idents ...string) map[string]struct{} {
		m := map[string]struct{}{"capability": {}, "null": {}}
		for _, id := range idents {
			m[id] = struct{}{}
		}
		return m
	}

	t.Run("keeps only referenced owner imports, sorted", func(t *testing.T) {
		got, err := resolveImports(owner, defaults(), used("time", "context"))
		require.NoError(t, err)
		assert.Equal(t, []ImportSpec{
			{Path: defaultCapabilityImport},
			{Path: defaultNullImport},
			{Path: "context"},
			{Path: "time"},
		}, got)
	})

	t.Run("aliased owner import", func(t *testing.T) {
		got, err := resolveImports(owner, defaults(), used("stdctx"))
		require.NoError(t, err)
		assert.Contains(t, got, ImportSpec{Alias: "stdctx", Path: "context"})
	})

	t.Run("no owner file", func(t *testing.T) {
		got, err := resolveImports("", defaults(), used())
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("unparsable owner file falls back", func(t *testing.T) {
		got, err := resolveImports(broken, defaults(), used())
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("unresolved reference", func(t *testing.T) {
		_, err := resolveImports(owner, defaults(), used("uuid", "json"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "[json uuid]")
	})

	t.Run("non-default useful paths are aliased", func(t *testing.T) {
		spec := &Spec{Imports: Imports{Capability: "example.com/caps", Null: "example.com/nullobj"}}
		got, err := resolveImports("", spec, used())
		require.NoError(t, err)
		assert.Equal(t, []ImportSpec{
			{Alias: "capability", Path: "example.com/caps"},
			{Alias: "null", Path: "example.com/nullobj"},
		}, got)
	})
}

//
// -----------------------------------------------------------------------------
// findOwnerGoGenerateFile()
// -----------------------------------------------------------------------------

func TestFindOwnerGoGenerateFile_AllBranches(t *testing.T) {
	t.Parallel()

	t.Run("prefers the file naming the spec", func(t *testing.T) {
		dir := t.TempDir()
		writeTempFile(t, dir, "a.go", ownerSource("other.capability.json"))
		want := writeTempFile(t, dir, "b.go", ownerSource("clock.capability.json"))

		got, err := findOwnerGoGenerateFile(dir, "clock.capability.json")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("falls back to any usefulgen owner", func(t *testing.T) {
		dir := t.TempDir()
		want := writeTempFile(t, dir, "a.go", ownerSource("other.capability.json"))

		got, err := findOwnerGoGenerateFile(dir, "clock.capability.json")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("skips tests, generated files, directories and other generators", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.go"), 0o755))
		writeTempFile(t, dir, "a_test.go", ownerSource("clock.capability.json"))
		writeTempFile(t, dir, "a.gen.go", ownerSource("clock.capability.json"))
		writeTempFile(t, dir, "b.go", "package svc\n\n//go:generate stringer -type=Kind\n")
		writeTempFile(t, dir, "notes.txt", "go:generate usefulgen")

		_, err := findOwnerGoGenerateFile(dir, "clock.capability.json")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "could not find owner file")
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := findOwnerGoGenerateFile(filepath.Join(t.TempDir(), "absent"), "")
		assert.Error(t, err)
	})
}

//
// -----------------------------------------------------------------------------
// generate()
// -----------------------------------------------------------------------------

func TestGenerate_MatchesCheckedInAdapters(t *testing.T) {
	t.Parallel()

	pkgDir := filepath.Join("..", "..", "examples", "purge")
	for _, name := range []string{"store", "clock"} {
		t.Run(name, func(t *testing.T) {
			specFile := name + ".capability.json"
			var spec Spec
			require.NoError(t, jsonUnmarshalFile(filepath.Join(pkgDir, "specs", specFile), &spec))
			validateSpec(&spec)

			owner, err := findOwnerGoGenerateFile(pkgDir, specFile)
			require.NoError(t, err)
			assert.Equal(t, name+".go", filepath.Base(owner))

			src, err := generate(spec, owner)
			require.NoError(t, err)
			assert.Equal(t, readFileString(t, filepath.Join(pkgDir, name+"_null.gen.go")), string(src))
		})
	}
}

func TestGenerate_WeakAndResultlessOps(t *testing.T) {
	t.Parallel()

	spec := Spec{
		Package:     "svc",
		Interface:   "Notifier",
		Capability:  "NotifierCapability",
		Name:        "svc.notifier",
		NullType:    "nullNotifier",
		Constructor: "NewNullNotifier",
		Weak:        true,
		Ops: []Op{
			{Name: "Notify", Params: []Param{{Name: "msg", Type: "string"}}},
			{Name: "Pending", Results: []Result{{Type: "int", Default: "0"}}},
		},
	}
	validateSpec(&spec)

	src, err := generate(spec, "")
	require.NoError(t, err)

	out := string(src)
	assert.Contains(t, out, "// Code generated by usefulgen; DO NOT EDIT.")
	assert.Contains(t, out, `capability.Operation("Notify"),`)
	assert.Contains(t, out, `capability.Operation("Pending", 0),`)
	assert.Contains(t, out, ").Weak()")
	assert.Contains(t, out, "func (n nullNotifier) Notify(msg string) {\n\tn.Call(\"Notify\", msg)\n}")
	assert.Contains(t, out, "return null.Value[int](r, 0)")
	assert.Contains(t, out, "var _ Notifier = nullNotifier{}")
	assert.NotContains(t, out, `"time"`)
}

func TestGenerate_UnresolvedTypeFails(t *testing.T) {
	t.Parallel()

	spec := Spec{
		Package:     "svc",
		Interface:   "Clock",
		Capability:  "ClockCapability",
		Name:        "svc.clock",
		NullType:    "nullClock",
		Constructor: "NewNullClock",
		Ops:         []Op{{Name: "Now", Results: []Result{{Type: "time.Time", Default: "time.Time{}"}}}},
	}
	validateSpec(&spec)

	_, err := generate(spec, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[time]")
}

func TestGenerate_InvalidTypeDoesNotParse(t *testing.T) {
	t.Parallel()

	spec := Spec{
		Package:     "svc",
		Interface:   "Broken",
		Capability:  "BrokenCapability",
		Name:        "svc.broken",
		NullType:    "nullBroken",
		Constructor: "NewNullBroken",
		Ops:         []Op{{Name: "Do", Results: []Result{{Type: "map[string", Default: "nil"}}}},
	}
	validateSpec(&spec)

	_, err := generate(spec, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generated code does not parse")
}

//
// -----------------------------------------------------------------------------
// run()
// -----------------------------------------------------------------------------

func TestRun_WritesAdapter(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	specPath := writeTempFile(t, dir, "clock.capability.json", string(clockSpecJSON()))
	writeTempFile(t, dir, "clock.go", ownerSource("clock.capability.json", `"time"`))
	outPath := filepath.Join(dir, "sub", "..", "clock_null.gen.go")

	var stderr bytes.Buffer
	require.Equal(t, 0, run([]string{"-spec", specPath, "-out", outPath}, &stderr), stderr.String())

	out := readFileString(t, filepath.Join(dir, "clock_null.gen.go"))
	assert.Contains(t, out, "package svc")
	assert.Contains(t, out, "\t\"time\"\n")
	assert.Contains(t, out, `var ClockCapability = capability.Must("svc.clock",`)
	assert.Contains(t, out, "func NewNullClock(o *null.Object) Clock { return nullClock{Object: o} }")
}

func TestRun_ErrorBranches(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	goodSpec := writeTempFile(t, dir, "clock.capability.json", string(clockSpecJSON()))
	badJSON := writeTempFile(t, dir, "bad.capability.json", "{")
	invalidSpec := writeTempFile(t, dir, "invalid.capability.json", `{"package":"svc"}`)

	noOwnerDir := t.TempDir()

	testCases := []struct {
		name     string
		args     []string
		wantCode int
		wantSub  string
	}{
		{name: "unknown flag", args: []string{"-nope"}, wantCode: 2},
		{name: "missing out", args: []string{"-spec", goodSpec}, wantCode: 2, wantSub: "usage: usefulgen"},
		{name: "missing spec file", args: []string{"-spec", filepath.Join(dir, "absent.json"), "-out", filepath.Join(dir, "x.gen.go")}, wantCode: 1, wantSub: "usefulgen:"},
		{name: "bad json", args: []string{"-spec", badJSON, "-out", filepath.Join(dir, "x.gen.go")}, wantCode: 1, wantSub: "usefulgen:"},
		{name: "invalid spec", args: []string{"-spec", invalidSpec, "-out", filepath.Join(dir, "x.gen.go")}, wantCode: 1, wantSub: "spec missing required fields"},
		{name: "no owner imports time", args: []string{"-spec", goodSpec, "-out", filepath.Join(noOwnerDir, "x.gen.go")}, wantCode: 1, wantSub: "[time]"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var stderr bytes.Buffer
			assert.Equal(t, tc.wantCode, run(tc.args, &stderr))
			assert.Contains(t, stderr.String(), tc.wantSub)
		})
	}

	_, err := os.Stat(filepath.Join(noOwnerDir, "x.gen.go"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
