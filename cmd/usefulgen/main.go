// cmd/usefulgen/main.go
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"text/template"
	"unicode"
)

// This binary is a code-generation tool.
//
// It reads a JSON capability spec describing a Go interface and writes the
// capability variable plus a typed Null Object adapter for it.
//
// Key behaviors:
// - Reads spec JSON: package, interface, capability var/name, null type, constructor, ops
// - Locates the "owner" Go file (the file containing the go:generate for usefulgen) in the same directory
// - Reuses the owner file's imports for parameter and result types, keeping only the ones the generated code references
// - Always imports the capability and null packages
// - gofmt's the result and writes it atomically (temp file + rename)

const (
	defaultCapabilityImport = "github.com/sghaida/useful/capability"
	defaultNullImport       = "github.com/sghaida/useful/null"
)

// Param is one operation parameter.
type Param struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Result is one operation result with the Go expression of its benign default.
// An empty Default means the zero value.
type Result struct {
	Type    string `json:"type"`
	Default string `json:"default"`
}

// Op describes one interface method.
type Op struct {
	Name    string   `json:"name"`
	Params  []Param  `json:"params"`
	Results []Result `json:"results"`
}

// Imports overrides the import paths of the useful packages.
type Imports struct {
	Capability string `json:"capability"`
	Null       string `json:"null"`
}

// Spec is the full input schema consumed by the generator.
type Spec struct {
	Package   string `json:"package"`
	Interface string `json:"interface"`

	// Capability is the Go variable holding the capability.Interface;
	// Name is the capability name.
	Capability string `json:"capability"`
	Name       string `json:"name"`

	NullType    string `json:"nullType"`
	Constructor string `json:"constructor"`

	// Weak makes the Null Object accept undeclared operations.
	Weak bool `json:"weak"`

	Imports Imports `json:"imports"`
	Ops     []Op    `json:"ops"`
}

// ImportSpec models one Go import: optional alias and full import path.
type ImportSpec struct {
	Alias string
	Path  string
}

// templateData is the input passed to the Go template.
type templateData struct {
	Spec        Spec
	ImportsList []ImportSpec
}

// run executes the generator logic and returns an exit code.
// It exists separately from main to allow unit testing without os.Exit.
func run(args []string, stderr io.Writer) (code int) {
	flags := flag.NewFlagSet("usefulgen", flag.ContinueOnError)
	flags.SetOutput(stderr)

	specPath := flags.String("spec", "", "path to <iface>.capability.json")
	outPath := flags.String("out", "", "output .gen.go file path")

	if err := flags.Parse(args); err != nil {
		return 2
	}

	if strings.TrimSpace(*specPath) == "" || strings.TrimSpace(*outPath) == "" {
		_, _ = fmt.Fprintln(stderr, "usage: usefulgen -spec <file.capability.json> -out <file.gen.go>")
		return 2
	}

	defer func() {
		if r := recover(); r != nil {
			_, _ = fmt.Fprintf(stderr, "usefulgen: %v\n", r)
			code = 1
		}
	}()

	specBytes, err := os.ReadFile(*specPath)
	must(err)

	var spec Spec
	must(json.Unmarshal(specBytes, &spec))

	validateSpec(&spec)

	generatedFilePath := filepath.Clean(*outPath)
	packageDir := filepath.Dir(generatedFilePath)

	ownerGoFilePath, err := findOwnerGoGenerateFile(packageDir, filepath.Base(*specPath))
	if err != nil {
		// Without an owner file only the useful packages are imported.
		ownerGoFilePath = ""
	}

	src, err := generate(spec, ownerGoFilePath)
	must(err)

	must(writeFileAtomic(generatedFilePath, src, 0o644))
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// validateSpec validates semantic correctness of the input specification and
// fills defaults.
func validateSpec(spec *Spec) {
	var missingFields []string

	requireNonEmpty := func(fieldName, value string) {
		if strings.TrimSpace(value) == "" {
			missingFields = append(missingFields, fieldName)
		}
	}

	requireNonEmpty("package", spec.Package)
	requireNonEmpty("interface", spec.Interface)
	requireNonEmpty("capability", spec.Capability)
	requireNonEmpty("name", spec.Name)
	requireNonEmpty("nullType", spec.NullType)
	requireNonEmpty("constructor", spec.Constructor)

	if len(spec.Ops) == 0 {
		missingFields = append(missingFields, "ops (must have at least 1)")
	}

	if len(missingFields) > 0 {
		panic(fmt.Errorf("spec missing required fields: %v", missingFields))
	}

	for _, ident := range []string{spec.Package, spec.Interface, spec.Capability, spec.NullType, spec.Constructor} {
		if !identPattern.MatchString(ident) {
			panic(fmt.Errorf("invalid identifier: %q", ident))
		}
	}

	if spec.Imports.Capability == "" {
		spec.Imports.Capability = defaultCapabilityImport
	}
	if spec.Imports.Null == "" {
		spec.Imports.Null = defaultNullImport
	}

	seenOps := make(map[string]struct{}, len(spec.Ops))
	for i := range spec.Ops {
		op := &spec.Ops[i]
		if !identPattern.MatchString(op.Name) || !unicode.IsUpper(rune(op.Name[0])) {
			panic(fmt.Errorf("op name must be an exported identifier; got: %q", op.Name))
		}
		if _, ok := seenOps[op.Name]; ok {
			panic(fmt.Errorf("duplicate op: %s", op.Name))
		}
		seenOps[op.Name] = struct{}{}

		seenParams := make(map[string]struct{}, len(op.Params))
		for _, p := range op.Params {
			if !identPattern.MatchString(p.Name) || strings.TrimSpace(p.Type) == "" {
				panic(fmt.Errorf("op %s: each param must have name/type; got: %+v", op.Name, p))
			}
			if p.Name == "n" || p.Name == "r" {
				panic(fmt.Errorf("op %s: param name %q is reserved", op.Name, p.Name))
			}
			if _, ok := seenParams[p.Name]; ok {
				panic(fmt.Errorf("op %s: duplicate param: %s", op.Name, p.Name))
			}
			seenParams[p.Name] = struct{}{}
		}
		for j := range op.Results {
			if strings.TrimSpace(op.Results[j].Type) == "" {
				panic(fmt.Errorf("op %s: result %d has no type", op.Name, j))
			}
			if strings.TrimSpace(op.Results[j].Default) == "" {
				op.Results[j].Default = "nil"
			}
		}
	}
}

// generate renders the adapter file. Owner imports are kept only when the
// generated code references them.
func generate(spec Spec, ownerFilePath string) ([]byte, error) {
	var body bytes.Buffer
	if err := bodyTemplate.Execute(&body, templateData{Spec: spec}); err != nil {
		return nil, err
	}

	used, err := referencedPackages(body.Bytes())
	if err != nil {
		return nil, fmt.Errorf("generated code does not parse: %w", err)
	}

	importsList, err := resolveImports(ownerFilePath, &spec, used)
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if err := headerTemplate.Execute(&out, templateData{Spec: spec, ImportsList: importsList}); err != nil {
		return nil, err
	}
	out.Write(body.Bytes()[bytes.IndexByte(body.Bytes(), '\n')+1:])

	formatted, err := format.Source(out.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format generated code: %w", err)
	}
	return formatted, nil
}

// referencedPackages returns the identifiers used as package qualifiers
// (the X in X.Sel) in src.
func referencedPackages(src []byte) (map[string]struct{}, error) {
	fileSet := token.NewFileSet()
	parsedFile, err := parser.ParseFile(fileSet, "body.go", src, parser.SkipObjectResolution)
	if err != nil {
		return nil, err
	}

	locals := map[string]struct{}{"n": {}, "r": {}}
	used := make(map[string]struct{})
	ast.Inspect(parsedFile, func(node ast.Node) bool {
		sel, ok := node.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		if ident, ok := sel.X.(*ast.Ident); ok {
			if _, local := locals[ident.Name]; !local {
				used[ident.Name] = struct{}{}
			}
		}
		return true
	})
	return used, nil
}

// findOwnerGoGenerateFile finds the Go source file in packageDir that contains
// a go:generate directive invoking usefulgen, preferring the one naming
// specName.
//
// This is used to discover the owner file's imports so generated code matches local style.
func findOwnerGoGenerateFile(packageDir, specName string) (string, error) {
	dirEntries, err := os.ReadDir(packageDir)
	if err != nil {
		return "", err
	}

	fallback := ""
	for _, entry := range dirEntries {
		if entry.IsDir() {
			continue
		}

		fileName := entry.Name()
		if !strings.HasSuffix(fileName, ".go") ||
			strings.HasSuffix(fileName, "_test.go") ||
			strings.HasSuffix(fileName, ".gen.go") {
			continue
		}

		filePath := filepath.Join(packageDir, fileName)
		fileBytes, err := os.ReadFile(filePath)
		if err != nil {
			// Best-effort: unreadable file shouldn't break generation.
			continue
		}

		if !bytes.Contains(fileBytes, []byte("go:generate")) || !bytes.Contains(fileBytes, []byte("usefulgen")) {
			continue
		}
		if specName != "" && bytes.Contains(fileBytes, []byte(specName)) {
			return filePath, nil
		}
		if fallback == "" {
			fallback = filePath
		}
	}

	if fallback != "" {
		return fallback, nil
	}
	return "", fmt.Errorf("could not find owner file with go:generate invoking usefulgen in %s", packageDir)
}

// readImportsFromFile parses imports from a Go file.
func readImportsFromFile(goFilePath string) ([]ImportSpec, error) {
	fileSet := token.NewFileSet()
	parsedFile, err := parser.ParseFile(fileSet, goFilePath, nil, parser.ImportsOnly)
	if err != nil {
		return nil, err
	}

	var imports []ImportSpec
	for _, importDecl := range parsedFile.Imports {
		importPath := strings.Trim(importDecl.Path.Value, `"`)
		importAlias := ""
		if importDecl.Name != nil {
			importAlias = importDecl.Name.Name
		}
		imports = append(imports, ImportSpec{Alias: importAlias, Path: importPath})
	}

	return imports, nil
}

func ensureImport(imports *[]ImportSpec, required ImportSpec) {
	for _, existing := range *imports {
		if existing.Path == required.Path {
			// Don't duplicate the path; keep existing alias as-is.
			return
		}
	}
	*imports = append(*imports, required)
}

var majorVersion = regexp.MustCompile(`^v[0-9]+$`)

// importDefaultIdent returns the identifier an unaliased import is used by:
// the last path element, skipping a /vN major version suffix and dropping a
// .vN suffix (gopkg.in style).
func importDefaultIdent(importPath string) string {
	// Import paths always use forward slashes, even on Windows.
	importPath = strings.TrimSpace(importPath)
	base := path.Base(importPath)
	if majorVersion.MatchString(base) {
		base = path.Base(path.Dir(importPath))
	}
	if i := strings.Index(base, ".v"); i > 0 && majorVersion.MatchString(base[i+1:]) {
		base = base[:i]
	}
	return strings.ReplaceAll(base, "-", "_")
}

func importIdent(imp ImportSpec) string {
	if imp.Alias != "" {
		return imp.Alias
	}
	return importDefaultIdent(imp.Path)
}

// resolveImports builds the final imports list for the generated file.
//
// Rules:
// - Always import the capability and null packages
// - Keep owner-file imports whose identifier the generated code references
// - Fail when the generated code references a package no import provides
func resolveImports(ownerFilePath string, spec *Spec, used map[string]struct{}) ([]ImportSpec, error) {
	var importsFromOwner []ImportSpec
	if strings.TrimSpace(ownerFilePath) != "" {
		parsedOwnerImports, err := readImportsFromFile(ownerFilePath)
		if err == nil {
			importsFromOwner = parsedOwnerImports
		}
		// If parsing fails, fall back to the useful packages only.
	}

	finalImports := []ImportSpec{
		{Alias: aliasFor(spec.Imports.Capability, "capability"), Path: spec.Imports.Capability},
		{Alias: aliasFor(spec.Imports.Null, "null"), Path: spec.Imports.Null},
	}
	provided := map[string]struct{}{"capability": {}, "null": {}}

	for _, imp := range importsFromOwner {
		ident := importIdent(imp)
		if ident == "_" || ident == "." {
			continue
		}
		if _, ok := used[ident]; !ok {
			continue
		}
		if _, dup := provided[ident]; dup {
			continue
		}
		provided[ident] = struct{}{}
		ensureImport(&finalImports, imp)
	}

	var unresolved []string
	for ident := range used {
		if _, ok := provided[ident]; !ok {
			unresolved = append(unresolved, ident)
		}
	}
	if len(unresolved) > 0 {
		sort.Strings(unresolved)
		return nil, fmt.Errorf(
			"generated code references %v, but no import in the owner file provides them",
			unresolved,
		)
	}

	sort.SliceStable(finalImports[2:], func(i, j int) bool {
		return finalImports[2+i].Path < finalImports[2+j].Path
	})
	return finalImports, nil
}

// aliasFor returns an explicit alias when importPath would not be usable as
// ident by default.
func aliasFor(importPath, ident string) string {
	if importDefaultIdent(importPath) == ident {
		return ""
	}
	return ident
}

// headerTemplate renders the file header and imports.
var headerTemplate = template.Must(
	template.New("header").Parse(`// Code generated by usefulgen; DO NOT EDIT.

package {{.Spec.Package}}

import (
{{- range .ImportsList}}
	{{if .Alias}}{{.Alias}} {{end}}"{{.Path}}"
{{- end}}
)
`),
)

// bodyTemplate renders the declarations. Its first line is a package clause
// so the body parses on its own; generate drops it.
var bodyTemplate = template.Must(
	template.New("body").Parse(`package {{.Spec.Package}}

// {{.Spec.Capability}} declares the operations of {{.Spec.Interface}} and the
// defaults its Null Object returns.
var {{.Spec.Capability}} = capability.Must({{printf "%q" .Spec.Name}},
{{- range .Spec.Ops}}
	capability.Operation({{printf "%q" .Name}}{{range .Results}}, {{.Default}}{{end}}),
{{- end}}
){{if .Spec.Weak}}.Weak(){{end}}

// {{.Spec.NullType}} is the Null Object adapter for {{.Spec.Interface}}.
type {{.Spec.NullType}} struct{ *null.Object }

// {{.Spec.Constructor}} wraps o as a {{.Spec.Interface}}.
func {{.Spec.Constructor}}(o *null.Object) {{.Spec.Interface}} { return {{.Spec.NullType}}{Object: o} }
{{range .Spec.Ops}}
func (n {{$.Spec.NullType}}) {{.Name}}({{range $i, $p := .Params}}{{if $i}}, {{end}}{{$p.Name}} {{$p.Type}}{{end}}){{if eq (len .Results) 1}} {{(index .Results 0).Type}}{{else if .Results}} ({{range $i, $r := .Results}}{{if $i}}, {{end}}{{$r.Type}}{{end}}){{end}} {
	{{if .Results}}r := {{end}}n.Call({{printf "%q" .Name}}{{range .Params}}, {{.Name}}{{end}})
	{{- if .Results}}
	return {{range $i, $r := .Results}}{{if $i}}, {{end}}null.Value[{{$r.Type}}](r, {{$i}}){{end}}
	{{- end}}
}
{{end}}
var _ {{.Spec.Interface}} = {{.Spec.NullType}}{}
`),
)

// tempFile abstracts an os.File for testability.
type tempFile interface {
	Name() string
	Write([]byte) (int, error)
	Close() error
}

// File operation hooks, overridden in tests.
var (
	createTempFile = func(dir, pattern string) (tempFile, error) { return os.CreateTemp(dir, pattern) }
	chmodFile      = os.Chmod
	renameFile     = os.Rename
	removeFile     = os.Remove
)

// writeFileAtomic writes a file atomically.
//
// It writes to a temporary file in the same directory and then renames it
// over the target path, ensuring readers never observe partial writes.
func writeFileAtomic(targetPath string, data []byte, perm os.FileMode) (err error) {
	targetDir := filepath.Dir(targetPath)

	tmpFile, err := createTempFile(targetDir, filepath.Base(targetPath)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()

	defer func() {
		if err != nil {
			_ = removeFile(tmpPath)
		}
	}()

	if _, err = tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err = tmpFile.Close(); err != nil {
		return err
	}
	if err = chmodFile(tmpPath, perm); err != nil {
		return err
	}
	if err = renameFile(tmpPath, targetPath); err != nil {
		return err
	}
	return nil
}

// must panics if err is non-nil.
func must(err error) {
	if err != nil {
		panic(err)
	}
}
