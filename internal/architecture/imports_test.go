package architecture_test

import (
	"bufio"
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// layerRules maps a source prefix to the internal prefixes it must not import.
// Lower layers never reach up into services, jobs or the HTTP surface.
var layerRules = []struct {
	layer      string
	disallowed []string
}{
	{"internal/domain/", []string{"internal/data/", "internal/services/", "internal/http/", "internal/jobs/", "internal/modules/", "internal/ingestion/"}},
	{"internal/platform/", []string{"internal/data/", "internal/services/", "internal/http/", "internal/jobs/", "internal/modules/", "internal/ingestion/"}},
	{"internal/ingestion/", []string{"internal/data/", "internal/services/", "internal/http/", "internal/jobs/", "internal/modules/"}},
	{"internal/modules/", []string{"internal/data/", "internal/services/", "internal/http/", "internal/jobs/"}},
	{"internal/data/", []string{"internal/services/", "internal/http/", "internal/jobs/", "internal/modules/"}},
	{"internal/jobs/", []string{"internal/services/", "internal/http/", "internal/data/"}},
	{"internal/services/", []string{"internal/http/", "internal/app/"}},
	{"internal/http/", []string{"internal/app/", "internal/data/db/"}},
}

type importRef struct {
	file string
	imp  string
}

func TestImportBoundaries(t *testing.T) {
	modulePath, refs := collectImports(t)

	var b strings.Builder
	for _, ref := range refs {
		for _, rule := range layerRules {
			if !strings.HasPrefix(ref.file, rule.layer) {
				continue
			}
			for _, bad := range rule.disallowed {
				if strings.HasPrefix(ref.imp, modulePath+"/"+bad) {
					fmt.Fprintf(&b, "- %s imports %q (layer %s may not use %s)\n", ref.file, ref.imp, rule.layer, bad)
				}
			}
		}
	}
	if b.Len() > 0 {
		t.Fatal("import boundary violations:\n" + b.String())
	}
}

func TestNoForeignModuleImports(t *testing.T) {
	modulePath, refs := collectImports(t)
	owner := modulePath[:strings.LastIndex(modulePath, "/")+1]

	var b strings.Builder
	for _, ref := range refs {
		if strings.HasPrefix(ref.imp, owner) && !strings.HasPrefix(ref.imp, modulePath) {
			fmt.Fprintf(&b, "- %s imports %q\n", ref.file, ref.imp)
		}
	}
	if b.Len() > 0 {
		t.Fatalf("imports of sibling modules found:\n%s", b.String())
	}
}

func collectImports(t *testing.T) (string, []importRef) {
	t.Helper()

	start, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	root, err := findModuleRoot(start)
	if err != nil {
		t.Fatalf("find module root: %v", err)
	}
	modulePath, err := readModulePath(filepath.Join(root, "go.mod"))
	if err != nil {
		t.Fatalf("read module path: %v", err)
	}

	fset := token.NewFileSet()
	var refs []importRef
	walkErr := filepath.WalkDir(filepath.Join(root, "internal"), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		f, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return err
		}
		for _, spec := range f.Imports {
			imp, err := strconv.Unquote(spec.Path.Value)
			if err != nil {
				continue
			}
			refs = append(refs, importRef{file: filepath.ToSlash(rel), imp: imp})
		}
		return nil
	})
	if walkErr != nil {
		t.Fatalf("walk internal/: %v", walkErr)
	}
	return modulePath, refs
}

func findModuleRoot(start string) (string, error) {
	dir := start
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found from %s", start)
		}
		dir = parent
	}
}

func readModulePath(goModPath string) (string, error) {
	f, err := os.Open(goModPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if mp, ok := strings.CutPrefix(line, "module "); ok {
			if mp = strings.TrimSpace(mp); mp == "" {
				return "", fmt.Errorf("empty module path in %s", goModPath)
			}
			return mp, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("module path not found in %s", goModPath)
}
