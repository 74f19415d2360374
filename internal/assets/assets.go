// Package assets provides embedded default benchmark suites.
package assets

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

//go:embed suites/*.yaml
var suitesFS embed.FS

// LoadSuite returns the YAML content of a built-in suite by name.
// Override lookup order: project .mbench/suites/ > user ~/.mbench/suites/ > embedded.
func LoadSuite(name string) ([]byte, error) {
	return loadWithOverride("suites", name+".yaml", suitesFS)
}

// AllSuites returns every embedded suite as a map (name → YAML content).
func AllSuites() (map[string][]byte, error) {
	return readAll(suitesFS, "suites", ".yaml")
}

func loadWithOverride(dir, filename string, embedded embed.FS) ([]byte, error) {
	// 1. project-level override
	projectPath := filepath.Join(".mbench", dir, filename)
	if data, err := os.ReadFile(projectPath); err == nil {
		return data, nil
	}

	// 2. user-level override
	if home, err := os.UserHomeDir(); err == nil {
		userPath := filepath.Join(home, ".mbench", dir, filename)
		if data, err := os.ReadFile(userPath); err == nil {
			return data, nil
		}
	}

	// 3. embedded default
	embeddedPath := filepath.Join(dir, filename)
	data, err := embedded.ReadFile(embeddedPath)
	if err != nil {
		return nil, fmt.Errorf("%s %q not found", dir, filename)
	}
	return data, nil
}

func readAll(fsys embed.FS, dir, ext string) (map[string][]byte, error) {
	result := map[string][]byte{}
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if filepath.Ext(name) != ext {
			continue
		}
		data, err := fsys.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		key := name[:len(name)-len(ext)]
		result[key] = data
	}
	return result, nil
}
