package prefabs

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Specs and scripts ship embedded. A file of the same name under prefabs/
// in the working directory takes precedence.
//
//go:embed *.yaml scripts/*.tengo
var prefabFS embed.FS

func Load(name string) ([]byte, error) {
	return read(cleanPrefabPath(name))
}

// LoadScript reads a tengo script from prefabs/scripts.
func LoadScript(name string) ([]byte, error) {
	data, err := read(cleanScriptPath(name))
	if err != nil {
		return nil, fmt.Errorf("prefabs: load script %s: %w", name, err)
	}
	return data, nil
}

// OnDisk reports whether name resolves to a disk override rather than the
// embedded copy.
func OnDisk(name string) bool {
	clean := cleanPrefabPath(name)
	if strings.HasSuffix(name, ".tengo") {
		clean = cleanScriptPath(name)
	}
	info, err := os.Stat(diskPrefabPath(clean))
	return err == nil && !info.IsDir()
}

func read(clean string) ([]byte, error) {
	if data, err := os.ReadFile(diskPrefabPath(clean)); err == nil {
		return data, nil
	}
	return fs.ReadFile(prefabFS, clean)
}

func trimPrefabDir(p string) string {
	s := filepath.ToSlash(p)
	if i := strings.LastIndex(s, "prefabs/"); i >= 0 {
		s = s[i+len("prefabs/"):]
	}
	return s
}

func cleanPrefabPath(p string) string {
	if p == "" {
		return ""
	}
	s := trimPrefabDir(p)
	if path.Ext(s) == "" {
		s += ".yaml"
	}
	return s
}

func cleanScriptPath(p string) string {
	if p == "" {
		return ""
	}
	s := strings.TrimPrefix(trimPrefabDir(p), "scripts/")
	if !strings.HasSuffix(s, ".tengo") {
		s += ".tengo"
	}
	return "scripts/" + s
}

func diskPrefabPath(clean string) string {
	return filepath.Join("prefabs", filepath.FromSlash(clean))
}
