package web

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Plugin describes one plugin file found on disk.
type Plugin struct {
	Name      string `json:"name"`
	Directory string `json:"directory"`
	Path      string `json:"path"`
	IsSystem  bool   `json:"is_system"`
	Enabled   bool   `json:"enabled"`
}

// ScanPlugins lists plugin files one directory below dir. A missing dir
// yields no plugins.
func ScanPlugins(dir string) []Plugin {
	plugins := []Plugin{}
	groups, err := os.ReadDir(dir)
	if err != nil {
		return plugins
	}
	for _, group := range groups {
		if !group.IsDir() || strings.HasPrefix(group.Name(), ".") {
			continue
		}
		files, err := os.ReadDir(filepath.Join(dir, group.Name()))
		if err != nil {
			continue
		}
		for _, f := range files {
			name, enabled, ok := pluginName(f)
			if !ok {
				continue
			}
			plugins = append(plugins, Plugin{
				Name:      name,
				Directory: group.Name(),
				Path:      filepath.Join(dir, group.Name(), f.Name()),
				IsSystem:  group.Name() == "system",
				Enabled:   enabled,
			})
		}
	}
	sort.Slice(plugins, func(i, j int) bool {
		if plugins[i].Directory != plugins[j].Directory {
			return plugins[i].Directory < plugins[j].Directory
		}
		return plugins[i].Name < plugins[j].Name
	})
	return plugins
}

// pluginName accepts source files other than package markers. A ".disabled"
// suffix marks a plugin switched off.
func pluginName(f os.DirEntry) (string, bool, bool) {
	if f.IsDir() {
		return "", false, false
	}
	name := f.Name()
	enabled := true
	if trimmed, ok := strings.CutSuffix(name, ".disabled"); ok {
		name, enabled = trimmed, false
	}
	ext := filepath.Ext(name)
	if ext != ".py" && ext != ".go" {
		return "", false, false
	}
	if name == "__init__.py" || strings.HasSuffix(name, "_test.go") {
		return "", false, false
	}
	return strings.TrimSuffix(name, ext), enabled, true
}
