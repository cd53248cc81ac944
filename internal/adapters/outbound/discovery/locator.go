package discovery

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/abdidvp/plugincheck/internal/domain"
)

// Locator implements domain.PluginLocator over a plugin cache laid out as
// <root>/<name>/<version>/. A plugin directory directly under root, without
// a version level, is also accepted.
type Locator struct{}

func NewLocator() *Locator {
	return &Locator{}
}

// Locate lists plugins below root whose name matches the glob nameFilter.
// An empty filter matches everything.
func (l *Locator) Locate(root, nameFilter string) ([]domain.PluginRef, error) {
	if nameFilter != "" {
		if _, err := path.Match(nameFilter, ""); err != nil {
			return nil, fmt.Errorf("invalid name filter %q: %w", nameFilter, err)
		}
	}

	names, err := subdirs(root)
	if err != nil {
		return nil, fmt.Errorf("reading cache root: %w", err)
	}

	var refs []domain.PluginRef
	for _, name := range names {
		if nameFilter != "" {
			if ok, _ := path.Match(nameFilter, name); !ok {
				continue
			}
		}
		dir := filepath.Join(root, name)
		if isPluginDir(dir) {
			refs = append(refs, domain.PluginRef{Name: name, Path: dir})
			continue
		}
		versions, err := subdirs(dir)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", dir, err)
		}
		for _, version := range versions {
			vdir := filepath.Join(dir, version)
			if isPluginDir(vdir) {
				refs = append(refs, domain.PluginRef{Name: name, Version: version, Path: vdir})
			}
		}
	}

	sort.SliceStable(refs, func(i, j int) bool {
		if refs[i].Name != refs[j].Name {
			return refs[i].Name < refs[j].Name
		}
		return refs[i].Version < refs[j].Version
	})
	return refs, nil
}

func subdirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() && !skipDirs[e.Name()] {
			out = append(out, e.Name())
		}
	}
	return out, nil
}

func isPluginDir(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, filepath.FromSlash(domain.ManifestPath)))
	return err == nil && !info.IsDir()
}
