package discovery

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/abdidvp/plugincheck/internal/domain"
)

// protectedDirs hold plugin metadata and are walked even when ignored.
var protectedDirs = map[string]bool{
	".claude-plugin": true,
	"hooks":          true,
}

var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	".plugincheck": true,
	"__pycache__":  true,
	".venv":        true,
}

const (
	readmePath    = "README.md"
	hooksPath     = "hooks/hooks.json"
	mcpPath       = ".mcp.json"
	maxScriptSize = 1 << 20
)

var pluginRootRefRe = regexp.MustCompile(`\$\{CLAUDE_PLUGIN_ROOT\}/([^\s"';|&)]+)`)

// Discoverer implements domain.PluginDiscoverer by walking a plugin directory.
type Discoverer struct{}

func New() *Discoverer {
	return &Discoverer{}
}

// walkState carries one discovery pass.
type walkState struct {
	root  string
	files []string
	modes map[string]fs.FileInfo
}

func (d *Discoverer) Discover(root string) (*domain.Plugin, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("reading plugin root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("plugin root %s is not a directory", absRoot)
	}

	st, err := walk(absRoot)
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", absRoot, err)
	}

	p := &domain.Plugin{
		Root:       absRoot,
		Files:      st.files,
		Components: map[domain.ComponentType][]domain.Component{},
	}
	p.IndexFiles()

	manifest := st.manifest()
	p.Components[domain.TypeManifest] = []domain.Component{manifest}
	p.Name = filepath.Base(absRoot)
	if name, ok := manifest.String("name"); ok && name != "" {
		p.Name = name
	}
	p.Version, _ = manifest.String("version")

	if skills := st.skills(); len(skills) > 0 {
		p.Components[domain.TypeSkill] = skills
	}
	if agents := st.markdownDir("agents", domain.TypeAgent, false); len(agents) > 0 {
		p.Components[domain.TypeAgent] = agents
	}
	if commands := st.markdownDir("commands", domain.TypeCommand, true); len(commands) > 0 {
		p.Components[domain.TypeCommand] = commands
	}
	if hook, ok := st.hooks(manifest); ok {
		p.Components[domain.TypeHook] = []domain.Component{hook}
	}
	if mcp, ok := st.mcp(manifest); ok {
		p.Components[domain.TypeMCPConfig] = []domain.Component{mcp}
	}
	return p, nil
}

// walk lists every file below root as a slash-separated relative path,
// honouring the plugin's .gitignore.
func walk(root string) (*walkState, error) {
	var matcher *ignore.GitIgnore
	if _, err := os.Stat(filepath.Join(root, ".gitignore")); err == nil {
		if m, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore")); err == nil {
			matcher = m
		}
	}

	st := &walkState{root: root, modes: map[string]fs.FileInfo{}}
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == root {
			return nil
		}
		rel, _ := filepath.Rel(root, p)
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if skipDirs[d.Name()] || (matcher != nil && !protectedDirs[rel] && matcher.MatchesPath(rel+"/")) {
				return filepath.SkipDir
			}
			return nil
		}
		if matcher != nil && matcher.MatchesPath(rel) && !isComponentFile(rel) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		st.files = append(st.files, rel)
		st.modes[rel] = info
		return nil
	})
	sort.Strings(st.files)
	return st, err
}

// isComponentFile keeps plugin metadata visible even when a .gitignore
// pattern would hide it.
func isComponentFile(rel string) bool {
	return rel == domain.ManifestPath || rel == hooksPath || rel == mcpPath
}

func (st *walkState) read(rel string) (string, time.Time, error) {
	data, err := os.ReadFile(filepath.Join(st.root, filepath.FromSlash(rel)))
	if err != nil {
		return "", time.Time{}, err
	}
	var mod time.Time
	if info, ok := st.modes[rel]; ok {
		mod = info.ModTime()
	}
	return string(data), mod, nil
}

func (st *walkState) has(rel string) bool {
	_, ok := st.modes[rel]
	return ok
}

func (st *walkState) manifest() domain.Component {
	c := domain.Component{Type: domain.TypeManifest, Name: filepath.Base(st.root), Path: domain.ManifestPath}
	if readme, _, err := st.read(readmePath); err == nil {
		c.Body = readme
	}
	if !st.has(domain.ManifestPath) {
		c.ParseError = "manifest not found at " + domain.ManifestPath
		return c
	}
	content, mod, err := st.read(domain.ManifestPath)
	if err != nil {
		c.ParseError = err.Error()
		return c
	}
	c.ModTime = mod
	c.Payload, c.ParseError = decodeJSON(content)
	if name, ok := c.String("name"); ok && name != "" {
		c.Name = name
	}
	return c
}

func decodeJSON(content string) (map[string]any, string) {
	var payload map[string]any
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, err.Error()
	}
	if payload == nil {
		return nil, "JSON document must be an object"
	}
	return payload, ""
}

// skills finds skills/<dir>/SKILL.md, matching the filename without regard
// to case so a misnamed file is still reported against its skill.
func (st *walkState) skills() []domain.Component {
	byDir := map[string]string{}
	for _, f := range st.files {
		parts := strings.Split(f, "/")
		if len(parts) != 3 || parts[0] != "skills" || !strings.EqualFold(parts[2], "SKILL.md") {
			continue
		}
		if prev, ok := byDir[parts[1]]; !ok || (parts[2] == "SKILL.md" && path.Base(prev) != "SKILL.md") {
			byDir[parts[1]] = f
		}
	}

	dirs := make([]string, 0, len(byDir))
	for dir := range byDir {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	out := make([]domain.Component, 0, len(dirs))
	for _, dir := range dirs {
		c := st.markdownComponent(domain.TypeSkill, byDir[dir], dir)
		c.Folder = dir
		c.Scripts = st.scriptsUnder("skills/" + dir + "/scripts/")
		out = append(out, c)
	}
	return out
}

// markdownDir loads every .md file in dir as a component named by its stem.
func (st *walkState) markdownDir(dir string, t domain.ComponentType, recursive bool) []domain.Component {
	var out []domain.Component
	for _, f := range st.files {
		if !strings.HasPrefix(f, dir+"/") || path.Ext(f) != ".md" {
			continue
		}
		if !recursive && strings.Contains(strings.TrimPrefix(f, dir+"/"), "/") {
			continue
		}
		out = append(out, st.markdownComponent(t, f, strings.TrimSuffix(path.Base(f), ".md")))
	}
	return out
}

// markdownComponent parses frontmatter and body. The component name comes
// from the frontmatter when present, else from fallback.
func (st *walkState) markdownComponent(t domain.ComponentType, rel, fallback string) domain.Component {
	c := domain.Component{Type: t, Name: fallback, Path: rel}
	content, mod, err := st.read(rel)
	if err != nil {
		c.ParseError = err.Error()
		return c
	}
	c.ModTime = mod

	fields, body, err := parseFrontmatter(content)
	c.Body = body
	if err != nil {
		c.ParseError = err.Error()
		return c
	}
	c.Payload = fields
	if name, ok := c.String("name"); ok && strings.TrimSpace(name) != "" && t != domain.TypeCommand {
		c.Name = name
	}
	return c
}

func (st *walkState) scriptsUnder(prefix string) []domain.Script {
	var out []domain.Script
	for _, f := range st.files {
		if strings.HasPrefix(f, prefix) {
			if s, ok := st.script(f); ok {
				out = append(out, s)
			}
		}
	}
	return out
}

func (st *walkState) script(rel string) (domain.Script, bool) {
	info, ok := st.modes[rel]
	if !ok || info.Size() > maxScriptSize {
		return domain.Script{}, false
	}
	content, mod, err := st.read(rel)
	if err != nil {
		return domain.Script{}, false
	}
	return domain.Script{
		Path:       rel,
		Content:    content,
		Executable: info.Mode().Perm()&0111 != 0,
		Size:       info.Size(),
		ModTime:    mod,
	}, true
}

// configPath returns the manifest override for key when it names a file
// inside the plugin, else def.
func configPath(manifest domain.Component, key, def string) string {
	if s, ok := manifest.String(key); ok && s != "" {
		return path.Clean(strings.TrimPrefix(s, "./"))
	}
	return def
}

func (st *walkState) hooks(manifest domain.Component) (domain.Component, bool) {
	rel := configPath(manifest, "hooks", hooksPath)
	if !st.has(rel) {
		return domain.Component{}, false
	}
	c := domain.Component{Type: domain.TypeHook, Name: "hooks", Path: rel}
	content, mod, err := st.read(rel)
	if err != nil {
		c.ParseError = err.Error()
		return c, true
	}
	c.ModTime = mod
	c.Payload, c.ParseError = decodeJSON(content)

	seen := map[string]bool{}
	for _, hc := range c.HookCommands() {
		for _, m := range pluginRootRefRe.FindAllStringSubmatch(hc.Command, -1) {
			ref := path.Clean(m[1])
			if seen[ref] {
				continue
			}
			seen[ref] = true
			if s, ok := st.script(ref); ok {
				c.Scripts = append(c.Scripts, s)
			}
		}
	}
	return c, true
}

func (st *walkState) mcp(manifest domain.Component) (domain.Component, bool) {
	rel := configPath(manifest, "mcpServers", mcpPath)
	if !st.has(rel) {
		return domain.Component{}, false
	}
	c := domain.Component{Type: domain.TypeMCPConfig, Name: "mcp", Path: rel}
	content, mod, err := st.read(rel)
	if err != nil {
		c.ParseError = err.Error()
		return c, true
	}
	c.ModTime = mod
	c.Payload, c.ParseError = decodeJSON(content)
	return c, true
}
