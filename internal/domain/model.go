package domain

import (
	"path"
	"sort"
	"strings"
	"time"
)

// ComponentType tags the variant of a plugin component.
type ComponentType string

const (
	TypeSkill     ComponentType = "skill"
	TypeAgent     ComponentType = "agent"
	TypeCommand   ComponentType = "command"
	TypeHook      ComponentType = "hook"
	TypeMCPConfig ComponentType = "mcp"
	TypeManifest  ComponentType = "manifest"
)

// ManifestPath is where discovery expects the plugin manifest, relative to the root.
const ManifestPath = ".claude-plugin/plugin.json"

// ComponentTypes enumerates every known component type in canonical order.
var ComponentTypes = []ComponentType{
	TypeManifest, TypeSkill, TypeAgent, TypeCommand, TypeHook, TypeMCPConfig,
}

// IsKnownComponentType reports whether t is one of ComponentTypes.
func IsKnownComponentType(t ComponentType) bool {
	for _, ct := range ComponentTypes {
		if ct == t {
			return true
		}
	}
	return false
}

// Plugin is the root aggregate handed to the engine by discovery.
// Component lists are read-only for the lifetime of an evaluation run.
type Plugin struct {
	Name       string                        `json:"name"`
	Version    string                        `json:"version,omitempty"`
	Root       string                        `json:"root"`
	Components map[ComponentType][]Component `json:"components"`
	Files      []string                      `json:"files,omitempty"`
	fileIndex  map[string]bool
}

// Component is one discovered plugin component.
type Component struct {
	Type    ComponentType  `json:"type"`
	Name    string         `json:"name"`
	Path    string         `json:"path"`
	Folder  string         `json:"folder,omitempty"`
	Payload map[string]any `json:"payload,omitempty"`
	Body    string         `json:"body,omitempty"`
	Scripts []Script       `json:"scripts,omitempty"`
	ModTime time.Time      `json:"mod_time"`

	// ParseError is set by discovery when the file could not be parsed.
	ParseError string `json:"parse_error,omitempty"`
}

// Script is an executable artifact attached to a component.
type Script struct {
	Path       string    `json:"path"`
	Content    string    `json:"-"`
	Executable bool      `json:"executable"`
	Size       int64     `json:"size"`
	ModTime    time.Time `json:"mod_time"`
}

// IsShell reports whether the script is a shell script, by extension or shebang.
func (s Script) IsShell() bool {
	switch path.Ext(s.Path) {
	case ".sh", ".bash":
		return true
	}
	first, _, _ := strings.Cut(s.Content, "\n")
	return strings.HasPrefix(first, "#!") &&
		(strings.HasSuffix(first, "sh") || strings.Contains(first, "bash") || strings.Contains(first, "/sh"))
}

// HookCommand is a single command-type hook entry extracted from a hook payload.
type HookCommand struct {
	Event   string `json:"event"`
	Matcher string `json:"matcher,omitempty"`
	Command string `json:"command"`
	Timeout int    `json:"timeout,omitempty"`
}

// Key identifies a component uniquely within a plugin.
func (c Component) Key() string { return string(c.Type) + "/" + c.Name }

// Parsed reports whether discovery parsed the component payload without error.
func (c Component) Parsed() bool { return c.ParseError == "" }

// String returns the payload value under key when it is a string.
func (c Component) String(key string) (string, bool) {
	v, ok := c.Payload[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// HookCommands extracts the command-type hooks from a hook payload of the form
// {"hooks": {"<Event>": [{"matcher": "...", "hooks": [{"type": "command", ...}]}]}}.
func (c Component) HookCommands() []HookCommand {
	if c.Type != TypeHook {
		return nil
	}
	events, ok := c.Payload["hooks"].(map[string]any)
	if !ok {
		return nil
	}
	names := make([]string, 0, len(events))
	for name := range events {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []HookCommand
	for _, event := range names {
		groups, _ := events[event].([]any)
		for _, g := range groups {
			group, _ := g.(map[string]any)
			matcher, _ := group["matcher"].(string)
			entries, _ := group["hooks"].([]any)
			for _, e := range entries {
				entry, _ := e.(map[string]any)
				if kind, _ := entry["type"].(string); kind != "command" {
					continue
				}
				cmd, _ := entry["command"].(string)
				hc := HookCommand{Event: event, Matcher: matcher, Command: cmd}
				if t, ok := entry["timeout"].(float64); ok {
					hc.Timeout = int(t)
				}
				out = append(out, hc)
			}
		}
	}
	return out
}

// HasExecutableSurface reports whether the component carries scripts or command hooks.
func (c Component) HasExecutableSurface() bool {
	return len(c.Scripts) > 0 || len(c.HookCommands()) > 0
}

// All returns every component in canonical type order, preserving discovery order within a type.
func (p *Plugin) All() []Component {
	var out []Component
	for _, t := range ComponentTypes {
		out = append(out, p.Components[t]...)
	}
	return out
}

// Manifest returns the plugin manifest component, if discovered.
func (p *Plugin) Manifest() (Component, bool) {
	ms := p.Components[TypeManifest]
	if len(ms) == 0 {
		return Component{}, false
	}
	return ms[0], true
}

// HasScripts reports whether any component carries an executable script.
func (p *Plugin) HasScripts() bool {
	for _, c := range p.All() {
		if len(c.Scripts) > 0 {
			return true
		}
	}
	return false
}

// HasHooks reports whether the plugin declares any hook component.
func (p *Plugin) HasHooks() bool { return len(p.Components[TypeHook]) > 0 }

// HasCommandHooks reports whether any hook component declares a command-type hook.
func (p *Plugin) HasCommandHooks() bool {
	for _, c := range p.Components[TypeHook] {
		if len(c.HookCommands()) > 0 {
			return true
		}
	}
	return false
}

// UsableComponents counts non-manifest components whose payload parsed.
func (p *Plugin) UsableComponents() int {
	n := 0
	for _, c := range p.All() {
		if c.Type != TypeManifest && c.Parsed() {
			n++
		}
	}
	return n
}

// ComponentCount counts non-manifest components.
func (p *Plugin) ComponentCount() int {
	n := 0
	for _, c := range p.All() {
		if c.Type != TypeManifest {
			n++
		}
	}
	return n
}

// HasFile reports whether rel (relative to the plugin root, slash separated)
// was seen by discovery. Safe for concurrent readers once built by IndexFiles.
func (p *Plugin) HasFile(rel string) bool {
	rel = path.Clean(strings.TrimPrefix(strings.ReplaceAll(rel, "\\", "/"), "./"))
	if p.fileIndex != nil {
		return p.fileIndex[rel]
	}
	for _, f := range p.Files {
		if f == rel {
			return true
		}
	}
	return false
}

// IndexFiles builds the lookup table used by HasFile. Discovery calls it once
// before the plugin is shared with workers.
func (p *Plugin) IndexFiles() {
	p.fileIndex = make(map[string]bool, len(p.Files))
	for _, f := range p.Files {
		p.fileIndex[f] = true
	}
}
