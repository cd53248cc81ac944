package discovery_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdidvp/plugincheck/internal/adapters/outbound/discovery"
	"github.com/abdidvp/plugincheck/internal/domain"
)

const fixtures = "../../../../testdata/plugins"

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
}

func names(cs []domain.Component) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Name)
	}
	return out
}

func TestDiscover_GoodPlugin(t *testing.T) {
	p, err := discovery.New().Discover(filepath.Join(fixtures, "good"))
	require.NoError(t, err)

	assert.Equal(t, "release-notes", p.Name)
	assert.Equal(t, "1.4.0", p.Version)
	assert.True(t, filepath.IsAbs(p.Root))

	m, ok := p.Manifest()
	require.True(t, ok)
	assert.True(t, m.Parsed())
	assert.Contains(t, m.Body, "## Troubleshooting", "README becomes the manifest body")
	assert.False(t, m.ModTime.IsZero())

	require.Len(t, p.Components[domain.TypeSkill], 1)
	skill := p.Components[domain.TypeSkill][0]
	assert.Equal(t, "release-notes", skill.Name)
	assert.Equal(t, "release-notes", skill.Folder)
	assert.Equal(t, "skills/release-notes/SKILL.md", skill.Path)
	assert.Contains(t, skill.Body, "# Release notes")
	desc, _ := skill.String("description")
	assert.Contains(t, desc, "Use when")

	assert.Equal(t, []string{"changelog-reviewer"}, names(p.Components[domain.TypeAgent]))
	assert.Equal(t, []string{"draft-notes"}, names(p.Components[domain.TypeCommand]))
	assert.Empty(t, p.Components[domain.TypeHook])
	assert.Empty(t, p.Components[domain.TypeMCPConfig])

	assert.True(t, p.HasFile("README.md"))
	assert.True(t, p.HasFile(domain.ManifestPath))
	assert.Equal(t, 3, p.UsableComponents())
}

func TestDiscover_ScriptedPlugin(t *testing.T) {
	p, err := discovery.New().Discover(filepath.Join(fixtures, "scripted"))
	require.NoError(t, err)

	require.Len(t, p.Components[domain.TypeHook], 1)
	hook := p.Components[domain.TypeHook][0]
	assert.Equal(t, "hooks/hooks.json", hook.Path)
	require.Len(t, hook.HookCommands(), 1)
	require.Len(t, hook.Scripts, 1)
	assert.Equal(t, "scripts/format.sh", hook.Scripts[0].Path)
	assert.Contains(t, hook.Scripts[0].Content, "set -euo pipefail")

	skill := p.Components[domain.TypeSkill][0]
	require.Len(t, skill.Scripts, 1)
	assert.Equal(t, "skills/lint-shell/scripts/lint.sh", skill.Scripts[0].Path)

	require.Len(t, p.Components[domain.TypeMCPConfig], 1)
	assert.Equal(t, ".mcp.json", p.Components[domain.TypeMCPConfig][0].Path)

	assert.True(t, p.HasScripts())
	assert.True(t, p.HasCommandHooks())
}

func TestDiscover_BrokenPluginCarriesParseErrors(t *testing.T) {
	p, err := discovery.New().Discover(filepath.Join(fixtures, "broken"))
	require.NoError(t, err)

	m, ok := p.Manifest()
	require.True(t, ok)
	assert.False(t, m.Parsed())
	assert.Equal(t, "broken", p.Name, "falls back to the directory name")

	require.Len(t, p.Components[domain.TypeSkill], 1)
	skill := p.Components[domain.TypeSkill][0]
	assert.Equal(t, "skills/notes/skill.md", skill.Path, "case mismatch is kept for the validator to report")
	assert.True(t, skill.Parsed())

	require.Len(t, p.Components[domain.TypeAgent], 1)
	agent := p.Components[domain.TypeAgent][0]
	assert.Equal(t, "helper", agent.Name)
	assert.Contains(t, agent.ParseError, "missing YAML frontmatter")
}

func TestDiscover_MissingManifest(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"skills/demo/SKILL.md": "---\nname: demo\ndescription: x\n---\nbody\n",
	})

	p, err := discovery.New().Discover(root)
	require.NoError(t, err)

	m, ok := p.Manifest()
	require.True(t, ok, "a missing manifest still yields a manifest component")
	assert.Contains(t, m.ParseError, "manifest not found")
	assert.True(t, m.ModTime.IsZero())
}

func TestDiscover_RootErrors(t *testing.T) {
	_, err := discovery.New().Discover(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0644))
	_, err = discovery.New().Discover(file)
	assert.Error(t, err)
}

func TestDiscover_HonoursGitignore(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		".gitignore":              "build/\n*.log\n.claude-plugin/\n",
		domain.ManifestPath:       `{"name": "demo"}`,
		"build/out.txt":           "x",
		"debug.log":               "x",
		"agents/keep.md":          "---\nname: keep\ndescription: d\n---\n",
		"node_modules/x/index.js": "x",
	})

	p, err := discovery.New().Discover(root)
	require.NoError(t, err)

	assert.False(t, p.HasFile("build/out.txt"))
	assert.False(t, p.HasFile("debug.log"))
	assert.False(t, p.HasFile("node_modules/x/index.js"))
	assert.True(t, p.HasFile("agents/keep.md"))
	m, _ := p.Manifest()
	assert.True(t, m.Parsed(), "the manifest survives an ignore pattern")
}

func TestDiscover_SkillScriptsAndExecutableBit(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		domain.ManifestPath:             `{"name": "demo"}`,
		"skills/demo/SKILL.md":          "---\nname: demo\ndescription: d\n---\n",
		"skills/demo/scripts/run.sh":    "#!/bin/sh\necho hi\n",
		"skills/demo/scripts/helper.py": "print('hi')\n",
		"skills/demo/references/doc.md": "# doc\n",
	})
	require.NoError(t, os.Chmod(filepath.Join(root, "skills/demo/scripts/run.sh"), 0755))

	p, err := discovery.New().Discover(root)
	require.NoError(t, err)

	scripts := p.Components[domain.TypeSkill][0].Scripts
	require.Len(t, scripts, 2)
	assert.Equal(t, "skills/demo/scripts/helper.py", scripts[0].Path)
	assert.False(t, scripts[0].Executable)
	assert.Equal(t, "skills/demo/scripts/run.sh", scripts[1].Path)
	assert.True(t, scripts[1].Executable)
}

func TestDiscover_ManifestOverridesHookPath(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		domain.ManifestPath: `{"name": "demo", "hooks": "./config/hooks.json"}`,
		"config/hooks.json": `{"hooks": {}}`,
	})

	p, err := discovery.New().Discover(root)
	require.NoError(t, err)
	require.Len(t, p.Components[domain.TypeHook], 1)
	assert.Equal(t, "config/hooks.json", p.Components[domain.TypeHook][0].Path)
}

func TestDiscover_CommandsAreRecursiveAgentsAreNot(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		domain.ManifestPath:      `{"name": "demo"}`,
		"commands/top.md":        "---\ndescription: d\n---\n",
		"commands/git/commit.md": "---\ndescription: d\n---\n",
		"agents/one.md":          "---\nname: one\ndescription: d\n---\n",
		"agents/nested/two.md":   "---\nname: two\ndescription: d\n---\n",
	})

	p, err := discovery.New().Discover(root)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"top", "commit"}, names(p.Components[domain.TypeCommand]))
	assert.Equal(t, []string{"one"}, names(p.Components[domain.TypeAgent]))
}

func TestDiscover_InvalidJSONPayloads(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		domain.ManifestPath: `{"name": "demo"}`,
		"hooks/hooks.json":  `{"hooks": `,
		".mcp.json":         `[]`,
	})

	p, err := discovery.New().Discover(root)
	require.NoError(t, err)
	assert.NotEmpty(t, p.Components[domain.TypeHook][0].ParseError)
	assert.NotEmpty(t, p.Components[domain.TypeMCPConfig][0].ParseError)
	assert.Zero(t, p.UsableComponents())
}
