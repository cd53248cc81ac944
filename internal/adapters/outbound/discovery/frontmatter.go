package discovery

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const fence = "---"

var errNoFrontmatter = errors.New("missing YAML frontmatter (file must start with '---')")

// parseFrontmatter splits a markdown document into its YAML frontmatter and
// body. The frontmatter must be a mapping.
func parseFrontmatter(content string) (map[string]any, string, error) {
	content = strings.TrimPrefix(content, "\ufeff")
	content = strings.ReplaceAll(content, "\r\n", "\n")

	if !strings.HasPrefix(content, fence+"\n") {
		return nil, content, errNoFrontmatter
	}
	rest := content[len(fence)+1:]

	var header, body string
	switch {
	case strings.HasPrefix(rest, fence+"\n") || rest == fence:
		body = strings.TrimPrefix(strings.TrimPrefix(rest, fence), "\n")
	default:
		end := strings.Index(rest, "\n"+fence+"\n")
		if end < 0 {
			if !strings.HasSuffix(rest, "\n"+fence) {
				return nil, content, errors.New("unterminated YAML frontmatter (no closing '---')")
			}
			end = len(rest) - len(fence) - 1
			header, body = rest[:end], ""
		} else {
			header, body = rest[:end], rest[end+len(fence)+2:]
		}
	}

	fields := map[string]any{}
	if strings.TrimSpace(header) != "" {
		var node any
		if err := yaml.Unmarshal([]byte(header), &node); err != nil {
			return nil, body, fmt.Errorf("invalid YAML frontmatter: %w", err)
		}
		m, ok := node.(map[string]any)
		if !ok {
			return nil, body, fmt.Errorf("YAML frontmatter must be a mapping, got %T", node)
		}
		fields = m
	}
	return fields, body, nil
}
