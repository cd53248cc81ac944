package gitinfo

import (
	"fmt"

	"github.com/go-git/go-git/v5"
)

// GitInfoAdapter implements domain.GitInfo using go-git. Plugins usually live
// in a subdirectory of a marketplace repository, so the lookup walks upward.
type GitInfoAdapter struct{}

func New() *GitInfoAdapter {
	return &GitInfoAdapter{}
}

func (g *GitInfoAdapter) open(pluginRoot string) (*git.Repository, error) {
	return git.PlainOpenWithOptions(pluginRoot, &git.PlainOpenOptions{DetectDotGit: true})
}

func (g *GitInfoAdapter) IsGitRepo(pluginRoot string) bool {
	_, err := g.open(pluginRoot)
	return err == nil
}

func (g *GitInfoAdapter) CommitHash(pluginRoot string) (string, error) {
	repo, err := g.open(pluginRoot)
	if err != nil {
		return "", fmt.Errorf("opening git repo: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("getting HEAD: %w", err)
	}

	return head.Hash().String(), nil
}
