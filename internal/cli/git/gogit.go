// Package git provides the go-git backed implementation of mdboy.GitClient
// used for diff-only scope filtering.
package git

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	gogit "github.com/go-git/go-git/v5"
)

// GoGitClient implements mdboy.GitClient using go-git.
type GoGitClient struct {
	logger *slog.Logger
}

// NewGoGitClient creates a GoGitClient logging through handler.
func NewGoGitClient(handler slog.Handler) *GoGitClient {
	logger := slog.New(handler).With(
		slog.String("component", "gitClient"),
		slog.String("backend", "go-git"))
	return &GoGitClient{logger: logger}
}

// ChangedFiles implements mdboy.GitClient. It returns the repo-relative,
// slash-separated paths of files with staged or unstaged modifications in
// the repository at or above repoPath. Untracked files are excluded: a file
// never committed is not a "change" to mend differentially.
func (c *GoGitClient) ChangedFiles(repoPath string) (map[string]struct{}, error) {
	absPath, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve repository path %q: %w", repoPath, err)
	}

	repo, err := gogit.PlainOpenWithOptions(absPath, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("repository not found at or above %q: %w", absPath, err)
		}
		return nil, fmt.Errorf("failed to open repository at %q: %w", absPath, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree for %q: %w", repoPath, err)
	}
	status, err := worktree.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to get git status for %q: %w", repoPath, err)
	}

	changed := make(map[string]struct{})
	for path, fileStatus := range status {
		untracked := fileStatus.Staging == gogit.Untracked && fileStatus.Worktree == gogit.Untracked
		if untracked {
			continue
		}
		if fileStatus.Staging != gogit.Unmodified || fileStatus.Worktree != gogit.Unmodified {
			changed[filepath.ToSlash(path)] = struct{}{}
		}
	}
	c.logger.Debug("Collected changed files",
		slog.String("repo", absPath), slog.Int("count", len(changed)))
	return changed, nil
}
