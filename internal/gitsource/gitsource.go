package gitsource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/go-git/go-git/v5"
)

// Result describes what a sync did to the local checkout.
type Result struct {
	Cloned  bool
	Updated bool
	Head    string
}

// Sync clones the question bank repository at url into localPath if it is
// not there yet, or pulls the latest changes if it is. Git progress output
// goes to progress, which may be nil.
func Sync(ctx context.Context, url, localPath string, progress io.Writer) (Result, error) {
	var res Result

	_, err := os.Stat(localPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		slog.Info("cloning content repository", "url", url, "path", localPath)
		// Full history: later pulls fail with "object not found" on a
		// shallow checkout.
		repo, err := git.PlainCloneContext(ctx, localPath, false, &git.CloneOptions{
			URL:      url,
			Progress: progress,
		})
		if err != nil {
			return res, fmt.Errorf("failed to clone repo %s: %w", url, err)
		}
		res.Cloned = true
		res.Head, err = head(repo)
		if err != nil {
			return res, err
		}

	case err == nil:
		slog.Info("pulling content repository", "path", localPath)
		repo, err := git.PlainOpen(localPath)
		if err != nil {
			return res, fmt.Errorf("failed to open existing repo at %s: %w", localPath, err)
		}

		worktree, err := repo.Worktree()
		if err != nil {
			return res, fmt.Errorf("failed to get worktree for repo at %s: %w", localPath, err)
		}

		err = worktree.PullContext(ctx, &git.PullOptions{
			RemoteName: "origin",
			Progress:   progress,
		})
		if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
			return res, fmt.Errorf("failed to pull changes for repo at %s: %w", localPath, err)
		}
		res.Updated = err == nil
		res.Head, err = head(repo)
		if err != nil {
			return res, err
		}

	default:
		return res, fmt.Errorf("error checking path %s: %w", localPath, err)
	}

	slog.Info("content repository synced", "path", localPath, "head", res.Head, "cloned", res.Cloned, "updated", res.Updated)
	return res, nil
}

func head(repo *git.Repository) (string, error) {
	ref, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	return ref.Hash().String(), nil
}
