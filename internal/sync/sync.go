package sync

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/conorfennell/stepquiz/internal/content"
	"github.com/conorfennell/stepquiz/internal/domain"
	"github.com/conorfennell/stepquiz/internal/fingerprint"
	"github.com/conorfennell/stepquiz/internal/gitsource"
)

// Options select the repository to sync.
type Options struct {
	// Repo is the git URL of the question bank. Empty means the content
	// directory is managed by hand and only the cache is refreshed.
	Repo string
	Dir  string
	// Progress receives git progress output; nil discards it.
	Progress io.Writer
}

// SubjectReport is the outcome of reloading one subject.
type SubjectReport struct {
	Key       string
	Questions int
	// Changes is only filled when the subject was loaded before the sync.
	Changes  fingerprint.Changes
	Compared bool
	Err      error
}

// Report summarises a sync.
type Report struct {
	Head     string
	Subjects []SubjectReport
	Errors   int
}

// Loaded returns the total number of questions across subjects.
func (r Report) Loaded() int {
	n := 0
	for _, s := range r.Subjects {
		n += s.Questions
	}
	return n
}

// RunSync brings the content directory up to date with its repository,
// drops the loader cache and reloads every subject so broken banks show up
// in the report instead of on the first page view.
func RunSync(ctx context.Context, opts Options, loader *content.Loader) (Report, error) {
	slog.Info("Starting content sync...", "repo", opts.Repo, "dir", opts.Dir)
	var report Report

	if opts.Repo != "" {
		if err := os.MkdirAll(filepath.Dir(filepath.Clean(opts.Dir)), os.ModePerm); err != nil {
			return report, fmt.Errorf("failed to create content parent directory: %w", err)
		}
		res, err := gitsource.Sync(ctx, opts.Repo, opts.Dir, opts.Progress)
		if err != nil {
			return report, fmt.Errorf("failed to sync content repo: %w", err)
		}
		report.Head = res.Head
	}

	previous := make(map[string][]*domain.Question)
	for _, subject := range loader.Subjects() {
		if questions, ok := loader.Cached(subject.Key); ok {
			previous[subject.Key] = questions
		}
	}
	loader.Invalidate()

	for _, subject := range loader.Subjects() {
		questions, err := loader.LoadSubject(ctx, subject.Key)
		sr := SubjectReport{Key: subject.Key, Questions: len(questions), Err: err}
		if before, ok := previous[subject.Key]; ok && err == nil {
			sr.Changes = fingerprint.Diff(before, questions)
			sr.Compared = true
			if sr.Changes != (fingerprint.Changes{}) {
				slog.Info("Subject changed", "subject", subject.Key,
					"added", sr.Changes.Added, "changed", sr.Changes.Changed, "removed", sr.Changes.Removed)
			}
		}
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			slog.Warn("Failed to reload subject", "subject", subject.Key, "error", err)
			report.Errors++
		}
		report.Subjects = append(report.Subjects, sr)
	}

	slog.Info("content sync complete",
		"head", report.Head,
		"subjects", len(report.Subjects),
		"questions", report.Loaded(),
		"errors", report.Errors,
	)
	return report, nil
}
