// Package fingerprint identifies question content so a sync can tell which
// questions of a bank were added, edited or removed.
package fingerprint

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/conorfennell/stepquiz/internal/domain"
)

func normalizePart(part string) string {
	p := strings.ToLower(part)
	p = strings.TrimSpace(p)
	p = strings.ReplaceAll(p, "\r\n", "\n")
	return p
}

func text(t domain.LocalizedText) string {
	if t.IsPlain {
		return normalizePart(t.Plain)
	}
	return normalizePart(t.ZH) + "\n" + normalizePart(t.EN)
}

// Normalize concatenates the question's content after cleaning each part.
// Each part is trimmed and lowercased with line endings normalized, so
// whitespace and case edits do not count as changes.
func Normalize(q *domain.Question) string {
	parts := []string{text(q.Stem), text(q.Prompt)}
	for _, letter := range domain.OptionLetters {
		if opt, ok := q.Options[letter]; ok {
			parts = append(parts, letter+": "+text(opt))
		}
	}
	parts = append(parts,
		normalizePart(q.CorrectAnswer),
		text(q.Explanation),
		strings.Join(q.ExhibitFiles, ","),
	)
	return strings.Join(parts, "\n")
}

// Hash returns the SHA-256 of the normalized question as a hex string.
func Hash(q *domain.Question) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(Normalize(q))))
}

// Changes counts the differences between two loads of a bank.
type Changes struct {
	Added   int
	Changed int
	Removed int
}

// Diff compares questions by id and content hash.
func Diff(before, after []*domain.Question) Changes {
	old := make(map[string]string, len(before))
	for _, q := range before {
		old[q.ID] = Hash(q)
	}

	var c Changes
	for _, q := range after {
		h, ok := old[q.ID]
		switch {
		case !ok:
			c.Added++
		case h != Hash(q):
			c.Changed++
		}
		delete(old, q.ID)
	}
	c.Removed = len(old)
	return c
}
