package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/conorfennell/stepquiz/internal/domain"
	"github.com/conorfennell/stepquiz/internal/render"
)

// DefaultParallelism bounds concurrent question fetches per subject.
const DefaultParallelism = 16

// Loader resolves subjects and loads their questions through a Source.
// Loaded subjects are cached for the life of the Loader; Invalidate drops
// the cache after the content repository changes.
type Loader struct {
	source      Source
	subjects    []domain.Subject
	validate    *validator.Validate
	logger      *slog.Logger
	parallelism int

	mu    sync.Mutex
	cache map[string][]*domain.Question
}

// NewLoader creates a Loader over the given subject catalog.
func NewLoader(source Source, subjects []domain.Subject, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		source:      source,
		subjects:    subjects,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		logger:      logger,
		parallelism: DefaultParallelism,
		cache:       make(map[string][]*domain.Question),
	}
}

// Source returns the underlying content source.
func (l *Loader) Source() Source {
	return l.source
}

// Subjects returns the subject catalog.
func (l *Loader) Subjects() []domain.Subject {
	return l.subjects
}

// Subject looks up a subject by key.
func (l *Loader) Subject(key string) (domain.Subject, error) {
	for _, s := range l.subjects {
		if s.Key == key {
			return s, nil
		}
	}
	return domain.Subject{}, fmt.Errorf("%s: %w", key, ErrSubjectNotFound)
}

// LoadSubject returns every loadable question of a subject in index order.
// Questions that fail to load or validate are logged and skipped.
func (l *Loader) LoadSubject(ctx context.Context, key string) ([]*domain.Question, error) {
	subject, err := l.Subject(key)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	cached, ok := l.cache[key]
	l.mu.Unlock()
	if ok {
		l.logger.Debug("using cached subject", "subject", key)
		return cached, nil
	}

	l.logger.Info("loading subject", "subject", key, "folder", subject.FolderName)
	ids, err := l.source.Index(ctx, subject.FolderName)
	if err != nil {
		return nil, fmt.Errorf("failed to load subject %s: %w", key, err)
	}
	if len(ids) == 0 {
		l.logger.Warn("no questions in index", "subject", key)
		return []*domain.Question{}, nil
	}

	loaded := make([]*domain.Question, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.parallelism)
	for i, id := range ids {
		g.Go(func() error {
			q, err := l.source.Question(gctx, subject.FolderName, id)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				l.logger.Warn("failed to load question", "subject", key, "question", id, "error", err)
				return nil
			}
			if err := l.validate.Struct(q); err != nil {
				l.logger.Warn("invalid question", "subject", key, "question", id, "error", err)
				return nil
			}
			loaded[i] = q
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load subject %s: %w", key, err)
	}

	questions := make([]*domain.Question, 0, len(loaded))
	for _, q := range loaded {
		if q != nil {
			questions = append(questions, q)
		}
	}
	l.logger.Info("subject loaded", "subject", key, "loaded", len(questions), "listed", len(ids))

	l.mu.Lock()
	l.cache[key] = questions
	l.mu.Unlock()
	return questions, nil
}

// FindQuestion returns one question of a subject.
func (l *Loader) FindQuestion(ctx context.Context, key, id string) (*domain.Question, error) {
	questions, err := l.LoadSubject(ctx, key)
	if err != nil {
		return nil, err
	}
	for _, q := range questions {
		if q.ID == id {
			return q, nil
		}
	}
	return nil, fmt.Errorf("%s/%s: %w", key, id, ErrQuestionNotFound)
}

// Cached returns the questions of a subject if they are already loaded.
func (l *Loader) Cached(key string) ([]*domain.Question, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	questions, ok := l.cache[key]
	return questions, ok
}

// Invalidate drops every cached subject.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	l.cache = make(map[string][]*domain.Question)
	l.mu.Unlock()
}

// ExhibitResolver returns a render.ExhibitURLFunc for questions of subject.
func (l *Loader) ExhibitResolver(subject domain.Subject) render.ExhibitURLFunc {
	return func(q *domain.Question, file string) string {
		return l.source.ExhibitURL(subject.FolderName, q.ID, file)
	}
}

// IsNotFound reports whether err means a subject or question does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSubjectNotFound) || errors.Is(err, ErrQuestionNotFound)
}
