// Package content loads question banks from a content repository laid out as
//
//	data/<folder>/index.json        {"questions": ["980", "981", ...]}
//	data/<folder>/<id>.json         one question record
//	exhibits/<folder>/<id>/<file>   exhibit images
package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/conorfennell/stepquiz/internal/domain"
)

var (
	ErrSubjectNotFound  = errors.New("subject not found")
	ErrQuestionNotFound = errors.New("question not found")
)

// ExhibitPrefix is the URL path under which the web server exposes the
// exhibits of a local content directory.
const ExhibitPrefix = "/exhibits/"

// Source reads raw records from a content repository.
type Source interface {
	// Index returns the question ids listed for a subject folder.
	Index(ctx context.Context, folder string) ([]string, error)
	// Question returns one question. A missing record yields ErrQuestionNotFound.
	Question(ctx context.Context, folder, id string) (*domain.Question, error)
	// ExhibitURL returns where a browser can fetch an exhibit file.
	ExhibitURL(folder, id, file string) string
}

type index struct {
	Questions []string `json:"questions"`
}

func indexPath(folder string) string {
	return path.Join("data", folder, "index.json")
}

func questionPath(folder, id string) string {
	return path.Join("data", folder, id+".json")
}

func exhibitPath(folder, id, file string) string {
	return path.Join("exhibits", folder, id, file)
}

// FSSource reads a content repository checked out on local disk.
type FSSource struct {
	Root string
}

// NewFSSource returns a source rooted at dir.
func NewFSSource(dir string) *FSSource {
	return &FSSource{Root: dir}
}

func (s *FSSource) readJSON(rel string, v any) error {
	data, err := os.ReadFile(filepath.Join(s.Root, filepath.FromSlash(rel)))
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func (s *FSSource) Index(ctx context.Context, folder string) ([]string, error) {
	var idx index
	if err := s.readJSON(indexPath(folder), &idx); err != nil {
		return nil, fmt.Errorf("failed to read index for %s: %w", folder, err)
	}
	return idx.Questions, nil
}

func (s *FSSource) Question(ctx context.Context, folder, id string) (*domain.Question, error) {
	var q domain.Question
	if err := s.readJSON(questionPath(folder, id), &q); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s/%s: %w", folder, id, ErrQuestionNotFound)
		}
		return nil, fmt.Errorf("failed to read question %s/%s: %w", folder, id, err)
	}
	return &q, nil
}

// ExhibitURL points at the web server's exhibit file handler.
func (s *FSSource) ExhibitURL(folder, id, file string) string {
	u := url.URL{Path: ExhibitPrefix + path.Join(folder, id, file)}
	return u.EscapedPath()
}

// ExhibitDir is the directory the web server serves under ExhibitPrefix.
func (s *FSSource) ExhibitDir() string {
	return filepath.Join(s.Root, "exhibits")
}

// HTTPSource reads a content repository from a static file host, such as
// the raw file endpoint of a git hosting service.
type HTTPSource struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPSource returns a source fetching relative to baseURL.
func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: timeout},
	}
}

func (s *HTTPSource) url(rel string) string {
	u, err := url.JoinPath(s.BaseURL, rel)
	if err != nil {
		return s.BaseURL + rel
	}
	return u
}

func (s *HTTPSource) getJSON(ctx context.Context, rel string, v any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url(rel), nil)
	if err != nil {
		return 0, err
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, fmt.Errorf("GET %s: unexpected status %d", rel, resp.StatusCode)
	}
	return resp.StatusCode, json.NewDecoder(resp.Body).Decode(v)
}

func (s *HTTPSource) Index(ctx context.Context, folder string) ([]string, error) {
	var idx index
	if _, err := s.getJSON(ctx, indexPath(folder), &idx); err != nil {
		return nil, fmt.Errorf("failed to load index for %s: %w", folder, err)
	}
	return idx.Questions, nil
}

func (s *HTTPSource) Question(ctx context.Context, folder, id string) (*domain.Question, error) {
	var q domain.Question
	status, err := s.getJSON(ctx, questionPath(folder, id), &q)
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("%s/%s: %w", folder, id, ErrQuestionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load question %s/%s: %w", folder, id, err)
	}
	return &q, nil
}

func (s *HTTPSource) ExhibitURL(folder, id, file string) string {
	return s.url(exhibitPath(folder, id, file))
}
