package content

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conorfennell/stepquiz/internal/domain"
)

var testSubjects = []domain.Subject{
	{Key: "cvs", FolderName: "CVS 23", NameEN: "Cardiology", NameZH: "心脏病学"},
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, root, rel, body string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
}

// writeBank creates a content repo with questions 1 and 3 valid, 2 missing
// and 4 failing validation.
func writeBank(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "data/CVS 23/index.json", `{"questions": ["1", "2", "3", "4"]}`)
	writeFile(t, root, "data/CVS 23/1.json", `{"question_id": "1", "correct_answer": "A", "question": "one"}`)
	writeFile(t, root, "data/CVS 23/3.json", `{"question_id": "3", "correct_answer": "B", "question": {"en": "three"}}`)
	writeFile(t, root, "data/CVS 23/4.json", `{"question_id": "4", "correct_answer": "Z"}`)
	writeFile(t, root, "exhibits/CVS 23/1/image1.jpg", "jpeg")
	return root
}

func TestFSSource(t *testing.T) {
	src := NewFSSource(writeBank(t))
	ctx := context.Background()

	ids, err := src.Index(ctx, "CVS 23")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3", "4"}, ids)

	q, err := src.Question(ctx, "CVS 23", "3")
	require.NoError(t, err)
	assert.Equal(t, "3", q.ID)
	assert.Equal(t, domain.Bilingual("", "three"), q.Prompt)

	_, err = src.Question(ctx, "CVS 23", "2")
	assert.ErrorIs(t, err, ErrQuestionNotFound)

	_, err = src.Index(ctx, "Missing")
	assert.Error(t, err)

	assert.Equal(t, "/exhibits/CVS%2023/1/image1.jpg", src.ExhibitURL("CVS 23", "1", "image1.jpg"))
}

func TestHTTPSource(t *testing.T) {
	root := writeBank(t)
	var requested []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = append(requested, r.URL.EscapedPath())
		http.FileServer(http.Dir(root)).ServeHTTP(w, r)
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL+"/", 5*time.Second)
	ctx := context.Background()

	ids, err := src.Index(ctx, "CVS 23")
	require.NoError(t, err)
	assert.Len(t, ids, 4)
	assert.Contains(t, requested, "/data/CVS%2023/index.json")

	q, err := src.Question(ctx, "CVS 23", "1")
	require.NoError(t, err)
	assert.Equal(t, domain.Text("one"), q.Prompt)

	_, err = src.Question(ctx, "CVS 23", "2")
	assert.ErrorIs(t, err, ErrQuestionNotFound)

	assert.Equal(t, srv.URL+"/exhibits/CVS%2023/1/image1.jpg", src.ExhibitURL("CVS 23", "1", "image1.jpg"))
}

type countingSource struct {
	Source
	indexCalls atomic.Int32
}

func (s *countingSource) Index(ctx context.Context, folder string) ([]string, error) {
	s.indexCalls.Add(1)
	return s.Source.Index(ctx, folder)
}

func TestLoader_LoadSubject(t *testing.T) {
	src := &countingSource{Source: NewFSSource(writeBank(t))}
	l := NewLoader(src, testSubjects, discardLogger())
	ctx := context.Background()

	questions, err := l.LoadSubject(ctx, "cvs")
	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Equal(t, "1", questions[0].ID)
	assert.Equal(t, "3", questions[1].ID)

	again, err := l.LoadSubject(ctx, "cvs")
	require.NoError(t, err)
	assert.Equal(t, questions, again)
	assert.EqualValues(t, 1, src.indexCalls.Load())

	l.Invalidate()
	_, err = l.LoadSubject(ctx, "cvs")
	require.NoError(t, err)
	assert.EqualValues(t, 2, src.indexCalls.Load())
}

func TestLoader_NotFound(t *testing.T) {
	l := NewLoader(NewFSSource(writeBank(t)), testSubjects, discardLogger())
	ctx := context.Background()

	_, err := l.LoadSubject(ctx, "derma")
	assert.ErrorIs(t, err, ErrSubjectNotFound)
	assert.True(t, IsNotFound(err))

	_, err = l.FindQuestion(ctx, "cvs", "2")
	assert.ErrorIs(t, err, ErrQuestionNotFound)
	assert.True(t, IsNotFound(err))

	q, err := l.FindQuestion(ctx, "cvs", "3")
	require.NoError(t, err)
	assert.Equal(t, "3", q.ID)
}

func TestLoader_EmptyIndex(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "data/CVS 23/index.json", `{}`)
	l := NewLoader(NewFSSource(root), testSubjects, discardLogger())

	questions, err := l.LoadSubject(context.Background(), "cvs")
	require.NoError(t, err)
	assert.Empty(t, questions)
}

func TestLoader_IndexFailure(t *testing.T) {
	l := NewLoader(NewFSSource(t.TempDir()), testSubjects, discardLogger())

	_, err := l.LoadSubject(context.Background(), "cvs")
	require.Error(t, err)
	assert.False(t, IsNotFound(err))
}

func TestLoader_Cancelled(t *testing.T) {
	l := NewLoader(NewFSSource(writeBank(t)), testSubjects, discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.LoadSubject(ctx, "cvs")
	if err != nil {
		assert.True(t, errors.Is(err, context.Canceled))
	}
}

func TestLoader_ExhibitResolver(t *testing.T) {
	l := NewLoader(NewFSSource("/content"), testSubjects, discardLogger())
	resolve := l.ExhibitResolver(testSubjects[0])

	got := resolve(&domain.Question{ID: "980"}, "image 1.jpg")
	assert.Equal(t, "/exhibits/CVS%2023/980/image%201.jpg", got)
}
