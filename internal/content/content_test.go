package content

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alexanderramin/orbit/internal/contract"
	"github.com/alexanderramin/orbit/internal/domain"
	"github.com/alexanderramin/orbit/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fetchNow = time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return fetchNow }

const dashboardDoc = `{
  "plan": [{"id": "p1", "title": "Fractions warm-up", "minutes": 8, "subject": "math"}],
  "stats": {"level": 3, "recentAccuracy": 64}
}`

func TestHTTPSource_Fetch(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(dashboardDoc))
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL+"/", time.Second, fixedNow)
	d, err := src.Fetch(context.Background(), "stu 1")
	require.NoError(t, err)

	assert.Equal(t, "/students/stu%201/dashboard", gotPath)
	assert.Equal(t, "stu 1", d.StudentID)
	require.Len(t, d.Plan, 1)
	assert.Equal(t, "Fractions warm-up", d.Plan[0].Title)
	assert.Equal(t, 3, d.Stats.Level)
	require.NotNil(t, d.Stats.RecentAccuracy)
	assert.InDelta(t, 64.0, *d.Stats.RecentAccuracy, 0.001)
}

func TestHTTPSource_Fetch_StatusErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"not found", http.StatusNotFound, ErrStudentNotFound},
		{"server error", http.StatusBadGateway, ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			_, err := NewHTTPSource(srv.URL, time.Second, fixedNow).Fetch(context.Background(), "stu-1")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestHTTPSource_Fetch_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>oops</html>"))
	}))
	defer srv.Close()

	_, err := NewHTTPSource(srv.URL, time.Second, fixedNow).Fetch(context.Background(), "stu-1")
	assert.ErrorIs(t, err, contract.ErrMalformedPayload)
}

func TestHTTPSource_Fetch_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewHTTPSource(srv.URL, 50*time.Millisecond, fixedNow).Fetch(context.Background(), "stu-1")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPSource_Recompute(t *testing.T) {
	var got LessonResult
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/students/stu-1/path/recompute", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"misconceptions": ["frac.equiv"], "next": {"reason": "remediation", "url": "/lessons/L-11"}}`))
	}))
	defer srv.Close()

	res := LessonResult{LessonRef: "L-10", Title: "Equivalent fractions", Accuracy: testutil.Float(60)}
	f, err := NewHTTPSource(srv.URL, time.Second, fixedNow).Recompute(context.Background(), "stu-1", res)
	require.NoError(t, err)

	assert.Equal(t, "L-10", got.LessonRef)
	assert.Equal(t, domain.EventLessonCompleted, f.EventType)
	assert.True(t, f.IsLessonCompletion())
	assert.Equal(t, []string{"frac.equiv"}, f.Misconceptions)
	assert.Equal(t, domain.ReasonRemediation, f.NextReason)
	assert.Equal(t, "/lessons/L-11", f.NextURL)
	assert.Equal(t, "Equivalent fractions", f.NextTitle)
	assert.Equal(t, fetchNow, f.CreatedAt)
}

func TestHTTPSource_Recompute_KeepsServerEventType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"type": "path_recomputed"}`))
	}))
	defer srv.Close()

	f, err := NewHTTPSource(srv.URL, time.Second, fixedNow).Recompute(context.Background(), "stu-1", LessonResult{LessonRef: "L-1"})
	require.NoError(t, err)
	assert.Equal(t, domain.EventPathRecomputed, f.EventType)
}

func TestFileSource_SingleAndMultiStudent(t *testing.T) {
	dir := t.TempDir()
	single := filepath.Join(dir, "single.json")
	multi := filepath.Join(dir, "multi.json")
	require.NoError(t, os.WriteFile(single, []byte(dashboardDoc), 0o600))
	require.NoError(t, os.WriteFile(multi, []byte(`{"students": {"ana": `+dashboardDoc+`}}`), 0o600))

	d, err := NewFileSource(single, fixedNow).Fetch(context.Background(), "anyone")
	require.NoError(t, err)
	assert.Len(t, d.Plan, 1)

	d, err = NewFileSource(multi, fixedNow).Fetch(context.Background(), "ana")
	require.NoError(t, err)
	assert.Equal(t, "ana", d.StudentID)

	_, err = NewFileSource(multi, fixedNow).Fetch(context.Background(), "ben")
	assert.ErrorIs(t, err, ErrStudentNotFound)

	_, err = NewFileSource(filepath.Join(dir, "missing.json"), fixedNow).Fetch(context.Background(), "ana")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

type failingSource struct{ err error }

func (f failingSource) Fetch(context.Context, string) (*contract.Dashboard, error) {
	return nil, f.err
}

func TestFetchOrEmpty_DegradesAndLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	d := FetchOrEmpty(context.Background(), failingSource{err: errors.New("boom")}, "stu-1", logger)
	assert.Equal(t, "stu-1", d.StudentID)
	assert.Empty(t, d.Plan)
	assert.Equal(t, contract.DefaultPersona(), d.Persona)
	assert.Contains(t, buf.String(), "content_fetch_failed")

	d = FetchOrEmpty(context.Background(), nil, "stu-2", logger)
	assert.Equal(t, "stu-2", d.StudentID)
}

func TestLocalRecomputer(t *testing.T) {
	r := LocalRecomputer{Now: fixedNow}
	tests := []struct {
		name   string
		res    LessonResult
		reason string
	}{
		{"misconceptions", LessonResult{Accuracy: testutil.Float(95), Misconceptions: []string{"frac.equiv"}}, domain.ReasonRemediation},
		{"low accuracy", LessonResult{Accuracy: testutil.Float(55)}, domain.ReasonRemediation},
		{"high accuracy", LessonResult{Accuracy: testutil.Float(92)}, domain.ReasonStretch},
		{"middling", LessonResult{Accuracy: testutil.Float(80)}, domain.ReasonContinue},
		{"no score", LessonResult{}, domain.ReasonContinue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := r.Recompute(context.Background(), "stu-1", tt.res)
			require.NoError(t, err)
			assert.Equal(t, tt.reason, f.NextReason)
			assert.Equal(t, domain.EventLessonCompleted, f.EventType)
			assert.NotNil(t, f.Misconceptions)
			assert.Equal(t, fetchNow, f.CreatedAt)
		})
	}
}
