package content

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alexanderramin/orbit/internal/contract"
	"github.com/alexanderramin/orbit/internal/domain"
)

// maxBody caps how much of a response is read.
const maxBody = 1 << 20

// HTTPSource talks to the content/profile service over JSON HTTP.
type HTTPSource struct {
	baseURL string
	client  *http.Client
	now     func() time.Time
}

// NewHTTPSource creates a source rooted at baseURL. timeout bounds each request.
func NewHTTPSource(baseURL string, timeout time.Duration, now func() time.Time) *HTTPSource {
	if now == nil {
		now = time.Now
	}
	return &HTTPSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		now:     now,
	}
}

// Fetch performs GET {base}/students/{id}/dashboard.
func (s *HTTPSource) Fetch(ctx context.Context, studentID string) (*contract.Dashboard, error) {
	body, err := s.do(ctx, http.MethodGet, s.studentURL(studentID, "dashboard"), nil)
	if err != nil {
		return nil, fmt.Errorf("fetching dashboard: %w", err)
	}
	d, err := contract.DecodeDashboard(body, studentID, s.now())
	if err != nil {
		return nil, fmt.Errorf("fetching dashboard: %w", err)
	}
	return d, nil
}

// Recompute performs POST {base}/students/{id}/path/recompute with the lesson
// result and decodes the notification. Notifications without an event type
// are treated as lesson completions.
func (s *HTTPSource) Recompute(ctx context.Context, studentID string, res LessonResult) (domain.AdaptiveFlash, error) {
	payload, err := json.Marshal(res)
	if err != nil {
		return domain.AdaptiveFlash{}, fmt.Errorf("encoding lesson result: %w", err)
	}
	body, err := s.do(ctx, http.MethodPost, s.studentURL(studentID, "path/recompute"), payload)
	if err != nil {
		return domain.AdaptiveFlash{}, fmt.Errorf("recomputing path: %w", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return domain.AdaptiveFlash{}, fmt.Errorf("recomputing path: %w: %v", contract.ErrMalformedPayload, err)
	}
	if raw == nil {
		raw = map[string]any{}
	}
	if !hasAny(raw, "eventType", "event_type", "type") {
		raw["eventType"] = domain.EventLessonCompleted
	}
	f := contract.FlashFromMap(raw, s.now())
	if f.NextTitle == "" {
		f.NextTitle = res.Title
	}
	return f, nil
}

func (s *HTTPSource) studentURL(studentID, suffix string) string {
	return s.baseURL + "/students/" + url.PathEscape(studentID) + "/" + suffix
}

func (s *HTTPSource) do(ctx context.Context, method, target string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, fmt.Errorf("%w: timeout", ErrUnavailable)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrStudentNotFound
	case resp.StatusCode >= 300:
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	return body, nil
}

func hasAny(m map[string]any, keys ...string) bool {
	for _, k := range keys {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}

var (
	_ Source     = (*HTTPSource)(nil)
	_ Recomputer = (*HTTPSource)(nil)
	_ Recomputer = LocalRecomputer{}
)
