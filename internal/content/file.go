package content

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/alexanderramin/orbit/internal/contract"
)

// FileSource reads dashboards from a JSON document on disk. The document is
// either one dashboard, or an object with a "students" map keyed by student id.
// It is re-read on every Fetch so edits show up without a restart.
type FileSource struct {
	path string
	now  func() time.Time
}

// NewFileSource creates a source for path.
func NewFileSource(path string, now func() time.Time) *FileSource {
	if now == nil {
		now = time.Now
	}
	return &FileSource{path: path, now: now}
}

func (s *FileSource) Fetch(_ context.Context, studentID string) (*contract.Dashboard, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}

	var doc struct {
		Students map[string]json.RawMessage `json:"students"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("reading %s: %w: %v", s.path, contract.ErrMalformedPayload, err)
	}
	if doc.Students != nil {
		entry, ok := doc.Students[studentID]
		if !ok {
			return nil, ErrStudentNotFound
		}
		data = entry
	}

	d, err := contract.DecodeDashboard(data, studentID, s.now())
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}
	return d, nil
}

var _ Source = (*FileSource)(nil)
