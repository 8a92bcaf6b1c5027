package tutor

import (
	"strings"
	"sync"

	"github.com/alexanderramin/orbit/internal/contract"
)

// Catalog holds curated explanations keyed by subject and topic. It is
// owned by a student session and replaced on refresh.
type Catalog struct {
	mu      sync.RWMutex
	entries []contract.CannedExplanation
}

// NewCatalog builds a Catalog from curated explanations.
func NewCatalog(entries []contract.CannedExplanation) *Catalog {
	c := &Catalog{}
	c.Replace(entries)
	return c
}

// Replace swaps the catalog contents.
func (c *Catalog) Replace(entries []contract.CannedExplanation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append([]contract.CannedExplanation{}, entries...)
}

// Lookup returns the explanation for subject and topic. An exact topic
// match wins over a subject-wide entry with no topic.
func (c *Catalog) Lookup(subject, topic string) (string, bool) {
	if c == nil || subject == "" {
		return "", false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	var subjectWide string
	for _, e := range c.entries {
		if !strings.EqualFold(e.Subject, subject) {
			continue
		}
		if topic != "" && strings.EqualFold(e.Topic, topic) {
			return e.Text, true
		}
		if e.Topic == "" && subjectWide == "" {
			subjectWide = e.Text
		}
	}
	return subjectWide, subjectWide != ""
}

// Len returns the number of curated explanations.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
