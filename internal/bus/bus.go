// Package bus is a typed in-process message bus for cross-component signals
// such as opening the tutor or prompting a reflection.
package bus

import "sync"

// Topic delivers messages of one type to its subscribers synchronously, in
// subscription order.
type Topic[T any] struct {
	mu     sync.RWMutex
	nextID int
	subs   []subscriber[T]
}

type subscriber[T any] struct {
	id int
	fn func(T)
}

// Subscribe registers fn and returns a function that removes it.
func (t *Topic[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	id := t.nextID
	t.subs = append(t.subs, subscriber[T]{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			for i, s := range t.subs {
				if s.id == id {
					t.subs = append(t.subs[:i:i], t.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Publish delivers msg to every current subscriber and returns how many
// received it. Subscribers may unsubscribe from inside their handler.
func (t *Topic[T]) Publish(msg T) int {
	t.mu.RLock()
	subs := append([]subscriber[T]{}, t.subs...)
	t.mu.RUnlock()

	for _, s := range subs {
		s.fn(msg)
	}
	return len(subs)
}

// OpenTutorMessage asks the chat surface to open with lesson context.
type OpenTutorMessage struct {
	StudentID string
	LessonRef string
	Subject   string
	Concept   string
	Prompt    string
}

// ReflectionMessage asks the chat surface to show a reflection prompt.
type ReflectionMessage struct {
	StudentID string
	SessionID string
	Reason    string
}

// Reflection reasons.
const (
	ReasonConfusion   = "confusion"
	ReasonHints       = "hints"
	ReasonLongSession = "long_session"
)

// NavigateMessage records a routing side effect, such as acting on a nudge.
type NavigateMessage struct {
	StudentID string `json:"studentId"`
	Target    string `json:"target"`
	Source    string `json:"source"`
}

// Bus groups the typed topics shared by a student session.
type Bus struct {
	OpenTutor  Topic[OpenTutorMessage]
	Reflection Topic[ReflectionMessage]
	Navigate   Topic[NavigateMessage]
}

// New returns an empty Bus.
func New() *Bus {
	return &Bus{}
}
