package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopic_PublishSubscribe(t *testing.T) {
	var topic Topic[NavigateMessage]
	var got []string

	unsubA := topic.Subscribe(func(m NavigateMessage) { got = append(got, "a:"+m.Target) })
	topic.Subscribe(func(m NavigateMessage) { got = append(got, "b:"+m.Target) })

	n := topic.Publish(NavigateMessage{Target: "/recap"})
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"a:/recap", "b:/recap"}, got)

	unsubA()
	unsubA()
	got = nil
	assert.Equal(t, 1, topic.Publish(NavigateMessage{Target: "/next"}))
	assert.Equal(t, []string{"b:/next"}, got)
}

func TestTopic_NoSubscribers(t *testing.T) {
	var topic Topic[ReflectionMessage]
	assert.Equal(t, 0, topic.Publish(ReflectionMessage{Reason: ReasonHints}))
}

func TestTopic_UnsubscribeInsideHandler(t *testing.T) {
	b := New()
	calls := 0
	var unsub func()
	unsub = b.OpenTutor.Subscribe(func(OpenTutorMessage) {
		calls++
		unsub()
	})

	b.OpenTutor.Publish(OpenTutorMessage{StudentID: "stu-1"})
	b.OpenTutor.Publish(OpenTutorMessage{StudentID: "stu-1"})
	assert.Equal(t, 1, calls)
}
