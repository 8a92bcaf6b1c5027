package plan

import (
	"testing"

	"github.com/alexanderramin/orbit/internal/contract"
	"github.com/alexanderramin/orbit/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMicroTasks_TakesAtMostThree(t *testing.T) {
	items := []contract.PlanItem{
		{ID: "a", Title: "A", Minutes: 12, Kind: domain.TaskNew},
		{ID: "b", Title: "B", Minutes: 0, Kind: domain.TaskReview},
		{ID: "a", Title: "dup"},
		{ID: "", Title: "no id"},
		{ID: "c", Title: "C", Minutes: 90},
		{ID: "d", Title: "D"},
	}

	tasks := BuildMicroTasks(items, nil)
	require.Len(t, tasks, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{tasks[0].ID, tasks[1].ID, tasks[2].ID})
	assert.Equal(t, 12, tasks[0].Minutes)
	assert.Equal(t, defaultTaskMinutes, tasks[1].Minutes)
	assert.Equal(t, maxTaskMinutes, tasks[2].Minutes)
}

func TestBuildMicroTasks_FillsWithSpacedReview(t *testing.T) {
	items := []contract.PlanItem{{ID: "a", Title: "A", Minutes: 10, Kind: domain.TaskNew}}
	mastery := map[string]float64{"math": 0.8, "science": 0.4, "reading": 0.6}

	tasks := BuildMicroTasks(items, mastery)
	require.Len(t, tasks, MinTasks)
	assert.Equal(t, "spaced-science", tasks[1].ID)
	assert.Equal(t, domain.TaskSpaced, tasks[1].Kind)
	assert.Equal(t, "Quick review: science", tasks[1].Label)
	assert.Equal(t, spacedTaskMinutes, tasks[1].Minutes)
}

func TestBuildMicroTasks_NothingUpstream(t *testing.T) {
	assert.Empty(t, BuildMicroTasks(nil, nil))
}
