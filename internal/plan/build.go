package plan

import (
	"fmt"
	"sort"

	"github.com/alexanderramin/orbit/internal/contract"
	"github.com/alexanderramin/orbit/internal/domain"
)

const (
	// MaxTasks and MinTasks bound the size of a day's micro-plan.
	MaxTasks = 3
	MinTasks = 2

	defaultTaskMinutes = 10
	minTaskMinutes     = 3
	maxTaskMinutes     = 30
	spacedTaskMinutes  = 5
)

// BuildMicroTasks turns upstream recommendations into the day's 2-3 tasks.
// When fewer than MinTasks recommendations exist, spaced reviews of the
// weakest subjects fill the gap.
func BuildMicroTasks(items []contract.PlanItem, mastery map[string]float64) []domain.MicroTask {
	tasks := make([]domain.MicroTask, 0, MaxTasks)
	seen := make(map[string]bool)

	for _, item := range items {
		if len(tasks) == MaxTasks {
			break
		}
		if item.ID == "" || seen[item.ID] {
			continue
		}
		seen[item.ID] = true

		minutes := item.Minutes
		if minutes <= 0 {
			minutes = defaultTaskMinutes
		}
		tasks = append(tasks, domain.MicroTask{
			ID:          item.ID,
			Label:       item.Title,
			Minutes:     domain.ClampInt(minutes, minTaskMinutes, maxTaskMinutes),
			Kind:        item.Kind,
			SubjectHint: item.Subject,
			LessonRef:   item.LessonRef,
		})
	}

	for _, subject := range weakestSubjects(mastery) {
		if len(tasks) >= MinTasks {
			break
		}
		id := "spaced-" + subject
		if seen[id] {
			continue
		}
		seen[id] = true
		tasks = append(tasks, domain.MicroTask{
			ID:          id,
			Label:       fmt.Sprintf("Quick review: %s", subject),
			Minutes:     spacedTaskMinutes,
			Kind:        domain.TaskSpaced,
			SubjectHint: subject,
		})
	}

	return tasks
}

func weakestSubjects(mastery map[string]float64) []string {
	subjects := make([]string, 0, len(mastery))
	for s := range mastery {
		subjects = append(subjects, s)
	}
	sort.Slice(subjects, func(i, j int) bool {
		if mastery[subjects[i]] != mastery[subjects[j]] {
			return mastery[subjects[i]] < mastery[subjects[j]]
		}
		return subjects[i] < subjects[j]
	})
	return subjects
}
