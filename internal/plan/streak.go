package plan

import "github.com/alexanderramin/orbit/internal/domain"

// Record is the persisted micro-plan document: the live day plus the folded
// history of earlier days.
type Record struct {
	State   domain.MicroPlanState `json:"state"`
	Tasks   []domain.MicroTask    `json:"tasks"`
	History []domain.StreakDay    `json:"history"`
}

// LoadOrRoll returns the record to use for today. A record for today is
// reused as-is. A record for any other day is folded into history as
// {day, allDone} and replaced by a fresh empty state.
func LoadOrRoll(persisted Record, today string) (Record, bool) {
	if persisted.State.Statuses == nil {
		persisted.State.Statuses = map[string]domain.TaskStatus{}
	}
	if persisted.State.TaskIDs == nil {
		persisted.State.TaskIDs = []string{}
	}
	if persisted.State.Day == today {
		return persisted, false
	}

	history := persisted.History
	if persisted.State.Day != "" {
		history = appendDay(history, domain.StreakDay{
			Date:      persisted.State.Day,
			Completed: persisted.State.AllDone(),
		})
	}

	return Record{
		State:   domain.NewMicroPlanState(today),
		Tasks:   []domain.MicroTask{},
		History: history,
	}, true
}

// appendDay adds day to history, replacing an existing entry for the same
// date, and keeps only the most recent StreakWindow entries.
func appendDay(history []domain.StreakDay, day domain.StreakDay) []domain.StreakDay {
	out := make([]domain.StreakDay, 0, len(history)+1)
	for _, h := range history {
		if h.Date != day.Date {
			out = append(out, h)
		}
	}
	out = append(out, day)
	if len(out) > domain.StreakWindow {
		out = out[len(out)-domain.StreakWindow:]
	}
	return out
}

// ComputeStreak returns the length of the run of completed days ending today.
// Today counts only when liveCompletedToday is true; an unfinished today
// ends the run at zero. Earlier days count when history marks them
// completed, and the first missing or incomplete day stops the walk.
func ComputeStreak(history []domain.StreakDay, liveCompletedToday bool, today string) int {
	if !liveCompletedToday {
		return 0
	}

	completed := make(map[string]bool, len(history))
	for _, h := range history {
		completed[h.Date] = h.Completed
	}

	streak := 1
	for cursor := domain.AddDays(today, -1); completed[cursor]; cursor = domain.AddDays(cursor, -1) {
		streak++
		// AddDays returns unparseable keys unchanged.
		if streak > len(history)+1 {
			break
		}
	}
	return streak
}
