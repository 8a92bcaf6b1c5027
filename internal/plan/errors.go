package plan

import "errors"

var (
	// ErrUnknownTask indicates a status change for a task not in today's plan.
	ErrUnknownTask = errors.New("task is not in today's plan")

	// ErrInvalidStatus indicates a status outside pending/done/skipped.
	ErrInvalidStatus = errors.New("invalid task status")
)
