package contract

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/alexanderramin/orbit/internal/domain"
)

// DecodeFlash converts a path-recompute notification into an AdaptiveFlash.
// Fields may appear at the top level or under a nested "next" object.
func DecodeFlash(data []byte, now time.Time) (domain.AdaptiveFlash, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return domain.AdaptiveFlash{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return FlashFromMap(raw, now), nil
}

// FlashFromMap is DecodeFlash for an already parsed object.
func FlashFromMap(raw map[string]any, now time.Time) domain.AdaptiveFlash {
	next := object(raw, "next")
	return domain.AdaptiveFlash{
		EventType:        domain.CoalesceStr(str(raw, "eventType", "event_type", "type"), domain.EventPathRecomputed),
		CreatedAt:        timestamp(raw, now, "createdAt", "created_at"),
		TargetDifficulty: numPtr(raw, "targetDifficulty", "target_difficulty"),
		Misconceptions:   stringList(raw, "misconceptions"),
		NextReason:       domain.CoalesceStr(str(raw, "nextReason"), str(next, "reason")),
		NextTitle:        domain.CoalesceStr(str(raw, "nextTitle"), str(next, "title")),
		PrimaryStandard:  domain.CoalesceStr(str(raw, "primaryStandard"), str(next, "standard")),
		NextURL:          domain.CoalesceStr(str(raw, "nextUrl"), str(next, "url")),
	}
}
