package services

import (
	"time"

	model "github.com/kmaina/CommitteeDesk/models"
)

// EffectiveStatus derives the status an item should present right now from
// its persisted state. It is evaluated on every read so listings and reports
// reflect current time even when nothing has been written since.
//
// Precedence, highest first:
//  1. concluded is terminal.
//  2. under_review is preserved as-is; countdown rules only apply once an
//     item has been approved into the pipeline.
//  3. no presentation date at all means limbo; time passing never moves an
//     item out of limbo, only an explicit edit does.
//  4. a countdown of zero or less means frozen. Due today is frozen, not
//     pending: freezing triggers at the boundary.
//  5. any remaining item that has ever been rescheduled shows overdue while
//     its countdown is still positive, so slipped items stay visually
//     distinct from items that never slipped.
//  6. otherwise pending.
func EffectiveStatus(storedStatus string, presentationDate *time.Time, extensionsCount int, now time.Time) string {
	if storedStatus == model.StatusConcluded {
		return model.StatusConcluded
	}
	if storedStatus == model.StatusUnderReview {
		return model.StatusUnderReview
	}
	if presentationDate == nil {
		return model.StatusLimbo
	}
	if Countdown(*presentationDate, now) <= 0 {
		return model.StatusFrozen
	}
	if extensionsCount > 0 {
		return model.StatusOverdue
	}
	return model.StatusPending
}
