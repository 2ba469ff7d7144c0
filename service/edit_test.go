package services

import (
	"testing"
	"time"

	model "github.com/kmaina/CommitteeDesk/models"
	"github.com/stretchr/testify/assert"
)

func pendingItem() *model.BusinessItem {
	committed := time.Date(2025, time.February, 3, 0, 0, 0, 0, time.UTC)
	due := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	return &model.BusinessItem{
		ID:               "1",
		Title:            "Water Report",
		CommitteeName:    "Lands Committee",
		Category:         model.CategoryReport,
		DateCommitted:    committed,
		AllocatedDays:    35,
		PresentationDate: &due,
		Status:           model.StatusPending,
	}
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestApplyEditRecomputesDeadlineWhilePending(t *testing.T) {
	now := time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC)
	item := pendingItem()

	fields, err := applyEdit(item, ItemUpdate{AllocatedDays: intPtr(40)}, now)
	assert.NoError(t, err)

	// Mon 2025-02-03 + 40 days = Sat 2025-03-15, adjusted to Mon 2025-03-17.
	expected := time.Date(2025, time.March, 17, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, expected, *item.PresentationDate)
	assert.Equal(t, expected, fields["presentation_date"])
	assert.Equal(t, 40, fields["allocated_days"])
}

func TestApplyEditDoesNotRecomputeWhenFrozen(t *testing.T) {
	now := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC) // past the deadline
	item := pendingItem()
	originalDue := *item.PresentationDate

	_, err := applyEdit(item, ItemUpdate{AllocatedDays: intPtr(40)}, now)
	assert.NoError(t, err)
	assert.Equal(t, originalDue, *item.PresentationDate)
}

func TestApplyEditStatusRules(t *testing.T) {
	now := time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC)

	t.Run("limbo without a reason is rejected", func(t *testing.T) {
		item := pendingItem()
		_, err := applyEdit(item, ItemUpdate{Status: strPtr(model.StatusLimbo)}, now)
		var validation *ValidationError
		assert.ErrorAs(t, err, &validation)
	})

	t.Run("concluded with a reason is accepted", func(t *testing.T) {
		item := pendingItem()
		fields, err := applyEdit(item, ItemUpdate{
			Status:       strPtr(model.StatusConcluded),
			StatusReason: strPtr("Presented and adopted"),
		}, now)
		assert.NoError(t, err)
		assert.Equal(t, model.StatusConcluded, fields["status"])
	})

	t.Run("derived statuses cannot be set directly", func(t *testing.T) {
		for _, status := range []string{model.StatusOverdue, model.StatusFrozen} {
			item := pendingItem()
			_, err := applyEdit(item, ItemUpdate{Status: strPtr(status)}, now)
			assert.Error(t, err, "status %s should be rejected", status)
		}
	})

	t.Run("unknown status is rejected", func(t *testing.T) {
		item := pendingItem()
		_, err := applyEdit(item, ItemUpdate{Status: strPtr("archived")}, now)
		assert.Error(t, err)
	})
}

func TestApplyEditLimboClearsDeadlineDespiteInputChanges(t *testing.T) {
	now := time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC)
	item := pendingItem()

	// Parking in limbo while also touching a deadline input must not hand the
	// item a recomputed date.
	fields, err := applyEdit(item, ItemUpdate{
		Status:        strPtr(model.StatusLimbo),
		StatusReason:  strPtr("Awaiting joint committee direction"),
		AllocatedDays: intPtr(40),
	}, now)
	assert.NoError(t, err)
	assert.Nil(t, item.PresentationDate)
	stored, ok := fields["presentation_date"]
	assert.True(t, ok)
	assert.Nil(t, stored)
	assert.Equal(t, model.StatusLimbo, EffectiveStatus(item.Status, item.PresentationDate, item.ExtensionsCount, now))
}

func TestApplyEditPresentationDateBeforeCommitRejected(t *testing.T) {
	now := time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC)
	item := pendingItem()
	early := item.DateCommitted.AddDate(0, 0, -1)

	_, err := applyEdit(item, ItemUpdate{PresentationDate: &early}, now)
	var validation *ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestApplyEditExplicitDateLeavesLimbo(t *testing.T) {
	now := time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC)
	item := pendingItem()
	item.PresentationDate = nil
	item.Status = model.StatusLimbo

	// Thu 2025-03-20 adjusts to Mon 2025-03-24.
	target := time.Date(2025, time.March, 20, 0, 0, 0, 0, time.UTC)
	fields, err := applyEdit(item, ItemUpdate{PresentationDate: &target}, now)
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.March, 24, 0, 0, 0, 0, time.UTC), fields["presentation_date"])
	assert.NotNil(t, item.PresentationDate)
}

func TestApplyEditEmptyTitleRejected(t *testing.T) {
	now := time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC)
	item := pendingItem()

	_, err := applyEdit(item, ItemUpdate{Title: strPtr("")}, now)
	assert.Error(t, err)
}
