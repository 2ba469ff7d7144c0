package services

import (
	"fmt"
	"log"
	"time"

	model "github.com/kmaina/CommitteeDesk/models"

	"gorm.io/gorm"
)

// CreateItemInput is the draft an item is created from. Either AllocatedDays
// must be positive or PresentationDate must already be supplied (the bulk
// import due-date mode).
type CreateItemInput struct {
	Title            string     `json:"title"`
	CommitteeName    string     `json:"committee_name"`
	Category         string     `json:"category"`
	DateCommitted    time.Time  `json:"date_committed"`
	AllocatedDays    int        `json:"allocated_days"`
	PresentationDate *time.Time `json:"presentation_date"`
	StatusReason     string     `json:"status_reason"`
}

// ItemUpdate is a partial field patch applied by EditItem or ConvertCategory.
// Nil fields are left untouched.
type ItemUpdate struct {
	Title            *string    `json:"title"`
	CommitteeName    *string    `json:"committee_name"`
	DateCommitted    *time.Time `json:"date_committed"`
	AllocatedDays    *int       `json:"allocated_days"`
	PresentationDate *time.Time `json:"presentation_date"`
	Status           *string    `json:"status"`
	StatusReason     *string    `json:"status_reason"`
}

// CreateItem validates the draft, computes its deadline and persists it.
// Privileged callers get their items published immediately as pending;
// everyone else starts in under_review awaiting approval.
func (s *ItemService) CreateItem(draft CreateItemInput, callerIsPrivileged bool) (*model.BusinessItem, error) {
	if draft.Title == "" {
		return nil, newValidationError("title is required")
	}
	if draft.CommitteeName == "" {
		return nil, newValidationError("committee name is required")
	}
	if !model.ValidCategory(draft.Category) {
		return nil, newValidationError("unknown category %q, valid options: %v", draft.Category, model.Categories)
	}
	if draft.DateCommitted.IsZero() {
		return nil, newValidationError("date committed is required")
	}

	var presentation time.Time
	if draft.PresentationDate != nil {
		if draft.PresentationDate.Before(draft.DateCommitted) {
			return nil, newValidationError("presentation date is before date committed")
		}
		presentation = NextSittingDay(*draft.PresentationDate)
	} else {
		if draft.AllocatedDays <= 0 {
			return nil, newValidationError("allocated days must be positive when no due date is given")
		}
		presentation = PresentationDate(draft.DateCommitted, draft.AllocatedDays)
	}

	status := model.StatusUnderReview
	if callerIsPrivileged {
		status = model.StatusPending
	}

	item := model.BusinessItem{
		Title:            draft.Title,
		CommitteeName:    draft.CommitteeName,
		Category:         draft.Category,
		DateCommitted:    draft.DateCommitted,
		AllocatedDays:    draft.AllocatedDays,
		PresentationDate: &presentation,
		Status:           status,
		StatusReason:     draft.StatusReason,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}

	table := model.TableForCategory(draft.Category)
	if err := s.db.Table(table).Create(&item).Error; err != nil {
		log.Printf("[CreateItem] Error creating item %q: %v", draft.Title, err)
		return nil, fmt.Errorf("failed to create item: %w", err)
	}
	log.Printf("[CreateItem] Created %s %q in %s with status %s", item.ID, item.Title, table, status)

	s.notifier.Record(item.ID, "create", map[string]interface{}{
		"category": item.Category,
		"status":   status,
	})
	s.indexItem(&item)
	return &item, nil
}

// Reschedule moves an item's deadline to the first sitting day on or after
// newTargetDate. Rescheduling always marks the item as having slipped: the
// extension counter goes up and the stored status becomes overdue, regardless
// of whether the new date lands comfortably in the future.
func (s *ItemService) Reschedule(id string, newTargetDate time.Time) (*model.BusinessItem, error) {
	item, table, err := s.findItem(id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	adjusted := NextSittingDay(newTargetDate)
	allocated := Countdown(adjusted, now)
	if allocated < 0 {
		allocated = 0
	}

	item.PresentationDate = &adjusted
	item.AllocatedDays = allocated
	item.ExtensionsCount++
	item.Status = model.StatusOverdue
	item.UpdatedAt = now

	fields := map[string]interface{}{
		"presentation_date": adjusted,
		"allocated_days":    allocated,
		"extensions_count":  item.ExtensionsCount,
		"status":            model.StatusOverdue,
		"updated_at":        now,
	}
	if err := s.db.Table(table).Where("id = ?", id).Updates(fields).Error; err != nil {
		log.Printf("[Reschedule] Error updating item %s: %v", id, err)
		return nil, fmt.Errorf("failed to reschedule item: %w", err)
	}
	log.Printf("[Reschedule] Item %s rescheduled to %s (extension #%d)", id, adjusted.Format("2006-01-02"), item.ExtensionsCount)

	s.notifier.Record(id, "reschedule", map[string]interface{}{
		"presentation_date": adjusted,
		"extensions_count":  item.ExtensionsCount,
	})
	s.indexItem(item)
	return item, nil
}

// EditItem applies a partial field patch. Deadline inputs changing while the
// item is still effectively pending trigger a recompute of the presentation
// date; parking an item in limbo or concluding it requires a reason.
func (s *ItemService) EditItem(id string, updates ItemUpdate) (*model.BusinessItem, error) {
	item, table, err := s.findItem(id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	fields, err := applyEdit(item, updates, now)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return item, nil
	}
	fields["updated_at"] = now
	item.UpdatedAt = now

	if err := s.db.Table(table).Where("id = ?", id).Updates(fields).Error; err != nil {
		log.Printf("[EditItem] Error updating item %s: %v", id, err)
		return nil, fmt.Errorf("failed to update item: %w", err)
	}

	s.notifier.Record(id, "edit", map[string]interface{}{"fields": fieldNames(fields)})
	s.indexItem(item)
	return item, nil
}

// applyEdit validates updates against item, mutates item in place and returns
// the column map to persist.
func applyEdit(item *model.BusinessItem, updates ItemUpdate, now time.Time) (map[string]interface{}, error) {
	fields := map[string]interface{}{}
	wasPending := EffectiveStatus(item.Status, item.PresentationDate, item.ExtensionsCount, now) == model.StatusPending

	if updates.Title != nil {
		if *updates.Title == "" {
			return nil, newValidationError("title must not be empty")
		}
		item.Title = *updates.Title
		fields["title"] = item.Title
	}
	if updates.CommitteeName != nil {
		if *updates.CommitteeName == "" {
			return nil, newValidationError("committee name must not be empty")
		}
		item.CommitteeName = *updates.CommitteeName
		fields["committee_name"] = item.CommitteeName
	}

	deadlineInputChanged := false
	if updates.DateCommitted != nil {
		item.DateCommitted = *updates.DateCommitted
		fields["date_committed"] = item.DateCommitted
		deadlineInputChanged = true
	}
	if updates.AllocatedDays != nil {
		if *updates.AllocatedDays < 0 {
			return nil, newValidationError("allocated days must not be negative")
		}
		item.AllocatedDays = *updates.AllocatedDays
		fields["allocated_days"] = item.AllocatedDays
		deadlineInputChanged = true
	}
	if updates.PresentationDate != nil {
		if updates.PresentationDate.Before(item.DateCommitted) {
			return nil, newValidationError("presentation date is before date committed")
		}
		adjusted := NextSittingDay(*updates.PresentationDate)
		item.PresentationDate = &adjusted
		fields["presentation_date"] = adjusted
	}

	if updates.StatusReason != nil {
		item.StatusReason = *updates.StatusReason
		fields["status_reason"] = item.StatusReason
	}
	if updates.Status != nil {
		newStatus := *updates.Status
		if !model.ValidStatus(newStatus) {
			return nil, newValidationError("unknown status %q, valid options: %v", newStatus, model.Statuses)
		}
		// Time-driven statuses belong to the sweep, not to editors.
		if newStatus == model.StatusOverdue || newStatus == model.StatusFrozen {
			return nil, newValidationError("status %q is derived automatically and cannot be set directly", newStatus)
		}
		if (newStatus == model.StatusLimbo || newStatus == model.StatusConcluded) && item.StatusReason == "" {
			return nil, newValidationError("a status reason is required when marking an item %s", newStatus)
		}
		item.Status = newStatus
		fields["status"] = newStatus
		// Limbo means no deadline at all, so parking an item clears it.
		if newStatus == model.StatusLimbo {
			item.PresentationDate = nil
			fields["presentation_date"] = nil
		}
	}

	// Recompute the deadline when its inputs move under a still-pending item.
	// An edit that parks the item in limbo keeps it deadline-free.
	if deadlineInputChanged && wasPending && updates.PresentationDate == nil && item.Status != model.StatusLimbo {
		recomputed := PresentationDate(item.DateCommitted, item.AllocatedDays)
		item.PresentationDate = &recomputed
		fields["presentation_date"] = recomputed
	}

	return fields, nil
}

// Approve publishes an item submitted by a non-privileged caller.
func (s *ItemService) Approve(id string) (*model.BusinessItem, error) {
	item, table, err := s.findItem(id)
	if err != nil {
		return nil, err
	}
	if item.Status != model.StatusUnderReview {
		return nil, &InvalidStateError{Op: "approve", Status: item.Status}
	}

	now := time.Now()
	item.Status = model.StatusPending
	item.UpdatedAt = now
	fields := map[string]interface{}{"status": model.StatusPending, "updated_at": now}
	if err := s.db.Table(table).Where("id = ?", id).Updates(fields).Error; err != nil {
		log.Printf("[Approve] Error approving item %s: %v", id, err)
		return nil, fmt.Errorf("failed to approve item: %w", err)
	}

	s.notifier.Record(id, "approve", nil)
	s.indexItem(item)
	return item, nil
}

// Reject deletes an item that is still under review.
func (s *ItemService) Reject(id string) error {
	item, table, err := s.findItem(id)
	if err != nil {
		return err
	}
	if item.Status != model.StatusUnderReview {
		return &InvalidStateError{Op: "reject", Status: item.Status}
	}

	if err := s.db.Table(table).Where("id = ?", id).Delete(&model.BusinessItem{}).Error; err != nil {
		log.Printf("[Reject] Error deleting item %s: %v", id, err)
		return fmt.Errorf("failed to reject item: %w", err)
	}

	s.notifier.Record(id, "reject", map[string]interface{}{"title": item.Title})
	return nil
}

// ConvertCategory retags an item. Within the same backing table this is an
// in-place update; across the bill/document boundary the item is moved to the
// other table inside a transaction, so the move either fully lands or fully
// rolls back. The item gets a new id when it crosses tables.
func (s *ItemService) ConvertCategory(id, newCategory string, updates ItemUpdate) (*model.BusinessItem, error) {
	if !model.ValidCategory(newCategory) {
		return nil, newValidationError("unknown category %q, valid options: %v", newCategory, model.Categories)
	}

	item, table, err := s.findItem(id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	newTable := model.TableForCategory(newCategory)

	if newTable == table {
		fields, err := applyEdit(item, updates, now)
		if err != nil {
			return nil, err
		}
		item.Category = newCategory
		fields["category"] = newCategory
		fields["updated_at"] = now
		item.UpdatedAt = now
		if err := s.db.Table(table).Where("id = ?", id).Updates(fields).Error; err != nil {
			log.Printf("[ConvertCategory] Error retagging item %s: %v", id, err)
			return nil, fmt.Errorf("failed to convert item category: %w", err)
		}
		s.notifier.Record(id, "convert", map[string]interface{}{"category": newCategory})
		s.indexItem(item)
		return item, nil
	}

	// Cross-table move: insert into the target, delete from the source.
	if _, err := applyEdit(item, updates, now); err != nil {
		return nil, err
	}
	moved := *item
	moved.ID = "" // new row, new uuid
	moved.Category = newCategory
	moved.UpdatedAt = now

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Table(newTable).Create(&moved).Error; err != nil {
			return fmt.Errorf("insert into %s: %w", newTable, err)
		}
		if err := tx.Table(table).Where("id = ?", id).Delete(&model.BusinessItem{}).Error; err != nil {
			return fmt.Errorf("delete from %s: %w", table, err)
		}
		return nil
	})
	if err != nil {
		log.Printf("[ConvertCategory] Conversion of %s failed: %v", id, err)
		return nil, &ConversionError{ID: id, Err: err}
	}
	log.Printf("[ConvertCategory] Item %s moved to %s as %s", id, newTable, moved.ID)

	s.notifier.Record(moved.ID, "convert", map[string]interface{}{
		"category":    newCategory,
		"previous_id": id,
	})
	s.indexItem(&moved)
	return &moved, nil
}

// SweepReport summarizes one pass of the freeze sweep.
type SweepReport struct {
	Checked int               `json:"checked"`
	Frozen  []string          `json:"frozen"`
	Failed  map[string]string `json:"failed,omitempty"`
}

// Sweep freezes every pending or overdue item whose countdown has elapsed.
// It only ever moves items toward frozen, so re-running it, or racing it
// against user edits, cannot oscillate state. Individual write failures are
// collected and do not abort the pass.
func (s *ItemService) Sweep(now time.Time) (*SweepReport, error) {
	report := &SweepReport{Failed: map[string]string{}}

	for _, table := range []string{model.TableBills, model.TableCommitteeDocuments} {
		var items []model.BusinessItem
		err := s.db.Table(table).
			Where("status IN ?", []string{model.StatusPending, model.StatusOverdue}).
			Find(&items).Error
		if err != nil {
			log.Printf("[Sweep] Error listing active items in %s: %v", table, err)
			return nil, fmt.Errorf("failed to list active items: %w", err)
		}

		for i := range items {
			item := &items[i]
			report.Checked++
			if item.PresentationDate == nil {
				continue
			}
			if Countdown(*item.PresentationDate, now) > 0 {
				continue
			}

			fields := map[string]interface{}{"status": model.StatusFrozen, "updated_at": now}
			if err := s.db.Table(table).Where("id = ?", item.ID).Updates(fields).Error; err != nil {
				log.Printf("[Sweep] Error freezing item %s: %v", item.ID, err)
				report.Failed[item.ID] = err.Error()
				continue
			}
			item.Status = model.StatusFrozen
			report.Frozen = append(report.Frozen, item.ID)
			s.notifier.NotifyFrozen(item)
		}
	}

	if len(report.Frozen) > 0 || len(report.Failed) > 0 {
		log.Printf("[Sweep] Checked %d items, froze %d, %d failures", report.Checked, len(report.Frozen), len(report.Failed))
	}
	return report, nil
}

func fieldNames(fields map[string]interface{}) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	return names
}
