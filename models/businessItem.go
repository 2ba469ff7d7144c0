package models

import (
	"time"

	"gorm.io/gorm"
)

// Stored status values for a business item. "overdue" and "frozen" are only
// ever written by the lifecycle service or the sweep, never chosen freely by
// an editing user.
const (
	StatusUnderReview = "under_review"
	StatusPending     = "pending"
	StatusConcluded   = "concluded"
	StatusOverdue     = "overdue"
	StatusFrozen      = "frozen"
	StatusLimbo       = "limbo"
)

// Category labels for business items. "bill" lives in its own table; the rest
// are document-like and share the committee_documents table.
const (
	CategoryBill       = "bill"
	CategoryStatement  = "statement"
	CategoryReport     = "report"
	CategoryRegulation = "regulation"
	CategoryPolicy     = "policy"
	CategoryPetition   = "petition"
	CategoryMotion     = "motion"
)

// Categories lists every valid category label, bills first.
var Categories = []string{
	CategoryBill,
	CategoryStatement,
	CategoryReport,
	CategoryRegulation,
	CategoryPolicy,
	CategoryPetition,
	CategoryMotion,
}

// Statuses lists every valid stored status.
var Statuses = []string{
	StatusUnderReview,
	StatusPending,
	StatusConcluded,
	StatusOverdue,
	StatusFrozen,
	StatusLimbo,
}

// BusinessItem represents a committed piece of committee business (a bill or a
// document-like item). The same struct maps onto both the bills and
// committee_documents tables; the Category tag decides which one.
type BusinessItem struct {
	// ID is a unique identifier for the item, stored as a UUID in the database.
	// In Elasticsearch, it's indexed as a keyword for exact matching.
	ID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id" elastic:"type:keyword"`

	// Title is the business name, indexed as text for full-text search.
	Title string `gorm:"not null" json:"title" elastic:"type:text,analyzer:standard"`

	// CommitteeName is the committee the item was committed to.
	CommitteeName string `gorm:"not null" json:"committee_name" elastic:"type:keyword"`

	// Category is one of the labels in Categories.
	Category string `gorm:"not null" json:"category" elastic:"type:keyword"`

	// DateCommitted is the calendar date the item entered the pipeline.
	DateCommitted time.Time `json:"date_committed" elastic:"type:date"`

	// AllocatedDays is the cumulative day count granted so far. Grows on
	// reschedule, never decremented by hand.
	AllocatedDays int `json:"allocated_days"`

	// PresentationDate is the deadline. Nil means no deadline has been set
	// yet (the item is in limbo).
	PresentationDate *time.Time `json:"presentation_date" elastic:"type:date"`

	// ExtensionsCount is incremented exactly once per reschedule.
	ExtensionsCount int `json:"extensions_count"`

	// Status is the persisted status, one of Statuses. Time-driven values
	// are derived on read; see services.EffectiveStatus.
	Status string `json:"status" elastic:"type:keyword"`

	// StatusReason records why an item was parked in limbo or concluded.
	StatusReason string `json:"status_reason"`

	CreatedAt time.Time `json:"created_at" elastic:"type:date"`
	UpdatedAt time.Time `json:"updated_at" elastic:"type:date"`

	// SearchContent is a computed field for full-text search, combining
	// Title and CommitteeName. Not stored in the database.
	SearchContent string `gorm:"-" json:"-" elastic:"type:text,analyzer:standard"`
}

// BeforeSave is a GORM hook to populate SearchContent before indexing.
func (b *BusinessItem) BeforeSave(tx *gorm.DB) error {
	b.SearchContent = b.Title + " " + b.CommitteeName
	return nil
}

// Table names backing the two item variants.
const (
	TableBills              = "bills"
	TableCommitteeDocuments = "committee_documents"
)

// TableForCategory maps a category label to its backing table.
func TableForCategory(category string) string {
	if category == CategoryBill {
		return TableBills
	}
	return TableCommitteeDocuments
}

// ValidCategory reports whether label is one of the canonical category labels.
// Matching is case-sensitive; import rows must use the exact label.
func ValidCategory(label string) bool {
	for _, c := range Categories {
		if c == label {
			return true
		}
	}
	return false
}

// ValidStatus reports whether s is one of the enumerated stored statuses.
func ValidStatus(s string) bool {
	for _, known := range Statuses {
		if known == s {
			return true
		}
	}
	return false
}
