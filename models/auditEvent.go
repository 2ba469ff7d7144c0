package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditEvent records a state-changing lifecycle operation against an item.
type AuditEvent struct {
	// ID is a unique identifier for the event, stored as a UUID.
	ID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`

	// ItemID references the business item the event concerns.
	ItemID string `gorm:"type:uuid" json:"item_id"`

	// Action names the operation (e.g. 'create', 'reschedule', 'frozen').
	Action string `gorm:"not null" json:"action"`

	// Details is a JSONB field carrying operation-specific context.
	Details datatypes.JSON `json:"details"`

	CreatedAt time.Time `json:"created_at"`
}
