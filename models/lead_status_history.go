package models

import (
	"time"

	"gorm.io/gorm"
)

// LeadStatusHistory is an immutable audit entry recording one lifecycle
// transition. Rows are append-only: the engine never updates or deletes them.
type LeadStatusHistory struct {
	gorm.Model
	LeadID       uint      `gorm:"not null;index" json:"lead_id"`
	OldStatus    *string   `json:"old_status"` // nil on the very first record
	NewStatus    string    `gorm:"not null" json:"new_status"`
	ChangedBy    uint      `gorm:"not null;index" json:"changed_by"`
	ChangeReason *string   `gorm:"type:text" json:"change_reason"`
	ChangedAt    time.Time `gorm:"not null;index" json:"changed_at"`

	// Context fields, populated only by the transition kind that produced the record
	InterestLevel   *int    `json:"interest_level"`
	DropReason      *string `json:"drop_reason"`
	CNPReason       *string `json:"cnp_reason"`
	ConversionNotes *string `gorm:"type:text" json:"conversion_notes"`

	// Relations
	Lead Lead `json:"-"`
	User User `gorm:"foreignKey:ChangedBy" json:"-"`
}
