package models

import (
	"time"

	"gorm.io/gorm"
)

// Lead status enumeration. The pipeline is a flat set of values with no
// enforced transition graph: any status may follow any other.
const (
	StatusNew         = "New"
	StatusInProgress  = "In Progress"
	StatusCNP         = "CNP" // Could Not Pick
	StatusInterested1 = "Interested-1"
	StatusInterested2 = "Interested-2"
	StatusInterested3 = "Interested-3"
	StatusInterested4 = "Interested-4"
	StatusInterested5 = "Interested-5"
	StatusQualified   = "Qualified"
	StatusConverted   = "Converted"
	StatusLost        = "Lost"
	StatusDropped     = "Dropped"
)

// LeadStatuses lists every valid status, in pipeline order.
func LeadStatuses() []string {
	return []string{
		StatusNew, StatusInProgress, StatusCNP,
		StatusInterested1, StatusInterested2, StatusInterested3,
		StatusInterested4, StatusInterested5,
		StatusQualified, StatusConverted, StatusLost, StatusDropped,
	}
}

// IsValidStatus reports whether s belongs to the status enumeration.
func IsValidStatus(s string) bool {
	for _, v := range LeadStatuses() {
		if v == s {
			return true
		}
	}
	return false
}

// Lead source enumeration
const (
	SourceWebsite       = "website"
	SourceFacebook      = "facebook"
	SourceGoogle        = "google"
	SourceReferral      = "referral"
	SourceColdCall      = "cold_call"
	SourceEmailCampaign = "email_campaign"
	SourceTradeShow     = "trade_show"
	SourceOther         = "other"
)

// LeadSources lists every valid lead source.
func LeadSources() []string {
	return []string{
		SourceWebsite, SourceFacebook, SourceGoogle, SourceReferral,
		SourceColdCall, SourceEmailCampaign, SourceTradeShow, SourceOther,
	}
}

// IsValidSource reports whether s belongs to the source enumeration.
func IsValidSource(s string) bool {
	for _, v := range LeadSources() {
		if v == s {
			return true
		}
	}
	return false
}

// Lead priority enumeration
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// LeadPriorities lists every valid priority.
func LeadPriorities() []string {
	return []string{PriorityLow, PriorityMedium, PriorityHigh}
}

// IsValidPriority reports whether p belongs to the priority enumeration.
func IsValidPriority(p string) bool {
	for _, v := range LeadPriorities() {
		if v == p {
			return true
		}
	}
	return false
}

// Lead represents a prospect or customer record tracked through the sales pipeline
type Lead struct {
	gorm.Model

	// Basic information
	Name    string  `gorm:"not null;index" json:"name"`
	Email   *string `gorm:"index" json:"email"`
	Phone   string  `gorm:"not null;index" json:"phone"`
	Company *string `json:"company"`

	// Lead details
	JobTitle *string `json:"job_title"`
	Industry *string `json:"industry"`
	Website  *string `json:"website"`
	Budget   *int    `json:"budget"` // in INR
	Language string  `gorm:"default:'English'" json:"language"`

	// Status and source
	Status   string  `gorm:"not null;default:'New';index" json:"status"`
	Source   *string `json:"source"`
	Priority string  `gorm:"not null;default:'medium'" json:"priority"`

	// Additional information
	Notes   *string `gorm:"type:text" json:"notes"`
	Address *string `gorm:"type:text" json:"address"`
	City    *string `json:"city"`
	State   *string `json:"state"`
	ZipCode *string `json:"zip_code"`
	Country string  `gorm:"default:'India'" json:"country"`

	// Lifecycle tracking
	InterestLevel    int        `gorm:"default:0" json:"interest_level"` // 0-5 scale
	CNPCount         int        `gorm:"default:0" json:"cnp_count"`
	LastCNPAt        *time.Time `json:"last_cnp_at"`
	DropReason       *string    `json:"drop_reason"`
	DroppedAt        *time.Time `json:"dropped_at"`
	ConvertedAt      *time.Time `json:"converted_at"`
	ProductPurchased *string    `json:"product_purchased"`
	PaymentAmount    *int       `json:"payment_amount"` // in INR

	// Audit fields
	CreatedBy  *uint `gorm:"index" json:"created_by"` // nil for webhook leads
	AssignedTo *uint `gorm:"index" json:"assigned_to"`

	// Relations
	Creator       *User               `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	Assignee      *User               `gorm:"foreignKey:AssignedTo" json:"assignee,omitempty"`
	StatusHistory []LeadStatusHistory `gorm:"foreignKey:LeadID;constraint:OnDelete:CASCADE" json:"status_history,omitempty"`
}
