package models

import (
	"time"

	"gorm.io/gorm"
)

// User roles for role-based access control
const (
	RoleSuperAdmin     = "SUPER_ADMIN"
	RoleAdmin          = "ADMIN"
	RoleManager        = "MANAGER"
	RoleTeamLead       = "TEAM_LEAD"
	RoleSalesperson    = "SALESPERSON"
	RoleRecoveryAgent  = "RECOVERY_AGENT"
	RoleFinanceManager = "FINANCE_MANAGER"
	RoleAnalyst        = "ANALYST"
)

// UserRoles lists every valid role.
func UserRoles() []string {
	return []string{
		RoleSuperAdmin, RoleAdmin, RoleManager, RoleTeamLead,
		RoleSalesperson, RoleRecoveryAgent, RoleFinanceManager, RoleAnalyst,
	}
}

// IsValidRole reports whether r belongs to the role enumeration.
func IsValidRole(r string) bool {
	for _, v := range UserRoles() {
		if v == r {
			return true
		}
	}
	return false
}

// User represents a user account in the system
type User struct {
	gorm.Model

	// Authentication fields
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`

	// Profile information
	Name string `gorm:"not null" json:"name"`
	Role string `gorm:"not null;default:'SALESPERSON'" json:"role"`

	// Account status
	IsActive  bool       `gorm:"default:true" json:"is_active"`
	LastLogin *time.Time `json:"last_login"`

	// Relations
	CreatedLeads  []Lead `gorm:"foreignKey:CreatedBy" json:"created_leads,omitempty"`
	AssignedLeads []Lead `gorm:"foreignKey:AssignedTo" json:"assigned_leads,omitempty"`
}

// HasRestrictedVisibility reports whether the user's role limits lead
// visibility to records assigned to them.
func (u *User) HasRestrictedVisibility() bool {
	return u.Role == RoleSalesperson || u.Role == RoleRecoveryAgent
}

// CanDeleteLeads reports whether the user's role permits soft-deleting leads.
func (u *User) CanDeleteLeads() bool {
	return u.Role == RoleAdmin || u.Role == RoleSuperAdmin
}
