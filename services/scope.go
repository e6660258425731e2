package services

import (
	"gorm.io/gorm"

	"tracklie/models"
)

// VisibleLeads narrows a lead query to the records the actor may see.
// Restricted roles (salesperson, recovery agent) only see leads assigned to
// them; every other role sees all leads. List, Stats and single-lead access
// all go through this one policy.
func VisibleLeads(query *gorm.DB, actor *models.User) *gorm.DB {
	if actor.HasRestrictedVisibility() {
		return query.Where("assigned_to = ?", actor.ID)
	}
	return query
}

// CanViewLead reports whether the actor may read or edit a specific lead.
func CanViewLead(actor *models.User, lead *models.Lead) bool {
	if !actor.HasRestrictedVisibility() {
		return true
	}
	return lead.AssignedTo != nil && *lead.AssignedTo == actor.ID
}
