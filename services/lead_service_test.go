package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracklie/models"
	"tracklie/utils"
)

func TestCreateLeadDefaults(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeadService(db, newTestLogger())
	user := createTestUser(t, db, "sales@example.com", models.RoleSalesperson)

	lead, err := svc.CreateLead(&models.Lead{
		Name:  "Ravi Kumar",
		Phone: "9812345678",
	}, &user.ID)
	require.NoError(t, err)
	assert.NotZero(t, lead.ID)
	assert.Equal(t, models.StatusNew, lead.Status)
	assert.Equal(t, models.PriorityMedium, lead.Priority)
	assert.Equal(t, "English", lead.Language)
	assert.Equal(t, "India", lead.Country)
	require.NotNil(t, lead.CreatedBy)
	assert.Equal(t, user.ID, *lead.CreatedBy)
	assert.Equal(t, 0, lead.InterestLevel)
	assert.Equal(t, 0, lead.CNPCount)
}

func TestCreateLeadWithoutCreator(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeadService(db, newTestLogger())

	lead, err := svc.CreateLead(&models.Lead{
		Name:   "Webhook Lead",
		Phone:  "9812345678",
		Source: utils.Pointer(models.SourceWebsite),
	}, nil)
	require.NoError(t, err)
	assert.Nil(t, lead.CreatedBy)
}

func TestCreateLeadValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeadService(db, newTestLogger())

	cases := []struct {
		name string
		lead models.Lead
	}{
		{"empty name", models.Lead{Name: "   ", Phone: "9812345678"}},
		{"short phone", models.Lead{Name: "Ravi", Phone: "12345"}},
		{"negative budget", models.Lead{Name: "Ravi", Phone: "9812345678", Budget: utils.Pointer(-5)}},
		{"unknown source", models.Lead{Name: "Ravi", Phone: "9812345678", Source: utils.Pointer("carrier_pigeon")}},
		{"unknown status", models.Lead{Name: "Ravi", Phone: "9812345678", Status: "Archived"}},
		{"unknown priority", models.Lead{Name: "Ravi", Phone: "9812345678", Priority: "urgent"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateLead(&tc.lead, nil)
			require.Error(t, err)
			assert.True(t, IsValidationError(err))
		})
	}
}

func TestCreateLeadPhoneWithFormatting(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeadService(db, newTestLogger())

	// Separators don't count, digits do
	_, err := svc.CreateLead(&models.Lead{Name: "Ravi", Phone: "+91 98123-45678"}, nil)
	assert.NoError(t, err)
}

func TestCreateLeadDuplicateDoesNotBlock(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeadService(db, newTestLogger())

	first, err := svc.CreateLead(&models.Lead{Name: "Ravi", Phone: "9812345678"}, nil)
	require.NoError(t, err)

	second, err := svc.CreateLead(&models.Lead{Name: "Ravi Again", Phone: "9812345678"}, nil)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&models.Lead{}).Where("phone = ?", "9812345678").Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestGetLeadNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeadService(db, newTestLogger())

	_, err := svc.GetLead(9999)
	assert.True(t, errors.Is(err, ErrLeadNotFound))
}

func TestListLeadsPagination(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeadService(db, newTestLogger())
	admin := createTestUser(t, db, "admin@example.com", models.RoleAdmin)

	for i := 0; i < 25; i++ {
		createTestLead(t, db, fmt.Sprintf("Lead %02d", i))
	}

	leads, total, err := svc.ListLeads(LeadFilter{Page: 1, PerPage: 10}, admin)
	require.NoError(t, err)
	assert.EqualValues(t, 25, total)
	assert.Len(t, leads, 10)

	leads, total, err = svc.ListLeads(LeadFilter{Page: 3, PerPage: 10}, admin)
	require.NoError(t, err)
	assert.EqualValues(t, 25, total)
	assert.Len(t, leads, 5)
}

func TestListLeadsFilters(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeadService(db, newTestLogger())
	admin := createTestUser(t, db, "admin@example.com", models.RoleAdmin)

	createTestLead(t, db, "Hot Website Lead", func(l *models.Lead) {
		l.Status = models.StatusQualified
		l.Source = utils.Pointer(models.SourceWebsite)
		l.Priority = models.PriorityHigh
	})
	createTestLead(t, db, "Cold Referral Lead", func(l *models.Lead) {
		l.Source = utils.Pointer(models.SourceReferral)
		l.Priority = models.PriorityLow
	})

	leads, total, err := svc.ListLeads(LeadFilter{Status: models.StatusQualified}, admin)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, leads, 1)
	assert.Equal(t, "Hot Website Lead", leads[0].Name)

	_, total, err = svc.ListLeads(LeadFilter{Source: models.SourceReferral}, admin)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	_, total, err = svc.ListLeads(LeadFilter{Priority: models.PriorityHigh}, admin)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestListLeadsSearch(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeadService(db, newTestLogger())
	admin := createTestUser(t, db, "admin@example.com", models.RoleAdmin)

	createTestLead(t, db, "Asha Verma", func(l *models.Lead) {
		l.Email = utils.Pointer("asha@acme.in")
		l.Company = utils.Pointer("Acme Industries")
	})
	createTestLead(t, db, "Ravi Kumar")

	// Case-insensitive match on name
	_, total, err := svc.ListLeads(LeadFilter{Search: "ASHA"}, admin)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	// Match on company
	_, total, err = svc.ListLeads(LeadFilter{Search: "acme"}, admin)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	_, total, err = svc.ListLeads(LeadFilter{Search: "nobody"}, admin)
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
}

func TestListLeadsRestrictedVisibility(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeadService(db, newTestLogger())
	sales := createTestUser(t, db, "sales@example.com", models.RoleSalesperson)
	other := createTestUser(t, db, "other@example.com", models.RoleSalesperson)
	manager := createTestUser(t, db, "manager@example.com", models.RoleManager)

	createTestLead(t, db, "Mine", func(l *models.Lead) { l.AssignedTo = &sales.ID })
	createTestLead(t, db, "Theirs", func(l *models.Lead) { l.AssignedTo = &other.ID })
	createTestLead(t, db, "Unassigned")

	// Restricted role only sees its own leads
	leads, total, err := svc.ListLeads(LeadFilter{}, sales)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, leads, 1)
	assert.Equal(t, "Mine", leads[0].Name)

	// Scoping wins over an explicit assigned_to filter
	_, total, err = svc.ListLeads(LeadFilter{AssignedTo: &other.ID}, sales)
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)

	// Managers see everything
	_, total, err = svc.ListLeads(LeadFilter{}, manager)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
}

func TestUpdateLeadPartial(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeadService(db, newTestLogger())
	lead := createTestLead(t, db, "Asha Verma", func(l *models.Lead) {
		l.Company = utils.Pointer("Acme Industries")
	})

	updated, err := svc.UpdateLead(lead.ID, LeadUpdate{
		Priority: utils.Pointer(models.PriorityHigh),
		City:     utils.Pointer("Pune"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.PriorityHigh, updated.Priority)
	require.NotNil(t, updated.City)
	assert.Equal(t, "Pune", *updated.City)

	// Untouched fields survive
	assert.Equal(t, "Asha Verma", updated.Name)
	require.NotNil(t, updated.Company)
	assert.Equal(t, "Acme Industries", *updated.Company)
}

func TestUpdateLeadValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeadService(db, newTestLogger())
	lead := createTestLead(t, db, "Asha Verma")

	_, err := svc.UpdateLead(lead.ID, LeadUpdate{Phone: utils.Pointer("123")})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))

	_, err = svc.UpdateLead(9999, LeadUpdate{})
	assert.True(t, errors.Is(err, ErrLeadNotFound))
}

func TestUpdateLeadWritesNoHistory(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeadService(db, newTestLogger())
	lead := createTestLead(t, db, "Asha Verma")

	_, err := svc.UpdateLead(lead.ID, LeadUpdate{Status: utils.Pointer(models.StatusQualified)})
	require.NoError(t, err)
	assert.EqualValues(t, 0, historyCount(t, db, lead.ID))
}

func TestDeleteLeadSoftDeletes(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeadService(db, newTestLogger())
	lead := createTestLead(t, db, "Asha Verma")

	require.NoError(t, svc.DeleteLead(lead.ID))

	var reloaded models.Lead
	require.NoError(t, db.First(&reloaded, lead.ID).Error)
	assert.Equal(t, models.StatusDropped, reloaded.Status)
	assert.EqualValues(t, 0, historyCount(t, db, lead.ID))

	assert.True(t, errors.Is(svc.DeleteLead(9999), ErrLeadNotFound))
}

func TestAssignLead(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeadService(db, newTestLogger())
	sales := createTestUser(t, db, "sales@example.com", models.RoleSalesperson)
	lead := createTestLead(t, db, "Asha Verma")

	assigned, err := svc.AssignLead(lead.ID, sales.ID)
	require.NoError(t, err)
	require.NotNil(t, assigned.AssignedTo)
	assert.Equal(t, sales.ID, *assigned.AssignedTo)

	_, err = svc.AssignLead(lead.ID, 9999)
	assert.True(t, errors.Is(err, ErrAssigneeNotFound))

	_, err = svc.AssignLead(9999, sales.ID)
	assert.True(t, errors.Is(err, ErrLeadNotFound))
}

func TestGetLeadStats(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeadService(db, newTestLogger())
	admin := createTestUser(t, db, "admin@example.com", models.RoleAdmin)

	createTestLead(t, db, "A", func(l *models.Lead) {
		l.Status = models.StatusQualified
		l.Source = utils.Pointer(models.SourceWebsite)
		l.Priority = models.PriorityHigh
	})
	createTestLead(t, db, "B", func(l *models.Lead) {
		l.Source = utils.Pointer(models.SourceWebsite)
	})
	createTestLead(t, db, "C")

	stats, err := svc.GetLeadStats(admin)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.TotalLeads)
	assert.EqualValues(t, 1, stats.StatusCounts[models.StatusQualified])
	assert.EqualValues(t, 2, stats.StatusCounts[models.StatusNew])
	assert.EqualValues(t, 2, stats.SourceCounts[models.SourceWebsite])
	assert.EqualValues(t, 1, stats.PriorityCounts[models.PriorityHigh])
	assert.EqualValues(t, 2, stats.PriorityCounts[models.PriorityMedium])

	// Every enumeration value is present, zero counts included
	assert.Len(t, stats.StatusCounts, len(models.LeadStatuses()))
	assert.Len(t, stats.SourceCounts, len(models.LeadSources()))
	assert.Len(t, stats.PriorityCounts, len(models.LeadPriorities()))
	assert.EqualValues(t, 0, stats.StatusCounts[models.StatusLost])
}

func TestGetLeadStatsScoped(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeadService(db, newTestLogger())
	sales := createTestUser(t, db, "sales@example.com", models.RoleSalesperson)

	createTestLead(t, db, "Mine", func(l *models.Lead) { l.AssignedTo = &sales.ID })
	createTestLead(t, db, "Not mine")

	stats, err := svc.GetLeadStats(sales)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.TotalLeads)
	assert.EqualValues(t, 1, stats.StatusCounts[models.StatusNew])
}

func TestCanViewLead(t *testing.T) {
	sales := &models.User{Role: models.RoleSalesperson}
	sales.ID = 7
	manager := &models.User{Role: models.RoleManager}
	manager.ID = 8

	mine := &models.Lead{AssignedTo: utils.Pointer(uint(7))}
	theirs := &models.Lead{AssignedTo: utils.Pointer(uint(8))}
	unassigned := &models.Lead{}

	assert.True(t, CanViewLead(sales, mine))
	assert.False(t, CanViewLead(sales, theirs))
	assert.False(t, CanViewLead(sales, unassigned))
	assert.True(t, CanViewLead(manager, mine))
	assert.True(t, CanViewLead(manager, unassigned))
}
