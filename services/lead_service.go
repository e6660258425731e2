package services

import (
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"tracklie/models"
)

// LeadService owns create/read/update/list/delete and statistics over leads.
// It may write status (on create, edit or soft delete) but never appends
// lifecycle history; that is the LifecycleService's job.
type LeadService struct {
	DB  *gorm.DB
	Log *logrus.Entry
}

func NewLeadService(db *gorm.DB, logger *logrus.Logger) *LeadService {
	return &LeadService{
		DB:  db,
		Log: logger.WithField("component", "leads"),
	}
}

// LeadFilter carries the optional list filters and pagination.
type LeadFilter struct {
	Status     string
	Source     string
	Priority   string
	AssignedTo *uint
	Search     string
	Page       int
	PerPage    int
}

// LeadUpdate is a partial update: only non-nil fields are applied.
type LeadUpdate struct {
	Name       *string
	Email      *string
	Phone      *string
	Company    *string
	JobTitle   *string
	Industry   *string
	Website    *string
	Budget     *int
	Language   *string
	Status     *string
	Source     *string
	Priority   *string
	Notes      *string
	Address    *string
	City       *string
	State      *string
	ZipCode    *string
	Country    *string
	AssignedTo *uint
}

// LeadStats aggregates lead counts. Every enumeration value appears in its
// map, zero counts included.
type LeadStats struct {
	TotalLeads     int64            `json:"total_leads"`
	StatusCounts   map[string]int64 `json:"status_counts"`
	SourceCounts   map[string]int64 `json:"source_counts"`
	PriorityCounts map[string]int64 `json:"priority_counts"`
}

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

func validateLeadFields(lead *models.Lead) error {
	if strings.TrimSpace(lead.Name) == "" {
		return newValidationError("name", "is required")
	}
	if digitCount(lead.Phone) < 10 {
		return newValidationError("phone", "must contain at least 10 digits")
	}
	if lead.Budget != nil && *lead.Budget < 0 {
		return newValidationError("budget", "must be positive")
	}
	if lead.Status != "" && !models.IsValidStatus(lead.Status) {
		return newValidationError("status", "must be one of: "+strings.Join(models.LeadStatuses(), ", "))
	}
	if lead.Source != nil && !models.IsValidSource(*lead.Source) {
		return newValidationError("source", "must be one of: "+strings.Join(models.LeadSources(), ", "))
	}
	if lead.Priority != "" && !models.IsValidPriority(lead.Priority) {
		return newValidationError("priority", "must be one of: "+strings.Join(models.LeadPriorities(), ", "))
	}
	return nil
}

// CreateLead inserts a new lead. A duplicate phone (or email) match is logged
// as a warning but never blocks the insert; duplicates are left for operator
// review.
func (s *LeadService) CreateLead(lead *models.Lead, createdBy *uint) (*models.Lead, error) {
	if lead.Status == "" {
		lead.Status = models.StatusNew
	}
	if lead.Priority == "" {
		lead.Priority = models.PriorityMedium
	}
	if lead.Language == "" {
		lead.Language = "English"
	}
	if lead.Country == "" {
		lead.Country = "India"
	}
	if err := validateLeadFields(lead); err != nil {
		return nil, err
	}

	if dup := s.findDuplicate(lead.Phone, lead.Email); dup != nil {
		s.Log.WithFields(logrus.Fields{
			"existing_lead_id": dup.ID,
			"phone":            lead.Phone,
		}).Warn("duplicate lead detected, creating anyway")
	}

	lead.CreatedBy = createdBy
	if err := s.DB.Create(lead).Error; err != nil {
		return nil, err
	}

	s.Log.WithField("lead_id", lead.ID).Info("lead created")
	return lead, nil
}

func (s *LeadService) findDuplicate(phone string, email *string) *models.Lead {
	query := s.DB.Where("phone = ?", phone)
	if email != nil && *email != "" {
		query = s.DB.Where("phone = ? OR email = ?", phone, *email)
	}

	var existing models.Lead
	if err := query.First(&existing).Error; err != nil {
		return nil
	}
	return &existing
}

// GetLead returns a lead with its creator and assignee loaded.
func (s *LeadService) GetLead(id uint) (*models.Lead, error) {
	var lead models.Lead
	err := s.DB.Preload("Creator").Preload("Assignee").First(&lead, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, err
	}
	return &lead, nil
}

// ListLeads returns one page of leads plus the total count. Role scoping is
// applied before any explicit filter, so a restricted actor's assigned_to
// filter can never widen their view.
func (s *LeadService) ListLeads(filter LeadFilter, actor *models.User) ([]models.Lead, int64, error) {
	query := VisibleLeads(s.DB.Model(&models.Lead{}), actor)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Source != "" {
		query = query.Where("source = ?", filter.Source)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}
	if filter.AssignedTo != nil {
		query = query.Where("assigned_to = ?", *filter.AssignedTo)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(phone) LIKE ? OR LOWER(company) LIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}

	leads := make([]models.Lead, 0)
	err := query.
		Preload("Creator").Preload("Assignee").
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&leads).Error
	if err != nil {
		return nil, 0, err
	}
	return leads, total, nil
}

// UpdateLead applies a partial update; nil fields stay untouched. No history
// record is written by this path.
func (s *LeadService) UpdateLead(id uint, update LeadUpdate) (*models.Lead, error) {
	var lead models.Lead
	if err := s.DB.First(&lead, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, err
	}

	if update.Name != nil {
		lead.Name = *update.Name
	}
	if update.Email != nil {
		lead.Email = update.Email
	}
	if update.Phone != nil {
		lead.Phone = *update.Phone
	}
	if update.Company != nil {
		lead.Company = update.Company
	}
	if update.JobTitle != nil {
		lead.JobTitle = update.JobTitle
	}
	if update.Industry != nil {
		lead.Industry = update.Industry
	}
	if update.Website != nil {
		lead.Website = update.Website
	}
	if update.Budget != nil {
		lead.Budget = update.Budget
	}
	if update.Language != nil {
		lead.Language = *update.Language
	}
	if update.Status != nil {
		lead.Status = *update.Status
	}
	if update.Source != nil {
		lead.Source = update.Source
	}
	if update.Priority != nil {
		lead.Priority = *update.Priority
	}
	if update.Notes != nil {
		lead.Notes = update.Notes
	}
	if update.Address != nil {
		lead.Address = update.Address
	}
	if update.City != nil {
		lead.City = update.City
	}
	if update.State != nil {
		lead.State = update.State
	}
	if update.ZipCode != nil {
		lead.ZipCode = update.ZipCode
	}
	if update.Country != nil {
		lead.Country = *update.Country
	}
	if update.AssignedTo != nil {
		lead.AssignedTo = update.AssignedTo
	}

	if err := validateLeadFields(&lead); err != nil {
		return nil, err
	}
	if err := s.DB.Save(&lead).Error; err != nil {
		return nil, err
	}

	s.Log.WithField("lead_id", lead.ID).Info("lead updated")
	return &lead, nil
}

// DeleteLead soft deletes by moving the lead to the dropped pool. The row is
// kept and no lifecycle history is appended.
func (s *LeadService) DeleteLead(id uint) error {
	var lead models.Lead
	if err := s.DB.First(&lead, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLeadNotFound
		}
		return err
	}

	lead.Status = models.StatusDropped
	if err := s.DB.Save(&lead).Error; err != nil {
		return err
	}

	s.Log.WithField("lead_id", lead.ID).Info("lead soft deleted")
	return nil
}

// AssignLead hands a lead to a user after checking the assignee exists.
func (s *LeadService) AssignLead(id uint, assigneeID uint) (*models.Lead, error) {
	var lead models.Lead
	if err := s.DB.First(&lead, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, err
	}

	var assignee models.User
	if err := s.DB.First(&assignee, assigneeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssigneeNotFound
		}
		return nil, err
	}

	lead.AssignedTo = &assignee.ID
	if err := s.DB.Save(&lead).Error; err != nil {
		return nil, err
	}

	s.Log.WithFields(logrus.Fields{
		"lead_id":     lead.ID,
		"assigned_to": assignee.ID,
	}).Info("lead assigned")
	return &lead, nil
}

// GetLeadStats returns total and per-status/source/priority breakdowns under
// the same visibility scoping as ListLeads.
func (s *LeadService) GetLeadStats(actor *models.User) (*LeadStats, error) {
	stats := &LeadStats{
		StatusCounts:   make(map[string]int64, len(models.LeadStatuses())),
		SourceCounts:   make(map[string]int64, len(models.LeadSources())),
		PriorityCounts: make(map[string]int64, len(models.LeadPriorities())),
	}
	for _, v := range models.LeadStatuses() {
		stats.StatusCounts[v] = 0
	}
	for _, v := range models.LeadSources() {
		stats.SourceCounts[v] = 0
	}
	for _, v := range models.LeadPriorities() {
		stats.PriorityCounts[v] = 0
	}

	scoped := func() *gorm.DB {
		return VisibleLeads(s.DB.Model(&models.Lead{}), actor)
	}

	if err := scoped().Count(&stats.TotalLeads).Error; err != nil {
		return nil, err
	}

	type bucket struct {
		Value string
		Count int64
	}

	var byStatus []bucket
	if err := scoped().Select("status AS value, COUNT(*) AS count").Group("status").Scan(&byStatus).Error; err != nil {
		return nil, err
	}
	for _, b := range byStatus {
		if _, ok := stats.StatusCounts[b.Value]; ok {
			stats.StatusCounts[b.Value] = b.Count
		}
	}

	var bySource []bucket
	if err := scoped().Select("source AS value, COUNT(*) AS count").Where("source IS NOT NULL").Group("source").Scan(&bySource).Error; err != nil {
		return nil, err
	}
	for _, b := range bySource {
		if _, ok := stats.SourceCounts[b.Value]; ok {
			stats.SourceCounts[b.Value] = b.Count
		}
	}

	var byPriority []bucket
	if err := scoped().Select("priority AS value, COUNT(*) AS count").Group("priority").Scan(&byPriority).Error; err != nil {
		return nil, err
	}
	for _, b := range byPriority {
		if _, ok := stats.PriorityCounts[b.Value]; ok {
			stats.PriorityCounts[b.Value] = b.Count
		}
	}

	return stats, nil
}
