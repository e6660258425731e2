package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"tracklie/models"
	"tracklie/utils"
)

// LifecycleService applies status-bearing transitions to leads. Every
// transition mutates the lead row and appends exactly one history record,
// inside a single transaction: both writes commit or neither does.
type LifecycleService struct {
	DB  *gorm.DB
	Log *logrus.Entry
}

func NewLifecycleService(db *gorm.DB, logger *logrus.Logger) *LifecycleService {
	return &LifecycleService{
		DB:  db,
		Log: logger.WithField("component", "lifecycle"),
	}
}

// StatusUpdateResult summarizes a generic status change.
type StatusUpdateResult struct {
	LeadID    uint      `json:"lead_id"`
	OldStatus *string   `json:"old_status"`
	NewStatus string    `json:"new_status"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InterestUpdateResult summarizes an interest-level change.
type InterestUpdateResult struct {
	LeadID        uint      `json:"lead_id"`
	InterestLevel int       `json:"interest_level"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CNPResult summarizes a could-not-pick marking.
type CNPResult struct {
	LeadID    uint      `json:"lead_id"`
	CNPCount  int       `json:"cnp_count"`
	LastCNPAt time.Time `json:"last_cnp_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ConvertResult summarizes a conversion.
type ConvertResult struct {
	LeadID        uint      `json:"lead_id"`
	Product       string    `json:"product"`
	PaymentAmount int       `json:"payment_amount"`
	ConvertedAt   time.Time `json:"converted_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// DropResult summarizes a drop.
type DropResult struct {
	LeadID     uint      `json:"lead_id"`
	DropReason string    `json:"drop_reason"`
	DroppedAt  time.Time `json:"dropped_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (s *LifecycleService) lockLead(tx *gorm.DB, leadID uint) (*models.Lead, error) {
	var lead models.Lead
	if err := tx.First(&lead, leadID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, err
	}
	return &lead, nil
}

func oldStatusOf(lead *models.Lead) *string {
	if lead.Status == "" {
		return nil
	}
	return utils.Pointer(lead.Status)
}

// UpdateStatus sets the lead to any value of the status enumeration and
// records the change. No transition graph is enforced; the dedicated
// CNP/convert/drop operations remain the only way their side-effect fields
// get populated.
func (s *LifecycleService) UpdateStatus(leadID uint, newStatus string, changedBy uint, reason *string) (*StatusUpdateResult, error) {
	if !models.IsValidStatus(newStatus) {
		return nil, newValidationError("status", "must be one of: "+strings.Join(models.LeadStatuses(), ", "))
	}

	var result *StatusUpdateResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		lead, err := s.lockLead(tx, leadID)
		if err != nil {
			return err
		}

		oldStatus := oldStatusOf(lead)
		lead.Status = newStatus
		if err := tx.Save(lead).Error; err != nil {
			return err
		}

		history := models.LeadStatusHistory{
			LeadID:       lead.ID,
			OldStatus:    oldStatus,
			NewStatus:    newStatus,
			ChangedBy:    changedBy,
			ChangeReason: reason,
			ChangedAt:    time.Now().UTC(),
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}

		result = &StatusUpdateResult{
			LeadID:    lead.ID,
			OldStatus: oldStatus,
			NewStatus: newStatus,
			UpdatedAt: lead.UpdatedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Log.WithFields(logrus.Fields{
		"lead_id":    result.LeadID,
		"new_status": result.NewStatus,
		"changed_by": changedBy,
	}).Info("lead status updated")
	return result, nil
}

// UpdateInterestLevel sets the 0-5 interest score. Status is untouched; the
// history record carries the current status on both sides.
func (s *LifecycleService) UpdateInterestLevel(leadID uint, level int, changedBy uint) (*InterestUpdateResult, error) {
	if level < 0 || level > 5 {
		return nil, newValidationError("interest_level", "must be between 0 and 5")
	}

	var result *InterestUpdateResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		lead, err := s.lockLead(tx, leadID)
		if err != nil {
			return err
		}

		oldLevel := lead.InterestLevel
		lead.InterestLevel = level
		if err := tx.Save(lead).Error; err != nil {
			return err
		}

		history := models.LeadStatusHistory{
			LeadID:        lead.ID,
			OldStatus:     oldStatusOf(lead),
			NewStatus:     lead.Status,
			ChangedBy:     changedBy,
			InterestLevel: utils.Pointer(level),
			ChangeReason:  utils.Pointer(fmt.Sprintf("Interest level updated from %d to %d", oldLevel, level)),
			ChangedAt:     time.Now().UTC(),
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}

		result = &InterestUpdateResult{
			LeadID:        lead.ID,
			InterestLevel: level,
			UpdatedAt:     lead.UpdatedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Log.WithFields(logrus.Fields{
		"lead_id":        result.LeadID,
		"interest_level": level,
		"changed_by":     changedBy,
	}).Info("lead interest level updated")
	return result, nil
}

// MarkCNP forces the lead into the CNP state regardless of prior status,
// bumps the attempt counter and stamps the attempt time.
func (s *LifecycleService) MarkCNP(leadID uint, reason *string, changedBy uint) (*CNPResult, error) {
	var result *CNPResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		lead, err := s.lockLead(tx, leadID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		oldStatus := oldStatusOf(lead)
		lead.Status = models.StatusCNP
		lead.CNPCount++
		lead.LastCNPAt = &now
		if err := tx.Save(lead).Error; err != nil {
			return err
		}

		history := models.LeadStatusHistory{
			LeadID:       lead.ID,
			OldStatus:    oldStatus,
			NewStatus:    models.StatusCNP,
			ChangedBy:    changedBy,
			CNPReason:    reason,
			ChangeReason: utils.Pointer(fmt.Sprintf("Marked as CNP (attempt #%d)", lead.CNPCount)),
			ChangedAt:    now,
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}

		result = &CNPResult{
			LeadID:    lead.ID,
			CNPCount:  lead.CNPCount,
			LastCNPAt: now,
			UpdatedAt: lead.UpdatedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Log.WithFields(logrus.Fields{
		"lead_id":    result.LeadID,
		"cnp_count":  result.CNPCount,
		"changed_by": changedBy,
	}).Info("lead marked as CNP")
	return result, nil
}

// Convert marks the lead as a customer. Product and a non-negative payment
// amount are required; converted_at is stamped once, here.
func (s *LifecycleService) Convert(leadID uint, product string, paymentAmount int, notes *string, changedBy uint) (*ConvertResult, error) {
	product = strings.TrimSpace(product)
	if product == "" {
		return nil, newValidationError("product", "cannot be empty")
	}
	if paymentAmount < 0 {
		return nil, newValidationError("payment_amount", "must be zero or positive")
	}

	var result *ConvertResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		lead, err := s.lockLead(tx, leadID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		oldStatus := oldStatusOf(lead)
		lead.Status = models.StatusConverted
		lead.ProductPurchased = utils.Pointer(product)
		lead.PaymentAmount = utils.Pointer(paymentAmount)
		lead.ConvertedAt = &now
		if err := tx.Save(lead).Error; err != nil {
			return err
		}

		history := models.LeadStatusHistory{
			LeadID:          lead.ID,
			OldStatus:       oldStatus,
			NewStatus:       models.StatusConverted,
			ChangedBy:       changedBy,
			ConversionNotes: notes,
			ChangeReason:    utils.Pointer(fmt.Sprintf("Converted to customer - Product: %s, Amount: ₹%d", product, paymentAmount)),
			ChangedAt:       now,
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}

		result = &ConvertResult{
			LeadID:        lead.ID,
			Product:       product,
			PaymentAmount: paymentAmount,
			ConvertedAt:   now,
			UpdatedAt:     lead.UpdatedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Log.WithFields(logrus.Fields{
		"lead_id":        result.LeadID,
		"product":        product,
		"payment_amount": paymentAmount,
		"changed_by":     changedBy,
	}).Info("lead converted to customer")
	return result, nil
}

// Drop moves the lead into the dropped pool with a mandatory reason.
func (s *LifecycleService) Drop(leadID uint, reason string, notes *string, changedBy uint) (*DropResult, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, newValidationError("reason", "cannot be empty")
	}

	var result *DropResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		lead, err := s.lockLead(tx, leadID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		oldStatus := oldStatusOf(lead)
		lead.Status = models.StatusDropped
		lead.DropReason = utils.Pointer(reason)
		lead.DroppedAt = &now
		if err := tx.Save(lead).Error; err != nil {
			return err
		}

		history := models.LeadStatusHistory{
			LeadID:       lead.ID,
			OldStatus:    oldStatus,
			NewStatus:    models.StatusDropped,
			ChangedBy:    changedBy,
			DropReason:   utils.Pointer(reason),
			ChangeReason: utils.Pointer("Dropped - Reason: " + reason),
			ChangedAt:    now,
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}

		result = &DropResult{
			LeadID:     lead.ID,
			DropReason: reason,
			DroppedAt:  now,
			UpdatedAt:  lead.UpdatedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Log.WithFields(logrus.Fields{
		"lead_id":     result.LeadID,
		"drop_reason": reason,
		"changed_by":  changedBy,
	}).Info("lead dropped")
	return result, nil
}

// GetStatusHistory returns every history record for a lead, newest first.
// A lead with no history (or an unknown id) yields an empty slice.
func (s *LifecycleService) GetStatusHistory(leadID uint) ([]models.LeadStatusHistory, error) {
	history := make([]models.LeadStatusHistory, 0)
	err := s.DB.
		Where("lead_id = ?", leadID).
		Order("changed_at DESC").
		Find(&history).Error
	if err != nil {
		return nil, err
	}
	return history, nil
}
