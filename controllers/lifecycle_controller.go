package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"tracklie/config"
	"tracklie/models"
	"tracklie/services"
	"tracklie/utils"
)

// DropReasons is the fixed catalog offered to the UI; the drop endpoint itself
// accepts any non-empty reason.
var DropReasons = []string{
	"Financial - Budget constraints",
	"Not Interested - No need for service",
	"Joined Competitor - Using competitor service",
	"Timing - Not ready now, maybe later",
	"Technical - Technical issues",
	"Communication - Poor communication",
	"Price - Too expensive",
	"Quality - Service quality concerns",
	"Location - Geographic constraints",
	"Other - Other reasons",
}

type UpdateStatusRequest struct {
	Status string  `json:"status" validate:"required"`
	Reason *string `json:"reason"`
}

type UpdateInterestRequest struct {
	InterestLevel int `json:"interest_level" validate:"gte=0,lte=5"`
}

type MarkCNPRequest struct {
	Reason *string `json:"reason"`
}

type ConvertLeadRequest struct {
	Product       string  `json:"product" validate:"required"`
	PaymentAmount int     `json:"payment_amount" validate:"gte=0"`
	Notes         *string `json:"notes"`
}

type DropLeadRequest struct {
	Reason string  `json:"reason" validate:"required"`
	Notes  *string `json:"notes"`
}

func lifecycleService() *services.LifecycleService {
	return services.NewLifecycleService(config.DB, logrus.StandardLogger())
}

// serviceError maps service-layer failures onto HTTP statuses.
func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrLeadNotFound):
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", nil)
	case errors.Is(err, services.ErrAssigneeNotFound):
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Assignee not found", nil)
	case services.IsValidationError(err):
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	default:
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Internal server error", err)
	}
}

// requireLeadAccess loads the lead and enforces visibility for restricted
// roles. On denial the error response is already written and the returned
// lead is nil.
func requireLeadAccess(c *fiber.Ctx, leadID uint) (*models.Lead, error) {
	var lead models.Lead
	if err := config.DB.First(&lead, leadID).Error; err != nil {
		return nil, utils.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", nil)
	}

	user := c.Locals("user").(*models.User)
	if !services.CanViewLead(user, &lead) {
		return nil, utils.ErrorResponse(c, fiber.StatusForbidden, "You do not have access to this lead", nil)
	}
	return &lead, nil
}

func UpdateLeadStatus(c *fiber.Ctx) error {
	leadID := utils.ParseUint(c.Params("id"))
	if lead, resp := requireLeadAccess(c, leadID); lead == nil {
		return resp
	}

	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	userID := c.Locals("userID").(uint)
	result, err := lifecycleService().UpdateStatus(leadID, req.Status, userID, req.Reason)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(utils.SuccessResponse(result))
}

func UpdateLeadInterest(c *fiber.Ctx) error {
	leadID := utils.ParseUint(c.Params("id"))
	if lead, resp := requireLeadAccess(c, leadID); lead == nil {
		return resp
	}

	var req UpdateInterestRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	userID := c.Locals("userID").(uint)
	result, err := lifecycleService().UpdateInterestLevel(leadID, req.InterestLevel, userID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(utils.SuccessResponse(result))
}

func MarkLeadCNP(c *fiber.Ctx) error {
	leadID := utils.ParseUint(c.Params("id"))
	if lead, resp := requireLeadAccess(c, leadID); lead == nil {
		return resp
	}

	var req MarkCNPRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	userID := c.Locals("userID").(uint)
	result, err := lifecycleService().MarkCNP(leadID, req.Reason, userID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(utils.SuccessResponse(result))
}

func ConvertLead(c *fiber.Ctx) error {
	leadID := utils.ParseUint(c.Params("id"))
	if lead, resp := requireLeadAccess(c, leadID); lead == nil {
		return resp
	}

	var req ConvertLeadRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	userID := c.Locals("userID").(uint)
	result, err := lifecycleService().Convert(leadID, req.Product, req.PaymentAmount, req.Notes, userID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(utils.SuccessResponse(result))
}

func DropLead(c *fiber.Ctx) error {
	leadID := utils.ParseUint(c.Params("id"))
	if lead, resp := requireLeadAccess(c, leadID); lead == nil {
		return resp
	}

	var req DropLeadRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	userID := c.Locals("userID").(uint)
	result, err := lifecycleService().Drop(leadID, req.Reason, req.Notes, userID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(utils.SuccessResponse(result))
}

func GetLeadStatusHistory(c *fiber.Ctx) error {
	leadID := utils.ParseUint(c.Params("id"))
	if lead, resp := requireLeadAccess(c, leadID); lead == nil {
		return resp
	}

	history, err := lifecycleService().GetStatusHistory(leadID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(utils.SuccessResponse(history))
}

func GetDropReasons(c *fiber.Ctx) error {
	return c.JSON(utils.SuccessResponse(DropReasons))
}
