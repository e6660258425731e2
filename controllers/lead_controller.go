package controller

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"tracklie/config"
	"tracklie/models"
	"tracklie/services"
	"tracklie/utils"
)

type CreateLeadRequest struct {
	Name       string  `json:"name" validate:"required,max=255"`
	Phone      string  `json:"phone" validate:"required"`
	Email      *string `json:"email" validate:"omitempty,email"`
	Company    *string `json:"company"`
	JobTitle   *string `json:"job_title"`
	Industry   *string `json:"industry"`
	Website    *string `json:"website"`
	Budget     *int    `json:"budget"`
	Language   string  `json:"language"`
	Status     string  `json:"status"`
	Source     *string `json:"source"`
	Priority   string  `json:"priority"`
	Notes      *string `json:"notes"`
	Address    *string `json:"address"`
	City       *string `json:"city"`
	State      *string `json:"state"`
	ZipCode    *string `json:"zip_code"`
	Country    string  `json:"country"`
	AssignedTo *uint   `json:"assigned_to"`
}

type UpdateLeadRequest struct {
	Name       *string `json:"name"`
	Email      *string `json:"email" validate:"omitempty,email"`
	Phone      *string `json:"phone"`
	Company    *string `json:"company"`
	JobTitle   *string `json:"job_title"`
	Industry   *string `json:"industry"`
	Website    *string `json:"website"`
	Budget     *int    `json:"budget"`
	Language   *string `json:"language"`
	Status     *string `json:"status"`
	Source     *string `json:"source"`
	Priority   *string `json:"priority"`
	Notes      *string `json:"notes"`
	Address    *string `json:"address"`
	City       *string `json:"city"`
	State      *string `json:"state"`
	ZipCode    *string `json:"zip_code"`
	Country    *string `json:"country"`
	AssignedTo *uint   `json:"assigned_to"`
}

type AssignLeadRequest struct {
	AssignedTo uint `json:"assigned_to" validate:"required"`
}

func leadService() *services.LeadService {
	return services.NewLeadService(config.DB, logrus.StandardLogger())
}

func (r *CreateLeadRequest) toLead() *models.Lead {
	return &models.Lead{
		Name:       r.Name,
		Phone:      r.Phone,
		Email:      r.Email,
		Company:    r.Company,
		JobTitle:   r.JobTitle,
		Industry:   r.Industry,
		Website:    r.Website,
		Budget:     r.Budget,
		Language:   r.Language,
		Status:     r.Status,
		Source:     r.Source,
		Priority:   r.Priority,
		Notes:      r.Notes,
		Address:    r.Address,
		City:       r.City,
		State:      r.State,
		ZipCode:    r.ZipCode,
		Country:    r.Country,
		AssignedTo: r.AssignedTo,
	}
}

func CreateLead(c *fiber.Ctx) error {
	var req CreateLeadRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	userID := c.Locals("userID").(uint)
	lead, err := leadService().CreateLead(req.toLead(), &userID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(lead))
}

func GetLeads(c *fiber.Ctx) error {
	filter := services.LeadFilter{
		Status:   c.Query("status"),
		Source:   c.Query("source"),
		Priority: c.Query("priority"),
		Search:   c.Query("search"),
		Page:     c.QueryInt("page", 1),
		PerPage:  c.QueryInt("per_page", 10),
	}
	if assignedTo := c.Query("assigned_to"); assignedTo != "" {
		id, err := strconv.ParseUint(assignedTo, 10, 32)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid assigned_to parameter", nil)
		}
		filter.AssignedTo = utils.Pointer(uint(id))
	}

	user := c.Locals("user").(*models.User)
	leads, total, err := leadService().ListLeads(filter, user)
	if err != nil {
		return serviceError(c, err)
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
	return c.JSON(utils.NewPaginatedResponse(leads, total, page, perPage))
}

func GetLead(c *fiber.Ctx) error {
	lead, err := leadService().GetLead(utils.ParseUint(c.Params("id")))
	if err != nil {
		return serviceError(c, err)
	}

	user := c.Locals("user").(*models.User)
	if !services.CanViewLead(user, lead) {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "You do not have access to this lead", nil)
	}
	return c.JSON(utils.SuccessResponse(lead))
}

func UpdateLead(c *fiber.Ctx) error {
	leadID := utils.ParseUint(c.Params("id"))
	if lead, resp := requireLeadAccess(c, leadID); lead == nil {
		return resp
	}

	var req UpdateLeadRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	lead, err := leadService().UpdateLead(leadID, services.LeadUpdate{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Company:    req.Company,
		JobTitle:   req.JobTitle,
		Industry:   req.Industry,
		Website:    req.Website,
		Budget:     req.Budget,
		Language:   req.Language,
		Status:     req.Status,
		Source:     req.Source,
		Priority:   req.Priority,
		Notes:      req.Notes,
		Address:    req.Address,
		City:       req.City,
		State:      req.State,
		ZipCode:    req.ZipCode,
		Country:    req.Country,
		AssignedTo: req.AssignedTo,
	})
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(utils.SuccessResponse(lead))
}

func DeleteLead(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	if !user.CanDeleteLeads() {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Only admins can delete leads", nil)
	}

	if err := leadService().DeleteLead(utils.ParseUint(c.Params("id"))); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(utils.SuccessResponse(fiber.Map{
		"message": "Lead deleted successfully",
	}))
}

func AssignLead(c *fiber.Ctx) error {
	leadID := utils.ParseUint(c.Params("id"))
	if lead, resp := requireLeadAccess(c, leadID); lead == nil {
		return resp
	}

	var req AssignLeadRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	lead, err := leadService().AssignLead(leadID, req.AssignedTo)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(utils.SuccessResponse(lead))
}

func GetLeadStats(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	stats, err := leadService().GetLeadStats(user)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(utils.SuccessResponse(stats))
}

// WebhookCreateLead accepts unauthenticated lead submissions from external
// forms, guarded by a shared key and per-IP rate limiting. The lead is created
// with no creator.
func WebhookCreateLead(c *fiber.Ctx) error {
	if c.Query("key") != config.AppConfig.WebhookKey {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid webhook key", nil)
	}

	var req CreateLeadRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	lead, err := leadService().CreateLead(req.toLead(), nil)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(lead))
}
