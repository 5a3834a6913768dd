package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-desk/internal/api/dto"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

// AdminHandler serves department and reason CRUD screens.
type AdminHandler struct {
	departments repository.DepartmentRepository
	reasons     repository.ReasonRepository
}

// NewAdminHandler constructs handler.
func NewAdminHandler(departments repository.DepartmentRepository, reasons repository.ReasonRepository) *AdminHandler {
	return &AdminHandler{departments: departments, reasons: reasons}
}

// ListDepartments GET /admin/departments.
func (h *AdminHandler) ListDepartments(c *fiber.Ctx) error {
	departments, err := h.departments.ListActive(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": departments})
}

// CreateDepartment POST /admin/departments.
func (h *AdminHandler) CreateDepartment(c *fiber.Ctx) error {
	var req dto.DepartmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Name) == "" {
		return apperrors.NewValidationError("name required", nil)
	}

	dept := &domain.Department{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		IsActive:    true,
	}
	if req.IsActive != nil {
		dept.IsActive = *req.IsActive
	}
	if err := h.departments.Create(c.UserContext(), dept); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dept})
}

// UpdateDepartment PATCH /admin/departments/:id.
func (h *AdminHandler) UpdateDepartment(c *fiber.Ctx) error {
	dept, err := h.departments.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("department", nil)
		}
		return err
	}
	var req dto.DepartmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		dept.Name = name
	}
	if desc := strings.TrimSpace(req.Description); desc != "" {
		dept.Description = desc
	}
	if req.IsActive != nil {
		dept.IsActive = *req.IsActive
	}
	if err := h.departments.Update(c.UserContext(), dept); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dept})
}

// ListReasons GET /admin/departments/:id/reasons.
func (h *AdminHandler) ListReasons(c *fiber.Ctx) error {
	reasons, err := h.reasons.ListByDepartment(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": reasons})
}

// CreateReason POST /admin/reasons.
func (h *AdminHandler) CreateReason(c *fiber.Ctx) error {
	var req dto.ReasonRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Name) == "" || req.DepartmentID == "" {
		return apperrors.NewValidationError("name and department_id required", nil)
	}
	if req.ResponseMinutes < 0 || req.ResolutionMinutes < 0 {
		return apperrors.NewValidationError("sla minutes must be non-negative", nil)
	}
	if _, err := h.departments.GetByID(c.UserContext(), req.DepartmentID); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("department", nil)
		}
		return err
	}

	reason := &domain.Reason{
		DepartmentID:      req.DepartmentID,
		Name:              strings.TrimSpace(req.Name),
		ResponseMinutes:   req.ResponseMinutes,
		ResolutionMinutes: req.ResolutionMinutes,
		IsActive:          true,
	}
	if req.IsActive != nil {
		reason.IsActive = *req.IsActive
	}
	if err := h.reasons.Create(c.UserContext(), reason); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": reason})
}
