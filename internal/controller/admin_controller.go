package controller

import (
	"strconv"

	"far-compliance-be/internal/dto"
	"far-compliance-be/internal/pkg/serverutils"
	"far-compliance-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAdminController interface {
	RegisterRoutes(r fiber.Router)
	GetSecurityEvents(ctx *fiber.Ctx) error
	GetSecurityEvent(ctx *fiber.Ctx) error
	ListTenants(ctx *fiber.Ctx) error
	ProvisionTenant(ctx *fiber.Ctx) error
}

type adminController struct {
	service service.IAdminService
}

func NewAdminController(service service.IAdminService) IAdminController {
	return &adminController{service: service}
}

func (c *adminController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/admin")
	h.Use(serverutils.AdminOnly)

	h.Get("/security-events", c.GetSecurityEvents)
	h.Get("/security-events/:id", c.GetSecurityEvent)
	h.Get("/tenants", c.ListTenants)
	h.Post("/tenants", c.ProvisionTenant)
}

func (c *adminController) GetSecurityEvents(ctx *fiber.Ctx) error {
	page, _ := strconv.Atoi(ctx.Query("page", "1"))
	limit, _ := strconv.Atoi(ctx.Query("limit", "10"))
	level := ctx.Query("level", "")

	events, err := c.service.GetSecurityEvents(ctx.Context(), page, limit, level)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Security events", events))
}

func (c *adminController) GetSecurityEvent(ctx *fiber.Ctx) error {
	// Event IDs are content hashes, not UUIDs.
	event, err := c.service.GetSecurityEvent(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, "Security event not found"))
	}
	return ctx.JSON(serverutils.SuccessResponse("Security event", event))
}

func (c *adminController) ListTenants(ctx *fiber.Ctx) error {
	tenants, err := c.service.ListTenants(ctx.Context(), ctx.Query("tier", ""))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Tenants", tenants))
}

func (c *adminController) ProvisionTenant(ctx *fiber.Ctx) error {
	var req dto.ProvisionTenantRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.ProvisionTenant(ctx.Context(), req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Tenant provisioned", res))
}
