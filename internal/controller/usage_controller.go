package controller

import (
	"far-compliance-be/internal/entity"
	"far-compliance-be/internal/pkg/serverutils"
	"far-compliance-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IUsageController interface {
	RegisterRoutes(r fiber.Router)
	GetStatus(ctx *fiber.Ctx) error
	CheckAdmission(ctx *fiber.Ctx) error
}

type usageController struct {
	service service.IUsageService
}

func NewUsageController(service service.IUsageService) IUsageController {
	return &usageController{service: service}
}

func (c *usageController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/usage")
	h.Get("/status", c.GetStatus)
	h.Get("/admission/:dimension", c.CheckAdmission)
}

func (c *usageController) GetStatus(ctx *fiber.Ctx) error {
	tenantId, _, ok := serverutils.Identity(ctx)
	if !ok {
		return fiber.ErrUnauthorized
	}

	res, err := c.service.GetUsageStatus(ctx.Context(), tenantId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Usage status", res))
}

// CheckAdmission answers whether the next action on a dimension would be
// admitted. It never records usage.
func (c *usageController) CheckAdmission(ctx *fiber.Ctx) error {
	tenantId, _, ok := serverutils.Identity(ctx)
	if !ok {
		return fiber.ErrUnauthorized
	}

	res, err := c.service.Admission(ctx.Context(), tenantId, entity.Dimension(ctx.Params("dimension")))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Admission decision", res))
}
