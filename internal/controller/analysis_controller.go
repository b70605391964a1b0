package controller

import (
	"far-compliance-be/internal/dto"
	"far-compliance-be/internal/pkg/serverutils"
	"far-compliance-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IAnalysisController interface {
	RegisterRoutes(r fiber.Router)
	Request(ctx *fiber.Ctx) error
	Get(ctx *fiber.Ctx) error
}

type analysisController struct {
	service service.IAnalysisService
}

func NewAnalysisController(service service.IAnalysisService) IAnalysisController {
	return &analysisController{service: service}
}

func (c *analysisController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/analyses")
	h.Post("/", c.Request)
	h.Get("/:id", c.Get)
}

func (c *analysisController) Request(ctx *fiber.Ctx) error {
	tenantId, userId, ok := serverutils.Identity(ctx)
	if !ok {
		return fiber.ErrUnauthorized
	}

	var req dto.RequestAnalysisRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.RequestAnalysis(ctx.Context(), tenantId, userId, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Analysis queued", res))
}

func (c *analysisController) Get(ctx *fiber.Ctx) error {
	tenantId, _, ok := serverutils.Identity(ctx)
	if !ok {
		return fiber.ErrUnauthorized
	}
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid analysis id")
	}

	res, err := c.service.GetAnalysis(ctx.Context(), tenantId, id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Analysis", res))
}
