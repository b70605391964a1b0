package controller

import (
	"far-compliance-be/internal/dto"
	"far-compliance-be/internal/pkg/serverutils"
	"far-compliance-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ITeamController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Add(ctx *fiber.Ctx) error
	Remove(ctx *fiber.Ctx) error
}

type teamController struct {
	service service.ITeamService
}

func NewTeamController(service service.ITeamService) ITeamController {
	return &teamController{service: service}
}

func (c *teamController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/team")
	h.Get("/", c.List)
	h.Post("/", c.Add)
	h.Delete("/:id", c.Remove)
}

func (c *teamController) List(ctx *fiber.Ctx) error {
	tenantId, _, ok := serverutils.Identity(ctx)
	if !ok {
		return fiber.ErrUnauthorized
	}

	res, err := c.service.ListMembers(ctx.Context(), tenantId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Team members", res))
}

func (c *teamController) Add(ctx *fiber.Ctx) error {
	tenantId, _, ok := serverutils.Identity(ctx)
	if !ok {
		return fiber.ErrUnauthorized
	}

	var req dto.AddTeamMemberRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.AddMember(ctx.Context(), tenantId, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Team member added", res))
}

func (c *teamController) Remove(ctx *fiber.Ctx) error {
	tenantId, _, ok := serverutils.Identity(ctx)
	if !ok {
		return fiber.ErrUnauthorized
	}
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid member id")
	}

	if err := c.service.RemoveMember(ctx.Context(), tenantId, id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Team member removed", nil))
}
