package serverutils

import (
	"errors"

	"far-compliance-be/internal/dto"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware turns errors returned by handlers into the JSON
// envelope, with a status picked from the error's type.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		return WriteError(ctx, err)
	}
}

func WriteError(ctx *fiber.Ctx, err error) error {
	var admission *dto.AdmissionDeniedError
	var validation *dto.ValidationFailedError
	var unsafe *dto.ContentUnsafeError
	var fiberErr *fiber.Error

	switch {
	case errors.As(err, &admission):
		return ctx.Status(fiber.StatusTooManyRequests).JSON(ErrorResponseWithData(429, admission.Error(), dto.AdmissionDeniedData{
			Dimension:        admission.Dimension,
			Limit:            admission.Limit,
			Used:             admission.Used,
			Reason:           admission.Reason,
			ShowModalPricing: true,
		}))
	case errors.As(err, &validation):
		return ctx.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponseWithData(422, "Validation failed", fiber.Map{"errors": validation.Errors}))
	case errors.As(err, &unsafe):
		return ctx.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse(422, unsafe.Error()))
	case errors.Is(err, dto.ErrTenantNotFound),
		errors.Is(err, dto.ErrDocumentNotFound),
		errors.Is(err, dto.ErrAnalysisNotFound),
		errors.Is(err, dto.ErrTeamMemberNotFound),
		errors.Is(err, dto.ErrUploadNotPending):
		return ctx.Status(fiber.StatusNotFound).JSON(ErrorResponse(404, err.Error()))
	case errors.Is(err, dto.ErrTeamMemberExists):
		return ctx.Status(fiber.StatusConflict).JSON(ErrorResponse(409, err.Error()))
	case errors.Is(err, dto.ErrInvalidDimension), errors.Is(err, dto.ErrOwnerCannotBeRemoved):
		return ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponse(400, err.Error()))
	case errors.As(err, &fiberErr):
		return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
	default:
		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(500, "Internal server error"))
	}
}
