package controller

import (
	"io"
	"mime/multipart"
	"strconv"

	"far-compliance-be/internal/pkg/serverutils"
	"far-compliance-be/internal/service"
	"far-compliance-be/pkg/upload"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	formFieldFiles        = "files"
	formFieldCandidateIds = "candidate_ids"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
	Withdraw(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	ListAudits(ctx *fiber.Ctx) error
}

type documentController struct {
	service service.IUploadService
}

func NewDocumentController(service service.IUploadService) IDocumentController {
	return &documentController{service: service}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/documents")
	h.Post("/", c.Upload)
	h.Get("/", c.List)
	h.Get("/audits", c.ListAudits)
	h.Delete("/pending/:candidateId", c.Withdraw)
}

// Upload accepts multipart "files". An optional "candidate_ids" value per
// file lets the client withdraw that file while it is being scanned.
func (c *documentController) Upload(ctx *fiber.Ctx) error {
	tenantId, userId, ok := serverutils.Identity(ctx)
	if !ok {
		return fiber.ErrUnauthorized
	}

	form, err := ctx.MultipartForm()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "multipart form with files is required")
	}

	candidates := candidatesFromForm(form)
	res, err := c.service.UploadDocuments(ctx.Context(), tenantId, userId, candidates)
	if err != nil {
		return err
	}

	status := fiber.StatusCreated
	if res.Accepted == 0 {
		status = fiber.StatusOK
	}
	return ctx.Status(status).JSON(serverutils.SuccessResponse("Upload processed", res))
}

func candidatesFromForm(form *multipart.Form) []*upload.Candidate {
	files := form.File[formFieldFiles]
	ids := form.Value[formFieldCandidateIds]

	candidates := make([]*upload.Candidate, 0, len(files))
	for i, fh := range files {
		id := uuid.Nil
		if i < len(ids) {
			if parsed, err := uuid.Parse(ids[i]); err == nil {
				id = parsed
			}
		}
		candidates = append(candidates, upload.NewCandidate(
			id,
			fh.Filename,
			fh.Header.Get(fiber.HeaderContentType),
			fh.Size,
			func() (io.ReadCloser, error) { return fh.Open() },
		))
	}
	return candidates
}

func (c *documentController) Withdraw(ctx *fiber.Ctx) error {
	tenantId, _, ok := serverutils.Identity(ctx)
	if !ok {
		return fiber.ErrUnauthorized
	}
	candidateId, err := uuid.Parse(ctx.Params("candidateId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid candidate id")
	}

	if err := c.service.WithdrawUpload(ctx.Context(), tenantId, candidateId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Upload withdrawn", nil))
}

func (c *documentController) List(ctx *fiber.Ctx) error {
	tenantId, _, ok := serverutils.Identity(ctx)
	if !ok {
		return fiber.ErrUnauthorized
	}

	res, err := c.service.ListDocuments(ctx.Context(), tenantId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Documents", res))
}

func (c *documentController) ListAudits(ctx *fiber.Ctx) error {
	tenantId, _, ok := serverutils.Identity(ctx)
	if !ok {
		return fiber.ErrUnauthorized
	}
	limit, _ := strconv.Atoi(ctx.Query("limit", "50"))
	offset, _ := strconv.Atoi(ctx.Query("offset", "0"))

	res, err := c.service.ListUploadAudits(ctx.Context(), tenantId, limit, offset)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Upload audits", res))
}
