package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"far-compliance-be/internal/dto"
	"far-compliance-be/internal/entity"
	"far-compliance-be/internal/pkg/serverutils"
	"far-compliance-be/internal/service"
	"far-compliance-be/pkg/upload"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "controller-test-secret"

var (
	testTenant = uuid.MustParse("6f1f7c1e-8a0e-4d52-9a55-1d2b3c4d5e6f")
	testUser   = uuid.MustParse("0a9b8c7d-6e5f-4a3b-2c1d-0e9f8a7b6c5d")
)

func bearer(t *testing.T, role string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"tenant_id": testTenant.String(),
		"user_id":   testUser.String(),
		"role":      role,
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + token
}

func newTestApp(register func(r fiber.Router)) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	register(app.Group("/api", serverutils.NewJwtMiddleware(testSecret)))
	return app
}

func decode(t *testing.T, body io.Reader) serverutils.BaseResponse {
	t.Helper()
	var res serverutils.BaseResponse
	require.NoError(t, json.NewDecoder(body).Decode(&res))
	return res
}

type stubUploadService struct {
	service.IUploadService
	received map[string]string
	ids      []uuid.UUID
	tenant   uuid.UUID
	res      *dto.UploadBatchResponse
	err      error
}

func (s *stubUploadService) UploadDocuments(ctx context.Context, tenantId, userId uuid.UUID, candidates []*upload.Candidate) (*dto.UploadBatchResponse, error) {
	s.tenant = tenantId
	s.received = map[string]string{}
	for _, c := range candidates {
		rc, err := c.Open()
		if err != nil {
			return nil, err
		}
		data, _ := io.ReadAll(rc)
		rc.Close()
		s.received[c.Name] = c.MimeType + "|" + string(data)
		s.ids = append(s.ids, c.ID)
	}
	return s.res, s.err
}

func (s *stubUploadService) WithdrawUpload(ctx context.Context, tenantId, candidateId uuid.UUID) error {
	return dto.ErrUploadNotPending
}

func multipartBody(t *testing.T, files map[string]string, candidateIds ...string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for name, content := range files {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", `form-data; name="files"; filename="`+name+`"`)
		h.Set("Content-Type", "text/plain")
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	for _, id := range candidateIds {
		require.NoError(t, w.WriteField("candidate_ids", id))
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func TestUploadPassesFilesToService(t *testing.T) {
	svc := &stubUploadService{res: &dto.UploadBatchResponse{Accepted: 1, Results: []dto.FileUploadResult{}}}
	app := newTestApp(NewDocumentController(svc).RegisterRoutes)

	candidateId := uuid.New()
	body, contentType := multipartBody(t, map[string]string{"notes.txt": "clause 52.204-21"}, candidateId.String())
	req := httptest.NewRequest("POST", "/api/documents", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", bearer(t, "user"))

	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, testTenant, svc.tenant)
	assert.Equal(t, map[string]string{"notes.txt": "text/plain|clause 52.204-21"}, svc.received)
	assert.Equal(t, []uuid.UUID{candidateId}, svc.ids)
}

func TestUploadWithNothingAcceptedIsOK(t *testing.T) {
	svc := &stubUploadService{res: &dto.UploadBatchResponse{Rejected: 1, Results: []dto.FileUploadResult{}}}
	app := newTestApp(NewDocumentController(svc).RegisterRoutes)

	body, contentType := multipartBody(t, map[string]string{"a.txt": "x"}, "not-a-uuid")
	req := httptest.NewRequest("POST", "/api/documents", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", bearer(t, "user"))

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Len(t, svc.ids, 1)
	assert.NotEqual(t, uuid.Nil, svc.ids[0])
}

func TestUploadDeniedReturnsPricingModal(t *testing.T) {
	svc := &stubUploadService{err: &dto.AdmissionDeniedError{Dimension: "documents", Limit: 5, Used: 5, Reason: "plan limit reached"}}
	app := newTestApp(NewDocumentController(svc).RegisterRoutes)

	body, contentType := multipartBody(t, map[string]string{"a.txt": "x"})
	req := httptest.NewRequest("POST", "/api/documents", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", bearer(t, "user"))

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)

	res := decode(t, resp.Body)
	data := res.Data.(map[string]interface{})
	assert.Equal(t, true, data["show_modal_pricing"])
	assert.Equal(t, "documents", data["dimension"])
}

func TestUploadRequiresToken(t *testing.T) {
	app := newTestApp(NewDocumentController(&stubUploadService{}).RegisterRoutes)

	resp, err := app.Test(httptest.NewRequest("POST", "/api/documents", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestWithdrawUnknownCandidate(t *testing.T) {
	app := newTestApp(NewDocumentController(&stubUploadService{}).RegisterRoutes)

	req := httptest.NewRequest("DELETE", "/api/documents/pending/"+uuid.NewString(), nil)
	req.Header.Set("Authorization", bearer(t, "user"))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	req = httptest.NewRequest("DELETE", "/api/documents/pending/bogus", nil)
	req.Header.Set("Authorization", bearer(t, "user"))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

type stubUsageService struct {
	service.IUsageService
	dimension entity.Dimension
}

func (s *stubUsageService) Admission(ctx context.Context, tenantId uuid.UUID, dimension entity.Dimension) (*dto.AdmissionResponse, error) {
	s.dimension = dimension
	if !dimension.Valid() {
		return nil, dto.ErrInvalidDimension
	}
	return &dto.AdmissionResponse{Dimension: string(dimension), Allowed: true, Used: 1, Limit: 5}, nil
}

func TestAdmissionEndpoint(t *testing.T) {
	svc := &stubUsageService{}
	app := newTestApp(NewUsageController(svc).RegisterRoutes)

	req := httptest.NewRequest("GET", "/api/usage/admission/analyses", nil)
	req.Header.Set("Authorization", bearer(t, "user"))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, entity.DimensionAnalyses, svc.dimension)

	req = httptest.NewRequest("GET", "/api/usage/admission/storage", nil)
	req.Header.Set("Authorization", bearer(t, "user"))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

type stubTeamService struct {
	service.ITeamService
	added *dto.AddTeamMemberRequest
}

func (s *stubTeamService) AddMember(ctx context.Context, tenantId uuid.UUID, req *dto.AddTeamMemberRequest) (*dto.TeamMemberResponse, error) {
	s.added = req
	return &dto.TeamMemberResponse{Id: uuid.New(), Email: req.Email, Role: req.Role}, nil
}

func TestAddTeamMemberValidatesBody(t *testing.T) {
	svc := &stubTeamService{}
	app := newTestApp(NewTeamController(svc).RegisterRoutes)

	send := func(body string) int {
		req := httptest.NewRequest("POST", "/api/team", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", bearer(t, "user"))
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, fiber.StatusUnprocessableEntity, send(`{"email":"not-an-email","role":"analyst"}`))
	assert.Equal(t, fiber.StatusUnprocessableEntity, send(`{"email":"a@acme.test","role":"owner"}`))
	assert.Nil(t, svc.added)

	assert.Equal(t, fiber.StatusCreated, send(`{"email":"a@acme.test","role":"analyst"}`))
	require.NotNil(t, svc.added)
	assert.Equal(t, "a@acme.test", svc.added.Email)
}

type stubAdminService struct {
	service.IAdminService
}

func (s *stubAdminService) ListTenants(ctx context.Context, tier string) ([]*dto.TenantSummaryResponse, error) {
	return []*dto.TenantSummaryResponse{}, nil
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	app := newTestApp(NewAdminController(&stubAdminService{}).RegisterRoutes)

	req := httptest.NewRequest("GET", "/api/admin/tenants", nil)
	req.Header.Set("Authorization", bearer(t, "user"))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest("GET", "/api/admin/tenants", nil)
	req.Header.Set("Authorization", bearer(t, "admin"))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
