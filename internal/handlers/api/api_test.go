package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"outreach/internal/ai"
	"outreach/internal/db"
	"outreach/internal/lifecycle"
	"outreach/internal/middleware"
	"outreach/internal/models"
	"outreach/internal/query"
	"outreach/internal/validation"
)

type fakeCarts struct {
	session string
	params  query.Params
	ids     []int64
	err     error
}

func (f *fakeCarts) Carts(_ context.Context, sessionID string, p query.Params) (models.ListResponse[models.CartEntry], error) {
	f.session, f.params = sessionID, p
	if sessionID == "" {
		return models.ListResponse[models.CartEntry]{}, lifecycle.ErrMissingSession
	}
	return models.ListResponse[models.CartEntry]{Items: []models.CartEntry{{ID: 1, Domain: "a.com"}}}, f.err
}

func (f *fakeCarts) CartCount(_ context.Context, sessionID string, campaignID int64) (models.CountResponse, error) {
	f.session = sessionID
	if campaignID <= 0 {
		return models.CountResponse{}, validation.NewError("campaign_id must be a positive integer")
	}
	return models.CountResponse{Count: 3}, f.err
}

func (f *fakeCarts) DeleteCartEntries(_ context.Context, sessionID string, ids []int64) (models.DeleteResponse, error) {
	f.session, f.ids = sessionID, ids
	if ok, msg := validation.ValidateIDs(ids); !ok {
		return models.DeleteResponse{}, validation.NewError(msg)
	}
	return models.DeleteResponse{Deleted: int64(len(ids))}, f.err
}

type fakeLifecycle struct {
	targets []models.RetireTarget
	err     error
}

func (f *fakeLifecycle) Promote(_ context.Context, sessionID string) (models.PromoteResult, error) {
	if sessionID == "" {
		return models.PromoteResult{}, lifecycle.ErrMissingSession
	}
	return models.PromoteResult{Inserted: 2, Skipped: 1, InsertedPerCampaign: []models.CampaignCount{{CampaignID: 7, Count: 2}}}, f.err
}

func (f *fakeLifecycle) Retire(_ context.Context, targets []models.RetireTarget) (models.RetireResult, error) {
	f.targets = targets
	return models.RetireResult{Archived: len(targets), Blacklisted: len(targets), Removed: len(targets)}, f.err
}

type fakeProspects struct {
	paused bool
	err    error
}

func (f *fakeProspects) Prospects(context.Context, query.Params) (models.ListResponse[models.ProspectingItem], error) {
	return models.ListResponse[models.ProspectingItem]{Items: []models.ProspectingItem{}}, f.err
}

func (f *fakeProspects) Stats(context.Context) (models.ProspectingStats, error) {
	return models.ProspectingStats{}, f.err
}

func (f *fakeProspects) ProspectingFilterOptions(context.Context) (models.ProspectingFilterOptions, error) {
	return models.ProspectingFilterOptions{Campaigns: []string{"Travel"}}, f.err
}

func (f *fakeProspects) ProcessingState(context.Context) (models.ProcessingState, error) {
	return models.ProcessingState{Paused: f.paused}, f.err
}

func (f *fakeProspects) ToggleProcessing(context.Context) (models.ProcessingState, error) {
	f.paused = !f.paused
	return models.ProcessingState{Paused: f.paused, Message: "toggled"}, f.err
}

type fakeEmails struct {
	prompt string
	err    error
}

func (f *fakeEmails) Emails(context.Context, query.Params) (models.ListResponse[models.EmailItem], error) {
	return models.ListResponse[models.EmailItem]{Items: []models.EmailItem{}}, f.err
}

func (f *fakeEmails) EmailFilterOptions(context.Context) (models.EmailFilterOptions, error) {
	return models.EmailFilterOptions{}, f.err
}

func (f *fakeEmails) Get(_ context.Context, id int64) (*models.EmailDetail, error) {
	if id != 1 {
		return nil, db.ErrEmailNotFound
	}
	return &models.EmailDetail{EmailItem: models.EmailItem{ID: 1, Domain: "a.com"}}, nil
}

func (f *fakeEmails) Generate(_ context.Context, id int64, prompt string, _ json.RawMessage) (*models.EmailGeneration, error) {
	f.prompt = prompt
	if f.err != nil {
		return nil, f.err
	}
	return &models.EmailGeneration{ID: 9, EmailID: id, PromptUsed: prompt, GeneratedEmail: "Hi"}, nil
}

func (f *fakeEmails) SaveGeneration(_ context.Context, id int64, generatedEmail, promptUsed *string) (*models.EmailGeneration, error) {
	if generatedEmail == nil && promptUsed == nil {
		return nil, validation.NewError("generated_email or prompt_used is required")
	}
	if id != 1 {
		return nil, db.ErrGenerationNotFound
	}
	return &models.EmailGeneration{ID: 9, EmailID: id, GeneratedEmail: *generatedEmail}, nil
}

type fakeCampaigns struct {
	session string
	err     error
}

func (f *fakeCampaigns) List(context.Context) ([]models.Campaign, error) {
	return nil, f.err
}

func (f *fakeCampaigns) Get(_ context.Context, id int64, sessionID string) (*models.CampaignDetail, error) {
	f.session = sessionID
	if id != 1 {
		return nil, db.ErrCampaignNotFound
	}
	return &models.CampaignDetail{Campaign: models.Campaign{ID: 1, Name: "Travel"}, CartCount: 4}, nil
}

func (f *fakeCampaigns) Create(_ context.Context, in models.CampaignInput) (*models.Campaign, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Campaign{ID: 2, Name: in.Name}, nil
}

func (f *fakeCampaigns) Update(_ context.Context, id int64, _ models.CampaignPatch) (*models.Campaign, error) {
	return &models.Campaign{ID: id}, f.err
}

func (f *fakeCampaigns) Delete(_ context.Context, id int64) error {
	if id != 1 {
		return db.ErrCampaignNotFound
	}
	return f.err
}

type fixture struct {
	app       *fiber.App
	carts     *fakeCarts
	lifecycle *fakeLifecycle
	prospects *fakeProspects
	emails    *fakeEmails
	campaigns *fakeCampaigns
}

func newFixture() *fixture {
	f := &fixture{
		app:       fiber.New(),
		carts:     &fakeCarts{},
		lifecycle: &fakeLifecycle{},
		prospects: &fakeProspects{},
		emails:    &fakeEmails{},
		campaigns: &fakeCampaigns{},
	}
	identity := middleware.NewIdentityMiddleware("", false)
	cartHandler := NewCartHandler(f.carts, f.lifecycle)
	prospectingHandler := NewProspectingHandler(f.prospects, f.lifecycle)
	emailHandler := NewEmailHandler(f.emails, f.emails)
	campaignHandler := NewCampaignHandler(f.campaigns)

	v1 := f.app.Group("/api/v1")
	v1.Get("/carts", identity.OptionalSession, cartHandler.List)
	v1.Get("/carts/count", identity.RequireSession, cartHandler.Count)
	v1.Delete("/carts/bulk", identity.RequireSession, cartHandler.BulkDelete)
	v1.Post("/carts/process", identity.OptionalSession, cartHandler.Process)
	v1.Get("/metrics", prospectingHandler.List)
	v1.Get("/metrics/filter-options", prospectingHandler.FilterOptions)
	v1.Post("/metrics/toggle-processing", prospectingHandler.ToggleProcessing)
	v1.Post("/metrics/blacklist-processed", prospectingHandler.BlacklistProcessed)
	v1.Get("/emails/:id", emailHandler.Get)
	v1.Post("/emails/:id/generate", emailHandler.Generate)
	v1.Put("/emails/:id/generations", emailHandler.SaveGeneration)
	v1.Get("/campaigns", campaignHandler.List)
	v1.Post("/campaigns", campaignHandler.Create)
	v1.Get("/campaigns/:id", identity.OptionalSession, campaignHandler.Get)
	v1.Delete("/campaigns/:id", campaignHandler.Delete)
	return f
}

type envelope struct {
	Status    string          `json:"status"`
	Data      json.RawMessage `json:"data"`
	Error     string          `json:"error"`
	RequestID string          `json:"request_id"`
}

func (f *fixture) call(t *testing.T, method, path, user, body string) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if user != "" {
		req.Header.Set(middleware.UserIDHeader, user)
	}
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestCarts(t *testing.T) {
	f := newFixture()

	status, env := f.call(t, http.MethodGet, "/api/v1/carts?page=2&domain=a&domain=b", "alice", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", env.Status)
	assert.Equal(t, "alice", f.carts.session)
	assert.Equal(t, []string{"a", "b"}, f.carts.params["domain"])
	assert.Equal(t, "2", f.carts.params.Get("page"))

	status, env = f.call(t, http.MethodGet, "/api/v1/carts", "", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, lifecycle.ErrMissingSession.Error(), env.Error)
}

func TestCartCount(t *testing.T) {
	f := newFixture()

	status, env := f.call(t, http.MethodGet, "/api/v1/carts/count?campaign_id=7", "alice", "")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"count":3}`, string(env.Data))

	for _, q := range []string{"", "?campaign_id=abc", "?campaign_id=0"} {
		status, _ = f.call(t, http.MethodGet, "/api/v1/carts/count"+q, "alice", "")
		assert.Equal(t, http.StatusUnprocessableEntity, status, q)
	}

	status, _ = f.call(t, http.MethodGet, "/api/v1/carts/count?campaign_id=7", "", "")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestCartBulkDelete(t *testing.T) {
	f := newFixture()

	status, env := f.call(t, http.MethodDelete, "/api/v1/carts/bulk", "alice", `{"ids":[1,2]}`)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"deleted":2}`, string(env.Data))
	assert.Equal(t, []int64{1, 2}, f.carts.ids)

	for _, body := range []string{`{"ids":[]}`, `{}`, `{"ids":[0]}`, `{"ids":"1"}`, `not json`} {
		status, env = f.call(t, http.MethodDelete, "/api/v1/carts/bulk", "alice", body)
		assert.Equal(t, http.StatusUnprocessableEntity, status, body)
		assert.Equal(t, "error", env.Status)
	}
}

func TestCartProcess(t *testing.T) {
	f := newFixture()

	status, env := f.call(t, http.MethodPost, "/api/v1/carts/process", "alice", "")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"skipped":1,"inserted":2,"insertedPerCampaign":[{"campaignId":7,"count":2}]}`, string(env.Data))

	status, _ = f.call(t, http.MethodPost, "/api/v1/carts/process", "", "")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestInternalErrorsCarryRequestID(t *testing.T) {
	f := newFixture()
	f.lifecycle.err = errors.New("connection reset")

	status, env := f.call(t, http.MethodPost, "/api/v1/carts/process", "alice", "")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "failed to process cart", env.Error)
	assert.NotEmpty(t, env.RequestID)
	assert.NotContains(t, env.Error, "connection reset")
}

func TestBlacklistProcessed(t *testing.T) {
	f := newFixture()

	status, env := f.call(t, http.MethodPost, "/api/v1/metrics/blacklist-processed", "",
		`{"domains":[{"id":1,"domain":"a.com"},{"id":2,"domain":"b.com"}]}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, f.lifecycle.targets, 2)
	assert.Contains(t, string(env.Data), `"archived":2`)

	status, _ = f.call(t, http.MethodPost, "/api/v1/metrics/blacklist-processed", "", `{"domains":[]}`)
	assert.Equal(t, http.StatusOK, status)

	tests := []struct {
		name string
		body string
	}{
		{name: "missing domains", body: `{}`},
		{name: "zero id", body: `{"domains":[{"id":0,"domain":"a.com"}]}`},
		{name: "blank domain", body: `{"domains":[{"id":1,"domain":"  "}]}`},
		{name: "not an array", body: `{"domains":"a.com"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := f.call(t, http.MethodPost, "/api/v1/metrics/blacklist-processed", "", tt.body)
			assert.Equal(t, http.StatusUnprocessableEntity, status)
		})
	}
}

func TestProspecting(t *testing.T) {
	f := newFixture()

	status, env := f.call(t, http.MethodGet, "/api/v1/metrics?order=dr&direction=asc", "", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"items":[]`)

	status, env = f.call(t, http.MethodGet, "/api/v1/metrics/filter-options", "", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"Travel"`)

	status, env = f.call(t, http.MethodPost, "/api/v1/metrics/toggle-processing", "", "")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"paused":true,"message":"toggled"}`, string(env.Data))
}

func TestEmails(t *testing.T) {
	f := newFixture()

	status, _ := f.call(t, http.MethodGet, "/api/v1/emails/1", "", "")
	assert.Equal(t, http.StatusOK, status)

	status, env := f.call(t, http.MethodGet, "/api/v1/emails/2", "", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, db.ErrEmailNotFound.Error(), env.Error)

	status, _ = f.call(t, http.MethodGet, "/api/v1/emails/abc", "", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = f.call(t, http.MethodPost, "/api/v1/emails/1/generate", "", `{"prompt":"be brief","analysis":{"x":1}}`)
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "be brief", f.emails.prompt)
	assert.Contains(t, string(env.Data), `"prompt_used":"be brief"`)

	status, _ = f.call(t, http.MethodPut, "/api/v1/emails/1/generations", "", `{"generated_email":"edited"}`)
	assert.Equal(t, http.StatusOK, status)
	status, _ = f.call(t, http.MethodPut, "/api/v1/emails/1/generations", "", `{}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	status, _ = f.call(t, http.MethodPut, "/api/v1/emails/5/generations", "", `{"generated_email":"edited"}`)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAIFailures(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "not configured", err: ai.ErrNotConfigured, status: http.StatusServiceUnavailable},
		{name: "upstream", err: fmt.Errorf("%w: create message: overloaded", ai.ErrUpstream), status: http.StatusBadGateway},
		{name: "empty response", err: ai.ErrEmptyResponse, status: http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.emails.err = tt.err
			status, env := f.call(t, http.MethodPost, "/api/v1/emails/1/generate", "", `{"prompt":"p"}`)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, "error", env.Status)
		})
	}
}

func TestCampaigns(t *testing.T) {
	f := newFixture()

	status, env := f.call(t, http.MethodGet, "/api/v1/campaigns", "", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "[]", string(env.Data))

	status, env = f.call(t, http.MethodGet, "/api/v1/campaigns/1", "alice", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alice", f.campaigns.session)
	assert.Contains(t, string(env.Data), `"cart_count":4`)

	status, _ = f.call(t, http.MethodGet, "/api/v1/campaigns/1", "", "")
	assert.Equal(t, http.StatusOK, status, "identity is optional")
	assert.Empty(t, f.campaigns.session)

	status, _ = f.call(t, http.MethodGet, "/api/v1/campaigns/9", "", "")
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = f.call(t, http.MethodDelete, "/api/v1/campaigns/9", "", "")
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = f.call(t, http.MethodDelete, "/api/v1/campaigns/0", "", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = f.call(t, http.MethodPost, "/api/v1/campaigns", "", `{"name":"Travel","original_keywords":"travel"}`)
	assert.Equal(t, http.StatusCreated, status)
	assert.Contains(t, string(env.Data), `"name":"Travel"`)

	f.campaigns.err = db.ErrDuplicateCampaign
	status, _ = f.call(t, http.MethodPost, "/api/v1/campaigns", "", `{"name":"Travel","original_keywords":"travel"}`)
	assert.Equal(t, http.StatusConflict, status)

	f.campaigns.err = validation.NewError("name is required")
	status, env = f.call(t, http.MethodPost, "/api/v1/campaigns", "", `{}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "name is required", env.Error)
}
