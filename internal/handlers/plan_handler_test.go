package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/inforia/backend/internal/models"
	"github.com/inforia/backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlanStore struct {
	renewQuota int
	renewErr   error
	profile    *models.Profile
	getErr     error
}

func (f *fakePlanStore) RenewPlan(_ context.Context, _ uuid.UUID) (int, error) {
	return f.renewQuota, f.renewErr
}

func (f *fakePlanStore) GetProfile(_ context.Context, _ uuid.UUID) (*models.Profile, error) {
	return f.profile, f.getErr
}

func newPlanApp(store *fakePlanStore, userID uuid.UUID) *fiber.App {
	app := fiber.New()
	h := NewPlanHandler(store)
	app.Post("/api/plan/renew", authAs(userID), h.Renew)
	app.Get("/api/plan/quota", authAs(userID), h.Quota)
	return app
}

func TestRenewPlanSuccess(t *testing.T) {
	app := newPlanApp(&fakePlanStore{renewQuota: models.ClinicQuota}, uuid.New())

	req := httptest.NewRequest(http.MethodPost, "/api/plan/renew", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var got struct {
		Message          string `json:"message"`
		ReportsRemaining int    `json:"reports_remaining"`
	}
	decodeBody(t, resp, &got)
	assert.Equal(t, "Plan renewed successfully.", got.Message)
	assert.Equal(t, models.ClinicQuota, got.ReportsRemaining)
}

func TestRenewPlanUnknownProfile(t *testing.T) {
	app := newPlanApp(&fakePlanStore{renewErr: services.ErrProfileNotFound}, uuid.New())

	req := httptest.NewRequest(http.MethodPost, "/api/plan/renew", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestQuotaReturnsPlanAndRemaining(t *testing.T) {
	store := &fakePlanStore{profile: &models.Profile{Plan: models.PlanProfessional, ReportsRemaining: 7}}
	app := newPlanApp(store, uuid.New())

	req := httptest.NewRequest(http.MethodGet, "/api/plan/quota", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var got struct {
		Plan             string `json:"plan"`
		ReportsRemaining int    `json:"reports_remaining"`
	}
	decodeBody(t, resp, &got)
	assert.Equal(t, models.PlanProfessional, got.Plan)
	assert.Equal(t, 7, got.ReportsRemaining)
}
