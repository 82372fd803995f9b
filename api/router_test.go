package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Domenick1991/spacevoyager/internal/catalog"
	"github.com/Domenick1991/spacevoyager/internal/domain"
	"github.com/Domenick1991/spacevoyager/internal/repository"
	"github.com/Domenick1991/spacevoyager/internal/service/auth"
	"github.com/Domenick1991/spacevoyager/internal/service/booking"
	"github.com/Domenick1991/spacevoyager/internal/service/workflow"
	"github.com/Domenick1991/spacevoyager/internal/storage"
	"github.com/Domenick1991/spacevoyager/internal/ticket"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger, _ := test.NewNullLogger()
	now := func() time.Time { return time.Date(2026, 10, 18, 12, 0, 0, 0, time.Local) }

	store := storage.NewMemoryStore()
	cat := catalog.NewStore(catalog.DefaultFS(), nil, logger)
	require.NoError(t, cat.Load(context.Background()))
	renderer, err := ticket.NewRenderer(cat)
	require.NoError(t, err)

	users := repository.NewUserRepository(store)
	authService := auth.NewAuthService(users, repository.NewSessionRepository(store), logger, auth.WithClock(now))
	bookingService := booking.NewBookingService(repository.NewBookingRepository(store), users, authService, cat, logger, booking.WithClock(now))
	controller := workflow.NewController(cat, bookingService, authService, repository.NewDraftRepository(store), renderer, logger, workflow.WithClock(now))

	return NewRouter(Handlers{
		Catalog:  NewCatalogHandler(cat),
		Auth:     NewAuthHandler(authService),
		Bookings: NewBookingHandler(bookingService, renderer),
		Workflow: NewWorkflowHandler(controller),
	}, logger)
}

func do(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRouter_BookingJourney(t *testing.T) {
	router := newTestRouter(t)

	w := do(t, router, http.MethodGet, "/api/catalog/extras", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "spacewalk")

	w = do(t, router, http.MethodPut, "/api/workflow", map[string]any{
		"destination":        "moon",
		"departureDate":      "2026-12-01",
		"duration":           "7",
		"accommodation":      "standard",
		"firstName":          "Ada",
		"lastName":           "Lovelace",
		"email":              "ada@example.com",
		"phone":              "+1 (800) 555-1234",
		"numberOfPassengers": 2,
		"extras":             []string{"spacewalk"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	var state workflow.State
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, int64(32000), state.Price.Total)

	w = do(t, router, http.MethodPost, "/api/workflow/submit", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "/login?return=")

	w = do(t, router, http.MethodPost, "/api/auth/register", map[string]string{"email": "a@b.com", "password": "secret1", "name": "Ada"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, router, http.MethodPost, "/api/workflow/submit", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var submitted struct {
		Booking        domain.Booking `json:"booking"`
		TicketFileName string         `json:"ticketFileName"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &submitted))
	assert.Equal(t, int64(32000), submitted.Booking.TotalPrice)
	assert.Regexp(t, `^SV-[A-Z0-9]{8}$`, submitted.Booking.BookingReference)

	id := submitted.Booking.ID
	w = do(t, router, http.MethodGet, "/api/bookings/"+id+"/ticket", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), submitted.Booking.BookingReference)

	w = do(t, router, http.MethodPost, "/api/bookings/"+id+"/cancel", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, http.MethodGet, "/api/bookings/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats domain.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, domain.Stats{Total: 1, Cancelled: 1}, stats)

	w = do(t, router, http.MethodPost, "/api/auth/logout", nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, router, http.MethodPost, "/api/auth/login", map[string]string{"email": "other@b.com", "password": "pass"})
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, router, http.MethodDelete, "/api/bookings/"+id, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, router, http.MethodGet, "/api/bookings/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_Quote(t *testing.T) {
	router := newTestRouter(t)
	w := do(t, router, http.MethodPost, "/api/quote", map[string]any{
		"destination":        "moon",
		"accommodation":      "standard",
		"duration":           7,
		"numberOfPassengers": 2,
		"extras":             []string{"spacewalk"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"base":10000,"accommodation":3500,"extras":5000,"total":32000}`, w.Body.String())
}

func TestRouter_MeRequiresLogin(t *testing.T) {
	router := newTestRouter(t)
	w := do(t, router, http.MethodGet, "/api/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, router, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_DraftRestore(t *testing.T) {
	router := newTestRouter(t)

	w := do(t, router, http.MethodPost, "/api/workflow/draft/restore", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, router, http.MethodPut, "/api/workflow", map[string]any{"destination": "moon"})
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, router, http.MethodPost, "/api/workflow/draft", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, http.MethodPut, "/api/workflow", map[string]any{"destination": "mars"})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, http.MethodPost, "/api/workflow/draft/restore", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var state workflow.State
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, "moon", state.Form.Destination)
	assert.NotNil(t, state.DraftSavedAt)
}

func TestRouter_RegisterConfirmPassword(t *testing.T) {
	router := newTestRouter(t)

	w := do(t, router, http.MethodPost, "/api/auth/register", map[string]string{
		"email": "a@b.com", "password": "secret1", "name": "Ada", "confirmPassword": "secret2",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "confirmPassword: Values do not match")

	w = do(t, router, http.MethodPost, "/api/auth/register", map[string]string{
		"email": "a@b.com", "password": "secret1", "name": "Ada", "confirmPassword": "secret1",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
}
