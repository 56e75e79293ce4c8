package routing

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"realty_leads_backend/internal/routing/engine"
	"realty_leads_backend/platform/validator"
)

func newTestRouter(t *testing.T, handlers map[string]engine.Handler) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := NewHandler(newTestService(t, handlers), nil, validator.New(), nil)

	r := gin.New()
	r.POST("/intake", h.HandleIntake)
	r.GET("/routes", h.HandleListRoutes)
	r.POST("/routes", h.HandleRegisterRoute)
	r.GET("/routes/:name", h.HandleGetRoute)
	return r
}

func intakeHandlers() map[string]engine.Handler {
	return noopHandlers(
		engine.ActionDatabase,
		engine.ActionEmailNotification,
		engine.ActionAgentNotification,
		engine.ActionFollowupBoss,
		engine.ActionCalendlyBooking,
		engine.ActionTeamAssignment,
		engine.ActionCreateTicket,
	)
}

func TestHandleIntakeFormEncoded(t *testing.T) {
	r := newTestRouter(t, intakeHandlers())

	form := url.Values{}
	form.Set("your-name", "maria cruz")
	form.Set("your-email", "maria@example.com")
	form.Set("listing_id", "MLS-42")

	req := httptest.NewRequest(http.MethodPost, "/intake", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", "https://example.com/listings/42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}

	var result RouteResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if result.Route != engine.RoutePropertyInquiry {
		t.Errorf("route = %q, want %q", result.Route, engine.RoutePropertyInquiry)
	}
	if result.SubmissionID == "" {
		t.Error("submissionId is empty")
	}
}

func TestHandleIntakeJSON(t *testing.T) {
	r := newTestRouter(t, intakeHandlers())

	body := `{"your-name":"Maria Cruz","your-email":"maria@example.com","budget":450000}`
	req := httptest.NewRequest(http.MethodPost, "/intake", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}
}

func TestHandleIntakeRejectsEmptyBody(t *testing.T) {
	r := newTestRouter(t, intakeHandlers())

	req := httptest.NewRequest(http.MethodPost, "/intake", bytes.NewReader(nil))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestHandleIntakeValidationFailure(t *testing.T) {
	r := newTestRouter(t, intakeHandlers())

	form := url.Values{}
	form.Set("your-name", "Maria Cruz")

	req := httptest.NewRequest(http.MethodPost, "/intake", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", w.Code, w.Body.String())
	}
}

func TestHandleRegisterRoute(t *testing.T) {
	r := newTestRouter(t, intakeHandlers())

	body := `{"name":"open_house_rsvp","actions":["database","email_notification"],"priority":2}`
	req := httptest.NewRequest(http.MethodPost, "/routes", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}

	getReq := httptest.NewRequest(http.MethodGet, "/routes/open_house_rsvp", nil)
	getW := httptest.NewRecorder()
	r.ServeHTTP(getW, getReq)
	if getW.Code != http.StatusOK {
		t.Fatalf("get status = %d, want 200", getW.Code)
	}
}

func TestHandleRegisterRouteValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"actions":["database"]}`},
		{"no actions", `{"name":"foo","actions":[]}`},
		{"priority out of range", `{"name":"foo","actions":["database"],"priority":99}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(t, intakeHandlers())
			req := httptest.NewRequest(http.MethodPost, "/routes", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestHandleGetRouteNotFound(t *testing.T) {
	r := newTestRouter(t, intakeHandlers())

	req := httptest.NewRequest(http.MethodGet, "/routes/nope", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestSourceURLFallback(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/intake", nil)
	req.Header.Set("Origin", "https://example.com")
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = req

	if got := sourceURL(c, map[string]string{"source_url": "https://example.com/page"}); got != "https://example.com/page" {
		t.Errorf("field takes precedence, got %q", got)
	}
	if got := sourceURL(c, map[string]string{}); got != "https://example.com" {
		t.Errorf("origin fallback, got %q", got)
	}
}
