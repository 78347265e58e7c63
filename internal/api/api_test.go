package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"alcyxob/studio-calendar/internal/domain"
	"alcyxob/studio-calendar/internal/repository"
	"alcyxob/studio-calendar/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	testSecret = "test-secret"
	testSite   = "studio-a"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubBooking records which operation a request reached. Methods not
// overridden panic through the nil embedded interface.
type stubBooking struct {
	service.BookingService
	calls []string
	actor domain.Actor
	err   error
}

func (s *stubBooking) CreateSingle(_ context.Context, actor domain.Actor, req service.BookingRequest) (*domain.Session, error) {
	s.calls = append(s.calls, "CreateSingle")
	s.actor = actor
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Session{ClientName: req.ClientName, Date: req.Date, Time: req.Time}, nil
}

func (s *stubBooking) CreateSeries(_ context.Context, actor domain.Actor, _ service.BookingRequest, rec service.RecurrenceRequest) (*service.SeriesResult, error) {
	s.calls = append(s.calls, "CreateSeries:"+rec.Frequency)
	if s.err != nil {
		return nil, s.err
	}
	return &service.SeriesResult{SeriesID: "series_x", Count: 3}, nil
}

func (s *stubBooking) EditSingle(context.Context, domain.Actor, primitive.ObjectID, service.SessionChanges) (*domain.Session, error) {
	s.calls = append(s.calls, "EditSingle")
	return &domain.Session{}, s.err
}

func (s *stubBooking) EditSeriesForward(context.Context, domain.Actor, primitive.ObjectID, service.SessionChanges) (*service.SeriesResult, error) {
	s.calls = append(s.calls, "EditSeriesForward")
	return &service.SeriesResult{}, s.err
}

func (s *stubBooking) DeleteSingle(context.Context, domain.Actor, primitive.ObjectID) error {
	s.calls = append(s.calls, "DeleteSingle")
	return s.err
}

func (s *stubBooking) DeleteSeriesForward(context.Context, domain.Actor, primitive.ObjectID) (int64, error) {
	s.calls = append(s.calls, "DeleteSeriesForward")
	return 3, s.err
}

func (s *stubBooking) Subscribe(context.Context, domain.Actor) (<-chan repository.SessionSnapshot, error) {
	ch := make(chan repository.SessionSnapshot, 2)
	ch <- repository.SessionSnapshot{Sessions: []domain.Session{{ClientName: "Dana", Date: "2026-01-06", Time: "09:00 AM"}}}
	ch <- repository.SessionSnapshot{Sessions: nil}
	close(ch)
	return ch, nil
}

func newTestRouter(booking service.BookingService) *gin.Engine {
	router := gin.New()
	SetupRoutes(router, testSecret, testSite, Services{Booking: booking}, nil)
	return router
}

func signToken(t *testing.T, claims service.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func claimsFor(role domain.Role) service.Claims {
	return service.Claims{
		UserID: primitive.NewObjectID().Hex(),
		Name:   "Morgan",
		Role:   role,
		SiteID: testSite,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func do(router *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	router := newTestRouter(&stubBooking{})

	otherSite := claimsFor(domain.RoleAdmin)
	otherSite.SiteID = "studio-b"
	expired := claimsFor(domain.RoleAdmin)
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	badRole := claimsFor("owner")

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Token abc", http.StatusUnauthorized},
		{"garbage token", "Bearer abc", http.StatusUnauthorized},
		{"other site", "Bearer " + signToken(t, otherSite), http.StatusUnauthorized},
		{"expired", "Bearer " + signToken(t, expired), http.StatusUnauthorized},
		{"unknown role", "Bearer " + signToken(t, badRole), http.StatusUnauthorized},
		{"valid", "Bearer " + signToken(t, claimsFor(domain.RoleAdmin)), http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodDelete, "/api/v1/sessions/"+primitive.NewObjectID().Hex(), nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			if w.Code != tc.want {
				t.Errorf("status = %d, want %d (%s)", w.Code, tc.want, w.Body.String())
			}
		})
	}
}

func TestRoleMiddleware(t *testing.T) {
	router := newTestRouter(&stubBooking{})
	client := signToken(t, claimsFor(domain.RoleClient))

	if w := do(router, http.MethodGet, "/api/v1/activity", client, ""); w.Code != http.StatusForbidden {
		t.Errorf("client activity status = %d, want 403", w.Code)
	}
	if w := do(router, http.MethodPost, "/api/v1/trainers", client, `{"name":"Alex"}`); w.Code != http.StatusForbidden {
		t.Errorf("client trainer create status = %d, want 403", w.Code)
	}
}

func TestCreateSession(t *testing.T) {
	body := `{"clientName":"Dana","trainerId":"%s","serviceName":"Yoga","date":"2026-01-06","time":"09:00 AM"%s}`
	trainer := primitive.NewObjectID().Hex()

	tests := []struct {
		name     string
		extra    string
		err      error
		wantCode int
		wantCall string
	}{
		{"single", "", nil, http.StatusCreated, "CreateSingle"},
		{"series", `,"recurrence":{"frequency":"weekly","days":[0]}`, nil, http.StatusCreated, "CreateSeries:weekly"},
		{"conflict", "", fmt.Errorf("%w: Alex already has a session", service.ErrConflict), http.StatusConflict, "CreateSingle"},
		{"validation", "", fmt.Errorf("%w: bad date", service.ErrValidation), http.StatusBadRequest, "CreateSingle"},
		{"store", "", fmt.Errorf("%w: create session: timeout", service.ErrStore), http.StatusInternalServerError, "CreateSingle"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			booking := &stubBooking{err: tc.err}
			router := newTestRouter(booking)
			claims := claimsFor(domain.RoleManager)
			w := do(router, http.MethodPost, "/api/v1/sessions", signToken(t, claims), fmt.Sprintf(body, trainer, tc.extra))

			if w.Code != tc.wantCode {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tc.wantCode, w.Body.String())
			}
			if len(booking.calls) != 1 || booking.calls[0] != tc.wantCall {
				t.Errorf("calls = %v, want [%s]", booking.calls, tc.wantCall)
			}
			if tc.wantCode == http.StatusInternalServerError && strings.Contains(w.Body.String(), "timeout") {
				t.Error("store error details leaked to the client")
			}
			if tc.name == "single" && booking.actor.UID.Hex() != claims.UserID {
				t.Errorf("actor uid = %s, want %s", booking.actor.UID.Hex(), claims.UserID)
			}
		})
	}
}

func TestSessionScope(t *testing.T) {
	id := primitive.NewObjectID().Hex()
	tests := []struct {
		method   string
		query    string
		wantCode int
		wantCall string
	}{
		{http.MethodDelete, "", http.StatusOK, "DeleteSingle"},
		{http.MethodDelete, "?scope=future", http.StatusOK, "DeleteSeriesForward"},
		{http.MethodPut, "?scope=single", http.StatusOK, "EditSingle"},
		{http.MethodPut, "?scope=future", http.StatusOK, "EditSeriesForward"},
		{http.MethodDelete, "?scope=all", http.StatusBadRequest, ""},
	}
	for _, tc := range tests {
		t.Run(tc.method+tc.query, func(t *testing.T) {
			booking := &stubBooking{}
			router := newTestRouter(booking)
			body := ""
			if tc.method == http.MethodPut {
				body = `{"time":"10:00 AM"}`
			}
			w := do(router, tc.method, "/api/v1/sessions/"+id+tc.query, signToken(t, claimsFor(domain.RoleAdmin)), body)
			if w.Code != tc.wantCode {
				t.Fatalf("status = %d, want %d", w.Code, tc.wantCode)
			}
			if tc.wantCall == "" {
				if len(booking.calls) != 0 {
					t.Errorf("calls = %v, want none", booking.calls)
				}
				return
			}
			if len(booking.calls) != 1 || booking.calls[0] != tc.wantCall {
				t.Errorf("calls = %v, want [%s]", booking.calls, tc.wantCall)
			}
		})
	}

	router := newTestRouter(&stubBooking{})
	if w := do(router, http.MethodDelete, "/api/v1/sessions/not-an-id", signToken(t, claimsFor(domain.RoleAdmin)), ""); w.Code != http.StatusBadRequest {
		t.Errorf("malformed id status = %d, want 400", w.Code)
	}
}

func TestStream(t *testing.T) {
	router := newTestRouter(&stubBooking{})
	w := do(router, http.MethodGet, "/api/v1/sessions/stream", signToken(t, claimsFor(domain.RoleClient)), "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Errorf("content type = %q", ct)
	}
	body := w.Body.String()
	if strings.Count(body, "event:sessions") != 2 {
		t.Errorf("want two session events, got:\n%s", body)
	}
	if !strings.Contains(body, `"clientName":"Dana"`) || !strings.Contains(body, "data:[]") {
		t.Errorf("unexpected stream body:\n%s", body)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{service.ErrValidation, http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", service.ErrConflict), http.StatusConflict},
		{service.ErrStore, http.StatusInternalServerError},
		{service.ErrNotFound, http.StatusNotFound},
		{service.ErrForbidden, http.StatusForbidden},
		{service.ErrUserAlreadyExists, http.StatusConflict},
		{service.ErrAuthenticationFailed, http.StatusUnauthorized},
	}
	for _, tc := range tests {
		if got := statusFor(tc.err); got != tc.want {
			t.Errorf("statusFor(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestMapUserToResponse(t *testing.T) {
	clientID := primitive.NewObjectID()
	resp := MapUserToResponse(&domain.User{ID: primitive.NewObjectID(), Name: "Dana", Role: domain.RoleClient, PasswordHash: "x", ClientID: &clientID})
	raw, _ := json.Marshal(resp)
	if strings.Contains(string(raw), "password") {
		t.Error("response exposes password hash")
	}
	if resp.ClientID == nil || *resp.ClientID != clientID.Hex() {
		t.Errorf("client id = %v", resp.ClientID)
	}
}
