package registrations

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cosmic-sparc/backend/internal/models"
)

func newRegisterRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(svc, nil, nil)
	r.POST("/api/registrations", h.Register)
	return r
}

func postRegistration(t *testing.T, r *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/registrations", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterEndpointSuccess(t *testing.T) {
	eventID := uuid.New()
	svc := NewService(&fakeStore{}, &fakeEventStore{event: liveEvent(eventID)}, nil, nil)
	r := newRegisterRouter(svc)

	body := `{"eventId":"` + eventID.String() + `","name":"Asha Rao","email":"asha@example.com","phone":"+91 98765 43210"}`
	w := postRegistration(t, r, body)
	if w.Code != http.StatusOK {
		t.Fatalf("code = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Success      bool                 `json:"success"`
		TicketID     string               `json:"ticketId"`
		Registration *models.Registration `json:"registration"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success {
		t.Error("success = false")
	}
	if resp.TicketID == "" {
		t.Error("ticketId missing")
	}
	if resp.Registration == nil || resp.Registration.TicketID != resp.TicketID {
		t.Errorf("registration mismatch: %+v", resp.Registration)
	}
}

func TestRegisterEndpointDuplicate(t *testing.T) {
	eventID := uuid.New()
	svc := NewService(&fakeStore{exists: true}, &fakeEventStore{event: liveEvent(eventID)}, nil, nil)
	r := newRegisterRouter(svc)

	body := `{"eventId":"` + eventID.String() + `","userId":"` + uuid.NewString() + `","name":"Asha Rao","email":"asha@example.com","phone":"+91 98765 43210"}`
	w := postRegistration(t, r, body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "already registered") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestRegisterEndpointValidationErrors(t *testing.T) {
	eventID := uuid.New()
	event := liveEvent(eventID)
	event.FormSchema = json.RawMessage(`[{"name":"company","label":"Company","type":"text","required":true}]`)
	svc := NewService(&fakeStore{}, &fakeEventStore{event: event}, nil, nil)
	r := newRegisterRouter(svc)

	body := `{"eventId":"` + eventID.String() + `","name":"Asha Rao","email":"asha@example.com","phone":"+91 98765 43210"}`
	w := postRegistration(t, r, body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400", w.Code)
	}

	var resp struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Error == "" {
		t.Error("error message missing")
	}
	if resp.Fields["company"] == "" {
		t.Errorf("fields = %v, want company error", resp.Fields)
	}
}

func TestRegisterEndpointStoreFailure(t *testing.T) {
	// Persistence failures report as 400 with the failure message; 500 is
	// reserved for errors the workflow does not classify.
	eventID := uuid.New()
	store := &fakeStore{createErr: errors.New("connection refused")}
	svc := NewService(store, &fakeEventStore{event: liveEvent(eventID)}, nil, nil)
	r := newRegisterRouter(svc)

	body := `{"eventId":"` + eventID.String() + `","name":"Asha Rao","email":"asha@example.com","phone":"+91 98765 43210"}`
	w := postRegistration(t, r, body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400, body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Registration failed") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestRegisterEndpointBadInput(t *testing.T) {
	svc := NewService(&fakeStore{}, &fakeEventStore{event: liveEvent(uuid.New())}, nil, nil)
	r := newRegisterRouter(svc)

	for name, body := range map[string]string{
		"not json":      `{`,
		"missing event": `{"name":"A"}`,
		"bad event id":  `{"eventId":"nope"}`,
		"bad user id":   `{"eventId":"` + uuid.NewString() + `","userId":"nope"}`,
	} {
		t.Run(name, func(t *testing.T) {
			if w := postRegistration(t, r, body); w.Code != http.StatusBadRequest {
				t.Errorf("code = %d, want 400", w.Code)
			}
		})
	}
}
