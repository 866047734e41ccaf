package events

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cosmic-sparc/backend/internal/auth"
)

type fakeTicketeerChecker struct {
	eventID uuid.UUID
	userID  uuid.UUID
	err     error
	calls   int
}

func (f *fakeTicketeerChecker) IsTicketeerForEvent(ctx context.Context, eventID, userID uuid.UUID) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	return eventID == f.eventID && userID == f.userID, nil
}

func newDoorRouter(checker TicketeerChecker, userID uuid.UUID, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	identity := func(c *gin.Context) {
		c.Set(auth.ContextUserID, userID)
		c.Set(auth.ContextUserRole, role)
	}
	r.GET("/events/:id/registrations", identity, RequireTicketeerAccess(checker), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func doorGet(t *testing.T, r *gin.Engine, eventID string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/events/"+eventID+"/registrations", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireTicketeerAccess(t *testing.T) {
	assigned, other := uuid.New(), uuid.New()
	userID := uuid.New()

	t.Run("admin bypasses assignment check", func(t *testing.T) {
		checker := &fakeTicketeerChecker{}
		r := newDoorRouter(checker, userID, "admin")
		if w := doorGet(t, r, other.String()); w.Code != http.StatusOK {
			t.Errorf("code = %d, want 200", w.Code)
		}
		if checker.calls != 0 {
			t.Errorf("assignment checked %d times for admin", checker.calls)
		}
	})

	t.Run("assigned ticketeer allowed", func(t *testing.T) {
		checker := &fakeTicketeerChecker{eventID: assigned, userID: userID}
		r := newDoorRouter(checker, userID, "ticketeer")
		if w := doorGet(t, r, assigned.String()); w.Code != http.StatusOK {
			t.Errorf("code = %d, want 200", w.Code)
		}
	})

	t.Run("ticketeer denied on unassigned event", func(t *testing.T) {
		checker := &fakeTicketeerChecker{eventID: assigned, userID: userID}
		r := newDoorRouter(checker, userID, "ticketeer")
		if w := doorGet(t, r, other.String()); w.Code != http.StatusForbidden {
			t.Errorf("code = %d, want 403", w.Code)
		}
	})

	t.Run("public role denied without lookup", func(t *testing.T) {
		checker := &fakeTicketeerChecker{eventID: assigned, userID: userID}
		r := newDoorRouter(checker, userID, "public")
		if w := doorGet(t, r, assigned.String()); w.Code != http.StatusForbidden {
			t.Errorf("code = %d, want 403", w.Code)
		}
		if checker.calls != 0 {
			t.Errorf("assignment checked %d times for public role", checker.calls)
		}
	})

	t.Run("lookup failure denies", func(t *testing.T) {
		checker := &fakeTicketeerChecker{err: errors.New("connection reset")}
		r := newDoorRouter(checker, userID, "ticketeer")
		if w := doorGet(t, r, assigned.String()); w.Code != http.StatusForbidden {
			t.Errorf("code = %d, want 403", w.Code)
		}
	})

	t.Run("bad event id", func(t *testing.T) {
		r := newDoorRouter(&fakeTicketeerChecker{}, userID, "admin")
		if w := doorGet(t, r, "not-a-uuid"); w.Code != http.StatusBadRequest {
			t.Errorf("code = %d, want 400", w.Code)
		}
	})
}
