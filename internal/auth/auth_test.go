package auth

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"notion-forms/internal/engine"
	"notion-forms/internal/metadata"
)

const testSecret = "test-secret"

func TestAccessToken_RoundTrip(t *testing.T) {
	tok, err := GenerateAccessToken("user-1", "ws-1", []string{"admin"}, testSecret, time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := ParseAccessToken(tok, testSecret)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "user-1" || claims.Workspace != "ws-1" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if len(claims.Roles) != 1 || claims.Roles[0] != "admin" {
		t.Fatalf("expected [admin], got %v", claims.Roles)
	}
}

func TestAccessToken_WrongSecret(t *testing.T) {
	tok, _ := GenerateAccessToken("user-1", "", nil, testSecret, time.Minute)
	if _, err := ParseAccessToken(tok, "other"); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}

func TestFormSession_RoundTrip(t *testing.T) {
	s := NewSessions(testSecret, time.Hour)
	tok, err := s.IssueFormSession("db-1", "user-1", "ws-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	sess, err := s.ParseFormSession(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if sess.DatabaseID != "db-1" || sess.UserID != "user-1" || sess.Workspace != "ws-1" {
		t.Fatalf("unexpected session: %+v", sess)
	}
	if sess.ID == "" {
		t.Fatal("expected session id")
	}
}

func TestFormSession_Expired(t *testing.T) {
	s := NewSessions(testSecret, -time.Minute)
	tok, err := s.IssueFormSession("db-1", "user-1", "")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := s.ParseFormSession(tok); err == nil {
		t.Fatal("expected expired session to be rejected")
	}
}

func TestFormSession_RequiresDatabase(t *testing.T) {
	s := NewSessions(testSecret, time.Hour)
	if _, err := s.IssueFormSession("", "user-1", ""); !errors.Is(err, ErrSessionDatabaseMissing) {
		t.Fatalf("expected ErrSessionDatabaseMissing, got %v", err)
	}
}

func TestFormSession_RejectsAccessToken(t *testing.T) {
	s := NewSessions(testSecret, time.Hour)
	tok, _ := GenerateAccessToken("user-1", "", nil, testSecret, time.Minute)
	if _, err := s.ParseFormSession(tok); err == nil {
		t.Fatal("expected access token to be rejected as a form session")
	}
}

func newAuthApp() *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var appErr *engine.AppError
			if errors.As(err, &appErr) {
				return c.Status(appErr.Status).JSON(engine.ErrorResponse{Error: appErr})
			}
			return c.SendStatus(500)
		},
	})
	app.Use(AuthMiddleware(testSecret))
	app.Get("/me", func(c *fiber.Ctx) error {
		return c.JSON(c.Locals("user"))
	})
	app.Get("/admin", RequireAdmin(), func(c *fiber.Ctx) error {
		return c.SendStatus(200)
	})
	return app
}

func TestAuthMiddleware(t *testing.T) {
	app := newAuthApp()

	req := httptest.NewRequest("GET", "/me", nil)
	resp, _ := app.Test(req)
	if resp.StatusCode != 401 {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}

	tok, _ := GenerateAccessToken("user-1", "ws-1", []string{"user"}, testSecret, time.Minute)
	req = httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, _ = app.Test(req)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	req = httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, _ = app.Test(req)
	if resp.StatusCode != 403 {
		t.Fatalf("expected 403 for non-admin, got %d", resp.StatusCode)
	}

	adminTok, _ := GenerateAccessToken("root", "", []string{"admin"}, testSecret, time.Minute)
	req = httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+adminTok)
	resp, _ = app.Test(req)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200 for admin, got %d", resp.StatusCode)
	}
}

func TestUserContext_IsAdmin(t *testing.T) {
	u := &metadata.UserContext{ID: "u", Roles: []string{"viewer", "admin"}}
	if !u.IsAdmin() {
		t.Fatal("expected admin")
	}
}

func TestAccessToken_RejectsFormSession(t *testing.T) {
	s := NewSessions(testSecret, time.Hour)
	tok, _ := s.IssueFormSession("db-1", "user-1", "")
	if _, err := ParseAccessToken(tok, testSecret); err == nil {
		t.Fatal("expected form session to be rejected as an access token")
	}
}
