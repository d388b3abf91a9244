package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"youbet/internal/config"
	"youbet/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// recordingGateway captures outbound SMS bodies so tests can fish the
// verification code back out.
type recordingGateway struct {
	phones []string
	bodies []string
}

func (g *recordingGateway) SendText(_ context.Context, phone, body string) error {
	g.phones = append(g.phones, phone)
	g.bodies = append(g.bodies, body)
	return nil
}

func (g *recordingGateway) lastCode(t *testing.T) string {
	t.Helper()
	if len(g.bodies) == 0 {
		t.Fatal("no SMS sent")
	}
	body := g.bodies[len(g.bodies)-1]
	idx := strings.LastIndex(body, " ")
	if idx < 0 {
		t.Fatalf("unexpected SMS body: %q", body)
	}
	return body[idx+1:]
}

func newAuthTestServer(t *testing.T) (*Server, *recordingGateway) {
	t.Helper()
	db := setupHandlerTestDB(t)
	s := newHandlerTestServer(db)
	s.config = &config.Config{
		JWTSecret: "test-secret-key-used-only-in-tests",
		OTPTTL:    5 * time.Minute,
	}

	mr := miniredis.RunT(t)
	s.redis = redis.NewClient(&redis.Options{Addr: mr.Addr()})

	gw := &recordingGateway{}
	s.smsGateway = gw
	return s, gw
}

func authTestApp(s *Server) *fiber.App {
	app := fiber.New()
	app.Post("/api/auth/otp/send", s.SendOTP)
	app.Post("/api/auth/otp/verify", s.VerifyOTP)
	app.Post("/api/auth/refresh", s.Refresh)
	app.Post("/api/auth/logout", s.AuthRequired(), s.Logout)
	app.Get("/api/protected", s.AuthRequired(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"userID": currentUserID(c)})
	})
	return app
}

func newAuthedRequest(method, target, token string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestOTPSignInFlow(t *testing.T) {
	s, gw := newAuthTestServer(t)
	app := authTestApp(s)

	phone := "+15557770001"

	resp := doJSON(t, app, http.MethodPost, "/api/auth/otp/send", fiber.Map{"phone": phone})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	_ = resp.Body.Close()
	if len(gw.phones) != 1 || gw.phones[0] != phone {
		t.Fatalf("expected one SMS to %s, got %v", phone, gw.phones)
	}

	// First verification creates the account.
	code := gw.lastCode(t)
	resp = doJSON(t, app, http.MethodPost, "/api/auth/otp/verify",
		fiber.Map{"phone": phone, "code": code})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 for a new account, got %d", resp.StatusCode)
	}
	var signIn struct {
		AccessToken  string      `json:"accessToken"`
		RefreshToken string      `json:"refreshToken"`
		User         models.User `json:"user"`
	}
	decodeBody(t, resp, &signIn)
	if signIn.AccessToken == "" || signIn.RefreshToken == "" {
		t.Fatal("expected both tokens")
	}
	if signIn.User.Phone != phone || !signIn.User.PhoneVerified {
		t.Fatalf("unexpected user: %+v", signIn.User)
	}
	if signIn.User.Handle == "" {
		t.Fatal("expected a starter handle")
	}

	// Codes are single use.
	resp = doJSON(t, app, http.MethodPost, "/api/auth/otp/verify",
		fiber.Map{"phone": phone, "code": code})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 on code reuse, got %d", resp.StatusCode)
	}
	_ = resp.Body.Close()

	// A returning user gets 200, not 201.
	resp = doJSON(t, app, http.MethodPost, "/api/auth/otp/send", fiber.Map{"phone": phone})
	_ = resp.Body.Close()
	resp = doJSON(t, app, http.MethodPost, "/api/auth/otp/verify",
		fiber.Map{"phone": phone, "code": gw.lastCode(t)})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for an existing account, got %d", resp.StatusCode)
	}
	_ = resp.Body.Close()

	var count int64
	s.db.Model(&models.User{}).Where("phone = ?", phone).Count(&count)
	if count != 1 {
		t.Fatalf("expected one account, got %d", count)
	}
}

func TestVerifyOTPWrongCode(t *testing.T) {
	s, _ := newAuthTestServer(t)
	app := authTestApp(s)

	resp := doJSON(t, app, http.MethodPost, "/api/auth/otp/send", fiber.Map{"phone": "+15557770002"})
	_ = resp.Body.Close()

	resp = doJSON(t, app, http.MethodPost, "/api/auth/otp/verify",
		fiber.Map{"phone": "+15557770002", "code": "000000"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}

	resp = doJSON(t, app, http.MethodPost, "/api/auth/otp/verify",
		fiber.Map{"phone": "bad", "code": "123456"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func signInTestUser(t *testing.T, app *fiber.App, gw *recordingGateway, phone string) (string, string) {
	t.Helper()
	resp := doJSON(t, app, http.MethodPost, "/api/auth/otp/send", fiber.Map{"phone": phone})
	_ = resp.Body.Close()
	resp = doJSON(t, app, http.MethodPost, "/api/auth/otp/verify",
		fiber.Map{"phone": phone, "code": gw.lastCode(t)})
	var signIn struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	decodeBody(t, resp, &signIn)
	return signIn.AccessToken, signIn.RefreshToken
}

func TestRefreshRotation(t *testing.T) {
	s, gw := newAuthTestServer(t)
	app := authTestApp(s)

	access, refresh := signInTestUser(t, app, gw, "+15557770003")

	t.Run("Access token is not a refresh token", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/auth/refresh",
			fiber.Map{"refreshToken": access})
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", resp.StatusCode)
		}
	})

	var rotated struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	t.Run("Valid refresh rotates the pair", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/auth/refresh",
			fiber.Map{"refreshToken": refresh})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		decodeBody(t, resp, &rotated)
		if rotated.AccessToken == "" || rotated.RefreshToken == "" {
			t.Fatal("expected a fresh token pair")
		}
	})

	t.Run("Old refresh token is revoked", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/auth/refresh",
			fiber.Map{"refreshToken": refresh})
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401 after rotation, got %d", resp.StatusCode)
		}
	})
}

func TestAuthRequired(t *testing.T) {
	s, gw := newAuthTestServer(t)
	app := authTestApp(s)

	access, refresh := signInTestUser(t, app, gw, "+15557770004")

	t.Run("Missing token", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/protected", nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", resp.StatusCode)
		}
	})

	t.Run("Refresh token rejected as bearer", func(t *testing.T) {
		req := newAuthedRequest(http.MethodGet, "/api/protected", refresh)
		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", resp.StatusCode)
		}
	})

	t.Run("Access token accepted", func(t *testing.T) {
		req := newAuthedRequest(http.MethodGet, "/api/protected", access)
		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
	})

	t.Run("Logout blacklists the access token", func(t *testing.T) {
		req := newAuthedRequest(http.MethodPost, "/api/auth/logout", access)
		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}

		req = newAuthedRequest(http.MethodGet, "/api/protected", access)
		resp, err = app.Test(req, -1)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401 after logout, got %d", resp.StatusCode)
		}
	})
}
