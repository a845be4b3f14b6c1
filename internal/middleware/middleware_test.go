package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/spark-meetup/internal/config"
	"github.com/iliyamo/spark-meetup/internal/model"
	"github.com/iliyamo/spark-meetup/internal/service"
	"github.com/iliyamo/spark-meetup/internal/utils"
)

const secret = "middleware-secret"

type stubResolver struct {
	role model.Role
	err  error
}

func (s stubResolver) PrincipalFor(_ context.Context, id uint64) (service.Principal, error) {
	if s.err != nil {
		return service.Principal{}, s.err
	}
	return service.Principal{UserID: id, Role: s.role}, nil
}

func bearer(t *testing.T, id uint64, role string) string {
	t.Helper()
	tok, err := utils.NewAccessToken(secret, id, role, 5, time.Now())
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return "Bearer " + tok.Token
}

func whoami(c echo.Context) error {
	p, ok := service.PrincipalFrom(c.Request().Context())
	if !ok {
		return c.String(http.StatusOK, "anon")
	}
	return c.String(http.StatusOK, string(p.Role))
}

func serve(e *echo.Echo, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if auth != "" {
		req.Header.Set(echo.HeaderAuthorization, auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuthUsesResolvedRole(t *testing.T) {
	e := echo.New()
	// The token says "user" but the account has since been promoted.
	e.GET("/x", whoami, JWTAuth(secret, stubResolver{role: model.RoleAdmin}))

	rec := serve(e, bearer(t, 7, "user"))
	if rec.Code != http.StatusOK || rec.Body.String() != "admin" {
		t.Fatalf("got %d %q", rec.Code, rec.Body.String())
	}
}

func TestJWTAuthRejects(t *testing.T) {
	e := echo.New()
	e.GET("/x", whoami, JWTAuth(secret, stubResolver{role: model.RoleUser}))

	cases := map[string]string{
		"missing":   "",
		"no bearer": "Token abc",
		"garbage":   "Bearer not-a-jwt",
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			rec := serve(e, header)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), `"unauthorized"`) {
				t.Fatalf("body = %s", rec.Body.String())
			}
		})
	}

	other, err := utils.NewAccessToken("other-secret", 1, "user", 5, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if rec := serve(e, "Bearer "+other.Token); rec.Code != http.StatusUnauthorized {
		t.Fatalf("foreign signature status = %d", rec.Code)
	}
}

func TestJWTAuthDeletedAccount(t *testing.T) {
	e := echo.New()
	e.GET("/x", whoami, JWTAuth(secret, stubResolver{err: service.ErrUnauthorized}))
	if rec := serve(e, bearer(t, 3, "user")); rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestOptionalJWT(t *testing.T) {
	e := echo.New()
	e.GET("/x", whoami, OptionalJWT(secret, stubResolver{role: model.RoleUser}))

	if rec := serve(e, ""); rec.Code != http.StatusOK || rec.Body.String() != "anon" {
		t.Fatalf("anonymous: %d %q", rec.Code, rec.Body.String())
	}
	if rec := serve(e, bearer(t, 2, "user")); rec.Body.String() != "user" {
		t.Fatalf("authenticated: %q", rec.Body.String())
	}
	if rec := serve(e, "Bearer nope"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token status = %d", rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	g := e.Group("", JWTAuth(secret, nil))
	g.GET("/x", whoami, RequireRole(model.RoleAdmin))

	if rec := serve(e, bearer(t, 1, "user")); rec.Code != http.StatusForbidden {
		t.Fatalf("user status = %d, want 403", rec.Code)
	}
	if rec := serve(e, bearer(t, 1, "admin")); rec.Code != http.StatusOK {
		t.Fatalf("admin status = %d, want 200", rec.Code)
	}
}

func TestRequestLoggerAttachesRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	e := echo.New()
	e.GET("/x", func(c echo.Context) error {
		loggerFrom(c.Request().Context()).Info("inside")
		return c.NoContent(http.StatusNoContent)
	}, RequestLogger(base))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(echo.HeaderXRequestID, "req-42")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	out := buf.String()
	if strings.Count(out, `"request_id":"req-42"`) != 2 {
		t.Fatalf("expected request id on both lines:\n%s", out)
	}
	if !strings.Contains(out, `"status":204`) {
		t.Fatalf("missing status:\n%s", out)
	}
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.9")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/auth/login")

	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip_route"}
	if got, want := buildRateKey(cfg, c), "rl:ip:10.0.0.9:route:POST /v1/auth/login"; got != want {
		t.Fatalf("key = %q, want %q", got, want)
	}

	cfg.KeyStrategy = ""
	if got, want := buildRateKey(cfg, c), "rl:ip:10.0.0.9:user:anon:route:POST /v1/auth/login"; got != want {
		t.Fatalf("default key = %q, want %q", got, want)
	}
}

func TestCacheKeyIncludesQuery(t *testing.T) {
	e := echo.New()
	cfg := config.CacheConfig{Prefix: "cache"}
	key := func(target string) string {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder())
		c.SetPath("/v1/events")
		return cacheKeyFrom(cfg, c)
	}
	if key("/v1/events?page=1") == key("/v1/events?page=2") {
		t.Fatal("different queries share a key")
	}
	if key("/v1/events?page=1") != key("/v1/events?page=1") {
		t.Fatal("key is not stable")
	}
	if !strings.HasPrefix(key("/v1/events"), "cache:") {
		t.Fatal("prefix missing")
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"ok":true}`))
	if err != nil {
		t.Fatal(err)
	}
	status, gotHdr, body, ok := decodePayload(bs)
	if !ok || status != http.StatusOK || string(body) != `{"ok":true}` || gotHdr.Get("Content-Type") != "application/json" {
		t.Fatalf("decoded %v %d %v %q", ok, status, gotHdr, body)
	}
	if _, _, _, ok := decodePayload([]byte{0, 1}); ok {
		t.Fatal("short payload decoded")
	}
}

func TestCaptureWriterOverflow(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, limit: 4}
	_, _ = cw.Write([]byte("ab"))
	_, _ = cw.Write([]byte("cdef"))
	if !cw.overflow {
		t.Fatal("expected overflow")
	}
	if rec.Body.String() != "abcdef" {
		t.Fatalf("client body = %q", rec.Body.String())
	}
}
