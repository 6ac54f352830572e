package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/kleanly/kleanly-api/internal/config"
	"github.com/kleanly/kleanly-api/internal/utils"
)

func newCtx(method, target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return body["error"]
}

func TestRateKeyStrategies(t *testing.T) {
	c, _ := newCtx(http.MethodGet, "/orders/o1")
	c.SetPath("/orders/:order_id")
	c.Set(usernameKey, "alice")

	cases := map[string]string{
		"":           "rl:ip:192.0.2.1:user:alice:route:GET /orders/:order_id",
		"ip":         "rl:ip:192.0.2.1",
		"user_route": "rl:user:alice:route:GET /orders/:order_id",
		"bogus":      "rl:ip:192.0.2.1:user:alice:route:GET /orders/:order_id",
	}
	for strategy, want := range cases {
		got := rateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: strategy}, c)
		if got != want {
			t.Errorf("strategy %q: key = %q, want %q", strategy, got, want)
		}
	}

	anon, _ := newCtx(http.MethodGet, "/")
	if got := rateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "user"}, anon); got != "rl:user:anon" {
		t.Errorf("anonymous key = %q", got)
	}
}

func TestTokenBucketFailsOpen(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()
	cfg := config.RateLimitConfig{Enabled: true, Capacity: 1, RefillTokens: 1, RefillInterval: time.Second, TTL: time.Minute, Prefix: "rl"}

	for _, client := range []*redis.Client{nil, rdb} {
		c, rec := newCtx(http.MethodGet, "/")
		h := NewTokenBucket(cfg, client)(func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
		if err := h(c); err != nil {
			t.Fatal(err)
		}
		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d", rec.Code)
		}
	}
}

func TestParseBucket(t *testing.T) {
	res, ok := parseBucket([]interface{}{int64(0), int64(0), int64(1500)})
	if !ok || res.allowed || res.retry != 1500*time.Millisecond {
		t.Fatalf("res = %+v, %v", res, ok)
	}
	if _, ok := parseBucket("nope"); ok {
		t.Fatal("expected parse failure")
	}
}

func TestHTTPErrorHandler(t *testing.T) {
	cases := []struct {
		err  error
		code int
		msg  string
	}{
		{echo.ErrNotFound, http.StatusNotFound, "Not found"},
		{echo.NewHTTPError(http.StatusUnprocessableEntity, "status: failed required"), http.StatusUnprocessableEntity, "status: failed required"},
		{echo.NewHTTPError(http.StatusInternalServerError, "db exploded"), http.StatusInternalServerError, "Internal server error"},
		{errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tc := range cases {
		c, rec := newCtx(http.MethodGet, "/")
		HTTPErrorHandler(tc.err, c)
		if rec.Code != tc.code || errorBody(t, rec) != tc.msg {
			t.Errorf("%v: got %d %q", tc.err, rec.Code, rec.Body.String())
		}
	}
}

func TestJWTAuth(t *testing.T) {
	tokens := utils.NewTokenIssuer("secret", time.Hour)
	tok, err := tokens.Issue("alice")
	if err != nil {
		t.Fatal(err)
	}
	ok := func(c echo.Context) error { return c.String(http.StatusOK, Username(c)) }

	cases := []struct {
		header string
		code   int
		msg    string
	}{
		{"", http.StatusUnauthorized, "Not authenticated"},
		{"Basic abc", http.StatusUnauthorized, "Not authenticated"},
		{"Bearer nonsense", http.StatusUnauthorized, "Could not validate credentials"},
		{"bearer " + tok.Token, http.StatusOK, ""},
	}
	for _, tc := range cases {
		c, rec := newCtx(http.MethodGet, "/me")
		if tc.header != "" {
			c.Request().Header.Set(echo.HeaderAuthorization, tc.header)
		}
		if err := JWTAuth(tokens)(ok)(c); err != nil {
			t.Fatal(err)
		}
		if rec.Code != tc.code {
			t.Fatalf("%q: status = %d", tc.header, rec.Code)
		}
		if tc.code == http.StatusOK {
			if rec.Body.String() != "alice" {
				t.Fatalf("username = %q", rec.Body.String())
			}
		} else if got := errorBody(t, rec); got != tc.msg {
			t.Fatalf("%q: error = %q", tc.header, got)
		}
	}
}

func TestOptionalJWTAuth(t *testing.T) {
	tokens := utils.NewTokenIssuer("secret", time.Hour)
	tok, _ := tokens.Issue("alice")
	ok := func(c echo.Context) error { return c.String(http.StatusOK, Username(c)) }

	c, rec := newCtx(http.MethodGet, "/ws")
	if err := OptionalJWTAuth(tokens, false)(ok)(c); err != nil || rec.Code != http.StatusOK {
		t.Fatalf("pass-through: %v %d", err, rec.Code)
	}

	c, rec = newCtx(http.MethodGet, "/ws")
	_ = OptionalJWTAuth(tokens, true)(ok)(c)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("required without token: %d", rec.Code)
	}

	c, rec = newCtx(http.MethodGet, "/ws?token="+tok.Token)
	_ = OptionalJWTAuth(tokens, true)(ok)(c)
	if rec.Code != http.StatusOK || rec.Body.String() != "alice" {
		t.Fatalf("query token: %d %q", rec.Code, rec.Body.String())
	}
}

type sample struct {
	Name string   `json:"name" validate:"required"`
	Lat  *float64 `json:"lat" validate:"required"`
}

func TestValidatorReportsJSONNames(t *testing.T) {
	err := NewValidator().Validate(&sample{})
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("err = %v", err)
	}
	if he.Message != "name: failed required; lat: failed required" {
		t.Fatalf("message = %v", he.Message)
	}
	zero := 0.0
	if err := NewValidator().Validate(&sample{Name: "x", Lat: &zero}); err != nil {
		t.Fatalf("valid sample: %v", err)
	}
}
