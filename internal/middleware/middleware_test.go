package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/iliyamo/festival-jury-scoring/internal/config"
	"github.com/iliyamo/festival-jury-scoring/internal/model"
	"github.com/iliyamo/festival-jury-scoring/internal/utils"
)

const testSecret = "test-secret"

func okHandler(c echo.Context) error { return c.String(http.StatusOK, "ok") }

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuth(t *testing.T) {
	e := echo.New()
	e.GET("/admin", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"uid": c.Get(ContextUserID), "role": c.Get(ContextRole)})
	}, JWTAuth(testSecret), RequireRole(model.RoleOrganizer))

	tok, err := utils.NewAccessToken(testSecret, 42, model.RoleOrganizer, time.Minute)
	require.NoError(t, err)
	other, err := utils.NewAccessToken(testSecret, 43, "GUEST", time.Minute)
	require.NoError(t, err)
	forged, err := utils.NewAccessToken("other-secret", 42, model.RoleOrganizer, time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + forged.Token, http.StatusUnauthorized},
		{"wrong role", "Bearer " + other.Token, http.StatusForbidden},
		{"organizer", "Bearer " + tok.Token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := serve(e, req)
			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusOK {
				assert.JSONEq(t, `{"uid":42,"role":"ORGANIZER"}`, rec.Body.String())
			}
		})
	}
}

func TestRequireRole_WithoutAuth(t *testing.T) {
	e := echo.New()
	e.GET("/x", okHandler, RequireRole(model.RoleOrganizer))
	rec := serve(e, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequestIdentity(t *testing.T) {
	e := echo.New()

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.Equal(t, "anon", requestIdentity(c))

	c.SetParamNames("id")
	c.SetParamValues("j7")
	assert.Equal(t, "jury:j7", requestIdentity(c))

	c.Set(ContextUserID, uint64(3))
	assert.Equal(t, "organizer:3", requestIdentity(c))
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/jury/j1/scores", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/api/v1/jury/:id/scores")
	c.SetParamNames("id")
	c.SetParamValues("j1")

	cfg := config.RateLimitConfig{Prefix: "jury:rl"}
	assert.Equal(t, "jury:rl:jury:j1:route:POST /api/v1/jury/:id/scores", buildRateKey(cfg, c))

	cfg.KeyStrategy = "ip"
	assert.Equal(t, "jury:rl:ip:10.0.0.1", buildRateKey(cfg, c))

	cfg.KeyStrategy = "identity"
	assert.Equal(t, "jury:rl:jury:j1", buildRateKey(cfg, c))
}

func TestRetryAfterSeconds(t *testing.T) {
	assert.Equal(t, 0, retryAfterSeconds(-5))
	assert.Equal(t, 1, retryAfterSeconds(1))
	assert.Equal(t, 6, retryAfterSeconds(6000))
}

func TestNewTokenBucket_DisabledPassesThrough(t *testing.T) {
	e := echo.New()
	e.POST("/x", okHandler, NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil, nil))
	rec := serve(e, httptest.NewRequest(http.MethodPost, "/x", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"a":1}`))
	require.NoError(t, err)

	status, gotHdr, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", gotHdr.Get("Content-Type"))
	assert.Equal(t, `{"a":1}`, string(body))

	_, _, _, ok = decodePayload(bs[:5])
	assert.False(t, ok)
	_, _, _, ok = decodePayload([]byte{0, 0, 0, 200, 0, 0, 1, 0})
	assert.False(t, ok)
}

func TestCaptureWriter_BoundsBuffer(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, limit: 4}
	_, _ = cw.Write([]byte("abc"))
	_, _ = cw.Write([]byte("defg"))

	assert.Equal(t, "abcd", cw.buf.String())
	assert.Equal(t, int64(7), cw.size)
	assert.Equal(t, "abcdefg", rec.Body.String())
}

func TestResponseCache_Disabled(t *testing.T) {
	rc := NewResponseCache(config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}}, nil, nil)
	e := echo.New()
	e.GET("/x", okHandler, rc.Middleware())

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
	assert.NoError(t, rc.Purge(context.Background()))

	var nilCache *ResponseCache
	assert.NoError(t, nilCache.Purge(context.Background()))
}

func TestCacheKey_VariesWithQuery(t *testing.T) {
	e := echo.New()
	a := e.NewContext(httptest.NewRequest(http.MethodGet, "/rankings/top?limit=3", nil), httptest.NewRecorder())
	b := e.NewContext(httptest.NewRequest(http.MethodGet, "/rankings/top?limit=5", nil), httptest.NewRecorder())

	ka, kb := cacheKey("jury:cache", a), cacheKey("jury:cache", b)
	assert.NotEqual(t, ka, kb)
	assert.True(t, strings.HasPrefix(ka, "jury:cache:"))
}

func TestRequestID(t *testing.T) {
	e := echo.New()
	e.GET("/x", okHandler, RequestID())

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Len(t, rec.Header().Get(headerRequestID), 36)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(headerRequestID, "abc")
	rec = serve(e, req)
	assert.Equal(t, "abc", rec.Header().Get(headerRequestID))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(headerRequestID, strings.Repeat("x", requestIDMaxLen+1))
	rec = serve(e, req)
	assert.Len(t, rec.Header().Get(headerRequestID), 36)
}

func TestRequestLogger_LevelFollowsStatus(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	e := echo.New()
	e.Use(RequestLogger(zap.New(core)))
	e.GET("/ok", okHandler)
	e.GET("/bad", func(c echo.Context) error { return echo.NewHTTPError(http.StatusBadRequest, "nope") })
	e.GET("/boom", func(c echo.Context) error { return errors.New("boom") })

	serve(e, httptest.NewRequest(http.MethodGet, "/ok", nil))
	serve(e, httptest.NewRequest(http.MethodGet, "/bad", nil))
	rec := serve(e, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Equal(t, "/boom", entries[2].ContextMap()["route"])
}
