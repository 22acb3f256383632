package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/logger"
	"storefront/internal/user"
	"storefront/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggingMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	defer logger.Replace(zap.New(core))()

	handler := logger.RequestIDMiddleware(LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set(logger.RequestIDHeader, "req-1")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, int64(http.StatusTeapot), fields["status"])
	assert.Equal(t, "/api/products", fields["path"])
}

func TestAuth(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	t.Run("Missing Token", func(t *testing.T) {
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, ok := utils.IdentityFrom(r.Context())
			assert.False(t, ok, "Context should not contain user ID")
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest("GET", "/api/products", nil)
		w := httptest.NewRecorder()

		AuthMiddleware(next).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Invalid Token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/products", nil)
		req.Header.Set("Authorization", "Bearer invalid-token")
		w := httptest.NewRecorder()

		AuthMiddleware(http.NotFoundHandler()).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Valid Token", func(t *testing.T) {
		tokenString, err := user.GenerateJWT("u-1", "USER", "a@b.c")
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/api/products", nil)
		req.Header.Set("Authorization", "Bearer "+tokenString)
		w := httptest.NewRecorder()

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := utils.IdentityFrom(r.Context())
			assert.True(t, ok)
			assert.Equal(t, "u-1", id.UserID)
			assert.Equal(t, "a@b.c", id.Email)
			w.WriteHeader(http.StatusOK)
		})

		AuthMiddleware(next).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Expired Token", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"user_id": "u-1",
			"exp":     time.Now().Add(-time.Hour).Unix(),
		})
		tokenString, err := token.SignedString([]byte("test-secret"))
		assert.NoError(t, err)

		req := httptest.NewRequest("GET", "/api/products", nil)
		req.Header.Set("Authorization", "Bearer "+tokenString)
		w := httptest.NewRecorder()

		AuthMiddleware(http.NotFoundHandler()).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Malformed Header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/products", nil)
		req.Header.Set("Authorization", "Basic user:pass")
		w := httptest.NewRecorder()

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, ok := utils.IdentityFrom(r.Context())
			assert.False(t, ok)
			w.WriteHeader(http.StatusOK)
		})

		AuthMiddleware(next).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestAccessToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		cookie string
		want   string
	}{
		{"Bearer header", "Bearer abc", "", "abc"},
		{"Lowercase scheme", "bearer abc", "", "abc"},
		{"Header wins over cookie", "Bearer abc", "from-cookie", "abc"},
		{"Cookie fallback", "", "from-cookie", "from-cookie"},
		{"Other scheme", "Basic user:pass", "from-cookie", ""},
		{"Scheme only", "Bearer", "", ""},
		{"Nothing", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: TokenCookie, Value: tt.cookie})
			}
			assert.Equal(t, tt.want, accessToken(req))
		})
	}
}

func TestRateLimiter(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("Strict tier on login", func(t *testing.T) {
		handler := NewRateLimiter().Middleware(ok)

		codes := map[int]int{}
		for i := 0; i < burstStrict+1; i++ {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
			req.RemoteAddr = "10.0.0.1:1234"
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			codes[w.Code]++
		}
		assert.Equal(t, burstStrict, codes[http.StatusOK])
		assert.Equal(t, 1, codes[http.StatusTooManyRequests])

		// another client has its own bucket
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = "10.0.0.2:1234"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Tiers", func(t *testing.T) {
		tests := []struct {
			method, path string
			header       map[string]string
			want         string
		}{
			{http.MethodGet, "/api/products", nil, "frontend"},
			{http.MethodPost, "/api/products", nil, "general"},
			{http.MethodPost, "/api/register/create", nil, "strict"},
			{http.MethodGet, "/metrics", nil, "general"},
		}
		for _, tt := range tests {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			_, _, tier := resolveRateTier(req)
			assert.Equal(t, tt.want, tier, tt.path)
		}

		t.Setenv("INTERNAL_SECRET_KEY", "s3cret")
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.Header.Set("X-Service-Auth", "s3cret")
		_, _, tier := resolveRateTier(req)
		assert.Equal(t, "internal", tier)
	})

	t.Run("Internal requests are marked", func(t *testing.T) {
		t.Setenv("INTERNAL_SECRET_KEY", "s3cret")

		var internal bool
		handler := NewRateLimiter().Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			internal = utils.IsInternalRequest(r.Context())
		}))

		req := httptest.NewRequest(http.MethodPost, "/api/products", nil)
		req.Header.Set("X-Service-Auth", "s3cret")
		handler.ServeHTTP(httptest.NewRecorder(), req)
		assert.True(t, internal)

		req = httptest.NewRequest(http.MethodPost, "/api/products", nil)
		handler.ServeHTTP(httptest.NewRecorder(), req)
		assert.False(t, internal)
	})

	t.Run("Identity", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "1.2.3.4:99"
		assert.Equal(t, "ip:1.2.3.4", identity(req))

		req.Header.Set("X-Device-ID", "dev")
		assert.Equal(t, "device:dev", identity(req))

		req = req.WithContext(utils.WithIdentity(context.Background(), utils.Identity{UserID: "u-7"}))
		assert.Equal(t, "user:u-7", identity(req))
	})

	t.Run("Cleanup evicts idle visitors", func(t *testing.T) {
		rl := NewRateLimiter()
		clock := time.Now()
		rl.now = func() time.Time { return clock }

		rl.getVisitor("ip:a:general", limitGeneral, burstGeneral)
		clock = clock.Add(visitorTTL + time.Second)
		rl.getVisitor("ip:b:general", limitGeneral, burstGeneral)
		rl.cleanup()

		assert.NotContains(t, rl.visitors, "ip:a:general")
		assert.Contains(t, rl.visitors, "ip:b:general")
	})
}
