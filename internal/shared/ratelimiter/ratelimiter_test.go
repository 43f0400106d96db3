package ratelimiter

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T, limit int, window time.Duration) (*gin.Engine, *miniredis.Miniredis) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	r := gin.New()
	r.POST("/login", Throttle(client, zerolog.Nop(), "login", limit, window), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r, mr
}

func hit(r *gin.Engine) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	r.ServeHTTP(w, req)
	return w
}

func TestThrottle(t *testing.T) {
	t.Run("allows requests under the limit", func(t *testing.T) {
		r, _ := setupRouter(t, 3, time.Minute)

		for i := 0; i < 3; i++ {
			w := hit(r)
			assert.Equal(t, http.StatusOK, w.Code, "request %d should pass", i+1)
		}
	})

	t.Run("rejects requests over the limit", func(t *testing.T) {
		r, _ := setupRouter(t, 2, time.Minute)

		hit(r)
		hit(r)
		w := hit(r)

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.NotEmpty(t, w.Header().Get("Retry-After"))
		assert.Contains(t, w.Body.String(), "too many requests")
	})

	t.Run("window expiry resets the counter", func(t *testing.T) {
		r, mr := setupRouter(t, 1, time.Minute)

		hit(r)
		w := hit(r)
		require.Equal(t, http.StatusTooManyRequests, w.Code)

		mr.FastForward(time.Minute + time.Second)

		w = hit(r)
		assert.Equal(t, http.StatusOK, w.Code, "new window should start fresh")
	})

	t.Run("fails open when redis is down", func(t *testing.T) {
		r, mr := setupRouter(t, 1, time.Minute)
		mr.Close()

		for i := 0; i < 3; i++ {
			w := hit(r)
			assert.Equal(t, http.StatusOK, w.Code, "limiter outage must not block requests")
		}
	})

	t.Run("incr error fails open", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		client, mock := redismock.NewClientMock()
		// httptest requests originate from 192.0.2.1
		mock.ExpectIncr("throttle:login:192.0.2.1").SetErr(errors.New("connection refused"))

		r := gin.New()
		r.POST("/login", Throttle(client, zerolog.Nop(), "login", 1, time.Minute), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		w := hit(r)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
