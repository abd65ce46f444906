package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"pgregory.net/rapid"
)

func corsEngine(origins []string) *gin.Engine {
	r := gin.New()
	r.Use(corsMiddleware(origins))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

// TestCORSAllowListProperty checks that for any allow list, a cross-origin
// request is answered with Access-Control-Allow-Origin if and only if its
// origin is on the list.
func TestCORSAllowListProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 5).Draw(t, "n")
		origins := make([]string, n)
		for i := range origins {
			origins[i] = fmt.Sprintf("https://club%d.example", rapid.IntRange(0, 20).Draw(t, "club"))
		}
		origin := fmt.Sprintf("https://club%d.example", rapid.IntRange(0, 20).Draw(t, "origin"))

		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Origin", origin)
		w := httptest.NewRecorder()
		corsEngine(origins).ServeHTTP(w, req)

		allowed := w.Header().Get("Access-Control-Allow-Origin") == origin
		if want := slices.Contains(origins, origin); allowed != want {
			t.Fatalf("origin %s with allow list %v: expected allowed=%v, got %v", origin, origins, want, allowed)
		}
	})
}

// TestCORSWildcardAllowsAllProperty checks that an empty or wildcard list
// accepts every origin.
func TestCORSWildcardAllowsAllProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		origins := rapid.SampledFrom([][]string{nil, {"*"}, {"https://a.example", "*"}}).Draw(t, "origins")
		origin := fmt.Sprintf("https://team%d.example", rapid.IntRange(0, 1000).Draw(t, "origin"))

		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Origin", origin)
		w := httptest.NewRecorder()
		corsEngine(origins).ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got == "" {
			t.Fatalf("origin %s rejected with allow list %v", origin, origins)
		}
	})
}

func TestTimeoutMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(TimeoutMiddleware(50 * time.Millisecond))

	var deadline time.Time
	var hasDeadline bool
	r.GET("/slow", func(c *gin.Context) {
		deadline, hasDeadline = c.Request.Context().Deadline()
		select {
		case <-c.Request.Context().Done():
			c.Status(http.StatusGatewayTimeout)
		case <-time.After(time.Second):
			c.Status(http.StatusOK)
		}
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/slow", nil).WithContext(context.Background()))

	if !hasDeadline || deadline.IsZero() {
		t.Fatal("expected request context to carry a deadline")
	}
	if w.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected 504, got %d", w.Code)
	}
}
