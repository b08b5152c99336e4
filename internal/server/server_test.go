package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/midias/internal/shared"
)

func textHandler(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, body)
	})
}

type itemsHandler struct{}

func (itemsHandler) Routes() []Route {
	tag := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Route", "items")
			next.ServeHTTP(w, r)
		})
	}
	return []Route{
		{Method: http.MethodGet, Path: "/items", Handler: textHandler("list")},
		{
			Method: http.MethodGet,
			Path:   "/items/{id}",
			Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, "item "+Param(r, "id"))
			}),
			Middleware: []Middleware{tag},
		},
	}
}

func TestChiRouter(t *testing.T) {
	newRouter := func() *ChiRouter {
		r := NewChiRouter()
		r.Handler(itemsHandler{})
		r.NotFound(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "custom not found", http.StatusNotFound)
		}))
		r.MethodNotAllowed(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "custom method", http.StatusMethodNotAllowed)
		}))
		return r
	}

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantBody   string
	}{
		{name: "list", method: http.MethodGet, path: "/items", wantStatus: http.StatusOK, wantBody: "list"},
		{name: "path param", method: http.MethodGet, path: "/items/42", wantStatus: http.StatusOK, wantBody: "item 42"},
		{name: "unknown path", method: http.MethodGet, path: "/nope", wantStatus: http.StatusNotFound, wantBody: "custom not found"},
		{name: "wrong method", method: http.MethodDelete, path: "/items", wantStatus: http.StatusMethodNotAllowed, wantBody: "custom method"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newRouter().ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("expected body containing %q, got %q", tt.wantBody, rec.Body.String())
			}
		})
	}

	t.Run("route middleware only wraps its route", func(t *testing.T) {
		r := newRouter()

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/1", nil))
		if rec.Header().Get("X-Route") != "items" {
			t.Error("expected route middleware on /items/{id}")
		}

		rec = httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items", nil))
		if rec.Header().Get("X-Route") != "" {
			t.Error("route middleware leaked to /items")
		}
	})

	t.Run("router middleware wraps unknown paths", func(t *testing.T) {
		r := newRouter()
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				w.Header().Set("X-Global", "yes")
				next.ServeHTTP(w, req)
			})
		})

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
		if rec.Header().Get("X-Global") != "yes" {
			t.Error("router-wide middleware should run for unknown paths")
		}
	})
}

func TestChain(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(textHandler("ok"), mw("first"), mw("second"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if strings.Join(order, ",") != "first,second" {
		t.Errorf("expected first,second, got %v", order)
	}
}

func TestRequestIDAndLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := shared.NewLogger(&buf)

	var seenID string
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = RequestIDFrom(r.Context())
		LoggerFrom(r.Context()).Info("inside")
		w.WriteHeader(http.StatusTeapot)
	}), RequestID(logger), Logging())

	t.Run("generates an id", func(t *testing.T) {
		buf.Reset()
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

		if seenID == "" || rec.Header().Get(RequestIDHeader) != seenID {
			t.Errorf("expected the response header to carry the id %q, got %q", seenID, rec.Header().Get(RequestIDHeader))
		}
		out := buf.String()
		if !strings.Contains(out, "request_id="+seenID) {
			t.Errorf("request logger should carry the id, got %q", out)
		}
		if !strings.Contains(out, "status=418") {
			t.Errorf("request line should carry the status, got %q", out)
		}
	})

	t.Run("reuses an incoming uuid", func(t *testing.T) {
		incoming := "6f1c2a7e-3b4d-4e5f-9a0b-1c2d3e4f5a6b"
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set(RequestIDHeader, incoming)
		h.ServeHTTP(httptest.NewRecorder(), req)

		if seenID != incoming {
			t.Errorf("expected incoming id, got %q", seenID)
		}
	})

	t.Run("replaces an id that is not a uuid", func(t *testing.T) {
		for _, incoming := range []string{"abc-123", "admin-session-1", strings.Repeat("a", 36)} {
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			req.Header.Set(RequestIDHeader, incoming)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if seenID == incoming || seenID == "" {
				t.Errorf("expected a fresh id for %q, got %q", incoming, seenID)
			}
			if rec.Header().Get(RequestIDHeader) != seenID {
				t.Errorf("response header should carry the fresh id, got %q", rec.Header().Get(RequestIDHeader))
			}
		}
	})
}

func TestRecover(t *testing.T) {
	var got error
	h := Recover(func(w http.ResponseWriter, r *http.Request, err error) {
		got = err
		w.WriteHeader(http.StatusInternalServerError)
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	if got == nil || !strings.Contains(got.Error(), "boom") {
		t.Errorf("expected the panic value in the error, got %v", got)
	}
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"http://localhost:5173"})(textHandler("ok"))

	req := httptest.NewRequest(http.MethodOptions, "/media", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Errorf("expected allowed origin, got %q", rec.Header().Get("Access-Control-Allow-Origin"))
	}
	if rec.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Error("expected credentials to be allowed")
	}

	req = httptest.NewRequest(http.MethodGet, "/media", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("unknown origins should not be allowed")
	}
}

func TestMaxBody(t *testing.T) {
	var readErr error
	h := MaxBody(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789")))

	var maxErr *http.MaxBytesError
	if !errors.As(readErr, &maxErr) {
		t.Errorf("expected MaxBytesError, got %v", readErr)
	}
}

func TestThrottle(t *testing.T) {
	t.Run("per client buckets", func(t *testing.T) {
		th := NewThrottle(1, 2)
		now := time.Unix(1000, 0)
		th.now = func() time.Time { return now }

		if !th.Allow("a") || !th.Allow("a") {
			t.Fatal("burst should allow two requests")
		}
		if th.Allow("a") {
			t.Error("third request should be throttled")
		}
		if !th.Allow("b") {
			t.Error("other clients should have their own bucket")
		}

		now = now.Add(time.Second)
		if !th.Allow("a") {
			t.Error("bucket should refill after a second")
		}
	})

	t.Run("sweeps idle clients", func(t *testing.T) {
		th := NewThrottle(1, 1)
		now := time.Unix(1000, 0)
		th.now = func() time.Time { return now }

		th.Allow("a")
		now = now.Add(time.Hour)
		th.Allow("b")

		if _, ok := th.clients["a"]; ok {
			t.Error("idle client should be swept")
		}
	})

	t.Run("middleware", func(t *testing.T) {
		th := NewThrottle(0.5, 1)
		h := th.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))(textHandler("ok"))

		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = "10.0.0.1:5555"

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("first request should pass, got %d", rec.Code)
		}

		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusTooManyRequests {
			t.Errorf("second request should be limited, got %d", rec.Code)
		}
		if rec.Header().Get("Retry-After") != "2" {
			t.Errorf("expected Retry-After 2, got %q", rec.Header().Get("Retry-After"))
		}
	})

	t.Run("disabled", func(t *testing.T) {
		th := NewThrottle(0, 1)
		for range 10 {
			if !th.Allow("a") {
				t.Fatal("a zero rate should disable throttling")
			}
		}
	})
}

func TestServerLifecycle(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}

	srv := NewServer(ln.Addr().String(), textHandler("up"), time.Second, shared.NewLogger(io.Discard))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "up" {
		t.Errorf("expected body up, got %q", body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
