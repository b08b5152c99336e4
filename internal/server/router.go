package server

import (
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
)

// ChiRouter is an HTTP router implementing the [Router] interface on top of chi.
//
// Router-wide middleware wraps the whole mux, so it also runs for unknown paths,
// disallowed methods and CORS preflight requests. Middleware added after the first
// request is served is ignored.
type ChiRouter struct {
	mux         chi.Router
	middlewares []Middleware

	once    sync.Once
	handler http.Handler
}

// NewChiRouter creates a new [ChiRouter] instance.
func NewChiRouter() *ChiRouter {
	return &ChiRouter{
		mux:         chi.NewRouter(),
		middlewares: []Middleware{},
	}
}

// Use adds [Middleware] to the [Router] instance's middleware stack, applied in the order it's added.
func (r *ChiRouter) Use(middleware ...Middleware) {
	r.middlewares = append(r.middlewares, middleware...)
}

// Handle registers a handler for the specified HTTP method and path pattern ("/media/{id}").
//
// mw wraps only this route.
func (r *ChiRouter) Handle(method, path string, handler http.Handler, mw ...Middleware) {
	r.mux.Method(method, path, Chain(handler, mw...))
}

// Handler registers a custom Handler implementation.
//
// All routes returned by [Handler.Routes] are registered with their own middleware.
func (r *ChiRouter) Handler(handler Handler) {
	for _, route := range handler.Routes() {
		r.Handle(route.Method, route.Path, route.Handler, route.Middleware...)
	}
}

// NotFound sets the handler used when no route matches the path.
func (r *ChiRouter) NotFound(handler http.Handler) {
	r.mux.NotFound(handler.ServeHTTP)
}

// MethodNotAllowed sets the handler used when the path matches but the method does not.
func (r *ChiRouter) MethodNotAllowed(handler http.Handler) {
	r.mux.MethodNotAllowed(handler.ServeHTTP)
}

// ServeHTTP implements [http.Handler] for the entire router.
func (r *ChiRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.once.Do(func() {
		r.handler = r.Apply(r.mux)
	})
	r.handler.ServeHTTP(w, req)
}

// Apply wraps a handler with all registered middleware.
//
// The first middleware added is the outermost.
func (r *ChiRouter) Apply(handler http.Handler) http.Handler {
	return Chain(handler, r.middlewares...)
}

// Param returns the value of a path parameter of the matched route.
func Param(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}
