// Package kernel assembles the HTTP handler: global middleware, the
// Prometheus endpoint and the application routes.
package kernel

import (
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/qrmenu/app/routes"
	"github.com/shashiranjanraj/qrmenu/config"
	"github.com/shashiranjanraj/qrmenu/pkg/metrics"
	"github.com/shashiranjanraj/qrmenu/pkg/middleware"
	"github.com/shashiranjanraj/qrmenu/pkg/reqid"
	"github.com/shashiranjanraj/qrmenu/pkg/response"
	"github.com/shashiranjanraj/qrmenu/pkg/router"
	"github.com/shashiranjanraj/qrmenu/pkg/session"
	"github.com/shashiranjanraj/qrmenu/pkg/storage"
)

// Options carries everything the kernel needs. Zero values are filled from
// config by FromConfig.
type Options struct {
	DB       *gorm.DB
	Sessions session.Store
	// Disk may be nil: uploads then answer 503.
	Disk storage.Disk

	AppURL             string
	SessionOptions     session.Options
	CORSOrigins        []string
	RateLimitPerMinute int // 0 disables the limiter
	UploadMaxBytes     int64
}

// FromConfig returns Options populated from the environment.
func FromConfig(db *gorm.DB, sessions session.Store, disk storage.Disk) Options {
	return Options{
		DB:                 db,
		Sessions:           sessions,
		Disk:               disk,
		AppURL:             config.AppURL(),
		SessionOptions:     session.DefaultOptions(),
		CORSOrigins:        config.CORSAllowedOrigins(),
		RateLimitPerMinute: config.RateLimitPerMinute(),
		UploadMaxBytes:     config.UploadMaxBytes(),
	}
}

// HTTPKernel owns the router and the middleware that needs stopping.
type HTTPKernel struct {
	router  *router.Router
	limiter *middleware.Limiter
}

// NewHTTPKernel builds the handler.
//
// Global middleware stack (outermost → innermost):
//  1. Prometheus metrics: outermost for accurate total latency
//  2. Recovery: catches panics before they kill the goroutine
//  3. Request ID: inject unique ID before anything logs
//  4. Logger: logs request_id from context
//  5. CORS: answers preflights itself
//  6. Rate limiter: reject abusers early
//  7. Session: load/create the session cookie, only for admitted requests
func NewHTTPKernel(opts Options) (*HTTPKernel, error) {
	k := &HTTPKernel{router: router.New()}
	r := k.router

	if opts.Sessions == nil {
		opts.Sessions = session.NewMemoryStore()
	}

	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(opts.CORSOrigins))
	if opts.RateLimitPerMinute > 0 {
		k.limiter = middleware.NewLimiter(opts.RateLimitPerMinute, time.Minute)
		r.Use(k.limiter.Middleware)
	}
	r.Use(session.Middleware(opts.SessionOptions, opts.Sessions))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	// Prometheus /metrics endpoint, no auth.
	r.Handle(http.MethodGet, "/metrics", "metrics", metrics.Handler())
	r.Get("/health", "health", func(w http.ResponseWriter, _ *http.Request) {
		response.Success(w, map[string]string{"status": "ok"})
	})

	deps := routes.Dependencies{
		DB:             opts.DB,
		Disk:           opts.Disk,
		AppURL:         opts.AppURL,
		UploadMaxBytes: opts.UploadMaxBytes,
	}
	if err := routes.RegisterAPI(r, deps); err != nil {
		k.Close()
		return nil, err
	}
	routes.RegisterWeb(r, deps)

	return k, nil
}

func (k *HTTPKernel) Handler() http.Handler { return k.router.Handler() }

// Routes lists the registered routes for route:list.
func (k *HTTPKernel) Routes() []router.RouteInfo { return k.router.Routes() }

// Close stops background work owned by the middleware.
func (k *HTTPKernel) Close() {
	if k.limiter != nil {
		k.limiter.Stop()
	}
}
