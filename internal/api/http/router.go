package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/tunecrate/tunecrate/internal/api/service"
	"github.com/tunecrate/tunecrate/pkg/httpx"
	"github.com/tunecrate/tunecrate/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	db    Pinger
	cache Pinger

	AuthService         *service.AuthService
	UserService         *service.UserService
	VerificationService *service.VerificationService
	MusicService        *service.MusicService
	Gate                *service.TokenGate
}

func NewRouter(buildVersion string, db, cache Pinger, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		db:           db,
		cache:        cache,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUsers()
	r.registerMusic()
	r.registerSystem()
}

// ServeHTTP implements http.Handler and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	// POST /login - strict limit by IP + login field to slow brute force
	// without letting one attacker lock a victim out.
	login := &LoginHandler{AuthService: r.AuthService}
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(login,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	refresh := &RefreshHandler{AuthService: r.AuthService, Gate: r.Gate}
	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(refresh,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	logout := &LogoutHandler{AuthService: r.AuthService, Gate: r.Gate}
	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(logout,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// Admin operation, requires an authenticated actor.
	terminate := &TerminateSessionsHandler{UserService: r.UserService}
	r.Mux.Handle("POST /v1/auth/terminate-all-sessions/{user_id}",
		httpx.Chain(terminate,
			AuthnMiddleware(r.Gate),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	send := &SendVerificationHandler{VerificationService: r.VerificationService}
	r.Mux.Handle("POST /v1/auth/send-verification-code",
		httpx.Chain(send,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	verify := &VerifyEmailHandler{VerificationService: r.VerificationService}
	r.Mux.Handle("GET /v1/auth/verify-email",
		httpx.Chain(verify,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerUsers() {
	register := &RegisterHandler{UserService: r.UserService}
	r.Mux.Handle("POST /v1/users",
		httpx.Chain(register,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	h := &UserHandler{UserService: r.UserService}
	secured := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn,
			AuthnMiddleware(r.Gate),
			httpx.RateLimitByIP(httpx.LenientLimit),
		)
	}

	r.Mux.Handle("GET /v1/users/{id}", secured(h.HandleGet))
	r.Mux.Handle("PUT /v1/users/{id}", secured(h.HandlePut))
	r.Mux.Handle("DELETE /v1/users/{id}", secured(h.HandleDelete))
}

func (r *Router) registerMusic() {
	h := &MusicHandler{MusicService: r.MusicService}

	r.Mux.Handle("POST /v1/music/download",
		httpx.Chain(http.HandlerFunc(h.HandleStart),
			AuthnMiddleware(r.Gate),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// Polling endpoint; clients hit it every few seconds while pending.
	r.Mux.Handle("GET /v1/music/download",
		httpx.Chain(http.HandlerFunc(h.HandlePoll),
			AuthnMiddleware(r.Gate),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.db, r.cache))
}
