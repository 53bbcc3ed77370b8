package httpx

import (
	"net/http"

	"log/slog"

	"github.com/arl/statsviz"

	"kickabout/internal/app"
	"kickabout/internal/relay"
	"kickabout/internal/room"
	"kickabout/internal/ws"
	"kickabout/pkg/auth"
	"kickabout/pkg/metrics"
)

// NewRouter wires up all HTTP routes, middleware, and handlers
func NewRouter(cfg app.Config, log *slog.Logger, reg *room.Registry, bus relay.Bus, wsh *ws.Handler) http.Handler {
	mw := NewMiddleware(cfg)

	sessions := &SessionAPI{JWT: auth.New(cfg.JWTSecret)}
	rooms := &RoomsAPI{Rooms: reg, Bus: bus, Addr: cfg.AdvertiseAddr}

	mux := http.NewServeMux()

	// Health / readiness / metrics
	mux.Handle("/healthz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(200) }))
	mux.Handle("/readyz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(200) }))
	mux.Handle("/metrics", metrics.Handler())
	if cfg.Env != "prod" {
		if err := statsviz.Register(mux); err != nil {
			log.Warn("statsviz.register", "err", err)
		}
	}

	// WebSocket endpoint
	mux.Handle("/ws", http.HandlerFunc(wsh.ServeWS))

	// Guest sessions
	mux.Handle("/api/session", http.HandlerFunc(sessions.Create))

	// Rooms: creation needs a session, browsing does not
	createRoom := mw.Auth(http.HandlerFunc(rooms.Create))
	mux.Handle("/api/rooms", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			createRoom.ServeHTTP(w, r)
			return
		}
		if r.Method == http.MethodGet {
			rooms.List(w, r)
			return
		}
		http.NotFound(w, r)
	}))
	mux.Handle("/api/rooms/{code}", http.HandlerFunc(rooms.Get))

	return mw.Wrap(mux)
}
