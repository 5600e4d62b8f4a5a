package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/cbodonnell/codenames/pkg/api/handlers"
	"github.com/cbodonnell/codenames/pkg/game"
	"github.com/cbodonnell/codenames/pkg/log"
	"github.com/gorilla/mux"
)

type APIServer struct {
	server *http.Server
	tls    *TLSConfig
}

type TLSConfig struct {
	CertFile string
	KeyFile  string
}

type NewAPIServerOptions struct {
	Port        int
	TLS         *TLSConfig
	GameService *game.Service
	WSHandler   http.Handler
}

// NewAPIServer creates a new http.Server for handling API and WebSocket
// requests
func NewAPIServer(opts NewAPIServerOptions) *APIServer {
	router := mux.NewRouter()
	router.Use(corsMiddleware)

	router.HandleFunc("/health", handlers.HandleHealth()).Methods(http.MethodGet)

	games := router.PathPrefix("/api/games").Subrouter()
	games.HandleFunc("", handlers.HandleCreateGame(opts.GameService)).Methods(http.MethodPost, http.MethodOptions)
	games.HandleFunc("/{gameID}", handlers.HandleGetGame(opts.GameService)).Methods(http.MethodGet, http.MethodOptions)
	games.HandleFunc("/{gameID}/exists", handlers.HandleGameExists(opts.GameService)).Methods(http.MethodGet, http.MethodOptions)

	router.Handle("/ws/{gameID}", opts.WSHandler).Methods(http.MethodGet)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: router,
	}
	return &APIServer{
		server: server,
		tls:    opts.TLS,
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Start starts the APIServer
func (s *APIServer) Start() {
	var listenAndServe func() error
	if s.tls != nil {
		log.Info("API server listening on %s with TLS", s.server.Addr)
		listenAndServe = func() error {
			return s.server.ListenAndServeTLS(s.tls.CertFile, s.tls.KeyFile)
		}
	} else {
		log.Info("API server listening on %s", s.server.Addr)
		listenAndServe = s.server.ListenAndServe
	}
	if err := listenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			log.Info("API server closed")
			return
		}
		log.Error("API server error: %v", err)
	}
}

// Stop stops the APIServer
func (s *APIServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
