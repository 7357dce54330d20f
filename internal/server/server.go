package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"stylematch/internal/styling"
)

// New constructs the HTTP server with routes and middleware.
func New(port, outputDir string, handler styling.Handler) *http.Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors)

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", handler.Health)
		r.Post("/analyze", handler.Analyze)
		r.Post("/style-match", handler.StyleMatch)
		r.Get("/generations", handler.ListGenerations)
		r.Get("/events", handler.StreamEvents)
	})

	// Serve persisted artifacts
	fileServer := http.StripPrefix("/generated/", http.FileServer(http.Dir(outputDir)))
	router.Handle("/generated/*", fileServer)

	return &http.Server{
		Addr:    ":" + port,
		Handler: router,
		// Generation responses and the SSE stream outlive any fixed write
		// deadline, so only reads are bounded here.
		ReadTimeout:       2 * time.Minute,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// cors mirrors the permissive policy of the original frontend deployment.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
