package router

import (
	"net/http"

	"github.com/Killo023/assignment-sub000/internal/handlers"
	"github.com/Killo023/assignment-sub000/internal/middleware"
	"github.com/Killo023/assignment-sub000/internal/services"
	"github.com/Killo023/assignment-sub000/internal/utils"

	"github.com/gorilla/mux"
)

func NewRouter(subService services.SubmissionService, maxFileSize int64, logger *utils.Logger) http.Handler {
	r := mux.NewRouter()

	// Middlewares
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS())
	r.Use(middleware.Recovery(logger))

	subHandler := handlers.NewSubmissionHandler(subService, maxFileSize, logger)

	api := r.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	// Submission endpoints
	api.HandleFunc("/submissions", subHandler.Submit).Methods(http.MethodPost)
	api.HandleFunc("/submissions", subHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/submissions/{id}", subHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/submissions/{id}/file", subHandler.DownloadFile).Methods(http.MethodGet)

	return r
}
