package handler

import "net/http"

func NewRouter(app *AppContext) *http.ServeMux {
	mux := http.NewServeMux()

	// Error route
	mux.HandleFunc("GET /favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not Found", http.StatusNotFound)
	})

	// Pages
	mux.HandleFunc("GET /result/{id}", app.ResultPage)

	// API routes
	mux.HandleFunc("GET /api/v1/health", app.HealthCheck)
	mux.HandleFunc("POST /api/v1/classify", app.ClassifyHandler)
	mux.HandleFunc("GET /api/v1/uniprot/{accession}", app.UniProtHandler)

	mux.HandleFunc("GET /api/v1/results", app.ListResultsHandler)
	mux.HandleFunc("GET /api/v1/results/{id}", app.GetResultHandler)
	mux.HandleFunc("GET /api/v1/results/{id}/download", app.DownloadResultHandler)
	mux.HandleFunc("GET /api/v1/results/{id}/similar", app.SimilarResultsHandler)
	mux.HandleFunc("GET /api/v1/results/{id}/profile.svg", app.ProfileHandler)

	mux.HandleFunc("POST /api/v1/batch", app.SubmitBatchHandler)
	mux.HandleFunc("GET /api/v1/batch/{job_id}", app.GetBatchJobHandler)

	return mux
}
