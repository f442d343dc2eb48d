package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/yumyai/protclass/logger"
	"github.com/yumyai/protclass/pkg/model"
	"github.com/yumyai/protclass/pkg/sequence"
	"go.uber.org/zap"
)

const maxFastaBody = 16 << 20

// SubmitBatchHandler accepts a FASTA body and classifies its records in the background.
func (app *AppContext) SubmitBatchHandler(w http.ResponseWriter, r *http.Request) {
	useEmbedding := true
	if raw := r.URL.Query().Get("use_embedding"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, badRequest("use_embedding need to be bool-like string"))
			return
		}
		useEmbedding = v
	}

	records, err := sequence.ParseFasta(http.MaxBytesReader(w, r.Body, maxFastaBody))
	if err != nil {
		writeError(w, badRequest("invalid FASTA body: "+err.Error()))
		return
	}
	if len(records) == 0 {
		writeError(w, badRequest("FASTA body contains no sequences"))
		return
	}

	job := app.BatchJobs.NewJob(len(records))
	logger.Info("Batch job queued", zap.String("job_id", job.ID), zap.Int("records", len(records)))

	// Outlives the request.
	go app.BatchJobs.Run(context.Background(), job.ID, records, app.storeResult, useEmbedding)

	writeJSON(w, http.StatusAccepted, job)
}

func (app *AppContext) GetBatchJobHandler(w http.ResponseWriter, r *http.Request) {
	job, ok := app.BatchJobs.GetJob(r.PathValue("job_id"))
	if !ok {
		writeError(w, errJobNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (app *AppContext) storeResult(ctx context.Context, req model.Request) (string, error) {
	out, err := app.analyzeAndStore(ctx, req)
	if err != nil {
		return "", err
	}
	return out.Result.ID, nil
}
