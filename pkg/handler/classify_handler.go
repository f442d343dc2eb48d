package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/yumyai/protclass/logger"
	"github.com/yumyai/protclass/pkg/handler/request"
	"github.com/yumyai/protclass/pkg/model"
	"go.uber.org/zap"
)

const maxJSONBody = 1 << 20

func (app *AppContext) ClassifyHandler(w http.ResponseWriter, r *http.Request) {

	var req request.ClassifyRequest

	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(&req)
	if err != nil {
		logger.Debug("Invalid classify body", zap.Error(err))
		writeError(w, badRequest("invalid request body"))
		return
	}

	out, err := app.analyzeAndStore(r.Context(), model.Request{
		SequenceID:   req.SequenceID,
		Sequence:     req.Sequence,
		Accession:    req.Accession,
		UseEmbedding: req.WantsEmbedding(),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	logger.Info("Classified sequence",
		zap.String("result_id", out.Result.ID),
		zap.String("sequence_id", out.Result.SequenceID),
		zap.Int("length", out.Result.Length),
	)
	writeJSON(w, http.StatusOK, out.Result)
}

func (app *AppContext) UniProtHandler(w http.ResponseWriter, r *http.Request) {
	if app.UniProt == nil {
		writeError(w, errors.New("uniprot lookup is not configured"))
		return
	}

	entry, err := app.UniProt.Fetch(r.Context(), r.PathValue("accession"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// analyzeAndStore runs one analysis and persists it when a store is configured.
func (app *AppContext) analyzeAndStore(ctx context.Context, req model.Request) (*model.Analysis, error) {
	out, err := app.Analyzer.Analyze(ctx, req)
	if err != nil {
		return nil, err
	}
	if app.Store != nil {
		if err := app.Store.Save(ctx, out.Result, out.Vector); err != nil {
			return nil, fmt.Errorf("save result: %w", err)
		}
	}
	return out, nil
}
