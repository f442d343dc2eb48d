package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/yumyai/protclass/logger"
	"github.com/yumyai/protclass/pkg/model"
	"github.com/yumyai/protclass/pkg/render"
	"go.uber.org/zap"
)

const (
	defaultListLimit = 20
	maxListLimit     = 200
	defaultSimilar   = 5
	maxSimilar       = 50
)

type SimilarPayload struct {
	Query   string          `json:"query"`
	Results []model.Summary `json:"results"`
}

// intParam parses an optional positive query parameter, clamping to max.
func intParam(r *http.Request, name string, fallback, max int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, badRequest(fmt.Sprintf("%s must be a positive integer", name))
	}
	if n > max {
		n = max
	}
	return n, nil
}

func (app *AppContext) ListResultsHandler(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", defaultListLimit, maxListLimit)
	if err != nil {
		writeError(w, err)
		return
	}

	summaries, err := app.Store.List(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (app *AppContext) GetResultHandler(w http.ResponseWriter, r *http.Request) {
	res, err := app.Store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (app *AppContext) DownloadResultHandler(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = render.FormatJSON
	}
	contentType := render.ContentType(format)
	if contentType == "" {
		writeError(w, badRequest("format must be json or csv"))
		return
	}

	res, err := app.Store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := render.Export(&buf, res, format); err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", render.Filename(res, format)))
	w.Write(buf.Bytes())
}

func (app *AppContext) SimilarResultsHandler(w http.ResponseWriter, r *http.Request) {
	top, err := intParam(r, "top", defaultSimilar, maxSimilar)
	if err != nil {
		writeError(w, err)
		return
	}

	id := r.PathValue("id")
	vector, err := app.Store.Vector(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if vector == nil {
		writeError(w, render.ErrNoEmbedding)
		return
	}

	ranked, err := app.Store.Similar(r.Context(), vector, id, top)
	if err != nil {
		writeError(w, err)
		return
	}
	if ranked == nil {
		ranked = []model.Summary{}
	}
	writeJSON(w, http.StatusOK, SimilarPayload{Query: id, Results: ranked})
}

func (app *AppContext) ProfileHandler(w http.ResponseWriter, r *http.Request) {
	res, err := app.Store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	svg, err := render.ProfileSVG(res.SequenceID, res.EmbeddingFeatures)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(svg)
}

// ResultPage renders the HTML view of a stored result.
func (app *AppContext) ResultPage(w http.ResponseWriter, r *http.Request) {
	res, err := app.Store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		status := statusFor(err)
		if status >= 500 {
			logger.Error("Load result page", zap.Error(err))
		}
		http.Error(w, http.StatusText(status), status)
		return
	}

	base := "/api/v1/results/" + res.ID
	var buf bytes.Buffer
	err = render.RenderResultPage(&buf, render.ResultPageData{
		Result:     res,
		ProfileURL: base + "/profile.svg",
		JSONURL:    base + "/download?format=json",
		CSVURL:     base + "/download?format=csv",
	})
	if err != nil {
		logger.Error("Render result page", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
