// Analysis pipeline: gate, composition, embedding, classification.

package model

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yumyai/protclass/logger"
	"github.com/yumyai/protclass/pkg/classifier"
	"github.com/yumyai/protclass/pkg/composition"
	"github.com/yumyai/protclass/pkg/embedding"
	"github.com/yumyai/protclass/pkg/sequence"
	"github.com/yumyai/protclass/pkg/uniprot"
	"go.uber.org/zap"
)

// ErrNoInput is returned when a request carries neither sequence nor accession.
var ErrNoInput = errors.New("either sequence or accession is required")

// MetadataSource looks up UniProt entries.
type MetadataSource interface {
	Fetch(ctx context.Context, accession string) (*uniprot.Entry, error)
}

// Request is one classification job.
type Request struct {
	SequenceID   string
	Sequence     string // raw text or FASTA
	Accession    string
	UseEmbedding bool
}

// Analysis is a result plus the vector it was computed from (nil without embedding).
type Analysis struct {
	Result *ClassificationResult
	Vector []float64
}

// Analyzer wires the core functions to their external collaborators.
// Either collaborator may be nil.
type Analyzer struct {
	Embedder embedding.Provider
	Metadata MetadataSource
}

// Analyze runs the whole pipeline for req.
//
// When req.Accession is set without a sequence, the UniProt sequence is used.
// When both are set, the metadata lookup runs alongside the embedding call.
// Gate failures are returned as *sequence.InvalidSequenceError. An embedding
// failure does not fail the analysis; the result is marked unavailable.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (*Analysis, error) {
	req.Accession = strings.TrimSpace(req.Accession)
	if strings.TrimSpace(req.Sequence) == "" && req.Accession == "" {
		return nil, ErrNoInput
	}

	var entry *uniprot.Entry
	var pending <-chan metadataResult

	if req.Accession != "" {
		if a.Metadata == nil {
			return nil, errors.New("accession lookup is not configured")
		}
		if strings.TrimSpace(req.Sequence) == "" {
			fetched, err := a.Metadata.Fetch(ctx, req.Accession)
			if err != nil {
				return nil, fmt.Errorf("fetch metadata: %w", err)
			}
			entry = fetched
			req.Sequence = fetched.Sequence
		} else {
			pending = a.fetchAsync(ctx, req.Accession)
		}
	}

	seq := sequence.Clean(req.Sequence)
	if err := sequence.Gate(seq); err != nil {
		return nil, err
	}

	stats := composition.Analyze(seq)
	vector, source := a.embed(ctx, seq, req.UseEmbedding)

	var features *embedding.Features
	if len(vector) > 0 {
		f := embedding.Extract(vector)
		features = &f
	}

	if pending != nil {
		res := <-pending
		if res.err != nil {
			// Metadata is auxiliary when the caller supplied the sequence.
			logger.Warn("UniProt lookup failed", zap.String("accession", req.Accession), zap.Error(res.err))
		} else {
			entry = res.entry
		}
	}

	result := &ClassificationResult{
		ID:              uuid.New().String(),
		SequenceID:      sequenceID(req, entry),
		Sequence:        seq,
		Result:          classifier.Classify(stats, features),
		Composition:     stats,
		Metadata:        entry,
		EmbeddingSource: source,
		CreatedAt:       time.Now().UTC(),
	}

	logger.Debug("Classified sequence",
		zap.String("id", result.ID),
		zap.Int("length", result.Length),
		zap.Int("primary", len(result.PrimaryFunctions)),
		zap.Float64("confidence", result.Confidence),
		zap.String("embedding", source),
	)

	return &Analysis{Result: result, Vector: vector}, nil
}

type metadataResult struct {
	entry *uniprot.Entry
	err   error
}

func (a *Analyzer) fetchAsync(ctx context.Context, accession string) <-chan metadataResult {
	ch := make(chan metadataResult, 1)
	go func() {
		entry, err := a.Metadata.Fetch(ctx, accession)
		ch <- metadataResult{entry, err}
	}()
	return ch
}

func (a *Analyzer) embed(ctx context.Context, seq string, wanted bool) ([]float64, string) {
	if !wanted || a.Embedder == nil {
		return nil, EmbeddingSourceNone
	}
	vec, err := a.Embedder.Embed(ctx, seq)
	if err == nil && len(vec) == 0 {
		err = embedding.ErrEmptyEmbedding
	}
	if err != nil {
		logger.Warn("Embedding unavailable, classifying without it",
			zap.String("provider", a.Embedder.Name()), zap.Error(err))
		return nil, EmbeddingSourceUnavailable
	}
	return vec, a.Embedder.Name()
}

func sequenceID(req Request, entry *uniprot.Entry) string {
	switch {
	case req.SequenceID != "":
		return req.SequenceID
	case entry != nil && entry.Accession != "":
		return entry.Accession
	case req.Accession != "":
		return strings.ToUpper(req.Accession)
	default:
		return "query"
	}
}
