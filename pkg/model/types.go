package model

import (
	"time"

	"github.com/yumyai/protclass/pkg/classifier"
	"github.com/yumyai/protclass/pkg/composition"
	"github.com/yumyai/protclass/pkg/uniprot"
)

// Where the embedding used for a result came from.
const (
	EmbeddingSourceNone        = "none"
	EmbeddingSourceUnavailable = "unavailable"
)

// ClassificationResult is the terminal artifact of one analysis.
type ClassificationResult struct {
	ID         string `json:"id"`
	SequenceID string `json:"sequenceId"`
	Sequence   string `json:"sequence"`
	classifier.Result
	Composition     composition.Stats `json:"composition"`
	Metadata        *uniprot.Entry    `json:"metadata,omitempty"`
	EmbeddingSource string            `json:"embeddingSource"`
	CreatedAt       time.Time         `json:"createdAt"`
}

// Summary is the short listing form of a stored result.
type Summary struct {
	ID          string    `json:"id"`
	SequenceID  string    `json:"sequenceId"`
	Length      int       `json:"length"`
	Confidence  float64   `json:"confidence"`
	TopFunction string    `json:"topFunction"`
	CreatedAt   time.Time `json:"createdAt"`
	Similarity  float64   `json:"similarity,omitempty"`
}

// Summarize derives the listing form of r.
func (r *ClassificationResult) Summarize() Summary {
	s := Summary{
		ID:         r.ID,
		SequenceID: r.SequenceID,
		Length:     r.Length,
		Confidence: r.Confidence,
		CreatedAt:  r.CreatedAt,
	}
	if len(r.PrimaryFunctions) > 0 {
		s.TopFunction = r.PrimaryFunctions[0].Name
	}
	return s
}
