// Descriptive statistics and regional features of embedding vectors.

package embedding

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Dimensions of a layer-12 embedding from the protein language model.
const Dimensions = 1280

// RegionCount is the number of contiguous partitions summarised by Features.
const RegionCount = 10

var ErrEmptyEmbedding = errors.New("embedding vector is empty")

// DimensionMismatchError is returned when two vectors cannot be compared.
type DimensionMismatchError struct {
	Left, Right int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("vector length mismatch: %d != %d", e.Left, e.Right)
}

// Summary holds the basic descriptive statistics of a vector.
type Summary struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// Features is everything the classifier reads from an embedding.
type Features struct {
	Summary
	Regions          []float64 `json:"regions"`
	OverallMagnitude float64   `json:"overallMagnitude"`
	DynamicRange     float64   `json:"dynamicRange"`
	Complexity       float64   `json:"complexity"`
}

// Stats computes mean, population standard deviation, min and max.
// v must be non-empty.
func Stats(v []float64) Summary {
	mean, std := stat.PopMeanStdDev(v, nil)
	return Summary{
		Mean: mean,
		Std:  std,
		Min:  floats.Min(v),
		Max:  floats.Max(v),
	}
}

// Extract computes Features for v. v must be non-empty.
func Extract(v []float64) Features {
	summary := Stats(v)
	return Features{
		Summary:          summary,
		Regions:          Regions(v),
		OverallMagnitude: floats.Norm(v, 2),
		DynamicRange:     summary.Max - summary.Min,
		Complexity:       summary.Std,
	}
}

// Regions splits v into RegionCount contiguous partitions of len(v)/RegionCount
// elements, the last one running to the end, and returns each partition's mean.
// Partitions that end up empty (len(v) < RegionCount) report 0.
func Regions(v []float64) []float64 {
	size := len(v) / RegionCount
	regions := make([]float64, RegionCount)
	for i := 0; i < RegionCount; i++ {
		start := i * size
		end := start + size
		if i == RegionCount-1 {
			end = len(v)
		}
		if end > start {
			regions[i] = stat.Mean(v[start:end], nil)
		}
	}
	return regions
}

// CosineSimilarity returns the cosine of the angle between a and b, or 0 when
// either vector has zero norm.
func CosineSimilarity(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, &DimensionMismatchError{Left: len(a), Right: len(b)}
	}
	normA := floats.Norm(a, 2)
	normB := floats.Norm(b, 2)
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	sim := floats.Dot(a, b) / (normA * normB)
	// rounding can push parallel vectors a hair past 1
	return math.Max(-1, math.Min(1, sim)), nil
}
