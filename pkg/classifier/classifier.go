// Threshold rules mapping composition and embedding features onto GO categories.

package classifier

import (
	"fmt"
	"math"
	"sort"

	"github.com/yumyai/protclass/pkg/composition"
	"github.com/yumyai/protclass/pkg/embedding"
)

// MaxPredictions caps primary plus secondary functions.
const MaxPredictions = 8

// DefaultConfidence is reported when no primary function survives truncation.
const DefaultConfidence = 0.5

// Result is the outcome of Classify.
type Result struct {
	Length             int                 `json:"length"`
	PrimaryFunctions   []Category          `json:"primaryFunctions"`
	SecondaryFunctions []Category          `json:"secondaryFunctions"`
	Confidence         float64             `json:"confidence"`
	Notes              []string            `json:"notes"`
	EmbeddingFeatures  *embedding.Features `json:"embeddingFeatures,omitempty"`
}

type candidate struct {
	Category
	primary bool
}

// A rule inspects the inputs and proposes zero or more candidates.
// features is nil when no embedding was available.
type rule func(stats composition.Stats, features *embedding.Features) []candidate

var rules = []rule{
	hydrophobicRule,
	chargeRule,
	histidineRule,
	prolineRule,
	cysteineRule,
	lengthRule,
	defaultRule,
}

// Classify applies every rule, ranks the candidates and keeps the top
// MaxPredictions. It is pure and safe for concurrent use.
func Classify(stats composition.Stats, features *embedding.Features) Result {
	var candidates []candidate
	for _, r := range rules {
		candidates = append(candidates, r(stats, features)...)
	}

	for i := range candidates {
		candidates[i].Confidence = clamp(candidates[i].Confidence)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})
	if len(candidates) > MaxPredictions {
		candidates = candidates[:MaxPredictions]
	}

	result := Result{
		Length:             stats.Length,
		PrimaryFunctions:   []Category{},
		SecondaryFunctions: []Category{},
		Notes:              notes(stats, features),
		EmbeddingFeatures:  features,
	}
	for _, c := range candidates {
		if c.primary {
			result.PrimaryFunctions = append(result.PrimaryFunctions, c.Category)
		} else {
			result.SecondaryFunctions = append(result.SecondaryFunctions, c.Category)
		}
	}

	result.Confidence = DefaultConfidence
	if n := len(result.PrimaryFunctions); n > 0 {
		var sum float64
		for _, c := range result.PrimaryFunctions {
			sum += c.Confidence
		}
		result.Confidence = sum / float64(n)
	}

	return result
}

func hydrophobicRule(stats composition.Stats, f *embedding.Features) []candidate {
	if stats.Hydrophobicity <= 45 {
		return nil
	}
	conf := 0.75 + (stats.Hydrophobicity-45)*0.005
	boosted := false
	if f != nil && f.Complexity > 0.5 {
		conf = math.Min(conf+0.10, 0.95)
		boosted = true
	}
	return []candidate{
		{termTransporter.category(conf, boosted), true},
		{termMembrane.category(0.68, false), false},
	}
}

func chargeRule(stats composition.Stats, f *embedding.Features) []candidate {
	if math.Abs(stats.NetCharge) <= 15 {
		return nil
	}
	complexity := 0.0
	if f != nil {
		complexity = f.Complexity
	}
	return []candidate{
		{termDNABinding.category(math.Min(0.7+complexity*0.15, 0.95), f != nil), true},
		{termRNABinding.category(0.65, false), true},
	}
}

func histidineRule(stats composition.Stats, _ *embedding.Features) []candidate {
	if stats.Composition["H"] <= 2 {
		return nil
	}
	return []candidate{{termTransferase.category(0.62, false), true}}
}

func prolineRule(stats composition.Stats, _ *embedding.Features) []candidate {
	if stats.Composition["P"] <= 5 {
		return nil
	}
	return []candidate{{termSignalTransducer.category(0.58, false), false}}
}

func cysteineRule(stats composition.Stats, _ *embedding.Features) []candidate {
	if stats.Composition["C"] <= 3 {
		return nil
	}
	return []candidate{
		{termDisulfide.category(0.64, false), false},
		{termStructural.category(0.60, false), false},
	}
}

func lengthRule(stats composition.Stats, _ *embedding.Features) []candidate {
	if stats.Length <= 300 {
		return nil
	}
	return []candidate{{termMetabolic.category(0.55, false), true}}
}

func defaultRule(composition.Stats, *embedding.Features) []candidate {
	return []candidate{{termIntracellular.category(0.50, false), true}}
}

func notes(stats composition.Stats, f *embedding.Features) []string {
	out := []string{}
	if stats.Hydrophobicity > 45 {
		out = append(out, fmt.Sprintf("High hydrophobicity (%.1f%%) suggests membrane association", stats.Hydrophobicity))
	}
	if math.Abs(stats.NetCharge) > 15 {
		out = append(out, fmt.Sprintf("Significant net charge (%+.1f%%) suggests nucleic acid interaction", stats.NetCharge))
	}
	if stats.Length < 50 {
		out = append(out, fmt.Sprintf("Short sequence detected (%d residues); predictions may be less reliable", stats.Length))
	}
	if f != nil && f.Complexity > 0.7 {
		out = append(out, fmt.Sprintf("High embedding complexity (%.3f) suggests diverse structural features", f.Complexity))
	}
	if f != nil && f.DynamicRange > 1.5 {
		out = append(out, fmt.Sprintf("Wide embedding dynamic range (%.3f) indicates distinct functional regions", f.DynamicRange))
	}
	return out
}

func clamp(conf float64) float64 {
	return math.Max(0, math.Min(1, conf))
}
