// Amino acid composition and derived biochemical statistics.

package composition

// Stats summarises the residue make-up of a cleaned sequence.
// All percentage fields are in [0,100].
type Stats struct {
	Length          int                `json:"length"`
	Composition     map[string]float64 `json:"composition"`
	Hydrophobicity  float64            `json:"hydrophobicity"`
	PositiveCharge  float64            `json:"positiveCharge"`
	NegativeCharge  float64            `json:"negativeCharge"`
	NetCharge       float64            `json:"netCharge"`
	MolecularWeight float64            `json:"molecularWeight"`
}

var hydrophobic = map[rune]bool{'A': true, 'I': true, 'L': true, 'M': true, 'F': true, 'W': true, 'P': true, 'V': true}
var positiveCharged = []string{"K", "R", "H"}
var negativeCharged = []string{"D", "E"}

// Average free amino acid masses in Da.
var aaWeights = map[rune]float64{
	'A': 89.09, 'C': 121.16, 'D': 133.10, 'E': 147.13,
	'F': 165.19, 'G': 75.07, 'H': 155.16, 'I': 131.17,
	'K': 146.19, 'L': 131.17, 'M': 149.21, 'N': 132.12,
	'P': 115.13, 'Q': 146.15, 'R': 174.20, 'S': 105.09,
	'T': 119.12, 'V': 117.15, 'W': 204.23, 'Y': 181.19,
}

const waterMass = 18.015

// Composition returns the percentage of the sequence taken by each residue
// code that occurs in it. seq must be non-empty.
func Composition(seq string) map[string]float64 {
	counts := make(map[rune]int)
	total := 0
	for _, r := range seq {
		counts[r]++
		total++
	}

	comp := make(map[string]float64, len(counts))
	for r, n := range counts {
		comp[string(r)] = float64(n) / float64(total) * 100
	}
	return comp
}

// Analyze computes Stats for seq. seq must be non-empty; callers gate input first.
func Analyze(seq string) Stats {
	comp := Composition(seq)
	length := len([]rune(seq))

	hydro := 0
	for _, r := range seq {
		if hydrophobic[r] {
			hydro++
		}
	}

	// Summed in a fixed residue order so repeated calls are bit-identical.
	var positive, negative float64
	for _, code := range positiveCharged {
		positive += comp[code]
	}
	for _, code := range negativeCharged {
		negative += comp[code]
	}

	return Stats{
		Length:          length,
		Composition:     comp,
		Hydrophobicity:  float64(hydro) / float64(length) * 100,
		PositiveCharge:  positive,
		NegativeCharge:  negative,
		NetCharge:       positive - negative,
		MolecularWeight: MolecularWeight(seq),
	}
}

// MolecularWeight is the average mass of the chain in Da. Codes outside the
// 20 standard residues (stop, gap) contribute nothing.
func MolecularWeight(seq string) float64 {
	var weight float64
	residues := 0
	for _, r := range seq {
		if w, ok := aaWeights[r]; ok {
			weight += w
			residues++
		}
	}
	if residues == 0 {
		return 0
	}
	return weight - float64(residues-1)*waterMass
}
