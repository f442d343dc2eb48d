// Tolerant decoding of UniProtKB JSON entries.

package uniprot

import (
	"strings"

	"github.com/tidwall/gjson"
)

const unknownProtein = "Unknown protein"

// GOTerm is a Gene Ontology cross reference attached to an entry.
type GOTerm struct {
	ID     string `json:"id"`
	Term   string `json:"term"`
	Aspect string `json:"aspect"` // molecular_function, biological_process, cellular_component or ""
}

// Entry holds the fields the service reads from a UniProtKB record.
// Every field has a zero-value default; see Decode.
type Entry struct {
	Accession            string   `json:"accession"`
	EntryName            string   `json:"entryName"`
	ProteinName          string   `json:"proteinName"`
	GeneName             string   `json:"geneName"`
	Organism             string   `json:"organism"`
	TaxonID              int64    `json:"taxonId"`
	Sequence             string   `json:"sequence"`
	Length               int      `json:"length"`
	Function             []string `json:"function"`
	Keywords             []string `json:"keywords"`
	GOTerms              []GOTerm `json:"goTerms"`
	SubcellularLocations []string `json:"subcellularLocations"`
}

// Decode maps a UniProtKB JSON document onto Entry. It never fails: missing
// or malformed fields keep their defaults.
//
//	Accession, EntryName, GeneName, Organism, Sequence: ""
//	ProteinName: recommended name, else first submitted name, else "Unknown protein"
//	Length: sequence.length, else len(Sequence)
//	TaxonID: 0
//	Function, Keywords, GOTerms, SubcellularLocations: nil
func Decode(raw []byte) Entry {
	doc := gjson.ParseBytes(raw)

	e := Entry{
		Accession: doc.Get("primaryAccession").String(),
		EntryName: doc.Get("uniProtkbId").String(),
		GeneName:  doc.Get("genes.0.geneName.value").String(),
		Organism:  doc.Get("organism.scientificName").String(),
		TaxonID:   doc.Get("organism.taxonId").Int(),
		Sequence:  doc.Get("sequence.value").String(),
	}

	e.ProteinName = firstNonEmpty(
		doc.Get("proteinDescription.recommendedName.fullName.value").String(),
		doc.Get("proteinDescription.submissionNames.0.fullName.value").String(),
		unknownProtein,
	)

	e.Length = int(doc.Get("sequence.length").Int())
	if e.Length == 0 {
		e.Length = len(e.Sequence)
	}

	for _, c := range doc.Get("comments").Array() {
		switch c.Get("commentType").String() {
		case "FUNCTION":
			for _, text := range c.Get("texts.#.value").Array() {
				if v := text.String(); v != "" {
					e.Function = append(e.Function, v)
				}
			}
		case "SUBCELLULAR LOCATION":
			for _, loc := range c.Get("subcellularLocations.#.location.value").Array() {
				if v := loc.String(); v != "" {
					e.SubcellularLocations = append(e.SubcellularLocations, v)
				}
			}
		}
	}

	for _, kw := range doc.Get("keywords.#.name").Array() {
		if v := kw.String(); v != "" {
			e.Keywords = append(e.Keywords, v)
		}
	}

	for _, ref := range doc.Get(`uniProtKBCrossReferences.#(database=="GO")#`).Array() {
		term := GOTerm{ID: ref.Get("id").String()}
		if term.ID == "" {
			continue
		}
		raw := ref.Get(`properties.#(key=="GoTerm").value`).String()
		term.Aspect, term.Term = splitGoTerm(raw)
		e.GOTerms = append(e.GOTerms, term)
	}

	return e
}

// splitGoTerm turns "F:DNA binding" into (molecular_function, "DNA binding").
func splitGoTerm(raw string) (string, string) {
	prefix, rest, ok := strings.Cut(raw, ":")
	if !ok {
		return "", raw
	}
	switch prefix {
	case "F":
		return "molecular_function", rest
	case "P":
		return "biological_process", rest
	case "C":
		return "cellular_component", rest
	default:
		return "", raw
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
