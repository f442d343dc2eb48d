package classifier

import "fmt"

// FunctionType is the Gene Ontology namespace of a category.
type FunctionType string

const (
	MolecularFunction FunctionType = "molecular_function"
	BiologicalProcess FunctionType = "biological_process"
	CellularComponent FunctionType = "cellular_component"
)

// Reference points at the ontology entry a category was taken from.
type Reference struct {
	Database string `json:"database"`
	ID       string `json:"id"`
	URL      string `json:"url"`
}

// Category is one scored functional prediction.
type Category struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Type           FunctionType `json:"type"`
	Confidence     float64      `json:"confidence"`
	Description    string       `json:"description"`
	Examples       []string     `json:"examples"`
	References     []Reference  `json:"references"`
	EmbeddingBased bool         `json:"embeddingBased"`
}

type term struct {
	id          string
	name        string
	kind        FunctionType
	description string
	examples    []string
}

var (
	termTransporter = term{"GO:0005215", "Transporter Activity", MolecularFunction,
		"Enables the directed movement of substances into, out of or within a cell, or between cells.",
		[]string{"ABC transporters", "Ion channels", "Solute carriers"}}
	termMembrane = term{"GO:0031224", "Intrinsic Membrane Component", CellularComponent,
		"Located with at least some part of the gene product embedded in a membrane.",
		[]string{"Transmembrane receptors", "Membrane pumps"}}
	termDNABinding = term{"GO:0003677", "DNA Binding", MolecularFunction,
		"Any molecular function by which a gene product interacts selectively and non-covalently with DNA.",
		[]string{"Transcription factors", "Histones", "DNA repair enzymes"}}
	termRNABinding = term{"GO:0003723", "RNA Binding", MolecularFunction,
		"Interacting selectively and non-covalently with an RNA molecule or a portion thereof.",
		[]string{"Ribosomal proteins", "Splicing factors", "RNA helicases"}}
	termTransferase = term{"GO:0016740", "Transferase Activity", MolecularFunction,
		"Catalysis of the transfer of a group, e.g. a methyl, glycosyl or phosphorus-containing group, from one compound to another.",
		[]string{"Kinases", "Methyltransferases", "Glycosyltransferases"}}
	termSignalTransducer = term{"GO:0004871", "Signal Transducer Activity", MolecularFunction,
		"Conveys a signal across a cell to trigger a change in cell function or state.",
		[]string{"G protein-coupled receptors", "Receptor tyrosine kinases"}}
	termDisulfide = term{"GO:0015036", "Disulfide Oxidoreductase Activity", MolecularFunction,
		"Catalysis of oxidation-reduction reactions in which disulfide bonds are formed or broken.",
		[]string{"Thioredoxins", "Protein disulfide isomerases", "Glutaredoxins"}}
	termStructural = term{"GO:0005198", "Structural Protein Activity", MolecularFunction,
		"The action of a molecule that contributes to the structural integrity of a complex or its assembly.",
		[]string{"Keratins", "Collagens", "Cytoskeletal proteins"}}
	termMetabolic = term{"GO:0008152", "Metabolic Process", BiologicalProcess,
		"The chemical reactions and pathways by which living organisms transform chemical substances.",
		[]string{"Glycolytic enzymes", "Lipid synthases"}}
	termIntracellular = term{"GO:0005622", "Intracellular Component", CellularComponent,
		"A location inside the plasma membrane of a cell.",
		[]string{"Cytosolic enzymes", "Nuclear proteins"}}
)

// category builds a fresh Category for t; slices are copied so callers may
// keep results without sharing state between classifications.
func (t term) category(confidence float64, embeddingBased bool) Category {
	return Category{
		ID:          t.id,
		Name:        t.name,
		Type:        t.kind,
		Confidence:  confidence,
		Description: t.description,
		Examples:    append([]string(nil), t.examples...),
		References: []Reference{{
			Database: "GO",
			ID:       t.id,
			URL:      fmt.Sprintf("https://amigo.geneontology.org/amigo/term/%s", t.id),
		}},
		EmbeddingBased: embeddingBased,
	}
}
