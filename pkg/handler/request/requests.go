package request

// Body of POST /api/v1/classify. Either Sequence or Accession must be set.
type ClassifyRequest struct {
	SequenceID   string `json:"sequence_id"`
	Sequence     string `json:"sequence"`  // raw residues or FASTA
	Accession    string `json:"accession"` // UniProt accession
	UseEmbedding *bool  `json:"use_embedding"`
}

// Embedding defaults to on when the client does not say.
func (r ClassifyRequest) WantsEmbedding() bool {
	return r.UseEmbedding == nil || *r.UseEmbedding
}
