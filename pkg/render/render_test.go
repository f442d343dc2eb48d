package render

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yumyai/protclass/pkg/embedding"
	"github.com/yumyai/protclass/pkg/model"
	"github.com/yumyai/protclass/pkg/uniprot"
)

func classify(t *testing.T, seq string, withEmbedding bool) *model.ClassificationResult {
	t.Helper()
	a := &model.Analyzer{Embedder: embedding.MockProvider{}}
	out, err := a.Analyze(context.Background(), model.Request{SequenceID: "sp|P69905|HBA <human>", Sequence: seq, UseEmbedding: withEmbedding})
	require.NoError(t, err)
	return out.Result
}

func TestWriteCSV(t *testing.T) {
	res := classify(t, strings.Repeat("L", 100), false)

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, res, FormatCSV))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1+len(res.PrimaryFunctions)+len(res.SecondaryFunctions))

	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, "primary", rows[1][2])
	assert.Equal(t, "1", rows[1][3])
	assert.Equal(t, "Transporter Activity", rows[1][5])
	assert.Equal(t, "1.0000", rows[1][7])
	assert.Equal(t, "secondary", rows[len(rows)-1][2])
}

func TestWriteJSON(t *testing.T) {
	res := classify(t, "MVLSPADKTNVKAAWGKVGAHAGEYGAEALERMFLSFPTTKTYFPHF", true)

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, res, FormatJSON))

	var back model.ClassificationResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, res.ID, back.ID)
	assert.Equal(t, len(res.PrimaryFunctions), len(back.PrimaryFunctions))
	require.NotNil(t, back.EmbeddingFeatures)
	assert.Len(t, back.EmbeddingFeatures.Regions, embedding.RegionCount)
}

func TestExportUnknownFormat(t *testing.T) {
	res := classify(t, strings.Repeat("AG", 10), false)
	err := Export(&bytes.Buffer{}, res, "xml")
	assert.Error(t, err)
	assert.Equal(t, "", ContentType("xml"))
	assert.Equal(t, "application/json", ContentType(FormatJSON))
}

func TestFilename(t *testing.T) {
	res := classify(t, strings.Repeat("AG", 10), false)
	assert.Equal(t, "classification_sp_P69905_HBA__human_.csv", Filename(res, FormatCSV))

	res.SequenceID = ""
	assert.Equal(t, "classification_"+res.ID+".json", Filename(res, FormatJSON))
}

func TestRenderResultPage(t *testing.T) {
	res := classify(t, strings.Repeat("L", 100), true)
	res.Metadata = &uniprot.Entry{Accession: "P69905", ProteinName: "Hemoglobin <alpha>", Organism: "Homo sapiens"}

	var buf bytes.Buffer
	err := RenderResultPage(&buf, ResultPageData{
		Result:     res,
		ProfileURL: "/api/v1/results/" + res.ID + "/profile.svg",
		JSONURL:    "/api/v1/results/" + res.ID + "/download?format=json",
		CSVURL:     "/api/v1/results/" + res.ID + "/download?format=csv",
	})
	require.NoError(t, err)

	page := buf.String()
	assert.Contains(t, page, "Transporter Activity")
	assert.Contains(t, page, "Intrinsic Membrane Component")
	assert.Contains(t, page, "100.0%")
	assert.Contains(t, page, "profile.svg")
	assert.Contains(t, page, "Hemoglobin &lt;alpha&gt;")
	assert.NotContains(t, page, "<alpha>")
}

func TestProfileSVG(t *testing.T) {
	res := classify(t, strings.Repeat("MKTAYIAKQR", 5), true)

	svg, err := ProfileSVG(res.SequenceID, res.EmbeddingFeatures)
	require.NoError(t, err)
	assert.True(t, bytes.Contains(svg, []byte("<svg")), "expected svg document")

	_, err = ProfileSVG("none", nil)
	assert.True(t, errors.Is(err, ErrNoEmbedding))
}
