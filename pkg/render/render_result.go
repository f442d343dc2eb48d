package render

import (
	"html/template"
	"io"

	"github.com/yumyai/protclass/logger"
	"github.com/yumyai/protclass/pkg/model"
	"go.uber.org/zap"
)

var resultPageTemplate *template.Template

// ResultPageData is what the HTML result page renders.
type ResultPageData struct {
	Result     *model.ClassificationResult
	ProfileURL string
	JSONURL    string
	CSVURL     string
}

func init() {
	mainTmpl := `<!DOCTYPE html>
<html>
<head>
	<title>Protein classification {{ .Result.SequenceID }}</title>
	<style>
	body { font-family: sans-serif; margin: 2em; }
	table { border-collapse: collapse; margin-bottom: 1.5em; }
	td, th { border: 1px solid #ccc; padding: 4px 8px; text-align: left; }
	pre { white-space: pre-wrap; word-wrap: break-word; }
	.emb { color: #2a6; }
	</style>
</head>
<body>
	<h1>{{ .Result.SequenceID }}</h1>
	<p><strong>Result ID:</strong> {{ .Result.ID }}</p>
	<p><strong>Length:</strong> {{ .Result.Length }} residues,
	   <strong>overall confidence:</strong> {{ pct .Result.Confidence }}</p>
	<p><a href="{{ .JSONURL }}">Download JSON</a> | <a href="{{ .CSVURL }}">Download CSV</a></p>

	{{ with .Result.Metadata }}
	<h2>UniProt {{ .Accession }}</h2>
	<p>{{ .ProteinName }}{{ if .GeneName }} ({{ .GeneName }}){{ end }}{{ if .Organism }}, <em>{{ .Organism }}</em>{{ end }}</p>
	{{ range .Function }}<p>{{ . }}</p>{{ end }}
	{{ end }}

	<h2>Primary functions</h2>
	{{ template "functions" .Result.PrimaryFunctions }}
	{{ if .Result.SecondaryFunctions }}
	<h2>Secondary functions</h2>
	{{ template "functions" .Result.SecondaryFunctions }}
	{{ end }}

	{{ if .Result.Notes }}
	<h2>Notes</h2>
	<ul>{{ range .Result.Notes }}<li>{{ . }}</li>{{ end }}</ul>
	{{ end }}

	<h2>Composition</h2>
	<table>
		<tr><th>Hydrophobicity</th><td>{{ printf "%.1f" .Result.Composition.Hydrophobicity }}%</td></tr>
		<tr><th>Positive charge</th><td>{{ printf "%.1f" .Result.Composition.PositiveCharge }}%</td></tr>
		<tr><th>Negative charge</th><td>{{ printf "%.1f" .Result.Composition.NegativeCharge }}%</td></tr>
		<tr><th>Net charge</th><td>{{ printf "%+.1f" .Result.Composition.NetCharge }}%</td></tr>
		<tr><th>Molecular weight</th><td>{{ printf "%.1f" .Result.Composition.MolecularWeight }} Da</td></tr>
	</table>

	{{ if .Result.EmbeddingFeatures }}
	<h2>Embedding profile ({{ .Result.EmbeddingSource }})</h2>
	<img src="{{ .ProfileURL }}" alt="embedding region profile">
	{{ else }}
	<p>Embedding: {{ .Result.EmbeddingSource }}</p>
	{{ end }}

	<h2>Sequence</h2>
	<pre>{{ .Result.Sequence }}</pre>
</body>
</html>
{{ define "functions" }}
	<table>
		<tr><th>Category</th><th>Type</th><th>Confidence</th><th>Reference</th></tr>
		{{ range . }}
		<tr>
			<td>{{ .Name }}{{ if .EmbeddingBased }} <span class="emb">(embedding)</span>{{ end }}</td>
			<td>{{ .Type }}</td>
			<td>{{ pct .Confidence }}</td>
			<td>{{ range .References }}<a href="{{ .URL }}">{{ .ID }}</a> {{ end }}</td>
		</tr>
		{{ end }}
	</table>
{{ end }}`

	resultPageTemplate = template.New("result_page").Funcs(template.FuncMap{
		"pct": formatPercent,
	})
	resultPageTemplate = template.Must(resultPageTemplate.Parse(mainTmpl))
}

// RenderResultPage writes the HTML page for one stored result.
func RenderResultPage(w io.Writer, data ResultPageData) error {
	logger.Debug("Rendering result page", zap.String("result_id", data.Result.ID))
	return resultPageTemplate.Execute(w, data)
}
