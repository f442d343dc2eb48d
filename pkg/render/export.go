package render

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/yumyai/protclass/pkg/classifier"
	"github.com/yumyai/protclass/pkg/model"
)

// Export formats accepted by the download endpoint.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

var csvHeader = []string{
	"result_id", "sequence_id", "tier", "rank", "category_id", "name", "type", "confidence", "embedding_based",
}

// ContentType returns the MIME type served for format, or "" if format is unknown.
func ContentType(format string) string {
	switch format {
	case FormatJSON:
		return "application/json"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	default:
		return ""
	}
}

// Filename builds the attachment name for a downloaded result.
func Filename(res *model.ClassificationResult, format string) string {
	id := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, res.SequenceID)
	if id == "" {
		id = res.ID
	}
	return fmt.Sprintf("classification_%s.%s", id, format)
}

// Export writes res to w in the requested format.
func Export(w io.Writer, res *model.ClassificationResult, format string) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, res)
	case FormatCSV:
		return WriteCSV(w, res)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// WriteJSON writes the full result, indented.
func WriteJSON(w io.Writer, res *model.ClassificationResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// WriteCSV writes one row per predicted category, primary tier first.
func WriteCSV(w io.Writer, res *model.ClassificationResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	write := func(tier string, cats []classifier.Category) error {
		for i, c := range cats {
			row := []string{
				res.ID,
				res.SequenceID,
				tier,
				strconv.Itoa(i + 1),
				c.ID,
				c.Name,
				string(c.Type),
				strconv.FormatFloat(c.Confidence, 'f', 4, 64),
				strconv.FormatBool(c.EmbeddingBased),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	}

	if err := write("primary", res.PrimaryFunctions); err != nil {
		return err
	}
	if err := write("secondary", res.SecondaryFunctions); err != nil {
		return err
	}

	cw.Flush()
	return cw.Error()
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v*100, 'f', 1, 64) + "%"
}
