package sequence

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Record is one entry of a multi-record FASTA upload.
type Record struct {
	ID       string `json:"id"`
	Header   string `json:"header"`
	Sequence string `json:"sequence"`
}

// ParseFasta reads every record in r. Sequence lines are passed through Clean.
// Text before the first header becomes a record with a generated id, so a
// bare sequence without any header is accepted too.
func ParseFasta(r io.Reader) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var records []Record
	var current *Record
	var body strings.Builder

	flush := func() {
		if current == nil {
			return
		}
		current.Sequence = Clean(body.String())
		records = append(records, *current)
		body.Reset()
		current = nil
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ">") {
			flush()
			header := strings.TrimSpace(line[1:])
			id := header
			if fields := strings.Fields(header); len(fields) > 0 {
				id = fields[0]
			} else {
				id = fmt.Sprintf("seq_%d", len(records)+1)
			}
			current = &Record{ID: id, Header: header}
			continue
		}

		if current == nil {
			current = &Record{ID: fmt.Sprintf("seq_%d", len(records)+1)}
		}
		body.WriteString(line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read fasta: %w", err)
	}
	flush()

	return records, nil
}
