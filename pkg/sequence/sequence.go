// Cleaning and validation of raw protein sequence input.

package sequence

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// Alphabet holds the 20 standard amino acid codes plus stop (*) and gap (-).
const Alphabet = "ACDEFGHIKLMNPQRSTVWY*-"

// MinLength is the shortest sequence the service will classify.
const MinLength = 10

var allowed = func() map[rune]bool {
	m := make(map[rune]bool, len(Alphabet))
	for _, r := range Alphabet {
		m[r] = true
	}
	return m
}()

// InvalidSequenceError is returned by Gate when input cannot be analysed.
type InvalidSequenceError struct {
	Msg     string
	Invalid []rune // offending characters, sorted, deduplicated
}

func (e *InvalidSequenceError) Error() string {
	if len(e.Invalid) == 0 {
		return fmt.Sprintf("invalid sequence: %s", e.Msg)
	}
	return fmt.Sprintf("invalid sequence: %s (%q)", e.Msg, string(e.Invalid))
}

// Clean normalises raw text or FASTA into a bare uppercase sequence.
// When any line starts with '>' the first line is treated as the header and dropped.
// Clean never fails; the result may be empty.
func Clean(input string) string {
	body := input
	if hasFastaHeader(input) {
		if i := strings.IndexByte(input, '\n'); i >= 0 {
			body = input[i+1:]
		} else {
			body = ""
		}
	}

	var b strings.Builder
	b.Grow(len(body))
	for _, r := range strings.ToUpper(body) {
		if unicode.IsSpace(r) || unicode.IsDigit(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Validate reports whether s is a non-empty sequence over Alphabet after
// uppercasing and stripping whitespace.
func Validate(s string) bool {
	n := normalize(s)
	return n != "" && len(invalidChars(n)) == 0
}

// Gate applies the minimum length and alphabet checks enforced before analysis.
func Gate(seq string) error {
	if seq == "" {
		return &InvalidSequenceError{Msg: "sequence is empty"}
	}
	if bad := invalidChars(normalize(seq)); len(bad) > 0 {
		return &InvalidSequenceError{Msg: "sequence contains characters outside " + Alphabet, Invalid: bad}
	}
	if len(seq) < MinLength {
		return &InvalidSequenceError{Msg: fmt.Sprintf("sequence must be at least %d residues, got %d", MinLength, len(seq))}
	}
	return nil
}

func hasFastaHeader(input string) bool {
	for _, line := range strings.Split(input, "\n") {
		if strings.HasPrefix(strings.TrimLeft(line, "\r"), ">") {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, strings.ToUpper(s))
}

func invalidChars(s string) []rune {
	seen := make(map[rune]bool)
	for _, r := range s {
		if !allowed[r] {
			seen[r] = true
		}
	}
	if len(seen) == 0 {
		return nil
	}
	out := make([]rune, 0, len(seen))
	for r := range seen {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
