package sequence

import (
	"errors"
	"strings"
	"testing"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"Plain", "mktayiakqr", "MKTAYIAKQR"},
		{"Whitespace", " MKT AYI\tAKQR \n", "MKTAYIAKQR"},
		{"Digits", "1 MKTAYIAKQR 11", "MKTAYIAKQR"},
		{"CRLF", "MKTA\r\nYIAK\r\nQR", "MKTAYIAKQR"},
		{"Fasta", ">sp|P69905|HBA_HUMAN Hemoglobin\nMVLSPADKTN\nVKAAWGKVGA\n", "MVLSPADKTNVKAAWGKVGA"},
		{"FastaOnlyHeader", ">lonely header", ""},
		{"Empty", "", ""},
		{"KeepsStopAndGap", "MKT-AY*", "MKT-AY*"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.input); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"MKTAYIAKQR", true},
		{"mktayiakqr", true},
		{"MKT AYI\nAKQR", true},
		{"ACDEFGHIKLMNPQRSTVWY*-", true},
		{"", false},
		{"   ", false},
		{"MKTXAYI", false},
		{"MKT1AYI", false},
		{"MKTBZ", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Validate(tt.input); got != tt.want {
				t.Errorf("Validate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestGate(t *testing.T) {
	if err := Gate("MKTAYIAKQR"); err != nil {
		t.Fatalf("expected 10 residues to pass, got %v", err)
	}

	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{"Empty", "", "empty"},
		{"Short", "MKTAYIAKQ", "at least 10"},
		{"BadChars", "MKTAYIAKQRXB", "outside"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Gate(tt.input)
			var seqErr *InvalidSequenceError
			if !errors.As(err, &seqErr) {
				t.Fatalf("expected InvalidSequenceError, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestGateReportsInvalidCharacters(t *testing.T) {
	err := Gate("MKTAYIAKQRXBX")
	var seqErr *InvalidSequenceError
	if !errors.As(err, &seqErr) {
		t.Fatalf("expected InvalidSequenceError, got %v", err)
	}
	if string(seqErr.Invalid) != "BX" {
		t.Errorf("expected invalid chars BX, got %q", string(seqErr.Invalid))
	}
}

func TestParseFasta(t *testing.T) {
	input := ">P1 first protein\nMKTAYIAKQR\nQISFVKSHFS\n\n>P2\nmvlspadktn\n>\nGGGGGGGGGG\n"

	records, err := ParseFasta(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseFasta: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	if records[0].ID != "P1" || records[0].Header != "P1 first protein" {
		t.Errorf("unexpected first record %+v", records[0])
	}
	if records[0].Sequence != "MKTAYIAKQRQISFVKSHFS" {
		t.Errorf("unexpected first sequence %q", records[0].Sequence)
	}
	if records[1].Sequence != "MVLSPADKTN" {
		t.Errorf("expected uppercased sequence, got %q", records[1].Sequence)
	}
	if records[2].ID != "seq_3" {
		t.Errorf("expected generated id seq_3, got %q", records[2].ID)
	}
}

func TestParseFastaWithoutHeader(t *testing.T) {
	records, err := ParseFasta(strings.NewReader("MKTAYIAKQR\nQISF\n"))
	if err != nil {
		t.Fatalf("ParseFasta: %v", err)
	}
	if len(records) != 1 || records[0].ID != "seq_1" || records[0].Sequence != "MKTAYIAKQRQISF" {
		t.Fatalf("unexpected records %+v", records)
	}
}
