package handler

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yumyai/protclass/internal/retry"
	"github.com/yumyai/protclass/pkg/db"
	"github.com/yumyai/protclass/pkg/embedding"
	"github.com/yumyai/protclass/pkg/model"
	"github.com/yumyai/protclass/pkg/uniprot"
)

const hbaEntry = `{
  "primaryAccession": "P69905",
  "uniProtkbId": "HBA_HUMAN",
  "organism": {"scientificName": "Homo sapiens", "taxonId": 9606},
  "proteinDescription": {"recommendedName": {"fullName": {"value": "Hemoglobin subunit alpha"}}},
  "sequence": {"value": "MVLSPADKTNVKAAWGKVGAHAGEYGAEALERMFLSFPTTKTYFPHF", "length": 47}
}`

type envelope struct {
	Success bool            `json:"success"`
	Payload json.RawMessage `json:"payload"`
	Error   string          `json:"error"`
}

// fakeUniProt serves P69905, 404 for Q00000 and 503 for anything else.
func fakeUniProt(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/uniprotkb/P69905.json":
			w.Write([]byte(hbaEntry))
		case "/uniprotkb/Q00000.json":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestApp(t *testing.T) (*AppContext, http.Handler) {
	t.Helper()

	store, err := db.NewResultStore(filepath.Join(t.TempDir(), "results.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	client := uniprot.NewClient(fakeUniProt(t).URL, time.Second).WithRetry(retry.Config{
		MaxRetries: 1, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, BackoffMultiple: 1,
	})

	app := &AppContext{
		Analyzer:  &model.Analyzer{Embedder: embedding.MockProvider{}, Metadata: client},
		Store:     store,
		UniProt:   client,
		BatchJobs: NewBatchJobManager(2),
	}
	return app, NewRouter(app)
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, payload any) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, rr.Body.String())
	}
	if payload != nil && env.Success {
		if err := json.Unmarshal(env.Payload, payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
	}
	return env
}

func classify(t *testing.T, h http.Handler, body string) model.ClassificationResult {
	t.Helper()
	rr := do(t, h, http.MethodPost, "/api/v1/classify", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("classify: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var res model.ClassificationResult
	decode(t, rr, &res)
	return res
}

func TestHealthCheck(t *testing.T) {
	_, h := newTestApp(t)

	rr := do(t, h, http.MethodGet, "/api/v1/health", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", rr.Code)
	}
	var got HealthResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Health != "ok" || got.Embedding != "mock" {
		t.Fatalf("unexpected health %+v", got)
	}
}

func TestClassifyHandler(t *testing.T) {
	_, h := newTestApp(t)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"raw sequence", `{"sequence": "MKTAYIAKQRQISFVKSHFSRQLEERLGLIEVQ"}`, http.StatusOK},
		{"fasta", `{"sequence": ">sp|x\nMKTAYIAKQR\nQISFVKSHFS"}`, http.StatusOK},
		{"accession", `{"accession": "P69905"}`, http.StatusOK},
		{"too short", `{"sequence": "MKTAY"}`, http.StatusBadRequest},
		{"invalid characters", `{"sequence": "MKTAYIAKQRBJOUXZ"}`, http.StatusBadRequest},
		{"no input", `{}`, http.StatusBadRequest},
		{"malformed json", `{"sequence":`, http.StatusBadRequest},
		{"bad accession", `{"accession": "P/69905"}`, http.StatusBadRequest},
		{"unknown accession", `{"accession": "Q00000"}`, http.StatusNotFound},
		{"upstream down", `{"accession": "P12345"}`, http.StatusBadGateway},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := do(t, h, http.MethodPost, "/api/v1/classify", tc.body)
			if rr.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rr.Code, rr.Body.String())
			}
			env := decode(t, rr, nil)
			if env.Success != (tc.status == http.StatusOK) {
				t.Fatalf("success=%v for status %d", env.Success, rr.Code)
			}
			if !env.Success && env.Error == "" {
				t.Fatalf("expected error message")
			}
		})
	}
}

func TestClassifyByAccessionCarriesMetadata(t *testing.T) {
	_, h := newTestApp(t)

	res := classify(t, h, `{"accession": "p69905", "use_embedding": false}`)
	if res.SequenceID != "P69905" || res.Length != 47 {
		t.Fatalf("unexpected result %s/%d", res.SequenceID, res.Length)
	}
	if res.Metadata == nil || res.Metadata.ProteinName != "Hemoglobin subunit alpha" {
		t.Fatalf("metadata missing: %+v", res.Metadata)
	}
	if res.EmbeddingSource != model.EmbeddingSourceNone || res.EmbeddingFeatures != nil {
		t.Fatalf("embedding should be off, got %s", res.EmbeddingSource)
	}
}

func TestUniProtHandler(t *testing.T) {
	_, h := newTestApp(t)

	rr := do(t, h, http.MethodGet, "/api/v1/uniprot/P69905", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var entry uniprot.Entry
	decode(t, rr, &entry)
	if entry.EntryName != "HBA_HUMAN" || entry.TaxonID != 9606 {
		t.Fatalf("unexpected entry %+v", entry)
	}

	if rr := do(t, h, http.MethodGet, "/api/v1/uniprot/Q00000", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestResultEndpoints(t *testing.T) {
	_, h := newTestApp(t)

	first := classify(t, h, `{"sequence_id": "q1", "sequence": "MKTAYIAKQRQISFVKSHFSRQLEERLGLIEVQ"}`)
	classify(t, h, `{"sequence_id": "q2", "sequence": "MKTAYIAKQRQISFVKSHFSRQLEERLGLIEVA"}`)
	plain := classify(t, h, `{"sequence_id": "q3", "sequence": "MKTAYIAKQRQISFVKSHFS", "use_embedding": false}`)

	t.Run("get", func(t *testing.T) {
		rr := do(t, h, http.MethodGet, "/api/v1/results/"+first.ID, "")
		var got model.ClassificationResult
		decode(t, rr, &got)
		if rr.Code != http.StatusOK || got.SequenceID != "q1" {
			t.Fatalf("unexpected %d %+v", rr.Code, got.Summarize())
		}
	})

	t.Run("missing", func(t *testing.T) {
		for _, target := range []string{
			"/api/v1/results/nope",
			"/api/v1/results/nope/download?format=csv",
			"/api/v1/results/nope/similar",
			"/api/v1/results/nope/profile.svg",
			"/result/nope",
		} {
			if rr := do(t, h, http.MethodGet, target, ""); rr.Code != http.StatusNotFound {
				t.Fatalf("%s: expected 404, got %d", target, rr.Code)
			}
		}
	})

	t.Run("list", func(t *testing.T) {
		rr := do(t, h, http.MethodGet, "/api/v1/results?limit=2", "")
		var list []model.Summary
		decode(t, rr, &list)
		if len(list) != 2 {
			t.Fatalf("expected 2 summaries, got %d", len(list))
		}
		if rr := do(t, h, http.MethodGet, "/api/v1/results?limit=abc", ""); rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for bad limit, got %d", rr.Code)
		}
	})

	t.Run("download csv", func(t *testing.T) {
		rr := do(t, h, http.MethodGet, "/api/v1/results/"+first.ID+"/download?format=csv", "")
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "classification_q1.csv") {
			t.Fatalf("unexpected Content-Disposition %q", cd)
		}
		rows, err := csv.NewReader(rr.Body).ReadAll()
		if err != nil {
			t.Fatalf("read csv: %v", err)
		}
		if len(rows) < 2 || rows[1][0] != first.ID {
			t.Fatalf("unexpected rows %v", rows)
		}
	})

	t.Run("download bad format", func(t *testing.T) {
		if rr := do(t, h, http.MethodGet, "/api/v1/results/"+first.ID+"/download?format=xml", ""); rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rr.Code)
		}
	})

	t.Run("similar", func(t *testing.T) {
		rr := do(t, h, http.MethodGet, "/api/v1/results/"+first.ID+"/similar?top=3", "")
		var got SimilarPayload
		decode(t, rr, &got)
		if rr.Code != http.StatusOK || len(got.Results) != 1 || got.Results[0].SequenceID != "q2" {
			t.Fatalf("unexpected similar %d %+v", rr.Code, got)
		}
		if rr := do(t, h, http.MethodGet, "/api/v1/results/"+plain.ID+"/similar", ""); rr.Code != http.StatusNotFound {
			t.Fatalf("expected 404 without embedding, got %d", rr.Code)
		}
	})

	t.Run("profile", func(t *testing.T) {
		rr := do(t, h, http.MethodGet, "/api/v1/results/"+first.ID+"/profile.svg", "")
		if rr.Code != http.StatusOK || rr.Header().Get("Content-Type") != "image/svg+xml" {
			t.Fatalf("unexpected %d %s", rr.Code, rr.Header().Get("Content-Type"))
		}
		if !strings.Contains(rr.Body.String(), "<svg") {
			t.Fatalf("body is not svg")
		}
	})

	t.Run("page", func(t *testing.T) {
		rr := do(t, h, http.MethodGet, "/result/"+first.ID, "")
		if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "q1") {
			t.Fatalf("unexpected page %d", rr.Code)
		}
	})
}

func TestBatch(t *testing.T) {
	_, h := newTestApp(t)

	fasta := ">good1\nMKTAYIAKQRQISFVKSHFSRQLEERLGLIEVQ\n>short\nMKT\n>good2\nLLLLLLLLLLLLLLLLLLLL\n"
	rr := do(t, h, http.MethodPost, "/api/v1/batch?use_embedding=false", fasta)
	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rr.Code, rr.Body.String())
	}
	var job BatchJob
	decode(t, rr, &job)
	if job.ID == "" || job.Total != 3 {
		t.Fatalf("unexpected job %+v", job)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		rr = do(t, h, http.MethodGet, "/api/v1/batch/"+job.ID, "")
		decode(t, rr, &job)
		if job.Status == BatchJobCompleted || job.Status == BatchJobFailed {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job did not finish: %+v", job)
		}
		time.Sleep(10 * time.Millisecond)
	}

	if job.Status != BatchJobCompleted || job.Completed != 3 {
		t.Fatalf("unexpected final job %+v", job)
	}
	if len(job.ResultIDs) != 2 || len(job.Errors) != 1 || job.Errors[0].SequenceID != "short" {
		t.Fatalf("unexpected outcome ids=%v errors=%v", job.ResultIDs, job.Errors)
	}

	for _, id := range job.ResultIDs {
		if rr := do(t, h, http.MethodGet, "/api/v1/results/"+id, ""); rr.Code != http.StatusOK {
			t.Fatalf("stored result %s: got %d", id, rr.Code)
		}
	}
}

func TestBatchRejectsEmptyBody(t *testing.T) {
	_, h := newTestApp(t)

	if rr := do(t, h, http.MethodPost, "/api/v1/batch", ""); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if rr := do(t, h, http.MethodPost, "/api/v1/batch?use_embedding=maybe", ">a\nMKTAYIAKQR\n"); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if rr := do(t, h, http.MethodGet, "/api/v1/batch/unknown", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}
