package sentiment_test

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"review_pulse/internal/adapters/sentiment"
	"review_pulse/internal/domain"
)

func newServer(t *testing.T, handler http.HandlerFunc) (*sentiment.Client, *httptest.Server) {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	cl, err := sentiment.New(ts.URL, 100) // high RPS for tests
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	return cl, ts
}

func predictHandler(t *testing.T, label string, score float64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/predict" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var body struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Text == "" {
			t.Errorf("bad request body: %v", err)
		}
		sentiments := map[string]string{"LABEL_0": "Neutral", "LABEL_1": "Positive", "LABEL_2": "Negative"}
		s, ok := sentiments[label]
		if !ok {
			s = label
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"input": body.Text, "label": label, "sentiment": s, "score": score,
		})
	}
}

func TestAnalyze_LabelMapping(t *testing.T) {
	cases := []struct {
		label      string
		score      float64
		normalized float64
		sentiment  string
	}{
		{"LABEL_1", 0.8, 0.8, "Positive"},
		{"LABEL_2", 0.8, 0.2, "Negative"},
		{"LABEL_0", 0.97, 0.5, "Neutral"},
		{"LABEL_9", 0.99, 0.5, "LABEL_9"},
	}
	for _, tc := range cases {
		cl, _ := newServer(t, predictHandler(t, tc.label, tc.score))
		res, err := cl.Analyze(context.Background(), "solid product, would buy again")
		if err != nil {
			t.Fatalf("%s: unexpected err: %v", tc.label, err)
		}
		if res.Label != tc.sentiment {
			t.Fatalf("%s: label = %q, want %q", tc.label, res.Label, tc.sentiment)
		}
		if math.Abs(res.Score-tc.score) > 1e-9 {
			t.Fatalf("%s: raw score = %v, want %v", tc.label, res.Score, tc.score)
		}
		if math.Abs(res.Normalized-tc.normalized) > 1e-9 {
			t.Fatalf("%s: normalized = %v, want %v", tc.label, res.Normalized, tc.normalized)
		}
	}
}

func TestAnalyze_BlankTextShortCircuits(t *testing.T) {
	var hits int32
	cl, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	})

	for _, text := range []string{"", "   ", "\n\t"} {
		res, err := cl.Analyze(context.Background(), text)
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		// zero, not the 0.5 midpoint: the upstream contract distinguishes
		// "nothing to classify" from "no signal"
		if res.Label != "neutral" || res.Score != 0 || res.Normalized != 0 {
			t.Fatalf("blank text result = %+v", res)
		}
	}
	if atomic.LoadInt32(&hits) != 0 {
		t.Fatalf("blank text must not hit the remote service, got %d calls", hits)
	}
}

func TestAnalyze_FailureSurfacesWithoutRetry(t *testing.T) {
	var hits int32
	cl, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := cl.Analyze(context.Background(), "the delivery took forever")
	if !errors.Is(err, domain.ErrEnrichmentUnavailable) {
		t.Fatalf("want ErrEnrichmentUnavailable, got %v", err)
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Fatalf("expected exactly one attempt, got %d", n)
	}
}

func TestAnalyze_MalformedResponseIsFailure(t *testing.T) {
	cl, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{not json"))
	})

	_, err := cl.Analyze(context.Background(), "works great on the first try")
	if !errors.Is(err, domain.ErrEnrichmentUnavailable) {
		t.Fatalf("want ErrEnrichmentUnavailable, got %v", err)
	}
}

func TestAnalyze_TransportErrorIsFailure(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close() // connection refused from here on

	cl, err := sentiment.New(url, 100)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err = cl.Analyze(ctx, "never arrives at the classifier")
	if !errors.Is(err, domain.ErrEnrichmentUnavailable) {
		t.Fatalf("want ErrEnrichmentUnavailable, got %v", err)
	}
}

func TestHealthy(t *testing.T) {
	cl, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "healthy", "model_loaded": true})
	})
	if !cl.Healthy(context.Background()) {
		t.Fatalf("expected healthy")
	}
}
