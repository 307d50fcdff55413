package safety

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func fixedRand(value int) RandFunc {
	return func() int { return value }
}

func TestResolveScores_WrappedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"safetyScores":{"Saket":8.5,"Dwarka":3}}`))
	}))
	defer server.Close()

	p := NewProvider(server.URL, time.Second, fixedRand(7))
	scores := p.ResolveScores(context.Background(), []string{"Saket", "Dwarka", "Mehrauli"})

	if scores["Saket"] != 8.5 {
		t.Errorf("Saket score = %v, want 8.5", scores["Saket"])
	}
	if scores["Dwarka"] != 3 {
		t.Errorf("Dwarka score = %v, want 3", scores["Dwarka"])
	}
	// Mehrauli missing from the response gets the synthetic fallback
	if scores["Mehrauli"] != 7 {
		t.Errorf("Mehrauli score = %v, want synthetic 7", scores["Mehrauli"])
	}
}

func TestResolveScores_BarePayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Saket":6}`))
	}))
	defer server.Close()

	p := NewProvider(server.URL, time.Second, fixedRand(2))
	scores := p.ResolveScores(context.Background(), []string{"Saket"})

	if scores["Saket"] != 6 {
		t.Errorf("Saket score = %v, want 6", scores["Saket"])
	}
}

func TestResolveScores_MalformedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`"not a score map"`))
	}))
	defer server.Close()

	p := NewProvider(server.URL, time.Second, fixedRand(4))
	scores := p.ResolveScores(context.Background(), []string{"Saket", "Dwarka"})

	for _, name := range []string{"Saket", "Dwarka"} {
		if scores[name] != 4 {
			t.Errorf("%s score = %v, want synthetic 4", name, scores[name])
		}
	}
}

func TestResolveScores_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	p := NewProvider(server.URL, time.Second, fixedRand(9))
	scores := p.ResolveScores(context.Background(), []string{"Saket"})

	if scores["Saket"] != 9 {
		t.Errorf("Saket score = %v, want synthetic 9", scores["Saket"])
	}
}

func TestResolveScores_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"Saket":6}`))
	}))
	defer server.Close()

	p := NewProvider(server.URL, 20*time.Millisecond, fixedRand(1))

	start := time.Now()
	scores := p.ResolveScores(context.Background(), []string{"Saket"})
	elapsed := time.Since(start)

	if scores["Saket"] != 1 {
		t.Errorf("Saket score = %v, want synthetic 1", scores["Saket"])
	}
	if elapsed > 150*time.Millisecond {
		t.Errorf("timed-out resolve took %v, want bounded by the client timeout", elapsed)
	}
}

func TestResolveScores_EmptyInputSkipsFetch(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	p := NewProvider(server.URL, time.Second, fixedRand(5))
	scores := p.ResolveScores(context.Background(), nil)

	if len(scores) != 0 {
		t.Errorf("ResolveScores(nil) = %v, want empty", scores)
	}
	if called {
		t.Error("provider endpoint was called for an empty request")
	}
}

func TestResolveScores_NonFiniteValuesRejected(t *testing.T) {
	// JSON cannot encode NaN directly; a provider sending huge exponents
	// produces +Inf after decode
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"safetyScores":{"Saket":1e400}}`))
	}))
	defer server.Close()

	p := NewProvider(server.URL, time.Second, fixedRand(6))
	scores := p.ResolveScores(context.Background(), []string{"Saket"})

	if scores["Saket"] != 6 {
		t.Errorf("Saket score = %v, want synthetic 6", scores["Saket"])
	}
}

func TestResolveScores_IgnoresUnrequestedNames(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"safetyScores":{"Saket":8,"Dwarka":3}}`))
	}))
	defer server.Close()

	p := NewProvider(server.URL, time.Second, fixedRand(5))
	scores := p.ResolveScores(context.Background(), []string{"Saket"})

	if len(scores) != 1 {
		t.Errorf("ResolveScores returned %d entries, want 1", len(scores))
	}
	if _, ok := scores["Dwarka"]; ok {
		t.Error("unrequested Dwarka present in result")
	}
}
