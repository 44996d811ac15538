package tmdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewValidatesInputs(t *testing.T) {
	if _, err := New("", "https://api.example.com/3", ""); err == nil {
		t.Fatal("expected error for missing api key")
	}
	if _, err := New("key", "", ""); err == nil {
		t.Fatal("expected error for missing base url")
	}
}

func TestMovieEnrichmentMapsFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/603" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		query := r.URL.Query()
		if query.Get("api_key") != "test-key" {
			t.Fatalf("unexpected api key %q", query.Get("api_key"))
		}
		if query.Get("append_to_response") != "keywords" {
			t.Fatalf("expected keywords appended, got %q", query.Get("append_to_response"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": 603,
			"title": "Chopping Mall",
			"budget": 800000,
			"vote_average": 5.9,
			"keywords": {"keywords": [{"id": 1, "name": "killer robot"}, {"id": 2, "name": "shopping mall"}]},
			"production_companies": [{"id": 9, "name": "Concorde Pictures"}]
		}`))
	}))
	defer server.Close()

	client, err := New("test-key", server.URL, "en-US")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	enrichment, err := client.MovieEnrichment(context.Background(), "603")
	if err != nil {
		t.Fatalf("MovieEnrichment returned error: %v", err)
	}
	if enrichment.TMDBID != 603 {
		t.Fatalf("unexpected tmdb id %d", enrichment.TMDBID)
	}
	if enrichment.Budget == nil || *enrichment.Budget != 800000 {
		t.Fatalf("unexpected budget %+v", enrichment.Budget)
	}
	if enrichment.VoteAverage == nil || *enrichment.VoteAverage != 5.9 {
		t.Fatalf("unexpected vote average %+v", enrichment.VoteAverage)
	}
	if len(enrichment.Keywords) != 2 || enrichment.Keywords[0] != "killer robot" {
		t.Fatalf("unexpected keywords %v", enrichment.Keywords)
	}
	if len(enrichment.ProductionCompanies) != 1 || enrichment.ProductionCompanies[0] != "Concorde Pictures" {
		t.Fatalf("unexpected companies %v", enrichment.ProductionCompanies)
	}
}

func TestMovieEnrichmentZeroBudgetMeansUnknown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": 42, "title": "Unknown Budget", "budget": 0, "vote_average": 0}`))
	}))
	defer server.Close()

	client, err := New("test-key", server.URL, "")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	enrichment, err := client.MovieEnrichment(context.Background(), "42")
	if err != nil {
		t.Fatalf("MovieEnrichment returned error: %v", err)
	}
	if enrichment.Budget != nil {
		t.Fatalf("expected nil budget for zero value, got %v", *enrichment.Budget)
	}
	if enrichment.VoteAverage != nil {
		t.Fatalf("expected nil vote average for zero value, got %v", *enrichment.VoteAverage)
	}
}

func TestMovieEnrichmentServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := New("test-key", server.URL, "")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if _, err := client.MovieEnrichment(context.Background(), "603"); err == nil {
		t.Fatal("expected error for server failure")
	}
}

func TestFindMovieID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/movie" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		query := r.URL.Query()
		if query.Get("query") != "Chopping Mall" {
			t.Fatalf("unexpected query %q", query.Get("query"))
		}
		if query.Get("year") != "1986" {
			t.Fatalf("unexpected year %q", query.Get("year"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results": [{"id": 27346}, {"id": 99}]}`))
	}))
	defer server.Close()

	client, err := New("test-key", server.URL, "")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	id, err := client.FindMovieID(context.Background(), "Chopping Mall", 1986)
	if err != nil {
		t.Fatalf("FindMovieID returned error: %v", err)
	}
	if id != "27346" {
		t.Fatalf("unexpected id %q", id)
	}
}

func TestFindMovieIDNoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results": []}`))
	}))
	defer server.Close()

	client, err := New("test-key", server.URL, "")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	id, err := client.FindMovieID(context.Background(), "Nonexistent", 0)
	if err != nil {
		t.Fatalf("FindMovieID returned error: %v", err)
	}
	if id != "" {
		t.Fatalf("expected empty id, got %q", id)
	}
}
