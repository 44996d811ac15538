package emby_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"curator/internal/media"
	"curator/internal/services"
	"curator/internal/services/emby"
)

const usersPayload = `[
	{"Id":"guest","Policy":{"IsAdministrator":false}},
	{"Id":"admin","Policy":{"IsAdministrator":true}}
]`

func TestNewClientValidation(t *testing.T) {
	if _, err := emby.NewClient("", "key"); err == nil {
		t.Fatal("expected error when base url missing")
	}
	if _, err := emby.NewClient("http://emby.local", ""); err == nil {
		t.Fatal("expected error when api key missing")
	}
}

func TestListMoviesPagesAndMapsFields(t *testing.T) {
	var sawToken string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawToken = r.Header.Get("X-Emby-Token")
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/Users":
			_, _ = w.Write([]byte(usersPayload))
		case r.URL.Path == "/Users/admin/Items":
			if r.URL.Query().Get("StartIndex") == "0" {
				_, _ = w.Write([]byte(`{"TotalRecordCount":2,"Items":[
					{"Id":"1","Name":"Street Trash","ProductionYear":1987,
					 "CommunityRating":6.1,"Genres":["Horror"],"Tags":["cult"],
					 "ProviderIds":{"Tmdb":"27995","Imdb":"tt0094057"},
					 "Studios":[{"Name":"Lightning Pictures"}]}
				]}`))
			} else {
				_, _ = w.Write([]byte(`{"TotalRecordCount":2,"Items":[
					{"Id":"2","Name":"Chopping Mall","ProductionYear":1986}
				]}`))
			}
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)

	client := newTestClient(t, server.URL)
	movies, err := client.ListMovies(context.Background())
	if err != nil {
		t.Fatalf("ListMovies failed: %v", err)
	}
	if sawToken != "secret" {
		t.Fatalf("expected api token header, got %q", sawToken)
	}
	if len(movies) != 2 {
		t.Fatalf("expected 2 movies, got %d", len(movies))
	}
	first := movies[0]
	if first.ID != "1" || first.Title != "Street Trash" || first.Year != 1987 {
		t.Fatalf("unexpected movie: %+v", first)
	}
	if first.CommunityRating == nil || *first.CommunityRating != 6.1 {
		t.Fatalf("unexpected rating: %+v", first.CommunityRating)
	}
	if first.TMDBID != "27995" || first.IMDBID != "tt0094057" {
		t.Fatalf("provider ids not mapped: %+v", first)
	}
	if len(first.Studios) != 1 || first.Studios[0] != "Lightning Pictures" {
		t.Fatalf("studios not mapped: %+v", first.Studios)
	}
	if movies[1].CommunityRating != nil {
		t.Fatal("absent rating must stay nil, not zero")
	}
}

func TestGetCollectionRejectsNonBoxSet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/Users":
			_, _ = w.Write([]byte(usersPayload))
		case "/Users/admin/Items/9":
			_, _ = w.Write([]byte(`{"Id":"9","Name":"A Movie","Type":"Movie"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)

	client := newTestClient(t, server.URL)
	if _, err := client.GetCollection(context.Background(), "9"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found for non-BoxSet item, got %v", err)
	}
}

func TestGetCollectionNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/Users" {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(usersPayload))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	client := newTestClient(t, server.URL)
	if _, err := client.GetCollection(context.Background(), "missing"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestAddRemoveSendIDsAndClassifyWriteFailures(t *testing.T) {
	var addIDs, removeIDs string
	failWrites := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failWrites {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/Collections/7/Items":
			addIDs = r.URL.Query().Get("Ids")
		case r.Method == http.MethodDelete && r.URL.Path == "/Collections/7/Items":
			removeIDs = r.URL.Query().Get("Ids")
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(server.Close)

	client := newTestClient(t, server.URL)
	ctx := context.Background()

	if err := client.AddToCollection(ctx, "7", []media.ItemID{"1", "2"}); err != nil {
		t.Fatalf("AddToCollection failed: %v", err)
	}
	if addIDs != "1,2" {
		t.Fatalf("unexpected add ids %q", addIDs)
	}
	if err := client.RemoveFromCollection(ctx, "7", []media.ItemID{"3"}); err != nil {
		t.Fatalf("RemoveFromCollection failed: %v", err)
	}
	if removeIDs != "3" {
		t.Fatalf("unexpected remove ids %q", removeIDs)
	}

	// Empty sets must not hit the server at all.
	failWrites = true
	if err := client.AddToCollection(ctx, "7", nil); err != nil {
		t.Fatalf("empty add should be a no-op, got %v", err)
	}
	if err := client.AddToCollection(ctx, "7", []media.ItemID{"1"}); !errors.Is(err, services.ErrCollaboratorWrite) {
		t.Fatalf("expected collaborator write error, got %v", err)
	}
}

func TestUpdateOverviewRoundTripsItem(t *testing.T) {
	var posted map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/Users":
			_, _ = w.Write([]byte(usersPayload))
		case r.Method == http.MethodGet && r.URL.Path == "/Users/admin/Items/5":
			_, _ = w.Write([]byte(`{"Id":"5","Name":"Cult Corner","Type":"BoxSet","Overview":"old","LockedFields":[]}`))
		case r.Method == http.MethodPost && r.URL.Path == "/Items/5":
			if err := json.NewDecoder(r.Body).Decode(&posted); err != nil {
				t.Errorf("decode posted item: %v", err)
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)

	client := newTestClient(t, server.URL)
	if err := client.UpdateOverview(context.Background(), "5", "new overview"); err != nil {
		t.Fatalf("UpdateOverview failed: %v", err)
	}
	if posted["Overview"] != "new overview" {
		t.Fatalf("overview not updated in posted item: %v", posted["Overview"])
	}
	if posted["Name"] != "Cult Corner" {
		t.Fatal("existing item fields must be preserved on update")
	}
}

func TestCreateCollection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/Collections" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if got := r.URL.Query().Get("Name"); got != "Video Nasties" {
			t.Errorf("unexpected name %q", got)
		}
		if got := r.URL.Query().Get("Ids"); got != "1,2" {
			t.Errorf("unexpected ids %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"Id":"99"}`))
	}))
	t.Cleanup(server.Close)

	client := newTestClient(t, server.URL)
	created, err := client.CreateCollection(context.Background(), "Video Nasties", []media.ItemID{"1", "2"})
	if err != nil {
		t.Fatalf("CreateCollection failed: %v", err)
	}
	if created.ID != "99" || created.Name != "Video Nasties" {
		t.Fatalf("unexpected collection: %+v", created)
	}

	if _, err := client.CreateCollection(context.Background(), "  ", nil); err == nil {
		t.Fatal("expected error for blank name")
	}
}

func TestCollectionItems(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/Users":
			_, _ = w.Write([]byte(usersPayload))
		case "/Users/admin/Items":
			if got := r.URL.Query().Get("ParentId"); got != "7" {
				t.Errorf("unexpected parent id %q", got)
			}
			_, _ = w.Write([]byte(`{"TotalRecordCount":2,"Items":[{"Id":"a"},{"Id":"b"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)

	client := newTestClient(t, server.URL)
	ids, err := client.CollectionItems(context.Background(), "7")
	if err != nil {
		t.Fatalf("CollectionItems failed: %v", err)
	}
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Fatalf("unexpected ids: %v", ids)
	}
}

func newTestClient(t *testing.T, baseURL string) *emby.Client {
	t.Helper()
	client, err := emby.NewClient(strings.TrimRight(baseURL, "/"), "secret")
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}
