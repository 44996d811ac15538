package emby

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"curator/internal/media"
	"curator/internal/services"
)

// movieFields is the field set requested when listing movies. It matches
// what criteria evaluation needs and deliberately excludes heavy payloads
// like Overview and MediaSources.
const movieFields = "Genres,Tags,ProviderIds,CommunityRating,ProductionYear,Studios"

// listPageSize bounds a single Items request; large libraries page through.
const listPageSize = 500

// HTTPDoer describes the HTTP client used by the Emby service.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the Emby REST API. Requests authenticate with the
// X-Emby-Token header; user-scoped endpoints resolve the first
// administrator account once and reuse it.
type Client struct {
	baseURL string
	apiKey  string
	client  HTTPDoer

	userMu sync.Mutex
	userID string
}

var _ Library = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		if doer != nil {
			c.client = doer
		}
	}
}

// NewClient creates an Emby API client.
func NewClient(baseURL, apiKey string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("emby base url required")
	}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("emby api key required")
	}
	client := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type itemsResponse struct {
	Items            []json.RawMessage `json:"Items"`
	TotalRecordCount int               `json:"TotalRecordCount"`
}

type movieItem struct {
	ID              string            `json:"Id"`
	Name            string            `json:"Name"`
	Type            string            `json:"Type"`
	ProductionYear  int               `json:"ProductionYear"`
	CommunityRating *float64          `json:"CommunityRating"`
	Genres          []string          `json:"Genres"`
	Tags            []string          `json:"Tags"`
	ProviderIDs     map[string]string `json:"ProviderIds"`
	Studios         []struct {
		Name string `json:"Name"`
	} `json:"Studios"`
}

type collectionItem struct {
	ID       string `json:"Id"`
	Name     string `json:"Name"`
	Type     string `json:"Type"`
	Overview string `json:"Overview"`
}

// ListMovies returns a snapshot of every movie in the library, paging
// through the Items endpoint.
func (c *Client) ListMovies(ctx context.Context) ([]media.Movie, error) {
	userID, err := c.resolveUserID(ctx)
	if err != nil {
		return nil, err
	}

	var movies []media.Movie
	offset := 0
	for {
		params := url.Values{}
		params.Set("IncludeItemTypes", "Movie")
		params.Set("Recursive", "true")
		params.Set("Fields", movieFields)
		params.Set("StartIndex", strconv.Itoa(offset))
		params.Set("Limit", strconv.Itoa(listPageSize))

		var page itemsResponse
		if err := c.get(ctx, "/Users/"+userID+"/Items", params, &page); err != nil {
			return nil, services.Wrap(services.ErrTransient, "emby", "list movies", "", err)
		}
		for _, raw := range page.Items {
			var item movieItem
			if err := json.Unmarshal(raw, &item); err != nil {
				return nil, services.Wrap(services.ErrTransient, "emby", "list movies", "decode item", err)
			}
			movies = append(movies, item.toMovie())
		}
		offset += len(page.Items)
		if len(page.Items) == 0 || offset >= page.TotalRecordCount {
			break
		}
	}
	return movies, nil
}

// ListCollections returns every BoxSet with its overview text.
func (c *Client) ListCollections(ctx context.Context) ([]media.Collection, error) {
	userID, err := c.resolveUserID(ctx)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("IncludeItemTypes", "BoxSet")
	params.Set("Recursive", "true")
	params.Set("Fields", "Overview")

	var page itemsResponse
	if err := c.get(ctx, "/Users/"+userID+"/Items", params, &page); err != nil {
		return nil, services.Wrap(services.ErrTransient, "emby", "list collections", "", err)
	}

	collections := make([]media.Collection, 0, len(page.Items))
	for _, raw := range page.Items {
		var item collectionItem
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, services.Wrap(services.ErrTransient, "emby", "list collections", "decode item", err)
		}
		collections = append(collections, media.Collection{
			ID:       media.ItemID(item.ID),
			Name:     item.Name,
			Overview: item.Overview,
		})
	}
	return collections, nil
}

// GetCollection fetches a single collection with its overview.
func (c *Client) GetCollection(ctx context.Context, id media.ItemID) (*media.Collection, error) {
	userID, err := c.resolveUserID(ctx)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("Fields", "Overview")

	var item collectionItem
	if err := c.get(ctx, "/Users/"+userID+"/Items/"+string(id), params, &item); err != nil {
		if errors.Is(err, errStatusNotFound) {
			return nil, services.Wrap(services.ErrNotFound, "emby", "get collection", string(id), nil)
		}
		return nil, services.Wrap(services.ErrTransient, "emby", "get collection", string(id), err)
	}
	if item.Type != "BoxSet" {
		return nil, services.Wrap(services.ErrNotFound, "emby", "get collection", fmt.Sprintf("item %s is %s, not a collection", id, item.Type), nil)
	}
	return &media.Collection{
		ID:       media.ItemID(item.ID),
		Name:     item.Name,
		Overview: item.Overview,
	}, nil
}

// CollectionItems returns the IDs of the collection's current members.
func (c *Client) CollectionItems(ctx context.Context, id media.ItemID) ([]media.ItemID, error) {
	userID, err := c.resolveUserID(ctx)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("ParentId", string(id))

	var page itemsResponse
	if err := c.get(ctx, "/Users/"+userID+"/Items", params, &page); err != nil {
		return nil, services.Wrap(services.ErrTransient, "emby", "collection items", string(id), err)
	}
	ids := make([]media.ItemID, 0, len(page.Items))
	for _, raw := range page.Items {
		var item struct {
			ID string `json:"Id"`
		}
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, services.Wrap(services.ErrTransient, "emby", "collection items", "decode item", err)
		}
		ids = append(ids, media.ItemID(item.ID))
	}
	return ids, nil
}

// CreateCollection creates a BoxSet, optionally seeded with items.
func (c *Client) CreateCollection(ctx context.Context, name string, ids []media.ItemID) (*media.Collection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("collection name required")
	}
	params := url.Values{}
	params.Set("Name", name)
	if len(ids) > 0 {
		params.Set("Ids", joinIDs(ids))
	}

	var created struct {
		ID string `json:"Id"`
	}
	if err := c.send(ctx, http.MethodPost, "/Collections", params, nil, &created); err != nil {
		return nil, services.Wrap(services.ErrCollaboratorWrite, "emby", "create collection", name, err)
	}
	return &media.Collection{ID: media.ItemID(created.ID), Name: name, ItemIDs: ids}, nil
}

// DeleteCollection removes a BoxSet from the server.
func (c *Client) DeleteCollection(ctx context.Context, id media.ItemID) error {
	if err := c.send(ctx, http.MethodDelete, "/Items/"+string(id), nil, nil, nil); err != nil {
		return services.Wrap(services.ErrCollaboratorWrite, "emby", "delete collection", string(id), err)
	}
	return nil
}

// AddToCollection adds items to a collection. A nil or empty set is a no-op.
func (c *Client) AddToCollection(ctx context.Context, id media.ItemID, items []media.ItemID) error {
	if len(items) == 0 {
		return nil
	}
	params := url.Values{}
	params.Set("Ids", joinIDs(items))
	if err := c.send(ctx, http.MethodPost, "/Collections/"+string(id)+"/Items", params, nil, nil); err != nil {
		return services.Wrap(services.ErrCollaboratorWrite, "emby", "add items", string(id), err)
	}
	return nil
}

// RemoveFromCollection removes items from a collection. Empty set is a no-op.
func (c *Client) RemoveFromCollection(ctx context.Context, id media.ItemID, items []media.ItemID) error {
	if len(items) == 0 {
		return nil
	}
	params := url.Values{}
	params.Set("Ids", joinIDs(items))
	if err := c.send(ctx, http.MethodDelete, "/Collections/"+string(id)+"/Items", params, nil, nil); err != nil {
		return services.Wrap(services.ErrCollaboratorWrite, "emby", "remove items", string(id), err)
	}
	return nil
}

// UpdateOverview rewrites a collection's overview text. Emby's item update
// endpoint replaces the whole item, so the current item payload is fetched
// first and posted back with only the overview changed.
func (c *Client) UpdateOverview(ctx context.Context, id media.ItemID, overview string) error {
	userID, err := c.resolveUserID(ctx)
	if err != nil {
		return err
	}

	var item map[string]any
	if err := c.get(ctx, "/Users/"+userID+"/Items/"+string(id), url.Values{"Fields": {"Overview"}}, &item); err != nil {
		return services.Wrap(services.ErrCollaboratorWrite, "emby", "update overview", "fetch item "+string(id), err)
	}
	item["Overview"] = overview

	body, err := json.Marshal(item)
	if err != nil {
		return services.Wrap(services.ErrCollaboratorWrite, "emby", "update overview", "encode item", err)
	}
	params := url.Values{}
	params.Set("reqformat", "json")
	if err := c.send(ctx, http.MethodPost, "/Items/"+string(id), params, body, nil); err != nil {
		return services.Wrap(services.ErrCollaboratorWrite, "emby", "update overview", string(id), err)
	}
	return nil
}

// resolveUserID finds the first administrator account, caching the result
// for the lifetime of the client.
func (c *Client) resolveUserID(ctx context.Context) (string, error) {
	c.userMu.Lock()
	defer c.userMu.Unlock()
	if c.userID != "" {
		return c.userID, nil
	}

	var users []struct {
		ID     string `json:"Id"`
		Policy struct {
			IsAdministrator bool `json:"IsAdministrator"`
		} `json:"Policy"`
	}
	if err := c.get(ctx, "/Users", nil, &users); err != nil {
		return "", services.Wrap(services.ErrTransient, "emby", "resolve user", "", err)
	}
	if len(users) == 0 {
		return "", services.Wrap(services.ErrConfiguration, "emby", "resolve user", "server reported no users", nil)
	}
	c.userID = users[0].ID
	for _, user := range users {
		if user.Policy.IsAdministrator {
			c.userID = user.ID
			break
		}
	}
	return c.userID, nil
}

var errStatusNotFound = errors.New("emby returned 404")

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, params, nil, out)
}

func (c *Client) send(ctx context.Context, method, path string, params url.Values, body []byte, out any) error {
	return c.do(ctx, method, path, params, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body []byte, out any) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Emby-Token", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errStatusNotFound
	case resp.StatusCode >= http.StatusMultipleChoices:
		return fmt.Errorf("emby %s %s returned %d", method, path, resp.StatusCode)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode emby response: %w", err)
	}
	return nil
}

func (m movieItem) toMovie() media.Movie {
	movie := media.Movie{
		ID:              media.ItemID(m.ID),
		Title:           m.Name,
		Year:            m.ProductionYear,
		CommunityRating: m.CommunityRating,
		Genres:          m.Genres,
		Tags:            m.Tags,
	}
	if m.ProviderIDs != nil {
		movie.TMDBID = m.ProviderIDs["Tmdb"]
		movie.IMDBID = m.ProviderIDs["Imdb"]
	}
	for _, studio := range m.Studios {
		if studio.Name != "" {
			movie.Studios = append(movie.Studios, studio.Name)
		}
	}
	return movie
}

func joinIDs(ids []media.ItemID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ",")
}
