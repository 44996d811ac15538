package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"curator/internal/media"
)

// MovieDetails models the TMDB movie payload with keywords appended.
type MovieDetails struct {
	ID                  int64    `json:"id"`
	Title               string   `json:"title"`
	Budget              *int64   `json:"budget"`
	Revenue             *int64   `json:"revenue"`
	VoteAverage         *float64 `json:"vote_average"`
	VoteCount           int64    `json:"vote_count"`
	ReleaseDate         string   `json:"release_date"`
	Tagline             string   `json:"tagline"`
	Keywords            struct {
		Keywords []Keyword `json:"keywords"`
	} `json:"keywords"`
	ProductionCompanies []Company `json:"production_companies"`
}

// Keyword is a single TMDB keyword entry.
type Keyword struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Company is a single TMDB production company entry.
type Company struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type searchResponse struct {
	Results []struct {
		ID int64 `json:"id"`
	} `json:"results"`
}

// Enricher defines the TMDB operations used by enrichment resolution.
type Enricher interface {
	MovieEnrichment(ctx context.Context, tmdbID string) (*media.Enrichment, error)
	FindMovieID(ctx context.Context, title string, year int) (string, error)
}

// Client provides access to the TMDB API.
type Client struct {
	apiKey     string
	baseURL    string
	language   string
	httpClient *http.Client
}

var _ Enricher = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a TMDB client.
func New(apiKey, baseURL, language string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("tmdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tmdb base url required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   strings.TrimSpace(language),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// GetMovie fetches movie details with keywords appended in one request.
func (c *Client) GetMovie(ctx context.Context, tmdbID string) (*MovieDetails, error) {
	tmdbID = strings.TrimSpace(tmdbID)
	if tmdbID == "" {
		return nil, errors.New("tmdb id must not be empty")
	}
	endpoint, err := url.Parse(c.baseURL + "/movie/" + url.PathEscape(tmdbID))
	if err != nil {
		return nil, fmt.Errorf("parse tmdb url: %w", err)
	}
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("append_to_response", "keywords")
	if c.language != "" {
		params.Set("language", c.language)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tmdb movie %s returned %d (latency=%v)", tmdbID, resp.StatusCode, latency)
	}

	var payload MovieDetails
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode tmdb response: %w", err)
	}
	return &payload, nil
}

// MovieEnrichment fetches details for a movie and maps them to the
// enrichment snapshot used by scoring and evaluation. A reported budget of
// zero means "unknown" in TMDB data and maps to nil.
func (c *Client) MovieEnrichment(ctx context.Context, tmdbID string) (*media.Enrichment, error) {
	details, err := c.GetMovie(ctx, tmdbID)
	if err != nil {
		return nil, err
	}

	enrichment := &media.Enrichment{TMDBID: details.ID}
	if details.Budget != nil && *details.Budget > 0 {
		enrichment.Budget = details.Budget
	}
	if details.VoteAverage != nil && *details.VoteAverage > 0 {
		enrichment.VoteAverage = details.VoteAverage
	}
	for _, kw := range details.Keywords.Keywords {
		if kw.Name != "" {
			enrichment.Keywords = append(enrichment.Keywords, kw.Name)
		}
	}
	for _, company := range details.ProductionCompanies {
		if company.Name != "" {
			enrichment.ProductionCompanies = append(enrichment.ProductionCompanies, company.Name)
		}
	}
	return enrichment, nil
}

// FindMovieID searches for a movie by title (and year when known) and
// returns the best match's TMDB ID, or "" when nothing matched.
func (c *Client) FindMovieID(ctx context.Context, title string, year int) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", errors.New("title must not be empty")
	}
	endpoint, err := url.Parse(c.baseURL + "/search/movie")
	if err != nil {
		return "", fmt.Errorf("parse tmdb url: %w", err)
	}
	params := url.Values{}
	params.Set("query", title)
	params.Set("api_key", c.apiKey)
	if year > 0 {
		params.Set("year", strconv.Itoa(year))
	}
	if c.language != "" {
		params.Set("language", c.language)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("tmdb search returned %d", resp.StatusCode)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode tmdb response: %w", err)
	}
	if len(payload.Results) == 0 {
		return "", nil
	}
	return strconv.FormatInt(payload.Results[0].ID, 10), nil
}
