package tvdb

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Digital-Shane/scrappy/internal/provider"
	tvdbapi "github.com/dashotv/tvdb"
	"github.com/dashotv/tvdb/openapi/models/operations"
	"github.com/dashotv/tvdb/openapi/models/shared"
	"golang.org/x/text/language"
)

const (
	providerName = "tvdb"

	// maxSeasons bounds the season walk for series whose episode listing never
	// comes back empty
	maxSeasons = 100
)

// TVDBClient captures the dashotv client methods used by this provider.
type TVDBClient interface {
	GetSearchResults(request operations.GetSearchResultsRequest) (*tvdbapi.GetSearchResultsResponse, error)
	GetSeriesExtended(id float64, meta *operations.GetSeriesExtendedQueryParamMeta, short *bool) (*tvdbapi.GetSeriesExtendedResponse, error)
	GetSeriesEpisodes(request operations.GetSeriesEpisodesRequest) (*tvdbapi.GetSeriesEpisodesResponse, error)
}

// Provider implements the provider.Provider interface for TVDB.
type Provider struct {
	client TVDBClient
	apiKey string
}

// New creates a new TVDB provider instance.
func New() *Provider {
	return &Provider{}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return providerName
}

// Description returns the provider description.
func (p *Provider) Description() string {
	return "TheTVDB series catalog"
}

// Capabilities returns what this provider can do.
func (p *Provider) Capabilities() provider.ProviderCapabilities {
	return provider.ProviderCapabilities{
		RequiresAuth: true,
		Priority:     90,
	}
}

// Configure logs in with the api_key from config.
func (p *Provider) Configure(config map[string]interface{}) error {
	apiKeyRaw, ok := config["api_key"].(string)
	if !ok {
		return fmt.Errorf("api_key is required")
	}

	apiKey := strings.TrimSpace(apiKeyRaw)
	if apiKey == "" {
		return fmt.Errorf("api_key is required")
	}

	client, err := tvdbapi.Login(apiKey)
	if err != nil {
		return p.mapError(err)
	}

	p.apiKey = apiKey
	p.client = client

	return nil
}

// Search lists the series TVDB matches for the request name. TVDB search results
// carry no vote data, so every candidate has zero popularity.
func (p *Provider) Search(ctx context.Context, request provider.SearchRequest) ([]provider.Candidate, error) {
	if p.client == nil {
		return nil, fmt.Errorf("provider not configured")
	}

	query := strings.TrimSpace(request.Name)
	if query == "" {
		return nil, &provider.ProviderError{Provider: providerName, Code: "INVALID_REQUEST", Message: "series search requires a title", Retry: false}
	}

	lang := searchLanguage(request.Language)
	candidates, err := p.search(query, lang)
	if err != nil || len(candidates) > 0 || lang == nil {
		return candidates, err
	}
	// The language filter can hide the only match; search once more without it.
	return p.search(query, nil)
}

func (p *Provider) search(query string, lang *string) ([]provider.Candidate, error) {
	req := operations.GetSearchResultsRequest{Query: &query, Language: lang}
	typeSeries := "series"
	req.Type = &typeSeries

	resp, err := p.client.GetSearchResults(req)
	if err != nil {
		return nil, p.mapError(err)
	}
	if resp == nil {
		return nil, nil
	}

	candidates := make([]provider.Candidate, 0, len(resp.Data))
	for _, result := range resp.Data {
		if t := pointerToString(result.Type); t != "" && !strings.EqualFold(t, "series") {
			continue
		}
		r := toSearchRecord(result)
		if r.ID == 0 {
			continue
		}
		candidates = append(candidates, provider.Candidate{
			ID:       int(r.ID),
			Name:     r.Name,
			Language: r.Language,
			Year:     r.Year,
			Provider: providerName,
		})
	}
	return candidates, nil
}

// searchLanguage converts a BCP 47 tag to the ISO 639-3 code TVDB filters on.
func searchLanguage(lang string) *string {
	if strings.TrimSpace(lang) == "" {
		return nil
	}
	tag, err := language.Parse(strings.ReplaceAll(lang, "_", "-"))
	if err != nil {
		return nil
	}
	base, _ := tag.Base()
	code := base.ISO3()
	return &code
}

// Series fetches the series name and walks the official season order until a
// season comes back empty. Specials (season 0) are optional.
func (p *Provider) Series(ctx context.Context, request provider.SeriesRequest) (*provider.Show, error) {
	if p.client == nil {
		return nil, fmt.Errorf("provider not configured")
	}

	resp, err := p.client.GetSeriesExtended(float64(request.ID), nil, nil)
	if err != nil {
		return nil, p.mapError(err)
	}
	if resp == nil || resp.Data == nil {
		return nil, &provider.ProviderError{Provider: providerName, Code: provider.CodeNotFound, Message: fmt.Sprintf("series %d not found", request.ID), Retry: false}
	}

	show := &provider.Show{ID: request.ID, Name: pointerToString(resp.Data.Name)}
	for season := 0; season <= maxSeasons; season++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		episodes, err := p.seasonEpisodes(request.ID, season)
		if err != nil {
			if season == 0 {
				continue
			}
			return nil, fmt.Errorf("season %d: %w", season, err)
		}
		if len(episodes) == 0 {
			if season == 0 {
				continue
			}
			break
		}

		for _, e := range episodes {
			if e.Number == nil {
				continue
			}
			show.Episodes = append(show.Episodes, provider.Episode{
				Season: season,
				Number: int(*e.Number),
				Title:  pointerToString(e.Name),
				Show:   show.Name,
			})
		}
	}

	return show, nil
}

func (p *Provider) seasonEpisodes(id, season int) ([]shared.EpisodeBaseRecord, error) {
	seasonNum := int64(season)
	resp, err := p.client.GetSeriesEpisodes(operations.GetSeriesEpisodesRequest{
		ID:         float64(id),
		SeasonType: "official",
		Season:     &seasonNum,
		Page:       0,
	})
	if err != nil {
		return nil, p.mapError(err)
	}
	if resp == nil || resp.Data == nil {
		return nil, nil
	}
	return resp.Data.Episodes, nil
}

type searchRecord struct {
	ID       int64
	Name     string
	Language string
	Year     string
}

func toSearchRecord(result shared.SearchResult) *searchRecord {
	id := parseInt64(pointerToString(result.TvdbID))
	if id == 0 {
		id = parseInt64(pointerToString(result.ID))
	}

	name := firstNonEmptyString(pointerToString(result.Name), pointerToString(result.NameTranslated), pointerToString(result.Title))
	year := pointerToString(result.Year)

	lang := pointerToString(result.PrimaryLanguage)

	return &searchRecord{ID: id, Name: name, Language: lang, Year: year}
}

func pointerToString(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}

func parseInt64(value string) int64 {
	parsed, _ := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	return parsed
}

func firstNonEmptyString(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func (p *Provider) mapError(err error) error {
	if err == nil {
		return nil
	}

	msg := err.Error()
	lower := strings.ToLower(msg)

	switch {
	case strings.Contains(lower, "401"), strings.Contains(lower, "unauthorized"), strings.Contains(lower, "apikey"):
		return &provider.ProviderError{Provider: providerName, Code: provider.CodeAuthFailed, Message: "TVDB authentication failed: " + msg, Retry: false}
	case strings.Contains(lower, "429"), strings.Contains(lower, "too many"):
		return &provider.ProviderError{Provider: providerName, Code: provider.CodeRateLimited, Message: msg, Retry: true, RetryAfter: 5}
	case strings.Contains(lower, "404"), strings.Contains(lower, "not found"):
		return &provider.ProviderError{Provider: providerName, Code: provider.CodeNotFound, Message: msg, Retry: false}
	case strings.Contains(lower, "503"), strings.Contains(lower, "unavailable"):
		return &provider.ProviderError{Provider: providerName, Code: provider.CodeUnavailable, Message: msg, Retry: true, RetryAfter: 30}
	default:
		return &provider.ProviderError{Provider: providerName, Code: provider.CodeAPIError, Message: msg, Retry: false}
	}
}
