package tmdb

import (
	"fmt"
	"strings"
	"time"

	"github.com/Digital-Shane/scrappy/internal/provider"
	"github.com/ryanbradynd05/go-tmdb"
	"golang.org/x/time/rate"
)

const (
	providerName    = "tmdb"
	defaultLanguage = "en"

	// TMDB allows roughly 40 requests every 10 seconds
	requestsPerWindow = 38
	requestWindow     = 10 * time.Second
)

// Provider implements the provider.Provider interface for TMDB
type Provider struct {
	client   TMDBClient
	language string
	apiKey   string
	limiter  *rate.Limiter
}

// TMDBClient is the subset of *tmdb.TMDb the provider uses
type TMDBClient interface {
	SearchTv(name string, options map[string]string) (*tmdb.TvSearchResults, error)
	GetTvInfo(id int, options map[string]string) (*tmdb.TV, error)
	GetTvSeasonInfo(showID, seasonID int, options map[string]string) (*tmdb.TvSeason, error)
}

// newLimiter spreads requests so at most n land in any window, allowing a
// burst of n up front.
func newLimiter(n int, window time.Duration) *rate.Limiter {
	return rate.NewLimiter(rate.Every(window/time.Duration(n)), n)
}

// New creates a new TMDB provider instance
func New() *Provider {
	return &Provider{
		language: defaultLanguage,
		limiter:  newLimiter(requestsPerWindow, requestWindow),
	}
}

// Name returns the provider name
func (p *Provider) Name() string {
	return providerName
}

// Description returns the provider description
func (p *Provider) Description() string {
	return "The Movie Database (TMDB) series catalog"
}

// Capabilities returns what this provider can do
func (p *Provider) Capabilities() provider.ProviderCapabilities {
	return provider.ProviderCapabilities{
		RequiresAuth: true,
		Priority:     100,
	}
}

// Configure applies configuration to the provider. api_key is required;
// language is optional.
func (p *Provider) Configure(config map[string]interface{}) error {
	apiKey, ok := config["api_key"].(string)
	if !ok || apiKey == "" {
		return fmt.Errorf("api_key is required")
	}
	p.apiKey = apiKey

	if language, ok := config["language"].(string); ok && language != "" {
		p.language = language
	}

	p.client = tmdb.Init(tmdb.Config{
		APIKey:   p.apiKey,
		Proxies:  nil,
		UseProxy: false,
	})
	return nil
}

// mapError maps TMDB errors to provider errors
func (p *Provider) mapError(err error) error {
	if err == nil {
		return nil
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "401") || strings.Contains(errStr, "unauthorized"):
		return &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeAuthFailed,
			Message:  "TMDB authentication failed: " + err.Error(),
		}
	case strings.Contains(errStr, "404") || strings.Contains(errStr, "could not be found"):
		return &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeNotFound,
			Message:  "TMDB resource not found: " + err.Error(),
		}
	case strings.Contains(errStr, "429") || strings.Contains(errStr, "rate limit"):
		return &provider.ProviderError{
			Provider:   providerName,
			Code:       provider.CodeRateLimited,
			Message:    "TMDB rate limit exceeded",
			Retry:      true,
			RetryAfter: 10,
		}
	case strings.Contains(errStr, "503") || strings.Contains(errStr, "unavailable"):
		return &provider.ProviderError{
			Provider:   providerName,
			Code:       provider.CodeUnavailable,
			Message:    "TMDB service unavailable",
			Retry:      true,
			RetryAfter: 30,
		}
	}

	return &provider.ProviderError{
		Provider: providerName,
		Code:     provider.CodeAPIError,
		Message:  "TMDB error: " + err.Error(),
	}
}
