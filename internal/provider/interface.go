package provider

import (
	"context"
	"errors"
)

// Provider is the interface every remote series catalog implements
type Provider interface {
	// Identification
	Name() string
	Description() string

	// Capability discovery
	Capabilities() ProviderCapabilities

	// Configuration
	Configure(config map[string]interface{}) error

	// Search returns every series the catalog matches for the request name.
	Search(ctx context.Context, request SearchRequest) ([]Candidate, error)
	// Series returns a show with its full episode list. An unknown ID is a
	// *ProviderError with code NOT_FOUND.
	Series(ctx context.Context, request SeriesRequest) (*Show, error)
}

// ProviderCapabilities describes what a provider can do
type ProviderCapabilities struct {
	RequiresAuth bool // Whether an API key is required
	Priority     int  // Default priority for this provider (higher = preferred)
}

// SearchRequest asks a catalog for series matching a name
type SearchRequest struct {
	Name     string
	Language string // Preferred language, e.g. "en"
}

// SeriesRequest asks a catalog for one series by its catalog ID
type SeriesRequest struct {
	ID       int
	Language string
}

// Candidate is one series returned by a search
type Candidate struct {
	ID          int
	Name        string
	Language    string
	Year        string
	Rating      float64
	RatingCount int
	Provider    string
}

// Popularity is 1 - Rating/RatingCount when the candidate has ratings, 0 otherwise.
// It is intentionally not clamped: catalogs with an average on a 0..10 scale and
// few votes produce negative values.
func (c Candidate) Popularity() float64 {
	if c.RatingCount <= 0 {
		return 0
	}
	return 1 - c.Rating/float64(c.RatingCount)
}

// Episode is one episode record of a show
type Episode struct {
	Season int
	Number int
	Title  string
	Show   string
}

// Show is a resolved series with its episode list
type Show struct {
	ID       int
	Name     string
	Episodes []Episode
}

// Error codes shared by providers
const (
	CodeNotFound    = "NOT_FOUND"
	CodeAuthFailed  = "AUTH_FAILED"
	CodeRateLimited = "RATE_LIMITED"
	CodeUnavailable = "SERVICE_UNAVAILABLE"
	CodeAPIError    = "API_ERROR"
)

// ProviderError represents an error from a provider
type ProviderError struct {
	Provider   string
	Code       string
	Message    string
	Retry      bool
	RetryAfter int // Seconds to wait before retry
}

func (e *ProviderError) Error() string {
	return e.Message
}

// IsNotFound reports whether err is a provider not-found error.
func IsNotFound(err error) bool {
	var perr *ProviderError
	return errors.As(err, &perr) && perr.Code == CodeNotFound
}
