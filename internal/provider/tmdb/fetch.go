package tmdb

import (
	"context"
	"fmt"

	"github.com/Digital-Shane/scrappy/internal/provider"
)

// Search lists every TV series TMDB matches for the request name. Search
// results carry no original language, so candidates leave Language unset and
// are never dropped by a language preference.
func (p *Provider) Search(ctx context.Context, request provider.SearchRequest) ([]provider.Candidate, error) {
	if p.client == nil {
		return nil, fmt.Errorf("provider not configured")
	}

	language := p.getLanguage(request.Language)
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	results, err := p.client.SearchTv(request.Name, map[string]string{"language": language})
	if err != nil {
		return nil, p.mapError(err)
	}
	if results == nil {
		return nil, nil
	}

	candidates := make([]provider.Candidate, 0, len(results.Results))
	for _, r := range results.Results {
		year := ""
		if len(r.FirstAirDate) >= 4 {
			year = r.FirstAirDate[:4]
		}
		candidates = append(candidates, provider.Candidate{
			ID:          r.ID,
			Name:        r.Name,
			Year:        year,
			Rating:      float64(r.VoteAverage),
			RatingCount: int(r.VoteCount),
			Provider:    providerName,
		})
	}
	return candidates, nil
}

// Series fetches the show and the episodes of every season, including specials
func (p *Provider) Series(ctx context.Context, request provider.SeriesRequest) (*provider.Show, error) {
	if p.client == nil {
		return nil, fmt.Errorf("provider not configured")
	}

	options := map[string]string{"language": p.getLanguage(request.Language)}
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	info, err := p.client.GetTvInfo(request.ID, options)
	if err != nil {
		return nil, p.mapError(err)
	}
	if info == nil {
		return nil, &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeNotFound,
			Message:  fmt.Sprintf("no series found for id %d", request.ID),
		}
	}

	show := &provider.Show{ID: request.ID, Name: info.Name}
	for number := 0; number <= info.NumberOfSeasons; number++ {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		season, err := p.client.GetTvSeasonInfo(request.ID, number, options)
		if err != nil {
			// Many shows have no specials season
			if number == 0 {
				continue
			}
			return nil, fmt.Errorf("season %d: %w", number, p.mapError(err))
		}
		if season == nil {
			continue
		}

		for _, ep := range season.Episodes {
			show.Episodes = append(show.Episodes, provider.Episode{
				Season: ep.SeasonNumber,
				Number: ep.EpisodeNumber,
				Title:  ep.Name,
				Show:   info.Name,
			})
		}
	}

	return show, nil
}

func (p *Provider) getLanguage(language string) string {
	if language != "" {
		return language
	}
	return p.language
}
