package services

import (
	"cmp"
	"slices"

	"github.com/zatekoja/akutvagt/backend/internal/domain/entities"
	"github.com/zatekoja/akutvagt/backend/pkg/geo"
)

// RankingService orders service providers for display
type RankingService struct{}

// NewRankingService creates a new ranking service
func NewRankingService() *RankingService {
	return &RankingService{}
}

// Rank filters providers by category and, when the user location is known,
// orders them nearest first. Providers without coordinates follow those with
// a distance, in their original relative order. Without a user location the
// filtered list keeps insertion order.
//
// The input slice and its elements are never modified; the result holds
// copies with DistanceKm recomputed for this call.
func (s *RankingService) Rank(providers []*entities.ServiceProvider, category string, user *entities.Location) []*entities.ServiceProvider {
	result := make([]*entities.ServiceProvider, 0, len(providers))
	for _, p := range providers {
		if p == nil || !matchesCategory(p, category) {
			continue
		}
		c := p.Clone()
		c.DistanceKm = nil
		if user != nil {
			if loc, ok := c.Coordinates(); ok {
				d := DistanceBetween(*user, loc)
				c.DistanceKm = &d
			}
		}
		result = append(result, c)
	}

	if user == nil {
		return result
	}

	slices.SortStableFunc(result, func(a, b *entities.ServiceProvider) int {
		switch {
		case a.DistanceKm != nil && b.DistanceKm != nil:
			return cmp.Compare(*a.DistanceKm, *b.DistanceKm)
		case a.DistanceKm != nil:
			return -1
		case b.DistanceKm != nil:
			return 1
		default:
			return 0
		}
	})
	return result
}

// DistanceBetween returns the rounded great-circle distance in kilometers
func DistanceBetween(a, b entities.Location) float64 {
	return geo.Distance(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
}

func matchesCategory(p *entities.ServiceProvider, category string) bool {
	return entities.IsAllCategories(category) || string(p.Category) == category
}
