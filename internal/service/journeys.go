package service

import (
	"context"
	"fmt"
	"strings"

	apperrors "busline/internal/errors"
	"busline/internal/logger"
	"busline/internal/models"
	"busline/internal/repository"
)

type JourneyService struct {
	journeyRepo *repository.JourneyRepository
	index       JourneyIndex
	cache       SearchCache
	metrics     Metrics
}

func NewJourneyService(journeyRepo *repository.JourneyRepository, index JourneyIndex, cache SearchCache, metrics Metrics) *JourneyService {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &JourneyService{
		journeyRepo: journeyRepo,
		index:       index,
		cache:       cache,
		metrics:     metrics,
	}
}

// Search returns journeys from origin to destination on date. Matching is
// case-insensitive on places and exact on the date. No match is not an error.
func (s *JourneyService) Search(ctx context.Context, from, to string, date models.Date) ([]models.Journey, error) {
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	if from == "" || to == "" {
		return nil, apperrors.Validation("origin and destination are required")
	}
	if date.IsZero() {
		return nil, apperrors.Validation("journey date is required")
	}

	log := logger.WithContext(ctx)
	key := searchKey(from, to, date)

	if s.cache != nil {
		journeys, ok, err := s.cache.GetJourneys(ctx, key)
		if err != nil {
			log.Warn("Search cache lookup failed", "key", key, "error", err)
		} else if ok {
			s.metrics.ObserveSearch("cache")
			return journeys, nil
		}
	}

	journeys, source, err := s.lookup(ctx, from, to, date)
	if err != nil {
		return nil, apperrors.Infrastructure(err, "failed to search journeys")
	}
	s.metrics.ObserveSearch(source)

	if s.cache != nil {
		if err := s.cache.SetJourneys(ctx, key, journeys); err != nil {
			log.Warn("Failed to cache search result", "key", key, "error", err)
		}
	}

	return journeys, nil
}

// lookup asks the index first when there is one. Postgres answers when the
// index fails or has no hits; a journey may not be indexed yet.
func (s *JourneyService) lookup(ctx context.Context, from, to string, date models.Date) ([]models.Journey, string, error) {
	if s.index != nil {
		journeys, err := s.index.SearchJourneys(ctx, from, to, date)
		switch {
		case err != nil:
			logger.WithContext(ctx).Warn("Journey index search failed, falling back to database", "error", err)
		case len(journeys) > 0:
			return journeys, "elasticsearch", nil
		}
	}

	journeys, err := s.journeyRepo.Search(ctx, from, to, date)
	return journeys, "database", err
}

// searchKey quotes the places so a separator inside a name cannot collide.
func searchKey(from, to string, date models.Date) string {
	return fmt.Sprintf("%q|%q|%s", strings.ToLower(from), strings.ToLower(to), date)
}
