// internal/listing/service.go
package listing

import (
	"context"
	"fmt"
	"strings"

	"loan-review-console/internal/cache"
	"loan-review-console/internal/common/logger"
	"loan-review-console/internal/models"
	"loan-review-console/internal/normalize"
)

// ListFetcher retrieves the raw review queue payload from the backend.
type ListFetcher interface {
	FetchApplications(ctx context.Context, params map[string]string) (interface{}, error)
}

// Query narrows the returned rows. Empty fields match everything.
type Query struct {
	Search    string
	Status    string
	RiskLevel string
}

// Service serves the review queue listing. Raw payloads are normalized once
// and cached briefly; filters run in memory over the normalized rows so the
// semantics stay identical whether the backend honored the query or not.
type Service struct {
	fetcher    ListFetcher
	normalizer *normalize.Normalizer
	cache      *cache.ListCache
	logger     logger.Logger
}

func NewService(fetcher ListFetcher, normalizer *normalize.Normalizer, listCache *cache.ListCache, log logger.Logger) *Service {
	return &Service{
		fetcher:    fetcher,
		normalizer: normalizer,
		cache:      listCache,
		logger:     log,
	}
}

// List returns the normalized review queue, narrowed by the query.
func (s *Service) List(ctx context.Context, q Query) ([]models.ListRow, error) {
	rows, err := s.rows(ctx)
	if err != nil {
		return nil, err
	}
	return filterRows(rows, q), nil
}

// Stats summarizes the full queue, ignoring any query narrowing.
func (s *Service) Stats(ctx context.Context) (models.Stats, error) {
	rows, err := s.rows(ctx)
	if err != nil {
		return models.Stats{}, err
	}

	stats := models.Stats{
		Total:            len(rows),
		ByStatus:         map[models.Status]int{},
		RiskDistribution: map[models.RiskTier]float64{},
	}

	tierCounts := map[models.RiskTier]int{}
	for _, row := range rows {
		stats.ByStatus[row.Status]++
		tierCounts[row.RiskLevel]++
	}
	if stats.Total > 0 {
		for tier, count := range tierCounts {
			stats.RiskDistribution[tier] = float64(count) * 100 / float64(stats.Total)
		}
	}

	return stats, nil
}

const listCacheKey = "review:list"

func (s *Service) rows(ctx context.Context) ([]models.ListRow, error) {
	var rows []models.ListRow
	if s.cache != nil && s.cache.Get(ctx, listCacheKey, &rows) {
		return rows, nil
	}

	payload, err := s.fetcher.FetchApplications(ctx, nil)
	if err != nil {
		return nil, err
	}

	rows = s.normalizer.NormalizeList(payload)
	if s.cache != nil {
		s.cache.Set(ctx, listCacheKey, rows)
	}

	s.logger.Debug("Review queue loaded", map[string]interface{}{"count": len(rows)})
	return rows, nil
}

func filterRows(rows []models.ListRow, q Query) []models.ListRow {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	status := strings.TrimSpace(q.Status)
	risk := strings.TrimSpace(q.RiskLevel)

	if search == "" && status == "" && risk == "" {
		return rows
	}

	filtered := make([]models.ListRow, 0, len(rows))
	for _, row := range rows {
		if status != "" && row.Status != models.ParseStatus(status) {
			continue
		}
		if risk != "" && row.RiskLevel != models.ParseRiskTier(risk) {
			continue
		}
		if search != "" && !matchesSearch(row, search) {
			continue
		}
		filtered = append(filtered, row)
	}
	return filtered
}

func matchesSearch(row models.ListRow, search string) bool {
	haystack := strings.ToLower(fmt.Sprintf(
		"%s %s %s %s",
		row.ApplicationID, row.BeneficiaryName, row.BeneficiaryID, row.LoanType,
	))
	return strings.Contains(haystack, search)
}
