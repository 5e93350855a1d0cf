package search

import (
	"context"
	"log"

	"finz/api/internal/store"
)

// Service is the facade that tries Meilisearch first and falls back to
// Postgres full-text search.
type Service struct {
	meili *Meili
	pgfts *PgFTS
}

// NewService creates a search service. meili may be nil when Meilisearch
// is not configured.
func NewService(meili *Meili, pgfts *PgFTS) *Service {
	return &Service{meili: meili, pgfts: pgfts}
}

// SearchProjects tries Meilisearch if healthy, otherwise falls back to
// Postgres FTS.
func (s *Service) SearchProjects(_ context.Context, query string, limit, offset int) (map[string]any, error) {
	q := Query{Text: query, Limit: limit, Offset: offset}

	if s.meili != nil && s.meili.Healthy() {
		results, total, err := s.meili.Search(q)
		if err == nil {
			return searchPayload(query, results, total), nil
		}
		log.Printf("search: meilisearch error, falling back to pgfts: %v", err)
	}

	results, total, err := s.pgfts.Search(q)
	if err != nil {
		return nil, err
	}
	return searchPayload(query, results, total), nil
}

// IndexProject pushes one project into Meilisearch. Postgres FTS needs no
// indexing step since the tsvector column is generated.
func (s *Service) IndexProject(_ context.Context, project store.Project) error {
	if s.meili == nil || !s.meili.Healthy() {
		return nil
	}
	return s.meili.IndexProject(projectRecord(project))
}

// ReindexAll reads every project from Postgres and pushes the batch into
// Meilisearch. Run on a schedule so the index converges after outages.
func (s *Service) ReindexAll(ctx context.Context) {
	if s.meili == nil || !s.meili.Healthy() || s.pgfts == nil {
		return
	}
	records, err := s.pgfts.LoadAllRecords(ctx)
	if err != nil {
		log.Printf("search: reindex load failed: %v", err)
		return
	}
	if err := s.meili.IndexProjects(records); err != nil {
		log.Printf("search: reindex push failed: %v", err)
	}
}

func projectRecord(project store.Project) ProjectRecord {
	return ProjectRecord{
		ID:          project.ID,
		Name:        project.Name,
		Code:        project.Code,
		ClientName:  project.ClientName,
		Description: project.Description,
		BaselineID:  project.BaselineID,
		Currency:    project.Currency,
	}
}

func searchPayload(query string, results []Result, total int) map[string]any {
	if results == nil {
		results = []Result{}
	}
	return map[string]any{
		"query":   query,
		"results": results,
		"total":   total,
	}
}
