package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"focusforge/internal/modules/bestiary/domain"
	bestiaryout "focusforge/internal/modules/bestiary/port/out"
	apperrors "focusforge/internal/platform/errors"
)

// BestiaryService caches the catalog after the first successful load. A failed
// load is retried on the next access instead of being papered over with
// hardcoded data.
type BestiaryService struct {
	source bestiaryout.CatalogSource

	mu      sync.Mutex
	catalog domain.Catalog
	loaded  bool
}

func NewBestiaryService(source bestiaryout.CatalogSource) *BestiaryService {
	return &BestiaryService{source: source}
}

func (s *BestiaryService) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	catalog, err := s.source.Load(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrMonstersNotLoaded, err)
	}
	if err := catalog.Validate(); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrMonstersNotLoaded, err)
	}
	s.catalog = catalog
	s.loaded = true
	return nil
}

func (s *BestiaryService) Monster(ctx context.Context, id string) (domain.Monster, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return domain.Monster{}, err
	}
	monster, ok := s.catalog.Monsters[id]
	if !ok {
		return domain.Monster{}, fmt.Errorf("%w: %s", apperrors.ErrInvalidMonster, id)
	}
	return monster, nil
}

func (s *BestiaryService) ListMonsters(ctx context.Context) ([]domain.Monster, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	out := make([]domain.Monster, 0, len(s.catalog.Monsters))
	for _, m := range s.catalog.Monsters {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].HP != out[j].HP {
			return out[i].HP < out[j].HP
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *BestiaryService) XPConfig(ctx context.Context) (domain.XPConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return domain.XPConfig{}, err
	}
	return s.catalog.XP, nil
}
