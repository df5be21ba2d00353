package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/domain"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/mapping"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// MappingService edits the mapping database and saves it after every
// change.
type MappingService struct {
	repo   repository.GroupRepository
	mirror repository.GroupRepository

	mu     sync.Mutex
	editor *mapping.Editor
}

// NewMappingService creates the service. mirror may be nil.
func NewMappingService(repo repository.GroupRepository, mirror repository.GroupRepository) *MappingService {
	return &MappingService{
		repo:   repo,
		mirror: mirror,
		editor: mapping.NewEditor(domain.MappingDatabase{}),
	}
}

// Load reads the stored database. A read failure is logged and leaves an
// empty database.
func (s *MappingService) Load(ctx context.Context) {
	db, err := s.repo.LoadDatabase(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to load mapping database")
		db = domain.MappingDatabase{}
	}

	s.mu.Lock()
	s.editor = mapping.NewEditor(db)
	s.mu.Unlock()
}

// Groups returns every group in order.
func (s *MappingService) Groups() []domain.MappingGroup {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.Database().Groups
}

func (s *MappingService) Group(id string) (domain.MappingGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.Group(id)
}

func (s *MappingService) AddGroup(ctx context.Context, name string) (domain.MappingGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.editor.AddGroup(name)
	if err != nil {
		return domain.MappingGroup{}, err
	}
	return g, s.save(ctx)
}

func (s *MappingService) RenameGroup(ctx context.Context, id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.editor.RenameGroup(id, name); err != nil {
		return err
	}
	return s.save(ctx)
}

func (s *MappingService) UpdateGroup(ctx context.Context, id string, u mapping.GroupUpdate) (domain.MappingGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.editor.UpdateGroup(id, u)
	if err != nil {
		return domain.MappingGroup{}, err
	}
	return g, s.save(ctx)
}

func (s *MappingService) DeleteGroup(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.editor.DeleteGroup(id); err != nil {
		return err
	}
	return s.save(ctx)
}

func (s *MappingService) AddVariation(ctx context.Context, id string, kind mapping.VariationKind, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.editor.AddVariation(id, kind, value); err != nil {
		return err
	}
	return s.save(ctx)
}

func (s *MappingService) RemoveVariation(ctx context.Context, id string, kind mapping.VariationKind, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, err := s.editor.RemoveVariation(id, kind, value)
	if err != nil || !removed {
		return err
	}
	return s.save(ctx)
}

// Import replaces the database with one group per product.
func (s *MappingService) Import(ctx context.Context, products []domain.UnifiedProduct) ([]domain.MappingGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.editor = mapping.NewEditor(mapping.FromProducts(products))
	if err := s.save(ctx); err != nil {
		return nil, err
	}
	log.Info().Int("groups", len(products)).Msg("mapping database rebuilt from products")
	return s.editor.Database().Groups, nil
}

// save writes the primary store and the mirror concurrently. Only a primary
// failure is returned.
func (s *MappingService) save(ctx context.Context) error {
	db := s.editor.Database()

	var g errgroup.Group
	g.Go(func() error {
		if err := s.repo.SaveDatabase(ctx, db); err != nil {
			return fmt.Errorf("failed to save mapping database: %w", err)
		}
		return nil
	})
	if s.mirror != nil {
		g.Go(func() error {
			if err := s.mirror.SaveDatabase(ctx, db); err != nil {
				log.Warn().Err(err).Msg("failed to mirror mapping database")
			}
			return nil
		})
	}

	return g.Wait()
}
