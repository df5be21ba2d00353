package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/domain"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/mapping"
	"github.com/rs/zerolog/log"
)

// MappingStore keeps the identity list and the mapping database in two
// files.
type MappingStore struct {
	itemsPath    string
	databasePath string
}

// NewMappingStore creates a store for item_mapping.json and
// mapping_database.json style files.
func NewMappingStore(itemsPath, databasePath string) *MappingStore {
	return &MappingStore{itemsPath: itemsPath, databasePath: databasePath}
}

// SaveItems replaces the identity list.
func (s *MappingStore) SaveItems(ctx context.Context, items []domain.MappingItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if items == nil {
		items = []domain.MappingItem{}
	}
	return writeJSON(s.itemsPath, items)
}

// LoadItems reads the identity list. A missing file yields an empty list.
func (s *MappingStore) LoadItems(ctx context.Context) ([]domain.MappingItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var items []domain.MappingItem
	if err := readJSON(s.itemsPath, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// SaveDatabase replaces the mapping database.
func (s *MappingStore) SaveDatabase(ctx context.Context, db domain.MappingDatabase) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if db.Groups == nil {
		db.Groups = []domain.MappingGroup{}
	}
	return writeJSON(s.databasePath, db)
}

// LoadDatabase reads the mapping database. A file holding a plain list of
// identity records, the older format, is converted into groups.
func (s *MappingStore) LoadDatabase(ctx context.Context) (domain.MappingDatabase, error) {
	if err := ctx.Err(); err != nil {
		return domain.MappingDatabase{}, err
	}

	data, err := os.ReadFile(s.databasePath)
	if errors.Is(err, os.ErrNotExist) {
		return domain.MappingDatabase{Groups: []domain.MappingGroup{}}, nil
	}
	if err != nil {
		return domain.MappingDatabase{}, fmt.Errorf("failed reading %s: %w", s.databasePath, err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []domain.MappingItem
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return domain.MappingDatabase{}, fmt.Errorf("failed decoding legacy mapping %s: %w", s.databasePath, err)
		}
		log.Info().Str("file", s.databasePath).Int("items", len(items)).Msg("converting legacy mapping list")
		return mapping.FromItems(items), nil
	}

	var db domain.MappingDatabase
	if err := json.Unmarshal(trimmed, &db); err != nil {
		return domain.MappingDatabase{}, fmt.Errorf("failed decoding %s: %w", s.databasePath, err)
	}
	if db.Groups == nil {
		db.Groups = []domain.MappingGroup{}
	}
	return db, nil
}
