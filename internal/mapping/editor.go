// Package mapping edits the persisted correspondence between raw product
// names, raw article codes and unified articles.
package mapping

import (
	"fmt"
	"strings"

	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/domain"
	"github.com/google/uuid"
)

// VariationKind selects the variation list of a group.
type VariationKind string

const (
	NameVariation    VariationKind = "name"
	ArticleVariation VariationKind = "article"
)

// GroupUpdate carries the unified values to apply to a group. Nil fields are
// left unchanged.
type GroupUpdate struct {
	Name           *string `json:"Name,omitempty"`
	UnifiedArticle *string `json:"UnifiedArticle,omitempty"`
	PrimaryName    *string `json:"PrimaryName,omitempty"`
}

// Editor applies edits to a mapping database. It is not safe for concurrent
// use.
type Editor struct {
	groups []domain.MappingGroup
	newID  func() string
}

// NewEditor creates an editor over a copy of db.
func NewEditor(db domain.MappingDatabase) *Editor {
	groups := make([]domain.MappingGroup, len(db.Groups))
	for i, g := range db.Groups {
		groups[i] = cloneGroup(g)
	}
	return &Editor{groups: groups, newID: uuid.NewString}
}

// Database returns a copy of the edited database.
func (e *Editor) Database() domain.MappingDatabase {
	groups := make([]domain.MappingGroup, len(e.groups))
	for i, g := range e.groups {
		groups[i] = cloneGroup(g)
	}
	return domain.MappingDatabase{Groups: groups}
}

// Group returns the group with the given id.
func (e *Editor) Group(id string) (domain.MappingGroup, error) {
	i, err := e.index(id)
	if err != nil {
		return domain.MappingGroup{}, err
	}
	return cloneGroup(e.groups[i]), nil
}

// AddGroup creates an empty group whose primary name is its name.
func (e *Editor) AddGroup(name string) (domain.MappingGroup, error) {
	name = strings.TrimSpace(name)
	if err := e.checkName(name, ""); err != nil {
		return domain.MappingGroup{}, err
	}

	g := domain.MappingGroup{
		ID:                e.newID(),
		Name:              name,
		PrimaryName:       name,
		NameVariations:    []string{},
		ArticleVariations: []string{},
	}
	e.groups = append(e.groups, g)
	return cloneGroup(g), nil
}

// RenameGroup changes the display name of a group.
func (e *Editor) RenameGroup(id, name string) error {
	i, err := e.index(id)
	if err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if err := e.checkName(name, id); err != nil {
		return err
	}
	e.groups[i].Name = name
	return nil
}

// UpdateGroup applies new unified values and, optionally, a new name.
func (e *Editor) UpdateGroup(id string, u GroupUpdate) (domain.MappingGroup, error) {
	i, err := e.index(id)
	if err != nil {
		return domain.MappingGroup{}, err
	}
	if u.Name != nil {
		if err := e.RenameGroup(id, *u.Name); err != nil {
			return domain.MappingGroup{}, err
		}
	}
	if u.UnifiedArticle != nil {
		e.groups[i].UnifiedArticle = strings.TrimSpace(*u.UnifiedArticle)
	}
	if u.PrimaryName != nil {
		e.groups[i].PrimaryName = strings.TrimSpace(*u.PrimaryName)
	}
	return cloneGroup(e.groups[i]), nil
}

// DeleteGroup removes a group.
func (e *Editor) DeleteGroup(id string) error {
	i, err := e.index(id)
	if err != nil {
		return err
	}
	e.groups = append(e.groups[:i], e.groups[i+1:]...)
	return nil
}

// AddVariation appends a name or article variation. Duplicates are detected
// ignoring case.
func (e *Editor) AddVariation(id string, kind VariationKind, value string) error {
	i, err := e.index(id)
	if err != nil {
		return err
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return domain.ErrEmptyVariation
	}

	list := e.variations(i, kind)
	for _, v := range *list {
		if strings.EqualFold(v, value) {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateVariation, value)
		}
	}
	*list = append(*list, value)
	return nil
}

// RemoveVariation removes a variation and reports whether it was present.
func (e *Editor) RemoveVariation(id string, kind VariationKind, value string) (bool, error) {
	i, err := e.index(id)
	if err != nil {
		return false, err
	}

	list := e.variations(i, kind)
	for j, v := range *list {
		if v == value {
			*list = append((*list)[:j], (*list)[j+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (e *Editor) variations(i int, kind VariationKind) *[]string {
	if kind == ArticleVariation {
		return &e.groups[i].ArticleVariations
	}
	return &e.groups[i].NameVariations
}

func (e *Editor) index(id string) (int, error) {
	for i, g := range e.groups {
		if g.ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s", domain.ErrGroupNotFound, id)
}

// checkName rejects blank names and names used by another group, ignoring
// case.
func (e *Editor) checkName(name, selfID string) error {
	if name == "" {
		return domain.ErrEmptyGroupName
	}
	for _, g := range e.groups {
		if g.ID != selfID && strings.EqualFold(g.Name, name) {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateGroupName, name)
		}
	}
	return nil
}

func cloneGroup(g domain.MappingGroup) domain.MappingGroup {
	g.NameVariations = append([]string{}, g.NameVariations...)
	g.ArticleVariations = append([]string{}, g.ArticleVariations...)
	return g
}
