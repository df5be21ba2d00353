// backend-go/internal/domain/mapping.go
package domain

// MappingItem is the flat identity record stored in item_mapping.json.
type MappingItem struct {
	UnifiedArticle    string   `json:"UnifiedArticle"`
	PrimaryName       string   `json:"PrimaryName"`
	NameVariations    []string `json:"NameVariations"`
	ArticleVariations []string `json:"ArticleVariations"`
}

// MappingGroup is an operator-managed correspondence between raw names,
// raw article codes and a unified article.
type MappingGroup struct {
	ID                string   `json:"Id" db:"id"`
	Name              string   `json:"Name" db:"name"`
	UnifiedArticle    string   `json:"UnifiedArticle" db:"unified_article"`
	PrimaryName       string   `json:"PrimaryName" db:"primary_name"`
	NameVariations    []string `json:"NameVariations" db:"-"`
	ArticleVariations []string `json:"ArticleVariations" db:"-"`
}

// MappingDatabase is the persisted set of mapping groups.
type MappingDatabase struct {
	Groups []MappingGroup `json:"Groups"`
}

// Item converts the group into its flat identity record.
func (g MappingGroup) Item() MappingItem {
	return MappingItem{
		UnifiedArticle:    g.UnifiedArticle,
		PrimaryName:       g.PrimaryName,
		NameVariations:    append([]string{}, g.NameVariations...),
		ArticleVariations: append([]string{}, g.ArticleVariations...),
	}
}

// Items flattens every group of the database.
func (db MappingDatabase) Items() []MappingItem {
	items := make([]MappingItem, 0, len(db.Groups))
	for _, g := range db.Groups {
		items = append(items, g.Item())
	}
	return items
}
