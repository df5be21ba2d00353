package mapping

import (
	"errors"
	"testing"

	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/domain"
)

func TestAddGroup(t *testing.T) {
	e := NewEditor(domain.MappingDatabase{})

	g, err := e.AddGroup("  Bearings ")
	if err != nil {
		t.Fatalf("AddGroup failed: %v", err)
	}
	if g.ID == "" || g.Name != "Bearings" || g.PrimaryName != "Bearings" {
		t.Errorf("Unexpected group %+v", g)
	}

	if _, err := e.AddGroup("bearings"); !errors.Is(err, domain.ErrDuplicateGroupName) {
		t.Errorf("Expected ErrDuplicateGroupName, got %v", err)
	}
	if _, err := e.AddGroup("   "); !errors.Is(err, domain.ErrEmptyGroupName) {
		t.Errorf("Expected ErrEmptyGroupName, got %v", err)
	}
	if n := len(e.Database().Groups); n != 1 {
		t.Errorf("Expected 1 group, got %d", n)
	}
}

func TestRenameGroup(t *testing.T) {
	e := NewEditor(domain.MappingDatabase{})
	a, _ := e.AddGroup("A")
	b, _ := e.AddGroup("B")

	if err := e.RenameGroup(a.ID, "a"); err != nil {
		t.Errorf("Expected renaming to the same name in another case to succeed, got %v", err)
	}
	if err := e.RenameGroup(b.ID, "A"); !errors.Is(err, domain.ErrDuplicateGroupName) {
		t.Errorf("Expected ErrDuplicateGroupName, got %v", err)
	}
	if err := e.RenameGroup("missing", "C"); !errors.Is(err, domain.ErrGroupNotFound) {
		t.Errorf("Expected ErrGroupNotFound, got %v", err)
	}

	got, _ := e.Group(a.ID)
	if got.Name != "a" {
		t.Errorf("Expected name a, got %q", got.Name)
	}
}

func TestUpdateGroup(t *testing.T) {
	e := NewEditor(domain.MappingDatabase{})
	g, _ := e.AddGroup("Belts")

	article := " B-100 "
	primary := "V-belt 100"
	got, err := e.UpdateGroup(g.ID, GroupUpdate{UnifiedArticle: &article, PrimaryName: &primary})
	if err != nil {
		t.Fatalf("UpdateGroup failed: %v", err)
	}
	if got.UnifiedArticle != "B-100" || got.PrimaryName != primary || got.Name != "Belts" {
		t.Errorf("Unexpected group %+v", got)
	}
}

func TestVariations(t *testing.T) {
	e := NewEditor(domain.MappingDatabase{})
	g, _ := e.AddGroup("Nuts")

	if err := e.AddVariation(g.ID, ArticleVariation, "n-8"); err != nil {
		t.Fatalf("AddVariation failed: %v", err)
	}
	if err := e.AddVariation(g.ID, ArticleVariation, "N-8"); !errors.Is(err, domain.ErrDuplicateVariation) {
		t.Errorf("Expected ErrDuplicateVariation, got %v", err)
	}
	if err := e.AddVariation(g.ID, NameVariation, " "); !errors.Is(err, domain.ErrEmptyVariation) {
		t.Errorf("Expected ErrEmptyVariation, got %v", err)
	}
	if err := e.AddVariation(g.ID, NameVariation, "Nut M8"); err != nil {
		t.Fatalf("AddVariation failed: %v", err)
	}

	removed, err := e.RemoveVariation(g.ID, ArticleVariation, "n-8")
	if err != nil || !removed {
		t.Errorf("Expected variation removed, got %v, %v", removed, err)
	}
	removed, _ = e.RemoveVariation(g.ID, ArticleVariation, "n-8")
	if removed {
		t.Error("Expected second removal to report false")
	}

	got, _ := e.Group(g.ID)
	if len(got.ArticleVariations) != 0 || len(got.NameVariations) != 1 {
		t.Errorf("Unexpected variations %+v", got)
	}
}

func TestDeleteGroup(t *testing.T) {
	e := NewEditor(domain.MappingDatabase{})
	a, _ := e.AddGroup("A")
	b, _ := e.AddGroup("B")

	if err := e.DeleteGroup(a.ID); err != nil {
		t.Fatalf("DeleteGroup failed: %v", err)
	}
	groups := e.Database().Groups
	if len(groups) != 1 || groups[0].ID != b.ID {
		t.Errorf("Expected only B left, got %+v", groups)
	}
	if err := e.DeleteGroup(a.ID); !errors.Is(err, domain.ErrGroupNotFound) {
		t.Errorf("Expected ErrGroupNotFound, got %v", err)
	}
}

func TestEditorDoesNotAliasInput(t *testing.T) {
	db := domain.MappingDatabase{Groups: []domain.MappingGroup{{ID: "1", Name: "A", NameVariations: []string{"x"}}}}
	e := NewEditor(db)
	if err := e.AddVariation("1", NameVariation, "y"); err != nil {
		t.Fatal(err)
	}
	if len(db.Groups[0].NameVariations) != 1 {
		t.Errorf("Expected input database untouched, got %v", db.Groups[0].NameVariations)
	}
}
