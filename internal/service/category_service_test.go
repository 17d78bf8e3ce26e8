package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/loyalty-next/internal/constants"
	"github.com/loyalty-next/internal/models"
	"github.com/loyalty-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupCategoryServiceTest(t *testing.T) (*CategoryService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:category_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Category{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	return NewCategoryService(repository.NewCategoryRepository(db)), db
}

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Electronics", "electronics"},
		{"Home & Kitchen", "home-kitchen"},
		{"  Spaced  Out  ", "spaced-out"},
		{"Déjà Vu 2", "d-j-vu-2"},
		{"---", ""},
	}
	for _, tc := range cases {
		if got := slugify(tc.in); got != tc.want {
			t.Errorf("slugify(%q): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestCategoryCreateGeneratesUniqueSlug(t *testing.T) {
	svc, _ := setupCategoryServiceTest(t)

	first, err := svc.Create(CategoryInput{Name: "Home & Kitchen", Operator: "admin"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if first.Slug != "home-kitchen" {
		t.Fatalf("unexpected slug: %s", first.Slug)
	}
	if first.Status != constants.StatusActive {
		t.Fatalf("expected default active, got %s", first.Status)
	}

	second, err := svc.Create(CategoryInput{Name: "Home  Kitchen"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if second.Slug != "home-kitchen-2" {
		t.Fatalf("expected suffixed slug, got %s", second.Slug)
	}

	third, err := svc.Create(CategoryInput{Name: "Home-Kitchen"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if third.Slug != "home-kitchen-3" {
		t.Fatalf("expected next suffix, got %s", third.Slug)
	}
}

func TestCategoryCreateRequiresName(t *testing.T) {
	svc, _ := setupCategoryServiceTest(t)

	if _, err := svc.Create(CategoryInput{Name: "   "}); !errors.Is(err, ErrCategoryNameRequired) {
		t.Fatalf("expected name required, got: %v", err)
	}
	if _, err := svc.Create(CategoryInput{Name: "!!!"}); !errors.Is(err, ErrCategoryNameRequired) {
		t.Fatalf("expected unusable name rejected, got: %v", err)
	}
}

func TestCategoryUpdateKeepsSlugWhenNameUnchanged(t *testing.T) {
	svc, _ := setupCategoryServiceTest(t)

	category, err := svc.Create(CategoryInput{Name: "Electronics"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := svc.Update(category.ID, CategoryInput{
		Name:   "Electronics",
		Status: constants.StatusInactive,
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Slug != "electronics" {
		t.Fatalf("expected slug unchanged, got %s", updated.Slug)
	}
	if updated.Status != constants.StatusInactive {
		t.Fatalf("expected inactive, got %s", updated.Status)
	}

	renamed, err := svc.Update(category.ID, CategoryInput{Name: "Gadgets"})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if renamed.Slug != "gadgets" {
		t.Fatalf("expected regenerated slug, got %s", renamed.Slug)
	}
}

func TestCategoryDelete(t *testing.T) {
	svc, db := setupCategoryServiceTest(t)

	category, err := svc.Create(CategoryInput{Name: "Lifestyle"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := svc.Delete(category.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := svc.Get(category.ID); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("expected not found, got: %v", err)
	}
	if err := svc.Delete(category.ID); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("expected not found on repeat delete, got: %v", err)
	}

	var count int64
	if err := db.Unscoped().Model(&models.Category{}).Where("id = ?", category.ID).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected soft-deleted row retained, got %d", count)
	}
}
