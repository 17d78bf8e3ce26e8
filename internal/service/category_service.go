package service

import (
	"fmt"
	"strings"

	"github.com/loyalty-next/internal/constants"
	"github.com/loyalty-next/internal/models"
	"github.com/loyalty-next/internal/repository"
)

// CategoryService 商品分类服务
type CategoryService struct {
	repo repository.CategoryRepository
}

// NewCategoryService 创建分类服务
func NewCategoryService(repo repository.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

// CategoryInput 创建/更新分类输入
type CategoryInput struct {
	Name            string
	Status          string
	MetaTitle       string
	MetaDescription string
	Operator        string
}

// Get 获取分类详情
func (s *CategoryService) Get(id uint) (*models.Category, error) {
	category, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}
	return category, nil
}

// List 分页查询分类
func (s *CategoryService) List(page, pageSize int, status, search string) ([]models.Category, int64, error) {
	return s.repo.List(page, pageSize, status, search)
}

// Create 创建分类，slug 由名称生成并保证唯一
func (s *CategoryService) Create(input CategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrCategoryNameRequired
	}

	slug, err := s.uniqueSlug(name, 0)
	if err != nil {
		return nil, err
	}

	category := &models.Category{
		Name:            name,
		Slug:            slug,
		Status:          normalizeStatus(input.Status),
		MetaTitle:       strings.TrimSpace(input.MetaTitle),
		MetaDescription: strings.TrimSpace(input.MetaDescription),
		AddedBy:         strings.TrimSpace(input.Operator),
	}
	if err := s.repo.Create(category); err != nil {
		return nil, err
	}
	return category, nil
}

// Update 更新分类，名称变化时重新生成 slug
func (s *CategoryService) Update(id uint, input CategoryInput) (*models.Category, error) {
	category, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrCategoryNameRequired
	}

	if name != category.Name {
		slug, err := s.uniqueSlug(name, id)
		if err != nil {
			return nil, err
		}
		category.Slug = slug
	}
	category.Name = name
	category.Status = normalizeStatus(input.Status)
	category.MetaTitle = strings.TrimSpace(input.MetaTitle)
	category.MetaDescription = strings.TrimSpace(input.MetaDescription)
	category.UpdatedBy = strings.TrimSpace(input.Operator)

	if err := s.repo.Update(category); err != nil {
		return nil, err
	}
	return category, nil
}

// Delete 软删除分类
func (s *CategoryService) Delete(id uint) error {
	category, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if category == nil {
		return ErrCategoryNotFound
	}
	return s.repo.SoftDelete(id)
}

// uniqueSlug 由名称生成 slug，冲突时追加序号
func (s *CategoryService) uniqueSlug(name string, excludeID uint) (string, error) {
	base := slugify(name)
	if base == "" {
		return "", ErrCategoryNameRequired
	}
	slug := base
	for i := 2; ; i++ {
		count, err := s.repo.CountBySlug(slug, excludeID)
		if err != nil {
			return "", err
		}
		if count == 0 {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

// slugify 名称转 slug：小写、非字母数字折叠为连字符
func slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func normalizeStatus(status string) string {
	if strings.TrimSpace(status) == constants.StatusInactive {
		return constants.StatusInactive
	}
	return constants.StatusActive
}
