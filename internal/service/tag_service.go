package service

import (
	"strings"

	"github.com/loyalty-next/internal/constants"
	"github.com/loyalty-next/internal/models"
	"github.com/loyalty-next/internal/repository"

	"gorm.io/gorm"
)

// TagService 客户标签服务
//
// 标签是活动目标条件的客户侧依据，绑定关系的增删
// 会同步维护标签上的冗余客户计数。
type TagService struct {
	repo repository.TagRepository
}

// NewTagService 创建标签服务
func NewTagService(repo repository.TagRepository) *TagService {
	return &TagService{repo: repo}
}

// TagInput 创建/更新标签输入
type TagInput struct {
	Name        string
	DisplayName string
	Description string
	Category    string
	Color       string
	IsActive    *bool
	Operator    string
}

// Get 获取标签详情
func (s *TagService) Get(id uint) (*models.Tag, error) {
	tag, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if tag == nil {
		return nil, ErrTagNotFound
	}
	return tag, nil
}

// List 分页查询标签
func (s *TagService) List(filter repository.TagListFilter) ([]models.Tag, int64, error) {
	return s.repo.List(filter)
}

// Create 创建标签，名称统一小写且唯一
func (s *TagService) Create(input TagInput) (*models.Tag, error) {
	name := strings.ToLower(strings.TrimSpace(input.Name))
	if name == "" {
		return nil, ErrTagNameRequired
	}
	existing, err := s.repo.GetByName(name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrTagNameExists
	}

	display := strings.TrimSpace(input.DisplayName)
	if display == "" {
		display = input.Name
	}
	tag := &models.Tag{
		Name:        name,
		DisplayName: display,
		Description: strings.TrimSpace(input.Description),
		Category:    normalizeTagCategory(input.Category),
		IsActive:    true,
		CreatedBy:   strings.TrimSpace(input.Operator),
	}
	if color := strings.TrimSpace(input.Color); color != "" {
		tag.Color = color
	}
	if input.IsActive != nil {
		tag.IsActive = *input.IsActive
	}
	if err := s.repo.Create(tag); err != nil {
		return nil, err
	}
	return tag, nil
}

// Update 更新标签
func (s *TagService) Update(id uint, input TagInput) (*models.Tag, error) {
	tag, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if tag == nil {
		return nil, ErrTagNotFound
	}

	if name := strings.ToLower(strings.TrimSpace(input.Name)); name != "" && name != tag.Name {
		existing, err := s.repo.GetByName(name)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, ErrTagNameExists
		}
		tag.Name = name
	}
	if display := strings.TrimSpace(input.DisplayName); display != "" {
		tag.DisplayName = display
	}
	if input.Description != "" {
		tag.Description = strings.TrimSpace(input.Description)
	}
	if input.Category != "" {
		tag.Category = normalizeTagCategory(input.Category)
	}
	if color := strings.TrimSpace(input.Color); color != "" {
		tag.Color = color
	}
	if input.IsActive != nil {
		tag.IsActive = *input.IsActive
	}
	if err := s.repo.Update(tag); err != nil {
		return nil, err
	}
	return tag, nil
}

// Delete 软删除标签
func (s *TagService) Delete(id uint) error {
	tag, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if tag == nil {
		return ErrTagNotFound
	}
	return s.repo.SoftDelete(id)
}

// AssignToCustomer 为客户绑定标签（幂等）
func (s *TagService) AssignToCustomer(userID, tagID uint) error {
	tag, err := s.repo.GetByID(tagID)
	if err != nil {
		return err
	}
	if tag == nil {
		return ErrTagNotFound
	}
	if !tag.IsActive {
		return ErrTagInactive
	}
	return s.repo.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		added, err := repo.AddMember(userID, tagID)
		if err != nil {
			return err
		}
		if !added {
			return nil
		}
		return repo.AdjustCustomerCount(tagID, 1)
	})
}

// RemoveFromCustomer 解除客户标签绑定（幂等）
func (s *TagService) RemoveFromCustomer(userID, tagID uint) error {
	return s.repo.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		removed, err := repo.RemoveMember(userID, tagID)
		if err != nil {
			return err
		}
		if !removed {
			return nil
		}
		return repo.AdjustCustomerCount(tagID, -1)
	})
}

// CustomerTagIDs 获取客户当前绑定的标签ID
func (s *TagService) CustomerTagIDs(userID uint) ([]uint, error) {
	return s.repo.TagIDsByUser(userID)
}

func normalizeTagCategory(category string) string {
	switch strings.ToLower(strings.TrimSpace(category)) {
	case constants.TagCategoryPreference:
		return constants.TagCategoryPreference
	case constants.TagCategoryBehavior:
		return constants.TagCategoryBehavior
	case constants.TagCategoryDemographic:
		return constants.TagCategoryDemographic
	case constants.TagCategoryEngagement:
		return constants.TagCategoryEngagement
	default:
		return constants.TagCategoryOther
	}
}
