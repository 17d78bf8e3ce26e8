package service

import (
	"net/url"
	"strings"

	"github.com/loyalty-next/internal/constants"
	"github.com/loyalty-next/internal/models"
	"github.com/loyalty-next/internal/repository"
)

// ContentService 运营内容区块服务
type ContentService struct {
	repo repository.ContentRepository
}

// NewContentService 创建内容区块服务
func NewContentService(repo repository.ContentRepository) *ContentService {
	return &ContentService{repo: repo}
}

// ContentInput 创建/更新内容区块输入
type ContentInput struct {
	DeviceType string
	BannerType string
	Title      string
	Image      string
	Images     []string
	Link       string
	Links      []string
	ThemeType  string
	Content    string
	Status     string
	Operator   string
}

// Get 获取内容区块详情
func (s *ContentService) Get(id uint) (*models.ContentBlock, error) {
	block, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if block == nil {
		return nil, ErrContentNotFound
	}
	return block, nil
}

// List 分页查询内容区块
func (s *ContentService) List(filter repository.ContentListFilter) ([]models.ContentBlock, int64, error) {
	return s.repo.List(filter)
}

// Create 创建内容区块，链接逐条校验
func (s *ContentService) Create(input ContentInput) (*models.ContentBlock, error) {
	block := &models.ContentBlock{}
	if err := s.applyInput(block, input); err != nil {
		return nil, err
	}
	if err := s.repo.Create(block); err != nil {
		return nil, err
	}
	return block, nil
}

// Update 更新内容区块
func (s *ContentService) Update(id uint, input ContentInput) (*models.ContentBlock, error) {
	block, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if block == nil {
		return nil, ErrContentNotFound
	}
	if err := s.applyInput(block, input); err != nil {
		return nil, err
	}
	if err := s.repo.Update(block); err != nil {
		return nil, err
	}
	return block, nil
}

// Delete 软删除内容区块
func (s *ContentService) Delete(id uint) error {
	block, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if block == nil {
		return ErrContentNotFound
	}
	return s.repo.SoftDelete(id)
}

func (s *ContentService) applyInput(block *models.ContentBlock, input ContentInput) error {
	bannerType := strings.TrimSpace(input.BannerType)
	if !validBannerType(bannerType) {
		return ErrContentTypeInvalid
	}
	if err := validateLink(input.Link); err != nil {
		return err
	}
	for _, link := range input.Links {
		if err := validateLink(link); err != nil {
			return err
		}
	}

	block.DeviceType = strings.TrimSpace(input.DeviceType)
	block.BannerType = bannerType
	block.Title = strings.TrimSpace(input.Title)
	block.Image = strings.TrimSpace(input.Image)
	block.Images = models.StringArray(input.Images)
	block.Link = strings.TrimSpace(input.Link)
	block.Links = models.StringArray(input.Links)
	block.Content = input.Content
	block.UpdatedBy = strings.TrimSpace(input.Operator)
	block.Status = normalizeStatus(input.Status)
	if theme := strings.TrimSpace(input.ThemeType); theme == constants.ContentThemeDark {
		block.ThemeType = constants.ContentThemeDark
	} else {
		block.ThemeType = constants.ContentThemeLight
	}
	return nil
}

func validBannerType(bannerType string) bool {
	switch bannerType {
	case constants.ContentBannerLanding, constants.ContentBannerFestival,
		constants.ContentBannerSubscribe, constants.ContentBannerCategorySearch,
		constants.ContentBannerNone:
		return true
	}
	return false
}

// validateLink 校验跳转链接为绝对 http(s) 地址，空值放行
func validateLink(link string) error {
	trimmed := strings.TrimSpace(link)
	if trimmed == "" {
		return nil
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return ErrContentLinkInvalid
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ErrContentLinkInvalid
	}
	if parsed.Host == "" {
		return ErrContentLinkInvalid
	}
	return nil
}
