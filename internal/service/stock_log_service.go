package service

import (
	"strings"

	"github.com/loyalty-next/internal/constants"
	"github.com/loyalty-next/internal/models"
	"github.com/loyalty-next/internal/repository"
)

// StockLogService 库存日志服务（只追加的审计流水）
type StockLogService struct {
	repo repository.StockLogRepository
}

// NewStockLogService 创建库存日志服务
func NewStockLogService(repo repository.StockLogRepository) *StockLogService {
	return &StockLogService{repo: repo}
}

// Record 追加一条库存变更日志
func (s *StockLogService) Record(log *models.StockLog) error {
	switch log.Action {
	case constants.StockActionAdd, constants.StockActionUpdate, constants.StockActionRemove:
	default:
		return ErrStockLogActionInvalid
	}
	if strings.TrimSpace(log.Reason) == "" {
		log.Reason = "Stock Added"
	}
	return s.repo.Create(log)
}

// List 分页查询库存日志
func (s *StockLogService) List(filter repository.StockLogListFilter) ([]models.StockLog, int64, error) {
	return s.repo.List(filter)
}
