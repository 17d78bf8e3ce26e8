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

func setupStockLogServiceTest(t *testing.T) (*StockLogService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:stock_log_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.StockLog{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	return NewStockLogService(repository.NewStockLogRepository(db)), db
}

func TestStockLogRecord(t *testing.T) {
	svc, _ := setupStockLogServiceTest(t)

	log := &models.StockLog{
		StoreID:         1,
		ProductID:       10,
		CategoryID:      2,
		Action:          constants.StockActionAdd,
		QuantityChanged: 50,
		PerformedID:     7,
		PerformedBy:     "admin",
	}
	if err := svc.Record(log); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if log.Reason != "Stock Added" {
		t.Fatalf("expected default reason, got %q", log.Reason)
	}

	if err := svc.Record(&models.StockLog{
		StoreID:   1,
		ProductID: 10,
		Action:    "DESTROY",
	}); !errors.Is(err, ErrStockLogActionInvalid) {
		t.Fatalf("expected invalid action rejected, got: %v", err)
	}
}

func TestStockLogList(t *testing.T) {
	svc, _ := setupStockLogServiceTest(t)

	for i := 0; i < 3; i++ {
		if err := svc.Record(&models.StockLog{
			StoreID:         1,
			ProductID:       uint(10 + i),
			CategoryID:      2,
			Action:          constants.StockActionUpdate,
			QuantityChanged: i,
			Reason:          "盘点修正",
			PerformedID:     7,
		}); err != nil {
			t.Fatalf("record failed: %v", err)
		}
	}

	logs, total, err := svc.List(repository.StockLogListFilter{ProductID: 11, Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || len(logs) != 1 || logs[0].ProductID != 11 {
		t.Fatalf("unexpected list result: total=%d logs=%+v", total, logs)
	}
}
