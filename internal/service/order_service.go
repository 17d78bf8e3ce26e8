package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/loyalty-next/internal/constants"
	"github.com/loyalty-next/internal/logger"
	"github.com/loyalty-next/internal/models"
	"github.com/loyalty-next/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderService 订单服务（加成引擎的调用方）
type OrderService struct {
	orderRepo  repository.OrderRepository
	boostSvc   *BoostService
	loyaltySvc *LoyaltyService
}

// PlaceOrderInput 下单输入
type PlaceOrderInput struct {
	UserID          uint
	AddressID       uint
	Channel         string
	Items           []models.OrderItem
	Tax             models.Money
	DeliveryCharges models.Money
	DiscountValue   models.Money
	RedeemPoints    int64
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, boostSvc *BoostService, loyaltySvc *LoyaltyService) *OrderService {
	return &OrderService{
		orderRepo:  orderRepo,
		boostSvc:   boostSvc,
		loyaltySvc: loyaltySvc,
	}
}

// GetOrder 获取订单详情
func (s *OrderService) GetOrder(id uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListOrders 分页查询订单
func (s *OrderService) ListOrders(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.List(filter)
}

// PlaceOrder 创建订单并结算积分。
//
// 基础积分按订单金额折算，加成积分由引擎计算后随单落账；
// 加成落账失败时降级为仅发放基础积分，下单本身不受影响。
func (s *OrderService) PlaceOrder(input PlaceOrderInput) (*models.Order, *Resolution, error) {
	if input.UserID == 0 {
		return nil, nil, ErrOrderNotFound
	}
	if len(input.Items) == 0 {
		return nil, nil, ErrOrderItemsRequired
	}
	channel := strings.TrimSpace(input.Channel)
	if channel == "" {
		channel = constants.ChannelWebsite
	}

	orderValue := decimal.Zero
	for i := range input.Items {
		item := &input.Items[i]
		if item.Quantity <= 0 {
			item.Quantity = 1
		}
		item.TotalPrice = models.NewMoneyFromDecimal(
			item.UnitPrice.Decimal.Mul(decimal.NewFromInt(int64(item.Quantity))),
		)
		orderValue = orderValue.Add(item.TotalPrice.Decimal)
	}
	orderValue = orderValue.Sub(input.DiscountValue.Decimal)
	if orderValue.LessThan(decimal.Zero) {
		orderValue = decimal.Zero
	}

	basePoints, err := s.loyaltySvc.BasePointsForOrder(models.NewMoneyFromDecimal(orderValue))
	if err != nil {
		return nil, nil, err
	}

	order := &models.Order{
		OrderNo:         buildOrderNo(),
		UserID:          input.UserID,
		AddressID:       input.AddressID,
		Status:          constants.OrderStatusPending,
		Channel:         channel,
		OrderValue:      models.NewMoneyFromDecimal(orderValue),
		Tax:             input.Tax,
		DeliveryCharges: input.DeliveryCharges,
		DiscountValue:   input.DiscountValue,
		BasePoints:      basePoints,
		Items:           input.Items,
	}

	ctx := OrderContext{
		UserID:     input.UserID,
		Channel:    channel,
		OrderValue: order.OrderValue,
		Items:      input.Items,
		BasePoints: basePoints,
	}
	resolution, err := s.boostSvc.ResolveBoost(ctx)
	if err != nil {
		logger.Warnw("加成计算失败，按零加成下单", "user_id", input.UserID, "error", err)
		resolution = &Resolution{
			BasePoints:  basePoints,
			FinalPoints: basePoints,
			Applied:     []AppliedBoost{},
		}
	}

	recorded, err := s.settleOrder(order, ctx, resolution, input.RedeemPoints)
	if err != nil {
		return nil, nil, err
	}
	return order, recorded, nil
}

// settleOrder 创建订单并在同一事务内落账加成与积分流水。
// 加成落账失败时重试一次零加成结算。
func (s *OrderService) settleOrder(order *models.Order, ctx OrderContext, resolution *Resolution, redeemPoints int64) (*Resolution, error) {
	recorded, err := s.settleOnce(order, ctx, resolution, redeemPoints)
	if err == nil {
		return recorded, nil
	}
	if len(resolution.Applied) == 0 {
		return nil, err
	}

	logger.Warnw("加成落账失败，降级为零加成结算",
		"user_id", ctx.UserID,
		"order_no", order.OrderNo,
		"error", err,
	)
	fallback := &Resolution{
		BasePoints:  resolution.BasePoints,
		FinalPoints: resolution.BasePoints,
		Applied:     []AppliedBoost{},
	}
	// 首次事务已回滚，清掉回滚前分配的主键
	order.ID = 0
	for i := range order.Items {
		order.Items[i].ID = 0
		order.Items[i].OrderID = 0
	}
	return s.settleOnce(order, ctx, fallback, redeemPoints)
}

func (s *OrderService) settleOnce(order *models.Order, ctx OrderContext, resolution *Resolution, redeemPoints int64) (*Resolution, error) {
	var recorded *Resolution
	err := s.orderRepo.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		if order.ID == 0 {
			if err := orderRepo.Create(order); err != nil {
				return ErrOrderCreateFailed
			}
		}
		ctx.OrderID = order.ID

		if redeemPoints > 0 {
			discount, _, err := s.loyaltySvc.RedeemInTx(tx, RedeemInput{
				UserID:    ctx.UserID,
				Points:    redeemPoints,
				OrderID:   &order.ID,
				Reference: fmt.Sprintf("order:%d:redeem", order.ID),
			})
			if err != nil {
				return err
			}
			order.LoyaltyPointsUsed = redeemPoints
			order.LoyaltyDiscount = discount
			order.IsLoyaltyApplied = true
		}

		result, err := s.boostSvc.RecordUsageInTx(tx, ctx, resolution)
		if err != nil {
			return err
		}

		if _, err := s.loyaltySvc.EarnInTx(tx, EarnInput{
			UserID:     ctx.UserID,
			Points:     result.FinalPoints,
			BasePoints: result.BasePoints,
			BoostRefs:  result.BoostRefs(),
			OrderID:    &order.ID,
			Reference:  fmt.Sprintf("order:%d:earn", order.ID),
		}); err != nil {
			return err
		}

		order.BoostPoints = result.BoostPoints
		if err := orderRepo.Update(order); err != nil {
			return ErrOrderUpdateFailed
		}
		recorded = result
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recorded, nil
}

// UpdateStatus 推进订单状态
func (s *OrderService) UpdateStatus(id uint, status string) error {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return err
	}
	if order == nil {
		return ErrOrderNotFound
	}
	if !validOrderStatus(status) {
		return ErrOrderStatusInvalid
	}
	updates := map[string]interface{}{}
	if status == constants.OrderStatusDelivered {
		now := time.Now()
		updates["delivered_on"] = &now
	}
	return s.orderRepo.UpdateStatus(id, status, updates)
}

func validOrderStatus(status string) bool {
	switch status {
	case constants.OrderStatusPending, constants.OrderStatusAccepted,
		constants.OrderStatusRejected, constants.OrderStatusOnTheWay,
		constants.OrderStatusDelivered, constants.OrderStatusCancelled,
		constants.OrderStatusReturned:
		return true
	}
	return false
}

func buildOrderNo() string {
	return fmt.Sprintf("ORD-%s", strings.ToUpper(uuid.New().String()[:18]))
}
