package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-storefront/internal/inventory"
	"github.com/fekuna/omnipos-storefront/internal/model"
	"github.com/fekuna/omnipos-storefront/internal/order"
	"github.com/fekuna/omnipos-storefront/internal/order/dto"
	"github.com/fekuna/omnipos-storefront/internal/pkg/broker"
	"github.com/fekuna/omnipos-storefront/internal/pkg/database/postgres"
	"github.com/fekuna/omnipos-storefront/internal/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type orderUseCase struct {
	repo            order.Repository
	carts           order.CartReader
	products        order.ProductFinder
	stock           order.StockKeeper
	txm             postgres.TxManager
	events          broker.Publisher
	historyPageSize int
	logger          logger.ZapLogger
}

func NewOrderUseCase(
	repo order.Repository,
	carts order.CartReader,
	products order.ProductFinder,
	stock order.StockKeeper,
	txm postgres.TxManager,
	events broker.Publisher,
	historyPageSize int,
	log logger.ZapLogger,
) order.UseCase {
	return &orderUseCase{
		repo:            repo,
		carts:           carts,
		products:        products,
		stock:           stock,
		txm:             txm,
		events:          events,
		historyPageSize: historyPageSize,
		logger:          log,
	}
}

func (uc *orderUseCase) HistoryPageSize() int { return uc.historyPageSize }

func (uc *orderUseCase) CreateDraft(data *dto.CustomerData) *model.Order {
	a := data.Address
	return &model.Order{
		Email:    data.User.Email,
		FullName: fmt.Sprintf("%s %s", data.User.FirstName, data.User.LastName),
		Address: fmt.Sprintf("%s, %s, %s, %s, h.%s, ap.%s",
			a.Country, a.City, a.Street, a.Postcode, a.House, a.Apartment),
		Total:  decimal.Zero,
		Status: model.OrderInProcess,
	}
}

func (uc *orderUseCase) Materialize(ctx context.Context, draft *model.Order, c *model.Cart) (*model.Order, error) {
	o := *draft
	now := time.Now()
	o.ID = uuid.New().String()
	o.CreatedAt, o.UpdatedAt = now, now
	if o.Status == "" {
		o.Status = model.OrderInProcess
	}
	o.UserID = c.UserID

	err := uc.txm.WithinTx(ctx, func(ctx context.Context) error {
		lines, err := uc.carts.Lines(ctx, c)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return order.ErrEmptyCart
		}

		total := decimal.Zero
		byID := make(map[string]model.Line, len(lines))
		for _, l := range lines {
			if l.Product == nil {
				return fmt.Errorf("line %s: product %s not loaded", l.ID, l.ProductID)
			}
			total = total.Add(l.Total())
			byID[l.ID] = l
		}
		o.Total = total

		if err := uc.repo.Create(ctx, &o); err != nil {
			return err
		}

		attached, err := uc.repo.AttachCartLines(ctx, c.ID, o.ID)
		if err != nil {
			return err
		}

		o.Lines = make([]model.Line, 0, len(attached))
		for _, a := range attached {
			l, ok := byID[a.ID]
			if !ok {
				return fmt.Errorf("line %s joined the cart during checkout", a.ID)
			}

			err := uc.stock.RecordSale(ctx, l.ProductID, l.Quantity, o.ID)
			if errors.Is(err, inventory.ErrInsufficientStock) {
				return fmt.Errorf("%w: %s", order.ErrInsufficientStock, l.Product.Title)
			}
			if err != nil {
				return err
			}

			price := l.Total()
			if err := uc.repo.SetLineFinalPrice(ctx, l.ID, price); err != nil {
				return err
			}

			l.CartID = nil
			l.OrderID = &o.ID
			l.FinalPrice = decimal.NewNullDecimal(price)
			l.PriceChanged = false
			o.Lines = append(o.Lines, l)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("Order placed",
		zap.String("order_id", o.ID),
		zap.String("total", o.Total.String()),
		zap.Int("lines", len(o.Lines)),
	)
	uc.publishPlaced(ctx, &o)
	return &o, nil
}

type orderPlacedEvent struct {
	EventID   string             `json:"event_id"`
	EventType string             `json:"event_type"`
	Payload   orderPlacedPayload `json:"payload"`
	Timestamp time.Time          `json:"timestamp"`
}

type orderPlacedPayload struct {
	ID     string            `json:"id"`
	UserID *string           `json:"user_id"`
	Email  string            `json:"email"`
	Total  decimal.Decimal   `json:"total"`
	Items  []orderPlacedItem `json:"items"`
}

type orderPlacedItem struct {
	ProductID  string          `json:"product_id"`
	Quantity   int             `json:"quantity"`
	FinalPrice decimal.Decimal `json:"final_price"`
}

func (uc *orderUseCase) publishPlaced(ctx context.Context, o *model.Order) {
	items := make([]orderPlacedItem, len(o.Lines))
	for i, l := range o.Lines {
		items[i] = orderPlacedItem{ProductID: l.ProductID, Quantity: l.Quantity, FinalPrice: l.FinalPrice.Decimal}
	}
	evt := orderPlacedEvent{
		EventID:   uuid.New().String(),
		EventType: order.EventOrderPlaced,
		Payload:   orderPlacedPayload{ID: o.ID, UserID: o.UserID, Email: o.Email, Total: o.Total, Items: items},
		Timestamp: time.Now(),
	}
	if err := uc.events.Publish(ctx, o.ID, evt); err != nil {
		uc.logger.Error("failed to publish OrderPlaced", zap.String("order_id", o.ID), zap.Error(err))
	}
}

func (uc *orderUseCase) withLines(ctx context.Context, orders []model.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	lines, err := uc.repo.FindLines(ctx, ids)
	if err != nil {
		return err
	}

	productIDs := make([]string, 0, len(lines))
	for _, l := range lines {
		productIDs = append(productIDs, l.ProductID)
	}
	products, err := uc.products.FindByIDs(ctx, productIDs)
	if err != nil {
		return err
	}
	byProduct := make(map[string]*model.Product, len(products))
	for i := range products {
		byProduct[products[i].ID] = &products[i]
	}

	byOrder := make(map[string][]model.Line, len(orders))
	for _, l := range lines {
		if l.OrderID == nil {
			continue
		}
		l.Product = byProduct[l.ProductID]
		byOrder[*l.OrderID] = append(byOrder[*l.OrderID], l)
	}
	for i := range orders {
		orders[i].Lines = byOrder[orders[i].ID]
	}
	return nil
}

func (uc *orderUseCase) History(ctx context.Context, userID string, page int) ([]model.Order, int, error) {
	if page < 1 {
		page = 1
	}
	orders, count, err := uc.repo.FindByUser(ctx, userID, page, uc.historyPageSize)
	if err != nil {
		return nil, 0, err
	}
	if err := uc.withLines(ctx, orders); err != nil {
		return nil, 0, err
	}
	return orders, count, nil
}

func (uc *orderUseCase) Get(ctx context.Context, id string) (*model.Order, error) {
	o, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, order.ErrOrderNotFound
	}

	orders := []model.Order{*o}
	if err := uc.withLines(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

// UpdateStatus allows any transition. Order status is an operator workflow.
func (uc *orderUseCase) UpdateStatus(ctx context.Context, id string, status model.OrderStatus) (*model.Order, error) {
	if !status.Valid() {
		return nil, order.ErrInvalidStatus
	}

	o, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, order.ErrOrderNotFound
	}

	if err := uc.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	uc.logger.Info("Order status changed",
		zap.String("order_id", id),
		zap.String("from", string(o.Status)),
		zap.String("to", string(status)),
	)
	o.Status = status
	return o, nil
}
