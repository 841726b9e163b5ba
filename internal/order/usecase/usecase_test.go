package usecase

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/fekuna/omnipos-storefront/internal/inventory"
	"github.com/fekuna/omnipos-storefront/internal/model"
	"github.com/fekuna/omnipos-storefront/internal/order"
	"github.com/fekuna/omnipos-storefront/internal/order/dto"
	"github.com/fekuna/omnipos-storefront/internal/pkg/database/postgres"
	"github.com/fekuna/omnipos-storefront/internal/pkg/logger"
	profiledto "github.com/fekuna/omnipos-storefront/internal/profile/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type store struct {
	orders   map[string]model.Order
	lines    map[string]model.Line
	products map[string]*model.Product
}

func newStore() *store {
	return &store{orders: map[string]model.Order{}, lines: map[string]model.Line{}, products: map[string]*model.Product{}}
}

func (s *store) Create(_ context.Context, o *model.Order) error {
	s.orders[o.ID] = *o
	return nil
}

func (s *store) FindByID(_ context.Context, id string) (*model.Order, error) {
	if o, ok := s.orders[id]; ok {
		return &o, nil
	}
	return nil, nil
}

func (s *store) FindByUser(_ context.Context, userID string, page, pageSize int) ([]model.Order, int, error) {
	var all []model.Order
	for _, o := range s.orders {
		if o.UserID != nil && *o.UserID == userID {
			all = append(all, o)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	start := (page - 1) * pageSize
	if start > len(all) {
		start = len(all)
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], len(all), nil
}

func (s *store) UpdateStatus(_ context.Context, id string, status model.OrderStatus) error {
	o := s.orders[id]
	o.Status = status
	s.orders[id] = o
	return nil
}

func (s *store) AttachCartLines(_ context.Context, cartID, orderID string) ([]model.Line, error) {
	var out []model.Line
	for id, l := range s.lines {
		if l.CartID != nil && *l.CartID == cartID {
			oid := orderID
			l.CartID = nil
			l.OrderID = &oid
			s.lines[id] = l
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *store) SetLineFinalPrice(_ context.Context, lineID string, price decimal.Decimal) error {
	l := s.lines[lineID]
	l.FinalPrice = decimal.NewNullDecimal(price)
	s.lines[lineID] = l
	return nil
}

func (s *store) FindLines(_ context.Context, orderIDs []string) ([]model.Line, error) {
	var out []model.Line
	for _, l := range s.lines {
		for _, id := range orderIDs {
			if l.OrderID != nil && *l.OrderID == id {
				out = append(out, l)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

// Lines implements order.CartReader.
func (s *store) Lines(_ context.Context, c *model.Cart) ([]model.Line, error) {
	var out []model.Line
	for _, l := range s.lines {
		if l.CartID != nil && *l.CartID == c.ID {
			p := *s.products[l.ProductID]
			l.Product = &p
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *store) FindByIDs(_ context.Context, ids []string) ([]model.Product, error) {
	var out []model.Product
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

// RecordSale implements order.StockKeeper.
func (s *store) RecordSale(_ context.Context, productID string, qty int, _ string) error {
	p := s.products[productID]
	if p.Stock < qty {
		return inventory.ErrInsufficientStock
	}
	p.Stock -= qty
	return nil
}

func (s *store) addLine(cartID, productID string, qty int) {
	id := "line-" + productID
	s.lines[id] = model.Line{ID: id, CartID: &cartID, ProductID: productID, Quantity: qty}
}

func (s *store) cartLines(cartID string) int {
	n := 0
	for _, l := range s.lines {
		if l.CartID != nil && *l.CartID == cartID {
			n++
		}
	}
	return n
}

type recordingPublisher struct {
	keys     []string
	payloads []any
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, key string, payload any) error {
	p.keys = append(p.keys, key)
	p.payloads = append(p.payloads, payload)
	return p.err
}

func setup() (*store, *recordingPublisher, order.UseCase) {
	s := newStore()
	s.products["a"] = &model.Product{BaseModel: model.BaseModel{ID: "a"}, Title: "A", Price: decimal.NewFromInt(10), Stock: 5}
	s.products["b"] = &model.Product{BaseModel: model.BaseModel{ID: "b"}, Title: "B", Price: decimal.NewFromInt(5), Stock: 1}
	pub := &recordingPublisher{}
	uc := NewOrderUseCase(s, s, s, s, postgres.NoopTxManager{}, pub, 3, logger.NewNopLogger())
	return s, pub, uc
}

func customer() *dto.CustomerData {
	return &dto.CustomerData{
		User: profiledto.UserForm{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"},
		Address: profiledto.AddressForm{
			Country: "UK", City: "London", Street: "Baker st", Postcode: "123456", House: "221", Apartment: "2b",
		},
	}
}

func TestCreateDraft(t *testing.T) {
	_, _, uc := setup()
	o := uc.CreateDraft(customer())

	assert.Equal(t, "ada@example.com", o.Email)
	assert.Equal(t, "Ada Lovelace", o.FullName)
	assert.Equal(t, "UK, London, Baker st, 123456, h.221, ap.2b", o.Address)
	assert.Equal(t, model.OrderInProcess, o.Status)
	assert.Empty(t, o.ID)
}

func TestMaterialize(t *testing.T) {
	s, pub, uc := setup()
	userID := "u1"
	c := &model.Cart{BaseModel: model.BaseModel{ID: "cart-1"}, UserID: &userID}
	s.addLine(c.ID, "a", 2)
	s.addLine(c.ID, "b", 1)

	o, err := uc.Materialize(context.Background(), uc.CreateDraft(customer()), c)
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(25).Equal(o.Total), o.Total.String())
	assert.Equal(t, 3, s.products["a"].Stock)
	assert.Equal(t, 0, s.products["b"].Stock)
	assert.Equal(t, 0, s.cartLines(c.ID))
	require.NotNil(t, o.UserID)
	assert.Equal(t, "u1", *o.UserID)

	require.Len(t, o.Lines, 2)
	stored := s.lines["line-a"]
	require.True(t, stored.FinalPrice.Valid)
	assert.True(t, decimal.NewFromInt(20).Equal(stored.FinalPrice.Decimal))
	assert.Equal(t, o.ID, *stored.OrderID)

	persisted, ok := s.orders[o.ID]
	require.True(t, ok)
	assert.True(t, o.Total.Equal(persisted.Total))

	require.Len(t, pub.keys, 1)
	assert.Equal(t, o.ID, pub.keys[0])
}

func TestMaterializeAnonymousCart(t *testing.T) {
	s, _, uc := setup()
	c := &model.Cart{BaseModel: model.BaseModel{ID: "cart-anon"}}
	s.addLine(c.ID, "a", 1)

	o, err := uc.Materialize(context.Background(), uc.CreateDraft(customer()), c)
	require.NoError(t, err)
	assert.Nil(t, o.UserID)
}

func TestMaterializeEmptyCart(t *testing.T) {
	s, pub, uc := setup()
	c := &model.Cart{BaseModel: model.BaseModel{ID: "cart-1"}}

	_, err := uc.Materialize(context.Background(), uc.CreateDraft(customer()), c)
	assert.ErrorIs(t, err, order.ErrEmptyCart)
	assert.Empty(t, s.orders)
	assert.Empty(t, pub.keys)
}

func TestMaterializeInsufficientStock(t *testing.T) {
	s, pub, uc := setup()
	c := &model.Cart{BaseModel: model.BaseModel{ID: "cart-1"}}
	s.addLine(c.ID, "b", 2)

	_, err := uc.Materialize(context.Background(), uc.CreateDraft(customer()), c)
	assert.ErrorIs(t, err, order.ErrInsufficientStock)
	assert.Equal(t, 1, s.products["b"].Stock)
	assert.Empty(t, pub.keys)
}

func TestMaterializeSurvivesPublishFailure(t *testing.T) {
	s, pub, uc := setup()
	pub.err = errors.New("kafka down")
	c := &model.Cart{BaseModel: model.BaseModel{ID: "cart-1"}}
	s.addLine(c.ID, "a", 1)

	o, err := uc.Materialize(context.Background(), uc.CreateDraft(customer()), c)
	require.NoError(t, err)
	assert.NotEmpty(t, o.ID)
}

func TestHistoryNewestFirst(t *testing.T) {
	s, _, uc := setup()
	user := "u1"
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"o1", "o2", "o3", "o4"} {
		s.orders[id] = model.Order{
			BaseModel: model.BaseModel{ID: id, CreatedAt: base.Add(time.Duration(i) * time.Hour)},
			UserID:    &user,
		}
	}
	oid := "o4"
	s.lines["l1"] = model.Line{ID: "l1", OrderID: &oid, ProductID: "a", Quantity: 1}

	page1, count, err := uc.History(context.Background(), user, 1)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	require.Len(t, page1, 3)
	assert.Equal(t, "o4", page1[0].ID)
	require.Len(t, page1[0].Lines, 1)
	assert.Equal(t, "A", page1[0].Lines[0].Product.Title)

	page2, _, err := uc.History(context.Background(), user, 2)
	require.NoError(t, err)
	require.Len(t, page2, 1)
	assert.Equal(t, "o1", page2[0].ID)
}

func TestGetAndUpdateStatus(t *testing.T) {
	s, _, uc := setup()
	s.orders["o1"] = model.Order{BaseModel: model.BaseModel{ID: "o1"}, Status: model.OrderInProcess}

	_, err := uc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, order.ErrOrderNotFound)

	o, err := uc.UpdateStatus(context.Background(), "o1", model.OrderSent)
	require.NoError(t, err)
	assert.Equal(t, model.OrderSent, o.Status)
	assert.Equal(t, model.OrderSent, s.orders["o1"].Status)

	_, err = uc.UpdateStatus(context.Background(), "o1", "X")
	assert.ErrorIs(t, err, order.ErrInvalidStatus)
	_, err = uc.UpdateStatus(context.Background(), "nope", model.OrderClosed)
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}
