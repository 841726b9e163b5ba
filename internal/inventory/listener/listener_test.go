package listener

import (
	"context"
	"testing"

	"github.com/fekuna/omnipos-storefront/internal/inventory/dto"
	"github.com/fekuna/omnipos-storefront/internal/model"
	"github.com/fekuna/omnipos-storefront/internal/pkg/logger"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingUseCase struct {
	inputs []dto.AdjustStockInput
}

func (r *recordingUseCase) AdjustStock(_ context.Context, in *dto.AdjustStockInput) (*model.InventoryMovement, error) {
	r.inputs = append(r.inputs, *in)
	return &model.InventoryMovement{}, nil
}

func (r *recordingUseCase) RecordSale(context.Context, string, int, string) error { return nil }

func (r *recordingUseCase) ListMovements(context.Context, *dto.MovementFilters) ([]model.InventoryMovement, int, error) {
	return nil, 0, nil
}

type sliceReader struct {
	msgs   []kafka.Message
	cancel context.CancelFunc
}

func (s *sliceReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if len(s.msgs) == 0 {
		s.cancel()
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	m := s.msgs[0]
	s.msgs = s.msgs[1:]
	return m, nil
}

func TestStartProcessesStockAdjustedOnly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &sliceReader{cancel: cancel, msgs: []kafka.Message{
		{Value: []byte(`{"event_id":"e1","event_type":"StockAdjusted","payload":{"product_id":"p1","quantity_change":5,"reason":"delivery"}}`)},
		{Value: []byte(`{"event_id":"e2","event_type":"PriceChanged","payload":{"product_id":"p1"}}`)},
		{Value: []byte(`not json`)},
		{Value: []byte(`{"event_id":"e3","event_type":"StockAdjusted","payload":{"product_id":"p2","quantity_change":-1,"reference_id":"ref-9"}}`)},
	}}
	uc := &recordingUseCase{}

	NewStockListener(reader, uc, logger.NewNopLogger()).Start(ctx)

	require.Len(t, uc.inputs, 2)
	assert.Equal(t, "p1", uc.inputs[0].ProductID)
	assert.Equal(t, 5, uc.inputs[0].QuantityChange)
	assert.Equal(t, "kafka", uc.inputs[0].ReferenceType)
	assert.Equal(t, "e1", uc.inputs[0].ReferenceID)
	assert.Equal(t, "ref-9", uc.inputs[1].ReferenceID)
	assert.Equal(t, -1, uc.inputs[1].QuantityChange)
}
