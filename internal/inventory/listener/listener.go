package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-storefront/internal/inventory"
	"github.com/fekuna/omnipos-storefront/internal/inventory/dto"
	"github.com/fekuna/omnipos-storefront/internal/pkg/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const EventStockAdjusted = "StockAdjusted"

// MessageReader is satisfied by *broker.KafkaConsumer.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

type StockListener struct {
	consumer MessageReader
	uc       inventory.UseCase
	logger   logger.ZapLogger
}

func NewStockListener(consumer MessageReader, uc inventory.UseCase, logger logger.ZapLogger) *StockListener {
	return &StockListener{
		consumer: consumer,
		uc:       uc,
		logger:   logger,
	}
}

func (l *StockListener) Start(ctx context.Context) {
	l.logger.Info("Starting stock Kafka listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping stock Kafka listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

type StockAdjustedEvent struct {
	EventID   string               `json:"event_id"`
	EventType string               `json:"event_type"`
	Payload   StockAdjustedPayload `json:"payload"`
	Timestamp time.Time            `json:"timestamp"`
}

type StockAdjustedPayload struct {
	ProductID      string `json:"product_id"`
	QuantityChange int    `json:"quantity_change"`
	Reason         string `json:"reason"`
	ReferenceID    string `json:"reference_id"`
}

func (l *StockListener) processMessage(ctx context.Context, value []byte) {
	var event StockAdjustedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}

	if event.EventType != EventStockAdjusted {
		return
	}

	l.logger.Info("Processing StockAdjusted event",
		zap.String("event_id", event.EventID),
		zap.String("product_id", event.Payload.ProductID),
	)

	referenceID := event.Payload.ReferenceID
	if referenceID == "" {
		referenceID = event.EventID
	}

	_, err := l.uc.AdjustStock(ctx, &dto.AdjustStockInput{
		ProductID:      event.Payload.ProductID,
		QuantityChange: event.Payload.QuantityChange,
		Reason:         event.Payload.Reason,
		ReferenceType:  "kafka",
		ReferenceID:    referenceID,
	})
	if err != nil {
		l.logger.Error("Failed to adjust stock from event",
			zap.String("event_id", event.EventID),
			zap.String("product_id", event.Payload.ProductID),
			zap.Error(err),
		)
	}
}
