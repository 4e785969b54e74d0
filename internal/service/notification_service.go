package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/callcenter-service/internal/domain"
	"github.com/spec-kit/callcenter-service/internal/events"
	"github.com/spec-kit/callcenter-service/internal/observability"
)

// NotificationService reacts to committed domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		metrics:    metrics,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventHistoryRecorded, n.handleHistoryRecorded)
	n.dispatcher.Subscribe(events.EventContactConverted, n.handleContactConverted)
	n.dispatcher.Subscribe(events.EventBulkAssignment, n.handleBulkAssignment)
}

func (n *NotificationService) handleHistoryRecorded(_ context.Context, event events.Event) error {
	action := ""
	if entry, ok := event.Payload.(domain.HistoryEntry); ok {
		action = string(entry.Action)
	}
	n.metrics.RecordHistoryEntry(string(event.EntityType), action)
	return nil
}

func (n *NotificationService) handleContactConverted(_ context.Context, event events.Event) error {
	n.logger.Info("ContactConverted", zap.String("contact_id", event.EntityID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleBulkAssignment(_ context.Context, event events.Event) error {
	n.logger.Info("BulkAssignment", zap.Any("actor", event.Actor), zap.Any("payload", event.Payload))
	return nil
}
