package worker

import (
	"github.com/spec-kit/callcenter-service/internal/events"
	"github.com/spec-kit/callcenter-service/internal/service"
)

// StartNotificationWorker registers notification handlers and, when
// configured, the JetStream forwarder.
func StartNotificationWorker(notificationService *service.NotificationService, publisher *events.NATSPublisher, dispatcher events.Dispatcher) {
	if notificationService != nil {
		notificationService.RegisterHandlers()
	}
	if publisher != nil && dispatcher != nil {
		publisher.Register(dispatcher)
	}
}
