// FILE: internal/service/notifier_service.go
package service

import (
	"context"
	"strings"

	"ai-canvas-be/internal/pkg/logger"
	"ai-canvas-be/internal/pkg/mailer"
	"ai-canvas-be/pkg/events"
	pktNats "ai-canvas-be/pkg/nats"
)

type INotifierService interface {
	Start()
}

// notifierService listens to the event bus and delivers the user-facing
// side effects: transactional emails for registrations and top-ups.
// Keeping email off the request path means a slow SMTP server never
// delays an API response.
type notifierService struct {
	subscriber   *pktNats.Subscriber
	emailService mailer.IEmailService
	log          logger.ILogger
}

func NewNotifierService(sub *pktNats.Subscriber, emailService mailer.IEmailService, log logger.ILogger) INotifierService {
	return &notifierService{
		subscriber:   sub,
		emailService: emailService,
		log:          log,
	}
}

// Start begins listening to the event bus with a durable consumer.
func (s *notifierService) Start() {
	if s.subscriber == nil {
		s.log.Warn("NotifierService", "No NATS subscriber available, transactional emails disabled", nil)
		return
	}
	if err := s.subscriber.Subscribe("events.>", "mail-worker", s.handleEvent); err != nil {
		s.log.Error("NotifierService", "Failed to start notifier subscriber", map[string]interface{}{"error": err.Error()})
		return
	}
	s.log.Info("NotifierService", "Notifier service started, listening to events.>", nil)
}

func (s *notifierService) handleEvent(ctx context.Context, event events.Event) error {
	payload := event.Payload()

	// The NATS subject carries the stream prefix.
	typeCode := strings.TrimPrefix(event.EventType(), "events.")

	switch typeCode {
	case "USER_REGISTERED":
		email, _ := payload["email"].(string)
		fullName, _ := payload["full_name"].(string)
		if email == "" {
			return nil
		}
		return s.emailService.SendWelcome(email, fullName, payloadInt(payload["credits"]))

	case "CREDITS_TOPPED_UP":
		email, _ := payload["email"].(string)
		if email == "" {
			s.log.Warn("NotifierService", "Top-up event without an email, skipping receipt", map[string]interface{}{"type": typeCode})
			return nil
		}
		return s.emailService.SendTopupReceipt(email, payloadInt(payload["credits"]))
	}

	return nil
}

// payloadInt reads a numeric payload field. JSON decoding turns numbers
// into float64, while locally constructed events carry int.
func payloadInt(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	}
	return 0
}
