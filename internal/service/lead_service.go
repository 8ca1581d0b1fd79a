package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"support-chat-be/internal/dto"
	"support-chat-be/internal/pkg/logger"
	"support-chat-be/internal/pkg/serverutils"
	"support-chat-be/pkg/events"
)

type ILeadService interface {
	// SubmitQuote and SubmitContact publish the lead onto the durable
	// event stream and return its id. The notification worker picks it up
	// from there; the HTTP path never waits on email delivery.
	SubmitQuote(ctx context.Context, req *dto.QuoteLeadRequest) (uuid.UUID, error)
	SubmitContact(ctx context.Context, req *dto.ContactLeadRequest) (uuid.UUID, error)
}

type LeadServiceImpl struct {
	eventsPub EventPublisher
	logger    logger.ILogger
}

func NewLeadService(eventsPub EventPublisher, log logger.ILogger) ILeadService {
	return &LeadServiceImpl{eventsPub: eventsPub, logger: log}
}

func (s *LeadServiceImpl) SubmitQuote(ctx context.Context, req *dto.QuoteLeadRequest) (uuid.UUID, error) {
	summary := strings.TrimSpace(fmt.Sprintf("%s %s", req.Service, req.Details))
	return s.publish(ctx, events.TypeLeadQuoteSubmitted, map[string]interface{}{
		"name":    req.Name,
		"email":   req.Email,
		"phone":   req.Phone,
		"service": req.Service,
		"details": req.Details,
		"summary": summary,
	})
}

func (s *LeadServiceImpl) SubmitContact(ctx context.Context, req *dto.ContactLeadRequest) (uuid.UUID, error) {
	return s.publish(ctx, events.TypeLeadContactSubmitted, map[string]interface{}{
		"name":    req.Name,
		"email":   req.Email,
		"message": req.Message,
		"summary": req.Message,
	})
}

func (s *LeadServiceImpl) publish(ctx context.Context, eventType string, payload map[string]interface{}) (uuid.UUID, error) {
	if s.eventsPub == nil {
		return uuid.Nil, serverutils.NewAppError(503, "lead intake is unavailable")
	}
	leadId := uuid.New()
	payload["lead_id"] = leadId.String()
	if err := s.eventsPub.Publish(ctx, events.New(eventType, payload)); err != nil {
		s.logger.Error("LEAD", "failed to publish lead event", map[string]interface{}{"error": err.Error()})
		return uuid.Nil, serverutils.NewAppError(503, "lead intake is unavailable")
	}
	s.logger.Info("LEAD", "lead submitted", map[string]interface{}{"lead_id": leadId, "type": eventType})
	return leadId, nil
}
