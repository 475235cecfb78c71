package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pharmacy-storefront/internal/model"
)

// WebhookEventRepository keeps an audit trail of processed gateway
// notifications. It records outcomes, it does not deduplicate — the
// reconciler's guarded transition handles redelivery.
type WebhookEventRepository interface {
	Record(ctx context.Context, tx *gorm.DB, paymentID, requestID, eventType, outcome string) error
}

type webhookEventRepoImpl struct{}

func NewWebhookEventRepository() WebhookEventRepository {
	return &webhookEventRepoImpl{}
}

func (r *webhookEventRepoImpl) Record(ctx context.Context, tx *gorm.DB, paymentID, requestID, eventType, outcome string) error {
	return tx.WithContext(ctx).Create(&model.WebhookEvent{
		EventID:     uuid.NewString(),
		PaymentID:   paymentID,
		RequestID:   requestID,
		EventType:   eventType,
		Outcome:     outcome,
		ProcessedAt: time.Now(),
	}).Error
}
