package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/cardiobridge-backend/internal/domain"
	"github.com/yungbote/cardiobridge-backend/internal/pkg/ctxutil"
	"github.com/yungbote/cardiobridge-backend/internal/pkg/logger"
	"github.com/yungbote/cardiobridge-backend/internal/repos"
)

// AlertThreshold is the fixed risk-probability cut-point at and above which
// an alert fires. The boundary is inclusive.
const AlertThreshold = 0.70

const (
	AlertNotTriggered   = "not_triggered"
	AlertSent           = "sent"
	AlertDeliveryFailed = "delivery_failed"

	ReasonNoContactMethod = "no_contact_method"
	ReasonDeliveryError   = "delivery_error"
)

type AlertOutcome struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// Notifier is the external delivery channel. Implemented by the Twilio
// client adapter; tests substitute fakes.
type Notifier interface {
	SendSMS(ctx context.Context, to, body string) error
}

type AlertService interface {
	MaybeAlert(ctx context.Context, user *domain.User, riskProbability float64) AlertOutcome
}

type alertService struct {
	db              *gorm.DB
	log             *logger.Logger
	alertEventRepo  repos.AlertEventRepo
	notifier        Notifier
	deliveryTimeout time.Duration
}

func NewAlertService(
	db *gorm.DB,
	log *logger.Logger,
	alertEventRepo repos.AlertEventRepo,
	notifier Notifier,
	deliveryTimeout time.Duration,
) AlertService {
	serviceLog := log.With("service", "AlertService")
	if deliveryTimeout <= 0 {
		deliveryTimeout = 15 * time.Second
	}
	return &alertService{
		db:              db,
		log:             serviceLog,
		alertEventRepo:  alertEventRepo,
		notifier:        notifier,
		deliveryTimeout: deliveryTimeout,
	}
}

// MaybeAlert is best-effort: it never returns an error, so a notifier outage
// cannot degrade the prediction response it rides along with.
func (s *alertService) MaybeAlert(ctx context.Context, user *domain.User, riskProbability float64) AlertOutcome {
	if riskProbability < AlertThreshold {
		return AlertOutcome{Status: AlertNotTriggered}
	}

	event := &domain.AlertEvent{
		UserID:          user.ID,
		RiskProbability: riskProbability,
		DeliveryStatus:  domain.AlertStatusPending,
	}

	outcome := s.deliver(ctx, user, riskProbability)
	switch outcome.Status {
	case AlertSent:
		event.DeliveryStatus = domain.AlertStatusSent
	default:
		event.DeliveryStatus = domain.AlertStatusFailed
		event.Reason = outcome.Reason
	}

	if err := s.alertEventRepo.Create(ctxutil.Default(ctx), nil, event); err != nil {
		s.log.Warn("Failed to persist alert event", "user_id", user.ID.String(), "error", err)
	}

	return outcome
}

func (s *alertService) deliver(ctx context.Context, user *domain.User, riskProbability float64) AlertOutcome {
	if user.PhoneNumber == "" {
		s.log.Warn("Alert triggered but user has no phone number", "user_id", user.ID.String())
		return AlertOutcome{Status: AlertDeliveryFailed, Reason: ReasonNoContactMethod}
	}
	if s.notifier == nil {
		s.log.Warn("Alert triggered but no notifier configured", "user_id", user.ID.String())
		return AlertOutcome{Status: AlertDeliveryFailed, Reason: ReasonDeliveryError}
	}

	body := fmt.Sprintf("WARNING: %s, high cardiac risk detected (%.1f%%). Please consult a doctor.",
		user.FullName, riskProbability*100)

	sendCtx, cancel := context.WithTimeout(ctxutil.Default(ctx), s.deliveryTimeout)
	defer cancel()

	if err := s.notifier.SendSMS(sendCtx, user.PhoneNumber, body); err != nil {
		s.log.Warn("Alert delivery failed", "user_id", user.ID.String(), "error", err)
		return AlertOutcome{Status: AlertDeliveryFailed, Reason: ReasonDeliveryError}
	}

	s.log.Info("Alert delivered", "user_id", user.ID.String(), "risk_probability", riskProbability)
	return AlertOutcome{Status: AlertSent}
}
