package app

import (
	"context"
	"fmt"

	redisclient "github.com/yungbote/cardiobridge-backend/internal/clients/redis"
	"github.com/yungbote/cardiobridge-backend/internal/clients/scorer"
	"github.com/yungbote/cardiobridge-backend/internal/clients/twilio"
	"github.com/yungbote/cardiobridge-backend/internal/pkg/logger"
	"github.com/yungbote/cardiobridge-backend/internal/services"
)

type Clients struct {
	Scorer      scorer.Client
	Notifier    services.Notifier
	Revocations redisclient.RevocationList
}

func wireClients(log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")

	scorerClient, err := scorer.NewFromEnv(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init scorer client: %w", err)
	}

	var notifier services.Notifier
	twilioClient, err := twilio.NewFromEnv(log)
	if err != nil {
		// Alerting is best-effort; the API keeps serving predictions
		// without a delivery channel.
		log.Warn("Twilio not configured, alert delivery disabled", "error", err)
	} else {
		notifier = &twilioNotifier{client: twilioClient}
	}

	revocations, err := redisclient.NewRevocationList(log)
	if err != nil {
		log.Warn("Redis not configured, token revocation disabled", "error", err)
		revocations = nil
	}

	return Clients{
		Scorer:      scorerClient,
		Notifier:    notifier,
		Revocations: revocations,
	}, nil
}

// twilioNotifier adapts the Twilio client to the services.Notifier shape.
type twilioNotifier struct {
	client twilio.Client
}

func (n *twilioNotifier) SendSMS(ctx context.Context, to, body string) error {
	_, err := n.client.SendSMS(ctx, to, body)
	return err
}
