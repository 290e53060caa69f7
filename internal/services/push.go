package services

import (
	"context"
	"fmt"

	"barrierfree-backend/internal/config"

	"github.com/rs/zerolog/log"
	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/payload"
	"github.com/sideshow/apns2/token"
)

// Pusher delivers a notification to a device
type Pusher interface {
	Push(ctx context.Context, deviceToken, title, body string, data map[string]string) error
}

type nopPusher struct{}

func (nopPusher) Push(context.Context, string, string, string, map[string]string) error { return nil }

// APNsPusher sends notifications through Apple Push Notification service
type APNsPusher struct {
	client *apns2.Client
	topic  string
}

// NewPusher returns an APNs pusher when credentials are configured and a no-op otherwise
func NewPusher(cfg config.APNsConfig) (Pusher, error) {
	if !cfg.Configured() {
		log.Warn().Msg("APNs is not configured, push notifications are disabled")
		return nopPusher{}, nil
	}
	return NewAPNsPusher(cfg)
}

// NewAPNsPusher creates a new APNs pusher using token based authentication
func NewAPNsPusher(cfg config.APNsConfig) (*APNsPusher, error) {
	authKey, err := token.AuthKeyFromFile(cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load APNs key: %w", err)
	}

	client := apns2.NewTokenClient(&token.Token{
		AuthKey: authKey,
		KeyID:   cfg.KeyID,
		TeamID:  cfg.TeamID,
	})
	if cfg.Production {
		client = client.Production()
	} else {
		client = client.Development()
	}

	return &APNsPusher{client: client, topic: cfg.Topic}, nil
}

// Push sends an alert to a single device
func (p *APNsPusher) Push(ctx context.Context, deviceToken, title, body string, data map[string]string) error {
	pl := payload.NewPayload().AlertTitle(title).AlertBody(body).Sound("default")
	for k, v := range data {
		pl = pl.Custom(k, v)
	}

	res, err := p.client.PushWithContext(ctx, &apns2.Notification{
		DeviceToken: deviceToken,
		Topic:       p.topic,
		Payload:     pl,
	})
	if err != nil {
		return fmt.Errorf("failed to push notification: %w", err)
	}
	if !res.Sent() {
		return fmt.Errorf("push rejected: %d %s", res.StatusCode, res.Reason)
	}

	return nil
}
