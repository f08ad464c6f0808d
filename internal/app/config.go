package app

import (
	"time"

	"github.com/yungbote/cardiobridge-backend/internal/pkg/envutil"
)

type Config struct {
	JWTSecretKey    string
	AccessTokenTTL  time.Duration
	DeliveryTimeout time.Duration
}

func LoadConfig() Config {
	return Config{
		JWTSecretKey:    envutil.String("JWT_SECRET_KEY", "defaultsecret"),
		AccessTokenTTL:  envutil.Seconds("ACCESS_TOKEN_TTL", 24*time.Hour),
		DeliveryTimeout: envutil.Seconds("ALERT_DELIVERY_TIMEOUT", 15*time.Second),
	}
}
