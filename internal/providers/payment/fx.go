package payment

import (
	"github.com/smallbiznis/gatepass/internal/config"
	"github.com/smallbiznis/gatepass/internal/providers/payment/paypal"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("providers.payment",
	fx.Provide(func(cfg config.Config, log *zap.Logger) *Registry {
		pp, err := paypal.New(paypal.Config{
			BaseURL:      cfg.PayPalBaseURL,
			ClientID:     cfg.PayPalClientID,
			ClientSecret: cfg.PayPalClientSecret,
		})
		if err != nil {
			log.Warn("paypal provider not configured", zap.Error(err))
			return NewRegistry()
		}
		return NewRegistry(pp)
	}),
)
