package notify

import (
	"go.uber.org/zap"

	"github.com/cosmic-sparc/backend/config"
)

// WhatsAppSender is a logging stub for the WhatsApp channel. The Cloud API
// integration is not wired yet; every send is recorded as if delivered so
// the dispatch pipeline and logs exercise both channels.
type WhatsAppSender struct {
	cfg    config.WhatsAppConfig
	logger *zap.Logger
}

// NewWhatsAppSender creates the stub sender.
func NewWhatsAppSender(cfg config.WhatsAppConfig, logger *zap.Logger) *WhatsAppSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WhatsAppSender{cfg: cfg, logger: logger}
}

// Send logs the message instead of delivering it.
func (w *WhatsAppSender) Send(phone, body string) error {
	w.logger.Info("whatsapp stub",
		zap.String("to", phone),
		zap.Int("body_len", len(body)))
	return nil
}
