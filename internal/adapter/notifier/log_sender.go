package notifier

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/srgjo27/transit_reservation/internal/core/domain"
)

// LogSender writes notifications to the log. It stands in for a broker when
// none is configured.
type LogSender struct {
	log logrus.FieldLogger
}

func NewLogSender(logger logrus.FieldLogger) *LogSender {
	return &LogSender{log: logger.WithField("component", "notifier")}
}

func (s *LogSender) Send(_ context.Context, kind domain.NotificationKind, payload any) error {
	s.log.WithFields(logrus.Fields{"kind": kind, "payload": payload}).Info("notification")
	return nil
}
