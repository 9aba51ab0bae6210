// Package logging configures the application's structured logger.
package logging

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// Init creates a JSON-formatted logrus logger tagged with the service
// name. The level comes from the argument, overridable via LOG_LEVEL.
func Init(serviceName, level string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "ts",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})

	if env := os.Getenv("LOG_LEVEL"); env != "" {
		level = env
	}
	if lvl, err := logrus.ParseLevel(level); err == nil {
		log.SetLevel(lvl)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}

	log.AddHook(&serviceHook{service: serviceName})

	return log
}

// serviceHook adds a constant service field to every entry.
type serviceHook struct {
	service string
}

func (h *serviceHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *serviceHook) Fire(entry *logrus.Entry) error {
	entry.Data["service"] = h.service
	return nil
}

// WithRequestID returns an entry carrying the request id field, or a
// plain entry when the id is empty.
func WithRequestID(log *logrus.Logger, requestID string) *logrus.Entry {
	if requestID == "" {
		return logrus.NewEntry(log)
	}
	return log.WithField("request_id", requestID)
}
