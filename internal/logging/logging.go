package logging

import (
	"fmt"
	"os"
	"time"

	"github.com/evalphobia/logrus_sentry"
	"github.com/sirupsen/logrus"
)

type Options struct {
	Level     string
	SentryDSN string
	// Text switches to the human readable formatter, used by the CLI.
	Text bool
}

func New(opts Options) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(os.Stderr)

	if opts.Text {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	}

	level := logrus.InfoLevel
	if opts.Level != "" {
		parsed, err := logrus.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level: %w", err)
		}
		level = parsed
	}
	log.SetLevel(level)

	if opts.SentryDSN != "" {
		hook, err := logrus_sentry.NewSentryHook(opts.SentryDSN, []logrus.Level{
			logrus.PanicLevel,
			logrus.FatalLevel,
			logrus.ErrorLevel,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create sentry hook: %w", err)
		}
		hook.Timeout = 2 * time.Second
		hook.StacktraceConfiguration.Enable = true
		log.AddHook(hook)
	}

	return log, nil
}
