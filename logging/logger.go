// Package logging builds the application logger.
package logging

import (
	"github.com/sirupsen/logrus"
)

// New creates a configured logrus logger. Unknown levels fall back to
// info. When jsonFormat is set the logger emits JSON lines, which is what
// the deployment's log shipper expects.
func New(level string, jsonFormat bool) *logrus.Logger {
	log := logrus.New()

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	log.SetLevel(parsed)

	if jsonFormat {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}
