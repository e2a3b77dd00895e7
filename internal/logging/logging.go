// Package logging configures the process-wide logrus logger.
package logging

import (
	"ecommerce_backend/internal/config"

	"github.com/sirupsen/logrus"
)

// Setup configures logrus for the environment and, when MONGO_URI is set,
// ships every entry to MongoDB. The returned func flushes pending entries.
func Setup(cfg *config.Config) func() {
	if cfg.IsProd {
		logrus.SetFormatter(&logrus.JSONFormatter{}) // Machine-readable logs in production
		logrus.SetLevel(logrus.InfoLevel)
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		logrus.SetLevel(logrus.DebugLevel)
	}

	if cfg.MongoURI == "" {
		return func() {}
	}
	hook, err := NewMongoHook(cfg.MongoURI, cfg.MongoDB, cfg.MongoLogCollection)
	if err != nil {
		// Log shipping is optional, keep serving with local logs only
		logrus.WithError(err).Warn("mongo log hook disabled")
		return func() {}
	}
	logrus.AddHook(hook)
	logrus.WithFields(logrus.Fields{
		"db":         cfg.MongoDB,
		"collection": cfg.MongoLogCollection,
	}).Info("shipping logs to mongo")
	return hook.Close
}
