package database

import (
	"context"
	"time"

	"github.com/jobintel/ml-gateway/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// LogRetention periodically deletes request log rows older than the
// configured retention window.
type LogRetention struct {
	logger    *logrus.Logger
	db        *gorm.DB
	retention time.Duration
}

func NewLogRetention(logger *logrus.Logger, db *gorm.DB, retention time.Duration) *LogRetention {
	return &LogRetention{
		logger:    logger,
		db:        db,
		retention: retention,
	}
}

func (l *LogRetention) Start(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Minute)
	defer ticker.Stop()

	logEntry := l.logger.WithField("component", "log_retention")
	logEntry.Info("Starting log retention sweeper")

	for {
		select {
		case <-ticker.C:
			l.sweep(ctx, logEntry)
		case <-ctx.Done():
			logEntry.Info("Stopping log retention sweeper")
			return
		}
	}
}

func (l *LogRetention) sweep(ctx context.Context, log *logrus.Entry) {
	cutoff := time.Now().Add(-l.retention)

	res := l.db.WithContext(ctx).
		Where("timestamp < ?", cutoff).
		Delete(&models.ProxyRequestLog{})
	if res.Error != nil {
		log.WithError(res.Error).Error("Proxy log sweep failed")
	}

	accessRes := l.db.WithContext(ctx).
		Where("timestamp < ?", cutoff).
		Delete(&models.AccessLog{})
	if accessRes.Error != nil {
		log.WithError(accessRes.Error).Error("Access log sweep failed")
	}

	log.WithFields(logrus.Fields{
		"proxy_rows":  res.RowsAffected,
		"access_rows": accessRes.RowsAffected,
	}).Info("Deleted expired log rows")
}
