package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/jobintel/ml-gateway/internal/clientip"
	"github.com/jobintel/ml-gateway/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
	bytesSent  int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	n, err := lrw.ResponseWriter.Write(b)
	lrw.bytesSent += n
	return n, err
}

// LoggingMiddleware emits an access log line for every request and persists
// it asynchronously when a DB is configured. Only the hashed client
// identifier appears in the log and the row.
func LoggingMiddleware(logger *logrus.Logger, db *gorm.DB) func(http.Handler) http.Handler {
	logEntry := logger.WithField("component", "http_middleware")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			defer func() {
				duration := time.Since(start)
				ipHash := clientip.Hash(clientip.FromRequest(r))

				logEntry.WithFields(logrus.Fields{
					"method":     r.Method,
					"path":       r.URL.Path,
					"status":     lrw.statusCode,
					"duration":   duration,
					"ip_hash":    ipHash,
					"bytes":      lrw.bytesSent,
					"user_agent": r.UserAgent(),
				}).Info("Request processed")

				if db == nil {
					return
				}

				go func() {
					ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
					defer cancel()

					entry := models.AccessLog{
						Timestamp: start,
						Method:    r.Method,
						Path:      r.URL.Path,
						Status:    lrw.statusCode,
						Duration:  duration,
						IPHash:    ipHash,
						UserAgent: r.UserAgent(),
						BytesSent: lrw.bytesSent,
					}

					if err := db.WithContext(ctx).Create(&entry).Error; err != nil {
						logEntry.WithError(err).Warn("Failed to save access log")
					}
				}()
			}()

			next.ServeHTTP(lrw, r)
		})
	}
}
