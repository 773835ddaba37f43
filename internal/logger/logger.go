// Package logger holds the application-wide zap logger and the HTTP
// request logging middleware.
package logger

import (
	"errors"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"
)

// Log is the global SugaredLogger. It must be initialized via Init()
// before use.
var Log *zap.SugaredLogger = zap.NewNop().Sugar()

// Init builds the global logger at the given level.
func Init(level string) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return err
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = lvl
	zl, err := cfg.Build()
	if err != nil {
		return err
	}
	Log = zl.Sugar()

	return nil
}

// Sync flushes buffered entries. Call on shutdown.
func Sync() error {
	if err := Log.Sync(); err != nil && !errors.Is(err, os.ErrInvalid) {
		return err
	}

	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	size, err := r.ResponseWriter.Write(b)
	r.size += size
	return size, err
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.ResponseWriter.WriteHeader(statusCode)
	r.status = statusCode
}

// WithLoggingHTTPMiddleware logs method, URI, status, duration and
// response size for every request.
func WithLoggingHTTPMiddleware(h http.Handler) http.Handler {
	logFn := func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		recorder := &statusRecorder{ResponseWriter: w}
		h.ServeHTTP(recorder, r)

		Log.Infoln(
			"uri", r.RequestURI,
			"method", r.Method,
			"status", recorder.status,
			"duration", time.Since(start),
			"size", recorder.size,
		)
	}

	return http.HandlerFunc(logFn)
}
