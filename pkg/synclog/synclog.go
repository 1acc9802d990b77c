package synclog

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EventType classifies a reconciliation event
type EventType string

const (
	EventWriteAttempt      EventType = "write_attempt"
	EventWriteRejected     EventType = "write_rejected"
	EventFallbackEngaged   EventType = "fallback_engaged"
	EventIdentifierRefresh EventType = "identifier_refresh"
	EventWriteSucceeded    EventType = "write_succeeded"
	EventChildFailed       EventType = "child_failed"
	EventRateLimited       EventType = "rate_limit_triggered"
)

// Event is one structured record of a reconciliation step against the CMS.
// Every fallback-policy attempt emits exactly one event, so the ordered
// credential-tier escalation is reconstructable from the log alone.
type Event struct {
	Timestamp  time.Time              `json:"timestamp"`
	Service    string                 `json:"service"`
	Event      EventType              `json:"event"`
	Collection string                 `json:"collection,omitempty"`
	Operation  string                 `json:"operation,omitempty"` // create | update | resolve
	Tier       string                 `json:"tier,omitempty"`      // user | service
	Identifier string                 `json:"identifier,omitempty"`
	UserID     int64                  `json:"user_id,omitempty"`
	Status     int                    `json:"status,omitempty"` // upstream HTTP status
	RequestID  string                 `json:"request_id,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
}

// Logger writes sync events to zap and, when configured, to a persistence
// sink (the Postgres audit table).
type Logger struct {
	zapLogger   *zap.Logger
	serviceName string
	persistFunc func(ctx context.Context, event Event) error
}

var defaultLogger *Logger

// Init builds the package logger. Output goes to stdout for container
// environments.
func Init(serviceName string) *Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	zl, err := config.Build()
	if err != nil {
		zl, _ = zap.NewProduction()
	}

	l := &Logger{
		zapLogger:   zl,
		serviceName: serviceName,
	}
	defaultLogger = l
	return l
}

// Default returns the package logger, initializing a basic one if Init was
// never called (keeps middleware usable in tests).
func Default() *Logger {
	if defaultLogger == nil {
		name := os.Getenv("SERVICE_NAME")
		if name == "" {
			name = "admissions-backend"
		}
		return Init(name)
	}
	return defaultLogger
}

// SetPersistFunc wires the database sink. Persistence failures are logged and
// swallowed: losing an audit row must never fail a user request.
func (l *Logger) SetPersistFunc(f func(ctx context.Context, event Event) error) {
	l.persistFunc = f
}

// Record logs one sync event and forwards it to the sink if configured.
func (l *Logger) Record(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	event.Service = l.serviceName

	fields := []zap.Field{
		zap.String("event", string(event.Event)),
		zap.String("collection", event.Collection),
		zap.String("operation", event.Operation),
		zap.String("tier", event.Tier),
		zap.String("identifier", event.Identifier),
		zap.Int64("user_id", event.UserID),
		zap.Int("status", event.Status),
	}
	if event.RequestID != "" {
		fields = append(fields, zap.String("request_id", event.RequestID))
	}
	if len(event.Details) > 0 {
		fields = append(fields, zap.Any("details", event.Details))
	}

	switch event.Event {
	case EventWriteSucceeded, EventWriteAttempt, EventIdentifierRefresh:
		l.zapLogger.Info("sync", fields...)
	case EventFallbackEngaged, EventChildFailed, EventRateLimited:
		l.zapLogger.Warn("sync", fields...)
	case EventWriteRejected:
		l.zapLogger.Error("sync", fields...)
	default:
		l.zapLogger.Info("sync", fields...)
	}

	if l.persistFunc != nil {
		// Bounded: the sink must not stall the request on a slow database
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		go func() {
			defer cancel()
			if err := l.persistFunc(pctx, event); err != nil {
				l.zapLogger.Warn("sync event persistence failed", zap.Error(err))
			}
		}()
	}
}

// Sync flushes buffered log entries.
func (l *Logger) Sync() {
	_ = l.zapLogger.Sync()
}
