// Package security records an audit trail of executed statements.
package security

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"
)

// AuditLevel selects which executions reach the audit log.
type AuditLevel int

const (
	// AuditNone disables audit logging.
	AuditNone AuditLevel = iota
	// AuditFailures logs only executions that returned an error.
	AuditFailures
	// AuditWrites logs every executed statement.
	AuditWrites
)

// AuditEvent is one executed statement. Parameter values are never recorded,
// only a digest of them.
type AuditEvent struct {
	Timestamp    time.Time `json:"timestamp"`
	User         string    `json:"user,omitempty"`
	Operation    string    `json:"operation"`
	Table        string    `json:"table,omitempty"`
	AffectedRows int64     `json:"affected_rows"`
	SQL          string    `json:"sql"`
	ParamsHash   string    `json:"params_hash,omitempty"`
	ClientIP     string    `json:"client_ip,omitempty"`
	RequestID    string    `json:"request_id,omitempty"`
	Success      bool      `json:"success"`
	Error        string    `json:"error,omitempty"`
	Duration     int64     `json:"duration_ms,omitempty"`
}

// Execution describes a finished statement as seen by the executor.
type Execution struct {
	Operation    string
	Table        string
	SQL          string
	Args         []interface{}
	RowsAffected int64
	Duration     time.Duration
	Err          error
}

// Auditor writes audit events to a slog logger.
type Auditor struct {
	logger *slog.Logger
	level  AuditLevel
}

// NewAuditor creates an auditor. A nil logger disables it.
func NewAuditor(logger *slog.Logger, level AuditLevel) *Auditor {
	return &Auditor{
		logger: logger,
		level:  level,
	}
}

// Record logs an execution if the audit level selects it and returns the
// event that was written.
func (a *Auditor) Record(ctx context.Context, e Execution) (AuditEvent, bool) {
	if !a.shouldLog(e.Err) {
		return AuditEvent{}, false
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		User:      GetUser(ctx),
		ClientIP:  GetClientIP(ctx),
		RequestID: GetRequestID(ctx),
		Operation: e.Operation,
		Table:     e.Table,
		SQL:       e.SQL,
		Success:   e.Err == nil,
		Duration:  e.Duration.Milliseconds(),
	}
	if len(e.Args) > 0 {
		event.ParamsHash = hashParams(e.Args)
	}
	if e.Err != nil {
		event.Error = e.Err.Error()
	} else {
		event.AffectedRows = e.RowsAffected
	}

	a.logEvent(ctx, event)
	return event, true
}

func (a *Auditor) shouldLog(err error) bool {
	if a == nil || a.logger == nil {
		return false
	}
	switch a.level {
	case AuditFailures:
		return err != nil
	case AuditWrites:
		return true
	default:
		return false
	}
}

// logEvent writes at Info for successes and Warn for failures.
func (a *Auditor) logEvent(ctx context.Context, event AuditEvent) {
	level := slog.LevelInfo
	if !event.Success {
		level = slog.LevelWarn
	}
	a.logger.Log(ctx, level, "audit_event",
		"timestamp", event.Timestamp,
		"user", event.User,
		"operation", event.Operation,
		"table", event.Table,
		"affected_rows", event.AffectedRows,
		"sql", event.SQL,
		"params_hash", event.ParamsHash,
		"client_ip", event.ClientIP,
		"request_id", event.RequestID,
		"success", event.Success,
		"error", event.Error,
		"duration_ms", event.Duration,
	)
}

// hashParams digests the bound values so identical inserts can be correlated
// without logging the values themselves.
func hashParams(params []interface{}) string {
	h := sha256.New()
	for _, param := range params {
		_, _ = fmt.Fprintf(h, "%v\x00", param)
	}
	return hex.EncodeToString(h.Sum(nil))
}

type contextKey string

const (
	userKey      contextKey = "sqlstage:user"
	clientIPKey  contextKey = "sqlstage:client_ip"
	requestIDKey contextKey = "sqlstage:request_id"
)

// WithUser attaches the acting user to ctx for audit events.
func WithUser(ctx context.Context, user string) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// WithClientIP attaches the client address to ctx for audit events.
func WithClientIP(ctx context.Context, clientIP string) context.Context {
	return context.WithValue(ctx, clientIPKey, clientIP)
}

// WithRequestID attaches a request id to ctx for audit events.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetUser returns the user attached by WithUser.
func GetUser(ctx context.Context) string {
	user, _ := ctx.Value(userKey).(string)
	return user
}

// GetClientIP returns the address attached by WithClientIP.
func GetClientIP(ctx context.Context) string {
	clientIP, _ := ctx.Value(clientIPKey).(string)
	return clientIP
}

// GetRequestID returns the id attached by WithRequestID.
func GetRequestID(ctx context.Context) string {
	requestID, _ := ctx.Value(requestIDKey).(string)
	return requestID
}
