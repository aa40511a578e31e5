package service

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/talenthub/competency-api/internal/metrics"
	"github.com/talenthub/competency-api/internal/model"
)

// AuditInserter is the slice of the audit repository the recorder needs.
type AuditInserter interface {
	Insert(ctx context.Context, log *model.AuditLog) error
}

// Target identifies the resource an audit event affected.
type Target struct {
	Type string
	ID   uint64
}

// Recorder appends immutable audit events. A failed write propagates to the
// caller and fails the triggering request: the audit trail is part of the
// action, not an optional side channel.
type Recorder struct {
	repo AuditInserter
	now  Clock
}

// NewRecorder returns a Recorder writing through repo. now defaults to the
// shared UTC clock when nil.
func NewRecorder(repo AuditInserter, now Clock) *Recorder {
	if now == nil {
		now = UTCNow
	}
	return &Recorder{repo: repo, now: now}
}

// Record appends one event. actorID is nil for anonymous events (failed
// logins), target is nil when no single resource was affected.
func (r *Recorder) Record(ctx context.Context, action string, actorID *uint64, target *Target, details map[string]any) error {
	log := model.AuditLog{
		Timestamp: r.now(),
		UserID:    actorID,
		Action:    action,
		Details:   details,
	}
	if target != nil {
		log.TargetType = &target.Type
		log.TargetID = &target.ID
	}
	if err := r.repo.Insert(ctx, &log); err != nil {
		return err
	}
	metrics.AuditEventsTotal.WithLabelValues(action).Inc()
	return nil
}

// Meta carries the request context every authentication event must capture.
type Meta struct {
	IP        string
	UserAgent string
	RequestID string
}

// Details renders the meta as an audit details map, merged with extra.
func (m Meta) Details(extra map[string]any) map[string]any {
	d := map[string]any{
		"ip":         m.IP,
		"user_agent": m.UserAgent,
	}
	if m.RequestID != "" {
		d["request_id"] = m.RequestID
	}
	for k, v := range extra {
		d[k] = v
	}
	return d
}

// MetaFromRequest extracts the client IP, user agent and request id from an
// inbound request.
func MetaFromRequest(r *http.Request, requestID string) Meta {
	return Meta{
		IP:        ClientIP(r),
		UserAgent: userAgent(r),
		RequestID: requestID,
	}
}

// ClientIP extracts the originating client address. Behind a proxy the
// X-Forwarded-For header wins, taking the first hop of the comma-separated
// list; X-Real-IP is the nginx fallback; otherwise the direct peer address.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.SplitN(fwd, ",", 2)[0])
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		return real
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func userAgent(r *http.Request) string {
	if ua := r.Header.Get("User-Agent"); ua != "" {
		return ua
	}
	return "Unknown"
}
