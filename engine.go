package shopadmin

import (
	"time"

	"github.com/miaodi2002/shopadmin/password"
	"github.com/miaodi2002/shopadmin/session"
	"go.uber.org/zap"
)

// Engine is the credential protection and session/audit core. Construct it
// through the [Builder]; after Build it is immutable and safe for
// concurrent use.
type Engine struct {
	config          Config
	sessionStore    *session.Store
	adminProvider   AdminProvider
	accountStore    AccountStore
	credentialStore CredentialStore
	auditStore      AuditStore
	audit           *auditDispatcher
	metrics         *Metrics
	passwordHash    *password.Argon2
	throttle        LoginThrottle
	logger          *zap.Logger
}

// Close drains the audit dispatcher. Call it on shutdown so buffered
// events reach the sink.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports how many audit events the dispatcher discarded
// because its buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of all engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) now() time.Time {
	if e.config.Now != nil {
		return e.config.Now()
	}
	return time.Now()
}

func (e *Engine) sessionTTL() time.Duration {
	return e.config.Session.TTL
}
