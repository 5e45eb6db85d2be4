package shopadmin

import (
	"context"
	"time"
)

// Read-only audit queries for the administrative dashboard. All of them go
// straight to the AuditStore; the async dispatcher means very recent events
// may not be visible yet.

// RecentActivity returns the newest events, most recent first.
func (e *Engine) RecentActivity(ctx context.Context, limit int) ([]AuditEvent, error) {
	if e.auditStore == nil {
		return nil, ErrEngineNotReady
	}
	if limit <= 0 {
		limit = 50
	}
	return e.auditStore.QueryEvents(ctx, AuditFilter{Limit: limit})
}

// EntityHistory returns the trail for one entity, most recent first.
func (e *Engine) EntityHistory(ctx context.Context, entityType, entityID string, limit int) ([]AuditEvent, error) {
	if e.auditStore == nil {
		return nil, ErrEngineNotReady
	}
	return e.auditStore.QueryEvents(ctx, AuditFilter{
		EntityType: entityType,
		EntityID:   entityID,
		Limit:      limit,
	})
}

// ActorActivity returns the trail for one actor, most recent first.
func (e *Engine) ActorActivity(ctx context.Context, actorID string, limit int) ([]AuditEvent, error) {
	if e.auditStore == nil {
		return nil, ErrEngineNotReady
	}
	return e.auditStore.QueryEvents(ctx, AuditFilter{
		ActorID: actorID,
		Limit:   limit,
	})
}

// ActionCounts groups events by action over a time range.
func (e *Engine) ActionCounts(ctx context.Context, from, to time.Time) (map[string]int64, error) {
	if e.auditStore == nil {
		return nil, ErrEngineNotReady
	}
	return e.auditStore.CountByAction(ctx, from, to)
}

// ActorCounts groups events by actor over a time range. The "unknown"
// placeholder actor shows up as its own row.
func (e *Engine) ActorCounts(ctx context.Context, from, to time.Time) (map[string]int64, error) {
	if e.auditStore == nil {
		return nil, ErrEngineNotReady
	}
	return e.auditStore.CountByActor(ctx, from, to)
}

// ActivityBuckets returns event counts per time bucket for activity charts.
func (e *Engine) ActivityBuckets(ctx context.Context, from, to time.Time, bucket time.Duration) ([]ActivityBucket, error) {
	if e.auditStore == nil {
		return nil, ErrEngineNotReady
	}
	if bucket <= 0 {
		bucket = time.Hour
	}
	return e.auditStore.ActivityBuckets(ctx, from, to, bucket)
}
