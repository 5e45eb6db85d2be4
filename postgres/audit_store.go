package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	shopadmin "github.com/miaodi2002/shopadmin"
)

// AuditStore is the durable append-only audit trail. The package exposes no
// update or delete for existing events.
type AuditStore struct {
	pool *pgxpool.Pool
}

func NewAuditStore(pool *pgxpool.Pool) *AuditStore {
	return &AuditStore{pool: pool}
}

func (s *AuditStore) AppendEvent(ctx context.Context, event shopadmin.AuditEvent) error {
	const query = `INSERT INTO audit_events
		(event_id, occurred_at, action, actor_id, entity_type, entity_id, ip, success, error_code, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	var metadata []byte
	if len(event.Metadata) > 0 {
		encoded, err := json.Marshal(event.Metadata)
		if err != nil {
			return fmt.Errorf("%w: encode metadata: %v", shopadmin.ErrRepositoryUnavailable, err)
		}
		metadata = encoded
	}

	_, err := s.pool.Exec(ctx, query,
		event.EventID,
		event.Timestamp,
		event.Action,
		event.ActorID,
		event.EntityType,
		event.EntityID,
		event.IP,
		event.Success,
		event.Error,
		metadata,
	)
	if err != nil {
		return fmt.Errorf("%w: append event: %v", shopadmin.ErrRepositoryUnavailable, err)
	}
	return nil
}

func (s *AuditStore) QueryEvents(ctx context.Context, filter shopadmin.AuditFilter) ([]shopadmin.AuditEvent, error) {
	var (
		conditions []string
		args       []any
	)

	addCondition := func(clause string, value any) {
		args = append(args, value)
		conditions = append(conditions, clause+"$"+strconv.Itoa(len(args)))
	}

	if filter.ActorID != "" {
		addCondition("actor_id = ", filter.ActorID)
	}
	if filter.EntityType != "" {
		addCondition("entity_type = ", filter.EntityType)
	}
	if filter.EntityID != "" {
		addCondition("entity_id = ", filter.EntityID)
	}
	if filter.Action != "" {
		addCondition("action = ", filter.Action)
	}
	if !filter.From.IsZero() {
		addCondition("occurred_at >= ", filter.From)
	}
	if !filter.To.IsZero() {
		addCondition("occurred_at < ", filter.To)
	}

	query := `SELECT event_id, occurred_at, action, actor_id, entity_type, entity_id, ip, success, error_code, metadata
		FROM audit_events`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY occurred_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += " LIMIT $" + strconv.Itoa(len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: query events: %v", shopadmin.ErrRepositoryUnavailable, err)
	}
	defer rows.Close()

	var events []shopadmin.AuditEvent
	for rows.Next() {
		var (
			event    shopadmin.AuditEvent
			metadata []byte
		)
		if err := rows.Scan(
			&event.EventID,
			&event.Timestamp,
			&event.Action,
			&event.ActorID,
			&event.EntityType,
			&event.EntityID,
			&event.IP,
			&event.Success,
			&event.Error,
			&metadata,
		); err != nil {
			return nil, fmt.Errorf("%w: scan event: %v", shopadmin.ErrRepositoryUnavailable, err)
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &event.Metadata); err != nil {
				return nil, fmt.Errorf("%w: decode metadata: %v", shopadmin.ErrRepositoryUnavailable, err)
			}
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: query events: %v", shopadmin.ErrRepositoryUnavailable, err)
	}
	return events, nil
}

func (s *AuditStore) CountByAction(ctx context.Context, from, to time.Time) (map[string]int64, error) {
	const query = `SELECT action, count(*) FROM audit_events
		WHERE occurred_at >= $1 AND occurred_at < $2
		GROUP BY action`
	return s.countGrouped(ctx, query, from, to)
}

func (s *AuditStore) CountByActor(ctx context.Context, from, to time.Time) (map[string]int64, error) {
	const query = `SELECT actor_id, count(*) FROM audit_events
		WHERE occurred_at >= $1 AND occurred_at < $2
		GROUP BY actor_id`
	return s.countGrouped(ctx, query, from, to)
}

func (s *AuditStore) countGrouped(ctx context.Context, query string, from, to time.Time) (map[string]int64, error) {
	rows, err := s.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: count events: %v", shopadmin.ErrRepositoryUnavailable, err)
	}
	defer rows.Close()

	counts := map[string]int64{}
	for rows.Next() {
		var (
			key   string
			count int64
		)
		if err := rows.Scan(&key, &count); err != nil {
			return nil, fmt.Errorf("%w: scan count: %v", shopadmin.ErrRepositoryUnavailable, err)
		}
		counts[key] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: count events: %v", shopadmin.ErrRepositoryUnavailable, err)
	}
	return counts, nil
}

func (s *AuditStore) ActivityBuckets(ctx context.Context, from, to time.Time, bucket time.Duration) ([]shopadmin.ActivityBucket, error) {
	// Arbitrary bucket widths: snap the epoch seconds down to a multiple of
	// the bucket size instead of relying on date_trunc's fixed units.
	const query = `SELECT
			to_timestamp(floor(extract(epoch FROM occurred_at) / $3) * $3) AS bucket_start,
			count(*)
		FROM audit_events
		WHERE occurred_at >= $1 AND occurred_at < $2
		GROUP BY bucket_start
		ORDER BY bucket_start`

	rows, err := s.pool.Query(ctx, query, from, to, bucket.Seconds())
	if err != nil {
		return nil, fmt.Errorf("%w: activity buckets: %v", shopadmin.ErrRepositoryUnavailable, err)
	}
	defer rows.Close()

	var buckets []shopadmin.ActivityBucket
	for rows.Next() {
		var b shopadmin.ActivityBucket
		if err := rows.Scan(&b.Start, &b.Count); err != nil {
			return nil, fmt.Errorf("%w: scan bucket: %v", shopadmin.ErrRepositoryUnavailable, err)
		}
		buckets = append(buckets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: activity buckets: %v", shopadmin.ErrRepositoryUnavailable, err)
	}
	return buckets, nil
}
