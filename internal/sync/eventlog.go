package syncx

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	EventResponseSubmitted = "ResponseSubmitted"
	EventFormPublished     = "FormPublished"
)

type Event struct {
	Offset    int64  `json:"offset"`
	SiteID    string `json:"siteId"`
	Type      string `json:"type"`
	Key       string `json:"key"`
	DataJSON  string `json:"data"`
	CreatedAt int64  `json:"createdAt"`
}

// NewEvent encodes data as the event payload.
func NewEvent(typ, key string, data any) (Event, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return Event{}, fmt.Errorf("encode %s event: %w", typ, err)
	}
	return Event{Type: typ, Key: key, DataJSON: string(b)}, nil
}

// Appender records events. Implementations stamp SiteID and CreatedAt.
type Appender interface {
	Append(ctx context.Context, e Event) error
}

type EventRepo struct {
	db     *sql.DB
	siteID string
	now    func() time.Time
}

func NewEventRepo(db *sql.DB, siteID string) *EventRepo {
	if siteID == "" {
		siteID = "local"
	}
	return &EventRepo{db: db, siteID: siteID, now: time.Now}
}

func (r *EventRepo) Append(ctx context.Context, e Event) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO event_log (site_id, typ, key, data, created_at)
		 VALUES ($1,$2,$3,$4,$5)`,
		r.siteID, e.Type, e.Key, e.DataJSON, r.now().UnixMilli())
	return err
}

// Since returns up to limit events with an offset greater than after.
func (r *EventRepo) Since(ctx context.Context, after int64, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT "offset", site_id, typ, key, data, created_at FROM event_log
		 WHERE "offset" > $1 ORDER BY "offset" ASC LIMIT $2`, after, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Event{}
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.Offset, &e.SiteID, &e.Type, &e.Key, &e.DataJSON, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// MongoEventRepo appends events to the "event_log" collection.
type MongoEventRepo struct {
	coll   *mongo.Collection
	siteID string
	now    func() time.Time
}

func NewMongoEventRepo(db *mongo.Database, siteID string) *MongoEventRepo {
	if siteID == "" {
		siteID = "local"
	}
	return &MongoEventRepo{coll: db.Collection("event_log"), siteID: siteID, now: time.Now}
}

func (r *MongoEventRepo) Append(ctx context.Context, e Event) error {
	_, err := r.coll.InsertOne(ctx, map[string]any{
		"siteId":    r.siteID,
		"type":      e.Type,
		"key":       e.Key,
		"data":      e.DataJSON,
		"createdAt": r.now().UnixMilli(),
	})
	return err
}

// MemoryLog keeps events in process; used by the memory driver and tests.
type MemoryLog struct {
	mu     sync.Mutex
	events []Event
	now    func() time.Time
}

func NewMemoryLog() *MemoryLog { return &MemoryLog{now: time.Now} }

func (l *MemoryLog) Append(_ context.Context, e Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.Offset = int64(len(l.events) + 1)
	e.SiteID = "local"
	e.CreatedAt = l.now().UnixMilli()
	l.events = append(l.events, e)
	return nil
}

func (l *MemoryLog) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Event(nil), l.events...)
}
