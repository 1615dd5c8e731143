// Package progress records anonymous exercise activity. Events carry scores
// only; learner answers are never logged.
package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	EventChecked = "exercise_checked"
	EventReset   = "exercise_reset"
)

const dbTimeout = 3 * time.Second

// Event is one row of the exercise_events table.
type Event struct {
	SessionID  string
	TopicID    string
	ExerciseID string
	EventType  string
	Data       map[string]any
	CreatedAt  time.Time
}

// Checked builds the event for a completed check.
func Checked(sessionID, topicID, exerciseID string, correct, total int) Event {
	return Event{
		SessionID:  sessionID,
		TopicID:    topicID,
		ExerciseID: exerciseID,
		EventType:  EventChecked,
		Data: map[string]any{
			"topic":   topicID,
			"correct": correct,
			"total":   total,
		},
	}
}

// Reset builds the event for a cleared exercise.
func Reset(sessionID, topicID, exerciseID string) Event {
	return Event{
		SessionID:  sessionID,
		TopicID:    topicID,
		ExerciseID: exerciseID,
		EventType:  EventReset,
		Data:       map[string]any{"topic": topicID},
	}
}

func (e Event) validate() error {
	if e.EventType == "" {
		return fmt.Errorf("event_type is required")
	}
	if e.ExerciseID == "" {
		return fmt.Errorf("exercise_id is required")
	}
	return nil
}

// EventLogger defines event logging behavior.
type EventLogger interface {
	LogEvent(event Event) error
}

// NopEventLogger ignores all events.
type NopEventLogger struct{}

func (NopEventLogger) LogEvent(Event) error {
	return nil
}

// MemoryEventLogger stores events in memory for tests.
type MemoryEventLogger struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryEventLogger() *MemoryEventLogger {
	return &MemoryEventLogger{
		events: []Event{},
	}
}

func (l *MemoryEventLogger) LogEvent(event Event) error {
	if err := event.validate(); err != nil {
		return err
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	l.mu.Lock()
	l.events = append(l.events, event)
	l.mu.Unlock()

	return nil
}

func (l *MemoryEventLogger) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Event{}, l.events...)
}

// PostgresEventLogger inserts events into the exercise_events table.
type PostgresEventLogger struct {
	pool *pgxpool.Pool
}

func NewPostgresEventLogger(pool *pgxpool.Pool) *PostgresEventLogger {
	return &PostgresEventLogger{pool: pool}
}

func (l *PostgresEventLogger) LogEvent(event Event) error {
	if l == nil || l.pool == nil {
		return fmt.Errorf("event logger pool is nil")
	}
	if err := event.validate(); err != nil {
		return err
	}
	if event.SessionID == "" {
		return fmt.Errorf("session_id is required")
	}

	payload := event.Data
	if payload == nil {
		payload = map[string]any{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}

	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	_, err = l.pool.Exec(ctx,
		`INSERT INTO exercise_events (session_id, topic_id, exercise_id, event_type, data, created_at)
		 VALUES ($1::uuid, $2, $3, $4, $5::jsonb, $6)`,
		event.SessionID,
		event.TopicID,
		event.ExerciseID,
		event.EventType,
		string(data),
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	slog.Debug("event logged",
		"type", event.EventType,
		"topic_id", event.TopicID,
		"exercise_id", event.ExerciseID,
	)
	return nil
}

// Summary is the aggregate activity of one exercise block.
type Summary struct {
	ExerciseID string  `json:"exercise_id"`
	Checks     int     `json:"checks"`
	Resets     int     `json:"resets"`
	MeanScore  float64 `json:"mean_score"`
}

// Summaries aggregates logged events per exercise for a topic.
func (l *PostgresEventLogger) Summaries(ctx context.Context, topicID string) ([]Summary, error) {
	if l == nil || l.pool == nil {
		return nil, fmt.Errorf("event logger pool is nil")
	}

	rows, err := l.pool.Query(ctx,
		`SELECT exercise_id,
		        count(*) FILTER (WHERE event_type = $2),
		        count(*) FILTER (WHERE event_type = $3),
		        coalesce(avg((data->>'correct')::float / nullif((data->>'total')::float, 0))
		                 FILTER (WHERE event_type = $2), 0)
		 FROM exercise_events
		 WHERE topic_id = $1
		 GROUP BY exercise_id
		 ORDER BY exercise_id`,
		topicID, EventChecked, EventReset,
	)
	if err != nil {
		return nil, fmt.Errorf("query summaries: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ExerciseID, &s.Checks, &s.Resets, &s.MeanScore); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
