package worker

// dlq.go — Dead Letter Queue
// Jobs that exhaust their attempts are parked in dlq:{original_queue} with the
// reason, and can be put back on their queue once the cause is fixed.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DLQPrefix = "dlq:"

// DLQEntry is one parked job. Raw holds the message when it could not be
// decoded as a Job at all.
type DLQEntry struct {
	Queue    string `json:"queue"`
	Job      *Job   `json:"job,omitempty"`
	Raw      string `json:"raw,omitempty"`
	Reason   string `json:"reason"`
	FailedAt string `json:"failed_at"`
}

// SendToDLQ parks job (or raw, when job is nil) in the dead letter queue of queue.
func SendToDLQ(ctx context.Context, rdb Listas, queue string, job *Job, raw, reason string) {
	entry := DLQEntry{
		Queue:    queue,
		Job:      job,
		Reason:   reason,
		FailedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if job == nil {
		entry.Raw = raw
	}

	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: failed to marshal entry")
		return
	}
	dlqKey := DLQPrefix + queue
	if err := rdb.LPush(ctx, dlqKey, data).Err(); err != nil {
		log.Error().Err(err).Str("dlq_key", dlqKey).Msg("dlq: failed to push to DLQ")
		return
	}

	ev := log.Warn().Str("queue", queue).Str("reason", reason)
	if job != nil {
		ev = ev.Str("job_id", job.ID).Str("job_type", job.Type).Int("attempts", job.Attempts)
	}
	ev.Msg("dlq: job moved to dead letter queue")
}

// DLQLength returns the number of parked jobs of queue.
func DLQLength(ctx context.Context, rdb Listas, queue string) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+queue).Result()
}

// Requeue moves up to n parked jobs, oldest first, back to their queue with
// a fresh attempt count. Undecodable entries are dropped and logged.
func Requeue(ctx context.Context, rdb Listas, queue string, n int) (int, error) {
	moved := 0
	for moved < n {
		raw, err := rdb.RPop(ctx, DLQPrefix+queue).Result()
		if errors.Is(err, redis.Nil) {
			break
		}
		if err != nil {
			return moved, fmt.Errorf("dlq: pop: %w", err)
		}

		var entry DLQEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil || entry.Job == nil {
			log.Error().Str("queue", queue).Msg("dlq: dropping entry without a job")
			continue
		}
		job := *entry.Job
		job.Attempts = 0
		if err := push(ctx, rdb, queue, job); err != nil {
			return moved, fmt.Errorf("dlq: requeue %s: %w", job.ID, err)
		}
		moved++
	}
	if moved > 0 {
		log.Info().Str("queue", queue).Int("jobs", moved).Msg("dlq: jobs requeued")
	}
	return moved, nil
}
