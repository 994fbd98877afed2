package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pixelfood/internal/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	QueueRecibos = "jobs:recibos"

	JobRecibo = "recibo"

	// DefaultMaxAttempts is how many times a job runs before it is parked
	// in the dead letter queue.
	DefaultMaxAttempts = 3
)

// Job is the generic envelope for all async tasks.
type Job struct {
	ID       string          `json:"id"`
	Type     string          `json:"type"`
	Attempts int             `json:"attempts"`
	Payload  json.RawMessage `json:"payload"`
}

// Listas is the subset of the Redis client the queue needs.
type Listas interface {
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	BRPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
	LLen(ctx context.Context, key string) *redis.IntCmd
	RPop(ctx context.Context, key string) *redis.StringCmd
}

// Processor runs one job payload. A returned error schedules a retry.
type Processor interface {
	Process(ctx context.Context, raw json.RawMessage) error
}

// ErrSinReintento marks failures that retrying cannot fix.
var ErrSinReintento = errors.New("worker: job cannot be retried")

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb Listas
}

func NewDispatcher(rdb Listas) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueRecibo pushes a receipt e-mail job to Redis.
func (d *Dispatcher) EnqueueRecibo(ctx context.Context, correo string, recibo model.Recibo) error {
	return d.enqueue(ctx, QueueRecibos, JobRecibo, ReciboJobPayload{Correo: correo, Recibo: recibo})
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("worker: encode %s payload: %w", jobType, err)
	}
	return push(ctx, d.rdb, queue, Job{ID: uuid.NewString(), Type: jobType, Payload: data})
}

func push(ctx context.Context, rdb Listas, queue string, job Job) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return rdb.LPush(ctx, queue, encoded).Err()
}

// Pool consumes the job queues with a fixed number of goroutines.
type Pool struct {
	rdb         Listas
	handlers    map[string]Processor
	queues      []string
	maxAttempts int
	popTimeout  time.Duration
}

func NewPool(rdb Listas, handlers map[string]Processor) *Pool {
	return &Pool{
		rdb:         rdb,
		handlers:    handlers,
		queues:      []string{QueueRecibos},
		maxAttempts: DefaultMaxAttempts,
		popTimeout:  5 * time.Second,
	}
}

// Run blocks until ctx is done and every worker has returned.
// Each goroutine blocks on BRPOP — zero CPU when idle.
func (p *Pool) Run(ctx context.Context, numWorkers int) error {
	if numWorkers < 1 {
		numWorkers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < numWorkers; i++ {
		id := i
		g.Go(func() error {
			p.runWorker(gctx, id)
			return nil
		})
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
	return g.Wait()
}

func (p *Pool) runWorker(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to popTimeout then loops to check ctx
			result, err := p.rdb.BRPop(ctx, p.popTimeout, p.queues...).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					log.Warn().Err(err).Int("worker", id).Msg("worker: pop failed")
					time.Sleep(time.Second)
				}
				continue
			}
			if len(result) < 2 {
				continue
			}
			p.processJob(ctx, result[0], result[1])
		}
	}
}

// processJob runs one job; failed jobs go back to the queue until
// maxAttempts, then to the dead letter queue.
func (p *Pool) processJob(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		SendToDLQ(ctx, p.rdb, queue, nil, raw, "undecodable job: "+err.Error())
		return
	}
	handler, ok := p.handlers[job.Type]
	if !ok {
		SendToDLQ(ctx, p.rdb, queue, &job, "", "no handler for job type")
		return
	}

	job.Attempts++
	err := handler.Process(ctx, job.Payload)
	if err == nil {
		log.Info().Str("job_id", job.ID).Str("type", job.Type).Int("attempt", job.Attempts).Msg("job done")
		return
	}
	if errors.Is(err, ErrSinReintento) || job.Attempts >= p.maxAttempts {
		SendToDLQ(ctx, p.rdb, queue, &job, "", err.Error())
		return
	}
	log.Warn().Err(err).Str("job_id", job.ID).Int("attempt", job.Attempts).Msg("job failed, requeued")
	if perr := push(ctx, p.rdb, queue, job); perr != nil {
		log.Error().Err(perr).Str("job_id", job.ID).Msg("worker: requeue failed")
	}
}
