package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Jottaaa12/pdv-web-admin/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueEmail   = "jobs:email"
	QueueReports = "jobs:reports"

	// MaxAttempts is how many times a job runs before it lands in the DLQ.
	MaxAttempts = 3
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// Handler processes one job payload. A returned error schedules a retry
// unless it is marked Permanent.
type Handler interface {
	Process(ctx context.Context, raw json.RawMessage) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, raw json.RawMessage) error

func (f HandlerFunc) Process(ctx context.Context, raw json.RawMessage) error { return f(ctx, raw) }

type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying; the job goes straight to the DLQ.
func Permanent(err error) error { return permanentError{err: err} }

func isPermanent(err error) bool {
	var p permanentError
	return errors.As(err, &p)
}

// pusher is the slice of the redis client the pool writes with.
type pusher interface {
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb pusher
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueEmail pushes an email job.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload EmailJobPayload) error {
	return d.enqueue(ctx, QueueEmail, "email", payload)
}

// EnqueueSessionReport pushes a closing report job for a cash session.
func (d *Dispatcher) EnqueueSessionReport(ctx context.Context, payload SessionReportPayload) error {
	return d.enqueue(ctx, QueueReports, "session_report", payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return push(ctx, d.rdb, queue, Job{Type: jobType, Payload: data})
}

func push(ctx context.Context, rdb pusher, queue string, job Job) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return rdb.LPush(ctx, queue, encoded).Err()
}

// Pool consumes the registered queues with a fixed number of goroutines.
type Pool struct {
	rdb      *redis.Client
	handlers map[string]Handler
	wg       sync.WaitGroup
}

func NewPool(rdb *redis.Client) *Pool {
	return &Pool{rdb: rdb, handlers: map[string]Handler{}}
}

// Register binds a handler to a queue. Call before Start.
func (p *Pool) Register(queue string, h Handler) {
	p.handlers[queue] = h
}

// Start launches numWorkers goroutines. Each blocks on BRPOP, so idle workers
// cost no CPU. Wait returns once ctx is cancelled and all workers exited.
func (p *Pool) Start(ctx context.Context, numWorkers int) {
	queues := make([]string, 0, len(p.handlers))
	for q := range p.handlers {
		queues = append(queues, q)
	}
	for i := 0; i < numWorkers; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			p.run(ctx, id, queues)
		}(i)
	}
	log.Info().Int("workers", numWorkers).Strs("queues", queues).Msg("worker pool started")
}

func (p *Pool) Wait() { p.wg.Wait() }

func (p *Pool) run(ctx context.Context, id int, queues []string) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Int("worker", id).Msg("worker shutting down")
			return
		default:
			// Blocking pop: waits up to 5s then loops to check ctx
			result, err := p.rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				if d := popFailureDelay(err); d > 0 && ctx.Err() == nil {
					log.Warn().Err(err).Int("worker", id).Dur("retry_in", d).Msg("queue pop failed")
					select {
					case <-ctx.Done():
					case <-time.After(d):
					}
				}
				continue
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, p.rdb, p.handlers, result[0], result[1])
		}
	}
}

// popRetryDelay paces workers while Redis is unreachable.
const popRetryDelay = time.Second

// popFailureDelay is zero for an empty queue (redis.Nil) and popRetryDelay for
// any other BRPOP failure.
func popFailureDelay(err error) time.Duration {
	if err == nil || errors.Is(err, redis.Nil) {
		return 0
	}
	return popRetryDelay
}

// processJob runs one raw job and requeues or dead-letters it on failure.
func processJob(ctx context.Context, rdb pusher, handlers map[string]Handler, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		SendToDLQ(ctx, rdb, queue, "unknown", json.RawMessage(fmt.Sprintf("%q", raw)), "malformed envelope", 0)
		infra.JobsProcessedTotal.WithLabelValues(queue, "dead").Inc()
		return
	}
	h, ok := handlers[queue]
	if !ok {
		log.Error().Str("queue", queue).Msg("no handler registered")
		return
	}

	job.Attempts++
	err := h.Process(ctx, job.Payload)
	if err == nil {
		infra.JobsProcessedTotal.WithLabelValues(queue, "ok").Inc()
		return
	}

	if isPermanent(err) || job.Attempts >= MaxAttempts {
		SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, err.Error(), job.Attempts)
		infra.JobsProcessedTotal.WithLabelValues(queue, "dead").Inc()
		return
	}
	log.Warn().Err(err).Str("queue", queue).Str("type", job.Type).Int("attempt", job.Attempts).Msg("job failed, requeueing")
	if pushErr := push(ctx, rdb, queue, job); pushErr != nil {
		log.Error().Err(pushErr).Str("queue", queue).Msg("requeue failed")
	}
	infra.JobsProcessedTotal.WithLabelValues(queue, "retry").Inc()
}
