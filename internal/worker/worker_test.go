package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Jottaaa12/pdv-web-admin/internal/apierror"
	"github.com/Jottaaa12/pdv-web-admin/internal/infra"
	"github.com/Jottaaa12/pdv-web-admin/internal/model"
	"github.com/Jottaaa12/pdv-web-admin/internal/money"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── fakes ─────────────────────────────────────────────────────────────────────

type fakePusher struct{ lists map[string][]string }

func newFakePusher() *fakePusher { return &fakePusher{lists: map[string][]string{}} }

func (f *fakePusher) LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	for _, v := range values {
		switch x := v.(type) {
		case []byte:
			f.lists[key] = append(f.lists[key], string(x))
		case string:
			f.lists[key] = append(f.lists[key], x)
		}
	}
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(int64(len(f.lists[key])))
	return cmd
}

func (f *fakePusher) jobs(t *testing.T, key string) []Job {
	var out []Job
	for _, raw := range f.lists[key] {
		var j Job
		require.NoError(t, json.Unmarshal([]byte(raw), &j))
		out = append(out, j)
	}
	return out
}

type fakeSender struct {
	sent []EmailJobPayload
	err  error
}

func (f *fakeSender) Send(to, subject, body, attach string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, EmailJobPayload{ToEmail: to, Subject: subject, Body: body, AttachPath: attach})
	return nil
}

type fakeFinder struct{ sessions map[uuid.UUID]*model.CashSession }

func (f *fakeFinder) FindSessionByID(_ context.Context, id uuid.UUID) (*model.CashSession, error) {
	if s, ok := f.sessions[id]; ok {
		return s, nil
	}
	return nil, apierror.NotFound("cash session not found")
}

func mustJSON(v any) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}

func encodedJob(t *testing.T, job Job) string {
	b, err := json.Marshal(job)
	require.NoError(t, err)
	return string(b)
}

// ── pool ──────────────────────────────────────────────────────────────────────

// brpopCounter counts BRPOP round trips issued through a client.
type brpopCounter struct{ n atomic.Int32 }

func (h *brpopCounter) DialHook(next redis.DialHook) redis.DialHook { return next }

func (h *brpopCounter) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		if cmd.Name() == "brpop" {
			h.n.Add(1)
		}
		return next(ctx, cmd)
	}
}

func (h *brpopCounter) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func TestPopFailureDelay(t *testing.T) {
	assert.Zero(t, popFailureDelay(nil))
	assert.Zero(t, popFailureDelay(redis.Nil))
	assert.Equal(t, popRetryDelay, popFailureDelay(errors.New("dial tcp: connection refused")))
}

func TestPool_BacksOffWhileRedisIsDown(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 50 * time.Millisecond})
	defer rdb.Close()
	counter := &brpopCounter{}
	rdb.AddHook(counter)

	pool := NewPool(rdb)
	pool.Register(QueueEmail, HandlerFunc(func(context.Context, json.RawMessage) error { return nil }))
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	pool.Start(ctx, 1)
	pool.Wait()

	assert.LessOrEqual(t, counter.n.Load(), int32(2))
}

func TestProcessJob_Success(t *testing.T) {
	rdb := newFakePusher()
	calls := 0
	handlers := map[string]Handler{QueueEmail: HandlerFunc(func(context.Context, json.RawMessage) error {
		calls++
		return nil
	})}

	processJob(context.Background(), rdb, handlers, QueueEmail, encodedJob(t, Job{Type: "email", Payload: mustJSON(map[string]string{})}))
	assert.Equal(t, 1, calls)
	assert.Empty(t, rdb.lists)
}

func TestProcessJob_RequeuesThenDeadLetters(t *testing.T) {
	rdb := newFakePusher()
	handlers := map[string]Handler{QueueEmail: HandlerFunc(func(context.Context, json.RawMessage) error {
		return errors.New("smtp down")
	})}

	raw := encodedJob(t, Job{Type: "email", Payload: mustJSON(map[string]string{"to_email": "a@b.c"})})
	for attempt := 1; attempt < MaxAttempts; attempt++ {
		processJob(context.Background(), rdb, handlers, QueueEmail, raw)
		requeued := rdb.jobs(t, QueueEmail)
		require.Len(t, requeued, attempt)
		assert.Equal(t, attempt, requeued[attempt-1].Attempts)
		raw = rdb.lists[QueueEmail][attempt-1]
	}
	processJob(context.Background(), rdb, handlers, QueueEmail, raw)

	require.Len(t, rdb.lists[DLQPrefix+QueueEmail], 1)
	var entry DLQEntry
	require.NoError(t, json.Unmarshal([]byte(rdb.lists[DLQPrefix+QueueEmail][0]), &entry))
	assert.Equal(t, MaxAttempts, entry.Attempts)
	assert.Equal(t, "smtp down", entry.Reason)
}

func TestProcessJob_PermanentGoesStraightToDLQ(t *testing.T) {
	rdb := newFakePusher()
	handlers := map[string]Handler{QueueReports: HandlerFunc(func(context.Context, json.RawMessage) error {
		return Permanent(errors.New("bad payload"))
	})}
	processJob(context.Background(), rdb, handlers, QueueReports, encodedJob(t, Job{Type: "session_report", Payload: mustJSON(1)}))

	assert.Empty(t, rdb.lists[QueueReports])
	assert.Len(t, rdb.lists[DLQPrefix+QueueReports], 1)
}

func TestProcessJob_MalformedEnvelope(t *testing.T) {
	rdb := newFakePusher()
	processJob(context.Background(), rdb, map[string]Handler{}, QueueEmail, "{not json")
	assert.Len(t, rdb.lists[DLQPrefix+QueueEmail], 1)
}

func TestDispatcher_EnqueueSessionReport(t *testing.T) {
	rdb := newFakePusher()
	d := &Dispatcher{rdb: rdb}
	id := uuid.NewString()
	require.NoError(t, d.EnqueueSessionReport(context.Background(), SessionReportPayload{SessionID: id}))

	jobs := rdb.jobs(t, QueueReports)
	require.Len(t, jobs, 1)
	assert.Equal(t, "session_report", jobs[0].Type)
	assert.JSONEq(t, `{"session_id":"`+id+`"}`, string(jobs[0].Payload))
}

// ── email worker ──────────────────────────────────────────────────────────────

func TestEmailWorker_Sends(t *testing.T) {
	sender := &fakeSender{}
	w := NewEmailWorker(sender, infra.NewCircuitBreaker(infra.DefaultCBConfig("smtp")))
	err := w.Process(context.Background(), mustJSON(EmailJobPayload{ToEmail: "owner@store.com", Subject: "hi", Body: "b"}))
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "owner@store.com", sender.sent[0].ToEmail)
}

func TestEmailWorker_EmptyRecipientIsPermanent(t *testing.T) {
	w := NewEmailWorker(&fakeSender{}, infra.NewCircuitBreaker(infra.DefaultCBConfig("smtp")))
	err := w.Process(context.Background(), mustJSON(EmailJobPayload{Subject: "x"}))
	assert.True(t, isPermanent(err))
}

func TestEmailWorker_SMTPFailureIsRetryable(t *testing.T) {
	w := NewEmailWorker(&fakeSender{err: errors.New("421 try later")}, infra.NewCircuitBreaker(infra.DefaultCBConfig("smtp")))
	err := w.Process(context.Background(), mustJSON(EmailJobPayload{ToEmail: "a@b.c"}))
	require.Error(t, err)
	assert.False(t, isPermanent(err))
}

// ── report worker ─────────────────────────────────────────────────────────────

func closedSession() *model.CashSession {
	expected, final, diff := money.Money(10000), money.Money(10000), money.Money(0)
	level := "normal"
	closed := time.Now()
	return &model.CashSession{
		ID: uuid.New(), UserID: uuid.New(), InitialAmount: 5000,
		ExpectedAmount: &expected, FinalAmount: &final, Difference: &diff, DeviationLevel: &level,
		Status: model.SessionClosed, OpenTime: closed.Add(-time.Hour), CloseTime: &closed,
		Movements: []model.CashMovement{{ID: uuid.New(), Type: model.MovementSupply, Amount: 2000, CreatedAt: closed}},
	}
}

func TestReportWorker_RendersAndMails(t *testing.T) {
	s := closedSession()
	rdb := newFakePusher()
	w := NewReportWorker(&fakeFinder{sessions: map[uuid.UUID]*model.CashSession{s.ID: s}}, &Dispatcher{rdb: rdb},
		ReportWorkerConfig{StoreName: "Loja", StoragePath: t.TempDir(), ReportEmail: "owner@store.com"})

	require.NoError(t, w.Process(context.Background(), mustJSON(SessionReportPayload{SessionID: s.ID.String()})))

	jobs := rdb.jobs(t, QueueEmail)
	require.Len(t, jobs, 1)
	var mail EmailJobPayload
	require.NoError(t, json.Unmarshal(jobs[0].Payload, &mail))
	assert.Equal(t, "owner@store.com", mail.ToEmail)
	assert.NotEmpty(t, mail.AttachPath)
	assert.Contains(t, mail.Body, "Difference: 0.00")
}

func TestReportWorker_UnknownSessionIsPermanent(t *testing.T) {
	w := NewReportWorker(&fakeFinder{sessions: map[uuid.UUID]*model.CashSession{}}, nil, ReportWorkerConfig{StoragePath: t.TempDir()})
	err := w.Process(context.Background(), mustJSON(SessionReportPayload{SessionID: uuid.NewString()}))
	assert.True(t, isPermanent(err))
}

// ── restock digest ────────────────────────────────────────────────────────────

type fakeLowStock struct{ items []model.InventoryItem }

func (f fakeLowStock) ListBelowMinimum(context.Context) ([]model.InventoryItem, error) { return f.items, nil }

func TestSendRestockDigest(t *testing.T) {
	rdb := newFakePusher()
	cfg := RestockCronConfig{
		Items: fakeLowStock{items: []model.InventoryItem{
			{Code: "FAR-01", Name: "Flour", CurrentQuantity: money.Units(2), MinimumQuantity: money.Units(10), UnitOfMeasure: "kg"},
		}},
		Dispatcher: &Dispatcher{rdb: rdb},
		AlertEmail: "stock@store.com",
		StoreName:  "Loja",
	}
	require.NoError(t, sendRestockDigest(context.Background(), cfg))

	jobs := rdb.jobs(t, QueueEmail)
	require.Len(t, jobs, 1)
	var mail EmailJobPayload
	require.NoError(t, json.Unmarshal(jobs[0].Payload, &mail))
	assert.Equal(t, "Loja: 1 items below minimum", mail.Subject)
	assert.Equal(t, "FAR-01  Flour  2 / 10 kg\n", mail.Body)
}

func TestSendRestockDigest_NothingBelowMinimum(t *testing.T) {
	rdb := newFakePusher()
	cfg := RestockCronConfig{Items: fakeLowStock{}, Dispatcher: &Dispatcher{rdb: rdb}, AlertEmail: "x@y.z"}
	require.NoError(t, sendRestockDigest(context.Background(), cfg))
	assert.Empty(t, rdb.lists)
}
