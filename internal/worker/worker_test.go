package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"pixelfood/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// listasFake is an in-memory Redis list keyed by name; LPush prepends and
// BRPop takes from the tail like the real commands.
type listasFake struct {
	mu    sync.Mutex
	lists map[string][]string
}

func newListas() *listasFake { return &listasFake{lists: map[string][]string{}} }

func (f *listasFake) LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range values {
		var s string
		switch x := v.(type) {
		case []byte:
			s = string(x)
		case string:
			s = x
		}
		f.lists[key] = append([]string{s}, f.lists[key]...)
	}
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(int64(len(f.lists[key])))
	return cmd
}

func (f *listasFake) BRPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd {
	cmd := redis.NewStringSliceCmd(ctx)
	f.mu.Lock()
	for _, k := range keys {
		l := f.lists[k]
		if len(l) == 0 {
			continue
		}
		last := l[len(l)-1]
		f.lists[k] = l[:len(l)-1]
		f.mu.Unlock()
		cmd.SetVal([]string{k, last})
		return cmd
	}
	f.mu.Unlock()
	time.Sleep(timeout)
	cmd.SetErr(redis.Nil)
	return cmd
}

func (f *listasFake) LLen(ctx context.Context, key string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(int64(len(f.lists[key])))
	return cmd
}

func (f *listasFake) RPop(ctx context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	cmd := redis.NewStringCmd(ctx)
	l := f.lists[key]
	if len(l) == 0 {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(l[len(l)-1])
	f.lists[key] = l[:len(l)-1]
	return cmd
}

func (f *listasFake) pop(t *testing.T, key string) string {
	t.Helper()
	res, err := f.BRPop(context.Background(), 0, key).Result()
	require.NoError(t, err)
	return res[1]
}

type processorFunc func(ctx context.Context, raw json.RawMessage) error

func (f processorFunc) Process(ctx context.Context, raw json.RawMessage) error { return f(ctx, raw) }

func recibo() model.Recibo {
	return model.Recibo{
		Numero:   "INV-1",
		PedidoID: "O1",
		Metodo:   "Efectivo",
		Subtotal: decimal.RequireFromString("100"),
		Impuesto: decimal.RequireFromString("10"),
		Total:    decimal.RequireFromString("110"),
	}
}

func TestDispatcher_EnqueueRecibo(t *testing.T) {
	rdb := newListas()
	d := NewDispatcher(rdb)

	require.NoError(t, d.EnqueueRecibo(context.Background(), "cliente@pixel.food", recibo()))

	var job Job
	require.NoError(t, json.Unmarshal([]byte(rdb.pop(t, QueueRecibos)), &job))
	assert.Equal(t, JobRecibo, job.Type)
	assert.NotEmpty(t, job.ID)
	assert.Zero(t, job.Attempts)

	var payload ReciboJobPayload
	require.NoError(t, json.Unmarshal(job.Payload, &payload))
	assert.Equal(t, "cliente@pixel.food", payload.Correo)
	assert.Equal(t, "INV-1", payload.Recibo.Numero)
	assert.True(t, payload.Recibo.Total.Equal(decimal.NewFromInt(110)))
}

func TestPool_RetriesThenDeadLetters(t *testing.T) {
	rdb := newListas()
	calls := 0
	p := NewPool(rdb, map[string]Processor{
		JobRecibo: processorFunc(func(context.Context, json.RawMessage) error {
			calls++
			return errors.New("smtp down")
		}),
	})
	ctx := context.Background()
	require.NoError(t, NewDispatcher(rdb).EnqueueRecibo(ctx, "a@b.c", recibo()))

	for i := 0; i < DefaultMaxAttempts; i++ {
		p.processJob(ctx, QueueRecibos, rdb.pop(t, QueueRecibos))
	}

	assert.Equal(t, DefaultMaxAttempts, calls)
	n, err := rdb.LLen(ctx, QueueRecibos).Result()
	require.NoError(t, err)
	assert.Zero(t, n)

	dl, err := DLQLength(ctx, rdb, QueueRecibos)
	require.NoError(t, err)
	assert.EqualValues(t, 1, dl)

	var entry DLQEntry
	require.NoError(t, json.Unmarshal([]byte(rdb.pop(t, DLQPrefix+QueueRecibos)), &entry))
	assert.Equal(t, "smtp down", entry.Reason)
	require.NotNil(t, entry.Job)
	assert.Equal(t, DefaultMaxAttempts, entry.Job.Attempts)
	assert.Equal(t, JobRecibo, entry.Job.Type)
}

func TestRequeue_PutsParkedJobsBack(t *testing.T) {
	rdb := newListas()
	ctx := context.Background()
	job := &Job{ID: "j-1", Type: JobRecibo, Attempts: DefaultMaxAttempts, Payload: json.RawMessage(`{}`)}
	SendToDLQ(ctx, rdb, QueueRecibos, job, "", "smtp down")
	SendToDLQ(ctx, rdb, QueueRecibos, nil, "basura", "undecodable job")

	moved, err := Requeue(ctx, rdb, QueueRecibos, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, moved)

	dl, _ := DLQLength(ctx, rdb, QueueRecibos)
	assert.Zero(t, dl)

	var back Job
	require.NoError(t, json.Unmarshal([]byte(rdb.pop(t, QueueRecibos)), &back))
	assert.Equal(t, "j-1", back.ID)
	assert.Zero(t, back.Attempts)
}

func TestPool_PermanentFailureSkipsRetries(t *testing.T) {
	rdb := newListas()
	p := NewPool(rdb, map[string]Processor{
		JobRecibo: processorFunc(func(context.Context, json.RawMessage) error { return ErrSinReintento }),
	})
	ctx := context.Background()
	require.NoError(t, NewDispatcher(rdb).EnqueueRecibo(ctx, "a@b.c", recibo()))

	p.processJob(ctx, QueueRecibos, rdb.pop(t, QueueRecibos))

	n, _ := rdb.LLen(ctx, QueueRecibos).Result()
	assert.Zero(t, n)
	dl, _ := DLQLength(ctx, rdb, QueueRecibos)
	assert.EqualValues(t, 1, dl)
}

func TestPool_UnknownTypeAndGarbageGoToDLQ(t *testing.T) {
	rdb := newListas()
	p := NewPool(rdb, map[string]Processor{})
	ctx := context.Background()

	p.processJob(ctx, QueueRecibos, `{"id":"x","type":"factura","payload":{}}`)
	p.processJob(ctx, QueueRecibos, `not json`)

	dl, _ := DLQLength(ctx, rdb, QueueRecibos)
	assert.EqualValues(t, 2, dl)
}

func TestPool_RunStopsOnCancel(t *testing.T) {
	rdb := newListas()
	done := make(chan struct{}, 1)
	p := NewPool(rdb, map[string]Processor{
		JobRecibo: processorFunc(func(context.Context, json.RawMessage) error {
			done <- struct{}{}
			return nil
		}),
	})
	p.popTimeout = 10 * time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, NewDispatcher(rdb).EnqueueRecibo(ctx, "a@b.c", recibo()))

	errc := make(chan error, 1)
	go func() { errc <- p.Run(ctx, 2) }()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job was not processed")
	}
	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("pool did not stop")
	}
}

type senderFake struct {
	configured bool
	err        error
	to, subj   string
	body, pdf  string
}

func (s *senderFake) Configured() bool { return s.configured }

func (s *senderFake) SendRecibo(to, subject, body, pdfPath string) error {
	s.to, s.subj, s.body, s.pdf = to, subject, body, pdfPath
	return s.err
}

func payloadJSON(t *testing.T, correo string) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(ReciboJobPayload{Correo: correo, Recibo: recibo()})
	require.NoError(t, err)
	return raw
}

func TestEmailWorker_RendersAndSends(t *testing.T) {
	s := &senderFake{configured: true}
	dir := t.TempDir()
	w := NewEmailWorker(s, "Pixel Food", dir)

	require.NoError(t, w.Process(context.Background(), payloadJSON(t, "cliente@pixel.food")))

	assert.Equal(t, "cliente@pixel.food", s.to)
	assert.Contains(t, s.subj, "INV-1")
	assert.Contains(t, s.body, "110.00")
	assert.FileExists(t, s.pdf)
}

func TestEmailWorker_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("bad payload is permanent", func(t *testing.T) {
		w := NewEmailWorker(&senderFake{configured: true}, "Pixel Food", t.TempDir())
		assert.ErrorIs(t, w.Process(ctx, json.RawMessage(`[`)), ErrSinReintento)
	})
	t.Run("missing address is permanent", func(t *testing.T) {
		w := NewEmailWorker(&senderFake{configured: true}, "Pixel Food", t.TempDir())
		assert.ErrorIs(t, w.Process(ctx, payloadJSON(t, "")), ErrSinReintento)
	})
	t.Run("unconfigured SMTP is permanent", func(t *testing.T) {
		w := NewEmailWorker(&senderFake{}, "Pixel Food", t.TempDir())
		assert.ErrorIs(t, w.Process(ctx, payloadJSON(t, "a@b.c")), ErrSinReintento)
	})
	t.Run("send failure is retried", func(t *testing.T) {
		w := NewEmailWorker(&senderFake{configured: true, err: errors.New("421")}, "Pixel Food", t.TempDir())
		err := w.Process(ctx, payloadJSON(t, "a@b.c"))
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrSinReintento)
	})
}
