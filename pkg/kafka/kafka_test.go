package kafka

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
)

func TestBackoffWithJitter(t *testing.T) {
	min, max := 100*time.Millisecond, time.Second
	for attempt := 1; attempt <= 40; attempt++ {
		d := backoffWithJitter(min, max, attempt)
		if d <= 0 || d > max {
			t.Fatalf("attempt %d: backoff %s out of (0, %s]", attempt, d, max)
		}
	}
	if d := backoffWithJitter(min, max, 1); d < min/2 || d > min {
		t.Fatalf("first attempt should stay within [min/2, min], got %s", d)
	}
}

func TestEncodeValue(t *testing.T) {
	b, err := encodeValue(map[string]int{"n": 1})
	if err != nil || string(b) != `{"n":1}` {
		t.Fatalf("json encode: %q %v", b, err)
	}
	if b, _ := encodeValue("raw"); string(b) != "raw" {
		t.Fatalf("string passthrough: %q", b)
	}
	if _, err := encodeValue(func() {}); err == nil {
		t.Fatalf("expected an error for an unencodable value")
	}
}

func TestParseCompression(t *testing.T) {
	if parseCompression("zstd") != kafka.Zstd || parseCompression("bogus") != kafka.Gzip {
		t.Fatalf("unexpected compression mapping")
	}
}

func TestConstructorsRequireBrokers(t *testing.T) {
	if _, err := NewProducer(); err == nil {
		t.Fatalf("producer without brokers should fail")
	}
	if _, err := NewConsumer(); err == nil {
		t.Fatalf("consumer without brokers should fail")
	}
	c, err := NewConsumer(WithConsumerBrokers([]string{"localhost:9092"}))
	if err != nil {
		t.Fatalf("consumer: %v", err)
	}
	if err := c.Start(); err == nil {
		t.Fatalf("start without handlers should fail")
	}
}

func TestHookChainOrderAndPanic(t *testing.T) {
	var order []string
	mk := func(name string) ConsumerHook {
		return HookFuncs{
			Before: func(ctx context.Context, _ string, km kafka.Message, data []byte) (context.Context, kafka.Message, []byte, error) {
				order = append(order, "before:"+name)
				return ctx, km, append(data, name...), nil
			},
			After: func(context.Context, string, kafka.Message, []byte, error) {
				order = append(order, "after:"+name)
			},
		}
	}
	chain := NewHookChain(mk("a"), nil, mk("b"))
	_, _, data, err := chain.BeforeHandle(context.Background(), "t", kafka.Message{}, nil)
	if err != nil || string(data) != "ab" {
		t.Fatalf("before: %q %v", data, err)
	}
	chain.AfterHandle(context.Background(), "t", kafka.Message{}, data, nil)
	want := []string{"before:a", "before:b", "after:b", "after:a"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order %v, want %v", order, want)
		}
	}

	var notified int
	panicky := NewHookChain(
		HookFuncs{Err: func(context.Context, string, kafka.Message, []byte, error) { notified++ }},
		HookFuncs{Before: func(context.Context, string, kafka.Message, []byte) (context.Context, kafka.Message, []byte, error) {
			panic("boom")
		}},
	)
	_, _, _, err = panicky.BeforeHandle(context.Background(), "t", kafka.Message{}, nil)
	var he *HookError
	if !errors.As(err, &he) || he.Code != "ERR_PANIC" {
		t.Fatalf("expected ERR_PANIC, got %v", err)
	}
	if notified != 1 {
		t.Fatalf("OnError should reach every hook once, got %d", notified)
	}
}

func TestTraceHook(t *testing.T) {
	km := kafka.Message{Headers: []kafka.Header{{Key: "trace_id", Value: []byte("abc")}}}
	ctx, _, _, err := TraceHook().BeforeHandle(context.Background(), "t", km, nil)
	if err != nil || TraceID(ctx) != "abc" {
		t.Fatalf("trace id not propagated: %q %v", TraceID(ctx), err)
	}
	if TraceID(context.Background()) != "" {
		t.Fatalf("empty context should have no trace id")
	}
}

func TestConsumerMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := newConsumerMetrics(reg)
	m.queue("wave.jobs", 5, 10)
	m.handled("wave.jobs", "ok", time.Millisecond)
	if v := testutil.ToFloat64(m.fullness.WithLabelValues("wave.jobs")); v != 0.5 {
		t.Fatalf("fullness %v", v)
	}
	if v := testutil.ToFloat64(m.results.WithLabelValues("wave.jobs", "ok")); v != 1 {
		t.Fatalf("results %v", v)
	}
	var nilMetrics *consumerMetrics
	nilMetrics.handled("x", "ok", 0)
}

func TestPermanent(t *testing.T) {
	base := errors.New("bad job")
	err := Permanent(base)
	if !IsPermanent(err) || !errors.Is(err, base) {
		t.Fatalf("permanent marker lost: %v", err)
	}
	if IsPermanent(base) || Permanent(nil) != nil {
		t.Fatalf("unexpected permanent classification")
	}
}

type orderHandler struct {
	mu   sync.Mutex
	seen map[int][]int64
	done chan struct{}
	want int
	n    int
}

func (h *orderHandler) Topic() string { return "wave.jobs" }

func (h *orderHandler) Handle(ctx context.Context, data []byte) error {
	km, _ := ctx.Value(msgKey{}).(kafka.Message)
	time.Sleep(time.Duration(rand.Intn(300)) * time.Microsecond)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seen[km.Partition] = append(h.seen[km.Partition], km.Offset)
	h.n++
	if h.n == h.want {
		close(h.done)
	}
	return nil
}

type msgKey struct{}

func TestConsumerKeepsPartitionOrder(t *testing.T) {
	c, err := NewConsumer(
		WithConsumerBrokers([]string{"localhost:9092"}),
		WithConsumerWorkers(4),
		WithConsumerBufferSize(2),
	)
	if err != nil {
		t.Fatalf("consumer: %v", err)
	}
	const partitions, perPartition = 6, 40
	h := &orderHandler{seen: map[int][]int64{}, done: make(chan struct{}), want: partitions * perPartition}
	c.RegisterHandler(h)
	c.WithConsumerHook(HookFuncs{Before: func(ctx context.Context, _ string, km kafka.Message, data []byte) (context.Context, kafka.Message, []byte, error) {
		return context.WithValue(ctx, msgKey{}, km), km, data, nil
	}})
	c.startWorkers()

	for off := int64(0); off < perPartition; off++ {
		for p := 0; p < partitions; p++ {
			km := kafka.Message{Topic: h.Topic(), Partition: p, Offset: off}
			if !c.enqueue(&message{topic: h.Topic(), data: []byte("{}"), km: km}) {
				t.Fatalf("enqueue refused")
			}
		}
	}

	select {
	case <-h.done:
	case <-time.After(10 * time.Second):
		h.mu.Lock()
		defer h.mu.Unlock()
		t.Fatalf("handled %d of %d messages", h.n, h.want)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := c.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}

	for p := 0; p < partitions; p++ {
		offs := h.seen[p]
		if len(offs) != perPartition {
			t.Fatalf("partition %d: handled %d messages", p, len(offs))
		}
		for i, off := range offs {
			if off != int64(i) {
				t.Fatalf("partition %d handled out of order: %v", p, offs)
			}
		}
	}
}

func TestQueueForIsStable(t *testing.T) {
	c, err := NewConsumer(WithConsumerBrokers([]string{"localhost:9092"}), WithConsumerWorkers(3))
	if err != nil {
		t.Fatalf("consumer: %v", err)
	}
	used := map[chan *message]bool{}
	for p := 0; p < 9; p++ {
		q := c.queueFor("wave.jobs", p)
		if c.queueFor("wave.jobs", p) != q {
			t.Fatalf("partition %d moved between queues", p)
		}
		used[q] = true
	}
	if len(used) != 3 {
		t.Fatalf("partitions spread over %d of 3 queues", len(used))
	}
}
