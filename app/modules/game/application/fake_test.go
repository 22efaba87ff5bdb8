package gameservice

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	gamedomain "github.com/Black-And-White-Club/crownkeeper/app/modules/game/domain"
	"github.com/ThreeDotsLabs/watermill/message"
)

// ------------------------
// Fake Persistence
// ------------------------

type FakePersistence struct {
	mu     sync.Mutex
	trace  []string
	stored *gamedomain.GameState

	SaveFunc  func(ctx context.Context, state gamedomain.GameState)
	ClearFunc func(ctx context.Context)
}

func NewFakePersistence() *FakePersistence {
	return &FakePersistence{trace: []string{}}
}

func (f *FakePersistence) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func (f *FakePersistence) Save(ctx context.Context, state gamedomain.GameState) {
	f.record("Save")
	if f.SaveFunc != nil {
		f.SaveFunc(ctx, state)
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	c := state.Clone()
	f.stored = &c
}

func (f *FakePersistence) Load(ctx context.Context) (gamedomain.GameState, bool) {
	f.record("Load")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stored == nil {
		return gamedomain.GameState{}, false
	}
	return f.stored.Clone(), true
}

func (f *FakePersistence) Clear(ctx context.Context) {
	f.record("Clear")
	if f.ClearFunc != nil {
		f.ClearFunc(ctx)
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stored = nil
}

func (f *FakePersistence) Exists(ctx context.Context) bool {
	f.record("Exists")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stored != nil
}

func (f *FakePersistence) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakePersistence) ResetTrace() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = []string{}
}

var _ Persistence = (*FakePersistence)(nil)

// ------------------------
// Fake Publisher
// ------------------------

type publishedMessage struct {
	Topic   string
	Payload []byte
}

type FakePublisher struct {
	mu       sync.Mutex
	messages []publishedMessage

	PublishErr error
}

func (f *FakePublisher) Publish(topic string, msgs ...*message.Message) error {
	if f.PublishErr != nil {
		return f.PublishErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range msgs {
		f.messages = append(f.messages, publishedMessage{Topic: topic, Payload: m.Payload})
	}
	return nil
}

func (f *FakePublisher) Close() error { return nil }

func (f *FakePublisher) Topics() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.messages))
	for i, m := range f.messages {
		out[i] = m.Topic
	}
	return out
}

// Decode unmarshals the i-th message published on topic into v.
func (f *FakePublisher) Decode(topic string, i int, v any) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, m := range f.messages {
		if m.Topic != topic {
			continue
		}
		if n == i {
			return json.Unmarshal(m.Payload, v) == nil
		}
		n++
	}
	return false
}

var _ message.Publisher = (*FakePublisher)(nil)

// ------------------------
// Fake Metrics
// ------------------------

type FakeMetrics struct {
	mu          sync.Mutex
	transitions map[string][]bool
	failures    map[string]int
	completed   int
}

func NewFakeMetrics() *FakeMetrics {
	return &FakeMetrics{transitions: map[string][]bool{}, failures: map[string]int{}}
}

func (m *FakeMetrics) RecordOperationAttempt(context.Context, string)                 {}
func (m *FakeMetrics) RecordOperationDuration(context.Context, string, time.Duration) {}
func (m *FakeMetrics) RecordStorageFailure(context.Context, string)                   {}

func (m *FakeMetrics) RecordTransition(_ context.Context, op string, changed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitions[op] = append(m.transitions[op], changed)
}

func (m *FakeMetrics) RecordOperationFailure(_ context.Context, op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[op]++
}

func (m *FakeMetrics) RecordGameCompleted(context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completed++
}
