package gamedb

import (
	"context"
	"sync"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// ------------------------
// Fake KeyValueStore
// ------------------------

type FakeStore struct {
	data  map[string]string
	trace []string

	GetFunc    func(ctx context.Context, key string) (string, bool, error)
	SetFunc    func(ctx context.Context, key, value string) error
	RemoveFunc func(ctx context.Context, key string) error
}

func NewFakeStore() *FakeStore {
	return &FakeStore{data: map[string]string{}}
}

func (f *FakeStore) Get(ctx context.Context, key string) (string, bool, error) {
	f.trace = append(f.trace, "Get")
	if f.GetFunc != nil {
		return f.GetFunc(ctx, key)
	}
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *FakeStore) Set(ctx context.Context, key, value string) error {
	f.trace = append(f.trace, "Set")
	if f.SetFunc != nil {
		return f.SetFunc(ctx, key, value)
	}
	f.data[key] = value
	return nil
}

func (f *FakeStore) Remove(ctx context.Context, key string) error {
	f.trace = append(f.trace, "Remove")
	if f.RemoveFunc != nil {
		return f.RemoveFunc(ctx, key)
	}
	delete(f.data, key)
	return nil
}

func (f *FakeStore) Trace() []string { return f.trace }

var _ KeyValueStore = (*FakeStore)(nil)

// ------------------------
// Fake metrics
// ------------------------

type FakeMetrics struct {
	mu              sync.Mutex
	storageFailures map[string]int
}

func NewFakeMetrics() *FakeMetrics {
	return &FakeMetrics{storageFailures: map[string]int{}}
}

func (m *FakeMetrics) RecordOperationAttempt(context.Context, string)                 {}
func (m *FakeMetrics) RecordOperationDuration(context.Context, string, time.Duration) {}
func (m *FakeMetrics) RecordTransition(context.Context, string, bool)                 {}
func (m *FakeMetrics) RecordOperationFailure(context.Context, string)                 {}
func (m *FakeMetrics) RecordGameCompleted(context.Context)                            {}

func (m *FakeMetrics) RecordStorageFailure(_ context.Context, op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.storageFailures[op]++
}

func (m *FakeMetrics) StorageFailures(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.storageFailures[op]
}

// ------------------------
// Fake JetStream KeyValue
// ------------------------

type FakeKeyValue struct {
	jetstream.KeyValue // Embed to satisfy interface
	data               map[string][]byte
	trace              []string

	PutErr    error
	GetErr    error
	DeleteErr error
}

func NewFakeKeyValue() *FakeKeyValue {
	return &FakeKeyValue{
		data:  make(map[string][]byte),
		trace: []string{},
	}
}

func (f *FakeKeyValue) Put(ctx context.Context, key string, value []byte) (uint64, error) {
	f.trace = append(f.trace, "Put:"+key)
	if f.PutErr != nil {
		return 0, f.PutErr
	}
	f.data[key] = value
	return uint64(len(f.data)), nil
}

func (f *FakeKeyValue) Get(ctx context.Context, key string) (jetstream.KeyValueEntry, error) {
	f.trace = append(f.trace, "Get:"+key)
	if f.GetErr != nil {
		return nil, f.GetErr
	}
	val, ok := f.data[key]
	if !ok {
		return nil, jetstream.ErrKeyNotFound
	}
	return &FakeKeyValueEntry{value: val, key: key}, nil
}

func (f *FakeKeyValue) Delete(ctx context.Context, key string, opts ...jetstream.KVDeleteOpt) error {
	f.trace = append(f.trace, "Delete:"+key)
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	if _, ok := f.data[key]; !ok {
		return jetstream.ErrKeyNotFound
	}
	delete(f.data, key)
	return nil
}

type FakeKeyValueEntry struct {
	jetstream.KeyValueEntry
	value []byte
	key   string
}

func (f *FakeKeyValueEntry) Value() []byte { return f.value }
func (f *FakeKeyValueEntry) Key() string   { return f.key }
