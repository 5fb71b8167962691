package usecases

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"project_healthbot/internal/entities"
)

type fakeAI struct {
	result entities.AIResult
	calls  atomic.Int32
}

func (f *fakeAI) Generate(context.Context, string, entities.Language) entities.AIResult {
	f.calls.Add(1)
	return f.result
}

type fakeNLU struct {
	reply string
	err   error
	calls atomic.Int32
}

func (f *fakeNLU) Query(context.Context, string, string) (string, error) {
	f.calls.Add(1)
	return f.reply, f.err
}

type sentMessage struct {
	to, content string
}

type fakeMessenger struct {
	mu   sync.Mutex
	err  error
	sent []sentMessage
}

func (f *fakeMessenger) SendMessage(_ context.Context, to, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMessage{to: to, content: content})
	return nil
}

func (f *fakeMessenger) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sentMessage, len(f.sent))
	copy(out, f.sent)
	return out
}

// memStore implements SubscriberStore and BroadcastLog in memory.
type memStore struct {
	mu         sync.Mutex
	subs       map[string]entities.Subscriber
	broadcasts []entities.Broadcast
	listErr    error
	saveErr    error
}

func newMemStore(phones ...string) *memStore {
	s := &memStore{subs: make(map[string]entities.Subscriber)}
	for _, p := range phones {
		s.subs[p] = entities.Subscriber{Phone: p, Language: entities.LangEnglish}
	}
	return s
}

func (s *memStore) UpsertSubscriber(_ context.Context, sub entities.Subscriber) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs[sub.Phone] = sub
	return nil
}

func (s *memStore) DeleteSubscriber(_ context.Context, phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, phone)
	return nil
}

func (s *memStore) ListSubscribers(context.Context) ([]entities.Subscriber, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]entities.Subscriber, 0, len(s.subs))
	for _, sub := range s.subs {
		out = append(out, sub)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Phone < out[j].Phone })
	return out, nil
}

func (s *memStore) SaveBroadcast(ctx context.Context, message, channel string) (*entities.Broadcast, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b := entities.Broadcast{
		ID:        int64(len(s.broadcasts) + 1),
		Message:   message,
		Channel:   channel,
		Timestamp: time.Now().UTC(),
	}
	s.broadcasts = append(s.broadcasts, b)
	return &b, nil
}

func (s *memStore) ListBroadcasts(context.Context) ([]entities.Broadcast, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entities.Broadcast, 0, len(s.broadcasts))
	for i := len(s.broadcasts) - 1; i >= 0; i-- {
		out = append(out, s.broadcasts[i])
	}
	return out, nil
}

type countingMetrics struct {
	mu         sync.Mutex
	answers    map[entities.AnswerSource]int
	deliveries map[entities.DeliveryStatus]int
	broadcasts int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{
		answers:    make(map[entities.AnswerSource]int),
		deliveries: make(map[entities.DeliveryStatus]int),
	}
}

func (m *countingMetrics) ObserveAnswer(source entities.AnswerSource) {
	m.mu.Lock()
	m.answers[source]++
	m.mu.Unlock()
}

func (m *countingMetrics) ObserveDelivery(_ string, status entities.DeliveryStatus) {
	m.mu.Lock()
	m.deliveries[status]++
	m.mu.Unlock()
}

func (m *countingMetrics) ObserveBroadcast() {
	m.mu.Lock()
	m.broadcasts++
	m.mu.Unlock()
}

func (m *countingMetrics) ObserveWebhook(string, string) {}
func (m *countingMetrics) ObserveDroppedTask()           {}

var errBoom = errors.New("boom")
