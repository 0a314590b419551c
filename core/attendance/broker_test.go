package attendance

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
)

type testLogger struct{}

func (testLogger) Enable(bool)                  {}
func (testLogger) Debug(string, ...interface{}) {}
func (testLogger) Info(string, ...interface{})  {}
func (testLogger) Warn(string, ...interface{})  {}
func (testLogger) Error(string, ...interface{}) {}
func (testLogger) Fatal(string, ...interface{}) {}

// memStore is a minimal in-process CodeStore for broker tests.
type memStore struct {
	mu      sync.Mutex
	code    string
	seq     int64
	ev      *Event
	cleared bool
}

func (s *memStore) PublishCode(_ context.Context, _ SessionKey, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.code = code
	return nil
}

func (s *memStore) ConsumeCode(_ context.Context, _ SessionKey, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.code == "" || s.code != code {
		return ErrCodeExpired
	}
	s.code = ""
	return nil
}

func (s *memStore) PublishEvent(_ context.Context, _ SessionKey, ev Event) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.ev = &ev
	return s.seq, nil
}

func (s *memStore) LastEvent(_ context.Context, _ SessionKey, sinceSeq int64) (*Event, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ev == nil || s.seq <= sinceSeq {
		return nil, sinceSeq, nil
	}
	ev := *s.ev
	return &ev, s.seq, nil
}

func (s *memStore) ClearSession(_ context.Context, _ SessionKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.code = ""
	s.ev = nil
	s.cleared = true
	return nil
}

func (s *memStore) currentCode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.code
}

var testKey = SessionKey{Year: "2026", Term: "T1", SubjectID: "math"}

func openTestBroker(t *testing.T, store CodeStore) *Broker {
	t.Helper()
	defaultPollInterval = 5 * time.Millisecond
	t.Cleanup(func() { defaultPollInterval = 500 * time.Millisecond })

	b, err := OpenSession(context.Background(), store, testKey, "RATIBA", testLogger{})
	if err != nil {
		t.Fatalf("OpenSession() failed: %v", err)
	}
	t.Cleanup(func() { _ = b.Close(context.Background()) })
	return b
}

func waitEvent(t *testing.T, b *Broker) Event {
	t.Helper()
	select {
	case ev := <-b.Events():
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestOpenSession_publishesCode(t *testing.T) {
	store := &memStore{}
	b := openTestBroker(t, store)

	code := store.currentCode()
	if code == "" {
		t.Fatal("OpenSession() did not publish a code")
	}
	if len(code) != codeEntropyBytes*2 {
		t.Errorf("code length = %d, want %d hex chars", len(code), codeEntropyBytes*2)
	}
	want := "RATIBA|2026|T1|math|" + code
	if got := b.Payload(); got != want {
		t.Errorf("Payload() = %q, want %q", got, want)
	}
}

func TestOpenSession_rejectsBadKey(t *testing.T) {
	_, err := OpenSession(context.Background(), &memStore{}, SessionKey{Year: "20|26"}, "RATIBA", testLogger{})
	if errors.Cause(err) != ErrInvalidPayload {
		t.Errorf("OpenSession() error = %v, want %v", err, ErrInvalidPayload)
	}
}

func TestBroker_rotatesOnSuccess(t *testing.T) {
	store := &memStore{}
	b := openTestBroker(t, store)
	before := store.currentCode()

	if _, err := store.PublishEvent(context.Background(), testKey, Event{
		Kind: EventSuccess, ParticipantID: "s1", Name: "Alice", At: time.Now(),
	}); err != nil {
		t.Fatalf("PublishEvent() failed: %v", err)
	}

	ev := waitEvent(t, b)
	if ev.Kind != EventSuccess || ev.ParticipantID != "s1" {
		t.Fatalf("event = %+v, want success for s1", ev)
	}
	if ev.Duplicate {
		t.Error("first success flagged Duplicate")
	}

	// the broker must have republished a fresh code
	deadline := time.Now().Add(2 * time.Second)
	for store.currentCode() == before || store.currentCode() == "" {
		if time.Now().After(deadline) {
			t.Fatal("code was not rotated after a success")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestBroker_flagsDuplicates(t *testing.T) {
	store := &memStore{}
	b := openTestBroker(t, store)

	publish := func(id string) {
		if _, err := store.PublishEvent(context.Background(), testKey, Event{
			Kind: EventSuccess, ParticipantID: id, At: time.Now(),
		}); err != nil {
			t.Fatalf("PublishEvent() failed: %v", err)
		}
	}

	publish("s1")
	if ev := waitEvent(t, b); ev.Duplicate {
		t.Error("first scan flagged Duplicate")
	}
	publish("s1")
	if ev := waitEvent(t, b); !ev.Duplicate {
		t.Error("second scan of same participant not flagged Duplicate")
	}
	publish("s2")
	if ev := waitEvent(t, b); ev.Duplicate {
		t.Error("other participant flagged Duplicate")
	}
}

func TestBroker_forwardsFailures(t *testing.T) {
	store := &memStore{}
	b := openTestBroker(t, store)
	before := store.currentCode()

	if _, err := store.PublishEvent(context.Background(), testKey, Event{
		Kind: EventFailure, ParticipantID: "intruder", Reason: "not enrolled", At: time.Now(),
	}); err != nil {
		t.Fatalf("PublishEvent() failed: %v", err)
	}

	ev := waitEvent(t, b)
	if ev.Kind != EventFailure || ev.Reason != "not enrolled" {
		t.Errorf("event = %+v, want a failure", ev)
	}
	// failures must not burn the active code
	time.Sleep(20 * time.Millisecond)
	if store.currentCode() != before {
		t.Error("code rotated on a failure event")
	}
}

func TestBroker_Refresh(t *testing.T) {
	store := &memStore{}
	b := openTestBroker(t, store)
	before := store.currentCode()

	code, err := b.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh() failed: %v", err)
	}
	if code == before {
		t.Error("Refresh() returned the old code")
	}
	if store.currentCode() != code {
		t.Error("Refresh() did not publish the new code")
	}
}

func TestBroker_Close(t *testing.T) {
	store := &memStore{}
	b := openTestBroker(t, store)

	if err := b.Close(context.Background()); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if !store.cleared {
		t.Error("Close() did not clear session state")
	}
	if store.currentCode() != "" {
		t.Error("a stale code survived Close()")
	}

	// idempotent
	if err := b.Close(context.Background()); err != nil {
		t.Errorf("second Close() failed: %v", err)
	}

	if _, err := b.Refresh(context.Background()); errors.Cause(err) != ErrSessionClosed {
		t.Errorf("Refresh() after Close() error = %v, want %v", err, ErrSessionClosed)
	}
}
