package dummydb

import (
	"context"
	"sync"
	"time"

	"github.com/trezcool/ratiba/core/attendance"
)

// CodeStore is an in-process attendance.CodeStore. The mutex makes
// ConsumeCode a true compare-and-swap, so concurrency tests exercise the
// same semantics the redis store gives across processes.
type CodeStore struct {
	mu     sync.Mutex
	codes  map[string]string
	events map[string]storedEvent
	seqs   map[string]int64
}

type storedEvent struct {
	seq int64
	ev  attendance.Event
}

var _ attendance.CodeStore = (*CodeStore)(nil) // interface compliance check

func NewCodeStore() *CodeStore {
	return &CodeStore{
		codes:  make(map[string]string),
		events: make(map[string]storedEvent),
		seqs:   make(map[string]int64),
	}
}

func (s *CodeStore) PublishCode(_ context.Context, key attendance.SessionKey, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[key.String()] = code
	return nil
}

func (s *CodeStore) ConsumeCode(_ context.Context, key attendance.SessionKey, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if current, ok := s.codes[key.String()]; !ok || current == "" || current != code {
		return attendance.ErrCodeExpired
	}
	delete(s.codes, key.String())
	return nil
}

func (s *CodeStore) PublishEvent(_ context.Context, key attendance.SessionKey, ev attendance.Event) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seqs[key.String()]++
	seq := s.seqs[key.String()]
	s.events[key.String()] = storedEvent{seq: seq, ev: ev}
	return seq, nil
}

func (s *CodeStore) LastEvent(_ context.Context, key attendance.SessionKey, sinceSeq int64) (*attendance.Event, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.events[key.String()]
	if !ok || stored.seq <= sinceSeq {
		return nil, sinceSeq, nil
	}
	ev := stored.ev
	return &ev, stored.seq, nil
}

func (s *CodeStore) ClearSession(_ context.Context, key attendance.SessionKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.codes, key.String())
	delete(s.events, key.String())
	delete(s.seqs, key.String())
	return nil
}

// Code returns the currently published code. Test helper.
func (s *CodeStore) Code(key attendance.SessionKey) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codes[key.String()]
}

// Roster is an in-memory attendance.Enrollment + NameDirectory.
type Roster struct {
	mu       sync.RWMutex
	enrolled map[string]bool
	names    map[string]string
}

var (
	_ attendance.Enrollment    = (*Roster)(nil)
	_ attendance.NameDirectory = (*Roster)(nil)
)

func NewRoster() *Roster {
	return &Roster{
		enrolled: make(map[string]bool),
		names:    make(map[string]string),
	}
}

func (r *Roster) Enroll(key attendance.SessionKey, participantID, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enrolled[key.String()+"/"+participantID] = true
	if name != "" {
		r.names[participantID] = name
	}
}

func (r *Roster) IsEnrolled(_ context.Context, key attendance.SessionKey, participantID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.enrolled[key.String()+"/"+participantID], nil
}

func (r *Roster) DisplayName(_ context.Context, participantID string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.names[participantID], nil
}

// RecordBook is an in-memory attendance.RecordWriter; writes are upserts.
type RecordBook struct {
	mu      sync.Mutex
	records map[string]time.Time
}

var _ attendance.RecordWriter = (*RecordBook)(nil)

func NewRecordBook() *RecordBook {
	return &RecordBook{records: make(map[string]time.Time)}
}

func (b *RecordBook) WritePresent(_ context.Context, key attendance.SessionKey, participantID string, at time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records[key.String()+"/"+participantID+"/"+at.Format("2006-01-02")] = at
	return nil
}

// Count returns the number of distinct attendance records. Test helper.
func (b *RecordBook) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.records)
}
