package attendance

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core"
)

const (
	codeEntropyBytes = 16
	eventBufferSize  = 16
)

var defaultPollInterval = 500 * time.Millisecond // mockable

// Broker is the teacher side of the check-in protocol: a pure publisher of
// single-use codes. It never learns which participant will consume a code;
// it observes outcomes through the session's event key and reacts by
// republishing a fresh code so one lingering camera cannot block the rest of
// the class.
type Broker struct {
	store        CodeStore
	key          SessionKey
	marker       string
	logger       core.Logger
	pollInterval time.Duration

	mu         sync.Mutex
	activeCode string
	present    map[string]bool // participants already marked present
	closed     bool

	events  chan Event
	done    chan struct{}
	stopped chan struct{}
}

// OpenSession publishes the first code for the session and starts watching
// for scan outcomes. Close must be called when the check-in screen goes away.
func OpenSession(ctx context.Context, store CodeStore, key SessionKey, marker string, logger core.Logger) (*Broker, error) {
	if !ValidSessionKey(key) {
		return nil, errors.Wrap(ErrInvalidPayload, "session key")
	}
	b := &Broker{
		store:        store,
		key:          key,
		marker:       marker,
		logger:       logger,
		pollInterval: defaultPollInterval,
		present:      make(map[string]bool),
		events:       make(chan Event, eventBufferSize),
		done:         make(chan struct{}),
		stopped:      make(chan struct{}),
	}
	if _, err := b.rotate(ctx); err != nil {
		return nil, err
	}
	go b.watch()
	return b, nil
}

// Payload returns the full string to render as the session's QR code.
func (b *Broker) Payload() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return BuildPayload(b.marker, b.key, b.activeCode)
}

func (b *Broker) Key() SessionKey { return b.key }

// Events delivers scan outcomes observed after the session opened.
// Successes for a participant already present are flagged Duplicate.
func (b *Broker) Events() <-chan Event { return b.events }

// Refresh regenerates and republishes the code on explicit teacher request.
func (b *Broker) Refresh(ctx context.Context) (string, error) {
	return b.rotate(ctx)
}

// Close stops observing scan events and clears all published session state,
// so a stale code cannot be redeemed after the teacher believes the session
// is over.
func (b *Broker) Close(ctx context.Context) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	close(b.done)
	<-b.stopped
	return b.store.ClearSession(ctx, b.key)
}

// rotate publishes a fresh unguessable code, overwriting any prior value.
func (b *Broker) rotate(ctx context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return "", ErrSessionClosed
	}
	code, err := generateCode()
	if err != nil {
		return "", err
	}
	if err = b.store.PublishCode(ctx, b.key, code); err != nil {
		return "", errors.Wrap(err, "publishing code")
	}
	b.activeCode = code
	return code, nil
}

// watch polls the session's event key and forwards fresh events to the
// events channel. Every observed success triggers a code rotation.
func (b *Broker) watch() {
	defer close(b.stopped)

	ticker := time.NewTicker(b.pollInterval)
	defer ticker.Stop()

	var lastSeq int64
	for {
		select {
		case <-b.done:
			return
		case <-ticker.C:
		}

		ctx, cancel := context.WithTimeout(context.Background(), b.pollInterval)
		ev, seq, err := b.store.LastEvent(ctx, b.key, lastSeq)
		cancel()
		if err != nil {
			b.logger.Warn("reading scan event", err)
			continue
		}
		if ev == nil {
			continue
		}
		lastSeq = seq

		if ev.Kind == EventSuccess {
			b.mu.Lock()
			ev.Duplicate = b.present[ev.ParticipantID]
			b.present[ev.ParticipantID] = true
			b.mu.Unlock()

			// keep the session going for the next participant
			ctx, cancel := context.WithTimeout(context.Background(), b.pollInterval)
			if _, err := b.rotate(ctx); err != nil && errors.Cause(err) != ErrSessionClosed {
				b.logger.Error("rotating code", err)
			}
			cancel()
		}

		b.forward(*ev)
	}
}

// forward delivers an event without ever blocking the watch loop; when the
// buffer is full the oldest event is dropped (each event supersedes the
// previous one on the teacher's screen anyway).
func (b *Broker) forward(ev Event) {
	for {
		select {
		case b.events <- ev:
			return
		default:
			select {
			case <-b.events:
			default:
			}
		}
	}
}

func generateCode() (string, error) {
	buf := make([]byte, codeEntropyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "generating code")
	}
	return hex.EncodeToString(buf), nil
}
