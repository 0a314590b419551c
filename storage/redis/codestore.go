// Package redisstore backs the attendance protocol's shared key space with
// redis, whose single-threaded script execution gives the required atomic
// compare-and-swap for code consumption.
package redisstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/attendance"
)

// sessionTTL caps how long abandoned session keys linger.
const sessionTTL = 12 * time.Hour

// consumeScript atomically clears the code iff it matches the scanned value.
// Read-modify-write in application code would let two scanners both observe a
// valid code; the script runs as one operation on the server.
var consumeScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	redis.call("DEL", KEYS[1])
	return 1
end
return 0
`)

func NewClient(conf *core.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Address,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
}

type CodeStore struct {
	rdb *redis.Client
}

var _ attendance.CodeStore = (*CodeStore)(nil) // interface compliance check

func NewCodeStore(rdb *redis.Client) *CodeStore {
	return &CodeStore{rdb: rdb}
}

func codeKey(key attendance.SessionKey) string    { return "att:" + key.String() + ":code" }
func eventKey(key attendance.SessionKey) string   { return "att:" + key.String() + ":event" }
func seqKey(key attendance.SessionKey) string     { return "att:" + key.String() + ":seq" }
func successKey(key attendance.SessionKey) string { return "att:" + key.String() + ":last-success" }
func failureKey(key attendance.SessionKey) string { return "att:" + key.String() + ":last-failure" }

func (s *CodeStore) PublishCode(ctx context.Context, key attendance.SessionKey, code string) error {
	err := s.rdb.Set(ctx, codeKey(key), code, sessionTTL).Err()
	return errors.Wrap(err, "publishing code")
}

func (s *CodeStore) ConsumeCode(ctx context.Context, key attendance.SessionKey, code string) error {
	n, err := consumeScript.Run(ctx, s.rdb, []string{codeKey(key)}, code).Int()
	if err != nil {
		return errors.Wrap(err, "consuming code")
	}
	if n == 0 {
		return attendance.ErrCodeExpired
	}
	return nil
}

// storedEvent tags the event with its sequence number so listeners can skip
// values they have already observed.
type storedEvent struct {
	Seq int64 `json:"seq"`
	attendance.Event
}

func (s *CodeStore) PublishEvent(ctx context.Context, key attendance.SessionKey, ev attendance.Event) (int64, error) {
	seq, err := s.rdb.Incr(ctx, seqKey(key)).Result()
	if err != nil {
		return 0, errors.Wrap(err, "incrementing event seq")
	}
	data, err := json.Marshal(storedEvent{Seq: seq, Event: ev})
	if err != nil {
		return 0, errors.Wrap(err, "encoding event")
	}

	pipe := s.rdb.Pipeline()
	pipe.Set(ctx, eventKey(key), data, sessionTTL)
	pipe.Expire(ctx, seqKey(key), sessionTTL)
	switch ev.Kind {
	case attendance.EventSuccess:
		pipe.Set(ctx, successKey(key), data, sessionTTL)
	case attendance.EventFailure:
		pipe.Set(ctx, failureKey(key), data, sessionTTL)
	}
	if _, err = pipe.Exec(ctx); err != nil {
		return 0, errors.Wrap(err, "publishing event")
	}
	return seq, nil
}

func (s *CodeStore) LastEvent(ctx context.Context, key attendance.SessionKey, sinceSeq int64) (*attendance.Event, int64, error) {
	data, err := s.rdb.Get(ctx, eventKey(key)).Bytes()
	if err == redis.Nil {
		return nil, sinceSeq, nil
	}
	if err != nil {
		return nil, sinceSeq, errors.Wrap(err, "reading event")
	}
	var stored storedEvent
	if err = json.Unmarshal(data, &stored); err != nil {
		return nil, sinceSeq, errors.Wrap(err, "decoding event")
	}
	if stored.Seq <= sinceSeq {
		return nil, sinceSeq, nil
	}
	return &stored.Event, stored.Seq, nil
}

func (s *CodeStore) ClearSession(ctx context.Context, key attendance.SessionKey) error {
	err := s.rdb.Del(ctx,
		codeKey(key), eventKey(key), seqKey(key), successKey(key), failureKey(key),
	).Err()
	return errors.Wrap(err, "clearing session")
}
