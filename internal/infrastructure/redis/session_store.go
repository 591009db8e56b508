package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/baechuer/account-service/internal/domain"
	"github.com/baechuer/account-service/internal/session"
)

// SessionStore implements account.SessionStore with per-user versioning:
//   - sess:<id>     -> JSON session record, TTL refreshed on every save
//   - sessver:<uid> -> current session version of the user (no TTL)
//
// RevokeUser increments sessver:<uid>; a bound session whose recorded
// version differs from the current one no longer loads.
type SessionStore struct {
	rdb *goredis.Client
	ttl time.Duration

	sessPrefix string
	verPrefix  string
}

func NewSessionStore(c *Client, ttl time.Duration) *SessionStore {
	var rdb *goredis.Client
	if c != nil {
		rdb = c.rdb
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionStore{
		rdb:        rdb,
		ttl:        ttl,
		sessPrefix: "sess:",
		verPrefix:  "sessver:",
	}
}

type sessionRecord struct {
	UserID  string `json:"uid,omitempty"`
	Captcha string `json:"captcha,omitempty"`
	Version int64  `json:"ver"`
}

var errNotConfigured = errors.New("redis session store not configured")

func (s *SessionStore) Load(ctx context.Context, id string) (session.State, bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return session.State{}, false, nil
	}
	if s.rdb == nil {
		return session.State{}, false, domain.ErrRedisUnavailable(errNotConfigured)
	}

	raw, err := s.rdb.Get(ctx, s.sessPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return session.State{}, false, nil
		}
		return session.State{}, false, domain.ErrRedisUnavailable(err)
	}

	var rec sessionRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		// unreadable record: drop it and start over
		_ = s.rdb.Del(ctx, s.sessPrefix+id).Err()
		return session.State{}, false, nil
	}

	st := session.State{ID: id, UserID: rec.UserID, CaptchaHash: rec.Captcha, Version: rec.Version}
	if st.IsGuest() {
		return st, true, nil
	}

	cur, err := s.UserVersion(ctx, st.UserID)
	if err != nil {
		return session.State{}, false, err
	}
	if cur != st.Version {
		_ = s.rdb.Del(ctx, s.sessPrefix+id).Err()
		return session.State{}, false, nil
	}
	return st, true, nil
}

func (s *SessionStore) Save(ctx context.Context, st session.State) error {
	if strings.TrimSpace(st.ID) == "" {
		return domain.ErrMissingField("session_id")
	}
	if s.rdb == nil {
		return domain.ErrRedisUnavailable(errNotConfigured)
	}

	b, err := json.Marshal(sessionRecord{UserID: st.UserID, Captcha: st.CaptchaHash, Version: st.Version})
	if err != nil {
		return domain.ErrInternal(err)
	}
	if err := s.rdb.Set(ctx, s.sessPrefix+st.ID, b, s.ttl).Err(); err != nil {
		return domain.ErrRedisUnavailable(err)
	}
	return nil
}

// Destroy is idempotent.
func (s *SessionStore) Destroy(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	if s.rdb == nil {
		return domain.ErrRedisUnavailable(errNotConfigured)
	}
	if err := s.rdb.Del(ctx, s.sessPrefix+id).Err(); err != nil {
		return domain.ErrRedisUnavailable(err)
	}
	return nil
}

func (s *SessionStore) UserVersion(ctx context.Context, userID string) (int64, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, domain.ErrMissingField("user_id")
	}
	if s.rdb == nil {
		return 0, domain.ErrRedisUnavailable(errNotConfigured)
	}

	key := s.verPrefix + userID
	v, err := s.rdb.Get(ctx, key).Result()
	if err == nil {
		if n, perr := strconv.ParseInt(strings.TrimSpace(v), 10, 64); perr == nil {
			return n, nil
		}
		// unparsable: treat as 0 and repair below
	} else if !errors.Is(err, goredis.Nil) {
		return 0, domain.ErrRedisUnavailable(err)
	}

	// default ver = 0; SETNX keeps it stable
	_ = s.rdb.SetNX(ctx, key, "0", 0).Err()
	return 0, nil
}

func (s *SessionStore) RevokeUser(ctx context.Context, userID string) (int64, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, domain.ErrMissingField("user_id")
	}
	if s.rdb == nil {
		return 0, domain.ErrRedisUnavailable(errNotConfigured)
	}
	n, err := s.rdb.Incr(ctx, s.verPrefix+userID).Result()
	if err != nil {
		return 0, domain.ErrRedisUnavailable(err)
	}
	return n, nil
}
