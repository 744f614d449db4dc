package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/colormuse/colormuse-books/internal/domain/session"
)

const (
	keyVersion     = "v1"
	defaultLockTTL = 30 * time.Second
)

// RedisStore keeps sessions as JSON documents. Transitions of one session are
// serialized with a redsync mutex, so a transition that calls the payment
// provider runs exactly once.
type RedisStore struct {
	client  redis.UniversalClient
	rs      *redsync.Redsync
	ttl     time.Duration
	lockTTL time.Duration
	now     func() time.Time
	log     zerolog.Logger
}

// NewRedisClient connects to one or more comma separated redis URLs or host:port addresses.
func NewRedisClient(ctx context.Context, redisURL string) (redis.UniversalClient, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("redis URL must be provided")
	}
	opts, err := buildUniversalOptions(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if len(opts.Addrs) > 1 && opts.DB != 0 {
		opts.DB = 0
	}

	client := redis.NewUniversalClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func buildUniversalOptions(raw string) (*redis.UniversalOptions, error) {
	opts := &redis.UniversalOptions{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !strings.Contains(part, "://") {
			opts.Addrs = append(opts.Addrs, part)
			continue
		}

		parsed, err := redis.ParseURL(part)
		if err != nil {
			return nil, err
		}
		opts.Addrs = append(opts.Addrs, parsed.Addr)
		if opts.Username == "" {
			opts.Username = parsed.Username
		}
		if opts.Password == "" {
			opts.Password = parsed.Password
		}
		if opts.DB == 0 {
			opts.DB = parsed.DB
		}
		if opts.TLSConfig == nil {
			opts.TLSConfig = parsed.TLSConfig
		}
	}
	if len(opts.Addrs) == 0 {
		return nil, fmt.Errorf("no redis addresses provided")
	}
	return opts, nil
}

// NewRedisStore creates a store whose sessions expire ttl after their last update.
func NewRedisStore(client redis.UniversalClient, ttl time.Duration, log zerolog.Logger) *RedisStore {
	return &RedisStore{
		client:  client,
		rs:      redsync.New(goredis.NewPool(client)),
		ttl:     ttl,
		lockTTL: defaultLockTTL,
		now:     time.Now,
		log:     log.With().Str("component", "redis_session_store").Logger(),
	}
}

func stateKey(id string) string {
	return fmt.Sprintf("colormuse:session:%s:%s", keyVersion, id)
}

func lockKey(id string) string {
	return fmt.Sprintf("colormuse:session-lock:%s", id)
}

// Get returns the stored session, or a fresh state when none exists.
func (s *RedisStore) Get(ctx context.Context, id string) (*session.State, error) {
	return s.load(ctx, id)
}

// Update applies fn while holding the session's distributed lock and writes
// the result back even when fn fails.
func (s *RedisStore) Update(ctx context.Context, id string, fn func(*session.State) error) (*session.State, error) {
	mutex := s.rs.NewMutex(lockKey(id), redsync.WithExpiry(s.lockTTL), redsync.WithTries(64))
	if err := mutex.LockContext(ctx); err != nil {
		return nil, fmt.Errorf("lock session: %w", err)
	}
	defer func() {
		if _, err := mutex.UnlockContext(context.WithoutCancel(ctx)); err != nil {
			s.log.Error().Err(err).Str("session_id", id).Msg("failed to unlock session")
		}
	}()

	st, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	ferr := fn(st)

	data, err := json.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, stateKey(id), data, s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return st, ferr
}

// Ping checks the redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) load(ctx context.Context, id string) (*session.State, error) {
	raw, err := s.client.Get(ctx, stateKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return session.NewState(id, s.now()), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var st session.State
	if err := json.Unmarshal(raw, &st); err != nil {
		s.log.Warn().Err(err).Str("session_id", id).Msg("discarding unreadable session")
		return session.NewState(id, s.now()), nil
	}
	return &st, nil
}
