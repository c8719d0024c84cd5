package locker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only while it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type Config struct {
	KeyPrefix    string        `env:"LOCK_KEY_PREFIX" envDefault:"billing:lock:"`
	TTL          time.Duration `env:"LOCK_TTL" envDefault:"45s"`
	PollInterval time.Duration `env:"LOCK_POLL_INTERVAL" envDefault:"50ms"`
}

// Redis is a Locker shared by every instance pointed at the same server.
// TTL must exceed the gateway timeout so a slow create-customer call cannot
// outlive its lock.
type Redis struct {
	client redis.UniversalClient
	cfg    Config
}

func NewRedis(client redis.UniversalClient, cfg Config) *Redis {
	if cfg.TTL <= 0 {
		cfg.TTL = 45 * time.Second
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 50 * time.Millisecond
	}
	return &Redis{client: client, cfg: cfg}
}

func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	fullKey := r.cfg.KeyPrefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	for {
		ok, err := r.client.SetNX(ctx, fullKey, token, r.cfg.TTL).Result()
		if err != nil {
			return nil, errors.Join(ErrLockNotAcquired, err)
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrLockNotAcquired, ctx.Err())
		case <-ticker.C:
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// The caller's ctx may already be canceled.
			releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = releaseScript.Run(releaseCtx, r.client, []string{fullKey}, token).Err()
		})
	}, nil
}
