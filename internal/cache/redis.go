package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"findata/internal/model"
)

// Redis stores series as JSON values with a TTL so several API instances
// share one cache.
type Redis struct {
	Client *goredis.Client
	TTL    time.Duration
}

func NewRedis(addr string, ttl time.Duration) *Redis {
	return &Redis{
		Client: goredis.NewClient(&goredis.Options{
			Addr:         addr,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		}),
		TTL: ttl,
	}
}

func (r *Redis) Get(ctx context.Context, key string) (model.ResolvedSeries, bool) {
	data, err := r.Client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			log.Printf("[WARN] redis get %s: %v", key, err)
		}
		return model.ResolvedSeries{}, false
	}
	var s model.ResolvedSeries
	if err := json.Unmarshal(data, &s); err != nil {
		log.Printf("[WARN] redis decode %s: %v", key, err)
		return model.ResolvedSeries{}, false
	}
	return s, true
}

func (r *Redis) Set(ctx context.Context, key string, s model.ResolvedSeries) {
	data, err := json.Marshal(s)
	if err != nil {
		log.Printf("[WARN] redis encode %s: %v", key, err)
		return
	}
	if err := r.Client.Set(ctx, key, data, r.TTL).Err(); err != nil {
		log.Printf("[WARN] redis set %s: %v", key, err)
	}
}

func (r *Redis) Close() error { return r.Client.Close() }
