// internal/stats/stats.go
//
// Cached "average attempts remaining" statistic.
//
// The statistic is derived from every non-terminal game and kept in
// Redis under a single fixed key. It is eventually consistent: game
// creation pokes the refresher and moves on, a background goroutine
// does the recompute, and readers get whatever was cached last (empty
// if nothing was ever computed).

package stats

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const cacheKey = "hangman:average_attempts"

// AttemptsLister supplies attempts_remaining for all active games.
// Satisfied by *store.Store.
type AttemptsLister interface {
	ActiveAttempts(ctx context.Context) ([]int, error)
}

// Cache computes and serves the statistic.
type Cache struct {
	rdb   *redis.Client
	games AttemptsLister
	poke  chan struct{}
}

// New constructs a Cache. Call Start to run the background refresher.
func New(rdb *redis.Client, games AttemptsLister) *Cache {
	return &Cache{rdb: rdb, games: games, poke: make(chan struct{}, 1)}
}

// Start launches the refresher goroutine; it exits when ctx is done.
func (c *Cache) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-c.poke:
				if err := c.Refresh(ctx); err != nil {
					log.Warn().Err(err).Msg("refresh average attempts")
				}
			}
		}
	}()
}

// Poke schedules a recompute. Never blocks: a pending poke already
// covers this request.
func (c *Cache) Poke() {
	select {
	case c.poke <- struct{}{}:
	default:
	}
}

// Refresh recomputes the statistic and stores it. With no active games
// the previous value is left in place.
func (c *Cache) Refresh(ctx context.Context) error {
	attempts, err := c.games.ActiveAttempts(ctx)
	if err != nil {
		return err
	}
	if len(attempts) == 0 {
		return nil
	}
	total := 0
	for _, n := range attempts {
		total += n
	}
	avg := float64(total) / float64(len(attempts))
	msg := fmt.Sprintf("The average moves remaining is %.2f", avg)
	return c.rdb.Set(ctx, cacheKey, msg, 0).Err()
}

// Get returns the cached statistic, or "" if it was never computed.
func (c *Cache) Get(ctx context.Context) (string, error) {
	v, err := c.rdb.Get(ctx, cacheKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return v, err
}
