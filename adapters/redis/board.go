package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"econledger/core"
	"econledger/leaderboard"

	"github.com/redis/go-redis/v9"
)

// ZSetBoard implements leaderboard.Board on a Redis sorted set, letting
// several server instances share one ranking. Redis orders equal scores by
// member descending when ranges are reversed, so fetched pages are re-sorted
// locally to restore the name-ascending tie rule; ties that straddle a page
// boundary may swap across pages.
type ZSetBoard struct {
	client *redis.Client
	key    string
	// opTimeout bounds each board call; Board methods carry no context.
	opTimeout time.Duration
}

// NewBoard dials a fresh connection from config; use NewZSetBoard to share
// an existing client.
func NewBoard(config Config) (*ZSetBoard, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewZSetBoard(client, config.BoardKey), nil
}

func NewZSetBoard(client *redis.Client, key string) *ZSetBoard {
	if key == "" {
		key = DefaultConfig().BoardKey
	}
	return &ZSetBoard{client: client, key: key, opTimeout: 3 * time.Second}
}

func (b *ZSetBoard) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), b.opTimeout)
}

func (b *ZSetBoard) Update(name core.Name, balance int64) {
	ctx, cancel := b.ctx()
	defer cancel()
	b.client.ZAdd(ctx, b.key, redis.Z{Score: float64(balance), Member: string(name)})
}

func (b *ZSetBoard) Remove(name core.Name) {
	ctx, cancel := b.ctx()
	defer cancel()
	b.client.ZRem(ctx, b.key, string(name))
}

func (b *ZSetBoard) Top(limit, offset int) []leaderboard.Entry {
	if limit <= 0 || offset < 0 {
		return nil
	}
	ctx, cancel := b.ctx()
	defer cancel()
	zs, err := b.client.ZRevRangeWithScores(ctx, b.key, int64(offset), int64(offset+limit-1)).Result()
	if err != nil || len(zs) == 0 {
		return nil
	}
	out := make([]leaderboard.Entry, 0, len(zs))
	for _, z := range zs {
		out = append(out, leaderboard.Entry{Name: core.Name(z.Member.(string)), Balance: int64(z.Score)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Balance == out[j].Balance {
			return out[i].Name < out[j].Name
		}
		return out[i].Balance > out[j].Balance
	})
	return out
}

func (b *ZSetBoard) Rank(name core.Name) (int, bool) {
	ctx, cancel := b.ctx()
	defer cancel()
	rank, err := b.client.ZRevRank(ctx, b.key, string(name)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false
	}
	if err != nil {
		return 0, false
	}
	return int(rank) + 1, true
}

func (b *ZSetBoard) Len() int {
	ctx, cancel := b.ctx()
	defer cancel()
	n, err := b.client.ZCard(ctx, b.key).Result()
	if err != nil {
		return 0
	}
	return int(n)
}

var _ leaderboard.Board = (*ZSetBoard)(nil)
