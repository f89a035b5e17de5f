package ranking

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/asteroid-belt/vidtally/internal/models"
)

const (
	redisOrderKey    = "vidtally:ranking"
	redisRecordKey   = "vidtally:ranking:"
	fieldTotal       = "total_minutes"
	fieldLastUpdated = "last_updated"
)

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisStore keeps one hash per client plus a sorted set ordering clients by
// total minutes.
type RedisStore struct {
	client *redis.Client
}

// OpenRedis connects to Redis and verifies the connection.
func OpenRedis(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return NewRedisStore(client), nil
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// SelectByID reads the client's hash. A hash missing from the sorted set is
// re-added to it, so a record is never stored but unranked.
func (s *RedisStore) SelectByID(ctx context.Context, clientID string) (models.RankingRecord, bool, error) {
	var (
		fieldsCmd *redis.MapStringStringCmd
		scoreCmd  *redis.FloatCmd
	)
	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		fieldsCmd = pipe.HGetAll(ctx, redisRecordKey+clientID)
		scoreCmd = pipe.ZScore(ctx, redisOrderKey, clientID)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return models.RankingRecord{}, false, fmt.Errorf("select ranking: %w", err)
	}
	fields := fieldsCmd.Val()
	if len(fields) == 0 {
		return models.RankingRecord{}, false, nil
	}
	rec, err := decodeRecord(clientID, fields)
	if err != nil {
		return models.RankingRecord{}, false, err
	}
	if errors.Is(scoreCmd.Err(), redis.Nil) {
		z := redis.Z{Score: float64(rec.TotalMinutes), Member: clientID}
		if err := s.client.ZAdd(ctx, redisOrderKey, z).Err(); err != nil {
			return models.RankingRecord{}, false, fmt.Errorf("repair ranking %s: %w", clientID, err)
		}
	}
	return rec, true, nil
}

// The existence check and both writes run as one script, so a record is
// either fully written or not at all.
var (
	insertScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then return 0 end
redis.call('HSET', KEYS[1], 'total_minutes', ARGV[2], 'last_updated', ARGV[3])
redis.call('ZADD', KEYS[2], ARGV[2], ARGV[1])
return 1`)

	updateScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then return 0 end
redis.call('HSET', KEYS[1], 'total_minutes', ARGV[2], 'last_updated', ARGV[3])
redis.call('ZADD', KEYS[2], ARGV[2], ARGV[1])
return 1`)
)

func (s *RedisStore) Insert(ctx context.Context, rec models.RankingRecord) error {
	ok, err := s.run(ctx, insertScript, rec)
	if err != nil {
		return fmt.Errorf("insert ranking: %w", err)
	}
	if !ok {
		return fmt.Errorf("insert ranking %s: duplicate client id", rec.ClientID)
	}
	return nil
}

func (s *RedisStore) Update(ctx context.Context, rec models.RankingRecord) error {
	ok, err := s.run(ctx, updateScript, rec)
	if err != nil {
		return fmt.Errorf("update ranking: %w", err)
	}
	if !ok {
		return fmt.Errorf("update ranking %s: no such client id", rec.ClientID)
	}
	return nil
}

func (s *RedisStore) run(ctx context.Context, script *redis.Script, rec models.RankingRecord) (bool, error) {
	n, err := script.Run(ctx, s.client,
		[]string{redisRecordKey + rec.ClientID, redisOrderKey},
		rec.ClientID,
		rec.TotalMinutes,
		rec.LastUpdated.UTC().Format(time.RFC3339Nano),
	).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// SelectAllOrderedByTotalDesc returns every ranked record, highest total
// first and ties by ascending client id.
func (s *RedisStore) SelectAllOrderedByTotalDesc(ctx context.Context) ([]models.RankingRecord, error) {
	ids, err := s.client.ZRevRange(ctx, redisOrderKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("select rankings: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, redisRecordKey+id)
		}
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("select rankings: %w", err)
	}

	out := make([]models.RankingRecord, 0, len(ids))
	for i, id := range ids {
		fields := cmds[i].Val()
		if len(fields) == 0 {
			continue
		}
		rec, err := decodeRecord(id, fields)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	// Redis breaks score ties by member in reverse; the other stores use id order.
	slices.SortStableFunc(out, func(a, b models.RankingRecord) int {
		if a.TotalMinutes != b.TotalMinutes {
			return cmp.Compare(b.TotalMinutes, a.TotalMinutes)
		}
		return strings.Compare(a.ClientID, b.ClientID)
	})
	return out, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func decodeRecord(clientID string, fields map[string]string) (models.RankingRecord, error) {
	rec := models.RankingRecord{ClientID: clientID}
	total, err := strconv.Atoi(fields[fieldTotal])
	if err != nil {
		return models.RankingRecord{}, fmt.Errorf("decode ranking %s: %w", clientID, err)
	}
	rec.TotalMinutes = total
	if ts := fields[fieldLastUpdated]; ts != "" {
		if rec.LastUpdated, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return models.RankingRecord{}, fmt.Errorf("decode ranking %s: %w", clientID, err)
		}
	}
	return rec, nil
}
