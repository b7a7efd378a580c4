package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on a Redis instance. Documents are JSON
// values under "collection:id" keys, mirroring the collection/document
// shape the rest of the pipeline expects.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore connects to the given Redis URL and verifies connectivity.
func NewRedisStore(ctx context.Context, url string) (*RedisStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisStore{rdb: rdb}, nil
}

func docKey(collection, id string) string {
	return collection + ":" + id
}

func (s *RedisStore) getDoc(ctx context.Context, collection, id string) ([]byte, error) {
	doc, err := s.rdb.Get(ctx, docKey(collection, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *RedisStore) GetPosition(ctx context.Context, collection, symbol string) (*Position, error) {
	doc, err := s.getDoc(ctx, collection, symbol)
	if err != nil || doc == nil {
		return nil, err
	}
	var p Position
	if err := json.Unmarshal(doc, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *RedisStore) PutPosition(ctx context.Context, collection string, p *Position) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, docKey(collection, p.Symbol), doc, 0).Err()
}

func (s *RedisStore) Positions(ctx context.Context, collection string) ([]*Position, error) {
	var positions []*Position
	iter := s.rdb.Scan(ctx, 0, docKey(collection, "*"), 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		if key == docKey(collection, sequenceDocID) {
			continue
		}
		doc, err := s.rdb.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, err
		}
		var p Position
		if err := json.Unmarshal(doc, &p); err != nil {
			return nil, err
		}
		positions = append(positions, &p)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return positions, nil
}

func (s *RedisStore) PutChain(ctx context.Context, collection, ticker string, seq int, doc []byte) error {
	return s.rdb.Set(ctx, docKey(collection, ChainKey(ticker, seq)), doc, 0).Err()
}

func (s *RedisStore) GetChain(ctx context.Context, collection, ticker string, seq int) ([]byte, error) {
	return s.getDoc(ctx, collection, ChainKey(ticker, seq))
}

func (s *RedisStore) Sequence(ctx context.Context, collection string) (int, bool, error) {
	doc, err := s.getDoc(ctx, collection, sequenceDocID)
	if err != nil {
		return 0, false, err
	}
	if doc == nil {
		return 0, false, nil
	}
	n, err := strconv.Atoi(string(doc))
	if err != nil {
		return 0, false, fmt.Errorf("bad sequence document in %s: %w", collection, err)
	}
	return n, true, nil
}

func (s *RedisStore) SetSequence(ctx context.Context, collection string, n int) error {
	return s.rdb.Set(ctx, docKey(collection, sequenceDocID), strconv.Itoa(n), 0).Err()
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
