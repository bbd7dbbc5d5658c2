// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FieldSync

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/fieldsync/casesync/internal/config"
	"github.com/fieldsync/casesync/internal/logger"
)

// badgerCache implements [Cache] on an embedded BadgerDB instance. Badger's
// native entry TTLs carry the expiry, so there is no sweeper to run; expired
// entries surface as key-not-found and are reclaimed by value log GC.
type badgerCache struct {
	db     *badger.DB
	logger *logger.Logger
}

// NewBadgerCache opens the cache database described by cfg. With
// cfg.InMemory set the instance lives entirely in memory, which is the mode
// tests use.
func NewBadgerCache(cfg config.Cache, log *logger.Logger) (Cache, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(cfg.Dir)
	}
	// badger's own logger is too chatty for a cache; failures surface as
	// errors on the operations themselves
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Err(err).Str("func", "NewBadgerCache").Str("dir", cfg.Dir).Msg("error opening cache database")
		return nil, fmt.Errorf("error opening cache database: %w", err)
	}
	log.Info().Str("func", "NewBadgerCache").Bool("in_memory", cfg.InMemory).Msg("payload cache opened")

	return &badgerCache{db: db, logger: log}, nil
}

func (c *badgerCache) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrCacheMiss
		}
		logger.FromContext(ctx).Err(err).Str("key", key).Msg("cache read failed")
		return nil, fmt.Errorf("cache read: %w", err)
	}
	return value, nil
}

func (c *badgerCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), value)
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("key", key).Msg("cache write failed")
		return fmt.Errorf("cache write: %w", err)
	}
	return nil
}

func (c *badgerCache) Delete(ctx context.Context, key string) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("key", key).Msg("cache delete failed")
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

func (c *badgerCache) Close() error {
	return c.db.Close()
}
