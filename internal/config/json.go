// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FieldSync

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

type StructuredJSONConfig struct {
	App struct {
		Version string `json:"version"`
	} `json:"app,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`

		Cache struct {
			Dir      string `json:"dir"`
			InMemory bool   `json:"in_memory"`
		} `json:"cache,omitempty"`
	} `json:"storage,omitempty"`

	Server struct {
		HTTPAddress    string   `json:"http_address"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"server,omitempty"`

	Restore struct {
		InitialRetryAfter   Duration `json:"initial_retry_after"`
		PollRetryAfter      Duration `json:"poll_retry_after"`
		AsyncGracePeriod    Duration `json:"async_grace_period"`
		CacheTTL            Duration `json:"cache_ttl"`
		CacheThreshold      Duration `json:"cache_threshold"`
		LenientHashMismatch bool     `json:"lenient_hash_mismatch"`
		StrictPurge         bool     `json:"strict_purge"`
		RetentionWindow     Duration `json:"retention_window"`
	} `json:"restore,omitempty"`

	Workers struct {
		PoolSize      int      `json:"pool_size"`
		QueueCapacity int      `json:"queue_capacity"`
		ResultTTL     Duration `json:"result_ttl"`
		GCInterval    Duration `json:"gc_interval"`
	} `json:"workers,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			Version: jsonCfg.App.Version,
		},
		Storage: Storage{
			DB: DB{
				DSN: jsonCfg.Storage.DB.DSN,
			},
			Cache: Cache{
				Dir:      jsonCfg.Storage.Cache.Dir,
				InMemory: jsonCfg.Storage.Cache.InMemory,
			},
		},
		Server: Server{
			HTTPAddress:    jsonCfg.Server.HTTPAddress,
			RequestTimeout: time.Duration(jsonCfg.Server.RequestTimeout),
		},
		Restore: Restore{
			InitialRetryAfter:   time.Duration(jsonCfg.Restore.InitialRetryAfter),
			PollRetryAfter:      time.Duration(jsonCfg.Restore.PollRetryAfter),
			AsyncGracePeriod:    time.Duration(jsonCfg.Restore.AsyncGracePeriod),
			CacheTTL:            time.Duration(jsonCfg.Restore.CacheTTL),
			CacheThreshold:      time.Duration(jsonCfg.Restore.CacheThreshold),
			LenientHashMismatch: jsonCfg.Restore.LenientHashMismatch,
			StrictPurge:         jsonCfg.Restore.StrictPurge,
			RetentionWindow:     time.Duration(jsonCfg.Restore.RetentionWindow),
		},
		Workers: Workers{
			PoolSize:      jsonCfg.Workers.PoolSize,
			QueueCapacity: jsonCfg.Workers.QueueCapacity,
			ResultTTL:     time.Duration(jsonCfg.Workers.ResultTTL),
			GCInterval:    time.Duration(jsonCfg.Workers.GCInterval),
		},
		JSONFilePath: "",
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
