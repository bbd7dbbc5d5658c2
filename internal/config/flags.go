// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FieldSync

package config

import (
	"errors"
	"flag"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-a server address in format [host]:[port]
//	-d database DSN
//	-cache-dir payload cache directory
//	-c/-config json file path with configs
//	-request-timeout request timeout (e.g., "30s", "1m")
//	-cache-ttl restore payload cache lifetime (e.g., "24h")
//	-retention-window sync state retention window (e.g., "1440h")
//	-strict-purge treat purge inconsistencies as fatal
//	-lenient-hash-mismatch record hash mismatches instead of rejecting
func ParseFlags() *StructuredConfig {
	var serverAddress NetAddress
	var databaseDSN string
	var cacheDir string
	var jsonConfigPath string
	var requestTimeout time.Duration
	var cacheTTL time.Duration
	var retentionWindow time.Duration
	var strictPurge bool
	var lenientHashMismatch bool

	flag.Var(&serverAddress, "a", "Net address host:port")
	flag.StringVar(&databaseDSN, "d", "", "Database DSN")
	flag.StringVar(&cacheDir, "cache-dir", "", "Payload cache directory")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	flag.DurationVar(&cacheTTL, "cache-ttl", 0, "Restore payload cache lifetime (e.g., 24h)")
	flag.DurationVar(&retentionWindow, "retention-window", 0, "Sync state retention window (e.g., 1440h)")
	flag.BoolVar(&strictPurge, "strict-purge", false, "Treat purge inconsistencies as fatal")
	flag.BoolVar(&lenientHashMismatch, "lenient-hash-mismatch", false, "Record hash mismatches instead of rejecting")

	flag.Parse()

	return &StructuredConfig{
		Storage: Storage{
			DB: DB{
				DSN: databaseDSN,
			},
			Cache: Cache{
				Dir: cacheDir,
			},
		},
		Server: Server{
			HTTPAddress:    serverAddress.String(),
			RequestTimeout: requestTimeout,
		},
		Restore: Restore{
			CacheTTL:            cacheTTL,
			RetentionWindow:     retentionWindow,
			StrictPurge:         strictPurge,
			LenientHashMismatch: lenientHashMismatch,
		},
		Workers:      Workers{},
		JSONFilePath: jsonConfigPath,
	}
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns the empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost",
// and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 {
		return errors.New("port number is a positive integer")
	}

	if host != "localhost" {
		ip := net.ParseIP(hostAndPort[0])
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
