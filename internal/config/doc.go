// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FieldSync

// Package config provides configuration loading, merging, and validation
// facilities for the case synchronization service.
//
// Configuration is assembled from multiple sources in the following priority
// order (earlier sources override later ones for non-zero fields):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON config file
//  4. Built-in defaults
//
// The main entry point is [GetStructuredConfig].
package config
