// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FieldSync

// Package http implements the HTTP transport layer of the restore service.
//
// It exposes route wiring, the restore request handler, and middleware for
// request tracing, access logging, and response compression. Requests are
// translated into service calls and service errors back into HTTP statuses.
package http
