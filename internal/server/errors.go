// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FieldSync

package server

import "errors"

// errNoServersAreCreated is returned by NewServer when the configuration
// names no listen address, leaving nothing to run. This is treated as a
// fatal misconfiguration at startup.
var errNoServersAreCreated = errors.New("no servers are created")
