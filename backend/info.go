/*
 * SPDX-FileCopyrightText: © gqlgate authors <hello@gqlgate.io>
 * SPDX-License-Identifier: Apache-2.0
 */

package backend

import (
	"time"

	"github.com/gqlgate-io/gqlgate/x"
)

// infoSchema is the schema the gateway serves when it isn't bridged to any
// upstream.  It only exposes operational information, so a fresh gateway is
// still a working GraphQL endpoint that can be probed and load tested.
const infoSchema = `
	schema {
		query: Query
	}
	type Query {
		health: Health!
	}
	type Health {
		instance: String!
		status: String!
		version: String!
		uptime: Int!
	}
`

type infoResolver struct {
	startTime time.Time
}

type healthResolver struct {
	startTime time.Time
}

func (r *infoResolver) Health() *healthResolver {
	return &healthResolver{startTime: r.startTime}
}

func (h *healthResolver) Instance() string {
	return "gqlgate"
}

func (h *healthResolver) Status() string {
	if err := x.HealthCheck(); err != nil {
		return "unhealthy"
	}
	return "healthy"
}

func (h *healthResolver) Version() string {
	return x.Version()
}

func (h *healthResolver) Uptime() int32 {
	return int32(time.Since(h.startTime).Seconds())
}

// NewInfo returns the built-in executor serving the gateway's own health
// schema.
func NewInfo() (*GraphGophers, error) {
	return NewGraphGophers(infoSchema, &infoResolver{startTime: time.Now()})
}
