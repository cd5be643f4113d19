/*
 * SPDX-FileCopyrightText: © gqlgate authors <hello@gqlgate.io>
 * SPDX-License-Identifier: Apache-2.0
 */

// Package resolve sits between the HTTP layer and a backend executor.  A
// RequestResolver owns everything that happens to a request after parsing and
// before execution: persisted query lookup, operation validation, metrics and
// tracing.  Execution itself is bridged to the backend untouched.
package resolve

import (
	"context"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"go.opencensus.io/stats"
	"go.opencensus.io/tag"
	otrace "go.opencensus.io/trace"

	"github.com/gqlgate-io/gqlgate/backend"
	"github.com/gqlgate-io/gqlgate/graphql/schema"
	"github.com/gqlgate-io/gqlgate/x"
)

const methodResolve = "RequestResolver.Resolve"

// RequestResolver can process GraphQL requests and write GraphQL JSON
// responses.  It bridges every valid request to its executor and never
// interprets resolved data.
type RequestResolver struct {
	executor backend.Executor
	queries  *queryCache
}

// An Option changes how a RequestResolver processes requests.
type Option func(*RequestResolver)

// WithPersistedQueries enables the automatic persisted queries convention:
// clients may send a sha256 hash in request extensions instead of repeating
// the query text.
func WithPersistedQueries() Option {
	return func(rr *RequestResolver) {
		rr.queries = newQueryCache()
	}
}

// New creates a new RequestResolver bridging requests to executor.
func New(executor backend.Executor, opts ...Option) *RequestResolver {
	x.AssertTruef(executor != nil, "a RequestResolver requires an executor")

	rr := &RequestResolver{executor: executor}
	for _, opt := range opts {
		opt(rr)
	}
	return rr
}

// Resolve processes req and returns a GraphQL response.  A request that fails
// persisted query lookup or operation validation never reaches the executor.
func (rr *RequestResolver) Resolve(ctx context.Context, req *schema.Request) *schema.Response {
	ctx, span := otrace.StartSpan(ctx, methodResolve)
	defer span.End()

	if rr == nil {
		glog.Errorf("Call to Resolve with nil RequestResolver")
		return schema.ErrorResponse(errors.New("Internal error"))
	}
	if req == nil {
		return schema.MalformedResponse(errors.New("no request to resolve"))
	}

	startTime := time.Now()
	mctx := x.WithMethod(ctx, methodResolve)
	stats.Record(mctx, x.PendingQueries.M(1))
	status := x.TagValueStatusOK
	defer func() {
		var tags []tag.Mutator
		tags = append(tags, tag.Upsert(x.KeyStatus, status))
		timeSpentMs := x.SinceMs(startTime)
		if err := stats.RecordWithTags(mctx, tags,
			x.LatencyMs.M(timeSpentMs),
			x.NumQueries.M(1),
			x.PendingQueries.M(-1)); err != nil {
			glog.Errorf("Error recording metrics: %v", err)
		}
	}()

	if err := rr.resolvePersistedQuery(req); err != nil {
		status = x.TagValueStatusError
		return schema.ErrorResponse(err)
	}

	if err := req.Validate(); err != nil {
		status = x.TagValueStatusError
		return schema.MalformedResponse(err)
	}

	if glog.V(3) {
		glog.Infof("Resolving GQL request: \n%s\n", req.Query)
	}

	resp := rr.executor.Execute(ctx, req)
	if resp == nil {
		status = x.TagValueStatusError
		return schema.ErrorResponse(errors.New("Internal error - the backend returned no response"))
	}
	if len(resp.Errors) != 0 {
		status = x.TagValueStatusError
	}
	return resp
}
