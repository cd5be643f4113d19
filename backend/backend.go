/*
 * SPDX-FileCopyrightText: © gqlgate authors <hello@gqlgate.io>
 * SPDX-License-Identifier: Apache-2.0
 */

// Package backend contains the executors that the gateway can bridge GraphQL
// requests to.  An executor owns all execution semantics: schema resolution,
// type validation and error generation happen behind this interface, the
// gateway only maps requests in and envelopes out.
package backend

import (
	"context"

	"github.com/gqlgate-io/gqlgate/graphql/schema"
)

// An Executor can execute a GraphQL request and return a GraphQL response.
// Implementations must honor ctx cancellation and must never return nil.
type Executor interface {
	Execute(ctx context.Context, req *schema.Request) *schema.Response
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, req *schema.Request) *schema.Response

// Execute calls f.
func (f ExecutorFunc) Execute(ctx context.Context, req *schema.Request) *schema.Response {
	return f(ctx, req)
}
