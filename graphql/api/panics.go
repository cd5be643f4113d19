/*
 * SPDX-FileCopyrightText: © gqlgate authors <hello@gqlgate.io>
 * SPDX-License-Identifier: Apache-2.0
 */

package api

import (
	"runtime/debug"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// PanicHandler catches panics during GraphQL request handling so that a
// panicking request can't take the gateway down, and the client still gets a
// valid GraphQL error response.
//
// If PanicHandler recovers from a panic, it logs a stack trace along with the
// query that caused it, creates an error and applies fn to the error.
func PanicHandler(fn func(error), query string) {
	if err := recover(); err != nil {
		glog.Errorf("panic: %s.\n query: %s\n trace: %s", err, query, string(debug.Stack()))

		fn(errors.Errorf("Internal Server Error - a panic was trapped.  " +
			"This indicates a bug in the GraphQL gateway.  A stack trace was logged.  " +
			"Please let us know by filing an issue with the stack trace."))
	}
}
