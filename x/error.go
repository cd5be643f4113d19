/*
 * SPDX-FileCopyrightText: © gqlgate authors <hello@gqlgate.io>
 * SPDX-License-Identifier: Apache-2.0
 */

package x

// Error handling helpers used across the gateway.  Common use cases are:
// (1) You receive an error from an external lib and would like to check/log
//     fatal.  For this, use x.Check, x.Checkf.
// (2) You receive an error from an external lib and would like to pass it on
//     with some stack trace information.  In this case, use x.Wrapf or
//     errors.Wrapf.
// (3) You want to generate a new error with stack trace info.  Use
//     errors.Errorf.

import (
	"log"

	"github.com/pkg/errors"
)

// Check logs fatal if err != nil.
func Check(err error) {
	if err != nil {
		err = errors.Wrap(err, "")
		log.Fatalf("%+v", err)
	}
}

// Checkf is Check with extra info.
func Checkf(err error, format string, args ...interface{}) {
	if err != nil {
		err = errors.Wrapf(err, format, args...)
		log.Fatalf("%+v", err)
	}
}

// CheckfNoTrace is Checkf without a stack trace.
func CheckfNoTrace(err error) {
	if err != nil {
		log.Fatal(err.Error())
	}
}

// Check2 acts as convenience wrapper around Check, using the 2nd argument as error.
func Check2(_ interface{}, err error) {
	Check(err)
}

// Ignore function is used to ignore errors deliberately, while keeping the
// linter happy.
func Ignore(_ error) {
	// Do nothing.
}

// AssertTruef asserts that b is true, logging fatal with extra info otherwise.
func AssertTruef(b bool, format string, args ...interface{}) {
	if !b {
		log.Fatalf("%+v", errors.Errorf(format, args...))
	}
}

// Wrapf wraps an error with extra info, passing nil through untouched.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, format, args...)
}
