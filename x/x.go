/*
 * SPDX-FileCopyrightText: © gqlgate authors <hello@gqlgate.io>
 * SPDX-License-Identifier: Apache-2.0
 */

package x

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/pkg/errors"
)

// Error constants representing different types of errors.
const (
	Success             = "Success"
	Error               = "Error"
	ErrorInvalidMethod  = "ErrorInvalidMethod"
	ErrorInvalidRequest = "ErrorInvalidRequest"
	ErrorServiceDown    = "ErrorServiceDown"
)

// Status is the JSON body used by the non-GraphQL admin endpoints.
type Status struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SetStatus sets the error code and message in the http response.
func SetStatus(w http.ResponseWriter, code, msg string) {
	r := &Status{Code: code, Message: msg}
	if js, err := json.Marshal(r); err == nil {
		if _, err := w.Write(js); err != nil {
			Ignore(err)
		}
	} else {
		panic(fmt.Sprintf("Unable to marshal: %+v", r))
	}
}

// SetHttpStatus is like SetStatus but sets a proper HTTP status code
// in the response instead of always returning HTTP 200.
func SetHttpStatus(w http.ResponseWriter, code int, msg string) {
	w.WriteHeader(code)
	SetStatus(w, "error", msg)
}

// Reply marshals rep as the whole JSON body of the response.
func Reply(w http.ResponseWriter, rep interface{}) {
	if js, err := json.Marshal(rep); err == nil {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, string(js))
	} else {
		SetStatus(w, Error, "Internal server error")
	}
}

// AddCorsHeaders sets the CORS headers that all gateway endpoints reply with.
// It must not touch the Connection header: clients rely on HTTP Keep-Alive
// across consecutive GraphQL requests.
func AddCorsHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers",
		"Content-Type, Content-Length, Accept-Encoding, Cache-Control, X-CSRF-Token, X-Requested-With")
	w.Header().Set("Access-Control-Max-Age", "1728000")
}

// healthy is non-zero once the server is ready to accept requests.
var healthy int32

// UpdateHealthStatus updates the server's health status. When not healthy, the
// health endpoint reports HTTP 503.
func UpdateHealthStatus(ok bool) {
	var v int32
	if ok {
		v = 1
	}
	atomic.StoreInt32(&healthy, v)
}

// HealthCheck returns an error if the server is not ready to accept requests.
func HealthCheck() error {
	if atomic.LoadInt32(&healthy) == 0 {
		return errors.Errorf("gqlgate is not ready to accept requests")
	}
	return nil
}
