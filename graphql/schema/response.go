/*
 * SPDX-FileCopyrightText: © gqlgate authors <hello@gqlgate.io>
 * SPDX-License-Identifier: Apache-2.0
 */

package schema

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/gqlgate-io/gqlgate/x"
)

// A Response is the GraphQL wire format response to a Request.  Data is held
// as raw bytes: the gateway never inspects what a backend resolved, it only
// wraps it into the envelope.
type Response struct {
	Errors x.GqlErrorList
	Data   bytes.Buffer

	// Header holds HTTP headers a backend wants served along with the
	// envelope, e.g. an upstream's Cache-Control.
	Header http.Header

	// Status is the HTTP status the response should be served with.  Zero
	// means HTTP 200: execution errors still ship in a 200 envelope, only a
	// malformed request downgrades the status itself.
	Status int
}

// ErrorResponse formats an error as a list of GraphQL errors and builds a
// response with that error list and no data.  Because it doesn't add data, it
// should be used before execution begins, or when no data result makes sense.
func ErrorResponse(err error) *Response {
	return &Response{
		Errors: AsGQLErrors(err),
	}
}

// MalformedResponse is ErrorResponse with the HTTP status set to 400.  It is
// the response for requests that fail before execution: missing query text,
// bad JSON, wrong content type, or an operation that can't be selected.
func MalformedResponse(err error) *Response {
	resp := ErrorResponse(err)
	resp.Status = http.StatusBadRequest
	return resp
}

// WithError generates GraphQL errors from err and records those in r.
func (r *Response) WithError(err error) {
	if err == nil {
		return
	}
	r.Errors = append(r.Errors, AsGQLErrors(err)...)
}

// AddData adds p to the data buffer.  It must be valid JSON: the response is
// written to the wire with no further checking.
func (r *Response) AddData(p []byte) {
	if r == nil || len(p) == 0 {
		return
	}
	r.Data.Write(p)
}

// WriteTo writes the response as unindented JSON to w.  The errors key is
// present only when at least one error occurred; the data key is dropped when
// nothing was resolved, and carries an explicit null when the backend resolved
// to null.
func (r *Response) WriteTo(w io.Writer) (int64, error) {
	if r == nil {
		i, err := w.Write([]byte(
			`{"errors":[{"message":"Internal error - no response to write."}],"data":null}`))
		return int64(i), err
	}

	js, err := json.Marshal(struct {
		Errors x.GqlErrorList  `json:"errors,omitempty"`
		Data   json.RawMessage `json:"data,omitempty"`
	}{
		Errors: r.Errors,
		Data:   r.Data.Bytes(),
	})
	if err != nil {
		msg := "Internal error - failed to marshal a valid JSON response"
		glog.Errorf("%+v", errors.Wrap(err, msg))
		js = []byte(`{"errors":[{"message":"` + msg + `"}],"data":null}`)
	}

	i, err := w.Write(js)
	return int64(i), err
}

// Output returns the response in the shape that the websocket transport
// expects to marshal for subscription payloads.
func (r *Response) Output() interface{} {
	if r == nil {
		return nil
	}
	return struct {
		Errors []*x.GqlError   `json:"errors,omitempty"`
		Data   json.RawMessage `json:"data,omitempty"`
	}{
		Errors: r.Errors,
		Data:   r.Data.Bytes(),
	}
}
