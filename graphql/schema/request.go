/*
 * SPDX-FileCopyrightText: © gqlgate authors <hello@gqlgate.io>
 * SPDX-License-Identifier: Apache-2.0
 */

package schema

import (
	"net/http"

	"github.com/pkg/errors"

	"github.com/dgraph-io/gqlparser/v2/ast"
	"github.com/dgraph-io/gqlparser/v2/parser"
)

// A Request represents a GraphQL request.  It makes no guarantees that the
// request is valid.
type Request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
	Extensions    RequestExtensions      `json:"extensions,omitempty"`

	// Header is not part of the GraphQL request body, it gets attached by the
	// HTTP layer so that backends can see what the client sent.
	Header http.Header `json:"-"`
}

// RequestExtensions represents extensions received in requests.
type RequestExtensions struct {
	PersistedQuery PersistedQuery `json:"persistedQuery,omitempty"`
}

// PersistedQuery is the query hash received from clients like Apollo that
// support the automatic persisted queries convention.
type PersistedQuery struct {
	Sha256Hash string `json:"sha256Hash,omitempty"`
}

// Validate checks that req is well formed before it gets handed to a backend:
// the query must be present and syntactically valid GraphQL, and if the
// document contains more than one operation, an operation name must select one
// of them.  The backend is still free to reject the request on its own schema.
//
// Validate returns GraphQL errors (so they can go straight into a response) if
// the request is malformed.
func (req *Request) Validate() error {
	if req == nil || req.Query == "" {
		return errors.New("no query string supplied in request")
	}

	doc, gqlErr := parser.ParseQuery(&ast.Source{Input: req.Query})
	if gqlErr != nil {
		return gqlErr
	}

	if len(doc.Operations) > 1 && req.OperationName == "" {
		return errors.Errorf("Operation name must be supplied when query has more " +
			"than 1 operation.")
	}

	if req.OperationName != "" {
		if op := doc.Operations.ForName(req.OperationName); op == nil {
			return errors.Errorf("Supplied operation name %s isn't present in the request.",
				req.OperationName)
		}
	}

	return nil
}
