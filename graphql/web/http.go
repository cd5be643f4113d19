/*
 * SPDX-FileCopyrightText: © gqlgate authors <hello@gqlgate.io>
 * SPDX-License-Identifier: Apache-2.0
 */

// Package web is the GraphQL-over-HTTP binding of the gateway.  It parses
// GET and POST requests into schema.Request, hands them to a RequestResolver
// and writes the {data, errors} envelope back, streaming subscriptions over
// the graphql-transport-ws protocol.
package web

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/dgryski/go-farm"
	"github.com/golang/glog"
	"github.com/dgraph-io/graphql-transport-ws/graphqlws"
	"github.com/pkg/errors"
	"go.opencensus.io/stats"
	"go.opencensus.io/trace"

	"github.com/gqlgate-io/gqlgate/graphql/api"
	"github.com/gqlgate-io/gqlgate/graphql/resolve"
	"github.com/gqlgate-io/gqlgate/graphql/schema"
	"github.com/gqlgate-io/gqlgate/x"
)

// An IServeGraphQL can serve a GraphQL endpoint (currently only on http).
type IServeGraphQL interface {

	// HTTPHandler returns a http.Handler that serves GraphQL.
	HTTPHandler() http.Handler

	// Resolve processes a GQL Request using the resolver and returns a GQL Response.
	Resolve(ctx context.Context, gqlReq *schema.Request) *schema.Response
}

type graphqlHandler struct {
	resolver *resolve.RequestResolver
	handler  http.Handler
}

// NewServer returns a new IServeGraphQL that serves the given resolver.
func NewServer(resolver *resolve.RequestResolver) IServeGraphQL {
	gh := &graphqlHandler{resolver: resolver}
	gh.handler = recoveryHandler(commonHeaders(gh.Handler()))
	return gh
}

func (gh *graphqlHandler) HTTPHandler() http.Handler {
	return gh.handler
}

func (gh *graphqlHandler) Resolve(ctx context.Context, gqlReq *schema.Request) *schema.Response {
	return gh.resolver.Resolve(ctx, gqlReq)
}

// write chooses between the http response writer and gzip writer
// and sends the envelope response using that.  The handler returns normally
// either way, so HTTP Keep-Alive is preserved on the connection.
func write(w http.ResponseWriter, rr *schema.Response, acceptGzip bool) {
	var out io.Writer = w

	// Headers the backend asked to set on the response, e.g. the upstream's
	// Cache-Control.
	for key := range rr.Header {
		w.Header().Set(key, rr.Header.Get(key))
	}

	// If the receiver accepts gzip, then we would update the writer
	// and send gzipped content instead.
	if acceptGzip {
		w.Header().Set("Content-Encoding", "gzip")
		gzw := gzip.NewWriter(w)
		defer func() {
			x.Ignore(gzw.Close())
		}()
		out = gzw
	}

	if rr.Status != 0 {
		w.WriteHeader(rr.Status)
	}

	if _, err := rr.WriteTo(out); err != nil {
		glog.Error(err)
	}
}

// pollInterval is how often an open subscription re-resolves its query to
// check for changed results.
var pollInterval = time.Second

type graphqlSubscription struct {
	graphqlHandler *graphqlHandler
}

// Subscribe satisfies the graphql-transport-ws service contract.  The gateway
// has no change feed from its backends, so a subscription is implemented by
// re-resolving the query on every tick and pushing the payload only when its
// fingerprint changes.
func (gs *graphqlSubscription) Subscribe(
	ctx context.Context,
	document string,
	operationName string,
	variableValues map[string]interface{}) (<-chan interface{}, error) {

	req := &schema.Request{
		Query:         document,
		OperationName: operationName,
		Variables:     variableValues,
	}

	res := gs.graphqlHandler.Resolve(ctx, req)
	if len(res.Errors) != 0 {
		return nil, res.Errors
	}
	stats.Record(ctx, x.NumSubscriptions.M(1))

	ch := make(chan interface{}, 10)
	ch <- res.Output()
	prevHash := farm.Fingerprint64(res.Data.Bytes())

	go func() {
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				close(ch)
				return
			case <-ticker.C:
				res = gs.graphqlHandler.Resolve(ctx, req)
				if len(res.Errors) != 0 {
					ch <- res.Output()
					close(ch)
					return
				}
				hash := farm.Fingerprint64(res.Data.Bytes())
				if hash == prevHash {
					continue
				}
				prevHash = hash
				ch <- res.Output()
			}
		}
	}()

	return ch, ctx.Err()
}

func (gh *graphqlHandler) Handler() http.Handler {
	return graphqlws.NewHandlerFunc(&graphqlSubscription{
		graphqlHandler: gh,
	}, gh)
}

// ServeHTTP handles a single GraphQL query or mutation and writes a valid
// GraphQL JSON response to w.  Malformed requests get HTTP 400, everything
// that reached the resolver gets HTTP 200 no matter what the error list says.
func (gh *graphqlHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, span := trace.StartSpan(r.Context(), "handler")
	defer span.End()

	if !gh.isValid() {
		panic("graphqlHandler not initialised")
	}

	var res *schema.Response
	gqlReq, err := getRequest(r)
	if err != nil {
		res = schema.MalformedResponse(err)
	} else {
		res = gh.resolver.Resolve(ctx, gqlReq)
	}

	write(w, res, strings.Contains(r.Header.Get("Accept-Encoding"), "gzip"))
}

func (gh *graphqlHandler) isValid() bool {
	return !(gh == nil || gh.resolver == nil)
}

type gzreadCloser struct {
	*gzip.Reader
	io.Closer
}

func (gz gzreadCloser) Close() error {
	if err := gz.Reader.Close(); err != nil {
		return err
	}
	return gz.Closer.Close()
}

// getRequest parses a schema.Request out of r.  GET requests carry query,
// operationName, variables and extensions as URL parameters (the JSON valued
// ones URL-encoded), POST requests carry the same fields as an
// application/json body.
func getRequest(r *http.Request) (*schema.Request, error) {
	gqlReq := &schema.Request{}

	if r.Header.Get("Content-Encoding") == "gzip" {
		zr, err := gzip.NewReader(r.Body)
		if err != nil {
			return nil, errors.Wrap(err, "Unable to parse gzip")
		}
		r.Body = gzreadCloser{zr, r.Body}
	}

	switch r.Method {
	case http.MethodGet:
		query := r.URL.Query()
		gqlReq.Query = query.Get("query")
		gqlReq.OperationName = query.Get("operationName")

		if variables, ok := query["variables"]; ok {
			d := json.NewDecoder(strings.NewReader(variables[0]))
			d.UseNumber()

			if err := d.Decode(&gqlReq.Variables); err != nil {
				return nil, errors.Wrap(err, "Not a valid GraphQL request body")
			}
		}
		if extensions, ok := query["extensions"]; ok {
			d := json.NewDecoder(strings.NewReader(extensions[0]))
			if err := d.Decode(&gqlReq.Extensions); err != nil {
				return nil, errors.Wrap(err, "Not a valid GraphQL request body")
			}
		}
	case http.MethodPost:
		mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil {
			return nil, errors.Wrap(err, "unable to parse media type")
		}

		switch mediaType {
		case "application/json":
			d := json.NewDecoder(r.Body)
			d.UseNumber()
			if err = d.Decode(&gqlReq); err != nil {
				return nil, errors.Wrap(err, "Not a valid GraphQL request body")
			}
			// A body of just "null" decodes cleanly but into no request at all.
			if gqlReq == nil {
				return nil, errors.New("Not a valid GraphQL request body")
			}
		default:
			// https://graphql.org/learn/serving-over-http/#post-request says:
			// "A standard GraphQL POST request should use the application/json
			// content type ..."
			return nil, errors.New(
				"Unrecognised Content-Type.  Please use application/json for GraphQL requests")
		}
	default:
		return nil,
			errors.New("Unrecognised request method.  Please use GET or POST for GraphQL requests")
	}

	gqlReq.Header = r.Header
	return gqlReq, nil
}

func commonHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		x.AddCorsHeaders(w)
		w.Header().Set("Content-Type", "application/json")

		next.ServeHTTP(w, r)
	})
}

func recoveryHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer api.PanicHandler(
			func(err error) {
				rr := schema.ErrorResponse(err)
				write(w, rr, strings.Contains(r.Header.Get("Accept-Encoding"), "gzip"))
			}, r.URL.RawQuery)

		next.ServeHTTP(w, r)
	})
}
