/*
 * SPDX-FileCopyrightText: © gqlgate authors <hello@gqlgate.io>
 * SPDX-License-Identifier: Apache-2.0
 */

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/golang/glog"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/pkg/errors"

	"github.com/gqlgate-io/gqlgate/graphql/schema"
	"github.com/gqlgate-io/gqlgate/x"
)

// Remote forwards GraphQL requests to an upstream GraphQL HTTP endpoint and
// relays the envelope it answers with.  It performs no retries and no result
// caching: execution semantics belong entirely to the upstream.
type Remote struct {
	url    string
	client *http.Client
}

// NewRemote returns a Remote executor that talks to the GraphQL endpoint at url.
func NewRemote(url string) *Remote {
	return &Remote{
		url:    url,
		client: cleanhttp.DefaultPooledClient(),
	}
}

// Headers the gateway owns on the upstream request.  Everything else the
// client sent (Authorization, cookies, tracing headers) is forwarded as is,
// so upstream auth keeps working through the bridge.
var ownedHeaders = map[string]bool{
	"Accept":          true,
	"Accept-Encoding": true,
	"Connection":      true,
	"Content-Length":  true,
	"Content-Type":    true,
	"Keep-Alive":      true,
	"Upgrade":         true,
}

// Execute posts req to the upstream endpoint and decodes the GraphQL envelope
// it returns.  Transport failures become a single GraphQL error; errors inside
// a decoded envelope pass through verbatim.
func (rb *Remote) Execute(ctx context.Context, req *schema.Request) *schema.Response {
	body, err := json.Marshal(req)
	if err != nil {
		return schema.ErrorResponse(schema.GQLWrapf(err, "couldn't marshal upstream request"))
	}

	hr, err := http.NewRequestWithContext(ctx, http.MethodPost, rb.url, bytes.NewReader(body))
	if err != nil {
		return schema.ErrorResponse(schema.GQLWrapf(err, "couldn't build upstream request"))
	}
	for h, vals := range req.Header {
		if ownedHeaders[http.CanonicalHeaderKey(h)] {
			continue
		}
		for _, v := range vals {
			hr.Header.Add(h, v)
		}
	}
	hr.Header.Set("Content-Type", "application/json")
	hr.Header.Set("Accept", "application/json")

	res, err := rb.client.Do(hr)
	if err != nil {
		glog.Errorf("Upstream %s unreachable: %v", rb.url, err)
		return schema.ErrorResponse(schema.GQLWrapf(err, "couldn't reach GraphQL upstream"))
	}
	defer func() {
		x.Ignore(res.Body.Close())
	}()

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors x.GqlErrorList  `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return schema.ErrorResponse(schema.GQLWrapf(err,
			"upstream answered HTTP %d with a body that isn't a GraphQL response",
			res.StatusCode))
	}

	if len(envelope.Data) == 0 && len(envelope.Errors) == 0 {
		return schema.ErrorResponse(
			errors.Errorf("upstream answered HTTP %d with an empty GraphQL response",
				res.StatusCode))
	}

	resp := &schema.Response{Errors: envelope.Errors}
	// The upstream's caching policy is the only response header relayed back
	// to the client.
	if cc := res.Header.Get("Cache-Control"); cc != "" {
		resp.Header = http.Header{"Cache-Control": []string{cc}}
	}
	resp.AddData(envelope.Data)
	return resp
}
