/*
 * SPDX-FileCopyrightText: © gqlgate authors <hello@gqlgate.io>
 * SPDX-License-Identifier: Apache-2.0
 */

package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gqlgate-io/gqlgate/graphql/schema"
)

func TestRemoteExecute(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req schema.Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "{hello}", req.Query)
		require.Equal(t, map[string]interface{}{"a": float64(1)}, req.Variables)

		w.Header().Set("Content-Type", "application/json")
		_, err := w.Write([]byte(`{"data":{"hello":"world"}}`))
		require.NoError(t, err)
	}))
	defer upstream.Close()

	rb := NewRemote(upstream.URL)
	resp := rb.Execute(context.Background(), &schema.Request{
		Query:     "{hello}",
		Variables: map[string]interface{}{"a": float64(1)},
	})
	require.Empty(t, resp.Errors)
	require.JSONEq(t, `{"hello":"world"}`, resp.Data.String())
}

func TestRemoteForwardsClientHeaders(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer s3cret", r.Header.Get("Authorization"))
		require.Equal(t, "abc123", r.Header.Get("X-Request-Id"))
		// The bridge owns the body framing, whatever the client sent.
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "public, max-age=60")
		_, err := w.Write([]byte(`{"data":{"hello":"world"}}`))
		require.NoError(t, err)
	}))
	defer upstream.Close()

	rb := NewRemote(upstream.URL)
	resp := rb.Execute(context.Background(), &schema.Request{
		Query: "{hello}",
		Header: http.Header{
			"Authorization": []string{"Bearer s3cret"},
			"X-Request-Id":  []string{"abc123"},
			"Content-Type":  []string{"text/plain"},
		},
	})
	require.Empty(t, resp.Errors)
	require.Equal(t, "public, max-age=60", resp.Header.Get("Cache-Control"))
}

func TestRemoteExecutionErrorsPassThrough(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, err := w.Write([]byte(
			`{"data":null,"errors":[{"message":"boom","locations":[{"line":1,"column":2}]}]}`))
		require.NoError(t, err)
	}))
	defer upstream.Close()

	rb := NewRemote(upstream.URL)
	resp := rb.Execute(context.Background(), &schema.Request{Query: "{hello}"})

	require.Len(t, resp.Errors, 1)
	require.Equal(t, "boom", resp.Errors[0].Message)
	require.Equal(t, 1, resp.Errors[0].Locations[0].Line)
	require.Equal(t, 2, resp.Errors[0].Locations[0].Column)
	require.JSONEq(t, `null`, resp.Data.String())
}

func TestRemoteUnreachable(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	upstream.Close()

	rb := NewRemote(upstream.URL)
	resp := rb.Execute(context.Background(), &schema.Request{Query: "{hello}"})

	require.Len(t, resp.Errors, 1)
	require.Contains(t, resp.Errors[0].Message, "couldn't reach GraphQL upstream")
	require.Zero(t, resp.Data.Len())
}

func TestRemoteBadEnvelope(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, err := w.Write([]byte("upstream exploded"))
		require.NoError(t, err)
	}))
	defer upstream.Close()

	rb := NewRemote(upstream.URL)
	resp := rb.Execute(context.Background(), &schema.Request{Query: "{hello}"})

	require.Len(t, resp.Errors, 1)
	require.Contains(t, resp.Errors[0].Message,
		"body that isn't a GraphQL response")
}

func TestRemoteHonorsContext(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer upstream.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rb := NewRemote(upstream.URL)
	resp := rb.Execute(ctx, &schema.Request{Query: "{hello}"})
	require.Len(t, resp.Errors, 1)
	require.Contains(t, resp.Errors[0].Message, "context canceled")
}
