/*
 * SPDX-FileCopyrightText: © gqlgate authors <hello@gqlgate.io>
 * SPDX-License-Identifier: Apache-2.0
 */

package backend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gqlgate-io/gqlgate/graphql/schema"
	"github.com/gqlgate-io/gqlgate/x"
)

const greetSchema = `
	schema {
		query: Query
	}
	type Query {
		hello(name: String!): String!
	}
`

type greetResolver struct{}

func (*greetResolver) Hello(args struct{ Name string }) string {
	return "Hello " + args.Name
}

func TestGraphGophersExecute(t *testing.T) {
	gg, err := NewGraphGophers(greetSchema, &greetResolver{})
	require.NoError(t, err)

	resp := gg.Execute(context.Background(), &schema.Request{
		Query: `{hello(name: "world")}`,
	})
	require.Empty(t, resp.Errors)
	require.JSONEq(t, `{"hello":"Hello world"}`, resp.Data.String())
}

func TestGraphGophersExecuteWithVariables(t *testing.T) {
	gg, err := NewGraphGophers(greetSchema, &greetResolver{})
	require.NoError(t, err)

	resp := gg.Execute(context.Background(), &schema.Request{
		Query:         `query greet($name: String!) { hello(name: $name) }`,
		OperationName: "greet",
		Variables:     map[string]interface{}{"name": "gqlgate"},
	})
	require.Empty(t, resp.Errors)
	require.JSONEq(t, `{"hello":"Hello gqlgate"}`, resp.Data.String())
}

func TestGraphGophersExecutionError(t *testing.T) {
	gg, err := NewGraphGophers(greetSchema, &greetResolver{})
	require.NoError(t, err)

	resp := gg.Execute(context.Background(), &schema.Request{
		Query: `{goodbye}`,
	})
	require.NotEmpty(t, resp.Errors)
	require.Contains(t, resp.Errors[0].Message, "goodbye")
}

func TestGraphGophersRejectsBadSchema(t *testing.T) {
	_, err := NewGraphGophers(`type Query {`, &greetResolver{})
	require.Error(t, err)
}

func TestInfoExecutor(t *testing.T) {
	x.UpdateHealthStatus(true)

	info, err := NewInfo()
	require.NoError(t, err)

	resp := info.Execute(context.Background(), &schema.Request{
		Query: `{health{instance status version}}`,
	})
	require.Empty(t, resp.Errors)
	require.JSONEq(t,
		`{"health":{"instance":"gqlgate","status":"healthy","version":"dev"}}`,
		resp.Data.String())
}
