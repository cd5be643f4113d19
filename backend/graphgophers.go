/*
 * SPDX-FileCopyrightText: © gqlgate authors <hello@gqlgate.io>
 * SPDX-License-Identifier: Apache-2.0
 */

package backend

import (
	"context"

	graphql "github.com/graph-gophers/graphql-go"
	gqlerrors "github.com/graph-gophers/graphql-go/errors"

	"github.com/gqlgate-io/gqlgate/graphql/schema"
	"github.com/gqlgate-io/gqlgate/x"
)

// GraphGophers executes GraphQL requests in process against a parsed schema
// and its Go resolver.  It's how the gateway runs when embedded in another
// program, and what serves the built-in schema when no upstream is configured.
type GraphGophers struct {
	schema *graphql.Schema
}

// NewGraphGophers parses schemaString and binds it to resolver.  The resolver
// follows graphql-go conventions: one method (or field, see
// graphql.UseFieldResolvers) per schema field.
func NewGraphGophers(schemaString string, resolver interface{},
	opts ...graphql.SchemaOpt) (*GraphGophers, error) {

	s, err := graphql.ParseSchema(schemaString, resolver, opts...)
	if err != nil {
		return nil, err
	}
	return &GraphGophers{schema: s}, nil
}

// Execute runs req against the schema.  Execution errors land in the response
// error list exactly as the engine produced them.
func (gg *GraphGophers) Execute(ctx context.Context, req *schema.Request) *schema.Response {
	r := gg.schema.Exec(ctx, req.Query, req.OperationName, req.Variables)

	resp := &schema.Response{
		Errors: asGqlErrors(r.Errors),
	}
	resp.AddData(r.Data)
	return resp
}

func asGqlErrors(errs []*gqlerrors.QueryError) x.GqlErrorList {
	var result x.GqlErrorList
	for _, err := range errs {
		gqlErr := &x.GqlError{
			Message:    err.Message,
			Path:       err.Path,
			Extensions: err.Extensions,
		}
		for _, loc := range err.Locations {
			gqlErr.Locations = append(gqlErr.Locations,
				x.Location{Line: loc.Line, Column: loc.Column})
		}
		result = append(result, gqlErr)
	}
	return result
}
