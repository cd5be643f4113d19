/*
 * SPDX-FileCopyrightText: © gqlgate authors <hello@gqlgate.io>
 * SPDX-License-Identifier: Apache-2.0
 */

package schema

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgraph-io/gqlparser/v2/gqlerror"

	"github.com/gqlgate-io/gqlgate/x"
)

func TestGQLWrapf_Error(t *testing.T) {
	tests := map[string]struct {
		err  error
		msg  string
		args []interface{}
		req  string
	}{
		"wrap one error": {err: errors.New("An error occurred"),
			msg: "query failed",
			req: "query failed because An error occurred"},
		"wrap multiple errors": {
			err: GQLWrapf(errors.New("A backend error occurred"), "couldn't execute query"),
			msg: "request failed",
			req: "request failed because couldn't execute query because " +
				"A backend error occurred"},
		"wrap an x.GqlError": {err: x.GqlErrorf("of bad GraphQL input"),
			msg: "couldn't bridge request",
			req: "couldn't bridge request because of bad GraphQL input"},
		"wrap and format": {err: errors.New("an error occurred"),
			msg:  "couldn't generate %s for %s",
			args: []interface{}{"query", "you"},
			req:  "couldn't generate query for you because an error occurred"},
		"wrap a list": {
			err: x.GqlErrorList{
				x.GqlErrorf("an error occurred"),
				x.GqlErrorf("something bad happened"),
			},
			msg: "couldn't do it",
			req: "couldn't do it because an error occurred\n" +
				"couldn't do it because something bad happened"},
	}

	for name, tcase := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tcase.req, GQLWrapf(tcase.err, tcase.msg, tcase.args...).Error())
		})
	}
}

func TestGQLWrapLocationf_Error(t *testing.T) {
	tests := map[string]struct {
		err  error
		msg  string
		args []interface{}
		loc  x.Location
		req  string
	}{
		"wrap one error": {err: errors.New("An error occurred"),
			msg: "query failed",
			loc: x.Location{Line: 1, Column: 2},
			req: "query failed because An error occurred (Locations: [{Line: 1, Column: 2}])"},
		"wrap an x.GqlError with location": {
			err: x.GqlErrorf("of bad GraphQL input").WithLocations(x.Location{Line: 1, Column: 8}),
			msg: "couldn't bridge request",
			loc: x.Location{Line: 1, Column: 2},
			req: "couldn't bridge request because of bad GraphQL input " +
				"(Locations: [{Line: 1, Column: 8}, {Line: 1, Column: 2}])"},
		"wrap a list": {
			err: x.GqlErrorList{
				x.GqlErrorf("an error occurred"),
				x.GqlErrorf("something bad happened").WithLocations(x.Location{Line: 1, Column: 8}),
			},
			msg: "couldn't do it",
			loc: x.Location{Line: 1, Column: 2},
			req: "couldn't do it because an error occurred (Locations: [{Line: 1, Column: 2}])\n" +
				"couldn't do it because something bad happened " +
				"(Locations: [{Line: 1, Column: 8}, {Line: 1, Column: 2}])"},
	}

	for name, tcase := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t,
				tcase.req,
				GQLWrapLocationf(tcase.err, tcase.loc, tcase.msg, tcase.args...).Error())
		})
	}
}

func TestGQLWrapf_nil(t *testing.T) {
	require.Nil(t, GQLWrapf(nil, "nothing"))
}

func TestAsGQLErrors(t *testing.T) {
	tests := map[string]struct {
		err error
		req string
	}{
		"just an error": {err: errors.New("An error occurred"),
			req: `[{"message": "An error occurred"}]`},
		"wrap an error": {
			err: GQLWrapf(errors.New("A backend error occurred"), "couldn't execute query"),
			req: `[{"message": "couldn't execute query because A backend error occurred"}]`},
		"an x.GqlError": {err: x.GqlErrorf("A GraphQL error"),
			req: `[{"message": "A GraphQL error"}]`},
		"an x.GqlError with a location": {err: x.GqlErrorf("A GraphQL error at a location").
			WithLocations(x.Location{Line: 1, Column: 2}),
			req: `[{
				"message": "A GraphQL error at a location",
				"locations": [{"column":2, "line":1}]}]`},
		"an x.GqlErrorList": {
			err: x.GqlErrorList{
				x.GqlErrorf("A GraphQL error"),
				x.GqlErrorf("Another GraphQL error").WithLocations(x.Location{Line: 1, Column: 2})},
			req: `[
				{"message":"A GraphQL error"},
				{"message":"Another GraphQL error", "locations": [{"column":2, "line":1}]}]`},
		"a gql parser error": {
			err: gqlerror.Errorf("A GraphQL error"),
			req: `[{"message": "A GraphQL error"}]`},
		"a gql parser error with a location": {
			err: &gqlerror.Error{
				Message:   "A GraphQL error",
				Locations: []gqlerror.Location{{Line: 1, Column: 2}}},
			req: `[{"message": "A GraphQL error", "locations": [{"column":2, "line":1}]}]`},
		"a list of gql parser errors": {
			err: gqlerror.List{
				gqlerror.Errorf("A GraphQL error"), gqlerror.Errorf("Another GraphQL error")},
			req: `[{"message":"A GraphQL error"}, {"message":"Another GraphQL error"}]`},
	}

	for name, tcase := range tests {
		t.Run(name, func(t *testing.T) {
			gqlErrs, err := json.Marshal(AsGQLErrors(tcase.err))
			require.NoError(t, err)

			assert.JSONEq(t, tcase.req, string(gqlErrs))
		})
	}
}

func TestAsGQLErrors_nil(t *testing.T) {
	require.Nil(t, AsGQLErrors(nil))
}
