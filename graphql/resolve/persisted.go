/*
 * SPDX-FileCopyrightText: © gqlgate authors <hello@gqlgate.io>
 * SPDX-License-Identifier: Apache-2.0
 */

package resolve

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/pkg/errors"

	"github.com/gqlgate-io/gqlgate/graphql/schema"
	"github.com/gqlgate-io/gqlgate/x"
)

// Sizing for the persisted query cache.  Costs are query text lengths, so
// maxCost bounds the resident bytes of stored queries.
const (
	pqNumCounters = 1e5
	pqMaxCost     = 32 << 20
	pqBufferItems = 64
)

type queryCache struct {
	cache *ristretto.Cache[string, string]
}

func newQueryCache() *queryCache {
	cache, err := ristretto.NewCache(&ristretto.Config[string, string]{
		NumCounters: pqNumCounters,
		MaxCost:     pqMaxCost,
		BufferItems: pqBufferItems,
	})
	x.Checkf(err, "Failed to init the persisted query cache")
	return &queryCache{cache: cache}
}

// resolvePersistedQuery fills in req.Query from the cache when the client only
// sent a sha256 hash, and stores the query when the client sent both.  A
// request without the persistedQuery extension passes through untouched.
//
// The error strings follow the Apollo convention so that client libraries
// recognise them and fall back to sending full queries.
func (rr *RequestResolver) resolvePersistedQuery(req *schema.Request) error {
	sha := req.Extensions.PersistedQuery.Sha256Hash
	if sha == "" {
		return nil
	}
	if rr.queries == nil {
		return errors.New("PersistedQueryNotSupported")
	}

	if req.Query == "" {
		query, ok := rr.queries.cache.Get(sha)
		if !ok {
			return errors.New("PersistedQueryNotFound")
		}
		req.Query = query
		return nil
	}

	hash := sha256.Sum256([]byte(req.Query))
	if hex.EncodeToString(hash[:]) != sha {
		return errors.New("provided sha does not match query")
	}

	rr.queries.cache.Set(sha, req.Query, int64(len(req.Query)))
	// Sets are buffered, wait so that a follow-up hash-only request from the
	// same client can't miss.
	rr.queries.cache.Wait()
	return nil
}
