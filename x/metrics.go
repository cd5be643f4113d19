/*
 * SPDX-FileCopyrightText: © gqlgate authors <hello@gqlgate.io>
 * SPDX-License-Identifier: Apache-2.0
 */

package x

import (
	"context"
	"net/http"
	"time"

	ocprom "contrib.go.opencensus.io/exporter/prometheus"
	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

var (
	// Cumulative metrics.
	NumQueries = stats.Int64("num_queries_total",
		"Total number of GraphQL requests served", stats.UnitDimensionless)
	NumSubscriptions = stats.Int64("num_subscriptions_total",
		"Total number of GraphQL subscriptions started", stats.UnitDimensionless)
	LatencyMs = stats.Float64("latency",
		"End to end latency of a GraphQL request", stats.UnitMilliseconds)

	// Point-in-time metrics.
	PendingQueries = stats.Int64("pending_queries_total",
		"Number of requests being resolved right now", stats.UnitDimensionless)

	// Tag keys.
	KeyStatus, _ = tag.NewKey("status")
	KeyMethod, _ = tag.NewKey("method")

	// Tag values.
	TagValueStatusOK    = "ok"
	TagValueStatusError = "error"

	defaultLatencyMsDistribution = view.Distribution(
		0, 0.01, 0.05, 0.1, 0.3, 0.6, 0.8, 1, 2, 3, 4, 5, 6, 8, 10, 13, 16,
		20, 25, 30, 40, 50, 65, 80, 100, 130, 160, 200, 250, 300, 400, 500,
		650, 800, 1000, 2000, 5000, 10000, 20000, 50000, 100000)

	allTagKeys = []tag.Key{KeyStatus, KeyMethod}

	allViews = []*view.View{
		{
			Name:        LatencyMs.Name(),
			Measure:     LatencyMs,
			Description: LatencyMs.Description(),
			Aggregation: defaultLatencyMsDistribution,
			TagKeys:     allTagKeys,
		},
		{
			Name:        NumQueries.Name(),
			Measure:     NumQueries,
			Description: NumQueries.Description(),
			Aggregation: view.Count(),
			TagKeys:     allTagKeys,
		},
		{
			Name:        NumSubscriptions.Name(),
			Measure:     NumSubscriptions,
			Description: NumSubscriptions.Description(),
			Aggregation: view.Count(),
			TagKeys:     allTagKeys,
		},

		// Last value aggregations.
		{
			Name:        PendingQueries.Name(),
			Measure:     PendingQueries,
			Description: PendingQueries.Description(),
			Aggregation: view.LastValue(),
			TagKeys:     allTagKeys,
		},
	}
)

func init() {
	CheckfNoTrace(view.Register(allViews...))

	pe, err := ocprom.NewExporter(ocprom.Options{
		Namespace: "gqlgate",
		Registry:  prometheus.NewRegistry(),
		OnError:   func(err error) { glog.Errorf("%v", err) },
	})
	Checkf(err, "Failed to create OpenCensus Prometheus exporter: %v", err)
	view.RegisterExporter(pe)

	http.Handle("/debug/prometheus_metrics", pe)
}

// WithMethod returns a new updated context with the tag KeyMethod set to the given value.
func WithMethod(parent context.Context, method string) context.Context {
	ctx, err := tag.New(parent, tag.Upsert(KeyMethod, method))
	Check(err)
	return ctx
}

// SinceMs returns the time since startTime in milliseconds (as a float).
func SinceMs(startTime time.Time) float64 {
	return float64(time.Since(startTime)) / 1e6
}
