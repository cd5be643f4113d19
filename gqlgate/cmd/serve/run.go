/*
 * SPDX-FileCopyrightText: © gqlgate authors <hello@gqlgate.io>
 * SPDX-License-Identifier: Apache-2.0
 */

// Package serve implements the "gqlgate serve" sub-command: the HTTP server
// that exposes the GraphQL endpoint and the operational endpoints around it.
package serve

import (
	"context"
	"fmt"
	"net"
	"net/http"
	_ "net/http/pprof" // http profiler
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
	otrace "go.opencensus.io/trace"
	"go.opencensus.io/zpages"

	"github.com/gqlgate-io/gqlgate/backend"
	"github.com/gqlgate-io/gqlgate/graphql/resolve"
	"github.com/gqlgate-io/gqlgate/graphql/schema"
	"github.com/gqlgate-io/gqlgate/graphql/web"
	"github.com/gqlgate-io/gqlgate/x"
)

// Serve is the sub-command invoked when running "gqlgate serve".
var Serve x.SubCommand

var bindall bool

func init() {
	Serve.Cmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the gqlgate GraphQL gateway",
		Long: `
Runs an HTTP server with a GraphQL endpoint.  Requests are parsed and
validated by the gateway, then bridged to the configured execution backend:
an upstream GraphQL HTTP service when --upstream is set, or the built-in
health schema when it isn't.
`,
		Run: func(cmd *cobra.Command, args []string) {
			run()
		},
	}
	Serve.EnvPrefix = "GQLGATE_SERVE"

	// If you change any of the flags below, you must also update run() to call
	// Serve.Conf.Get with the flag name so that the values are picked up by
	// Cobra/Viper's various config inputs (e.g, config file, env vars, cli
	// flags, etc.)
	flag := Serve.Cmd.Flags()
	flag.IntP("port", "p", 8080, "Port to run the HTTP server on.")
	flag.StringP("graphql", "g", "/graphql", "Path the GraphQL endpoint is served on.")
	flag.String("upstream", "",
		"URL of the upstream GraphQL endpoint to bridge requests to. When empty, the"+
			" built-in health schema is served instead.")
	flag.Bool("persisted_queries", true,
		"Enable the automatic persisted queries convention, letting clients send a"+
			" sha256 hash in place of repeated query text.")

	// OpenCensus flags.
	flag.Float64("trace", 0.01, "The ratio of requests to trace.")
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	x.AddCorsHeaders(w)
	if err := x.HealthCheck(); err == nil {
		w.WriteHeader(http.StatusOK)
		x.Check2(w.Write([]byte("OK")))
	} else {
		x.SetHttpStatus(w, http.StatusServiceUnavailable, err.Error())
	}
}

// probeGraphQL resolves a trivial query through the whole bridge, so it
// reports "up" only when the backend actually answers.
func probeGraphQL(server web.IServeGraphQL) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		x.AddCorsHeaders(w)
		w.Header().Set("Content-Type", "application/json")

		res := server.Resolve(r.Context(), &schema.Request{Query: "{__typename}"})
		if len(res.Errors) != 0 {
			w.WriteHeader(http.StatusServiceUnavailable)
			x.SetStatus(w, x.ErrorServiceDown, res.Errors.Error())
			return
		}
		x.Reply(w, map[string]string{"status": "up"})
	}
}

func newExecutor() backend.Executor {
	if upstream := Serve.Conf.GetString("upstream"); upstream != "" {
		glog.Infof("Bridging GraphQL requests to %s", upstream)
		return backend.NewRemote(upstream)
	}

	glog.Infoln("No upstream configured, serving the built-in health schema.")
	info, err := backend.NewInfo()
	x.Checkf(err, "Failed to parse the built-in schema")
	return info
}

func setupServer(l net.Listener) {
	traceRatio := Serve.Conf.GetFloat64("trace")
	otrace.ApplyConfig(otrace.Config{
		DefaultSampler: otrace.ProbabilitySampler(traceRatio)})

	var opts []resolve.Option
	if Serve.Conf.GetBool("persisted_queries") {
		opts = append(opts, resolve.WithPersistedQueries())
	}
	resolver := resolve.New(newExecutor(), opts...)
	mainServer := web.NewServer(resolver)

	endpoint := Serve.GetStringP("graphql", "g", "/graphql")
	http.Handle(endpoint, mainServer.HTTPHandler())
	http.HandleFunc("/health", healthCheck)
	http.HandleFunc("/probe/graphql", probeGraphQL(mainServer))

	// Add OpenCensus z-pages.
	zpages.Handle(http.DefaultServeMux, "/z")

	srv := &http.Server{
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 600 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-shutdownCh
		glog.Infoln("Shutting down...")
		x.UpdateHealthStatus(false)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			glog.Errorf("HTTP shutdown err: %v", err)
		}
	}()

	x.UpdateHealthStatus(true)
	glog.Infoln("HTTP server started.  Serving GraphQL on", endpoint)

	err := srv.Serve(l)
	glog.Errorf("Stopped taking more http(s) requests. Err: %v", err)
}

func run() {
	bindall = Serve.Conf.GetBool("bindall")
	laddr := "localhost"
	if bindall {
		laddr = "0.0.0.0"
	}

	port := Serve.Conf.GetInt("port")
	l, err := net.Listen("tcp", fmt.Sprintf("%s:%d", laddr, port))
	if err != nil {
		glog.Fatalf("Failed to listen on port %d: %v", port, err)
	}

	setupServer(l)
	glog.Infoln("Server shutdown. Bye!")
}
