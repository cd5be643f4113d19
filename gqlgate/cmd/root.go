/*
 * SPDX-FileCopyrightText: © gqlgate authors <hello@gqlgate.io>
 * SPDX-License-Identifier: Apache-2.0
 */

package cmd

import (
	goflag "flag"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/gqlgate-io/gqlgate/gqlgate/cmd/serve"
	"github.com/gqlgate-io/gqlgate/gqlgate/cmd/version"
	"github.com/gqlgate-io/gqlgate/x"
)

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:   "gqlgate",
	Short: "gqlgate: GraphQL-over-HTTP gateway",
	Long: `
gqlgate is a gateway that serves a GraphQL endpoint over HTTP and bridges
requests to a query execution backend.  It owns request parsing, validation
and the response envelope, and nothing about execution itself.
` + x.BuildDetails(),
	PersistentPreRunE: cobra.NoArgs,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.  This is called by main.main() and only needs to happen once.
func Execute() {
	goflag.Parse()
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

var rootConf = viper.New()

func bindAll(subcommands ...*x.SubCommand) {
	for _, sc := range subcommands {
		RootCmd.AddCommand(sc.Cmd)
		sc.Conf = viper.New()
		x.Check(sc.Conf.BindPFlags(sc.Cmd.Flags()))
		x.Check(sc.Conf.BindPFlags(RootCmd.PersistentFlags()))
		sc.Conf.AutomaticEnv()
		sc.Conf.SetEnvPrefix(sc.EnvPrefix)
	}
}

func init() {
	RootCmd.PersistentFlags().String("config", "",
		"Configuration file. Takes precedence over default values, but is "+
			"overridden to values set with environment variables and flags.")
	RootCmd.PersistentFlags().Bool("bindall", true,
		"Use 0.0.0.0 instead of localhost to bind to all addresses on local machine.")
	x.Check(rootConf.BindPFlags(RootCmd.PersistentFlags()))

	// glog runs on the standard flag package, cobra on pflag; bridge them so
	// -v and friends keep working.
	flag.CommandLine.AddGoFlagSet(goflag.CommandLine)

	subcommands := []*x.SubCommand{&serve.Serve, &version.Version}
	bindAll(subcommands...)

	cobra.OnInitialize(func() {
		cfg := rootConf.GetString("config")
		if cfg == "" {
			return
		}
		for _, sc := range subcommands {
			sc.Conf.SetConfigFile(cfg)
			x.Check(x.Wrapf(sc.Conf.ReadInConfig(), "reading config"))
		}
	})
}
