/*
 * SPDX-FileCopyrightText: © gqlgate authors <hello@gqlgate.io>
 * SPDX-License-Identifier: Apache-2.0
 */

package version

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gqlgate-io/gqlgate/x"
)

// Version is the sub-command invoked when running "gqlgate version".
var Version x.SubCommand

func init() {
	Version.Cmd = &cobra.Command{
		Use:   "version",
		Short: "Prints the gqlgate version details",
		Long:  "Version prints the gqlgate version as reported by the build details.",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Print(x.BuildDetails())
			os.Exit(0)
		},
	}
	Version.EnvPrefix = "GQLGATE_VERSION"
}
