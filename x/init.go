/*
 * SPDX-FileCopyrightText: © gqlgate authors <hello@gqlgate.io>
 * SPDX-License-Identifier: Apache-2.0
 */

package x

import (
	"fmt"
	"runtime"
)

// These variables are set using -ldflags.
var (
	gatewayVersion = "dev"
	gitBranch      string
	lastCommitSHA  string
	lastCommitTime string
)

// Version returns the version string set at build time.
func Version() string {
	return gatewayVersion
}

// BuildDetails returns a structured version message for the version
// subcommand and the root command help text.
func BuildDetails() string {
	return fmt.Sprintf(`
gqlgate version  : %v
Commit SHA-1     : %v
Commit timestamp : %v
Branch           : %v
Go version       : %v
`,
		gatewayVersion, lastCommitSHA, lastCommitTime, gitBranch, runtime.Version())
}
