/*
 * SPDX-FileCopyrightText: © gqlgate authors <hello@gqlgate.io>
 * SPDX-License-Identifier: Apache-2.0
 */

package main

import (
	"github.com/gqlgate-io/gqlgate/gqlgate/cmd"
)

func main() {
	cmd.Execute()
}
