/*
 * SPDX-FileCopyrightText: © gqlgate authors <hello@gqlgate.io>
 * SPDX-License-Identifier: Apache-2.0
 */

package x

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// SubCommand ties a cobra command to the viper instance that holds its
// configuration.  Each subcommand gets its own viper so that flags, env vars
// with EnvPrefix and the optional config file all resolve per command.
type SubCommand struct {
	Cmd  *cobra.Command
	Conf *viper.Viper

	EnvPrefix string
}

// GetStringP returns the value of name if set, then of its shorthand, then def.
func (s SubCommand) GetStringP(name, shorthand, def string) string {
	if ok := s.Conf.IsSet(name); ok {
		return s.Conf.GetString(name)
	}
	if ok := s.Conf.IsSet(shorthand); ok {
		return s.Conf.GetString(shorthand)
	}
	return def
}
