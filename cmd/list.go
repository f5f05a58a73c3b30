// Copyright © 2021 The editool Authors
//
// This program is free software; you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation; either version 2 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program; if not, see <http://www.gnu.org/licenses/>.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mame82/editool/edi"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List FTDI USB bridges usable as EDI SPI master",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		bridges, err := edi.ListBridges()
		if err != nil {
			return err
		}
		if len(bridges) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No FTDI bridge found")
			return nil
		}
		for _, b := range bridges {
			mark := " "
			if !b.MPSSE() {
				mark = "!" // no MPSSE engine
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", mark, b)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
