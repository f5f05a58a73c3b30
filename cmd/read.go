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
)

var readCmd = &cobra.Command{
	Use:   "read ADDR",
	Short: "Read one XDATA register",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := parseNumber(args[0], 16)
		if err != nil {
			return err
		}

		e, err := openEDI()
		if err != nil {
			return err
		}
		defer closeEDI(e)

		data, err := e.Read(uint16(addr))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%04x: %02x\n", addr, data)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(readCmd)
}
