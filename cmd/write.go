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
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var writeCmd = &cobra.Command{
	Use:   "write ADDR DATA",
	Short: "Write one XDATA register",
	Long:  "Write one XDATA register. EDI has no write acknowledge, read the register back if the result matters.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := parseNumber(args[0], 16)
		if err != nil {
			return err
		}
		data, err := parseNumber(args[1], 8)
		if err != nil {
			return err
		}

		e, err := openEDI()
		if err != nil {
			return err
		}
		defer closeEDI(e)

		if err := e.Write(uint16(addr), byte(data)); err != nil {
			return err
		}
		log.Debugf("wrote %#02x to %#04x", data, addr)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(writeCmd)
}
