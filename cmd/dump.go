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
	"io/ioutil"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mame82/editool/edi"
)

var (
	dumpOutput      string
	dumpFlashOutput string
)

// parseRange reads optional START and END arguments.
func parseRange(args []string, defEnd uint64, bits int) (start, end uint32, err error) {
	s, e := uint64(0), defEnd
	if len(args) > 0 {
		if s, err = parseNumber(args[0], bits); err != nil {
			return
		}
	}
	if len(args) > 1 {
		// END may be one past the last address
		if e, err = parseNumber(args[1], bits+1); err != nil {
			return
		}
		if e > 1<<uint(bits) {
			err = errors.Wrapf(edi.ErrAddressRange, "end %#x", e)
			return
		}
	}
	if e < s {
		err = errors.Wrapf(edi.ErrAddressRange, "end %#x before start %#x", e, s)
		return
	}
	return uint32(s), uint32(e), nil
}

func runDump(cmd *cobra.Command, args []string, flash bool, output string) error {
	defEnd, bits := uint64(edi.XDATA_SIZE), 16
	if flash {
		defEnd, bits = edi.FLASH_SIZE, 24
	}
	start, end, err := parseRange(args, defEnd, bits)
	if err != nil {
		return err
	}

	e, err := openEDI()
	if err != nil {
		return err
	}
	defer closeEDI(e)

	read := e.XDATAReader()
	if flash {
		read = e.FlashReader()
	}

	if output == "" {
		return edi.Dump(cmd.OutOrStdout(), read, start, end)
	}

	data, err := edi.ReadRange(read, start, end)
	if err != nil {
		return err
	}
	if err := ioutil.WriteFile(output, data, 0644); err != nil {
		return err
	}
	log.Infof("dumped %d bytes from %#x to '%s'", len(data), start, output)
	return nil
}

var dumpCmd = &cobra.Command{
	Use:   "dump [START [END]]",
	Short: "Dump XDATA (default 0x0000-0xffff)",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDump(cmd, args, false, dumpOutput)
	},
}

var dumpFlashCmd = &cobra.Command{
	Use:   "dumpflash [START [END]]",
	Short: "Dump the EC's internal flash (default first 128KiB)",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDump(cmd, args, true, dumpFlashOutput)
	},
}

func init() {
	dumpCmd.Flags().StringVarP(&dumpOutput, "output", "o", "", "write raw bytes to file instead of printing a hex dump")
	dumpFlashCmd.Flags().StringVarP(&dumpFlashOutput, "output", "o", "", "write raw bytes to file instead of printing a hex dump")
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(dumpFlashCmd)
}
