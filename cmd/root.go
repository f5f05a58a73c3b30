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
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mame82/editool/config"
	"github.com/mame82/editool/edi"
	"github.com/mame82/editool/sim"
)

const defaultConfigFile = "editool.yaml"

var (
	cfgFile string
	cfg     = config.Default()

	flagDevice       string
	flagSimulate     bool
	flagLogLevel     string
	flagShowInOut    bool
	flagPollInterval string
	flagPollMax      int
)

var rootCmd = &cobra.Command{
	Use:   "editool",
	Short: "Tool for talking to ENE ECs via the ENE Debug Interface (EDI)",
	Long: `editool reads and writes the XDATA space of ENE embedded controllers and
dumps their internal flash through the EDI SPI port, using an FTDI MPSSE
bridge as SPI master.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "", "config file (default ./"+defaultConfigFile+" if present)")
	pf.StringVarP(&flagDevice, "device", "D", "", "FTDI bridge serial number or index (default first bridge)")
	pf.BoolVar(&flagSimulate, "simulate", false, "talk to a simulated EC instead of hardware")
	pf.StringVar(&flagLogLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	pf.BoolVar(&flagShowInOut, "show-in-out", false, "log every EDI frame (needs debug log level)")
	pf.StringVar(&flagPollInterval, "poll-interval", "", "flash busy poll interval, e.g. 1ms")
	pf.IntVar(&flagPollMax, "poll-max", 0, "give up flash busy poll after this many reads (0 = never)")
}

func loadConfig(cmd *cobra.Command, args []string) (err error) {
	if cfgFile != "" {
		cfg, err = config.Load(cfgFile, false)
	} else {
		cfg, err = config.Load(defaultConfigFile, true)
	}
	if err != nil {
		return err
	}

	pf := cmd.Flags()
	if pf.Changed("device") {
		cfg.Device = flagDevice
	}
	if pf.Changed("simulate") {
		cfg.Simulate = flagSimulate
	}
	if pf.Changed("log-level") {
		cfg.LogLevel = flagLogLevel
	}
	if pf.Changed("show-in-out") {
		cfg.ShowInOut = flagShowInOut
	}
	if pf.Changed("poll-interval") {
		d, err := time.ParseDuration(flagPollInterval)
		if err != nil || d < 0 {
			return errors.Errorf("invalid --poll-interval %q", flagPollInterval)
		}
		cfg.Poll.Interval = d
	}
	if pf.Changed("poll-max") {
		if flagPollMax < 0 {
			return errors.New("--poll-max must not be negative")
		}
		cfg.Poll.MaxAttempts = flagPollMax
	}

	lvl, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	log.SetLevel(lvl)
	return nil
}

func openEDI() (*edi.EDI, error) {
	var t edi.Transport
	if cfg.Simulate {
		log.Info("Using simulated EC")
		t = newSimulatedEC()
	} else {
		ft, err := edi.OpenFTDI(cfg.Device)
		if err != nil {
			return nil, err
		}
		t = ft
	}

	e, err := edi.New(t,
		edi.WithPollPolicy(cfg.PollPolicy()),
		edi.WithShowInOut(cfg.ShowInOut),
	)
	if err != nil {
		t.Close()
		return nil, err
	}
	return e, nil
}

// The simulated EC gets a recognizable flash pattern and a short busy phase.
func newSimulatedEC() *sim.Device {
	flash := make([]byte, edi.FLASH_SIZE)
	for i := range flash {
		flash[i] = byte(i ^ i>>8)
	}
	d := sim.NewDevice(flash)
	d.Latency = 3
	d.BusyPolls = 2
	return d
}

// parseNumber accepts 0x, 0o, 0b prefixed or decimal literals.
func parseNumber(s string, bits int) (uint64, error) {
	v, err := strconv.ParseUint(s, 0, bits)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid number %q", s)
	}
	return v, nil
}

func closeEDI(e *edi.EDI) {
	if err := e.Close(); err != nil {
		log.WithError(err).Warn("Closing transport failed")
	}
}
