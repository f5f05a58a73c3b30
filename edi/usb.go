package edi

import (
	"fmt"

	"github.com/google/gousb"
	log "github.com/sirupsen/logrus"
)

const (
	VID_FTDI gousb.ID = 0x0403

	PID_FT232R  gousb.ID = 0x6001
	PID_FT2232H gousb.ID = 0x6010
	PID_FT4232H gousb.ID = 0x6011
	PID_FT232H  gousb.ID = 0x6014
	PID_FT_X    gousb.ID = 0x6015
)

// MPSSE capable parts, FT232R and FT-X only do bitbang
var mpssePIDs = map[gousb.ID]string{
	PID_FT2232H: "FT2232H",
	PID_FT4232H: "FT4232H",
	PID_FT232H:  "FT232H",
}

type BridgeInfo struct {
	Bus     int
	Address int
	Vendor  gousb.ID
	Product gousb.ID
	Type    string
	Serial  string
	Desc    string
}

func (b BridgeInfo) String() string {
	return fmt.Sprintf("bus %03d addr %03d %s:%s %-8s serial: %q desc: %q",
		b.Bus, b.Address, b.Vendor, b.Product, b.Type, b.Serial, b.Desc)
}

func (b BridgeInfo) MPSSE() bool {
	_, ok := mpssePIDs[b.Product]
	return ok
}

// ListBridges enumerates FTDI USB-serial bridges on the host. Devices are only
// opened long enough to fetch their string descriptors.
func ListBridges() (bridges []BridgeInfo, err error) {
	ctx := gousb.NewContext()
	defer ctx.Close()

	devs, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return desc.Vendor == VID_FTDI
	})
	defer func() {
		for _, d := range devs {
			d.Close()
		}
	}()
	if err != nil && len(devs) == 0 {
		return nil, err
	}
	if err != nil {
		log.WithError(err).Warn("Some USB devices could not be opened")
	}

	for _, d := range devs {
		info := BridgeInfo{
			Bus:     d.Desc.Bus,
			Address: d.Desc.Address,
			Vendor:  d.Desc.Vendor,
			Product: d.Desc.Product,
			Type:    bridgeType(d.Desc.Product),
		}
		if s, eStr := d.SerialNumber(); eStr == nil {
			info.Serial = s
		}
		if s, eStr := d.Product(); eStr == nil {
			info.Desc = s
		}
		bridges = append(bridges, info)
	}
	return bridges, nil
}

func bridgeType(pid gousb.ID) string {
	if t, ok := mpssePIDs[pid]; ok {
		return t
	}
	switch pid {
	case PID_FT232R:
		return "FT232R"
	case PID_FT_X:
		return "FT-X"
	}
	return "unknown"
}
