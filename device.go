package hci

import (
	"fmt"
	"strings"
)

// Device is an hci interface reported by the device listing
type Device struct {
	Interface string
	Address   string
	Label     string
}

// ParseDevices parses the output of "hcitool dev":
//
//	Devices:
//		hci0	B8:27:EB:12:34:56
//
// The first token is the header, the rest are interface/address pairs. Any
// other token count yields no devices.
func ParseDevices(output string) []Device {
	tokens := strings.Fields(output)
	if len(tokens) <= 1 || len(tokens)%2 == 0 {
		return nil
	}

	tokens = tokens[1:]
	devices := make([]Device, 0, len(tokens)/2)
	for i := 0; i+1 < len(tokens); i += 2 {
		iface, addr := tokens[i], tokens[i+1]
		devices = append(devices, Device{
			Interface: iface,
			Address:   addr,
			Label:     fmt.Sprintf("hci: %s (%s)", addr, iface),
		})
	}
	return devices
}
