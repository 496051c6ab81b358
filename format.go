package hci

import (
	"fmt"
	"strings"
)

// Invocation is a single external tool call
type Invocation struct {
	Argv []string
}

// String returns the command line as it would be typed in a shell
func (inv Invocation) String() string {
	return strings.Join(inv.Argv, " ")
}

// FormatCommand renders an HCI command as an hcitool invocation:
//
//	hcitool -i hci0 cmd 0x3 0x3 0x01 0x02
//
// The group and sub fields are unpadded hex literals, payload bytes are
// two-digit hex literals in their original order.
func FormatCommand(tool, iface string, op Opcode, payload []byte) (Invocation, error) {
	if iface == "" {
		return Invocation{}, ErrNoInterface
	}

	argv := make([]string, 0, 6+len(payload))
	argv = append(argv, tool, "-i", iface, "cmd",
		fmt.Sprintf("0x%x", op.Group()),
		fmt.Sprintf("0x%x", op.Sub()),
	)
	for _, b := range payload {
		argv = append(argv, fmt.Sprintf("0x%02x", b))
	}

	return Invocation{Argv: argv}, nil
}

// DeviceListInvocation renders the device enumeration call
func DeviceListInvocation(tool string) Invocation {
	return Invocation{Argv: []string{tool, "dev"}}
}
