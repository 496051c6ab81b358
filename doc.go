// Package hci sends HCI commands to a Bluetooth controller through hcitool
// and recovers the controller when it stops responding.
//
// Every command runs under a hard timeout. A command that does not answer in
// time is treated as a controller crash: the transport service (hciuart on a
// Raspberry Pi) is restarted after a settle delay and, optionally, the device
// listing is checked to confirm that the controller came back.
//
// # Basic Usage
//
//	ctrl, err := hci.New(
//	    hci.WithInterface("hci0"),
//	    hci.WithLogger(logger),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// HCI_Read_BD_ADDR: ogf 0x04, ocf 0x09
//	payload, err := ctrl.SendCommand(ctx, hci.NewOpcode(0x04, 0x09), nil)
//
// # Opcodes and Names
//
// Opcodes use hcitool addressing: the group field (ogf) is the high byte and
// the sub-field (ocf) the low byte. Name tables keyed by packed HCI opcodes
// are converted once with Rekey:
//
//	table := hci.DefaultCommandTable()
//	op, _ := table.Lookup("COMND Reset") // 0x0303
//
// # Recovery
//
// Configure the restart behaviour with options:
//
//	ctrl, err := hci.New(
//	    hci.WithInterface("hci0"),
//	    hci.WithServiceName("hciuart.service"),
//	    hci.WithRestartDelay(5*time.Second),
//	    hci.WithSanityCheck(true, 8*time.Second),
//	)
//
// After a restart the failed command is not retried; SendCommand returns
// ErrControllerCrashed and the caller decides whether to reissue it.
//
// # Error Handling
//
// Recoverable failures are returned as wrapped sentinel errors:
//
//	var (
//	    ErrNoInterface       // no interface configured
//	    ErrInvalidResponse   // tool output lacks command or event section
//	    ErrControllerCrashed // timeout, transport restarted
//	    // ... and more
//	)
//
// Two errors are fatal and should end the process at its outermost boundary:
// ErrProtocolCorruption (declared length does not match the payload) and
// ErrRecoveryFailed (the device did not reattach). Use IsFatal to test for
// both. The package itself never exits the process.
//
// # Platform Support
//
// Linux only. Requires hcitool (bluez) and systemctl; restarting the service
// uses sudo unless the process runs as root.
package hci
