package hci

// Command names keyed by packed HCI opcode (ogf << 10 | ocf)
var commandNames = map[uint16]string{
	// Link control (ogf 0x01)
	0x0401: "COMND Inquiry",
	0x0402: "COMND Inquiry_Cancel",
	0x0405: "COMND Create_Connection",
	0x0406: "COMND Disconnect",
	0x0419: "COMND Remote_Name_Request",

	// Controller & baseband (ogf 0x03)
	0x0c01: "COMND Set_Event_Mask",
	0x0c03: "COMND Reset",
	0x0c13: "COMND Write_Local_Name",
	0x0c14: "COMND Read_Local_Name",
	0x0c1a: "COMND Write_Scan_Enable",
	0x0c23: "COMND Read_Class_of_Device",
	0x0c24: "COMND Write_Class_of_Device",

	// Informational (ogf 0x04)
	0x1001: "COMND Read_Local_Version_Information",
	0x1002: "COMND Read_Local_Supported_Commands",
	0x1003: "COMND Read_Local_Supported_Features",
	0x1005: "COMND Read_Buffer_Size",
	0x1009: "COMND Read_BD_ADDR",

	// Status (ogf 0x05)
	0x1405: "COMND Read_RSSI",

	// LE controller (ogf 0x08)
	0x2001: "COMND LE_Set_Event_Mask",
	0x2002: "COMND LE_Read_Buffer_Size",
	0x2006: "COMND LE_Set_Advertising_Parameters",
	0x200a: "COMND LE_Set_Advertising_Enable",
	0x200b: "COMND LE_Set_Scan_Parameters",
	0x200c: "COMND LE_Set_Scan_Enable",

	// Broadcom vendor specific (ogf 0x3f)
	0xfc18: "COMND VSC_Update_UART_Baud_Rate",
	0xfc2e: "COMND VSC_Download_Minidriver",
	0xfc4c: "COMND VSC_Write_RAM",
	0xfc4d: "COMND VSC_Read_RAM",
	0xfc4e: "COMND VSC_Launch_RAM",
	0xfc79: "COMND VSC_Read_Verbose_Config_Version_Info",
}

var eventNames = map[uint8]string{
	0x01: "EVENT Inquiry_Complete",
	0x02: "EVENT Inquiry_Result",
	0x03: "EVENT Connection_Complete",
	0x04: "EVENT Connection_Request",
	0x05: "EVENT Disconnection_Complete",
	0x07: "EVENT Remote_Name_Request_Complete",
	0x0e: "EVENT Command_Complete",
	0x0f: "EVENT Command_Status",
	0x10: "EVENT Hardware_Error",
	0x13: "EVENT Number_Of_Completed_Packets",
	0x1a: "EVENT Data_Buffer_Overflow",
	0x3e: "EVENT LE_Meta_Event",
	0xff: "EVENT Vendor_Specific",
}

// DefaultCommandTable returns the built-in command name table, re-keyed for
// hcitool addressing.
func DefaultCommandTable() *CommandTable {
	return NewCommandTable(commandNames)
}

// DefaultEventTable returns the built-in event name table
func DefaultEventTable() *EventTable {
	return NewEventTable(eventNames)
}
