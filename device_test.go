package hci

import (
	"testing"
)

func TestParseDevices(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   []Device
	}{
		{
			name:   "one device",
			output: "Devices:\n\thci0\t00:11:22:33:44:55\n",
			want: []Device{
				{Interface: "hci0", Address: "00:11:22:33:44:55", Label: "hci: 00:11:22:33:44:55 (hci0)"},
			},
		},
		{
			name:   "two devices",
			output: "Devices:\n\thci0\tB8:27:EB:12:34:56\n\thci1\t00:1A:7D:DA:71:13\n",
			want: []Device{
				{Interface: "hci0", Address: "B8:27:EB:12:34:56", Label: "hci: B8:27:EB:12:34:56 (hci0)"},
				{Interface: "hci1", Address: "00:1A:7D:DA:71:13", Label: "hci: 00:1A:7D:DA:71:13 (hci1)"},
			},
		},
		{"header only", "Devices:\n", nil},
		{"empty", "", nil},
		{"even token count", "Devices:\n\thci0\n", nil},
		{"unpaired trailing tokens", "Devices:\n\thci0\t00:11:22:33:44:55\thci1\n", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDevices(tt.output)
			if len(got) != len(tt.want) {
				t.Fatalf("ParseDevices() returned %d devices, want %d: %+v", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("device %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}
