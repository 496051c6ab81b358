package hci

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOpcode(t *testing.T) {
	table := DefaultCommandTable()

	tests := []struct {
		in      string
		want    Opcode
		wantErr bool
	}{
		{"0x0303", 0x0303, false},
		{"0X3F4C", 0x3f4c, false},
		{"0409", 0x0409, false},
		{"COMND Reset", 0x0303, false},
		{"Read_BD_ADDR", 0x0409, false},
		{"0x10000", 0, true},
		{"Not_A_Command", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseOpcode(tt.in, table)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePayload(t *testing.T) {
	tests := []struct {
		name    string
		fields  []string
		want    []byte
		wantErr bool
	}{
		{"none", nil, []byte{}, false},
		{"spaced", []string{"01 02 ff"}, []byte{0x01, 0x02, 0xff}, false},
		{"prefixed", []string{"0x01", "0x2"}, []byte{0x01, 0x02}, false},
		{"packed", []string{"0102FF"}, []byte{0x01, 0x02, 0xff}, false},
		{"odd length", []string{"012"}, nil, true},
		{"not hex", []string{"zz"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePayload(tt.fields...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePayloadLimit(t *testing.T) {
	long := make([]string, 256)
	for i := range long {
		long[i] = "aa"
	}
	_, err := ParsePayload(long...)
	assert.Error(t, err)
}

func TestParseCommandLine(t *testing.T) {
	op, payload, err := ParseCommandLine("VSC_Read_RAM 00 10 20 00 04", DefaultCommandTable())
	require.NoError(t, err)
	assert.Equal(t, Opcode(0x3f4d), op)
	assert.Equal(t, []byte{0x00, 0x10, 0x20, 0x00, 0x04}, payload)

	_, _, err = ParseCommandLine("   ", DefaultCommandTable())
	assert.Error(t, err)
}
