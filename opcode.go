package hci

import (
	"fmt"
	"sort"
)

// Opcode identifies an HCI command as hcitool addresses it: the group field
// (ogf) in the high byte and the sub-field (ocf) in the low byte.
type Opcode uint16

// NewOpcode builds an opcode from its group and sub fields
func NewOpcode(group, sub uint8) Opcode {
	return Opcode(uint16(group)<<8 | uint16(sub))
}

// Group returns the group field (ogf)
func (o Opcode) Group() uint8 {
	return uint8(o >> 8)
}

// Sub returns the sub-field (ocf)
func (o Opcode) Sub() uint8 {
	return uint8(o)
}

func (o Opcode) String() string {
	return fmt.Sprintf("0x%04x", uint16(o))
}

// Rekey converts an opcode in the packed HCI encoding (ogf in the top six
// bits) into hcitool's addressing, where the group field occupies the whole
// high byte. The low byte is kept as is.
func Rekey(encoded uint16) Opcode {
	group := uint8(encoded>>8) >> 2
	return NewOpcode(group, uint8(encoded))
}

// CommandTable maps opcodes to display names and back. It is immutable once
// built and safe for concurrent use.
type CommandTable struct {
	byOpcode map[Opcode]string
	byName   map[string]Opcode
}

// NewCommandTable builds a table from names keyed by packed HCI opcodes,
// re-keying every entry with Rekey.
func NewCommandTable(encoded map[uint16]string) *CommandTable {
	t := &CommandTable{
		byOpcode: make(map[Opcode]string, len(encoded)),
		byName:   make(map[string]Opcode, len(encoded)),
	}
	for k, name := range encoded {
		op := Rekey(k)
		t.byOpcode[op] = name
		t.byName[name] = op
	}
	return t
}

// Name returns the display name of op, or a placeholder for unknown opcodes
func (t *CommandTable) Name(op Opcode) string {
	if name, ok := t.byOpcode[op]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN_CMD (%s)", op)
}

// Lookup returns the opcode registered under name
func (t *CommandTable) Lookup(name string) (Opcode, bool) {
	op, ok := t.byName[name]
	return op, ok
}

// CommandEntry is a single row of a CommandTable
type CommandEntry struct {
	Opcode Opcode
	Name   string
}

// Entries returns all entries sorted by opcode
func (t *CommandTable) Entries() []CommandEntry {
	entries := make([]CommandEntry, 0, len(t.byOpcode))
	for op, name := range t.byOpcode {
		entries = append(entries, CommandEntry{Opcode: op, Name: name})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Opcode < entries[j].Opcode })
	return entries
}

// EventTable maps event codes to display names
type EventTable struct {
	byCode map[uint8]string
}

// NewEventTable builds an immutable event table
func NewEventTable(names map[uint8]string) *EventTable {
	t := &EventTable{byCode: make(map[uint8]string, len(names))}
	for code, name := range names {
		t.byCode[code] = name
	}
	return t
}

// Name returns the display name of code, or a placeholder for unknown events
func (t *EventTable) Name(code uint8) string {
	if name, ok := t.byCode[code]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN_EVENT (0x%02x)", code)
}

// EventEntry is a single row of an EventTable
type EventEntry struct {
	Code uint8
	Name string
}

// Entries returns all entries sorted by event code
func (t *EventTable) Entries() []EventEntry {
	entries := make([]EventEntry, 0, len(t.byCode))
	for code, name := range t.byCode {
		entries = append(entries, EventEntry{Code: code, Name: name})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Code < entries[j].Code })
	return entries
}
