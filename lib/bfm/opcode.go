package bfm

import "sort"

// Opcode is the integer wire value of a token type or a command. Structural
// and argument type codes occupy the low, reserved range; command opcodes
// start at commandBase and are allocated distinctly from those five, per
// the wire format contract.
type Opcode int32

// Structural and argument type codes. Exactly five, reserved below
// commandBase so no command mnemonic can ever collide with them.
const (
	OpGroupBegin Opcode = iota
	OpGroupEnd
	OpInteger
	OpString
	OpData

	commandBase
)

// Command opcodes, one per mnemonic in the glossary's closed vocabulary.
// The set and its order are authoritative; do not add entries beyond what
// the glossary lists, and do not infer additional ones from naming
// conventions.
const (
	OpAttack Opcode = commandBase + iota
	OpArpeggioSpeed
	OpRelease
	OpMute
	OpMuteTicks
	OpVolume
	OpMasterVolume
	OpPanning
	OpPitch
	OpStep
	OpStepTicks
	OpEffect
	OpDutyCycle
	// OpPhaseWrap: the original source spells the underlying enumerator
	// BkIntrPhaseWrap, out of step with its own dominant BKIntr… prefix.
	// The mnemonic itself, "pw", is unaffected; only that symbol name
	// differs in the source this was ported from.
	OpPhaseWrap
	OpInstrument
	OpInstrumentGroup
	OpWaveform
	OpWaveformGroup
	OpGroup
	OpTrackGroup
	OpSequenceVolume
	OpSequencePanning
	OpSequenceArpeggio
	OpSequenceDutyCycle
)

// opcodeEntry pairs a mnemonic with its opcode, the Go analogue of the
// original source's BKTokenDef.
type opcodeEntry struct {
	mnemonic string
	opcode   Opcode
}

var commandTable = []opcodeEntry{
	{"a", OpAttack},
	{"as", OpArpeggioSpeed},
	{"r", OpRelease},
	{"m", OpMute},
	{"mt", OpMuteTicks},
	{"v", OpVolume},
	{"vm", OpMasterVolume},
	{"p", OpPanning},
	{"pt", OpPitch},
	{"s", OpStep},
	{"st", OpStepTicks},
	{"e", OpEffect},
	{"dc", OpDutyCycle},
	{"pw", OpPhaseWrap},
	{"i", OpInstrument},
	{"inst", OpInstrumentGroup},
	{"w", OpWaveform},
	{"wave", OpWaveformGroup},
	{"g", OpGroup},
	{"trck", OpTrackGroup},
	{"sqv", OpSequenceVolume},
	{"sqp", OpSequencePanning},
	{"sqa", OpSequenceArpeggio},
	{"sqd", OpSequenceDutyCycle},
}

// byName and byValue are the two sorted views built once at init, mirroring
// the original source's BKTokenNameTable / BKTokenValueTable, each searched
// with a binary search (bsearch there, sort.Search here).
var (
	byName  []opcodeEntry
	byValue []opcodeEntry
)

func init() {
	byName = make([]opcodeEntry, len(commandTable))
	copy(byName, commandTable)
	sort.Slice(byName, func(i, j int) bool { return byName[i].mnemonic < byName[j].mnemonic })

	byValue = make([]opcodeEntry, len(commandTable))
	copy(byValue, commandTable)
	sort.Slice(byValue, func(i, j int) bool { return byValue[i].opcode < byValue[j].opcode })
}

// LookupByName resolves a mnemonic to its opcode, ok is false if the
// mnemonic is not in the table.
func LookupByName(mnemonic string) (Opcode, bool) {
	i := sort.Search(len(byName), func(i int) bool { return byName[i].mnemonic >= mnemonic })
	if i < len(byName) && byName[i].mnemonic == mnemonic {
		return byName[i].opcode, true
	}
	return 0, false
}

// LookupByValue resolves an opcode to its mnemonic, ok is false if the
// opcode is not a known command (including if it's a structural/argument
// type code).
func LookupByValue(opcode Opcode) (string, bool) {
	i := sort.Search(len(byValue), func(i int) bool { return byValue[i].opcode >= opcode })
	if i < len(byValue) && byValue[i].opcode == opcode {
		return byValue[i].mnemonic, true
	}
	return "", false
}
