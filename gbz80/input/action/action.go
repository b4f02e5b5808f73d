package action

// Action represents input actions that can be performed in the emulator
type Action int

const (
	// Game Boy hardware controls
	GBButtonA Action = iota
	GBButtonB
	GBButtonStart
	GBButtonSelect
	GBDPadUp
	GBDPadDown
	GBDPadLeft
	GBDPadRight

	// Emulator features
	EmulatorDebugToggle
	EmulatorDebugUpdate
	EmulatorSnapshot
	EmulatorPauseToggle
	EmulatorStepFrame
	EmulatorStepInstruction
	EmulatorTestPatternCycle
	EmulatorQuit

	// Audio debug controls (channel soloing/muting for the APU)
	AudioToggleChannel1
	AudioToggleChannel2
	AudioToggleChannel3
	AudioToggleChannel4
	AudioSoloChannel1
	AudioSoloChannel2
	AudioSoloChannel3
	AudioSoloChannel4
	AudioShowStatus

	// Debug/logging controls
	DebugLogLevelIncrease
	DebugLogLevelDecrease
)

// Category groups actions by the subsystem that consumes them, letting a
// backend decide whether a key event drives the joypad directly (and thus
// needs debouncing/hold-tracking) or is a one-shot UI command instead.
type Category int

const (
	CategoryGameInput Category = iota
	CategoryEmulator
	CategoryAudio
	CategoryDebug
)

// Info describes an action for logging and UI purposes.
type Info struct {
	Category    Category
	Description string
}

var infoTable = map[Action]Info{
	GBButtonA:      {CategoryGameInput, "Game Boy button A"},
	GBButtonB:      {CategoryGameInput, "Game Boy button B"},
	GBButtonStart:  {CategoryGameInput, "Game Boy button Start"},
	GBButtonSelect: {CategoryGameInput, "Game Boy button Select"},
	GBDPadUp:       {CategoryGameInput, "Game Boy D-pad Up"},
	GBDPadDown:     {CategoryGameInput, "Game Boy D-pad Down"},
	GBDPadLeft:     {CategoryGameInput, "Game Boy D-pad Left"},
	GBDPadRight:    {CategoryGameInput, "Game Boy D-pad Right"},

	EmulatorDebugToggle:      {CategoryEmulator, "Toggle debug overlay"},
	EmulatorDebugUpdate:      {CategoryEmulator, "Force debug/screen refresh"},
	EmulatorSnapshot:         {CategoryEmulator, "Save a frame snapshot"},
	EmulatorPauseToggle:      {CategoryEmulator, "Toggle pause"},
	EmulatorStepFrame:        {CategoryEmulator, "Step one frame"},
	EmulatorStepInstruction:  {CategoryEmulator, "Step one instruction"},
	EmulatorTestPatternCycle: {CategoryEmulator, "Cycle test pattern"},
	EmulatorQuit:             {CategoryEmulator, "Quit"},

	AudioToggleChannel1: {CategoryAudio, "Toggle audio channel 1"},
	AudioToggleChannel2: {CategoryAudio, "Toggle audio channel 2"},
	AudioToggleChannel3: {CategoryAudio, "Toggle audio channel 3"},
	AudioToggleChannel4: {CategoryAudio, "Toggle audio channel 4"},
	AudioSoloChannel1:   {CategoryAudio, "Solo audio channel 1"},
	AudioSoloChannel2:   {CategoryAudio, "Solo audio channel 2"},
	AudioSoloChannel3:   {CategoryAudio, "Solo audio channel 3"},
	AudioSoloChannel4:   {CategoryAudio, "Solo audio channel 4"},
	AudioShowStatus:     {CategoryAudio, "Show audio channel status"},

	DebugLogLevelIncrease: {CategoryDebug, "Increase log level"},
	DebugLogLevelDecrease: {CategoryDebug, "Decrease log level"},
}

// GetInfo returns descriptive metadata for act. Unknown actions (there are
// none today, but a stale mapping from a future key-remap file is possible)
// report CategoryEmulator with a generic description rather than panicking.
func GetInfo(act Action) Info {
	if info, ok := infoTable[act]; ok {
		return info
	}
	return Info{CategoryEmulator, "unknown action"}
}
