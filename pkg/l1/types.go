package l1

// TerminalRef is a reference to a terminal.
type TerminalRef struct {
	// Type is the terminal type, e.g. the door model.
	Type string
	// ID is unique ID of the device.
	ID string
}

// Name retrieves the name from ref.
func (r TerminalRef) Name() string {
	return r.Type + "/" + r.ID
}

// IsValid indicates TerminalRef is valid.
func (r TerminalRef) IsValid() bool {
	return r.Type != "" && r.ID != ""
}
