package track

import "encoding/json"

// Clipboard is the contract the real interactive TUI uses for the 'C'
// key ("copy selected field as JSON to system clipboard") — spec.md
// §6 names clipboard integration explicitly out of scope (§1), so this
// system only defines the shape the TUI collaborator would call into.
type Clipboard interface {
	Copy(text string) error
}

// CopyAsJSON marshals v and hands the result to clip — the core's half
// of the 'C' key contract.
func CopyAsJSON(clip Clipboard, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return clip.Copy(string(data))
}

// noopClipboard is the default Clipboard: copy-as-text is a UI-layer
// OS integration concern this system doesn't implement (spec.md §1).
type noopClipboard struct{}

func (noopClipboard) Copy(string) error { return nil }

// DefaultClipboard returns the no-op Clipboard used when no real
// clipboard integration is wired in.
func DefaultClipboard() Clipboard { return noopClipboard{} }
