package model

import (
	"bufio"
	"fmt"
	"os"
)

// LoadLegacy reads a pre-existing pickle-format snapshot (the upstream
// Python tool's on-disk format) exactly once, for migration purposes,
// and returns nothing usable beyond a clear error: this implementation
// never executes or trusts pickle opcodes (spec.md Design Notes: "the
// source uses a deserializer that executes arbitrary code on load;
// implementers MUST choose a safe format"). A real migration path
// would parse the documented pickle protocol by hand (no exec), which
// is out of scope here; this function only detects the legacy magic
// bytes so callers can produce an actionable error instead of silently
// misreading a legacy file as JSON.
func LoadLegacy(path string) (*HostList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening legacy snapshot: %w", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	magic, err := r.Peek(2)
	if err != nil {
		return nil, fmt.Errorf("reading legacy snapshot header: %w", err)
	}
	if magic[0] == 0x80 { // pickle protocol 2+ opcode
		return nil, fmt.Errorf("legacy pickle snapshot detected at %s: "+
			"migrate it with the upstream tool and re-save as JSON; "+
			"this implementation refuses to deserialize pickle data", path)
	}
	return nil, fmt.Errorf("unrecognized legacy snapshot format at %s", path)
}
