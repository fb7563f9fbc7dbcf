package model

// Mod is one installed server-side mod entry, normalized from either
// Forge's "forgeData.mods" (modId/modmarker) or legacy FML's
// "modinfo.modList" (modid/version) shapes — spec.md §3.
type Mod struct {
	ID      string `json:"id"`
	Version string `json:"version"`
}
