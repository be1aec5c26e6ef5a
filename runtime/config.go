package runtime

import (
	"fmt"
	"os"

	"github.com/tailscale/hujson"

	"encoding/json"
)

// BootConfig is the engine's bootstrap configuration: archive/liveupdate
// paths and capacity tunables for the resource factory and message bus,
// the surface the original engine reads from an ini-like project config
// file, minus the ini parser dependency.
type BootConfig struct {
	ArchivePath       string `json:"archive_path"`
	FilesystemRoot    string `json:"filesystem_root"`
	LiveupdatePath    string `json:"liveupdate_path"`
	ResourceCapacity  int    `json:"resource_capacity"`
	SceneNodeCapacity int    `json:"scene_node_capacity"`
	Debug             bool   `json:"debug"`
}

// LoadBootConfig reads a JSON-with-comments bootstrap config file. hujson
// standardizes trailing commas and // and /* */ comments to strict JSON
// before encoding/json decodes it, so operators can annotate a checked-in
// config the way the original engine's ini files allowed comments.
func LoadBootConfig(path string) (*BootConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading boot config: %w", err)
	}

	std, err := hujson.Standardize(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing boot config: %w", err)
	}

	cfg := &BootConfig{ResourceCapacity: 1024, SceneNodeCapacity: 512}
	if err := json.Unmarshal(std, cfg); err != nil {
		return nil, fmt.Errorf("decoding boot config: %w", err)
	}
	return cfg, nil
}
