package scene

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// LayoutPreset bundles the adjust-mode/pivot/anchor combination a node
// template uses, authored outside code the way the original engine ships
// named GUI layout presets as data rather than call-site literals.
type LayoutPreset struct {
	Name    string `yaml:"name"`
	Adjust  string `yaml:"adjust"`
	Pivot   string `yaml:"pivot"`
	XAnchor string `yaml:"x_anchor"`
	YAnchor string `yaml:"y_anchor"`
}

var adjustModes = map[string]AdjustMode{
	"fit":     AdjustModeFit,
	"zoom":    AdjustModeZoom,
	"stretch": AdjustModeStretch,
}

var pivots = map[string]Pivot{
	"center": PivotCenter,
	"n":      PivotN,
	"ne":     PivotNE,
	"e":      PivotE,
	"se":     PivotSE,
	"s":      PivotS,
	"sw":     PivotSW,
	"w":      PivotW,
	"nw":     PivotNW,
}

var xAnchors = map[string]XAnchor{
	"none":  XAnchorNone,
	"left":  XAnchorLeft,
	"right": XAnchorRight,
}

var yAnchors = map[string]YAnchor{
	"none":   YAnchorNone,
	"top":    YAnchorTop,
	"bottom": YAnchorBottom,
}

// ParseLayoutPresets decodes a YAML document of named layout presets, the
// format a scene's authoring tool writes alongside its collection files.
func ParseLayoutPresets(doc []byte) (map[string]LayoutPreset, error) {
	var list []LayoutPreset
	if err := yaml.Unmarshal(doc, &list); err != nil {
		return nil, fmt.Errorf("decoding layout presets: %w", err)
	}

	out := make(map[string]LayoutPreset, len(list))
	for _, p := range list {
		if p.Name == "" {
			return nil, fmt.Errorf("layout preset missing a name")
		}
		out[p.Name] = p
	}
	return out, nil
}

// ApplyLayoutPreset resolves a preset's string fields to their scene enums
// and sets every corresponding property on h.
func (s *Scene) ApplyLayoutPreset(h Handle, p LayoutPreset) error {
	adjust, ok := adjustModes[p.Adjust]
	if !ok {
		return fmt.Errorf("unknown adjust mode %q", p.Adjust)
	}
	if err := s.SetAdjustMode(h, adjust); err != nil {
		return err
	}

	if p.Pivot != "" {
		pv, ok := pivots[p.Pivot]
		if !ok {
			return fmt.Errorf("unknown pivot %q", p.Pivot)
		}
		if err := s.SetPivot(h, pv); err != nil {
			return err
		}
	}

	xa, ya := XAnchorNone, YAnchorNone
	if p.XAnchor != "" {
		xa, ok = xAnchors[p.XAnchor]
		if !ok {
			return fmt.Errorf("unknown x anchor %q", p.XAnchor)
		}
	}
	if p.YAnchor != "" {
		ya, ok = yAnchors[p.YAnchor]
		if !ok {
			return fmt.Errorf("unknown y anchor %q", p.YAnchor)
		}
	}
	if p.XAnchor != "" || p.YAnchor != "" {
		if err := s.SetAnchors(h, xa, ya); err != nil {
			return err
		}
	}

	return nil
}
