package scene

import "github.com/Voskan/enginert/pkg/hashreg"

// Registries of textures, fonts, layers and layouts a scene's nodes can
// reference by name, per spec.md §4.D's node-owning-scene description.
// The asset values themselves are opaque (any) since their concrete
// representation belongs to the resource factory (component A), not to
// the scene graph.

func (s *Scene) RegisterTexture(name string, tex any) {
	s.textures[hashreg.String64(s.hash, name)] = tex
}

func (s *Scene) Texture(name string) (any, bool) {
	v, ok := s.textures[hashreg.String64(s.hash, name)]
	return v, ok
}

func (s *Scene) RegisterFont(name string, font any) {
	s.fonts[hashreg.String64(s.hash, name)] = font
}

func (s *Scene) Font(name string) (any, bool) {
	v, ok := s.fonts[hashreg.String64(s.hash, name)]
	return v, ok
}

// RegisterLayer assigns a stable index to a named layer; layer indices
// feed the render key's 3-bit layer field (0-7).
func (s *Scene) RegisterLayer(name string, index uint16) {
	s.layers[hashreg.String64(s.hash, name)] = index
}

func (s *Scene) LayerIndex(name string) (uint16, bool) {
	v, ok := s.layers[hashreg.String64(s.hash, name)]
	return v, ok
}

func (s *Scene) RegisterLayout(name string, layout any) {
	s.layouts[hashreg.String64(s.hash, name)] = layout
}

func (s *Scene) Layout(name string) (any, bool) {
	v, ok := s.layouts[hashreg.String64(s.hash, name)]
	return v, ok
}
