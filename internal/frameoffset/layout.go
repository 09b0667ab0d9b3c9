package frameoffset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// Layout describes frame placements
//
//	root: 0
//	frames:
//	  - id: 3
//	    parent: 0
//	    x: 120
//	    y: 48
//
// The same layout in TOML:
//
//	root = 0
//	[[frames]]
//	id = 3
//	parent = 0
//	x = 120
//	y = 48
type Layout struct {
	Root   int           `yaml:"root" toml:"root"`
	Frames []FrameLayout `yaml:"frames" toml:"frames"`
}

// FrameLayout places one frame inside its parent
type FrameLayout struct {
	ID     int     `yaml:"id" toml:"id"`
	Parent int     `yaml:"parent" toml:"parent"`
	X      float64 `yaml:"x" toml:"x"`
	Y      float64 `yaml:"y" toml:"y"`
}

// Tree builds a tree holding the layout's frames
func (l Layout) Tree() (*Tree, error) {
	tree := NewTree(l.Root)
	for _, f := range l.Frames {
		if err := tree.Register(f.ID, f.Parent, f.X, f.Y); err != nil {
			return nil, fmt.Errorf("frame %d: %w", f.ID, err)
		}
	}
	return tree, nil
}

// ParseLayout builds a tree from YAML
func ParseLayout(data []byte) (*Tree, error) {
	var layout Layout
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	return layout.Tree()
}

// ParseTOMLLayout builds a tree from TOML
func ParseTOMLLayout(data []byte) (*Tree, error) {
	var layout Layout
	if err := toml.Unmarshal(data, &layout); err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	return layout.Tree()
}

// LoadLayout reads a layout file. Files ending in .toml are parsed as TOML,
// anything else as YAML.
func LoadLayout(path string) (*Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return ParseTOMLLayout(data)
	}
	return ParseLayout(data)
}
