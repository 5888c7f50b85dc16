package levels

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

//go:embed *.json
var LevelsFS embed.FS

var ErrNoLevel = errors.New("levels: no such level")

const DefaultTileSize = 16.0

type Level struct {
	Name      string      `json:"name"`
	Width     int         `json:"width"`
	Height    int         `json:"height"`
	TileSize  float64     `json:"tile_size"`
	Layers    [][]int     `json:"layers"`
	LayerMeta []LayerMeta `json:"layer_meta,omitempty"`
	Entities  []Entity    `json:"entities,omitempty"`
}

type LayerMeta struct {
	Name    string `json:"name,omitempty"`
	Physics bool   `json:"physics"`
}

// Entity is a placed object. X and Y are tile coordinates.
type Entity struct {
	Type  string                 `json:"type"`
	X     int                    `json:"x"`
	Y     int                    `json:"y"`
	Props map[string]interface{} `json:"props,omitempty"`
}

// LoadLevelFromFS reads an embedded level.
func LoadLevelFromFS(name string) (*Level, error) {
	data, err := fs.ReadFile(LevelsFS, cleanLevelPath(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoLevel, name)
		}
		return nil, fmt.Errorf("read level: %w", err)
	}
	return decode(name, data)
}

// Load prefers levels/<name> on disk over the embedded copy.
func Load(name string) (*Level, error) {
	clean := cleanLevelPath(name)
	if data, err := os.ReadFile(filepath.Join("levels", filepath.FromSlash(clean))); err == nil {
		return decode(name, data)
	}
	return LoadLevelFromFS(clean)
}

// List names the embedded levels.
func List() []string {
	entries, err := fs.ReadDir(LevelsFS, ".")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

func decode(name string, data []byte) (*Level, error) {
	var lvl Level
	if err := json.Unmarshal(data, &lvl); err != nil {
		return nil, fmt.Errorf("unmarshal level %s: %w", name, err)
	}
	if lvl.TileSize <= 0 {
		lvl.TileSize = DefaultTileSize
	}
	if lvl.Name == "" {
		lvl.Name = strings.TrimSuffix(filepath.Base(name), ".json")
	}
	if err := lvl.Validate(); err != nil {
		return nil, fmt.Errorf("level %s: %w", name, err)
	}
	return &lvl, nil
}

func (l *Level) Validate() error {
	if l.Width <= 0 || l.Height <= 0 {
		return fmt.Errorf("invalid size %dx%d", l.Width, l.Height)
	}
	for i, layer := range l.Layers {
		if len(layer) != l.Width*l.Height {
			return fmt.Errorf("layer %d has %d tiles, want %d", i, len(layer), l.Width*l.Height)
		}
	}
	for i, e := range l.Entities {
		if e.X < 0 || e.Y < 0 || e.X >= l.Width || e.Y >= l.Height {
			return fmt.Errorf("entity %d (%s) at %d,%d is outside the level", i, e.Type, e.X, e.Y)
		}
	}
	return nil
}

// Solid merges every physics layer into one mask. Layers without meta are
// treated as physics layers.
func (l *Level) Solid() []bool {
	out := make([]bool, l.Width*l.Height)
	for i, layer := range l.Layers {
		if i < len(l.LayerMeta) && !l.LayerMeta[i].Physics {
			continue
		}
		for j, v := range layer {
			if v != 0 {
				out[j] = true
			}
		}
	}
	return out
}

func (l *Level) WorldSize() (float64, float64) {
	return float64(l.Width) * l.TileSize, float64(l.Height) * l.TileSize
}

// TileCentre converts tile coordinates to the world position of the tile
// centre.
func (l *Level) TileCentre(x, y int) (float64, float64) {
	return (float64(x) + 0.5) * l.TileSize, (float64(y) + 0.5) * l.TileSize
}

// EntitiesOfType keeps placement order.
func (l *Level) EntitiesOfType(typ string) []Entity {
	var out []Entity
	for _, e := range l.Entities {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

func (e Entity) PropString(key, fallback string) string {
	if v, ok := e.Props[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// PropInt accepts JSON numbers, which decode as float64.
func (e Entity) PropInt(key string, fallback int) int {
	switch v := e.Props[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return fallback
}

func cleanLevelPath(name string) string {
	s := filepath.ToSlash(name)
	s = strings.TrimPrefix(s, "levels/")
	if !strings.HasSuffix(s, ".json") {
		s += ".json"
	}
	return s
}
