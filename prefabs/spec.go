package prefabs

import (
	"fmt"
	"image/color"
	"sort"
	"strconv"
	"strings"

	"github.com/milk9111/crowdnav/nav"
	"gopkg.in/yaml.v3"
)

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// NavSpec tunes the grid, the cost model and the fields feeding it.
type NavSpec struct {
	Grid       GridSpec              `yaml:"grid"`
	Weights    WeightsSpec           `yaml:"weights"`
	Dispatcher DispatcherSpec        `yaml:"dispatcher"`
	Obstacle   ObstacleFieldSpec     `yaml:"obstacle_field"`
	Territory  TerritorySpec         `yaml:"territory"`
	Teams      map[string]*YAMLColor `yaml:"teams"`
}

type GridSpec struct {
	// CellSize in world units; zero uses the level tile size.
	CellSize     float64 `yaml:"cell_size"`
	Connectivity int     `yaml:"connectivity"`
	Clearance    float64 `yaml:"clearance"`
}

type WeightsSpec struct {
	Collider  float64 `yaml:"collider"`
	Heatmap   float64 `yaml:"heatmap"`
	LineRatio float64 `yaml:"line_ratio"`
	TurnAngle float64 `yaml:"turn_angle"`
	Heading   float64 `yaml:"heading"`
}

type DispatcherSpec struct {
	Mode         string `yaml:"mode"`
	StepsPerTick int    `yaml:"steps_per_tick"`
}

type ObstacleFieldSpec struct {
	Influence    float64 `yaml:"influence"`
	RebuildTicks int     `yaml:"rebuild_ticks"`
}

type TerritorySpec struct {
	Deposit      float64 `yaml:"deposit"`
	Decay        float64 `yaml:"decay"`
	RebuildTicks int     `yaml:"rebuild_ticks"`
	Script       string  `yaml:"script"`
}

// LoadNavSpec loads nav.yaml and fills in anything left unset.
func LoadNavSpec() (*NavSpec, error) {
	spec, err := LoadSpec[NavSpec]("nav.yaml")
	if err != nil {
		return nil, err
	}
	spec.applyDefaults()
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("prefabs: nav.yaml: %w", err)
	}
	return &spec, nil
}

func (s *NavSpec) applyDefaults() {
	if s.Grid.Connectivity == 0 {
		s.Grid.Connectivity = 8
	}
	if s.Dispatcher.Mode == "" {
		s.Dispatcher.Mode = "stepped"
	}
	if s.Dispatcher.StepsPerTick <= 0 {
		s.Dispatcher.StepsPerTick = 200
	}
	if s.Obstacle.RebuildTicks <= 0 {
		s.Obstacle.RebuildTicks = 30
	}
	if s.Territory.RebuildTicks <= 0 {
		s.Territory.RebuildTicks = 30
	}
	if s.Territory.Decay <= 0 {
		s.Territory.Decay = 1
	}
}

func (s *NavSpec) Validate() error {
	if s.Grid.Connectivity != 4 && s.Grid.Connectivity != 8 {
		return fmt.Errorf("grid.connectivity must be 4 or 8, got %d", s.Grid.Connectivity)
	}
	if s.Grid.CellSize < 0 || s.Grid.Clearance < 0 {
		return fmt.Errorf("grid sizes must not be negative")
	}
	if _, err := parseMode(s.Dispatcher.Mode); err != nil {
		return err
	}
	if s.Territory.Decay > 1 {
		return fmt.Errorf("territory.decay must be at most 1, got %v", s.Territory.Decay)
	}
	return nil
}

func (s *NavSpec) NavWeights() nav.Weights {
	return nav.Weights{
		Collider:  s.Weights.Collider,
		Heatmap:   s.Weights.Heatmap,
		LineRatio: s.Weights.LineRatio,
		TurnAngle: s.Weights.TurnAngle,
		Heading:   s.Weights.Heading,
	}
}

func (s *NavSpec) Mode() nav.Mode {
	m, _ := parseMode(s.Dispatcher.Mode)
	return m
}

func (s *NavSpec) Connectivity() nav.Connectivity {
	if s.Grid.Connectivity == 4 {
		return nav.Four
	}
	return nav.Eight
}

// TeamColor falls back to fallback for teams without a colour.
func (s *NavSpec) TeamColor(team string, fallback color.Color) color.Color {
	if c, ok := s.Teams[team]; ok && c != nil && c.Color != nil {
		return c.Color
	}
	return fallback
}

// TeamNames lists configured teams in name order.
func (s *NavSpec) TeamNames() []string {
	names := make([]string, 0, len(s.Teams))
	for name := range s.Teams {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func parseMode(s string) (nav.Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "stepped":
		return nav.ModeStepped, nil
	case "blocking":
		return nav.ModeBlocking, nil
	}
	return nav.ModeStepped, fmt.Errorf("unknown dispatcher mode %q", s)
}

type YAMLColor struct {
	color.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}

	s := strings.TrimPrefix(value.Value, "#")

	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	r, err := parse(0)
	if err != nil {
		return err
	}
	g, err := parse(2)
	if err != nil {
		return err
	}
	b, err := parse(4)
	if err != nil {
		return err
	}

	a := uint8(255)
	if len(s) == 8 {
		a, err = parse(6)
		if err != nil {
			return err
		}
	}

	c.Color = color.NRGBA{R: r, G: g, B: b, A: a}
	return nil
}
