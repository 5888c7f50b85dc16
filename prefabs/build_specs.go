package prefabs

import "gopkg.in/yaml.v3"

// EntityBuildSpec is an entity prefab: a name and the raw YAML of each
// component, decoded later by the component's builder.
type EntityBuildSpec struct {
	Name       string         `yaml:"name"`
	Components map[string]any `yaml:"components"`
}

func LoadEntityBuildSpec(filename string) (EntityBuildSpec, error) {
	return LoadSpec[EntityBuildSpec](filename)
}

// DecodeComponentSpec re-encodes raw and decodes it into T, so component
// builders get typed specs from the untyped prefab map.
func DecodeComponentSpec[T any](raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}

type TransformComponentSpec struct {
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	Rotation float64 `yaml:"rotation"`
}

type AgentComponentSpec struct {
	Team     string  `yaml:"team"`
	Radius   float64 `yaml:"radius"`
	HeadingX float64 `yaml:"heading_x"`
	HeadingY float64 `yaml:"heading_y"`
}

type NavigatorComponentSpec struct {
	Speed          float64 `yaml:"speed"`
	ArriveDistance float64 `yaml:"arrive_distance"`
	RepathTicks    int     `yaml:"repath_ticks"`
	MaxFailures    int     `yaml:"max_failures"`
	CooldownTicks  int     `yaml:"cooldown_ticks"`
}

type PhysicsBodyComponentSpec struct {
	Radius float64 `yaml:"radius"`
}

type CollisionLayerComponentSpec struct {
	Category uint32 `yaml:"category"`
	Mask     uint32 `yaml:"mask"`
}
