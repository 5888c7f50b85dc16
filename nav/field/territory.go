package field

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync/atomic"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/crowdnav/nav"
)

var (
	ErrNoScript = errors.New("field: empty territory script")
	ErrNoCost   = errors.New("field: territory script does not define cost")
)

// heat below this is dropped on decay
const heatFloor = 1e-3

// Zone claims a rectangle of cells for a team.
type Zone struct {
	Owner    string
	Min, Max nav.Vec2
}

type territoryLayers struct {
	byTeam map[string][]float64
	total  []float64
}

// Territory accumulates where each team has been and turns it into a cost
// layer per team. Deposit, Seed, Decay and Rebuild belong to one goroutine;
// ValueAt may be called from anywhere.
type Territory struct {
	grid  *nav.Grid
	heat  map[string][]float64
	owner []string

	script *tengo.Compiled

	layers atomic.Pointer[territoryLayers]
}

func NewTerritory(grid *nav.Grid) *Territory {
	return &Territory{
		grid:  grid,
		heat:  make(map[string][]float64),
		owner: make([]string, grid.Size()),
	}
}

// SetScript compiles src as the cost script. The script sees the globals
// own, others, zone_owner and team for one cell and must assign cost.
func (t *Territory) SetScript(src []byte) error {
	if len(src) == 0 {
		return ErrNoScript
	}
	script := tengo.NewScript(src)
	_ = script.Add("own", 0.0)
	_ = script.Add("others", 0.0)
	_ = script.Add("zone_owner", "")
	_ = script.Add("team", "")
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return fmt.Errorf("field: compile territory script: %w", err)
	}
	if err := compiled.Run(); err != nil {
		return fmt.Errorf("field: run territory script: %w", err)
	}
	if !compiled.IsDefined("cost") {
		return ErrNoCost
	}
	t.script = compiled
	return nil
}

// ClearScript falls back to the built-in cost rule.
func (t *Territory) ClearScript() {
	t.script = nil
}

func (t *Territory) Scripted() bool {
	return t.script != nil
}

// AddTeam makes sure team gets its own layer even before it deposits.
func (t *Territory) AddTeam(team string) {
	if _, ok := t.heat[team]; !ok && team != "" {
		t.heat[team] = make([]float64, t.grid.Size())
	}
}

// Teams lists known teams in name order.
func (t *Territory) Teams() []string {
	out := make([]string, 0, len(t.heat))
	for team := range t.heat {
		out = append(out, team)
	}
	sort.Strings(out)
	return out
}

// Deposit adds heat for team at pos. Heat per cell saturates at 1.
func (t *Territory) Deposit(team string, pos nav.Vec2, amount float64) {
	if team == "" || amount <= 0 {
		return
	}
	t.AddTeam(team)
	i := t.grid.CellAt(pos).Index
	layer := t.heat[team]
	layer[i] = math.Min(1, layer[i]+amount)
}

// Heat returns the raw heat of team at pos.
func (t *Territory) Heat(team string, pos nav.Vec2) float64 {
	layer, ok := t.heat[team]
	if !ok {
		return 0
	}
	return layer[t.grid.CellAt(pos).Index]
}

// Seed marks every cell whose centre lies inside z as owned by z.Owner.
// Later zones overwrite earlier ones.
func (t *Territory) Seed(z Zone) {
	t.AddTeam(z.Owner)
	cells := t.grid.Cells()
	for i := range cells {
		w := cells[i].World
		if w.X >= z.Min.X && w.X <= z.Max.X && w.Y >= z.Min.Y && w.Y <= z.Max.Y {
			t.owner[i] = z.Owner
		}
	}
}

func (t *Territory) ClearZones() {
	for i := range t.owner {
		t.owner[i] = ""
	}
}

// Decay scales all heat by factor, which is clamped to [0,1].
func (t *Territory) Decay(factor float64) {
	factor = math.Max(0, math.Min(1, factor))
	for _, layer := range t.heat {
		for i, v := range layer {
			v *= factor
			if v < heatFloor {
				v = 0
			}
			layer[i] = v
		}
	}
}

func (t *Territory) Initialized() bool {
	return t.layers.Load() != nil
}

// ValueAt reads the cost layer of the agent's team. Without a team, or for
// a team the field has never seen, it reads the combined heat.
func (t *Territory) ValueAt(pos nav.Vec2, agent *nav.Agent) float64 {
	l := t.layers.Load()
	if l == nil {
		return 0
	}
	i := t.grid.CellAt(pos).Index
	if agent != nil {
		if layer, ok := l.byTeam[agent.Team]; ok {
			return layer[i]
		}
	}
	return l.total[i]
}

// Rebuild recomputes every team's cost layer and publishes them together.
// On a script error the previous layers stay in place.
func (t *Territory) Rebuild() error {
	n := t.grid.Size()
	total := make([]float64, n)
	for _, layer := range t.heat {
		for i, v := range layer {
			total[i] += v
		}
	}

	next := &territoryLayers{
		byTeam: make(map[string][]float64, len(t.heat)),
		total:  total,
	}
	for team, own := range t.heat {
		layer := make([]float64, n)
		if t.script == nil {
			for i := range layer {
				layer[i] = defaultCost(team, own[i], total[i]-own[i], t.owner[i])
			}
		} else if err := t.scriptLayer(team, own, total, layer); err != nil {
			return err
		}
		next.byTeam[team] = layer
	}

	for i, v := range total {
		total[i] = math.Min(1, v)
	}
	t.layers.Store(next)
	return nil
}

// defaultCost is the heat of the other teams, raised to at least one half
// inside a zone someone else owns.
func defaultCost(team string, _, others float64, owner string) float64 {
	c := math.Min(1, others)
	if owner != "" && owner != team {
		c = math.Max(c, 0.5)
	}
	return c
}

func (t *Territory) scriptLayer(team string, own, total, out []float64) error {
	// cells with no heat and no owner all share one answer
	idle, err := t.evalScript(team, 0, 0, "")
	if err != nil {
		return err
	}
	for i := range out {
		others := total[i] - own[i]
		if own[i] == 0 && others == 0 && t.owner[i] == "" {
			out[i] = idle
			continue
		}
		v, err := t.evalScript(team, own[i], others, t.owner[i])
		if err != nil {
			return err
		}
		out[i] = v
	}
	return nil
}

func (t *Territory) evalScript(team string, own, others float64, owner string) (float64, error) {
	c := t.script
	if err := c.Set("own", own); err != nil {
		return 0, err
	}
	if err := c.Set("others", others); err != nil {
		return 0, err
	}
	if err := c.Set("zone_owner", owner); err != nil {
		return 0, err
	}
	if err := c.Set("team", team); err != nil {
		return 0, err
	}
	if err := c.Run(); err != nil {
		return 0, fmt.Errorf("field: territory script team=%s: %w", team, err)
	}
	v := c.Get("cost").Float()
	if math.IsNaN(v) || v < 0 {
		return 0, nil
	}
	return v, nil
}
