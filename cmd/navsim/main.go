package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/milk9111/crowdnav/ecs"
	"github.com/milk9111/crowdnav/ecs/component"
	"github.com/milk9111/crowdnav/nav"
	"github.com/milk9111/crowdnav/sim"
)

// requestStats collects dispatcher results through its hooks.
type requestStats struct {
	started   int
	succeeded int
	failed    int
	expanded  int
	maxExpand int
	cost      int
}

func (r *requestStats) hooks() nav.Hooks {
	return nav.Hooks{
		Started: func(nav.Ticket) { r.started++ },
		Finished: func(_ nav.Ticket, res nav.Result) {
			if res.Success {
				r.succeeded++
				r.cost += res.Cost
			} else {
				r.failed++
			}
			r.expanded += res.Expanded
			if res.Expanded > r.maxExpand {
				r.maxExpand = res.Expanded
			}
		},
	}
}

func main() {
	levelName := flag.String("level", "arena", "level name in levels/ (basename, .json optional)")
	ticks := flag.Int("ticks", 1800, "number of fixed 1/60 s ticks to simulate")
	stepped := flag.Bool("stepped", false, "use the stepped dispatcher instead of blocking searches")
	pngPath := flag.String("png", "", "write a heat and path image to this file")
	scale := flag.Int("scale", 4, "pixels per grid cell in the image")
	debug := flag.Bool("debug", false, "log navigation events")
	flag.Parse()

	stats := &requestStats{}
	s, err := sim.New(sim.Options{
		Level:    *levelName,
		Blocking: !*stepped,
		Hooks:    stats.hooks(),
		Debug:    *debug,
	})
	if err != nil {
		log.Fatal(err)
	}

	begin := time.Now()
	s.Run(*ticks)
	elapsed := time.Since(begin)

	report(os.Stdout, s, stats, *ticks, elapsed)

	if *pngPath != "" {
		if err := writePNG(*pngPath, s, *scale); err != nil {
			log.Fatal(err)
		}
		log.Printf("navsim: wrote %s", *pngPath)
	}
}

func report(out io.Writer, s *sim.Sim, stats *requestStats, ticks int, elapsed time.Duration) {
	fmt.Fprintf(out, "level %s: %d ticks in %v (%.1f ticks/s)\n", s.Level.Name, ticks, elapsed.Round(time.Millisecond), float64(ticks)/elapsed.Seconds())
	fmt.Fprintf(out, "requests %d  succeeded %d  failed %d  pending %d\n", stats.started, stats.succeeded, stats.failed, s.Dispatcher.Pending())
	if stats.started > 0 {
		fmt.Fprintf(out, "expanded avg %.1f  max %d", float64(stats.expanded)/float64(stats.started), stats.maxExpand)
		if stats.succeeded > 0 {
			fmt.Fprintf(out, "  path cost avg %.1f", float64(stats.cost)/float64(stats.succeeded))
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintf(out, "events: found %d  failed %d  arrived %d  gave up %d\n\n",
		s.Stats.Count(ecs.EventPathFound), s.Stats.Count(ecs.EventPathFailed), s.Stats.Count(ecs.EventArrived), s.Stats.Count(ecs.EventGaveUp))

	type row struct {
		e  ecs.Entity
		a  *component.Agent
		n  *component.Navigator
		pf *component.Pathfinding
	}
	var rows []row
	ecs.ForEach3(s.World, component.AgentComponent.Kind(), component.NavigatorComponent.Kind(), component.PathfindingComponent.Kind(),
		func(e ecs.Entity, a *component.Agent, n *component.Navigator, pf *component.Pathfinding) {
			rows = append(rows, row{e: e, a: a, n: n, pf: pf})
		})
	sort.Slice(rows, func(i, j int) bool { return rows[i].e < rows[j].e })

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "agent\tteam\trequests\tfound\tfailed\tarrivals\tgoal")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%d\n", r.e, r.a.Team, r.pf.Requests, r.pf.Successes, r.pf.Failures, r.n.Arrivals, r.n.Goal)
	}
	_ = tw.Flush()
}
