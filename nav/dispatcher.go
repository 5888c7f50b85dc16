package nav

import (
	"sync"
	"sync/atomic"
)

// Mode selects how the dispatcher advances searches.
type Mode int

const (
	// ModeStepped leaves searches running until the host calls Tick.
	ModeStepped Mode = iota
	// ModeBlocking runs each search to completion as soon as it starts.
	ModeBlocking
)

// Callback receives the outcome of one request.
type Callback func(waypoints []Vec2, success bool)

// Ticket identifies a submitted request.
type Ticket uint64

// Hooks observe request lifecycle. Both run on the goroutine driving the
// search, outside the dispatcher lock.
type Hooks struct {
	Started  func(t Ticket)
	Finished func(t Ticket, res Result)
}

type request struct {
	ticket Ticket
	start  Vec2
	end    Vec2
	agent  *Agent
	done   Callback
}

type job struct {
	req      request
	search   *Search
	canceled atomic.Bool
}

// Dispatcher runs path requests one at a time in submission order.
// Submit and Cancel may be called from any goroutine; Tick belongs to the
// host loop.
type Dispatcher struct {
	grid  *Grid
	mode  Mode
	hooks Hooks

	mu     sync.Mutex
	model  CostModel
	queue  []request
	active *job
	busy   bool
	next   Ticket
}

// NewDispatcher builds a dispatcher that owns searches on grid.
func NewDispatcher(grid *Grid, model CostModel, mode Mode, hooks Hooks) *Dispatcher {
	return &Dispatcher{
		grid:  grid,
		model: model,
		mode:  mode,
		hooks: hooks,
	}
}

func (d *Dispatcher) Grid() *Grid {
	return d.grid
}

func (d *Dispatcher) Mode() Mode {
	return d.mode
}

// SetCostModel replaces the fields and weights used by later searches.
func (d *Dispatcher) SetCostModel(m CostModel) {
	d.mu.Lock()
	d.model = m
	d.mu.Unlock()
}

func (d *Dispatcher) CostModel() CostModel {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.model
}

// Pending is the number of requests waiting behind the active one.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queue)
}

// Busy reports whether a search is in flight.
func (d *Dispatcher) Busy() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.busy
}

// Submit queues a request. When nothing is running it starts right away,
// and in blocking mode it may complete before Submit returns.
func (d *Dispatcher) Submit(start, end Vec2, agent *Agent, done Callback) Ticket {
	d.mu.Lock()
	d.next++
	t := d.next
	d.queue = append(d.queue, request{ticket: t, start: start, end: end, agent: agent, done: done})
	d.mu.Unlock()

	d.pump()
	return t
}

// Cancel drops a queued request or aborts the active one. The callback of
// a cancelled request never runs.
func (d *Dispatcher) Cancel(t Ticket) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, r := range d.queue {
		if r.ticket == t {
			d.queue = append(d.queue[:i], d.queue[i+1:]...)
			return true
		}
	}
	if d.active != nil && d.active.req.ticket == t {
		return d.active.canceled.CompareAndSwap(false, true)
	}
	return false
}

// Tick spends up to budget expansions on the active search and the ones
// queued behind it. It returns the number of expansions used. In blocking
// mode there is never anything left to tick.
func (d *Dispatcher) Tick(budget int) int {
	if d.mode == ModeBlocking {
		return 0
	}
	used := 0
	for used < budget {
		d.mu.Lock()
		j := d.active
		d.mu.Unlock()
		if j == nil {
			break
		}

		if j.canceled.Load() {
			j.search.Abort()
		}
		for used < budget {
			used++
			if j.search.Step() != Running {
				break
			}
		}
		if !j.search.Done() {
			break
		}
		d.complete(j)
		d.pump()
	}
	return used
}

// Flush drives the active and queued requests of a stepped dispatcher to
// completion.
func (d *Dispatcher) Flush() {
	if d.mode == ModeBlocking {
		return
	}
	for {
		d.mu.Lock()
		j := d.active
		d.mu.Unlock()
		if j == nil {
			return
		}
		if j.canceled.Load() {
			j.search.Abort()
		}
		j.search.Run()
		d.complete(j)
		d.pump()
	}
}

// pump starts queued requests while the dispatcher is idle.
func (d *Dispatcher) pump() {
	for {
		d.mu.Lock()
		if d.busy || len(d.queue) == 0 {
			d.mu.Unlock()
			return
		}
		req := d.queue[0]
		d.queue[0] = request{}
		d.queue = d.queue[1:]
		d.busy = true
		j := &job{req: req}
		j.search = NewSearch(d.grid, d.model, req.start, req.end, req.agent)
		d.active = j
		d.mu.Unlock()

		if d.hooks.Started != nil {
			d.hooks.Started(req.ticket)
		}
		if d.mode == ModeBlocking {
			for j.search.Step() == Running {
				if j.canceled.Load() {
					j.search.Abort()
				}
			}
		}
		if !j.search.Done() {
			return
		}
		d.complete(j)
	}
}

// complete delivers the result, then frees the slot.
func (d *Dispatcher) complete(j *job) {
	res := j.search.Result()
	canceled := j.canceled.Load()

	if d.hooks.Finished != nil {
		d.hooks.Finished(j.req.ticket, res)
	}
	if !canceled && j.req.done != nil {
		j.req.done(res.Waypoints, res.Success)
	}

	d.mu.Lock()
	d.active = nil
	d.busy = false
	d.mu.Unlock()
}
