package sequence

import (
	"fmt"
	"sort"

	"github.com/mitchelldurbincs/TabletopForwardModel/internal/game/core"
)

// OneShot names an interrupt effect usable at most once per sequence instance.
type OneShot string

// OneShotAction is implemented by interrupt actions that consume a one-shot effect.
type OneShotAction interface {
	core.Action
	OneShot() OneShot
}

// Cursor is the resumable execution state of an extended sequence: the current
// phase, who started it, who it targets, which player is being polled for an
// interrupt, and which one-shot effects have been consumed. It is a value that
// concrete sequences embed; Copy gives an independent cursor.
type Cursor struct {
	phase       Phase
	initiator   int
	target      int
	interrupter int
	declined    bool
	used        map[OneShot]struct{}
}

func (c *Cursor) Phase() Phase     { return c.phase }
func (c *Cursor) Initiator() int   { return c.initiator }
func (c *Cursor) Target() int      { return c.target }
func (c *Cursor) Interrupter() int { return c.interrupter }
func (c *Cursor) Declined() bool   { return c.declined }
func (c *Cursor) Started() bool    { return c.phase != NotStarted }

// SetTarget changes the targeted player, e.g. between targets of a multi-target sequence.
func (c *Cursor) SetTarget(p int) { c.target = p }

// Decline ends the polled player's participation in the current window.
func (c *Cursor) Decline() { c.declined = true }

// Used reports whether shot has been consumed.
func (c *Cursor) Used(shot OneShot) bool {
	_, ok := c.used[shot]
	return ok
}

// Register records shot as consumed. Registering the same effect twice is a
// programming error and returns an InvariantError.
func (c *Cursor) Register(shot OneShot) error {
	if c.Used(shot) {
		return core.Invariantf("register one-shot", "%q has already been used", shot)
	}
	if c.used == nil {
		c.used = make(map[OneShot]struct{})
	}
	c.used[shot] = struct{}{}
	return nil
}

// ResetUsed forgets consumed one-shots.
func (c *Cursor) ResetUsed() { c.used = nil }

// UsedShots returns consumed one-shots in sorted order.
func (c *Cursor) UsedShots() []OneShot {
	out := make([]OneShot, 0, len(c.used))
	for s := range c.used {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Copy returns an independent cursor.
func (c Cursor) Copy() Cursor {
	if c.used != nil {
		used := make(map[OneShot]struct{}, len(c.used))
		for k := range c.used {
			used[k] = struct{}{}
		}
		c.used = used
	}
	return c
}

func (c *Cursor) Equal(o *Cursor) bool {
	if c.phase != o.phase || c.initiator != o.initiator || c.target != o.target ||
		c.interrupter != o.interrupter || c.declined != o.declined || len(c.used) != len(o.used) {
		return false
	}
	for k := range c.used {
		if !o.Used(k) {
			return false
		}
	}
	return true
}

// HashInto writes the cursor into h in a canonical order.
func (c *Cursor) HashInto(h *core.Hasher) {
	h.Int(int(c.phase)).Int(c.initiator).Int(c.target).Int(c.interrupter).Bool(c.declined)
	h.Int(len(c.used))
	for _, s := range c.UsedShots() {
		h.String(string(s))
	}
}

func (c *Cursor) String() string {
	return fmt.Sprintf("phase=%d initiator=%d target=%d interrupter=%d", c.phase, c.initiator, c.target, c.interrupter)
}
