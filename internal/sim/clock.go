package sim

import (
	"container/heap"
	"time"
)

// MinInterval is the shortest period a timer may be scheduled with.
const MinInterval = time.Millisecond

// Timer is a handle to a periodic callback registered on a Clock.
type Timer interface {
	// Stop cancels the timer. Stopping an already stopped timer is a no-op.
	Stop()
}

// Clock is a virtual, single-threaded time source. Periodic callbacks fire in
// (due, registration order) order when the clock is advanced, so two clocks
// fed the same sequence of Every/Advance calls fire identical sequences.
//
// Clock is not safe for concurrent use; the owner advances it from one
// goroutine.
type Clock struct {
	now   time.Duration
	seq   uint64
	queue timerQueue
}

// NewClock returns a clock positioned at zero.
func NewClock() *Clock {
	return &Clock{}
}

// Now reports the virtual time elapsed since the clock was created.
func (c *Clock) Now() time.Duration {
	if c == nil {
		return 0
	}
	return c.now
}

// Pending reports how many timers are currently scheduled.
func (c *Clock) Pending() int {
	if c == nil {
		return 0
	}
	return len(c.queue)
}

// Every schedules fn to run every interval, first firing one interval from
// now.
func (c *Clock) Every(interval time.Duration, fn func()) Timer {
	if interval < MinInterval {
		interval = MinInterval
	}
	t := &timer{
		clock:    c,
		interval: interval,
		fn:       fn,
		index:    -1,
	}
	c.schedule(t, c.now+interval)
	return t
}

// Advance moves the clock forward by d, firing every timer that comes due on
// the way. It returns the number of callbacks invoked.
func (c *Clock) Advance(d time.Duration) int {
	if d < 0 {
		d = 0
	}
	return c.AdvanceTo(c.now + d)
}

// AdvanceTo moves the clock to the absolute instant target. Targets in the
// past leave the clock where it is.
func (c *Clock) AdvanceTo(target time.Duration) int {
	fired := 0
	for len(c.queue) > 0 {
		next := c.queue[0]
		if next.due > target {
			break
		}
		heap.Pop(&c.queue)
		c.now = next.due
		if next.stopped {
			continue
		}
		if next.fn != nil {
			next.fn()
			fired++
		}
		if !next.stopped {
			c.schedule(next, next.due+next.interval)
		}
	}
	if target > c.now {
		c.now = target
	}
	return fired
}

func (c *Clock) schedule(t *timer, due time.Duration) {
	c.seq++
	t.due = due
	t.seq = c.seq
	heap.Push(&c.queue, t)
}

type timer struct {
	clock    *Clock
	interval time.Duration
	fn       func()
	due      time.Duration
	seq      uint64
	index    int
	stopped  bool
}

func (t *timer) Stop() {
	if t == nil || t.stopped {
		return
	}
	t.stopped = true
	if t.index >= 0 && t.clock != nil {
		heap.Remove(&t.clock.queue, t.index)
	}
}

type timerQueue []*timer

func (q timerQueue) Len() int { return len(q) }

func (q timerQueue) Less(i, j int) bool {
	if q[i].due == q[j].due {
		return q[i].seq < q[j].seq
	}
	return q[i].due < q[j].due
}

func (q timerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *timerQueue) Push(x any) {
	t := x.(*timer)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *timerQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}
