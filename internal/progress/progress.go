// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package progress prints single-line progress for long CLI operations.
package progress

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Tracker reports "done/total (pct) - rate unit/s" on one carriage-returned
// line. Increment is safe to call from worker goroutines.
type Tracker struct {
	mu           sync.Mutex
	writer       io.Writer
	label        string
	unit         string
	total        int
	done         int
	interval     int
	lastReported int
	startTime    time.Time
	started      bool
}

// NewTracker creates a tracker that reports at least every interval items.
// label prefixes each line and unit names the items in the rate.
func NewTracker(writer io.Writer, label, unit string, total, interval int) *Tracker {
	if interval < 1 {
		interval = 1
	}
	return &Tracker{
		writer:   writer,
		label:    label,
		unit:     unit,
		total:    total,
		interval: interval,
	}
}

// Start resets the counters and the clock.
func (t *Tracker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.startTime = time.Now()
	t.started = true
	t.done = 0
	t.lastReported = 0
}

// Increment records delta more finished items, capped at the total.
func (t *Tracker) Increment(delta int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.started {
		return
	}
	t.done = min(t.done+delta, t.total)
	if t.done-t.lastReported >= t.interval {
		t.report()
		t.lastReported = t.done
	}
}

// Done returns the number of finished items.
func (t *Tracker) Done() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

// Finish prints the final line and a newline. Items not reported through
// Increment are counted as done.
func (t *Tracker) Finish() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.started {
		return
	}
	t.done = t.total
	t.report()
	fmt.Fprintln(t.writer)
	t.started = false
}

// Elapsed returns the time since Start.
func (t *Tracker) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.started {
		return 0
	}
	return time.Since(t.startTime)
}

// report must be called with the lock held.
func (t *Tracker) report() {
	rate := 0.0
	if secs := time.Since(t.startTime).Seconds(); secs > 0 {
		rate = float64(t.done) / secs
	}
	pct := 0.0
	if t.total > 0 {
		pct = float64(t.done) / float64(t.total) * 100.0
	}
	fmt.Fprintf(t.writer, "\r%s: %d/%d (%.1f%%) - %.1f %s/s", t.label, t.done, t.total, pct, rate, t.unit)
}
