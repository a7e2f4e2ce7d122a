// Copyright (c) Huawei Technologies Co., Ltd. 2023. All rights reserved.
// freqgov licensed under the Mulan PSL v2.
// You can use this software according to the terms and conditions of the Mulan PSL v2.
// You may obtain a copy of Mulan PSL v2 at:
//     http://license.coscl.org.cn/MulanPSL2
// THIS SOFTWARE IS PROVIDED ON AN "AS IS" BASIS, WITHOUT WARRANTIES OF ANY KIND, EITHER EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO NON-INFRINGEMENT, MERCHANTABILITY OR FIT FOR A PARTICULAR
// PURPOSE.
// See the Mulan PSL v2 for more details.
// Author: Jiaqi Yang
// Date: 2023-05-12
// Description: fast-path sampling trigger and slow-path escalation

package governor

import (
	"context"
)

// OnUtilUpdate is the per-processor utilization update hook. It is invoked
// on every scheduling tick and must neither allocate nor block; everything
// it touches is an atomic. Unregistered processors are a no-op.
func (g *Governor) OnUtilUpdate(cpu int, now int64) {
	if cpu < 0 || cpu >= len(g.hooks) {
		return
	}
	d := g.hooks[cpu].Load()
	if d == nil {
		return
	}
	d.utilUpdate(now)
}

// utilUpdate decides whether this update escalates to the slow path.
func (d *PolicyDomain) utilUpdate(now int64) {
	// a sample is already queued or running
	if d.workInProgress.Load() {
		return
	}

	lst := d.lastSampleTime.Load()
	if now-lst < d.sampleDelay.Load() {
		return
	}

	// On a shared domain only the first of the racing processors may
	// queue the work for this window.
	if d.isShared {
		if !d.workCount.CompareAndSwap(0, 1) {
			return
		}
		// Another processor advanced last_sample_time between the read
		// above and winning the counter; the schedule has moved on, so
		// drop the claim. Not an error, merely a lost race.
		if lst != d.lastSampleTime.Load() {
			d.workCount.Store(0)
			return
		}
	}

	d.lastSampleTime.Store(now)
	d.workInProgress.Store(true)
	d.queueWork()
}

// queueWork hands off to the slow path through the single-slot queue. The
// non-blocking send keeps concurrent winners coalesced to one pending task.
func (d *PolicyDomain) queueWork() {
	select {
	case d.work <- struct{}{}:
	default:
	}
}

// runWorker is the slow-path executor of one domain. It drains the
// single-slot queue until cancelled at stop.
func (d *PolicyDomain) runWorker(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-d.work:
			d.sample()
		}
	}
}

// sample runs one sampling decision cycle. The timer lock keeps it from
// interleaving with Limits and with sampling rate resets.
func (d *PolicyDomain) sample() {
	d.timerMu.Lock()
	delay := d.gov.decider.Decide(d)
	d.sampleDelay.Store(int64(delay))
	d.timerMu.Unlock()

	// allow the utilization update hook to queue up more work
	d.workCount.Store(0)
	// The atomic store of sampleDelay above is ordered before this
	// release; a fast-path reader that observes the cleared flag also
	// observes the new delay.
	d.workInProgress.Store(false)
}
