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
// Date: 2023-05-20
// Description: This file tests the domain load computation

package governor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loadTestDomain builds a started-like domain over a scriptable counter
// source without running the sampling machinery.
func loadTestDomain(t *testing.T, cpus []int) (*PolicyDomain, *fakeTimes) {
	driver := newFakeDriver(1000000)
	g, times, _ := newTestGovernor(t, 8, driver, &countingDecider{delay: time.Hour}, true)
	require.NoError(t, g.Init(DomainSpec{Name: "policy0", CPUs: cpus, MinKHz: 800000, MaxKHz: 2000000}))
	d := g.Domain("policy0")
	require.NoError(t, d.resetTrackers())
	return d, times
}

// TestUpdateLoadBounds tests that the computed load is the maximum over the
// processors and always within [0, 100]
func TestUpdateLoadBounds(t *testing.T) {
	d, times := loadTestDomain(t, []int{0, 1, 2})

	// cpu0 20% busy, cpu1 70% busy, cpu2 fully idle
	times.advance(0, 80000, 100000)
	times.advance(1, 30000, 100000)
	times.advance(2, 100000, 100000)

	load, err := d.Update()
	assert.NoError(t, err)
	assert.Equal(t, 70, load)

	// all processors saturated
	times.advance(0, 0, 100000)
	times.advance(1, 0, 100000)
	times.advance(2, 0, 100000)
	load, err = d.Update()
	assert.NoError(t, err)
	assert.Equal(t, maximumLoad, load)

	// all processors idle
	times.advance(0, 100000, 100000)
	times.advance(1, 100000, 100000)
	times.advance(2, 100000, 100000)
	load, err = d.Update()
	assert.NoError(t, err)
	assert.Equal(t, 0, load)
}

// TestUpdateSkipsStalledCounters tests the degenerate delta cases
func TestUpdateSkipsStalledCounters(t *testing.T) {
	d, times := loadTestDomain(t, []int{0})

	// no time passed at all: counters unchanged, load stays zero
	load, err := d.Update()
	assert.NoError(t, err)
	assert.Equal(t, 0, load)

	// idle advanced beyond wall, the sample is unusable
	times.advance(0, 200000, 100000)
	load, err = d.Update()
	assert.NoError(t, err)
	assert.Equal(t, 0, load)
}

// TestUpdateIdleWake tests the cached load reuse after a long idle period
func TestUpdateIdleWake(t *testing.T) {
	d, times := loadTestDomain(t, []int{0})
	// sampling rate is 1s for the 1ms fake latency, so the reuse window
	// opens at a wall delta above 2s
	effectiveRate := uint64(d.Tunables().SamplingRate().Microseconds())
	longGap := idleWakeMultiplier*effectiveRate + 1

	// a normal busy sample caches its load
	times.advance(0, 20000, 100000)
	load, err := d.Update()
	require.NoError(t, err)
	require.Equal(t, 80, load)

	// first sample after a long idle gap reuses the cached load once
	times.advance(0, longGap, longGap)
	load, err = d.Update()
	assert.NoError(t, err)
	assert.Equal(t, 80, load)

	// the copy was destructive: a second long gap computes the real load
	times.advance(0, longGap, longGap)
	load, err = d.Update()
	assert.NoError(t, err)
	assert.Equal(t, 0, load)
}

// TestUpdateIdleWakeZeroCache tests that a zero cached load is not reused
func TestUpdateIdleWakeZeroCache(t *testing.T) {
	d, times := loadTestDomain(t, []int{0})
	effectiveRate := uint64(d.Tunables().SamplingRate().Microseconds())
	longGap := idleWakeMultiplier*effectiveRate + 1

	// long gap right after reset: nothing cached, compute directly
	times.advance(0, longGap/2, longGap)
	load, err := d.Update()
	assert.NoError(t, err)
	assert.Equal(t, 50, load)
}

// TestUpdateIgnoreNice tests folding of low-priority user time into idle
func TestUpdateIgnoreNice(t *testing.T) {
	d, times := loadTestDomain(t, []int{0})
	require.NoError(t, d.Tunables().Set(AttrIgnoreNiceLoad, "1"))
	require.NoError(t, d.resetTrackers())

	// 40% idle plus 30% nice leaves 30% counted load
	times.advance(0, 40000, 100000)
	times.mu.Lock()
	times.nice[0] += 30000
	times.mu.Unlock()

	load, err := d.Update()
	assert.NoError(t, err)
	assert.Equal(t, 30, load)
}

// TestResetTrackers tests that reset discards history and cached loads
func TestResetTrackers(t *testing.T) {
	d, times := loadTestDomain(t, []int{0})

	times.advance(0, 0, 100000)
	load, err := d.Update()
	require.NoError(t, err)
	require.Equal(t, maximumLoad, load)
	require.NotZero(t, d.trackers[0].prevLoad)

	require.NoError(t, d.resetTrackers())
	assert.Zero(t, d.trackers[0].prevLoad)

	// the next sample starts from the fresh snapshot
	times.advance(0, 50000, 100000)
	load, err = d.Update()
	assert.NoError(t, err)
	assert.Equal(t, 50, load)
}
