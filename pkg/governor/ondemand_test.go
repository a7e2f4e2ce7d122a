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
// Description: This file tests the demand-driven decision policy

package governor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"isula.org/freqgov/pkg/api"
)

// onDemandSetup starts a one-processor domain governed by the demand policy
func onDemandSetup(t *testing.T) (*fakeDriver, *fakeTimes, *PolicyDomain, *OnDemand) {
	driver := newFakeDriver(1000000)
	decider := NewOnDemand()
	g, times, _ := newTestGovernor(t, 2, driver, decider, true)
	require.NoError(t, g.Init(DomainSpec{Name: "policy0", CPUs: []int{0}, MinKHz: 800000, MaxKHz: 2000000}))
	require.NoError(t, g.Start("policy0"))
	t.Cleanup(func() {
		assert.NoError(t, g.Stop("policy0"))
		assert.NoError(t, g.Exit("policy0"))
	})
	return driver, times, g.Domain("policy0"), decider
}

// TestOnDemandHighLoad tests the jump to the maximum frequency
func TestOnDemandHighLoad(t *testing.T) {
	driver, times, d, decider := onDemandSetup(t)
	require.NoError(t, d.Tunables().Set(AttrSamplingDownFactor, "5"))

	// fully busy interval
	times.advance(0, 0, 100000)
	delay := decider.Decide(d)

	call := driver.lastCall()
	assert.Equal(t, uint64(2000000), call.target)
	assert.Equal(t, api.RelationAtMost, call.rel)
	assert.Equal(t, uint64(2000000), d.CurKHz())
	// high load stretches the next delay by the sampling down factor
	assert.Equal(t, uint32(5), d.rateMult)
	assert.Equal(t, 5*d.Tunables().SamplingRate(), delay)

	// already at the maximum: no further driver call
	calls := driver.callCount()
	times.advance(0, 0, 100000)
	decider.Decide(d)
	assert.Equal(t, calls, driver.callCount())
}

// TestOnDemandProportional tests scaling between the bounds below the threshold
func TestOnDemandProportional(t *testing.T) {
	driver, times, d, decider := onDemandSetup(t)

	// 50% busy: halfway between the bounds
	times.advance(0, 50000, 100000)
	delay := decider.Decide(d)

	call := driver.lastCall()
	assert.Equal(t, uint64(1400000), call.target)
	assert.Equal(t, api.RelationAtLeast, call.rel)
	assert.Equal(t, uint32(1), d.rateMult)
	assert.Equal(t, d.Tunables().SamplingRate(), delay)

	// idle interval: down to the minimum
	times.advance(0, 100000, 100000)
	decider.Decide(d)
	assert.Equal(t, uint64(800000), d.CurKHz())
}

// TestOnDemandRateMultReset tests that leaving high load restores the rate
func TestOnDemandRateMultReset(t *testing.T) {
	_, times, d, decider := onDemandSetup(t)
	require.NoError(t, d.Tunables().Set(AttrSamplingDownFactor, "10"))

	times.advance(0, 0, 100000)
	decider.Decide(d)
	require.Equal(t, uint32(10), d.rateMult)

	times.advance(0, 90000, 100000)
	delay := decider.Decide(d)
	assert.Equal(t, uint32(1), d.rateMult)
	assert.Equal(t, d.Tunables().SamplingRate(), delay)
}

// TestOnDemandThresholdBoundary tests the threshold comparison edge
func TestOnDemandThresholdBoundary(t *testing.T) {
	driver, times, d, decider := onDemandSetup(t)

	// exactly at the threshold counts as high load
	times.advance(0, 20000, 100000)
	decider.Decide(d)
	assert.Equal(t, uint64(2000000), d.CurKHz())

	// one point below scales proportionally
	require.NoError(t, d.Tunables().Set(AttrUpThreshold, "81"))
	times.advance(0, 20000, 100000)
	decider.Decide(d)
	call := driver.lastCall()
	assert.Equal(t, uint64(800000+1200000*80/100), call.target)
	assert.Equal(t, api.RelationAtLeast, call.rel)
}

// TestOnDemandIdentity tests the variant identification
func TestOnDemandIdentity(t *testing.T) {
	o := NewOnDemand()
	assert.Equal(t, "ondemand", o.Name())
	assert.Equal(t, 20*time.Millisecond, o.MinSamplingBaseline())
}
