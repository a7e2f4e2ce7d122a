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
// Description: demand-driven decision policy

package governor

import (
	"time"

	"isula.org/freqgov/pkg/api"
	"isula.org/freqgov/pkg/common/log"
)

// onDemandBaseline is the floor of the sampling interval for the
// demand-driven policy, regardless of how fast the hardware can switch.
const onDemandBaseline = 20 * time.Millisecond

// OnDemand scales to the maximum frequency when the domain load crosses the
// up threshold and proportionally between the bounds below it. While running
// at high load it stretches the sampling interval by the sampling down
// factor to avoid re-deciding an already saturated domain.
type OnDemand struct{}

// NewOnDemand returns the demand-driven decision policy
func NewOnDemand() *OnDemand { return &OnDemand{} }

// Name identifies the variant
func (o *OnDemand) Name() string { return "ondemand" }

// MinSamplingBaseline is the variant's floor for the sampling interval
func (o *OnDemand) MinSamplingBaseline() time.Duration { return onDemandBaseline }

// Start has nothing variant specific to prepare for this policy
func (o *OnDemand) Start(d *PolicyDomain) {}

// Decide runs one decision cycle: recompute the load, pick a target
// frequency and return the delay until the next sample. Called with the
// domain timer lock held.
func (o *OnDemand) Decide(d *PolicyDomain) time.Duration {
	t := d.Tunables()
	load, err := d.Update()
	if err != nil {
		log.DropError(err)
	}

	if load >= t.UpThreshold() {
		// saturated: jump to the top and slow the sampling down
		d.rateMult = uint32(t.SamplingDownFactor())
		if d.CurKHz() < d.MaxKHz() {
			d.gov.target(d, d.MaxKHz(), api.RelationAtMost)
		}
	} else {
		d.rateMult = 1
		span := d.MaxKHz() - d.MinKHz()
		want := d.MinKHz() + span*uint64(load)/maximumLoad
		if want != d.CurKHz() {
			d.gov.target(d, want, api.RelationAtLeast)
		}
	}

	return t.SamplingRate() * time.Duration(d.rateMult)
}
