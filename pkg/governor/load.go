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
// Date: 2023-05-10
// Description: This file is used for computing the domain load

package governor

import (
	"github.com/hashicorp/go-multierror"

	"isula.org/freqgov/pkg/common/log"
)

const (
	maximumLoad = 100
	// idleWakeMultiplier marks the wall-time gap above which a sample is
	// treated as the first one after a long idle period
	idleWakeMultiplier = 2
)

// Update recomputes the load of every processor in the domain from the
// counter deltas since the previous snapshot and returns the maximum,
// a percentage in [0, 100]. Called with timerMu held.
func (d *PolicyDomain) Update() (int, error) {
	var (
		t          = d.tunables
		ignoreNice = t.IgnoreNiceLoad()
		ioBusy     = t.IOIsBusy()
		maxLoad    uint32
		errs       error
	)
	// the rate multiplier also stretches the wake-up-from-idle detection
	// window, keeping it conservative while sampling is slowed down
	effectiveRate := uint64(t.SamplingRate().Microseconds()) * uint64(d.rateMult)

	for _, cpu := range d.CPUs {
		tracker := d.trackers[cpu]

		curIdle, curWall, err := d.gov.times.IdleTime(cpu, ioBusy)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}

		wallDelta := curWall - tracker.prevWall
		tracker.prevWall = curWall

		idleDelta := curIdle - tracker.prevIdle
		tracker.prevIdle = curIdle

		if ignoreNice {
			curNice, err := d.gov.times.NiceTime(cpu)
			if err != nil {
				errs = multierror.Append(errs, err)
				continue
			}
			idleDelta += curNice - tracker.prevNice
			tracker.prevNice = curNice
		}

		// counters not advanced or gone backwards, nothing to compute
		if wallDelta == 0 || wallDelta < idleDelta {
			continue
		}

		var load uint32
		if wallDelta > idleWakeMultiplier*effectiveRate && tracker.prevLoad != 0 {
			// A processor waking after a long idle period would show
			// near-zero load regardless of real demand, so reuse the
			// cached load for this one sample. The destructive copy
			// makes the reuse happen only once per wake event.
			load = tracker.prevLoad
			tracker.prevLoad = 0
		} else {
			load = uint32(maximumLoad * (wallDelta - idleDelta) / wallDelta)
			tracker.prevLoad = load
		}

		if load > maxLoad {
			maxLoad = load
		}
	}

	if errs != nil {
		log.Warnf("domain %s load update incomplete: %v", d.Name, errs)
	}
	return int(maxLoad), errs
}

// resetTrackers reloads every snapshot from the counter source and clears the
// cached loads so the first sample after start recomputes from fresh deltas.
func (d *PolicyDomain) resetTrackers() error {
	var (
		ignoreNice = d.tunables.IgnoreNiceLoad()
		ioBusy     = d.tunables.IOIsBusy()
	)
	for _, cpu := range d.CPUs {
		tracker := d.trackers[cpu]
		idle, wall, err := d.gov.times.IdleTime(cpu, ioBusy)
		if err != nil {
			return err
		}
		tracker.prevIdle = idle
		tracker.prevWall = wall
		tracker.prevLoad = 0
		if ignoreNice {
			if tracker.prevNice, err = d.gov.times.NiceTime(cpu); err != nil {
				return err
			}
		}
	}
	return nil
}
