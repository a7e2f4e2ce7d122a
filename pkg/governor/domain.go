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
// Description: policy domain and per-cpu load tracking state

package governor

import (
	"context"
	"sync"

	"go.uber.org/atomic"
)

// State is the lifecycle state of a policy domain
type State int

// lifecycle states of a policy domain
const (
	StateUninitialized State = iota
	StateInitialized
	StateStarted
	StateStopped
	StateExited
)

// String returns the human readable state name
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitialized:
		return "initialized"
	case StateStarted:
		return "started"
	case StateStopped:
		return "stopped"
	case StateExited:
		return "exited"
	default:
		return "unknown"
	}
}

// cpuTracker keeps the previous time snapshot and cached load of one
// processor. One tracker exists per processor of the domain, online or not,
// from domain init to domain exit.
type cpuTracker struct {
	prevIdle uint64
	prevWall uint64
	prevNice uint64
	// prevLoad caches the last computed load; zero forces recomputation
	prevLoad uint32
}

// DomainSpec describes one policy domain to be governed.
type DomainSpec struct {
	// Name is the unique domain identifier, e.g. the sysfs policy name
	Name string
	// CPUs are the processors sharing the domain clock
	CPUs []int
	// MinKHz and MaxKHz bound the frequencies the policy may pick
	MinKHz uint64
	MaxKHz uint64
}

// PolicyDomain is the sampling state of one set of processors sharing a
// clock. The fast path touches only the atomics; everything else is guarded
// by timerMu or by the governor lock.
type PolicyDomain struct {
	// Name is the unique domain identifier
	Name string
	// CPUs are the processors sharing the domain clock
	CPUs []int

	// frequency bounds and current frequency, guarded by timerMu
	minKHz uint64
	maxKHz uint64
	curKHz uint64

	gov      *Governor
	tunables *Tunables

	// timerMu serializes the slow path, Limits and sampling rate resets
	timerMu sync.Mutex
	// rateMult temporarily stretches the sampling interval, guarded by timerMu
	rateMult uint32

	// fast path state
	sampleDelay    atomic.Int64 // ns
	lastSampleTime atomic.Int64 // ns
	workInProgress atomic.Bool
	workCount      atomic.Int32
	isShared       bool

	trackers map[int]*cpuTracker

	// work is the single-slot escalation queue feeding the slow path
	work   chan struct{}
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// state is guarded by the governor lock
	state State
}

// MinKHz returns the lower frequency bound of the domain
func (d *PolicyDomain) MinKHz() uint64 { return d.minKHz }

// MaxKHz returns the upper frequency bound of the domain
func (d *PolicyDomain) MaxKHz() uint64 { return d.maxKHz }

// CurKHz returns the frequency the domain currently runs at
func (d *PolicyDomain) CurKHz() uint64 { return d.curKHz }

// Tunables returns the tunables instance the domain is attached to
func (d *PolicyDomain) Tunables() *Tunables { return d.tunables }

// resetSampleDelay forces the next fast-path check to escalate immediately.
// Taken under timerMu so it cannot interleave with a slow-path cycle.
func (d *PolicyDomain) resetSampleDelay() {
	d.timerMu.Lock()
	d.sampleDelay.Store(0)
	d.timerMu.Unlock()
}
