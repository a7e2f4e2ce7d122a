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
// Description: governor lifecycle orchestration

// Package governor implements an adaptive closed-loop frequency scaling
// controller for policy domains.
package governor

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/atomic"

	"isula.org/freqgov/pkg/api"
	"isula.org/freqgov/pkg/common/log"
)

// Decider is the policy-specific decision callback of a governor variant.
type Decider interface {
	// Name identifies the variant
	Name() string
	// MinSamplingBaseline is the variant's floor for the sampling interval
	MinSamplingBaseline() time.Duration
	// Start runs variant specific start logic for a domain
	Start(d *PolicyDomain)
	// Decide runs one sampling cycle and returns the next sample delay.
	// Called with the domain timer lock held.
	Decide(d *PolicyDomain) time.Duration
}

// Governor binds policy domains, their shared tunables and the sampling
// machinery together, and talks to the frequency driver and the transition
// notifier.
type Governor struct {
	// mu guards the domain table, the shared tunables reference and the
	// per-domain lifecycle states
	mu sync.Mutex

	// perDomainTunables selects one tunables instance per domain instead
	// of one shared system-wide
	perDomainTunables bool
	shared            *Tunables

	domains map[string]*PolicyDomain
	// hooks maps processor ids to their armed domain; owned by the
	// governor for the whole runtime, not by any single domain
	hooks []atomic.Pointer[PolicyDomain]

	times    api.CPUTimes
	driver   api.FreqDriver
	notifier api.TransitionNotifier
	decider  Decider
}

// New returns a governor managing processors [0, numCPU).
func New(numCPU int, times api.CPUTimes, driver api.FreqDriver,
	notifier api.TransitionNotifier, decider Decider, perDomainTunables bool) (*Governor, error) {
	if numCPU <= 0 {
		return nil, errors.Wrapf(ErrInvalidArgument, "processor count %d", numCPU)
	}
	if times == nil || driver == nil || decider == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "missing collaborator")
	}
	return &Governor{
		perDomainTunables: perDomainTunables,
		domains:           make(map[string]*PolicyDomain),
		hooks:             make([]atomic.Pointer[PolicyDomain], numCPU),
		times:             times,
		driver:            driver,
		notifier:          notifier,
		decider:           decider,
	}, nil
}

// validateSpec checks a domain spec before any allocation
func (g *Governor) validateSpec(spec DomainSpec) error {
	if spec.Name == "" {
		return errors.Wrap(ErrInvalidArgument, "empty domain name")
	}
	if len(spec.CPUs) == 0 {
		return errors.Wrapf(ErrInvalidArgument, "domain %s has no processors", spec.Name)
	}
	for _, cpu := range spec.CPUs {
		if cpu < 0 || cpu >= len(g.hooks) {
			return errors.Wrapf(ErrInvalidArgument, "domain %s: processor %d out of range", spec.Name, cpu)
		}
	}
	if spec.MinKHz == 0 || spec.MaxKHz < spec.MinKHz {
		return errors.Wrapf(ErrInvalidArgument, "domain %s: bounds [%d, %d]", spec.Name, spec.MinKHz, spec.MaxKHz)
	}
	return nil
}

// Init allocates the domain state and attaches it to a tunables instance.
// The first attacher of an instance derives the sampling rates from the
// hardware transition latency. Failure rolls every allocation back.
func (g *Governor) Init(spec DomainSpec) error {
	if err := g.validateSpec(spec); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.domains[spec.Name]; ok {
		return errors.Wrapf(ErrAlreadyInitialized, "domain %s", spec.Name)
	}

	d := &PolicyDomain{
		Name:     spec.Name,
		CPUs:     append([]int(nil), spec.CPUs...),
		minKHz:   spec.MinKHz,
		maxKHz:   spec.MaxKHz,
		rateMult: 1,
		trackers: make(map[int]*cpuTracker, len(spec.CPUs)),
		work:     make(chan struct{}, 1),
		state:    StateInitialized,
	}
	for _, cpu := range spec.CPUs {
		if _, ok := d.trackers[cpu]; ok {
			return errors.Wrapf(ErrInvalidArgument, "domain %s: duplicate processor %d", spec.Name, cpu)
		}
		d.trackers[cpu] = &cpuTracker{}
	}
	d.gov = g

	if !g.perDomainTunables && g.shared != nil {
		d.tunables = g.shared
		d.tunables.attach(d)
	} else {
		latency, err := g.driver.TransitionLatency(spec.Name)
		if err != nil {
			// roll back: nothing was published, dropping d is enough
			return errors.Wrapf(err, "domain %s: failed to derive sampling rate", spec.Name)
		}
		t := newTunables(latency, g.decider.MinSamplingBaseline())
		t.attach(d)
		d.tunables = t
		if !g.perDomainTunables {
			g.shared = t
		}
	}

	g.domains[spec.Name] = d
	log.Infof("domain %s initialized: cpus=%v sampling_rate=%v", d.Name, d.CPUs, d.tunables.SamplingRate())
	return nil
}

// Start arms the sampling trigger of a domain. Per-processor snapshots are
// reset so the first sample recomputes the load from fresh deltas.
func (g *Governor) Start(name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	d, ok := g.domains[name]
	if !ok {
		return errors.Wrapf(ErrInvalidState, "domain %s not initialized", name)
	}
	if d.state != StateInitialized && d.state != StateStopped {
		return errors.Wrapf(ErrInvalidState, "domain %s is %s", name, d.state)
	}

	cur, err := g.driver.CurrentFrequency(name)
	if err != nil {
		return errors.Wrapf(err, "domain %s: unknown current frequency", name)
	}
	if cur == 0 {
		return errors.Wrapf(ErrInvalidState, "domain %s reports zero frequency", name)
	}
	d.curKHz = cur

	d.isShared = len(d.CPUs) > 1
	d.rateMult = 1
	if err := d.resetTrackers(); err != nil {
		return errors.Wrapf(err, "domain %s: failed to snapshot processors", name)
	}

	g.decider.Start(d)

	// arm the trigger before publishing the hooks
	d.sampleDelay.Store(int64(d.tunables.SamplingRate()))
	d.lastSampleTime.Store(0)
	d.workCount.Store(0)
	d.workInProgress.Store(false)

	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.wg.Add(1)
	go d.runWorker(ctx)

	for _, cpu := range d.CPUs {
		g.hooks[cpu].Store(d)
	}
	d.state = StateStarted
	log.Infof("domain %s started at %d kHz", name, cur)
	return nil
}

// Stop disarms the sampling trigger and synchronously cancels the slow path.
// When it returns, no further frequency change for the domain can occur.
func (g *Governor) Stop(name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	d, ok := g.domains[name]
	if !ok {
		return errors.Wrapf(ErrInvalidState, "domain %s not initialized", name)
	}
	if d.state != StateStarted {
		return errors.Wrapf(ErrInvalidState, "domain %s is %s", name, d.state)
	}

	// retract the hooks first so no new work can be queued
	for _, cpu := range d.CPUs {
		g.hooks[cpu].Store(nil)
	}
	d.cancel()
	d.wg.Wait()
	d.cancel = nil

	// a racer past the hook check may have left a token behind
	select {
	case <-d.work:
	default:
	}
	d.workCount.Store(0)
	d.workInProgress.Store(false)

	d.state = StateStopped
	log.Infof("domain %s stopped", name)
	return nil
}

// Limits re-clamps the current frequency into new bounds immediately and
// forces the next sample to be taken without delay.
func (g *Governor) Limits(name string, minKHz, maxKHz uint64) error {
	if minKHz == 0 || maxKHz < minKHz {
		return errors.Wrapf(ErrInvalidArgument, "bounds [%d, %d]", minKHz, maxKHz)
	}
	g.mu.Lock()
	d, ok := g.domains[name]
	g.mu.Unlock()
	if !ok {
		return errors.Wrapf(ErrInvalidState, "domain %s not initialized", name)
	}

	d.timerMu.Lock()
	d.minKHz = minKHz
	d.maxKHz = maxKHz
	if d.maxKHz < d.curKHz {
		g.target(d, d.maxKHz, api.RelationAtMost)
	} else if d.minKHz > d.curKHz {
		g.target(d, d.minKHz, api.RelationAtLeast)
	}
	d.sampleDelay.Store(0)
	d.timerMu.Unlock()
	return nil
}

// Exit detaches the domain from its tunables, destroying the instance when
// the last owner leaves, and frees the per-processor state.
func (g *Governor) Exit(name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	d, ok := g.domains[name]
	if !ok {
		return errors.Wrapf(ErrInvalidState, "domain %s not initialized", name)
	}
	if d.state == StateStarted {
		return errors.Wrapf(ErrInvalidState, "domain %s is still started", name)
	}
	if d.tunables == nil {
		// a domain without tunables cannot exist past init
		log.Errorf("fatal: domain %s has no tunables reference", name)
		return errors.Wrapf(ErrInvalidState, "domain %s has no tunables", name)
	}

	if count := d.tunables.detach(d); count == 0 {
		if g.shared == d.tunables {
			g.shared = nil
		}
	}
	d.tunables = nil
	d.trackers = nil
	d.state = StateExited
	delete(g.domains, name)
	log.Infof("domain %s exited", name)
	return nil
}

// Domain returns the named policy domain, or nil when it is not initialized
func (g *Governor) Domain(name string) *PolicyDomain {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.domains[name]
}

// target performs one frequency change through the driver and notifies the
// statistics collaborator on success. Called with the domain timer lock held.
func (g *Governor) target(d *PolicyDomain, targetKHz uint64, rel api.Relation) {
	if targetKHz < d.minKHz {
		targetKHz = d.minKHz
	}
	if targetKHz > d.maxKHz {
		targetKHz = d.maxKHz
	}
	newKHz, err := g.driver.SetFrequency(d.Name, targetKHz, rel)
	if err != nil {
		log.Errorf("domain %s: failed to set %d kHz (%s): %v", d.Name, targetKHz, rel, err)
		return
	}
	if newKHz == d.curKHz {
		return
	}
	old := d.curKHz
	d.curKHz = newKHz
	if g.notifier != nil {
		g.notifier.NotifyTransition(api.TransitionEvent{
			ID:     uuid.New().String(),
			Domain: d.Name,
			OldKHz: old,
			NewKHz: newKHz,
			Time:   time.Now(),
		})
	}
}
