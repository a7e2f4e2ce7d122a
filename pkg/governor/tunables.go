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
// Description: usage-counted tunables shared by one or more policy domains

package governor

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/atomic"

	"isula.org/freqgov/pkg/common/util"
)

// attribute names of the tunables property store
const (
	AttrSamplingRate       = "sampling_rate"
	AttrSamplingRateMin    = "sampling_rate_min"
	AttrIgnoreNiceLoad     = "ignore_nice_load"
	AttrIOIsBusy           = "io_is_busy"
	AttrUpThreshold        = "up_threshold"
	AttrSamplingDownFactor = "sampling_down_factor"
)

const (
	// multipliers bringing the sampling interval and the hardware
	// transition latency together
	minLatencyMultiplier = 20
	latencyMultiplier    = 1000

	defaultUpThreshold        = 80
	defaultSamplingDownFactor = 1

	minUpThreshold        = 1
	maxUpThreshold        = 100
	minSamplingDownFactor = 1
	maxSamplingDownFactor = 100000
)

// attribute is one named property with typed accessors. A store callback
// returns the domains whose sampling deadline must be recomputed, which the
// caller does after dropping the update lock.
type attribute struct {
	show  func() string
	store func(value string) ([]*PolicyDomain, error)
}

// Tunables is the adjustable configuration shared by one or more policy
// domains. Instances are usage counted; the last detaching domain destroys
// the instance. Values read on the sampling path are atomics so attribute
// writes never block a sample.
type Tunables struct {
	// mu is the set-wide update lock guarding the member list and the
	// usage count. It is never held while waiting on a domain timer lock.
	mu         sync.Mutex
	usageCount int
	domains    []*PolicyDomain

	// minSamplingRate is derived once at first attach and never decreases
	minSamplingRate time.Duration

	samplingRate       atomic.Int64 // ns
	ignoreNiceLoad     atomic.Bool
	ioIsBusy           atomic.Bool
	upThreshold        atomic.Int64
	samplingDownFactor atomic.Int64

	attrs map[string]*attribute
}

// newTunables derives the initial sampling rates from the hardware
// transition latency and the governor variant's baseline.
func newTunables(latency time.Duration, baseline time.Duration) *Tunables {
	if latency < time.Microsecond {
		latency = time.Microsecond
	}
	min := baseline
	if m := latency * minLatencyMultiplier; m > min {
		min = m
	}
	rate := min
	if r := latency * latencyMultiplier; r > rate {
		rate = r
	}

	t := &Tunables{minSamplingRate: min}
	t.samplingRate.Store(int64(rate))
	t.upThreshold.Store(defaultUpThreshold)
	t.samplingDownFactor.Store(defaultSamplingDownFactor)
	t.initAttrs()
	return t
}

// SamplingRate returns the current sampling interval
func (t *Tunables) SamplingRate() time.Duration {
	return time.Duration(t.samplingRate.Load())
}

// MinSamplingRate returns the lower bound of the sampling interval
func (t *Tunables) MinSamplingRate() time.Duration {
	return t.minSamplingRate
}

// IgnoreNiceLoad reports whether low-priority user time counts as idle
func (t *Tunables) IgnoreNiceLoad() bool {
	return t.ignoreNiceLoad.Load()
}

// IOIsBusy reports whether waiting on I/O counts as busy time
func (t *Tunables) IOIsBusy() bool {
	return t.ioIsBusy.Load()
}

// UpThreshold returns the load percentage above which the policy goes to max
func (t *Tunables) UpThreshold() int {
	return int(t.upThreshold.Load())
}

// SamplingDownFactor returns the interval stretch factor applied at high load
func (t *Tunables) SamplingDownFactor() int {
	return int(t.samplingDownFactor.Load())
}

// attach registers a domain and increments the usage count
func (t *Tunables) attach(d *PolicyDomain) {
	t.mu.Lock()
	t.usageCount++
	t.domains = append(t.domains, d)
	t.mu.Unlock()
}

// detach unregisters a domain and returns the remaining usage count. A zero
// return means the instance is dead and must not be used again.
func (t *Tunables) detach(d *PolicyDomain) int {
	t.mu.Lock()
	for i, member := range t.domains {
		if member == d {
			t.domains = append(t.domains[:i], t.domains[i+1:]...)
			break
		}
	}
	t.usageCount--
	count := t.usageCount
	t.mu.Unlock()
	return count
}

// members returns a snapshot of the registered domains
func (t *Tunables) members() []*PolicyDomain {
	snapshot := make([]*PolicyDomain, len(t.domains))
	copy(snapshot, t.domains)
	return snapshot
}

// SetSamplingRate clamps the rate to the minimum and stores it. A decrease
// must take effect before the stale deadline fires, so the sampling deadline
// of every registered domain is recomputed afterwards.
func (t *Tunables) SetSamplingRate(rate time.Duration) error {
	if rate <= 0 {
		return errors.Wrapf(ErrInvalidArgument, "sampling rate %v", rate)
	}
	t.mu.Lock()
	if t.usageCount == 0 {
		t.mu.Unlock()
		return ErrBusy
	}
	resets, err := t.storeSamplingRate(rate)
	t.mu.Unlock()
	if err != nil {
		return err
	}
	for _, d := range resets {
		d.resetSampleDelay()
	}
	return nil
}

// storeSamplingRate is the locked part of SetSamplingRate
func (t *Tunables) storeSamplingRate(rate time.Duration) ([]*PolicyDomain, error) {
	if rate < t.minSamplingRate {
		rate = t.minSamplingRate
	}
	t.samplingRate.Store(int64(rate))
	return t.members(), nil
}

// Get reads one named attribute. Reads fail with ErrBusy while no domain is
// attached, mirroring an attribute surface torn down with its last owner.
func (t *Tunables) Get(name string) (string, error) {
	attr, ok := t.attrs[name]
	if !ok {
		return "", errors.Wrapf(ErrInvalidArgument, "unknown attribute %q", name)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.usageCount == 0 {
		return "", ErrBusy
	}
	return attr.show(), nil
}

// Set writes one named attribute. A malformed value fails with
// ErrInvalidArgument and leaves the stored value unchanged.
func (t *Tunables) Set(name, value string) error {
	attr, ok := t.attrs[name]
	if !ok || attr.store == nil {
		return errors.Wrapf(ErrInvalidArgument, "unknown or read-only attribute %q", name)
	}
	t.mu.Lock()
	if t.usageCount == 0 {
		t.mu.Unlock()
		return ErrBusy
	}
	resets, err := attr.store(value)
	t.mu.Unlock()
	if err != nil {
		return err
	}
	for _, d := range resets {
		d.resetSampleDelay()
	}
	return nil
}

// Attrs returns the attribute names of the property store
func (t *Tunables) Attrs() []string {
	names := make([]string, 0, len(t.attrs))
	for name := range t.attrs {
		names = append(names, name)
	}
	return names
}

// initAttrs builds the named property store. The attribute surface speaks
// integer microseconds and 0/1 booleans.
func (t *Tunables) initAttrs() {
	boolStore := func(target *atomic.Bool) func(string) ([]*PolicyDomain, error) {
		return func(value string) ([]*PolicyDomain, error) {
			b, err := util.ParseBool(value)
			if err != nil {
				return nil, errors.Wrapf(ErrInvalidArgument, "%v", err)
			}
			target.Store(b)
			return nil, nil
		}
	}
	rangeStore := func(target *atomic.Int64, lo, hi int64) func(string) ([]*PolicyDomain, error) {
		return func(value string) ([]*PolicyDomain, error) {
			n, err := util.ParseInt64(value)
			if err != nil {
				return nil, errors.Wrapf(ErrInvalidArgument, "%v", err)
			}
			if n < lo || n > hi {
				return nil, errors.Wrapf(ErrInvalidArgument, "value %d out of range [%d, %d]", n, lo, hi)
			}
			target.Store(n)
			return nil, nil
		}
	}

	t.attrs = map[string]*attribute{
		AttrSamplingRate: {
			show: func() string {
				return util.FormatInt64(t.SamplingRate().Microseconds())
			},
			store: func(value string) ([]*PolicyDomain, error) {
				us, err := util.ParseInt64(value)
				if err != nil {
					return nil, errors.Wrapf(ErrInvalidArgument, "%v", err)
				}
				if us <= 0 {
					return nil, errors.Wrapf(ErrInvalidArgument, "sampling rate %dus", us)
				}
				return t.storeSamplingRate(time.Duration(us) * time.Microsecond)
			},
		},
		AttrSamplingRateMin: {
			show: func() string {
				return util.FormatInt64(t.minSamplingRate.Microseconds())
			},
		},
		AttrIgnoreNiceLoad: {
			show:  func() string { return util.FormatBool(t.ignoreNiceLoad.Load()) },
			store: boolStore(&t.ignoreNiceLoad),
		},
		AttrIOIsBusy: {
			show:  func() string { return util.FormatBool(t.ioIsBusy.Load()) },
			store: boolStore(&t.ioIsBusy),
		},
		AttrUpThreshold: {
			show:  func() string { return util.FormatInt64(t.upThreshold.Load()) },
			store: rangeStore(&t.upThreshold, minUpThreshold, maxUpThreshold),
		},
		AttrSamplingDownFactor: {
			show:  func() string { return util.FormatInt64(t.samplingDownFactor.Load()) },
			store: rangeStore(&t.samplingDownFactor, minSamplingDownFactor, maxSamplingDownFactor),
		},
	}
}
