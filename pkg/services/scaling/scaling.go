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
// Date: 2023-05-16
// Description: frequency scaling service (adaptive per-domain governing)

// Package scaling governs the frequency of every discovered policy domain.
package scaling

import (
	"context"
	"runtime"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"k8s.io/apimachinery/pkg/util/wait"

	"isula.org/freqgov/pkg/common/log"
	"isula.org/freqgov/pkg/governor"
	"isula.org/freqgov/pkg/lib/cpufreq"
	"isula.org/freqgov/pkg/lib/cputime"
	"isula.org/freqgov/pkg/metrics"
	"isula.org/freqgov/pkg/services"
	"isula.org/freqgov/pkg/services/helper"
)

const moduleName = "scaling"

// defaultTickMs is the utilization update period in milliseconds
const defaultTickMs = 10

func init() {
	services.Register(moduleName, func() interface{} {
		return NewScaling()
	})
}

// Config is the external configuration of the scaling service
type Config struct {
	// CPUFreqRoot overrides the sysfs policy tree location
	CPUFreqRoot string `json:"cpufreqRoot,omitempty"`
	// ProcStatFile overrides the processor time counter source
	ProcStatFile string `json:"procStatFile,omitempty"`
	// TickMs is the utilization update period in milliseconds
	TickMs int64 `json:"tickMs,omitempty"`
	// PerDomainTunables gives each domain its own tunables instance
	PerDomainTunables bool `json:"perDomainTunables,omitempty"`
	// Tunables holds attribute overrides applied after start, for example
	// {"up_threshold": "90", "io_is_busy": "1"}
	Tunables map[string]string `json:"tunables,omitempty"`
}

// Validate checks configured values for consistency
func (c *Config) Validate() error {
	if c.TickMs < 0 {
		return errors.Errorf("negative tick period %d", c.TickMs)
	}
	return nil
}

// Scaling drives one adaptive governor over all policy domains found in the
// sysfs tree, feeding it utilization updates on a fixed tick.
type Scaling struct {
	helper.ServiceBase
	config Config

	driver *cpufreq.SysfsDriver
	gov    *governor.Governor
	// cpus are all processors of the governed domains
	cpus []int
	// domains are the names of the governed domains, in discovery order
	domains []string
}

// NewScaling creates a scaling service object
func NewScaling() *Scaling {
	return &Scaling{
		ServiceBase: *helper.NewServiceBase(moduleName),
		config: Config{
			TickMs: defaultTickMs,
		},
	}
}

// SetConfig obtains the service configuration through the handler
func (s *Scaling) SetConfig(f helper.ConfigHandler) error {
	if f == nil {
		return errors.New("configuration handler is empty")
	}
	var cfg = s.config
	if err := f(moduleName, &cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.config = cfg
	return nil
}

// GetConfig returns the running configuration
func (s *Scaling) GetConfig() interface{} {
	return &s.config
}

// IsRunner confirms the service runs in the background
func (s *Scaling) IsRunner() bool {
	return true
}

// PreStart discovers the policy domains, builds the governor and starts
// governing every domain.
func (s *Scaling) PreStart() error {
	if s.config.CPUFreqRoot != "" {
		s.driver = cpufreq.NewSysfsDriverWithRoot(s.config.CPUFreqRoot)
	} else {
		s.driver = cpufreq.NewSysfsDriver()
	}
	var times *cputime.Source
	if s.config.ProcStatFile != "" {
		times = cputime.NewSourceWithPath(s.config.ProcStatFile)
	} else {
		times = cputime.NewSource()
	}

	infos, err := s.driver.ListDomains()
	if err != nil {
		return errors.Wrap(err, "failed to discover policy domains")
	}
	if len(infos) == 0 {
		return errors.New("no policy domain found")
	}

	gov, err := governor.New(runtime.NumCPU(), times, s.driver, metrics.NewNotifier(),
		governor.NewOnDemand(), s.config.PerDomainTunables)
	if err != nil {
		return err
	}

	started := make([]string, 0, len(infos))
	abort := func(cause error) error {
		for _, name := range started {
			log.DropError(gov.Stop(name))
		}
		for _, name := range s.domains {
			log.DropError(gov.Exit(name))
		}
		s.domains = nil
		s.cpus = nil
		return cause
	}

	for _, info := range infos {
		spec := governor.DomainSpec{
			Name:   info.Name,
			CPUs:   info.CPUs,
			MinKHz: info.MinKHz,
			MaxKHz: info.MaxKHz,
		}
		if err := gov.Init(spec); err != nil {
			return abort(errors.Wrapf(err, "failed to init domain %s", info.Name))
		}
		s.domains = append(s.domains, info.Name)
		if err := gov.Start(info.Name); err != nil {
			return abort(errors.Wrapf(err, "failed to start domain %s", info.Name))
		}
		started = append(started, info.Name)
		s.cpus = append(s.cpus, info.CPUs...)
	}

	for _, name := range s.domains {
		d := gov.Domain(name)
		for attr, value := range s.config.Tunables {
			if err := d.Tunables().Set(attr, value); err != nil {
				return abort(errors.Wrapf(err, "failed to set %s=%s on domain %s", attr, value, name))
			}
		}
		if !s.config.PerDomainTunables {
			// one shared instance, configuring the first domain covers all
			break
		}
	}

	s.gov = gov
	return nil
}

// Run feeds the governor utilization updates on the configured tick until
// the context is cancelled.
func (s *Scaling) Run(ctx context.Context) {
	tick := time.Duration(s.config.TickMs) * time.Millisecond
	if tick <= 0 {
		tick = defaultTickMs * time.Millisecond
	}
	wait.Until(
		func() {
			now := time.Now().UnixNano()
			for _, cpu := range s.cpus {
				s.gov.OnUtilUpdate(cpu, now)
			}
		},
		tick,
		ctx.Done())
}

// Stop stops governing and releases every domain
func (s *Scaling) Stop() error {
	if s.gov == nil {
		return nil
	}
	var errs error
	for _, name := range s.domains {
		if err := s.gov.Stop(name); err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		if err := s.gov.Exit(name); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	s.domains = nil
	s.cpus = nil
	s.gov = nil
	return errs
}

// Terminate has nothing to clean up beyond Stop
func (s *Scaling) Terminate() error {
	return nil
}
