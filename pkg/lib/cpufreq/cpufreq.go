// Copyright (c) Huawei Technologies Co., Ltd. 2023. All rights reserved.
// freqgov licensed under the Mulan PSL v2.
// You can use this software according to the terms and conditions of the Mulan PSL v2.
// You may obtain a copy of Mulan PSL v2 at:
//     http://license.coscl.org.cn/MulanPSL2
// THIS SOFTWARE IS PROVIDED ON AN "AS IS" BASIS, WITHOUT WARRANTIES OF ANY KIND, EITHER EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO NON-INFRINGEMENT, MERCHANTABILITY OR FIT FOR A PARTICULAR
// PURPOSE.
// See the Mulan PSL v2 for more details.
// Author: hanchao
// Date: 2023-05-10
// Description: sysfs based frequency driver for policy domains

// Package cpufreq accesses the sysfs cpufreq interface of policy domains
package cpufreq

import (
	"sort"
	"strings"
	"time"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/pkg/errors"

	"isula.org/freqgov/pkg/api"
	"isula.org/freqgov/pkg/common/constant"
	"isula.org/freqgov/pkg/common/util"
)

// sysfs attribute file names of one policy directory
const (
	setSpeedFile       = "scaling_setspeed"
	curFreqFile        = "scaling_cur_freq"
	minFreqFile        = "scaling_min_freq"
	maxFreqFile        = "scaling_max_freq"
	availableFreqsFile = "scaling_available_frequencies"
	relatedCPUsFile    = "related_cpus"
	latencyFile        = "cpuinfo_transition_latency"
)

// DomainInfo describes one discovered policy domain
type DomainInfo struct {
	// Name is the policy directory name, e.g. "policy0"
	Name string
	// CPUs are the processors sharing the domain clock
	CPUs []int
	// MinKHz and MaxKHz are the current scaling bounds
	MinKHz uint64
	MaxKHz uint64
}

// SysfsDriver changes domain frequencies through the sysfs cpufreq interface.
type SysfsDriver struct {
	root string
}

// NewSysfsDriver returns a driver rooted at the default cpufreq directory
func NewSysfsDriver() *SysfsDriver {
	return &SysfsDriver{root: constant.DefaultCPUFreqRoot}
}

// NewSysfsDriverWithRoot returns a driver rooted at the given directory
func NewSysfsDriverWithRoot(root string) *SysfsDriver {
	return &SysfsDriver{root: root}
}

// attrPath joins the policy directory and attribute name below the root,
// refusing paths that escape it
func (d *SysfsDriver) attrPath(domain, attr string) (string, error) {
	path, err := securejoin.SecureJoin(d.root, strings.Join([]string{domain, attr}, "/"))
	if err != nil {
		return "", errors.Wrapf(err, "invalid attribute path %s/%s", domain, attr)
	}
	return path, nil
}

func (d *SysfsDriver) readAttr(domain, attr string) (string, error) {
	path, err := d.attrPath(domain, attr)
	if err != nil {
		return "", err
	}
	data, err := util.ReadSmallFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read %s of domain %s", attr, domain)
	}
	return strings.TrimSpace(string(data)), nil
}

func (d *SysfsDriver) readUintAttr(domain, attr string) (uint64, error) {
	raw, err := d.readAttr(domain, attr)
	if err != nil {
		return 0, err
	}
	value, err := util.ParseUint64(raw)
	if err != nil {
		return 0, errors.Wrapf(err, "malformed %s of domain %s", attr, domain)
	}
	return value, nil
}

func (d *SysfsDriver) writeAttr(domain, attr, value string) error {
	path, err := d.attrPath(domain, attr)
	if err != nil {
		return err
	}
	if err := util.WriteFile(path, value); err != nil {
		return errors.Wrapf(err, "failed to write %s of domain %s", attr, domain)
	}
	return nil
}

// AvailableFrequencies returns the supported frequency table in ascending
// order. Not every driver exports a table; an absent file yields an empty
// table and the caller uses the raw target.
func (d *SysfsDriver) AvailableFrequencies(domain string) ([]uint64, error) {
	raw, err := d.readAttr(domain, availableFreqsFile)
	if err != nil {
		return nil, err
	}
	var freqs []uint64
	for _, field := range strings.Fields(raw) {
		f, err := util.ParseUint64(field)
		if err != nil {
			return nil, errors.Wrapf(err, "malformed frequency table of domain %s", domain)
		}
		freqs = append(freqs, f)
	}
	sort.Slice(freqs, func(i, j int) bool { return freqs[i] < freqs[j] })
	return freqs, nil
}

// resolveTarget picks the table entry matching the target per relation
func resolveTarget(freqs []uint64, target uint64, rel api.Relation) uint64 {
	if len(freqs) == 0 {
		return target
	}
	switch rel {
	case api.RelationAtLeast:
		for _, f := range freqs {
			if f >= target {
				return f
			}
		}
		return freqs[len(freqs)-1]
	case api.RelationAtMost:
		for i := len(freqs) - 1; i >= 0; i-- {
			if freqs[i] <= target {
				return freqs[i]
			}
		}
		return freqs[0]
	default:
		return target
	}
}

// SetFrequency programs the domain frequency closest to target per rel and
// returns the frequency actually written.
func (d *SysfsDriver) SetFrequency(domain string, targetKHz uint64, rel api.Relation) (uint64, error) {
	min, err := d.readUintAttr(domain, minFreqFile)
	if err != nil {
		return 0, err
	}
	max, err := d.readUintAttr(domain, maxFreqFile)
	if err != nil {
		return 0, err
	}
	target := util.MinUint64(util.MaxUint64(targetKHz, min), max)

	freqs, err := d.AvailableFrequencies(domain)
	if err != nil {
		// no frequency table, the driver accepts arbitrary values
		freqs = nil
	}
	chosen := resolveTarget(freqs, target, rel)
	if err := d.writeAttr(domain, setSpeedFile, util.FormatUint64(chosen)); err != nil {
		return 0, err
	}
	return chosen, nil
}

// CurrentFrequency returns the frequency the domain currently runs at
func (d *SysfsDriver) CurrentFrequency(domain string) (uint64, error) {
	return d.readUintAttr(domain, curFreqFile)
}

// TransitionLatency returns the hardware frequency switch latency
func (d *SysfsDriver) TransitionLatency(domain string) (time.Duration, error) {
	ns, err := d.readUintAttr(domain, latencyFile)
	if err != nil {
		return 0, err
	}
	return time.Duration(ns) * time.Nanosecond, nil
}

// ListDomains discovers the policy domains below the driver root
func (d *SysfsDriver) ListDomains() ([]DomainInfo, error) {
	entries, err := util.ReadDirNames(d.root)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list policy domains under %s", d.root)
	}
	var domains []DomainInfo
	for _, name := range entries {
		if !strings.HasPrefix(name, "policy") {
			continue
		}
		raw, err := d.readAttr(name, relatedCPUsFile)
		if err != nil {
			return nil, err
		}
		cpus, err := util.ParseCPUList(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "malformed related_cpus of domain %s", name)
		}
		min, err := d.readUintAttr(name, minFreqFile)
		if err != nil {
			return nil, err
		}
		max, err := d.readUintAttr(name, maxFreqFile)
		if err != nil {
			return nil, err
		}
		domains = append(domains, DomainInfo{Name: name, CPUs: cpus, MinKHz: min, MaxKHz: max})
	}
	return domains, nil
}
