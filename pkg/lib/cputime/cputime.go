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
// Date: 2023-05-08
// Description: This file is used for reading per-cpu time counters

// Package cputime supplies per-processor idle and wall time counters
package cputime

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"isula.org/freqgov/pkg/common/constant"
	"isula.org/freqgov/pkg/common/util"
)

// procStat stores one cpu line of /proc/stat
type procStat struct {
	name      string
	user      uint64
	nice      uint64
	system    uint64
	idle      uint64
	iowait    uint64
	irq       uint64
	softirq   uint64
	steal     uint64
	guest     uint64
	guestNice uint64
}

const (
	// the kernel exports /proc/stat in USER_HZ (100Hz) ticks
	usecPerTick = 10000
)

// Source reads monotonic per-cpu counters from the proc filesystem.
type Source struct {
	path string
}

// NewSource returns a counter source backed by /proc/stat
func NewSource() *Source {
	return &Source{path: constant.DefaultProcStatFile}
}

// NewSourceWithPath returns a counter source backed by the given stat file
func NewSourceWithPath(path string) *Source {
	return &Source{path: path}
}

// getProcStat reads the stat line of a single processor
func (s *Source) getProcStat(cpu int) (procStat, error) {
	const (
		userIndex = iota
		niceIndex
		systemIndex
		idleIndex
		iowaitIndex
		irqIndex
		softirqIndex
		stealIndex
		guestIndex
		guestNiceIndex
		statsFieldsCount
	)
	const supportFieldNumber = statsFieldsCount + 1

	data, err := util.ReadSmallFile(s.path)
	if err != nil {
		return procStat{}, err
	}
	name := fmt.Sprintf("cpu%d", cpu)
	for _, raw := range strings.Split(string(data), "\n") {
		line := strings.Fields(raw)
		if len(line) == 0 || line[0] != name {
			continue
		}
		if len(line) < supportFieldNumber {
			return procStat{}, fmt.Errorf("too few fields and check the kernel version")
		}
		var fields [statsFieldsCount]uint64
		for i := 0; i < statsFieldsCount; i++ {
			if fields[i], err = util.ParseUint64(line[i+1]); err != nil {
				return procStat{}, err
			}
		}
		return procStat{
			name:      name,
			user:      fields[userIndex],
			nice:      fields[niceIndex],
			system:    fields[systemIndex],
			idle:      fields[idleIndex],
			iowait:    fields[iowaitIndex],
			irq:       fields[irqIndex],
			softirq:   fields[softirqIndex],
			steal:     fields[stealIndex],
			guest:     fields[guestIndex],
			guestNice: fields[guestNiceIndex],
		}, nil
	}
	return procStat{}, errors.Errorf("no stat entry for processor %d", cpu)
}

// IdleTime returns the accumulated idle and wall time of a processor in
// microseconds. Waiting for I/O counts as idle time unless ioIsBusy is set.
func (s *Source) IdleTime(cpu int, ioIsBusy bool) (uint64, uint64, error) {
	ps, err := s.getProcStat(cpu)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "failed to read cpu%d time", cpu)
	}
	idle := ps.idle
	if !ioIsBusy {
		idle += ps.iowait
	}
	wall := ps.user + ps.nice + ps.system + ps.idle + ps.iowait + ps.irq + ps.softirq + ps.steal
	return idle * usecPerTick, wall * usecPerTick, nil
}

// NiceTime returns the accumulated low-priority user time of a processor in
// microseconds.
func (s *Source) NiceTime(cpu int) (uint64, error) {
	ps, err := s.getProcStat(cpu)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to read cpu%d nice time", cpu)
	}
	return ps.nice * usecPerTick, nil
}
