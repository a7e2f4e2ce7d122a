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
// Create: 2023-05-05
// Description: This file contains important interfaces used in the project

// Package api is interface collection
package api

import (
	"time"
)

// Relation selects how a requested target frequency is resolved against the
// frequencies the hardware actually supports.
type Relation int

const (
	// RelationAtLeast picks the lowest supported frequency at or above target
	RelationAtLeast Relation = iota
	// RelationAtMost picks the highest supported frequency at or below target
	RelationAtMost
)

// String returns the human readable relation name
func (r Relation) String() string {
	switch r {
	case RelationAtLeast:
		return "at-least"
	case RelationAtMost:
		return "at-most"
	default:
		return "unknown"
	}
}

// CPUTimes supplies monotonic per-processor time counters in microseconds.
type CPUTimes interface {
	// IdleTime returns the accumulated idle and wall time of a processor.
	// When ioIsBusy is set, time spent waiting on I/O counts as busy time.
	IdleTime(cpu int, ioIsBusy bool) (idle, wall uint64, err error)
	// NiceTime returns the accumulated time spent in low-priority user mode.
	NiceTime(cpu int) (uint64, error)
}

// FreqDriver performs the physical frequency changes for a policy domain.
type FreqDriver interface {
	// SetFrequency resolves target against the supported table according to
	// rel and programs it, returning the frequency actually set.
	SetFrequency(domain string, targetKHz uint64, rel Relation) (uint64, error)
	// CurrentFrequency returns the frequency the domain currently runs at.
	CurrentFrequency(domain string) (uint64, error)
	// TransitionLatency returns the hardware frequency switch latency.
	TransitionLatency(domain string) (time.Duration, error)
}

// TransitionEvent describes one completed frequency change.
type TransitionEvent struct {
	// ID is a unique event identifier for correlation
	ID string
	// Domain is the policy domain name
	Domain string
	// OldKHz is the frequency before the change
	OldKHz uint64
	// NewKHz is the frequency after the change
	NewKHz uint64
	// Time is when the change completed
	Time time.Time
}

// TransitionNotifier consumes transition events, typically the statistics
// collaborator accounting time-in-state.
type TransitionNotifier interface {
	NotifyTransition(event TransitionEvent)
}

// ConfigParser parses raw configuration into per-module sections
type ConfigParser interface {
	// ParseConfig parses raw data as a generic key value tree
	ParseConfig(data []byte) (map[string]interface{}, error)
	// UnmarshalSubConfig deserializes a sub tree into a structure
	UnmarshalSubConfig(data interface{}, v interface{}) error
	// MarshalIndent serializes a structure for display
	MarshalIndent(v interface{}, prefix, indent string) (string, error)
}
