// Copyright (c) Huawei Technologies Co., Ltd. 2023. All rights reserved.
// freqgov licensed under the Mulan PSL v2.
// You can use this software according to the terms and conditions of the Mulan PSL v2.
// You may obtain a copy of Mulan PSL v2 at:
//     http://license.coscl.org.cn/MulanPSL2
// THIS SOFTWARE IS PROVIDED ON AN "AS IS" BASIS, WITHOUT WARRANTIES OF ANY KIND, EITHER EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO NON-INFRINGEMENT, MERCHANTABILITY OR FIT FOR A PARTICULAR
// PURPOSE.
// See the Mulan PSL v2 for more details.
// Author: Danni Xia
// Create: 2023-05-15
// Description: frequency transition accounting counters

// Package metrics accounts completed frequency transitions per domain
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"isula.org/freqgov/pkg/api"
	"isula.org/freqgov/pkg/common/log"
)

var (
	// TransitionsTotal counts completed frequency changes per domain
	TransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "freqgov",
			Subsystem: "governor",
			Name:      "frequency_transitions_total",
			Help:      "Number of completed frequency transitions per policy domain.",
		},
		[]string{"domain"},
	)
	// CurrentFrequency records the last frequency set per domain
	CurrentFrequency = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "freqgov",
			Subsystem: "governor",
			Name:      "current_frequency_khz",
			Help:      "Frequency in kHz the policy domain was last switched to.",
		},
		[]string{"domain"},
	)
)

func init() {
	prometheus.MustRegister(TransitionsTotal, CurrentFrequency)
}

// Notifier records transition events into the process metrics.
type Notifier struct{}

// NewNotifier returns a metrics backed transition notifier
func NewNotifier() *Notifier {
	return &Notifier{}
}

// NotifyTransition accounts one completed frequency change
func (n *Notifier) NotifyTransition(event api.TransitionEvent) {
	TransitionsTotal.WithLabelValues(event.Domain).Inc()
	CurrentFrequency.WithLabelValues(event.Domain).Set(float64(event.NewKHz))
	log.Debugf("transition %s: domain %s %d -> %d kHz", event.ID, event.Domain, event.OldKHz, event.NewKHz)
}
