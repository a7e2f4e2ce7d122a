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
// Date: 2023-05-20
// Description: This file tests transition accounting

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"isula.org/freqgov/pkg/api"
)

// TestNotifyTransition tests counter and gauge updates per domain
func TestNotifyTransition(t *testing.T) {
	n := NewNotifier()
	event := api.TransitionEvent{
		ID:     "test-event",
		Domain: "policy7",
		OldKHz: 800000,
		NewKHz: 2000000,
		Time:   time.Now(),
	}

	base := testutil.ToFloat64(TransitionsTotal.WithLabelValues("policy7"))
	n.NotifyTransition(event)
	n.NotifyTransition(event)

	assert.Equal(t, base+2, testutil.ToFloat64(TransitionsTotal.WithLabelValues("policy7")))
	assert.Equal(t, float64(2000000), testutil.ToFloat64(CurrentFrequency.WithLabelValues("policy7")))

	// a second domain is accounted independently
	other := event
	other.Domain = "policy8"
	other.NewKHz = 800000
	n.NotifyTransition(other)
	assert.Equal(t, float64(1), testutil.ToFloat64(TransitionsTotal.WithLabelValues("policy8")))
	assert.Equal(t, float64(800000), testutil.ToFloat64(CurrentFrequency.WithLabelValues("policy8")))
}
