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
// Date: 2023-05-20
// Description: This file tests the sysfs frequency driver

package cpufreq

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"isula.org/freqgov/pkg/api"
	"isula.org/freqgov/pkg/common/constant"
	"isula.org/freqgov/pkg/common/util"
)

// fakePolicy writes one policy directory under root
func fakePolicy(t *testing.T, root, name string, attrs map[string]string) {
	for attr, value := range attrs {
		path := filepath.Join(root, name, attr)
		require.NoError(t, util.CreateFile(path))
		require.NoError(t, util.WriteFile(path, value))
	}
}

func fakeSysfsRoot(t *testing.T) string {
	root := filepath.Join(constant.TmpTestDir, t.Name())
	require.NoError(t, os.MkdirAll(root, constant.DefaultDirMode))
	t.Cleanup(func() { util.DropError(os.RemoveAll(root)) })
	return root
}

func defaultPolicyAttrs() map[string]string {
	return map[string]string{
		"scaling_min_freq":              "800000",
		"scaling_max_freq":              "2000000",
		"scaling_cur_freq":              "1000000\n",
		"scaling_setspeed":              "<unsupported>",
		"scaling_available_frequencies": "2000000 800000 1500000 1000000\n",
		"related_cpus":                  "0-1\n",
		"cpuinfo_transition_latency":    "20000",
	}
}

// TestResolveTarget tests relation resolution against a frequency table
func TestResolveTarget(t *testing.T) {
	freqs := []uint64{800000, 1000000, 1500000, 2000000}
	tests := []struct {
		name   string
		freqs  []uint64
		target uint64
		rel    api.Relation
		want   uint64
	}{
		{name: "TC1-at least exact", freqs: freqs, target: 1000000, rel: api.RelationAtLeast, want: 1000000},
		{name: "TC2-at least rounds up", freqs: freqs, target: 1000001, rel: api.RelationAtLeast, want: 1500000},
		{name: "TC3-at least above table", freqs: freqs, target: 3000000, rel: api.RelationAtLeast, want: 2000000},
		{name: "TC4-at most exact", freqs: freqs, target: 1500000, rel: api.RelationAtMost, want: 1500000},
		{name: "TC5-at most rounds down", freqs: freqs, target: 1499999, rel: api.RelationAtMost, want: 1000000},
		{name: "TC6-at most below table", freqs: freqs, target: 100, rel: api.RelationAtMost, want: 800000},
		{name: "TC7-empty table passes through", target: 1234567, rel: api.RelationAtLeast, want: 1234567},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveTarget(tt.freqs, tt.target, tt.rel))
		})
	}
}

// TestAvailableFrequencies tests table parsing and sorting
func TestAvailableFrequencies(t *testing.T) {
	root := fakeSysfsRoot(t)
	fakePolicy(t, root, "policy0", defaultPolicyAttrs())
	d := NewSysfsDriverWithRoot(root)

	freqs, err := d.AvailableFrequencies("policy0")
	require.NoError(t, err)
	assert.Equal(t, []uint64{800000, 1000000, 1500000, 2000000}, freqs)

	_, err = d.AvailableFrequencies("policy9")
	assert.Error(t, err)
}

// TestSetFrequency tests bound clamping, resolution and the written value
func TestSetFrequency(t *testing.T) {
	tests := []struct {
		name   string
		target uint64
		rel    api.Relation
		want   uint64
	}{
		{name: "TC1-table entry", target: 1500000, rel: api.RelationAtMost, want: 1500000},
		{name: "TC2-clamped to max", target: 5000000, rel: api.RelationAtLeast, want: 2000000},
		{name: "TC3-clamped to min", target: 1, rel: api.RelationAtMost, want: 800000},
		{name: "TC4-between entries at least", target: 1100000, rel: api.RelationAtLeast, want: 1500000},
		{name: "TC5-between entries at most", target: 1100000, rel: api.RelationAtMost, want: 1000000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := fakeSysfsRoot(t)
			fakePolicy(t, root, "policy0", defaultPolicyAttrs())
			d := NewSysfsDriverWithRoot(root)

			got, err := d.SetFrequency("policy0", tt.target, tt.rel)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			written, err := util.ReadSmallFile(filepath.Join(root, "policy0", "scaling_setspeed"))
			require.NoError(t, err)
			assert.Equal(t, util.FormatUint64(tt.want), string(written))
		})
	}
}

// TestSetFrequencyNoTable tests drivers without a frequency table
func TestSetFrequencyNoTable(t *testing.T) {
	root := fakeSysfsRoot(t)
	attrs := defaultPolicyAttrs()
	delete(attrs, "scaling_available_frequencies")
	fakePolicy(t, root, "policy0", attrs)
	d := NewSysfsDriverWithRoot(root)

	// arbitrary in-bound values are accepted untouched
	got, err := d.SetFrequency("policy0", 1234567, api.RelationAtLeast)
	require.NoError(t, err)
	assert.Equal(t, uint64(1234567), got)
}

// TestCurrentFrequencyAndLatency tests the simple attribute reads
func TestCurrentFrequencyAndLatency(t *testing.T) {
	root := fakeSysfsRoot(t)
	fakePolicy(t, root, "policy0", defaultPolicyAttrs())
	d := NewSysfsDriverWithRoot(root)

	cur, err := d.CurrentFrequency("policy0")
	require.NoError(t, err)
	assert.Equal(t, uint64(1000000), cur)

	latency, err := d.TransitionLatency("policy0")
	require.NoError(t, err)
	assert.Equal(t, 20*time.Microsecond, latency)
}

// TestAttrPathEscape tests that attribute paths cannot leave the root
func TestAttrPathEscape(t *testing.T) {
	root := fakeSysfsRoot(t)
	fakePolicy(t, root, "policy0", defaultPolicyAttrs())
	d := NewSysfsDriverWithRoot(root)

	// the joined path is confined below root, so the escape misses
	_, err := d.CurrentFrequency("../../etc")
	assert.Error(t, err)
}

// TestListDomains tests policy discovery
func TestListDomains(t *testing.T) {
	root := fakeSysfsRoot(t)
	fakePolicy(t, root, "policy0", defaultPolicyAttrs())
	attrs := defaultPolicyAttrs()
	attrs["related_cpus"] = "2-3,6\n"
	attrs["scaling_min_freq"] = "400000"
	fakePolicy(t, root, "policy4", attrs)
	// non-policy entries are skipped
	require.NoError(t, util.CreateFile(filepath.Join(root, "ondemand")))

	d := NewSysfsDriverWithRoot(root)
	domains, err := d.ListDomains()
	require.NoError(t, err)
	require.Len(t, domains, 2)

	assert.Equal(t, "policy0", domains[0].Name)
	assert.Equal(t, []int{0, 1}, domains[0].CPUs)
	assert.Equal(t, uint64(800000), domains[0].MinKHz)
	assert.Equal(t, uint64(2000000), domains[0].MaxKHz)

	assert.Equal(t, "policy4", domains[1].Name)
	assert.Equal(t, []int{2, 3, 6}, domains[1].CPUs)
	assert.Equal(t, uint64(400000), domains[1].MinKHz)
}

// TestListDomainsMissingRoot tests discovery on an absent tree
func TestListDomainsMissingRoot(t *testing.T) {
	d := NewSysfsDriverWithRoot(filepath.Join(constant.TmpTestDir, "no-such-root"))
	_, err := d.ListDomains()
	assert.Error(t, err)
}
