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
// Description: This package stores basic type conversion functions.

// Package util is common utilitization
package util

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatInt64 convert the int 64 type to a string
func FormatInt64(n int64) string {
	const base = 10
	return strconv.FormatInt(n, base)
}

// FormatUint64 convert the uint64 type to a string
func FormatUint64(n uint64) string {
	const base = 10
	return strconv.FormatUint(n, base)
}

// ParseInt64 convert the string type to Int64
func ParseInt64(str string) (int64, error) {
	const (
		base    = 10
		bitSize = 64
	)
	return strconv.ParseInt(str, base, bitSize)
}

// ParseUint64 convert the string type to Uint64
func ParseUint64(str string) (uint64, error) {
	const (
		base    = 10
		bitSize = 64
	)
	return strconv.ParseUint(str, base, bitSize)
}

// ParseFloat64 convert the string type to Float64
func ParseFloat64(str string) (float64, error) {
	const bitSize = 64
	return strconv.ParseFloat(str, bitSize)
}

// ParseBool converts the sysfs style boolean string ("0"/"1") to bool
func ParseBool(str string) (bool, error) {
	switch strings.TrimSpace(str) {
	case "0":
		return false, nil
	case "1":
		return true, nil
	default:
		return false, fmt.Errorf("invalid boolean value: %q", str)
	}
}

// FormatBool converts a bool to the sysfs style boolean string ("0"/"1")
func FormatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// ParseCPUList parses a kernel cpulist string such as "0-3,5" into cpu ids
func ParseCPUList(list string) ([]int, error) {
	var cpus []int
	fields := strings.FieldsFunc(strings.TrimSpace(list), func(r rune) bool {
		return r == ',' || r == ' '
	})
	for _, field := range fields {
		const rangeParts = 2
		parts := strings.SplitN(field, "-", rangeParts)
		first, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, fmt.Errorf("invalid cpu id %q: %v", parts[0], err)
		}
		last := first
		if len(parts) == rangeParts {
			if last, err = strconv.Atoi(parts[1]); err != nil {
				return nil, fmt.Errorf("invalid cpu id %q: %v", parts[1], err)
			}
		}
		if last < first {
			return nil, fmt.Errorf("invalid cpu range %q", field)
		}
		for id := first; id <= last; id++ {
			cpus = append(cpus, id)
		}
	}
	return cpus, nil
}
