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
// Description: This file is used for math

// Package util provide some util help functions.
package util

import (
	"math"
)

// Div calculates the quotient of the divisor and the dividend. The optional
// arguments are (maximum out of range, precision).
func Div(dividend, divisor float64, args ...interface{}) float64 {
	var (
		accuracy = 1e-9
		maxValue = math.MaxFloat64
	)
	const (
		maxValueIndex int = iota
		accuracyIndex
	)
	if len(args) > maxValueIndex {
		if value, ok := args[maxValueIndex].(float64); ok {
			maxValue = value
		}
	}
	if len(args) > accuracyIndex {
		if value, ok := args[accuracyIndex].(float64); ok {
			accuracy = value
		}
	}

	if math.Abs(divisor) <= accuracy {
		return maxValue
	}
	return dividend / divisor
}

// MaxUint64 returns the larger of a and b
func MaxUint64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}

// MinUint64 returns the smaller of a and b
func MinUint64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}
