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
// Date: 2023-05-15
// Description: This file is the Interface set of services

package services

import (
	"context"

	"isula.org/freqgov/pkg/services/helper"
)

// Runner for background service process.
type Runner interface {
	// IsRunner for Confirm whether it is
	IsRunner() bool
	// Start runner
	Run(context.Context)
	// Stop runner
	Stop() error
}

// Service interface contains methods which must be implemented by all services.
type Service interface {
	Runner
	// ID is the name of plugin, must be unique.
	ID() string
	// SetConfig is an interface that invoke the ConfigHandler to obtain the corresponding configuration.
	SetConfig(helper.ConfigHandler) error
	// GetConfig is an interface for obtaining service running configurations.
	GetConfig() interface{}
	// PreStart is an interface for calling a collection of methods when the service is pre-started
	PreStart() error
	// Terminate is an interface that calls a collection of methods when the service terminates
	Terminate() error
}
