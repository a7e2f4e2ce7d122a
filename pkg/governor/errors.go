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
// Date: 2023-05-10
// Description: governor error taxonomy

package governor

import (
	"github.com/pkg/errors"
)

var (
	// ErrInvalidState marks an operation not valid in the current lifecycle state
	ErrInvalidState = errors.New("operation not valid in current state")
	// ErrAlreadyInitialized marks a repeated init of the same domain
	ErrAlreadyInitialized = errors.New("domain already initialized")
	// ErrBusy marks an attribute access while the owning instance has no active domain
	ErrBusy = errors.New("tunables instance has no active domain")
	// ErrResourceExhausted marks an allocation failure during init
	ErrResourceExhausted = errors.New("resource exhausted")
	// ErrInvalidArgument marks a malformed tunable value or domain spec
	ErrInvalidArgument = errors.New("invalid argument")
)
