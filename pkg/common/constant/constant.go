// Copyright (c) Huawei Technologies Co., Ltd. 2023. All rights reserved.
// freqgov licensed under the Mulan PSL v2.
// You can use this software according to the terms and conditions of the Mulan PSL v2.
// You may obtain a copy of Mulan PSL v2 at:
//     http://license.coscl.org.cn/MulanPSL2
// THIS SOFTWARE IS PROVIDED ON AN "AS IS" BASIS, WITHOUT WARRANTIES OF ANY KIND, EITHER EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO NON-INFRINGEMENT, MERCHANTABILITY OR FIT FOR A PARTICULAR
// PURPOSE.
// See the Mulan PSL v2 for more details.
// Author: Xiang Li
// Create: 2023-04-17
// Description: This file contains default constants used in the project

// Package constant is for constant definition
package constant

import (
	"os"
)

// the files and directories used by the system by default
const (
	// ConfigFile is freqgov config file
	ConfigFile = "/var/lib/freqgov/config.json"
	// LockFile is freqgov lock file
	LockFile = "/run/freqgov/freqgov.lock"
	// DefaultCPUFreqRoot is the sysfs cpufreq policy directory
	DefaultCPUFreqRoot = "/sys/devices/system/cpu/cpufreq"
	// DefaultProcStatFile is the kernel cpu time accounting file
	DefaultProcStatFile = "/proc/stat"
	// TmpTestDir is tmp directory for test
	TmpTestDir = "/tmp/freqgov-test"
)

// File permission
const (
	// DefaultUmask is default umask
	DefaultUmask = 0077
	// DefaultFileMode is file mode for attribute files
	DefaultFileMode os.FileMode = 0600
	// DefaultDirMode is dir default mode
	DefaultDirMode os.FileMode = 0700
	// DefaultDumpLogFileMode is the permission of the log file (recorded or archived)
	DefaultDumpLogFileMode os.FileMode = 0400
)

// log config
const (
	LogDriverStdio  = "stdio"
	LogDriverFile   = "file"
	LogLevelDebug   = "debug"
	LogLevelInfo    = "info"
	LogLevelWarn    = "warn"
	LogLevelError   = "error"
	LogLevelStack   = "stack"
	DefaultLogDir   = "/var/log/freqgov"
	DefaultLogLevel = LogLevelInfo
	DefaultLogSize  = 1024
)

// exit code
const (
	// NormalExitCode for the normal exit code
	NormalExitCode int = iota
	// ArgumentErrorExitCode for argument failed
	ArgumentErrorExitCode
	// RepeatRunExitCode for repeat run exit
	RepeatRunExitCode
	// ErrorExitCode failed during run
	ErrorExitCode
)
