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
// Date: 2023-05-18
// Description: freqgov daemon entry

// Package main is the entry of the freqgov daemon
package main

import (
	"flag"
	"fmt"
	"os"

	"isula.org/freqgov/pkg/agent"
	"isula.org/freqgov/pkg/common/constant"

	// registers the built-in services
	_ "isula.org/freqgov/pkg/services/scaling"
)

func main() {
	cfgPath := flag.String("config", constant.ConfigFile, "configuration file path")
	flag.Parse()
	if flag.NArg() > 0 {
		fmt.Println("args not allowed")
		os.Exit(constant.ArgumentErrorExitCode)
	}
	os.Exit(agent.Run(*cfgPath))
}
