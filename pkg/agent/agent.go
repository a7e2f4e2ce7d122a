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
// Description: This file is used for the freqgov daemon lifecycle

// Package agent runs the freqgov daemon
package agent

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"golang.org/x/sys/unix"

	"isula.org/freqgov/pkg/common/constant"
	"isula.org/freqgov/pkg/common/log"
	"isula.org/freqgov/pkg/common/util"
	"isula.org/freqgov/pkg/config"
	"isula.org/freqgov/pkg/services"
)

// forceExitCount is the number of interrupts forcing an immediate shutdown
const forceExitCount = 3

// Agent owns the configuration and the running services of the daemon
type Agent struct {
	config *config.Config
}

// NewAgent loads the configuration and initializes logging
func NewAgent(cfgPath string) (*Agent, error) {
	cfg := config.NewConfig(config.JSON)
	if err := cfg.LoadConfig(cfgPath); err != nil {
		return nil, errors.Wrap(err, "load config failed")
	}
	if err := log.InitConfig(cfg.Agent.LogDriver, cfg.Agent.LogDir,
		cfg.Agent.LogLevel, cfg.Agent.LogSize); err != nil {
		return nil, errors.Wrap(err, "init log config failed")
	}
	return &Agent{config: cfg}, nil
}

// configHandler feeds each service its own configuration section
func (a *Agent) configHandler(name string, d interface{}) error {
	section, ok := a.config.Fields[name]
	if !ok {
		return errors.Errorf("no configuration for %q", name)
	}
	return a.config.UnmarshalSubConfig(section, d)
}

// serve initializes, pre-starts and runs the configured services, then waits
// for the shutdown signal.
func (a *Agent) serve(ctx context.Context) error {
	manager := services.GetServiceManager()
	if err := manager.InitServices(a.config.ServiceKeys(), a.configHandler); err != nil {
		return errors.Wrap(err, "init services failed")
	}
	if err := manager.PreStart(); err != nil {
		// degraded but alive, the failing services were dropped
		log.Errorf("pre-start incomplete: %v", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	manager.Start(runCtx)
	<-ctx.Done()
	cancel()
	return manager.Stop()
}

// Run starts the freqgov daemon and blocks until shutdown
func Run(cfgPath string) int {
	unix.Umask(constant.DefaultUmask)

	lock, err := util.CreateLockFile(constant.LockFile)
	if err != nil {
		fmt.Printf("set freqgov lock failed: %v, check if there is another freqgov running\n", err)
		return constant.RepeatRunExitCode
	}
	defer util.RemoveLockFile(lock, constant.LockFile)

	agent, err := NewAgent(cfgPath)
	if err != nil {
		fmt.Printf("new freqgov agent failed: %v\n", err)
		return constant.ErrorExitCode
	}

	ctx, cancel := context.WithCancel(context.Background())
	go signalHandler(cancel)

	if err := agent.serve(ctx); err != nil {
		log.Errorf("freqgov serve failed: %v", err)
		return constant.ErrorExitCode
	}
	return constant.NormalExitCode
}

// signalHandler cancels the run context on the first interrupt and forces
// the process down on the third.
func signalHandler(cancel context.CancelFunc) {
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGTERM, syscall.SIGINT)

	var count atomic.Int32
	for sig := range signalChan {
		if sig != syscall.SIGTERM && sig != syscall.SIGINT {
			continue
		}
		if count.Inc() == 1 {
			log.Infof("Signal %v received and starting exit...", sig)
			cancel()
		}
		if count.Load() >= forceExitCount {
			log.Infof("3 interrupts signal received, forcing freqgov shutdown")
			os.Exit(constant.ErrorExitCode)
		}
	}
}
