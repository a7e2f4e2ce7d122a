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
// Date: 2023-05-15
// Description: This file manages the set of configured running services

package services

import (
	"context"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"isula.org/freqgov/pkg/common/log"
	"isula.org/freqgov/pkg/services/helper"
)

// ServiceManager tracks the services selected by the configuration and
// drives their lifecycle.
type ServiceManager struct {
	sync.RWMutex
	RunningServices map[string]Service
	wg              sync.WaitGroup
}

var serviceManager = newServiceManager()

func newServiceManager() *ServiceManager {
	return &ServiceManager{
		RunningServices: make(map[string]Service),
	}
}

// GetServiceManager returns the globally unique ServiceManager
func GetServiceManager() *ServiceManager {
	return serviceManager
}

// AddRunningService adds a to-be-run service
func AddRunningService(name string, service interface{}) {
	serviceManager.RLock()
	_, ok := serviceManager.RunningServices[name]
	serviceManager.RUnlock()
	if ok {
		log.Errorf("service name conflict : \"%s\"", name)
		return
	}
	s, ok := service.(Service)
	if !ok {
		log.Errorf("invalid service : \"%s\", %T", name, service)
		return
	}
	serviceManager.Lock()
	serviceManager.RunningServices[name] = s
	serviceManager.Unlock()
	log.Debugf("pre-start service %s", name)
}

// InitServices creates and configures each named service through its
// registered creator. Unknown names and rejected configurations fail setup.
func (manager *ServiceManager) InitServices(names []string, handler helper.ConfigHandler) error {
	for _, name := range names {
		creator := GetServiceCreator(name)
		if creator == nil {
			return errors.Errorf("service %q is not registered", name)
		}
		obj := creator()
		s, ok := obj.(Service)
		if !ok {
			return errors.Errorf("creator of %q returned a non-service %T", name, obj)
		}
		if err := s.SetConfig(handler); err != nil {
			return errors.Wrapf(err, "failed to configure service %q", name)
		}
		AddRunningService(name, s)
	}
	return nil
}

// PreStart runs the pre-start hook of every configured service. A failing
// service is dropped from the running set rather than aborting the rest.
func (manager *ServiceManager) PreStart() error {
	var errs error
	manager.Lock()
	defer manager.Unlock()
	for name, s := range manager.RunningServices {
		if err := s.PreStart(); err != nil {
			errs = multierror.Append(errs, errors.Wrapf(err, "service %q", name))
			delete(manager.RunningServices, name)
		}
	}
	return errs
}

// Start launches every runner service on its own goroutine
func (manager *ServiceManager) Start(ctx context.Context) {
	manager.RLock()
	defer manager.RUnlock()
	for name, s := range manager.RunningServices {
		if !s.IsRunner() {
			continue
		}
		runner := s
		manager.wg.Add(1)
		log.Infof("starting service %s", name)
		go func() {
			defer manager.wg.Done()
			runner.Run(ctx)
		}()
	}
}

// Stop terminates every running service and waits for the runners to return
func (manager *ServiceManager) Stop() error {
	var errs error
	manager.Lock()
	for name, s := range manager.RunningServices {
		if s.IsRunner() {
			if err := s.Stop(); err != nil {
				errs = multierror.Append(errs, errors.Wrapf(err, "stop service %q", name))
			}
		}
		if err := s.Terminate(); err != nil {
			errs = multierror.Append(errs, errors.Wrapf(err, "terminate service %q", name))
		}
		delete(manager.RunningServices, name)
	}
	manager.Unlock()
	manager.wg.Wait()
	return errs
}
