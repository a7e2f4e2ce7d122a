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
// Description: This file tests service registration and management

package services

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"isula.org/freqgov/pkg/services/helper"
)

// stubService is a minimal runner service for manager tests
type stubService struct {
	helper.ServiceBase
	preStartErr error
	configured  atomic.Bool
	running     atomic.Bool
	stopped     atomic.Bool
}

func newStubService(name string) *stubService {
	return &stubService{ServiceBase: *helper.NewServiceBase(name)}
}

func (s *stubService) SetConfig(f helper.ConfigHandler) error {
	if f == nil {
		return errors.New("configuration handler is empty")
	}
	if err := f(s.Name, &struct{}{}); err != nil {
		return err
	}
	s.configured.Store(true)
	return nil
}

func (s *stubService) PreStart() error {
	return s.preStartErr
}

func (s *stubService) IsRunner() bool { return true }

func (s *stubService) Run(ctx context.Context) {
	s.running.Store(true)
	<-ctx.Done()
	s.running.Store(false)
}

func (s *stubService) Stop() error {
	s.stopped.Store(true)
	return nil
}

func (s *stubService) Terminate() error { return nil }

// resetManager clears the global manager between tests
func resetManager() {
	serviceManager.Lock()
	serviceManager.RunningServices = make(map[string]Service)
	serviceManager.Unlock()
}

// TestRegistry tests creator registration and lookup
func TestRegistry(t *testing.T) {
	Register("stub-registry", func() interface{} { return newStubService("stub-registry") })
	creator := GetServiceCreator("stub-registry")
	require.NotNil(t, creator)
	_, ok := creator().(*stubService)
	assert.True(t, ok)

	assert.Nil(t, GetServiceCreator("never-registered"))
}

// TestInitServices tests configuring the selected services
func TestInitServices(t *testing.T) {
	resetManager()
	Register("stub-init", func() interface{} { return newStubService("stub-init") })
	handler := func(name string, d interface{}) error { return nil }

	manager := GetServiceManager()
	require.NoError(t, manager.InitServices([]string{"stub-init"}, handler))
	assert.Contains(t, manager.RunningServices, "stub-init")

	assert.Error(t, manager.InitServices([]string{"never-registered"}, handler))

	// a handler rejection propagates
	resetManager()
	failing := func(name string, d interface{}) error { return errors.New("bad section") }
	assert.Error(t, manager.InitServices([]string{"stub-init"}, failing))
}

// TestPreStartDropsFailing tests that a failing pre-start removes the service
func TestPreStartDropsFailing(t *testing.T) {
	resetManager()
	good := newStubService("stub-good")
	bad := newStubService("stub-bad")
	bad.preStartErr = errors.New("boom")
	AddRunningService("stub-good", good)
	AddRunningService("stub-bad", bad)

	manager := GetServiceManager()
	assert.Error(t, manager.PreStart())
	assert.Contains(t, manager.RunningServices, "stub-good")
	assert.NotContains(t, manager.RunningServices, "stub-bad")
}

// TestAddRunningServiceConflict tests duplicate names are rejected
func TestAddRunningServiceConflict(t *testing.T) {
	resetManager()
	first := newStubService("stub-dup")
	AddRunningService("stub-dup", first)
	AddRunningService("stub-dup", newStubService("stub-dup"))

	manager := GetServiceManager()
	manager.RLock()
	defer manager.RUnlock()
	assert.Len(t, manager.RunningServices, 1)
	assert.Same(t, Service(first), manager.RunningServices["stub-dup"])
}

// TestStartStop tests the runner lifecycle through the manager
func TestStartStop(t *testing.T) {
	resetManager()
	s := newStubService("stub-run")
	AddRunningService("stub-run", s)

	manager := GetServiceManager()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	manager.Start(ctx)
	require.Eventually(t, func() bool { return s.running.Load() }, time.Second, time.Millisecond)

	cancel()
	require.NoError(t, manager.Stop())
	assert.True(t, s.stopped.Load())
	assert.Empty(t, manager.RunningServices)
	assert.False(t, s.running.Load())
}
