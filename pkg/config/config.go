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
// Create: 2023-05-01
// Description: This file contains configuration content and provides external interaction functions

// Package config is used to manage the configuration of freqgov
package config

import (
	"fmt"
	"io/ioutil"

	"isula.org/freqgov/pkg/api"
	"isula.org/freqgov/pkg/common/constant"
)

const agentKey = "agent"

// sysConfKeys saves the system configuration keys, which are not service names
var sysConfKeys = map[string]struct{}{
	agentKey: {},
}

// Config saves all configuration information of freqgov
type Config struct {
	api.ConfigParser
	Agent  *AgentConfig
	Fields map[string]interface{}
}

// AgentConfig is the basic configuration of freqgov, including logs
type AgentConfig struct {
	LogDriver string `json:"logDriver,omitempty"`
	LogLevel  string `json:"logLevel,omitempty"`
	LogSize   int64  `json:"logSize,omitempty"`
	LogDir    string `json:"logDir,omitempty"`
}

// NewConfig returns a config object pointer
func NewConfig(pType parserType) *Config {
	return &Config{
		ConfigParser: defaultParserFactory.getParser(pType),
		Agent: &AgentConfig{
			LogDriver: constant.LogDriverStdio,
			LogSize:   constant.DefaultLogSize,
			LogLevel:  constant.DefaultLogLevel,
			LogDir:    constant.DefaultLogDir,
		},
	}
}

// loadConfigFile loads data from configuration file
func loadConfigFile(config string) ([]byte, error) {
	buffer, err := ioutil.ReadFile(config)
	if err != nil {
		return nil, err
	}
	return buffer, nil
}

// parseAgentConfig parses config as AgentConfig
func (c *Config) parseAgentConfig() {
	content, ok := c.Fields[agentKey]
	if !ok {
		return
	}
	if err := c.UnmarshalSubConfig(content, c.Agent); err != nil {
		fmt.Printf("error parsing agent config: %v\n", err)
	}
}

// LoadConfig loads and parses configuration data from the file, and saves it to the Config
func (c *Config) LoadConfig(path string) error {
	if path == "" {
		path = constant.ConfigFile
	}
	data, err := loadConfigFile(path)
	if err != nil {
		return fmt.Errorf("error loading config file %s: %w", path, err)
	}
	fields, err := c.ParseConfig(data)
	if err != nil {
		return fmt.Errorf("error parsing data: %s", err)
	}
	c.Fields = fields
	c.parseAgentConfig()
	return nil
}

// ServiceKeys returns the names of configured services in the config file
func (c *Config) ServiceKeys() []string {
	var keys []string
	for name := range c.Fields {
		if _, ok := sysConfKeys[name]; ok {
			continue
		}
		keys = append(keys, name)
	}
	return keys
}

// Validator is a function interface to verify whether the configuration is correct or not
type Validator interface {
	Validate() error
}
