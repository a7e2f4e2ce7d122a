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
// Description: This file implements the json configuration parser

package config

import (
	"encoding/json"
	"fmt"
)

// defaultJSONParser is globally unique json parser
var defaultJSONParser *jsonParser

// jsonParser is used to parse json
type jsonParser struct{}

// getJSONParser gets the globally unique json parser
func getJSONParser() *jsonParser {
	if defaultJSONParser == nil {
		defaultJSONParser = &jsonParser{}
	}
	return defaultJSONParser
}

// ParseConfig parses json data as map[string]interface{}
func (parser *jsonParser) ParseConfig(data []byte) (map[string]interface{}, error) {
	m := make(map[string]interface{})
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// UnmarshalSubConfig deserializes interface to structure
func (parser *jsonParser) UnmarshalSubConfig(data interface{}, v interface{}) error {
	// 1. convert map[string]interface to json string
	val, ok := data.(map[string]interface{})
	if !ok {
		return fmt.Errorf("invalid type %T", data)
	}
	jsonString, err := json.Marshal(val)
	if err != nil {
		return err
	}
	// 2. convert json string to struct
	return json.Unmarshal(jsonString, v)
}

// MarshalIndent serializes a structure for display
func (parser *jsonParser) MarshalIndent(v interface{}, prefix, indent string) (string, error) {
	if v == nil {
		return "", nil
	}
	data, err := json.MarshalIndent(v, prefix, indent)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
