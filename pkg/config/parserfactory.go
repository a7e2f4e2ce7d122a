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
// Description: This file defines the configuration parser factory

package config

import "isula.org/freqgov/pkg/api"

type (
	// parserType represents the parser type
	parserType int8
	// parserFactory is the factory class of the parser
	parserFactory struct{}
)

const (
	// JSON represents the json type parser
	JSON parserType = iota
)

// defaultParserFactory is globally unique parser factory
var defaultParserFactory = &parserFactory{}

// getParser gets parser instance according to the parser type passed in
func (factory *parserFactory) getParser(pType parserType) api.ConfigParser {
	switch pType {
	case JSON:
		return getJSONParser()
	default:
		return getJSONParser()
	}
}
