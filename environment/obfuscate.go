// Copyright 2025 The Leakgate Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package environment

import (
	"strings"

	"github.com/gobwas/glob"
	"github.com/leakgate/leakgate/log"
)

const obfuscatedValue = "******"

// ObfuscateEnvironmentArray expects an array of strings representing
// environment variables, each in the format of "KEY=VALUE". Values
// whose key appears in obfuscateList, literally or via a glob pattern,
// are replaced before onCaptured is called. Keys in excludeKeys are
// passed through untouched.
func ObfuscateEnvironmentArray(variables []string, obfuscateList map[string]struct{}, excludeKeys map[string]struct{}, onCaptured func(key, val, orig string)) {
	obfuscateGlobList := []glob.Glob{}
	for k := range obfuscateList {
		if !strings.Contains(k, "*") {
			continue
		}

		compiled, err := glob.Compile(k)
		if err != nil {
			log.Errorf("(environment) obfuscate glob pattern could not be interpreted: %v", err)
			continue
		}

		obfuscateGlobList = append(obfuscateGlobList, compiled)
	}

	for _, v := range variables {
		key, val := splitVariable(v)

		if _, excluded := excludeKeys[key]; !excluded {
			if _, inObfuscateList := obfuscateList[key]; inObfuscateList {
				val = obfuscatedValue
			}

			for _, pattern := range obfuscateGlobList {
				if pattern.Match(key) {
					val = obfuscatedValue
				}
			}
		}

		onCaptured(key, val, v)
	}
}
