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

package engine

import (
	"fmt"
	"os"

	"github.com/leakgate/leakgate/log"
	"github.com/spf13/viper"
	gitleaksconfig "github.com/zricethezav/gitleaks/v8/config"
)

// ValidateConfig loads a custom scanner configuration file and compiles
// its rules, so a broken file fails the run up front with a readable
// error instead of an opaque scanner failure mid scan. An empty path
// means the scanner's built-in rules are used and there is nothing to
// validate.
func ValidateConfig(path string) error {
	if path == "" {
		return nil
	}

	log.Debugf("(engine) validating custom %v config at %v", Name, path)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("error reading custom config: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading custom config %v: %w", path, err)
	}

	viperConfig := gitleaksconfig.ViperConfig{}
	if err := v.Unmarshal(&viperConfig); err != nil {
		return fmt.Errorf("error parsing custom config %v: %w", path, err)
	}

	cfg, err := viperConfig.Translate()
	if err != nil {
		return fmt.Errorf("error translating custom config %v: %w", path, err)
	}

	log.Debugf("(engine) custom config defines %v rules", len(cfg.Rules))
	return nil
}
