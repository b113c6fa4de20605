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

// leakgate runs a gitleaks scan for the CI event that triggered the
// current job and exits nonzero when secrets are found.
package main

import (
	"context"
	"os"

	"github.com/leakgate/leakgate"
	"github.com/leakgate/leakgate/config"
	"github.com/leakgate/leakgate/log"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		log.Errorf("invalid configuration: %v", err)
		return 1
	}

	if logger, ok := log.GetLogger().(*log.StandardLogger); ok {
		if err := logger.SetLevel(cfg.LogLevel); err != nil {
			log.Errorf("invalid configuration: %v", err)
			return 1
		}
	}

	result, err := leakgate.Run(context.Background(), cfg)
	if err != nil {
		log.Errorf("run failed: %v", err)
		return 1
	}

	return result.Outcome.ExitStatus()
}
