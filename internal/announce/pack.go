/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package announce

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadTemplatePack reads a YAML script override file. Missing sections keep
// their defaults; NewSelector fills the gaps.
func LoadTemplatePack(path string) (Scripts, error) {
	var scripts Scripts

	data, err := os.ReadFile(path)
	if err != nil {
		return scripts, fmt.Errorf("read template pack: %w", err)
	}
	if err := yaml.Unmarshal(data, &scripts); err != nil {
		return scripts, fmt.Errorf("parse template pack: %w", err)
	}
	return scripts, nil
}
