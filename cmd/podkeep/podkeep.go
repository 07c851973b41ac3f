// Copyright (C) 2025 The Podkeep Authors.
//
// This file is part of Podkeep.
//
// Podkeep is free software: you can redistribute it and/or modify it under the
// terms of the GNU Affero General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.
//
// Podkeep is distributed in the hope that it will be useful, but WITHOUT ANY
// WARRANTY; without even the implied warranty of MERCHANTABILITY or FITNESS
// FOR A PARTICULAR PURPOSE.  See the GNU Affero General Public License for
// more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with Podkeep.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/podkeep/podkeep/catalog"
	"github.com/podkeep/podkeep/config"
	"github.com/podkeep/podkeep/progress"
)

var rootCmd = &cobra.Command{
	Use:   "podkeep",
	Short: "Podkeep is a podcast catalog service",
	Long:  `Podkeep keeps a bounded local copy of podcast episode history.`,
}

var configFile string
var configPath string
var configName string

func getConfig() (*config.Config, error) {
	if configPath == "" {
		configPath = os.Getenv("PODKEEP_HOME")
	}
	if configName == "" {
		configName = os.Getenv("PODKEEP_CONFIG")
	}
	if configFile != "" {
		config.SetConfigFile(configFile)
	} else {
		if configPath == "" {
			configPath = "."
		}
		if configName == "" {
			configName = "podkeep"
		}
		config.AddConfigPath(configPath)
		config.SetConfigName(configName)
	}
	return config.GetConfig()
}

// openCatalog opens the catalog with the per-user record store attached
// so retention sweeps cascade.
func openCatalog(cfg *config.Config) (*catalog.Catalog, *progress.Progress, error) {
	p := progress.NewProgress(cfg)
	err := p.Open()
	if err != nil {
		return nil, nil, err
	}
	c := catalog.NewCatalog(cfg)
	c.SetUserData(p)
	err = c.Open()
	if err != nil {
		p.Close()
		return nil, nil, err
	}
	return c, p, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
