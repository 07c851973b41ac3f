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
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/podkeep/podkeep/lib/log"
	"github.com/podkeep/podkeep/schedule"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "run the standing maintenance jobs",
	Long:  `Runs the refresh, sweep and cache cleanup jobs until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func run() error {
	cfg, err := getConfig()
	if err != nil {
		return err
	}
	cat, prg, err := openCatalog(cfg)
	if err != nil {
		return err
	}
	defer prg.Close()
	defer cat.Close()

	coord := schedule.NewCoordinator(cfg)
	err = schedule.RegisterJobs(cfg, coord, cat)
	if err != nil {
		return err
	}
	coord.Start()
	defer coord.Stop()
	log.Printf("jobs scheduled\n")

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	return nil
}

func init() {
	runCmd.Flags().StringVarP(&configFile, "config", "c", "", "config file")
	rootCmd.AddCommand(runCmd)
}
