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

	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "prune old episodes",
	Long:  `Deletes episodes beyond the retained count, oldest first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return sweep()
	},
}

var sweepShowID uint
var sweepKeep int
var sweepDryRun bool

func sweep() error {
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

	keep := sweepKeep
	if keep <= 0 {
		keep = cfg.Catalog.RetainCount
	}

	if sweepDryRun {
		stats := cat.SweepAllStats(keep)
		fmt.Printf("shows %d\n", stats.TotalShows)
		fmt.Printf("shows needing sweep %d\n", stats.ShowsNeedingSweep)
		fmt.Printf("episodes %d\n", stats.TotalEpisodes)
		fmt.Printf("episodes to delete %d\n", stats.EpisodesToDelete)
		return nil
	}

	if sweepShowID != 0 {
		n, err := cat.Sweep(sweepShowID, keep)
		if err != nil {
			return err
		}
		fmt.Printf("deleted %d episodes\n", n)
		return nil
	}

	result := cat.SweepAll(keep)
	fmt.Printf("swept %d shows, deleted %d episodes\n",
		result.ShowsProcessed, result.TotalDeleted)
	for _, f := range result.Failures {
		fmt.Printf("failed %d %s: %s\n", f.ShowID, f.Title, f.Err)
	}
	return nil
}

func init() {
	sweepCmd.Flags().StringVarP(&configFile, "config", "c", "", "config file")
	sweepCmd.Flags().UintVarP(&sweepShowID, "show", "s", 0, "show to sweep")
	sweepCmd.Flags().IntVarP(&sweepKeep, "keep", "k", 0, "episodes to keep")
	sweepCmd.Flags().BoolVarP(&sweepDryRun, "stats", "n", false, "report only, delete nothing")
	rootCmd.AddCommand(sweepCmd)
}
