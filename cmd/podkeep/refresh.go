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

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "reconcile episodes with the directory",
	Long:  `Refreshes one show, or every featured show when none is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return refresh()
	},
}

var refreshShowID uint
var refreshWindow int

func refresh() error {
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

	if refreshShowID != 0 {
		if refreshWindow > 0 {
			episodes, err := cat.RefreshWindow(refreshShowID, refreshWindow)
			if err != nil {
				return err
			}
			fmt.Printf("refreshed %d episodes\n", len(episodes))
			return nil
		}
		episode, err := cat.RefreshLatest(refreshShowID)
		if err != nil {
			return err
		}
		fmt.Printf("latest %s %s\n", episode.EID, episode.Title)
		return nil
	}

	report := cat.RefreshFeatured()
	fmt.Printf("processed %d refreshed %d skipped %d failed %d\n",
		report.Processed, report.Refreshed, report.Skipped, report.Failed)
	return nil
}

func init() {
	refreshCmd.Flags().StringVarP(&configFile, "config", "c", "", "config file")
	refreshCmd.Flags().UintVarP(&refreshShowID, "show", "s", 0, "show to refresh")
	refreshCmd.Flags().IntVarP(&refreshWindow, "window", "w", 0, "episodes to fetch")
	rootCmd.AddCommand(refreshCmd)
}
