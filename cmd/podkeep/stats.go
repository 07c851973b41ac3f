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

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "podkeep stats",
	Long:  `Prints catalog and cache counts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return stats()
	},
}

func stats() error {
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

	fmt.Printf("shows %d\n", cat.ShowCount())
	for _, show := range cat.Shows() {
		fmt.Printf("%d %s episodes %d\n",
			show.ID, show.Title, cat.EpisodeCount(show.ID))
	}

	cs := cat.CacheStats()
	fmt.Printf("cache enabled %v entries %d active %d expired %d\n",
		cs.Enabled, cs.Entries, cs.Active, cs.Expired)
	return nil
}

func init() {
	statsCmd.Flags().StringVarP(&configFile, "config", "c", "", "config file")
	rootCmd.AddCommand(statsCmd)
}
