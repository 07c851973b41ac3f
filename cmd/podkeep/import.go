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

var importCmd = &cobra.Command{
	Use:   "import [id...]",
	Short: "import shows from the directory",
	Long:  `Imports one or more shows by directory id and seeds their episodes.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return importShows(args)
	},
}

var importFeatured bool

func importShows(ids []string) error {
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

	for _, id := range ids {
		show, err := cat.ImportShow(id)
		if err != nil {
			return fmt.Errorf("import %s: %w", id, err)
		}
		if importFeatured {
			err = cat.SetFeatured(show.ID, true)
			if err != nil {
				return err
			}
		}
		fmt.Printf("%d %s %s\n", show.ID, show.SID, show.Title)
	}
	return nil
}

func init() {
	importCmd.Flags().StringVarP(&configFile, "config", "c", "", "config file")
	importCmd.Flags().BoolVarP(&importFeatured, "featured", "f", false, "mark as featured")
	rootCmd.AddCommand(importCmd)
}
