/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/friendsincode/bragi_bingo/internal/db"
	"github.com/friendsincode/bragi_bingo/internal/models"
)

var (
	seedFile   string
	seedDryRun bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load tracks into the local catalog",
	Long:  "Load a JSON track list into the catalog table used when no remote pool endpoint is configured",
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", "", "Path to a JSON array of tracks (required)")
	seedCmd.Flags().BoolVar(&seedDryRun, "dry-run", false, "Validate the file without writing")
	seedCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	data, err := os.ReadFile(seedFile)
	if err != nil {
		return fmt.Errorf("read track file: %w", err)
	}

	var tracks []models.Track
	if err := json.Unmarshal(data, &tracks); err != nil {
		return fmt.Errorf("parse track file: %w", err)
	}
	if len(tracks) == 0 {
		return fmt.Errorf("track file %s is empty", seedFile)
	}

	skipped := 0
	for i := range tracks {
		if tracks[i].Title == "" || tracks[i].Artist == "" || tracks[i].PreviewURL == "" {
			skipped++
			continue
		}
		if tracks[i].ID == "" {
			tracks[i].ID = uuid.NewString()
		}
	}

	if seedDryRun {
		fmt.Printf("parsed %d tracks (%d invalid) from %s\n", len(tracks), skipped, seedFile)
		return nil
	}

	database, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() { _ = db.Close(database) }()
	if err := db.Migrate(database); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	imported := 0
	for _, track := range tracks {
		if track.Title == "" || track.Artist == "" || track.PreviewURL == "" {
			continue
		}
		if err := database.Save(&track).Error; err != nil {
			return fmt.Errorf("save track %q: %w", track.Title, err)
		}
		imported++
	}

	fmt.Printf("imported %d tracks (%d skipped) into the catalog\n", imported, skipped)
	return nil
}
