/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/friendsincode/bragi_bingo/internal/auth"
)

var (
	tokenSubject string
	tokenVenue   string
	tokenRole    string
	tokenTTL     time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an operator token for the control API",
	Long:  "Mint a signed JWT granting access to session and jingle mutations. Requires BRAGI_JWT_SIGNING_KEY.",
	RunE:  runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "operator", "token subject")
	tokenCmd.Flags().StringVar(&tokenVenue, "venue", "", "venue name claim")
	tokenCmd.Flags().StringVar(&tokenRole, "role", "host", "operator role claim")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 12*time.Hour, "token lifetime")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}
	if cfg.JWTSigningKey == "" {
		return errors.New("BRAGI_JWT_SIGNING_KEY is not set")
	}

	token, err := auth.Issue([]byte(cfg.JWTSigningKey), tokenSubject, tokenVenue, tokenRole, tokenTTL)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}

	fmt.Println(token)
	return nil
}
