package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/heartmarshall/flashquest-backend/internal/auth"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Access token helpers for local development",
}

var tokenMintCmd = &cobra.Command{
	Use:   "mint",
	Short: "Mint an access token for a learner",
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetString("learner")
		learnerID, err := uuid.Parse(raw)
		if err != nil {
			return fmt.Errorf("--learner: %w", err)
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		ttl := cfg.Auth.AccessTokenTTL
		if d, _ := cmd.Flags().GetDuration("ttl"); d > 0 {
			ttl = d
		}

		token, err := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, ttl).GenerateAccessToken(learnerID)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenMintCmd.Flags().String("learner", "", "Learner id (token subject)")
	tokenMintCmd.Flags().Duration("ttl", 0, "Token lifetime (defaults to auth.access_token_ttl)")
	_ = tokenMintCmd.MarkFlagRequired("learner")

	tokenCmd.AddCommand(tokenMintCmd)
}
