package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gotrs-io/gotrs-desk/internal/models"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue and revoke API access tokens",
}

var (
	tokenCompany uint
	tokenUser    uint
	tokenProfile string
)

var tokenIssueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Issue an access token for an agent",
	RunE: func(cmd *cobra.Command, args []string) error {
		if tokenCompany == 0 || tokenUser == 0 {
			return errors.New("--company and --user are required")
		}
		a, err := loadApp()
		if err != nil {
			return err
		}
		defer a.Close()

		token, claims, err := a.jwtManager().GenerateToken(tokenUser, tokenCompany, tokenProfile)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		a.logger.Info("token issued", "session_id", claims.ID, "expires_at", claims.ExpiresAt.Time)
		return nil
	},
}

var tokenRevokeCmd = &cobra.Command{
	Use:   "revoke <token>",
	Short: "Terminate the session of an access token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		defer a.Close()

		claims, err := a.jwtManager().ValidateToken(args[0])
		if err != nil {
			return err
		}
		if err := a.openRedis(cmd.Context()); err != nil {
			return err
		}
		store := a.revocations()
		if store == nil {
			return errors.New("redis is disabled; revocation needs redis.enabled")
		}
		if err := store.MarkRevoked(cmd.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "session %s revoked\n", claims.ID)
		return nil
	},
}

func init() {
	tokenIssueCmd.Flags().UintVar(&tokenCompany, "company", 0, "Company id")
	tokenIssueCmd.Flags().UintVar(&tokenUser, "user", 0, "User id")
	tokenIssueCmd.Flags().StringVar(&tokenProfile, "profile", models.ProfileUser, "Profile (admin or user)")

	tokenCmd.AddCommand(tokenIssueCmd)
	tokenCmd.AddCommand(tokenRevokeCmd)
}
