package commands

import (
	"fmt"
	"time"

	"github.com/Glowing-Pixels-UG/just-storage-sub001/internal/cli/prompt"
	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/api/auth"
	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/config"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	tokenSubject string
	tokenTenant  string
	tokenTTL     time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint JWT tokens and hash static API keys",
}

var tokenMintCmd = &cobra.Command{
	Use:   "mint",
	Short: "Mint a JWT for a tenant",
	Long: `Mint a signed JWT using the configured auth.jwt_secret.

Examples:
  juststorage token mint --tenant 6a1f...-... --subject alice
  juststorage token mint --tenant 6a1f...-... --ttl 1h`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.MustLoad(GetConfigFile())
		if err != nil {
			return err
		}

		tenant, err := uuid.Parse(tokenTenant)
		if err != nil {
			return fmt.Errorf("--tenant must be a UUID: %w", err)
		}

		token, err := auth.MintToken(cfg.Auth, tokenSubject, tenant, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	},
}

var tokenHashCmd = &cobra.Command{
	Use:   "hash",
	Short: "Hash an API key for the static_keys config section",
	Long: `Bcrypt-hash an API key for auth mode "static".

The key is read from a hidden prompt; the printed hash goes into
auth.static_keys[].token_hash together with the tenant it
authenticates as.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := prompt.Password("API key")
		if err != nil {
			return err
		}

		hash, err := auth.HashKey(key)
		if err != nil {
			return fmt.Errorf("failed to hash key: %w", err)
		}

		fmt.Println(hash)
		fmt.Println("\nAdd to your config:")
		fmt.Println("  auth:")
		fmt.Println("    mode: static")
		fmt.Println("    static_keys:")
		fmt.Printf("      - token_hash: %q\n", hash)
		fmt.Println("        tenant_id: <tenant uuid>")
		return nil
	},
}

func init() {
	tokenMintCmd.Flags().StringVar(&tokenSubject, "subject", "", "Subject (user) claim")
	tokenMintCmd.Flags().StringVar(&tokenTenant, "tenant", "", "Tenant UUID the token is scoped to")
	tokenMintCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "Token lifetime (default: auth.jwt_ttl)")
	_ = tokenMintCmd.MarkFlagRequired("tenant")

	tokenCmd.AddCommand(tokenMintCmd)
	tokenCmd.AddCommand(tokenHashCmd)
}
