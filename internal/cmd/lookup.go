package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/userlens/userlens/internal/core"
	"github.com/userlens/userlens/internal/flagstore"
	"github.com/userlens/userlens/internal/observability"
	"github.com/userlens/userlens/internal/output"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <login>",
	Short: "Fetch a user profile",
	Long:  "Fetch the profile for a login from the upstream API, using the cache when a valid entry exists.",
	Args:  cobra.ExactArgs(1),
	RunE:  runLookup,
}

func init() {
	rootCmd.AddCommand(lookupCmd)

	lookupCmd.Flags().Bool("no-cache", false, "Skip the cache read")
	lookupCmd.Flags().StringP("output", "o", "table", "Output format: table, json")
}

func runLookup(cmd *cobra.Command, args []string) error {
	login := strings.TrimSpace(args[0])
	if login == "" {
		return fmt.Errorf("login is required")
	}

	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return err
	}
	formatValue, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	format, err := output.ParseFormat(formatValue)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := observability.NewCLILogger(verbose)
	defer logger.Sync() // nolint:errcheck

	client, err := buildClient(cmd.Context(), cfg, logger, nil)
	if err != nil {
		return err
	}
	defer client.Close() // nolint:errcheck

	result, err := client.Lookup(cmd.Context(), login, core.LookupOptions{BypassCache: noCache})
	if err != nil {
		return err
	}

	verified := false
	if flags, err := flagstore.Open(cfg.Flags.Path); err == nil {
		verified = flags.IsFlagged(login)
	}

	rendered, err := output.NewFormatter(format).FormatLookup(&output.Lookup{
		Login:      login,
		Verified:   verified,
		Profile:    result.Payload,
		Provenance: result.Provenance,
	})
	if err != nil {
		return err
	}

	cmd.Println(rendered)
	return nil
}
