package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/userlens/userlens/internal/flagstore"
	"github.com/userlens/userlens/internal/output"
)

var flagCmd = &cobra.Command{
	Use:   "flag",
	Short: "Manage verified-user flags",
}

var flagSetCmd = &cobra.Command{
	Use:   "set <login>",
	Short: "Mark a login as verified",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setFlag(cmd, args[0], true)
	},
}

var flagUnsetCmd = &cobra.Command{
	Use:   "unset <login>",
	Short: "Remove the verified mark from a login",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setFlag(cmd, args[0], false)
	},
}

var flagListCmd = &cobra.Command{
	Use:   "list",
	Short: "List verified logins",
	Args:  cobra.NoArgs,
	RunE:  runFlagList,
}

func init() {
	rootCmd.AddCommand(flagCmd)
	flagCmd.AddCommand(flagSetCmd)
	flagCmd.AddCommand(flagUnsetCmd)
	flagCmd.AddCommand(flagListCmd)

	flagListCmd.Flags().StringP("output", "o", "table", "Output format: table, json")
}

func setFlag(cmd *cobra.Command, login string, flagged bool) error {
	login = strings.TrimSpace(login)
	if login == "" {
		return fmt.Errorf("login is required")
	}

	cfg, err := loadConfigFlagsOnly()
	if err != nil {
		return err
	}

	store, err := flagstore.Open(cfg.Flags.Path)
	if err != nil {
		return err
	}
	if err := store.SetFlag(login, flagged); err != nil {
		return err
	}

	state := "unverified"
	if flagged {
		state = "verified"
	}
	cmd.Printf("%s is now %s\n", login, state)
	return nil
}

func runFlagList(cmd *cobra.Command, args []string) error {
	formatValue, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	format, err := output.ParseFormat(formatValue)
	if err != nil {
		return err
	}

	cfg, err := loadConfigFlagsOnly()
	if err != nil {
		return err
	}

	store, err := flagstore.Open(cfg.Flags.Path)
	if err != nil {
		return err
	}

	rendered, err := output.NewFormatter(format).FormatFlagList(store.List())
	if err != nil {
		return err
	}

	cmd.Println(rendered)
	return nil
}
