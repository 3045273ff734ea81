package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"botpanel/internal/auth"
)

var tokenYes bool

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage access tokens",
	Long: `Access tokens are stored as bcrypt hashes in the config file. With no
tokens configured the panel accepts every connection.`,
}

var tokenAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Create a token and print it once",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := auth.AddToken(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", token)
		fmt.Fprintln(cmd.ErrOrStderr(), "Store this token now, it is not shown again.")
		return nil
	},
}

var tokenListCmd = &cobra.Command{
	Use:   "list",
	Short: "List token names",
	RunE: func(cmd *cobra.Command, args []string) error {
		names := auth.TokenNames()
		if len(names) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No tokens configured; the panel is open.")
			return nil
		}
		for _, name := range names {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

var tokenRemoveCmd = &cobra.Command{
	Use:   "remove NAME",
	Short: "Revoke a token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !tokenYes && term.IsTerminal(int(os.Stdin.Fd())) {
			confirmed := false
			err := huh.NewForm(huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Revoke token %q?", args[0])).
					Description("Dashboards using it will be disconnected on their next handshake.").
					Value(&confirmed),
			)).Run()
			if err != nil {
				return err
			}
			if !confirmed {
				return nil
			}
		}
		if err := auth.RemoveToken(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.AddCommand(tokenAddCmd, tokenListCmd, tokenRemoveCmd)
	tokenRemoveCmd.Flags().BoolVarP(&tokenYes, "yes", "y", false, "skip the confirmation prompt")
}
