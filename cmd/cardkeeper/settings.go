package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSettingsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "settings", Short: "Show or change preferences"}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print settings",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			st, err := a.settings().Get(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), st)
		},
	}

	dark := &cobra.Command{
		Use:       "dark-mode <on|off>",
		Short:     "Toggle dark mode",
		Args:      exactArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var on bool
			switch args[0] {
			case "on":
				on = true
			case "off":
			default:
				return usageError{fmt.Errorf("want on or off, got %q", args[0])}
			}
			ctx, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			st, err := a.settings().SetDarkMode(ctx, on)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), st)
		},
	}

	cmd.AddCommand(show, dark)
	return cmd
}
