package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/and161185/card-keeper/internal/auth"
	"github.com/and161185/card-keeper/internal/errs"
)

// readLine returns the first line of in, trimmed.
func readLine(in io.Reader) (string, error) {
	s := bufio.NewScanner(in)
	if !s.Scan() {
		if err := s.Err(); err != nil {
			return "", err
		}
		return "", io.ErrUnexpectedEOF
	}
	return strings.TrimSpace(s.Text()), nil
}

func newLoginCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login [pin]",
		Short: "Unlock with the PIN and save a session (PIN is read from stdin when omitted)",
		Args:  rangeArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var pin string
			if len(args) == 1 {
				pin = args[0]
			} else {
				fmt.Fprint(cmd.ErrOrStderr(), "PIN: ")
				var err error
				if pin, err = readLine(cmd.InOrStdin()); err != nil {
					return fmt.Errorf("read pin: %w", err)
				}
			}

			ok, err := a.gate.Login(cmd.Context(), pin)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("incorrect PIN: %w", errs.ErrUnauthorized)
			}
			tok, err := a.gate.Token(cmd.Context())
			if err != nil {
				return err
			}
			if err := saveSession(tok); err != nil {
				return fmt.Errorf("save session: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}

func newLogoutCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Lock and forget the saved session",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.gate.Logout()
			if err := clearSession(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}

func newResetPINCommand(a *app) *cobra.Command {
	var answer, newPIN string
	cmd := &cobra.Command{
		Use:   "reset-pin",
		Short: "Replace the PIN by answering the security question",
		Long:  "Replace the PIN by answering the security question: " + auth.SecurityQuestion + ".",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if answer == "" {
				return usageError{fmt.Errorf("--answer is required (question: %s)", auth.SecurityQuestion)}
			}
			if !auth.ValidPIN(newPIN) {
				return usageError{errors.New("--new-pin must be exactly 4 digits")}
			}
			ok, err := a.gate.ResetPIN(cmd.Context(), answer, newPIN)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("incorrect security answer: %w", errs.ErrUnauthorized)
			}
			// the key rotated; any saved token is dead
			if err := clearSession(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "PIN reset; log in with the new PIN")
			return nil
		},
	}
	cmd.Flags().StringVar(&answer, "answer", "", "answer to the security question")
	cmd.Flags().StringVar(&newPIN, "new-pin", "", "new 4-digit PIN")
	return cmd
}
