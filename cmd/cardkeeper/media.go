package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/spf13/cobra"

	"github.com/and161185/card-keeper/internal/model"
)

// mediaRow is the list view of an asset; the payload is left out.
type mediaRow struct {
	ID        uuid.UUID       `json:"id"`
	CardID    uuid.UUID       `json:"cardId"`
	Name      string          `json:"name"`
	Kind      model.MediaKind `json:"type"`
	CreatedAt time.Time       `json:"createdAt"`
}

func toMediaRow(m model.MediaAsset) mediaRow {
	return mediaRow{ID: m.ID, CardID: m.CardID, Name: m.Name, Kind: m.Kind, CreatedAt: m.CreatedAt}
}

func newMediaCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "media", Short: "Manage photos and videos attached to cards"}
	cmd.AddCommand(newMediaAddCommand(a), newMediaListCommand(a), newMediaRmCommand(a), newMediaExportCommand(a))
	return cmd
}

func newMediaAddCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <card-id> <file>...",
		Short: "Attach image or video files to a card",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 {
				return usageError{fmt.Errorf("need a card id and at least one file")}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cardID, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			svc := a.media()
			added := make([]mediaRow, 0, len(args)-1)
			for _, p := range args[1:] {
				raw, err := os.ReadFile(p)
				if err != nil {
					return err
				}
				m, err := svc.Attach(ctx, cardID, filepath.Base(p), raw)
				if err != nil {
					return fmt.Errorf("%s: %w", p, err)
				}
				added = append(added, toMediaRow(m))
			}
			return printJSON(cmd.OutOrStdout(), added)
		},
	}
}

func newMediaListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list <card-id>",
		Short: "List a card's media",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cardID, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			list, err := a.media().List(ctx, cardID)
			if err != nil {
				return err
			}
			rows := make([]mediaRow, 0, len(list))
			for _, m := range list {
				rows = append(rows, toMediaRow(m))
			}
			return printJSON(cmd.OutOrStdout(), rows)
		},
	}
}

func newMediaRmCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <media-id>",
		Short: "Delete a media asset",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			ok, err := a.media().Delete(ctx, id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]bool{"deleted": ok})
		},
	}
}

func newMediaExportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <media-id> <out-file>",
		Short: "Write the decoded media bytes to a file",
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			mt, data, err := a.media().Payload(ctx, id)
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[1], data, 0o600); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s, %d bytes)\n", args[1], mt, len(data))
			return nil
		},
	}
}
