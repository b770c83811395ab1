package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/spf13/cobra"

	"github.com/and161185/card-keeper/internal/model"
	"github.com/and161185/card-keeper/internal/sheet"
)

type sheetRow struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Rows         int       `json:"rows"`
	Cols         int       `json:"cols"`
	LastModified time.Time `json:"lastModified"`
}

func toSheetRow(f model.Sheet) sheetRow {
	return sheetRow{ID: f.ID, Name: f.Name, Rows: len(f.Data), Cols: sheet.Width(f.Data), LastModified: f.LastModified}
}

// writeGrid prints the grid with column labels and 1-based row numbers.
func writeGrid(w io.Writer, f model.Sheet) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\n", f.Name)
	hdr := []string{""}
	for j, n := 0, sheet.Width(f.Data); j < n; j++ {
		hdr = append(hdr, sheet.ColumnLabel(j))
	}
	fmt.Fprintln(tw, strings.Join(hdr, "\t"))
	for i, row := range f.Data {
		fmt.Fprintf(tw, "%d\t%s\n", i+1, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func columnIndex(label string) (int, error) {
	_, c, err := sheet.ParseCell(label + "1")
	if err != nil {
		return 0, usageError{fmt.Errorf("bad column %q", label)}
	}
	return c, nil
}

func rowIndex(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, usageError{fmt.Errorf("bad row %q (rows start at 1)", s)}
	}
	return n - 1, nil
}

func newSheetCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "sheet", Short: "Manage tabular files"}
	cmd.AddCommand(
		newSheetNewCommand(a),
		newSheetListCommand(a),
		newSheetShowCommand(a),
		newSheetRenameCommand(a),
		newSheetSetCommand(a),
		newSheetEditCommand(a, "add-row", "Append an empty row", 0, func(a *app, cmd *cobra.Command, id uuid.UUID, _ []string) (model.Sheet, error) {
			return a.sheets().AddRow(cmd.Context(), id)
		}),
		newSheetEditCommand(a, "add-col", "Append an empty column", 0, func(a *app, cmd *cobra.Command, id uuid.UUID, _ []string) (model.Sheet, error) {
			return a.sheets().AddColumn(cmd.Context(), id)
		}),
		newSheetEditCommand(a, "rm-row", "Remove a row by number", 1, func(a *app, cmd *cobra.Command, id uuid.UUID, rest []string) (model.Sheet, error) {
			i, err := rowIndex(rest[0])
			if err != nil {
				return model.Sheet{}, err
			}
			return a.sheets().RemoveRow(cmd.Context(), id, i)
		}),
		newSheetEditCommand(a, "rm-col", "Remove a column by label", 1, func(a *app, cmd *cobra.Command, id uuid.UUID, rest []string) (model.Sheet, error) {
			j, err := columnIndex(rest[0])
			if err != nil {
				return model.Sheet{}, err
			}
			return a.sheets().RemoveColumn(cmd.Context(), id, j)
		}),
		newSheetRmCommand(a),
		newSheetImportCommand(a),
		newSheetExportCommand(a),
	)
	return cmd
}

func newSheetNewCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "new <name>",
		Short: "Create an empty 10x5 sheet",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			f, err := a.sheets().Create(ctx, args[0], nil)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), toSheetRow(f))
		},
	}
}

func newSheetListCommand(a *app) *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sheets, optionally by name",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			files, err := a.sheets().List(ctx, search)
			if err != nil {
				return err
			}
			rows := make([]sheetRow, 0, len(files))
			for _, f := range files {
				rows = append(rows, toSheetRow(f))
			}
			return printJSON(cmd.OutOrStdout(), rows)
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "name contains")
	return cmd
}

func newSheetShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <sheet-id>",
		Short: "Print the grid",
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
			f, err := a.sheets().Get(ctx, id)
			if err != nil {
				return err
			}
			return writeGrid(cmd.OutOrStdout(), f)
		},
	}
}

func newSheetRenameCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <sheet-id> <name>",
		Short: "Rename a sheet",
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
			f, err := a.sheets().Rename(ctx, id, args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), toSheetRow(f))
		},
	}
}

func newSheetSetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set <sheet-id> <cell> <value>",
		Short: "Write one cell, e.g. set <id> B3 hello",
		Args:  exactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			r, c, err := sheet.ParseCell(args[1])
			if err != nil {
				return usageError{fmt.Errorf("bad cell %q", args[1])}
			}
			ctx, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			f, err := a.sheets().SetCell(ctx, id, r, c, args[2])
			if err != nil {
				return err
			}
			return writeGrid(cmd.OutOrStdout(), f)
		},
	}
}

type sheetEdit func(a *app, cmd *cobra.Command, id uuid.UUID, rest []string) (model.Sheet, error)

// newSheetEditCommand builds the grid-shape commands that take a sheet id
// plus extra positional arguments and print the grid afterwards.
func newSheetEditCommand(a *app, use, short string, extra int, edit sheetEdit) *cobra.Command {
	usage := use + " <sheet-id>"
	switch use {
	case "rm-row":
		usage += " <row>"
	case "rm-col":
		usage += " <column>"
	}
	return &cobra.Command{
		Use:   usage,
		Short: short,
		Args:  exactArgs(1 + extra),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			cmd.SetContext(ctx)
			f, err := edit(a, cmd, id, args[1:])
			if err != nil {
				return err
			}
			return writeGrid(cmd.OutOrStdout(), f)
		},
	}
}

func newSheetRmCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <sheet-id>",
		Short: "Delete a sheet",
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
			ok, err := a.sheets().Delete(ctx, id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]bool{"deleted": ok})
		},
	}
}

func newSheetImportCommand(a *app) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Create a sheet from a CSV file (- for stdin, then --name is required)",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			raw, err := readAll(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			if name == "" && args[0] != "-" {
				name = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			}
			f, err := a.sheets().Import(ctx, name, bytes.NewReader(raw))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), toSheetRow(f))
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "sheet name (default: file name)")
	return cmd
}

func newSheetExportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <sheet-id> [file.csv]",
		Short: "Write a sheet as CSV to a file or stdout",
		Args:  rangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			if len(args) == 1 || args[1] == "-" {
				return a.sheets().Export(ctx, id, cmd.OutOrStdout())
			}
			out, err := os.Create(args[1])
			if err != nil {
				return err
			}
			if err := a.sheets().Export(ctx, id, out); err != nil {
				_ = out.Close()
				return err
			}
			return out.Close()
		},
	}
}
