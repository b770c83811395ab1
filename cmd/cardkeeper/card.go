package main

import (
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/spf13/cobra"

	"github.com/and161185/card-keeper/internal/model"
	"github.com/and161185/card-keeper/internal/query"
	"github.com/and161185/card-keeper/internal/service"
)

func parseID(s string) (uuid.UUID, error) {
	id, err := uuid.FromString(s)
	if err != nil {
		return uuid.Nil, usageError{fmt.Errorf("bad id %q: %w", s, err)}
	}
	return id, nil
}

// cardFlags binds the editable card fields.
type cardFlags struct {
	identifier, code, first, surname, city, identity string
	gender, marital                                  string
	platform, social, drive, picture                 string
}

func (f *cardFlags) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.identifier, "id-number", "", "3-digit identifier")
	fs.StringVar(&f.code, "code", "", "3-letter uppercase code")
	fs.StringVar(&f.first, "first-name", "", "first name")
	fs.StringVar(&f.surname, "surname", "", "surname")
	fs.StringVar(&f.city, "city", "", "city")
	fs.StringVar(&f.identity, "identity", "", "identity document type")
	fs.StringVar(&f.gender, "gender", "", "male|female")
	fs.StringVar(&f.marital, "marital", "", "single|married")
	fs.StringVar(&f.platform, "platform", "", "social platform")
	fs.StringVar(&f.social, "social", "", "social profile URL")
	fs.StringVar(&f.drive, "drive", "", "drive link URL")
	fs.StringVar(&f.picture, "picture", "", "profile picture file (- for stdin)")
}

func (f *cardFlags) pictureURL(cmd *cobra.Command) (string, error) {
	if f.picture == "" {
		return "", nil
	}
	raw, err := readAll(cmd.InOrStdin(), f.picture)
	if err != nil {
		return "", err
	}
	return service.PictureDataURL(f.picture, raw)
}

func (f *cardFlags) input(cmd *cobra.Command) (model.CardInput, error) {
	pic, err := f.pictureURL(cmd)
	if err != nil {
		return model.CardInput{}, err
	}
	return model.CardInput{
		Identifier:     f.identifier,
		Code:           f.code,
		FirstName:      f.first,
		Surname:        f.surname,
		City:           f.city,
		Identity:       f.identity,
		Gender:         model.Gender(f.gender),
		MaritalStatus:  model.MaritalStatus(f.marital),
		SocialPlatform: f.platform,
		SocialLink:     f.social,
		DriveLink:      f.drive,
		ProfilePicture: pic,
	}, nil
}

// patch sets only the flags given on the command line.
func (f *cardFlags) patch(cmd *cobra.Command) (model.CardPatch, error) {
	var p model.CardPatch
	changed := cmd.Flags().Changed
	str := func(name string, v *string) *string {
		if changed(name) {
			return v
		}
		return nil
	}
	p.Identifier = str("id-number", &f.identifier)
	p.Code = str("code", &f.code)
	p.FirstName = str("first-name", &f.first)
	p.Surname = str("surname", &f.surname)
	p.City = str("city", &f.city)
	p.Identity = str("identity", &f.identity)
	p.SocialPlatform = str("platform", &f.platform)
	p.SocialLink = str("social", &f.social)
	p.DriveLink = str("drive", &f.drive)
	if changed("gender") {
		g := model.Gender(f.gender)
		p.Gender = &g
	}
	if changed("marital") {
		m := model.MaritalStatus(f.marital)
		p.MaritalStatus = &m
	}
	if changed("picture") {
		pic, err := f.pictureURL(cmd)
		if err != nil {
			return p, err
		}
		p.ProfilePicture = &pic
	}
	return p, nil
}

// cardRow is the list view of a card; the picture payload is left out.
type cardRow struct {
	ID            uuid.UUID           `json:"id"`
	Identifier    string              `json:"idNumber"`
	Code          string              `json:"code"`
	Name          string              `json:"name"`
	City          string              `json:"city"`
	Identity      string              `json:"identity"`
	Gender        model.Gender        `json:"gender"`
	MaritalStatus model.MaritalStatus `json:"maritalStatus"`
	HasPicture    bool                `json:"hasPicture"`
	CreatedAt     time.Time           `json:"createdAt"`
}

func toRow(c model.Card) cardRow {
	return cardRow{
		ID:            c.ID,
		Identifier:    c.Identifier,
		Code:          c.Code,
		Name:          c.FullName(),
		City:          c.City,
		Identity:      c.Identity,
		Gender:        c.Gender,
		MaritalStatus: c.MaritalStatus,
		HasPicture:    c.ProfilePicture != "",
		CreatedAt:     c.CreatedAt,
	}
}

func newCardCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "card", Short: "Manage record cards"}
	cmd.AddCommand(newCardAddCommand(a), newCardEditCommand(a), newCardRmCommand(a),
		newCardShowCommand(a), newCardListCommand(a))
	return cmd
}

func newCardAddCommand(a *app) *cobra.Command {
	f := &cardFlags{}
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a card",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			in, err := f.input(cmd)
			if err != nil {
				return err
			}
			c, err := a.cards().Create(ctx, in)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), toRow(c))
		},
	}
	f.bind(cmd)
	return cmd
}

func newCardEditCommand(a *app) *cobra.Command {
	f := &cardFlags{}
	cmd := &cobra.Command{
		Use:   "edit <card-id>",
		Short: "Change fields of a card",
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
			p, err := f.patch(cmd)
			if err != nil {
				return err
			}
			c, err := a.cards().Update(ctx, id, p)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), toRow(c))
		},
	}
	f.bind(cmd)
	return cmd
}

func newCardRmCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <card-id>",
		Short: "Delete a card and its media",
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
			ok, err := a.cards().Delete(ctx, id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]bool{"deleted": ok})
		},
	}
}

func newCardShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <card-id>",
		Short: "Print one card with all fields",
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
			c, err := a.cards().Get(ctx, id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), c)
		},
	}
}

func newCardListCommand(a *app) *cobra.Command {
	var search, city, identity, gender, marital, sortBy, order string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Search, filter and sort cards",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			filters, err := query.ParseFilters(city, identity, gender, marital)
			if err != nil {
				return usageError{err}
			}
			sort, err := query.ParseSort(sortBy, order)
			if err != nil {
				return usageError{err}
			}
			ctx, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			cards, err := a.cards().Query(ctx, service.QueryParams{Search: search, Filters: filters, Sort: sort})
			if err != nil {
				return err
			}
			rows := make([]cardRow, 0, len(cards))
			for _, c := range cards {
				rows = append(rows, toRow(c))
			}
			return printJSON(cmd.OutOrStdout(), rows)
		},
	}
	fs := cmd.Flags()
	fs.StringVarP(&search, "search", "s", "", "substring of \"first surname\"")
	fs.StringVar(&city, "city", "", "city contains")
	fs.StringVar(&identity, "identity", "", "identity contains")
	fs.StringVar(&gender, "gender", "", "male|female")
	fs.StringVar(&marital, "marital", "", "single|married")
	fs.StringVar(&sortBy, "sort", "name", "name|id")
	fs.StringVar(&order, "order", "asc", "asc|desc")
	return cmd
}
