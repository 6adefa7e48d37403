package cli

import (
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/yoockh/visadesk/internal/adminlist"
	"github.com/yoockh/visadesk/internal/models"
)

func newAdminCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Admin views over all records (basic auth)",
	}
	cmd.AddCommand(newAdminListCmd(a), newAdminBrowseCmd(a))
	return cmd
}

func newAdminListCmd(a *app) *cobra.Command {
	var (
		search   string
		field    string
		page     int
		pageSize int
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Print one page of records",
		RunE: func(cmd *cobra.Command, _ []string) error {
			recs, err := a.client().ListRecords(a.ctx)
			if err != nil {
				return err
			}

			p := adminlist.View(recs, adminlist.ParseField(field), search, page, pageSize)
			if p.Total == 0 {
				fmt.Fprintln(a.out, formatWarning("No records found"))
				return nil
			}
			if len(p.Items) == 0 {
				fmt.Fprintln(a.out, formatWarning(fmt.Sprintf("Page %d is past the last page (%d)", p.Page, p.TotalPages)))
				return nil
			}

			fmt.Fprintln(a.out, styleTitle.Render("Visa records"))
			renderTable(a.out, p.Items, -1)
			fmt.Fprintln(a.out, styleMuted.Render(pageFooter(p)))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&search, "search", "", "case-insensitive substring to match")
	f.StringVar(&field, "field", string(adminlist.FieldFullName), "field to search: full_name, nationality, passport_number")
	f.IntVar(&page, "page", 1, "page number (1-based)")
	f.IntVar(&pageSize, "page-size", adminlist.DefaultPageSize, "records per page")
	return cmd
}

func newAdminBrowseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Interactive record browser",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := a.client()
			m := newBrowseModel(a.ctx, c.ListRecords)
			if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
				return fmt.Errorf("error running browser: %w", err)
			}
			return nil
		},
	}
}

func pageFooter(p adminlist.Page) string {
	return fmt.Sprintf("page %d/%d · %d record(s)", p.Page, max(p.TotalPages, 1), p.Total)
}

var tableColumns = []struct {
	header string
	width  int
}{
	{"ID", 6},
	{"Full name", 28},
	{"Nationality", 16},
	{"Passport", 14},
	{"Born", 12},
	{"Images", 6},
}

// renderTable prints recs as fixed-width rows; row selected is highlighted.
func renderTable(w io.Writer, recs []models.VisaRecord, selected int) {
	var hdr []string
	for _, c := range tableColumns {
		hdr = append(hdr, pad(c.header, c.width))
	}
	fmt.Fprintln(w, styleHeader.Render(strings.Join(hdr, " ")))

	for i, r := range recs {
		cells := []string{
			fmt.Sprint(r.ID),
			r.FullName,
			r.Nationality,
			r.PassportNumber,
			r.DateOfBirth,
			fmt.Sprint(len(r.ImageURLs)),
		}
		for j, c := range tableColumns {
			cells[j] = pad(cells[j], c.width)
		}
		line := strings.Join(cells, " ")
		if i == selected {
			line = styleSelected.Render("> " + line)
		} else if selected >= 0 {
			line = "  " + line
		}
		fmt.Fprintln(w, line)
	}
}

func pad(s string, width int) string {
	r := []rune(s)
	if len(r) > width {
		if width <= 1 {
			return string(r[:width])
		}
		return string(r[:width-1]) + "…"
	}
	return s + strings.Repeat(" ", width-len(r))
}
