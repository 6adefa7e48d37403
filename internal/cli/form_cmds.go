package cli

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yoockh/visadesk/internal/client"
	"github.com/yoockh/visadesk/internal/models"
)

func addHolderFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("nationality", "", "nationality")
	f.String("full-name", "", "full name as in passport")
	f.String("passport-number", "", "passport number")
	f.String("date-of-birth", "", "date of birth (YYYY-MM-DD)")
}

func fillForm(cmd *cobra.Command, form *client.Form) {
	names := map[string]string{
		"nationality":     "nationality",
		"full-name":       "fullName",
		"passport-number": "passportNumber",
		"date-of-birth":   "dateOfBirth",
	}
	for flag, field := range names {
		v, _ := cmd.Flags().GetString(flag)
		form.Set(field, v)
	}
}

func newSubmitCmd(a *app) *cobra.Command {
	var images []string

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a visa record with one or more images",
		Example: `  visactl submit --nationality Vietnam --full-name "Nguyen Van A" \
    --passport-number B1234567 --date-of-birth 1990-05-17 --image front.jpg --image back.jpg`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			form := client.NewForm(client.ModeIntake)
			fillForm(cmd, form)
			for _, p := range images {
				if err := form.AttachPath(p); err != nil {
					return fmt.Errorf("read %s: %w", p, err)
				}
			}
			return runForm(a, form, "Visa information saved")
		},
	}
	addHolderFlags(cmd)
	cmd.Flags().StringArrayVar(&images, "image", nil, "image file to attach (repeatable)")
	return cmd
}

func newLookupCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Look up a visa record by its four identifying fields",
		RunE: func(cmd *cobra.Command, _ []string) error {
			form := client.NewForm(client.ModeLookup)
			fillForm(cmd, form)
			return runForm(a, form, "Visa information found")
		},
	}
	addHolderFlags(cmd)
	return cmd
}

func runForm(a *app, form *client.Form, okMsg string) error {
	err := form.Submit(a.ctx, a.client())
	if err != nil {
		if len(form.Missing) > 0 {
			printMissing(a.out, form.Missing)
		}
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			return errors.New(apiErr.Message)
		}
		return err
	}

	fmt.Fprintln(a.out, formatSuccess(okMsg))
	printRecord(a.out, form.Result)
	return nil
}

func printMissing(w io.Writer, missing map[string]bool) {
	var names []string
	for k, m := range missing {
		if m {
			names = append(names, k)
		}
	}
	if len(names) == 0 {
		return
	}
	sort.Strings(names)
	fmt.Fprintln(w, formatWarning("missing: "+strings.Join(names, ", ")))
}

func printRecord(w io.Writer, r *models.VisaRecord) {
	if r == nil {
		return
	}
	fmt.Fprintf(w, "%s %d\n", styleHeader.Render("ID:"), r.ID)
	fmt.Fprintf(w, "%s %s\n", styleHeader.Render("Full name:"), r.FullName)
	fmt.Fprintf(w, "%s %s\n", styleHeader.Render("Nationality:"), r.Nationality)
	fmt.Fprintf(w, "%s %s\n", styleHeader.Render("Passport:"), r.PassportNumber)
	fmt.Fprintf(w, "%s %s\n", styleHeader.Render("Date of birth:"), r.DateOfBirth)
	if len(r.ImageURLs) == 0 {
		fmt.Fprintln(w, styleMuted.Render("no images"))
		return
	}
	fmt.Fprintln(w, styleHeader.Render("Images:"))
	for _, u := range r.ImageURLs {
		fmt.Fprintln(w, "  "+u)
	}
}
