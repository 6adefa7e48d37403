// Package cli implements visactl, a terminal client for the visadesk API.
package cli

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/yoockh/visadesk/internal/client"
)

const defaultAPIURL = "http://localhost:8080"

// app carries per-invocation state so commands stay testable.
type app struct {
	v   *viper.Viper
	out io.Writer
	ctx context.Context
}

func (a *app) client() *client.Client {
	return client.New(
		a.v.GetString("api_url"),
		client.WithAdminCredentials(a.v.GetString("admin_user"), a.v.GetString("admin_password")),
	)
}

// NewRootCmd builds the visactl command tree writing to out.
func NewRootCmd(out io.Writer) *cobra.Command {
	a := &app{v: viper.New(), out: out, ctx: context.Background()}
	return newRootCmd(a)
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "visactl",
		Short:         "Submit, look up and browse visa records",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			a.ctx = cmd.Context()
			if a.ctx == nil {
				a.ctx = context.Background()
			}
		},
	}
	root.SetOut(a.out)

	pf := root.PersistentFlags()
	pf.String("api-url", defaultAPIURL, "visadesk base URL")
	pf.String("admin-user", "", "admin username")
	pf.String("admin-password", "", "admin password")

	a.v.SetEnvPrefix("VISA")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	_ = a.v.BindPFlag("api_url", pf.Lookup("api-url"))
	_ = a.v.BindPFlag("admin_user", pf.Lookup("admin-user"))
	_ = a.v.BindPFlag("admin_password", pf.Lookup("admin-password"))

	root.AddCommand(newSubmitCmd(a), newLookupCmd(a), newAdminCmd(a))
	return root
}

func Execute() {
	cmd := NewRootCmd(os.Stdout)
	if err := cmd.Execute(); err != nil {
		cmd.PrintErrln(formatError(err.Error()))
		os.Exit(1)
	}
}
