package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"storeadmin/backend/internal/client"
)

var (
	apiURL      string
	sessionPath string
)

// NewRootCmd creates the root command for storectl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "storectl",
		Short:        "Command-line client for the storeadmin API",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&apiURL, "api", envOr("STORECTL_API", "http://localhost:8080"), "API base URL")
	cmd.PersistentFlags().StringVar(&sessionPath, "session", "", "session file (default: user config dir)")

	cmd.AddCommand(NewSignupCmd())
	cmd.AddCommand(NewLoginCmd())
	cmd.AddCommand(NewLogoutCmd())
	cmd.AddCommand(NewWhoamiCmd())
	cmd.AddCommand(NewAddressesCmd())

	return cmd
}

// newClient opens the session file and registers the listener that sends the
// user back to login when the API rejects the stored token.
func newClient(cmd *cobra.Command) (*client.Client, error) {
	path := sessionPath
	if path == "" {
		var err error
		if path, err = client.DefaultSessionPath(); err != nil {
			return nil, err
		}
	}

	sessions, err := client.NewSessionManager(client.FileStore{Path: path})
	if err != nil {
		return nil, err
	}
	out := cmd.OutOrStdout()
	sessions.OnUnauthenticated(func() {
		fmt.Fprintln(out, "Your session has expired. Log in again with: storectl login")
	})

	return client.New(apiURL, sessions), nil
}

// printFormErrors shows field messages inline and the general banner last.
func printFormErrors(w io.Writer, err error) {
	form := client.FormErrorsFrom(err)

	fields := make([]string, 0, len(form.Fields))
	for field := range form.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		fmt.Fprintf(w, "  %s: %s\n", field, form.Fields[field])
	}
	if form.General != "" {
		fmt.Fprintln(w, form.General)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
