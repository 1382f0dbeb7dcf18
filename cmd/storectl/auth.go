package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"storeadmin/backend/internal/client"
)

var errFailed = errors.New("request failed")

// NewSignupCmd creates the signup subcommand.
func NewSignupCmd() *cobra.Command {
	var (
		in          client.SignupInput
		acceptTerms bool
		noLogin     bool
	)

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account, then log in",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newClient(cmd)
			if err != nil {
				return err
			}
			p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())

			if in.Name == "" {
				if in.Name, err = p.Text("Name"); err != nil {
					return err
				}
			}
			if in.Email == "" {
				if in.Email, err = p.Text("Email"); err != nil {
					return err
				}
			}
			if in.Password, err = p.Password("Password"); err != nil {
				return err
			}
			if in.PasswordConfirmation, err = p.Password("Confirm password"); err != nil {
				return err
			}
			in.Terms = acceptTerms
			if !in.Terms {
				if in.Terms, err = p.Confirm("Do you agree to the terms and conditions?"); err != nil {
					return err
				}
			}

			user, err := c.Signup(cmd.Context(), in)
			if err != nil {
				printFormErrors(cmd.ErrOrStderr(), err)
				return errFailed
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Account created for %s. Please log in.\n", user.Email)

			if noLogin {
				return nil
			}
			return login(cmd, c, p, user.Email)
		},
	}

	cmd.Flags().StringVar(&in.Name, "name", "", "full name")
	cmd.Flags().StringVar(&in.Email, "email", "", "email address")
	cmd.Flags().StringVar(&in.Phone, "phone", "", "phone number")
	cmd.Flags().BoolVar(&acceptTerms, "accept-terms", false, "agree to the terms and conditions")
	cmd.Flags().BoolVar(&noLogin, "no-login", false, "stop after the account is created")

	return cmd
}

// NewLoginCmd creates the login subcommand.
func NewLoginCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newClient(cmd)
			if err != nil {
				return err
			}
			return login(cmd, c, newPrompter(cmd.InOrStdin(), cmd.OutOrStdout()), email)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")

	return cmd
}

func login(cmd *cobra.Command, c *client.Client, p *prompter, email string) error {
	var err error
	if email == "" {
		if email, err = p.Text("Email"); err != nil {
			return err
		}
	}
	password, err := p.Password("Password")
	if err != nil {
		return err
	}

	session, err := c.Login(cmd.Context(), email, password)
	if err != nil {
		printFormErrors(cmd.ErrOrStderr(), err)
		return errFailed
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s.\n", session.User.Name)
	return nil
}

// NewLogoutCmd creates the logout subcommand.
func NewLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the session and forget it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newClient(cmd)
			if err != nil {
				return err
			}
			if err := c.Logout(cmd.Context()); err != nil {
				printFormErrors(cmd.ErrOrStderr(), err)
				fmt.Fprintln(cmd.OutOrStdout(), "Logged out locally.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

// NewWhoamiCmd creates the whoami subcommand.
func NewWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newClient(cmd)
			if err != nil {
				return err
			}
			user, err := c.CurrentUser(cmd.Context())
			if errors.Is(err, client.ErrNoSession) {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
				return nil
			}
			if err != nil {
				printFormErrors(cmd.ErrOrStderr(), err)
				return errFailed
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> (%s)\n", user.Name, user.Email, user.Role)
			return nil
		},
	}
}

// NewAddressesCmd creates the addresses subcommand.
func NewAddressesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "addresses",
		Short: "List your saved addresses",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newClient(cmd)
			if err != nil {
				return err
			}
			addresses, err := c.ListAddresses(cmd.Context())
			if errors.Is(err, client.ErrNoSession) {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
				return nil
			}
			if err != nil {
				printFormErrors(cmd.ErrOrStderr(), err)
				return errFailed
			}
			if len(addresses) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No saved addresses.")
				return nil
			}
			for _, a := range addresses {
				marker := " "
				if a.IsDefault {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s, %s, %s %s, %s [%s]\n", marker, a.FullName, a.AddressLine1, a.City, a.PostalCode, a.Country, a.Type)
			}
			return nil
		},
	}
}
