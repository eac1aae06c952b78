package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/SergeyParamoshkin/articlehub/internal/guard"
	"github.com/SergeyParamoshkin/articlehub/internal/session"
	"github.com/SergeyParamoshkin/articlehub/internal/validation"
)

const dobLayout = "2006-01-02"

func (s *shell) authCommands() []*cobra.Command {
	login := &cobra.Command{
		Use:         "login <email-or-phone> <password>",
		Short:       "Sign in",
		Args:        cobra.ExactArgs(2),
		Annotations: map[string]string{routeKey: guard.LoginPath},
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := s.validate.Login(validation.LoginForm{EmailOrPhone: args[0], Password: args[1]})
			if err != nil {
				s.report(err)

				return nil
			}

			if err := s.session.Login(cmd.Context(), p); err != nil {
				s.authFailed(err, "Login failed")

				return nil
			}

			s.signedIn(cmd, "Welcome back")

			return nil
		},
	}

	var (
		form validation.SignupForm
		dob  string
	)
	signup := &cobra.Command{
		Use:         "signup",
		Short:       "Create an account",
		Example:     `  signup --first-name Ada --last-name Lovelace --email ada@example.com --phone "+1 555 010 0199" --dob 1990-12-10 --password 'Str0ng!pw' --confirm-password 'Str0ng!pw' --interest Technology`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{routeKey: "/signup"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if dob != "" {
				t, err := time.Parse(dobLayout, dob)
				if err != nil {
					return fmt.Errorf("dob must look like %s", dobLayout)
				}
				form.DOB = t
			}

			p, err := s.validate.Signup(form)
			if err != nil {
				s.report(err)

				return nil
			}

			if err := s.session.Signup(cmd.Context(), p); err != nil {
				s.authFailed(err, "Signup failed")

				return nil
			}

			s.signedIn(cmd, "Welcome")

			return nil
		},
	}
	f := signup.Flags()
	f.StringVar(&form.FirstName, "first-name", "", "first name")
	f.StringVar(&form.LastName, "last-name", "", "last name")
	f.StringVar(&form.Email, "email", "", "email address")
	f.StringVar(&form.Phone, "phone", "", "phone number")
	f.StringVar(&dob, "dob", "", "date of birth (YYYY-MM-DD)")
	f.StringVar(&form.Password, "password", "", "password")
	f.StringVar(&form.ConfirmPassword, "confirm-password", "", "password again")
	f.StringSliceVar(&form.Interests, "interest", nil, "category of interest (repeatable)")

	logout := &cobra.Command{
		Use:         "logout",
		Short:       "Sign out",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{routeKey: "/logout"},
		Run: func(cmd *cobra.Command, args []string) {
			s.session.Logout(cmd.Context())
			s.feed.Reset()
			s.authoring.Reset()
			s.profile.Reset()
			s.printer.Success("Signed out")
			s.land(cmd.Context(), guard.LoginPath)
		},
	}

	whoami := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			u, ok := s.session.User()
			if !ok {
				s.printer.Info("Not signed in")

				return
			}
			s.printer.Info("%s <%s> (%s)", u.Name(), u.Email, u.Initials())
		},
	}

	return []*cobra.Command{login, signup, logout, whoami}
}

func (s *shell) authFailed(err error, fallback string) {
	var authErr *session.AuthError
	if errors.As(err, &authErr) {
		s.printer.Error(authErr.Message)

		return
	}

	s.logger.Errorw("auth request failed", "error", err)
	s.printer.Error(fallback)
}

func (s *shell) signedIn(cmd *cobra.Command, greeting string) {
	u, _ := s.session.User()
	s.printer.Success(greeting + ", " + u.FirstName)
	s.profile.Reset()
	s.land(cmd.Context(), guard.HomePath)
}
