package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/SergeyParamoshkin/articlehub/internal/model"
	"github.com/SergeyParamoshkin/articlehub/internal/view"
)

func (s *shell) profileCommand() *cobra.Command {
	root := &cobra.Command{
		Use:         "profile",
		Short:       "Show your profile settings",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{routeKey: "/profile"},
		Run: func(cmd *cobra.Command, args []string) {
			s.showProfile()
		},
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "set <field> <value...>",
			Short: "Set firstName, lastName, phone, currentPassword, newPassword or confirmPassword",
			Args:  cobra.MinimumNArgs(2),
			Run: func(cmd *cobra.Command, args []string) {
				if err := s.profile.SetField(args[0], strings.Join(args[1:], " ")); err != nil {
					s.report(err)

					return
				}
				s.showProfile()
			},
		},
		&cobra.Command{
			Use:   "interest <category>",
			Short: "Add or remove a category of interest",
			Args:  cobra.ExactArgs(1),
			Run: func(cmd *cobra.Command, args []string) {
				s.profile.ToggleInterest(args[0])
				s.showProfile()
			},
		},
		&cobra.Command{
			Use:   "save",
			Short: "Save your profile",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				if err := s.profile.Save(cmd.Context()); err != nil {
					s.report(err)
				}
				s.showProfile()
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Discard unsaved changes",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				s.profile.Reset()
				s.showProfile()
			},
		},
	)

	return root
}

func (s *shell) showProfile() {
	f := s.profile.Form()
	u := &model.User{
		FirstName: f.FirstName,
		LastName:  f.LastName,
		Email:     f.Email,
		Phone:     f.Phone,
	}

	s.render(view.Profile(s.out, u, f.Interests, string(s.profile.Status()), s.profile.Errors()))
}
