package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/SergeyParamoshkin/articlehub/internal/authoring"
	"github.com/SergeyParamoshkin/articlehub/internal/model"
	"github.com/SergeyParamoshkin/articlehub/internal/view"
)

var articlesRoute = map[string]string{routeKey: "/articles"}

func (s *shell) articleCommands() []*cobra.Command {
	list := &cobra.Command{
		Use:         "articles [page]",
		Short:       "List your own articles",
		Args:        cobra.MaximumNArgs(1),
		Annotations: articlesRoute,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := pageArg(args)
			if err != nil {
				return err
			}
			if err := s.authoring.FetchPage(cmd.Context(), page, 0); err != nil {
				s.report(err)

				return nil
			}
			s.showMyArticles()

			return nil
		},
	}

	create := &cobra.Command{
		Use:         "new",
		Short:       "Start writing an article",
		Args:        cobra.NoArgs,
		Annotations: articlesRoute,
		Run: func(cmd *cobra.Command, args []string) {
			if err := s.authoring.StartCreate(); err != nil {
				s.report(err)

				return
			}
			s.showDraft()
		},
	}

	edit := &cobra.Command{
		Use:         "edit <id>",
		Short:       "Edit one of your articles",
		Args:        cobra.ExactArgs(1),
		Annotations: articlesRoute,
		Run: func(cmd *cobra.Command, args []string) {
			if err := s.authoring.StartEdit(args[0]); err != nil {
				s.report(err)

				return
			}
			s.showDraft()
		},
	}

	set := &cobra.Command{
		Use:         "set <title|content|category> <value...>",
		Short:       "Set a field of the open draft",
		Args:        cobra.MinimumNArgs(2),
		Annotations: articlesRoute,
		RunE: func(cmd *cobra.Command, args []string) error {
			value := strings.Join(args[1:], " ")

			var apply func(d *authoring.Draft)
			switch args[0] {
			case "title":
				apply = func(d *authoring.Draft) { d.Title = value }
			case "content":
				value = strings.ReplaceAll(value, `\n`, "\n")
				apply = func(d *authoring.Draft) { d.Content = value }
			case "category":
				apply = func(d *authoring.Draft) { d.Category = model.Category(value) }
			default:
				return fmt.Errorf("unknown draft field %q", args[0])
			}

			s.editDraft(func(d *authoring.Draft) error {
				apply(d)

				return nil
			})

			return nil
		},
	}

	tag := &cobra.Command{
		Use:         "tag",
		Short:       "Add or remove draft tags",
		Annotations: articlesRoute,
	}
	tag.AddCommand(
		&cobra.Command{
			Use:   "add <tag>",
			Short: "Add a tag",
			Args:  cobra.ExactArgs(1),
			Run: func(cmd *cobra.Command, args []string) {
				s.editDraft(func(d *authoring.Draft) error { return d.AddTag(args[0]) })
			},
		},
		&cobra.Command{
			Use:   "rm <tag>",
			Short: "Remove a tag",
			Args:  cobra.ExactArgs(1),
			Run: func(cmd *cobra.Command, args []string) {
				s.editDraft(func(d *authoring.Draft) error {
					d.RemoveTag(args[0])

					return nil
				})
			},
		},
	)

	image := &cobra.Command{
		Use:         "image",
		Short:       "Attach or remove the draft image",
		Annotations: articlesRoute,
	}
	image.AddCommand(
		&cobra.Command{
			Use:   "set <path>",
			Short: "Attach an image file",
			Args:  cobra.ExactArgs(1),
			Run: func(cmd *cobra.Command, args []string) {
				data, err := os.ReadFile(args[0])
				if err != nil {
					s.report(err)

					return
				}
				s.editDraft(func(d *authoring.Draft) error {
					return d.SetImage(filepath.Base(args[0]), data)
				})
			},
		},
		&cobra.Command{
			Use:   "rm",
			Short: "Remove the image",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				s.editDraft(func(d *authoring.Draft) error {
					d.RemoveImage()

					return nil
				})
			},
		},
	)

	draft := &cobra.Command{
		Use:         "draft",
		Short:       "Show the open draft",
		Args:        cobra.NoArgs,
		Annotations: articlesRoute,
		Run: func(cmd *cobra.Command, args []string) {
			s.showDraft()
		},
	}

	save := &cobra.Command{
		Use:         "save",
		Short:       "Publish the open draft",
		Args:        cobra.NoArgs,
		Annotations: articlesRoute,
		Run: func(cmd *cobra.Command, args []string) {
			if _, err := s.authoring.Save(cmd.Context()); err != nil {
				s.report(err)

				return
			}
			s.showMyArticles()
		},
	}

	cancel := &cobra.Command{
		Use:         "cancel",
		Short:       "Discard the open draft",
		Args:        cobra.NoArgs,
		Annotations: articlesRoute,
		Run: func(cmd *cobra.Command, args []string) {
			s.authoring.Cancel()
			s.showMyArticles()
		},
	}

	del := &cobra.Command{
		Use:         "delete <id>",
		Short:       "Delete one of your articles",
		Args:        cobra.ExactArgs(1),
		Annotations: articlesRoute,
		Run: func(cmd *cobra.Command, args []string) {
			if err := s.authoring.RequestDelete(args[0]); err != nil {
				s.report(err)

				return
			}
			a, _ := s.authoring.PendingDelete()
			s.printer.Info(`Delete %q? Type "confirm" to delete it or "abort" to keep it.`, a.Title)
		},
	}

	confirm := &cobra.Command{
		Use:         "confirm",
		Short:       "Confirm the pending delete",
		Args:        cobra.NoArgs,
		Annotations: articlesRoute,
		Run: func(cmd *cobra.Command, args []string) {
			if err := s.authoring.ConfirmDelete(cmd.Context()); err != nil {
				s.report(err)

				return
			}
			s.showMyArticles()
		},
	}

	abort := &cobra.Command{
		Use:         "abort",
		Short:       "Keep the article pending deletion",
		Args:        cobra.NoArgs,
		Annotations: articlesRoute,
		Run: func(cmd *cobra.Command, args []string) {
			s.authoring.CancelDelete()
		},
	}

	return []*cobra.Command{list, create, edit, set, tag, image, draft, save, cancel, del, confirm, abort}
}

func (s *shell) editDraft(fn func(d *authoring.Draft) error) {
	if err := s.authoring.EditDraft(fn); err != nil {
		s.report(err)

		return
	}
	s.showDraft()
}

func (s *shell) showDraft() {
	d, err := s.authoring.Draft()
	if err != nil {
		s.report(err)

		return
	}

	heading := "New article"
	if st, ok := s.authoring.State().(authoring.EditState); ok {
		heading = "Editing " + st.Original.Title
	}
	s.render(view.Draft(s.out, s.printer.Bold(heading), d.Title, d.Content, d.Category, d.Tags, d.Preview))
}

func (s *shell) showMyArticles() {
	s.render(view.MyArticles(s.out, s.authoring.Articles()))
	page, pages := s.authoring.Pagination()
	fmt.Fprintln(s.out, s.printer.Dim(view.Pagination(page, pages)))
}
