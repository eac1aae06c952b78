package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/SergeyParamoshkin/articlehub/internal/guard"
	"github.com/SergeyParamoshkin/articlehub/internal/view"
)

var homeRoute = map[string]string{routeKey: guard.HomePath}

func (s *shell) feedCommands() []*cobra.Command {
	home := &cobra.Command{
		Use:         "feed [page]",
		Aliases:     []string{"home"},
		Short:       "Show the article feed",
		Args:        cobra.MaximumNArgs(1),
		Annotations: homeRoute,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := pageArg(args)
			if err != nil {
				return err
			}
			if err := s.feed.FetchPage(cmd.Context(), page, 0); err != nil {
				s.report(err)

				return nil
			}
			s.showFeed()

			return nil
		},
	}

	like := &cobra.Command{
		Use:         "like <id>",
		Short:       "Like an article, or take the like back",
		Args:        cobra.ExactArgs(1),
		Annotations: homeRoute,
		Run: func(cmd *cobra.Command, args []string) {
			if err := s.feed.Like(cmd.Context(), args[0]); err != nil {
				s.report(err)

				return
			}
			s.showReactions(args[0])
		},
	}

	dislike := &cobra.Command{
		Use:         "dislike <id>",
		Short:       "Dislike an article, or take the dislike back",
		Args:        cobra.ExactArgs(1),
		Annotations: homeRoute,
		Run: func(cmd *cobra.Command, args []string) {
			if err := s.feed.Dislike(cmd.Context(), args[0]); err != nil {
				s.report(err)

				return
			}
			s.showReactions(args[0])
		},
	}

	block := &cobra.Command{
		Use:         "block <id>",
		Short:       "Hide an article from the feed, or show it again",
		Args:        cobra.ExactArgs(1),
		Annotations: homeRoute,
		Run: func(cmd *cobra.Command, args []string) {
			if err := s.feed.ToggleBlock(cmd.Context(), args[0]); err != nil {
				s.report(err)

				return
			}

			a, err := s.feed.Get(args[0])
			if err != nil {
				s.report(err)

				return
			}
			if a.BlockedFor(s.session.UserID()) {
				s.printer.Info("Blocked %q", a.Title)
			} else {
				s.printer.Info("Unblocked %q", a.Title)
			}
			if line := view.BlockedLine(s.feed.BlockedCount()); line != "" {
				s.printer.Info("%s", line)
			}
		},
	}

	open := &cobra.Command{
		Use:         "open <id>",
		Short:       "Read an article",
		Args:        cobra.ExactArgs(1),
		Annotations: homeRoute,
		Run: func(cmd *cobra.Command, args []string) {
			if err := s.feed.Open(args[0]); err != nil {
				s.report(err)

				return
			}
			s.showSelected()
		},
	}

	closeCmd := &cobra.Command{
		Use:         "close",
		Short:       "Close the open article",
		Args:        cobra.NoArgs,
		Annotations: homeRoute,
		Run: func(cmd *cobra.Command, args []string) {
			s.feed.Close()
			s.showFeed()
		},
	}

	return []*cobra.Command{home, like, dislike, block, open, closeCmd}
}

func (s *shell) showFeed() {
	s.render(view.Feed(s.out, s.feed.Visible(), s.session.UserID()))
	if line := view.BlockedLine(s.feed.BlockedCount()); line != "" {
		fmt.Fprintln(s.out, s.printer.Dim(line))
	}
	page, pages := s.feed.Pagination()
	fmt.Fprintln(s.out, s.printer.Dim(view.Pagination(page, pages)))
}

func (s *shell) showSelected() {
	a, ok := s.feed.Selected()
	if !ok {
		return
	}
	s.render(view.Detail(s.out, a, s.session.UserID()))
}

func (s *shell) showReactions(id string) {
	if a, ok := s.feed.Selected(); ok && a.ID == id {
		s.showSelected()

		return
	}

	a, err := s.feed.Get(id)
	if err != nil {
		s.report(err)

		return
	}
	uid := s.session.UserID()
	s.printer.Info("%s: %d like(s)%s, %d dislike(s)%s",
		a.Title, len(a.Likes), mine(a.LikedBy(uid)), len(a.Dislikes), mine(a.DislikedBy(uid)))
}

func mine(ok bool) string {
	if ok {
		return " incl. yours"
	}

	return ""
}

func pageArg(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}

	page, err := strconv.Atoi(args[0])
	if err != nil || page < 1 {
		return 0, fmt.Errorf("page must be a positive number, got %q", args[0])
	}

	return page, nil
}
