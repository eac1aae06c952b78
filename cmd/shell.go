package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/google/shlex"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/SergeyParamoshkin/articlehub/client"
	"github.com/SergeyParamoshkin/articlehub/internal/authoring"
	"github.com/SergeyParamoshkin/articlehub/internal/config"
	"github.com/SergeyParamoshkin/articlehub/internal/feed"
	"github.com/SergeyParamoshkin/articlehub/internal/guard"
	"github.com/SergeyParamoshkin/articlehub/internal/metrics"
	"github.com/SergeyParamoshkin/articlehub/internal/notify"
	"github.com/SergeyParamoshkin/articlehub/internal/profile"
	"github.com/SergeyParamoshkin/articlehub/internal/session"
	"github.com/SergeyParamoshkin/articlehub/internal/validation"
	"github.com/SergeyParamoshkin/articlehub/internal/view"
)

// routeKey is the command annotation naming the route a command belongs to.
const routeKey = "route"

var errRedirected = errors.New("redirected")

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start the interactive client",
	Long: `Start the interactive client.

Each line is one command. Type "help" for the list of commands and
"exit" to leave. Commands that need a signed-in user redirect to the
login screen when nobody is signed in.`,
	RunE: runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

func runShell(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	provider, err := metrics.New()
	if err != nil {
		return err
	}
	defer shutdownMetrics(provider)

	if cfg.Diag.Addr != "" {
		diagCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		go func() {
			if err := serve(diagCtx, "diag", cfg.Diag.Addr, provider.DiagRouter()); err != nil {
				logger.Warnw("diag server", "error", err)
			}
		}()
	}

	sh, err := newShell(cfg, logger, provider, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	return sh.run(ctx, cmd.InOrStdin())
}

// shell holds one client session and the controllers built on it.
type shell struct {
	out     io.Writer
	printer *notify.Printer
	logger  *zap.SugaredLogger
	routes  guard.Routes

	validate  *validation.Validator
	session   *session.Store
	feed      *feed.Controller
	authoring *authoring.Controller
	profile   *profile.Controller
}

func newShell(cfg *config.Config, logger *zap.SugaredLogger, provider *metrics.Provider, out, errOut io.Writer) (*shell, error) {
	mode, err := notify.ParseColorMode(cfg.Output.Color)
	if err != nil {
		return nil, err
	}
	printer := notify.NewPrinter(out, errOut, notify.ResolveColors(mode, cfg.Output.Colors))

	api, err := client.New(cfg.API.BaseURL,
		client.WithLogger(logger.Named("client")),
		client.WithTimeout(cfg.API.Timeout),
		client.WithMeter(provider.Meter()),
	)
	if err != nil {
		return nil, err
	}

	v := validation.New()
	sess := session.New(api, logger.Named("session"))

	return &shell{
		out:      out,
		printer:  printer,
		logger:   logger,
		routes:   guard.DefaultRoutes(),
		validate: v,
		session:  sess,
		feed: feed.New(api, sess,
			feed.WithLogger(logger.Named("feed")),
			feed.WithNotifier(printer),
			feed.WithPageSize(cfg.Feed.PageSize),
		),
		authoring: authoring.New(api, v,
			authoring.WithLogger(logger.Named("authoring")),
			authoring.WithNotifier(printer),
			authoring.WithPageSize(cfg.Feed.PageSize),
		),
		profile: profile.New(api, sess, v,
			profile.WithLogger(logger.Named("profile")),
			profile.WithNotifier(printer),
			profile.WithSavedHold(cfg.Profile.SavedHold),
		),
	}, nil
}

func (s *shell) run(ctx context.Context, in io.Reader) error {
	s.session.Verify(ctx)
	if u, ok := s.session.User(); ok {
		s.printer.Success("Welcome back, " + u.FirstName)
		s.profile.Reset()
		s.land(ctx, guard.HomePath)
	} else {
		s.land(ctx, guard.LoginPath)
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, s.prompt())
		if !scanner.Scan() {
			fmt.Fprintln(s.out)

			break
		}

		args, err := shlex.Split(scanner.Text())
		if err != nil {
			s.printer.Error(err.Error())

			continue
		}
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" || args[0] == "quit" {
			return nil
		}

		s.exec(ctx, args)
	}

	return scanner.Err()
}

func (s *shell) prompt() string {
	if u, ok := s.session.User(); ok {
		return s.printer.Bold(u.Initials()) + " > "
	}

	return s.printer.Dim("guest") + " > "
}

// exec runs one line through a fresh command tree so flags never leak
// between lines.
func (s *shell) exec(ctx context.Context, args []string) {
	root := s.commands()
	root.SetArgs(args)
	root.SetOut(s.out)
	root.SetErr(s.out)

	if err := root.ExecuteContext(ctx); err != nil && !errors.Is(err, errRedirected) {
		s.printer.Error(err.Error())
	}
}

func (s *shell) commands() *cobra.Command {
	root := &cobra.Command{
		Use:           "shell",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return s.authorize(cmd)
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(s.authCommands()...)
	root.AddCommand(s.feedCommands()...)
	root.AddCommand(s.articleCommands()...)
	root.AddCommand(s.profileCommand())

	return root
}

// authorize applies the route guard of the command, or of its nearest
// parent that names a route.
func (s *shell) authorize(cmd *cobra.Command) error {
	route := ""
	for c := cmd; c != nil && route == ""; c = c.Parent() {
		route = c.Annotations[routeKey]
	}
	if route == "" {
		return nil
	}

	d := s.routes.Resolve(route, s.session)
	if d.Allowed {
		return nil
	}

	s.logger.Debugw("route guarded", "route", route, "redirect", d.Redirect)
	s.printer.Info("Redirected to %s", d.Redirect)
	s.land(cmd.Context(), d.Redirect)

	return errRedirected
}

// land shows the screen for route.
func (s *shell) land(ctx context.Context, route string) {
	switch route {
	case guard.HomePath:
		if err := s.feed.FetchPage(ctx, 1, 0); err != nil {
			s.report(err)

			return
		}
		s.showFeed()
	case guard.LoginPath:
		s.printer.Info(`Sign in with "login <email-or-phone> <password>" or create an account with "signup --help".`)
	}
}

// report prints err unless a controller already notified it.
func (s *shell) report(err error) {
	if err == nil {
		return
	}

	if fields := validation.Fields(err); fields != nil {
		s.printer.Error("Please fix the highlighted fields")
		s.render(view.FieldErrors(s.out, fields))

		return
	}

	var (
		apiErr *client.APIError
		urlErr *url.Error
	)
	if errors.As(err, &apiErr) || errors.As(err, &urlErr) || errors.Is(err, context.DeadlineExceeded) {
		return
	}

	s.printer.Error(capitalize(err.Error()))
}

func (s *shell) render(err error) {
	if err != nil {
		s.logger.Errorw("render", "error", err)
	}
}

func capitalize(msg string) string {
	if msg == "" {
		return msg
	}

	return strings.ToUpper(msg[:1]) + msg[1:]
}
