package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/aussiebroadwan/fedauth/pkg/fedauth"
	"github.com/aussiebroadwan/fedauth/pkg/fedauth/identitytoolkit"
	"github.com/aussiebroadwan/fedauth/pkg/slogx"
	"github.com/spf13/cobra"
)

// Version is overridden at build time via -ldflags "-X".
var Version = "v0.1.0"

// Options configures NewRootCommand.
type Options struct {
	ProfilePath string
	Out         io.Writer
	Err         io.Writer

	// OpenURL replaces the browser launch of `login oauth`.
	OpenURL func(string) error
}

func DefaultOptions() Options {
	return Options{
		ProfilePath: DefaultProfilePath(),
		Out:         os.Stdout,
		Err:         os.Stderr,
	}
}

type runtimeState struct {
	opts Options

	profilePath        string
	outputOverride     string
	backendOverride    string
	federationOverride string
	verbose            bool

	profile *Profile
	logger  *slog.Logger
}

type runtimeKey struct{}

func NewRootCommand(opts Options) *cobra.Command {
	rt := &runtimeState{opts: opts, profilePath: opts.ProfilePath}

	root := &cobra.Command{
		Use:           "fedauth",
		Short:         "Federated sign-in and backend token exchange",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if rt.profilePath == "" {
				rt.profilePath = os.Getenv("FEDAUTH_PROFILE")
			}
			if !rt.verbose {
				rt.verbose = strings.EqualFold(os.Getenv("FEDAUTH_VERBOSE"), "true")
			}

			level := "warn"
			if rt.verbose {
				level = "debug"
			}
			rt.logger = slogx.New(slogx.Config{
				Service:     "fedauth",
				Version:     Version,
				Level:       level,
				Format:      "text",
				Output:      rt.errWriter(),
				KeepDefault: true,
			})

			if cmd.Name() == "version" {
				return nil
			}

			profile, err := LoadProfile(rt.profilePath)
			if err != nil {
				return err
			}
			profile.ApplyEnv()
			if rt.outputOverride != "" {
				profile.Output = rt.outputOverride
			}
			if rt.backendOverride != "" {
				profile.Backend = rt.backendOverride
			}
			if rt.federationOverride != "" {
				profile.Federation = rt.federationOverride
			}
			rt.profile = profile
			return nil
		},
	}

	root.PersistentFlags().StringVar(&rt.profilePath, "profile", rt.profilePath, "Path to profile file")
	root.PersistentFlags().StringVarP(&rt.outputOverride, "output", "o", "", "Output format: json, yaml")
	root.PersistentFlags().StringVar(&rt.backendOverride, "backend", "", "Backend base URL override")
	root.PersistentFlags().StringVar(&rt.federationOverride, "federation", "", "Federation base URL override")
	root.PersistentFlags().BoolVarP(&rt.verbose, "verbose", "v", false, "Log requests to stderr")

	if opts.Out != nil {
		root.SetOut(opts.Out)
	}
	if opts.Err != nil {
		root.SetErr(opts.Err)
	}
	root.SetContext(context.WithValue(context.Background(), runtimeKey{}, rt))

	root.AddCommand(
		NewLoginCommand(),
		NewPhoneCommand(),
		NewBackendCommand(),
		NewTokenCommand(),
		NewVersionCommand(),
	)

	return root
}

func getRuntime(cmd *cobra.Command) (*runtimeState, error) {
	rt, ok := cmd.Context().Value(runtimeKey{}).(*runtimeState)
	if !ok || rt == nil {
		return nil, errors.New("runtime not initialized")
	}
	return rt, nil
}

func (rt *runtimeState) writer() io.Writer {
	if rt.opts.Out != nil {
		return rt.opts.Out
	}
	return os.Stdout
}

func (rt *runtimeState) errWriter() io.Writer {
	if rt.opts.Err != nil {
		return rt.opts.Err
	}
	return os.Stderr
}

func (rt *runtimeState) print(v any) error {
	format := FormatJSON
	if rt.profile != nil && rt.profile.Output != "" {
		format = rt.profile.Output
	}
	return writeOutput(rt.writer(), format, v)
}

func (rt *runtimeState) commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := slogx.WithContext(cmd.Context(), rt.logger)
	if rt.profile.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, rt.profile.Timeout)
}

func (rt *runtimeState) executor() *fedauth.Executor {
	return fedauth.NewExecutor(
		fedauth.WithLogger(rt.logger),
		fedauth.WithHTTPClient(&http.Client{Timeout: rt.profile.Timeout}),
	)
}

// federation returns an identity toolkit client for the profile. An empty
// Federation URL means the production endpoints.
func (rt *runtimeState) federation() *identitytoolkit.Client {
	opts := []identitytoolkit.Option{
		identitytoolkit.WithLogger(rt.logger),
		identitytoolkit.WithExecutor(rt.executor()),
	}
	if rt.profile.Federation != "" {
		opts = append(opts, identitytoolkit.WithEmulator(rt.profile.Federation))
	}
	return identitytoolkit.New(rt.profile.APIKey, opts...)
}

func (rt *runtimeState) authenticator() *fedauth.ServerAuthenticator {
	a := fedauth.NewServerAuthenticator(rt.executor())
	a.Queue = fedauth.Inline
	return a
}

func (rt *runtimeState) exchanger(federation fedauth.FederationBackend) *fedauth.RemoteAuthExchanger {
	x := fedauth.NewRemoteAuthExchanger(
		fedauth.Endpoint(rt.profile.BackendURL(rt.profile.ExchangePath)),
		federation,
		rt.authenticator(),
	)
	x.Logger = rt.logger
	x.OnTransition = func(from, to fedauth.ExchangeState) {
		rt.logger.Debug("exchange state", "from", from, "to", to)
	}
	return x
}

func (rt *runtimeState) phoneAuthenticator() *fedauth.PhoneAuthenticator {
	return fedauth.NewPhoneAuthenticator(fedauth.PhoneEndpoints{
		Verify:  fedauth.PhoneVerifySpec{Endpoint: fedauth.Endpoint(rt.profile.BackendURL(rt.profile.VerifyPath))},
		Confirm: fedauth.PhoneCodeSpec{Endpoint: fedauth.Endpoint(rt.profile.BackendURL(rt.profile.ConfirmPath))},
	}, rt.authenticator())
}
