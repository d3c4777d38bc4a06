package app

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ggonzalez94/stablepay/internal/cache"
	"github.com/ggonzalez94/stablepay/internal/chains"
	"github.com/ggonzalez94/stablepay/internal/config"
	"github.com/ggonzalez94/stablepay/internal/dispatch"
	clierr "github.com/ggonzalez94/stablepay/internal/errors"
	"github.com/ggonzalez94/stablepay/internal/logging"
	"github.com/ggonzalez94/stablepay/internal/metrics"
	"github.com/ggonzalez94/stablepay/internal/model"
	"github.com/ggonzalez94/stablepay/internal/out"
	"github.com/ggonzalez94/stablepay/internal/resolver"
	"github.com/ggonzalez94/stablepay/internal/schema"
	"github.com/ggonzalez94/stablepay/internal/version"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type Runner struct {
	stdout io.Writer
	stderr io.Writer
	now    func() time.Time
}

func NewRunner() *Runner {
	return NewRunnerWithWriters(os.Stdout, os.Stderr)
}

func NewRunnerWithWriters(stdout, stderr io.Writer) *Runner {
	return &Runner{
		stdout: stdout,
		stderr: stderr,
		now:    time.Now,
	}
}

type runtimeState struct {
	runner      *Runner
	flags       config.GlobalFlags
	settings    config.Settings
	root        *cobra.Command
	lastCommand string

	log        *zap.Logger
	recorder   metrics.Recorder
	cache      *cache.Store
	registry   *chains.Registry
	resolver   *resolver.Resolver
	dispatcher *dispatch.Dispatcher
}

func (r *Runner) Run(args []string) int {
	state := &runtimeState{runner: r, log: zap.NewNop(), recorder: metrics.Noop{}}
	root := state.newRootCommand()
	state.root = root
	root.SetArgs(args)
	root.SetOut(r.stdout)
	root.SetErr(r.stderr)
	root.SilenceUsage = true
	root.SilenceErrors = true

	err := normalizeRunError(root.Execute())
	defer state.close()
	if err == nil {
		return 0
	}
	state.renderError("", err)
	return clierr.ExitCode(err)
}

func (s *runtimeState) close() {
	if s.cache != nil {
		_ = s.cache.Close()
	}
	_ = s.log.Sync()
}

func (s *runtimeState) newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   version.CLIName,
		Short: "Turn chat payment commands into stablecoin transaction links",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" {
				return nil
			}
			settings, err := config.Load(s.flags)
			if err != nil {
				return clierr.Wrap(clierr.CodeUsage, "load configuration", err)
			}
			s.settings = settings
			s.lastCommand = trimRootPath(cmd.CommandPath())

			log, err := logging.New(settings.LogLevel)
			if err != nil {
				return clierr.Wrap(clierr.CodeUsage, "configure logging", err)
			}
			s.log = log.With(zap.String("command", s.lastCommand))
			return nil
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return clierr.Wrap(clierr.CodeUsage, "parse flags", err)
	})

	cmd.PersistentFlags().BoolVar(&s.flags.JSON, "json", false, "Output JSON (default)")
	cmd.PersistentFlags().BoolVar(&s.flags.Plain, "plain", false, "Output plain text")
	cmd.PersistentFlags().StringVar(&s.flags.Select, "select", "", "Select fields from data (comma-separated)")
	cmd.PersistentFlags().BoolVar(&s.flags.ResultsOnly, "results-only", false, "Output only data payload")
	cmd.PersistentFlags().StringVar(&s.flags.EnableSkills, "enable-skills", "", "Allowlist chat skills (comma-separated)")
	cmd.PersistentFlags().StringVar(&s.flags.Timeout, "timeout", "", "Fee estimation timeout per command")
	cmd.PersistentFlags().IntVar(&s.flags.Retries, "retries", -1, "Retries per fee oracle request")
	cmd.PersistentFlags().BoolVar(&s.flags.NoCache, "no-cache", false, "Disable the fee quote cache")
	cmd.PersistentFlags().StringVar(&s.flags.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&s.flags.Endpoint, "endpoint", "", "Transaction frame endpoint")
	cmd.PersistentFlags().StringVar(&s.flags.ConfigPath, "config", "", "Path to config file")

	cmd.AddCommand(s.newBalanceCommand())
	cmd.AddCommand(s.newTransferCommand())
	cmd.AddCommand(s.newSendCommand())
	cmd.AddCommand(s.newChainsCommand())
	cmd.AddCommand(s.newRoutesCommand())
	cmd.AddCommand(s.newSkillsCommand())
	cmd.AddCommand(s.newServeCommand())
	cmd.AddCommand(s.newSchemaCommand())
	cmd.AddCommand(newVersionCommand())

	return cmd
}

func newVersionCommand() *cobra.Command {
	var long bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print CLI version",
		Run: func(cmd *cobra.Command, args []string) {
			if long {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), version.Long())
				return
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), version.CLIVersion)
		},
	}
	cmd.Flags().BoolVar(&long, "long", false, "Print extended build metadata")
	return cmd
}

func (s *runtimeState) newSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema [command path]",
		Short: "Print machine-readable command schema",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := schema.Build(s.root, strings.Join(args, " "))
			if err != nil {
				return clierr.Wrap(clierr.CodeUsage, "build schema", err)
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), data)
		},
	}
}

func (s *runtimeState) emitSuccess(commandPath string, data any) error {
	meta := model.NewMeta(commandPath)
	meta.Timestamp = s.runner.now().UTC()
	meta.Endpoint = s.settings.Endpoint
	env := model.Envelope{
		Version: model.EnvelopeVersion,
		Success: true,
		Data:    data,
		Meta:    meta,
	}
	return out.Render(s.runner.stdout, env, s.settings)
}

func (s *runtimeState) renderError(commandPath string, err error) {
	if strings.TrimSpace(commandPath) == "" {
		commandPath = s.lastCommand
		if commandPath == "" {
			commandPath = version.CLIName
		}
	}
	body := &model.ErrorBody{
		Code:    clierr.ExitCode(err),
		Type:    clierr.Kind(clierr.CodeInternal),
		Message: err.Error(),
	}
	if cErr, ok := clierr.As(err); ok {
		body.Type = clierr.Kind(cErr.Code)
		body.Message = cErr.Error()
		body.Options = cErr.Options
	}

	settings := s.settings
	if settings.OutputMode == "" {
		settings.OutputMode = "json"
	}
	settings.ResultsOnly = false
	settings.SelectFields = nil
	meta := model.NewMeta(commandPath)
	meta.Timestamp = s.runner.now().UTC()
	env := model.Envelope{
		Version: model.EnvelopeVersion,
		Success: false,
		Error:   body,
		Meta:    meta,
	}
	_ = out.Render(s.runner.stderr, env, settings)
}

func trimRootPath(path string) string {
	parts := strings.Fields(path)
	if len(parts) <= 1 {
		return path
	}
	return strings.Join(parts[1:], " ")
}

func normalizeRunError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := clierr.As(err); ok {
		return err
	}
	if isLikelyUsageError(err) {
		return clierr.Wrap(clierr.CodeUsage, "invalid command input", err)
	}
	return clierr.Wrap(clierr.CodeInternal, "execute command", err)
}

func isLikelyUsageError(err error) bool {
	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	patterns := []string{
		"unknown command",
		"unknown flag",
		"required flag(s)",
		"flag needs an argument",
		"requires at least",
		"requires exactly",
		"accepts ",
		"invalid argument",
	}
	for _, p := range patterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
