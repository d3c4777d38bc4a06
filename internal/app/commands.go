package app

import (
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/ggonzalez94/stablepay/internal/dispatch"
	clierr "github.com/ggonzalez94/stablepay/internal/errors"
	"github.com/ggonzalez94/stablepay/internal/metrics"
	"github.com/ggonzalez94/stablepay/internal/model"
	"github.com/ggonzalez94/stablepay/internal/resolver"
	"github.com/ggonzalez94/stablepay/internal/server"
	"github.com/spf13/cobra"
)

func (s *runtimeState) newBalanceCommand() *cobra.Command {
	var token, chain, address string
	cmd := &cobra.Command{
		Use:     "balance",
		Short:   "Build a balance-check link for a token on a chain",
		Example: "  stablepay balance --token USDC --chain base",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.runCommand(cmd, dispatch.Command{
				Skill:  string(resolver.OpBalance),
				Params: compactParams(map[string]string{"token": token, "chain": chain}),
				Sender: address,
			})
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "Token symbol (defaults to the configured token)")
	cmd.Flags().StringVar(&chain, "chain", "", "Chain id or name")
	cmd.Flags().StringVar(&address, "address", "", "Address whose balance is checked")
	return cmd
}

func (s *runtimeState) newTransferCommand() *cobra.Command {
	var amount, token, to, chain, text string
	cmd := &cobra.Command{
		Use:     "transfer",
		Short:   "Prepare a transfer link with an estimated network fee",
		Example: "  stablepay transfer --amount 100 --token USDC --to 0x0a7a51B8887ca23B13d692eC8Cb1CCa4100eda4B --chain ethereum",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.runCommand(cmd, dispatch.Command{
				Skill: string(resolver.OpTransfer),
				Params: compactParams(map[string]string{
					"amount":           amount,
					"token":            token,
					"recipientAddress": to,
					"chain":            chain,
				}),
				Text: text,
			})
		},
	}
	cmd.Flags().StringVar(&amount, "amount", "", "Amount in token units, e.g. 12.5")
	cmd.Flags().StringVar(&token, "token", "", "Token symbol (defaults to the configured token)")
	cmd.Flags().StringVar(&to, "to", "", "Recipient address")
	cmd.Flags().StringVar(&chain, "chain", "", "Chain id or name")
	cmd.Flags().StringVar(&text, "text", "", "Free text to search for a chain name when --chain is absent")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func (s *runtimeState) newSendCommand() *cobra.Command {
	var sender string
	cmd := &cobra.Command{
		Use:     "send <slash command>",
		Short:   "Resolve a chat slash command such as \"/transfer 10 USDC to 0x... on base\"",
		Example: "  stablepay send /balance USDT on tron",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := dispatch.Parse(strings.Join(args, " "))
			if err != nil {
				return err
			}
			parsed.Sender = sender
			return s.runCommand(cmd, parsed)
		},
	}
	cmd.Flags().StringVar(&sender, "sender", "", "Address of the user issuing the command")
	return cmd
}

func (s *runtimeState) runCommand(cmd *cobra.Command, command dispatch.Command) error {
	d, err := s.engine()
	if err != nil {
		return err
	}
	reply := d.Dispatch(cmd.Context(), command)
	if !reply.OK() {
		return reply.Err
	}
	return s.emitSuccess(trimRootPath(cmd.CommandPath()), reply.Result())
}

func (s *runtimeState) newChainsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "chains",
		Short: "List supported chains, tokens and address rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := s.engine(); err != nil {
				return err
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), model.ChainInfos(s.registry))
		},
	}
}

func (s *runtimeState) newRoutesCommand() *cobra.Command {
	var token, to, amount string
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Compare current transfer fees across chains that carry a token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := s.engine(); err != nil {
				return err
			}
			routes, err := s.resolver.Routes(cmd.Context(), resolver.Request{
				Operation: resolver.OpTransfer,
				Token:     token,
				Recipient: to,
				Amount:    amount,
			})
			if err != nil {
				return err
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), model.RouteQuotes(routes))
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "Token symbol (defaults to the configured token)")
	cmd.Flags().StringVar(&to, "to", "", "Only chains accepting this recipient address")
	cmd.Flags().StringVar(&amount, "amount", "", "Amount to validate against each token's precision")
	return cmd
}

func (s *runtimeState) newSkillsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "skills",
		Short: "List chat skills and their slash-command usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := s.engine()
			if err != nil {
				return err
			}
			available := d.Available()
			items := []dispatch.Skill{}
			for _, sk := range dispatch.Skills() {
				if slices.Contains(available, sk.Name) {
					items = append(items, sk)
				}
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), items)
		},
	}
}

func (s *runtimeState) newServeCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the command API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			prom := metrics.NewPrometheus()
			s.recorder = prom
			d, err := s.engine()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = s.settings.ListenAddr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			handler := server.NewHandler(d, s.resolver, s.log)
			srv := server.New(addr, server.NewRouter(handler, prom.Handler(), s.log))
			if err := server.Run(ctx, srv, s.log); err != nil {
				return clierr.Wrap(clierr.CodeUnavailable, "http server", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (defaults to serve.addr or :8080)")
	return cmd
}

// compactParams drops empty flags so they read as absent, not blank.
func compactParams(in map[string]string) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out[k] = v
		}
	}
	return out
}
