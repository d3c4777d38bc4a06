// Package dispatch turns chat commands into user-facing replies. It is the
// only package that writes text meant for end users.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	clierr "github.com/ggonzalez94/stablepay/internal/errors"
	"github.com/ggonzalez94/stablepay/internal/metrics"
	"github.com/ggonzalez94/stablepay/internal/model"
	"github.com/ggonzalez94/stablepay/internal/policy"
	"github.com/ggonzalez94/stablepay/internal/resolver"
	"github.com/ggonzalez94/stablepay/internal/txurl"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Command is what the transport hands over after parsing a message. Param
// values may be strings or numbers.
type Command struct {
	Skill  string         `json:"skill" validate:"required"`
	Params map[string]any `json:"params"`
	Sender string         `json:"sender_address"`
	Text   string         `json:"raw_text"`
}

type Reply struct {
	Status  string   `json:"status"`
	Code    int      `json:"code,omitempty"`
	Kind    string   `json:"kind,omitempty"`
	Text    string   `json:"text"`
	URL     string   `json:"url,omitempty"`
	Options []string `json:"options,omitempty"`

	Intent resolver.Intent `json:"-"`
	Err    *clierr.Error   `json:"-"`
}

func (r Reply) OK() bool { return r.Status == StatusSuccess }

// Result flattens the reply into the CLI output payload.
func (r Reply) Result() model.CommandResult {
	res := model.CommandResult{Status: r.Status, URL: r.URL, Text: r.Text}
	if !r.OK() {
		return res
	}
	in := r.Intent
	res.Operation = string(in.Operation)
	res.Chain = in.Chain.ID
	res.Token = in.Token.Symbol
	res.Recipient = in.Recipient
	if in.Amount.Valid {
		res.Amount = in.Amount.Decimal.String()
	}
	if in.Fee.Valid {
		res.Fee = in.Fee.Decimal.String()
		res.FeeToken = in.Chain.NativeToken
	}
	return res
}

type Option func(*Dispatcher)

func WithLogger(log *zap.Logger) Option {
	return func(d *Dispatcher) {
		if log != nil {
			d.log = log
		}
	}
}

func WithRecorder(rec metrics.Recorder) Option {
	return func(d *Dispatcher) {
		if rec != nil {
			d.recorder = rec
		}
	}
}

// WithTimeout bounds each resolution. A timeout surfaces as a fee
// estimation failure since that is the only blocking step.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) { d.timeout = timeout }
}

func WithAllowedSkills(allowlist []string) Option {
	return func(d *Dispatcher) { d.allowlist = append([]string(nil), allowlist...) }
}

type Dispatcher struct {
	resolver  *resolver.Resolver
	urls      *txurl.Builder
	log       *zap.Logger
	recorder  metrics.Recorder
	timeout   time.Duration
	allowlist []string
}

func New(res *resolver.Resolver, urls *txurl.Builder, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		resolver: res,
		urls:     urls,
		log:      zap.NewNop(),
		recorder: metrics.Noop{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Available lists the command keywords this dispatcher accepts.
func (d *Dispatcher) Available() []string {
	return policy.Filter(d.allowlist, skillNames())
}

func (d *Dispatcher) Dispatch(ctx context.Context, cmd Command) Reply {
	start := time.Now()
	skill := normalizeSkill(cmd.Skill)

	reply := d.dispatch(ctx, skill, cmd)

	label, outcome := skill, "ok"
	if _, known := lookupSkill(skill); !known {
		label = "unknown"
	}
	if reply.Err != nil {
		outcome = reply.Kind
	}
	elapsed := time.Since(start)
	d.recorder.ObserveDispatch(label, outcome, elapsed)

	fields := []zap.Field{
		zap.String("skill", skill),
		zap.String("sender", cmd.Sender),
		zap.String("outcome", outcome),
		zap.Duration("elapsed", elapsed),
	}
	switch {
	case reply.Err == nil:
		d.log.Info("command resolved", append(fields, zap.String("url", reply.URL))...)
	case reply.Err.Code == clierr.CodeFeeEstimation || reply.Code >= 500:
		d.log.Error("command failed", append(fields, zap.Error(reply.Err))...)
	default:
		d.log.Info("command rejected", append(fields, zap.String("reason", reply.Err.Message))...)
	}
	return reply
}

func (d *Dispatcher) dispatch(ctx context.Context, skill string, cmd Command) Reply {
	op := resolver.Operation(skill)
	if !op.Valid() || policy.CheckSkillAllowed(d.allowlist, skill) != nil {
		available := d.Available()
		return errorReply(clierr.Reject(
			clierr.CodeUnknownCommand,
			fmt.Sprintf("Unsupported command %q. Available commands are: %s", cmd.Skill, strings.Join(available, ", ")),
			available,
		))
	}

	req := resolver.Request{
		Operation: op,
		Token:     param(cmd.Params, "token"),
		Chain:     param(cmd.Params, "chain"),
		Amount:    param(cmd.Params, "amount"),
		Recipient: param(cmd.Params, "recipientAddress", "recipient", "to"),
		Requester: cmd.Sender,
		Text:      cmd.Text,
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}
	intent, err := d.resolver.Resolve(ctx, req)
	if err != nil {
		cErr, ok := clierr.As(err)
		if !ok {
			cErr = clierr.Wrap(clierr.CodeInternal, "Something went wrong while preparing your request", err)
		}
		return errorReply(cErr)
	}

	link := d.urls.Build(intent)
	return Reply{
		Status: StatusSuccess,
		Kind:   clierr.Kind(clierr.CodeSuccess),
		Text:   successText(intent, link),
		URL:    link,
		Intent: intent,
	}
}

func successText(intent resolver.Intent, link string) string {
	if intent.Operation == resolver.OpBalance {
		return fmt.Sprintf("Check your %s balance on %s:\n%s", intent.Token.Symbol, intent.Chain.Name, link)
	}
	var sb strings.Builder
	sb.WriteString("Transfer ready:\n")
	fmt.Fprintf(&sb, "Amount: %s %s\n", intent.Amount.Decimal.String(), intent.Token.Symbol)
	fmt.Fprintf(&sb, "To: %s\n", intent.Recipient)
	fmt.Fprintf(&sb, "Chain: %s\n", intent.Chain.Name)
	fmt.Fprintf(&sb, "Estimated fee: %s %s\n\n", FormatFee(intent.Fee.Decimal), intent.Chain.NativeToken)
	sb.WriteString("Click to proceed with transfer:\n")
	sb.WriteString(link)
	return sb.String()
}

func errorReply(cErr *clierr.Error) Reply {
	text := cErr.Message
	if cErr.Code == clierr.CodeFeeEstimation {
		text += ". Please try again in a moment."
	}
	return Reply{
		Status:  StatusError,
		Code:    clierr.HTTPStatus(cErr.Code),
		Kind:    clierr.Kind(cErr.Code),
		Text:    text,
		Options: cErr.Options,
		Err:     cErr,
	}
}

// FormatFee keeps at least one decimal place so whole fees read as "5.0".
func FormatFee(fee decimal.Decimal) string {
	s := fee.String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func param(params map[string]any, keys ...string) string {
	for _, key := range keys {
		v, ok := params[key]
		if !ok || v == nil {
			continue
		}
		var s string
		switch x := v.(type) {
		case string:
			s = x
		case float64:
			s = strconv.FormatFloat(x, 'f', -1, 64)
		case float32:
			s = strconv.FormatFloat(float64(x), 'f', -1, 32)
		case int:
			s = strconv.Itoa(x)
		case int64:
			s = strconv.FormatInt(x, 10)
		case json.Number:
			s = x.String()
		default:
			s = fmt.Sprint(x)
		}
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}
