package dispatch

import (
	"fmt"
	"strings"

	clierr "github.com/ggonzalez94/stablepay/internal/errors"
)

type Skill struct {
	Name        string   `json:"name"`
	Usage       string   `json:"usage"`
	Description string   `json:"description"`
	Params      []string `json:"params"`
	Examples    []string `json:"examples"`
}

var skills = []Skill{
	{
		Name:        "balance",
		Usage:       "/balance [token] [chain]",
		Description: "Open a frame that shows your token balance on a chain.",
		Params:      []string{"token", "chain"},
		Examples:    []string{"/balance USDC base", "/balance USDT on tron"},
	},
	{
		Name:        "transfer",
		Usage:       "/transfer [amount] [token] [recipientAddress] [chain]",
		Description: "Prepare a stablecoin transfer and estimate its network fee.",
		Params:      []string{"amount", "token", "recipientAddress", "chain"},
		Examples:    []string{"/transfer 100 USDC to 0x0a7a51B8887ca23B13d692eC8Cb1CCa4100eda4B on base"},
	},
}

// Skills returns the skill menu used for help output.
func Skills() []Skill {
	out := make([]Skill, len(skills))
	for i, s := range skills {
		s.Params = append([]string(nil), s.Params...)
		s.Examples = append([]string(nil), s.Examples...)
		out[i] = s
	}
	return out
}

func skillNames() []string {
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		out = append(out, s.Name)
	}
	return out
}

func lookupSkill(name string) (Skill, bool) {
	for _, s := range skills {
		if s.Name == name {
			return s, true
		}
	}
	return Skill{}, false
}

// Filler words users put between positional arguments.
var fillers = map[string]struct{}{"to": {}, "on": {}}

// Parse reads a slash command such as "/transfer 100 USDC to 0xabc on base".
// Arguments fill the skill's parameters in order. Unknown skills parse
// without parameters and are rejected at dispatch time.
func Parse(text string) (Command, error) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "/") {
		return Command{}, clierr.New(clierr.CodeUsage, "messages must start with a slash command, e.g. /balance or /transfer")
	}
	fields := strings.Fields(trimmed)
	name := normalizeSkill(fields[0])
	if name == "" {
		return Command{}, clierr.New(clierr.CodeUsage, "empty slash command")
	}

	cmd := Command{Skill: name, Params: map[string]any{}, Text: text}
	skill, ok := lookupSkill(name)
	if !ok {
		return cmd, nil
	}

	args := make([]string, 0, len(fields)-1)
	for _, f := range fields[1:] {
		if _, skip := fillers[strings.ToLower(f)]; skip {
			continue
		}
		args = append(args, f)
	}
	if len(args) > len(skill.Params) {
		return Command{}, clierr.New(clierr.CodeUsage, fmt.Sprintf("too many arguments for /%s; usage: %s", skill.Name, skill.Usage))
	}
	for i, arg := range args {
		cmd.Params[skill.Params[i]] = arg
	}
	return cmd, nil
}

func normalizeSkill(v string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(v)), "/")
}
