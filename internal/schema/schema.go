package schema

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type CommandSchema struct {
	Path        string          `json:"path"`
	Use         string          `json:"use"`
	Short       string          `json:"short"`
	Example     string          `json:"example,omitempty"`
	Aliases     []string        `json:"aliases,omitempty"`
	Flags       []FlagSchema    `json:"flags,omitempty"`
	GlobalFlags []FlagSchema    `json:"global_flags,omitempty"`
	Subcommands []CommandSchema `json:"subcommands,omitempty"`
}

type FlagSchema struct {
	Name      string `json:"name"`
	Shorthand string `json:"shorthand,omitempty"`
	Type      string `json:"type"`
	Usage     string `json:"usage"`
	Default   string `json:"default,omitempty"`
	Required  bool   `json:"required,omitempty"`
}

// Build describes the command at commandPath (space separated, relative to
// root). Global flags are listed once, on the root.
func Build(root *cobra.Command, commandPath string) (CommandSchema, error) {
	cmd := root
	for _, p := range strings.Fields(commandPath) {
		next, ok := child(cmd, p)
		if !ok {
			return CommandSchema{}, fmt.Errorf("command not found: %s", commandPath)
		}
		cmd = next
	}
	s := serialize(cmd)
	if cmd == root {
		s.GlobalFlags = flagsOf(root.PersistentFlags())
	}
	return s, nil
}

func child(cmd *cobra.Command, name string) (*cobra.Command, bool) {
	for _, c := range cmd.Commands() {
		if c.Name() == name || contains(c.Aliases, name) {
			return c, true
		}
	}
	return nil, false
}

func serialize(cmd *cobra.Command) CommandSchema {
	s := CommandSchema{
		Path:    strings.TrimSpace(cmd.CommandPath()),
		Use:     cmd.Use,
		Short:   cmd.Short,
		Example: strings.TrimSpace(cmd.Example),
		Aliases: cmd.Aliases,
		Flags:   flagsOf(cmd.LocalNonPersistentFlags()),
	}
	for _, sub := range cmd.Commands() {
		if sub.Hidden || sub.Name() == "help" || sub.Name() == "completion" {
			continue
		}
		s.Subcommands = append(s.Subcommands, serialize(sub))
	}
	return s
}

func flagsOf(set *pflag.FlagSet) []FlagSchema {
	items := []FlagSchema{}
	set.VisitAll(func(f *pflag.Flag) {
		if f.Hidden || f.Name == "help" {
			return
		}
		_, required := f.Annotations[cobra.BashCompOneRequiredFlag]
		items = append(items, FlagSchema{
			Name:      f.Name,
			Shorthand: f.Shorthand,
			Type:      f.Value.Type(),
			Usage:     f.Usage,
			Default:   f.DefValue,
			Required:  required,
		})
	})
	return items
}

func contains(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}
