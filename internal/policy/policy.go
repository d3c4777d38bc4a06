package policy

import (
	"fmt"
	"strings"

	clierr "github.com/ggonzalez94/stablepay/internal/errors"
)

// CheckSkillAllowed enforces the --enable-skills allowlist. An empty
// allowlist allows everything.
func CheckSkillAllowed(allowlist []string, skill string) error {
	if len(allowlist) == 0 {
		return nil
	}
	norm := normalize(skill)
	for _, allowed := range allowlist {
		if normalize(allowed) == norm {
			return nil
		}
	}
	return clierr.New(clierr.CodeBlocked, fmt.Sprintf("skill %q blocked by --enable-skills policy", norm))
}

// Filter returns the skills in order that the allowlist permits.
func Filter(allowlist, skills []string) []string {
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		if CheckSkillAllowed(allowlist, s) == nil {
			out = append(out, s)
		}
	}
	return out
}

func normalize(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	return strings.TrimPrefix(v, "/")
}
