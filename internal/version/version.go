package version

import "fmt"

var (
	CLIName    = "stablepay"
	CLIVersion = "0.1.0"
	Commit     = "unknown"
	BuildDate  = "unknown"
)

func Long() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", CLIVersion, Commit, BuildDate)
}

// UserAgent identifies outbound fee oracle requests.
func UserAgent() string {
	return fmt.Sprintf("%s/%s", CLIName, CLIVersion)
}
