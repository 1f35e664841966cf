package version

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func Full(name string) string {
	return fmt.Sprintf("%s %s, commit %s, built at %s", name, Version, Commit, Date)
}
