package builder

import (
	"os/exec"
	"runtime/debug"
	"strings"
)

// Set at build time:
//
//	-ldflags "-X github.com/idlab-discover/agropredict-cli/internal/builder.Version=v1.0.0 -X ...Commit=abc123"
var (
	Version = ""
	Commit  = ""
)

var (
	readBuildInfo = debug.ReadBuildInfo
	runGit        = func(args ...string) (string, error) {
		out, err := exec.Command("git", args...).Output()
		return strings.TrimSpace(string(out)), err
	}
)

// GetVersion resolves the version recorded in BOM metadata: ldflags first,
// then module build info, git describe and finally the commit.
func GetVersion() string {
	if Version != "" && Version != "dev" {
		return Version
	}
	if info, ok := readBuildInfo(); ok {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			return v
		}
	}
	if d := gitDescribe(); d != "" {
		return d
	}
	if Commit != "" {
		return "commit-" + Commit
	}
	return "devel"
}

func gitDescribe() string {
	if out, err := runGit("describe", "--tags", "--always", "--dirty"); err == nil && out != "" {
		return out
	}
	if out, err := runGit("rev-parse", "--short", "HEAD"); err == nil {
		return out
	}
	return ""
}
