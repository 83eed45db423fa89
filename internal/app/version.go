package app

import (
	"fmt"
	"strings"
)

// Build metadata, stamped with -ldflags "-X github.com/tejashwikalptaru/tunebox/internal/app.GitTag=v1.2.0".
var (
	Version   = "dev"
	GitCommit = "unknown"
	GitTag    = ""
	BuildTime = "unknown"
)

// shortCommitLen matches git's default abbreviation.
const shortCommitLen = 7

// VersionInfo describes the running build.
type VersionInfo struct {
	Version   string
	GitCommit string
	GitTag    string
	BuildTime string
}

// GetVersionInfo returns the metadata stamped into this binary.
func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:   Version,
		GitCommit: GitCommit,
		GitTag:    GitTag,
		BuildTime: BuildTime,
	}
}

// Short is the release name: the tag of a tagged build, otherwise the version
// with the abbreviated commit appended, as in "dev+1a2b3c4".
func (v VersionInfo) Short() string {
	if tag := strings.TrimSpace(v.GitTag); tag != "" {
		return tag
	}
	commit := v.shortCommit()
	if commit == "" {
		return v.Version
	}
	return v.Version + "+" + commit
}

// FullString is the one-line form written to the startup log and by
// "tunebox version".
func (v VersionInfo) FullString() string {
	return fmt.Sprintf("TuneBox %s (commit: %s, built: %s)", v.Short(), v.GitCommit, v.BuildTime)
}

func (v VersionInfo) shortCommit() string {
	commit := strings.TrimSpace(v.GitCommit)
	if commit == "" || commit == "unknown" {
		return ""
	}
	if len(commit) > shortCommitLen {
		commit = commit[:shortCommitLen]
	}
	return commit
}
