package version

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

var (
	// Release returns the release version
	Release = "UNKNOWN"
	// Commit returns the short sha from git
	Commit = "UNKNOWN"
	// BuildDate is the build date
	BuildDate = ""
)

// Version ...
type Version struct {
	GitCommit string `json:"gitCommit"`
	BuildDate string `json:"buildDate"`
	Release   string `json:"release"`
	GoVersion string `json:"goVersion"`
	Compiler  string `json:"compiler"`
	Platform  string `json:"platform"`
}

// String ...
func (v Version) String() string {
	return fmt.Sprintf(
		"%s/%s (%s) Date/%s GitCommit/%s %s",
		filepath.Base(os.Args[0]),
		v.Release,
		v.Platform,
		v.BuildDate,
		v.GitCommit,
		v.GoVersion,
	)
}

// GetVersion returns version
func GetVersion() Version {
	return Version{
		GitCommit: Commit,
		BuildDate: BuildDate,
		Release:   Release,
		GoVersion: runtime.Version(),
		Compiler:  runtime.Compiler,
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}
