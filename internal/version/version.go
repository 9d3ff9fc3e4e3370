// Package version exposes the version the binaries were built from
package version

import (
	_ "embed" // VERSION file
	"fmt"
	"strconv"
	"strings"
)

// VERSION is the content of the VERSION file, e.g. "0.3.0" or "0.4.0-pr2"
//
//go:embed VERSION
var VERSION string

// Parsed parts of VERSION; PRE is 0 for releases
var (
	MAJOR int
	MINOR int
	FIX   int
	PRE   int
)

func init() {
	VERSION = strings.TrimSpace(VERSION)
	MAJOR, MINOR, FIX, PRE = parse(VERSION)
}

func parse(v string) (major, minor, fix, pre int) {
	release, preRelease, _ := strings.Cut(v, "-")
	parts := strings.SplitN(release, ".", 3)
	nums := make([]int, 3)
	for i, p := range parts {
		nums[i], _ = strconv.Atoi(p)
	}
	pre, _ = strconv.Atoi(strings.TrimPrefix(preRelease, "pr"))
	return nums[0], nums[1], nums[2], pre
}

// String formats the version with a leading "v"
func String() string {
	s := fmt.Sprintf("v%d.%d.%d", MAJOR, MINOR, FIX)
	if PRE > 0 {
		s += fmt.Sprintf("-pr%d", PRE)
	}
	return s
}
