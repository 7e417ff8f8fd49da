package entities

import (
	"cmp"
	"regexp"
	"slices"
	"strings"
)

// VersionNumber is a Gradle-style version: major[.minor[.micro]][(.|-)qualifier].
// Strings that do not start with a digit parse as 0.0.0 without qualifier.
type VersionNumber struct {
	Major     int
	Minor     int
	Micro     int
	Qualifier string
}

// ParseVersionNumber parses s; it never fails
func ParseVersionNumber(s string) VersionNumber {
	sc := versionScanner{s: s}
	if !sc.hasDigit() {
		return VersionNumber{}
	}

	var v VersionNumber
	v.Major = sc.scanDigits()
	if sc.isSeparatorAndDigit() {
		sc.pos++
		v.Minor = sc.scanDigits()
		if sc.isSeparatorAndDigit() {
			sc.pos++
			v.Micro = sc.scanDigits()
		}
	}

	if sc.pos == len(s) {
		return v
	}
	if sc.isQualifier() {
		v.Qualifier = s[sc.pos+1:]
		return v
	}
	return VersionNumber{}
}

// Compare returns -1, 0 or 1. A version without qualifier ranks above the same
// numbers with a qualifier; qualifiers compare case-insensitively.
func (v VersionNumber) Compare(o VersionNumber) int {
	if c := cmp.Compare(v.Major, o.Major); c != 0 {
		return c
	}
	if c := cmp.Compare(v.Minor, o.Minor); c != 0 {
		return c
	}
	if c := cmp.Compare(v.Micro, o.Micro); c != 0 {
		return c
	}

	switch {
	case v.Qualifier == "" && o.Qualifier == "":
		return 0
	case v.Qualifier == "":
		return 1
	case o.Qualifier == "":
		return -1
	}
	return strings.Compare(strings.ToLower(v.Qualifier), strings.ToLower(o.Qualifier))
}

// CompareVersions compares two version strings with VersionNumber ordering
func CompareVersions(a, b string) int {
	return ParseVersionNumber(a).Compare(ParseVersionNumber(b))
}

// SortVersions sorts versions ascending in place; equal versions keep their order
func SortVersions(versions []string) {
	slices.SortStableFunc(versions, CompareVersions)
}

// LatestVersion returns the highest version, or "" for an empty list
func LatestVersion(versions []string) string {
	if len(versions) == 0 {
		return ""
	}
	sorted := slices.Clone(versions)
	SortVersions(sorted)
	return sorted[len(sorted)-1]
}

type versionScanner struct {
	s   string
	pos int
}

func (sc *versionScanner) hasDigit() bool {
	return sc.pos < len(sc.s) && isDigit(sc.s[sc.pos])
}

func (sc *versionScanner) isSeparatorAndDigit() bool {
	return sc.pos < len(sc.s)-1 && sc.s[sc.pos] == '.' && isDigit(sc.s[sc.pos+1])
}

func (sc *versionScanner) isQualifier() bool {
	return sc.pos < len(sc.s)-1 && (sc.s[sc.pos] == '.' || sc.s[sc.pos] == '-')
}

func (sc *versionScanner) scanDigits() int {
	n := 0
	for sc.hasDigit() {
		n = n*10 + int(sc.s[sc.pos]-'0')
		sc.pos++
	}
	return n
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// releasePattern splits a version into its base and an optional pre-release label.
// ".Final" and ".RELEASE" mark a stable release of the base version.
var releasePattern = regexp.MustCompile(
	`(?i)^(\d+(?:\.\d+)*)(?:\.Final|\.RELEASE)?(?:[-.](alpha\d*|beta\d*|rc\d*|cr\d*|m\d+|ea\d*|b\d+|\d+|preview)(?:[-.].*)?)?$`,
)

// ReleaseInfo is the result of matching a version against the release pattern
type ReleaseInfo struct {
	Base       string
	PreRelease string
	Matched    bool
}

// IsPreRelease reports whether the version carries a pre-release label
func (r ReleaseInfo) IsPreRelease() bool {
	return r.Matched && r.PreRelease != ""
}

// ParseRelease matches version against the release pattern
func ParseRelease(version string) ReleaseInfo {
	m := releasePattern.FindStringSubmatch(version)
	if m == nil {
		return ReleaseInfo{}
	}
	return ReleaseInfo{Base: m[1], PreRelease: m[2], Matched: true}
}
