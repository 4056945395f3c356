package quill

import (
	_ "embed"
	"regexp"
	"strings"
)

// ModulePath is the import path of the quill module.
const ModulePath = "github.com/iw2rmb/quill"

var semverRE = regexp.MustCompile(`^(0|[1-9]\d*)\.(0|[1-9]\d*)\.(0|[1-9]\d*)(?:-[0-9A-Za-z-]+(?:\.[0-9A-Za-z-]+)*)?(?:\+[0-9A-Za-z-]+(?:\.[0-9A-Za-z-]+)*)?$`)

//go:embed VERSION
var embeddedVersion string

// Version returns the release version in SemVer format (without `v`).
func Version() string {
	return strings.TrimSpace(embeddedVersion)
}

// VersionTag returns Version with a leading `v`, as used for git tags.
func VersionTag() string {
	return "v" + Version()
}

// UserAgent identifies quill in response artifacts and logs.
func UserAgent() string {
	return "quill/" + Version()
}

// IsSemver reports whether v matches SemVer 2.0.0.
func IsSemver(v string) bool {
	return semverRE.MatchString(strings.TrimSpace(v))
}

// VersionIsSemver reports whether the embedded Version is valid SemVer.
func VersionIsSemver() bool {
	return IsSemver(Version())
}
