package version

import (
	"runtime/debug"
)

// Version returns the module version of the binary followed by the git
// revision it was built from, if known.
func Version() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return "(unknown)"
	}
	return fromBuildInfo(bi)
}

func fromBuildInfo(bi *debug.BuildInfo) string {
	v := bi.Main.Version
	if v == "" {
		v = "(devel)"
	}
	if rev := runtimeVersion(bi); rev != "" {
		v += " " + rev
	}
	return v
}

// runtimeVersion searches the buildinfo built into the binary to find and
// return the git revision, if present. Returns an empty string otherwise.
func runtimeVersion(bi *debug.BuildInfo) string {
	var rev string
	dirty := false
	for i := range bi.Settings {
		switch bi.Settings[i].Key {
		case "vcs.revision":
			rev = bi.Settings[i].Value
		case "vcs.modified":
			dirty = bi.Settings[i].Value == "true"
		}
	}
	if len(rev) > 12 {
		rev = rev[:12]
	}
	if rev != "" && dirty {
		rev += "-dirty"
	}
	return rev
}
