package main

import "runtime/debug"

// version is set at build time via ldflags:
//
//	go build -ldflags "-X main.version=0.1.0" ./cmd/sigdemo
//
// When ldflags are not set, resolveVersion reads the VCS info that Go embeds
// automatically, so dev builds still report a revision.
var version = "dev"

// resolveVersion returns [version] when it was set via ldflags; otherwise a
// "dev+<hash>" tag built from the embedded VCS revision and dirty state.
func resolveVersion() string {
	if version != "dev" {
		return version
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return version
	}
	var revision string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if revision == "" {
		return version
	}
	hash := revision[:min(7, len(revision))]
	if dirty {
		return "dev+" + hash + ".dirty"
	}
	return "dev+" + hash
}
