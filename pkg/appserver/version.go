package appserver

import (
	"fmt"

	"golang.org/x/mod/semver"

	"github.com/appserverkit/appserver/pkg/log"
	"github.com/appserverkit/appserver/pkg/object"
	"github.com/appserverkit/appserver/pkg/state"
)

// Version information for the appserver module.
const (
	// Version is the current version of the appserver module.
	Version = "1.0.0"

	// MinCompatibleVersion is the minimum version that is compatible with this version.
	MinCompatibleVersion = "1.0.0"
)

// ModuleVersions returns the versions of all sub-modules.
func ModuleVersions() map[string]string {
	return map[string]string{
		"appserver": Version,
		"object":    object.Version,
		"log":       log.Version,
		"state":     state.Version,
	}
}

// CompatibilityMatrix returns the minimum compatible version of every sub-module.
func CompatibilityMatrix() map[string]string {
	return map[string]string{
		"appserver": MinCompatibleVersion,
		"object":    object.MinCompatibleVersion,
		"log":       log.MinCompatibleVersion,
		"state":     state.MinCompatibleVersion,
	}
}

// validateModuleVersions checks that all module versions are compatible.
// Returns an error if any module version is below its minimum compatible version.
func validateModuleVersions() error {
	minimums := CompatibilityMatrix()
	for name, version := range ModuleVersions() {
		if !isVersionCompatible(version, minimums[name]) {
			return fmt.Errorf("module %s version %s is below minimum compatible version %s",
				name, version, minimums[name])
		}
	}
	return nil
}

// isVersionCompatible reports whether version >= minVersion. Both are
// "major.minor.patch" without the leading "v"; invalid versions are incompatible.
func isVersionCompatible(version, minVersion string) bool {
	v, m := "v"+version, "v"+minVersion
	if !semver.IsValid(v) || !semver.IsValid(m) {
		return false
	}
	return semver.Compare(v, m) >= 0
}
