// Package models defines the core domain value types shared across vvlci.
package models

// Configuration identifies a build variant passed through to the
// underlying build system.
type Configuration string

const (
	ConfigurationDebug          Configuration = "Debug"
	ConfigurationRelease        Configuration = "Release"
	ConfigurationRelWithDebInfo Configuration = "RelWithDebInfo"
	ConfigurationMinSizeRel     Configuration = "MinSizeRel"
)

// Valid returns true if the configuration is one of the recognized
// build variants.
func (c Configuration) Valid() bool {
	switch c {
	case ConfigurationDebug, ConfigurationRelease, ConfigurationRelWithDebInfo, ConfigurationMinSizeRel:
		return true
	default:
		return false
	}
}

// Configurations lists all recognized build variants.
func Configurations() []Configuration {
	return []Configuration{
		ConfigurationDebug,
		ConfigurationRelease,
		ConfigurationRelWithDebInfo,
		ConfigurationMinSizeRel,
	}
}

// OSXTarget selects the macOS deployment target for darwin setup.
// An empty target means "use the host default".
type OSXTarget string

const (
	OSXTargetNone   OSXTarget = ""
	OSXTargetMin    OSXTarget = "min"
	OSXTargetLatest OSXTarget = "latest"
)

// Valid returns true if the target is a recognized selector.
func (t OSXTarget) Valid() bool {
	switch t {
	case OSXTargetNone, OSXTargetMin, OSXTargetLatest:
		return true
	default:
		return false
	}
}
