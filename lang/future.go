package lang

import "fmt"

// Version identifies a release of the language.
type Version struct {
	Major int    `json:"major" yaml:"major"`
	Minor int    `json:"minor" yaml:"minor"`
	Patch int    `json:"patch" yaml:"patch"`
	Stage string `json:"stage" yaml:"stage"`
}

// String implements fmt.Stringer.
func (v Version) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Stage != "" {
		s += "-" + v.Stage
	}

	return s
}

// Future marks a feature that is reserved but not yet implemented, along
// with the release window in which it is planned to land.
type Future struct {
	Feature       string  `json:"feature"        yaml:"feature"`
	AvailableFrom Version `json:"available_from" yaml:"available_from"`
	FinalRelease  Version `json:"final_release"  yaml:"final_release"`
}

// String implements fmt.Stringer.
func (f *Future) String() string { return "<Petuh.Future>" }

// Window returns the planned release window as "FROM..FINAL".
func (f *Future) Window() string {
	return f.AvailableFrom.String() + ".." + f.FinalRelease.String()
}

// Reserved features.
var (
	// FutureArgument is attached to every declared parameter of a compiled
	// function, reserving per-parameter metadata.
	FutureArgument = &Future{
		Feature:       "function inner argument",
		AvailableFrom: Version{Major: 1, Minor: 5, Stage: "alpha"},
		FinalRelease:  Version{Major: 2, Stage: "alpha"},
	}

	// FutureConverter reserves conversion of call arguments through their
	// annotations.
	FutureConverter = &Future{
		Feature:       "function argument converter",
		AvailableFrom: Version{Major: 1, Minor: 5, Stage: "alpha"},
		FinalRelease:  Version{Major: 2, Stage: "alpha"},
	}
)
