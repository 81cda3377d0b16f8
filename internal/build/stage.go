package build

// Stage is a point in the build lifecycle.
type Stage string

const (
	StageIdle        Stage = "idle"
	StageLoaded      Stage = "loaded"
	StageTransformed Stage = "transformed"
	StagePackaged    Stage = "packaged"
	StageMirrored    Stage = "mirrored"
	StageDone        Stage = "done"
	StageFailed      Stage = "failed"
)

// String returns the string representation of the stage.
func (s Stage) String() string {
	return string(s)
}

// Step names the work that moves a build into s, as used in failure messages.
func (s Stage) Step() string {
	switch s {
	case StageLoaded:
		return "load"
	case StageTransformed:
		return "transform"
	case StagePackaged:
		return "package"
	case StageMirrored:
		return "mirror"
	default:
		return string(s)
	}
}

// IsTerminal reports whether no further transition can follow s.
func (s Stage) IsTerminal() bool {
	return s == StageDone || s == StageFailed
}
