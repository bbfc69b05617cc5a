package version

// Values for these are injected by the build.
var (
	version = "devel"
	commit  = "unknown"
)

// Version returns the phaseout version. This is either a semantic version
// number or else, in the case of unreleased code, the name of the branch it
// was built from.
func Version() string {
	return version
}

// Commit returns the git commit SHA of the code that was built.
func Commit() string {
	return commit
}
