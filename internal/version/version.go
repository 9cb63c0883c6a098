package version

// Version is the current version of the chartscribe library.
// This value is set at build time using ldflags:
// -ldflags "-X github.com/chartscribe-lab/chartscribe/internal/version.Version=1.2.3"
// The default value "main" indicates a development build.
var Version = "main"

// SchemaVersion is the newest config schema version this build reads.
// Config files declare the schema they were written for; loading rejects
// files whose schema differs in major or minor version.
const SchemaVersion = "1.0.0"

// GetVersion returns the current version of the library.
func GetVersion() string {
	return Version
}
