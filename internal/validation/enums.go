package validation

// Enum values - these MUST match DB CHECK constraints in the database package.
var (
	ValidOrderStatuses = []string{"Started", "Open", "Done"}
	ValidCoresPackedIn = []string{"Horizontal", "Vertical", "On_carton"}
	ValidYesNo         = []string{"Y", "N"}
	ValidRoles         = []string{"admin", "user", "readonly"}
)
