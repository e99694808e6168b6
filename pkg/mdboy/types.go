package mdboy

// Status defines the possible states of a document during a plugin pass.
type Status string

// Constants representing the defined document statuses.
const (
	StatusPending   Status = "pending"
	StatusModified  Status = "modified"
	StatusUnchanged Status = "unchanged"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// OutputFormat defines the format for the final summary report printed to standard output.
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
)

// DefaultExtension is the document extension matched by directory scopes
// when Options.Extension is left empty.
const DefaultExtension = ".md"
