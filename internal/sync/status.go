package sync

// Status is the per-field save status surfaced to the UI layer.
type Status string

const (
	StatusIdle   Status = "idle"
	StatusDirty  Status = "dirty"
	StatusSaving Status = "saving"
	StatusSaved  Status = "saved"
	StatusError  Status = "error"
)

// Patchable note fields. The values double as column names for the
// partial-patch write path.
const (
	FieldName    = "name"
	FieldContent = "content"
)
