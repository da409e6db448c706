package core

const (
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
	NotificationWarning NotificationKind = "warning"
	NotificationInfo    NotificationKind = "info"
)

// NotificationKind selects the toast style.
type NotificationKind string

// Notification is a one-shot message shown by the next screen and then discarded.
type Notification struct {
	Kind    NotificationKind `json:"kind"`
	Message string           `json:"message"`
}

// Preferences are the per-browser display settings passed into every view.
type Preferences struct {
	DarkMode bool
	Language string
}
