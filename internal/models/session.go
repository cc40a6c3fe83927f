package models

// SessionState is the observable state of one client's session.
// IsAuthenticated is true exactly when Identity is non-nil.
type SessionState struct {
	Identity        *Identity `json:"user"`
	IsAuthenticated bool      `json:"is_authenticated"`
	IsLoading       bool      `json:"is_loading"`
	LastError       string    `json:"last_error,omitempty"`
}
