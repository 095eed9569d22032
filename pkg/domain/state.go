package domain

// SessionSnapshot is an exported copy of a session, safe to serialize and
// compare. Mutating it has no effect on the session it was taken from.
type SessionSnapshot struct {
	Step         Step          `json:"step"`
	CustomerName string        `json:"customer_name,omitempty"`
	NameError    string        `json:"name_error,omitempty"`
	Draft        DraftSnapshot `json:"draft"`
	Cart         []LineItem    `json:"cart"`
	Total        int           `json:"total"`
}
