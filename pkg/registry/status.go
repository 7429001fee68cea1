package registry

// Status is the lifecycle status of a product entry. Entries are never
// deleted; archival is represented by StatusDormant.
type Status string

// Recognized lifecycle statuses.
const (
	StatusConcept   Status = "Concept"
	StatusPrototype Status = "Prototype"
	StatusActive    Status = "Active"
	StatusLicensed  Status = "Licensed"
	StatusDormant   Status = "Dormant"
)

// String returns the string representation of a Status.
func (s Status) String() string {
	return string(s)
}

// Valid reports whether the status is one of the recognized enumerants.
func (s Status) Valid() bool {
	switch s {
	case StatusConcept, StatusPrototype, StatusActive, StatusLicensed, StatusDormant:
		return true
	}
	return false
}

// Statuses returns the recognized lifecycle statuses in declaration order.
func Statuses() []Status {
	return []Status{StatusConcept, StatusPrototype, StatusActive, StatusLicensed, StatusDormant}
}

// StatusStrings returns the recognized lifecycle statuses as strings.
func StatusStrings() []string {
	statuses := Statuses()
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
