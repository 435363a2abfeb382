package models

// ComplaintFilter selects complaints for listing. Zero Status means all.
type ComplaintFilter struct {
	Status ComplaintStatus
	// Keyword matches title, description or user name, case-insensitively.
	Keyword string
	Limit   int64
	Skip    int64
}
