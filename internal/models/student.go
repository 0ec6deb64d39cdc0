package models

// Student belongs to exactly one group.
type Student struct {
	ID          string  `json:"id"`
	FullName    string  `json:"full_name"`
	ContactInfo *string `json:"contact_info,omitempty"`
	ParentPhone *string `json:"parent_phone,omitempty"`
	GroupID     string  `json:"group_id"`
}
