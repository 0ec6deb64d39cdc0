package models

// Group is a roster of students taught together.
type Group struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
