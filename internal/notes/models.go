package notes

import "time"

// Record is the persisted note for one calendar date.
// Date is the unique key, formatted as YYYY-MM-DD.
type Record struct {
	Date        string    `json:"date"`
	Content     string    `json:"content"`
	CustomTitle string    `json:"custom_title,omitempty"`
	LastUpdated time.Time `json:"last_updated"`
	CreatedAt   time.Time `json:"created_at"`
}

// Summary is a listing-view projection of a record: no full
// content, just the first PreviewLen characters.
type Summary struct {
	Date        string    `json:"date"`
	CustomTitle string    `json:"custom_title"`
	LastUpdated time.Time `json:"last_updated"`
	Preview     string    `json:"preview"`
}

// PreviewLen is the number of characters of content carried by a Summary.
const PreviewLen = 50

// DateFormat is the canonical key format for records.
const DateFormat = "2006-01-02"

// ValidDate reports whether s is a well-formed YYYY-MM-DD date.
func ValidDate(s string) bool {
	_, err := time.Parse(DateFormat, s)
	return err == nil
}
