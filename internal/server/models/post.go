package models

import "time"

type Post struct {
	ID        int64
	Title     string
	Subtitle  string
	Body      string
	ImageURL  string
	AuthorID  int64
	CreatedAt time.Time
}

// DisplayDate formats the creation timestamp for page headers,
// e.g. "August 30, 2026". The stored value remains a real timestamp;
// only the presentation is a string.
func (p *Post) DisplayDate() string {
	return p.CreatedAt.Format("January 2, 2006")
}
