package models

// ContactMessage is a visitor-submitted contact form payload. It is not
// persisted; it only travels to the mail relay.
type ContactMessage struct {
	Name    string
	Email   string
	Phone   string
	Message string
}
