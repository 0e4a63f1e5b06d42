// Package domain contains the CRM-side entities the bridge reads and writes,
// and the capability set the CRM offers.
package domain

// Identity is the chat-side identity of the person ordering.
type Identity struct {
	Platform          string
	ExternalContactID string
	ChatID            string
	Phone             string
	Email             string
	FirstName         string
	LastName          string
	Username          string
}

// Contact is a CRM contact.
type Contact struct {
	ID                  string
	FirstName           string
	LastName            string
	Phone               string
	Email               string
	ExternalMessengerID string
	Source              string
}

// ContactDraft is the payload of a contact creation.
type ContactDraft struct {
	Name                Name
	Phone               Phone
	Email               Email
	ExternalMessengerID string
	Source              string
}

// NewContactDraft builds a draft from the best available identity fields.
func NewContactDraft(id Identity) ContactDraft {
	return ContactDraft{
		Name:                NewName(id.FirstName, id.LastName, id.Username),
		Phone:               NewPhone(id.Phone),
		Email:               NewEmail(id.Email),
		ExternalMessengerID: id.ExternalContactID,
		Source:              id.Platform,
	}
}
