package domain

import (
	"regexp"
	"strings"
	"unicode"
)

// Placeholder names used when the chat identity carries none.
const (
	PlaceholderFirstName = "Customer"
	PlaceholderLastName  = "Bot"
)

// Name is a contact's name. It is never empty: missing parts fall back to placeholders.
type Name struct {
	firstName string
	lastName  string
}

// NewName builds a Name from the best available parts. fallbacks are tried in order
// for the first name (e.g. the chat username).
func NewName(firstName, lastName string, fallbacks ...string) Name {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)

	for _, f := range fallbacks {
		if firstName != "" {
			break
		}
		firstName = strings.TrimPrefix(strings.TrimSpace(f), "@")
	}
	if firstName == "" {
		firstName = PlaceholderFirstName
	}
	if lastName == "" {
		lastName = PlaceholderLastName
	}
	return Name{firstName: firstName, lastName: lastName}
}

func (n Name) FirstName() string { return n.firstName }
func (n Name) LastName() string  { return n.lastName }
func (n Name) FullName() string  { return n.firstName + " " + n.lastName }

// Phone is a normalized phone number: an optional leading '+' followed by digits.
type Phone struct {
	value string
}

// NewPhone normalizes s. Inputs with fewer than 6 digits yield the zero Phone.
func NewPhone(s string) Phone {
	s = strings.TrimSpace(s)
	var b strings.Builder
	for i, r := range s {
		switch {
		case unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	v := b.String()
	if len(strings.TrimPrefix(v, "+")) < 6 {
		return Phone{}
	}
	return Phone{value: v}
}

func (p Phone) String() string { return p.value }
func (p Phone) IsZero() bool   { return p.value == "" }

// Email is a lower-cased address; invalid input yields the zero Email.
type Email struct {
	value string
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func NewEmail(s string) Email {
	s = strings.TrimSpace(strings.ToLower(s))
	if !emailRegex.MatchString(s) {
		return Email{}
	}
	return Email{value: s}
}

func (e Email) String() string { return e.value }
func (e Email) IsZero() bool   { return e.value == "" }
