// Package profile defines the single profile record and the rules its input obeys.
package profile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ID is the identifier the remote store assigns on creation. It is opaque: remotes
// emit numbers ({"id":1}) or strings, and both decode. Canonical integers encode back
// as JSON numbers and everything else as strings, so the remote's form survives a
// Mirror round trip and a PUT body.
type ID string

// String returns the id text.
func (id ID) String() string {
	return string(id)
}

// IsZero reports whether no id has been assigned yet.
func (id ID) IsZero() bool {
	return id == ""
}

func (id ID) numeric() bool {
	n, err := strconv.ParseInt(string(id), 10, 64)
	return err == nil && strconv.FormatInt(n, 10) == string(id)
}

// MarshalJSON implements json.Marshaler.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.numeric() {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// UnmarshalJSON implements json.Unmarshaler. null leaves the id empty.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*id = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("profile id must be a string or number: %w", err)
		}
		*id = ID(n.String())
		return nil
	}
}

// Profile is the sole entity of the system. At most one exists.
type Profile struct {
	ID    ID     `json:"id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Age   *int   `json:"age,omitempty"`
}

// Input returns the editable fields of p.
func (p Profile) Input() Input {
	return Input{Name: p.Name, Email: p.Email, Age: cloneAge(p.Age)}
}

// Equal reports whether p and o carry the same id and data.
func (p Profile) Equal(o Profile) bool {
	if p.ID != o.ID || p.Name != o.Name || p.Email != o.Email {
		return false
	}
	if p.Age == nil || o.Age == nil {
		return p.Age == nil && o.Age == nil
	}
	return *p.Age == *o.Age
}

// Clone returns a copy that shares no memory with p.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	c := *p
	c.Age = cloneAge(p.Age)
	return &c
}

// Input is profile data as entered in a form, before validation.
type Input struct {
	Name  string `json:"name"          validate:"required,min=3,max=100"`
	Email string `json:"email"         validate:"required,profile_email"`
	Age   *int   `json:"age,omitempty" validate:"omitempty,min=0"`

	// ageText holds age form text that is not an integer.
	ageText string
}

// NewInput builds an Input from raw form values. Name and email are trimmed. An empty
// age is absent; text that is not an integer is kept so Validate can reject it.
func NewInput(name, email, age string) Input {
	in := Input{
		Name:  strings.TrimSpace(name),
		Email: strings.TrimSpace(email),
	}
	age = strings.TrimSpace(age)
	if age == "" {
		return in
	}
	if n, err := strconv.Atoi(age); err == nil {
		in.Age = &n
	} else {
		in.ageText = age
	}
	return in
}

// Normalize trims name and email. Inputs decoded from JSON pass through it.
func (in Input) Normalize() Input {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	return in
}

// AgeText renders the age for a form field, echoing rejected text back.
func (in Input) AgeText() string {
	if in.ageText != "" {
		return in.ageText
	}
	if in.Age == nil {
		return ""
	}
	return strconv.Itoa(*in.Age)
}

// Profile combines in with an id into a full record.
func (in Input) Profile(id ID) Profile {
	return Profile{ID: id, Name: in.Name, Email: in.Email, Age: cloneAge(in.Age)}
}

func cloneAge(age *int) *int {
	if age == nil {
		return nil
	}
	v := *age
	return &v
}
