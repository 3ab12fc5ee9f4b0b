package profiles

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/profile-playground/internal/profile"
)

// ID is a profile id. Numeric ids are rendered as JSON numbers, like json-server does.
type ID profile.ID

// Schema implements huma.SchemaProvider.
func (ID) Schema(huma.Registry) *huma.Schema {
	return &huma.Schema{
		Description: "Profile id assigned on creation. Integer or string.",
		OneOf: []*huma.Schema{
			{Type: huma.TypeInteger},
			{Type: huma.TypeString},
		},
	}
}

// MarshalJSON implements json.Marshaler.
func (id ID) MarshalJSON() ([]byte, error) {
	return profile.ID(id).MarshalJSON()
}

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(data []byte) error {
	return (*profile.ID)(id).UnmarshalJSON(data)
}

// Profile represents a profile response.
type Profile struct {
	ID    ID     `json:"id"`
	Name  string `json:"name"          doc:"Display name"  example:"Alice"`
	Email string `json:"email"         doc:"Email address" example:"alice@example.com"`
	Age   *int   `json:"age,omitempty" doc:"Age in years"  example:"30"`
}

func toHTTPProfile(p *profile.Profile) Profile {
	return Profile{
		ID:    ID(p.ID),
		Name:  p.Name,
		Email: p.Email,
		Age:   p.Age,
	}
}
