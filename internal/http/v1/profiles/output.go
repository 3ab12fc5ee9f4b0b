package profiles

// ProfileListOutput for GET /profiles
type ProfileListOutput struct {
	Link  string `header:"Link"          doc:"RFC 8288 pagination links"`
	Total int    `header:"X-Total-Count" doc:"Number of stored profiles"`
	Body  []Profile
}

// ProfileCreateOutput for POST /profiles (201 Created)
type ProfileCreateOutput struct {
	Location string `header:"Location" doc:"URL of created profile"`
	Body     Profile
}

// ProfileGetOutput for GET /profiles/{id}
type ProfileGetOutput struct {
	Body Profile
}

// ProfileReplaceOutput for PUT /profiles/{id}
type ProfileReplaceOutput struct {
	Body Profile
}
