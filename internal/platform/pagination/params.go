package pagination

// Params embeds into huma input structs for optional pagination. A zero Limit returns
// the whole listing.
type Params struct {
	Cursor string `query:"cursor" doc:"Opaque pagination cursor from a previous Link header"`
	Limit  int    `query:"limit"  doc:"Maximum items per page, 0 for all" minimum:"0" maximum:"100"`
}

// Paged reports whether the request asked for a page rather than the full listing.
func (p Params) Paged() bool {
	return p.Limit > 0 || p.Cursor != ""
}
