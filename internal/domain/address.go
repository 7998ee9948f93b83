package domain

// Country is a destination country identified by its ISO 3166-1 alpha-2 code.
type Country struct {
	ISOCode string
	Name    string
}

// State is a subdivision of a country.
type State struct {
	Code       string
	Name       string
	CountryISO string
}

// Address is a delivery address. Country is expected to be set on any
// address handed to a quote; State is optional.
type Address struct {
	ID        string
	FirstName string
	LastName  string
	Address1  string
	Address2  string
	City      string
	ZipCode   string
	Country   *Country
	State     *State
}

// CountryCode returns the ISO code of c, or "" when c is nil.
func (c *Country) CountryCode() string {
	if c == nil {
		return ""
	}

	return c.ISOCode
}

// StateCode returns the code of s, or "" when s is nil.
func (s *State) StateCode() string {
	if s == nil {
		return ""
	}

	return s.Code
}
