package models

// AddressAttributes are the attributes of an addresses resource.
type AddressAttributes struct {
	Type                  string `json:"type,omitempty"`
	CompanyName           string `json:"company_name,omitempty"`
	Address1              string `json:"address1,omitempty"`
	Address2              string `json:"address2,omitempty"`
	City                  string `json:"city,omitempty"`
	StateName             string `json:"state_name,omitempty"`
	ZipCode               string `json:"zip_code,omitempty"`
	CountryCode           string `json:"country_code,omitempty"`
	CountryName           string `json:"country_name,omitempty"`
	FormattedAddressLabel string `json:"formatted_address_label,omitempty"`
	Latitude              string `json:"latitude,omitempty"`
	Longitude             string `json:"longitude,omitempty"`
	Active                bool   `json:"active,omitempty"`
	Primary               bool   `json:"primary,omitempty"`
	UUID                  string `json:"uuid,omitempty"`
}

// PhoneAttributes are the attributes of a phones resource. Older records
// carry the number under phone_number, newer ones under number.
type PhoneAttributes struct {
	Type                      string `json:"type,omitempty"`
	PhoneNumber               string `json:"phone_number,omitempty"`
	Number                    string `json:"number,omitempty"`
	NumberNationalFormat      string `json:"number_national_format,omitempty"`
	NumberInternationalFormat string `json:"number_international_format,omitempty"`
	Extension                 string `json:"extension,omitempty"`
	Active                    bool   `json:"active,omitempty"`
	Primary                   bool   `json:"primary,omitempty"`
	PrimarySMS                bool   `json:"primary_sms,omitempty"`
	UUID                      string `json:"uuid,omitempty"`
}

// Display returns the most presentable form of the phone number available.
func (a PhoneAttributes) Display() string {
	switch {
	case a.NumberNationalFormat != "":
		return a.NumberNationalFormat
	case a.Number != "":
		return a.Number
	default:
		return a.PhoneNumber
	}
}

// EmailAttributes are the attributes of an emails resource. The address lives
// under either email or address depending on record age.
type EmailAttributes struct {
	Type    string `json:"type,omitempty"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
	Active  bool   `json:"active,omitempty"`
	Primary bool   `json:"primary,omitempty"`
	UUID    string `json:"uuid,omitempty"`
}

// Display returns the email address regardless of which field carries it.
func (a EmailAttributes) Display() string {
	if a.Email != "" {
		return a.Email
	}
	return a.Address
}

// WebAddressAttributes are the attributes of a web_addresses resource.
type WebAddressAttributes struct {
	Type    string `json:"type,omitempty"`
	URL     string `json:"url,omitempty"`
	Address string `json:"address,omitempty"`
	Label   string `json:"label,omitempty"`
	Active  bool   `json:"active,omitempty"`
	Primary bool   `json:"primary,omitempty"`
	UUID    string `json:"uuid,omitempty"`
}

// Display returns the URL regardless of which field carries it.
func (a WebAddressAttributes) Display() string {
	if a.URL != "" {
		return a.URL
	}
	return a.Address
}
