// Package format renders CRM entities into the display strings the list and
// detail endpoints return.
package format

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/cloverhq/clover/pkg/models"
)

// UnknownPerson is rendered when a person record carries no name at all.
const UnknownPerson = "Unknown Person"

// PersonName renders a person as "Family, Given". Partially named records
// render the half they have; fully anonymous records render UnknownPerson.
func PersonName(attrs models.PersonAttributes) string {
	if attrs.GivenName == "" && attrs.FamilyName == "" {
		return UnknownPerson
	}
	return fmt.Sprintf("%s, %s", attrs.FamilyName, attrs.GivenName)
}

// PersonFullName renders a person as "Given Family", skipping missing parts.
func PersonFullName(attrs models.PersonAttributes) string {
	parts := make([]string, 0, 2)
	if attrs.GivenName != "" {
		parts = append(parts, attrs.GivenName)
	}
	if attrs.FamilyName != "" {
		parts = append(parts, attrs.FamilyName)
	}
	return strings.Join(parts, " ")
}

// Address renders a full mailing address, preferring the upstream's
// pre-formatted label when present. The country is appended only when it is
// not the domestic default.
func Address(attrs models.AddressAttributes) string {
	if attrs.FormattedAddressLabel != "" {
		return attrs.FormattedAddressLabel
	}

	parts := make([]string, 0, 4)
	if attrs.Address1 != "" {
		parts = append(parts, attrs.Address1)
	}
	if attrs.Address2 != "" {
		parts = append(parts, attrs.Address2)
	}

	cityStateZip := make([]string, 0, 3)
	if attrs.City != "" {
		cityStateZip = append(cityStateZip, attrs.City)
	}
	if attrs.StateName != "" {
		cityStateZip = append(cityStateZip, attrs.StateName)
	}
	if attrs.ZipCode != "" {
		cityStateZip = append(cityStateZip, attrs.ZipCode)
	}
	if len(cityStateZip) > 0 {
		parts = append(parts, strings.Join(cityStateZip, ", "))
	}

	if attrs.CountryName != "" && attrs.CountryName != "United States" {
		parts = append(parts, attrs.CountryName)
	}

	return strings.Join(parts, "\n")
}

// CityState renders the short "City, State" location line for list rows.
func CityState(attrs models.AddressAttributes) string {
	parts := make([]string, 0, 2)
	if attrs.City != "" {
		parts = append(parts, attrs.City)
	}
	if attrs.StateName != "" {
		parts = append(parts, attrs.StateName)
	}
	return strings.Join(parts, ", ")
}

// PrimaryAddress picks the address flagged primary, falling back to the
// first one. Returns false when there are no addresses at all.
func PrimaryAddress(addresses []models.AddressAttributes) (models.AddressAttributes, bool) {
	if len(addresses) == 0 {
		return models.AddressAttributes{}, false
	}
	for _, addr := range addresses {
		if addr.Primary {
			return addr, true
		}
	}
	return addresses[0], true
}

// MembershipCount phrases the number of active memberships for a list row.
func MembershipCount(activeCount int) string {
	switch activeCount {
	case 0:
		return "No active memberships"
	case 1:
		return "1 active membership"
	default:
		return fmt.Sprintf("%d active memberships", activeCount)
	}
}

// Pronoun renders a pronoun slug as a slash-separated label when the label
// cache has no entry for it, e.g. "she-her-hers" -> "She/Her/Hers".
func Pronoun(slug string) string {
	if slug == "" {
		return ""
	}
	parts := strings.Split(slug, "-")
	for i, part := range parts {
		parts[i] = titleWord(part)
	}
	return strings.Join(parts, "/")
}

// BirthDate renders an upstream birth date as "January 2, 2006", passing the
// raw value through when it cannot be parsed.
func BirthDate(value string) string {
	ts, ok := models.ParseDate(value)
	if !ok {
		return value
	}
	return ts.Format("January 2, 2006")
}

// Age returns the whole-year age at now for the given birth date, or false
// when the date is missing or unparseable.
func Age(birthDate string, now time.Time) (int, bool) {
	birth, ok := models.ParseDate(birthDate)
	if !ok {
		return 0, false
	}

	years := now.Year() - birth.Year()
	anniversary := birth.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	if years < 0 {
		return 0, false
	}
	return years, true
}

func titleWord(word string) string {
	if word == "" {
		return word
	}
	first, size := utf8.DecodeRuneInString(word)
	return string(unicode.ToUpper(first)) + strings.ToLower(word[size:])
}
