// Package phone normalizes raw phone number input to E.164 via libphonenumber
// metadata.
package phone

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nyaruka/phonenumbers"

	"github.com/bluenumberfoundation/humanid-core/internal/app/service"
)

// Parser validates and normalizes country calling code + national number
// pairs. It implements service.PhoneParser.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Parse accepts the country calling code as bare digits ("62", "1") and the
// national number, returning the E.164 rendering and the calling code.
func (p *Parser) Parse(countryCode, phoneNo string) (service.ParsedPhone, error) {
	countryCode = strings.TrimPrefix(strings.TrimSpace(countryCode), "+")
	phoneNo = strings.TrimSpace(phoneNo)
	if countryCode == "" || phoneNo == "" {
		return service.ParsedPhone{}, fmt.Errorf("country code and phone number are required")
	}

	num, err := phonenumbers.Parse("+"+countryCode+phoneNo, "")
	if err != nil {
		return service.ParsedPhone{}, fmt.Errorf("parse phone number: %w", err)
	}
	if !phonenumbers.IsValidNumber(num) {
		return service.ParsedPhone{}, fmt.Errorf("phone number is not valid")
	}

	// Digits only: the calling code followed by the national number.
	return service.ParsedPhone{
		Number:             strings.TrimPrefix(phonenumbers.Format(num, phonenumbers.E164), "+"),
		CountryCallingCode: strconv.Itoa(int(num.GetCountryCode())),
	}, nil
}
