// Package market classifies security codes into exchange segments.
package market

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownMarket is returned when a code matches no prefix rule.
var ErrUnknownMarket = errors.New("unknown market")

// Segment is an exchange segment.
type Segment string

const (
	SH Segment = "SH"
	SZ Segment = "SZ"
	HK Segment = "HK"
)

// SecID returns the provider's numeric market prefix.
func (s Segment) SecID() string {
	switch s {
	case SH:
		return "1"
	case SZ:
		return "0"
	case HK:
		return "116"
	}
	return ""
}

// Currency is the segment's trading currency.
func (s Segment) Currency() string {
	if s == HK {
		return "HKD"
	}
	return "CNY"
}

// Security is a classified code.
type Security struct {
	Code    string
	Segment Segment
}

// SecID is the provider identifier, e.g. "1.600519" or "116.00700".
func (s Security) SecID() string {
	return s.Segment.SecID() + "." + s.Code
}

var (
	shPrefixes   = []string{"6", "688", "50", "51"}
	szPrefixes   = []string{"0", "3", "2", "15", "16"}
	hkPrefixes   = []string{"1", "9"}
	fundPrefixes = []string{"15", "16", "50", "51", "52", "56", "58"}
	// funds listed in Shanghai; every other fund trades in Shenzhen
	shFundPrefixes = []string{"50", "51", "52", "53", "56", "58"}
)

// Classify maps a code to its segment. Codes shorter than six digits are Hong
// Kong listings and come back zero-padded to five digits ("700" -> "00700").
func Classify(code string) (Security, error) {
	code = strings.TrimSpace(code)
	switch {
	case code == "":
		return Security{}, fmt.Errorf("%w: empty code", ErrUnknownMarket)
	case len(code) < 6:
		return Security{Code: NormalizeHK(code), Segment: HK}, nil
	case hasAnyPrefix(code, shPrefixes):
		return Security{Code: code, Segment: SH}, nil
	case hasAnyPrefix(code, szPrefixes):
		return Security{Code: code, Segment: SZ}, nil
	case hasAnyPrefix(code, hkPrefixes):
		return Security{Code: NormalizeHK(code), Segment: HK}, nil
	}
	return Security{}, fmt.Errorf("%w: %s", ErrUnknownMarket, code)
}

// NormalizeHK strips non-digits and left-pads to five digits.
func NormalizeHK(code string) string {
	var b strings.Builder
	for _, r := range code {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) >= 5 {
		return digits
	}
	return strings.Repeat("0", 5-len(digits)) + digits
}

// IsFund reports whether code is an exchange-traded fund. Fund codes are six
// digits; shorter codes are Hong Kong listings whatever their prefix.
func IsFund(code string) bool {
	return len(code) == 6 && hasAnyPrefix(code, fundPrefixes)
}

// FundSegment is the segment a fund's quote is requested from.
func FundSegment(code string) Segment {
	if hasAnyPrefix(code, shFundPrefixes) {
		return SH
	}
	return SZ
}

// Fund classifies a fund code.
func Fund(code string) Security {
	return Security{Code: code, Segment: FundSegment(code)}
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
