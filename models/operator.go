package models

import "regexp"

// Operator is the reseller's code for a mobile network and charge tier.
type Operator string

const (
	OperatorMTN        Operator = "MTN"
	OperatorMTNDaemi   Operator = "#MTN"
	OperatorMTNSuper   Operator = "!MTN"
	OperatorMCI        Operator = "MCI"
	OperatorWiMax      Operator = "WiMax"
	OperatorRightel    Operator = "RTL"
	OperatorRightelSup Operator = "!RTL"
)

const (
	mtnNumber     = `09[03][0-9]{8}`
	mciNumber     = `09[19][0-9]{8}`
	wimaxNumber   = `094[0-9]{8}`
	rightelNumber = `092[0-2][0-9]{7}`
)

// PhonePattern matches exactly the numbers ResolveOperator accepts. It uses
// only syntax shared by RE2 and ECMA-262 so it can be published in JSON Schema.
const PhonePattern = "^(" + mtnNumber + "|" + mciNumber + "|" + wimaxNumber + "|" + rightelNumber + ")$"

var (
	mtnPhone     = anchored(mtnNumber)
	mciPhone     = anchored(mciNumber)
	wimaxPhone   = anchored(wimaxNumber)
	rightelPhone = anchored(rightelNumber)
)

func anchored(number string) *regexp.Regexp {
	return regexp.MustCompile("^" + number + "$")
}

// ResolveOperator maps a phone number to the operator code the reseller
// expects. super and daemi only change the code for networks that sell those
// tiers; super wins over daemi.
func ResolveOperator(phone string, super, daemi bool) (Operator, bool) {
	switch {
	case mtnPhone.MatchString(phone):
		if super {
			return OperatorMTNSuper, true
		}
		if daemi {
			return OperatorMTNDaemi, true
		}
		return OperatorMTN, true
	case mciPhone.MatchString(phone):
		return OperatorMCI, true
	case wimaxPhone.MatchString(phone):
		return OperatorWiMax, true
	case rightelPhone.MatchString(phone):
		if super {
			return OperatorRightelSup, true
		}
		return OperatorRightel, true
	}
	return "", false
}
