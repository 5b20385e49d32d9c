package integration

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	ErrInvalidRecordType = errors.New("integration: invalid record type")
)

// ---------------------------------------------------------------------------
// RecordType
// ---------------------------------------------------------------------------

// RecordType identifies one mapped CRM object kind.
type RecordType string

const (
	RecordTypeAccount      RecordType = "ACCOUNT"
	RecordTypeContract     RecordType = "CONTRACT"
	RecordTypeOpportunity  RecordType = "OPPORTUNITY"
	RecordTypeQuote        RecordType = "QUOTE"
	RecordTypeUser         RecordType = "USER"
	RecordTypeOrgHierarchy RecordType = "ORG_HIERARCHY"
)

type recordTypeInfo struct {
	sobject string
	model   string
}

var recordTypes = map[RecordType]recordTypeInfo{
	RecordTypeAccount:      {sobject: "Account", model: "account"},
	RecordTypeContract:     {sobject: "Contract", model: "contract"},
	RecordTypeOpportunity:  {sobject: "Opportunity", model: "opportunity"},
	RecordTypeQuote:        {sobject: "Quote", model: "quote"},
	RecordTypeUser:         {sobject: "User", model: "user"},
	RecordTypeOrgHierarchy: {sobject: "UserRole", model: "org_hierarchy"},
}

// AllRecordTypes returns the record types in tab order.
func AllRecordTypes() []RecordType {
	return []RecordType{
		RecordTypeAccount,
		RecordTypeContract,
		RecordTypeOpportunity,
		RecordTypeQuote,
		RecordTypeUser,
		RecordTypeOrgHierarchy,
	}
}

// ParseRecordType accepts the canonical code case-insensitively, with either
// '_' or '-' as separator.
func ParseRecordType(s string) (RecordType, error) {
	rt := RecordType(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")))
	if !rt.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRecordType, s)
	}
	return rt, nil
}

// IsValid returns true if the record type is known
func (r RecordType) IsValid() bool {
	_, ok := recordTypes[r]
	return ok
}

// String returns the string representation
func (r RecordType) String() string {
	return string(r)
}

// SObjectName is the Salesforce object the record type reads from.
func (r RecordType) SObjectName() string {
	return recordTypes[r].sobject
}

// InternalModelName is the internal domain model the record type writes to.
func (r RecordType) InternalModelName() string {
	return recordTypes[r].model
}

// DisplayName returns a human-readable name, e.g. "Org Hierarchy".
func (r RecordType) DisplayName() string {
	if !r.IsValid() {
		return string(r)
	}
	words := strings.ReplaceAll(strings.ToLower(string(r)), "_", " ")
	return cases.Title(language.English).String(words)
}
