package integration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordType(t *testing.T) {
	tests := []struct {
		rt      RecordType
		sobject string
		model   string
		display string
	}{
		{RecordTypeAccount, "Account", "account", "Account"},
		{RecordTypeContract, "Contract", "contract", "Contract"},
		{RecordTypeOpportunity, "Opportunity", "opportunity", "Opportunity"},
		{RecordTypeQuote, "Quote", "quote", "Quote"},
		{RecordTypeUser, "User", "user", "User"},
		{RecordTypeOrgHierarchy, "UserRole", "org_hierarchy", "Org Hierarchy"},
	}
	for _, tt := range tests {
		t.Run(tt.rt.String(), func(t *testing.T) {
			assert.True(t, tt.rt.IsValid())
			assert.Equal(t, tt.sobject, tt.rt.SObjectName())
			assert.Equal(t, tt.model, tt.rt.InternalModelName())
			assert.Equal(t, tt.display, tt.rt.DisplayName())
		})
	}

	assert.Len(t, AllRecordTypes(), len(tests))
	assert.False(t, RecordType("LEAD").IsValid())
}

func TestParseRecordType(t *testing.T) {
	rt, err := ParseRecordType("org-hierarchy")
	require.NoError(t, err)
	assert.Equal(t, RecordTypeOrgHierarchy, rt)

	rt, err = ParseRecordType(" user ")
	require.NoError(t, err)
	assert.Equal(t, RecordTypeUser, rt)

	_, err = ParseRecordType("lead")
	assert.ErrorIs(t, err, ErrInvalidRecordType)
}
