package integration

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Mapping Tests
// ---------------------------------------------------------------------------

func TestNewMapping(t *testing.T) {
	tenantID := uuid.New()

	t.Run("Valid mapping creation", func(t *testing.T) {
		m, err := NewMapping(tenantID, RecordTypeAccount,
			[]Association{{Source: "Name", Destination: "name"}}, nil, nil)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, m.ID)
		assert.Equal(t, tenantID, m.TenantID)
		assert.Len(t, m.Inbound, 1)
		assert.NotNil(t, m.Outbound)
		assert.Nil(t, m.Config)
	})

	t.Run("Invalid tenant ID", func(t *testing.T) {
		_, err := NewMapping(uuid.Nil, RecordTypeAccount, nil, nil, nil)
		assert.ErrorIs(t, err, ErrMappingInvalidTenantID)
	})

	t.Run("Invalid record type", func(t *testing.T) {
		_, err := NewMapping(tenantID, RecordType("LEAD"), nil, nil, nil)
		assert.ErrorIs(t, err, ErrInvalidRecordType)
	})

	t.Run("Incomplete association", func(t *testing.T) {
		_, err := NewMapping(tenantID, RecordTypeAccount, nil,
			[]Association{{Source: "name", Destination: ""}}, nil)
		assert.ErrorIs(t, err, ErrMappingInvalidAssociation)
	})

	t.Run("Config for wrong record type", func(t *testing.T) {
		_, err := NewMapping(tenantID, RecordTypeAccount, nil, nil, UserConfig{RoleIDs: []string{"r1"}})
		assert.ErrorIs(t, err, ErrMappingConfigMismatch)
	})
}

func TestMapping_Replace(t *testing.T) {
	m, err := NewMapping(uuid.New(), RecordTypeUser, nil, nil, nil)
	require.NoError(t, err)

	err = m.Replace([]Association{{Source: "Email", Destination: "email"}}, nil, UserConfig{RoleIDs: []string{"r1"}})
	require.NoError(t, err)
	assert.Len(t, m.Inbound, 1)
	assert.Equal(t, UserConfig{RoleIDs: []string{"r1"}}, m.Config)

	err = m.Replace(nil, nil, OpportunityConfig{})
	assert.ErrorIs(t, err, ErrMappingConfigMismatch)
	assert.Len(t, m.Inbound, 1, "failed replace leaves mapping untouched")
}

// ---------------------------------------------------------------------------
// MappingConfig Tests
// ---------------------------------------------------------------------------

func TestOpportunityConfig_JSON(t *testing.T) {
	d := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	raw, err := EncodeConfig(OpportunityConfig{CutoffDate: &d})
	require.NoError(t, err)
	assert.JSONEq(t, `{"cutoff_date":"2024-03-15"}`, string(raw))

	cfg, err := DecodeConfig(RecordTypeOpportunity, raw)
	require.NoError(t, err)
	opp, ok := cfg.(OpportunityConfig)
	require.True(t, ok)
	assert.True(t, d.Equal(*opp.CutoffDate))
}

func TestDecodeConfig(t *testing.T) {
	t.Run("User role ids", func(t *testing.T) {
		cfg, err := DecodeConfig(RecordTypeUser, []byte(`{"role_ids":["a","b"]}`))
		require.NoError(t, err)
		assert.Equal(t, UserConfig{RoleIDs: []string{"a", "b"}}, cfg)
	})

	t.Run("Opportunity timestamp is truncated to a date", func(t *testing.T) {
		cfg, err := DecodeConfig(RecordTypeOpportunity, []byte(`{"cutoff_date":"2024-03-15T10:30:00Z"}`))
		require.NoError(t, err)
		assert.Equal(t, "2024-03-15", cfg.(OpportunityConfig).CutoffDate.Format(CalendarDateLayout))
	})

	t.Run("Opportunity invalid date decodes to no config", func(t *testing.T) {
		cfg, err := DecodeConfig(RecordTypeOpportunity, []byte(`{"cutoff_date":"soon"}`))
		require.NoError(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("Record types without config ignore payload", func(t *testing.T) {
		cfg, err := DecodeConfig(RecordTypeQuote, []byte(`{"anything":1}`))
		require.NoError(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("Empty and null payloads", func(t *testing.T) {
		for _, raw := range []string{"", "null", "  "} {
			cfg, err := DecodeConfig(RecordTypeUser, []byte(raw))
			require.NoError(t, err)
			assert.Nil(t, cfg)
		}
	})

	t.Run("Malformed payload", func(t *testing.T) {
		_, err := DecodeConfig(RecordTypeUser, []byte(`{"role_ids":`))
		assert.Error(t, err)
	})
}

func TestEncodeConfig_Nil(t *testing.T) {
	raw, err := EncodeConfig(nil)
	require.NoError(t, err)
	assert.Nil(t, raw)
}
