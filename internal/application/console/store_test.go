package console

import (
	"testing"

	"github.com/crmconsole/backend/internal/domain/integration"
	"github.com/stretchr/testify/assert"
)

func TestStore(t *testing.T) {
	store := NewStore()
	var seen []State
	unsubscribe := store.Subscribe(func(st State) { seen = append(seen, st) })

	m := savedMapping(integration.RecordTypeQuote, nil, nil, nil)
	store.SetMappings([]integration.Mapping{m})
	store.SetSettings(integration.Credentials{Username: "u"})
	store.RequestRefetch()

	assert.Len(t, seen, 3)
	assert.Equal(t, uint64(1), seen[0].MappingsVersion)
	assert.True(t, seen[1].SettingsLoaded)
	assert.True(t, seen[2].RefetchRequested)

	got, ok := store.State().MappingFor(integration.RecordTypeQuote)
	assert.True(t, ok)
	assert.Equal(t, m.ID, got.ID)
	_, ok = store.State().MappingFor(integration.RecordTypeUser)
	assert.False(t, ok)

	assert.True(t, store.ConsumeRefetch())
	assert.False(t, store.ConsumeRefetch())

	unsubscribe()
	store.RequestRefetch()
	assert.Len(t, seen, 3)
}

func TestStore_SnapshotIsolation(t *testing.T) {
	store := NewStore()
	store.SetMappings([]integration.Mapping{savedMapping(integration.RecordTypeQuote, nil, nil, nil)})

	snap := store.State()
	snap.Mappings[0].RecordType = integration.RecordTypeUser
	assert.Equal(t, integration.RecordTypeQuote, store.State().Mappings[0].RecordType)
}
