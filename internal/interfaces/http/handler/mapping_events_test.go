package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	appintegration "github.com/crmconsole/backend/internal/application/integration"
	"github.com/crmconsole/backend/internal/domain/integration"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu       sync.Mutex
	handlers []func(appintegration.MappingChange)
}

func (s *fakeSource) Subscribe(h func(appintegration.MappingChange)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, h)
	return func() {}
}

func (s *fakeSource) emit(change appintegration.MappingChange) {
	s.mu.Lock()
	hs := append([]func(appintegration.MappingChange){}, s.handlers...)
	s.mu.Unlock()
	for _, h := range hs {
		h(change)
	}
}

func TestMappingEventsHandler_Stream(t *testing.T) {
	source := &fakeSource{}
	h := NewMappingEventsHandler(source, nil, WithHeartbeat(time.Hour))
	h.Start()
	defer h.Stop()

	tenantID := uuid.New()
	r := gin.New()
	r.GET("/events", withClaims(tenantID), h.Stream)
	srv := httptest.NewServer(r)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	readEvent := func() (string, string) {
		var name, data string
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			line = strings.TrimRight(line, "\n")
			switch {
			case line == "":
				return name, data
			case strings.HasPrefix(line, "event: "):
				name = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				data = strings.TrimPrefix(line, "data: ")
			}
		}
	}

	name, _ := readEvent()
	require.Equal(t, EventConnected, name)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	// Another tenant's change is not delivered; this tenant's is.
	source.emit(appintegration.MappingChange{TenantID: uuid.New(), RecordType: integration.RecordTypeQuote})
	mappingID := uuid.New()
	source.emit(appintegration.MappingChange{
		TenantID:   tenantID,
		MappingID:  mappingID,
		RecordType: integration.RecordTypeAccount,
		Operation:  appintegration.OperationUpdate,
		ChangedAt:  time.Now(),
	})

	name, data := readEvent()
	require.Equal(t, EventMappingChanged, name)
	var change appintegration.MappingChange
	require.NoError(t, json.Unmarshal([]byte(data), &change))
	assert.Equal(t, mappingID, change.MappingID)
	assert.Equal(t, integration.RecordTypeAccount, change.RecordType)

	cancel()
	assert.Eventually(t, func() bool { return h.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestMappingEventsHandler_MaxClients(t *testing.T) {
	h := NewMappingEventsHandler(&fakeSource{}, nil, WithMaxClients(1))
	h.clients["existing"] = &sseClient{id: "existing", ch: make(chan SSEMessage, 1)}

	r := gin.New()
	r.GET("/events", withClaims(uuid.New()), h.Stream)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestSystemHandler_Health(t *testing.T) {
	r := gin.New()
	healthy := NewSystemHandler("crm-console", "1.0.0", map[string]Pinger{
		"database": PingFunc(func(context.Context) error { return nil }),
	})
	r.GET("/health", healthy.Health)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"ok"`)

	sick := NewSystemHandler("crm-console", "1.0.0", map[string]Pinger{
		"redis": PingFunc(func(context.Context) error { return errors.New("connection refused") }),
	})
	r2 := gin.New()
	r2.GET("/health", sick.Health)
	w = httptest.NewRecorder()
	r2.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"message":"failure"`)
	assert.Contains(t, w.Body.String(), "connection refused")
}
