package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	appintegration "github.com/crmconsole/backend/internal/application/integration"
	"github.com/crmconsole/backend/internal/interfaces/http/dto"
	"github.com/crmconsole/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SSE event names
const (
	EventConnected      = "connected"
	EventHeartbeat      = "heartbeat"
	EventMappingChanged = "mapping_changed"
)

// ChangeSource delivers mapping changes of every tenant.
type ChangeSource interface {
	Subscribe(h func(appintegration.MappingChange)) (unsubscribe func())
}

// SSEMessage is one event written to a stream
type SSEMessage struct {
	Event string
	Data  string
	ID    string
}

type sseClient struct {
	id       string
	tenantID string
	ch       chan SSEMessage
}

// MappingEventsHandler streams mapping changes of the caller's tenant so
// open consoles know to refetch.
type MappingEventsHandler struct {
	BaseHandler
	source     ChangeSource
	logger     *zap.Logger
	heartbeat  time.Duration
	maxClients int

	mu          sync.RWMutex
	clients     map[string]*sseClient
	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()
}

// MappingEventsOption configures a MappingEventsHandler
type MappingEventsOption func(*MappingEventsHandler)

// WithHeartbeat sets the heartbeat interval
func WithHeartbeat(interval time.Duration) MappingEventsOption {
	return func(h *MappingEventsHandler) {
		if interval > 0 {
			h.heartbeat = interval
		}
	}
}

// WithMaxClients bounds the number of concurrent streams
func WithMaxClients(n int) MappingEventsOption {
	return func(h *MappingEventsHandler) {
		h.maxClients = n
	}
}

// NewMappingEventsHandler creates a new handler. Call Start before serving.
func NewMappingEventsHandler(source ChangeSource, logger *zap.Logger, opts ...MappingEventsOption) *MappingEventsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	h := &MappingEventsHandler{
		source:     source,
		logger:     logger,
		heartbeat:  30 * time.Second,
		maxClients: 1000,
		clients:    make(map[string]*sseClient),
		ctx:        ctx,
		cancel:     cancel,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Start subscribes to the change source and begins heartbeats
func (h *MappingEventsHandler) Start() {
	h.unsubscribe = h.source.Subscribe(h.onChange)
	go h.sendHeartbeats()
	h.logger.Info("Mapping event stream started")
}

// Stop ends every open stream
func (h *MappingEventsHandler) Stop() {
	if h.unsubscribe != nil {
		h.unsubscribe()
	}
	h.cancel()
	h.logger.Info("Mapping event stream stopped")
}

// ClientCount returns the number of open streams
func (h *MappingEventsHandler) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *MappingEventsHandler) onChange(change appintegration.MappingChange) {
	data, err := json.Marshal(change)
	if err != nil {
		h.logger.Error("Failed to marshal mapping change", zap.Error(err))
		return
	}
	h.broadcast(change.TenantID.String(), SSEMessage{
		Event: EventMappingChanged,
		Data:  string(data),
		ID:    fmt.Sprintf("%d", change.ChangedAt.UnixMilli()),
	})
}

// broadcast sends msg to the streams of tenantID, or to all when empty.
func (h *MappingEventsHandler) broadcast(tenantID string, msg SSEMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		if tenantID != "" && client.tenantID != tenantID {
			continue
		}
		select {
		case client.ch <- msg:
		default:
			h.logger.Warn("Client channel full, dropping message", zap.String("client_id", client.id))
		}
	}
}

func (h *MappingEventsHandler) sendHeartbeats() {
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-h.ctx.Done():
			return
		case t := <-ticker.C:
			h.broadcast("", SSEMessage{
				Event: EventHeartbeat,
				Data:  fmt.Sprintf(`{"timestamp":%d}`, t.Unix()),
			})
		}
	}
}

// Stream godoc
//
//	@Summary	Subscribe to mapping changes via SSE
//	@Tags		integration
//	@Produce	text/event-stream
//	@Success	200	{string}	string	"SSE stream"
//	@Failure	503	{object}	dto.Response{error=dto.ErrorInfo}
//	@Router		/integration/mappings/events [get]
func (h *MappingEventsHandler) Stream(c *gin.Context) {
	tenantID := middleware.GetJWTTenantID(c)
	if tenantID == "" {
		h.Unauthorized(c, "Tenant not resolved")
		return
	}

	const bufferSize = 16
	client := &sseClient{
		id:       uuid.NewString(),
		tenantID: tenantID,
		ch:       make(chan SSEMessage, bufferSize),
	}

	h.mu.Lock()
	if h.maxClients > 0 && len(h.clients) >= h.maxClients {
		h.mu.Unlock()
		c.JSON(http.StatusServiceUnavailable,
			dto.NewErrorResponse("ERR_MAX_CONNECTIONS", "Maximum number of event streams reached"))
		return
	}
	h.clients[client.id] = client
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, client.id)
		h.mu.Unlock()
	}()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	// Streams outlive the server's write timeout.
	_ = http.NewResponseController(c.Writer).SetWriteDeadline(time.Time{})
	c.Status(http.StatusOK)

	h.logger.Debug("SSE client connected",
		zap.String("client_id", client.id),
		zap.String("tenant_id", tenantID))

	writeEvent(c.Writer, SSEMessage{
		Event: EventConnected,
		Data:  fmt.Sprintf(`{"client_id":%q}`, client.id),
	})
	c.Writer.Flush()

	reqCtx := c.Request.Context()
	for {
		select {
		case <-reqCtx.Done():
			return
		case <-h.ctx.Done():
			return
		case msg := <-client.ch:
			writeEvent(c.Writer, msg)
			c.Writer.Flush()
		}
	}
}

func writeEvent(w io.Writer, msg SSEMessage) {
	if msg.Event != "" {
		fmt.Fprintf(w, "event: %s\n", msg.Event)
	}
	if msg.ID != "" {
		fmt.Fprintf(w, "id: %s\n", msg.ID)
	}
	fmt.Fprintf(w, "data: %s\n\n", msg.Data)
}
