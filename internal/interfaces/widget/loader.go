package widget

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"text/template"

	"github.com/crmconsole/backend/internal/infrastructure/config"
	"github.com/gin-gonic/gin"
)

// Names the loader exposes on the host page.
const (
	GlobalName    = "CRMConsoleWidget"
	ReadyEvent    = "crm-console-widget:ready"
	DiscoverEvent = "crm-console-widget:discover"
	LoaderPath    = "/widget/loader.js"
)

//go:embed loader.js.tmpl
var loaderSource string

var loaderTemplate = template.Must(template.New("loader").Parse(loaderSource))

type loaderConfig struct {
	URL           string            `json:"url"`
	Origin        string            `json:"origin"`
	ElementID     string            `json:"elementId"`
	Width         string            `json:"width"`
	Height        string            `json:"height"`
	Global        string            `json:"global"`
	ReadyEvent    string            `json:"readyEvent"`
	DiscoverEvent string            `json:"discoverEvent"`
	Kinds         map[string]string `json:"kinds"`
}

// Loader is the rendered loader script.
type Loader struct {
	script []byte
	etag   string
}

// NewLoader renders the loader for the configured console.
func NewLoader(cfg config.WidgetConfig) (*Loader, error) {
	origin, err := Origin(cfg.ConsoleURL)
	if err != nil {
		return nil, err
	}
	lc := loaderConfig{
		URL:           cfg.ConsoleURL,
		Origin:        origin,
		ElementID:     cfg.ElementID,
		Width:         cfg.Width,
		Height:        cfg.Height,
		Global:        GlobalName,
		ReadyEvent:    ReadyEvent,
		DiscoverEvent: DiscoverEvent,
		Kinds: map[string]string{
			"hide":     string(KindHide),
			"maximize": string(KindMaximize),
			"minimise": string(KindMinimise),
			"greeting": string(KindGreeting),
			"message":  string(KindMessage),
		},
	}
	// encoding/json escapes <, > and &, so the object is safe inside a script.
	raw, err := json.Marshal(lc)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := loaderTemplate.Execute(&buf, struct{ Config string }{string(raw)}); err != nil {
		return nil, fmt.Errorf("widget: render loader: %w", err)
	}
	sum := sha256.Sum256(buf.Bytes())
	return &Loader{
		script: buf.Bytes(),
		etag:   `"` + hex.EncodeToString(sum[:8]) + `"`,
	}, nil
}

// Script returns the rendered script
func (l *Loader) Script() []byte {
	return l.script
}

// ServeLoader answers GET /widget/loader.js
func (l *Loader) ServeLoader(c *gin.Context) {
	c.Header("ETag", l.etag)
	c.Header("Cache-Control", "public, max-age=300")
	if c.GetHeader("If-None-Match") == l.etag {
		c.Status(http.StatusNotModified)
		return
	}
	c.Data(http.StatusOK, "application/javascript; charset=utf-8", l.script)
}

// RegisterRoutes mounts the loader route
func (l *Loader) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET(LoaderPath, l.ServeLoader)
}
