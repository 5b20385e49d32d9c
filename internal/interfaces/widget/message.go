// Package widget serves the embeddable loader script and defines the
// postMessage vocabulary spoken between the host page and the console iframe.
package widget

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Kind identifies a widget message.
type Kind string

// Control words sent by the console iframe as bare strings.
const (
	KindHide     Kind = "hide"
	KindMaximize Kind = "maximize"
	KindMinimise Kind = "minimise"
)

// Typed messages sent by the host page as objects.
const (
	KindGreeting Kind = "greeting"
	KindMessage  Kind = "message"
)

// ErrUnknownMessage is returned for data outside the vocabulary.
var ErrUnknownMessage = errors.New("widget: unknown message")

// Message is one postMessage exchanged with the console iframe.
type Message struct {
	Kind Kind `json:"type"`
	// Origin is the host page origin, set on greetings
	Origin string `json:"origin,omitempty"`
	// Payload is the caller's data, set on sendMessage messages
	Payload json.RawMessage `json:"payload,omitempty"`
}

// IsControl reports whether the message is one of the bare control words.
func (m Message) IsControl() bool {
	switch m.Kind {
	case KindHide, KindMaximize, KindMinimise:
		return true
	}
	return false
}

// MarshalJSON encodes control words as bare strings and the rest as objects.
func (m Message) MarshalJSON() ([]byte, error) {
	if m.IsControl() {
		return json.Marshal(string(m.Kind))
	}
	type object Message
	return json.Marshal(object(m))
}

// ParseMessage decodes the JSON form of postMessage data.
func ParseMessage(data []byte) (Message, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Message{}, ErrUnknownMessage
	}

	if data[0] == '"' {
		var word string
		if err := json.Unmarshal(data, &word); err != nil {
			return Message{}, fmt.Errorf("widget: decode control word: %w", err)
		}
		m := Message{Kind: Kind(word)}
		if !m.IsControl() {
			return Message{}, fmt.Errorf("%w: %q", ErrUnknownMessage, word)
		}
		return m, nil
	}

	type object Message
	var o object
	if err := json.Unmarshal(data, &o); err != nil {
		return Message{}, fmt.Errorf("widget: decode message: %w", err)
	}
	m := Message(o)
	switch m.Kind {
	case KindGreeting:
		return m, nil
	case KindMessage:
		if len(m.Payload) == 0 {
			m.Payload = json.RawMessage("null")
		}
		return m, nil
	}
	return Message{}, fmt.Errorf("%w: type %q", ErrUnknownMessage, m.Kind)
}

// Origin returns the scheme://host[:port] origin of rawURL with default
// ports removed.
func Origin(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("widget: %q is not an absolute URL", rawURL)
	}
	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	port := u.Port()
	if (scheme == "https" && port == "443") || (scheme == "http" && port == "80") {
		port = ""
	}
	if port != "" {
		host = net.JoinHostPort(host, port)
	} else if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	return scheme + "://" + host, nil
}

// OriginAllowed reports whether a message origin matches the configured
// console URL. Paths of the configured URL are ignored.
func OriginAllowed(consoleURL, origin string) bool {
	want, err := Origin(consoleURL)
	if err != nil {
		return false
	}
	got, err := Origin(origin)
	if err != nil {
		return false
	}
	return want == got
}
