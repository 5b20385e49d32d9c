// Package salesforce lists the fields of CRM objects through the REST
// describe endpoint, authenticating with the username-password OAuth flow.
package salesforce

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/crmconsole/backend/internal/domain/integration"
	"github.com/crmconsole/backend/internal/infrastructure/config"
	"github.com/crmconsole/backend/internal/infrastructure/telemetry"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

var (
	ErrInvalidSObject = errors.New("salesforce: invalid object name")
	ErrAuthFailed     = errors.New("salesforce: authentication failed")
	ErrDescribeFailed = errors.New("salesforce: describe failed")
)

var sobjectPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// tokens are reused for this long; the password flow returns no expiry.
const tokenTTL = 15 * time.Minute

// FieldCache stores described field lists.
type FieldCache interface {
	Get(ctx context.Context, key string) ([]string, bool)
	Set(ctx context.Context, key string, fields []string)
}

// DescribeRecorder observes describe calls.
type DescribeRecorder interface {
	RecordDescribe(ctx context.Context, sobject string, took time.Duration, err error)
}

// Option configures a Client
type Option func(*Client)

// WithFieldCache enables caching of describe results
func WithFieldCache(c FieldCache) Option {
	return func(cl *Client) { cl.cache = c }
}

// WithDescribeRecorder records describe metrics
func WithDescribeRecorder(r DescribeRecorder) Option {
	return func(cl *Client) { cl.recorder = r }
}

type session struct {
	accessToken string
	instanceURL string
	expiresAt   time.Time
}

// Client implements integration.CatalogProvider against Salesforce.
type Client struct {
	cfg       config.SalesforceConfig
	rest      *resty.Client
	tokenHTTP *http.Client
	cache     FieldCache
	recorder  DescribeRecorder
	logger    *zap.Logger
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]session
}

// NewClient creates a Salesforce client
func NewClient(cfg config.SalesforceConfig, logger *zap.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	rest := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		}).
		SetHeader("Accept", "application/json")

	c := &Client{
		cfg:       cfg,
		rest:      rest,
		tokenHTTP: &http.Client{Timeout: cfg.Timeout},
		logger:    logger.Named("salesforce"),
		now:       time.Now,
		sessions:  make(map[string]session),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ integration.CatalogProvider = (*Client)(nil)

type describeResponse struct {
	Fields []struct {
		Name string `json:"name"`
	} `json:"fields"`
}

type apiError struct {
	Message   string `json:"message"`
	ErrorCode string `json:"errorCode"`
}

// DescribeFields returns the field names of sobject in describe order.
func (c *Client) DescribeFields(ctx context.Context, creds integration.Credentials, sobject string) (fields []string, err error) {
	if !sobjectPattern.MatchString(sobject) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSObject, sobject)
	}
	cacheKey := creds.InstanceURL() + "|" + c.cfg.APIVersion + "|" + sobject
	if c.cache != nil {
		if cached, ok := c.cache.Get(ctx, cacheKey); ok {
			return cached, nil
		}
	}

	ctx, span := telemetry.StartClientSpan(ctx, "salesforce.describe", attribute.String("sobject", sobject))
	start := time.Now()
	defer func() {
		telemetry.End(span, err)
		if c.recorder != nil {
			c.recorder.RecordDescribe(ctx, sobject, time.Since(start), err)
		}
	}()

	sess, err := c.session(ctx, creds)
	if err != nil {
		return nil, err
	}

	var body describeResponse
	var failure []apiError
	resp, err := c.rest.R().
		SetContext(ctx).
		SetAuthToken(sess.accessToken).
		SetResult(&body).
		SetError(&failure).
		Get(fmt.Sprintf("%s/services/data/%s/sobjects/%s/describe", sess.instanceURL, c.cfg.APIVersion, sobject))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDescribeFailed, err)
	}
	if resp.StatusCode() == http.StatusUnauthorized {
		c.forget(creds)
		return nil, fmt.Errorf("%w: session rejected", ErrAuthFailed)
	}
	if resp.IsError() {
		msg := resp.Status()
		if len(failure) > 0 {
			msg = failure[0].ErrorCode + ": " + failure[0].Message
		}
		c.logger.Warn("Describe rejected",
			zap.String("sobject", sobject),
			zap.Int("status", resp.StatusCode()),
			zap.String("error", msg))
		return nil, fmt.Errorf("%w: %s", ErrDescribeFailed, msg)
	}

	fields = make([]string, 0, len(body.Fields))
	for _, f := range body.Fields {
		if f.Name != "" {
			fields = append(fields, f.Name)
		}
	}
	if c.cache != nil {
		c.cache.Set(ctx, cacheKey, fields)
	}
	return fields, nil
}

func sessionKey(creds integration.Credentials) string {
	return creds.InstanceURL() + "|" + creds.ClientID + "|" + creds.Username
}

// session returns a cached access token or runs the password grant.
func (c *Client) session(ctx context.Context, creds integration.Credentials) (session, error) {
	key := sessionKey(creds)
	c.mu.Lock()
	s, ok := c.sessions[key]
	c.mu.Unlock()
	if ok && c.now().Before(s.expiresAt) {
		return s, nil
	}

	oauthCfg := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  creds.InstanceURL() + c.cfg.TokenPath,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	tokenCtx := context.WithValue(ctx, oauth2.HTTPClient, c.tokenHTTP)
	tok, err := oauthCfg.PasswordCredentialsToken(tokenCtx, creds.Username, creds.Password)
	if err != nil {
		c.logger.Warn("Token request failed", zap.String("instance", creds.InstanceURL()), zap.Error(err))
		return session{}, fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}

	s = session{
		accessToken: tok.AccessToken,
		instanceURL: creds.InstanceURL(),
		expiresAt:   c.now().Add(tokenTTL),
	}
	if instance, ok := tok.Extra("instance_url").(string); ok && instance != "" {
		s.instanceURL = strings.TrimRight(instance, "/")
	}
	if !tok.Expiry.IsZero() && tok.Expiry.Before(s.expiresAt) {
		s.expiresAt = tok.Expiry
	}

	c.mu.Lock()
	c.sessions[key] = s
	c.mu.Unlock()
	return s, nil
}

func (c *Client) forget(creds integration.Credentials) {
	c.mu.Lock()
	delete(c.sessions, sessionKey(creds))
	c.mu.Unlock()
}
