package rushx

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is the local development REST endpoint.
	DefaultBaseURL = "http://localhost:8000"
	// DefaultWSBaseURL is the local development WebSocket endpoint.
	DefaultWSBaseURL = "ws://localhost:8000"
	// DefaultTimeout is the default HTTP client timeout.
	DefaultTimeout = 30 * time.Second
)

// TokenSource yields the current access token, or "" when unauthenticated.
// It is read freshly on every request, so a Session can be plugged in
// directly and token refreshes take effect without rebuilding the client.
type TokenSource func() string

// Client is the RushExpress API client.
//
// Use NewClient to create one, then reach the role-scoped services:
//
//	client := rushx.NewClient(rushx.WithTokenSource(session.AccessToken))
//	orders, err := client.Customer.ListOrders(ctx)
type Client struct {
	baseURL     string
	wsBaseURL   string
	httpClient  *http.Client
	tokenSource TokenSource
	notifier    Notifier
	validate    *validator.Validate
	logger      *zap.Logger
	maxRetries  int

	// Services
	Auth     *AuthService
	Customer *CustomerService
	Merchant *MerchantService
	Rider    *RiderService
	Admin    *AdminService
	Realtime *Realtime
}

// Option configures the client.
type Option func(*Client)

// WithBaseURL sets a custom REST base URL.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithWSBaseURL sets a custom WebSocket base URL.
func WithWSBaseURL(url string) Option {
	return func(c *Client) {
		c.wsBaseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if c.httpClient == nil {
			c.httpClient = &http.Client{}
		}
		c.httpClient.Timeout = timeout
	}
}

// WithTokenSource sets the access token accessor used for bearer auth and
// WebSocket handshakes.
func WithTokenSource(source TokenSource) Option {
	return func(c *Client) {
		c.tokenSource = source
	}
}

// WithNotifier sets the sink for user-visible notices emitted on failed
// calls. Defaults to a no-op sink.
func WithNotifier(notifier Notifier) Option {
	return func(c *Client) {
		c.notifier = notifier
	}
}

// WithLogger sets a structured logger. Defaults to zap.NewNop().
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithReconnect enables automatic reconnection for realtime channels. A
// dropped channel is redialed with exponential backoff up to maxRetries
// attempts; there is no frame replay across reconnects. Default is zero:
// a dropped channel stays down until the owner re-subscribes.
func WithReconnect(maxRetries int) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
	}
}

// NewClient creates a new RushExpress API client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		wsBaseURL: DefaultWSBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		tokenSource: func() string { return "" },
		notifier:    nopNotifier{},
		validate:    validator.New(),
		logger:      zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	// Initialize services
	c.Auth = &AuthService{client: c}
	c.Customer = &CustomerService{client: c}
	c.Merchant = &MerchantService{client: c}
	c.Rider = &RiderService{client: c}
	c.Admin = &AdminService{client: c}
	c.Realtime = newRealtime(c.wsBaseURL, c.tokenSource, c.logger, c.maxRetries)

	return c
}

// BaseURL returns the current REST base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// WSBaseURL returns the current WebSocket base URL.
func (c *Client) WSBaseURL() string {
	return c.wsBaseURL
}
