// Package api is the HTTP client for the game's script endpoints: login,
// room listing and resolution, friend lists and the map catalogue. The
// websocket side lives in pkg/room; this package only covers the form-POST
// calls that happen before and around a room session.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/bonkgo-dev/bonkgo/pkg/bonk"
	"github.com/bonkgo-dev/bonkgo/pkg/bonkmap"
)

// OwnMapsPageSize is how many maps map_getown.php returns per call.
const OwnMapsPageSize = 30

// ErrRoomLink is returned for join links that do not carry a room code.
var ErrRoomLink = errors.New("api: link carries no room code")

// roomLinkRe matches the trailing six-digit room code and optional
// five-character bypass of a share link.
var roomLinkRe = regexp.MustCompile(`/(\d{6})([a-zA-Z0-9]{5})?$`)

const defaultTracerName = "bonkgo/api"

// Config configures a Client. The zero value is usable; NewClient fills
// defaults.
type Config struct {
	// HTTPClient issues the requests (default: a client with a 15s timeout).
	HTTPClient *http.Client

	// ScriptsURL is the base URL of the script endpoints. Overridable for
	// tests (default: https://bonk2.io/scripts).
	ScriptsURL string

	// Logger receives per-request debug records (default: slog.Default).
	Logger *slog.Logger

	// TracerName names the tracer spans are created from.
	TracerName string

	// Registry receives request metrics. Nil disables them.
	Registry prometheus.Registerer
}

// Option configures a Client.
type Option func(*Config)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Config) { c.HTTPClient = hc }
}

// WithScriptsURL overrides the script endpoint base URL.
func WithScriptsURL(u string) Option {
	return func(c *Config) { c.ScriptsURL = strings.TrimRight(u, "/") }
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// WithTracerName sets the tracer name.
func WithTracerName(name string) Option {
	return func(c *Config) { c.TracerName = name }
}

// WithRegistry enables request metrics on the given registry.
func WithRegistry(r prometheus.Registerer) Option {
	return func(c *Config) { c.Registry = r }
}

type clientMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func newClientMetrics(reg prometheus.Registerer) *clientMetrics {
	factory := promauto.With(reg)
	return &clientMetrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bonkgo",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total script endpoint requests",
		}, []string{"script", "result"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bonkgo",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Script endpoint request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"script"}),
	}
}

// Client talks to the script endpoints.
type Client struct {
	hc      *http.Client
	scripts string
	log     *slog.Logger
	tracer  trace.Tracer
	metrics *clientMetrics
}

// NewClient returns a ready Client.
func NewClient(opts ...Option) *Client {
	cfg := Config{
		ScriptsURL: scripts,
		TracerName: defaultTracerName,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	c := &Client{
		hc:      cfg.HTTPClient,
		scripts: cfg.ScriptsURL,
		log:     cfg.Logger,
		tracer:  otel.Tracer(cfg.TracerName),
	}
	if cfg.Registry != nil {
		c.metrics = newClientMetrics(cfg.Registry)
	}
	return c
}

// LoginPassword authenticates a registered account by name and password.
// remember asks the backend for a long-lived remember token.
func (c *Client) LoginPassword(ctx context.Context, username, password string, remember bool) (*Profile, error) {
	form := url.Values{
		"username": {username},
		"password": {password},
		"remember": {strconv.FormatBool(remember)},
	}
	var resp loginResponse
	if err := c.post(ctx, "login_legacy.php", form, &resp); err != nil {
		return nil, err
	}
	return resp.profile()
}

// LoginToken authenticates with a remember token from an earlier
// LoginPassword call.
func (c *Client) LoginToken(ctx context.Context, rememberToken string) (*Profile, error) {
	form := url.Values{"rememberToken": {rememberToken}}
	var resp loginResponse
	if err := c.post(ctx, "login_auto.php", form, &resp); err != nil {
		return nil, err
	}
	return resp.profile()
}

// CreateServer asks matchmaking which server a new room should be
// created on.
func (c *Client) CreateServer(ctx context.Context) (bonk.Server, error) {
	form := url.Values{
		"version": {strconv.Itoa(bonk.ProtocolVersion)},
		"gl":      {"y"},
		"token":   {""},
	}
	var resp struct {
		CreateServer string `json:"createserver"`
	}
	if err := c.post(ctx, "getrooms.php", form, &resp); err != nil {
		return bonk.Server{}, err
	}
	return bonk.ServerByName(resp.CreateServer)
}

// Rooms fetches the public room listing.
func (c *Client) Rooms(ctx context.Context) ([]RoomInfo, error) {
	form := url.Values{
		"version": {strconv.Itoa(bonk.ProtocolVersion)},
		"gl":      {"n"},
		"token":   {""},
	}
	var resp struct {
		Rooms []struct {
			RoomName   string `json:"roomname"`
			ID         int    `json:"id"`
			Players    int    `json:"players"`
			MaxPlayers int    `json:"maxplayers"`
			Password   int    `json:"password"`
			ModeCode   string `json:"mode_mo"`
			MinLevel   int    `json:"minlevel"`
			MaxLevel   int    `json:"maxlevel"`
		} `json:"rooms"`
	}
	if err := c.post(ctx, "getrooms.php", form, &resp); err != nil {
		return nil, err
	}
	rooms := make([]RoomInfo, 0, len(resp.Rooms))
	for _, r := range resp.Rooms {
		mode, err := bonk.ModeFromCode(r.ModeCode)
		if err != nil {
			return nil, fmt.Errorf("api: room %d: %w", r.ID, err)
		}
		rooms = append(rooms, RoomInfo{
			Name:        r.RoomName,
			ID:          r.ID,
			Players:     r.Players,
			MaxPlayers:  r.MaxPlayers,
			HasPassword: r.Password == 1,
			Mode:        mode,
			MinLevel:    r.MinLevel,
			MaxLevel:    r.MaxLevel,
		})
	}
	return rooms, nil
}

// RoomAddress resolves a numeric room id into a join target.
func (c *Client) RoomAddress(ctx context.Context, roomID int) (*JoinTarget, error) {
	form := url.Values{"id": {strconv.Itoa(roomID)}}
	var resp struct {
		RoomName string `json:"roomname"`
		Server   string `json:"server"`
	}
	if err := c.post(ctx, "getroomaddress.php", form, &resp); err != nil {
		return nil, err
	}
	server, err := bonk.ServerByName(resp.Server)
	if err != nil {
		return nil, err
	}
	return &JoinTarget{Address: roomID, Name: resp.RoomName, Server: server}, nil
}

// ResolveLink resolves a share link into a join target, carrying the
// link's bypass code through.
func (c *Client) ResolveLink(ctx context.Context, link string) (*JoinTarget, error) {
	m := roomLinkRe.FindStringSubmatch(link)
	if m == nil {
		return nil, fmt.Errorf("%w: %q", ErrRoomLink, link)
	}
	form := url.Values{"joinID": {m[1]}}
	var resp struct {
		Address  int    `json:"address"`
		RoomName string `json:"roomname"`
		Server   string `json:"server"`
	}
	if err := c.post(ctx, "autojoin.php", form, &resp); err != nil {
		return nil, err
	}
	server, err := bonk.ServerByName(resp.Server)
	if err != nil {
		return nil, err
	}
	return &JoinTarget{
		Address: resp.Address,
		Name:    resp.RoomName,
		Server:  server,
		Bypass:  m[2],
	}, nil
}

// Friends fetches the account's friend list.
func (c *Client) Friends(ctx context.Context, token string) ([]bonk.Friend, error) {
	form := url.Values{
		"token": {token},
		"task":  {"getfriends"},
	}
	var resp struct {
		Friends []friendJSON `json:"friends"`
	}
	if err := c.post(ctx, "friends.php", form, &resp); err != nil {
		return nil, err
	}
	friends := make([]bonk.Friend, 0, len(resp.Friends))
	for _, f := range resp.Friends {
		friends = append(friends, bonk.Friend{Name: f.Name, DBID: f.ID, RoomID: f.RoomID})
	}
	return friends, nil
}

// OwnMaps fetches one page of the account's own maps starting at the
// given offset. Pages hold OwnMapsPageSize entries.
func (c *Client) OwnMaps(ctx context.Context, token string, startFrom int) ([]*bonkmap.Map, error) {
	form := url.Values{
		"token":        {token},
		"startingfrom": {strconv.Itoa(startFrom)},
	}
	var resp struct {
		Maps []struct {
			LevelData string `json:"leveldata"`
		} `json:"maps"`
	}
	if err := c.post(ctx, "map_getown.php", form, &resp); err != nil {
		return nil, err
	}
	maps := make([]*bonkmap.Map, 0, len(resp.Maps))
	for _, m := range resp.Maps {
		decoded, err := bonkmap.DecodeDatabase(m.LevelData)
		if err != nil {
			return nil, fmt.Errorf("api: own map: %w", err)
		}
		maps = append(maps, decoded)
	}
	return maps, nil
}

// post issues a form POST to a script, checks the "r" result field and
// unmarshals the body into out.
func (c *Client) post(ctx context.Context, script string, form url.Values, out any) error {
	ctx, span := c.tracer.Start(ctx, "api."+script,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("bonk.script", script)))
	defer span.End()

	start := time.Now()
	err := c.doPost(ctx, script, form, out)
	elapsed := time.Since(start)

	result := "ok"
	if err != nil {
		result = "error"
		var apiErr *bonk.APIError
		if errors.As(err, &apiErr) {
			result = apiErr.Code
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if c.metrics != nil {
		c.metrics.requestsTotal.WithLabelValues(script, result).Inc()
		c.metrics.requestDuration.WithLabelValues(script).Observe(elapsed.Seconds())
	}
	c.log.DebugContext(ctx, "api request",
		"script", script,
		"result", result,
		"duration", elapsed,
	)
	return err
}

func (c *Client) doPost(ctx context.Context, script string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.scripts+"/"+script, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("api: %s: %w", script, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("api: %s: %w", script, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("api: %s: unexpected status %s", script, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("api: %s: read body: %w", script, err)
	}

	// Every script reports failure in-band before the payload shape
	// applies. autojoin.php spells it "failed" and omits the code.
	var result struct {
		R string `json:"r"`
		E string `json:"e"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("api: %s: decode: %w", script, err)
	}
	switch result.R {
	case "fail":
		return bonk.NewAPIError(result.E)
	case "failed":
		return bonk.NewAPIError("room_not_found")
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("api: %s: decode: %w", script, err)
	}
	return nil
}
