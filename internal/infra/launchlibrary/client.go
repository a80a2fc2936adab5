// internal/infra/launchlibrary/client.go
package launchlibrary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"launch_notifier/internal/domain/launch"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Launch Library 2 docs: https://ll.thespacedevs.com/docs/
// Auth header: "Authorization: Token <KEY>" (optional, raises rate limits)

var (
	ErrFetchFailed   = errors.New("launch feed request failed")
	ErrMalformedFeed = errors.New("launch feed response is malformed")
)

const (
	queryTimeLayout = "2006-01-02T15:04:05Z"
	unknownRocket   = "Unknown rocket"
	maxBodyBytes    = 8 << 20
)

type Client struct {
	baseURL      string
	launchesPath string
	apiKey       string // optional
	client       *http.Client
	logger       *logrus.Entry
	newID        func() string
}

func NewClient(baseURL, launchesPath, apiKey string, timeout time.Duration, logger *logrus.Entry) *Client {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 60 * time.Second,
		}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		launchesPath: "/" + strings.TrimLeft(launchesPath, "/"),
		apiKey:       strings.TrimSpace(apiKey),
		client: &http.Client{
			Timeout:   timeout,
			Transport: tr,
		},
		logger: logger.WithField("component", "launchlibrary"),
		newID:  uuid.NewString,
	}
}

type feedResponse struct {
	Count   *int         `json:"count"`
	Results []feedLaunch `json:"results"`
}

type feedLaunch struct {
	ID          string      `json:"id"`
	Name        *string     `json:"name"`
	Status      *feedStatus `json:"status"`
	LastUpdated string      `json:"last_updated"`
	Net         string      `json:"net"`
}

type feedStatus struct {
	ID *int `json:"id"`
}

// FetchLaunches returns every launch whose NET lies in [start, end].
func (c *Client) FetchLaunches(ctx context.Context, start, end time.Time) ([]*launch.Launch, error) {
	u := c.launchesURL(start, end)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrFetchFailed, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Token "+c.apiKey)
	}

	c.logger.WithField("url", u).Debug("Requesting upcoming launches")
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, fmt.Errorf("%w: http %d", ErrFetchFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrFetchFailed, err)
	}

	var feed feedResponse
	if err := json.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFeed, err)
	}
	if feed.Count == nil || feed.Results == nil {
		return nil, fmt.Errorf("%w: missing count or results", ErrMalformedFeed)
	}

	launches := make([]*launch.Launch, 0, len(feed.Results))
	for i, r := range feed.Results {
		l, err := c.toLaunch(r)
		if err != nil {
			return nil, fmt.Errorf("%w: result %d: %v", ErrMalformedFeed, i, err)
		}
		launches = append(launches, l)
	}

	c.logger.WithFields(logrus.Fields{
		"count":    *feed.Count,
		"returned": len(launches),
	}).Debug("Fetched upcoming launches")
	return launches, nil
}

func (c *Client) launchesURL(start, end time.Time) string {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("ordering", "net")
	q.Set("mode", "list")
	q.Set("net__gte", start.UTC().Format(queryTimeLayout))
	q.Set("net__lte", end.UTC().Format(queryTimeLayout))
	return fmt.Sprintf("%s%s?%s", c.baseURL, c.launchesPath, q.Encode())
}

func (c *Client) toLaunch(r feedLaunch) (*launch.Launch, error) {
	if strings.TrimSpace(r.ID) == "" {
		return nil, errors.New("missing id")
	}
	if r.Status == nil || r.Status.ID == nil {
		return nil, fmt.Errorf("launch %s: missing status.id", r.ID)
	}
	net, err := time.Parse(time.RFC3339, r.Net)
	if err != nil {
		return nil, fmt.Errorf("launch %s: bad net %q", r.ID, r.Net)
	}
	lastUpdated, err := time.Parse(time.RFC3339, r.LastUpdated)
	if err != nil {
		return nil, fmt.Errorf("launch %s: bad last_updated %q", r.ID, r.LastUpdated)
	}

	name := unknownRocket
	if r.Name != nil && strings.TrimSpace(*r.Name) != "" {
		name = *r.Name
	}

	status := launch.Status(*r.Status.ID)
	if !status.Known() {
		c.logger.WithFields(logrus.Fields{
			"subject_id": r.ID,
			"status_id":  *r.Status.ID,
		}).Warn("Launch has an undocumented status")
	}

	// PostgreSQL TIMESTAMP keeps microseconds; finer digits would read back as a change.
	return &launch.Launch{
		ID:          c.newID(),
		SubjectID:   r.ID,
		Name:        name,
		Status:      status,
		ScheduledAt: net.UTC().Truncate(time.Microsecond),
		LastUpdated: lastUpdated.UTC().Truncate(time.Microsecond),
	}, nil
}
