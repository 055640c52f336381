package directus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/fortuna/hockeygame/internal/ingest/hockeydb"
)

var (
	// ErrNoToken is returned when no access token is configured
	ErrNoToken = errors.New("directus token not provided")

	// ErrNotFound is returned when a lookup matches no item
	ErrNotFound = errors.New("directus item not found")
)

// Collections written by the uploader
const (
	PlayersCollection    = "players"
	StatisticsCollection = "statistics"
)

// Config configures the Directus client
type Config struct {
	URL      string
	Token    string
	Timeout  time.Duration
	RetryMax int
	Logger   *log.Logger
}

// Client talks to the Directus items API
type Client struct {
	rest   *resty.Client
	logger *log.Logger
}

type itemResponse struct {
	Data struct {
		ID int `json:"id"`
	} `json:"data"`
}

type listResponse struct {
	Data []map[string]interface{} `json:"data"`
}

type errorResponse struct {
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// NewClient creates a Directus client with retrying transport
func NewClient(cfg Config) (*Client, error) {
	if cfg.Token == "" {
		return nil, ErrNoToken
	}
	if cfg.URL == "" {
		cfg.URL = "http://localhost:8055"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RetryMax < 0 {
		cfg.RetryMax = 0
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(log.Writer(), "[directus] ", log.LstdFlags)
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.RetryMax
	retryClient.RetryWaitMin = 500 * time.Millisecond
	retryClient.RetryWaitMax = 10 * time.Second
	retryClient.Logger = nil

	rest := resty.NewWithClient(retryClient.StandardClient()).
		SetBaseURL(strings.TrimRight(cfg.URL, "/")).
		SetTimeout(cfg.Timeout).
		SetAuthToken(cfg.Token).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{rest: rest, logger: cfg.Logger}, nil
}

// CreatePlayer creates a player item and returns its id
func (c *Client) CreatePlayer(ctx context.Context, record map[string]interface{}) (int, error) {
	var result itemResponse
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(record).
		SetResult(&result).
		Post("/items/" + PlayersCollection)
	if err := checkResponse(resp, err, "create player"); err != nil {
		return 0, err
	}

	if result.Data.ID == 0 {
		return 0, fmt.Errorf("create player %v: response carried no id", record["name"])
	}

	c.logger.Printf("Player created: ID=%d, Name=%v", result.Data.ID, record["name"])
	return result.Data.ID, nil
}

// CreateStatistics creates stat items for a player in one request.
// Each record is copied with player_id added.
func (c *Client) CreateStatistics(ctx context.Context, playerID int, records []map[string]interface{}) error {
	if len(records) == 0 {
		return nil
	}

	items := make([]map[string]interface{}, 0, len(records))
	for _, record := range records {
		item := make(map[string]interface{}, len(record)+1)
		for k, v := range record {
			item[k] = v
		}
		item["player_id"] = playerID
		items = append(items, item)
	}

	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(items).
		Post("/items/" + StatisticsCollection)
	if err := checkResponse(resp, err, "create statistics"); err != nil {
		return err
	}

	c.logger.Printf("Statistics created: %d records for player %d", len(records), playerID)
	return nil
}

// GetPlayerByName returns the first player item with an exact name match
func (c *Client) GetPlayerByName(ctx context.Context, name string) (map[string]interface{}, error) {
	var result listResponse
	resp, err := c.rest.R().
		SetContext(ctx).
		SetQueryParam("filter[name][_eq]", name).
		SetResult(&result).
		Get("/items/" + PlayersCollection)
	if err := checkResponse(resp, err, "get player"); err != nil {
		return nil, err
	}

	if len(result.Data) == 0 {
		return nil, fmt.Errorf("player %q: %w", name, ErrNotFound)
	}
	return result.Data[0], nil
}

// UpdatePlayer patches fields of a player item
func (c *Client) UpdatePlayer(ctx context.Context, playerID int, updates map[string]interface{}) error {
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(updates).
		Patch(fmt.Sprintf("/items/%s/%d", PlayersCollection, playerID))
	if err := checkResponse(resp, err, "update player"); err != nil {
		return err
	}

	c.logger.Printf("Player updated: ID=%d", playerID)
	return nil
}

// DeletePlayer deletes a player item
func (c *Client) DeletePlayer(ctx context.Context, playerID int) error {
	resp, err := c.rest.R().
		SetContext(ctx).
		Delete(fmt.Sprintf("/items/%s/%d", PlayersCollection, playerID))
	if err := checkResponse(resp, err, "delete player"); err != nil {
		return err
	}

	c.logger.Printf("Player deleted: ID=%d", playerID)
	return nil
}

// BulkCreatePlayers creates players one by one and returns the ids that succeeded
func (c *Client) BulkCreatePlayers(ctx context.Context, records []map[string]interface{}) []int {
	var ids []int
	for _, record := range records {
		id, err := c.CreatePlayer(ctx, record)
		if err != nil {
			c.logger.Printf("⚠️  %v", err)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// UploadPlayerData creates the player, then its statistics. Failing to upload
// statistics is logged and does not fail the upload.
func (c *Client) UploadPlayerData(ctx context.Context, pd hockeydb.PlayerData) (int, error) {
	playerID, err := c.CreatePlayer(ctx, pd.Player.Record())
	if err != nil {
		return 0, err
	}

	if len(pd.Seasons) > 0 {
		records := make([]map[string]interface{}, len(pd.Seasons))
		for i, s := range pd.Seasons {
			records[i] = s.Record()
		}
		if err := c.CreateStatistics(ctx, playerID, records); err != nil {
			c.logger.Printf("⚠️  Failed to upload stats for %s: %v", pd.Name, err)
		}
	}

	if len(pd.GoalieStats) > 0 {
		records := make([]map[string]interface{}, len(pd.GoalieStats))
		for i, gs := range pd.GoalieStats {
			records[i] = gs.Record()
		}
		if err := c.CreateStatistics(ctx, playerID, records); err != nil {
			c.logger.Printf("⚠️  Failed to upload goalie stats for %s: %v", pd.Name, err)
		}
	}

	return playerID, nil
}

// checkResponse turns transport errors and non-2xx responses into errors
func checkResponse(resp *resty.Response, err error, op string) error {
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !resp.IsError() {
		return nil
	}

	msg := resp.Status()
	var apiErr errorResponse
	if jsonErr := json.Unmarshal(resp.Body(), &apiErr); jsonErr == nil && len(apiErr.Errors) > 0 {
		msg = fmt.Sprintf("%s: %s", msg, apiErr.Errors[0].Message)
	}
	return fmt.Errorf("%s: %s", op, msg)
}
