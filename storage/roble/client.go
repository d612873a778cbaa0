// Package roble implements the core repositories on top of the Roble
// table-storage HTTP API, the backing store shared with the mobile client.
package roble

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"github.com/openlab-uninorte/aula/core"
)

// idColumn is the row identifier column Roble tables key updates and
// deletes on.
const idColumn = "_id"

// Client is a thin wrapper around the Roble database endpoints
// (read / insert / update / delete) of a single project.
type Client struct {
	http      *http.Client
	baseURL   string
	projectID string
	token     string
	log       core.Logger
}

func NewClient(cfg core.RobleConfig, logger core.Logger) *Client {
	return &Client{
		http:      &http.Client{Timeout: cfg.Timeout},
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		projectID: cfg.ProjectID,
		token:     cfg.Token,
		log:       logger,
	}
}

// Read returns all records of a table matching the given column filters.
func (c *Client) Read(ctx context.Context, table string, filters map[string]string) ([]Record, error) {
	q := url.Values{}
	q.Set("tableName", table)
	for col, val := range filters {
		q.Set(col, val)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("read")+"?"+q.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "roble: building read request")
	}
	body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	return decodeRecords(body)
}

// Insert appends records to a table.
func (c *Client) Insert(ctx context.Context, table string, records ...map[string]interface{}) error {
	return c.send(ctx, http.MethodPost, "insert", map[string]interface{}{
		"tableName": table,
		"records":   records,
	})
}

// Update applies a partial update to the record with the given id.
func (c *Client) Update(ctx context.Context, table, id string, updates map[string]interface{}) error {
	return c.send(ctx, http.MethodPut, "update", map[string]interface{}{
		"tableName": table,
		"idColumn":  idColumn,
		"idValue":   id,
		"updates":   updates,
	})
}

// Delete removes the record with the given id.
func (c *Client) Delete(ctx context.Context, table, id string) error {
	return c.send(ctx, http.MethodDelete, "delete", map[string]interface{}{
		"tableName": table,
		"idColumn":  idColumn,
		"idValue":   id,
	})
}

func (c *Client) endpoint(action string) string {
	return fmt.Sprintf("%s/database/%s/%s", c.baseURL, c.projectID, action)
}

func (c *Client) send(ctx context.Context, method, action string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrapf(err, "roble: encoding %s payload", action)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(action), bytes.NewReader(data))
	if err != nil {
		return errors.Wrapf(err, "roble: building %s request", action)
	}
	req.Header.Set("Content-Type", "application/json")
	_, err = c.do(req)
	return err
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "roble: %s %s", req.Method, req.URL.Path)
	}
	//goland:noinspection GoUnhandledErrorResult
	defer resp.Body.Close()

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "roble: reading %s response", req.URL.Path)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		if c.log != nil {
			c.log.Warn(fmt.Sprintf("roble: %s %s -> %d: %s", req.Method, req.URL.Path, resp.StatusCode, truncate(body)))
		}
		return nil, errors.Errorf("roble: %s %s: unexpected status %d", req.Method, req.URL.Path, resp.StatusCode)
	}
	return body, nil
}

// decodeRecords tolerates the three response shapes the API has been seen
// to produce: a bare array, an object with a "data" array, or a single
// record object.
func decodeRecords(data []byte) ([]Record, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}

	if data[0] == '[' {
		var recs []Record
		if err := json.Unmarshal(data, &recs); err != nil {
			return nil, errors.Wrap(err, "roble: decoding record list")
		}
		return recs, nil
	}

	var obj Record
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, errors.Wrap(err, "roble: decoding record")
	}
	if raw, ok := obj["data"]; ok {
		return decodeRecords(raw)
	}
	return []Record{obj}, nil
}

func truncate(body []byte) string {
	const max = 512
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
