package client

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/esteemapp/surfer-core/network"
	"github.com/esteemapp/surfer-core/types"
	"github.com/pkg/errors"
)

// Esteem is the application backend that collects user activity.
type Esteem interface {
	RecordActivity(ctx context.Context, record *types.ActivityRecord) error
}

type DefaultEsteem struct {
	baseUrl string
	http    network.Http
}

func NewEsteem(baseUrl string, httpClient network.Http) Esteem {
	return &DefaultEsteem{
		baseUrl: strings.TrimRight(baseUrl, "/"),
		http:    httpClient,
	}
}

func (c *DefaultEsteem) RecordActivity(ctx context.Context, record *types.ActivityRecord) error {
	body, err := json.Marshal(record)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseUrl+"/api/activity", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(types.ErrActivityLog, err.Error())
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Wrapf(types.ErrActivityLog, "status %d", resp.StatusCode)
	}

	return nil
}
