package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/esteemapp/surfer-core/network"
	"github.com/esteemapp/surfer-core/types"
	"github.com/pkg/errors"
	"github.com/sisu-network/lib/log"
)

// DelegatedResult is the transaction the delegated service broadcast on the
// account's behalf.
type DelegatedResult struct {
	ID       string `json:"id"`
	BlockNum uint32 `json:"block_num"`
	TrxNum   uint32 `json:"trx_num"`
	Expired  bool   `json:"expired"`
}

type delegatedResponse struct {
	Result           *DelegatedResult `json:"result"`
	Error            string           `json:"error"`
	ErrorDescription string           `json:"error_description"`
}

// SteemConnect is a client of a delegated signing service that signs and
// broadcasts operations with credentials it manages.
type SteemConnect interface {
	Broadcast(ctx context.Context, accessToken string, bundle types.Bundle) (*DelegatedResult, error)
	HotSigningURL(op types.Operation, redirect string) (string, error)
	AppAuthorizationURL(app string, grant bool, redirect string) string
}

type DefaultSteemConnect struct {
	baseUrl string
	http    network.Http
}

func NewSteemConnect(baseUrl string, httpClient network.Http) SteemConnect {
	return &DefaultSteemConnect{
		baseUrl: strings.TrimRight(baseUrl, "/"),
		http:    httpClient,
	}
}

func (c *DefaultSteemConnect) Broadcast(ctx context.Context, accessToken string, bundle types.Bundle) (*DelegatedResult, error) {
	body, err := json.Marshal(map[string]interface{}{"operations": bundle})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseUrl+"/api/broadcast", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", accessToken)

	log.Verbose("Sending ", bundle.Names(), " to delegated service")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(types.ErrTransport, "delegated broadcast: %v", err)
	}

	parsed := new(delegatedResponse)
	if err := json.Unmarshal(resp.Body, parsed); err != nil {
		return nil, errors.Wrapf(types.ErrTransport, "delegated broadcast: status %d, cannot parse body", resp.StatusCode)
	}

	if parsed.Error != "" {
		return nil, errors.Wrapf(types.ErrOperationRejected, "delegated broadcast: %s %s", parsed.Error, parsed.ErrorDescription)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || parsed.Result == nil {
		return nil, errors.Wrapf(types.ErrTransport, "delegated broadcast: status %d", resp.StatusCode)
	}

	return parsed.Result, nil
}

// HotSigningURL returns the service page where the user signs op with an
// authority the access token does not carry, typically the active key.
func (c *DefaultSteemConnect) HotSigningURL(op types.Operation, redirect string) (string, error) {
	bz, err := json.Marshal(op)
	if err != nil {
		return "", err
	}

	fields := make(map[string]interface{})
	if err := json.Unmarshal(bz, &fields); err != nil {
		return "", err
	}

	query := url.Values{}
	for k, field := range fields {
		switch v := field.(type) {
		case string:
			query.Set(k, v)
		case float64, bool:
			query.Set(k, fmt.Sprint(v))
		default:
			nested, err := json.Marshal(v)
			if err != nil {
				return "", err
			}
			query.Set(k, string(nested))
		}
	}
	if redirect != "" {
		query.Set("redirect_uri", redirect)
	}

	return fmt.Sprintf("%s/sign/%s?%s", c.baseUrl, op.OpName(), query.Encode()), nil
}

// AppAuthorizationURL returns the service page where the user grants app
// posting authority over their account, or revokes it when grant is false.
func (c *DefaultSteemConnect) AppAuthorizationURL(app string, grant bool, redirect string) string {
	action := "revoke"
	if grant {
		action = "authorize"
	}

	link := fmt.Sprintf("%s/%s/@%s", c.baseUrl, action, url.PathEscape(app))
	if redirect != "" {
		link += "?" + url.Values{"redirect_uri": {redirect}}.Encode()
	}

	return link
}
