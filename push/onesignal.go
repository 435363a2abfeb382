// Package push sends notifications through OneSignal.
package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	onesignal "github.com/OneSignal/onesignal-go-api/v2"
)

var ErrNoRecipients = errors.New("push: no recipients given")

// Request is one push notification addressed to app users.
type Request struct {
	// ExternalUserIDs are app user ids registered with the gateway.
	ExternalUserIDs []string
	// PlayerIDs are raw device subscription ids, used when no user id is known.
	PlayerIDs []string
	Title     string
	Body      string
	Data      map[string]any
}

// Result is what the gateway reports for an accepted notification.
type Result struct {
	ID         string `json:"id"`
	Recipients int    `json:"recipients"`
}

// APIError is returned when the gateway answers with a non-2xx status or
// an error list.
type APIError struct {
	StatusCode int
	Errors     json.RawMessage
	Body       string
}

func (e *APIError) Error() string {
	if len(e.Errors) > 0 {
		return fmt.Sprintf("onesignal: status %d: errors %s", e.StatusCode, string(e.Errors))
	}
	return fmt.Sprintf("onesignal: status %d: %s", e.StatusCode, e.Body)
}

type Client struct {
	appID  string
	apiKey string
	api    *onesignal.APIClient
}

// NewClient creates a gateway client. An empty apiURL keeps the SDK's
// default server.
func NewClient(appID, apiKey, apiURL string, timeout time.Duration) *Client {
	cfg := onesignal.NewConfiguration()
	cfg.HTTPClient = &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			IdleConnTimeout:     90 * time.Second,
			MaxIdleConnsPerHost: 5,
		},
	}
	if apiURL != "" {
		cfg.Servers = onesignal.ServerConfigurations{{URL: apiURL}}
	}

	return &Client{
		appID:  appID,
		apiKey: apiKey,
		api:    onesignal.NewAPIClient(cfg),
	}
}

// response is the part of the gateway answer we act on. The SDK models
// "errors" loosely, so it is read back from JSON.
type response struct {
	ID         string          `json:"id"`
	Recipients int             `json:"recipients"`
	Errors     json.RawMessage `json:"errors"`
}

// Send posts one notification. A non-2xx status or a non-empty error list
// in the body is a failure.
func (c *Client) Send(ctx context.Context, req Request) (*Result, error) {
	if len(req.ExternalUserIDs) == 0 && len(req.PlayerIDs) == 0 {
		return nil, ErrNoRecipients
	}

	notification := onesignal.NewNotification(c.appID)
	if len(req.ExternalUserIDs) > 0 {
		notification.SetIncludeExternalUserIds(req.ExternalUserIDs)
	} else {
		notification.SetIncludePlayerIds(req.PlayerIDs)
	}
	notification.SetHeadings(onesignal.StringMap{En: onesignal.PtrString(req.Title), Ar: onesignal.PtrString(req.Title)})
	notification.SetContents(onesignal.StringMap{En: onesignal.PtrString(req.Body), Ar: onesignal.PtrString(req.Body)})
	if len(req.Data) > 0 {
		notification.SetData(req.Data)
	}

	authCtx := context.WithValue(ctx, onesignal.AppAuth, c.apiKey)
	resp, httpRes, err := c.api.DefaultApi.CreateNotification(authCtx).Notification(*notification).Execute()
	if err != nil {
		return nil, gatewayError(httpRes, err)
	}

	raw, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read push response: %w", err)
	}
	var parsed response
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse push response: %w", err)
	}
	if hasErrors(parsed.Errors) {
		return nil, &APIError{StatusCode: statusOf(httpRes), Errors: parsed.Errors, Body: string(raw)}
	}

	log.Printf("Push notification %s accepted for %d recipients", parsed.ID, parsed.Recipients)
	return &Result{ID: parsed.ID, Recipients: parsed.Recipients}, nil
}

// gatewayError maps an SDK failure to APIError when the gateway answered,
// and wraps transport errors otherwise.
func gatewayError(httpRes *http.Response, err error) error {
	if httpRes == nil {
		return fmt.Errorf("failed to send push notification: %w", err)
	}

	apiErr := &APIError{StatusCode: httpRes.StatusCode, Body: err.Error()}
	var withBody interface{ Body() []byte }
	if errors.As(err, &withBody) {
		body := withBody.Body()
		apiErr.Body = string(body)
		var parsed response
		if json.Unmarshal(body, &parsed) == nil && hasErrors(parsed.Errors) {
			apiErr.Errors = parsed.Errors
		}
	}
	return apiErr
}

func statusOf(httpRes *http.Response) int {
	if httpRes == nil {
		return 0
	}
	return httpRes.StatusCode
}

// hasErrors reports whether the gateway's "errors" field carries anything.
// The field is either a list of strings or an object of lists.
func hasErrors(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var list []any
	if err := json.Unmarshal(raw, &list); err == nil {
		return len(list) > 0
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err == nil {
		return len(obj) > 0
	}
	return string(raw) != "null"
}
