// Package directory talks to the organizational directory API (a Graph-style
// service) for user profiles and reporting lines. Callers treat failures as
// non-fatal wherever the resulting field is optional.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
)

// UserProfile is the subset of directory fields the check-in flow consumes.
type UserProfile struct {
	ID                string `json:"id"`
	DisplayName       string `json:"displayName"`
	Mail              string `json:"mail"`
	UserPrincipalName string `json:"userPrincipalName"`
	JobTitle          string `json:"jobTitle"`
	Department        string `json:"department"`
	OfficeLocation    string `json:"officeLocation"`
}

type Client struct {
	Transport *Transport
	Users     *UserEndpoint
}

func NewClient(baseURL, token string) *Client {
	t := NewTransport(baseURL, token)
	return &Client{
		Transport: t,
		Users:     &UserEndpoint{transport: t},
	}
}

type UserEndpoint struct {
	transport *Transport
}

// Me returns the profile of the token's owner.
func (ep *UserEndpoint) Me(ctx context.Context) (*UserProfile, error) {
	resp, err := ep.transport.Get(ctx, "/v1.0/me", nil)
	if err != nil {
		return nil, err
	}
	var profile UserProfile
	if err := json.Unmarshal(resp, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// User returns one user's profile by directory ID.
func (ep *UserEndpoint) User(ctx context.Context, userID string) (*UserProfile, error) {
	resp, err := ep.transport.Get(ctx, fmt.Sprintf("/v1.0/users/%s", userID), nil)
	if err != nil {
		return nil, err
	}
	var profile UserProfile
	if err := json.Unmarshal(resp, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// DirectReports returns the users reporting to the token's owner, used to
// expand a headcount campaign's default target set.
func (ep *UserEndpoint) DirectReports(ctx context.Context) ([]UserProfile, error) {
	resp, err := ep.transport.Get(ctx, "/v1.0/me/directReports", nil)
	if err != nil {
		return nil, err
	}
	var result struct {
		Value []UserProfile `json:"value"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, err
	}
	return result.Value, nil
}
