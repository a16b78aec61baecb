package supabase

import (
	"context"
	"fmt"

	"github.com/supabase-community/supabase-go"
	"skinscan-backend/internal/config"
	"skinscan-backend/internal/models"
)

// Client wraps the Supabase Auth API for session lookups and sign out.
type Client struct {
	Supabase *supabase.Client
	Config   *config.Config
}

func NewClient(cfg *config.Config) (*Client, error) {
	client, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabasePublishableKey, nil)
	if err != nil {
		return nil, err
	}

	return &Client{
		Supabase: client,
		Config:   cfg,
	}, nil
}

// CurrentUser resolves the session token to its Supabase user.
func (c *Client) CurrentUser(_ context.Context, token string) (*models.SessionResponse, error) {
	resp, err := c.Supabase.Auth.WithToken(token).GetUser()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get user: %w", models.ErrAuthentication, err)
	}

	return &models.SessionResponse{
		UserID: resp.ID.String(),
		Email:  resp.Email,
	}, nil
}

// SignOut revokes the session behind token.
func (c *Client) SignOut(_ context.Context, token string) error {
	if err := c.Supabase.Auth.WithToken(token).Logout(); err != nil {
		return fmt.Errorf("%w: failed to sign out: %w", models.ErrAuthentication, err)
	}
	return nil
}
