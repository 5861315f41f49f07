package api

import "context"

// Login authenticates the credentials against POST /auth/login. No bearer
// token is attached even if the chat still has a stale session.
func (c *Client) Login(ctx context.Context, chatID int64, creds Credentials) (LoginResponse, error) {
	var resp LoginResponse
	if err := c.postNoAuth(ctx, chatID, "/auth/login", creds, &resp); err != nil {
		return LoginResponse{}, err
	}
	return resp, nil
}
