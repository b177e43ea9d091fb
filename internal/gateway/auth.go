package gateway

import (
	"context"
	"errors"

	"github.com/leaflens/leaflens/internal/models"
	"go.uber.org/zap"
)

// asAuthError reshapes any gateway failure into the auth taxonomy: transport
// problems become Unreachable, everything else Invalid.
func asAuthError(err error) *AuthError {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr
	}
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		if reqErr.Kind == RequestServerUnavailable || reqErr.Kind == RequestTimeout {
			return &AuthError{Kind: AuthUnreachable, Err: reqErr.Err}
		}
		return &AuthError{Kind: AuthInvalid, Message: reqErr.Message, Err: reqErr}
	}
	return &AuthError{Kind: AuthInvalid, Err: err}
}

// Login exchanges an email/secret pair for the backend's user echo. No state
// is persisted here; callers store the session on success.
func (c *Client) Login(ctx context.Context, email, secret string) (models.Session, error) {
	if email == "" || secret == "" {
		return models.Session{}, &AuthError{Kind: AuthInvalid, Message: "email and password required"}
	}

	var resp struct {
		Message string      `json:"message"`
		User    models.User `json:"user"`
	}
	err := c.postJSON(ctx, "/login", map[string]string{
		"email":    email,
		"password": secret,
	}, &resp)
	if err != nil {
		return models.Session{}, asAuthError(err)
	}

	c.log.Debug("login accepted", zap.String("email", email), zap.Bool("admin", resp.User.IsAdmin))
	return models.Session{
		Email:            email,
		CredentialSecret: secret,
		Username:         resp.User.Username,
		IsAdmin:          resp.User.IsAdmin,
	}, nil
}

// Signup registers a new account.
func (c *Client) Signup(ctx context.Context, username, email, secret string) error {
	return c.postJSON(ctx, "/signup", map[string]string{
		"username": username,
		"email":    email,
		"password": secret,
	}, nil)
}

// RequestReset asks the backend to mail a password reset link. The backend
// answers 200 even for unknown addresses, so a nil error only means the
// request was accepted.
func (c *Client) RequestReset(ctx context.Context, email string) error {
	return c.postJSON(ctx, "/request_reset", map[string]string{"email": email}, nil)
}

// ValidateToken checks whether a reset token is still usable.
func (c *Client) ValidateToken(ctx context.Context, token string) (bool, error) {
	var resp struct {
		Valid bool `json:"valid"`
	}
	err := c.postJSON(ctx, "/validate_token", map[string]string{"token": token}, &resp)
	if err != nil {
		var reqErr *RequestError
		if errors.As(err, &reqErr) && reqErr.Kind == RequestRejected {
			return false, nil
		}
		return false, err
	}
	return resp.Valid, nil
}

// ResetPassword consumes a reset token and installs a new password.
func (c *Client) ResetPassword(ctx context.Context, token, newSecret string) error {
	return c.postJSON(ctx, "/reset_password", map[string]string{
		"token":        token,
		"new_password": newSecret,
	}, nil)
}

// ChangePassword rotates the password of a signed-in account.
func (c *Client) ChangePassword(ctx context.Context, email, currentSecret, newSecret string) error {
	return c.postJSON(ctx, "/change_password", map[string]string{
		"email":            email,
		"current_password": currentSecret,
		"new_password":     newSecret,
	}, nil)
}

// UpdateProfile changes the display name of the session's account.
func (c *Client) UpdateProfile(ctx context.Context, sess models.Session, username string) error {
	return c.postJSON(ctx, "/update_profile", map[string]string{
		"email":    sess.Email,
		"password": sess.CredentialSecret,
		"username": username,
	}, nil)
}

// UpdateSettings stores per-account settings on the backend.
func (c *Client) UpdateSettings(ctx context.Context, sess models.Session, settings map[string]any) error {
	return c.postJSON(ctx, "/update_settings", map[string]any{
		"email":    sess.Email,
		"password": sess.CredentialSecret,
		"settings": settings,
	}, nil)
}

// DeleteAccount removes the account and all its server-side data. The backend
// requires the literal confirmation string "DELETE"; passing it through
// instead of hardcoding keeps the destructive intent with the caller.
func (c *Client) DeleteAccount(ctx context.Context, sess models.Session, confirmation string) error {
	return c.postJSON(ctx, "/delete_account", map[string]string{
		"email":        sess.Email,
		"password":     sess.CredentialSecret,
		"confirmation": confirmation,
	}, nil)
}

// AdminListUsers returns every account; the session must be an admin.
func (c *Client) AdminListUsers(ctx context.Context, sess models.Session) ([]models.User, error) {
	var resp struct {
		Users []models.User `json:"users"`
	}
	err := c.postJSON(ctx, "/admin/users", map[string]string{
		"email":    sess.Email,
		"password": sess.CredentialSecret,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Users, nil
}

// AdminUpdateUser grants or revokes the admin flag on another account.
func (c *Client) AdminUpdateUser(ctx context.Context, sess models.Session, targetEmail string, isAdmin bool) error {
	return c.postJSON(ctx, "/admin/update-user", map[string]any{
		"adminEmail":    sess.Email,
		"adminPassword": sess.CredentialSecret,
		"targetEmail":   targetEmail,
		"isAdmin":       isAdmin,
	}, nil)
}
