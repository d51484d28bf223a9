package rushx

import "context"

// AuthService handles identity endpoints under /auth/.
type AuthService struct {
	client *Client
}

// RegisterRequest is the payload for creating a new account. Role-specific
// profile fields are flattened into the registration body the same way the
// portals submit them.
type RegisterRequest struct {
	Username      string `json:"username"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	FirstName     string `json:"first_name,omitempty"`
	LastName      string `json:"last_name,omitempty"`
	Role          Role   `json:"role"`
	PhoneNumber   string `json:"phone_number,omitempty"`
	BusinessName  string `json:"business_name,omitempty"`
	SupportEmail  string `json:"support_email,omitempty"`
	VehicleType   string `json:"vehicle_type,omitempty"`
	LicenseNumber string `json:"license_number,omitempty"`
}

// Login exchanges credentials for an access/refresh token pair.
func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthTokens, error) {
	body := map[string]string{"username": username, "password": password}
	var tokens AuthTokens
	if err := s.client.post(ctx, "/auth/login/", body, &tokens); err != nil {
		return nil, err
	}
	return &tokens, nil
}

// Register creates an account and returns tokens plus the created user.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := s.client.post(ctx, "/auth/register/", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Refresh exchanges a refresh token for a new token pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthTokens, error) {
	body := map[string]string{"refresh": refreshToken}
	var tokens AuthTokens
	if err := s.client.post(ctx, "/auth/refresh/", body, &tokens); err != nil {
		return nil, err
	}
	return &tokens, nil
}

// Logout invalidates the refresh token server-side.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	body := map[string]string{"refresh": refreshToken}
	return s.client.post(ctx, "/auth/logout/", body, nil)
}

// Me returns the profile of the currently authenticated user.
func (s *AuthService) Me(ctx context.Context) (*User, error) {
	var user User
	if err := s.client.get(ctx, "/auth/me/", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// VerifyEmail confirms an email verification token.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (*MessageResponse, error) {
	body := map[string]string{"token": token}
	var resp MessageResponse
	if err := s.client.post(ctx, "/auth/verify-email/", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RequestPasswordReset starts the password reset flow for an email address.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (*MessageResponse, error) {
	body := map[string]string{"email": email}
	var resp MessageResponse
	if err := s.client.post(ctx, "/auth/password-reset/", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ConfirmPasswordReset completes the password reset flow.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) (*MessageResponse, error) {
	body := map[string]string{"token": token, "new_password": newPassword}
	var resp MessageResponse
	if err := s.client.post(ctx, "/auth/password-reset-confirm/", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
