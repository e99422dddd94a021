package acceptance

import (
	"net/http"

	"github.com/prperemyshlev/siteauth/internal/dto"
)

func (s *Suite) TestRegister_Success() {
	siteID := s.createSite("register.example.com")

	resp := s.postJSON("/api/v1/auth/register", dto.RegisterRequest{
		SiteID:   siteID,
		Email:    "test@example.com",
		Password: "Password123",
	}, nil)
	defer resp.Body.Close()

	s.Equal(http.StatusCreated, resp.StatusCode)

	user := decodeJSON[map[string]any](s, resp)
	s.Equal("test@example.com", user["email"])
	s.Equal(false, user["is_verified"])
	s.NotContains(user, "password_hash")

	// Registration minted a verification token.
	s.NotEmpty(s.verificationToken("test@example.com"))
}

func (s *Suite) TestRegister_DuplicateEmail() {
	siteID := s.createSite("dup.example.com")

	req := dto.RegisterRequest{
		SiteID:   siteID,
		Email:    "duplicate@example.com",
		Password: "Password123",
	}

	resp := s.postJSON("/api/v1/auth/register", req, nil)
	resp.Body.Close()
	s.Equal(http.StatusCreated, resp.StatusCode)

	resp = s.postJSON("/api/v1/auth/register", req, nil)
	defer resp.Body.Close()
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestRegister_SameEmailAcrossSites() {
	siteA := s.createSite("site-a.example.com")
	siteB := s.createSite("site-b.example.com")

	resp := s.postJSON("/api/v1/auth/register", dto.RegisterRequest{
		SiteID: siteA, Email: "shared@example.com", Password: "Password123",
	}, nil)
	resp.Body.Close()
	s.Equal(http.StatusCreated, resp.StatusCode)

	resp = s.postJSON("/api/v1/auth/register", dto.RegisterRequest{
		SiteID: siteB, Email: "shared@example.com", Password: "Password123",
	}, nil)
	defer resp.Body.Close()
	s.Equal(http.StatusCreated, resp.StatusCode)
}

func (s *Suite) TestRegister_InvalidEmail() {
	siteID := s.createSite("invalid.example.com")

	resp := s.postJSON("/api/v1/auth/register", dto.RegisterRequest{
		SiteID:   siteID,
		Email:    "not-an-email",
		Password: "Password123",
	}, nil)
	defer resp.Body.Close()

	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestRegister_UnknownSite() {
	resp := s.postJSON("/api/v1/auth/register", dto.RegisterRequest{
		SiteID:   9999,
		Email:    "test@example.com",
		Password: "Password123",
	}, nil)
	defer resp.Body.Close()

	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *Suite) TestLogin_RequiresVerification() {
	siteID := s.createSite("unverified.example.com")

	resp := s.postJSON("/api/v1/auth/register", dto.RegisterRequest{
		SiteID: siteID, Email: "pending@example.com", Password: "Password123",
	}, nil)
	resp.Body.Close()
	s.Equal(http.StatusCreated, resp.StatusCode)

	resp = s.postJSON("/api/v1/auth/login", dto.LoginRequest{
		SiteID: siteID, Email: "pending@example.com", Password: "Password123",
	}, nil)
	defer resp.Body.Close()

	s.Equal(http.StatusForbidden, resp.StatusCode)
}

func (s *Suite) TestVerifyAndLogin() {
	siteID := s.createSite("verify.example.com")

	resp := s.postJSON("/api/v1/auth/register", dto.RegisterRequest{
		SiteID: siteID, Email: "verify@example.com", Password: "Password123",
	}, nil)
	resp.Body.Close()
	s.Equal(http.StatusCreated, resp.StatusCode)

	token := s.verificationToken("verify@example.com")

	// The status check is non-destructive.
	resp = s.postJSON("/api/v1/auth/check-verification-token", dto.TokenRequest{Token: token}, nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	status := decodeJSON[map[string]any](s, resp)
	resp.Body.Close()
	s.Equal(false, status["password_required"])

	resp = s.postJSON("/api/v1/auth/verify-email", dto.VerifyEmailRequest{Token: token}, nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	result := decodeJSON[map[string]any](s, resp)
	resp.Body.Close()
	s.Equal("https://verify.example.com", result["redirect_url"])

	// The token was consumed.
	resp = s.postJSON("/api/v1/auth/verify-email", dto.VerifyEmailRequest{Token: token}, nil)
	resp.Body.Close()
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	resp = s.postJSON("/api/v1/auth/login", dto.LoginRequest{
		SiteID: siteID, Email: "verify@example.com", Password: "Password123",
	}, nil)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	login := decodeJSON[dto.LoginResponse](s, resp)
	s.NotEmpty(login.Token)
	s.NotZero(login.UserID)
	s.NotZero(login.ExpiresAt)
}

func (s *Suite) TestLogin_WrongPassword() {
	siteID := s.createSite("wrongpass.example.com")
	s.registerAndVerify(siteID, "user@example.com", "Password123")

	resp := s.postJSON("/api/v1/auth/login", dto.LoginRequest{
		SiteID: siteID, Email: "user@example.com", Password: "WrongPassword",
	}, nil)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestLogout() {
	siteID := s.createSite("logout.example.com")
	token := s.registerAndVerify(siteID, "user@example.com", "Password123")

	resp := s.postJSON("/api/v1/auth/logout", struct{}{}, map[string]string{
		"Authorization": "Bearer " + token,
	})
	resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	// The session is gone; a second logout reports it missing.
	resp = s.postJSON("/api/v1/auth/logout", struct{}{}, map[string]string{
		"Authorization": "Bearer " + token,
	})
	resp.Body.Close()
	s.Equal(http.StatusNotFound, resp.StatusCode)

	resp = s.get("/api/v1/auth/me", map[string]string{"Authorization": "Bearer " + token})
	defer resp.Body.Close()
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestGetMe() {
	siteID := s.createSite("me.example.com")
	token := s.registerAndVerify(siteID, "me@example.com", "Password123")

	resp := s.get("/api/v1/auth/me", map[string]string{"Authorization": "Bearer " + token})
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	user := decodeJSON[map[string]any](s, resp)
	s.Equal("me@example.com", user["email"])
	s.Equal(true, user["is_verified"])
}

func (s *Suite) TestChangePassword() {
	siteID := s.createSite("changepass.example.com")
	token := s.registerAndVerify(siteID, "user@example.com", "Password123")

	resp := s.postJSON("/api/v1/auth/change-password", dto.ChangePasswordRequest{
		OldPassword: "Password123",
		NewPassword: "NewPassword456",
	}, map[string]string{"Authorization": "Bearer " + token})
	resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	// The old session was revoked by the change.
	resp = s.get("/api/v1/auth/me", map[string]string{"Authorization": "Bearer " + token})
	resp.Body.Close()
	s.Equal(http.StatusUnauthorized, resp.StatusCode)

	resp = s.postJSON("/api/v1/auth/login", dto.LoginRequest{
		SiteID: siteID, Email: "user@example.com", Password: "NewPassword456",
	}, nil)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *Suite) TestPasswordReset() {
	siteID := s.createSite("reset.example.com")
	session := s.registerAndVerify(siteID, "user@example.com", "Password123")

	resp := s.postJSON("/api/v1/auth/request-password-reset", dto.RequestPasswordResetRequest{
		SiteID: siteID, Email: "user@example.com",
	}, nil)
	resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	token := s.resetToken("user@example.com")

	resp = s.postJSON("/api/v1/auth/reset-password", dto.ResetPasswordRequest{
		Token: token, NewPassword: "Recovered789",
	}, nil)
	resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	// Sessions are revoked and the token is single use.
	resp = s.get("/api/v1/auth/me", map[string]string{"Authorization": "Bearer " + session})
	resp.Body.Close()
	s.Equal(http.StatusUnauthorized, resp.StatusCode)

	resp = s.postJSON("/api/v1/auth/reset-password", dto.ResetPasswordRequest{
		Token: token, NewPassword: "Another000",
	}, nil)
	resp.Body.Close()
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	resp = s.postJSON("/api/v1/auth/login", dto.LoginRequest{
		SiteID: siteID, Email: "user@example.com", Password: "Recovered789",
	}, nil)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *Suite) TestPasswordReset_UnknownEmailIsSilent() {
	siteID := s.createSite("silent.example.com")

	// The response must not reveal whether the account exists.
	resp := s.postJSON("/api/v1/auth/request-password-reset", dto.RequestPasswordResetRequest{
		SiteID: siteID, Email: "nobody@example.com",
	}, nil)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *Suite) TestEmailChange() {
	siteID := s.createSite("emailchange.example.com")
	token := s.registerAndVerify(siteID, "old@example.com", "Password123")

	resp := s.postJSON("/api/v1/auth/request-email-change", dto.RequestEmailChangeRequest{
		NewEmail: "new@example.com",
	}, map[string]string{"Authorization": "Bearer " + token})
	resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	changeToken := s.emailChangeToken("new@example.com")

	resp = s.postJSON("/api/v1/auth/confirm-email-change", dto.TokenRequest{Token: changeToken}, nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	user := decodeJSON[map[string]any](s, resp)
	resp.Body.Close()
	s.Equal("new@example.com", user["email"])

	// Login now requires the new address.
	resp = s.postJSON("/api/v1/auth/login", dto.LoginRequest{
		SiteID: siteID, Email: "new@example.com", Password: "Password123",
	}, nil)
	resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	resp = s.postJSON("/api/v1/auth/login", dto.LoginRequest{
		SiteID: siteID, Email: "old@example.com", Password: "Password123",
	}, nil)
	defer resp.Body.Close()
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestEmailChange_AddressTaken() {
	siteID := s.createSite("taken.example.com")
	s.registerAndVerify(siteID, "taken@example.com", "Password123")
	token := s.registerAndVerify(siteID, "user@example.com", "Password123")

	resp := s.postJSON("/api/v1/auth/request-email-change", dto.RequestEmailChangeRequest{
		NewEmail: "taken@example.com",
	}, map[string]string{"Authorization": "Bearer " + token})
	defer resp.Body.Close()
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}
