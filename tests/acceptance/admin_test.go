package acceptance

import (
	"fmt"
	"net/http"

	"github.com/prperemyshlev/siteauth/internal/dto"
)

func (s *Suite) TestSites_RequireMasterKey() {
	resp := s.postJSON("/api/v1/sites", dto.SiteRequest{
		Name:          "Nope",
		Domain:        "nope.example.com",
		FrontendURL:   "https://nope.example.com",
		EmailFrom:     "noreply@nope.example.com",
		EmailFromName: "Nope",
	}, nil)
	resp.Body.Close()
	s.Equal(http.StatusUnauthorized, resp.StatusCode)

	resp = s.get("/api/v1/sites", map[string]string{"X-API-Key": "wrong-key"})
	defer resp.Body.Close()
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestSites_CRUD() {
	siteID := s.createSite("crud.example.com")

	resp := s.get(fmt.Sprintf("/api/v1/sites/%d", siteID), map[string]string{"X-API-Key": masterAPIKey})
	s.Equal(http.StatusOK, resp.StatusCode)
	site := decodeJSON[map[string]any](s, resp)
	resp.Body.Close()
	s.Equal("crud.example.com", site["domain"])

	resp = s.get("/api/v1/sites", map[string]string{"X-API-Key": masterAPIKey})
	s.Equal(http.StatusOK, resp.StatusCode)
	sites := decodeJSON[[]map[string]any](s, resp)
	resp.Body.Close()
	s.Len(sites, 1)
}

func (s *Suite) TestSites_DuplicateDomain() {
	s.createSite("unique.example.com")

	resp := s.postJSON("/api/v1/sites", dto.SiteRequest{
		Name:          "Copy",
		Domain:        "unique.example.com",
		FrontendURL:   "https://unique.example.com",
		EmailFrom:     "noreply@unique.example.com",
		EmailFromName: "Copy",
	}, map[string]string{"X-API-Key": masterAPIKey})
	defer resp.Body.Close()

	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestAdminRegister_WithoutPassword() {
	siteID := s.createSite("provisioned.example.com")

	resp := s.postJSON("/api/v1/admin/register", dto.AdminRegisterRequest{
		SiteID: siteID,
		Email:  "provisioned@example.com",
	}, map[string]string{"X-API-Key": masterAPIKey})
	resp.Body.Close()
	s.Equal(http.StatusCreated, resp.StatusCode)

	token := s.verificationToken("provisioned@example.com")

	// The status check tells the frontend a password form is needed.
	resp = s.postJSON("/api/v1/auth/check-verification-token", dto.TokenRequest{Token: token}, nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	status := decodeJSON[map[string]any](s, resp)
	resp.Body.Close()
	s.Equal(true, status["password_required"])

	// Verifying without a password is refused.
	resp = s.postJSON("/api/v1/auth/verify-email", dto.VerifyEmailRequest{Token: token}, nil)
	resp.Body.Close()
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	resp = s.postJSON("/api/v1/auth/verify-email", dto.VerifyEmailRequest{
		Token: token, Password: "ChosenPass123",
	}, nil)
	resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	resp = s.postJSON("/api/v1/auth/login", dto.LoginRequest{
		SiteID: siteID, Email: "provisioned@example.com", Password: "ChosenPass123",
	}, nil)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *Suite) TestAdminListAndDeleteUsers() {
	siteID := s.createSite("manage.example.com")
	s.registerAndVerify(siteID, "a@example.com", "Password123")
	s.registerAndVerify(siteID, "b@example.com", "Password123")

	resp := s.get(fmt.Sprintf("/api/v1/admin/sites/%d/users", siteID), map[string]string{"X-API-Key": masterAPIKey})
	s.Equal(http.StatusOK, resp.StatusCode)
	users := decodeJSON[[]map[string]any](s, resp)
	resp.Body.Close()
	s.Len(users, 2)

	userID := int64(users[0]["id"].(float64))

	req, err := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/api/v1/admin/users/%d", s.BaseURL, userID), nil)
	s.Require().NoError(err)
	req.Header.Set("X-API-Key", masterAPIKey)
	delResp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	delResp.Body.Close()
	s.Equal(http.StatusOK, delResp.StatusCode)

	resp = s.get(fmt.Sprintf("/api/v1/admin/sites/%d/users", siteID), map[string]string{"X-API-Key": masterAPIKey})
	users = decodeJSON[[]map[string]any](s, resp)
	resp.Body.Close()
	s.Len(users, 1)
}

func (s *Suite) TestAdminResendVerification() {
	siteID := s.createSite("resend.example.com")

	resp := s.postJSON("/api/v1/auth/register", dto.RegisterRequest{
		SiteID: siteID, Email: "resend@example.com", Password: "Password123",
	}, nil)
	resp.Body.Close()
	s.Equal(http.StatusCreated, resp.StatusCode)

	var userID int64
	err := s.Postgres.DB.QueryRow(`SELECT id FROM users WHERE email = $1`, "resend@example.com").Scan(&userID)
	s.Require().NoError(err)

	first := s.verificationToken("resend@example.com")

	resp = s.postJSON(fmt.Sprintf("/api/v1/admin/users/%d/resend-verification", userID), struct{}{}, map[string]string{"X-API-Key": masterAPIKey})
	resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	second := s.verificationToken("resend@example.com")
	s.NotEqual(first, second)

	// Resending for a verified user is refused.
	resp = s.postJSON("/api/v1/auth/verify-email", dto.VerifyEmailRequest{Token: second}, nil)
	resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	resp = s.postJSON(fmt.Sprintf("/api/v1/admin/users/%d/resend-verification", userID), struct{}{}, map[string]string{"X-API-Key": masterAPIKey})
	defer resp.Body.Close()
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}
