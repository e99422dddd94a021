package acceptance

import "net/http"

func (s *Suite) TestHealth() {
	resp := s.get("/health", nil)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	body := decodeJSON[map[string]any](s, resp)
	s.Equal("pass", body["status"])
}

func (s *Suite) TestMetrics() {
	resp := s.get("/metrics", nil)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)
}
