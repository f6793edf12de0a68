package server

import "fmt"

// displayServerInfo shows server configuration information
func (s *Server) displayServerInfo(addr string, tlsEnabled bool) {
	scheme := "http"
	if tlsEnabled {
		scheme = "https"
	}
	fmt.Printf("Starting server on %s://%s (TLS mode: %s)\n", scheme, addr, s.tlsModeLabel())

	s.displayEndpoints()
	s.displayAuthInfo()
	s.displayRequestLimitInfo()
	s.displayRateLimitInfo()
}

func (s *Server) tlsModeLabel() string {
	if s.TLSConfig.Mode == "" {
		return "disabled"
	}
	return s.TLSConfig.Mode
}

func (s *Server) displayEndpoints() {
	fmt.Println("Available endpoints:")
	fmt.Println("  GET    /health        - Health check")
	fmt.Println("  GET    /stats         - Server statistics")
	fmt.Println("  POST   /keywords      - Top keywords of a text")
	fmt.Println("  POST   /parse         - Structured resume")
	fmt.Println("  POST   /score         - ATS keyword score")
	fmt.Println("  POST   /dashboard     - Dashboard metrics")
	fmt.Println("  POST   /analyze       - Combined analysis report")
	fmt.Println("  POST   /cover-letter  - Cover letter draft")
	fmt.Println("  POST   /rewrite       - AI resume rewrite")
	fmt.Println("  POST   /interview     - AI interview questions")
	fmt.Println("  POST   /extract       - Text from an uploaded document")
	fmt.Println("  GET|PUT|DELETE /session, POST /session/demo - Saved analysis session")
}

func (s *Server) displayAuthInfo() {
	if len(s.APIKeys) > 0 {
		fmt.Printf("API authentication: ENABLED (%d keys configured)\n", len(s.APIKeys))
		fmt.Println("Include 'X-API-Key: <your-key>' header in requests to the POST and session endpoints")
	} else {
		fmt.Println("API authentication: DISABLED (no API keys configured)")
		fmt.Println("WARNING: API endpoints are publicly accessible!")
	}
}

func (s *Server) displayRequestLimitInfo() {
	if s.MaxRequestSize > 0 {
		fmt.Printf("Request size limit: %d bytes (%.1f MB)\n", s.MaxRequestSize, float64(s.MaxRequestSize)/(1024*1024))
	} else {
		fmt.Println("Request size limit: DISABLED")
	}
	if s.MaxUploadBytes > 0 {
		fmt.Printf("Upload size limit: %d bytes (%.1f MB)\n", s.MaxUploadBytes, float64(s.MaxUploadBytes)/(1024*1024))
	}
}

func (s *Server) displayRateLimitInfo() {
	if s.RateLimit != nil && s.RateLimit.Enabled {
		fmt.Printf("Rate limiting: ENABLED (%d requests per %s, burst: %d)\n",
			s.RateLimit.RequestsPerMin, s.RateLimit.Window, s.RateLimit.BurstCapacity)
		if s.RateLimit.ByAPIKey {
			fmt.Println("  - Per API key rate limiting enabled")
		}
		if s.RateLimit.ByIP {
			fmt.Println("  - Per IP address rate limiting enabled")
		}
	} else {
		fmt.Println("Rate limiting: DISABLED")
	}
}
