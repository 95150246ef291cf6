package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

const defaultServerAddr = "http://localhost:8799"

type CookieStatus struct {
	Name    string `json:"name"`
	Present bool   `json:"present"`
}

type SessionInfo struct {
	Username     string         `json:"username"`
	AuthSource   string         `json:"auth_source"`
	SessionValid bool           `json:"session_valid"`
	Cookies      []CookieStatus `json:"cookies"`
	ExpiresAt    string         `json:"expires_at,omitempty"`
	Warnings     []string       `json:"warnings"`
}

func main() {
	if len(os.Args) < 2 {
		log.Fatalf("Usage: %s <session-cookie> [server-addr]", os.Args[0])
	}

	sessionCookie := os.Args[1]
	serverAddr := defaultServerAddr
	if len(os.Args) > 2 {
		serverAddr = os.Args[2]
	}

	fmt.Println("🧪 Starting Credentials E2E Tests")
	fmt.Println("=================================")

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	info, err := testInfo(client, serverAddr, sessionCookie)
	if err != nil {
		log.Fatalf("❌ Info test failed: %v", err)
	}
	fmt.Printf("✅ Info test passed\n")
	fmt.Printf("   Username: %s\n", info.Username)
	fmt.Printf("   Auth source: %s\n", info.AuthSource)
	fmt.Printf("   Session valid: %t\n", info.SessionValid)
	for _, cookie := range info.Cookies {
		marker := "✅"
		if !cookie.Present {
			marker = "❌"
		}
		fmt.Printf("   %s %s\n", marker, cookie.Name)
	}
	if info.ExpiresAt != "" {
		fmt.Printf("   Expires at: %s\n", info.ExpiresAt)
	}
	for _, warning := range info.Warnings {
		fmt.Printf("   ⚠️  %s\n", warning)
	}
	fmt.Println()

	config, err := testConfigExport(client, serverAddr, sessionCookie)
	if err != nil {
		log.Fatalf("❌ Config export test failed: %v", err)
	}
	fmt.Printf("✅ Config export test passed\n\n")
	fmt.Println(config)
}

func testInfo(client *http.Client, serverAddr, sessionCookie string) (*SessionInfo, error) {
	fmt.Println("🔍 Test: Session Info")

	req, err := http.NewRequest("GET", serverAddr+"/api/access-request/credentials/info", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.AddCookie(&http.Cookie{Name: "jupyterhub-session-id", Value: sessionCookie})

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(body))
	}

	var info SessionInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &info, nil
}

func testConfigExport(client *http.Client, serverAddr, sessionCookie string) (string, error) {
	fmt.Println("📦 Test: Config Export")

	url := serverAddr + "/api/access-request/credentials/config?format=yaml"
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.AddCookie(&http.Cookie{Name: "jupyterhub-session-id", Value: sessionCookie})

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(body))
	}

	fmt.Printf("   Content-Type: %s\n", resp.Header.Get("Content-Type"))
	fmt.Printf("   Content-Disposition: %s\n", resp.Header.Get("Content-Disposition"))

	return string(body), nil
}
