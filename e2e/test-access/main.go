package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

const defaultServerAddr = "http://localhost:8799"

type GroupsResponse struct {
	AvailableGroups []string `json:"available_groups"`
	MyGroups        []string `json:"my_groups"`
}

type SubmitRequest struct {
	TenantName    string `json:"tenant_name"`
	Permission    string `json:"permission"`
	Justification string `json:"justification,omitempty"`
}

type SubmitResponse struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	TenantName string `json:"tenant_name"`
	Permission string `json:"permission"`
}

func main() {
	if len(os.Args) < 2 {
		log.Fatalf("Usage: %s <hub-token> [tenant-name] [server-addr]", os.Args[0])
	}

	token := os.Args[1]
	tenantName := ""
	if len(os.Args) > 2 {
		tenantName = os.Args[2]
	}
	serverAddr := defaultServerAddr
	if len(os.Args) > 3 {
		serverAddr = os.Args[3]
	}

	fmt.Println("🧪 Starting Access Request E2E Tests")
	fmt.Println("====================================")

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	groups, err := testGroups(client, serverAddr, token)
	if err != nil {
		log.Fatalf("❌ Groups test failed: %v", err)
	}
	fmt.Printf("✅ Groups test passed\n")
	fmt.Printf("   Available: %v\n", groups.AvailableGroups)
	fmt.Printf("   Member of: %v\n\n", groups.MyGroups)

	if tenantName == "" {
		fmt.Println("ℹ️  No tenant name given, skipping submit test.")
		return
	}

	outcome, err := testSubmit(client, serverAddr, token, tenantName)
	if err != nil {
		log.Fatalf("❌ Submit test failed: %v", err)
	}
	fmt.Printf("✅ Submit test passed\n")
	fmt.Printf("   Tenant: %s\n", outcome.TenantName)
	fmt.Printf("   Permission: %s\n", outcome.Permission)
	fmt.Printf("   Status: %s\n", outcome.Status)
	if outcome.Message != "" {
		fmt.Printf("   Message: %s\n", outcome.Message)
	}
}

func testGroups(client *http.Client, serverAddr, token string) (*GroupsResponse, error) {
	fmt.Println("📋 Test: Groups")

	req, err := http.NewRequest("GET", serverAddr+"/api/access-request/groups", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "token "+token)

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

	var groupsResp GroupsResponse
	if err := json.Unmarshal(body, &groupsResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &groupsResp, nil
}

func testSubmit(client *http.Client, serverAddr, token, tenantName string) (*SubmitResponse, error) {
	fmt.Println("📝 Test: Submit")

	reqBody := SubmitRequest{
		TenantName:    tenantName,
		Permission:    "read_only",
		Justification: "e2e smoke test",
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest("POST", serverAddr+"/api/access-request/submit", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "token "+token)
	req.Header.Set("Content-Type", "application/json")

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

	var submitResp SubmitResponse
	if err := json.Unmarshal(body, &submitResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &submitResp, nil
}
