// Mock RiskShield scoring API for local development and e2e tests.
//
// Scores are derived deterministically from the ID number, so repeated
// requests for the same applicant return the same verdict. Failure injection
// is driven by environment variables:
//
//	FAILURES_BEFORE_SUCCESS=2 FAIL_STATUS=503  -> first 2 requests fail, then recover
//	FAIL_STATUS=429 FAILURES_BEFORE_SUCCESS=-1 -> every request fails
//
// This is enough to exercise the gateway's retry, backoff, and circuit
// breaker behavior end to end.
package main

import (
	"crypto/sha256"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"
)

const (
	defaultPort      = "8081"
	defaultAPIKey    = "riskshield-secret-key"
	defaultLatencyMs = "100"
)

type ScoreRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	IDNumber  string `json:"idNumber"`
}

type ScoreResponse struct {
	RiskScore int    `json:"riskScore"`
	RiskLevel string `json:"riskLevel"`
	CheckedAt string `json:"checkedAt"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

var (
	apiKey    = getEnv("API_KEY", defaultAPIKey)
	latencyMs = getEnvInt("LATENCY_MS", defaultLatencyMs)

	failStatus = getEnvInt("FAIL_STATUS", "503")
	failBudget = getEnvInt("FAILURES_BEFORE_SUCCESS", "0")

	mu       sync.Mutex
	requests int
)

func main() {
	port := getEnv("PORT", defaultPort)

	http.HandleFunc("/health", handleHealth)
	http.HandleFunc("/v1/score", handleScore)

	log.Printf("🛡️  Mock RiskShield API starting on port %s", port)
	log.Printf("📝 API Key: %s", apiKey)
	log.Printf("⏱️  Simulated latency: %dms", latencyMs)
	if failBudget != 0 {
		log.Printf("💥 Failure injection: %d requests fail with %d", failBudget, failStatus)
	}

	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Fatal(err)
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "riskshield",
		"version": "1.0.0",
	})
}

func handleScore(w http.ResponseWriter, r *http.Request) {
	// Simulate latency
	time.Sleep(time.Duration(latencyMs) * time.Millisecond)

	log.Printf("📥 Incoming request: %s %s correlation=%s", r.Method, r.URL.Path, r.Header.Get("X-Correlation-ID"))

	if r.Method != http.MethodPost {
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	authHeader := r.Header.Get("X-API-Key")
	if authHeader == "" {
		sendError(w, "Missing X-API-Key header", http.StatusUnauthorized)
		return
	}
	if authHeader != apiKey {
		sendError(w, "Invalid API key", http.StatusUnauthorized)
		return
	}

	if shouldFail() {
		sendError(w, "Injected failure", failStatus)
		log.Printf("💥 Injected failure with status %d", failStatus)
		return
	}

	var req ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.IDNumber == "" {
		sendError(w, "idNumber is required", http.StatusBadRequest)
		return
	}

	score := deriveScore(req.IDNumber)
	resp := ScoreResponse{
		RiskScore: score,
		RiskLevel: riskLevel(score),
		CheckedAt: time.Now().UTC().Format(time.RFC3339),
	}

	log.Printf("✅ Scored applicant: score=%d level=%s", resp.RiskScore, resp.RiskLevel)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// shouldFail consumes the failure budget. A negative budget fails forever,
// which is how e2e tests hold the circuit open.
func shouldFail() bool {
	mu.Lock()
	defer mu.Unlock()
	requests++
	if failBudget < 0 {
		return true
	}
	return requests <= failBudget
}

// deriveScore hashes the ID number into a stable 0-100 score.
func deriveScore(idNumber string) int {
	sum := sha256.Sum256([]byte(idNumber))
	return int(sum[0]) % 101
}

func riskLevel(score int) string {
	switch {
	case score < 30:
		return "LOW"
	case score < 60:
		return "MEDIUM"
	default:
		return "HIGH"
	}
}

func sendError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   http.StatusText(code),
		Message: message,
		Code:    code,
	})
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key, fallback string) int {
	value := getEnv(key, fallback)
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Fatalf("invalid %s: %v", key, err)
	}
	return n
}
