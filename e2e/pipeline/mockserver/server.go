// Package mockserver provides a mock Ollama server for testing.
// It implements the generate endpoint that report generation calls.
package mockserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
)

// GenerateRequest is the decoded body of one generate call.
type GenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// ServerConfig holds configuration for the mock server.
type ServerConfig struct {
	// Models the server knows. Requests for any other model get a 404,
	// matching how Ollama answers for models that were never pulled.
	Models []string
	// Response is the canned report text returned on success.
	Response string
}

// MockOllamaServer provides a mock Ollama server for testing.
type MockOllamaServer struct {
	mu sync.RWMutex

	// HTTP server
	httpServer *http.Server
	listener   net.Listener

	// Canned behavior
	models     map[string]bool
	response   string
	statusCode int
	errorBody  string
	delay      time.Duration

	// Request log
	requests []GenerateRequest
}

// NewMockOllamaServer creates a new mock Ollama server.
func NewMockOllamaServer(config ServerConfig) *MockOllamaServer {
	server := &MockOllamaServer{
		mu:         sync.RWMutex{},
		httpServer: nil,
		listener:   nil,
		models:     make(map[string]bool),
		response:   config.Response,
		requests:   make([]GenerateRequest, 0),
	}

	for _, model := range config.Models {
		server.models[model] = true
	}

	return server
}

// Start starts the mock server on the given address.
// If address is empty or ":0", a random available port is used.
func (s *MockOllamaServer) Start(address string) error {
	if address == "" {
		address = ":0"
	}

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}
	s.listener = listener

	router := mux.NewRouter()

	router.HandleFunc("/", s.handleRoot).Methods("GET")
	router.HandleFunc("/api/generate", s.handleGenerate).Methods("POST")

	s.httpServer = &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != http.ErrServerClosed {
			fmt.Printf("HTTP server error: %v\n", err)
		}
	}()

	return nil
}

// Stop stops the mock server.
func (s *MockOllamaServer) Stop() error {
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(ctx)
	}

	return nil
}

// Address returns the address the server is listening on.
func (s *MockOllamaServer) Address() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// BaseURL returns the base URL for the server.
func (s *MockOllamaServer) BaseURL() string {
	return "http://" + s.Address()
}

// SetResponse sets the canned report text returned on success.
func (s *MockOllamaServer) SetResponse(response string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.response = response
}

// SetFailure makes every generate call answer with the given HTTP status and
// error body until Reset is called.
func (s *MockOllamaServer) SetFailure(statusCode int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statusCode = statusCode
	s.errorBody = message
}

// SetDelay makes every generate call wait before answering.
func (s *MockOllamaServer) SetDelay(delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = delay
}

// Requests returns the generate calls received so far.
func (s *MockOllamaServer) Requests() []GenerateRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]GenerateRequest, len(s.requests))
	copy(result, s.requests)
	return result
}

// RequestCount returns how many generate calls the server has received.
func (s *MockOllamaServer) RequestCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.requests)
}

// Reset clears the request log and any injected failure.
func (s *MockOllamaServer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = make([]GenerateRequest, 0)
	s.statusCode = 0
	s.errorBody = ""
	s.delay = 0
}

// handleRoot handles GET /
func (s *MockOllamaServer) handleRoot(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "Ollama is running")
}

// handleGenerate handles POST /api/generate
func (s *MockOllamaServer) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid request body"})
		return
	}

	s.mu.Lock()
	s.requests = append(s.requests, req)
	knownModel := s.models[req.Model]
	response := s.response
	statusCode := s.statusCode
	errorBody := s.errorBody
	delay := s.delay
	s.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	w.Header().Set("Content-Type", "application/json")

	if !knownModel {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{
			"error": fmt.Sprintf("model %q not found, try pulling it first", req.Model),
		})
		return
	}

	if statusCode != 0 {
		w.WriteHeader(statusCode)
		json.NewEncoder(w).Encode(map[string]string{"error": errorBody})
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"model":    req.Model,
		"response": response,
		"done":     true,
	})
}
