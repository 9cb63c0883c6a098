package mockserver

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"
)

type MockServerTestSuite struct {
	suite.Suite
	server *MockOllamaServer
}

func TestMockServerSuite(t *testing.T) {
	suite.Run(t, new(MockServerTestSuite))
}

func (suite *MockServerTestSuite) SetupTest() {
	config := ServerConfig{
		Models:   []string{"llama3.1:8b"},
		Response: "The close trended upward over the period.",
	}

	suite.server = NewMockOllamaServer(config)
	err := suite.server.Start(":0")
	suite.Require().NoError(err)
}

func (suite *MockServerTestSuite) TearDownTest() {
	if suite.server != nil {
		suite.server.Stop()
	}
}

func (suite *MockServerTestSuite) generate(model, prompt string) *http.Response {
	body, err := json.Marshal(GenerateRequest{Model: model, Prompt: prompt, Stream: false})
	suite.Require().NoError(err)

	resp, err := http.Post(suite.server.BaseURL()+"/api/generate", "application/json", bytes.NewReader(body))
	suite.Require().NoError(err)

	return resp
}

// Test Server Lifecycle

func (suite *MockServerTestSuite) TestServerStartAndStop() {
	suite.NotEmpty(suite.server.Address())
	suite.Contains(suite.server.BaseURL(), "http://")
}

func (suite *MockServerTestSuite) TestRootEndpoint() {
	resp, err := http.Get(suite.server.BaseURL() + "/")
	suite.Require().NoError(err)
	defer resp.Body.Close()

	suite.Equal(http.StatusOK, resp.StatusCode)

	content, err := io.ReadAll(resp.Body)
	suite.NoError(err)
	suite.Equal("Ollama is running", string(content))
}

// Test Generate Endpoint

func (suite *MockServerTestSuite) TestGenerateEndpoint() {
	resp := suite.generate("llama3.1:8b", "Describe the price data.")
	defer resp.Body.Close()

	suite.Equal(http.StatusOK, resp.StatusCode)

	var parsed map[string]interface{}
	suite.NoError(json.NewDecoder(resp.Body).Decode(&parsed))
	suite.Equal("The close trended upward over the period.", parsed["response"])
	suite.Equal(true, parsed["done"])

	requests := suite.server.Requests()
	suite.Require().Len(requests, 1)
	suite.Equal("llama3.1:8b", requests[0].Model)
	suite.Equal("Describe the price data.", requests[0].Prompt)
	suite.False(requests[0].Stream)
}

func (suite *MockServerTestSuite) TestUnknownModel() {
	resp := suite.generate("missing:latest", "prompt")
	defer resp.Body.Close()

	suite.Equal(http.StatusNotFound, resp.StatusCode)

	var parsed map[string]string
	suite.NoError(json.NewDecoder(resp.Body).Decode(&parsed))
	suite.Contains(parsed["error"], "not found")
}

func (suite *MockServerTestSuite) TestFailureInjection() {
	suite.server.SetFailure(http.StatusInternalServerError, "model exploded")

	resp := suite.generate("llama3.1:8b", "prompt")
	defer resp.Body.Close()

	suite.Equal(http.StatusInternalServerError, resp.StatusCode)

	var parsed map[string]string
	suite.NoError(json.NewDecoder(resp.Body).Decode(&parsed))
	suite.Equal("model exploded", parsed["error"])
}

func (suite *MockServerTestSuite) TestReset() {
	suite.server.SetFailure(http.StatusInternalServerError, "model exploded")

	resp := suite.generate("llama3.1:8b", "prompt")
	resp.Body.Close()
	suite.Equal(1, suite.server.RequestCount())

	suite.server.Reset()
	suite.Equal(0, suite.server.RequestCount())

	resp = suite.generate("llama3.1:8b", "prompt")
	defer resp.Body.Close()
	suite.Equal(http.StatusOK, resp.StatusCode)
}
