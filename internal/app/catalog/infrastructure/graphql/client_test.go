package graphql

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Execute_Success(t *testing.T) {
	// Arrange
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "query GetCategories { getCategories }", req.Query)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": {"getCategories": ["tablecloths", "napkins"]}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	// Act
	var out struct {
		GetCategories []string `json:"getCategories"`
	}
	err := client.Execute(context.Background(), "query GetCategories { getCategories }", nil, &out)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []string{"tablecloths", "napkins"}, out.GetCategories)
}

func TestClient_Execute_SendsVariables(t *testing.T) {
	// Arrange
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "linen-tablecloth", req.Variables["slug"])

		w.Write([]byte(`{"data": {"ok": true}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	// Act
	var out map[string]interface{}
	err := client.Execute(context.Background(), "query { ok }", map[string]interface{}{"slug": "linen-tablecloth"}, &out)

	// Assert
	require.NoError(t, err)
}

func TestClient_Execute_AuthTokenHeader(t *testing.T) {
	// Arrange
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Write([]byte(`{"data": {"ok": true}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.SetAuthToken("test-token")

	// Act
	var out map[string]interface{}
	err := client.Execute(context.Background(), "query { ok }", nil, &out)

	// Assert
	require.NoError(t, err)
}

func TestClient_Execute_GraphQLErrors(t *testing.T) {
	// Arrange
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"errors": [{"message": "product not found"}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	// Act
	var out map[string]interface{}
	err := client.Execute(context.Background(), "query { ok }", nil, &out)

	// Assert - ошибки из envelope поднимаются как ошибка вызова
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "graphql error: product not found")
}

func TestClient_Execute_MissingData(t *testing.T) {
	// Arrange
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": null}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	// Act
	var out map[string]interface{}
	err := client.Execute(context.Background(), "query { ok }", nil, &out)

	// Assert
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "graphql response missing data")
}

func TestClient_Execute_UnexpectedStatusCode(t *testing.T) {
	// Arrange
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	// Act
	var out map[string]interface{}
	err := client.Execute(context.Background(), "query { ok }", nil, &out)

	// Assert
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status code: 502")
}

func TestClient_Execute_ServerUnavailable(t *testing.T) {
	// Arrange - сервер сразу закрыт
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL)

	// Act
	var out map[string]interface{}
	err := client.Execute(context.Background(), "query { ok }", nil, &out)

	// Assert
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to send request")
}
