package hcloud

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errUtils "github.com/cloudposse/hcloud-projects/errors"
	"github.com/cloudposse/hcloud-projects/internal/testutils"
	"github.com/cloudposse/hcloud-projects/pkg/schema"
)

func TestIssueUserToken(t *testing.T) {
	api := testutils.NewCloudAPI(t)
	client := NewClient(&schema.Configuration{API: schema.API{URL: api.URL()}}, "")

	token, err := client.IssueUserToken(context.Background(), "access", "id")
	require.NoError(t, err)
	assert.Equal(t, api.UserToken, token)

	requests := api.TokenRequests()
	require.Len(t, requests, 1)
	assert.Equal(t, map[string]any{"type": "user", "access_token": "access", "id_token": "id"}, requests[0])
}

func TestIssueUserToken_BadResponses(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		response string
	}{
		{name: "missing field", response: `{"other":"x"}`},
		{name: "not a string", response: `{"secret_token":42}`},
		{name: "null", response: `{"secret_token":null}`},
		{name: "empty", response: `{"secret_token":""}`},
		{name: "invalid json", response: `{"secret_token":`},
		{name: "error status", status: http.StatusForbidden, response: `{"error":{"code":"forbidden","message":"nope"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := testutils.NewCloudAPI(t)
			api.TokenStatus = tt.status
			api.TokenResponse = tt.response
			client := NewClient(&schema.Configuration{API: schema.API{URL: api.URL()}}, "")

			token, err := client.IssueUserToken(context.Background(), "access", "id")
			require.Error(t, err)
			assert.ErrorIs(t, err, errUtils.ErrTokenExtractionFailed)
			assert.Empty(t, token)
		})
	}
}

func TestIssueProjectToken(t *testing.T) {
	api := testutils.NewCloudAPI(t)
	client := newTestClient(t, api, 25)

	token, err := client.IssueProjectToken(context.Background(), 424242)
	require.NoError(t, err)
	assert.Equal(t, api.ProjectTokenPrefix+"424242", token)

	requests := api.TokenRequests()
	require.Len(t, requests, 1)
	assert.Equal(t, map[string]any{"type": "project_user", "project": "424242"}, requests[0])
}
