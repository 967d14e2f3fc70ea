package hcloud

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	errUtils "github.com/cloudposse/hcloud-projects/errors"
	log "github.com/cloudposse/hcloud-projects/pkg/logger"
	"github.com/cloudposse/hcloud-projects/pkg/perf"
)

const secretTokenField = "secret_token"

// IssueUserToken exchanges the OAuth access and id tokens of a console login for an API token carrying the
// account's full privileges. It needs no bearer token.
func (c *Client) IssueUserToken(ctx context.Context, accessToken, idToken string) (string, error) {
	defer perf.Track(nil, "hcloud.Client.IssueUserToken")()

	return c.issueToken(ctx, TokenRequest{
		Type:        TokenTypeUser,
		AccessToken: accessToken,
		IDToken:     idToken,
	})
}

// IssueProjectToken issues a project_user token scoped to a single project.
func (c *Client) IssueProjectToken(ctx context.Context, projectID uint64) (string, error) {
	defer perf.Track(nil, "hcloud.Client.IssueProjectToken")()

	return c.issueToken(ctx, TokenRequest{
		Type:    TokenTypeProjectUser,
		Project: strconv.FormatUint(projectID, 10),
	})
}

func (c *Client) issueToken(ctx context.Context, request TokenRequest) (string, error) {
	var body map[string]any
	if err := c.do(ctx, http.MethodPost, "/_tokens", request, &body); err != nil {
		return "", errUtils.Build(fmt.Errorf("%w: %s token: %w", errUtils.ErrTokenExtractionFailed, request.Type, err)).
			WithContext("token_type", request.Type).
			Err()
	}

	raw, ok := body[secretTokenField]
	if !ok {
		return "", errUtils.Build(fmt.Errorf("%w: response has no %s field", errUtils.ErrTokenExtractionFailed, secretTokenField)).
			WithContext("token_type", request.Type).
			Err()
	}

	token, ok := raw.(string)
	if !ok || token == "" {
		return "", errUtils.Build(fmt.Errorf("%w: %s is not a non-empty string", errUtils.ErrTokenExtractionFailed, secretTokenField)).
			WithContext("token_type", request.Type).
			WithContext("value_type", fmt.Sprintf("%T", raw)).
			Err()
	}

	log.Debug("Issued API token", "type", request.Type)
	return token, nil
}
