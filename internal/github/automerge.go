// MIT License
//
// Copyright (c) 2025 Mike Lane
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const defaultGraphQLURL = "https://api.github.com/graphql"

// enablePullRequestAutoMerge is not exposed through the REST API, so this one
// mutation goes through the GraphQL endpoint using the same authenticated
// HTTP client the REST calls use.
const enableAutoMergeMutation = `mutation($pullRequestId: ID!, $commitHeadline: String!, $commitBody: String!) {
  enablePullRequestAutoMerge(input: {
    pullRequestId: $pullRequestId,
    mergeMethod: SQUASH,
    commitHeadline: $commitHeadline,
    commitBody: $commitBody
  }) {
    clientMutationId
  }
}`

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphqlResponse struct {
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// EnableAutoMerge enables automatic squash-merge for a pull request.
// pullRequestID is the pull request's GraphQL node identifier; commitHeadline
// and commitBody become the squash commit's message.
func (c *githubClient) EnableAutoMerge(ctx context.Context, pullRequestID, commitHeadline, commitBody string) error {
	body, err := json.Marshal(graphqlRequest{
		Query: enableAutoMergeMutation,
		Variables: map[string]any{
			"pullRequestId":  pullRequestID,
			"commitHeadline": commitHeadline,
			"commitBody":     commitBody,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to encode auto-merge mutation: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.graphqlURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build auto-merge request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	httpClient := c.httpClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to enable auto-merge: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read auto-merge response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("auto-merge mutation returned status %d: %s", resp.StatusCode, respBody)
	}

	var gqlResp graphqlResponse
	if err := json.Unmarshal(respBody, &gqlResp); err != nil {
		return fmt.Errorf("failed to decode auto-merge response: %w", err)
	}
	if len(gqlResp.Errors) > 0 {
		return fmt.Errorf("auto-merge mutation failed: %s", gqlResp.Errors[0].Message)
	}

	return nil
}
