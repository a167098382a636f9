// Package gateway provides the gate's connections to the outside world:
// the isolated tool environment, the lint tool process, and the GitHub API
// (REST and GraphQL) used to publish results.
package gateway

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
)

// maxStatusDescription is GitHub's limit for commit status descriptions.
const maxStatusDescription = 140

// CommitStatus is the status published for a commit.
type CommitStatus struct {
	State       string // "success" or "failure"
	Context     string
	Description string
	TargetURL   string
}

// Reporter defines the behavior of a gateway for publishing gate results to GitHub.
type Reporter interface {
	CreateStatus(ctx context.Context, owner, repo, sha string, status CommitStatus) error
	CommentOnPR(ctx context.Context, owner, repo string, number int, body string) error
}

// GitHubReporter is the concrete implementation of the Reporter interface.
type GitHubReporter struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	logger        *log.Logger
}

// pullRequestIDQuery resolves a pull request number to its node ID.
type pullRequestIDQuery struct {
	Repository struct {
		PullRequest struct {
			ID githubv4.ID
		} `graphql:"pullRequest(number: $number)"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// addCommentMutation posts a comment on an issue or pull request.
type addCommentMutation struct {
	AddComment struct {
		CommentEdge struct {
			Node struct {
				ID githubv4.ID
			}
		}
	} `graphql:"addComment(input: $input)"`
}

// NewGitHubReporter is a constructor that creates a new instance of GitHubReporter.
func NewGitHubReporter(token string, logger *log.Logger) (Reporter, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(5*time.Minute, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
		Timeout: 30 * time.Second,
	}
	return &GitHubReporter{
		restClient:    github.NewClient(httpClient),
		graphqlClient: githubv4.NewClient(httpClient),
		logger:        logger,
	}, nil
}

// CreateStatus publishes a commit status using the REST API.
func (g *GitHubReporter) CreateStatus(ctx context.Context, owner, repo, sha string, status CommitStatus) error {
	g.logger.Printf("Publishing commit status %q (%s) for %s/%s@%s...", status.Context, status.State, owner, repo, sha)
	description := truncateRunes(status.Description, maxStatusDescription)
	repoStatus := &github.RepoStatus{
		State:       github.String(status.State),
		Context:     github.String(status.Context),
		Description: github.String(description),
	}
	if status.TargetURL != "" {
		repoStatus.TargetURL = github.String(status.TargetURL)
	}
	if _, _, err := g.restClient.Repositories.CreateStatus(ctx, owner, repo, sha, repoStatus); err != nil {
		return fmt.Errorf("failed to create commit status with REST API: %w", err)
	}
	g.logger.Println("Completed publishing commit status.")
	return nil
}

// truncateRunes shortens s to at most limit characters, marking the cut with "...".
func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-3]) + "..."
}

// CommentOnPR posts body as a comment on pull request number using the GraphQL API.
func (g *GitHubReporter) CommentOnPR(ctx context.Context, owner, repo string, number int, body string) error {
	g.logger.Printf("Commenting on %s/%s#%d...", owner, repo, number)
	var q pullRequestIDQuery
	variables := map[string]interface{}{
		"owner":  githubv4.String(owner),
		"name":   githubv4.String(repo),
		"number": githubv4.Int(number),
	}
	if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
		return fmt.Errorf("failed to execute GraphQL query for pull request: %w", err)
	}
	if q.Repository.PullRequest.ID == nil || q.Repository.PullRequest.ID == "" {
		return fmt.Errorf("pull request %s/%s#%d not found", owner, repo, number)
	}

	var m addCommentMutation
	input := githubv4.AddCommentInput{
		SubjectID: q.Repository.PullRequest.ID,
		Body:      githubv4.String(body),
	}
	if err := g.graphqlClient.Mutate(ctx, &m, input, nil); err != nil {
		return fmt.Errorf("failed to execute GraphQL mutation addComment: %w", err)
	}
	g.logger.Printf("Completed commenting (comment %v).", m.AddComment.CommentEdge.Node.ID)
	return nil
}
