package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	gh "github.com/google/go-github/v82/github"

	"github.com/ericfisherdev/repoanalyzer/internal/domain/model"
	"github.com/ericfisherdev/repoanalyzer/internal/domain/port/driven"
	"github.com/ericfisherdev/repoanalyzer/internal/gate"
)

// userQuery fetches the profile and repository window of a user in one round
// trip: the 20 most-starred owned non-fork repositories, their first 10
// languages, and the last 100 default-branch commits of each.
const userQuery = `query ($username: String!) {
	user(login: $username) {
		login
		name
		avatarUrl
		bio
		createdAt
		followers { totalCount }
		following { totalCount }
		repositories(
			first: 20,
			ownerAffiliations: OWNER,
			isFork: false,
			orderBy: { field: STARGAZERS, direction: DESC }
		) {
			nodes {
				name
				description
				stargazerCount
				forkCount
				openIssues: issues(states: OPEN) { totalCount }
				closedIssues: issues(states: CLOSED) { totalCount }
				watchers { totalCount }
				primaryLanguage { name }
				languages(first: 10) {
					edges {
						size
						node { name }
					}
				}
				owner { login }
				isFork
				updatedAt
				defaultBranchRef {
					target {
						... on Commit {
							history(first: 100) {
								edges {
									node {
										committedDate
										additions
										deletions
									}
								}
							}
						}
					}
				}
			}
		}
	}
}`

// notFoundErrorType is the GraphQL error type GitHub reports for an unknown login.
const notFoundErrorType = "NOT_FOUND"

// graphqlRequest is the JSON body sent to the GitHub GraphQL API.
type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphqlError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type totalCount struct {
	TotalCount int `json:"totalCount"`
}

type namedNode struct {
	Name string `json:"name"`
}

// repositoryNode mirrors a repository node of userQuery. Nullable objects are
// pointers so a null decodes to nil and its counts default to zero.
type repositoryNode struct {
	Name            string      `json:"name"`
	Description     string      `json:"description"`
	StargazerCount  int         `json:"stargazerCount"`
	ForkCount       int         `json:"forkCount"`
	OpenIssues      *totalCount `json:"openIssues"`
	ClosedIssues    *totalCount `json:"closedIssues"`
	Watchers        *totalCount `json:"watchers"`
	PrimaryLanguage *namedNode  `json:"primaryLanguage"`
	Languages       *struct {
		Edges []struct {
			Size int       `json:"size"`
			Node namedNode `json:"node"`
		} `json:"edges"`
	} `json:"languages"`
	Owner *struct {
		Login string `json:"login"`
	} `json:"owner"`
	IsFork           bool   `json:"isFork"`
	UpdatedAt        string `json:"updatedAt"`
	DefaultBranchRef *struct {
		Target *struct {
			History *struct {
				Edges []struct {
					Node struct {
						CommittedDate string `json:"committedDate"`
						Additions     int    `json:"additions"`
						Deletions     int    `json:"deletions"`
					} `json:"node"`
				} `json:"edges"`
			} `json:"history"`
		} `json:"target"`
	} `json:"defaultBranchRef"`
}

// userQueryResponse represents the expected shape of the userQuery response.
type userQueryResponse struct {
	Data struct {
		User *struct {
			Login        string      `json:"login"`
			Name         string      `json:"name"`
			AvatarURL    string      `json:"avatarUrl"`
			Bio          string      `json:"bio"`
			CreatedAt    string      `json:"createdAt"`
			Followers    *totalCount `json:"followers"`
			Following    *totalCount `json:"following"`
			Repositories *struct {
				Nodes []*repositoryNode `json:"nodes"`
			} `json:"repositories"`
		} `json:"user"`
	} `json:"data"`
	Errors []graphqlError `json:"errors"`
}

// FetchUser runs the consolidated profile and repositories query for username.
// A NOT_FOUND error with a null user is checked before any other GraphQL
// error, so an unknown login yields driven.ErrUserNotFound rather than a
// *driven.GraphQLError.
func (c *Client) FetchUser(ctx context.Context, username string) (*model.UserData, error) {
	var resp userQueryResponse
	if err := c.runQuery(ctx, userQuery, map[string]any{"username": username}, &resp); err != nil {
		return nil, fmt.Errorf("fetching user %s: %w", username, err)
	}

	user := resp.Data.User

	if len(resp.Errors) > 0 {
		first := resp.Errors[0]
		if user == nil && first.Type == notFoundErrorType {
			return nil, driven.ErrUserNotFound
		}
		c.logger.Error("graphql: response contains errors", "username", username, "errors", first.Message)
		msg := first.Message
		if msg == "" {
			msg = "Unknown error"
		}
		return nil, &driven.GraphQLError{Message: msg}
	}

	if user == nil {
		return nil, driven.ErrUserNotFound
	}

	data := &model.UserData{
		Profile: model.UserProfile{
			Login:     user.Login,
			Name:      user.Name,
			AvatarURL: user.AvatarURL,
			Bio:       user.Bio,
			CreatedAt: user.CreatedAt,
			Followers: count(user.Followers),
			Following: count(user.Following),
		},
		Repositories: []model.RepositorySnapshot{},
	}

	if user.Repositories != nil {
		for _, node := range user.Repositories.Nodes {
			if node == nil {
				continue
			}
			data.Repositories = append(data.Repositories, mapRepository(node))
		}
	}

	return data, nil
}

// runQuery posts a GraphQL query while holding the client's gate. 502 and 504
// responses are retried with exponential backoff; every other failure is
// returned immediately.
func (c *Client) runQuery(ctx context.Context, query string, variables map[string]any, out any) error {
	return gate.Do(ctx, c.gate, func() error {
		return c.postWithRetry(ctx, query, variables, out)
	})
}

func (c *Client) postWithRetry(ctx context.Context, query string, variables map[string]any, out any) error {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = c.retryBase
	exp.RandomizationFactor = 0
	exp.Multiplier = 2
	exp.MaxElapsedTime = 0
	exp.Reset()

	policy := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(c.maxAttempts-1)), ctx)

	operation := func() error {
		req, err := c.gh.NewRequest(http.MethodPost, "graphql", graphqlRequest{
			Query:     query,
			Variables: variables,
		})
		if err != nil {
			return backoff.Permanent(fmt.Errorf("creating graphql request: %w", err))
		}

		resp, err := c.gh.Do(ctx, req, out)
		c.logRateLimit(resp, "graphql")
		if err != nil {
			if isTransient(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		return nil
	}

	notify := func(err error, wait time.Duration) {
		c.logger.Warn("graphql: transient error, retrying", "error", err, "retry_in", wait)
	}

	return backoff.RetryNotify(operation, policy, notify)
}

// isTransient reports whether err is a gateway failure worth retrying.
func isTransient(err error) bool {
	var errResp *gh.ErrorResponse
	if !errors.As(err, &errResp) || errResp.Response == nil {
		return false
	}
	switch errResp.Response.StatusCode {
	case http.StatusBadGateway, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// mapRepository converts a GraphQL repository node to a domain snapshot.
func mapRepository(node *repositoryNode) model.RepositorySnapshot {
	snap := model.RepositorySnapshot{
		Name:         node.Name,
		Description:  node.Description,
		Stars:        node.StargazerCount,
		Forks:        node.ForkCount,
		OpenIssues:   count(node.OpenIssues),
		ClosedIssues: count(node.ClosedIssues),
		Watchers:     count(node.Watchers),
		IsFork:       node.IsFork,
		UpdatedAt:    parseTime(node.UpdatedAt),
		Languages:    []model.LanguageSize{},
	}

	if node.Owner != nil {
		snap.OwnerLogin = node.Owner.Login
	}
	if node.PrimaryLanguage != nil {
		snap.PrimaryLanguage = node.PrimaryLanguage.Name
	}
	if node.Languages != nil {
		for _, edge := range node.Languages.Edges {
			snap.Languages = append(snap.Languages, model.LanguageSize{
				Name:  edge.Node.Name,
				Bytes: edge.Size,
			})
		}
	}

	// A nil history means the default branch is missing or its target is not
	// a commit; the snapshot then carries no commit list at all.
	if ref := node.DefaultBranchRef; ref != nil && ref.Target != nil && ref.Target.History != nil {
		edges := ref.Target.History.Edges
		snap.Commits = make([]model.Commit, 0, len(edges))
		for _, edge := range edges {
			snap.Commits = append(snap.Commits, model.Commit{
				CommittedAt: parseTime(edge.Node.CommittedDate),
				Additions:   edge.Node.Additions,
				Deletions:   edge.Node.Deletions,
			})
		}
	}

	return snap
}

func count(tc *totalCount) int {
	if tc == nil {
		return 0
	}
	return tc.TotalCount
}

// parseTime parses a GitHub DateTime. Unparseable or empty values yield the
// zero time.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
