package hcloud

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/samber/lo"

	errUtils "github.com/cloudposse/hcloud-projects/errors"
	log "github.com/cloudposse/hcloud-projects/pkg/logger"
	"github.com/cloudposse/hcloud-projects/pkg/perf"
)

// ListProjectsPage fetches one page of the project listing.
func (c *Client) ListProjectsPage(ctx context.Context, page int) (*ProjectListResponse, error) {
	defer perf.Track(nil, "hcloud.Client.ListProjectsPage")()

	query := url.Values{
		"per_page": {strconv.Itoa(c.perPage)},
		"page":     {strconv.Itoa(page)},
	}

	var resp ProjectListResponse
	if err := c.do(ctx, http.MethodGet, "/_projects?"+query.Encode(), nil, &resp); err != nil {
		return nil, errUtils.Build(fmt.Errorf("%w: page %d: %w", errUtils.ErrPageFetchFailed, page, err)).
			WithContext("page", page).
			WithContext("per_page", c.perPage).
			Err()
	}

	return &resp, nil
}

// walkProjects visits every page in order until visit returns true or the last page has been visited.
// Any page failure aborts the walk.
func (c *Client) walkProjects(ctx context.Context, visit func(projects []Project) bool) error {
	page := 1
	for {
		resp, err := c.ListProjectsPage(ctx, page)
		if err != nil {
			return err
		}

		log.Trace("Fetched project page", "page", page, "projects", len(resp.Projects))

		if visit(resp.Projects) {
			return nil
		}

		next := resp.Meta.Pagination.NextPage
		if next == nil {
			return nil
		}
		if *next <= page {
			return errUtils.Build(fmt.Errorf("%w: page %d points back to page %d", errUtils.ErrPageFetchFailed, page, *next)).
				WithContext("page", page).
				WithContext("next_page", *next).
				Err()
		}
		page = *next
	}
}

// FindProjectID returns the ID of the first project, in listing order, whose name equals name exactly.
func (c *Client) FindProjectID(ctx context.Context, name string) (uint64, error) {
	defer perf.Track(nil, "hcloud.Client.FindProjectID")()

	var (
		found   Project
		matched bool
	)
	err := c.walkProjects(ctx, func(projects []Project) bool {
		found, matched = lo.Find(projects, func(p Project) bool {
			return p.Name == name
		})
		return matched
	})
	if err != nil {
		return 0, err
	}

	if !matched {
		return 0, errUtils.Build(fmt.Errorf("%w: %s", errUtils.ErrProjectNotFound, name)).
			WithHint("Project names are case-sensitive; run `hcloud-projects list` to see all projects").
			WithContext("project", name).
			Err()
	}

	log.Debug("Resolved project", "name", name, "id", found.ID)
	return found.ID, nil
}

// ListProjects returns every project across all pages.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	defer perf.Track(nil, "hcloud.Client.ListProjects")()

	var all []Project
	err := c.walkProjects(ctx, func(projects []Project) bool {
		all = append(all, projects...)
		return false
	})
	if err != nil {
		return nil, err
	}

	return all, nil
}

// CreateProject creates a project with the given name.
func (c *Client) CreateProject(ctx context.Context, name string) (*Project, error) {
	defer perf.Track(nil, "hcloud.Client.CreateProject")()

	if name == "" {
		return nil, fmt.Errorf("%w: project name", errUtils.ErrMissingRequiredValue)
	}

	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/_projects", CreateProjectRequest{Name: name}, &raw); err != nil {
		return nil, errUtils.Build(fmt.Errorf("failed to create project %s: %w", name, err)).
			WithContext("project", name).
			Err()
	}

	project, err := decodeProject(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: created project %s: %w", errUtils.ErrResponseDecode, name, err)
	}
	if project.ID == 0 {
		return nil, fmt.Errorf("%w: created project %s has no id", errUtils.ErrResponseDecode, name)
	}

	log.Debug("Created project", "name", project.Name, "id", project.ID)
	return project, nil
}

// decodeProject accepts both the {"project": {...}} envelope and a bare project object.
func decodeProject(raw json.RawMessage) (*Project, error) {
	var envelope struct {
		Project *Project `json:"project"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, err
	}
	if envelope.Project != nil {
		return envelope.Project, nil
	}

	var project Project
	if err := json.Unmarshal(raw, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// DeleteProject deletes the project with the given ID.
func (c *Client) DeleteProject(ctx context.Context, id uint64) error {
	defer perf.Track(nil, "hcloud.Client.DeleteProject")()

	path := "/_projects/" + strconv.FormatUint(id, 10)
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return errUtils.Build(fmt.Errorf("failed to delete project %d: %w", id, err)).
			WithContext("project_id", id).
			Err()
	}

	log.Debug("Deleted project", "id", id)
	return nil
}
