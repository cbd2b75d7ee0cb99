package api

import (
	"context"

	"github.com/ostrander/mtm/internal/models"
	"github.com/ostrander/mtm/internal/session"
)

const superAdminLoginMutation = `
mutation SuperAdminLogin($password: String!) {
  superAdminLogin(password: $password) {
    token
    role
  }
}`

const organizationLoginMutation = `
mutation OrgLogin($slug: String!, $password: String!) {
  organizationLogin(slug: $slug, password: $password) {
    token
    role
  }
}`

const listOrganizationsQuery = `
query ListOrgs {
  listOrganizations {
    id
    name
    slug
    contact_email
    created_at
  }
}`

const createOrganizationMutation = `
mutation CreateOrg($name: String!, $slug: String!, $contact_email: String, $password: String!) {
  createOrganization(name: $name, slug: $slug, contact_email: $contact_email, password: $password) {
    id
    name
    slug
  }
}`

const listProjectsQuery = `
query ListProjects {
  listProjects {
    id
    name
    description
    status
    taskCount
    completedTasks
    tasks {
      id
      title
      description
      status
      assignee_email
      due_date
      created_at
      comments {
        id
        content
        author_email
        timestamp
      }
    }
  }
}`

const createOrUpdateProjectMutation = `
mutation CreateProject($input: ProjectInput!) {
  createOrUpdateProject(input: $input) {
    id
    name
    description
    status
    taskCount
    completedTasks
  }
}`

const createOrUpdateTaskMutation = `
mutation CreateOrUpdateTask($input: TaskInput!) {
  createOrUpdateTask(input: $input) {
    id
    project_id
    title
    description
    status
    assignee_email
    due_date
    created_at
  }
}`

const addCommentMutation = `
mutation AddComment($taskId: ID!, $content: String!, $author_email: String) {
  addComment(taskId: $taskId, content: $content, author_email: $author_email) {
    id
    content
    author_email
    timestamp
  }
}`

// OrganizationInput carries the fields for creating a tenant. The
// contact email is optional; everything else is required server-side.
type OrganizationInput struct {
	Name         string
	Slug         string
	ContactEmail string
	Password     string
}

// ProjectInput is the upsert payload for a project. A nil ID creates; a
// set ID updates.
type ProjectInput struct {
	ID          *string              `json:"id,omitempty"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Status      models.ProjectStatus `json:"status"`
}

// TaskInput is the upsert payload for a task. A nil ID creates; a set
// ID updates. Nil fields are omitted from the wire payload, so an
// update carrying only Status (or only AssigneeEmail) leaves every
// other field untouched on the server.
type TaskInput struct {
	ID            *string `json:"id,omitempty"`
	ProjectID     *string `json:"project_id,omitempty"`
	Title         *string `json:"title,omitempty"`
	Description   *string `json:"description,omitempty"`
	Status        *string `json:"status,omitempty"`
	AssigneeEmail *string `json:"assignee_email,omitempty"`
	DueDate       *string `json:"due_date,omitempty"`
}

type loginResult struct {
	Token string      `json:"token"`
	Role  models.Role `json:"role"`
}

// SuperAdminLogin exchanges the super administrator password for a
// session. Unauthenticated.
func (c *Client) SuperAdminLogin(ctx context.Context, password string) (session.Session, error) {
	var out struct {
		Result loginResult `json:"superAdminLogin"`
	}
	variables := map[string]any{"password": password}
	if err := c.do(ctx, "superAdminLogin", superAdminLoginMutation, variables, "", &out); err != nil {
		return session.Session{}, err
	}
	return session.New(out.Result.Token, out.Result.Role), nil
}

// OrganizationLogin exchanges a tenant slug and password for a session.
// Unauthenticated.
func (c *Client) OrganizationLogin(ctx context.Context, slug, password string) (session.Session, error) {
	var out struct {
		Result loginResult `json:"organizationLogin"`
	}
	variables := map[string]any{"slug": slug, "password": password}
	if err := c.do(ctx, "organizationLogin", organizationLoginMutation, variables, "", &out); err != nil {
		return session.Session{}, err
	}
	return session.New(out.Result.Token, out.Result.Role), nil
}

// ListOrganizations returns all tenants. Super administrator only.
func (c *Client) ListOrganizations(ctx context.Context, token string) ([]models.Organization, error) {
	var out struct {
		Organizations []models.Organization `json:"listOrganizations"`
	}
	if err := c.do(ctx, "listOrganizations", listOrganizationsQuery, nil, token, &out); err != nil {
		return nil, err
	}
	return out.Organizations, nil
}

// CreateOrganization registers a new tenant. Super administrator only.
func (c *Client) CreateOrganization(ctx context.Context, token string, input OrganizationInput) (models.Organization, error) {
	var out struct {
		Organization models.Organization `json:"createOrganization"`
	}
	variables := map[string]any{
		"name":          input.Name,
		"slug":          input.Slug,
		"contact_email": input.ContactEmail,
		"password":      input.Password,
	}
	if err := c.do(ctx, "createOrganization", createOrganizationMutation, variables, token, &out); err != nil {
		return models.Organization{}, err
	}
	return out.Organization, nil
}

// ListProjects returns the authenticated tenant's projects with their
// tasks and comments embedded. This is the only read the task console
// has; a project's task list is derived from it.
func (c *Client) ListProjects(ctx context.Context, token string) ([]models.Project, error) {
	var out struct {
		Projects []models.Project `json:"listProjects"`
	}
	if err := c.do(ctx, "listProjects", listProjectsQuery, nil, token, &out); err != nil {
		return nil, err
	}
	return out.Projects, nil
}

// CreateOrUpdateProject upserts a project by optional id.
func (c *Client) CreateOrUpdateProject(ctx context.Context, token string, input ProjectInput) (models.Project, error) {
	var out struct {
		Project models.Project `json:"createOrUpdateProject"`
	}
	variables := map[string]any{"input": input}
	if err := c.do(ctx, "createOrUpdateProject", createOrUpdateProjectMutation, variables, token, &out); err != nil {
		return models.Project{}, err
	}
	return out.Project, nil
}

// CreateOrUpdateTask upserts a task by optional id. Partial updates are
// legal: nil input fields are not transmitted and the server preserves
// their stored values.
func (c *Client) CreateOrUpdateTask(ctx context.Context, token string, input TaskInput) (models.Task, error) {
	var out struct {
		Task models.Task `json:"createOrUpdateTask"`
	}
	variables := map[string]any{"input": input}
	if err := c.do(ctx, "createOrUpdateTask", createOrUpdateTaskMutation, variables, token, &out); err != nil {
		return models.Task{}, err
	}
	return out.Task, nil
}

// AddComment appends a comment to a task. The author email is always
// sent null: this client never collects author identity.
func (c *Client) AddComment(ctx context.Context, token, taskID, content string) (models.Comment, error) {
	var out struct {
		Comment models.Comment `json:"addComment"`
	}
	variables := map[string]any{
		"taskId":       taskID,
		"content":      content,
		"author_email": nil,
	}
	if err := c.do(ctx, "addComment", addCommentMutation, variables, token, &out); err != nil {
		return models.Comment{}, err
	}
	return out.Comment, nil
}
