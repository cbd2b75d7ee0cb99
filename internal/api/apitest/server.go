// Package apitest provides an in-memory fake of the remote project
// manager service for tests.
//
// The fake speaks the same GraphQL-over-HTTP exchange as the real
// server: one POST endpoint, bearer-token auth, {data}/{errors}
// responses. State lives in process-local maps and is gone when the
// server closes, which keeps every test hermetic.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ostrander/mtm/internal/models"
)

// AdminPassword is the super administrator password the fake accepts.
const AdminPassword = "admin123"

type principal struct {
	role  models.Role
	orgID string
}

type orgRecord struct {
	models.Organization
	password string
}

type taskRecord struct {
	id            string
	projectID     string
	title         string
	description   string
	status        string
	assigneeEmail string
	dueDate       string
	createdAt     string
	comments      []models.Comment
}

type projectRecord struct {
	id          string
	orgID       string
	name        string
	description string
	status      string
	tasks       []*taskRecord
}

// Server is a fake project manager service.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	requests int
	orgs     []*orgRecord
	projects []*projectRecord
	tokens   map[string]principal
}

// NewServer starts a fake service. It is closed automatically when the
// test finishes.
func NewServer(t interface {
	Helper()
	Cleanup(func())
}) *Server {
	t.Helper()
	s := &Server{tokens: make(map[string]principal)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// Requests returns how many operations have reached the server. Guard
// tests use it to prove a rejected submission never left the client.
func (s *Server) Requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

// SeedOrganization registers a tenant directly, bypassing the API.
func (s *Server) SeedOrganization(name, slug, password string) models.Organization {
	s.mu.Lock()
	defer s.mu.Unlock()
	record := &orgRecord{
		Organization: models.Organization{
			ID:        uuid.NewString(),
			Name:      name,
			Slug:      slug,
			CreatedAt: time.Now().UTC().Format(time.RFC3339),
		},
		password: password,
	}
	s.orgs = append(s.orgs, record)
	return record.Organization
}

// SeedProject creates a project for a tenant directly.
func (s *Server) SeedProject(orgID, name, description, status string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	record := &projectRecord{
		id:          uuid.NewString(),
		orgID:       orgID,
		name:        name,
		description: description,
		status:      status,
	}
	s.projects = append(s.projects, record)
	return record.id
}

// SeedTask creates a task on a project directly.
func (s *Server) SeedTask(projectID string, task models.Task) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	record := &taskRecord{
		id:            uuid.NewString(),
		projectID:     projectID,
		title:         task.Title,
		description:   task.Description,
		status:        task.Status,
		assigneeEmail: task.AssigneeEmail,
		dueDate:       task.DueDate,
		createdAt:     time.Now().UTC().Format(time.RFC3339),
	}
	for _, project := range s.projects {
		if project.id == projectID {
			project.tasks = append(project.tasks, record)
			break
		}
	}
	return record.id
}

type request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests++

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	caller, authenticated := s.tokens[token]

	var data any
	var err error
	switch {
	case strings.Contains(req.Query, "superAdminLogin"):
		data, err = s.superAdminLogin(req.Variables)
	case strings.Contains(req.Query, "organizationLogin"):
		data, err = s.organizationLogin(req.Variables)
	case strings.Contains(req.Query, "listOrganizations"):
		data, err = s.listOrganizations(caller, authenticated)
	case strings.Contains(req.Query, "createOrganization"):
		data, err = s.createOrganization(caller, authenticated, req.Variables)
	case strings.Contains(req.Query, "listProjects"):
		data, err = s.listProjects(caller, authenticated)
	case strings.Contains(req.Query, "createOrUpdateProject"):
		data, err = s.createOrUpdateProject(caller, authenticated, req.Variables)
	case strings.Contains(req.Query, "createOrUpdateTask"):
		data, err = s.createOrUpdateTask(caller, authenticated, req.Variables)
	case strings.Contains(req.Query, "addComment"):
		data, err = s.addComment(caller, authenticated, req.Variables)
	default:
		err = fmt.Errorf("unknown operation")
	}

	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		json.NewEncoder(w).Encode(map[string]any{
			"errors": []map[string]string{{"message": err.Error()}},
		})
		return
	}
	json.NewEncoder(w).Encode(map[string]any{"data": data})
}

func (s *Server) issueToken(p principal) string {
	token := uuid.NewString()
	s.tokens[token] = p
	return token
}

func (s *Server) superAdminLogin(vars map[string]any) (any, error) {
	password, _ := vars["password"].(string)
	if password != AdminPassword {
		return nil, fmt.Errorf("invalid super admin password")
	}
	token := s.issueToken(principal{role: models.RoleSuperAdmin})
	return map[string]any{"superAdminLogin": map[string]any{
		"token": token,
		"role":  string(models.RoleSuperAdmin),
	}}, nil
}

func (s *Server) organizationLogin(vars map[string]any) (any, error) {
	slug, _ := vars["slug"].(string)
	password, _ := vars["password"].(string)
	for _, org := range s.orgs {
		if org.Slug == slug {
			if org.password != password {
				return nil, fmt.Errorf("invalid credentials")
			}
			token := s.issueToken(principal{role: models.RoleOrganization, orgID: org.ID})
			return map[string]any{"organizationLogin": map[string]any{
				"token": token,
				"role":  string(models.RoleOrganization),
			}}, nil
		}
	}
	return nil, fmt.Errorf("invalid credentials")
}

func (s *Server) listOrganizations(caller principal, authenticated bool) (any, error) {
	if !authenticated || caller.role != models.RoleSuperAdmin {
		return nil, fmt.Errorf("not authorized")
	}
	orgs := make([]models.Organization, 0, len(s.orgs))
	for _, org := range s.orgs {
		orgs = append(orgs, org.Organization)
	}
	return map[string]any{"listOrganizations": orgs}, nil
}

func (s *Server) createOrganization(caller principal, authenticated bool, vars map[string]any) (any, error) {
	if !authenticated || caller.role != models.RoleSuperAdmin {
		return nil, fmt.Errorf("not authorized")
	}
	name, _ := vars["name"].(string)
	slug, _ := vars["slug"].(string)
	contactEmail, _ := vars["contact_email"].(string)
	password, _ := vars["password"].(string)
	if name == "" || slug == "" || password == "" {
		return nil, fmt.Errorf("name, slug and password are required")
	}
	for _, org := range s.orgs {
		if org.Slug == slug {
			return nil, fmt.Errorf("slug %q already exists", slug)
		}
	}
	record := &orgRecord{
		Organization: models.Organization{
			ID:           uuid.NewString(),
			Name:         name,
			Slug:         slug,
			ContactEmail: contactEmail,
			CreatedAt:    time.Now().UTC().Format(time.RFC3339),
		},
		password: password,
	}
	s.orgs = append(s.orgs, record)
	return map[string]any{"createOrganization": map[string]any{
		"id":   record.ID,
		"name": record.Name,
		"slug": record.Slug,
	}}, nil
}

func (s *Server) renderProject(project *projectRecord) models.Project {
	tasks := make([]models.Task, 0, len(project.tasks))
	completed := 0
	for _, task := range project.tasks {
		if task.status == string(models.TaskDone) {
			completed++
		}
		comments := make([]models.Comment, len(task.comments))
		copy(comments, task.comments)
		tasks = append(tasks, models.Task{
			ID:            task.id,
			ProjectID:     task.projectID,
			Title:         task.title,
			Description:   task.description,
			Status:        task.status,
			AssigneeEmail: task.assigneeEmail,
			DueDate:       task.dueDate,
			CreatedAt:     task.createdAt,
			Comments:      comments,
		})
	}
	return models.Project{
		ID:             project.id,
		Name:           project.name,
		Description:    project.description,
		Status:         models.ProjectStatus(project.status),
		TaskCount:      len(project.tasks),
		CompletedTasks: completed,
		Tasks:          tasks,
	}
}

func (s *Server) listProjects(caller principal, authenticated bool) (any, error) {
	if !authenticated || caller.role != models.RoleOrganization {
		return nil, fmt.Errorf("not authorized")
	}
	projects := make([]models.Project, 0)
	for _, project := range s.projects {
		if project.orgID == caller.orgID {
			projects = append(projects, s.renderProject(project))
		}
	}
	return map[string]any{"listProjects": projects}, nil
}

func (s *Server) createOrUpdateProject(caller principal, authenticated bool, vars map[string]any) (any, error) {
	if !authenticated || caller.role != models.RoleOrganization {
		return nil, fmt.Errorf("not authorized")
	}
	input, _ := vars["input"].(map[string]any)
	if input == nil {
		return nil, fmt.Errorf("input is required")
	}

	var record *projectRecord
	if id, ok := input["id"].(string); ok && id != "" {
		for _, project := range s.projects {
			if project.id == id && project.orgID == caller.orgID {
				record = project
				break
			}
		}
		if record == nil {
			return nil, fmt.Errorf("project not found")
		}
	} else {
		record = &projectRecord{id: uuid.NewString(), orgID: caller.orgID, status: string(models.ProjectActive)}
		s.projects = append(s.projects, record)
	}

	if name, ok := input["name"].(string); ok {
		if name == "" {
			return nil, fmt.Errorf("name is required")
		}
		record.name = name
	}
	if description, ok := input["description"].(string); ok {
		record.description = description
	}
	if status, ok := input["status"].(string); ok && status != "" {
		record.status = status
	}

	rendered := s.renderProject(record)
	return map[string]any{"createOrUpdateProject": rendered}, nil
}

func (s *Server) createOrUpdateTask(caller principal, authenticated bool, vars map[string]any) (any, error) {
	if !authenticated || caller.role != models.RoleOrganization {
		return nil, fmt.Errorf("not authorized")
	}
	input, _ := vars["input"].(map[string]any)
	if input == nil {
		return nil, fmt.Errorf("input is required")
	}

	var record *taskRecord
	if id, ok := input["id"].(string); ok && id != "" {
		for _, project := range s.projects {
			if project.orgID != caller.orgID {
				continue
			}
			for _, task := range project.tasks {
				if task.id == id {
					record = task
				}
			}
		}
		if record == nil {
			return nil, fmt.Errorf("task not found")
		}
	} else {
		projectID, _ := input["project_id"].(string)
		var parent *projectRecord
		for _, project := range s.projects {
			if project.id == projectID && project.orgID == caller.orgID {
				parent = project
				break
			}
		}
		if parent == nil {
			return nil, fmt.Errorf("project not found")
		}
		record = &taskRecord{
			id:        uuid.NewString(),
			projectID: parent.id,
			status:    string(models.TaskPending),
			createdAt: time.Now().UTC().Format(time.RFC3339),
		}
		parent.tasks = append(parent.tasks, record)
	}

	// Partial update semantics: only fields present in the input are
	// applied; absent fields keep their stored values.
	if title, ok := input["title"].(string); ok {
		if title == "" {
			return nil, fmt.Errorf("title is required")
		}
		record.title = title
	}
	if description, ok := input["description"].(string); ok {
		record.description = description
	}
	if status, ok := input["status"].(string); ok {
		if !models.ValidTaskStatus(status) {
			return nil, fmt.Errorf("invalid status %q", status)
		}
		record.status = status
	}
	if assignee, ok := input["assignee_email"].(string); ok {
		record.assigneeEmail = assignee
	}
	if dueDate, ok := input["due_date"].(string); ok {
		record.dueDate = dueDate
	}

	return map[string]any{"createOrUpdateTask": map[string]any{
		"id":             record.id,
		"project_id":     record.projectID,
		"title":          record.title,
		"description":    record.description,
		"status":         record.status,
		"assignee_email": record.assigneeEmail,
		"due_date":       record.dueDate,
		"created_at":     record.createdAt,
	}}, nil
}

func (s *Server) addComment(caller principal, authenticated bool, vars map[string]any) (any, error) {
	if !authenticated || caller.role != models.RoleOrganization {
		return nil, fmt.Errorf("not authorized")
	}
	taskID, _ := vars["taskId"].(string)
	content, _ := vars["content"].(string)
	if content == "" {
		return nil, fmt.Errorf("content is required")
	}
	authorEmail, _ := vars["author_email"].(string)

	for _, project := range s.projects {
		if project.orgID != caller.orgID {
			continue
		}
		for _, task := range project.tasks {
			if task.id == taskID {
				comment := models.Comment{
					ID:          uuid.NewString(),
					Content:     content,
					AuthorEmail: authorEmail,
					Timestamp:   time.Now().UTC().Format(time.RFC3339),
				}
				task.comments = append(task.comments, comment)
				return map[string]any{"addComment": comment}, nil
			}
		}
	}
	return nil, fmt.Errorf("task not found")
}
