package views

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ostrander/mtm/internal/api"
	"github.com/ostrander/mtm/internal/api/apitest"
	"github.com/ostrander/mtm/internal/models"
	"github.com/ostrander/mtm/internal/session"
)

func newTestClient(t *testing.T, url string) *api.Client {
	t.Helper()
	client, err := api.NewClient(api.Config{ServerURL: url})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func orgSession(t *testing.T, client *api.Client, slug, password string) session.Session {
	t.Helper()
	sess, err := client.OrganizationLogin(context.Background(), slug, password)
	if err != nil {
		t.Fatalf("OrganizationLogin: %v", err)
	}
	return sess
}

func fetchProject(t *testing.T, client *api.Client, sess session.Session) models.Project {
	t.Helper()
	projects, err := client.ListProjects(context.Background(), sess.Token)
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if len(projects) == 0 {
		t.Fatal("no projects seeded")
	}
	return projects[0]
}

func TestLoginEmitsSession(t *testing.T) {
	server := apitest.NewServer(t)
	client := newTestClient(t, server.URL)

	v := NewLoginView(client)
	v.adminPassword.SetValue(apitest.AdminPassword)

	cmd := v.superAdminLogin()
	msg := cmd()
	loggedIn, ok := msg.(LoggedIn)
	if !ok {
		t.Fatalf("msg = %T, want LoggedIn", msg)
	}
	if !loggedIn.Session.SuperAdmin() {
		t.Errorf("role = %q, want super admin", loggedIn.Session.Role)
	}
}

func TestLoginFailureShowsInlineError(t *testing.T) {
	server := apitest.NewServer(t)
	client := newTestClient(t, server.URL)

	v := NewLoginView(client)
	v.adminPassword.SetValue("wrong")

	msg := v.superAdminLogin()()
	failed, ok := msg.(adminLoginFailedMsg)
	if !ok {
		t.Fatalf("msg = %T, want adminLoginFailedMsg", msg)
	}
	v.Update(failed)
	if v.adminErr == "" {
		t.Error("expected inline error on the admin card")
	}
	if v.orgErr != "" {
		t.Errorf("org card error leaked: %q", v.orgErr)
	}
}

func TestOrganizationLoginFromForm(t *testing.T) {
	server := apitest.NewServer(t)
	server.SeedOrganization("Acme", "acme", "secret")
	client := newTestClient(t, server.URL)

	v := NewLoginView(client)
	v.orgSlug.SetValue("acme")
	v.orgPassword.SetValue("secret")

	msg := v.organizationLogin()()
	loggedIn, ok := msg.(LoggedIn)
	if !ok {
		t.Fatalf("msg = %T, want LoggedIn", msg)
	}
	if loggedIn.Session.SuperAdmin() {
		t.Error("tenant session should not be super admin")
	}
}

func TestOrgCreateGuardSkipsNetwork(t *testing.T) {
	server := apitest.NewServer(t)
	client := newTestClient(t, server.URL)
	sess, err := client.SuperAdminLogin(context.Background(), apitest.AdminPassword)
	if err != nil {
		t.Fatalf("SuperAdminLogin: %v", err)
	}

	v := NewOrgConsoleView(client, sess)
	v.creating = true
	v.newName.SetValue("Acme")
	// Slug and password left blank.

	before := server.Requests()
	if cmd := v.createOrganization(); cmd != nil {
		t.Fatal("guard failure should not produce a command")
	}
	if v.formErr == "" {
		t.Error("expected validation message")
	}
	if server.Requests() != before {
		t.Error("guard failure reached the network")
	}
}

func TestOrgCreateResetsFormAndReloads(t *testing.T) {
	server := apitest.NewServer(t)
	client := newTestClient(t, server.URL)
	sess, err := client.SuperAdminLogin(context.Background(), apitest.AdminPassword)
	if err != nil {
		t.Fatalf("SuperAdminLogin: %v", err)
	}

	v := NewOrgConsoleView(client, sess)
	v.creating = true
	v.newName.SetValue("Acme")
	v.newSlug.SetValue("acme")
	v.newPassword.SetValue("secret")

	cmd := v.createOrganization()
	if cmd == nil {
		t.Fatal("expected submit command")
	}
	msg := cmd()
	if _, ok := msg.(orgCreatedMsg); !ok {
		t.Fatalf("msg = %T, want orgCreatedMsg", msg)
	}

	_, reload := v.Update(msg)
	if v.creating {
		t.Error("form should close after a successful create")
	}
	if v.newName.Value() != "" || v.newSlug.Value() != "" || v.newPassword.Value() != "" {
		t.Error("form fields should reset after a successful create")
	}
	if reload == nil {
		t.Fatal("expected a reload command")
	}

	loaded, ok := reload().(orgsLoadedMsg)
	if !ok {
		t.Fatal("expected fresh organization list")
	}
	if len(loaded.orgs) != 1 || loaded.orgs[0].Slug != "acme" {
		t.Fatalf("unexpected orgs: %+v", loaded.orgs)
	}
}

func TestOrgCreateFailureKeepsForm(t *testing.T) {
	server := apitest.NewServer(t)
	server.SeedOrganization("Acme", "acme", "secret")
	client := newTestClient(t, server.URL)
	sess, err := client.SuperAdminLogin(context.Background(), apitest.AdminPassword)
	if err != nil {
		t.Fatalf("SuperAdminLogin: %v", err)
	}

	v := NewOrgConsoleView(client, sess)
	v.creating = true
	v.newName.SetValue("Acme Two")
	v.newSlug.SetValue("acme") // duplicate
	v.newPassword.SetValue("secret")

	msg := v.createOrganization()()
	failed, ok := msg.(orgCreateFailedMsg)
	if !ok {
		t.Fatalf("msg = %T, want orgCreateFailedMsg", msg)
	}
	v.Update(failed)
	if !v.creating {
		t.Error("form should stay open after a server rejection")
	}
	if v.newSlug.Value() != "acme" {
		t.Error("form values should survive a server rejection")
	}
	if v.formErr == "" {
		t.Error("expected the server message inline")
	}
}

func TestProjectCreateGuard(t *testing.T) {
	server := apitest.NewServer(t)
	server.SeedOrganization("Acme", "acme", "secret")
	client := newTestClient(t, server.URL)
	sess := orgSession(t, client, "acme", "secret")

	v := NewProjectConsoleView(client, sess)
	v.creating = true

	before := server.Requests()
	if cmd := v.createProject(); cmd != nil {
		t.Fatal("guard failure should not produce a command")
	}
	if v.formErr == "" {
		t.Error("expected validation message")
	}
	if server.Requests() != before {
		t.Error("guard failure reached the network")
	}
}

func TestProjectCreateDefaultsToActive(t *testing.T) {
	server := apitest.NewServer(t)
	server.SeedOrganization("Acme", "acme", "secret")
	client := newTestClient(t, server.URL)
	sess := orgSession(t, client, "acme", "secret")

	v := NewProjectConsoleView(client, sess)
	v.creating = true
	v.newName.SetValue("Website")

	msg := v.createProject()()
	if _, ok := msg.(projectSavedMsg); !ok {
		t.Fatalf("msg = %T, want projectSavedMsg", msg)
	}
	_, reload := v.Update(msg)
	if reload == nil {
		t.Fatal("expected a reload command")
	}
	loaded, ok := reload().(projectsLoadedMsg)
	if !ok {
		t.Fatal("expected fresh project list")
	}
	if len(loaded.projects) != 1 {
		t.Fatalf("project count = %d", len(loaded.projects))
	}
	if loaded.projects[0].Status != models.ProjectActive {
		t.Errorf("status = %q, want %q", loaded.projects[0].Status, models.ProjectActive)
	}
}

func TestProjectSelectionEmitsMessage(t *testing.T) {
	server := apitest.NewServer(t)
	org := server.SeedOrganization("Acme", "acme", "secret")
	server.SeedProject(org.ID, "Website", "", string(models.ProjectActive))
	client := newTestClient(t, server.URL)
	sess := orgSession(t, client, "acme", "secret")

	v := NewProjectConsoleView(client, sess)
	v.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	loaded := v.loadProjects()
	v.Update(loaded)

	before := server.Requests()
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a selection command")
	}
	selected, ok := cmd().(SelectedProject)
	if !ok {
		t.Fatal("expected SelectedProject message")
	}
	if selected.Project.Name != "Website" {
		t.Errorf("selected %q", selected.Project.Name)
	}
	if server.Requests() != before {
		t.Error("selection is local state and must not hit the network")
	}
}

func newTaskConsole(t *testing.T, server *apitest.Server) (*TaskConsoleView, *api.Client, session.Session) {
	t.Helper()
	client := newTestClient(t, server.URL)
	sess := orgSession(t, client, "acme", "secret")
	project := fetchProject(t, client, sess)
	return NewTaskConsoleView(client, sess, project), client, sess
}

func TestAddTaskGuard(t *testing.T) {
	server := apitest.NewServer(t)
	org := server.SeedOrganization("Acme", "acme", "secret")
	server.SeedProject(org.ID, "Website", "", string(models.ProjectActive))
	v, _, _ := newTaskConsole(t, server)

	v.creating = true
	before := server.Requests()
	if cmd := v.addTask(); cmd != nil {
		t.Fatal("guard failure should not produce a command")
	}
	if v.actionErr == "" {
		t.Error("expected validation message")
	}
	if server.Requests() != before {
		t.Error("guard failure reached the network")
	}
}

func TestNewTaskDraftClearedAfterCreate(t *testing.T) {
	server := apitest.NewServer(t)
	org := server.SeedOrganization("Acme", "acme", "secret")
	server.SeedProject(org.ID, "Website", "", string(models.ProjectActive))
	v, _, _ := newTaskConsole(t, server)

	v.creating = true
	v.newTitle.SetValue("Design homepage")
	v.newDesc.SetValue("hero plus nav")
	v.newAssignee.SetValue("dana@acme.test")
	v.newStatusIdx = 1

	cmd := v.addTask()
	if cmd == nil {
		t.Fatal("expected submit command")
	}
	msg := cmd()
	if _, ok := msg.(taskMutatedMsg); !ok {
		t.Fatalf("msg = %T, want taskMutatedMsg", msg)
	}

	_, reload := v.Update(msg)
	if v.creating {
		t.Error("form should close after a successful create")
	}
	if v.newTitle.Value() != "" || v.newDesc.Value() != "" || v.newAssignee.Value() != "" {
		t.Error("draft fields should reset after a successful create")
	}
	if v.newStatusIdx != 0 {
		t.Error("status selector should reset to Pending")
	}
	if reload == nil {
		t.Fatal("expected a reload command")
	}
	v.Update(reload())
	if len(v.tasks) != 1 || v.tasks[0].Title != "Design homepage" {
		t.Fatalf("unexpected tasks after reload: %+v", v.tasks)
	}
	if v.tasks[0].Status != string(models.TaskInProgress) {
		t.Errorf("status = %q, want selector value", v.tasks[0].Status)
	}
}

func TestQuickStatusPreservesOtherFields(t *testing.T) {
	server := apitest.NewServer(t)
	org := server.SeedOrganization("Acme", "acme", "secret")
	projectID := server.SeedProject(org.ID, "Website", "", string(models.ProjectActive))
	taskID := server.SeedTask(projectID, models.Task{
		Title:         "Design homepage",
		Status:        string(models.TaskPending),
		AssigneeEmail: "dana@acme.test",
		DueDate:       "2026-09-01",
	})
	v, _, _ := newTaskConsole(t, server)

	msg := v.quickStatus(taskID, models.TaskDone)()
	if _, ok := msg.(taskMutatedMsg); !ok {
		t.Fatalf("msg = %T, want taskMutatedMsg", msg)
	}
	_, reload := v.Update(msg)
	v.Update(reload())

	task := v.tasks[0]
	if task.Status != string(models.TaskDone) {
		t.Errorf("status = %q", task.Status)
	}
	if task.AssigneeEmail != "dana@acme.test" || task.DueDate != "2026-09-01" {
		t.Errorf("partial update clobbered fields: %+v", task)
	}
}

func TestQuickAssignPreservesOtherFields(t *testing.T) {
	server := apitest.NewServer(t)
	org := server.SeedOrganization("Acme", "acme", "secret")
	projectID := server.SeedProject(org.ID, "Website", "", string(models.ProjectActive))
	taskID := server.SeedTask(projectID, models.Task{
		Title:  "Design homepage",
		Status: string(models.TaskInProgress),
	})
	v, _, _ := newTaskConsole(t, server)

	msg := v.quickAssign(taskID, "lee@acme.test")()
	if _, ok := msg.(taskMutatedMsg); !ok {
		t.Fatalf("msg = %T, want taskMutatedMsg", msg)
	}
	_, reload := v.Update(msg)
	v.Update(reload())

	task := v.tasks[0]
	if task.AssigneeEmail != "lee@acme.test" {
		t.Errorf("assignee = %q", task.AssigneeEmail)
	}
	if task.Status != string(models.TaskInProgress) {
		t.Errorf("status clobbered: %q", task.Status)
	}
}

func TestCommentTrimmedAndGuarded(t *testing.T) {
	server := apitest.NewServer(t)
	org := server.SeedOrganization("Acme", "acme", "secret")
	projectID := server.SeedProject(org.ID, "Website", "", string(models.ProjectActive))
	taskID := server.SeedTask(projectID, models.Task{Title: "T", Status: string(models.TaskPending)})
	v, _, _ := newTaskConsole(t, server)

	// Whitespace-only drafts never leave the client.
	v.commentDrafts[taskID] = "   "
	before := server.Requests()
	if cmd := v.addComment(taskID); cmd != nil {
		t.Fatal("guard failure should not produce a command")
	}
	if server.Requests() != before {
		t.Error("guard failure reached the network")
	}

	v.commentDrafts[taskID] = "  looks good  "
	cmd := v.addComment(taskID)
	if cmd == nil {
		t.Fatal("expected submit command")
	}
	msg := cmd()
	added, ok := msg.(commentAddedMsg)
	if !ok {
		t.Fatalf("msg = %T, want commentAddedMsg", msg)
	}
	_, reload := v.Update(added)
	if _, pending := v.commentDrafts[taskID]; pending {
		t.Error("comment draft should clear after posting")
	}
	v.Update(reload())

	comments := v.tasks[0].Comments
	if len(comments) != 1 {
		t.Fatalf("comment count = %d", len(comments))
	}
	if comments[0].Content != "looks good" {
		t.Errorf("content = %q, want trimmed text", comments[0].Content)
	}
	if comments[0].AuthorEmail != "" {
		t.Errorf("author = %q, want empty", comments[0].AuthorEmail)
	}
}

func TestEditDraftResumesAcrossClose(t *testing.T) {
	server := apitest.NewServer(t)
	org := server.SeedOrganization("Acme", "acme", "secret")
	projectID := server.SeedProject(org.ID, "Website", "", string(models.ProjectActive))
	server.SeedTask(projectID, models.Task{Title: "Old title", Status: string(models.TaskPending)})
	v, _, _ := newTaskConsole(t, server)

	task := v.tasks[0]
	v.startEditTask(task)
	v.editTitle.SetValue("New title")

	v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if v.editing {
		t.Fatal("esc should close the edit form")
	}

	// Reopening resumes the unsent draft, not the server value.
	v.startEditTask(task)
	if v.editTitle.Value() != "New title" {
		t.Errorf("resumed title = %q, want the draft", v.editTitle.Value())
	}
}

func TestSaveEditsSendsFullDraft(t *testing.T) {
	server := apitest.NewServer(t)
	org := server.SeedOrganization("Acme", "acme", "secret")
	projectID := server.SeedProject(org.ID, "Website", "", string(models.ProjectActive))
	taskID := server.SeedTask(projectID, models.Task{
		Title:  "Old title",
		Status: string(models.TaskPending),
	})
	v, _, _ := newTaskConsole(t, server)

	v.startEditTask(v.tasks[0])
	v.editTitle.SetValue("New title")
	v.editAssignee.SetValue("dana@acme.test")
	v.editStatusIdx = statusIndex(string(models.TaskDone))
	v.stashEdit()

	msg := v.saveTaskEdits(taskID)()
	if _, ok := msg.(taskMutatedMsg); !ok {
		t.Fatalf("msg = %T, want taskMutatedMsg", msg)
	}
	_, reload := v.Update(msg)
	if _, pending := v.edits[taskID]; pending {
		t.Error("draft should clear after a successful save")
	}
	v.Update(reload())

	task := v.tasks[0]
	if task.Title != "New title" || task.AssigneeEmail != "dana@acme.test" || task.Status != string(models.TaskDone) {
		t.Errorf("saved task = %+v", task)
	}
}

func TestSaveEditsWithoutDraftIsNoop(t *testing.T) {
	server := apitest.NewServer(t)
	org := server.SeedOrganization("Acme", "acme", "secret")
	projectID := server.SeedProject(org.ID, "Website", "", string(models.ProjectActive))
	taskID := server.SeedTask(projectID, models.Task{Title: "T", Status: string(models.TaskPending)})
	v, _, _ := newTaskConsole(t, server)

	if cmd := v.saveTaskEdits(taskID); cmd != nil {
		t.Fatal("save without a draft should be a no-op")
	}
}

func TestRefreshFailureKeepsStaleRows(t *testing.T) {
	server := apitest.NewServer(t)
	org := server.SeedOrganization("Acme", "acme", "secret")
	projectID := server.SeedProject(org.ID, "Website", "", string(models.ProjectActive))
	server.SeedTask(projectID, models.Task{Title: "T", Status: string(models.TaskPending)})
	v, _, _ := newTaskConsole(t, server)

	v.Update(taskListFailedMsg{err: errors.New("connection refused")})
	if len(v.tasks) != 1 {
		t.Error("stale rows should survive a failed refresh")
	}
	if v.loadErr == "" {
		t.Error("expected inline refresh error")
	}
}

func TestRefreshWithMissingProjectEmptiesList(t *testing.T) {
	server := apitest.NewServer(t)
	org := server.SeedOrganization("Acme", "acme", "secret")
	projectID := server.SeedProject(org.ID, "Website", "", string(models.ProjectActive))
	server.SeedTask(projectID, models.Task{Title: "T", Status: string(models.TaskPending)})
	v, _, _ := newTaskConsole(t, server)

	v.Update(taskListRefreshedMsg{projects: nil})
	if len(v.tasks) != 0 {
		t.Errorf("task list should be empty when the project is gone, got %d", len(v.tasks))
	}
	if v.loadErr != "" {
		t.Errorf("unexpected error: %q", v.loadErr)
	}
}

func TestBackNavigation(t *testing.T) {
	server := apitest.NewServer(t)
	org := server.SeedOrganization("Acme", "acme", "secret")
	server.SeedProject(org.ID, "Website", "", string(models.ProjectActive))
	v, _, _ := newTaskConsole(t, server)

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("expected a navigation command")
	}
	if _, ok := cmd().(BackToProjects); !ok {
		t.Error("esc from the task list should return to projects")
	}
}
