package ui

import (
	"testing"

	"github.com/ostrander/mtm/internal/api"
	"github.com/ostrander/mtm/internal/models"
	"github.com/ostrander/mtm/internal/session"
	"github.com/ostrander/mtm/internal/ui/views"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	client, err := api.NewClient(api.Config{ServerURL: "http://localhost:4000/graphql"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return NewApp(client)
}

func TestLoginRoutesByRole(t *testing.T) {
	app := newTestApp(t)
	if app.currentView != ViewLogin {
		t.Fatal("app should start on the login screen")
	}

	app.Update(views.LoggedIn{Session: session.New("tok", models.RoleSuperAdmin)})
	if app.currentView != ViewOrgs {
		t.Errorf("super admin landed on view %d, want organization console", app.currentView)
	}

	app = newTestApp(t)
	app.Update(views.LoggedIn{Session: session.New("tok", models.RoleOrganization)})
	if app.currentView != ViewProjects {
		t.Errorf("tenant landed on view %d, want project console", app.currentView)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	app := newTestApp(t)
	app.Update(views.LoggedIn{Session: session.New("tok", models.RoleOrganization)})

	app.Update(views.LoggedOut{})
	if app.currentView != ViewLogin {
		t.Error("logout should return to the login screen")
	}
	if app.session.Authenticated() {
		t.Error("logout should discard the session")
	}
	if app.projects != nil || app.orgs != nil || app.tasks != nil {
		t.Error("logout should drop the console views")
	}
}

func TestProjectOpenAndBack(t *testing.T) {
	app := newTestApp(t)
	app.Update(views.LoggedIn{Session: session.New("tok", models.RoleOrganization)})

	app.Update(views.SelectedProject{Project: models.Project{ID: "p1", Name: "Website"}})
	if app.currentView != ViewTasks {
		t.Fatal("selecting a project should open the task console")
	}

	app.Update(views.BackToProjects{})
	if app.currentView != ViewProjects {
		t.Error("back should return to the project console")
	}
}
