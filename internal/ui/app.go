package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ostrander/mtm/internal/api"
	"github.com/ostrander/mtm/internal/models"
	"github.com/ostrander/mtm/internal/session"
	"github.com/ostrander/mtm/internal/ui/views"
)

// Currently active view
type View int

const (
	ViewLogin View = iota
	ViewOrgs
	ViewProjects
	ViewTasks
)

// App is the root shell. It owns the session and routes between the
// login screen and the role's console; child views receive the session
// as a value and never mutate it.
type App struct {
	api         *api.Client
	session     session.Session
	currentView View
	login       *views.LoginView
	orgs        *views.OrgConsoleView
	projects    *views.ProjectConsoleView
	tasks       *views.TaskConsoleView
	width       int
	height      int
}

// Creates a new application starting at the login screen
func NewApp(client *api.Client) *App {
	return &App{
		api:         client,
		currentView: ViewLogin,
		login:       views.NewLoginView(client),
	}
}

func (a *App) Init() tea.Cmd {
	return a.login.Init()
}

func (a *App) resize() tea.Cmd {
	return func() tea.Msg {
		return tea.WindowSizeMsg{Width: a.width, Height: a.height}
	}
}

// openConsole enters the console matching the session's role.
func (a *App) openConsole() tea.Cmd {
	if a.session.SuperAdmin() {
		a.currentView = ViewOrgs
		a.orgs = views.NewOrgConsoleView(a.api, a.session)
		return tea.Batch(a.orgs.Init(), a.resize())
	}
	a.currentView = ViewProjects
	a.projects = views.NewProjectConsoleView(a.api, a.session)
	return tea.Batch(a.projects.Init(), a.resize())
}

func (a *App) openProject(project models.Project) tea.Cmd {
	a.currentView = ViewTasks
	a.tasks = views.NewTaskConsoleView(a.api, a.session, project)
	return tea.Batch(a.tasks.Init(), a.resize())
}

func (a *App) logout() tea.Cmd {
	a.session = session.Session{}
	a.orgs = nil
	a.projects = nil
	a.tasks = nil
	a.currentView = ViewLogin
	a.login = views.NewLoginView(a.api)
	return tea.Batch(a.login.Init(), a.resize())
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case views.LoggedIn:
		a.session = msg.Session
		return a, a.openConsole()

	case views.LoggedOut:
		return a, a.logout()

	case views.SelectedProject:
		return a, a.openProject(msg.Project)

	case views.BackToProjects:
		a.currentView = ViewProjects
		if a.projects == nil {
			a.projects = views.NewProjectConsoleView(a.api, a.session)
		}
		return a, tea.Batch(a.projects.Init(), a.resize())
	}

	var cmd tea.Cmd
	switch a.currentView {
	case ViewLogin:
		_, cmd = a.login.Update(msg)
	case ViewOrgs:
		_, cmd = a.orgs.Update(msg)
	case ViewProjects:
		_, cmd = a.projects.Update(msg)
	case ViewTasks:
		_, cmd = a.tasks.Update(msg)
	}

	return a, cmd
}

func (a *App) View() string {
	switch a.currentView {
	case ViewOrgs:
		if a.orgs != nil {
			return a.orgs.View()
		}
	case ViewProjects:
		if a.projects != nil {
			return a.projects.View()
		}
	case ViewTasks:
		if a.tasks != nil {
			return a.tasks.View()
		}
	}
	return a.login.View()
}
