package views

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ostrander/mtm/internal/api"
	"github.com/ostrander/mtm/internal/models"
	"github.com/ostrander/mtm/internal/session"
	"github.com/ostrander/mtm/internal/ui/keys"
	"github.com/ostrander/mtm/internal/ui/styles"
)

type projectItem struct {
	project models.Project
}

func (i projectItem) Title() string       { return i.project.Name }
func (i projectItem) Description() string { return i.project.Description }
func (i projectItem) FilterValue() string { return i.project.Name }

type projectDelegate struct {
	styles *styles.Styles
	width  int
}

func (d projectDelegate) Height() int                               { return 2 }
func (d projectDelegate) Spacing() int                              { return 1 }
func (d projectDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d projectDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	p, ok := item.(projectItem)
	if !ok {
		return
	}

	selected := index == m.Index()
	width := max(d.width-4, 20)

	var titleStyle, descStyle lipgloss.Style
	if selected {
		titleStyle = d.styles.ListSelected.Width(width)
		descStyle = d.styles.ListSelected.Foreground(styles.Current.ForegroundDim).Width(width)
	} else {
		titleStyle = d.styles.ListItem.Width(width)
		descStyle = d.styles.ListItem.Foreground(styles.Current.ForegroundDim).Width(width)
	}

	badge := d.styles.ProjectStatus(p.project.Status).Render(string(p.project.Status))
	counts := fmt.Sprintf("%d/%d tasks", p.project.CompletedTasks, p.project.TaskCount)

	title := titleStyle.Render(fmt.Sprintf("%s  %s  %s", p.project.Name, badge, counts))
	desc := descStyle.Render(p.project.Description)

	fmt.Fprintf(w, "%s\n%s", title, desc)
}

// SelectedProject tells the root shell to open the task console for a
// project. Selection is pure local state; no network call happens.
type SelectedProject struct {
	Project models.Project
}

type projectsLoadedMsg struct {
	projects []models.Project
}

type projectListFailedMsg struct{ err error }

type projectSavedMsg struct{}

type projectSaveFailedMsg struct{ err error }

// ProjectConsoleView is the organization's console: the project list
// plus a create form. Each successful create triggers a full re-read
// of the list.
type ProjectConsoleView struct {
	api     *api.Client
	session session.Session
	styles  *styles.Styles
	keys    keys.KeyMap

	list     list.Model
	delegate *projectDelegate

	width  int
	height int

	loaded  bool
	loadErr string

	creating      bool
	newName       textinput.Model
	newDesc       textinput.Model
	newStatusIdx  int // index into models.ProjectStatuses()
	focusIdx      int // 0=name, 1=desc, 2=status, 3=create
	formErr       string
}

// NewProjectConsoleView creates the project console for an
// authenticated organization session.
func NewProjectConsoleView(client *api.Client, sess session.Session) *ProjectConsoleView {
	s := styles.NewStyles()

	newName := textinput.New()
	newName.Placeholder = "Project name"
	newName.CharLimit = 100

	newDesc := textinput.New()
	newDesc.Placeholder = "Description (optional)"
	newDesc.CharLimit = 200

	delegate := &projectDelegate{styles: s, width: 80}

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Projects"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = s.Title
	l.SetShowHelp(false)

	return &ProjectConsoleView{
		api:      client,
		session:  sess,
		styles:   s,
		keys:     keys.DefaultKeyMap(),
		list:     l,
		delegate: delegate,
		newName:  newName,
		newDesc:  newDesc,
	}
}

func (v *ProjectConsoleView) Init() tea.Cmd {
	return v.loadProjects
}

func (v *ProjectConsoleView) loadProjects() tea.Msg {
	projects, err := v.api.ListProjects(context.Background(), v.session.Token)
	if err != nil {
		return projectListFailedMsg{err: err}
	}
	return projectsLoadedMsg{projects: projects}
}

// createProject validates the form locally, then submits. Status
// defaults to ACTIVE via the selector's initial position.
func (v *ProjectConsoleView) createProject() tea.Cmd {
	input := api.ProjectInput{
		Name:        v.newName.Value(),
		Description: v.newDesc.Value(),
		Status:      models.ProjectStatuses()[v.newStatusIdx],
	}
	if input.Name == "" {
		v.formErr = "project name is required"
		return nil
	}
	v.formErr = ""
	return func() tea.Msg {
		if _, err := v.api.CreateOrUpdateProject(context.Background(), v.session.Token, input); err != nil {
			return projectSaveFailedMsg{err: err}
		}
		return projectSavedMsg{}
	}
}

func (v *ProjectConsoleView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(msg.Width)
		v.delegate.width = contentWidth
		v.list.SetSize(contentWidth-4, msg.Height-6)
		return v, nil

	case projectsLoadedMsg:
		items := make([]list.Item, len(msg.projects))
		for i, p := range msg.projects {
			items[i] = projectItem{project: p}
		}
		v.list.SetItems(items)
		v.loaded = true
		v.loadErr = ""
		return v, nil

	case projectListFailedMsg:
		v.loadErr = msg.err.Error()
		v.loaded = true
		return v, nil

	case projectSavedMsg:
		v.newName.Reset()
		v.newDesc.Reset()
		v.newStatusIdx = 0
		v.creating = false
		v.formErr = ""
		return v, v.loadProjects

	case projectSaveFailedMsg:
		v.formErr = msg.err.Error()
		return v, nil

	case tea.KeyMsg:
		if v.creating {
			return v.updateCreating(msg)
		}

		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, v.keys.Back):
			return v, func() tea.Msg { return LoggedOut{} }
		case key.Matches(msg, v.keys.New):
			v.creating = true
			v.focusIdx = 0
			v.formErr = ""
			v.updateFocus()
			return v, textinput.Blink
		case key.Matches(msg, v.keys.Refresh):
			return v, v.loadProjects
		case key.Matches(msg, v.keys.Enter):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				return v, func() tea.Msg {
					return SelectedProject{Project: item.project}
				}
			}
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v *ProjectConsoleView) updateCreating(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	statuses := models.ProjectStatuses()

	switch {
	case key.Matches(msg, v.keys.Back):
		v.creating = false
		return v, nil

	case msg.String() == "ctrl+s":
		return v, v.createProject()

	case msg.String() == "shift+tab":
		v.focusIdx = (v.focusIdx + 3) % 4
		v.updateFocus()
		return v, nil

	case key.Matches(msg, v.keys.Tab):
		v.focusIdx = (v.focusIdx + 1) % 4
		v.updateFocus()
		return v, nil

	case key.Matches(msg, v.keys.Up):
		if v.focusIdx == 2 && v.newStatusIdx > 0 {
			v.newStatusIdx--
			return v, nil
		}

	case key.Matches(msg, v.keys.Down):
		if v.focusIdx == 2 && v.newStatusIdx < len(statuses)-1 {
			v.newStatusIdx++
			return v, nil
		}

	case key.Matches(msg, v.keys.Enter):
		if v.focusIdx < 3 {
			v.focusIdx++
			v.updateFocus()
			return v, nil
		}
		return v, v.createProject()
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case 0:
		v.newName, cmd = v.newName.Update(msg)
	case 1:
		v.newDesc, cmd = v.newDesc.Update(msg)
	}
	return v, cmd
}

func (v *ProjectConsoleView) updateFocus() {
	v.newName.Blur()
	v.newDesc.Blur()
	switch v.focusIdx {
	case 0:
		v.newName.Focus()
	case 1:
		v.newDesc.Focus()
	}
}

func (v *ProjectConsoleView) View() string {
	if v.creating {
		return v.renderCreateForm()
	}

	s := v.styles

	if !v.loaded {
		return s.TitleMuted.Render("Loading projects...")
	}

	if v.loadErr != "" {
		content := lipgloss.JoinVertical(lipgloss.Left,
			s.Title.Render("Projects"),
			"",
			s.ErrorBanner.Render("Error loading projects: "+v.loadErr),
			"",
			v.renderHelp(),
		)
		return styles.CenterView(lipgloss.NewStyle().Padding(1, 2).Render(content), v.width, v.height)
	}

	if len(v.list.Items()) == 0 {
		return v.renderEmpty()
	}

	content := v.list.View() + "\n" + v.renderHelp()
	return styles.CenterView(content, v.width, v.height)
}

func (v *ProjectConsoleView) renderEmpty() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Render("No Projects"),
		"",
		s.TitleMuted.Render("Press 'n' to create your first project"),
		"",
		s.ButtonPrimary.Render(" New Project "),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *ProjectConsoleView) renderCreateForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	nameStyle := s.Input
	descStyle := s.Input
	statusStyle := s.Input
	btnStyle := s.Button

	switch v.focusIdx {
	case 0:
		nameStyle = s.InputFocused
	case 1:
		descStyle = s.InputFocused
	case 2:
		statusStyle = s.InputFocused
	case 3:
		btnStyle = s.ButtonFocused
	}

	inputWidth := clamp(contentWidth-6, 20, 50)

	parts := []string{
		s.Title.Render("New Project"),
		"",
		"Name:",
		nameStyle.Width(inputWidth).Render(v.newName.View()),
		"",
		"Description:",
		descStyle.Width(inputWidth).Render(v.newDesc.View()),
		"",
		"Status:",
		statusStyle.Width(inputWidth).Render(v.renderStatusSelector()),
		"",
		btnStyle.Render(" Create "),
	}
	if v.formErr != "" {
		parts = append(parts, "", s.ErrorText.Width(inputWidth).Render(v.formErr))
	}
	parts = append(parts, "", s.TitleMuted.Render("Tab: next • ↑↓: status • Ctrl+S: save • Esc: cancel"))

	form := lipgloss.JoinVertical(lipgloss.Left, parts...)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *ProjectConsoleView) renderStatusSelector() string {
	s := v.styles
	var items []string
	for i, status := range models.ProjectStatuses() {
		marker := "( )"
		if i == v.newStatusIdx {
			marker = "(•)"
		}
		line := marker + " " + string(status)
		if v.focusIdx == 2 && i == v.newStatusIdx {
			items = append(items, s.ListSelected.Render(line))
		} else {
			items = append(items, s.ListItem.Render(line))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

func (v *ProjectConsoleView) renderHelp() string {
	return v.styles.Help.Render(
		fmt.Sprintf("%s open • %s new • %s refresh • %s logout • %s quit",
			v.styles.HelpKey.Render("↵"),
			v.styles.HelpKey.Render("n"),
			v.styles.HelpKey.Render("r"),
			v.styles.HelpKey.Render("esc"),
			v.styles.HelpKey.Render("q"),
		),
	)
}
