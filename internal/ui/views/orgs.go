package views

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ostrander/mtm/internal/api"
	"github.com/ostrander/mtm/internal/models"
	"github.com/ostrander/mtm/internal/session"
	"github.com/ostrander/mtm/internal/ui/keys"
	"github.com/ostrander/mtm/internal/ui/styles"
)

// LoggedOut reports that the user left the console; the root shell
// clears the session and returns to the login screen.
type LoggedOut struct{}

type orgsLoadedMsg struct {
	orgs []models.Organization
}

type orgListFailedMsg struct{ err error }

type orgCreatedMsg struct{}

type orgCreateFailedMsg struct{ err error }

// OrgConsoleView is the super administrator's console: the tenant
// table plus a create form. Every successful create is followed by a
// fresh list read; nothing is patched locally.
type OrgConsoleView struct {
	api     *api.Client
	session session.Session
	styles  *styles.Styles
	keys    keys.KeyMap

	width  int
	height int

	table   table.Model
	loaded  bool
	loadErr string

	creating    bool
	newName     textinput.Model
	newSlug     textinput.Model
	newEmail    textinput.Model
	newPassword textinput.Model
	focusIdx    int // 0=name, 1=slug, 2=email, 3=password, 4=create
	formErr     string
}

// NewOrgConsoleView creates the organization console for an
// authenticated super administrator session.
func NewOrgConsoleView(client *api.Client, sess session.Session) *OrgConsoleView {
	s := styles.NewStyles()

	columns := []table.Column{
		{Title: "Name", Width: 24},
		{Title: "Slug", Width: 16},
		{Title: "Email", Width: 26},
		{Title: "Created", Width: 20},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	tableStyles := table.DefaultStyles()
	tableStyles.Header = tableStyles.Header.
		Foreground(styles.Current.Primary).
		Bold(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Current.Border).
		BorderBottom(true)
	tableStyles.Selected = tableStyles.Selected.
		Foreground(styles.Current.Primary).
		Background(styles.Current.Selection).
		Bold(true)
	t.SetStyles(tableStyles)

	newName := textinput.New()
	newName.Placeholder = "Name"
	newName.CharLimit = 100

	newSlug := textinput.New()
	newSlug.Placeholder = "Slug (login identifier)"
	newSlug.CharLimit = 100

	newEmail := textinput.New()
	newEmail.Placeholder = "Contact email (optional)"
	newEmail.CharLimit = 100

	newPassword := textinput.New()
	newPassword.Placeholder = "Password"
	newPassword.EchoMode = textinput.EchoPassword
	newPassword.CharLimit = 100

	return &OrgConsoleView{
		api:         client,
		session:     sess,
		styles:      s,
		keys:        keys.DefaultKeyMap(),
		table:       t,
		newName:     newName,
		newSlug:     newSlug,
		newEmail:    newEmail,
		newPassword: newPassword,
	}
}

func (v *OrgConsoleView) Init() tea.Cmd {
	return v.loadOrganizations
}

func (v *OrgConsoleView) loadOrganizations() tea.Msg {
	orgs, err := v.api.ListOrganizations(context.Background(), v.session.Token)
	if err != nil {
		return orgListFailedMsg{err: err}
	}
	return orgsLoadedMsg{orgs: orgs}
}

// createOrganization validates the form locally, then submits. A guard
// failure never issues a network call.
func (v *OrgConsoleView) createOrganization() tea.Cmd {
	input := api.OrganizationInput{
		Name:         v.newName.Value(),
		Slug:         v.newSlug.Value(),
		ContactEmail: v.newEmail.Value(),
		Password:     v.newPassword.Value(),
	}
	if input.Name == "" || input.Slug == "" || input.Password == "" {
		v.formErr = "name, slug and password are required"
		return nil
	}
	v.formErr = ""
	return func() tea.Msg {
		if _, err := v.api.CreateOrganization(context.Background(), v.session.Token, input); err != nil {
			return orgCreateFailedMsg{err: err}
		}
		return orgCreatedMsg{}
	}
}

func (v *OrgConsoleView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.table.SetHeight(clamp(msg.Height-10, 3, 20))
		return v, nil

	case orgsLoadedMsg:
		rows := make([]table.Row, len(msg.orgs))
		for i, org := range msg.orgs {
			created := org.CreatedAt
			if created == "" {
				created = "-"
			} else {
				created = models.DisplayTime(created)
			}
			rows[i] = table.Row{org.Name, org.Slug, org.ContactEmail, created}
		}
		v.table.SetRows(rows)
		v.loaded = true
		v.loadErr = ""
		return v, nil

	case orgListFailedMsg:
		v.loadErr = msg.err.Error()
		v.loaded = true
		return v, nil

	case orgCreatedMsg:
		v.newName.Reset()
		v.newSlug.Reset()
		v.newEmail.Reset()
		v.newPassword.Reset()
		v.creating = false
		v.formErr = ""
		return v, v.loadOrganizations

	case orgCreateFailedMsg:
		// The form stays populated for correction.
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
			return v, v.loadOrganizations
		}
	}

	var cmd tea.Cmd
	v.table, cmd = v.table.Update(msg)
	return v, cmd
}

func (v *OrgConsoleView) updateCreating(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.creating = false
		return v, nil

	case msg.String() == "ctrl+s":
		return v, v.createOrganization()

	case msg.String() == "shift+tab":
		v.focusIdx = (v.focusIdx + 4) % 5
		v.updateFocus()
		return v, nil

	case key.Matches(msg, v.keys.Tab):
		v.focusIdx = (v.focusIdx + 1) % 5
		v.updateFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if v.focusIdx < 4 {
			v.focusIdx++
			v.updateFocus()
			return v, nil
		}
		return v, v.createOrganization()
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case 0:
		v.newName, cmd = v.newName.Update(msg)
	case 1:
		v.newSlug, cmd = v.newSlug.Update(msg)
	case 2:
		v.newEmail, cmd = v.newEmail.Update(msg)
	case 3:
		v.newPassword, cmd = v.newPassword.Update(msg)
	}
	return v, cmd
}

func (v *OrgConsoleView) updateFocus() {
	v.newName.Blur()
	v.newSlug.Blur()
	v.newEmail.Blur()
	v.newPassword.Blur()
	switch v.focusIdx {
	case 0:
		v.newName.Focus()
	case 1:
		v.newSlug.Focus()
	case 2:
		v.newEmail.Focus()
	case 3:
		v.newPassword.Focus()
	}
}

func (v *OrgConsoleView) View() string {
	if v.creating {
		return v.renderCreateForm()
	}

	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	var body string
	switch {
	case !v.loaded:
		body = s.TitleMuted.Render("Loading organizations...")
	case v.loadErr != "":
		body = s.ErrorBanner.Render("Error loading organizations: " + v.loadErr)
	case len(v.table.Rows()) == 0:
		body = s.TitleMuted.Render("No organizations. Press 'n' to create one.")
	default:
		body = v.table.View()
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Organizations"),
		"",
		body,
		"",
		v.renderHelp(),
	)

	padded := lipgloss.NewStyle().Padding(1, 2).MaxWidth(contentWidth).Render(content)
	return styles.CenterView(padded, v.width, v.height)
}

func (v *OrgConsoleView) renderCreateForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	nameStyle := s.Input
	slugStyle := s.Input
	emailStyle := s.Input
	passwordStyle := s.Input
	btnStyle := s.Button
	switch v.focusIdx {
	case 0:
		nameStyle = s.InputFocused
	case 1:
		slugStyle = s.InputFocused
	case 2:
		emailStyle = s.InputFocused
	case 3:
		passwordStyle = s.InputFocused
	case 4:
		btnStyle = s.ButtonFocused
	}

	inputWidth := clamp(contentWidth-6, 20, 50)

	parts := []string{
		s.Title.Render("New Organization"),
		"",
		"Name:",
		nameStyle.Width(inputWidth).Render(v.newName.View()),
		"",
		"Slug:",
		slugStyle.Width(inputWidth).Render(v.newSlug.View()),
		"",
		"Contact email:",
		emailStyle.Width(inputWidth).Render(v.newEmail.View()),
		"",
		"Password:",
		passwordStyle.Width(inputWidth).Render(v.newPassword.View()),
		"",
		btnStyle.Render(" Create "),
	}
	if v.formErr != "" {
		parts = append(parts, "", s.ErrorText.Width(inputWidth).Render(v.formErr))
	}
	parts = append(parts, "", s.TitleMuted.Render("Tab: next • Ctrl+S: save • Esc: cancel"))

	form := lipgloss.JoinVertical(lipgloss.Left, parts...)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *OrgConsoleView) renderHelp() string {
	return v.styles.Help.Render(
		fmt.Sprintf("%s new • %s refresh • %s logout • %s quit",
			v.styles.HelpKey.Render("n"),
			v.styles.HelpKey.Render("r"),
			v.styles.HelpKey.Render("esc"),
			v.styles.HelpKey.Render("q"),
		),
	)
}
