package views

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ostrander/mtm/internal/api"
	"github.com/ostrander/mtm/internal/session"
	"github.com/ostrander/mtm/internal/ui/keys"
	"github.com/ostrander/mtm/internal/ui/styles"
)

// Focusable elements on the login screen, in tab order.
const (
	loginFocusAdminPassword = iota
	loginFocusAdminSubmit
	loginFocusOrgSlug
	loginFocusOrgPassword
	loginFocusOrgSubmit
	loginFocusCount
)

// LoggedIn reports a successful login to the root shell.
type LoggedIn struct {
	Session session.Session
}

type adminLoginFailedMsg struct{ err error }
type orgLoginFailedMsg struct{ err error }

// LoginView renders both credential forms side by side: super
// administrator (password only) and organization (slug + password).
// Submitted values are sent as-is; whatever the server rejects comes
// back through the failure path.
type LoginView struct {
	api    *api.Client
	styles *styles.Styles
	keys   keys.KeyMap

	width  int
	height int

	adminPassword textinput.Model
	orgSlug       textinput.Model
	orgPassword   textinput.Model
	focusIdx      int

	adminErr string
	orgErr   string
}

// NewLoginView creates the login screen.
func NewLoginView(client *api.Client) *LoginView {
	adminPassword := textinput.New()
	adminPassword.Placeholder = "Super admin password"
	adminPassword.EchoMode = textinput.EchoPassword
	adminPassword.CharLimit = 100
	adminPassword.Focus()

	orgSlug := textinput.New()
	orgSlug.Placeholder = "Organization slug"
	orgSlug.CharLimit = 100

	orgPassword := textinput.New()
	orgPassword.Placeholder = "Organization password"
	orgPassword.EchoMode = textinput.EchoPassword
	orgPassword.CharLimit = 100

	return &LoginView{
		api:           client,
		styles:        styles.NewStyles(),
		keys:          keys.DefaultKeyMap(),
		adminPassword: adminPassword,
		orgSlug:       orgSlug,
		orgPassword:   orgPassword,
	}
}

func (v *LoginView) Init() tea.Cmd {
	return textinput.Blink
}

func (v *LoginView) superAdminLogin() tea.Cmd {
	password := v.adminPassword.Value()
	return func() tea.Msg {
		sess, err := v.api.SuperAdminLogin(context.Background(), password)
		if err != nil {
			return adminLoginFailedMsg{err: err}
		}
		return LoggedIn{Session: sess}
	}
}

func (v *LoginView) organizationLogin() tea.Cmd {
	slug := v.orgSlug.Value()
	password := v.orgPassword.Value()
	return func() tea.Msg {
		sess, err := v.api.OrganizationLogin(context.Background(), slug, password)
		if err != nil {
			return orgLoginFailedMsg{err: err}
		}
		return LoggedIn{Session: sess}
	}
}

func (v *LoginView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case adminLoginFailedMsg:
		v.adminErr = msg.err.Error()
		return v, nil

	case orgLoginFailedMsg:
		v.orgErr = msg.err.Error()
		return v, nil

	case tea.KeyMsg:
		switch {
		case msg.String() == "ctrl+c":
			return v, tea.Quit

		case key.Matches(msg, v.keys.Tab):
			v.setFocus((v.focusIdx + 1) % loginFocusCount)
			return v, textinput.Blink

		case msg.String() == "shift+tab":
			v.setFocus((v.focusIdx + loginFocusCount - 1) % loginFocusCount)
			return v, textinput.Blink

		case key.Matches(msg, v.keys.Enter):
			switch v.focusIdx {
			case loginFocusAdminPassword, loginFocusAdminSubmit:
				v.adminErr = ""
				return v, v.superAdminLogin()
			case loginFocusOrgSlug:
				v.setFocus(loginFocusOrgPassword)
				return v, textinput.Blink
			case loginFocusOrgPassword, loginFocusOrgSubmit:
				v.orgErr = ""
				return v, v.organizationLogin()
			}
			return v, nil
		}
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case loginFocusAdminPassword:
		v.adminPassword, cmd = v.adminPassword.Update(msg)
	case loginFocusOrgSlug:
		v.orgSlug, cmd = v.orgSlug.Update(msg)
	case loginFocusOrgPassword:
		v.orgPassword, cmd = v.orgPassword.Update(msg)
	}
	return v, cmd
}

func (v *LoginView) setFocus(idx int) {
	v.focusIdx = idx
	v.adminPassword.Blur()
	v.orgSlug.Blur()
	v.orgPassword.Blur()
	switch idx {
	case loginFocusAdminPassword:
		v.adminPassword.Focus()
	case loginFocusOrgSlug:
		v.orgSlug.Focus()
	case loginFocusOrgPassword:
		v.orgPassword.Focus()
	}
}

func (v *LoginView) View() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	narrow := contentWidth < 70
	cardWidth := clamp(contentWidth/2-6, 24, 40)
	if narrow {
		cardWidth = clamp(contentWidth-6, 24, 40)
	}

	adminCard := v.renderAdminCard(cardWidth)
	orgCard := v.renderOrgCard(cardWidth)

	var cards string
	if narrow {
		cards = lipgloss.JoinVertical(lipgloss.Center, adminCard, "", orgCard)
	} else {
		cards = lipgloss.JoinHorizontal(lipgloss.Top, adminCard, "  ", orgCard)
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Render("Multi-Tenant Project Manager"),
		"",
		cards,
		"",
		s.Help.Render(s.HelpKey.Render("tab")+" switch field • "+s.HelpKey.Render("↵")+" login • "+s.HelpKey.Render("ctrl+c")+" quit"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *LoginView) renderAdminCard(width int) string {
	s := v.styles

	passwordStyle := s.Input
	btnStyle := s.Button
	switch v.focusIdx {
	case loginFocusAdminPassword:
		passwordStyle = s.InputFocused
	case loginFocusAdminSubmit:
		btnStyle = s.ButtonFocused
	}

	parts := []string{
		s.Title.Render("Super Admin"),
		"",
		passwordStyle.Width(width).Render(v.adminPassword.View()),
		"",
		btnStyle.Render(" Login "),
	}
	if v.adminErr != "" {
		parts = append(parts, "", s.ErrorText.Width(width).Render(v.adminErr))
	}

	return s.Panel.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (v *LoginView) renderOrgCard(width int) string {
	s := v.styles

	slugStyle := s.Input
	passwordStyle := s.Input
	btnStyle := s.Button
	switch v.focusIdx {
	case loginFocusOrgSlug:
		slugStyle = s.InputFocused
	case loginFocusOrgPassword:
		passwordStyle = s.InputFocused
	case loginFocusOrgSubmit:
		btnStyle = s.ButtonFocused
	}

	parts := []string{
		s.Title.Render("Organization"),
		"",
		slugStyle.Width(width).Render(v.orgSlug.View()),
		"",
		passwordStyle.Width(width).Render(v.orgPassword.View()),
		"",
		btnStyle.Render(" Login "),
	}
	if v.orgErr != "" {
		parts = append(parts, "", s.ErrorText.Width(width).Render(v.orgErr))
	}

	return s.Panel.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}
