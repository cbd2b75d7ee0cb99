package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ostrander/mtm/internal/api"
	"github.com/ostrander/mtm/internal/models"
	"github.com/ostrander/mtm/internal/session"
	"github.com/ostrander/mtm/internal/ui/keys"
	"github.com/ostrander/mtm/internal/ui/styles"
)

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// BackToProjects signals to go back to the project list
type BackToProjects struct{}

// taskDraft is the in-progress edit state for one task. A task with no
// draft renders its server values.
type taskDraft struct {
	title         string
	description   string
	status        string
	assigneeEmail string
	dueDate       string
}

func draftFromTask(task models.Task) taskDraft {
	status := task.Status
	if status == "" {
		status = string(models.TaskPending)
	}
	return taskDraft{
		title:         task.Title,
		description:   task.Description,
		status:        status,
		assigneeEmail: task.AssigneeEmail,
		dueDate:       models.DateOnly(task.DueDate),
	}
}

type taskListRefreshedMsg struct {
	projects []models.Project
}

type taskListFailedMsg struct{ err error }

type taskMutatedMsg struct{}

type taskMutationFailedMsg struct{ err error }

type commentAddedMsg struct{ taskID string }

// TaskConsoleView shows and edits the tasks of one selected project.
//
// It holds four independent pieces of local edit state: the new-task
// draft, per-task edit drafts (absent entries fall back to server
// values), per-task comment-box-open flags, and per-task comment
// drafts. Every mutation is followed by a full listProjects re-read;
// this project's task list is re-derived from the fresh result by id,
// rendering empty if the project has vanished.
type TaskConsoleView struct {
	api         *api.Client
	session     session.Session
	projectID   string
	projectName string
	styles      *styles.Styles
	keys        keys.KeyMap

	width  int
	height int

	tasks     []models.Task
	loaded    bool
	loadErr   string
	actionErr string

	cursor  int
	scrollY int

	// New-task form
	creating     bool
	newTitle     textinput.Model
	newDesc      textinput.Model
	newAssignee  textinput.Model
	newDue       textinput.Model
	newStatusIdx int
	newFocusIdx  int // 0=title, 1=desc, 2=assignee, 3=due, 4=status, 5=save

	// Edit form; edits keeps in-progress drafts across open/close
	editing       bool
	editTaskID    string
	edits         map[string]taskDraft
	editTitle     textinput.Model
	editDesc      textinput.Model
	editAssignee  textinput.Model
	editDue       textinput.Model
	editStatusIdx int
	editFocusIdx  int

	// Quick assign: inline input with explicit confirm
	assigning   bool
	assignInput textinput.Model

	// Quick status: closed selection, validated by construction
	statusPicking bool
	statusCursor  int

	// Task detail view with comments
	viewingTask   bool
	commentInput  textarea.Model
	commentOpen   map[string]bool
	commentDrafts map[string]string
}

// NewTaskConsoleView creates the task console for one project.
func NewTaskConsoleView(client *api.Client, sess session.Session, project models.Project) *TaskConsoleView {
	s := styles.NewStyles()

	newTitle := textinput.New()
	newTitle.Placeholder = "Task title"
	newTitle.CharLimit = 200

	newDesc := textinput.New()
	newDesc.Placeholder = "Description"
	newDesc.CharLimit = 500

	newAssignee := textinput.New()
	newAssignee.Placeholder = "Assignee email (optional)"
	newAssignee.CharLimit = 100

	newDue := textinput.New()
	newDue.Placeholder = "Due date YYYY-MM-DD (optional)"
	newDue.CharLimit = 10

	editTitle := textinput.New()
	editTitle.CharLimit = 200
	editDesc := textinput.New()
	editDesc.CharLimit = 500
	editAssignee := textinput.New()
	editAssignee.CharLimit = 100
	editDue := textinput.New()
	editDue.CharLimit = 10

	assignInput := textinput.New()
	assignInput.Placeholder = "email or empty"
	assignInput.CharLimit = 100

	commentInput := textarea.New()
	commentInput.Placeholder = "Write comment..."
	commentInput.CharLimit = 2000
	commentInput.SetWidth(50)
	commentInput.SetHeight(3)
	commentInput.ShowLineNumbers = false

	return &TaskConsoleView{
		api:           client,
		session:       sess,
		projectID:     project.ID,
		projectName:   project.Name,
		tasks:         project.Tasks,
		loaded:        true,
		styles:        s,
		keys:          keys.DefaultKeyMap(),
		newTitle:      newTitle,
		newDesc:       newDesc,
		newAssignee:   newAssignee,
		newDue:        newDue,
		editTitle:     editTitle,
		editDesc:      editDesc,
		editAssignee:  editAssignee,
		editDue:       editDue,
		assignInput:   assignInput,
		commentInput:  commentInput,
		edits:         make(map[string]taskDraft),
		commentOpen:   make(map[string]bool),
		commentDrafts: make(map[string]string),
	}
}

func (v *TaskConsoleView) Init() tea.Cmd {
	return v.loadTasks
}

// loadTasks re-reads the full project list; Update derives this
// project's tasks from the result. There is no per-project read.
func (v *TaskConsoleView) loadTasks() tea.Msg {
	projects, err := v.api.ListProjects(context.Background(), v.session.Token)
	if err != nil {
		return taskListFailedMsg{err: err}
	}
	return taskListRefreshedMsg{projects: projects}
}

// addTask submits the new-task draft. Defaults: empty description,
// Pending status, no assignee, no due date.
func (v *TaskConsoleView) addTask() tea.Cmd {
	title := v.newTitle.Value()
	if title == "" {
		v.actionErr = "enter a task title"
		return nil
	}
	v.actionErr = ""

	status := string(models.TaskStatuses()[v.newStatusIdx])
	description := v.newDesc.Value()
	input := api.TaskInput{
		ProjectID:   &v.projectID,
		Title:       &title,
		Description: &description,
		Status:      &status,
	}
	if assignee := v.newAssignee.Value(); assignee != "" {
		input.AssigneeEmail = &assignee
	}
	if due := v.newDue.Value(); due != "" {
		input.DueDate = &due
	}

	return func() tea.Msg {
		if _, err := v.api.CreateOrUpdateTask(context.Background(), v.session.Token, input); err != nil {
			return taskMutationFailedMsg{err: err}
		}
		return taskMutatedMsg{}
	}
}

// saveTaskEdits sends the full pending draft for taskID. No-op when no
// draft exists.
func (v *TaskConsoleView) saveTaskEdits(taskID string) tea.Cmd {
	draft, ok := v.edits[taskID]
	if !ok {
		return nil
	}
	input := api.TaskInput{
		ID:            &taskID,
		Title:         &draft.title,
		Description:   &draft.description,
		Status:        &draft.status,
		AssigneeEmail: &draft.assigneeEmail,
		DueDate:       &draft.dueDate,
	}
	return func() tea.Msg {
		if _, err := v.api.CreateOrUpdateTask(context.Background(), v.session.Token, input); err != nil {
			return taskMutationFailedMsg{err: err}
		}
		return taskMutatedMsg{}
	}
}

// quickAssign sends a partial update carrying only the assignee.
func (v *TaskConsoleView) quickAssign(taskID, email string) tea.Cmd {
	input := api.TaskInput{ID: &taskID, AssigneeEmail: &email}
	return func() tea.Msg {
		if _, err := v.api.CreateOrUpdateTask(context.Background(), v.session.Token, input); err != nil {
			return taskMutationFailedMsg{err: err}
		}
		return taskMutatedMsg{}
	}
}

// quickStatus sends a partial update carrying only the status. The
// value comes from the closed selection, never free-form input.
func (v *TaskConsoleView) quickStatus(taskID string, status models.TaskStatus) tea.Cmd {
	value := string(status)
	input := api.TaskInput{ID: &taskID, Status: &value}
	return func() tea.Msg {
		if _, err := v.api.CreateOrUpdateTask(context.Background(), v.session.Token, input); err != nil {
			return taskMutationFailedMsg{err: err}
		}
		return taskMutatedMsg{}
	}
}

// addComment submits the pending comment for taskID. Author identity
// is never collected; the server receives a null author.
func (v *TaskConsoleView) addComment(taskID string) tea.Cmd {
	content := strings.TrimSpace(v.commentDrafts[taskID])
	if content == "" {
		v.actionErr = "enter a comment"
		return nil
	}
	v.actionErr = ""
	return func() tea.Msg {
		if _, err := v.api.AddComment(context.Background(), v.session.Token, taskID, content); err != nil {
			return taskMutationFailedMsg{err: err}
		}
		return commentAddedMsg{taskID: taskID}
	}
}

func (v *TaskConsoleView) selectedTask() (models.Task, bool) {
	if len(v.tasks) == 0 || v.cursor >= len(v.tasks) {
		return models.Task{}, false
	}
	return v.tasks[v.cursor], true
}

func (v *TaskConsoleView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(v.width)
		v.commentInput.SetWidth(clamp(contentWidth-10, 20, 50))
		return v, nil

	case taskListRefreshedMsg:
		// Derive this project's tasks from the fresh collection. A
		// project missing from the new result renders as empty.
		v.tasks = nil
		for _, project := range msg.projects {
			if project.ID == v.projectID {
				v.tasks = project.Tasks
				v.projectName = project.Name
				break
			}
		}
		if v.cursor >= len(v.tasks) {
			v.cursor = max(0, len(v.tasks)-1)
		}
		v.loaded = true
		v.loadErr = ""
		return v, nil

	case taskListFailedMsg:
		// A failed refresh keeps whatever rows are already shown; the
		// error renders inline where list errors always render.
		v.loadErr = msg.err.Error()
		v.loaded = true
		return v, nil

	case taskMutatedMsg:
		if v.creating {
			v.resetNewDraft()
			v.creating = false
		}
		if v.editing {
			delete(v.edits, v.editTaskID)
			v.editing = false
		}
		if v.assigning {
			v.assigning = false
			v.assignInput.Blur()
		}
		v.statusPicking = false
		v.actionErr = ""
		return v, v.loadTasks

	case taskMutationFailedMsg:
		v.actionErr = msg.err.Error()
		return v, nil

	case commentAddedMsg:
		delete(v.commentDrafts, msg.taskID)
		delete(v.commentOpen, msg.taskID)
		v.commentInput.Reset()
		v.commentInput.Blur()
		return v, v.loadTasks

	case tea.KeyMsg:
		if v.creating {
			return v.updateCreating(msg)
		}
		if v.editing {
			return v.updateEditing(msg)
		}
		if v.assigning {
			return v.updateAssigning(msg)
		}
		if v.statusPicking {
			return v.updateStatusPicking(msg)
		}
		if v.viewingTask {
			return v.updateViewingTask(msg)
		}
		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *TaskConsoleView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Back):
		return v, func() tea.Msg { return BackToProjects{} }

	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(v.tasks)-1 {
			v.cursor++
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if task, ok := v.selectedTask(); ok {
			v.viewingTask = true
			if v.commentOpen[task.ID] {
				v.commentInput.SetValue(v.commentDrafts[task.ID])
				v.commentInput.Focus()
			}
		}
		return v, nil

	case key.Matches(msg, v.keys.New):
		v.creating = true
		v.newFocusIdx = 0
		v.actionErr = ""
		v.updateNewFocus()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Edit):
		if task, ok := v.selectedTask(); ok {
			v.startEditTask(task)
			return v, textinput.Blink
		}
		return v, nil

	case key.Matches(msg, v.keys.Assign):
		if task, ok := v.selectedTask(); ok {
			v.assigning = true
			v.actionErr = ""
			v.assignInput.SetValue(v.currentDraft(task).assigneeEmail)
			v.assignInput.CursorEnd()
			v.assignInput.Focus()
			return v, textinput.Blink
		}
		return v, nil

	case key.Matches(msg, v.keys.Status):
		if task, ok := v.selectedTask(); ok {
			v.statusPicking = true
			v.actionErr = ""
			v.statusCursor = statusIndex(v.currentDraft(task).status)
			return v, nil
		}
		return v, nil

	case key.Matches(msg, v.keys.Refresh):
		return v, v.loadTasks
	}

	return v, nil
}

// currentDraft returns the pending edit draft for a task, falling back
// to the task's server values when none exists.
func (v *TaskConsoleView) currentDraft(task models.Task) taskDraft {
	if draft, ok := v.edits[task.ID]; ok {
		return draft
	}
	return draftFromTask(task)
}

// statusIndex maps a status string onto the closed selection, falling
// back to Pending for anything unknown or absent.
func statusIndex(status string) int {
	for i, s := range models.TaskStatuses() {
		if string(s) == status {
			return i
		}
	}
	return 0
}

func (v *TaskConsoleView) resetNewDraft() {
	v.newTitle.Reset()
	v.newDesc.Reset()
	v.newAssignee.Reset()
	v.newDue.Reset()
	v.newStatusIdx = 0
}

func (v *TaskConsoleView) updateCreating(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	statuses := models.TaskStatuses()

	switch {
	case key.Matches(msg, v.keys.Back):
		v.creating = false
		return v, nil

	case msg.String() == "ctrl+s":
		return v, v.addTask()

	case msg.String() == "shift+tab":
		v.newFocusIdx = (v.newFocusIdx + 5) % 6
		v.updateNewFocus()
		return v, nil

	case key.Matches(msg, v.keys.Tab):
		v.newFocusIdx = (v.newFocusIdx + 1) % 6
		v.updateNewFocus()
		return v, nil

	case key.Matches(msg, v.keys.Up):
		if v.newFocusIdx == 4 && v.newStatusIdx > 0 {
			v.newStatusIdx--
			return v, nil
		}

	case key.Matches(msg, v.keys.Down):
		if v.newFocusIdx == 4 && v.newStatusIdx < len(statuses)-1 {
			v.newStatusIdx++
			return v, nil
		}

	case key.Matches(msg, v.keys.Enter):
		if v.newFocusIdx < 5 {
			v.newFocusIdx++
			v.updateNewFocus()
			return v, nil
		}
		return v, v.addTask()
	}

	var cmd tea.Cmd
	switch v.newFocusIdx {
	case 0:
		v.newTitle, cmd = v.newTitle.Update(msg)
	case 1:
		v.newDesc, cmd = v.newDesc.Update(msg)
	case 2:
		v.newAssignee, cmd = v.newAssignee.Update(msg)
	case 3:
		v.newDue, cmd = v.newDue.Update(msg)
	}
	return v, cmd
}

func (v *TaskConsoleView) updateNewFocus() {
	v.newTitle.Blur()
	v.newDesc.Blur()
	v.newAssignee.Blur()
	v.newDue.Blur()
	switch v.newFocusIdx {
	case 0:
		v.newTitle.Focus()
	case 1:
		v.newDesc.Focus()
	case 2:
		v.newAssignee.Focus()
	case 3:
		v.newDue.Focus()
	}
}

func (v *TaskConsoleView) startEditTask(task models.Task) {
	draft := v.currentDraft(task)
	v.editing = true
	v.editTaskID = task.ID
	v.editFocusIdx = 0
	v.actionErr = ""
	v.editTitle.SetValue(draft.title)
	v.editDesc.SetValue(draft.description)
	v.editAssignee.SetValue(draft.assigneeEmail)
	v.editDue.SetValue(draft.dueDate)
	v.editStatusIdx = statusIndex(draft.status)
	v.updateEditFocus()
}

// stashEdit captures the edit inputs as the task's pending draft.
func (v *TaskConsoleView) stashEdit() {
	v.edits[v.editTaskID] = taskDraft{
		title:         v.editTitle.Value(),
		description:   v.editDesc.Value(),
		status:        string(models.TaskStatuses()[v.editStatusIdx]),
		assigneeEmail: v.editAssignee.Value(),
		dueDate:       v.editDue.Value(),
	}
}

func (v *TaskConsoleView) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	statuses := models.TaskStatuses()

	switch {
	case key.Matches(msg, v.keys.Back):
		// Closing keeps the in-progress draft; reopening resumes it.
		v.stashEdit()
		v.editing = false
		return v, nil

	case msg.String() == "ctrl+s":
		v.stashEdit()
		return v, v.saveTaskEdits(v.editTaskID)

	case msg.String() == "shift+tab":
		v.editFocusIdx = (v.editFocusIdx + 5) % 6
		v.updateEditFocus()
		return v, nil

	case key.Matches(msg, v.keys.Tab):
		v.editFocusIdx = (v.editFocusIdx + 1) % 6
		v.updateEditFocus()
		return v, nil

	case key.Matches(msg, v.keys.Up):
		if v.editFocusIdx == 4 && v.editStatusIdx > 0 {
			v.editStatusIdx--
			return v, nil
		}

	case key.Matches(msg, v.keys.Down):
		if v.editFocusIdx == 4 && v.editStatusIdx < len(statuses)-1 {
			v.editStatusIdx++
			return v, nil
		}

	case key.Matches(msg, v.keys.Enter):
		if v.editFocusIdx < 5 {
			v.editFocusIdx++
			v.updateEditFocus()
			return v, nil
		}
		v.stashEdit()
		return v, v.saveTaskEdits(v.editTaskID)
	}

	var cmd tea.Cmd
	switch v.editFocusIdx {
	case 0:
		v.editTitle, cmd = v.editTitle.Update(msg)
	case 1:
		v.editDesc, cmd = v.editDesc.Update(msg)
	case 2:
		v.editAssignee, cmd = v.editAssignee.Update(msg)
	case 3:
		v.editDue, cmd = v.editDue.Update(msg)
	}
	return v, cmd
}

func (v *TaskConsoleView) updateEditFocus() {
	v.editTitle.Blur()
	v.editDesc.Blur()
	v.editAssignee.Blur()
	v.editDue.Blur()
	switch v.editFocusIdx {
	case 0:
		v.editTitle.Focus()
	case 1:
		v.editDesc.Focus()
	case 2:
		v.editAssignee.Focus()
	case 3:
		v.editDue.Focus()
	}
}

func (v *TaskConsoleView) updateAssigning(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.assigning = false
		v.assignInput.Blur()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		task, ok := v.selectedTask()
		if !ok {
			v.assigning = false
			return v, nil
		}
		return v, v.quickAssign(task.ID, v.assignInput.Value())
	}

	var cmd tea.Cmd
	v.assignInput, cmd = v.assignInput.Update(msg)
	return v, cmd
}

func (v *TaskConsoleView) updateStatusPicking(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	statuses := models.TaskStatuses()

	switch {
	case key.Matches(msg, v.keys.Back):
		v.statusPicking = false
		return v, nil

	case key.Matches(msg, v.keys.Up):
		if v.statusCursor > 0 {
			v.statusCursor--
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.statusCursor < len(statuses)-1 {
			v.statusCursor++
		}
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		task, ok := v.selectedTask()
		if !ok {
			v.statusPicking = false
			return v, nil
		}
		return v, v.quickStatus(task.ID, statuses[v.statusCursor])
	}

	return v, nil
}

func (v *TaskConsoleView) updateViewingTask(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	task, ok := v.selectedTask()
	if !ok {
		v.viewingTask = false
		return v, nil
	}

	if v.commentOpen[task.ID] && v.commentInput.Focused() {
		switch {
		case key.Matches(msg, v.keys.Back):
			// Closing keeps the draft for later.
			v.commentDrafts[task.ID] = v.commentInput.Value()
			v.commentOpen[task.ID] = false
			v.commentInput.Blur()
			return v, nil
		case msg.String() == "ctrl+s":
			v.commentDrafts[task.ID] = v.commentInput.Value()
			return v, v.addComment(task.ID)
		default:
			var cmd tea.Cmd
			v.commentInput, cmd = v.commentInput.Update(msg)
			return v, cmd
		}
	}

	switch {
	case key.Matches(msg, v.keys.Back):
		v.viewingTask = false
		return v, nil
	case key.Matches(msg, v.keys.Edit):
		v.viewingTask = false
		v.startEditTask(task)
		return v, textinput.Blink
	case key.Matches(msg, v.keys.Comment):
		v.commentOpen[task.ID] = true
		v.commentInput.SetValue(v.commentDrafts[task.ID])
		v.commentInput.Focus()
		return v, textarea.Blink
	case key.Matches(msg, v.keys.Assign):
		v.viewingTask = false
		v.assigning = true
		v.assignInput.SetValue(v.currentDraft(task).assigneeEmail)
		v.assignInput.CursorEnd()
		v.assignInput.Focus()
		return v, textinput.Blink
	case key.Matches(msg, v.keys.Status):
		v.viewingTask = false
		v.statusPicking = true
		v.statusCursor = statusIndex(v.currentDraft(task).status)
		return v, nil
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit
	}
	return v, nil
}

func (v *TaskConsoleView) ensureVisible() {
	// Each task item is 2 lines + 1 margin = 3 lines
	availableHeight := v.height - 12
	if availableHeight < 3 {
		availableHeight = 3
	}
	visibleItems := availableHeight / 3
	if visibleItems < 1 {
		visibleItems = 1
	}

	if v.cursor < v.scrollY {
		v.scrollY = v.cursor
	} else if v.cursor >= v.scrollY+visibleItems {
		v.scrollY = v.cursor - visibleItems + 1
	}
}

// View renders the view
func (v *TaskConsoleView) View() string {
	if v.creating {
		return v.renderNewForm()
	}
	if v.editing {
		return v.renderEditForm()
	}
	if v.assigning {
		return v.renderAssignPrompt()
	}
	if v.statusPicking {
		return v.renderStatusPicker()
	}
	if v.viewingTask {
		return v.renderTaskView()
	}

	s := v.styles
	var b strings.Builder

	b.WriteString(s.Title.Render("Tasks for: " + v.projectName))
	b.WriteString("\n\n")

	switch {
	case !v.loaded:
		b.WriteString(s.TitleMuted.Render("Loading tasks..."))
	case v.loadErr != "":
		b.WriteString(s.ErrorBanner.Render("Error loading tasks: " + v.loadErr))
		if len(v.tasks) > 0 {
			b.WriteString("\n\n")
			b.WriteString(v.renderTaskList())
		}
	default:
		b.WriteString(v.renderTaskList())
	}

	if v.actionErr != "" {
		b.WriteString("\n")
		b.WriteString(s.ErrorText.Render(v.actionErr))
	}

	b.WriteString("\n")
	b.WriteString(v.renderHelp())

	padded := lipgloss.NewStyle().Padding(1, 2).Render(b.String())
	return styles.CenterView(padded, v.width, v.height)
}

func (v *TaskConsoleView) renderTaskList() string {
	s := v.styles

	if len(v.tasks) == 0 {
		return s.TitleMuted.Render("No tasks. Press 'n' to create one.")
	}

	availableHeight := v.height - 12
	if availableHeight < 3 {
		availableHeight = 3
	}
	visibleItems := availableHeight / 3
	if visibleItems < 1 {
		visibleItems = 1
	}

	var items []string
	endIdx := min(v.scrollY+visibleItems, len(v.tasks))

	for i := v.scrollY; i < endIdx; i++ {
		items = append(items, v.renderTaskItem(v.tasks[i], i == v.cursor))
	}

	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

func (v *TaskConsoleView) renderTaskItem(task models.Task, selected bool) string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	width := max(contentWidth-4, 20)

	badge := s.TaskStatus(task.Status).Render(task.Status)
	titleLine := task.Title + "  " + badge
	if task.DueDate != "" {
		titleLine += "  due " + models.DateOnly(task.DueDate)
	}
	if _, dirty := v.edits[task.ID]; dirty {
		titleLine += "  " + s.TitleMuted.Render("(unsaved edits)")
	}

	assignee := task.AssigneeEmail
	if assignee == "" {
		assignee = "unassigned"
	}
	detailLine := assignee
	if n := len(task.Comments); n == 1 {
		detailLine += " · 1 comment"
	} else if n > 1 {
		detailLine += fmt.Sprintf(" · %d comments", n)
	}

	var titleStyle, detailStyle lipgloss.Style
	if selected {
		titleStyle = s.ListSelected.Width(width)
		detailStyle = s.ListSelected.Width(width)
	} else {
		titleStyle = s.ListItem.Width(width)
		detailStyle = s.ListItem.Width(width)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(titleLine),
		detailStyle.Foreground(styles.Current.ForegroundDim).Render(detailLine),
	) + "\n"
}

func (v *TaskConsoleView) renderStatusOptions(cursor int, focused bool) string {
	s := v.styles
	var items []string
	for i, status := range models.TaskStatuses() {
		marker := "( )"
		if i == cursor {
			marker = "(•)"
		}
		line := marker + " " + string(status)
		if focused && i == cursor {
			items = append(items, s.ListSelected.Render(line))
		} else {
			items = append(items, s.ListItem.Render(line))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

func (v *TaskConsoleView) renderNewForm() string {
	return v.renderTaskForm("New Task",
		v.newTitle, v.newDesc, v.newAssignee, v.newDue,
		v.newStatusIdx, v.newFocusIdx)
}

func (v *TaskConsoleView) renderEditForm() string {
	return v.renderTaskForm("Edit Task",
		v.editTitle, v.editDesc, v.editAssignee, v.editDue,
		v.editStatusIdx, v.editFocusIdx)
}

func (v *TaskConsoleView) renderTaskForm(formTitle string, title, desc, assignee, due textinput.Model, statusIdx, focusIdx int) string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	titleStyle := s.Input
	descStyle := s.Input
	assigneeStyle := s.Input
	dueStyle := s.Input
	statusStyle := s.Input
	btnStyle := s.Button

	switch focusIdx {
	case 0:
		titleStyle = s.InputFocused
	case 1:
		descStyle = s.InputFocused
	case 2:
		assigneeStyle = s.InputFocused
	case 3:
		dueStyle = s.InputFocused
	case 4:
		statusStyle = s.InputFocused
	case 5:
		btnStyle = s.ButtonFocused
	}

	inputWidth := clamp(contentWidth-6, 20, 50)

	parts := []string{
		s.Title.Render(formTitle),
		"",
		"Title:",
		titleStyle.Width(inputWidth).Render(title.View()),
		"",
		"Description:",
		descStyle.Width(inputWidth).Render(desc.View()),
		"",
		"Assignee:",
		assigneeStyle.Width(inputWidth).Render(assignee.View()),
		"",
		"Due date:",
		dueStyle.Width(inputWidth).Render(due.View()),
		"",
		"Status:",
		statusStyle.Width(inputWidth).Render(v.renderStatusOptions(statusIdx, focusIdx == 4)),
		"",
		btnStyle.Render(" Save "),
	}
	if v.actionErr != "" {
		parts = append(parts, "", s.ErrorText.Width(inputWidth).Render(v.actionErr))
	}
	parts = append(parts, "", s.TitleMuted.Render("Tab: next • ↑↓: status • Ctrl+S: save • Esc: cancel"))

	form := lipgloss.JoinVertical(lipgloss.Left, parts...)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskConsoleView) renderAssignPrompt() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	task, _ := v.selectedTask()
	inputWidth := clamp(contentWidth-10, 20, 40)

	parts := []string{
		s.Title.Render("Assign: " + task.Title),
		"",
		s.InputFocused.Width(inputWidth).Render(v.assignInput.View()),
	}
	if v.actionErr != "" {
		parts = append(parts, "", s.ErrorText.Width(inputWidth).Render(v.actionErr))
	}
	parts = append(parts, "", s.TitleMuted.Render("↵: save • Esc: cancel"))

	content := s.Panel.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskConsoleView) renderStatusPicker() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	task, _ := v.selectedTask()

	parts := []string{
		s.Title.Render("Status: " + task.Title),
		"",
		v.renderStatusOptions(v.statusCursor, true),
	}
	if v.actionErr != "" {
		parts = append(parts, "", s.ErrorText.Render(v.actionErr))
	}
	parts = append(parts, "", s.TitleMuted.Render("↑↓: select • ↵: save • Esc: cancel"))

	content := s.Panel.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskConsoleView) renderTaskView() string {
	task, ok := v.selectedTask()
	if !ok {
		return ""
	}

	s := v.styles
	maxContentWidth := styles.ContentWidth(v.width)
	textWidth := clamp(maxContentWidth-10, 20, 70)
	labelStyle := s.TitleMuted

	descText := task.Description
	if descText == "" {
		descText = s.TitleMuted.Render("No description")
	}

	assigneeText := task.AssigneeEmail
	if assigneeText == "" {
		assigneeText = s.TitleMuted.Render("Unassigned")
	}

	dueText := models.DateOnly(task.DueDate)
	if dueText == "" {
		dueText = s.TitleMuted.Render("No due date")
	}

	var commentsContent string
	if len(task.Comments) == 0 {
		commentsContent = s.TitleMuted.Render("No comments yet")
	} else {
		var commentLines []string
		for _, comment := range task.Comments {
			author := comment.AuthorEmail
			if author == "" {
				author = "Anonymous"
			}
			header := fmt.Sprintf("%s (%s)", author, models.DisplayTime(comment.Timestamp))
			commentLines = append(commentLines, lipgloss.JoinVertical(lipgloss.Left,
				labelStyle.Render(header),
				lipgloss.NewStyle().Width(textWidth).Render(comment.Content),
			))
		}
		commentsContent = lipgloss.JoinVertical(lipgloss.Left, commentLines...)
	}

	parts := []string{
		s.Title.MarginBottom(1).Render(task.Title),
		"",
		labelStyle.Render("Status"),
		s.TaskStatus(task.Status).Render(task.Status),
		"",
		labelStyle.Render("Assignee"),
		assigneeText,
		"",
		labelStyle.Render("Due date"),
		dueText,
		"",
		labelStyle.Render("Description"),
		lipgloss.NewStyle().Width(textWidth).Render(descText),
		"",
		labelStyle.Render("Comments"),
		commentsContent,
	}

	if v.commentOpen[task.ID] {
		parts = append(parts, "", s.InputFocused.Render(v.commentInput.View()))
		if v.actionErr != "" {
			parts = append(parts, s.ErrorText.Render(v.actionErr))
		}
		parts = append(parts, "", s.Help.Render(
			fmt.Sprintf("%s post • %s cancel",
				s.HelpKey.Render("ctrl+s"),
				s.HelpKey.Render("esc"),
			),
		))
	} else {
		parts = append(parts, "", s.Help.Render(
			fmt.Sprintf("%s edit • %s assign • %s status • %s comment • %s back",
				s.HelpKey.Render("e"),
				s.HelpKey.Render("a"),
				s.HelpKey.Render("s"),
				s.HelpKey.Render("c"),
				s.HelpKey.Render("esc"),
			),
		))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, parts...)
	padded := lipgloss.NewStyle().Padding(1, 2).Render(content)
	return styles.CenterView(padded, v.width, v.height)
}

func (v *TaskConsoleView) renderHelp() string {
	return v.styles.Help.Render(
		fmt.Sprintf("%s view • %s new • %s edit • %s assign • %s status • %s refresh • %s back • %s quit",
			v.styles.HelpKey.Render("↵"),
			v.styles.HelpKey.Render("n"),
			v.styles.HelpKey.Render("e"),
			v.styles.HelpKey.Render("a"),
			v.styles.HelpKey.Render("s"),
			v.styles.HelpKey.Render("r"),
			v.styles.HelpKey.Render("esc"),
			v.styles.HelpKey.Render("q"),
		),
	)
}
