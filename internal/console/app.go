package console

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/rileyhilliard/fieldmon/internal/config"
	"github.com/rileyhilliard/fieldmon/internal/logger"
	"github.com/rileyhilliard/fieldmon/internal/monitor"
	"github.com/rileyhilliard/fieldmon/internal/nav"
	"github.com/rileyhilliard/fieldmon/internal/service"
	"github.com/rileyhilliard/fieldmon/internal/session"
)

// view is a page as the App drives it: the activation contract plus
// rendering and input.
type view interface {
	nav.Page
	Title() string
	Hints() string
	Update(msg tea.Msg) tea.Cmd
	View(width, height int) string
}

// inputCapturer is implemented by pages that own the keyboard while a
// form is open. Only esc and ctrl+c stay global for them.
type inputCapturer interface {
	CapturesInput() bool
}

// clicker is implemented by pages with touch zones.
type clicker interface {
	Click(id string) tea.Cmd
}

// Options configures New.
type Options struct {
	Config   *config.Config
	Services *service.Services
	Logger   logger.Logger
	// Zones enables touch hit testing. Nil disables it.
	Zones *zone.Manager
	Now   func() time.Time
}

// App is the root Bubble Tea model.
type App struct {
	cfg     *config.Config
	svc     *service.Services
	log     logger.Logger
	now     func() time.Time
	clock   *teaClock
	nav     *nav.Controller
	session *session.Session
	coord   *monitor.Coordinator
	history *monitor.History
	zones   *zone.Manager
	pages   map[nav.PageID]view

	width, height  int
	panelW, panelH int

	showHelp bool
	toast    *toast
	confirm  *confirmDialog
	marked   []string
	pending  []tea.Cmd
	quitting bool

	idleAfter  time.Duration
	idleHandle session.Handle
	lastInput  time.Time

	unsubscribe func()
}

// New wires the controller, the polling session and every page, and
// activates Home.
func New(opts Options) *App {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	log := opts.Logger
	if log == nil {
		log = logger.Noop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	svc := opts.Services
	if svc == nil {
		svc = service.New(cfg, "dev", log)
	}

	a := &App{
		cfg:     cfg,
		svc:     svc,
		log:     log,
		now:     now,
		clock:   newTeaClock(),
		history: monitor.NewHistory(service.HistoryLen),
		zones:   opts.Zones,
		panelW:  cfg.Console.Width,
		panelH:  cfg.Console.Height,
		pages:   make(map[nav.PageID]view),
	}
	a.idleAfter = cfg.Console.IdleHomeDuration()
	a.lastInput = now()

	a.session = session.New(svc.Modbus, a.clock, log)
	a.coord = monitor.NewCoordinator(a.session, log)
	a.unsubscribe = a.session.Subscribe(a.onSessionUpdate)

	registry := nav.NewRegistry()
	for id, v := range map[nav.PageID]view{
		nav.Home:         newHomePage(a),
		nav.DeviceList:   newDeviceListPage(a),
		nav.DeviceConfig: newDeviceConfigPage(a),
		nav.Monitor:      newMonitorPage(a),
		nav.DataDetail:   newDetailPage(a),
		nav.AlarmCenter:  newAlarmPage(a),
		nav.AlarmRule:    newAlarmRulePage(a),
		nav.Settings:     newSettingsPage(a),
		nav.Network:      newNetworkPage(a),
		nav.MqttConfig:   newMqttPage(a),
		nav.Log:          newLogPage(a),
		nav.Help:         newHelpPage(a),
	} {
		a.pages[id] = v
		registry.MustRegister(id, v)
	}
	a.nav = nav.NewController(registry, log)
	a.nav.OnPageChanged(func(nav.PageID) {
		a.showHelp = false
		a.confirm = nil
	})
	a.nav.Start()

	if a.idleAfter > 0 {
		a.idleHandle = a.clock.Start(idleCheckInterval, a.checkIdle)
	}
	return a
}

const idleCheckInterval = time.Second

// Init returns the commands queued while wiring (page timers, form init).
func (a *App) Init() tea.Cmd {
	return a.flush()
}

// Update routes one message. Clock ticks run their callbacks here, so page
// code never races the program goroutine.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
	case clockTickMsg:
		a.clock.deliver(msg)
	case tea.KeyMsg:
		a.lastInput = a.now()
		cmd = a.handleKey(msg)
	case tea.MouseMsg:
		if msg.Action == tea.MouseActionRelease && msg.Button == tea.MouseButtonLeft {
			a.lastInput = a.now()
			cmd = a.handleMouse(msg)
		}
	case mqttConnectMsg:
		if m, ok := a.pages[nav.MqttConfig].(*mqttPage); ok {
			m.onConnect(msg)
		}
	case publishResultMsg:
		if !msg.result.IsSuccess() {
			a.log.Warn("publish readings: %s (code %d)", msg.result.Message, msg.result.Code)
		}
	default:
		cmd = a.current().Update(msg)
	}
	if a.quitting {
		return a, tea.Quit
	}
	return a, tea.Batch(cmd, a.flush())
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, keys.Quit) {
		a.shutdown()
		return nil
	}
	if a.confirm != nil {
		a.answerConfirm(msg.String())
		return nil
	}
	if a.showHelp {
		if key.Matches(msg, keys.Help, keys.Back) {
			a.showHelp = false
		}
		return nil
	}

	v := a.current()
	capturing := false
	if c, ok := v.(inputCapturer); ok {
		capturing = c.CapturesInput()
	}
	if capturing {
		if msg.Type == tea.KeyEsc {
			a.nav.GoBack()
			return nil
		}
		return v.Update(msg)
	}

	switch {
	case key.Matches(msg, keys.Back):
		a.nav.GoBack()
		return nil
	case key.Matches(msg, keys.Help):
		a.showHelp = true
		return nil
	case key.Matches(msg, keys.QuitHome) && a.nav.Current() == nav.Home:
		a.shutdown()
		return nil
	}
	return v.Update(msg)
}

func (a *App) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if a.zones == nil {
		return nil
	}
	for _, id := range a.marked {
		if z := a.zones.Get(id); z != nil && z.InBounds(msg) {
			return a.click(id)
		}
	}
	return nil
}

// click dispatches a touch on zone id.
func (a *App) click(id string) tea.Cmd {
	switch id {
	case zoneBack:
		a.nav.GoBack()
		return nil
	case zoneHome:
		a.nav.NavigateTo(nav.Home, nil)
		return nil
	case zoneConfirmYes:
		a.answerConfirm("y")
		return nil
	case zoneConfirmNo:
		a.answerConfirm("n")
		return nil
	case zoneHelpClose:
		a.showHelp = false
		return nil
	}
	if a.confirm != nil || a.showHelp {
		return nil
	}
	if c, ok := a.current().(clicker); ok {
		return c.Click(id)
	}
	return nil
}

// Global zone ids.
const (
	zoneBack       = "nav:back"
	zoneHome       = "nav:home"
	zoneConfirmYes = "confirm:yes"
	zoneConfirmNo  = "confirm:no"
	zoneHelpClose  = "help:close"
)

// mark wraps s in touch zone id for the current frame.
func (a *App) mark(id, s string) string {
	if a.zones == nil {
		return s
	}
	a.marked = append(a.marked, id)
	return a.zones.Mark(id, s)
}

// queue hands cmd to the runtime at the end of the current Update.
func (a *App) queue(cmd tea.Cmd) {
	if cmd != nil {
		a.pending = append(a.pending, cmd)
	}
}

func (a *App) flush() tea.Cmd {
	cmds := append(a.pending, a.clock.drain()...)
	a.pending = nil
	return tea.Batch(cmds...)
}

func (a *App) current() view {
	return a.pages[a.nav.Current()]
}

// Current returns the visible page.
func (a *App) Current() nav.PageID {
	return a.nav.Current()
}

// Quitting reports whether the console has shut down.
func (a *App) Quitting() bool {
	return a.quitting
}

func (a *App) shutdown() {
	a.session.StopSession()
	a.unsubscribe()
	if a.idleHandle != 0 {
		a.clock.Cancel(a.idleHandle)
	}
	a.quitting = true
	a.log.Debug("console shutting down from %s", a.nav.Current())
}

// checkIdle returns the panel to Home after the configured quiet period.
func (a *App) checkIdle() {
	if a.nav.Current() == nav.Home || a.now().Sub(a.lastInput) < a.idleAfter {
		return
	}
	a.log.Info("no input for %s, returning to Home", a.idleAfter)
	a.nav.Reset()
}

// onSessionUpdate fans every polling update out to the trend history, the
// comm log, the MQTT uplink and the monitor page.
func (a *App) onSessionUpdate(u session.Update) {
	switch {
	case !u.Running:
		a.svc.System.Logf(service.LogComm, "Device %d: polling stopped", u.DeviceID)
	case u.Status == session.StatusOK:
		a.history.Push(u.DeviceID, u.Readings)
		a.svc.System.Logf(service.LogComm, "Device %d: read %d registers", u.DeviceID, len(u.Readings))
		if st := a.svc.Mqtt.Status(); st.IsSuccess() && st.Data.Connected {
			sid, dev, readings := u.SessionID, u.DeviceID, u.Readings
			a.queue(func() tea.Msg {
				return publishResultMsg{a.svc.Mqtt.PublishReadings(sid, dev, readings)}
			})
		}
	default:
		a.svc.System.Logf(service.LogComm, "Device %d: %s (code %d)", u.DeviceID, u.Message, u.Code)
	}
	if m, ok := a.pages[nav.Monitor].(*monitorPage); ok {
		m.onUpdate(u)
	}
}

type publishResultMsg struct {
	result service.Result[service.Empty]
}

// View renders the fixed-size panel, centered in the terminal.
func (a *App) View() string {
	if a.quitting {
		return ""
	}
	a.marked = a.marked[:0]

	innerW := a.panelW - 2
	innerH := a.panelH - 2
	bodyH := innerH - 2
	v := a.current()

	var body string
	switch {
	case a.confirm != nil:
		body = lipgloss.Place(innerW, bodyH, lipgloss.Center, lipgloss.Center, a.renderConfirm())
	case a.showHelp:
		body = lipgloss.Place(innerW, bodyH, lipgloss.Center, lipgloss.Center, a.renderHelpOverlay(v))
	default:
		body = v.View(innerW, bodyH)
	}
	body = lipgloss.NewStyle().Width(innerW).Height(bodyH).MaxHeight(bodyH).Render(body)

	panel := PanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		a.renderHeader(v, innerW),
		body,
		a.renderFooter(v, innerW),
	))

	out := panel
	if a.width > 0 && a.height > 0 {
		out = lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, panel,
			lipgloss.WithWhitespaceChars(" "),
			lipgloss.WithWhitespaceForeground(ColorDarkBg),
		)
	}
	if a.zones != nil {
		out = a.zones.Scan(out)
	}
	return out
}

func (a *App) renderHeader(v view, width int) string {
	left := AccentStyle.Render(v.Title())
	if a.nav.Depth() > 0 {
		left = a.mark(zoneBack, MutedStyle.Render("‹ ")) + left
	}

	led := MutedStyle.Render(LEDOff)
	if id, running := a.session.DeviceID(); running {
		style := OKStyle
		if a.session.LastStatus() == session.StatusError {
			style = ErrorStyle
		}
		led = style.Render(LEDOn) + MutedStyle.Render(" dev "+strconv.Itoa(id))
	}
	right := led + "  " + LabelStyle.Render(a.now().Format("15:04:05"))

	gap := width - 2 - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return HeaderStyle.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

func (a *App) renderFooter(v view, width int) string {
	if a.toast != nil {
		return FooterStyle.Width(width).MaxHeight(1).Render(a.toast.render())
	}
	hints := v.Hints()
	if hints != "" {
		hints += " · "
	}
	hints += "esc back · ? help"
	return FooterStyle.Width(width).MaxHeight(1).Render(hints)
}
