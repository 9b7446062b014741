package console

import (
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/rileyhilliard/fieldmon/internal/config"
	"github.com/rileyhilliard/fieldmon/internal/nav"
	"github.com/rileyhilliard/fieldmon/internal/service"
)

type ruleFields struct {
	timeout    string
	high       string
	low        string
	duration   string
	commAlarm  bool
	limitAlarm bool
}

func (f ruleFields) rules() config.AlarmRules {
	return config.AlarmRules{
		CommTimeoutMs: atoi(f.timeout),
		HighLimit:     atof(f.high),
		LowLimit:      atof(f.low),
		DurationSec:   atoi(f.duration),
		CommAlarm:     f.commAlarm,
		LimitAlarm:    f.limitAlarm,
	}
}

// alarmRulePage edits the stored alarm thresholds.
type alarmRulePage struct {
	app    *App
	fields ruleFields
	host   formHost
}

func newAlarmRulePage(a *App) *alarmRulePage {
	return &alarmRulePage{app: a}
}

func (p *alarmRulePage) Title() string { return "Alarm Rules" }

func (p *alarmRulePage) Hints() string { return "tab next · enter save" }

func (p *alarmRulePage) CapturesInput() bool { return p.host.active() }

func (p *alarmRulePage) Activate(nav.Param) {
	r := p.app.svc.Alarms.LoadRules().Data
	p.fields = ruleFields{
		timeout:    strconv.Itoa(r.CommTimeoutMs),
		high:       strconv.FormatFloat(r.HighLimit, 'f', -1, 64),
		low:        strconv.FormatFloat(r.LowLimit, 'f', -1, 64),
		duration:   strconv.Itoa(r.DurationSec),
		commAlarm:  r.CommAlarm,
		limitAlarm: r.LimitAlarm,
	}
	p.openForm()
}

func (p *alarmRulePage) Deactivate() {
	p.host.close()
}

func (p *alarmRulePage) openForm() {
	p.app.queue(p.host.open(p.app.panelW-4,
		huh.NewGroup(
			huh.NewInput().Title("Comm timeout (ms)").Value(&p.fields.timeout).
				Validate(intField("Timeout", 100, 600000)),
			huh.NewInput().Title("High limit").Value(&p.fields.high).Validate(floatField("High limit")),
			huh.NewInput().Title("Low limit").Value(&p.fields.low).Validate(floatField("Low limit")),
			huh.NewInput().Title("Duration (s)").Value(&p.fields.duration).
				Validate(intField("Duration", 0, 3600)),
		),
		huh.NewGroup(
			huh.NewConfirm().Title("Communication alarm").Value(&p.fields.commAlarm),
			huh.NewConfirm().Title("Limit alarm").Value(&p.fields.limitAlarm),
		),
	))
}

func (p *alarmRulePage) Update(msg tea.Msg) tea.Cmd {
	cmd, submitted := p.host.update(msg)
	if submitted {
		p.submit()
	}
	return cmd
}

func (p *alarmRulePage) submit() {
	if r := p.app.svc.Alarms.SaveRules(p.fields.rules()); !r.IsSuccess() {
		p.app.notify(toastError, "%s", r.Message)
		p.openForm()
		return
	}
	p.app.svc.System.Logf(service.LogSystem, "Alarm rules updated")
	p.app.notify(toastSuccess, "Alarm rules saved")
	p.app.nav.GoBack()
}

func (p *alarmRulePage) View(width, height int) string {
	return p.host.view()
}
