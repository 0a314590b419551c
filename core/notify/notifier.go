// Package notify derives the live "current/next" indicator and one-shot
// change alerts from the resolved schedule, on fixed cadences.
package notify

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/grade"
	"github.com/trezcool/ratiba/core/schedule"
)

var nowFunc = time.Now // mockable

// Status is the human-facing snapshot of the day for a notification surface.
type Status struct {
	CurrentText string `json:"current_text"`
	NextText    string `json:"next_text"`
	// Progress of the current slot, 0–100. Zero when nothing is running.
	Progress int       `json:"progress"`
	At       time.Time `json:"at"`
}

// Notifier runs two independent timer-driven loops: a display-refresh tick
// producing Status values and a slower change-detection tick producing
// Alerts. Ticks never overlap themselves; each runs to completion, bounded
// by a timeout, before the next is scheduled.
type Notifier struct {
	sched  *schedule.Service
	grades grade.Repository
	mail   core.EmailService
	logger core.Logger
	conf   *core.Config

	detector changeDetector
	status   chan Status
	alerts   chan Alert
}

func NewNotifier(
	sched *schedule.Service,
	grades grade.Repository,
	mailSvc core.EmailService,
	logger core.Logger,
	conf *core.Config,
) *Notifier {
	return &Notifier{
		sched:  sched,
		grades: grades,
		mail:   mailSvc,
		logger: logger,
		conf:   conf,
		status: make(chan Status, 1),
		alerts: make(chan Alert, 32),
	}
}

// Status delivers the latest snapshot; a slow consumer only ever sees the
// newest one.
func (n *Notifier) Status() <-chan Status { return n.status }

// Alerts delivers one-shot change notifications raised after Run started.
func (n *Notifier) Alerts() <-chan Alert { return n.alerts }

// Run blocks until ctx is cancelled. Both periodic loops stop with it; no
// background work survives the owning caller.
func (n *Notifier) Run(ctx context.Context) {
	statusTicker := time.NewTicker(n.conf.Notifier.StatusInterval)
	defer statusTicker.Stop()
	changeTicker := time.NewTicker(n.conf.Notifier.ChangeInterval)
	defer changeTicker.Stop()

	// immediate first pass: publish a status and prime the change baseline
	n.statusTick(ctx)
	n.changeTick(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-statusTicker.C:
			n.statusTick(ctx)
		case <-changeTicker.C:
			n.changeTick(ctx)
		}
	}
}

func (n *Notifier) statusTick(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, n.conf.Notifier.TickTimeout)
	defer cancel()

	now := nowFunc()
	slots, err := n.sched.ResolveDay(now, now)
	if err != nil {
		n.logger.Error("resolving day", err)
		return
	}
	if ctx.Err() != nil {
		return // over time; a fresher tick is already due
	}
	st := StatusOf(slots, now)

	// replace any stale unconsumed status
	select {
	case n.status <- st:
	default:
		select {
		case <-n.status:
		default:
		}
		n.status <- st
	}
}

func (n *Notifier) changeTick(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, n.conf.Notifier.TickTimeout)
	defer cancel()

	cancellations, err := n.sched.QueryAllCancellations()
	if err != nil {
		n.logger.Error("querying cancellations", err)
		return
	}
	grades, err := n.grades.QueryAllGrades()
	if err != nil {
		n.logger.Error("querying grades", err)
		return
	}
	if ctx.Err() != nil {
		return
	}

	alerts := n.detector.detect(nowFunc(), cancellations, grades)
	if len(alerts) == 0 {
		return
	}
	for _, a := range alerts {
		select {
		case n.alerts <- a:
		default:
			n.logger.Warn("alert channel full, dropping alert", a.Text)
		}
	}
	n.emailAlerts(alerts)
}

func (n *Notifier) emailAlerts(alerts []Alert) {
	to := n.conf.Notifier.AlertEmail
	if to == "" {
		return
	}
	var body strings.Builder
	for _, a := range alerts {
		fmt.Fprintf(&body, "[%s %s] %s\n", a.Category, a.Kind, a.Text)
	}
	n.mail.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Address: to}},
		Subject: "Schedule changes",
		BodyStr: body.String(),
	})
}

// StatusOf derives the display status from an already-resolved day.
func StatusOf(slots []schedule.Slot, now time.Time) Status {
	st := Status{At: now}
	for _, s := range slots {
		switch s.State {
		case schedule.StateCurrent:
			st.CurrentText = slotText("Now", s)
			st.Progress = progressOf(s, now)
		case schedule.StateNext:
			st.NextText = slotText("Next", s)
		}
	}
	return st
}

func slotText(prefix string, s schedule.Slot) string {
	text := fmt.Sprintf("%s: %s (%s–%s", prefix, s.Rule.SubjectName, s.Start, s.End)
	if s.Rule.Room != "" {
		text += ", " + s.Rule.Room
	}
	return text + ")"
}

// progressOf maps `now` onto the slot's span as an integer in [0,100].
func progressOf(s schedule.Slot, now time.Time) int {
	total := int(s.End - s.Start)
	if total <= 0 {
		return 0
	}
	elapsed := int(schedule.TimeOfDayAt(now) - s.Start)
	switch {
	case elapsed < 0:
		return 0
	case elapsed > total:
		return 100
	}
	return elapsed * 100 / total
}
