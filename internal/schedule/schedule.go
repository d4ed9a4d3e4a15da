// Package schedule keeps the call-centre availability flag in step with
// business hours.
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/kwchan/bank-ivr/internal/config"
	"github.com/kwchan/bank-ivr/internal/session"
)

// Job flips the service status at opening and closing time and applies the
// correct status at startup.
type Job struct {
	sessions  *session.Store
	log       *logrus.Logger
	cron      *cron.Cron
	openHour  int
	closeHour int
	loc       *time.Location
}

// New builds the business-hours job without starting it.
func New(cfg *config.Config, sessions *session.Store, loc *time.Location, log *logrus.Logger) (*Job, error) {
	j := &Job{
		sessions:  sessions,
		log:       log,
		cron:      cron.New(cron.WithLocation(loc)),
		openHour:  cfg.OpenHour,
		closeHour: cfg.CloseHour,
		loc:       loc,
	}

	if _, err := j.cron.AddFunc(fmt.Sprintf("0 %d * * *", cfg.OpenHour), func() {
		j.set(session.StatusInService)
	}); err != nil {
		return nil, fmt.Errorf("failed to schedule opening: %w", err)
	}
	if _, err := j.cron.AddFunc(fmt.Sprintf("0 %d * * *", cfg.CloseHour), func() {
		j.set(session.StatusOutOfService)
	}); err != nil {
		return nil, fmt.Errorf("failed to schedule closing: %w", err)
	}
	return j, nil
}

// Start applies the status for the current time and begins the schedule.
func (j *Job) Start() {
	j.set(j.StatusAt(time.Now()))
	j.cron.Start()
}

// Stop halts the schedule.
func (j *Job) Stop() {
	j.cron.Stop()
}

// StatusAt computes the availability for a point in time.
func (j *Job) StatusAt(t time.Time) string {
	hour := t.In(j.loc).Hour()
	if hour >= j.openHour && hour < j.closeHour {
		return session.StatusInService
	}
	return session.StatusOutOfService
}

func (j *Job) set(status string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := j.sessions.SetServiceStatus(ctx, status); err != nil {
		j.log.Errorf("Failed to update service status: %v", err)
		return
	}
	j.log.Infof("Call centre service status: %s", status)
}
