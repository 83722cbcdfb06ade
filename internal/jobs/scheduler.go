// Package jobs runs the background cron tasks: the midnight rollover and
// the hourly status sweep.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"foguinho/internal/features/fire"
	"foguinho/internal/metrics"
	"foguinho/internal/ws"
)

// Scheduler owns the cron instance. All schedules run in the application
// timezone, so "0 0 * * *" is local midnight, not UTC.
type Scheduler struct {
	cron   *cron.Cron
	engine *fire.Service
	hub    *ws.Hub
	loc    *time.Location
}

// NewScheduler creates the scheduler in the given timezone.
func NewScheduler(engine *fire.Service, hub *ws.Hub, loc *time.Location) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		engine: engine,
		hub:    hub,
		loc:    loc,
	}
}

// Start registers the jobs and kicks off the cron loop.
func (s *Scheduler) Start(ctx context.Context) {
	// Midnight rollover: groups that missed yesterday's threshold lose
	// their streak.
	s.cron.AddFunc("0 0 * * *", func() {
		log.Info("[CRON] virada do dia — avaliando streaks")
		stats, err := s.engine.RolloverAll(ctx, time.Now().In(s.loc))
		if err != nil {
			log.WithError(err).Error("[CRON] erro na virada do dia")
			return
		}
		if stats.Broken > 0 {
			metrics.StreaksBroken.Add(float64(stats.Broken))
		}
		s.hub.Broadcast(ws.Event{Type: "rollover", Data: stats})
		log.WithFields(log.Fields{
			"groups": stats.Groups,
			"broken": stats.Broken,
		}).Info("[CRON] virada do dia concluída")
	})

	// Hourly sweep keeps at_risk/active in sync for groups that went
	// quiet between messages.
	s.cron.AddFunc("0 * * * *", func() {
		log.Debug("[CRON] varredura horária de status")
		changed, err := s.engine.SweepStatuses(ctx, time.Now().In(s.loc))
		if err != nil {
			log.WithError(err).Error("[CRON] erro na varredura de status")
			return
		}
		for _, groupID := range changed {
			s.hub.Broadcast(ws.Event{Type: "group_update", Data: map[string]string{"groupId": groupID}})
		}
	})

	s.cron.Start()
	log.WithField("timezone", s.loc.String()).Info("planejador de tarefas iniciado")
}

// Stop halts the cron loop and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("planejador de tarefas parado")
}
