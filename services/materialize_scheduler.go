package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Dosada05/quizbowl-system/models"
	"github.com/Dosada05/quizbowl-system/repositories"
	"github.com/go-co-op/gocron/v2"
)

// MaterializeScheduler periodically retries stage materialization on
// active tournaments. A materialization attempt blocked on an unfinished
// previous stage fails fast; once the stage finishes, the next tick
// creates the games without anyone pressing a button.
type MaterializeScheduler struct {
	tournaments repositories.TournamentRepository
	brackets    *BracketService
	interval    time.Duration
	logger      *slog.Logger
	scheduler   gocron.Scheduler
}

func NewMaterializeScheduler(
	tournaments repositories.TournamentRepository,
	brackets *BracketService,
	interval time.Duration,
	logger *slog.Logger,
) *MaterializeScheduler {
	return &MaterializeScheduler{
		tournaments: tournaments,
		brackets:    brackets,
		interval:    interval,
		logger:      logger,
	}
}

func (m *MaterializeScheduler) Start() error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	if _, err := sched.NewJob(
		gocron.DurationJob(m.interval),
		gocron.NewTask(m.tick),
	); err != nil {
		return err
	}
	sched.Start()
	m.scheduler = sched
	return nil
}

func (m *MaterializeScheduler) Stop() error {
	if m.scheduler == nil {
		return nil
	}
	return m.scheduler.Shutdown()
}

func (m *MaterializeScheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), m.interval)
	defer cancel()

	tournaments, err := m.tournaments.ListByStatus(ctx, models.StatusActive)
	if err != nil {
		m.logger.Error("scheduler: failed to list active tournaments", "error", err)
		return
	}

	for _, tournament := range tournaments {
		spec, err := tournament.ParseFormat()
		if err != nil {
			m.logger.Warn("scheduler: skipping tournament with bad format", "tournament_id", tournament.ID, "error", err)
			continue
		}
		for _, stage := range spec.Stages {
			created, err := m.brackets.MaterializeStage(ctx, tournament.ID, stage.StageID)
			if err != nil {
				// Waiting on a previous stage is the normal case here.
				if !errors.Is(err, ErrStagePrerequisite) {
					m.logger.Error("scheduler: materialization failed",
						"tournament_id", tournament.ID,
						"stage_id", stage.StageID,
						"error", err,
					)
				}
				continue
			}
			if created > 0 {
				m.logger.Info("scheduler: materialized stage",
					"tournament_id", tournament.ID,
					"stage_id", stage.StageID,
					"created", created,
				)
			}
		}
	}
}
