package services

import (
	"context"
	"time"

	"github.com/Dosada05/efootball-hub/brackets"
	"github.com/Dosada05/efootball-hub/models"
)

type DashboardService interface {
	GetStats(ctx context.Context) (models.DashboardStats, error)
}

type dashboardService struct {
	tournamentService TournamentService
	now               func() time.Time
}

func NewDashboardService(tournamentService TournamentService) DashboardService {
	return &dashboardService{
		tournamentService: tournamentService,
		now:               time.Now,
	}
}

func (s *dashboardService) GetStats(ctx context.Context) (models.DashboardStats, error) {
	now := s.now()
	stats := models.DashboardStats{Modes: make([]models.ModeStats, 0, len(models.Modes))}
	for _, mode := range models.Modes {
		state, err := s.tournamentService.State(mode)
		if err != nil {
			return models.DashboardStats{}, err
		}
		stats.Modes = append(stats.Modes, modeStats(state, now, s.tournamentService.SyncError(mode)))
	}
	return stats, nil
}

func modeStats(state models.TournamentState, now time.Time, syncErr string) models.ModeStats {
	ms := models.ModeStats{
		Mode:                 state.Mode,
		Status:               state.Status,
		RegistrationOpen:     state.RegistrationOpen,
		Version:              state.Version,
		TeamsTotal:           len(state.Teams),
		GroupsTotal:          len(state.Groups),
		MatchesTotal:         len(state.Matches),
		MatchesOverdue:       len(brackets.OverdueMatches(state.Matches, now)),
		KnockoutMatchesTotal: len(state.KnockoutStage.All()),
		SeasonsArchived:      len(state.History),
		SyncError:            syncErr,
	}
	for _, m := range state.Matches {
		switch m.Status {
		case models.MatchStatusFinished:
			ms.MatchesFinished++
		case models.MatchStatusLive:
			ms.MatchesLive++
		}
	}
	for _, comments := range state.Comments {
		ms.CommentsTotal += len(comments)
	}
	for _, t := range state.Teams {
		if t.RequestedOwnerEmail != "" {
			ms.PendingOwnershipClaims++
		}
	}
	return ms
}
