package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/Dosada05/efootball-hub/models"
)

// OwnerAccessService sends team owners a link carrying an owner token.
type OwnerAccessService interface {
	// RequestLoginLink mails a link when the email owns a team in any mode.
	// Unknown emails are not reported to the caller.
	RequestLoginLink(ctx context.Context, email string) error
	NotifyOwnershipApproved(ctx context.Context, mode models.Mode, teamID string) error
}

type ownerAccessService struct {
	tournaments TournamentService
	auth        AuthService
	mailer      Mailer
	publicURL   string
	logger      *slog.Logger
}

func NewOwnerAccessService(tournaments TournamentService, auth AuthService, mailer Mailer, publicURL string, logger *slog.Logger) OwnerAccessService {
	return &ownerAccessService{
		tournaments: tournaments,
		auth:        auth,
		mailer:      mailer,
		publicURL:   strings.TrimSuffix(publicURL, "/"),
		logger:      logger,
	}
}

func (s *ownerAccessService) RequestLoginLink(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("%w: a valid email is required", ErrValidationFailed)
	}

	team, ok := s.findOwnedTeam(email)
	if !ok {
		s.logger.InfoContext(ctx, "login link requested for unknown owner")
		return nil
	}

	link, err := s.loginLink(ctx, email)
	if err != nil {
		return err
	}
	if err := s.mailer.SendOwnerLoginLink(ctx, email, team.Name, link); err != nil {
		return fmt.Errorf("send owner login link: %w", err)
	}
	return nil
}

func (s *ownerAccessService) NotifyOwnershipApproved(ctx context.Context, mode models.Mode, teamID string) error {
	state, err := s.tournaments.State(mode)
	if err != nil {
		return err
	}
	team, ok := state.FindTeam(teamID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrTeamNotFound, teamID)
	}
	if team.OwnerEmail == "" {
		return nil
	}

	link, err := s.loginLink(ctx, team.OwnerEmail)
	if err != nil {
		return err
	}
	if err := s.mailer.SendOwnershipApproved(ctx, team.OwnerEmail, team.Name, link); err != nil {
		return fmt.Errorf("send ownership approval: %w", err)
	}
	return nil
}

func (s *ownerAccessService) findOwnedTeam(email string) (models.Team, bool) {
	for _, mode := range models.Modes {
		state, err := s.tournaments.State(mode)
		if err != nil {
			continue
		}
		for _, t := range state.Teams {
			if strings.EqualFold(t.OwnerEmail, email) {
				return t, true
			}
		}
	}
	return models.Team{}, false
}

func (s *ownerAccessService) loginLink(ctx context.Context, email string) (string, error) {
	token, err := s.auth.IssueOwnerToken(ctx, email)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/owner?token=%s", s.publicURL, url.QueryEscape(token)), nil
}
