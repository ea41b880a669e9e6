package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/efootball-hub/brackets"
	"github.com/Dosada05/efootball-hub/models"
)

// maxGroups keeps generated group letters within A-Z.
const maxGroups = 26

// Result is the outcome of a dispatched action. A failed result never comes
// with a changed state.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Err     error  `json:"-"`
}

func succeeded(message string) Result {
	return Result{Success: true, Message: message}
}

func failed(err error) Result {
	return Result{Success: false, Message: err.Error(), Err: err}
}

// Reduce applies the action and returns the next state. Failed actions and
// unknown actions return the input unchanged.
func Reduce(state models.TournamentState, a Action) models.TournamentState {
	next, _ := ReduceWithResult(state, a)
	return next
}

// ReduceWithResult is Reduce plus the structured outcome. Every successful
// transition is followed by hydration and the comment projection.
func ReduceWithResult(state models.TournamentState, a Action) (models.TournamentState, Result) {
	if a == nil {
		return state, succeeded("")
	}

	next := state.Clone()
	next.Normalize()

	message, known, err := apply(&next, a)
	if !known {
		return state, succeeded("")
	}
	if err != nil {
		return state, failed(err)
	}

	if bumpsVersion(a) {
		next.Version = state.Version + 1
	}
	next = ProjectComments(Hydrate(next))
	return next, succeeded(message)
}

// bumpsVersion is false for actions that carry remote data rather than a
// local edit, and for comments: they live in their own store, not in the
// state document.
func bumpsVersion(a Action) bool {
	switch a.(type) {
	case SetFullState, SetComments, SetMode, AddMatchComment:
		return false
	}
	return true
}

func apply(s *models.TournamentState, a Action) (string, bool, error) {
	var (
		msg string
		err error
	)
	switch act := a.(type) {
	case SetFullState:
		err = setFullState(s, act)
	case SetMode:
		err = setMode(s, act)
	case AddTeam:
		err = addTeam(s, act.Team)
	case UpdateTeam:
		err = updateTeam(s, act.Team)
	case DeleteTeam:
		err = deleteTeam(s, act.TeamID)
	case GenerateGroups:
		msg, err = generateGroups(s, act)
	case UpdateMatchScore:
		err = updateMatchScore(s, act)
	case UpdateKnockoutMatch:
		msg, err = updateKnockoutMatch(s, act)
	case AddKnockoutMatch:
		err = addKnockoutMatch(s, act)
	case DeleteKnockoutMatch:
		err = deleteKnockoutMatch(s, act.MatchID)
	case GenerateKnockoutBracket:
		msg, err = generateKnockoutBracket(s)
	case UpdateRules:
		s.Rules = act.Rules
	case UpdateBanners:
		s.Banners = append([]models.Banner{}, act.Banners...)
	case UpdatePartners:
		s.Partners = append([]models.Partner{}, act.Partners...)
	case UpdateHeaderLogo:
		s.HeaderLogoURL = strings.TrimSpace(act.URL)
	case SetRegistrationOpen:
		s.RegistrationOpen = act.Open
	case SetStatus:
		if !act.Status.IsValid() {
			err = fmt.Errorf("%w: unknown status %q", ErrValidationFailed, act.Status)
			break
		}
		s.Status = act.Status
	case AddHistoryEntry:
		err = addHistoryEntry(s, act.Entry)
	case DeleteHistoryEntry:
		err = deleteHistoryEntry(s, act.EntryID)
	case AddMatchComment:
		err = addMatchComment(s, act.Comment)
	case SetComments:
		s.Comments = MergeComments(s.Comments, act.Comments)
	case Reset:
		reset(s)
	case ArchiveSeason:
		msg, err = archiveSeason(s, act)
	case AddGroup:
		err = addGroup(s, act)
	case RemoveGroup:
		err = removeGroup(s, act.GroupID)
	case AddTeamToGroup:
		err = addTeamToGroup(s, act.GroupID, act.TeamID)
	case RemoveTeamFromGroup:
		err = removeTeamFromGroup(s, act.GroupID, act.TeamID)
	case GenerateGroupFixtures:
		msg, err = generateGroupFixtures(s, act)
	case ApproveRegistration:
		if !s.RegistrationOpen {
			err = ErrRegistrationNotOpen
			break
		}
		err = addTeam(s, act.Team)
	case RequestTeamOwnership:
		err = requestOwnership(s, act)
	case ApproveOwnership:
		err = approveOwnership(s, act.TeamID)
	case RejectOwnership:
		err = rejectOwnership(s, act.TeamID)
	case UpdateScheduleSettings:
		err = updateScheduleSettings(s, act.Settings)
	case SetMatchSummary:
		err = setMatchSummary(s, act)
	default:
		return "", false, nil
	}
	return msg, true, err
}

// setFullState takes a remote snapshot as is. Local comments are merged back
// on top because the document never carries them.
func setFullState(s *models.TournamentState, a SetFullState) error {
	incoming := a.State.Clone()
	if incoming.Mode == "" {
		incoming.Mode = s.Mode
	}
	if s.Mode != "" && incoming.Mode != s.Mode {
		return fmt.Errorf("%w: snapshot for %q cannot replace %q", ErrInvalidMode, incoming.Mode, s.Mode)
	}
	incoming.Normalize()
	incoming.Comments = MergeComments(incoming.Comments, s.Comments)
	*s = incoming
	return nil
}

// setMode switches to an empty state of another mode; its document arrives
// later through the subscription.
func setMode(s *models.TournamentState, a SetMode) error {
	if !a.Mode.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidMode, a.Mode)
	}
	if a.Mode == s.Mode {
		return nil
	}
	*s = models.NewTournamentState(a.Mode)
	return nil
}

func findTeamIndex(s *models.TournamentState, id string) int {
	for i, t := range s.Teams {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func findGroupIndex(s *models.TournamentState, id string) int {
	for i, g := range s.Groups {
		if g.ID == id {
			return i
		}
	}
	return -1
}

func findMatchIndex(s *models.TournamentState, id string) int {
	for i, m := range s.Matches {
		if m.ID == id {
			return i
		}
	}
	return -1
}

func validateTeamName(s *models.TournamentState, name, exceptID string) error {
	if name == "" {
		return ErrTeamNameRequired
	}
	for _, t := range s.Teams {
		if t.ID != exceptID && strings.EqualFold(t.Name, name) {
			return fmt.Errorf("%w: %s", ErrTeamNameConflict, name)
		}
	}
	return nil
}

func addTeam(s *models.TournamentState, team models.Team) error {
	if team.ID == "" {
		return fmt.Errorf("%w: team id is required", ErrValidationFailed)
	}
	if findTeamIndex(s, team.ID) >= 0 {
		return fmt.Errorf("%w: team %s already exists", ErrValidationFailed, team.ID)
	}
	team.Name = strings.TrimSpace(team.Name)
	if err := validateTeamName(s, team.Name, team.ID); err != nil {
		return err
	}
	s.Teams = append(s.Teams, team.Clone())
	return nil
}

func updateTeam(s *models.TournamentState, team models.Team) error {
	idx := findTeamIndex(s, team.ID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrTeamNotFound, team.ID)
	}
	team.Name = strings.TrimSpace(team.Name)
	if err := validateTeamName(s, team.Name, team.ID); err != nil {
		return err
	}
	s.Teams[idx] = team.Clone()
	return nil
}

func deleteTeam(s *models.TournamentState, teamID string) error {
	idx := findTeamIndex(s, teamID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrTeamNotFound, teamID)
	}
	if g, inUse := s.GroupOfTeam(teamID); inUse {
		return fmt.Errorf("%w (%s)", ErrTeamInUse, g.Name)
	}
	s.Teams = append(s.Teams[:idx], s.Teams[idx+1:]...)
	return nil
}

func groupLetter(i int) string {
	return string(rune('A' + i))
}

func groupIDFor(i int) string {
	return "group-" + strings.ToLower(groupLetter(i))
}

func groupNameFor(i int) string {
	return "Group " + groupLetter(i)
}

// splitIntoGroups deals the roster into count groups, top seeds first, in a
// snake order (A B C C B A ...) so seeds are spread evenly.
func splitIntoGroups(teams []models.Team, count int) []models.Group {
	ordered := make([]models.Team, 0, len(teams))
	for _, t := range teams {
		if t.IsTopSeed {
			ordered = append(ordered, t.Clone())
		}
	}
	for _, t := range teams {
		if !t.IsTopSeed {
			ordered = append(ordered, t.Clone())
		}
	}

	groups := make([]models.Group, count)
	for i := range groups {
		groups[i] = models.Group{ID: groupIDFor(i), Name: groupNameFor(i), Teams: []models.Team{}}
	}
	for i, t := range ordered {
		pos := i % count
		if (i/count)%2 == 1 {
			pos = count - 1 - pos
		}
		groups[pos].Teams = append(groups[pos].Teams, t)
	}
	return groups
}

func newFixtureGenerator(settings models.ScheduleSettings, now time.Time) *brackets.RoundRobinGenerator {
	gen := &brackets.RoundRobinGenerator{}
	if settings.MatchDeadlineHours > 0 && !now.IsZero() {
		gen.StartAt = now
		gen.DeadlineEvery = time.Duration(settings.MatchDeadlineHours) * time.Hour
	}
	return gen
}

func anyRecordedScore(matches []models.Match) bool {
	for _, m := range matches {
		if m.ScoreA != nil || m.ScoreB != nil {
			return true
		}
	}
	return false
}

func generateGroups(s *models.TournamentState, a GenerateGroups) (string, error) {
	settings := s.Settings()
	rrType := a.RoundRobinType
	if rrType == "" {
		rrType = settings.RoundRobinType
	}
	if !rrType.IsValid() {
		return "", fmt.Errorf("%w: unknown round robin type %q", ErrValidationFailed, rrType)
	}
	if !a.Confirm && anyRecordedScore(s.Matches) {
		return "", fmt.Errorf("%w: matches already carry recorded scores, confirm to regenerate", ErrActionRejected)
	}

	var groups []models.Group
	if len(a.Groups) > 0 {
		var err error
		if groups, err = explicitGroups(s, a.Groups); err != nil {
			return "", err
		}
	} else {
		count := a.GroupCount
		if count <= 0 {
			count = settings.GroupCount
		}
		if count < 1 || count > maxGroups {
			return "", fmt.Errorf("%w: group count must be between 1 and %d", ErrValidationFailed, maxGroups)
		}
		if len(s.Teams) < count*2 {
			return "", fmt.Errorf("%w: %d teams cannot fill %d groups of at least 2", ErrValidationFailed, len(s.Teams), count)
		}
		groups = splitIntoGroups(s.Teams, count)
	}

	settings.RoundRobinType = rrType
	settings.GroupCount = len(groups)
	gen := newFixtureGenerator(settings, a.Now)

	matches := make([]models.Match, 0)
	for _, g := range groups {
		fixtures, err := gen.GenerateFixtures(brackets.GenerateFixturesParams{
			Teams:          g.Teams,
			GroupID:        g.ID,
			RoundRobinType: rrType,
		})
		if err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrValidationFailed, g.Name, err)
		}
		matches = append(matches, fixtures...)
	}

	s.Groups = groups
	s.Matches = matches
	s.KnockoutStage = models.NewKnockoutStage()
	s.ScheduleSettings = &settings
	return fmt.Sprintf("%d groups, %d matches generated", len(groups), len(matches)), nil
}

// explicitGroups validates admin supplied groups and resolves their teams
// against the roster.
func explicitGroups(s *models.TournamentState, in []models.Group) ([]models.Group, error) {
	if len(in) > maxGroups {
		return nil, fmt.Errorf("%w: at most %d groups", ErrValidationFailed, maxGroups)
	}
	seenGroup := make(map[string]bool, len(in))
	seenTeam := make(map[string]bool)
	out := make([]models.Group, 0, len(in))
	for i, g := range in {
		id := strings.TrimSpace(g.ID)
		if id == "" {
			id = groupIDFor(i)
		}
		name := strings.TrimSpace(g.Name)
		if name == "" {
			name = groupNameFor(i)
		}
		if seenGroup[id] {
			return nil, fmt.Errorf("%w: %s", ErrGroupConflict, id)
		}
		seenGroup[id] = true

		teams := make([]models.Team, 0, len(g.Teams))
		for _, ref := range g.Teams {
			t, ok := s.FindTeam(ref.ID)
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrTeamNotFound, ref.ID)
			}
			if seenTeam[t.ID] {
				return nil, fmt.Errorf("%w: team %s is placed in more than one group", ErrValidationFailed, t.Name)
			}
			seenTeam[t.ID] = true
			teams = append(teams, t.Clone())
		}
		out = append(out, models.Group{ID: id, Name: name, Teams: teams})
	}
	return out, nil
}

func updateMatchScore(s *models.TournamentState, a UpdateMatchScore) error {
	idx := findMatchIndex(s, a.MatchID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrMatchNotFound, a.MatchID)
	}
	if a.ScoreA < 0 || a.ScoreB < 0 {
		return fmt.Errorf("%w: scores cannot be negative", ErrValidationFailed)
	}
	status := a.Status
	if status == "" {
		status = models.MatchStatusFinished
	}
	if status != models.MatchStatusFinished && status != models.MatchStatusLive {
		return fmt.Errorf("%w: a scored match is live or finished, not %q", ErrValidationFailed, status)
	}

	m := &s.Matches[idx]
	if m.ScoreA == nil || m.ScoreB == nil || *m.ScoreA != a.ScoreA || *m.ScoreB != a.ScoreB {
		m.Summary = ""
	}
	m.ScoreA = models.IntPtr(a.ScoreA)
	m.ScoreB = models.IntPtr(a.ScoreB)
	m.Status = status
	if a.ProofURLs != nil {
		m.ProofURLs = append([]string(nil), a.ProofURLs...)
	}
	if a.Stats != nil {
		stats := make(map[string]int, len(a.Stats))
		for k, v := range a.Stats {
			stats[k] = v
		}
		m.Stats = stats
	}
	return nil
}

func setMatchSummary(s *models.TournamentState, a SetMatchSummary) error {
	idx := findMatchIndex(s, a.MatchID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrMatchNotFound, a.MatchID)
	}
	s.Matches[idx].Summary = a.Summary
	return nil
}

// teamSlot resolves a knockout slot; an empty id means an empty slot.
func teamSlot(s *models.TournamentState, id string) (*models.Team, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}
	t, ok := s.FindTeam(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTeamNotFound, id)
	}
	c := t.Clone()
	return &c, nil
}

func negative(scores ...*int) bool {
	for _, v := range scores {
		if v != nil && *v < 0 {
			return true
		}
	}
	return false
}

func updateKnockoutMatch(s *models.TournamentState, a UpdateKnockoutMatch) (string, error) {
	round, idx, ok := s.KnockoutStage.Find(a.MatchID)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMatchNotFound, a.MatchID)
	}
	m := s.KnockoutStage[round][idx].Clone()

	if a.TeamAID != nil {
		slot, err := teamSlot(s, *a.TeamAID)
		if err != nil {
			return "", err
		}
		m.TeamA = slot
	}
	if a.TeamBID != nil {
		slot, err := teamSlot(s, *a.TeamBID)
		if err != nil {
			return "", err
		}
		m.TeamB = slot
	}

	if negative(a.ScoreA1, a.ScoreB1, a.ScoreA2, a.ScoreB2) {
		return "", fmt.Errorf("%w: scores cannot be negative", ErrValidationFailed)
	}
	hasScores := a.ScoreA1 != nil || a.ScoreB1 != nil || a.ScoreA2 != nil || a.ScoreB2 != nil
	if hasScores && !brackets.CanEditScores(m) {
		return "", ErrSlotsNotFilled
	}
	m.ScoreA1 = copyInt(a.ScoreA1)
	m.ScoreB1 = copyInt(a.ScoreB1)
	m.ScoreA2 = copyInt(a.ScoreA2)
	m.ScoreB2 = copyInt(a.ScoreB2)
	if brackets.IsFinal(m) {
		m.ScoreA2, m.ScoreB2 = nil, nil
	}

	m.WinnerID = nil
	if a.WinnerID != nil && *a.WinnerID != "" {
		if m.TeamA == nil || m.TeamB == nil || (*a.WinnerID != m.TeamA.ID && *a.WinnerID != m.TeamB.ID) {
			return "", fmt.Errorf("%w: winner must be one of the two teams", ErrValidationFailed)
		}
		m.WinnerID = models.StringPtr(*a.WinnerID)
	}

	m = brackets.ResolveWinner(m)
	s.KnockoutStage[round][idx] = m
	s.KnockoutStage = brackets.PropagateWinners(s.KnockoutStage)

	if brackets.IsLevel(m) && m.WinnerID == nil {
		return "aggregate is level: pick the penalty shoot-out winner", nil
	}
	return "", nil
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func addKnockoutMatch(s *models.TournamentState, a AddKnockoutMatch) error {
	if !a.Round.IsValid() {
		return fmt.Errorf("%w: unknown round %q", ErrValidationFailed, a.Round)
	}
	if a.ID == "" {
		return fmt.Errorf("%w: match id is required", ErrValidationFailed)
	}
	if _, _, exists := s.KnockoutStage.Find(a.ID); exists {
		return fmt.Errorf("%w: knockout match %s already exists", ErrValidationFailed, a.ID)
	}

	m := models.KnockoutMatch{ID: a.ID, Round: a.Round, MatchNumber: a.MatchNumber}
	if m.MatchNumber <= 0 {
		m.MatchNumber = len(s.KnockoutStage[a.Round]) + 1
	}
	var err error
	if m.TeamA, err = teamSlot(s, a.TeamAID); err != nil {
		return err
	}
	if m.TeamB, err = teamSlot(s, a.TeamBID); err != nil {
		return err
	}
	if a.NextMatchID != "" {
		if _, _, exists := s.KnockoutStage.Find(a.NextMatchID); !exists {
			return fmt.Errorf("%w: next match %s", ErrMatchNotFound, a.NextMatchID)
		}
		m.NextMatchID = models.StringPtr(a.NextMatchID)
	}
	s.KnockoutStage[a.Round] = append(s.KnockoutStage[a.Round], m)
	return nil
}

func deleteKnockoutMatch(s *models.TournamentState, matchID string) error {
	round, idx, ok := s.KnockoutStage.Find(matchID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}
	matches := s.KnockoutStage[round]
	s.KnockoutStage[round] = append(matches[:idx:idx], matches[idx+1:]...)

	for r, list := range s.KnockoutStage {
		for i := range list {
			if list[i].NextMatchID != nil && *list[i].NextMatchID == matchID {
				list[i].NextMatchID = nil
			}
		}
		s.KnockoutStage[r] = list
	}
	delete(s.Comments, matchID)
	return nil
}

func generateKnockoutBracket(s *models.TournamentState) (string, error) {
	hydrated := Hydrate(*s)
	groups := make([]brackets.GroupStandings, 0, len(hydrated.Groups))
	for _, g := range hydrated.Groups {
		groups = append(groups, brackets.GroupStandings{Group: brackets.RefOf(g), Standings: g.Standings})
	}

	res := brackets.BuildKnockoutBracket(groups)
	if !res.Success {
		return "", fmt.Errorf("%w: %s", ErrBracketRefused, res.Message)
	}
	s.KnockoutStage = res.Stage
	return res.Message, nil
}

func addHistoryEntry(s *models.TournamentState, entry models.SeasonHistory) error {
	if entry.ID == "" {
		return fmt.Errorf("%w: history entry id is required", ErrValidationFailed)
	}
	if entry.Champion.ID == "" && entry.Champion.Name == "" {
		return fmt.Errorf("%w: champion is required", ErrValidationFailed)
	}
	for _, h := range s.History {
		if h.ID == entry.ID {
			return fmt.Errorf("%w: history entry %s already exists", ErrValidationFailed, entry.ID)
		}
	}
	if entry.Mode == "" {
		entry.Mode = s.Mode
	}
	s.History = append(s.History, entry.Clone())
	return nil
}

func deleteHistoryEntry(s *models.TournamentState, id string) error {
	for i, h := range s.History {
		if h.ID == id {
			s.History = append(s.History[:i], s.History[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrHistoryNotFound, id)
}

func addMatchComment(s *models.TournamentState, c models.Comment) error {
	c.Text = strings.TrimSpace(c.Text)
	if c.Text == "" {
		return ErrCommentRequired
	}
	if c.ID == "" || c.MatchID == "" {
		return fmt.Errorf("%w: comment id and match id are required", ErrValidationFailed)
	}
	if findMatchIndex(s, c.MatchID) < 0 {
		if _, _, ok := s.KnockoutStage.Find(c.MatchID); !ok {
			return fmt.Errorf("%w: %s", ErrMatchNotFound, c.MatchID)
		}
	}
	s.Comments = MergeComments(s.Comments, models.CommentsByMatch{c.MatchID: {c}})
	return nil
}

// reset wipes everything but history and re-seeds the mode defaults.
func reset(s *models.TournamentState) {
	fresh := models.NewTournamentState(s.Mode)
	fresh.History = s.History
	fresh.Version = s.Version
	*s = fresh
}

// seasonPodium picks the champion and runner-up: the Final when it has a
// winner, otherwise the top two of the first group with results.
func seasonPodium(s models.TournamentState) (models.Team, *models.Team, bool) {
	for _, final := range s.KnockoutStage[models.RoundFinal] {
		champion, ok := brackets.Winner(final)
		if !ok {
			continue
		}
		if runnerUp, ok := brackets.Loser(final); ok {
			return champion, &runnerUp, true
		}
		return champion, nil, true
	}
	for _, g := range s.Groups {
		if !brackets.GroupHasResults(g.Standings) {
			continue
		}
		champion := g.Standings[0].Team
		if len(g.Standings) > 1 {
			runnerUp := g.Standings[1].Team
			return champion, &runnerUp, true
		}
		return champion, nil, true
	}
	return models.Team{}, nil, false
}

func archiveSeason(s *models.TournamentState, a ArchiveSeason) (string, error) {
	if a.ArchiveID == "" {
		return "", fmt.Errorf("%w: archive id is required", ErrValidationFailed)
	}
	champion, runnerUp, ok := seasonPodium(Hydrate(*s))
	if !ok {
		return "", fmt.Errorf("%w: no champion can be determined yet", ErrActionRejected)
	}

	name := strings.TrimSpace(a.SeasonName)
	if name == "" {
		name = fmt.Sprintf("Season %d", len(s.History)+1)
	}
	entry := models.SeasonHistory{
		ID:          a.ArchiveID,
		SeasonName:  name,
		Champion:    champion.Clone(),
		CompletedAt: a.CompletedAt,
		Mode:        s.Mode,
	}
	if runnerUp != nil {
		ru := runnerUp.Clone()
		entry.RunnerUp = &ru
	}

	s.History = append(s.History, entry)
	s.Matches = []models.Match{}
	s.Groups = []models.Group{}
	s.KnockoutStage = models.NewKnockoutStage()
	s.Comments = models.CommentsByMatch{}
	if !a.KeepTeams {
		s.Teams = []models.Team{}
	}
	s.Status = models.StatusCompleted
	return fmt.Sprintf("%s archived, champion %s", name, champion.Name), nil
}

func addGroup(s *models.TournamentState, a AddGroup) error {
	if len(s.Groups) >= maxGroups {
		return fmt.Errorf("%w: at most %d groups", ErrValidationFailed, maxGroups)
	}
	id := strings.TrimSpace(a.ID)
	if id == "" {
		return fmt.Errorf("%w: group id is required", ErrValidationFailed)
	}
	name := strings.TrimSpace(a.Name)
	if name == "" {
		name = groupNameFor(len(s.Groups))
	}
	for _, g := range s.Groups {
		if g.ID == id || strings.EqualFold(g.Name, name) {
			return fmt.Errorf("%w: %s", ErrGroupConflict, name)
		}
	}
	s.Groups = append(s.Groups, models.Group{ID: id, Name: name, Teams: []models.Team{}})
	return nil
}

// removeGroup drops the group together with its fixtures.
func removeGroup(s *models.TournamentState, groupID string) error {
	idx := findGroupIndex(s, groupID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrGroupNotFound, groupID)
	}
	ref := brackets.RefOf(s.Groups[idx])
	s.Groups = append(s.Groups[:idx], s.Groups[idx+1:]...)
	s.Matches = brackets.ReplaceGroupFixtures(s.Matches, ref, nil)
	return nil
}

func addTeamToGroup(s *models.TournamentState, groupID, teamID string) error {
	idx := findGroupIndex(s, groupID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrGroupNotFound, groupID)
	}
	team, ok := s.FindTeam(teamID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrTeamNotFound, teamID)
	}
	if g, taken := s.GroupOfTeam(teamID); taken {
		return fmt.Errorf("%w: %s is already in %s", ErrValidationFailed, team.Name, g.Name)
	}
	s.Groups[idx].Teams = append(s.Groups[idx].Teams, team.Clone())
	return nil
}

func removeTeamFromGroup(s *models.TournamentState, groupID, teamID string) error {
	idx := findGroupIndex(s, groupID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrGroupNotFound, groupID)
	}
	teams := s.Groups[idx].Teams
	for i, t := range teams {
		if t.ID == teamID {
			s.Groups[idx].Teams = append(teams[:i:i], teams[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s is not in %s", ErrTeamNotFound, teamID, s.Groups[idx].Name)
}

func generateGroupFixtures(s *models.TournamentState, a GenerateGroupFixtures) (string, error) {
	idx := findGroupIndex(s, a.GroupID)
	if idx < 0 {
		return "", fmt.Errorf("%w: %s", ErrGroupNotFound, a.GroupID)
	}
	group := s.Groups[idx]
	ref := brackets.RefOf(group)

	settings := s.Settings()
	rrType := a.RoundRobinType
	if rrType == "" {
		rrType = settings.RoundRobinType
	}
	if !rrType.IsValid() {
		return "", fmt.Errorf("%w: unknown round robin type %q", ErrValidationFailed, rrType)
	}
	if !a.Confirm && brackets.HasRecordedScores(s.Matches, ref) {
		return "", fmt.Errorf("%w: %s already has recorded scores, confirm to regenerate", ErrActionRejected, group.Name)
	}

	fixtures, err := newFixtureGenerator(settings, a.Now).GenerateFixtures(brackets.GenerateFixturesParams{
		Teams:          group.Teams,
		GroupID:        group.ID,
		RoundRobinType: rrType,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrValidationFailed, group.Name, err)
	}
	s.Matches = brackets.ReplaceGroupFixtures(s.Matches, ref, fixtures)
	return fmt.Sprintf("%d matches generated for %s", len(fixtures), group.Name), nil
}

func requestOwnership(s *models.TournamentState, a RequestTeamOwnership) error {
	idx := findTeamIndex(s, a.TeamID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrTeamNotFound, a.TeamID)
	}
	email := strings.ToLower(strings.TrimSpace(a.Email))
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("%w: a valid email is required", ErrValidationFailed)
	}
	t := &s.Teams[idx]
	if strings.EqualFold(t.OwnerEmail, email) {
		return nil
	}
	// первая заявка держит место, пока админ её не одобрит или не отклонит
	if t.RequestedOwnerEmail != "" && t.RequestedOwnerEmail != email {
		return fmt.Errorf("%w: %s already has a pending ownership request", ErrValidationFailed, t.Name)
	}
	t.RequestedOwnerEmail = email
	return nil
}

func approveOwnership(s *models.TournamentState, teamID string) error {
	idx := findTeamIndex(s, teamID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrTeamNotFound, teamID)
	}
	t := &s.Teams[idx]
	if t.RequestedOwnerEmail == "" {
		return fmt.Errorf("%w: %s has no pending ownership request", ErrValidationFailed, t.Name)
	}
	t.OwnerEmail = t.RequestedOwnerEmail
	t.RequestedOwnerEmail = ""
	return nil
}

func rejectOwnership(s *models.TournamentState, teamID string) error {
	idx := findTeamIndex(s, teamID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrTeamNotFound, teamID)
	}
	t := &s.Teams[idx]
	if t.RequestedOwnerEmail == "" {
		return fmt.Errorf("%w: %s has no pending ownership request", ErrValidationFailed, t.Name)
	}
	t.RequestedOwnerEmail = ""
	return nil
}

func updateScheduleSettings(s *models.TournamentState, settings models.ScheduleSettings) error {
	if !settings.RoundRobinType.IsValid() {
		return fmt.Errorf("%w: unknown round robin type %q", ErrValidationFailed, settings.RoundRobinType)
	}
	if settings.GroupCount < 1 || settings.GroupCount > maxGroups {
		return fmt.Errorf("%w: group count must be between 1 and %d", ErrValidationFailed, maxGroups)
	}
	if settings.MatchDeadlineHours < 0 {
		return fmt.Errorf("%w: match deadline cannot be negative", ErrValidationFailed)
	}
	s.ScheduleSettings = &settings
	return nil
}
