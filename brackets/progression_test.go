package brackets

import (
	"testing"

	"github.com/Dosada05/efootball-hub/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tie(id string, round models.KnockoutRound, number int, a, b models.Team, legs ...int) models.KnockoutMatch {
	m := models.KnockoutMatch{ID: id, Round: round, MatchNumber: number, TeamA: &a, TeamB: &b}
	scores := []**int{&m.ScoreA1, &m.ScoreB1, &m.ScoreA2, &m.ScoreB2}
	for i, v := range legs {
		*scores[i] = models.IntPtr(v)
	}
	return m
}

func TestResolveWinnerFromAggregate(t *testing.T) {
	teams := fakeTeams(t, 2)
	a, b := teams[0], teams[1]

	m := ResolveWinner(tie("sf", models.RoundSemiFinals, 1, a, b, 2, 1, 0, 0))
	require.NotNil(t, m.WinnerID)
	assert.Equal(t, a.ID, *m.WinnerID)
	assert.True(t, IsFinished(m))

	// агрегат важнее ручного выбора
	m = tie("sf", models.RoundSemiFinals, 1, a, b, 0, 1, 1, 3)
	m.WinnerID = models.StringPtr(a.ID)
	m = ResolveWinner(m)
	require.NotNil(t, m.WinnerID)
	assert.Equal(t, b.ID, *m.WinnerID)

	aggA, aggB := Aggregate(m)
	assert.Equal(t, 1, aggA)
	assert.Equal(t, 4, aggB)
}

func TestResolveWinnerLevelAggregate(t *testing.T) {
	teams := fakeTeams(t, 3)
	a, b := teams[0], teams[1]

	m := ResolveWinner(tie("qf", models.RoundQuarterFinals, 1, a, b, 1, 0, 0, 1))
	assert.True(t, IsLevel(m))
	assert.Nil(t, m.WinnerID, "a level aggregate is never auto-resolved")
	_, implied := ImpliedWinner(m)
	assert.False(t, implied)

	m.WinnerID = models.StringPtr(b.ID)
	m = ResolveWinner(m)
	require.NotNil(t, m.WinnerID)
	assert.Equal(t, b.ID, *m.WinnerID)
	assert.Equal(t, QualificationQualified, QualificationOf(m, b.ID))
	assert.Equal(t, QualificationEliminated, QualificationOf(m, a.ID))
	assert.Equal(t, QualificationPending, QualificationOf(m, teams[2].ID))

	m.WinnerID = models.StringPtr(teams[2].ID)
	m = ResolveWinner(m)
	assert.Nil(t, m.WinnerID)
}

func TestResolveWinnerIncompleteLegs(t *testing.T) {
	teams := fakeTeams(t, 2)
	m := tie("qf", models.RoundQuarterFinals, 1, teams[0], teams[1], 3, 0)
	m.WinnerID = models.StringPtr(teams[0].ID)

	assert.True(t, IsOngoing(m))
	assert.False(t, LegsComplete(m))
	m = ResolveWinner(m)
	assert.Nil(t, m.WinnerID)
	assert.Equal(t, QualificationPending, QualificationOf(m, teams[0].ID))
}

func TestFinalIsSingleLeg(t *testing.T) {
	teams := fakeTeams(t, 2)
	final := tie("ko-final-1", models.RoundFinal, 1, teams[0], teams[1], 0, 2)
	final.ScoreA2 = models.IntPtr(5)

	assert.True(t, LegsComplete(final))
	assert.False(t, IsOngoing(final))
	aggA, aggB := Aggregate(final)
	assert.Equal(t, 0, aggA)
	assert.Equal(t, 2, aggB)

	final = ResolveWinner(final)
	winner, ok := Winner(final)
	require.True(t, ok)
	assert.Equal(t, teams[1].ID, winner.ID)
	loser, ok := Loser(final)
	require.True(t, ok)
	assert.Equal(t, teams[0].ID, loser.ID)
}

func TestCanEditScoresNeedsBothTeams(t *testing.T) {
	teams := fakeTeams(t, 1)
	m := models.KnockoutMatch{ID: "sf", Round: models.RoundSemiFinals, TeamA: &teams[0]}
	assert.False(t, CanEditScores(m))
	m.ScoreA1, m.ScoreB1 = models.IntPtr(1), models.IntPtr(0)
	m.ScoreA2, m.ScoreB2 = models.IntPtr(1), models.IntPtr(0)
	assert.Nil(t, ResolveWinner(m).WinnerID)
}

func TestPropagateWinnersIntoFinal(t *testing.T) {
	teams := fakeTeams(t, 4)
	res := BuildKnockoutBracket([]GroupStandings{
		groupTable("A", teams[0], teams[1]),
		groupTable("B", teams[2], teams[3]),
	})
	require.True(t, res.Success)
	stage := res.Stage

	// sf-2 решён, sf-1 ещё нет
	sf2 := stage[models.RoundSemiFinals][1]
	stage[models.RoundSemiFinals][1] = ResolveWinner(tie(sf2.ID, sf2.Round, 2, *sf2.TeamA, *sf2.TeamB, 0, 1, 0, 1))
	stage[models.RoundSemiFinals][1].NextMatchID = sf2.NextMatchID

	stage = PropagateWinners(stage)
	final := stage[models.RoundFinal][0]
	assert.Nil(t, final.TeamA)
	require.NotNil(t, final.TeamB)
	assert.Equal(t, teams[1].ID, final.TeamB.ID, "A2 beat B1 in sf-2")

	sf1 := stage[models.RoundSemiFinals][0]
	stage[models.RoundSemiFinals][0] = ResolveWinner(tie(sf1.ID, sf1.Round, 1, *sf1.TeamA, *sf1.TeamB, 2, 0, 2, 2))
	stage[models.RoundSemiFinals][0].NextMatchID = sf1.NextMatchID

	stage = PropagateWinners(stage)
	final = stage[models.RoundFinal][0]
	require.NotNil(t, final.TeamA)
	assert.Equal(t, teams[0].ID, final.TeamA.ID)
	assert.Equal(t, teams[1].ID, final.TeamB.ID)
	assert.Nil(t, final.WinnerID)
}

func TestPropagateWinnersThroughChain(t *testing.T) {
	teams := fakeTeams(t, 4)
	qf1 := tie("qf-1", models.RoundQuarterFinals, 1, teams[0], teams[1], 1, 0, 1, 0)
	qf2 := tie("qf-2", models.RoundQuarterFinals, 2, teams[2], teams[3], 0, 0, 0, 2)
	qf1.NextMatchID = models.StringPtr("sf-1")
	qf2.NextMatchID = models.StringPtr("sf-1")
	qf1, qf2 = ResolveWinner(qf1), ResolveWinner(qf2)

	sf := models.KnockoutMatch{ID: "sf-1", Round: models.RoundSemiFinals, MatchNumber: 1, NextMatchID: models.StringPtr("final")}
	final := models.KnockoutMatch{ID: "final", Round: models.RoundFinal, MatchNumber: 1}

	stage := models.NewKnockoutStage()
	// порядок в списке не важен: сортировка по номеру матча
	stage[models.RoundQuarterFinals] = []models.KnockoutMatch{qf2, qf1}
	stage[models.RoundSemiFinals] = []models.KnockoutMatch{sf}
	stage[models.RoundFinal] = []models.KnockoutMatch{final}

	stage = PropagateWinners(stage)
	gotSF := stage[models.RoundSemiFinals][0]
	require.NotNil(t, gotSF.TeamA)
	require.NotNil(t, gotSF.TeamB)
	assert.Equal(t, teams[0].ID, gotSF.TeamA.ID)
	assert.Equal(t, teams[3].ID, gotSF.TeamB.ID)
	assert.Nil(t, gotSF.WinnerID)
	assert.Nil(t, stage[models.RoundFinal][0].TeamA)

	gotSF.ScoreA1, gotSF.ScoreB1 = models.IntPtr(3), models.IntPtr(1)
	gotSF.ScoreA2, gotSF.ScoreB2 = models.IntPtr(0), models.IntPtr(0)
	stage[models.RoundSemiFinals][0] = ResolveWinner(gotSF)

	stage = PropagateWinners(stage)
	gotFinal := stage[models.RoundFinal][0]
	require.NotNil(t, gotFinal.TeamA)
	assert.Equal(t, teams[0].ID, gotFinal.TeamA.ID)
	assert.Nil(t, gotFinal.TeamB)

	// исправленный четвертьфинал сбрасывает полуфинал и финал
	for i, m := range stage[models.RoundQuarterFinals] {
		if m.ID == "qf-1" {
			m.ScoreA2, m.ScoreB2 = models.IntPtr(0), models.IntPtr(3)
			stage[models.RoundQuarterFinals][i] = ResolveWinner(m)
		}
	}
	stage = PropagateWinners(stage)
	gotSF = stage[models.RoundSemiFinals][0]
	require.NotNil(t, gotSF.TeamA)
	assert.Equal(t, teams[1].ID, gotSF.TeamA.ID)
	assert.Nil(t, gotSF.ScoreA1)
	assert.Nil(t, gotSF.WinnerID)
	assert.Nil(t, stage[models.RoundFinal][0].TeamA)
}

func decidedTwoGroupBracket(t *testing.T) ([]models.Team, models.KnockoutStageRounds) {
	t.Helper()
	teams := fakeTeams(t, 4)
	res := BuildKnockoutBracket([]GroupStandings{
		groupTable("A", teams[0], teams[1]),
		groupTable("B", teams[2], teams[3]),
	})
	require.True(t, res.Success)
	stage := res.Stage

	sf1 := stage[models.RoundSemiFinals][0]
	sf1.ScoreA1, sf1.ScoreB1 = models.IntPtr(2), models.IntPtr(0)
	sf1.ScoreA2, sf1.ScoreB2 = models.IntPtr(0), models.IntPtr(0)
	stage[models.RoundSemiFinals][0] = ResolveWinner(sf1)
	sf2 := stage[models.RoundSemiFinals][1]
	sf2.ScoreA1, sf2.ScoreB1 = models.IntPtr(0), models.IntPtr(1)
	sf2.ScoreA2, sf2.ScoreB2 = models.IntPtr(0), models.IntPtr(1)
	stage[models.RoundSemiFinals][1] = ResolveWinner(sf2)

	stage = PropagateWinners(stage)
	final := stage[models.RoundFinal][0]
	require.NotNil(t, final.TeamA)
	require.NotNil(t, final.TeamB)
	final.ScoreA1, final.ScoreB1 = models.IntPtr(3), models.IntPtr(1)
	stage[models.RoundFinal][0] = ResolveWinner(final)
	require.NotNil(t, stage[models.RoundFinal][0].WinnerID)
	assert.Equal(t, teams[0].ID, *stage[models.RoundFinal][0].WinnerID)
	return teams, stage
}

func TestPropagateWinnersEmptiesSlotOfUndecidedFeeder(t *testing.T) {
	teams, stage := decidedTwoGroupBracket(t)

	// второй матч полуфинала исправлен: 2-2 по сумме, победитель не выбран
	sf1 := stage[models.RoundSemiFinals][0]
	sf1.ScoreA2, sf1.ScoreB2 = models.IntPtr(0), models.IntPtr(2)
	sf1.WinnerID = nil
	stage[models.RoundSemiFinals][0] = ResolveWinner(sf1)
	require.Nil(t, stage[models.RoundSemiFinals][0].WinnerID)

	stage = PropagateWinners(stage)
	final := stage[models.RoundFinal][0]
	assert.Nil(t, final.TeamA)
	require.NotNil(t, final.TeamB)
	assert.Equal(t, teams[1].ID, final.TeamB.ID)
	assert.Nil(t, final.ScoreA1)
	assert.Nil(t, final.ScoreB1)
	assert.Nil(t, final.WinnerID)
}

func TestPropagateWinnersResetsFinalWhenFeederWinnerChanges(t *testing.T) {
	teams, stage := decidedTwoGroupBracket(t)

	sf1 := stage[models.RoundSemiFinals][0]
	sf1.ScoreA2, sf1.ScoreB2 = models.IntPtr(0), models.IntPtr(3)
	stage[models.RoundSemiFinals][0] = ResolveWinner(sf1)

	stage = PropagateWinners(stage)
	final := stage[models.RoundFinal][0]
	require.NotNil(t, final.TeamA)
	assert.Equal(t, teams[3].ID, final.TeamA.ID)
	assert.Nil(t, final.ScoreA1, "the new finalist did not play the recorded final")
	assert.Nil(t, final.ScoreB1)
	assert.Nil(t, final.WinnerID)
	_, crowned := Winner(final)
	assert.False(t, crowned)
}
