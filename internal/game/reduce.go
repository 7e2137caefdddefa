package game

import (
	"github.com/quizfriends/quizmaster/internal/models"
)

// reduce applies one action to a state value and returns the next state. It
// is pure and total: no action fails, invalid input reduces to the unchanged
// state. Callers own validation; the store favors idempotence over strictness.
func reduce(state models.GameState, action Action) models.GameState {
	switch a := action.(type) {
	case AddPlayer:
		if _, exists := state.PlayerByName(a.Player.Name); exists {
			return state
		}
		state.Players = append(state.Players, a.Player)

	case RemovePlayer:
		players := state.Players[:0:0]
		for _, p := range state.Players {
			if p.Name != a.Name {
				players = append(players, p)
			}
		}
		state.Players = players
		// Cascade out of team rosters so no dangling reference remains.
		for i, team := range state.Teams {
			roster := team.Players[:0:0]
			for _, p := range team.Players {
				if p.Name != a.Name {
					roster = append(roster, p)
				}
			}
			state.Teams[i].Players = roster
		}

	case AddTeam:
		state.Teams = append(state.Teams, a.Team)

	case RemoveTeam:
		teams := state.Teams[:0:0]
		for _, t := range state.Teams {
			if t.ID != a.ID {
				teams = append(teams, t)
			}
		}
		state.Teams = teams

	case UpdateTeam:
		for i, t := range state.Teams {
			if t.ID != a.ID {
				continue
			}
			if a.Patch.Name != nil {
				t.Name = *a.Patch.Name
			}
			if a.Patch.Color != nil {
				t.Color = *a.Patch.Color
			}
			if a.Patch.Players != nil {
				t.Players = append([]models.Player(nil), (*a.Patch.Players)...)
			}
			state.Teams[i] = t
			break
		}

	case LoadQuestions:
		state.Questions = a.Questions

	case SetCurrentQuestion:
		state.CurrentQuestion = a.Question

	case SendQuestionToPlayers:
		q := a.Question
		state.DisplayedQuestion = &q
		state.Timer = models.TimerState{
			IsActive:      false,
			TimeRemaining: q.Timer,
			InitialTime:   q.Timer,
		}

	case ClearPlayerView:
		state.DisplayedQuestion = nil

	case UpdateScore:
		scores := make(map[string]int, len(state.Scores)+1)
		for name, score := range state.Scores {
			scores[name] = score
		}
		scores[a.Name] += a.Delta
		state.Scores = scores

	case SetPhase:
		state.Phase = a.Phase

	case SetAnswerMode:
		state.AnswerMode = a.Mode
		state.SelectedAnswerer = ""
		state.SelectedOpponent1 = ""
		state.SelectedOpponent2 = ""
		state.SelectedChampions = nil

	case SetSelectedAnswerer:
		state.SelectedAnswerer = a.Name

	case SetSelectedOpponents:
		state.SelectedOpponent1 = a.First
		state.SelectedOpponent2 = a.Second

	case SetSelectedChampions:
		champs := make(map[string][]string, len(state.SelectedChampions)+1)
		for team, list := range state.SelectedChampions {
			champs[team] = list
		}
		champs[a.Team] = append([]string(nil), a.Champions...)
		state.SelectedChampions = champs

	case ClearSelectedChampions:
		state.SelectedChampions = nil

	case SetTimerState:
		t := a.Timer
		if t.TimeRemaining <= 0 {
			// Reaching zero always forces the countdown inactive.
			t.TimeRemaining = 0
			t.IsActive = false
		}
		state.Timer = t

	case SetScoreboardMode:
		state.ScoreboardMode = a.Mode

	case ResetGame:
		return models.NewGameState()
	}

	return state
}
