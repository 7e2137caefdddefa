// Package scoring translates an operator's award gesture plus the current
// answer mode and selection fields into score ledger deltas.
package scoring

import (
	"fmt"

	"github.com/quizfriends/quizmaster/internal/game"
	"github.com/quizfriends/quizmaster/internal/models"
)

type verdictKind int

const (
	verdictCorrect verdictKind = iota
	verdictWrong
	verdictCustom
)

// Verdict is the operator's judgement of an answer. Correct awards the active
// question's difficulty, Wrong always costs one point, Custom is an arbitrary
// operator-entered delta.
type Verdict struct {
	kind   verdictKind
	points int
}

func Correct() Verdict          { return Verdict{kind: verdictCorrect} }
func Wrong() Verdict            { return Verdict{kind: verdictWrong} }
func Custom(points int) Verdict { return Verdict{kind: verdictCustom, points: points} }

// Delta resolves a verdict to a point delta against the active question.
// Correct with no active question yields zero.
func Delta(state models.GameState, v Verdict) int {
	switch v.kind {
	case verdictCorrect:
		if state.CurrentQuestion == nil {
			return 0
		}
		return state.CurrentQuestion.Difficulty
	case verdictWrong:
		return -1
	default:
		return v.points
	}
}

// Eligible returns the names that may be awarded under the current mode and
// selection fields:
//
//   - individual/teams: the sole selected answerer
//   - duel/teams-duel: both opponents, each independently awardable
//   - champions: every team with at least one selected champion; equal
//     champion counts across teams are not required
func Eligible(state models.GameState) []string {
	switch state.AnswerMode {
	case models.ModeIndividual, models.ModeTeams:
		if state.SelectedAnswerer == "" {
			return nil
		}
		return []string{state.SelectedAnswerer}

	case models.ModeDuel, models.ModeTeamsDuel:
		var names []string
		if state.SelectedOpponent1 != "" {
			names = append(names, state.SelectedOpponent1)
		}
		if state.SelectedOpponent2 != "" {
			names = append(names, state.SelectedOpponent2)
		}
		return names

	case models.ModeChampions:
		var names []string
		for _, team := range state.Teams {
			if len(state.SelectedChampions[team.Name]) > 0 {
				names = append(names, team.Name)
			}
		}
		return names
	}
	return nil
}

// Engine folds verdicts into the ledger through the store. Scoring touches no
// state other than the ledger.
type Engine struct {
	store *game.Store
}

// NewEngine creates a scoring engine over the given store.
func NewEngine(store *game.Store) *Engine {
	return &Engine{store: store}
}

// Award applies a verdict to the named player or team. The name must be
// eligible under the current answer mode and selection.
func (e *Engine) Award(name string, v Verdict) error {
	state := e.store.State()
	if !containsName(Eligible(state), name) {
		return fmt.Errorf("%q is not an eligible answerer in %s mode", name, state.AnswerMode)
	}
	delta := Delta(state, v)
	if delta == 0 {
		return nil
	}
	e.store.Apply(game.UpdateScore{Name: name, Delta: delta})
	return nil
}

// Adjust applies a raw manual delta to any name, bypassing eligibility. Used
// for the operator's manual score correction control.
func (e *Engine) Adjust(name string, delta int) {
	if delta == 0 {
		return
	}
	e.store.Apply(game.UpdateScore{Name: name, Delta: delta})
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
