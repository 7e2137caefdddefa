package game

import (
	"github.com/google/uuid"

	"github.com/quizfriends/quizmaster/internal/models"
)

// Action is the tagged-variant command type consumed by the reducer. Every
// state change, including timer ticks, flows through exactly one Action.
type Action interface {
	isAction()
}

// AddPlayer appends a player. A duplicate name is a silent no-op; the console
// pre-validates and reports duplicates to the operator.
type AddPlayer struct {
	Player models.Player
}

// RemovePlayer removes a player by name and cascades the removal out of every
// team roster, so no team ever carries a dangling player reference.
type RemovePlayer struct {
	Name string
}

// AddTeam appends a team. Color uniqueness is advisory; the store accepts
// whatever it is given.
type AddTeam struct {
	Team models.Team
}

// RemoveTeam removes a team by ID. Unknown IDs are a silent no-op.
type RemoveTeam struct {
	ID uuid.UUID
}

// TeamPatch carries the mutable team fields; nil means leave unchanged.
type TeamPatch struct {
	Name    *string
	Color   *string
	Players *[]models.Player
}

// UpdateTeam applies a patch to the team with the given ID.
type UpdateTeam struct {
	ID    uuid.UUID
	Patch TeamPatch
}

// LoadQuestions replaces the question bank wholesale.
type LoadQuestions struct {
	Questions []models.Question
}

// SetCurrentQuestion changes the operator's working selection. Nil clears it.
type SetCurrentQuestion struct {
	Question *models.Question
}

// SendQuestionToPlayers publishes a question to the display surface and, as a
// coupled contract, re-arms the timer at the question's own duration with the
// countdown stopped.
type SendQuestionToPlayers struct {
	Question models.Question
}

// ClearPlayerView blanks the displayed question. Timer and scores are
// untouched.
type ClearPlayerView struct{}

// UpdateScore applies an additive delta to the named ledger entry. Deltas may
// be negative; there is no floor or ceiling.
type UpdateScore struct {
	Name  string
	Delta int
}

// SetPhase moves the game lifecycle. Any ordering is accepted.
type SetPhase struct {
	Phase models.GamePhase
}

// SetAnswerMode switches the attribution scheme and atomically clears every
// selection field. No stale selection survives a mode switch.
type SetAnswerMode struct {
	Mode models.AnswerMode
}

// SetSelectedAnswerer records the sole answerer for individual/teams modes.
type SetSelectedAnswerer struct {
	Name string
}

// SetSelectedOpponents records both duel participants.
type SetSelectedOpponents struct {
	First  string
	Second string
}

// SetSelectedChampions replaces (never merges) the champion roster for one
// team.
type SetSelectedChampions struct {
	Team      string
	Champions []string
}

// ClearSelectedChampions drops every champion selection.
type ClearSelectedChampions struct{}

// SetTimerState overwrites the timer fields. Issued only by the timer engine,
// which is the sole timer writer while a countdown runs.
type SetTimerState struct {
	Timer models.TimerState
}

// SetScoreboardMode controls what the display is allowed to show.
type SetScoreboardMode struct {
	Mode models.ScoreboardMode
}

// ResetGame wipes everything back to the initial state for a new game.
type ResetGame struct{}

func (AddPlayer) isAction()              {}
func (RemovePlayer) isAction()           {}
func (AddTeam) isAction()                {}
func (RemoveTeam) isAction()             {}
func (UpdateTeam) isAction()             {}
func (LoadQuestions) isAction()          {}
func (SetCurrentQuestion) isAction()     {}
func (SendQuestionToPlayers) isAction()  {}
func (ClearPlayerView) isAction()        {}
func (UpdateScore) isAction()            {}
func (SetPhase) isAction()               {}
func (SetAnswerMode) isAction()          {}
func (SetSelectedAnswerer) isAction()    {}
func (SetSelectedOpponents) isAction()   {}
func (SetSelectedChampions) isAction()   {}
func (ClearSelectedChampions) isAction() {}
func (SetTimerState) isAction()          {}
func (SetScoreboardMode) isAction()      {}
func (ResetGame) isAction()              {}
