// Package console is the game master's control surface: the sole writer of
// the game state. It enforces the validation preconditions the store itself
// deliberately leaves to its caller, drives the timer and scoring engines,
// and serves the reverse channel coming back from displays.
package console

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/quizfriends/quizmaster/internal/broadcast"
	"github.com/quizfriends/quizmaster/internal/game"
	"github.com/quizfriends/quizmaster/internal/models"
	"github.com/quizfriends/quizmaster/internal/questions"
	"github.com/quizfriends/quizmaster/internal/scoring"
	"github.com/quizfriends/quizmaster/internal/timer"
)

var (
	ErrDuplicatePlayer = errors.New("a player with that name already exists")
	ErrUnknownPlayer   = errors.New("no such player")
	ErrUnknownTeam     = errors.New("no such team")
	ErrColorTaken      = errors.New("another team already uses that color")
)

// Console owns the store, timer engine, scoring engine and publisher.
type Console struct {
	store     *game.Store
	timer     *timer.Engine
	scoring   *scoring.Engine
	publisher *broadcast.Publisher
	transport broadcast.Transport
	origin    string
	trusted   string
}

// Config wires a console together.
type Config struct {
	// Transport carries snapshots out and reverse messages in.
	Transport broadcast.Transport
	// Origin is stamped onto outbound snapshots.
	Origin string
	// DisplayOrigin is the only origin accepted on reverse messages.
	DisplayOrigin string
	// Clock drives the timer engine; tests inject a fake.
	Clock clockwork.Clock
}

// New builds a console over a fresh store.
func New(cfg Config) *Console {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	store := game.NewStore()
	c := &Console{
		store:     store,
		scoring:   scoring.NewEngine(store),
		transport: cfg.Transport,
		origin:    cfg.Origin,
		trusted:   cfg.DisplayOrigin,
	}
	c.timer = timer.New(store, cfg.Clock, nil)
	if cfg.Transport != nil {
		c.publisher = broadcast.NewPublisher(store, cfg.Transport, cfg.Origin)
	}
	return c
}

// Store exposes the underlying store for read access by the operator UI.
func (c *Console) Store() *game.Store {
	return c.store
}

// State returns a snapshot of the authoritative state.
func (c *Console) State() models.GameState {
	return c.store.State()
}

// Run consumes reverse messages from displays until the context is cancelled.
func (c *Console) Run(ctx context.Context) {
	if c.transport == nil {
		<-ctx.Done()
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-c.transport.Receive():
			if !ok {
				return
			}
			c.handleReverse(msg)
		}
	}
}

func (c *Console) handleReverse(msg broadcast.Message) {
	if c.trusted != "" && msg.Origin != c.trusted {
		log.Warn().Str("origin", msg.Origin).Msg("rejecting message from untrusted origin")
		return
	}
	switch msg.Type {
	case broadcast.TypePlayerViewReady:
		// A display just mounted; push the current snapshot so it does not
		// wait for the next unrelated mutation.
		log.Info().Msg("display ready, pushing current snapshot")
		if c.publisher != nil {
			c.publisher.PushCurrent()
		}
	case broadcast.TypeHideScoreboard:
		c.store.Apply(game.SetScoreboardMode{Mode: models.ScoreboardHidden})
	default:
		log.Warn().Str("type", string(msg.Type)).Msg("ignoring unexpected display message")
	}
}

// Close tears the console down: timer first, so no tick can ever fire into a
// disposed store, then the publisher and transport.
func (c *Console) Close() error {
	c.timer.Stop()
	if c.publisher != nil {
		c.publisher.Close()
	}
	if c.transport != nil {
		return c.transport.Close()
	}
	return nil
}

// --- players and teams ---

// AddPlayer registers a player. Duplicate names are rejected here; the store
// itself would silently ignore them.
func (c *Console) AddPlayer(p models.Player) error {
	if p.Name == "" {
		return fmt.Errorf("player name is required")
	}
	if _, exists := c.store.State().PlayerByName(p.Name); exists {
		return fmt.Errorf("%w: %q", ErrDuplicatePlayer, p.Name)
	}
	c.store.Apply(game.AddPlayer{Player: p})
	return nil
}

// RemovePlayer removes a player; the store cascades the removal out of every
// team roster.
func (c *Console) RemovePlayer(name string) {
	c.store.Apply(game.RemovePlayer{Name: name})
}

// CreateTeam creates a team from player names already registered. Color
// uniqueness is advisory and enforced here, not in the store; an empty color
// picks the first free palette entry.
func (c *Console) CreateTeam(name string, playerNames []string, color string) (models.Team, error) {
	state := c.store.State()

	roster := make([]models.Player, 0, len(playerNames))
	for _, pn := range playerNames {
		p, ok := state.PlayerByName(pn)
		if !ok {
			return models.Team{}, fmt.Errorf("%w: %q", ErrUnknownPlayer, pn)
		}
		roster = append(roster, p)
	}

	used := map[string]bool{}
	for _, t := range state.Teams {
		used[t.Color] = true
	}
	if color == "" {
		for _, candidate := range models.TeamPalette {
			if !used[candidate] {
				color = candidate
				break
			}
		}
		if color == "" {
			color = models.TeamPalette[len(state.Teams)%len(models.TeamPalette)]
		}
	} else if used[color] {
		return models.Team{}, fmt.Errorf("%w: %s", ErrColorTaken, color)
	}

	team := models.Team{
		ID:      uuid.New(),
		Name:    name,
		Players: roster,
		Color:   color,
	}
	c.store.Apply(game.AddTeam{Team: team})
	return team, nil
}

// RemoveTeam deletes a team by ID.
func (c *Console) RemoveTeam(id uuid.UUID) {
	c.store.Apply(game.RemoveTeam{ID: id})
}

// RenameTeam changes a team's name.
func (c *Console) RenameTeam(id uuid.UUID, name string) error {
	if !c.teamExists(id) {
		return ErrUnknownTeam
	}
	c.store.Apply(game.UpdateTeam{ID: id, Patch: game.TeamPatch{Name: &name}})
	return nil
}

// RecolorTeam changes a team's color, keeping the advisory uniqueness check.
func (c *Console) RecolorTeam(id uuid.UUID, color string) error {
	state := c.store.State()
	found := false
	for _, t := range state.Teams {
		if t.ID == id {
			found = true
			continue
		}
		if t.Color == color {
			return fmt.Errorf("%w: %s", ErrColorTaken, color)
		}
	}
	if !found {
		return ErrUnknownTeam
	}
	c.store.Apply(game.UpdateTeam{ID: id, Patch: game.TeamPatch{Color: &color}})
	return nil
}

// SetTeamRoster replaces a team's membership with the named players.
func (c *Console) SetTeamRoster(id uuid.UUID, playerNames []string) error {
	state := c.store.State()
	roster := make([]models.Player, 0, len(playerNames))
	for _, pn := range playerNames {
		p, ok := state.PlayerByName(pn)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownPlayer, pn)
		}
		roster = append(roster, p)
	}
	if !c.teamExists(id) {
		return ErrUnknownTeam
	}
	c.store.Apply(game.UpdateTeam{ID: id, Patch: game.TeamPatch{Players: &roster}})
	return nil
}

func (c *Console) teamExists(id uuid.UUID) bool {
	for _, t := range c.store.State().Teams {
		if t.ID == id {
			return true
		}
	}
	return false
}

// --- question bank ---

// LoadQuestionBank replaces the bank wholesale with already-validated
// questions.
func (c *Console) LoadQuestionBank(qs []models.Question) {
	c.store.Apply(game.LoadQuestions{Questions: qs})
}

// LoadGameData seeds players, teams and questions from a validated game-data
// document, typically at startup.
func (c *Console) LoadGameData(data questions.GameData) {
	for _, p := range data.Players {
		c.store.Apply(game.AddPlayer{Player: p})
	}
	for _, t := range data.Teams {
		c.store.Apply(game.AddTeam{Team: t})
	}
	c.store.Apply(game.LoadQuestions{Questions: data.Questions})
}

// FilterQuestions narrows the loaded bank by the given filters.
func (c *Console) FilterQuestions(f models.QuestionFilters) []models.Question {
	var out []models.Question
	for _, q := range c.store.State().Questions {
		if f.Matches(q) {
			out = append(out, q)
		}
	}
	return out
}

// SelectQuestion sets the operator's working question. Nil clears it.
func (c *Console) SelectQuestion(q *models.Question) {
	c.store.Apply(game.SetCurrentQuestion{Question: q})
}

// SendQuestionToPlayers publishes a question to the displays. The store
// transition re-arms the timer at the question's duration as a coupled
// contract; the engine is synchronized first so no countdown keeps running
// underneath.
func (c *Console) SendQuestionToPlayers(q models.Question) {
	c.timer.SetInitialValue(q.Timer)
	c.store.Apply(game.SendQuestionToPlayers{Question: q})
}

// ClearPlayerView blanks the displayed question without touching timer or
// scores.
func (c *Console) ClearPlayerView() {
	c.store.Apply(game.ClearPlayerView{})
}

// --- modes, selections, scoring ---

// SetAnswerMode switches attribution mode; the transition clears every
// selection atomically.
func (c *Console) SetAnswerMode(mode models.AnswerMode) {
	c.store.Apply(game.SetAnswerMode{Mode: mode})
}

// SelectAnswerer picks the sole answerer for individual/teams mode. The name
// must be a known player or team, and a player must not be excluded by the
// current question's targets.
func (c *Console) SelectAnswerer(name string) error {
	state := c.store.State()
	if _, ok := state.TeamByName(name); !ok {
		if _, ok := state.PlayerByName(name); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownPlayer, name)
		}
		if state.CurrentQuestion != nil && state.CurrentQuestion.Excludes(name) {
			return fmt.Errorf("%q is excluded from answering this question", name)
		}
	}
	c.store.Apply(game.SetSelectedAnswerer{Name: name})
	return nil
}

// SelectOpponents picks both duel participants.
func (c *Console) SelectOpponents(first, second string) error {
	state := c.store.State()
	for _, name := range []string{first, second} {
		if _, ok := state.PlayerByName(name); ok {
			continue
		}
		if _, ok := state.TeamByName(name); ok {
			continue
		}
		return fmt.Errorf("%w: %q", ErrUnknownPlayer, name)
	}
	c.store.Apply(game.SetSelectedOpponents{First: first, Second: second})
	return nil
}

// SelectChampions replaces one team's champion roster. Every champion must be
// on that team.
func (c *Console) SelectChampions(teamName string, champions []string) error {
	state := c.store.State()
	team, ok := state.TeamByName(teamName)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTeam, teamName)
	}
	for _, name := range champions {
		if !team.HasPlayer(name) {
			return fmt.Errorf("%q is not on team %q", name, teamName)
		}
	}
	c.store.Apply(game.SetSelectedChampions{Team: teamName, Champions: champions})
	return nil
}

// ClearChampions drops all champion selections.
func (c *Console) ClearChampions() {
	c.store.Apply(game.ClearSelectedChampions{})
}

// AvailableAnswerers lists who may be offered as answerers under the current
// mode, excluding players targeted by the current question.
func (c *Console) AvailableAnswerers() []string {
	state := c.store.State()
	switch state.AnswerMode {
	case models.ModeTeams, models.ModeTeamsDuel, models.ModeChampions:
		names := make([]string, 0, len(state.Teams))
		for _, t := range state.Teams {
			names = append(names, t.Name)
		}
		return names
	default:
		var names []string
		for _, p := range state.Players {
			if state.CurrentQuestion != nil && state.CurrentQuestion.Excludes(p.Name) {
				continue
			}
			names = append(names, p.Name)
		}
		return names
	}
}

// Award applies a verdict to an eligible answerer.
func (c *Console) Award(name string, v scoring.Verdict) error {
	return c.scoring.Award(name, v)
}

// AdjustScore applies a raw manual correction to any player or team.
func (c *Console) AdjustScore(name string, delta int) {
	c.scoring.Adjust(name, delta)
}

// --- lifecycle, timer, scoreboard ---

// SetPhase moves the game lifecycle; any ordering is allowed by convention.
func (c *Console) SetPhase(phase models.GamePhase) {
	c.store.Apply(game.SetPhase{Phase: phase})
}

// NewGame wipes everything back to the initial state.
func (c *Console) NewGame() {
	c.timer.Stop()
	c.store.Apply(game.ResetGame{})
}

// SetScoreboardMode controls what displays may show.
func (c *Console) SetScoreboardMode(mode models.ScoreboardMode) {
	c.store.Apply(game.SetScoreboardMode{Mode: mode})
}

// Timer engine passthroughs.
func (c *Console) StartTimer(seconds int) { c.timer.Start(seconds) }
func (c *Console) ArmTimer(seconds int)   { c.timer.SetInitialValue(seconds) }
func (c *Console) PauseTimer()            { c.timer.Pause() }
func (c *Console) ResumeTimer()           { c.timer.Resume() }
func (c *Console) ResetTimer()            { c.timer.Reset() }
