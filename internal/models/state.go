package models

// GamePhase tracks where the operator is in the show lifecycle. The
// setup -> ongoing -> completed ordering is a convention, not enforced: the
// console deliberately allows jumping back to setup to start a new game.
type GamePhase string

const (
	PhaseSetup     GamePhase = "setup"
	PhaseOngoing   GamePhase = "ongoing"
	PhaseCompleted GamePhase = "completed"
)

// AnswerMode selects which attribution scheme governs point awards.
type AnswerMode string

const (
	ModeIndividual AnswerMode = "individual"
	ModeDuel       AnswerMode = "duel"
	ModeTeams      AnswerMode = "teams"
	ModeTeamsDuel  AnswerMode = "teams-duel"
	ModeChampions  AnswerMode = "champions"
)

// ScoreboardMode controls what the player display is allowed to show.
type ScoreboardMode string

const (
	ScoreboardPlayers ScoreboardMode = "players"
	ScoreboardTeams   ScoreboardMode = "teams"
	ScoreboardHidden  ScoreboardMode = "hidden"
)

// TimerState is the countdown clock as seen by both surfaces.
// TimeRemaining never exceeds InitialTime except transiently while a new
// initial value is being set, and reaching zero always forces IsActive false.
type TimerState struct {
	IsActive      bool `json:"is_active"`
	TimeRemaining int  `json:"time_remaining"`
	InitialTime   int  `json:"initial_time"`
}

// GameState is the single authoritative state aggregate. The console is its
// sole writer; the display only ever holds a wholly-replaced copy received
// over the broadcast channel.
type GameState struct {
	Players           []Player            `json:"players"`
	Teams             []Team              `json:"teams"`
	Questions         []Question          `json:"questions"`
	CurrentQuestion   *Question           `json:"current_question,omitempty"`
	DisplayedQuestion *Question           `json:"displayed_question,omitempty"`
	Scores            map[string]int      `json:"scores"`
	Phase             GamePhase           `json:"phase"`
	Timer             TimerState          `json:"timer"`
	AnswerMode        AnswerMode          `json:"answer_mode"`
	SelectedAnswerer  string              `json:"selected_answerer,omitempty"`
	SelectedOpponent1 string              `json:"selected_opponent1,omitempty"`
	SelectedOpponent2 string              `json:"selected_opponent2,omitempty"`
	SelectedChampions map[string][]string `json:"selected_champions,omitempty"`
	ScoreboardMode    ScoreboardMode      `json:"scoreboard_mode"`
}

// NewGameState returns the initial state for a fresh game.
func NewGameState() GameState {
	return GameState{
		Players:        []Player{},
		Teams:          []Team{},
		Questions:      []Question{},
		Scores:         map[string]int{},
		Phase:          PhaseSetup,
		AnswerMode:     ModeIndividual,
		ScoreboardMode: ScoreboardHidden,
	}
}

// Clone returns a deep copy. Snapshots handed to subscribers and serialized
// onto the broadcast channel must never alias store-owned memory.
func (s GameState) Clone() GameState {
	out := s

	out.Players = append([]Player(nil), s.Players...)

	out.Teams = make([]Team, len(s.Teams))
	for i, t := range s.Teams {
		t.Players = append([]Player(nil), t.Players...)
		out.Teams[i] = t
	}

	out.Questions = make([]Question, len(s.Questions))
	for i, q := range s.Questions {
		out.Questions[i] = cloneQuestion(q)
	}

	if s.CurrentQuestion != nil {
		q := cloneQuestion(*s.CurrentQuestion)
		out.CurrentQuestion = &q
	}
	if s.DisplayedQuestion != nil {
		q := cloneQuestion(*s.DisplayedQuestion)
		out.DisplayedQuestion = &q
	}

	out.Scores = make(map[string]int, len(s.Scores))
	for name, score := range s.Scores {
		out.Scores[name] = score
	}

	if s.SelectedChampions != nil {
		out.SelectedChampions = make(map[string][]string, len(s.SelectedChampions))
		for team, champs := range s.SelectedChampions {
			out.SelectedChampions[team] = append([]string(nil), champs...)
		}
	}

	return out
}

func cloneQuestion(q Question) Question {
	q.Tags = append([]string(nil), q.Tags...)
	q.Targets = append([]string(nil), q.Targets...)
	return q
}

// PlayerByName returns the player with the given name, if present.
func (s GameState) PlayerByName(name string) (Player, bool) {
	for _, p := range s.Players {
		if p.Name == name {
			return p, true
		}
	}
	return Player{}, false
}

// TeamByName returns the team with the given name, if present.
func (s GameState) TeamByName(name string) (Team, bool) {
	for _, t := range s.Teams {
		if t.Name == name {
			return t, true
		}
	}
	return Team{}, false
}

// Score returns the ledger value for a name; absent entries read as zero.
func (s GameState) Score(name string) int {
	return s.Scores[name]
}
