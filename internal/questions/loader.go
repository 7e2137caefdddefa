// Package questions loads question banks and whole-game setups from YAML.
// Loading is all-or-nothing: every entry is validated before anything is
// returned, so the store is never fed partial or invalid data.
package questions

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/quizfriends/quizmaster/internal/models"
)

type rawQuestion struct {
	Title      string   `yaml:"title"`
	Content    string   `yaml:"content"`
	Answer     string   `yaml:"answer"`
	Difficulty int      `yaml:"difficulty"`
	Tags       []string `yaml:"tags"`
	Targets    []string `yaml:"targets"`
	Timer      int      `yaml:"timer"`
	Photo      string   `yaml:"photo"`
}

// rawPlayer accepts either a bare name string or a {name, profile_picture}
// mapping, matching the original file format.
type rawPlayer struct {
	Name           string
	ProfilePicture string
}

func (p *rawPlayer) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Decode(&p.Name)
	case yaml.MappingNode:
		var obj struct {
			Name           string `yaml:"name"`
			ProfilePicture string `yaml:"profile_picture"`
		}
		if err := node.Decode(&obj); err != nil {
			return err
		}
		p.Name = obj.Name
		p.ProfilePicture = obj.ProfilePicture
		return nil
	default:
		return fmt.Errorf("player entry must be a name or a mapping")
	}
}

type rawTeam struct {
	Name    string   `yaml:"name"`
	Players []string `yaml:"players"`
	Color   string   `yaml:"color"`
}

type bankFile struct {
	Questions []rawQuestion `yaml:"questions"`
}

type gameDataFile struct {
	Questions []rawQuestion `yaml:"questions"`
	Players   []rawPlayer   `yaml:"players"`
	Teams     []rawTeam     `yaml:"teams"`
}

// GameData is a fully-validated whole-game setup ready to feed the store.
type GameData struct {
	Questions []models.Question
	Players   []models.Player
	Teams     []models.Team
}

// LoadQuestions parses and validates a {questions: [...]} document.
func LoadQuestions(r io.Reader) ([]models.Question, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read question bank: %w", err)
	}

	var file bankFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse question bank: %w", err)
	}
	if file.Questions == nil {
		return nil, fmt.Errorf("invalid question bank: questions list not found")
	}
	return convertQuestions(file.Questions)
}

// LoadGameData parses and validates a whole-game document carrying questions
// plus optional initial players and teams.
func LoadGameData(r io.Reader) (GameData, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return GameData{}, fmt.Errorf("failed to read game data: %w", err)
	}

	var file gameDataFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return GameData{}, fmt.Errorf("failed to parse game data: %w", err)
	}
	if file.Questions == nil {
		return GameData{}, fmt.Errorf("invalid game data: questions list not found")
	}

	out := GameData{Players: []models.Player{}, Teams: []models.Team{}}

	out.Questions, err = convertQuestions(file.Questions)
	if err != nil {
		return GameData{}, err
	}

	seenPlayers := map[string]bool{}
	for i, p := range file.Players {
		if p.Name == "" {
			return GameData{}, fmt.Errorf("player %d: name is required", i+1)
		}
		if seenPlayers[p.Name] {
			return GameData{}, fmt.Errorf("duplicate player name %q", p.Name)
		}
		seenPlayers[p.Name] = true
		out.Players = append(out.Players, models.Player{
			Name:           p.Name,
			ProfilePicture: p.ProfilePicture,
		})
	}

	for i, t := range file.Teams {
		team, err := convertTeam(t, i, out.Players, seenPlayers)
		if err != nil {
			return GameData{}, err
		}
		out.Teams = append(out.Teams, team)
	}

	return out, nil
}

func convertQuestions(raw []rawQuestion) ([]models.Question, error) {
	questions := make([]models.Question, 0, len(raw))
	seen := map[string]bool{}
	for i, q := range raw {
		if q.Title == "" {
			return nil, fmt.Errorf("question %d: title is required", i+1)
		}
		if seen[q.Title] {
			return nil, fmt.Errorf("duplicate question title %q", q.Title)
		}
		seen[q.Title] = true
		if q.Difficulty < 1 || q.Difficulty > 3 {
			return nil, fmt.Errorf("question %q: difficulty must be 1, 2 or 3, got %d", q.Title, q.Difficulty)
		}
		if q.Timer < 0 {
			return nil, fmt.Errorf("question %q: timer must not be negative", q.Title)
		}
		tags := q.Tags
		if tags == nil {
			tags = []string{}
		}
		questions = append(questions, models.Question{
			Title:      q.Title,
			Content:    q.Content,
			Answer:     q.Answer,
			Difficulty: q.Difficulty,
			Tags:       tags,
			Targets:    q.Targets,
			Timer:      q.Timer,
			Photo:      q.Photo,
		})
	}
	return questions, nil
}

func convertTeam(t rawTeam, index int, players []models.Player, known map[string]bool) (models.Team, error) {
	if t.Name == "" {
		return models.Team{}, fmt.Errorf("team %d: name is required", index+1)
	}

	roster := make([]models.Player, 0, len(t.Players))
	for _, name := range t.Players {
		if !known[name] {
			return models.Team{}, fmt.Errorf("team %q: unknown player %q", t.Name, name)
		}
		for _, p := range players {
			if p.Name == name {
				roster = append(roster, p)
				break
			}
		}
	}

	color := t.Color
	if color == "" {
		color = models.TeamPalette[index%len(models.TeamPalette)]
	}

	return models.Team{
		ID:      uuid.New(),
		Name:    t.Name,
		Players: roster,
		Color:   color,
	}, nil
}
