package models

// Question is a single entry of the loaded question bank. Questions are
// immutable once loaded; the title is the unique key within a bank.
type Question struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Answer     string   `json:"answer"`
	Difficulty int      `json:"difficulty"` // 1..3
	Tags       []string `json:"tags"`
	Targets    []string `json:"targets,omitempty"` // player names excluded from answering
	Timer      int      `json:"timer,omitempty"`   // seconds, 0 = no timer
	Photo      string   `json:"photo,omitempty"`
}

// Excludes reports whether the named player is barred from answering this
// question.
func (q Question) Excludes(name string) bool {
	for _, t := range q.Targets {
		if t == name {
			return true
		}
	}
	return false
}

// QuestionFilters narrows a question bank by tags, difficulties and targeted
// players. Empty fields match everything.
type QuestionFilters struct {
	Tags         []string
	Difficulties []int
	Targets      []string
}

// Matches reports whether the question satisfies every non-empty filter field.
func (f QuestionFilters) Matches(q Question) bool {
	if len(f.Difficulties) > 0 && !containsInt(f.Difficulties, q.Difficulty) {
		return false
	}
	if len(f.Tags) > 0 {
		found := false
		for _, tag := range f.Tags {
			if containsString(q.Tags, tag) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(f.Targets) > 0 {
		found := false
		for _, target := range f.Targets {
			if containsString(q.Targets, target) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsInt(list []int, n int) bool {
	for _, v := range list {
		if v == n {
			return true
		}
	}
	return false
}
