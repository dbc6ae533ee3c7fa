package domain

// Status is the lifecycle state of a game session.
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusActive   Status = "active"
	StatusFinished Status = "finished"
)

// SessionSettings carries the recognized per-game options. RisikoEnabled is a
// pointer so an omitted value can be told apart from an explicit false; the
// game core resolves defaults.
type SessionSettings struct {
	MaxTeams      int   `json:"maxTeams"`
	JokerCount    int   `json:"jokerCount"`
	RisikoEnabled *bool `json:"risikoEnabled"`
}

// Team is one playing team within a session. Teams are created on join and
// live for the whole session.
type Team struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Color           string `json:"color"`
	Score           int    `json:"score"`
	JokersRemaining int    `json:"jokersRemaining"`
}

// Cell is one (category, point-tier) slot on the question board. Used is a
// one-way flag; IsRisiko is fixed at board generation.
type Cell struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Points   int    `json:"points"`
	Used     bool   `json:"used"`
	IsRisiko bool   `json:"isRisiko"`
}

// Option is an answer option including the correct-answer marker. Never sent
// to clients as-is, see OptionView.
type Option struct {
	ID        int64
	Text      string
	IsCorrect bool
}

// Question is the full in-play question, including which option is correct.
type Question struct {
	ID        int64
	Text      string
	Category  string
	Points    int
	TimeLimit int
	IsRisiko  bool
	Options   []Option
}

// View returns the broadcast-safe projection of the question, with the
// correct-answer identity withheld.
func (q *Question) View() QuestionView {
	opts := make([]OptionView, 0, len(q.Options))
	for _, o := range q.Options {
		opts = append(opts, OptionView{ID: o.ID, Text: o.Text})
	}

	return QuestionView{
		ID:        q.ID,
		Text:      q.Text,
		Category:  q.Category,
		Points:    q.Points,
		IsRisiko:  q.IsRisiko,
		TimeLimit: q.TimeLimit,
		Options:   opts,
	}
}

// CorrectOption returns the single correct option of the question. A question
// always carries exactly one; the catalog and the fallback path both
// guarantee it.
func (q *Question) CorrectOption() Option {
	for _, o := range q.Options {
		if o.IsCorrect {
			return o
		}
	}

	return Option{}
}

type QuestionView struct {
	ID        int64        `json:"id"`
	Text      string       `json:"text"`
	Category  string       `json:"category"`
	Points    int          `json:"points"`
	IsRisiko  bool         `json:"isRisiko"`
	TimeLimit int          `json:"timeLimit"`
	Options   []OptionView `json:"options"`
}

type OptionView struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

// ActiveJokers records which one-shot effects are armed for the in-flight
// question. All flags clear whenever the active question is cleared.
type ActiveJokers struct {
	DoublePoints bool `json:"doublePoints"`
	ExtraTime    bool `json:"extraTime"`
	FiftyFifty   bool `json:"fiftyFifty"`
}

// GameState is the shared session snapshot broadcast to all participants.
type GameState struct {
	Teams        []Team   `json:"teams"`
	Status       Status   `json:"status"`
	QuestionGrid [][]Cell `json:"questionGrid"`
}

// SessionSummary is the read-only listing shape for health and admin
// endpoints.
type SessionSummary struct {
	GameCode string `json:"gameCode"`
	Name     string `json:"name"`
	Status   Status `json:"status"`
	Teams    int    `json:"teams"`
	MaxTeams int    `json:"maxTeams"`
}

// AnswerResult is the resolution of one answer submission.
type AnswerResult struct {
	TeamID          string `json:"teamId"`
	TeamName        string `json:"teamName"`
	IsCorrect       bool   `json:"isCorrect"`
	PointsAwarded   int    `json:"pointsAwarded"`
	CorrectAnswerID int64  `json:"correctAnswerId"`
	NewScore        int    `json:"newScore"`
	Teams           []Team `json:"teams"`
	WasRisiko       bool   `json:"wasRisiko"`
	WasDoublePoints bool   `json:"wasDoublePoints"`
}

// Joker kinds as they appear on the wire.
const (
	JokerDoublePoints = "double_points"
	JokerExtraTime    = "extra_time"
	JokerFiftyFifty   = "50_50"
)

// JokerEffect is the tagged result of using a joker; each variant carries the
// statically-known fields for its kind.
type JokerEffect interface {
	JokerType() string
}

// DoublePointsEffect arms the double-points flag for the next correct answer.
type DoublePointsEffect struct {
	Type       string `json:"type"`
	Message    string `json:"message"`
	TeamEffect bool   `json:"teamEffect"`
}

func (DoublePointsEffect) JokerType() string { return JokerDoublePoints }

// ExtraTimeEffect adds a fixed bonus to the shared countdown for every team.
type ExtraTimeEffect struct {
	Type         string `json:"type"`
	Message      string `json:"message"`
	GlobalEffect bool   `json:"globalEffect"`
	TimeBonus    int    `json:"timeBonus"`
}

func (ExtraTimeEffect) JokerType() string { return JokerExtraTime }

// FiftyFiftyEffect marks two incorrect options as eliminated for all teams.
// The question's option set is not mutated; clients disable the options.
type FiftyFiftyEffect struct {
	Type              string  `json:"type"`
	Message           string  `json:"message"`
	GlobalEffect      bool    `json:"globalEffect"`
	EliminatedOptions []int64 `json:"eliminatedOptions"`
}

func (FiftyFiftyEffect) JokerType() string { return JokerFiftyFifty }

// JokerUse is the broadcast record of one joker use.
type JokerUse struct {
	TeamID          string      `json:"teamId"`
	TeamName        string      `json:"teamName"`
	JokerType       string      `json:"jokerType"`
	Effect          JokerEffect `json:"effect"`
	JokersRemaining int         `json:"jokersRemaining"`
}

// DefaultCategories is the board used when the deployment configures none.
var DefaultCategories = []string{
	"Geography",
	"History",
	"Science",
	"Sports",
	"Entertainment",
	"General Knowledge",
}

// PointTiers is the canonical column layout of a question board.
var PointTiers = []int{100, 200, 300, 400, 500}
