package domain

const (
	EventNameGameCreated      = "game.created"
	EventNameTeamJoined       = "game.team_joined"
	EventNameStatusChanged    = "game.status_changed"
	EventNameQuestionSelected = "game.question_selected"
	EventNameAnswerResolved   = "game.answer_resolved"
	EventNameJokerUsed        = "game.joker_used"
)

type EventGameCreated struct {
	GameCode string
	GameName string
}

func (EventGameCreated) Name() string { return EventNameGameCreated }

type EventTeamJoined struct {
	GameCode string
	Team     Team
	State    GameState
}

func (EventTeamJoined) Name() string { return EventNameTeamJoined }

type EventStatusChanged struct {
	GameCode string
	State    GameState
}

func (EventStatusChanged) Name() string { return EventNameStatusChanged }

type EventQuestionSelected struct {
	GameCode     string
	Question     QuestionView
	QuestionGrid [][]Cell
}

func (EventQuestionSelected) Name() string { return EventNameQuestionSelected }

type EventAnswerResolved struct {
	GameCode string
	Result   AnswerResult
}

func (EventAnswerResolved) Name() string { return EventNameAnswerResolved }

type EventJokerUsed struct {
	GameCode string
	Use      JokerUse
}

func (EventJokerUsed) Name() string { return EventNameJokerUsed }
