package gateway

import (
	"encoding/json"

	"github.com/quizarena/server/internal/domain"
)

// Inbound client intents.
const (
	evCreateGame     = "create_game"
	evJoinGame       = "join_game"
	evSelectQuestion = "select_question"
	evSubmitAnswer   = "submit_answer"
	evUseJoker       = "use_joker"
	evStartGame      = "start_game"
	evEndGame        = "end_game"
)

// Outbound events.
const (
	evGameCreated      = "game_created"
	evJoinedGame       = "joined_game"
	evGameStateUpdated = "game_state_updated"
	evQuestionSelected = "question_selected"
	evAnswerResult     = "answer_result"
	evJokerUsed        = "joker_used"
	evError            = "error"
)

// envelope is the inbound message wrapper.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// frame is the outbound message wrapper.
type frame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type createGamePayload struct {
	GameName string                 `json:"gameName"`
	Settings domain.SessionSettings `json:"settings"`
}

type joinGamePayload struct {
	GameCode  string `json:"gameCode"`
	TeamName  string `json:"teamName"`
	TeamColor string `json:"teamColor"`
}

type selectQuestionPayload struct {
	GameCode   string `json:"gameCode"`
	QuestionID string `json:"questionId"`
}

type submitAnswerPayload struct {
	GameCode      string `json:"gameCode"`
	TeamID        string `json:"teamId"`
	AnswerID      int64  `json:"answerId"`
	TimeRemaining int    `json:"timeRemaining"`
}

type useJokerPayload struct {
	GameCode  string `json:"gameCode"`
	TeamID    string `json:"teamId"`
	JokerType string `json:"jokerType"`
}

type gameRefPayload struct {
	GameCode string `json:"gameCode"`
}

type gameCreatedPayload struct {
	GameCode string `json:"gameCode"`
}

type joinedGamePayload struct {
	TeamID   string `json:"teamId"`
	GameCode string `json:"gameCode"`
}

type questionSelectedPayload struct {
	Question     domain.QuestionView `json:"question"`
	QuestionGrid [][]domain.Cell     `json:"questionGrid"`
}

type errorPayload struct {
	Message string `json:"message"`
}
