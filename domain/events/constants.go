package events

// SourceStore is the event source for state-container changes
const SourceStore = "stackecho.store"

// Event types
const (
	TypeUserLoggedIn   = "user.logged_in"
	TypeUserLoggedOut  = "user.logged_out"
	TypeUserRegistered = "user.registered"

	TypeQuestionAsked      = "question.asked"
	TypeQuestionVoted      = "question.voted"
	TypeQuestionBookmarked = "question.bookmarked"
	TypeQuestionViewed     = "question.viewed"

	TypeAnswerPosted   = "answer.posted"
	TypeAnswerVoted    = "answer.voted"
	TypeAnswerAccepted = "answer.accepted"
)
