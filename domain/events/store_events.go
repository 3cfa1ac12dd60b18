package events

import (
	"time"
)

// UserLoggedIn is raised when a viewer logs in or registers
type UserLoggedIn struct {
	BaseEvent
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

func NewUserLoggedIn(userID, username string, at time.Time) UserLoggedIn {
	return UserLoggedIn{BaseEvent: newBase(userID, TypeUserLoggedIn, at), UserID: userID, Username: username}
}

// UserLoggedOut is raised when the viewer logs out
type UserLoggedOut struct {
	BaseEvent
	UserID string `json:"user_id"`
}

func NewUserLoggedOut(userID string, at time.Time) UserLoggedOut {
	return UserLoggedOut{BaseEvent: newBase(userID, TypeUserLoggedOut, at), UserID: userID}
}

// UserRegistered is raised for a brand new member
type UserRegistered struct {
	BaseEvent
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func NewUserRegistered(userID, username, email string, at time.Time) UserRegistered {
	return UserRegistered{
		BaseEvent: newBase(userID, TypeUserRegistered, at),
		UserID:    userID,
		Username:  username,
		Email:     email,
	}
}

// QuestionAsked is raised when a question is added
type QuestionAsked struct {
	BaseEvent
	QuestionID string   `json:"question_id"`
	AuthorID   string   `json:"author_id"`
	Title      string   `json:"title"`
	Tags       []string `json:"tags"`
}

func NewQuestionAsked(questionID, authorID, title string, tags []string, at time.Time) QuestionAsked {
	return QuestionAsked{
		BaseEvent:  newBase(questionID, TypeQuestionAsked, at),
		QuestionID: questionID,
		AuthorID:   authorID,
		Title:      title,
		Tags:       append([]string(nil), tags...),
	}
}

// QuestionVoted carries the tally after the vote action
type QuestionVoted struct {
	BaseEvent
	QuestionID string `json:"question_id"`
	Votes      int    `json:"votes"`
	UserVote   string `json:"user_vote"`
}

func NewQuestionVoted(questionID string, votes int, userVote string, at time.Time) QuestionVoted {
	return QuestionVoted{
		BaseEvent:  newBase(questionID, TypeQuestionVoted, at),
		QuestionID: questionID,
		Votes:      votes,
		UserVote:   userVote,
	}
}

// QuestionBookmarked carries the new bookmark flag
type QuestionBookmarked struct {
	BaseEvent
	QuestionID   string `json:"question_id"`
	IsBookmarked bool   `json:"is_bookmarked"`
}

func NewQuestionBookmarked(questionID string, bookmarked bool, at time.Time) QuestionBookmarked {
	return QuestionBookmarked{
		BaseEvent:    newBase(questionID, TypeQuestionBookmarked, at),
		QuestionID:   questionID,
		IsBookmarked: bookmarked,
	}
}

// QuestionViewed carries the view counter after increment
type QuestionViewed struct {
	BaseEvent
	QuestionID string `json:"question_id"`
	Views      int    `json:"views"`
}

func NewQuestionViewed(questionID string, views int, at time.Time) QuestionViewed {
	return QuestionViewed{BaseEvent: newBase(questionID, TypeQuestionViewed, at), QuestionID: questionID, Views: views}
}

// AnswerPosted is raised when an answer is appended to a question
type AnswerPosted struct {
	BaseEvent
	QuestionID string `json:"question_id"`
	AnswerID   string `json:"answer_id"`
	AuthorID   string `json:"author_id"`
}

func NewAnswerPosted(questionID, answerID, authorID string, at time.Time) AnswerPosted {
	return AnswerPosted{
		BaseEvent:  newBase(questionID, TypeAnswerPosted, at),
		QuestionID: questionID,
		AnswerID:   answerID,
		AuthorID:   authorID,
	}
}

// AnswerVoted carries the answer tally after the vote action
type AnswerVoted struct {
	BaseEvent
	QuestionID string `json:"question_id"`
	AnswerID   string `json:"answer_id"`
	Votes      int    `json:"votes"`
	UserVote   string `json:"user_vote"`
}

func NewAnswerVoted(questionID, answerID string, votes int, userVote string, at time.Time) AnswerVoted {
	return AnswerVoted{
		BaseEvent:  newBase(questionID, TypeAnswerVoted, at),
		QuestionID: questionID,
		AnswerID:   answerID,
		Votes:      votes,
		UserVote:   userVote,
	}
}

// AnswerAccepted reports the accepted answer after a toggle; empty when none
type AnswerAccepted struct {
	BaseEvent
	QuestionID       string `json:"question_id"`
	AcceptedAnswerID string `json:"accepted_answer_id"`
}

func NewAnswerAccepted(questionID, acceptedAnswerID string, at time.Time) AnswerAccepted {
	return AnswerAccepted{
		BaseEvent:        newBase(questionID, TypeAnswerAccepted, at),
		QuestionID:       questionID,
		AcceptedAnswerID: acceptedAnswerID,
	}
}
