package dto

import "time"

// QuestionDTO represents one question as it crosses the API boundary.
type QuestionDTO struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// UploadFormData is the form definition payload of an upload request.
type UploadFormData struct {
	FormName       string        `json:"formName"`
	IsSingleChoice *bool         `json:"isSingleChoice"`
	IsRandomized   *bool         `json:"isRandomized"`
	Questions      []QuestionDTO `json:"questions"`
	CorrectAnswer  [][]int       `json:"correctAnswer"`
}

// UploadFormRequest wraps the upload payload
// @Description Request body for uploading a form definition
type UploadFormRequest struct {
	Form *UploadFormData `json:"form"`
}

// SpecifyFormResponse is the response to a form fetch for taking.
// @Description Presented questions plus the opaque attempt token
type SpecifyFormResponse struct {
	Message        string        `json:"message"`
	Questions      []QuestionDTO `json:"questions"`
	FormIndex      string        `json:"formIndex"`
	IsSingleChoice bool          `json:"isSingleChoice"`
	FormName       string        `json:"formName"`
	Fid            string        `json:"fid"`
}

// VerifyFormRequest is a grading submission.
// Answers are presented-position option index sets; FormIndex is the token
// returned by the specify call.
type VerifyFormRequest struct {
	Fid       string  `json:"fid"`
	Answers   [][]int `json:"answers"`
	FormIndex string  `json:"formIndex"`
}

// VerifyFormResponse carries the computed score.
type VerifyFormResponse struct {
	Message string `json:"message"`
	Score   int    `json:"score"`
}

// FormAuthor identifies a form's author in listings.
type FormAuthor struct {
	UserName string `json:"userName"`
}

// FormInfo is one row of the form listing.
type FormInfo struct {
	ID             string     `json:"id"`
	FormName       string     `json:"formName"`
	FormCreateTime time.Time  `json:"formCreateTime"`
	Author         FormAuthor `json:"author"`
}

// FormInformationResponse is the paginated form listing.
type FormInformationResponse struct {
	Message    string     `json:"message"`
	Forms      []FormInfo `json:"forms"`
	TotalPages int        `json:"totalPages"`
}

// HistoryItem is one row of the caller's attempt history.
type HistoryItem struct {
	ID                    string    `json:"id"`
	FormName              string    `json:"formName"`
	Score                 int       `json:"score"`
	FormID                string    `json:"formId"`
	HistoryFormCreateTime time.Time `json:"historyFormCreateTime"`
}

// HistoryResponse is the paginated history listing with its cursor token.
type HistoryResponse struct {
	Message string        `json:"message"`
	History []HistoryItem `json:"history"`
	Token   string        `json:"token"`
	IsEnd   bool          `json:"isEnd"`
}

// HistoryDetailQuestion is one presented position of a past attempt.
// ErrorAnswerIndexs is set only for wrong questions and CorrectAnswerIndexs
// only for correct ones, both in presented-index space.
type HistoryDetailQuestion struct {
	Question            string   `json:"question"`
	Options             []string `json:"options"`
	IsError             bool     `json:"isError"`
	ErrorAnswerIndexs   []int    `json:"errorAnswerIndexs"`
	CorrectAnswerIndexs []int    `json:"correctAnswerIndexs"`
}

// HistoryDetailResponse reconstructs one past attempt in full.
type HistoryDetailResponse struct {
	Message        string                  `json:"message"`
	HistoryForm    []HistoryDetailQuestion `json:"historyForm"`
	FormName       string                  `json:"formName"`
	IsSingleChoice bool                    `json:"isSingleChoice"`
}

// ErrorResponse represents an error in the API response
type ErrorResponse struct {
	Error string `json:"error"`
}
