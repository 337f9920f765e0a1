package models

// CatStatusRequest is the body of POST /cat/respond
type CatStatusRequest struct {
	Hunger     int    `json:"hunger"`
	Energy     int    `json:"energy"`
	Hygiene    int    `json:"hygiene"`
	Mood       int    `json:"mood"`
	Health     int    `json:"health"`
	LastAction string `json:"lastAction"`
}

// CatResponse is returned by POST /cat/respond
type CatResponse struct {
	Message string `json:"message"`
}

// StoryRequest is the body of POST /story/generate
type StoryRequest struct {
	Mood  int    `json:"mood"`
	Style string `json:"style"`
}

// StoryResponse is returned by POST /story/generate
type StoryResponse struct {
	StoryText string `json:"storyText"`
}

// HealthResponse is returned by the health endpoint
type HealthResponse struct {
	Status   string `json:"status"`
	Provider string `json:"provider"`
	Version  string `json:"version"`
}

// ErrorResponse is the standard error response format
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// StyleRegular is the story style the client requests
const StyleRegular = "regular"

// Error codes
const (
	CodeInvalidBody  = "INVALID_BODY"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeRateLimit    = "RATE_LIMIT"
)
