package dto

import (
	"todoTracker/internal/models/task"
)

// CreatedAtLayout формат created_at в ответах
const CreatedAtLayout = "2006-01-02 15:04:05"

type TaskResponse struct {
	ID          int64   `json:"id"`
	UserID      *int64  `json:"user_id,omitempty"`
	Text        string  `json:"text"`
	Description string  `json:"description"`
	DueDate     *string `json:"due_date"`
	Category    string  `json:"category"`
	Completed   bool    `json:"completed"`
	CreatedAt   string  `json:"created_at"`
}

type DeleteResponse struct {
	Deleted bool  `json:"deleted"`
	ID      int64 `json:"id"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UserResponse struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

type AuthTestResponse struct {
	ServerSoftware       string `json:"server_software"`
	IsHTTPS              bool   `json:"is_https"`
	IsUserLoggedIn       bool   `json:"is_user_logged_in"`
	CurrentUserID        int64  `json:"current_user_id"`
	AuthBranch           string `json:"auth_branch"`
	SessionCookiePresent string `json:"session_cookie_present"`
	AuthHeaderPresent    string `json:"auth_header_present"`
	TransportAuthPresent string `json:"transport_auth_present"`
	AuthHeaderStatus     string `json:"auth_header_status"`
	AuthenticationTest   string `json:"authentication_test"`
	AuthenticatedUser    string `json:"authenticated_user,omitempty"`
	OwnershipEnforced    bool   `json:"ownership_enforced"`
	RestURL              string `json:"rest_url"`
}

func FromTask(t *task.Task) TaskResponse {
	resp := TaskResponse{
		ID:          t.ID,
		UserID:      t.OwnerID,
		Text:        t.Text,
		Description: t.Description,
		Category:    t.Category,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt.UTC().Format(CreatedAtLayout),
	}
	if due := t.DueDateString(); due != "" {
		resp.DueDate = &due
	}
	if resp.Category == "" {
		resp.Category = task.DefaultCategory
	}
	return resp
}

func FromTaskList(tasks []*task.Task) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t)
	}
	return result
}

func YesNo(present bool) string {
	if present {
		return "Yes"
	}
	return "No"
}
