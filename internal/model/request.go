package model

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type TaskRequest struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	Status        string `json:"status"`
	Priority      string `json:"priority"`
	Assignee      string `json:"assignee"`
	Tags          string `json:"tags"`
	EstimateHours *int   `json:"estimate_hours"`
	Archived      *bool  `json:"archived"`
	DueDate       string `json:"due_date"`
}

// TaskPatchRequest carries a merge-patch: nil fields are left untouched,
// an empty due_date string clears the due date.
type TaskPatchRequest struct {
	Title         *string `json:"title"`
	Description   *string `json:"description"`
	Status        *string `json:"status"`
	Priority      *string `json:"priority"`
	Assignee      *string `json:"assignee"`
	Tags          *string `json:"tags"`
	EstimateHours *int    `json:"estimate_hours"`
	Archived      *bool   `json:"archived"`
	DueDate       *string `json:"due_date"`
}
