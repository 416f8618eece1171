package def

import "time"

type CreateStoryRequest struct {
	Theme string `json:"theme"`
}

type GetJobRequest struct {
	JobID string `json:"job_id"`
}

type GetCompleteStoryRequest struct {
	StoryID uint64 `json:"story_id"`
}

// JobResponse 任务状态，story_id 只在完成后出现
type JobResponse struct {
	JobID       string     `json:"job_id"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	StoryID     *uint64    `json:"story_id,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       *string    `json:"error,omitempty"`
}

type OptionResponse struct {
	Text   string `json:"text"`
	NodeID uint64 `json:"node_id"`
}

type NodeResponse struct {
	ID              uint64           `json:"id"`
	Content         string           `json:"content"`
	IsRoot          bool             `json:"is_root"`
	IsEnding        bool             `json:"is_ending"`
	IsWinningEnding bool             `json:"is_winning_ending"`
	Options         []OptionResponse `json:"options"`
}

type CompleteStoryResponse struct {
	ID        uint64                   `json:"id"`
	Title     string                   `json:"title"`
	SessionID string                   `json:"session_id"`
	CreatedAt time.Time                `json:"created_at"`
	RootNode  *NodeResponse            `json:"root_node"`
	AllNodes  map[uint64]*NodeResponse `json:"all_nodes"`
}
