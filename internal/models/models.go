package models

import "time"

// Report types
const (
	ReportTypeBarrier = "barrier"
	ReportTypePraise  = "praise"
)

// Report statuses
const (
	ReportStatusActive   = "active"
	ReportStatusResolved = "resolved"
	ReportStatusArchived = "archived"
)

// Administrative review statuses
const (
	AdminStatusPending    = "pending"
	AdminStatusProcessing = "processing"
	AdminStatusCompleted  = "completed"
)

// Verification kinds
const (
	VerificationConfirm  = "confirm"
	VerificationResolved = "resolved"
)

// Quest types and statuses
const (
	QuestTypeDaily   = "daily"
	QuestTypeWeekly  = "weekly"
	QuestTypeSpecial = "special"

	QuestStatusActive   = "active"
	QuestStatusInactive = "inactive"
)

// Identity providers
const (
	ProviderGoogle = "google"
	ProviderKakao  = "kakao"
	ProviderNaver  = "naver"
)

// User represents a signed-in citizen and their gamification state
type User struct {
	ID                   string    `json:"user_id"`
	Email                string    `json:"email"`
	Name                 string    `json:"name"`
	Nickname             string    `json:"nickname"`
	Provider             string    `json:"provider"`
	AvatarItems          []string  `json:"avatar_items"`
	AccessibilityProfile string    `json:"accessibility_profile,omitempty"`
	XP                   int       `json:"xp"`
	Level                int       `json:"level"`
	Points               int       `json:"points"`
	Titles               []string  `json:"titles"`
	TeamID               string    `json:"team_id,omitempty"`
	PushToken            string    `json:"-"`
	CreatedAt            time.Time `json:"created_at"`
	LastLogin            time.Time `json:"last_login"`
}

// AIAnalysis is the image classification attached to a report
type AIAnalysis struct {
	DetectedCategory string   `json:"detected_category"`
	Severity         string   `json:"severity,omitempty"`
	Description      string   `json:"description"`
	Tags             []string `json:"tags"`
}

// Report is one observation of a barrier or of a praiseworthy feature
type Report struct {
	ID              string      `json:"report_id"`
	UserID          string      `json:"user_id"`
	Type            string      `json:"type"`
	Category        string      `json:"category"`
	Latitude        float64     `json:"latitude"`
	Longitude       float64     `json:"longitude"`
	Address         string      `json:"address"`
	City            string      `json:"city"`
	District        string      `json:"district"`
	Description     string      `json:"description"`
	MediaURLs       []string    `json:"media_urls"`
	AIAnalysis      *AIAnalysis `json:"ai_analysis,omitempty"`
	ConfidenceScore int         `json:"confidence_score"`
	VerifyCount     int         `json:"verify_count"`
	Status          string      `json:"status"`
	ResolvedBy      string      `json:"resolved_by,omitempty"`
	ResolvedAt      *time.Time  `json:"resolved_at,omitempty"`
	AdminStatus     string      `json:"admin_status"`
	AdminNote       string      `json:"admin_note,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// Verification is an immutable confirm or resolved event on a report
type Verification struct {
	ID        string    `json:"verification_id"`
	ReportID  string    `json:"report_id"`
	UserID    string    `json:"user_id"`
	Type      string    `json:"type"`
	MediaURLs []string  `json:"media_urls"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Quest is a task definition with a target count and rewards
type Quest struct {
	ID            string     `json:"quest_id"`
	Type          string     `json:"type"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	TriggerAction string     `json:"trigger_action"`
	TargetCount   int        `json:"target_count"`
	XPReward      int        `json:"xp_reward"`
	PointReward   int        `json:"point_reward"`
	StartDate     time.Time  `json:"start_date"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
}

// UserQuest tracks one user's progress against one quest
type UserQuest struct {
	ID          string     `json:"user_quest_id"`
	UserID      string     `json:"user_id"`
	QuestID     string     `json:"quest_id"`
	Progress    int        `json:"progress"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Claimed     bool       `json:"claimed"`
	ClaimedAt   *time.Time `json:"claimed_at,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
}

// QuestWithProgress is a quest annotated with the caller's progress
type QuestWithProgress struct {
	Quest
	UserProgress  int  `json:"user_progress"`
	UserCompleted bool `json:"user_completed"`
	UserClaimed   bool `json:"user_claimed"`
}

// Team is a named group of users
type Team struct {
	ID          string    `json:"team_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	LeaderID    string    `json:"leader_id"`
	MemberIDs   []string  `json:"member_ids"`
	TotalXP     int       `json:"total_xp"`
	Level       int       `json:"level"`
	IsPublic    bool      `json:"is_public"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Notification is a message shown to a user
type Notification struct {
	ID        string    `json:"notification_id"`
	UserID    string    `json:"user_id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Link      string    `json:"link,omitempty"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
