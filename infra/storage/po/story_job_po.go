package po

import (
	"time"

	"gorm.io/gorm"
)

type StoryJobPO struct {
	ID          uint64     `gorm:"column:id;primaryKey;autoIncrement"`
	JobID       string     `gorm:"column:job_id;type:varchar(64);uniqueIndex;not null"`
	SessionID   string     `gorm:"column:session_id;type:varchar(64);index;not null"`
	Theme       string     `gorm:"column:theme;type:varchar(255)"`
	Status      string     `gorm:"column:status;type:varchar(16);index;not null;default:'pending'"` // pending, processing, completed, failed
	StoryID     *uint64    `gorm:"column:story_id"`
	Error       *string    `gorm:"column:error;type:text"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
	CompletedAt *time.Time `gorm:"column:completed_at"`
}

func (StoryJobPO) TableName() string {
	return "story_jobs"
}

func (j *StoryJobPO) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if j.CreatedAt.IsZero() {
		j.CreatedAt = now
	}
	j.UpdatedAt = now
	return nil
}

func (j *StoryJobPO) BeforeUpdate(tx *gorm.DB) error {
	j.UpdatedAt = time.Now()
	return nil
}
