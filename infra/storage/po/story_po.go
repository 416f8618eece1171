package po

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type StoryPO struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	Title     string    `gorm:"column:title;type:varchar(255);not null"`
	SessionID string    `gorm:"column:session_id;type:varchar(64);index;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (StoryPO) TableName() string {
	return "stories"
}

func (s *StoryPO) BeforeCreate(tx *gorm.DB) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	return nil
}

// StoryNodePO 一个故事节点，Options 形如 {"0": {"text": "...", "node_id": 42}}
// 结局节点的 Options 为 NULL
type StoryNodePO struct {
	ID              uint64         `gorm:"column:id;primaryKey;autoIncrement"`
	StoryID         uint64         `gorm:"column:story_id;index;not null"`
	Content         string         `gorm:"column:content;type:text;not null"`
	IsRoot          bool           `gorm:"column:is_root;not null;default:false"`
	IsEnding        bool           `gorm:"column:is_ending;not null;default:false"`
	IsWinningEnding bool           `gorm:"column:is_winning_ending;not null;default:false"`
	Options         datatypes.JSON `gorm:"column:options;type:json"`
	// 删除故事时级联删除节点
	Story *StoryPO `gorm:"foreignKey:StoryID;constraint:OnDelete:CASCADE"`
}

func (StoryNodePO) TableName() string {
	return "story_nodes"
}

// OptionPO options 列里每个值的结构
type OptionPO struct {
	Text   string `json:"text"`
	NodeID uint64 `json:"node_id"`
}
