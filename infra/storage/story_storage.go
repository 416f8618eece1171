package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"adventure/biz/entity"
	"adventure/biz/storyservice"
	"adventure/infra/storage/po"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type storyPersistence struct {
	db *gorm.DB
}

func NewStoryPersistence(db *gorm.DB) *storyPersistence {
	return &storyPersistence{db: db}
}

// AutoMigrate 建表，stories 必须先于 story_nodes
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&po.StoryPO{}, &po.StoryNodePO{}, &po.StoryJobPO{}); err != nil {
		return fmt.Errorf("自动建表失败: %w", err)
	}
	return nil
}

// MaterializeStory 在一个事务里写入故事和所有节点
// 子节点先落库拿到 id，父节点的 options 最后回填
func (s *storyPersistence) MaterializeStory(ctx context.Context, tree *entity.StoryTree, sessionID string) (*entity.Story, error) {
	if tree == nil || tree.RootNode == nil {
		return nil, errors.New("故事树为空")
	}
	if sessionID == "" {
		return nil, storyservice.SESSION_ID_NOT_NULL
	}

	var story *entity.Story
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		storyPO := po.StoryPO{Title: tree.Title, SessionID: sessionID}
		if err := tx.Create(&storyPO).Error; err != nil {
			return fmt.Errorf("保存故事失败: %w", err)
		}

		m := &treeMaterializer{tx: tx, storyID: storyPO.ID}
		root, err := m.materialize(tree.RootNode, true)
		if err != nil {
			return err
		}

		story = &entity.Story{
			ID:         storyPO.ID,
			Title:      storyPO.Title,
			SessionID:  storyPO.SessionID,
			CreatedAt:  storyPO.CreatedAt,
			RootNodeID: root.ID,
			Nodes:      m.nodes,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return story, nil
}

type treeMaterializer struct {
	tx      *gorm.DB
	storyID uint64
	nodes   []*entity.StoryNode
}

func (m *treeMaterializer) materialize(node *entity.StoryNodeTree, isRoot bool) (*entity.StoryNode, error) {
	nodePO := po.StoryNodePO{
		StoryID:         m.storyID,
		Content:         node.Content,
		IsRoot:          isRoot,
		IsEnding:        node.IsEnding,
		IsWinningEnding: node.IsEnding && node.IsWinningEnding,
	}
	if err := m.tx.Create(&nodePO).Error; err != nil {
		return nil, fmt.Errorf("保存故事节点失败: %w", err)
	}

	created := CastStoryNodePO2DO(&nodePO)
	m.nodes = append(m.nodes, created)
	if node.IsEnding || len(node.Options) == 0 {
		return created, nil
	}

	options := make(map[string]po.OptionPO, len(node.Options))
	for i, opt := range node.Options {
		child, err := m.materialize(opt.NextNode, false)
		if err != nil {
			return nil, err
		}
		options[fmt.Sprint(i)] = po.OptionPO{Text: opt.Text, NodeID: child.ID}
		created.Options = append(created.Options, entity.NodeOption{Text: opt.Text, NodeID: child.ID})
	}

	raw, err := json.Marshal(options)
	if err != nil {
		return nil, fmt.Errorf("序列化节点选项失败: %w", err)
	}
	if err := m.tx.Model(&po.StoryNodePO{}).Where("id = ?", nodePO.ID).
		Update("options", datatypes.JSON(raw)).Error; err != nil {
		return nil, fmt.Errorf("更新节点选项失败: %w", err)
	}
	return created, nil
}

// GetCompleteStory 读取故事和全部节点，options 按下标还原成有序列表
func (s *storyPersistence) GetCompleteStory(ctx context.Context, storyID uint64) (*entity.CompleteStory, error) {
	if storyID == 0 {
		return nil, storyservice.STORY_ID_NOT_NULL
	}

	var storyPO po.StoryPO
	if err := s.db.WithContext(ctx).Where("id = ?", storyID).First(&storyPO).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storyservice.STORY_NOT_EXIST
		}
		return nil, fmt.Errorf("数据库出错 :%w", err)
	}

	var nodePOs []po.StoryNodePO
	if err := s.db.WithContext(ctx).Where("story_id = ?", storyID).Order("id").Find(&nodePOs).Error; err != nil {
		return nil, fmt.Errorf("获取故事节点时 数据库出错 %w", err)
	}

	return CastStoryPO2CompleteDO(&storyPO, nodePOs)
}

// DeleteStory 删除故事，节点由外键级联删除
func (s *storyPersistence) DeleteStory(ctx context.Context, storyID uint64) error {
	res := s.db.WithContext(ctx).Delete(&po.StoryPO{}, storyID)
	if res.Error != nil {
		return fmt.Errorf("删除故事时 数据库出错 %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return storyservice.STORY_NOT_EXIST
	}
	return nil
}
