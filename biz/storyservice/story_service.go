package storyservice

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"adventure/biz/entity"
	"adventure/biz/repo"
	"adventure/biz/types"
	"adventure/constant"
	"adventure/pkg/log/zlog"
	"adventure/pkg/loop"
	"adventure/pkg/metrics"
)

const (
	defaultMaxRetries = 3
	maxRetryDelay     = 10 * time.Second
)

// StoryGenerationConfig 生成参数，由调用方显式传入
type StoryGenerationConfig struct {
	MaxRetries     int
	RetryBaseDelay time.Duration
	DefaultTheme   string
}

type StoryService struct {
	storyRepo repo.StoryRepo
	llm       repo.CompletionModel
	conf      StoryGenerationConfig
}

var _ types.IStoryService = (*StoryService)(nil)

func NewStoryService(storyRepo repo.StoryRepo, llm repo.CompletionModel, conf StoryGenerationConfig) *StoryService {
	if conf.MaxRetries <= 0 {
		conf.MaxRetries = defaultMaxRetries
	}
	if conf.DefaultTheme == "" {
		conf.DefaultTheme = DefaultTheme
	}
	return &StoryService{
		storyRepo: storyRepo,
		llm:       llm,
		conf:      conf,
	}
}

// GenerateStory 调用模型生成故事树并落库
// 每次尝试都重新请求模型，最多 MaxRetries 次；落库失败不重试
func (s *StoryService) GenerateStory(ctx context.Context, sessionID, theme string) (story *entity.Story, err error) {
	if sessionID == "" {
		return nil, SESSION_ID_NOT_NULL
	}
	ctx = entity.WithSessionID(ctx, sessionID)
	ctx, sp := loop.GetNewSpan(ctx, "GenerateStory", constant.LoopSpanType_Function)
	defer func() {
		loop.SetSpanAllInOne(ctx, sp, map[string]any{"theme": theme}, storySummary(story), err)
	}()

	var (
		tree    *entity.StoryTree
		lastErr error
	)
	for attempt := 1; attempt <= s.conf.MaxRetries; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			metrics.RecordGeneration(metrics.ResultExhausted)
			return nil, &GenerationFailedError{Attempts: attempt - 1, Err: ctxErr}
		}

		tree, lastErr = s.generateOnce(ctx, theme, attempt)
		if lastErr == nil {
			break
		}
		zlog.CtxWarnf(ctx, "第%d/%d次生成故事失败: %v", attempt, s.conf.MaxRetries, lastErr)

		if attempt == s.conf.MaxRetries {
			break
		}
		if waitErr := s.wait(ctx, attempt); waitErr != nil {
			metrics.RecordGeneration(metrics.ResultExhausted)
			return nil, &GenerationFailedError{Attempts: attempt, Err: waitErr}
		}
	}

	if lastErr != nil {
		metrics.RecordGeneration(metrics.ResultExhausted)
		zlog.CtxErrorf(ctx, "故事生成重试次数用尽(%d次): %v", s.conf.MaxRetries, lastErr)
		return nil, &GenerationFailedError{Attempts: s.conf.MaxRetries, Err: lastErr}
	}

	story, err = s.storyRepo.MaterializeStory(ctx, tree, sessionID)
	if err != nil {
		metrics.RecordGeneration(metrics.ResultPersistFailure)
		zlog.CtxErrorf(ctx, "故事保存失败: %v", err)
		return nil, &MaterializationError{Err: err}
	}

	metrics.RecordGeneration(metrics.ResultSucceeded)
	metrics.RecordStoryNodes(len(story.Nodes))
	zlog.CtxInfof(ctx, "故事生成成功: storyID=%d, 标题=%s, 节点数=%d", story.ID, story.Title, len(story.Nodes))
	return story, nil
}

// generateOnce 一次完整的 请求-清洗-校验
func (s *StoryService) generateOnce(ctx context.Context, theme string, attempt int) (*entity.StoryTree, error) {
	messages, err := BuildStoryPrompt(ctx, theme, s.conf.DefaultTheme)
	if err != nil {
		return nil, err
	}

	resp, err := s.llm.Generate(ctx, messages)
	if err != nil {
		metrics.RecordAttempt(metrics.OutcomeModelError)
		return nil, err
	}
	if resp == nil {
		metrics.RecordAttempt(metrics.OutcomeEmpty)
		return nil, EMPTY_RESPONSE
	}

	text, err := SanitizeResponse(resp.Content)
	if err != nil {
		metrics.RecordAttempt(metrics.OutcomeEmpty)
		return nil, err
	}

	tree, err := ParseStoryTree(text)
	if err != nil {
		if errors.Is(err, MALFORMED_JSON) {
			metrics.RecordAttempt(metrics.OutcomeMalformed)
		} else {
			metrics.RecordAttempt(metrics.OutcomeSchema)
		}
		zlog.CtxAllInOne(ctx, "ParseStoryTree", map[string]any{"attempt": attempt, "raw_response": resp.Content}, nil, err)
		return nil, err
	}

	metrics.RecordAttempt(metrics.OutcomeSuccess)
	stats := tree.Stats()
	zlog.CtxInfof(ctx, "第%d次生成解析成功: 深度=%d, 节点=%d, 结局=%d, 胜利结局=%d",
		attempt, stats.Depth, stats.NodeCount, stats.EndingCount, stats.WinningEndings)
	if stats.WinningEndings == 0 {
		zlog.CtxWarnf(ctx, "故事「%s」没有胜利结局", tree.Title)
	}
	return tree, nil
}

// wait 指数退避加抖动，ctx 取消时提前返回
func (s *StoryService) wait(ctx context.Context, attempt int) error {
	d := backoffWithJitter(s.conf.RetryBaseDelay, attempt)
	if d <= 0 {
		return ctx.Err()
	}
	zlog.CtxInfof(ctx, "等待%v后重试", d)
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func backoffWithJitter(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	delay := float64(base) * math.Pow(2, float64(attempt-1))
	// ±10% 抖动
	delay += delay * 0.1 * (rand.Float64()*2 - 1)
	d := time.Duration(delay)
	if d < base {
		d = base
	}
	if d > maxRetryDelay {
		d = maxRetryDelay
	}
	return d
}

// GetCompleteStory 读取完整故事图
func (s *StoryService) GetCompleteStory(ctx context.Context, storyID uint64) (*entity.CompleteStory, error) {
	if storyID == 0 {
		return nil, STORY_ID_NOT_NULL
	}
	return s.storyRepo.GetCompleteStory(ctx, storyID)
}

func storySummary(story *entity.Story) map[string]any {
	if story == nil {
		return nil
	}
	return map[string]any{
		"story_id":     story.ID,
		"title":        story.Title,
		"root_node_id": story.RootNodeID,
		"node_count":   len(story.Nodes),
	}
}
