package storyservice

import (
	"context"
	"errors"
	"testing"
	"time"

	"adventure/biz/entity"
	"adventure/biz/repo/mocks"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const twoNodeJSON = `{"title":"T","rootNode":{"content":"A","isEnding":false,"options":[{"text":"go left","nextNode":{"content":"B","isEnding":true,"isWinningEnding":true}}]}}`

func assistant(content string) *schema.Message {
	return schema.AssistantMessage(content, nil)
}

func newTestService(t *testing.T, maxRetries int) (*StoryService, *mocks.MockCompletionModel, *mocks.MockStoryRepo) {
	t.Helper()
	llm := mocks.NewMockCompletionModel(t)
	storyRepo := mocks.NewMockStoryRepo(t)
	svc := NewStoryService(storyRepo, llm, StoryGenerationConfig{MaxRetries: maxRetries})
	return svc, llm, storyRepo
}

func persisted() *entity.Story {
	return &entity.Story{ID: 1, Title: "T", SessionID: "sess", RootNodeID: 10, Nodes: []*entity.StoryNode{{ID: 10}, {ID: 11}}}
}

func TestGenerateStorySucceedsFirstTry(t *testing.T) {
	svc, llm, storyRepo := newTestService(t, 3)
	llm.On("Generate", mock.Anything, mock.Anything).Return(assistant("```json\n"+twoNodeJSON+"\n```"), nil).Once()
	storyRepo.On("MaterializeStory", mock.Anything, mock.MatchedBy(func(tree *entity.StoryTree) bool {
		return tree.Title == "T" && tree.RootNode.Options[0].NextNode.IsWinningEnding
	}), "sess").Return(persisted(), nil).Once()

	story, err := svc.GenerateStory(context.Background(), "sess", "caves")
	require.NoError(t, err)
	assert.Equal(t, uint64(10), story.RootNodeID)
	llm.AssertNumberOfCalls(t, "Generate", 1)
	storyRepo.AssertExpectations(t)
}

func TestGenerateStoryRetryBound(t *testing.T) {
	failures := []error{
		errors.New("provider timeout"),
		nil, // empty content
		nil, // malformed
	}
	for k := 0; k < 3; k++ {
		svc, llm, storyRepo := newTestService(t, 3)
		for i := 0; i < k; i++ {
			if failures[i] != nil {
				llm.On("Generate", mock.Anything, mock.Anything).Return(nil, failures[i]).Once()
			} else if i == 1 {
				llm.On("Generate", mock.Anything, mock.Anything).Return(assistant("  "), nil).Once()
			} else {
				llm.On("Generate", mock.Anything, mock.Anything).Return(assistant("{oops"), nil).Once()
			}
		}
		llm.On("Generate", mock.Anything, mock.Anything).Return(assistant(twoNodeJSON), nil).Once()
		storyRepo.On("MaterializeStory", mock.Anything, mock.Anything, "sess").Return(persisted(), nil).Once()

		_, err := svc.GenerateStory(context.Background(), "sess", "")
		require.NoError(t, err, "k=%d", k)
		llm.AssertNumberOfCalls(t, "Generate", k+1)
	}
}

func TestGenerateStoryExhaustsRetries(t *testing.T) {
	svc, llm, storyRepo := newTestService(t, 3)
	llm.On("Generate", mock.Anything, mock.Anything).Return(assistant("this is not json"), nil)

	_, err := svc.GenerateStory(context.Background(), "sess", "forest")
	require.Error(t, err)

	var genErr *GenerationFailedError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, 3, genErr.Attempts)
	assert.ErrorIs(t, err, MALFORMED_JSON)
	llm.AssertNumberOfCalls(t, "Generate", 3)
	storyRepo.AssertNotCalled(t, "MaterializeStory", mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerateStorySchemaViolationIsRetried(t *testing.T) {
	svc, llm, storyRepo := newTestService(t, 2)
	llm.On("Generate", mock.Anything, mock.Anything).
		Return(assistant(`{"title":"T","rootNode":{"content":"A","isEnding":false,"options":[]}}`), nil).Once()
	llm.On("Generate", mock.Anything, mock.Anything).Return(assistant(twoNodeJSON), nil).Once()
	storyRepo.On("MaterializeStory", mock.Anything, mock.Anything, "sess").Return(persisted(), nil).Once()

	_, err := svc.GenerateStory(context.Background(), "sess", "forest")
	require.NoError(t, err)
	llm.AssertNumberOfCalls(t, "Generate", 2)
}

func TestGenerateStoryMaterializationNotRetried(t *testing.T) {
	svc, llm, storyRepo := newTestService(t, 3)
	dbErr := errors.New("disk full")
	llm.On("Generate", mock.Anything, mock.Anything).Return(assistant(twoNodeJSON), nil)
	storyRepo.On("MaterializeStory", mock.Anything, mock.Anything, "sess").Return(nil, dbErr).Once()

	_, err := svc.GenerateStory(context.Background(), "sess", "forest")
	require.Error(t, err)

	var matErr *MaterializationError
	require.ErrorAs(t, err, &matErr)
	assert.ErrorIs(t, err, dbErr)
	var genErr *GenerationFailedError
	assert.False(t, errors.As(err, &genErr))
	llm.AssertNumberOfCalls(t, "Generate", 1)
	storyRepo.AssertNumberOfCalls(t, "MaterializeStory", 1)
}

func TestGenerateStoryStopsOnCancel(t *testing.T) {
	svc, llm, _ := newTestService(t, 3)
	ctx, cancel := context.WithCancel(context.Background())
	llm.On("Generate", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		cancel()
	}).Return(nil, context.Canceled).Once()

	_, err := svc.GenerateStory(ctx, "sess", "forest")
	var genErr *GenerationFailedError
	require.ErrorAs(t, err, &genErr)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, genErr.Attempts)
	llm.AssertNumberOfCalls(t, "Generate", 1)
}

func TestGenerateStoryBackoffHonoursDeadline(t *testing.T) {
	llm := mocks.NewMockCompletionModel(t)
	storyRepo := mocks.NewMockStoryRepo(t)
	svc := NewStoryService(storyRepo, llm, StoryGenerationConfig{MaxRetries: 3, RetryBaseDelay: time.Hour})
	llm.On("Generate", mock.Anything, mock.Anything).Return(assistant("nope"), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := svc.GenerateStory(ctx, "sess", "forest")
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	llm.AssertNumberOfCalls(t, "Generate", 1)
}

func TestGenerateStoryRequiresSession(t *testing.T) {
	svc, llm, _ := newTestService(t, 3)
	_, err := svc.GenerateStory(context.Background(), "", "forest")
	assert.ErrorIs(t, err, SESSION_ID_NOT_NULL)
	llm.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestGenerateStoryUsesDefaultTheme(t *testing.T) {
	llm := mocks.NewMockCompletionModel(t)
	storyRepo := mocks.NewMockStoryRepo(t)
	svc := NewStoryService(storyRepo, llm, StoryGenerationConfig{DefaultTheme: "mystery"})
	llm.On("Generate", mock.Anything, mock.MatchedBy(func(msgs []*schema.Message) bool {
		return len(msgs) == 2 && msgs[1].Content == "Create the story with this theme: mystery"
	})).Return(assistant(twoNodeJSON), nil).Once()
	storyRepo.On("MaterializeStory", mock.Anything, mock.Anything, "sess").Return(persisted(), nil).Once()

	_, err := svc.GenerateStory(context.Background(), "sess", "")
	require.NoError(t, err)
}

func TestBackoffWithJitter(t *testing.T) {
	assert.Equal(t, time.Duration(0), backoffWithJitter(0, 1))
	d1 := backoffWithJitter(100*time.Millisecond, 1)
	assert.GreaterOrEqual(t, d1, 100*time.Millisecond)
	assert.LessOrEqual(t, d1, 110*time.Millisecond)
	d3 := backoffWithJitter(100*time.Millisecond, 3)
	assert.GreaterOrEqual(t, d3, 360*time.Millisecond)
	assert.LessOrEqual(t, d3, 440*time.Millisecond)
	assert.Equal(t, maxRetryDelay, backoffWithJitter(time.Second, 10))
}

func TestGetCompleteStoryRequiresID(t *testing.T) {
	svc, _, storyRepo := newTestService(t, 3)
	_, err := svc.GetCompleteStory(context.Background(), 0)
	assert.ErrorIs(t, err, STORY_ID_NOT_NULL)

	storyRepo.On("GetCompleteStory", mock.Anything, uint64(7)).Return(nil, STORY_NOT_EXIST).Once()
	_, err = svc.GetCompleteStory(context.Background(), 7)
	assert.ErrorIs(t, err, STORY_NOT_EXIST)
}
