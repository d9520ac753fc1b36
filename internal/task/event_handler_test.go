package task

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slidesmith/slidesmith-api/internal/config"
	"github.com/slidesmith/slidesmith-api/internal/domain"
	"github.com/slidesmith/slidesmith-api/internal/events"
)

type handlerFixture struct {
	store    *fakeTaskStore
	pages    *fakePageWriter
	registry *Registry
	handler  *GenerationEventHandler
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()

	taskStore := newFakeTaskStore()
	pages := newFakePageWriter()
	ledger := mustLedger(taskStore)
	registry, err := NewRegistry(discardLogger())
	require.NoError(t, err)

	factory := NewGenerationTaskFactory(
		&fakeDescriptionGenerator{},
		&fakeImageGenerator{},
		pages,
		newFakeFileStorer(),
		&fakeTemplateResolver{image: []byte("template")},
		ledger,
		config.GenerationConfig{
			DescriptionWorkers:    5,
			MaxDescriptionWorkers: 10,
			ImageWorkers:          8,
			MaxImageWorkers:       16,
			DefaultAspectRatio:    "16:9",
			DefaultResolution:     "2K",
		},
		discardLogger(),
	)

	return &handlerFixture{
		store:    taskStore,
		pages:    pages,
		registry: registry,
		handler:  NewGenerationEventHandler(factory, registry, ledger, discardLogger()),
	}
}

// awaitTerminal polls the task row until it reaches a terminal status.
// HandleEvent returns before the execution finishes, so tests wait on
// the stored row rather than on timing assumptions.
func (f *handlerFixture) awaitTerminal(t *testing.T, taskID uuid.UUID) *domain.Task {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		task, err := f.store.GetByID(context.Background(), taskID)
		require.NoError(t, err)
		if task.Status.Terminal() {
			return task
		}
		select {
		case <-deadline:
			t.Fatalf("task %s never reached a terminal status (last: %s)", taskID, task.Status)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestGenerationEventHandlerDescriptions(t *testing.T) {
	t.Parallel()

	f := newHandlerFixture(t)
	row := seedTask(t, f.store, 2)
	items, pageIDs := outlineFixture("Intro", "Close")

	event, err := events.NewTaskRequestEvent(
		string(domain.TaskTypeGenerateDescriptions),
		DescriptionGenerationPayload{
			TaskID:     row.ID,
			ProjectID:  row.ProjectID,
			IdeaPrompt: "a deck about gophers",
			PageIDs:    pageIDs,
			Items:      items,
		},
	)
	require.NoError(t, err)

	require.NoError(t, f.handler.HandleEvent(context.Background(), event))

	task := f.awaitTerminal(t, row.ID)
	assert.Equal(t, domain.TaskStatusCompleted, task.Status)
	assert.Equal(t, domain.Progress{Total: 2, Completed: 2}, task.Progress)

	for _, pageID := range pageIDs {
		_, ok := f.pages.description(pageID)
		assert.True(t, ok)
	}
}

func TestGenerationEventHandlerImages(t *testing.T) {
	t.Parallel()

	f := newHandlerFixture(t)
	row, err := domain.NewTask(uuid.New(), domain.TaskTypeGenerateImages, 1)
	require.NoError(t, err)
	require.NoError(t, f.store.Create(context.Background(), row))

	items, pageIDs := outlineFixture("Intro")

	event, err := events.NewTaskRequestEvent(
		string(domain.TaskTypeGenerateImages),
		ImageGenerationPayload{
			TaskID:       row.ID,
			ProjectID:    row.ProjectID,
			PageIDs:      pageIDs,
			Items:        items,
			Descriptions: []string{"a sunrise"},
			UseTemplate:  true,
		},
	)
	require.NoError(t, err)

	require.NoError(t, f.handler.HandleEvent(context.Background(), event))

	task := f.awaitTerminal(t, row.ID)
	assert.Equal(t, domain.TaskStatusCompleted, task.Status)

	_, ok := f.pages.imagePath(pageIDs[0])
	assert.True(t, ok)
}

func TestGenerationEventHandlerIgnoresUnknownType(t *testing.T) {
	t.Parallel()

	f := newHandlerFixture(t)
	event, err := events.NewTaskRequestEvent("REINDEX_SEARCH", struct{}{})
	require.NoError(t, err)

	assert.NoError(t, f.handler.HandleEvent(context.Background(), event))
}

func TestGenerationEventHandlerMalformedPayload(t *testing.T) {
	t.Parallel()

	f := newHandlerFixture(t)
	event := &events.TaskRequestEvent{
		ID:      uuid.New(),
		Type:    string(domain.TaskTypeGenerateDescriptions),
		Payload: []byte(`{"task_id": 42}`),
	}

	assert.Error(t, f.handler.HandleEvent(context.Background(), event))
}

func TestGenerationEventHandlerConstructionFailure(t *testing.T) {
	t.Parallel()

	f := newHandlerFixture(t)
	row := seedTask(t, f.store, 3)
	items, _ := outlineFixture("A", "B", "C")

	// Page IDs missing: the factory cannot build the task, so the row is
	// failed synchronously before HandleEvent returns.
	event, err := events.NewTaskRequestEvent(
		string(domain.TaskTypeGenerateDescriptions),
		DescriptionGenerationPayload{
			TaskID:    row.ID,
			ProjectID: row.ProjectID,
			Items:     items,
		},
	)
	require.NoError(t, err)

	err = f.handler.HandleEvent(context.Background(), event)
	assert.ErrorIs(t, err, ErrPageItemMismatch)

	task, err := f.store.GetByID(context.Background(), row.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusFailed, task.Status)
	assert.Equal(t, domain.Progress{Total: 3, Failed: 3}, task.Progress)
	assert.NotEmpty(t, task.ErrorDetail)
}

func TestGenerationEventHandlerConflict(t *testing.T) {
	t.Parallel()

	f := newHandlerFixture(t)
	row := seedTask(t, f.store, 1)

	// Occupy the registry slot for this task ID with a blocking task.
	blocker := newBlockingTask()
	blocker.id = row.ID
	handle, err := f.registry.Submit(blocker)
	require.NoError(t, err)
	defer func() {
		close(blocker.release)
		<-handle.Done()
	}()

	items, pageIDs := outlineFixture("Intro")
	event, err := events.NewTaskRequestEvent(
		string(domain.TaskTypeGenerateDescriptions),
		DescriptionGenerationPayload{
			TaskID:    row.ID,
			ProjectID: row.ProjectID,
			PageIDs:   pageIDs,
			Items:     items,
		},
	)
	require.NoError(t, err)

	err = f.handler.HandleEvent(context.Background(), event)
	assert.ErrorIs(t, err, ErrTaskAlreadyRunning)

	// The conflict must not touch the existing row.
	task, err := f.store.GetByID(context.Background(), row.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusPending, task.Status)
}
