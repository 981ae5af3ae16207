package productassistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"product-assistant/internal/common/catalog"
	apperrors "product-assistant/internal/common/errors"
	"product-assistant/internal/common/logger"
	"product-assistant/internal/models"
	searchcatalog "product-assistant/internal/workers/assistant/search-catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockModel struct {
	mock.Mock
}

func (m *MockModel) Invoke(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Scroll(ctx context.Context, collection string, limit int, cursor string) (catalog.Page, error) {
	args := m.Called(ctx, collection, limit, cursor)
	return args.Get(0).(catalog.Page), args.Error(1)
}

func (m *MockStore) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func seededStore(t *testing.T, colours ...string) *catalog.MemoryStore {
	t.Helper()
	records := make([]catalog.Record, len(colours))
	for i, c := range colours {
		id := fmt.Sprintf("sku-%d", i)
		records[i] = catalog.Record{ID: id, Payload: map[string]interface{}{
			"id":                           id,
			models.FieldCategory:           "Western",
			models.FieldIndividualCategory: "jeans",
			models.FieldColour:             c,
		}}
	}
	store := catalog.NewMemoryStore()
	require.NoError(t, store.Put(context.Background(), "fashion", records))
	return store
}

func newPipeline(t *testing.T, model *MockModel, store catalog.Store) *Pipeline {
	log := logger.NewTestLogger(t)
	return NewPipeline(model, searchcatalog.NewEngine(store, log), "fashion", nil, log)
}

const readyResponse = `Category: "Western"
Individual_category: "jeans"
category_by_Gender: "NA"
colour: "Black"
MOVE_ON: "true"
FOLLOW_UP_MESSAGE: "Searching now."`

const followUpResponse = `Category: "Western"
Individual_category: "NA"
category_by_Gender: "NA"
colour: "NA"
MOVE_ON: "false"
FOLLOW_UP_MESSAGE: "What kind of western wear are you looking for?"`

// ==========================
// State Transitions
// ==========================

func TestPipeline_MoveOnSearches(t *testing.T) {
	model := new(MockModel)
	model.On("Invoke", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "black jeans please")
	})).Return(readyResponse, nil).Once()

	p := newPipeline(t, model, seededStore(t, "Black", "Blue", "Black", "White"))

	reply, err := p.Run(context.Background(), "black jeans please")
	require.NoError(t, err)

	assert.Equal(t, models.StateReadyToSearch, reply.State)
	assert.Equal(t, models.SearchConfirmation, reply.Message)
	assert.Equal(t, models.SearchModeFiltered, reply.Mode)
	require.Len(t, reply.Results, 2)
	for _, r := range reply.Results {
		assert.Equal(t, "Black", r[models.FieldColour])
	}
	model.AssertExpectations(t)
}

func TestPipeline_FollowUpSkipsRetrieval(t *testing.T) {
	model := new(MockModel)
	model.On("Invoke", mock.Anything, mock.Anything).Return(followUpResponse, nil).Once()
	store := new(MockStore)

	reply, err := newPipeline(t, model, store).Run(context.Background(), "something western")
	require.NoError(t, err)

	assert.Equal(t, models.StateFollowUpRequested, reply.State)
	assert.Equal(t, "What kind of western wear are you looking for?", reply.Message)
	assert.NotNil(t, reply.Results)
	assert.Empty(t, reply.Results)
	assert.False(t, reply.Attributes.MoveOn)
	store.AssertNotCalled(t, "Scroll", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPipeline_BlankLineAfterMoveOnAsksFollowUp(t *testing.T) {
	model := new(MockModel)
	model.On("Invoke", mock.Anything, mock.Anything).
		Return("Category: \"Western\"\nMOVE_ON: \"true\"\n\nFOLLOW_UP_MESSAGE: \"Any colour in mind?\"", nil).Once()
	store := new(MockStore)

	reply, err := newPipeline(t, model, store).Run(context.Background(), "western please")
	require.NoError(t, err)

	assert.Equal(t, models.StateFollowUpRequested, reply.State)
	assert.Equal(t, "Any colour in mind?", reply.Message)
	store.AssertNotCalled(t, "Scroll", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPipeline_UnstructuredReplyAsksNothing(t *testing.T) {
	model := new(MockModel)
	model.On("Invoke", mock.Anything, mock.Anything).Return("I am not sure what you mean.", nil).Once()
	store := new(MockStore)

	reply, err := newPipeline(t, model, store).Run(context.Background(), "hello")
	require.NoError(t, err)

	assert.Equal(t, models.StateFollowUpRequested, reply.State)
	assert.Equal(t, models.NotAvailable, reply.Message)
	store.AssertNotCalled(t, "Scroll", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPipeline_MoveOnWithoutFiltersSamples(t *testing.T) {
	model := new(MockModel)
	model.On("Invoke", mock.Anything, mock.Anything).Return("MOVE_ON: TRUE", nil).Once()

	reply, err := newPipeline(t, model, seededStore(t, "Red", "Green", "Blue")).Run(context.Background(), "show me anything")
	require.NoError(t, err)

	assert.Equal(t, models.StateReadyToSearch, reply.State)
	assert.Equal(t, models.SearchModeSampled, reply.Mode)
	assert.Len(t, reply.Results, 3)
}

// ==========================
// Failures
// ==========================

func TestPipeline_ExtractionFailureIsReturned(t *testing.T) {
	model := new(MockModel)
	model.On("Invoke", mock.Anything, mock.Anything).Return("", errors.New("quota exceeded")).Once()
	store := new(MockStore)

	reply, err := newPipeline(t, model, store).Run(context.Background(), "black jeans")
	require.Error(t, err)
	assert.Nil(t, reply)
	assert.ErrorIs(t, err, apperrors.ErrExtractionFailed)
	assert.Contains(t, err.Error(), "quota exceeded")

	model.AssertNumberOfCalls(t, "Invoke", 1)
	store.AssertNotCalled(t, "Scroll", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPipeline_SearchFailureIsSwallowed(t *testing.T) {
	model := new(MockModel)
	model.On("Invoke", mock.Anything, mock.Anything).Return(readyResponse, nil).Once()
	store := new(MockStore)
	store.On("Scroll", mock.Anything, "fashion", searchcatalog.DefaultPageSize, "").
		Return(catalog.Page{}, errors.New("index_not_found_exception")).Once()

	reply, err := newPipeline(t, model, store).Run(context.Background(), "black jeans")
	require.NoError(t, err)

	assert.Equal(t, models.StateReadyToSearch, reply.State)
	assert.Equal(t, models.SearchConfirmation, reply.Message)
	assert.Equal(t, models.SearchModeDegraded, reply.Mode)
	assert.Empty(t, reply.Results)
	store.AssertExpectations(t)
}
