package eventbridge

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stackecho/domain/events"
)

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) PutEvents(ctx context.Context, in *eventbridge.PutEventsInput, _ ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*eventbridge.PutEventsOutput)
	return out, args.Error(1)
}

func TestPublisher_Publish(t *testing.T) {
	// Arrange
	api := new(mockAPI)
	var captured *eventbridge.PutEventsInput
	api.On("PutEvents", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { captured = args.Get(1).(*eventbridge.PutEventsInput) }).
		Return(&eventbridge.PutEventsOutput{}, nil)
	p := NewPublisher(api, "stackecho-bus", zap.NewNop())
	at := time.Date(2024, time.January, 15, 10, 30, 0, 0, time.UTC)

	// Act
	err := p.Publish(context.Background(), events.NewAnswerAccepted("1", "a1", at))

	// Assert
	require.NoError(t, err)
	require.Len(t, captured.Entries, 1)
	entry := captured.Entries[0]
	assert.Equal(t, "stackecho-bus", aws.ToString(entry.EventBusName))
	assert.Equal(t, events.SourceStore, aws.ToString(entry.Source))
	assert.Equal(t, events.TypeAnswerAccepted, aws.ToString(entry.DetailType))
	assert.Equal(t, at, aws.ToTime(entry.Time))

	var detail map[string]any
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(entry.Detail)), &detail))
	assert.Equal(t, "a1", detail["accepted_answer_id"])
}

func TestPublisher_BatchesOfTen(t *testing.T) {
	api := new(mockAPI)
	var sizes []int
	api.On("PutEvents", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			sizes = append(sizes, len(args.Get(1).(*eventbridge.PutEventsInput).Entries))
		}).
		Return(&eventbridge.PutEventsOutput{}, nil)
	p := NewPublisher(api, "bus", nil)

	batch := make([]events.DomainEvent, 23)
	for i := range batch {
		batch[i] = events.NewQuestionViewed("1", i, time.Now())
	}
	require.NoError(t, p.PublishBatch(context.Background(), batch))

	assert.Equal(t, []int{10, 10, 3}, sizes)
}

func TestPublisher_Failures(t *testing.T) {
	t.Run("client error", func(t *testing.T) {
		api := new(mockAPI)
		api.On("PutEvents", mock.Anything, mock.Anything).Return(nil, errors.New("network"))
		p := NewPublisher(api, "bus", nil)

		err := p.Handle(context.Background(), events.NewUserLoggedOut("1", time.Now()))

		assert.ErrorContains(t, err, "failed to publish events to EventBridge")
	})

	t.Run("failed entries", func(t *testing.T) {
		api := new(mockAPI)
		api.On("PutEvents", mock.Anything, mock.Anything).Return(&eventbridge.PutEventsOutput{
			FailedEntryCount: 1,
			Entries:          []types.PutEventsResultEntry{{ErrorCode: aws.String("ThrottlingException")}},
		}, nil)
		p := NewPublisher(api, "bus", nil)

		err := p.Publish(context.Background(), events.NewUserLoggedOut("1", time.Now()))

		assert.ErrorContains(t, err, "1 events failed to publish")
	})
}
