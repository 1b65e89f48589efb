// ABOUTME: Tests for feedback-control activation handling
// ABOUTME: Verifies control ID parsing, sentiment recording order and in-place re-rendering

package copilot

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSentimentStore implements SentimentStore and records calls.
type fakeSentimentStore struct {
	current Sentiment
	setErr  error
	getErr  error

	setCalls []setCall
	getCalls []string
}

type setCall struct {
	messageID string
	sentiment Sentiment
}

func (f *fakeSentimentStore) SetMessageSentiment(ctx context.Context, messageID string, s Sentiment) error {
	f.setCalls = append(f.setCalls, setCall{messageID, s})
	if f.setErr != nil {
		return f.setErr
	}
	f.current = s
	return nil
}

func (f *fakeSentimentStore) MessageSentiment(ctx context.Context, messageID string) (Sentiment, error) {
	f.getCalls = append(f.getCalls, messageID)
	if f.getErr != nil {
		return SentimentUnset, f.getErr
	}
	return f.current, nil
}

// fakeInteraction implements Interaction and records the acknowledgement
// and any control updates.
type fakeInteraction struct {
	ackErr error

	acked   bool
	updates [][]Control
}

func (f *fakeInteraction) Ack(ctx context.Context) error {
	f.acked = true
	return f.ackErr
}

func (f *fakeInteraction) UpdateControls(ctx context.Context, controls []Control) error {
	f.updates = append(f.updates, controls)
	return nil
}

func TestParseControlID(t *testing.T) {
	tests := []struct {
		name          string
		customID      string
		wantMessageID string
		wantSentiment Sentiment
		wantErr       bool
	}{
		{"like", "42:like", "42", SentimentPositive, false},
		{"dislike", "abc:dislike", "abc", SentimentNegative, false},
		{"no delimiter", "42like", "", SentimentUnset, true},
		{"too many fields", "42:like:extra", "", SentimentUnset, true},
		{"unknown polarity", "42:maybe", "", SentimentUnset, true},
		{"empty", "", "", SentimentUnset, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			messageID, sentiment, err := ParseControlID(tt.customID)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrMalformedControlID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMessageID, messageID)
			assert.Equal(t, tt.wantSentiment, sentiment)
		})
	}
}

func TestFeedback_LikeActivation(t *testing.T) {
	store := &fakeSentimentStore{}
	ix := &fakeInteraction{}
	handler := NewFeedbackHandler(store, nil)

	handler.HandleActivation(context.Background(), "42:like", ix)

	assert.True(t, ix.acked)
	require.Len(t, store.setCalls, 1)
	assert.Equal(t, setCall{"42", SentimentPositive}, store.setCalls[0])

	// Re-render uses a fresh read, and the affirmative control is selected.
	require.Len(t, store.getCalls, 1)
	require.Len(t, ix.updates, 1)
	controls := ix.updates[0]
	require.Len(t, controls, 2)
	assert.Equal(t, labelSelected, controls[0].Label)
	assert.Equal(t, labelDislike, controls[1].Label)
}

func TestFeedback_DislikeActivation(t *testing.T) {
	store := &fakeSentimentStore{}
	ix := &fakeInteraction{}
	handler := NewFeedbackHandler(store, nil)

	handler.HandleActivation(context.Background(), "42:dislike", ix)

	require.Len(t, store.setCalls, 1)
	assert.Equal(t, setCall{"42", SentimentNegative}, store.setCalls[0])

	require.Len(t, ix.updates, 1)
	assert.Equal(t, labelLike, ix.updates[0][0].Label)
	assert.Equal(t, labelSelected, ix.updates[0][1].Label)
}

func TestFeedback_MalformedIDIsNoOp(t *testing.T) {
	for _, customID := range []string{"nocolon", "42:maybe", "a:b:c"} {
		store := &fakeSentimentStore{}
		ix := &fakeInteraction{}
		handler := NewFeedbackHandler(store, nil)

		handler.HandleActivation(context.Background(), customID, ix)

		assert.Empty(t, store.setCalls, "custom_id %q", customID)
		assert.Empty(t, store.getCalls, "custom_id %q", customID)
		assert.Empty(t, ix.updates, "custom_id %q", customID)
	}
}

func TestFeedback_AckFailureStopsProcessing(t *testing.T) {
	store := &fakeSentimentStore{}
	ix := &fakeInteraction{ackErr: errors.New("interaction expired")}
	handler := NewFeedbackHandler(store, nil)

	handler.HandleActivation(context.Background(), "42:like", ix)

	assert.Empty(t, store.setCalls)
	assert.Empty(t, ix.updates)
}

func TestFeedback_BackendFailureSkipsRerender(t *testing.T) {
	store := &fakeSentimentStore{setErr: errors.New("backend down")}
	ix := &fakeInteraction{}
	handler := NewFeedbackHandler(store, nil)

	handler.HandleActivation(context.Background(), "42:like", ix)

	assert.Empty(t, ix.updates)
}

func TestFeedback_RepeatedActivationIsIdempotent(t *testing.T) {
	store := &fakeSentimentStore{}
	handler := NewFeedbackHandler(store, nil)

	first := &fakeInteraction{}
	handler.HandleActivation(context.Background(), "42:like", first)
	second := &fakeInteraction{}
	handler.HandleActivation(context.Background(), "42:like", second)

	require.Len(t, store.setCalls, 2)
	assert.Equal(t, store.setCalls[0], store.setCalls[1])
	require.Len(t, first.updates, 1)
	require.Len(t, second.updates, 1)
	assert.Equal(t, first.updates[0], second.updates[0])
}
