package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grantwatch/grantwatch-cli/internal/core/domain"
)

type fakeSubscriberStore struct {
	subs  []domain.Subscriber
	saved []domain.Subscriber
	err   error
}

func (f *fakeSubscriberStore) Save(_ context.Context, sub *domain.Subscriber) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, *sub)
	return nil
}

func (f *fakeSubscriberStore) ListActive(_ context.Context, channel string) ([]domain.Subscriber, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Subscriber
	for _, sub := range f.subs {
		if sub.Active && sub.Channel == channel {
			out = append(out, sub)
		}
	}
	return out, nil
}

func TestSubscriberAddCmd_SavesSubscriber(t *testing.T) {
	store := &fakeSubscriberStore{}
	withServices(t, Services{Subscribers: store})
	t.Cleanup(func() {
		subscriberChannel = "whatsapp"
		subscriberLocale = "en"
	})

	out, err := executeCommand(t, "subscriber", "add", "+4917012345", "--locale", "de")

	require.NoError(t, err)
	require.Len(t, store.saved, 1)
	saved := store.saved[0]
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, "+4917012345", saved.Handle)
	assert.Equal(t, "whatsapp", saved.Channel)
	assert.Equal(t, "de", saved.Locale)
	assert.True(t, saved.Active)
	assert.Contains(t, out, "Added subscriber")
}

func TestSubscriberListCmd_FiltersByChannel(t *testing.T) {
	store := &fakeSubscriberStore{subs: []domain.Subscriber{
		{ID: "1", Channel: "whatsapp", Handle: "+491701", Locale: "en", Active: true},
		{ID: "2", Channel: "email", Handle: "a@example.org", Locale: "en", Active: true},
		{ID: "3", Channel: "whatsapp", Handle: "+491702", Locale: "en", Active: false},
	}}
	withServices(t, Services{Subscribers: store})

	out, err := executeCommand(t, "subscriber", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "+491701")
	assert.NotContains(t, out, "a@example.org")
	assert.NotContains(t, out, "+491702")
	assert.Contains(t, out, "Total: 1 subscribers")
}

func TestSubscriberListCmd_Empty(t *testing.T) {
	withServices(t, Services{Subscribers: &fakeSubscriberStore{}})

	out, err := executeCommand(t, "subscriber", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "No active subscribers")
}

func TestSubscriberCmd_ErrorsWithoutServices(t *testing.T) {
	withServices(t, Services{})

	_, err := executeCommand(t, "subscriber", "add", "+4917012345")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}
