package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tutordesk/internal/model"
)

func TestSessionHubDeliversPerAccount(t *testing.T) {
	hub := NewSessionHub()
	lea, cancelLea := hub.Subscribe("lea")
	tom, cancelTom := hub.Subscribe("tom")
	defer cancelTom()

	require.NoError(t, hub.Publish(context.Background(), model.SessionEvent{Type: model.SessionSignedIn, UserID: "lea"}))

	evt := <-lea
	assert.Equal(t, model.SessionSignedIn, evt.Type)
	assert.Empty(t, tom)

	cancelLea()
	cancelLea()
	_, open := <-lea
	assert.False(t, open)
}

func TestSessionHubDropsWhenSubscriberIsSlow(t *testing.T) {
	hub := NewSessionHub()
	ch, cancel := hub.Subscribe("lea")
	defer cancel()

	for i := 0; i < subscriberBuffer+5; i++ {
		hub.Dispatch(model.SessionEvent{Type: model.SessionProfileUpdated, UserID: "lea"})
	}
	assert.Len(t, ch, subscriberBuffer)
}
