package publisher

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus_sync/internal/domain"
)

type recorder struct {
	published []string
	err       error
	closed    bool
}

func (r *recorder) Publish(_ context.Context, card *domain.ContentCard, _ bool) error {
	r.published = append(r.published, card.ID)
	return r.err
}

func (r *recorder) Close() error {
	r.closed = true
	return nil
}

func TestFanout_DeliversToAll(t *testing.T) {
	failing := &recorder{err: errors.New("broker down")}
	ok := &recorder{}
	f := NewFanout(failing, nil, ok)
	require.Len(t, f, 2)

	err := f.Publish(context.Background(), &domain.ContentCard{ID: "news_1"}, true)

	assert.ErrorContains(t, err, "broker down")
	assert.Equal(t, []string{"news_1"}, failing.published)
	assert.Equal(t, []string{"news_1"}, ok.published)
}

func TestFanout_Close(t *testing.T) {
	a, b := &recorder{}, &recorder{}

	require.NoError(t, NewFanout(a, b).Close())
	assert.True(t, a.closed)
	assert.True(t, b.closed)
}

func TestFanout_Empty(t *testing.T) {
	f := NewFanout()
	assert.NoError(t, f.Publish(context.Background(), &domain.ContentCard{}, false))
	assert.NoError(t, f.Close())
}

func TestNewCardMessage(t *testing.T) {
	card := &domain.ContentCard{ID: "centers_x", Category: "centers"}

	created := newCardMessage(card, true)
	assert.Equal(t, "create", created.Action)
	assert.Equal(t, "centers_x", created.Card.ID)
	assert.False(t, created.Timestamp.IsZero())

	assert.Equal(t, "update", newCardMessage(card, false).Action)
}

func TestRabbitMQ_RouteFor(t *testing.T) {
	r := &RabbitMQ{routingKey: "cards"}
	assert.Equal(t, "cards.news", r.routeFor("news"))
	assert.Equal(t, "cards.rectorat_members", r.routeFor("rectorat_members"))
}
