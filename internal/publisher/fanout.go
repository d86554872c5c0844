package publisher

import (
	"context"
	"errors"

	"campus_sync/internal/domain"
)

// CardPublisher receives every card written by a sync pass.
type CardPublisher interface {
	Publish(ctx context.Context, card *domain.ContentCard, isNew bool) error
	Close() error
}

// Fanout delivers each notification to all of its publishers. A failing
// publisher does not stop delivery to the rest.
type Fanout []CardPublisher

func NewFanout(pubs ...CardPublisher) Fanout {
	out := make(Fanout, 0, len(pubs))
	for _, p := range pubs {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

func (f Fanout) Publish(ctx context.Context, card *domain.ContentCard, isNew bool) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, card, isNew); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f Fanout) Close() error {
	var errs []error
	for _, p := range f {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
