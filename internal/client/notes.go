package client

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/pkordes/tripsync/internal/domain"
	"github.com/pkordes/tripsync/internal/live"
	"github.com/pkordes/tripsync/internal/realtime"
)

// GetNote returns a trip's shared note; a never-written note reads as the
// zero Note.
func (c *Client) GetNote(ctx context.Context, tripID uuid.UUID) (domain.Note, error) {
	var note domain.Note
	err := c.get(ctx, "/api/trips/"+tripID.String()+"/notes", &note)
	return note, err
}

// PutNote replaces the trip's shared note. Last writer wins.
func (c *Client) PutNote(ctx context.Context, tripID uuid.UUID, content string) (domain.Note, error) {
	var note domain.Note
	err := c.do(ctx, http.MethodPut, "/api/trips/"+tripID.String()+"/notes",
		map[string]string{"content": content}, &note)
	return note, err
}

// SubscribeNote delivers snapshots of the trip's shared note.
func (c *Client) SubscribeNote(tripID uuid.UUID, deliver func(domain.Note)) live.CancelFunc {
	fetch := func(ctx context.Context) (domain.Note, error) { return c.GetNote(ctx, tripID) }
	return live.Subscribe(c.mux, realtime.TopicNotes(tripID), fetch, deliver)
}
