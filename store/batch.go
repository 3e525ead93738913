package store

import (
	"database/sql"
	"fmt"

	"heavymetal/types"
)

// Batch wraps a single catalog write transaction. All ingestion writes go
// through a Batch so a whole batch of files commits or rolls back as a unit.
type Batch struct {
	tx *sql.Tx
}

// Begin opens a new write transaction
func (s *Store) Begin() (*Batch, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin batch: %w", err)
	}
	return &Batch{tx: tx}, nil
}

// InsertArtist adds an artist row to the batch
func (b *Batch) InsertArtist(artist types.Artist) error {
	_, err := b.tx.Exec(`INSERT INTO artists (uuid, name) VALUES (?, ?)`, artist.UUID, artist.Name)
	if err != nil {
		return fmt.Errorf("failed to insert artist %q: %w", artist.Name, err)
	}
	return nil
}

// InsertAlbum adds an album row to the batch
func (b *Batch) InsertAlbum(album types.Album) error {
	_, err := b.tx.Exec(`INSERT INTO albums (uuid, name) VALUES (?, ?)`, album.UUID, album.Name)
	if err != nil {
		return fmt.Errorf("failed to insert album %q: %w", album.Name, err)
	}
	return nil
}

// InsertAudio adds an audio file row to the batch
func (b *Batch) InsertAudio(audio types.AudioFile) error {
	_, err := b.tx.Exec(`INSERT INTO audio (uuid, name, path) VALUES (?, ?, ?)`,
		audio.UUID, audio.Name, audio.Path)
	if err != nil {
		return fmt.Errorf("failed to insert audio %q: %w", audio.Path, err)
	}
	return nil
}

// InsertTrack adds a track row to the batch. Artist and album references may
// be empty; the audio reference must point at a row inserted in this batch.
func (b *Batch) InsertTrack(track types.Track) error {
	_, err := b.tx.Exec(
		`INSERT INTO tracks (uuid, name, genre, artist, album, audio) VALUES (?, ?, ?, ?, ?, ?)`,
		track.UUID, track.Name, nullable(track.Genre), nullable(track.Artist), nullable(track.Album), track.Audio,
	)
	if err != nil {
		return fmt.Errorf("failed to insert track %q: %w", track.Name, err)
	}
	return nil
}

// Commit commits the batch transaction
func (b *Batch) Commit() error {
	if err := b.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}

// Rollback discards the batch transaction
func (b *Batch) Rollback() error {
	return b.tx.Rollback()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
