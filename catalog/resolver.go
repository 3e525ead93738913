// Package catalog maps extracted artist and album names to canonical catalog
// identities, creating rows on first sight and caching them afterwards.
package catalog

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"heavymetal/store"
	"heavymetal/types"
)

// Lookup is the read side the resolver consults before creating a row
type Lookup interface {
	GetArtistByName(name string) (*types.Artist, error)
	GetAlbumByName(name string) (*types.Album, error)
	ListArtists() ([]types.Artist, error)
	ListAlbums() ([]types.Album, error)
}

// Writer is the write side new rows are created through, normally a batch
// transaction owned by the scanner
type Writer interface {
	InsertArtist(types.Artist) error
	InsertAlbum(types.Album) error
}

// Resolver owns the name-to-id caches for artists and albums. Resolution is
// serialized by a single mutex so that concurrent lookups of the same name
// can never create more than one row per distinct name.
type Resolver struct {
	lookup Lookup

	mu      sync.Mutex
	artists map[string]string
	albums  map[string]string
}

// NewResolver creates a resolver with empty caches
func NewResolver(lookup Lookup) *Resolver {
	return &Resolver{
		lookup:  lookup,
		artists: make(map[string]string),
		albums:  make(map[string]string),
	}
}

// Seed loads all existing artist and album rows into the caches. Called at
// pipeline start so repeated runs never duplicate rows created earlier.
func (r *Resolver) Seed() error {
	artists, err := r.lookup.ListArtists()
	if err != nil {
		return fmt.Errorf("failed to seed artist cache: %w", err)
	}
	albums, err := r.lookup.ListAlbums()
	if err != nil {
		return fmt.Errorf("failed to seed album cache: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, artist := range artists {
		r.artists[artist.Name] = artist.UUID
	}
	for _, album := range albums {
		r.albums[album.Name] = album.UUID
	}

	return nil
}

// CachedCounts returns the number of cached artist and album names
func (r *Resolver) CachedCounts() (artists, albums int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.artists), len(r.albums)
}

// ResolveArtist returns the identifier for the named artist, creating a row
// through w on first sight. An empty name yields an empty id and no error.
// The id enters the cache before the batch commits, so later lookups in the
// same run see it immediately.
func (r *Resolver) ResolveArtist(w Writer, name string) (string, error) {
	if name == "" {
		return "", nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.artists[name]; ok {
		return id, nil
	}

	existing, err := r.lookup.GetArtistByName(name)
	if err == nil {
		r.artists[name] = existing.UUID
		return existing.UUID, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return "", err
	}

	artist := types.Artist{UUID: uuid.New().String(), Name: name}
	if err := w.InsertArtist(artist); err != nil {
		return "", err
	}
	r.artists[name] = artist.UUID

	return artist.UUID, nil
}

// ResolveAlbum returns the identifier for the named album, creating a row
// through w on first sight. Same contract as ResolveArtist.
func (r *Resolver) ResolveAlbum(w Writer, name string) (string, error) {
	if name == "" {
		return "", nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.albums[name]; ok {
		return id, nil
	}

	existing, err := r.lookup.GetAlbumByName(name)
	if err == nil {
		r.albums[name] = existing.UUID
		return existing.UUID, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return "", err
	}

	album := types.Album{UUID: uuid.New().String(), Name: name}
	if err := w.InsertAlbum(album); err != nil {
		return "", err
	}
	r.albums[name] = album.UUID

	return album.UUID, nil
}
