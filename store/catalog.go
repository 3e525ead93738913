package store

import (
	"database/sql"
	"errors"
	"fmt"

	"heavymetal/types"
)

// Search kinds accepted by SearchTracks
const (
	SearchByName   = "name"
	SearchByArtist = "artist"
	SearchByAlbum  = "album"
	SearchByGenre  = "genre"
)

// ListTracks returns a page of track summaries
func (s *Store) ListTracks(limit, offset int) ([]types.TrackSummary, error) {
	rows, err := s.db.Query(`SELECT uuid, name FROM tracks LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracks: %w", err)
	}
	defer rows.Close()

	return scanSummaries(rows)
}

// SearchTracks performs a substring match over the given kind: track name,
// artist name, album name or genre.
func (s *Store) SearchTracks(kind, query string, limit, offset int) ([]types.TrackSummary, error) {
	pattern := "%" + query + "%"

	var q string
	switch kind {
	case SearchByName:
		q = `SELECT uuid, name FROM tracks WHERE name LIKE ? LIMIT ? OFFSET ?`
	case SearchByArtist:
		q = `SELECT t.uuid, t.name FROM tracks t JOIN artists a ON t.artist = a.uuid WHERE a.name LIKE ? LIMIT ? OFFSET ?`
	case SearchByAlbum:
		q = `SELECT t.uuid, t.name FROM tracks t JOIN albums al ON t.album = al.uuid WHERE al.name LIKE ? LIMIT ? OFFSET ?`
	case SearchByGenre:
		q = `SELECT uuid, name FROM tracks WHERE genre LIKE ? LIMIT ? OFFSET ?`
	default:
		return nil, fmt.Errorf("unknown search kind %q", kind)
	}

	rows, err := s.db.Query(q, pattern, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to search tracks: %w", err)
	}
	defer rows.Close()

	return scanSummaries(rows)
}

// GetTrackDetail returns a track joined with its audio file and optional
// artist/album. Returns ErrNotFound for an unknown track id.
func (s *Store) GetTrackDetail(id string) (*types.TrackDetail, error) {
	var (
		detail     types.TrackDetail
		genre      sql.NullString
		artistUUID sql.NullString
		artistName sql.NullString
		albumUUID  sql.NullString
		albumName  sql.NullString
	)

	err := s.db.QueryRow(`
		SELECT t.uuid, t.name, t.genre,
		       au.uuid, au.name, au.path,
		       ar.uuid, ar.name,
		       al.uuid, al.name
		FROM tracks t
		JOIN audio au ON t.audio = au.uuid
		LEFT JOIN artists ar ON t.artist = ar.uuid
		LEFT JOIN albums al ON t.album = al.uuid
		WHERE t.uuid = ?`, id,
	).Scan(
		&detail.UUID, &detail.Name, &genre,
		&detail.Audio.UUID, &detail.Audio.Name, &detail.Audio.Path,
		&artistUUID, &artistName,
		&albumUUID, &albumName,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query track %s: %w", id, err)
	}

	detail.Genre = genre.String
	if artistUUID.Valid {
		detail.Artist = &types.Artist{UUID: artistUUID.String, Name: artistName.String}
	}
	if albumUUID.Valid {
		detail.Album = &types.Album{UUID: albumUUID.String, Name: albumName.String}
	}

	return &detail, nil
}

// GetArtistByName looks an artist up by exact, case-sensitive name
func (s *Store) GetArtistByName(name string) (*types.Artist, error) {
	var artist types.Artist
	err := s.db.QueryRow(`SELECT uuid, name FROM artists WHERE name = ?`, name).
		Scan(&artist.UUID, &artist.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query artist: %w", err)
	}
	return &artist, nil
}

// GetAlbumByName looks an album up by exact, case-sensitive name
func (s *Store) GetAlbumByName(name string) (*types.Album, error) {
	var album types.Album
	err := s.db.QueryRow(`SELECT uuid, name FROM albums WHERE name = ?`, name).
		Scan(&album.UUID, &album.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query album: %w", err)
	}
	return &album, nil
}

// ListArtists returns all artist rows, used to seed the resolver cache
func (s *Store) ListArtists() ([]types.Artist, error) {
	rows, err := s.db.Query(`SELECT uuid, name FROM artists`)
	if err != nil {
		return nil, fmt.Errorf("failed to list artists: %w", err)
	}
	defer rows.Close()

	var artists []types.Artist
	for rows.Next() {
		var artist types.Artist
		if err := rows.Scan(&artist.UUID, &artist.Name); err != nil {
			return nil, err
		}
		artists = append(artists, artist)
	}
	return artists, rows.Err()
}

// ListAlbums returns all album rows, used to seed the resolver cache
func (s *Store) ListAlbums() ([]types.Album, error) {
	rows, err := s.db.Query(`SELECT uuid, name FROM albums`)
	if err != nil {
		return nil, fmt.Errorf("failed to list albums: %w", err)
	}
	defer rows.Close()

	var albums []types.Album
	for rows.Next() {
		var album types.Album
		if err := rows.Scan(&album.UUID, &album.Name); err != nil {
			return nil, err
		}
		albums = append(albums, album)
	}
	return albums, rows.Err()
}

func scanSummaries(rows *sql.Rows) ([]types.TrackSummary, error) {
	summaries := make([]types.TrackSummary, 0)
	for rows.Next() {
		var summary types.TrackSummary
		if err := rows.Scan(&summary.UUID, &summary.Name); err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}
