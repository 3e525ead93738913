package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"heavymetal/metadata"
	"heavymetal/store"
	"heavymetal/types"
)

// streamChunkSize is the buffer used for the byte-streaming copy loop
const streamChunkSize = 1 << 20 // 1 MiB

// SongHandler handles catalog query and audio delivery endpoints
type SongHandler struct {
	store *store.Store
}

// NewSongHandler creates a new song handler
func NewSongHandler(st *store.Store) *SongHandler {
	return &SongHandler{store: st}
}

// List returns a page of track summaries
func (h *SongHandler) List(c *gin.Context) {
	limit, offset, ok := pagination(c)
	if !ok {
		return
	}

	tracks, err := h.store.ListTracks(limit, offset)
	if err != nil {
		log.Error("failed to list tracks", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to list songs",
		})
		return
	}

	c.JSON(http.StatusOK, tracks)
}

// Info returns a track joined with its audio file and optional artist/album
func (h *SongHandler) Info(c *gin.Context) {
	detail, ok := h.trackDetail(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, detail)
}

// Search performs a substring match over track name, artist name, album name
// or genre, selected by the :kind path parameter
func (h *SongHandler) Search(c *gin.Context) {
	kind := c.Param("kind")
	query := c.Param("query")

	switch kind {
	case store.SearchByName, store.SearchByArtist, store.SearchByAlbum, store.SearchByGenre:
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("search kind must be one of name, artist, album, genre; got %q", kind),
		})
		return
	}

	limit, offset, ok := pagination(c)
	if !ok {
		return
	}

	tracks, err := h.store.SearchTracks(kind, query, limit, offset)
	if err != nil {
		log.Error("failed to search tracks", "kind", kind, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "search failed",
		})
		return
	}

	c.JSON(http.StatusOK, tracks)
}

// Serve returns the track's whole audio file
func (h *SongHandler) Serve(c *gin.Context) {
	detail, ok := h.trackDetail(c)
	if !ok {
		return
	}

	file, info, ok := openAudio(c, detail.Audio.Path)
	if !ok {
		return
	}
	defer file.Close()

	c.Header("Content-Type", "audio/mpeg")
	c.Header("Content-Length", strconv.FormatInt(info.Size(), 10))
	c.Status(http.StatusOK)

	if _, err := io.Copy(c.Writer, file); err != nil {
		log.Debug("error serving file", "path", detail.Audio.Path, "err", err)
	}
}

// Stream delivers the track's audio with HTTP range-request semantics: a
// Range header yields a 206 partial response, no header yields the full file.
func (h *SongHandler) Stream(c *gin.Context) {
	detail, ok := h.trackDetail(c)
	if !ok {
		return
	}

	file, info, ok := openAudio(c, detail.Audio.Path)
	if !ok {
		return
	}
	defer file.Close()

	c.Header("Accept-Ranges", "bytes")
	c.Header("Content-Type", metadata.GetContentType(detail.Audio.Path))

	if rangeHeader := c.GetHeader("Range"); rangeHeader != "" {
		h.streamRange(c, file, info.Size(), rangeHeader)
		return
	}

	c.Header("Content-Length", strconv.FormatInt(info.Size(), 10))
	c.Status(http.StatusOK)

	buf := make([]byte, streamChunkSize)
	if _, err := io.CopyBuffer(c.Writer, file, buf); err != nil {
		log.Debug("error streaming file", "path", detail.Audio.Path, "err", err)
	}
}

// streamRange handles an HTTP range request for efficient seeking
func (h *SongHandler) streamRange(c *gin.Context, file *os.File, fileSize int64, rangeHeader string) {
	start, end, err := parseRange(rangeHeader, fileSize)
	if err != nil {
		c.Header("Content-Range", fmt.Sprintf("bytes */%d", fileSize))
		c.Status(http.StatusRequestedRangeNotSatisfiable)
		return
	}

	if _, err := file.Seek(start, io.SeekStart); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to seek file",
		})
		return
	}

	contentLength := end - start + 1
	c.Header("Content-Length", strconv.FormatInt(contentLength, 10))
	c.Header("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, fileSize))
	c.Status(http.StatusPartialContent)

	buf := make([]byte, streamChunkSize)
	if _, err := io.CopyBuffer(c.Writer, io.LimitReader(file, contentLength), buf); err != nil {
		log.Debug("error streaming range", "start", start, "end", end, "err", err)
	}
}

// parseRange parses a "bytes=start-end" header. Either bound may be omitted;
// a start or explicit end at or past the file size is unsatisfiable.
func parseRange(rangeHeader string, fileSize int64) (start, end int64, err error) {
	spec, ok := strings.CutPrefix(rangeHeader, "bytes=")
	if !ok {
		return 0, 0, errors.New("unsupported range unit")
	}

	parts := strings.SplitN(spec, "-", 2)
	if len(parts) != 2 {
		return 0, 0, errors.New("malformed range")
	}

	end = fileSize - 1
	if parts[0] != "" {
		if start, err = strconv.ParseInt(parts[0], 10, 64); err != nil || start < 0 {
			return 0, 0, errors.New("malformed range start")
		}
	}
	if parts[1] != "" {
		if end, err = strconv.ParseInt(parts[1], 10, 64); err != nil || end < start {
			return 0, 0, errors.New("malformed range end")
		}
		if end >= fileSize {
			return 0, 0, errors.New("range end beyond file size")
		}
	}

	if start >= fileSize {
		return 0, 0, errors.New("range start beyond file size")
	}

	return start, end, nil
}

// trackDetail resolves the :id path parameter, answering 404 for unknown ids
func (h *SongHandler) trackDetail(c *gin.Context) (*types.TrackDetail, bool) {
	id := c.Param("id")

	d, err := h.store.GetTrackDetail(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "song not found",
			})
			return nil, false
		}
		log.Error("failed to load track", "id", id, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to load song",
		})
		return nil, false
	}

	return d, true
}

// openAudio opens the catalog-referenced audio file, answering 404 when the
// file has vanished from disk
func openAudio(c *gin.Context, path string) (*os.File, os.FileInfo, bool) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "audio file not found",
			})
			return nil, nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "file access error",
		})
		return nil, nil, false
	}

	if info.IsDir() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "path is a directory, not a file",
		})
		return nil, nil, false
	}

	file, err := os.Open(path)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to open file",
		})
		return nil, nil, false
	}

	return file, info, true
}

// pagination reads the limit/offset query parameters
func pagination(c *gin.Context) (limit, offset int, ok bool) {
	var err error
	if limit, err = strconv.Atoi(c.DefaultQuery("limit", "10")); err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
		return 0, 0, false
	}
	if offset, err = strconv.Atoi(c.DefaultQuery("offset", "0")); err != nil || offset < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "offset must be a non-negative integer"})
		return 0, 0, false
	}
	return limit, offset, true
}
