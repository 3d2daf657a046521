package transfer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"
)

const (
	MaxCoverSize int64 = 5 << 20
	MaxBookSize  int64 = 100 << 20

	ReasonInvalidType = "invalid file type"
	ReasonTooLarge    = "file too large"

	sniffLen = 3072
)

// Area is one of the two storage areas.
type Area string

const (
	AreaCovers Area = "covers" // public
	AreaBooks  Area = "books"  // private
)

// ValidationError rejects a file before any storage call.
type ValidationError struct {
	Reason      string
	Description string
}

func (e *ValidationError) Error() string {
	return e.Reason + ": " + e.Description
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ObjectStore is the storage gateway. *storage.MinIOStorage implements it.
type ObjectStore interface {
	Put(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) error
	PublicURL(bucket, key string) string
	PresignGet(ctx context.Context, bucket, key string, expiry time.Duration) (string, error)
	Remove(ctx context.Context, bucket string, keys []string) error
}

// File is an incoming upload. Body may also implement io.Seeker and
// io.ReaderAt (multipart files do); both are used when present.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

type CoverResult struct {
	Path      string `json:"path"`
	PublicURL string `json:"public_url"`
}

// FileResult carries the path only: book files live in the private area.
type FileResult struct {
	Path  string `json:"path"`
	Pages int    `json:"pages,omitempty"`
}

type Config struct {
	CoverBucket  string
	FileBucket   string
	SignedURLTTL time.Duration
}

// Helper validates, stores and links cover images and book files.
type Helper struct {
	store ObjectStore
	cfg   Config

	coverStep, fileStep         int
	coverInterval, fileInterval time.Duration
}

func NewHelper(store ObjectStore, cfg Config) *Helper {
	if cfg.SignedURLTTL <= 0 {
		cfg.SignedURLTTL = time.Hour
	}
	return &Helper{
		store:         store,
		cfg:           cfg,
		coverStep:     10,
		coverInterval: 100 * time.Millisecond,
		fileStep:      5,
		fileInterval:  200 * time.Millisecond,
	}
}

func (h *Helper) bucket(area Area) string {
	if area == AreaCovers {
		return h.cfg.CoverBucket
	}
	return h.cfg.FileBucket
}

// UploadCover stores an image under covers/<bookID>.<ext>, or a random name
// when the book does not exist yet.
func (h *Helper) UploadCover(ctx context.Context, f File, bookID string, progress *Progress) (*CoverResult, error) {
	contentType, body, err := detect(f)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, &ValidationError{Reason: ReasonInvalidType, Description: "Please upload an image file"}
	}
	if f.Size > MaxCoverSize {
		return nil, &ValidationError{
			Reason:      ReasonTooLarge,
			Description: fmt.Sprintf("Cover image must be less than %s", humanize.IBytes(uint64(MaxCoverSize))),
		}
	}

	name := bookID
	if name == "" {
		name = uuid.NewString()
	}
	key := fmt.Sprintf("covers/%s.%s", name, extension(f.Name, contentType))

	done := progress.begin(h.coverStep, h.coverInterval)
	err = h.store.Put(ctx, h.cfg.CoverBucket, key, body, f.Size, contentType)
	done(err == nil)
	if err != nil {
		log.Error().Err(err).Str("path", key).Msg("[TRANSFER] Cover upload failed")
		return nil, fmt.Errorf("upload cover: %w", err)
	}

	return &CoverResult{Path: key, PublicURL: h.store.PublicURL(h.cfg.CoverBucket, key)}, nil
}

// UploadBookFile stores a PDF under books/<bookID>.pdf.
func (h *Helper) UploadBookFile(ctx context.Context, f File, bookID string, progress *Progress) (*FileResult, error) {
	if bookID == "" {
		return nil, errors.New("upload book file: book id is required")
	}
	contentType, body, err := detect(f)
	if err != nil {
		return nil, err
	}
	if contentType != "application/pdf" {
		return nil, &ValidationError{Reason: ReasonInvalidType, Description: "Please upload a PDF file"}
	}
	if f.Size > MaxBookSize {
		return nil, &ValidationError{
			Reason:      ReasonTooLarge,
			Description: fmt.Sprintf("Book file must be less than %s", humanize.IBytes(uint64(MaxBookSize))),
		}
	}

	key := fmt.Sprintf("books/%s.pdf", bookID)
	pages := countPages(f)

	done := progress.begin(h.fileStep, h.fileInterval)
	err = h.store.Put(ctx, h.cfg.FileBucket, key, body, f.Size, contentType)
	done(err == nil)
	if err != nil {
		log.Error().Err(err).Str("path", key).Msg("[TRANSFER] Book file upload failed")
		return nil, fmt.Errorf("upload book file: %w", err)
	}

	return &FileResult{Path: key, Pages: pages}, nil
}

// DownloadURL mints a fresh signed link to a private book file. Links are
// never cached; every call gets its own expiry window.
func (h *Helper) DownloadURL(ctx context.Context, filePath string) (string, error) {
	if filePath == "" {
		return "", errors.New("download url: empty path")
	}
	u, err := h.store.PresignGet(ctx, h.cfg.FileBucket, filePath, h.cfg.SignedURLTTL)
	if err != nil {
		log.Error().Err(err).Str("path", filePath).Msg("[TRANSFER] Could not generate download link")
		return "", fmt.Errorf("download url: %w", err)
	}
	return u, nil
}

func (h *Helper) SignedURLTTL() time.Duration {
	return h.cfg.SignedURLTTL
}

// Delete removes an asset. It is a cleanup step, so failures are only logged.
func (h *Helper) Delete(ctx context.Context, area Area, filePath string) bool {
	if filePath == "" {
		return false
	}
	if err := h.store.Remove(ctx, h.bucket(area), []string{filePath}); err != nil {
		log.Warn().Err(err).Str("area", string(area)).Str("path", filePath).Msg("[TRANSFER] Delete file error")
		return false
	}
	return true
}

// CoverPath recovers the object path from a public cover URL
// (".../book-covers/covers/x.jpg" → "covers/x.jpg").
func (h *Helper) CoverPath(publicURL string) string {
	u, err := url.Parse(publicURL)
	if err != nil {
		return ""
	}
	_, after, ok := strings.Cut(u.Path, "/"+h.cfg.CoverBucket+"/")
	if !ok {
		return ""
	}
	return after
}

// detect resolves the content type, sniffing the body when the client sent
// none, and returns a reader positioned at the start of the file.
func detect(f File) (string, io.Reader, error) {
	if f.Body == nil {
		return "", nil, &ValidationError{Reason: ReasonInvalidType, Description: "empty upload"}
	}
	if ct := baseType(f.ContentType); ct != "" && ct != "application/octet-stream" {
		return ct, f.Body, nil
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f.Body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", nil, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]
	ct := baseType(mimetype.Detect(head).String())

	if s, ok := f.Body.(io.Seeker); ok {
		if _, err := s.Seek(0, io.SeekStart); err == nil {
			return ct, f.Body, nil
		}
	}
	return ct, io.MultiReader(bytes.NewReader(head), f.Body), nil
}

func baseType(ct string) string {
	if ct == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(ct))
	}
	return mt
}

func extension(name, contentType string) string {
	if ext := strings.TrimPrefix(path.Ext(name), "."); ext != "" {
		return strings.ToLower(ext)
	}
	if m := mimetype.Lookup(contentType); m != nil && m.Extension() != "" {
		return strings.TrimPrefix(m.Extension(), ".")
	}
	return "bin"
}

// countPages reads the page count when the body allows random access.
// A PDF that cannot be parsed still uploads; it just reports 0 pages.
func countPages(f File) (pages int) {
	ra, ok := f.Body.(io.ReaderAt)
	if !ok || f.Size <= 0 {
		return 0
	}
	defer func() {
		if r := recover(); r != nil {
			log.Debug().Interface("panic", r).Str("file", f.Name).Msg("[TRANSFER] PDF parse panicked")
			pages = 0
		}
	}()
	r, err := pdf.NewReader(ra, f.Size)
	if err != nil {
		log.Debug().Err(err).Str("file", f.Name).Msg("[TRANSFER] Could not read PDF page count")
		return 0
	}
	return r.NumPage()
}
