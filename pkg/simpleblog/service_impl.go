package simpleblog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-blog/pkg/simpleblog/objectkey"
	"github.com/tendant/simple-blog/pkg/simpleblog/urlstrategy"
)

// DefaultAvatarServiceURL generates placeholder avatars from a name.
const DefaultAvatarServiceURL = "https://ui-avatars.com/api/"

// service implements the Service interface
type service struct {
	repository   Repository
	blobStore    BlobStore
	urlStrategy  URLStrategy
	keyGenerator objectkey.Generator
	eventSink    EventSink
	coverFetcher CoverFetcher
	renderer     DocumentRenderer
	logger       *slog.Logger

	avatarServiceURL  string
	emptyListNotFound bool
	uniqueEmails      bool

	now   func() time.Time
	newID func() string
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the collection repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithBlobStore sets the media storage backend used for uploads
func WithBlobStore(store BlobStore) Option {
	return func(s *service) {
		s.blobStore = store
	}
}

// WithURLStrategy sets how stored media keys become record URLs
func WithURLStrategy(strategy URLStrategy) Option {
	return func(s *service) {
		s.urlStrategy = strategy
	}
}

// WithObjectKeyGenerator sets how media object keys are derived from records
func WithObjectKeyGenerator(generator objectkey.Generator) Option {
	return func(s *service) {
		s.keyGenerator = generator
	}
}

// WithEventSink sets the event sink for the service
func WithEventSink(sink EventSink) Option {
	return func(s *service) {
		s.eventSink = sink
	}
}

// WithCoverFetcher sets the fetcher used for remote cover images on export
func WithCoverFetcher(fetcher CoverFetcher) Option {
	return func(s *service) {
		s.coverFetcher = fetcher
	}
}

// WithExporter sets the document renderer used by ExportBlogPostPDF
func WithExporter(renderer DocumentRenderer) Option {
	return func(s *service) {
		s.renderer = renderer
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithAvatarServiceURL sets the base URL for generated avatars
func WithAvatarServiceURL(baseURL string) Option {
	return func(s *service) {
		if baseURL != "" {
			s.avatarServiceURL = baseURL
		}
	}
}

// WithEmptyListNotFound controls whether listing an empty collection returns
// ErrNoAuthors / ErrNoBlogPosts (true, the default) or an empty slice.
func WithEmptyListNotFound(enabled bool) Option {
	return func(s *service) {
		s.emptyListNotFound = enabled
	}
}

// WithUniqueEmails rejects creating or updating an author with an email that
// another author already uses.
func WithUniqueEmails(enabled bool) Option {
	return func(s *service) {
		s.uniqueEmails = enabled
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		logger:            slog.Default(),
		avatarServiceURL:  DefaultAvatarServiceURL,
		emptyListNotFound: true,
		now:               func() time.Time { return time.Now().UTC() },
		newID:             func() string { return uuid.New().String() },
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.urlStrategy == nil {
		s.urlStrategy = urlstrategy.NewDefaultStrategy("")
	}
	if s.keyGenerator == nil {
		s.keyGenerator = objectkey.NewDefaultGenerator()
	}
	if s.eventSink == nil {
		s.eventSink = NewNoopEventSink()
	}

	return s, nil
}

// fire delivers an event. Sink failures are logged and never fail the operation.
func (s *service) fire(event string, err error) {
	if err != nil {
		s.logger.Warn("Event sink failed", "event", event, "error", err)
	}
}

func encodeRecord(id string, v any) (Record, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Record{}, fmt.Errorf("encode record %s: %w", id, err)
	}
	return Record{ID: id, Data: data}, nil
}

func decodeAuthor(rec *Record) (*Author, error) {
	var a Author
	if err := json.Unmarshal(rec.Data, &a); err != nil {
		return nil, fmt.Errorf("decode author %s: %w", rec.ID, err)
	}
	if a.ID == "" {
		a.ID = rec.ID
	}
	return &a, nil
}

func decodeBlogPost(rec *Record) (*BlogPost, error) {
	var p BlogPost
	if err := json.Unmarshal(rec.Data, &p); err != nil {
		return nil, fmt.Errorf("decode blog post %s: %w", rec.ID, err)
	}
	if p.ID == "" {
		p.ID = rec.ID
	}
	if p.Comments == nil {
		p.Comments = []Comment{}
	}
	return &p, nil
}
