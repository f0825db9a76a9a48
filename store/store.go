package store

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"median/models"
)

// Entity kinds, used in change events and deletion references.
const (
	KindNamespace = "namespace"
	KindType      = "type"
	KindValidator = "validator"
	KindField     = "field"
	KindObject    = "object"
	KindEndpoint  = "endpoint"
	KindTag       = "tag"
)

// ID prefixes
const (
	prefixNamespace = "ns"
	prefixField     = "field"
	prefixObject    = "obj"
	prefixEndpoint  = "ep"
	prefixTag       = "tag"
)

// changeBuffer is the per-subscriber event backlog before events are dropped.
const changeBuffer = 64

// ChangeOp is the kind of mutation a Change describes.
type ChangeOp string

const (
	OpCreated ChangeOp = "created"
	OpUpdated ChangeOp = "updated"
	OpDeleted ChangeOp = "deleted"
)

// Change describes one committed mutation.
type Change struct {
	Entity      string    `json:"entity"`
	Op          ChangeOp  `json:"op"`
	ID          string    `json:"id"`
	NamespaceID string    `json:"namespace_id,omitempty"`
	At          time.Time `json:"at"`
}

// Store owns every schema collection. Construct one per application (or
// test) with New; there is no package-level state.
//
// All methods are safe for concurrent use and return deep copies.
type Store struct {
	mu     sync.RWMutex
	ids    *IDGenerator
	logger *zap.Logger
	now    func() time.Time

	namespaces []models.Namespace
	types      []models.TypeDef
	validators []models.Validator
	fields     []models.Field
	objects    []models.ObjectDefinition
	endpoints  []models.Endpoint
	tags       []models.EndpointTag

	subMu   sync.Mutex
	subs    map[int]chan Change
	nextSub int
}

// Option configures a Store.
type Option func(*Store)

// Logger returns the store's logger, never nil.
func (s *Store) Logger() *zap.Logger {
	return s.logger
}

// WithLogger sets the logger used for mutation records.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithIDGenerator replaces the identifier source.
func WithIDGenerator(ids *IDGenerator) Option {
	return func(s *Store) {
		if ids != nil {
			s.ids = ids
		}
	}
}

// WithClock sets the time source for change events.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Store holding the contents of seed. Seed data is trusted:
// it is normalized but not checked for uniqueness. The global namespace is
// always present and locked.
func New(seed Seed, opts ...Option) *Store {
	s := &Store{
		ids:    NewIDGenerator(),
		logger: zap.NewNop(),
		now:    time.Now,
		subs:   map[int]chan Change{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.load(seed)
	return s
}

func (s *Store) load(seed Seed) {
	for _, ns := range seed.Namespaces {
		if ns.ID == "" {
			ns.ID = s.ids.Next(prefixNamespace)
		}
		if ns.ID == models.GlobalNamespaceID {
			ns.Locked = true
		}
		s.namespaces = append(s.namespaces, ns)
	}
	if s.namespaceIndex(models.GlobalNamespaceID) < 0 {
		global := models.Namespace{
			ID:          models.GlobalNamespaceID,
			Name:        "Global",
			Description: "Shared definitions available to every namespace",
			Locked:      true,
		}
		s.namespaces = append([]models.Namespace{global}, s.namespaces...)
	}

	for _, t := range seed.Types {
		t.UsedInFields = 0
		s.types = append(s.types, t)
	}

	for _, v := range seed.Validators {
		v = v.Clone()
		v.UsedInFields = 0
		v.FieldsUsingValidator = nil
		s.validators = append(s.validators, v)
	}

	for _, f := range seed.Fields {
		f = f.Clone()
		if f.ID == "" {
			f.ID = s.ids.Next(prefixField)
		}
		if f.NamespaceID == "" {
			f.NamespaceID = models.GlobalNamespaceID
		}
		f.UsedInApis = nil
		s.fields = append(s.fields, f)
	}

	for _, o := range seed.Objects {
		o = o.Clone()
		if o.ID == "" {
			o.ID = s.ids.Next(prefixObject)
		}
		if o.NamespaceID == "" {
			o.NamespaceID = models.GlobalNamespaceID
		}
		o.UsedInApis = nil
		s.objects = append(s.objects, o)
	}

	for _, t := range seed.Tags {
		if t.ID == "" {
			t.ID = s.ids.Next(prefixTag)
		}
		s.tags = append(s.tags, t)
	}

	for _, e := range seed.Endpoints {
		e = e.Clone()
		if e.ID == "" {
			e.ID = s.ids.Next(prefixEndpoint)
		}
		if e.NamespaceID == "" {
			e.NamespaceID = models.GlobalNamespaceID
		}
		if e.ResponseShape == "" {
			e.ResponseShape = models.ShapeObject
		}
		e.PathParams = DerivePathParams(e.Path, e.PathParams)
		s.endpoints = append(s.endpoints, e)
	}
}

// Subscribe returns a channel receiving every committed change and a
// function that unsubscribes and closes the channel. Slow subscribers miss
// events rather than block writers.
func (s *Store) Subscribe() (<-chan Change, func()) {
	ch := make(chan Change, changeBuffer)

	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			close(ch)
			s.subMu.Unlock()
		})
	}
}

func (s *Store) publish(entity string, op ChangeOp, id, namespaceID string) {
	change := Change{Entity: entity, Op: op, ID: id, NamespaceID: namespaceID, At: s.now()}

	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- change:
		default:
			s.logger.Warn("dropping change event for slow subscriber",
				zap.String("entity", entity), zap.String("id", id))
		}
	}
}

// Counts reports the size of every collection.
func (s *Store) Counts() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]int{
		"namespaces": len(s.namespaces),
		"types":      len(s.types),
		"validators": len(s.validators),
		"fields":     len(s.fields),
		"objects":    len(s.objects),
		"endpoints":  len(s.endpoints),
		"tags":       len(s.tags),
	}
}

// Snapshot exports the stored collections as a Seed, without derived data.
func (s *Store) Snapshot() Seed {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seed := Seed{
		Namespaces: make([]models.Namespace, len(s.namespaces)),
		Types:      make([]models.TypeDef, len(s.types)),
		Validators: make([]models.Validator, len(s.validators)),
		Fields:     make([]models.Field, len(s.fields)),
		Objects:    make([]models.ObjectDefinition, len(s.objects)),
		Endpoints:  make([]models.Endpoint, len(s.endpoints)),
		Tags:       make([]models.EndpointTag, len(s.tags)),
	}
	copy(seed.Namespaces, s.namespaces)
	copy(seed.Types, s.types)
	copy(seed.Tags, s.tags)
	for i, v := range s.validators {
		seed.Validators[i] = v.Clone()
	}
	for i, f := range s.fields {
		seed.Fields[i] = f.Clone()
	}
	for i, o := range s.objects {
		seed.Objects[i] = o.Clone()
	}
	for i, e := range s.endpoints {
		seed.Endpoints[i] = e.Clone()
	}
	return seed
}

func (s *Store) namespaceIndex(id string) int {
	for i, ns := range s.namespaces {
		if ns.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) typeIndex(name string) int {
	for i, t := range s.types {
		if t.Name == name {
			return i
		}
	}
	return -1
}

func (s *Store) validatorIndex(name string) int {
	for i, v := range s.validators {
		if v.Name == name {
			return i
		}
	}
	return -1
}

func (s *Store) fieldIndex(id string) int {
	for i, f := range s.fields {
		if f.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) objectIndex(id string) int {
	for i, o := range s.objects {
		if o.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) endpointIndex(id string) int {
	for i, e := range s.endpoints {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) tagIndex(id string) int {
	for i, t := range s.tags {
		if t.ID == id {
			return i
		}
	}
	return -1
}
