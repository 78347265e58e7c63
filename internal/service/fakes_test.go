package service

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"alcyxob/studio-calendar/internal/domain"
	"alcyxob/studio-calendar/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repositories mirroring the filter semantics of the Mongo
// implementations.

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[primitive.ObjectID]domain.Session
	failFind error

	// failCreate, when set, makes the next CreateMany write only
	// createBudget sessions and then return it.
	failCreate   error
	createBudget int
}

func newFakeSessionRepo(seed ...domain.Session) *fakeSessionRepo {
	r := &fakeSessionRepo{sessions: make(map[primitive.ObjectID]domain.Session)}
	for _, s := range seed {
		if s.ID.IsZero() {
			s.ID = primitive.NewObjectID()
		}
		r.sessions[s.ID] = s
	}
	return r
}

func matchesSession(s *domain.Session, f repository.SessionFilter) bool {
	if !f.TrainerID.IsZero() && s.TrainerID != f.TrainerID {
		return false
	}
	switch {
	case !f.ClientID.IsZero() && f.ClientName != "":
		legacy := s.ClientID.IsZero() && s.ClientName == f.ClientName
		if s.ClientID != f.ClientID && !legacy {
			return false
		}
	case !f.ClientID.IsZero():
		if s.ClientID != f.ClientID {
			return false
		}
	case f.ClientName != "":
		if s.ClientName != f.ClientName {
			return false
		}
	}
	if f.SeriesID != "" && s.SeriesID != f.SeriesID {
		return false
	}
	if f.Date != "" && s.DateKey() != f.Date {
		return false
	}
	if f.FromDate != "" && s.DateKey() < f.FromDate {
		return false
	}
	if f.ToDate != "" && s.DateKey() >= f.ToDate {
		return false
	}
	if f.Time != "" && s.Time != f.Time {
		return false
	}
	return true
}

func matchesActivity(e *domain.ActivityLogEntry, f repository.ActivityFilter) bool {
	d := e.SessionDetails
	if f.Date != "" && !strings.HasPrefix(d.Date, f.Date) {
		return false
	}
	if trainer := strings.TrimSpace(f.Trainer); trainer != "" && !strings.EqualFold(d.TrainerName, trainer) {
		return false
	}
	client := strings.ToLower(strings.TrimSpace(f.Client))
	return client == "" || strings.Contains(strings.ToLower(d.ClientName), client)
}

func (r *fakeSessionRepo) insert(s *domain.Session) {
	s.ID = primitive.NewObjectID()
	if s.Status == "" {
		s.Status = domain.StatusScheduled
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	r.sessions[s.ID] = *s
}

func (r *fakeSessionRepo) Create(_ context.Context, s *domain.Session) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.insert(s)
	return s.ID, nil
}

func (r *fakeSessionRepo) CreateMany(_ context.Context, sessions []domain.Session) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failCreate; err != nil {
		r.failCreate = nil
		n := min(r.createBudget, len(sessions))
		for i := 0; i < n; i++ {
			r.insert(&sessions[i])
		}
		return n, err
	}
	for i := range sessions {
		r.insert(&sessions[i])
	}
	return len(sessions), nil
}

func (r *fakeSessionRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (r *fakeSessionRepo) Find(_ context.Context, f repository.SessionFilter) ([]domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failFind != nil {
		return nil, r.failFind
	}
	out := []domain.Session{}
	for _, s := range r.sessions {
		if matchesSession(&s, f) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DateKey() != out[j].DateKey() {
			return out[i].DateKey() < out[j].DateKey()
		}
		return out[i].Time < out[j].Time
	})
	return out, nil
}

func (r *fakeSessionRepo) Update(_ context.Context, s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[s.ID]; !ok {
		return repository.ErrNotFound
	}
	r.sessions[s.ID] = *s
	return nil
}

func (r *fakeSessionRepo) UpdateMany(_ context.Context, sessions []domain.Session) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range sessions {
		if _, ok := r.sessions[s.ID]; ok {
			r.sessions[s.ID] = s
			n++
		}
	}
	return n, nil
}

func (r *fakeSessionRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.sessions, id)
	return nil
}

func (r *fakeSessionRepo) DeleteByIDs(_ context.Context, ids []primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, id := range ids {
		if _, ok := r.sessions[id]; ok {
			delete(r.sessions, id)
			n++
		}
	}
	return n, nil
}

func (r *fakeSessionRepo) DeleteMatching(_ context.Context, f repository.SessionFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, s := range r.sessions {
		if matchesSession(&s, f) {
			delete(r.sessions, id)
			n++
		}
	}
	return n, nil
}

func (r *fakeSessionRepo) UpdateDisplayName(_ context.Context, ref repository.DisplayNameRef, id primitive.ObjectID, name string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for key, s := range r.sessions {
		switch {
		case ref == repository.TrainerNameRef && s.TrainerID == id:
			s.TrainerName = name
		case ref == repository.ClientNameRef && s.ClientID == id:
			s.ClientName = name
		case ref == repository.ServiceNameRef && s.ServiceID == id:
			s.ServiceName = name
		default:
			continue
		}
		r.sessions[key] = s
		n++
	}
	return n, nil
}

func (r *fakeSessionRepo) Watch(ctx context.Context, f repository.SessionFilter) (<-chan repository.SessionSnapshot, error) {
	sessions, err := r.Find(ctx, f)
	if err != nil {
		return nil, err
	}
	ch := make(chan repository.SessionSnapshot, 1)
	ch <- repository.SessionSnapshot{Sessions: sessions}
	close(ch)
	return ch, nil
}

func (r *fakeSessionRepo) all() []domain.Session {
	out, _ := r.Find(context.Background(), repository.SessionFilter{})
	return out
}

type fakeTrainerRepo struct {
	trainers map[primitive.ObjectID]domain.Trainer
}

func newFakeTrainerRepo(seed ...domain.Trainer) *fakeTrainerRepo {
	r := &fakeTrainerRepo{trainers: make(map[primitive.ObjectID]domain.Trainer)}
	for _, t := range seed {
		r.trainers[t.ID] = t
	}
	return r
}

func (r *fakeTrainerRepo) Create(_ context.Context, t *domain.Trainer) (primitive.ObjectID, error) {
	t.ID = primitive.NewObjectID()
	r.trainers[t.ID] = *t
	return t.ID, nil
}

func (r *fakeTrainerRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Trainer, error) {
	t, ok := r.trainers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (r *fakeTrainerRepo) GetByName(_ context.Context, name string) (*domain.Trainer, error) {
	for _, t := range r.trainers {
		if t.Name == name {
			return &t, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeTrainerRepo) List(context.Context) ([]domain.Trainer, error) {
	out := make([]domain.Trainer, 0, len(r.trainers))
	for _, t := range r.trainers {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeTrainerRepo) Update(_ context.Context, t *domain.Trainer) error {
	if _, ok := r.trainers[t.ID]; !ok {
		return repository.ErrNotFound
	}
	r.trainers[t.ID] = *t
	return nil
}

func (r *fakeTrainerRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := r.trainers[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.trainers, id)
	return nil
}

func (r *fakeTrainerRepo) RenameSpecialty(_ context.Context, oldName, newName string) (int64, error) {
	var n int64
	for id, t := range r.trainers {
		for i, s := range t.Specialties {
			if s == oldName {
				t.Specialties[i] = newName
				r.trainers[id] = t
				n++
			}
		}
	}
	return n, nil
}

type fakeClientRepo struct {
	clients map[primitive.ObjectID]domain.Client
}

func newFakeClientRepo(seed ...domain.Client) *fakeClientRepo {
	r := &fakeClientRepo{clients: make(map[primitive.ObjectID]domain.Client)}
	for _, c := range seed {
		r.clients[c.ID] = c
	}
	return r
}

func (r *fakeClientRepo) Create(_ context.Context, c *domain.Client) (primitive.ObjectID, error) {
	for _, existing := range r.clients {
		if existing.Name == c.Name {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	c.ID = primitive.NewObjectID()
	r.clients[c.ID] = *c
	return c.ID, nil
}

func (r *fakeClientRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Client, error) {
	c, ok := r.clients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r *fakeClientRepo) GetByName(_ context.Context, name string) (*domain.Client, error) {
	for _, c := range r.clients {
		if c.Name == name {
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeClientRepo) List(context.Context) ([]domain.Client, error) {
	out := make([]domain.Client, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeClientRepo) Update(_ context.Context, c *domain.Client) error {
	r.clients[c.ID] = *c
	return nil
}

func (r *fakeClientRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := r.clients[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.clients, id)
	return nil
}

type fakeServiceRepo struct {
	services map[primitive.ObjectID]domain.Service
}

func newFakeServiceRepo(seed ...domain.Service) *fakeServiceRepo {
	r := &fakeServiceRepo{services: make(map[primitive.ObjectID]domain.Service)}
	for _, s := range seed {
		r.services[s.ID] = s
	}
	return r
}

func (r *fakeServiceRepo) Create(_ context.Context, s *domain.Service) (primitive.ObjectID, error) {
	s.ID = primitive.NewObjectID()
	r.services[s.ID] = *s
	return s.ID, nil
}

func (r *fakeServiceRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Service, error) {
	s, ok := r.services[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (r *fakeServiceRepo) GetByName(_ context.Context, name string) (*domain.Service, error) {
	for _, s := range r.services {
		if s.Name == name {
			return &s, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeServiceRepo) List(context.Context) ([]domain.Service, error) {
	out := make([]domain.Service, 0, len(r.services))
	for _, s := range r.services {
		out = append(out, s)
	}
	return out, nil
}

func (r *fakeServiceRepo) Update(_ context.Context, s *domain.Service) error {
	r.services[s.ID] = *s
	return nil
}

func (r *fakeServiceRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	delete(r.services, id)
	return nil
}

type fakeOffDayRepo struct {
	offDays map[primitive.ObjectID]domain.OffDay
}

func newFakeOffDayRepo() *fakeOffDayRepo {
	return &fakeOffDayRepo{offDays: make(map[primitive.ObjectID]domain.OffDay)}
}

func (r *fakeOffDayRepo) Create(_ context.Context, o *domain.OffDay) (primitive.ObjectID, error) {
	for _, existing := range r.offDays {
		if existing.TrainerID == o.TrainerID && existing.Date == o.Date {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	o.ID = primitive.NewObjectID()
	r.offDays[o.ID] = *o
	return o.ID, nil
}

func (r *fakeOffDayRepo) Get(_ context.Context, trainerID primitive.ObjectID, date string) (*domain.OffDay, error) {
	for _, o := range r.offDays {
		if o.TrainerID == trainerID && o.Date == date {
			return &o, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeOffDayRepo) ListForTrainer(_ context.Context, trainerID primitive.ObjectID) ([]domain.OffDay, error) {
	var out []domain.OffDay
	for _, o := range r.offDays {
		if o.TrainerID == trainerID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *fakeOffDayRepo) ListBetween(_ context.Context, from, to string) ([]domain.OffDay, error) {
	var out []domain.OffDay
	for _, o := range r.offDays {
		if o.Date >= from && o.Date < to {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *fakeOffDayRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := r.offDays[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.offDays, id)
	return nil
}

type fakeActivityRepo struct {
	mu      sync.Mutex
	entries []domain.ActivityLogEntry
}

func (r *fakeActivityRepo) Append(_ context.Context, e *domain.ActivityLogEntry) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = primitive.NewObjectID()
	r.entries = append(r.entries, *e)
	return e.ID, nil
}

func (r *fakeActivityRepo) List(_ context.Context, filter repository.ActivityFilter, limit int64) ([]domain.ActivityLogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	newest := make([]domain.ActivityLogEntry, 0, len(r.entries))
	for i := len(r.entries) - 1; i >= 0; i-- {
		newest = append(newest, r.entries[i])
	}
	out := make([]domain.ActivityLogEntry, 0, len(newest))
	for _, e := range newest {
		if matchesActivity(&e, filter) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeActivityRepo) actions() []domain.ActivityAction {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.ActivityAction, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Action
	}
	return out
}

type fakeUserRepo struct {
	users map[primitive.ObjectID]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, u *domain.User) (primitive.ObjectID, error) {
	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	u.ID = primitive.NewObjectID()
	r.users[u.ID] = *u
	return u.ID, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

type fakeExportRepo struct {
	exports []domain.CalendarExport
}

func (r *fakeExportRepo) Create(_ context.Context, e *domain.CalendarExport) (primitive.ObjectID, error) {
	e.ID = primitive.NewObjectID()
	r.exports = append(r.exports, *e)
	return e.ID, nil
}

func (r *fakeExportRepo) GetLatestForClient(_ context.Context, clientID primitive.ObjectID) (*domain.CalendarExport, error) {
	for i := len(r.exports) - 1; i >= 0; i-- {
		if r.exports[i].ClientID == clientID {
			e := r.exports[i]
			return &e, nil
		}
	}
	return nil, repository.ErrNotFound
}

type fakeStorage struct {
	objects map[string][]byte
	deleted []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (f *fakeStorage) PutObject(_ context.Context, key, _ string, body io.Reader, _ int64) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return err
	}
	f.objects[key] = buf.Bytes()
	return nil
}

func (f *fakeStorage) GeneratePresignedDownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://bucket.example/" + key + "?signed", nil
}

func (f *fakeStorage) DeleteObject(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	delete(f.objects, key)
	return nil
}
