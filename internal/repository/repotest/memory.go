// Package repotest ofrece implementaciones en memoria de los repositorios
// para tests de service y http.
package repotest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"watch-catalog/internal/domain"
	"watch-catalog/internal/repository"
)

var (
	_ repository.MemberRepository = (*MemberStore)(nil)
	_ repository.BrandRepository  = (*BrandStore)(nil)
	_ repository.WatchRepository  = (*WatchStore)(nil)
)

// MemberStore implementa repository.MemberRepository en memoria.
type MemberStore struct {
	mu      sync.Mutex
	seq     int
	order   []string
	members map[string]domain.Member
}

func NewMemberStore() *MemberStore {
	return &MemberStore{members: make(map[string]domain.Member)}
}

func (f *MemberStore) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.order)
}

func (f *MemberStore) Create(_ context.Context, m domain.Member) (domain.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m.ID == "" {
		f.seq++
		m.ID = fmt.Sprintf("m-%d", f.seq)
	}
	now := time.Now().UTC()
	m.CreatedAt, m.UpdatedAt = now, now
	if m.Authentication != nil {
		a := *m.Authentication
		m.Authentication = &a
	}
	f.members[m.ID] = m
	f.order = append(f.order, m.ID)
	return m, nil
}

// Stored devuelve la fila completa, credenciales incluidas.
func (f *MemberStore) Stored(id string) (domain.Member, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.members[id]
	if ok && m.Authentication != nil {
		a := *m.Authentication
		m.Authentication = &a
	}
	return m, ok
}

func (f *MemberStore) find(match func(domain.Member) bool, withCredentials bool) (domain.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range f.order {
		m := f.members[id]
		if !match(m) {
			continue
		}
		if withCredentials {
			if m.Authentication != nil {
				a := *m.Authentication
				m.Authentication = &a
			}
		} else {
			m.Authentication = nil
			m.GoogleID = ""
		}
		return m, nil
	}
	return domain.Member{}, pgx.ErrNoRows
}

func (f *MemberStore) GetByID(_ context.Context, id string) (domain.Member, error) {
	return f.find(func(m domain.Member) bool { return m.ID == id }, false)
}

func (f *MemberStore) GetByIDWithCredentials(_ context.Context, id string) (domain.Member, error) {
	return f.find(func(m domain.Member) bool { return m.ID == id }, true)
}

func (f *MemberStore) GetByEmail(_ context.Context, email string) (domain.Member, error) {
	return f.find(func(m domain.Member) bool { return m.Email == email }, false)
}

func (f *MemberStore) GetByEmailWithCredentials(_ context.Context, email string) (domain.Member, error) {
	return f.find(func(m domain.Member) bool { return m.Email == email }, true)
}

func (f *MemberStore) GetByFederatedID(_ context.Context, googleID string) (domain.Member, error) {
	return f.find(func(m domain.Member) bool { return m.GoogleID != "" && m.GoogleID == googleID }, true)
}

func (f *MemberStore) GetBySessionToken(_ context.Context, token string) (domain.Member, error) {
	return f.find(func(m domain.Member) bool {
		return token != "" && m.Authentication != nil && m.Authentication.SessionToken == token
	}, false)
}

func (f *MemberStore) UpdateSessionToken(_ context.Context, id, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.members[id]
	if !ok {
		return pgx.ErrNoRows
	}
	a := domain.Authentication{}
	if m.Authentication != nil {
		a = *m.Authentication
	}
	a.SessionToken = token
	m.Authentication = &a
	f.members[id] = m
	return nil
}

func (f *MemberStore) UpdatePassword(_ context.Context, id, passwordHash, salt string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.members[id]
	if !ok {
		return pgx.ErrNoRows
	}
	a := domain.Authentication{}
	if m.Authentication != nil {
		a = *m.Authentication
	}
	a.Password, a.Salt = passwordHash, salt
	m.Authentication = &a
	f.members[id] = m
	return nil
}

func (f *MemberStore) UpdateProfile(_ context.Context, member domain.Member) (domain.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.members[member.ID]
	if !ok {
		return domain.Member{}, pgx.ErrNoRows
	}
	m.Membername, m.YOB, m.IsAdmin = member.Membername, member.YOB, member.IsAdmin
	m.UpdatedAt = time.Now().UTC()
	f.members[m.ID] = m
	m.Authentication, m.GoogleID = nil, ""
	return m, nil
}

func (f *MemberStore) Delete(_ context.Context, id string) (domain.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.members[id]
	if !ok {
		return domain.Member{}, pgx.ErrNoRows
	}
	delete(f.members, id)
	for i, oid := range f.order {
		if oid == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	m.Authentication, m.GoogleID = nil, ""
	return m, nil
}

func (f *MemberStore) List(_ context.Context, filter repository.MemberFilter) ([]domain.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.Member{}
	for _, id := range f.order {
		m := f.members[id]
		if filter.MembernameLike != "" && !strings.Contains(strings.ToLower(m.Membername), strings.ToLower(filter.MembernameLike)) {
			continue
		}
		if filter.EmailLike != "" && !strings.Contains(strings.ToLower(m.Email), strings.ToLower(filter.EmailLike)) {
			continue
		}
		if filter.YOB != nil && m.YOB != *filter.YOB {
			continue
		}
		if filter.ID != "" && m.ID != filter.ID {
			continue
		}
		m.Authentication, m.GoogleID = nil, ""
		out = append(out, m)
	}
	return out, nil
}

func (f *MemberStore) Count(ctx context.Context, filter repository.MemberFilter) (int64, error) {
	members, err := f.List(ctx, filter)
	return int64(len(members)), err
}

type BrandStore struct {
	mu     sync.Mutex
	seq    int
	brands map[string]domain.Brand
	order  []string
	lists  int
}

// ListCalls cuenta las lecturas completas de la tabla.
func (f *BrandStore) ListCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists
}

func NewBrandStore() *BrandStore {
	return &BrandStore{brands: make(map[string]domain.Brand)}
}

func (f *BrandStore) Create(_ context.Context, b domain.Brand) (domain.Brand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b.ID == "" {
		f.seq++
		b.ID = fmt.Sprintf("b-%d", f.seq)
	}
	f.brands[b.ID] = b
	f.order = append(f.order, b.ID)
	return b, nil
}

func (f *BrandStore) GetByID(_ context.Context, id string) (domain.Brand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.brands[id]
	if !ok {
		return domain.Brand{}, pgx.ErrNoRows
	}
	return b, nil
}

func (f *BrandStore) List(_ context.Context) ([]domain.Brand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	out := []domain.Brand{}
	for _, id := range f.order {
		out = append(out, f.brands[id])
	}
	return out, nil
}

func (f *BrandStore) Update(_ context.Context, b domain.Brand) (domain.Brand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.brands[b.ID]; !ok {
		return domain.Brand{}, pgx.ErrNoRows
	}
	f.brands[b.ID] = b
	return b, nil
}

func (f *BrandStore) Delete(_ context.Context, id string) (domain.Brand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.brands[id]
	if !ok {
		return domain.Brand{}, pgx.ErrNoRows
	}
	delete(f.brands, id)
	for i, oid := range f.order {
		if oid == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return b, nil
}

// WatchStore resuelve marca y autores contra los otros stores, como hace el JOIN.
type WatchStore struct {
	mu       sync.Mutex
	seq      int
	watches  map[string]domain.Watch
	order    []string
	brands   *BrandStore
	members  *MemberStore
	comments map[string][]domain.Comment
}

func NewWatchStore(brands *BrandStore, members *MemberStore) *WatchStore {
	return &WatchStore{
		watches:  make(map[string]domain.Watch),
		comments: make(map[string][]domain.Comment),
		brands:   brands,
		members:  members,
	}
}

func (f *WatchStore) hydrate(w domain.Watch) domain.Watch {
	if b, err := f.brands.GetByID(context.Background(), w.BrandID); err == nil {
		w.Brand = &b
	}
	w.Comments = []domain.Comment{}
	for _, c := range f.comments[w.ID] {
		if m, ok := f.members.Stored(c.AuthorID); ok {
			c.Author = domain.CommentAuthor{ID: m.ID, Membername: m.Membername, Email: m.Email}
		}
		w.Comments = append(w.Comments, c)
	}
	return w
}

func (f *WatchStore) Create(_ context.Context, w domain.Watch) (domain.Watch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if w.ID == "" {
		f.seq++
		w.ID = fmt.Sprintf("w-%d", f.seq)
	}
	f.watches[w.ID] = w
	f.order = append(f.order, w.ID)
	return f.hydrate(w), nil
}

func (f *WatchStore) GetByID(_ context.Context, id string) (domain.Watch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.watches[id]
	if !ok {
		return domain.Watch{}, pgx.ErrNoRows
	}
	return f.hydrate(w), nil
}

func (f *WatchStore) Update(_ context.Context, id string, p repository.WatchPatch) (domain.Watch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.watches[id]
	if !ok {
		return domain.Watch{}, pgx.ErrNoRows
	}
	if p.WatchName != nil {
		w.WatchName = *p.WatchName
	}
	if p.Image != nil {
		w.Image = *p.Image
	}
	if p.Price != nil {
		w.Price = *p.Price
	}
	if p.Automatic != nil {
		w.Automatic = *p.Automatic
	}
	if p.WatchDescription != nil {
		w.WatchDescription = *p.WatchDescription
	}
	if p.BrandID != nil {
		w.BrandID = *p.BrandID
	}
	f.watches[id] = w
	return f.hydrate(w), nil
}

func (f *WatchStore) Delete(_ context.Context, id string) (domain.Watch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.watches[id]
	if !ok {
		return domain.Watch{}, pgx.ErrNoRows
	}
	w = f.hydrate(w)
	delete(f.watches, id)
	delete(f.comments, id)
	for i, oid := range f.order {
		if oid == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return w, nil
}

func (f *WatchStore) List(_ context.Context, filter repository.WatchFilter) ([]domain.Watch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.Watch{}
	for _, id := range f.order {
		w := f.watches[id]
		if filter.WatchNameLike != "" && !strings.Contains(strings.ToLower(w.WatchName), strings.ToLower(filter.WatchNameLike)) {
			continue
		}
		if filter.WatchDescriptionLike != "" && !strings.Contains(strings.ToLower(w.WatchDescription), strings.ToLower(filter.WatchDescriptionLike)) {
			continue
		}
		if filter.BrandID != "" && w.BrandID != filter.BrandID {
			continue
		}
		out = append(out, f.hydrate(w))
	}
	return out, nil
}

func (f *WatchStore) Count(ctx context.Context, filter repository.WatchFilter) (int64, error) {
	watches, err := f.List(ctx, filter)
	return int64(len(watches)), err
}

func (f *WatchStore) AddComment(_ context.Context, c domain.Comment) (domain.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.comments[c.WatchID] {
		if existing.AuthorID == c.AuthorID {
			return domain.Comment{}, repository.ErrDuplicate
		}
	}
	f.seq++
	c.ID = fmt.Sprintf("c-%d", f.seq)
	f.comments[c.WatchID] = append(f.comments[c.WatchID], c)
	return c, nil
}

func (f *WatchStore) UpdateComment(_ context.Context, c domain.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for watchID, list := range f.comments {
		for i := range list {
			if list[i].ID == c.ID {
				list[i].Rating, list[i].Content = c.Rating, c.Content
				f.comments[watchID] = list
				return nil
			}
		}
	}
	return pgx.ErrNoRows
}

func (f *WatchStore) DeleteComment(_ context.Context, commentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for watchID, list := range f.comments {
		for i := range list {
			if list[i].ID == commentID {
				f.comments[watchID] = append(list[:i], list[i+1:]...)
				return nil
			}
		}
	}
	return pgx.ErrNoRows
}
