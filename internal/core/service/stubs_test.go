package service

import (
	"context"
	"sort"
	"time"

	"github.com/tempmailhq/tempmail-api/internal/core/domain"
	"github.com/tempmailhq/tempmail-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs shared across the service tests. The repositories mirror the real
// query semantics (feed filter, keyset predicate, sort order) so the
// services are exercised against behaviour, not canned answers.
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	byID       map[string][]string // userID → roles
	byUsername map[string]*domain.User
	rolesErr   error
	createErr  error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		byID:       make(map[string][]string),
		byUsername: make(map[string]*domain.User),
	}
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	if _, ok := r.byUsername[user.Username]; ok {
		return nil, domain.ErrUserExists
	}
	u := *user
	u.ID = "user_" + user.Username
	r.byUsername[user.Username] = &u
	r.byID[u.ID] = u.Roles
	return &u, nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	u, ok := r.byUsername[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (r *stubUserRepo) RoleNames(_ context.Context, userID string) ([]string, error) {
	if r.rolesErr != nil {
		return nil, r.rolesErr
	}
	return r.byID[userID], nil
}

type stubConfigStore struct {
	values map[string]string
	getErr error
	putErr error
}

func newStubConfigStore() *stubConfigStore {
	return &stubConfigStore{values: make(map[string]string)}
}

func (s *stubConfigStore) Get(_ context.Context, key string) (string, error) {
	if s.getErr != nil {
		return "", s.getErr
	}
	return s.values[key], nil
}

func (s *stubConfigStore) Put(_ context.Context, key, value string) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.values[key] = value
	return nil
}

type stubEmailRepo struct {
	byID      map[string]*domain.Email
	createErr error
	findErr   error
	deleted   []string
}

func newStubEmailRepo() *stubEmailRepo {
	return &stubEmailRepo{byID: make(map[string]*domain.Email)}
}

func (r *stubEmailRepo) Create(_ context.Context, e *domain.Email) error {
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.byID {
		if existing.Address == e.Address {
			return domain.ErrAddressTaken
		}
	}
	cp := *e
	r.byID[e.ID] = &cp
	return nil
}

func (r *stubEmailRepo) FindByID(_ context.Context, id string) (*domain.Email, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	e, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrEmailNotFound
	}
	return e, nil
}

func (r *stubEmailRepo) FindByAddress(_ context.Context, address string) (*domain.Email, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, e := range r.byID {
		if e.Address == address {
			return e, nil
		}
	}
	return nil, domain.ErrEmailNotFound
}

func (r *stubEmailRepo) CountActive(_ context.Context, userID string, now time.Time) (int64, error) {
	var n int64
	for _, e := range r.byID {
		if e.UserID == userID && e.ExpiresAt.After(now) {
			n++
		}
	}
	return n, nil
}

func (r *stubEmailRepo) Delete(_ context.Context, id string) error {
	delete(r.byID, id)
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *stubEmailRepo) FindExpiredIDs(_ context.Context, now time.Time, limit int) ([]string, error) {
	var ids []string
	for id, e := range r.byID {
		if e.ExpiresAt.Before(now) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func (r *stubEmailRepo) DeleteByIDs(_ context.Context, ids []string) (int64, error) {
	var n int64
	for _, id := range ids {
		if _, ok := r.byID[id]; ok {
			delete(r.byID, id)
			r.deleted = append(r.deleted, id)
			n++
		}
	}
	return n, nil
}

type stubMessageRepo struct {
	rows      []*domain.Message
	insertErr error
	countErr  error
	findErr   error
	purged    [][]string
}

func newStubMessageRepo() *stubMessageRepo {
	return &stubMessageRepo{}
}

func (r *stubMessageRepo) Insert(_ context.Context, m *domain.Message) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	cp := *m
	r.rows = append(r.rows, &cp)
	return nil
}

func (r *stubMessageRepo) CountFeed(_ context.Context, emailID string, feed domain.Direction) (int64, error) {
	if r.countErr != nil {
		return 0, r.countErr
	}
	var n int64
	for _, m := range r.rows {
		if m.EmailID == emailID && matchesFeed(m, feed) {
			n++
		}
	}
	return n, nil
}

// FindFeedPage reimplements the store's ordering and keyset predicate:
// (orderTime DESC, id DESC), rows strictly below the cursor key.
func (r *stubMessageRepo) FindFeedPage(_ context.Context, q ports.MessageFeedQuery) ([]*domain.Message, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	var matched []*domain.Message
	for _, m := range r.rows {
		if m.EmailID != q.EmailID || !matchesFeed(m, q.Feed) {
			continue
		}
		if q.After != nil {
			ts := m.OrderTime(q.Feed).UnixMilli()
			if ts > q.After.Timestamp {
				continue
			}
			if ts == q.After.Timestamp && m.ID >= q.After.ID {
				continue
			}
		}
		matched = append(matched, m)
	}
	sort.Slice(matched, func(i, j int) bool {
		ti := matched[i].OrderTime(q.Feed).UnixMilli()
		tj := matched[j].OrderTime(q.Feed).UnixMilli()
		if ti != tj {
			return ti > tj
		}
		return matched[i].ID > matched[j].ID
	})
	if len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	return matched, nil
}

func (r *stubMessageRepo) CountSentSince(_ context.Context, userID string, since time.Time) (int64, error) {
	if r.countErr != nil {
		return 0, r.countErr
	}
	var n int64
	for _, m := range r.rows {
		if m.UserID == userID && m.Direction == domain.DirectionSent &&
			m.SentAt != nil && !m.SentAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *stubMessageRepo) DeleteByEmailIDs(_ context.Context, emailIDs []string) error {
	r.purged = append(r.purged, emailIDs)
	drop := make(map[string]bool, len(emailIDs))
	for _, id := range emailIDs {
		drop[id] = true
	}
	kept := r.rows[:0]
	for _, m := range r.rows {
		if !drop[m.EmailID] {
			kept = append(kept, m)
		}
	}
	r.rows = kept
	return nil
}

func matchesFeed(m *domain.Message, feed domain.Direction) bool {
	if feed == domain.DirectionSent {
		return m.Direction == domain.DirectionSent
	}
	return m.Direction != domain.DirectionSent
}

type stubGate struct {
	full    domain.SendPermission
	relaxed domain.SendPermission

	fullCalls    int
	relaxedCalls int
}

func (g *stubGate) CheckSend(_ context.Context, _ string) domain.SendPermission {
	g.fullCalls++
	return g.full
}

func (g *stubGate) CheckSendHistory(_ context.Context, _ string) domain.SendPermission {
	g.relaxedCalls++
	return g.relaxed
}

type stubRelay struct {
	err  error
	sent []string // "from->to" pairs
}

func (r *stubRelay) Send(_ context.Context, from, to, _, _ string) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, from+"->"+to)
	return nil
}
