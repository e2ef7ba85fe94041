package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sal22/qanda-api/internal/core/domain"
	"github.com/sal22/qanda-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Users and roles
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	users  map[string]*domain.User
	seq    int
	updErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// clash mirrors the unique indexes on email, username and phone.
func (r *stubUserRepo) clash(u *domain.User) bool {
	for _, other := range r.users {
		if other.ID == u.ID {
			continue
		}
		if other.Email == u.Email || other.Username == u.Username || (u.Phone != "" && other.Phone == u.Phone) {
			return true
		}
	}
	return false
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	if r.clash(u) {
		return nil, domain.ErrDuplicate
	}
	c := cloneUser(u)
	if c.ID == "" {
		r.seq++
		c.ID = fmt.Sprintf("u%d", r.seq)
	}
	r.users[c.ID] = c
	return cloneUser(c), nil
}

func (r *stubUserRepo) Update(_ context.Context, u *domain.User) error {
	if r.updErr != nil {
		return r.updErr
	}
	if _, ok := r.users[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	if r.clash(u) {
		return domain.ErrDuplicate
	}
	r.users[u.ID] = cloneUser(u)
	return nil
}

func (r *stubUserRepo) find(match func(*domain.User) bool) (*domain.User, error) {
	for _, u := range r.users {
		if match(u) {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.ID == id })
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Username == username })
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Email == email })
}

func (r *stubUserRepo) FindByPhone(_ context.Context, phone string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Phone == phone })
}

type stubRoleRepo struct {
	roles map[string]*domain.Role
}

func newStubRoleRepo() *stubRoleRepo {
	return &stubRoleRepo{roles: map[string]*domain.Role{
		domain.RoleGeneral:    {ID: "r1", Name: domain.RoleGeneral},
		domain.RoleSuperAdmin: {ID: "r2", Name: domain.RoleSuperAdmin, Permissions: domain.AllPermissions},
	}}
}

func (r *stubRoleRepo) FindByName(_ context.Context, name string) (*domain.Role, error) {
	role, ok := r.roles[name]
	if !ok {
		return nil, domain.ErrRoleNotFound
	}
	return role, nil
}

func (r *stubRoleRepo) UpsertPermission(context.Context, domain.Permission) error { return nil }

func (r *stubRoleRepo) UpsertRole(_ context.Context, role *domain.Role) error {
	r.roles[role.Name] = role
	return nil
}

// ---------------------------------------------------------------------------
// Content
// ---------------------------------------------------------------------------

type stubQuestionRepo struct {
	items map[string]*domain.Question
	seq   int
}

func newStubQuestionRepo() *stubQuestionRepo {
	return &stubQuestionRepo{items: make(map[string]*domain.Question)}
}

func (r *stubQuestionRepo) add(q domain.Question) *domain.Question {
	r.items[q.ID] = &q
	return &q
}

func (r *stubQuestionRepo) Create(_ context.Context, q *domain.Question) error {
	r.seq++
	q.ID = fmt.Sprintf("q%d", r.seq)
	c := *q
	r.items[q.ID] = &c
	return nil
}

func (r *stubQuestionRepo) FindByID(_ context.Context, id string) (*domain.Question, error) {
	q, ok := r.items[id]
	if !ok {
		return nil, domain.ErrQuestionNotFound
	}
	c := *q
	return &c, nil
}

func (r *stubQuestionRepo) List(_ context.Context, f ports.QuestionFilter) ([]*domain.Question, int64, error) {
	var matched []*domain.Question
	for _, q := range r.items {
		if f.UserID != "" && q.UserID != f.UserID {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(q.Content), strings.ToLower(f.Search)) {
			continue
		}
		c := *q
		matched = append(matched, &c)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	page, meta := domain.Paginate(matched, f.Page.Page, f.Page.PerPage)
	return page, meta.Total, nil
}

func (r *stubQuestionRepo) UpdateFields(_ context.Context, id string, patch domain.QuestionPatch) (*domain.Question, error) {
	q, ok := r.items[id]
	if !ok {
		return nil, domain.ErrQuestionNotFound
	}
	if patch.Content != nil {
		q.Content = *patch.Content
	}
	if patch.AcceptedAnswer != nil {
		q.AcceptedAnswer = *patch.AcceptedAnswer
	}
	c := *q
	return &c, nil
}

func (r *stubQuestionRepo) Delete(_ context.Context, id string) error {
	delete(r.items, id)
	return nil
}

func (r *stubQuestionRepo) ClearAcceptedAnswer(_ context.Context, questionID, answerID string) error {
	if q, ok := r.items[questionID]; ok && q.AcceptedAnswer == answerID {
		q.AcceptedAnswer = ""
	}
	return nil
}

func (r *stubQuestionRepo) CountByUser(_ context.Context, userID string) (int64, error) {
	var n int64
	for _, q := range r.items {
		if q.UserID == userID {
			n++
		}
	}
	return n, nil
}

type stubAnswerRepo struct {
	items map[string]*domain.Answer
	seq   int
}

func newStubAnswerRepo() *stubAnswerRepo {
	return &stubAnswerRepo{items: make(map[string]*domain.Answer)}
}

func (r *stubAnswerRepo) add(a domain.Answer) *domain.Answer {
	r.items[a.ID] = &a
	return &a
}

func (r *stubAnswerRepo) Create(_ context.Context, a *domain.Answer) error {
	r.seq++
	a.ID = fmt.Sprintf("a%d", r.seq)
	c := *a
	r.items[a.ID] = &c
	return nil
}

func (r *stubAnswerRepo) FindByID(_ context.Context, id string) (*domain.Answer, error) {
	a, ok := r.items[id]
	if !ok {
		return nil, domain.ErrAnswerNotFound
	}
	c := *a
	return &c, nil
}

func (r *stubAnswerRepo) ListByQuestion(_ context.Context, questionID string, page domain.PageRequest) ([]*domain.Answer, int64, error) {
	var matched []*domain.Answer
	for _, a := range r.items {
		if a.QuestionID == questionID {
			c := *a
			matched = append(matched, &c)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	items, meta := domain.Paginate(matched, page.Page, page.PerPage)
	return items, meta.Total, nil
}

func (r *stubAnswerRepo) Update(_ context.Context, a *domain.Answer) error {
	c := *a
	r.items[a.ID] = &c
	return nil
}

func (r *stubAnswerRepo) Delete(_ context.Context, id string) error {
	delete(r.items, id)
	return nil
}

func (r *stubAnswerRepo) ClaimForQuestion(_ context.Context, answerID, questionID string) error {
	a, ok := r.items[answerID]
	if !ok || a.QuestionID != questionID {
		return domain.ErrAnswerNotFound
	}
	return nil
}

func (r *stubAnswerRepo) DeleteByQuestion(_ context.Context, questionID string) ([]string, error) {
	var ids []string
	for id, a := range r.items {
		if a.QuestionID == questionID {
			ids = append(ids, id)
			delete(r.items, id)
		}
	}
	return ids, nil
}

func (r *stubAnswerRepo) CountByQuestion(_ context.Context, questionID string) (int64, error) {
	var n int64
	for _, a := range r.items {
		if a.QuestionID == questionID {
			n++
		}
	}
	return n, nil
}

func (r *stubAnswerRepo) CountByUser(_ context.Context, userID string) (int64, error) {
	var n int64
	for _, a := range r.items {
		if a.UserID == userID {
			n++
		}
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Votes
// ---------------------------------------------------------------------------

type voteKey struct{ item, voter string }

type stubVoteRepo struct {
	rows map[voteKey]bool
	// racesLeft makes the next Set calls fail as if another request won the insert.
	racesLeft int
	setCalls  int
}

func newStubVoteRepo() *stubVoteRepo {
	return &stubVoteRepo{rows: make(map[voteKey]bool)}
}

func (r *stubVoteRepo) Set(_ context.Context, itemID, voterID string, up bool) (domain.VoteChange, error) {
	r.setCalls++
	if r.racesLeft > 0 {
		r.racesLeft--
		return domain.VoteUnchanged, domain.ErrDuplicate
	}
	k := voteKey{itemID, voterID}
	prev, ok := r.rows[k]
	r.rows[k] = up
	switch {
	case !ok:
		return domain.VoteCreated, nil
	case prev != up:
		return domain.VoteUpdated, nil
	default:
		return domain.VoteUnchanged, nil
	}
}

func (r *stubVoteRepo) Remove(_ context.Context, itemID, voterID string) (domain.VoteChange, error) {
	k := voteKey{itemID, voterID}
	if _, ok := r.rows[k]; !ok {
		return domain.VoteUnchanged, nil
	}
	delete(r.rows, k)
	return domain.VoteRemoved, nil
}

func (r *stubVoteRepo) Get(_ context.Context, itemID, voterID string) (*bool, error) {
	v, ok := r.rows[voteKey{itemID, voterID}]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (r *stubVoteRepo) Count(_ context.Context, itemID string, up bool) (int64, error) {
	var n int64
	for k, v := range r.rows {
		if k.item == itemID && v == up {
			n++
		}
	}
	return n, nil
}

func (r *stubVoteRepo) DeleteByItems(_ context.Context, itemIDs ...string) error {
	for _, id := range itemIDs {
		for k := range r.rows {
			if k.item == id {
				delete(r.rows, k)
			}
		}
	}
	return nil
}

func (r *stubVoteRepo) rowsFor(itemID string) int {
	n := 0
	for k := range r.rows {
		if k.item == itemID {
			n++
		}
	}
	return n
}

type stubLedgers struct {
	questions *stubVoteRepo
	answers   *stubVoteRepo
}

func newStubLedgers() *stubLedgers {
	return &stubLedgers{questions: newStubVoteRepo(), answers: newStubVoteRepo()}
}

func (l *stubLedgers) Ledger(kind domain.ItemKind) ports.VoteRepository {
	if kind == domain.KindAnswer {
		return l.answers
	}
	return l.questions
}

// ---------------------------------------------------------------------------
// Notifications
// ---------------------------------------------------------------------------

type stubNotificationRepo struct {
	items     map[string]*domain.Notification
	seq       int
	createErr error
	markCalls int
}

func newStubNotificationRepo() *stubNotificationRepo {
	return &stubNotificationRepo{items: make(map[string]*domain.Notification)}
}

func (r *stubNotificationRepo) Create(_ context.Context, n *domain.Notification) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.seq++
	n.ID = fmt.Sprintf("n%d", r.seq)
	c := *n
	r.items[n.ID] = &c
	return nil
}

func (r *stubNotificationRepo) FindByID(_ context.Context, id string) (*domain.Notification, error) {
	n, ok := r.items[id]
	if !ok {
		return nil, domain.ErrNotificationNotFound
	}
	c := *n
	return &c, nil
}

func (r *stubNotificationRepo) ListByUser(_ context.Context, userID string, page domain.PageRequest) ([]*domain.Notification, int64, error) {
	var matched []*domain.Notification
	for _, n := range r.items {
		if n.UserID == userID {
			c := *n
			matched = append(matched, &c)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	items, meta := domain.Paginate(matched, page.Page, page.PerPage)
	return items, meta.Total, nil
}

func (r *stubNotificationRepo) CountUnread(_ context.Context, userID string) (int64, error) {
	var n int64
	for _, item := range r.items {
		if item.UserID == userID && !item.IsRead {
			n++
		}
	}
	return n, nil
}

func (r *stubNotificationRepo) MarkRead(_ context.Context, id string) error {
	r.markCalls++
	n, ok := r.items[id]
	if !ok {
		return domain.ErrNotificationNotFound
	}
	n.IsRead = true
	return nil
}

func (r *stubNotificationRepo) forUser(userID string) []*domain.Notification {
	var out []*domain.Notification
	for _, n := range r.items {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

// recordingNotifier captures Notify calls for services that only emit them.
type recordingNotifier struct {
	calls []notifyCall
}

type notifyCall struct {
	owner, content, url, actor string
}

func (n *recordingNotifier) Notify(ctx context.Context, ownerID, content, url string) {
	n.calls = append(n.calls, notifyCall{owner: ownerID, content: content, url: url, actor: actorFrom(ctx)})
}

// ---------------------------------------------------------------------------
// Collaborators
// ---------------------------------------------------------------------------

// stubTransactor runs fn directly; failErr simulates an aborted commit.
type stubTransactor struct {
	calls   int
	failErr error
}

func (t *stubTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	if err := fn(ctx); err != nil {
		return err
	}
	return t.failErr
}

type stubRevocations struct {
	revoked map[string]time.Duration
	err     error
}

func newStubRevocations() *stubRevocations {
	return &stubRevocations{revoked: make(map[string]time.Duration)}
}

func (s *stubRevocations) Revoke(_ context.Context, id string, ttl time.Duration) error {
	if s.err != nil {
		return s.err
	}
	s.revoked[id] = ttl
	return nil
}

func (s *stubRevocations) IsRevoked(_ context.Context, id string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	_, ok := s.revoked[id]
	return ok, nil
}

type stubBlobStore struct {
	objects map[string][]byte
	types   map[string]string
	putErr  error
}

func newStubBlobStore() *stubBlobStore {
	return &stubBlobStore{objects: make(map[string][]byte), types: make(map[string]string)}
}

func (s *stubBlobStore) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) error {
	if s.putErr != nil {
		return s.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.objects[key] = data
	s.types[key] = contentType
	return nil
}

func (s *stubBlobStore) Get(_ context.Context, key string) (io.ReadCloser, string, error) {
	data, ok := s.objects[key]
	if !ok {
		return nil, "", domain.ErrFileNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), s.types[key], nil
}

func (s *stubBlobStore) Exists(_ context.Context, key string) (bool, error) {
	_, ok := s.objects[key]
	return ok, nil
}

type stubMailSender struct {
	sent []ports.Mail
	err  error
}

func (s *stubMailSender) Send(_ context.Context, m ports.Mail) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, m)
	return nil
}

type stubMailQueue struct {
	mu     sync.Mutex
	queued []ports.Mail
}

func (q *stubMailQueue) Enqueue(m ports.Mail) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.queued = append(q.queued, m)
}

// paragraphRenderer marks rendered content so tests can tell it went through the renderer.
type paragraphRenderer struct{}

func (paragraphRenderer) Render(content string) string {
	if strings.Contains(content, "<script>") {
		return ""
	}
	return "<p>" + content + "</p>"
}
