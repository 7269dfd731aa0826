// Package boardsync keeps a local copy of one board's tasks in step with the
// task store. Moves, edits and deletes are applied locally at once and
// confirmed in the background; a rejected confirmation is rolled back and
// reported through a single error message.
package boardsync

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"planboard/internal/model"
)

// TempPrefix marks identifiers of drafts the store has not assigned yet.
const TempPrefix = "temp-"

// ErrSuperseded settles a draft's intent when the draft was cancelled or
// deleted before its Create returned.
var ErrSuperseded = errors.New("draft superseded")

// TaskStore is the remote side of the engine.
type TaskStore interface {
	CreateTask(ctx context.Context, task model.Task) (model.Task, error)
	UpdateTask(ctx context.Context, id string, patch model.TaskPatch) error
	DeleteTask(ctx context.Context, id string) error
}

// State is the confirmation state of one task.
type State int

const (
	StateUnknown State = iota
	Temporary
	Persisted
	PersistedDirty
	Discarded
)

func (s State) String() string {
	switch s {
	case Temporary:
		return "temporary"
	case Persisted:
		return "persisted"
	case PersistedDirty:
		return "persisted-dirty"
	case Discarded:
		return "discarded"
	}
	return "unknown"
}

// pending is one unconfirmed change to a persisted task. A nil patch is a delete.
type pending struct {
	patch *model.TaskPatch
}

// tracked holds the last confirmed value of a task and the changes still in flight on top of it.
type tracked struct {
	base model.Task
	ops  []*pending
	// at is the task's position when it was last removed locally
	at int
}

// drop removes p from the changes in flight and reports whether it was there.
func (t *tracked) drop(p *pending) bool {
	for i, op := range t.ops {
		if op == p {
			t.ops = append(t.ops[:i], t.ops[i+1:]...)
			return true
		}
	}
	return false
}

type Engine struct {
	store   TaskStore
	boardID string
	owner   string
	logger  *log.Entry

	mu        sync.Mutex
	tasks     []model.Task
	errMsg    string
	tracked   map[string]*tracked
	drafts    map[string]uint64
	discarded map[string]struct{}
	gen       uint64
	tails     map[string]chan struct{}
	inflight  sync.WaitGroup
}

type Option func(*Engine)

func WithLogger(entry *log.Entry) Option {
	return func(e *Engine) { e.logger = entry }
}

// New returns an engine for the owner's board seeded with the tasks already loaded.
func New(store TaskStore, boardID, owner string, tasks []model.Task, opts ...Option) *Engine {
	e := &Engine{
		store:     store,
		boardID:   boardID,
		owner:     owner,
		logger:    log.WithField("component", "boardsync"),
		tracked:   make(map[string]*tracked),
		drafts:    make(map[string]uint64),
		discarded: make(map[string]struct{}),
		tails:     make(map[string]chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.WithField("board_id", boardID)
	e.tasks = append([]model.Task(nil), tasks...)
	return e
}

// Tasks returns a copy of the local task sequence.
func (e *Engine) Tasks() []model.Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]model.Task(nil), e.tasks...)
}

// Column returns the local tasks with the given status, in board order.
func (e *Engine) Column(status model.Status) []model.Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []model.Task
	for _, t := range e.tasks {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out
}

// Err returns the message of the most recent failure, or "" when the last intent went through.
func (e *Engine) Err() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.errMsg
}

// Reset replaces the local state with a fresh listing. Confirmations still in
// flight only report their failures afterwards; drafts are abandoned.
func (e *Engine) Reset(tasks []model.Task) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tasks = append([]model.Task(nil), tasks...)
	e.tracked = make(map[string]*tracked)
	e.drafts = make(map[string]uint64)
	e.discarded = make(map[string]struct{})
	e.errMsg = ""
}

// Settle waits for every dispatched confirmation to finish.
func (e *Engine) Settle() {
	e.inflight.Wait()
}

// State reports where the task with the given id stands.
func (e *Engine) State(id string) State {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.drafts[id]; ok {
		return Temporary
	}
	if _, ok := e.discarded[id]; ok {
		return Discarded
	}
	if t, ok := e.tracked[id]; ok && len(t.ops) > 0 {
		return PersistedDirty
	}
	if e.index(id) < 0 {
		return StateUnknown
	}
	if model.IsValidID(id) {
		return Persisted
	}
	return Temporary
}

// CreateTask stores a new task with the default title and appends it once the store has assigned its id.
func (e *Engine) CreateTask(ctx context.Context) (model.Task, error) {
	e.mu.Lock()
	e.errMsg = ""
	e.mu.Unlock()

	created, err := e.store.CreateTask(ctx, model.NewTask(e.boardID, e.owner))

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.errMsg = model.MsgCreateFailed
		e.logger.WithError(err).Warn("create task")
		return model.Task{}, err
	}
	e.tasks = append(e.tasks, created)
	return created, nil
}

// AddTemporaryTask shows a draft at once and creates it in the background.
// The draft is replaced by the stored task on success and dropped on failure.
func (e *Engine) AddTemporaryTask(ctx context.Context, title, description string) (string, *Intent) {
	if title == "" {
		title = model.NewTaskTitle
	}
	draft := model.Task{
		Title:          title,
		Description:    description,
		Status:         model.StatusTodo,
		BoardID:        e.boardID,
		AuthorUsername: e.owner,
	}
	id := TempPrefix + uuid.NewString()

	e.mu.Lock()
	e.errMsg = ""
	e.gen++
	gen := e.gen
	e.drafts[id] = gen
	placeholder := draft
	placeholder.ID = id
	e.tasks = append(e.tasks, placeholder)
	e.inflight.Add(1)
	e.mu.Unlock()

	intent := newIntent()
	go func() {
		defer e.inflight.Done()
		created, err := e.store.CreateTask(context.WithoutCancel(ctx), draft)
		intent.settle(e.confirmDraft(id, gen, created, err))
	}()
	return id, intent
}

func (e *Engine) confirmDraft(id string, gen uint64, created model.Task, err error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if cur, ok := e.drafts[id]; !ok || cur != gen {
		entry := e.logger.WithField("draft_id", id)
		if err == nil {
			entry.WithField("task_id", created.ID).Info("create confirmed for a superseded draft, ignoring")
		}
		return ErrSuperseded
	}
	delete(e.drafts, id)

	idx := e.index(id)
	if err != nil {
		if idx >= 0 {
			e.removeAt(idx)
		}
		e.discarded[id] = struct{}{}
		e.errMsg = model.MsgCreateFailed
		e.logger.WithError(err).Warn("create draft")
		return err
	}
	if idx >= 0 {
		e.tasks[idx] = created
	} else {
		e.tasks = append(e.tasks, created)
	}
	return nil
}

// CancelTemporaryTask drops a draft. A Create already sent still runs, its result is ignored.
func (e *Engine) CancelTemporaryTask(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.discardLocal(id)
}

func (e *Engine) discardLocal(id string) bool {
	_, draft := e.drafts[id]
	delete(e.drafts, id)
	idx := e.index(id)
	if idx >= 0 {
		e.removeAt(idx)
	}
	if draft || idx >= 0 {
		e.discarded[id] = struct{}{}
		return true
	}
	return false
}

// MoveTask puts the task into another column. A malformed id changes nothing.
func (e *Engine) MoveTask(ctx context.Context, id string, status model.Status) *Intent {
	if !model.IsValidID(id) {
		return settledIntent(model.ErrInvalidID)
	}
	if !status.Valid() {
		return settledIntent(model.ErrInvalidStatus)
	}
	return e.patch(ctx, id, model.StatusPatch(status), model.MsgMoveFailed)
}

// EditTask changes title and description. A malformed id changes nothing.
func (e *Engine) EditTask(ctx context.Context, id, title, description string) *Intent {
	if !model.IsValidID(id) {
		return settledIntent(model.ErrInvalidID)
	}
	patch := model.ContentPatch(title, description)
	if err := patch.Validate(); err != nil {
		return settledIntent(err)
	}
	return e.patch(ctx, id, patch, model.MsgEditFailed)
}

func (e *Engine) patch(ctx context.Context, id string, patch model.TaskPatch, failure string) *Intent {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.errMsg = ""

	var op *pending
	if idx := e.index(id); idx >= 0 {
		op = &pending{patch: &patch}
		t := e.track(id, idx)
		t.ops = append(t.ops, op)
		patch.Apply(&e.tasks[idx])
	} else if t, ok := e.tracked[id]; ok {
		// hidden by a pending delete; applied if that delete is rejected
		op = &pending{patch: &patch}
		t.ops = append(t.ops, op)
	}
	return e.dispatch(ctx, id, op, failure, func(ctx context.Context) error {
		return e.store.UpdateTask(ctx, id, patch)
	})
}

// DeleteTask removes the task at once. Drafts and other unsaved tasks are
// dropped for good without calling the store.
func (e *Engine) DeleteTask(ctx context.Context, id string) *Intent {
	if !model.IsValidID(id) {
		e.mu.Lock()
		e.discardLocal(id)
		e.mu.Unlock()
		return settledIntent(nil)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.errMsg = ""

	var op *pending
	if idx := e.index(id); idx >= 0 {
		op = &pending{}
		t := e.track(id, idx)
		t.ops = append(t.ops, op)
		t.at = idx
		e.removeAt(idx)
	} else if t, ok := e.tracked[id]; ok {
		op = &pending{}
		t.ops = append(t.ops, op)
	}
	return e.dispatch(ctx, id, op, model.MsgDeleteFailed, func(ctx context.Context) error {
		return e.store.DeleteTask(ctx, id)
	})
}

// dispatch runs call after every earlier confirmation for the same task has finished.
// Must be called with e.mu held.
func (e *Engine) dispatch(ctx context.Context, id string, op *pending, failure string, call func(context.Context) error) *Intent {
	intent := newIntent()
	prev := e.tails[id]
	done := make(chan struct{})
	e.tails[id] = done
	e.inflight.Add(1)

	go func() {
		defer e.inflight.Done()
		if prev != nil {
			<-prev
		}
		err := call(context.WithoutCancel(ctx))
		e.confirm(id, op, err, failure)

		e.mu.Lock()
		if e.tails[id] == done {
			delete(e.tails, id)
		}
		e.mu.Unlock()
		close(done)
		intent.settle(err)
	}()
	return intent
}

// confirm folds a store answer into the local state. A success becomes part of
// the confirmed value; a failure is dropped and the task is rebuilt from the
// confirmed value plus the changes still in flight.
func (e *Engine) confirm(id string, op *pending, err error, failure string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err != nil {
		e.errMsg = failure
		e.logger.WithError(err).WithField("task_id", id).Warn("change rejected, rolling back")
	}

	t, ok := e.tracked[id]
	if !ok || op == nil || !t.drop(op) {
		return
	}

	if err == nil && op.patch == nil {
		delete(e.tracked, id)
		e.discarded[id] = struct{}{}
		if idx := e.index(id); idx >= 0 {
			e.removeAt(idx)
		}
		return
	}
	if err == nil {
		op.patch.Apply(&t.base)
	}
	e.rebuild(id, t)
	if len(t.ops) == 0 {
		delete(e.tracked, id)
	}
}

func (e *Engine) rebuild(id string, t *tracked) {
	view := t.base
	removed := false
	for _, op := range t.ops {
		if op.patch == nil {
			removed = true
			continue
		}
		op.patch.Apply(&view)
	}

	idx := e.index(id)
	switch {
	case removed:
		if idx >= 0 {
			e.removeAt(idx)
		}
	case idx >= 0:
		e.tasks[idx] = view
	default:
		at := min(t.at, len(e.tasks))
		e.tasks = append(e.tasks, model.Task{})
		copy(e.tasks[at+1:], e.tasks[at:])
		e.tasks[at] = view
	}
}

func (e *Engine) track(id string, idx int) *tracked {
	t, ok := e.tracked[id]
	if !ok {
		t = &tracked{base: e.tasks[idx]}
		e.tracked[id] = t
	}
	return t
}

func (e *Engine) index(id string) int {
	for i, t := range e.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (e *Engine) removeAt(idx int) {
	e.tasks = append(e.tasks[:idx], e.tasks[idx+1:]...)
}
