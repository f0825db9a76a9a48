package listview

import (
	"errors"
	"fmt"
	"maps"
	"net/url"
	"reflect"
	"sync"
	"time"

	"median/refcheck"
)

const (
	// DrawerTransition is how long a closing drawer keeps its content so the
	// slide-out animation never shows a blank panel.
	DrawerTransition = 300 * time.Millisecond
	// SaveCloseDelay is the pause between a successful save and closing the
	// drawer when Config.CloseOnSave is set.
	SaveCloseDelay = 300 * time.Millisecond
	// SearchDebounce is the quiet period before a typed query is applied.
	SearchDebounce = 150 * time.Millisecond
)

// Timer is a scheduled callback that can be stopped.
type Timer interface {
	Stop() bool
}

// Scheduler runs callbacks after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type clockScheduler struct{}

func (clockScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// NotificationKind classifies a transient notification.
type NotificationKind string

const (
	NotifySuccess NotificationKind = "success"
	NotifyError   NotificationKind = "error"
)

// Notification is a transient, user-facing message.
type Notification struct {
	Kind    NotificationKind
	Message string
}

// FieldErrors is implemented by save errors that map to form fields.
type FieldErrors interface {
	FieldErrors() map[string]string
}

// Config wires a ListView to its data source and page behavior.
type Config[T any] struct {
	Pipeline[T]

	// Items returns the current source collection.
	Items func() []T
	// Clone deep-copies an item. Required when T holds slices, maps or
	// pointers; nil means plain value copy.
	Clone func(T) T
	// Equal compares drafts. Nil uses reflect.DeepEqual.
	Equal func(a, b T) bool
	// Label names an item in notifications.
	Label func(T) string

	Validate func(T) map[string]string
	Create   func(T) (T, error)
	Update   func(T) (T, error)
	Delete   func(T) refcheck.Result

	// CloseOnSave closes the drawer SaveCloseDelay after a successful save.
	CloseOnSave bool

	// Navigate receives the page's query values whenever list state that
	// lives in the URL changes. It must replace the current history entry.
	Navigate  func(url.Values)
	Notify    func(Notification)
	Scheduler Scheduler
}

// ListView is the state machine behind a list page: search box, filter
// panel, sortable table and an edit/create/delete drawer.
//
// It is safe for concurrent use; timers fire on their own goroutines.
type ListView[T any] struct {
	cfg Config[T]

	mu          sync.Mutex
	query       string
	filters     FilterState
	sorts       SortState
	params      url.Values
	filtersOpen bool

	drawerOpen        bool
	creating          bool
	selected          *T
	edited            *T
	original          *T
	validationErrors  map[string]string
	showDeleteConfirm bool
	lastDelete        *refcheck.Result

	// generation changes on every selection so stale timers can tell.
	generation  uint64
	searchSeq   uint64
	searchTimer Timer

	listeners    map[int]func()
	nextListener int
}

// New creates a ListView.
func New[T any](cfg Config[T]) *ListView[T] {
	if cfg.Scheduler == nil {
		cfg.Scheduler = clockScheduler{}
	}
	if cfg.Clone == nil {
		cfg.Clone = func(item T) T { return item }
	}
	if cfg.Equal == nil {
		cfg.Equal = func(a, b T) bool { return reflect.DeepEqual(a, b) }
	}
	if cfg.Label == nil {
		cfg.Label = func(T) string { return "item" }
	}
	if cfg.Items == nil {
		cfg.Items = func() []T { return nil }
	}
	return &ListView[T]{
		cfg:              cfg,
		filters:          FilterState{},
		sorts:            SortState{},
		params:           url.Values{},
		validationErrors: map[string]string{},
		listeners:        map[int]func(){},
	}
}

// Subscribe registers a listener called after every state change and
// returns a function removing it.
func (v *ListView[T]) Subscribe(listener func()) func() {
	v.mu.Lock()
	defer v.mu.Unlock()

	id := v.nextListener
	v.nextListener++
	v.listeners[id] = listener

	return func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		delete(v.listeners, id)
	}
}

func (v *ListView[T]) emit() {
	v.mu.Lock()
	listeners := make([]func(), 0, len(v.listeners))
	for _, l := range v.listeners {
		listeners = append(listeners, l)
	}
	v.mu.Unlock()

	for _, l := range listeners {
		l()
	}
}

func (v *ListView[T]) notify(kind NotificationKind, message string) {
	if v.cfg.Notify != nil {
		v.cfg.Notify(Notification{Kind: kind, Message: message})
	}
}

// ---- list state ----

// Query returns the current search text.
func (v *ListView[T]) Query() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.query
}

// Filters returns a copy of the current filter state.
func (v *ListView[T]) Filters() FilterState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filters.Clone()
}

// Sorts returns a copy of the current sort state.
func (v *ListView[T]) Sorts() SortState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append(SortState{}, v.sorts...)
}

// FiltersOpen reports whether the filter panel is expanded.
func (v *ListView[T]) FiltersOpen() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filtersOpen
}

// ActiveFilterCount is the number of filter sections away from default.
func (v *ListView[T]) ActiveFilterCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return ActiveFilterCount(v.cfg.Filters, v.filters)
}

// Results derives the visible rows from the source items.
func (v *ListView[T]) Results() []Row[T] {
	v.mu.Lock()
	q := Query{Text: v.query, Filters: v.filters.Clone(), Sorts: append(SortState{}, v.sorts...)}
	v.mu.Unlock()

	return v.cfg.Pipeline.Run(v.cfg.Items(), q)
}

// SetQuery applies search text immediately, cancelling a pending debounce.
func (v *ListView[T]) SetQuery(query string) {
	v.mu.Lock()
	v.searchSeq++
	v.stopSearchTimerLocked()
	v.query = query
	params := v.syncParamsLocked()
	v.mu.Unlock()

	v.navigate(params)
	v.emit()
}

// SetQueryDebounced applies query once input has been quiet for
// SearchDebounce. Each call restarts the wait.
func (v *ListView[T]) SetQueryDebounced(query string) {
	v.mu.Lock()
	v.searchSeq++
	seq := v.searchSeq
	v.stopSearchTimerLocked()
	v.mu.Unlock()

	timer := v.cfg.Scheduler.AfterFunc(SearchDebounce, func() {
		v.applyDebounced(seq, query)
	})

	v.mu.Lock()
	if v.searchSeq == seq {
		v.searchTimer = timer
	} else {
		timer.Stop()
	}
	v.mu.Unlock()
}

func (v *ListView[T]) applyDebounced(seq uint64, query string) {
	v.mu.Lock()
	if v.searchSeq != seq {
		v.mu.Unlock()
		return
	}
	v.searchTimer = nil
	v.query = query
	params := v.syncParamsLocked()
	v.mu.Unlock()

	v.navigate(params)
	v.emit()
}

func (v *ListView[T]) stopSearchTimerLocked() {
	if v.searchTimer != nil {
		v.searchTimer.Stop()
		v.searchTimer = nil
	}
}

// SetFilter sets the value of one filter section.
func (v *ListView[T]) SetFilter(key string, value FilterValue) {
	v.mu.Lock()
	if value.IsDefault() {
		delete(v.filters, key)
	} else {
		v.filters[key] = FilterValue{Selected: append([]string(nil), value.Selected...), Enabled: value.Enabled}
	}
	params := v.syncParamsLocked()
	v.mu.Unlock()

	v.navigate(params)
	v.emit()
}

// ClearFilters resets every filter section to its default.
func (v *ListView[T]) ClearFilters() {
	v.mu.Lock()
	v.filters = FilterState{}
	params := v.syncParamsLocked()
	v.mu.Unlock()

	v.navigate(params)
	v.emit()
}

// ToggleFilters opens or closes the filter panel.
func (v *ListView[T]) ToggleFilters() {
	v.mu.Lock()
	v.filtersOpen = !v.filtersOpen
	v.mu.Unlock()
	v.emit()
}

// HandleSort applies a header click and records the new order in the URL.
func (v *ListView[T]) HandleSort(column string, shift bool) {
	v.mu.Lock()
	v.sorts = Click(column, v.sorts, shift)
	params := v.syncParamsLocked()
	v.mu.Unlock()

	v.navigate(params)
	v.emit()
}

// RestoreFromURL loads search, filter and sort state from query values, as
// on page load or back navigation. It does not navigate.
func (v *ListView[T]) RestoreFromURL(values url.Values) {
	q := v.cfg.Pipeline.ParseQuery(values)

	v.mu.Lock()
	v.query = q.Text
	v.filters = q.Filters
	v.sorts = q.Sorts
	v.params = cloneValues(values)
	v.mu.Unlock()

	v.emit()
}

// URL returns the query values describing the current list state.
func (v *ListView[T]) URL() url.Values {
	v.mu.Lock()
	defer v.mu.Unlock()
	return cloneValues(v.params)
}

func (v *ListView[T]) syncParamsLocked() url.Values {
	WriteQuery(v.params, Query{Text: v.query, Filters: v.filters, Sorts: v.sorts})
	return cloneValues(v.params)
}

func (v *ListView[T]) navigate(params url.Values) {
	if v.cfg.Navigate != nil {
		v.cfg.Navigate(params)
	}
}

func cloneValues(values url.Values) url.Values {
	out := make(url.Values, len(values))
	for k, vs := range values {
		out[k] = append([]string(nil), vs...)
	}
	return out
}

// ---- drawer state ----

// DrawerOpen reports whether the drawer is visible.
func (v *ListView[T]) DrawerOpen() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.drawerOpen
}

// IsCreating reports whether the drawer holds an unsaved new item.
func (v *ListView[T]) IsCreating() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.creating
}

// SelectedItem returns a copy of the saved baseline, if any.
func (v *ListView[T]) SelectedItem() (T, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.copyOf(v.selected)
}

// EditedItem returns a copy of the draft, if any.
func (v *ListView[T]) EditedItem() (T, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.copyOf(v.edited)
}

// OriginalItem returns a copy of the undo restore point, if any.
func (v *ListView[T]) OriginalItem() (T, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.copyOf(v.original)
}

func (v *ListView[T]) copyOf(p *T) (T, bool) {
	if p == nil {
		var zero T
		return zero, false
	}
	return v.cfg.Clone(*p), true
}

// ValidationErrors returns the current field errors.
func (v *ListView[T]) ValidationErrors() map[string]string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return maps.Clone(v.validationErrors)
}

// ShowDeleteConfirm reports whether the delete confirmation is showing.
func (v *ListView[T]) ShowDeleteConfirm() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.showDeleteConfirm
}

// LastDeleteResult returns the outcome of the most recent delete attempt.
func (v *ListView[T]) LastDeleteResult() (refcheck.Result, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.lastDelete == nil {
		return refcheck.Result{}, false
	}
	return *v.lastDelete, true
}

// HasChanges reports whether the draft differs from the saved baseline.
func (v *ListView[T]) HasChanges() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.edited == nil || v.selected == nil {
		return false
	}
	return !v.cfg.Equal(*v.edited, *v.selected)
}

// SelectItem opens the drawer on item. The baseline, draft and restore
// point are independent copies, so editing never touches the caller's value.
func (v *ListView[T]) SelectItem(item T) {
	v.mu.Lock()
	v.openLocked(item, false)
	v.mu.Unlock()
	v.emit()
}

// StartCreate opens the drawer on a blank item that is not yet stored.
func (v *ListView[T]) StartCreate(blank T) {
	v.mu.Lock()
	v.openLocked(blank, true)
	v.mu.Unlock()
	v.emit()
}

func (v *ListView[T]) openLocked(item T, creating bool) {
	v.generation++
	selected, edited, original := v.cfg.Clone(item), v.cfg.Clone(item), v.cfg.Clone(item)
	v.selected, v.edited, v.original = &selected, &edited, &original
	v.drawerOpen = true
	v.creating = creating
	v.validationErrors = map[string]string{}
	v.showDeleteConfirm = false
	v.lastDelete = nil
}

// Edit mutates the draft in place. Changes stay local until Save.
func (v *ListView[T]) Edit(fn func(draft *T)) {
	if v.edit(fn) {
		v.emit()
	}
}

func (v *ListView[T]) edit(fn func(draft *T)) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.edited == nil {
		return false
	}
	fn(v.edited)
	return true
}

// Undo restores the draft from the restore point. The store is untouched.
func (v *ListView[T]) Undo() {
	v.mu.Lock()
	if v.original == nil {
		v.mu.Unlock()
		return
	}
	restored := v.cfg.Clone(*v.original)
	v.edited = &restored
	v.validationErrors = map[string]string{}
	v.mu.Unlock()
	v.emit()
}

// Save validates the draft and writes it to the backing store. It reports
// whether the write happened; failures land in ValidationErrors or in an
// error notification.
func (v *ListView[T]) Save() bool {
	v.mu.Lock()
	if v.edited == nil {
		v.mu.Unlock()
		return false
	}
	draft := v.cfg.Clone(*v.edited)
	creating := v.creating
	generation := v.generation

	if v.cfg.Validate != nil {
		if errs := v.cfg.Validate(draft); len(errs) > 0 {
			v.validationErrors = maps.Clone(errs)
			v.mu.Unlock()
			v.emit()
			return false
		}
	}
	v.mu.Unlock()

	write := v.cfg.Update
	if creating {
		write = v.cfg.Create
	}
	if write == nil {
		v.notify(NotifyError, "saving is not supported here")
		return false
	}

	saved, err := write(draft)
	if err != nil {
		var fe FieldErrors
		if errors.As(err, &fe) && len(fe.FieldErrors()) > 0 {
			v.mu.Lock()
			if v.generation == generation {
				v.validationErrors = maps.Clone(fe.FieldErrors())
			}
			v.mu.Unlock()
		} else {
			v.notify(NotifyError, err.Error())
		}
		v.emit()
		return false
	}

	v.mu.Lock()
	current := v.generation == generation
	if current {
		selected, edited, original := v.cfg.Clone(saved), v.cfg.Clone(saved), v.cfg.Clone(saved)
		v.selected, v.edited, v.original = &selected, &edited, &original
		v.creating = false
		v.validationErrors = map[string]string{}
	}
	v.mu.Unlock()

	if current && v.cfg.CloseOnSave {
		v.cfg.Scheduler.AfterFunc(SaveCloseDelay, func() {
			v.closeIfCurrent(generation)
		})
	}

	v.notify(NotifySuccess, fmt.Sprintf("%q saved", v.cfg.Label(saved)))
	v.emit()
	return true
}

// RequestDelete shows the delete confirmation.
func (v *ListView[T]) RequestDelete() {
	v.mu.Lock()
	if v.selected == nil || v.creating {
		v.mu.Unlock()
		return
	}
	v.showDeleteConfirm = true
	v.mu.Unlock()
	v.emit()
}

// CancelDelete hides the delete confirmation.
func (v *ListView[T]) CancelDelete() {
	v.mu.Lock()
	v.showDeleteConfirm = false
	v.mu.Unlock()
	v.emit()
}

// ConfirmDelete deletes the selected item. It only acts after
// RequestDelete. A blocked deletion keeps the drawer open and surfaces the
// explanation as an error notification.
func (v *ListView[T]) ConfirmDelete() bool {
	v.mu.Lock()
	if !v.showDeleteConfirm || v.selected == nil || v.cfg.Delete == nil {
		v.mu.Unlock()
		return false
	}
	target := v.cfg.Clone(*v.selected)
	generation := v.generation
	v.mu.Unlock()

	result := v.cfg.Delete(target)

	v.mu.Lock()
	if v.generation == generation {
		v.showDeleteConfirm = false
		v.lastDelete = &result
	}
	v.mu.Unlock()

	if !result.Success {
		v.notify(NotifyError, result.Error)
		v.emit()
		return false
	}

	v.notify(NotifySuccess, fmt.Sprintf("%q deleted", v.cfg.Label(target)))
	v.closeIfCurrent(generation)
	return true
}

// Close hides the drawer at once and clears its content after
// DrawerTransition, unless another item was opened in the meantime.
// Unsaved changes are discarded.
func (v *ListView[T]) Close() {
	v.mu.Lock()
	generation := v.generation
	v.mu.Unlock()
	v.closeIfCurrent(generation)
}

func (v *ListView[T]) closeIfCurrent(generation uint64) {
	v.mu.Lock()
	if v.generation != generation || !v.drawerOpen {
		v.mu.Unlock()
		return
	}
	v.drawerOpen = false
	v.showDeleteConfirm = false
	v.mu.Unlock()

	v.cfg.Scheduler.AfterFunc(DrawerTransition, func() {
		v.clearIfCurrent(generation)
	})
	v.emit()
}

func (v *ListView[T]) clearIfCurrent(generation uint64) {
	v.mu.Lock()
	if v.generation != generation || v.drawerOpen {
		v.mu.Unlock()
		return
	}
	v.selected, v.edited, v.original = nil, nil, nil
	v.creating = false
	v.validationErrors = map[string]string{}
	v.mu.Unlock()
	v.emit()
}
