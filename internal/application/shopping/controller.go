package shopping

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/grocer/backend/internal/domain/shared"
	"github.com/grocer/backend/internal/domain/shopping"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrorType classifies controller failures for callers: failures while
// reading the store versus failures while writing a mutation.
type ErrorType string

const (
	ErrorTypeLoad  ErrorType = "load"
	ErrorTypeWrite ErrorType = "write"
)

// OpError is the last operation failure observed by the controller.
type OpError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
}

// CategoryGroup is one category of the board with its items split by status.
// Both slices are kept sorted by ascending position.
type CategoryGroup struct {
	Category  shopping.Category
	Pending   []shopping.Item
	Purchased []shopping.Item
}

// Projection is the controller's in-memory view of the active list. It is a
// read-through cache rebuilt from the store on load/refresh and patched
// optimistically on every mutation.
type Projection struct {
	List    *shopping.List
	Groups  []CategoryGroup
	Summary shopping.Summary
}

// Controller owns the board projection and applies every mutation
// optimistically: the projection is patched first, the store is written
// second, and on write failure the exact pre-mutation snapshot is restored.
//
// A single undo slot holds the most recently removed item; each removal
// overwrites it.
type Controller struct {
	mu     sync.Mutex
	store  shopping.Store
	items  *ItemService
	logger *zap.Logger
	parse  shopping.ParseOptions

	proj    Projection
	undo    *shopping.Item
	lastErr *OpError
}

// NewController creates a controller bound to a store and item service.
func NewController(store shopping.Store, items *ItemService, parse shopping.ParseOptions, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		store:  store,
		items:  items,
		logger: logger,
		parse:  parse,
	}
}

// Load builds the projection from the store. A failure sets a load error and
// leaves any previously loaded projection in place.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reload(ctx)
}

// Refresh rebuilds the projection from the store. Refreshing is idempotent:
// two consecutive refreshes against an unchanged store yield equal states.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reload(ctx)
}

// AddItemFromInput parses one line of user input and adds the resulting item
// to the active list. The item appears in the projection immediately; the
// store write happens after, and a full reload reconciles any placeholder
// category the optimistic insert created.
func (c *Controller) AddItemFromInput(ctx context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	parsed, err := shopping.ParseItemInput(text, c.parse)
	if err != nil {
		// Parse failures never touch the projection: the user keeps the
		// input and the board stays as it was.
		c.setWriteError(err)
		return err
	}
	if c.proj.List == nil {
		err := errNotLoaded()
		c.setWriteError(err)
		return err
	}

	snapshot := c.snapshot()

	group := c.groupByName(parsed.Category)
	if group == nil {
		placeholder, err := shopping.NewCategory(parsed.Category, c.nextSortOrder())
		if err != nil {
			c.setWriteError(err)
			return err
		}
		c.proj.Groups = append(c.proj.Groups, CategoryGroup{Category: *placeholder})
		group = &c.proj.Groups[len(c.proj.Groups)-1]
	}

	position := shopping.NextPosition(c.allItems(), group.Category.ID, shopping.ItemStatusPending, uuid.Nil)
	optimistic, err := shopping.NewItem(c.proj.List.ID, group.Category.ID, parsed.Name, parsed.Quantity, parsed.Unit, position)
	if err != nil {
		c.restore(snapshot)
		c.setWriteError(err)
		return err
	}
	group.Pending = append(group.Pending, *optimistic)
	c.commitOptimistic()

	if _, err := c.items.Add(ctx, parsed); err != nil {
		c.logger.Warn("add item failed, rolling back", zap.Error(err))
		c.restore(snapshot)
		c.setWriteError(err)
		return err
	}

	// The placeholder category and optimistic item ids are provisional
	// until a reload replaces them with the persisted rows.
	if err := c.reload(ctx); err != nil {
		return err
	}
	return nil
}

// ToggleItemStatus flips an item between pending and purchased.
func (c *Controller) ToggleItemStatus(ctx context.Context, itemID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	item := c.findItem(itemID)
	if item == nil {
		err := errItemNotFound(itemID)
		c.setWriteError(err)
		return err
	}

	snapshot := c.snapshot()

	moved := *item
	next := moved.Status.Toggled()
	position := shopping.NextPosition(c.allItems(), moved.CategoryID, next, moved.ID)
	if next == shopping.ItemStatusPurchased {
		moved.MarkPurchased(position, c.items.now())
	} else {
		moved.MarkPending(position, c.items.now())
	}
	c.removeFromProjection(itemID)
	c.insertIntoProjection(moved)
	c.commitOptimistic()

	persisted, err := c.items.TogglePurchased(ctx, itemID)
	if err != nil {
		c.logger.Warn("toggle failed, rolling back", zap.Error(err), zap.String("item_id", itemID.String()))
		c.restore(snapshot)
		c.setWriteError(err)
		return err
	}

	c.adopt(*persisted)
	return nil
}

// UpdateItem applies a partial update to an item.
func (c *Controller) UpdateItem(ctx context.Context, input UpdateItemInput) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	item := c.findItem(input.ItemID)
	if item == nil {
		err := errItemNotFound(input.ItemID)
		c.setWriteError(err)
		return err
	}

	snapshot := c.snapshot()

	updated := *item
	if input.Name != nil {
		if err := updated.Rename(*input.Name); err != nil {
			c.setWriteError(err)
			return err
		}
	}
	quantityChanged := false
	if input.Quantity != nil {
		updated.Quantity = *input.Quantity
		quantityChanged = true
	}
	if input.Unit != nil {
		updated.Unit = *input.Unit
	}
	updated.UnitPriceMinor = input.UnitPriceMinor.Apply(updated.UnitPriceMinor)
	updated.TotalPriceMinor = input.TotalPriceMinor.Apply(updated.TotalPriceMinor)
	reconcilePrices(&updated, input, quantityChanged)
	if input.CategoryID != nil && *input.CategoryID != updated.CategoryID {
		position := shopping.NextPosition(c.allItems(), *input.CategoryID, updated.Status, updated.ID)
		updated.MoveToCategory(*input.CategoryID, position)
	}
	c.removeFromProjection(input.ItemID)
	c.insertIntoProjection(updated)
	c.commitOptimistic()

	persisted, err := c.items.Update(ctx, input)
	if err != nil {
		c.logger.Warn("update failed, rolling back", zap.Error(err), zap.String("item_id", input.ItemID.String()))
		c.restore(snapshot)
		c.setWriteError(err)
		return err
	}

	c.adopt(*persisted)
	return nil
}

// RemoveItem deletes an item and parks it in the undo slot. Each removal
// overwrites the slot, so only the most recent removal can be undone.
func (c *Controller) RemoveItem(ctx context.Context, itemID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	item := c.findItem(itemID)
	if item == nil {
		err := errItemNotFound(itemID)
		c.setWriteError(err)
		return err
	}

	snapshot := c.snapshot()

	removed := *item
	c.removeFromProjection(itemID)
	c.undo = &removed
	c.commitOptimistic()

	if err := c.items.Delete(ctx, itemID); err != nil {
		c.logger.Warn("remove failed, rolling back", zap.Error(err), zap.String("item_id", itemID.String()))
		c.restore(snapshot)
		c.setWriteError(err)
		return err
	}
	return nil
}

// UndoRemove re-inserts the item held by the undo slot. On write failure the
// slot is restored along with the projection, so the undo stays available.
func (c *Controller) UndoRemove(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.undo == nil {
		err := errNothingToUndo()
		c.setWriteError(err)
		return err
	}

	snapshot := c.snapshot()

	restored := *c.undo
	restored.Position = shopping.NextPosition(c.allItems(), restored.CategoryID, restored.Status, restored.ID)
	c.undo = nil
	c.insertIntoProjection(restored)
	c.commitOptimistic()

	persisted, err := c.items.Restore(ctx, &restored)
	if err != nil {
		c.logger.Warn("undo failed, rolling back", zap.Error(err))
		c.restore(snapshot)
		c.setWriteError(err)
		return err
	}

	c.adopt(*persisted)
	return nil
}

// State returns a deep copy of the current projection.
func (c *Controller) State() Projection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneProjection(c.proj)
}

// LastError returns the last operation failure, or nil.
func (c *Controller) LastError() *OpError {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastErr == nil {
		return nil
	}
	e := *c.lastErr
	return &e
}

// UndoAvailable reports whether the undo slot holds a removed item.
func (c *Controller) UndoAvailable() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.undo != nil
}

// reload rebuilds the projection from the store. Callers hold the mutex.
func (c *Controller) reload(ctx context.Context) error {
	list, err := c.store.ActiveList(ctx)
	if err != nil {
		c.setLoadError(err)
		return err
	}
	categories, err := c.store.Categories(ctx)
	if err != nil {
		c.setLoadError(err)
		return err
	}
	items, err := c.store.Items(ctx, list.ID)
	if err != nil {
		c.setLoadError(err)
		return err
	}

	groups := make([]CategoryGroup, 0, len(categories))
	byCategory := make(map[uuid.UUID]*CategoryGroup, len(categories))
	for _, category := range categories {
		groups = append(groups, CategoryGroup{Category: category})
	}
	for idx := range groups {
		byCategory[groups[idx].Category.ID] = &groups[idx]
	}
	for _, item := range items {
		group, ok := byCategory[item.CategoryID]
		if !ok {
			continue
		}
		if item.IsPurchased() {
			group.Purchased = append(group.Purchased, item)
		} else {
			group.Pending = append(group.Pending, item)
		}
	}

	c.proj = Projection{List: list, Groups: groups}
	c.normalize()
	summary, err := shopping.Summarize(items, list.CurrencyCode)
	if err != nil {
		c.logger.Warn("monetary summary unavailable",
			zap.Error(err), zap.String("currency", list.CurrencyCode))
	}
	c.proj.Summary = summary
	c.lastErr = nil
	return nil
}

// commitOptimistic re-sorts the projection, recomputes totals and clears any
// prior error. Callers hold the mutex.
func (c *Controller) commitOptimistic() {
	c.normalize()
	if c.proj.List != nil {
		summary, err := shopping.Summarize(c.allItems(), c.proj.List.CurrencyCode)
		if err != nil {
			c.logger.Warn("monetary summary unavailable",
				zap.Error(err), zap.String("currency", c.proj.List.CurrencyCode))
		}
		c.proj.Summary = summary
	}
	c.lastErr = nil
}

// normalize keeps groups sorted by sort order then name and item slices
// sorted by ascending position.
func (c *Controller) normalize() {
	sort.SliceStable(c.proj.Groups, func(i, j int) bool {
		gi, gj := &c.proj.Groups[i].Category, &c.proj.Groups[j].Category
		if gi.SortOrder != gj.SortOrder {
			return gi.SortOrder < gj.SortOrder
		}
		return gi.Name < gj.Name
	})
	for idx := range c.proj.Groups {
		group := &c.proj.Groups[idx]
		sort.SliceStable(group.Pending, func(i, j int) bool {
			return group.Pending[i].Position < group.Pending[j].Position
		})
		sort.SliceStable(group.Purchased, func(i, j int) bool {
			return group.Purchased[i].Position < group.Purchased[j].Position
		})
	}
}

type controllerSnapshot struct {
	proj Projection
	undo *shopping.Item
}

// snapshot deep-copies the observable state, undo slot included.
func (c *Controller) snapshot() controllerSnapshot {
	snap := controllerSnapshot{proj: cloneProjection(c.proj)}
	if c.undo != nil {
		u := *c.undo
		snap.undo = &u
	}
	return snap
}

func (c *Controller) restore(snap controllerSnapshot) {
	c.proj = snap.proj
	c.undo = snap.undo
}

// adopt replaces the optimistic copy of an item with the persisted entity.
func (c *Controller) adopt(item shopping.Item) {
	c.removeFromProjection(item.ID)
	c.insertIntoProjection(item)
	c.commitOptimistic()
}

func (c *Controller) findItem(id uuid.UUID) *shopping.Item {
	for gi := range c.proj.Groups {
		group := &c.proj.Groups[gi]
		for ii := range group.Pending {
			if group.Pending[ii].ID == id {
				return &group.Pending[ii]
			}
		}
		for ii := range group.Purchased {
			if group.Purchased[ii].ID == id {
				return &group.Purchased[ii]
			}
		}
	}
	return nil
}

func (c *Controller) removeFromProjection(id uuid.UUID) {
	for gi := range c.proj.Groups {
		group := &c.proj.Groups[gi]
		group.Pending = removeItem(group.Pending, id)
		group.Purchased = removeItem(group.Purchased, id)
	}
}

func (c *Controller) insertIntoProjection(item shopping.Item) {
	for gi := range c.proj.Groups {
		group := &c.proj.Groups[gi]
		if group.Category.ID != item.CategoryID {
			continue
		}
		if item.IsPurchased() {
			group.Purchased = append(group.Purchased, item)
		} else {
			group.Pending = append(group.Pending, item)
		}
		return
	}

	// No group for this category yet: add a local placeholder so the item
	// stays visible until a reload brings the real category row.
	group := CategoryGroup{Category: shopping.Category{
		BaseEntity: shared.BaseEntity{ID: item.CategoryID},
		SortOrder:  c.nextSortOrder(),
	}}
	if item.IsPurchased() {
		group.Purchased = append(group.Purchased, item)
	} else {
		group.Pending = append(group.Pending, item)
	}
	c.proj.Groups = append(c.proj.Groups, group)
}

func (c *Controller) groupByName(name string) *CategoryGroup {
	for gi := range c.proj.Groups {
		if c.proj.Groups[gi].Category.Matches(name) {
			return &c.proj.Groups[gi]
		}
	}
	return nil
}

func (c *Controller) nextSortOrder() int {
	maxOrder := 0
	for gi := range c.proj.Groups {
		if order := c.proj.Groups[gi].Category.SortOrder; order > maxOrder {
			maxOrder = order
		}
	}
	return maxOrder + 1
}

func (c *Controller) allItems() []shopping.Item {
	var items []shopping.Item
	for gi := range c.proj.Groups {
		items = append(items, c.proj.Groups[gi].Pending...)
		items = append(items, c.proj.Groups[gi].Purchased...)
	}
	return items
}

func (c *Controller) setWriteError(err error) {
	c.lastErr = &OpError{Type: ErrorTypeWrite, Message: err.Error()}
}

func (c *Controller) setLoadError(err error) {
	c.logger.Error("projection load failed", zap.Error(err))
	c.lastErr = &OpError{Type: ErrorTypeLoad, Message: err.Error()}
}

func removeItem(items []shopping.Item, id uuid.UUID) []shopping.Item {
	for idx := range items {
		if items[idx].ID == id {
			return append(items[:idx:idx], items[idx+1:]...)
		}
	}
	return items
}

func cloneProjection(proj Projection) Projection {
	clone := Projection{Summary: proj.Summary}
	if proj.List != nil {
		list := *proj.List
		clone.List = &list
	}
	if proj.Summary.Money != nil {
		money := *proj.Summary.Money
		clone.Summary.Money = &money
	}
	clone.Groups = make([]CategoryGroup, len(proj.Groups))
	for idx, group := range proj.Groups {
		clone.Groups[idx] = CategoryGroup{
			Category:  group.Category,
			Pending:   append([]shopping.Item(nil), group.Pending...),
			Purchased: append([]shopping.Item(nil), group.Purchased...),
		}
	}
	return clone
}

func errItemNotFound(id uuid.UUID) error {
	return fmt.Errorf("item %s: %w", id, shared.ErrNotFound)
}

func errNotLoaded() error {
	return shared.NewDomainError("NOT_LOADED", "Projection has not been loaded")
}

func errNothingToUndo() error {
	return shared.NewDomainError("NOTHING_TO_UNDO", "No removed item to restore")
}
