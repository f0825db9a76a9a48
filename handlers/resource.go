package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"median/listview"
	"median/middleware"
	"median/models"
	"median/notify"
	"median/refcheck"
	"median/store"
	"median/views"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type listParams struct {
	Limit     int    `form:"limit"`
	Offset    int    `form:"offset"`
	Namespace string `form:"namespace"`
}

// List runs search, filters and sort over page and returns one window.
func List[T any](page views.Page[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := page.Scoped(middleware.Scope(c))
		var params listParams
		if err := c.ShouldBindQuery(&params); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		limit := models.ClampLimit(params.Limit)
		offset := models.ClampOffset(params.Offset)

		q := page.ParseQuery(c.Request.URL.Query())
		namespace := ""
		if page.Namespaced {
			namespace = params.Namespace
		}
		rows := page.Query(namespace, q)

		total := len(rows)
		start := min(offset, total)
		end := min(start+limit, total)

		items := append(make([]listview.Row[T], 0, end-start), rows[start:end]...)

		sorts := q.Sorts
		if len(sorts) == 0 {
			sorts = page.DefaultSort
		}

		c.JSON(http.StatusOK, models.ListResponse[listview.Row[T]]{
			Items:         items,
			Total:         total,
			Limit:         limit,
			Offset:        offset,
			HasMore:       end < total,
			Sort:          listview.SerializeSort(sorts),
			ActiveFilters: page.ActiveFilterCount(q.Filters),
		})
	}
}

// Filters returns the page's filter panel with current options and the
// values selected in the query string.
func Filters[T any](page views.Page[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := page.ParseQuery(c.Request.URL.Query())
		c.JSON(http.StatusOK, gin.H{
			"sections": listview.Panel(page.Filters, q.Filters),
			"active":   page.ActiveFilterCount(q.Filters),
		})
	}
}

func Get[T any](page views.Page[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := page.Scoped(middleware.Scope(c))
		item, err := page.Get(c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// mutator carries what the write handlers share.
type mutator struct {
	notifier notify.Notifier
	logger   *zap.Logger
}

func (m mutator) push(c *gin.Context, kind listview.NotificationKind, message string) {
	if m.notifier == nil {
		return
	}
	if _, err := m.notifier.Push(c.Request.Context(), middleware.UserID(c), kind, message); err != nil {
		m.logger.Warn("failed to push notification", zap.Error(err))
	}
}

func Create[T any](page views.Page[T], m mutator) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := page.Scoped(middleware.Scope(c))
		if page.Create == nil {
			writeError(c, views.ErrReadOnly)
			return
		}
		item := page.Blank()
		if err := c.ShouldBindJSON(&item); err != nil {
			writeBindError(c, err)
			return
		}

		created, err := page.Create(item)
		if err != nil {
			writeError(c, err)
			return
		}

		m.logger.Info("created", zap.String("entity", page.Kind), zap.String("id", page.ID(created)))
		m.push(c, listview.NotifySuccess, fmt.Sprintf("%q saved", page.Label(created)))
		c.JSON(http.StatusCreated, created)
	}
}

func Update[T any](page views.Page[T], m mutator) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := page.Scoped(middleware.Scope(c))
		if page.Update == nil {
			writeError(c, views.ErrReadOnly)
			return
		}
		// PUT replaces the stored item; absent keys keep their zero value.
		item := page.Blank()
		if err := c.ShouldBindJSON(&item); err != nil {
			writeBindError(c, err)
			return
		}

		saved, err := page.Update(c.Param("id"), item)
		if err != nil {
			writeError(c, err)
			return
		}

		m.logger.Info("updated", zap.String("entity", page.Kind), zap.String("id", page.ID(saved)))
		m.push(c, listview.NotifySuccess, fmt.Sprintf("%q saved", page.Label(saved)))
		c.JSON(http.StatusOK, saved)
	}
}

// Delete removes an item unless something still references it. With
// ?namespace= only references from that namespace block.
func Delete[T any](page views.Page[T], m mutator) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := page.Scoped(middleware.Scope(c))
		if page.Delete == nil {
			writeError(c, views.ErrReadOnly)
			return
		}
		id := c.Param("id")
		item, err := page.Get(id)
		if err != nil {
			writeError(c, err)
			return
		}

		result, err := page.Delete(id, c.Query("namespace"))
		if err != nil {
			if result.Error != "" && !errors.Is(err, store.ErrNotFound) {
				m.push(c, listview.NotifyError, result.Error)
			}
			writeError(c, err)
			return
		}
		if !result.Success {
			m.logger.Info("delete blocked",
				zap.String("entity", page.Kind),
				zap.String("id", id),
				zap.Int("references", len(result.References)))
			m.push(c, listview.NotifyError, result.Error)
			writeBlocked(c, result)
			return
		}

		m.logger.Info("deleted", zap.String("entity", page.Kind), zap.String("id", id))
		m.push(c, listview.NotifySuccess, fmt.Sprintf("%q deleted", page.Label(item)))
		c.JSON(http.StatusOK, result)
	}
}

// referenceLookup is a page's dry-run deletion check, run as scope.
type referenceLookup func(scope models.Scope, id string) (refcheck.Target, []refcheck.Reference, error)

type refcheckResponse struct {
	refcheck.Result
	Tooltip string `json:"tooltip,omitempty"`
}

// Refcheck reports whether an item could be deleted, without deleting it.
func Refcheck(lookups map[string]referenceLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		lookup, ok := lookups[c.Param("entity")]
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("unknown entity %q", c.Param("entity"))})
			return
		}

		target, refs, err := lookup(middleware.Scope(c), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}

		var opts []refcheck.Option
		if ns := c.Query("namespace"); ns != "" {
			opts = append(opts, refcheck.WithNamespace(ns))
		}
		result := refcheck.Check(target, refs, opts...)
		c.JSON(http.StatusOK, refcheckResponse{Result: result, Tooltip: refcheck.Tooltip(result.References)})
	}
}

// register mounts the routes of one page on group.
func register[T any](group *gin.RouterGroup, page views.Page[T], m mutator, lookups map[string]referenceLookup) {
	g := group.Group("/" + page.Entity)
	g.GET("", List(page))
	g.GET("/filters", Filters(page))
	g.GET("/:id", Get(page))
	if page.ReadOnly() {
		return
	}
	g.POST("", Create(page, m))
	g.PUT("/:id", Update(page, m))
	g.DELETE("/:id", Delete(page, m))
	if page.References != nil {
		lookups[page.Entity] = func(scope models.Scope, id string) (refcheck.Target, []refcheck.Reference, error) {
			return page.Scoped(scope).References(id)
		}
	}
}
