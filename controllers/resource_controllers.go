package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/dineflow/models"
	"github.com/yeremiapane/dineflow/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ResourceOptions[T any] struct {
	// Name is used in response messages, e.g. "dish".
	Name    string
	Preload []string
	Order   string
	// New returns a record carrying defaults before the request body is bound.
	New func() *T
	// Filter narrows List using query parameters.
	Filter func(c *gin.Context, q *gorm.DB) (*gorm.DB, error)
	// BeforeWrite runs after binding on create and update.
	BeforeWrite func(c *gin.Context, item *T) error
}

// ResourceController serves list/get/create/update/delete for a flat gorm model.
type ResourceController[T any, PT interface {
	*T
	models.Record
}] struct {
	DB   *gorm.DB
	opts ResourceOptions[T]
}

func NewResourceController[T any, PT interface {
	*T
	models.Record
}](db *gorm.DB, opts ResourceOptions[T]) *ResourceController[T, PT] {
	if opts.Order == "" {
		opts.Order = "id asc"
	}
	return &ResourceController[T, PT]{DB: db, opts: opts}
}

func (rc *ResourceController[T, PT]) query(c *gin.Context) *gorm.DB {
	q := rc.DB.WithContext(c.Request.Context())
	for _, p := range rc.opts.Preload {
		q = q.Preload(p)
	}
	return q
}

func (rc *ResourceController[T, PT]) find(c *gin.Context, id uint) (*T, error) {
	item := new(T)
	err := rc.query(c).First(item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%s %d: %w", rc.opts.Name, id, models.ErrNotFound)
	}
	return item, err
}

func (rc *ResourceController[T, PT]) List(c *gin.Context) {
	q := rc.query(c).Order(rc.opts.Order)
	if rc.opts.Filter != nil {
		var err error
		if q, err = rc.opts.Filter(c, q); err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
	}

	items := []T{}
	if err := q.Find(&items).Error; err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of "+rc.opts.Name, items)
}

func (rc *ResourceController[T, PT]) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	item, err := rc.find(c, id)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, rc.opts.Name+" detail", item)
}

func (rc *ResourceController[T, PT]) Create(c *gin.Context) {
	item := new(T)
	if rc.opts.New != nil {
		item = rc.opts.New()
	}
	if err := c.ShouldBindJSON(item); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	*PT(item).BaseFields() = models.Base{}

	if rc.opts.BeforeWrite != nil {
		if err := rc.opts.BeforeWrite(c, item); err != nil {
			utils.RespondAppError(c, err)
			return
		}
	}

	if err := rc.DB.WithContext(c.Request.Context()).Omit(clause.Associations).Create(item).Error; err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.InfoLogger.WithField("id", PT(item).BaseFields().ID).Infof("%s created", rc.opts.Name)
	utils.RespondJSON(c, http.StatusCreated, rc.opts.Name+" created", item)
}

// Update binds the body onto the stored record, so omitted fields keep their values.
func (rc *ResourceController[T, PT]) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	item, err := rc.find(c, id)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	stored := *PT(item).BaseFields()

	if err := c.ShouldBindJSON(item); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	base := PT(item).BaseFields()
	base.ID = stored.ID
	base.CreatedAt = stored.CreatedAt

	if rc.opts.BeforeWrite != nil {
		if err := rc.opts.BeforeWrite(c, item); err != nil {
			utils.RespondAppError(c, err)
			return
		}
	}

	if err := rc.DB.WithContext(c.Request.Context()).Omit(clause.Associations).Save(item).Error; err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, rc.opts.Name+" updated", item)
}

func (rc *ResourceController[T, PT]) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	res := rc.DB.WithContext(c.Request.Context()).Delete(new(T), id)
	if res.Error != nil {
		utils.RespondAppError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondAppError(c, fmt.Errorf("%s %d: %w", rc.opts.Name, id, models.ErrNotFound))
		return
	}
	utils.InfoLogger.WithField("id", id).Infof("%s deleted", rc.opts.Name)
	utils.RespondJSON(c, http.StatusOK, rc.opts.Name+" deleted", nil)
}

// Routes mounts all five handlers under path.
func (rc *ResourceController[T, PT]) Routes(g gin.IRoutes, path string) {
	g.GET(path, rc.List)
	g.GET(path+"/:id", rc.Get)
	g.POST(path, rc.Create)
	g.PUT(path+"/:id", rc.Update)
	g.DELETE(path+"/:id", rc.Delete)
}
