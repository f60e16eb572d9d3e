package mockstore

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/vitalvas/faux/mock"
)

// Option configures Register.
type Option func(*collection)

// WithBasePath sets the collection path. Default: "/" + collection name.
func WithBasePath(path string) Option {
	return func(c *collection) {
		c.base = path
	}
}

// WithIDField sets the record field holding the ID. Default: "id".
func WithIDField(field string) Option {
	return func(c *collection) {
		c.idField = field
	}
}

// WithIDGenerator sets the generator of IDs for created records that carry
// none. Default: random UUIDs.
func WithIDGenerator(f func() string) Option {
	return func(c *collection) {
		c.newID = f
	}
}

type collection struct {
	name    string
	store   Store
	base    string
	idField string
	newID   func() string
}

// Register adds the CRUD routes of a collection to srv:
//
//	POST   base      create, the ID is generated when absent
//	GET    base      list
//	GET    base/:id  read
//	PUT    base/:id  replace
//	PATCH  base/:id  merge the payload into the record
//	DELETE base/:id  delete
//	POST   base/:id  any of the three above, sent with verb emulation
//
// Route names are prefixed with the collection name, so registering the
// same collection again replaces its routes.
func Register(srv *mock.Server, name string, store Store, opts ...Option) error {
	c := &collection{
		name:    name,
		store:   store,
		base:    "/" + name,
		idField: "id",
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.base = strings.TrimSuffix(c.base, "/")

	item := c.base + "/:id"

	routes := []mock.RouteSpec{
		{Name: name + ".create", Pattern: c.base, Method: http.MethodPost, Handler: c.create},
		{Name: name + ".list", Pattern: c.base, Method: http.MethodGet, Handler: c.list},
		{Name: name + ".read", Pattern: item, Method: http.MethodGet, Handler: c.read},
		{Name: name + ".update", Pattern: item, Method: http.MethodPut, Handler: c.update},
		{Name: name + ".patch", Pattern: item, Method: http.MethodPatch, Handler: c.patch},
		{Name: name + ".delete", Pattern: item, Method: http.MethodDelete, Handler: c.remove},
		{Name: name + ".emulated", Pattern: item, Method: http.MethodPost, Handler: c.emulated},
	}

	for _, spec := range routes {
		if err := srv.AddRoute(spec); err != nil {
			return err
		}
	}
	return nil
}

func (c *collection) create(ctx *mock.Context, _ mock.Params) mock.Result {
	rec, err := toRecord(ctx.Data)
	if err != nil {
		return mock.Fail("400 " + err.Error())
	}

	var id string
	if v, ok := rec[c.idField]; ok && v != nil {
		id = fmt.Sprint(v)
	} else {
		id = c.newID()
		rec[c.idField] = id
	}

	if err := c.store.Put(ctx.Context(), c.name, id, rec); err != nil {
		return storeFailure(err)
	}
	return mock.OK(rec)
}

func (c *collection) list(ctx *mock.Context, _ mock.Params) mock.Result {
	recs, err := c.store.List(ctx.Context(), c.name)
	if err != nil {
		return storeFailure(err)
	}
	return mock.OK(recs)
}

func (c *collection) read(ctx *mock.Context, params mock.Params) mock.Result {
	rec, err := c.store.Get(ctx.Context(), c.name, params.Get(0))
	if err != nil {
		return storeFailure(err)
	}
	return mock.OK(rec)
}

func (c *collection) update(ctx *mock.Context, params mock.Params) mock.Result {
	rec, err := toRecord(ctx.Data)
	if err != nil {
		return mock.Fail("400 " + err.Error())
	}

	id := params.Get(0)
	rec[c.idField] = id

	if err := c.store.Put(ctx.Context(), c.name, id, rec); err != nil {
		return storeFailure(err)
	}
	return mock.OK(rec)
}

func (c *collection) patch(ctx *mock.Context, params mock.Params) mock.Result {
	changes, err := toRecord(ctx.Data)
	if err != nil {
		return mock.Fail("400 " + err.Error())
	}

	id := params.Get(0)
	rec, err := c.store.Get(ctx.Context(), c.name, id)
	if err != nil {
		return storeFailure(err)
	}

	for k, v := range changes {
		rec[k] = v
	}
	rec[c.idField] = id

	if err := c.store.Put(ctx.Context(), c.name, id, rec); err != nil {
		return storeFailure(err)
	}
	return mock.OK(rec)
}

func (c *collection) remove(ctx *mock.Context, params mock.Params) mock.Result {
	if err := c.store.Delete(ctx.Context(), c.name, params.Get(0)); err != nil {
		return storeFailure(err)
	}
	return mock.OK(nil)
}

// emulated serves item operations routed as POST, selecting the action by
// the true method.
func (c *collection) emulated(ctx *mock.Context, params mock.Params) mock.Result {
	switch ctx.MethodOverride {
	case http.MethodPut:
		return c.update(ctx, params)
	case http.MethodPatch:
		return c.patch(ctx, params)
	case http.MethodDelete:
		return c.remove(ctx, params)
	}
	return mock.Fail("405")
}

// storeFailure maps a store error to a failure reason carrying a status.
func storeFailure(err error) mock.Result {
	if errors.Is(err, ErrNotFound) {
		return mock.Fail("404")
	}
	return mock.Fail("500 " + err.Error())
}
