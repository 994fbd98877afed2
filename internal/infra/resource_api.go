package infra

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"pixelfood/internal/model"
)

// ResourceAPI is the uniform CRUD surface of one backend resource:
//
//	GET    /{resource}
//	GET    /{resource}/{id}
//	POST   /{resource}
//	PATCH  /{resource}/{id}   (PUT for the few resources that require it)
//	DELETE /{resource}/{id}
type ResourceAPI[T model.Recurso] struct {
	client       *BackendClient
	path         string
	updateMethod string
}

// NewResourceAPI builds the CRUD API rooted at path (e.g. "/mesas").
func NewResourceAPI[T model.Recurso](client *BackendClient, path string) *ResourceAPI[T] {
	return &ResourceAPI[T]{client: client, path: path, updateMethod: http.MethodPatch}
}

// WithPut switches updates to PUT.
func (a *ResourceAPI[T]) WithPut() *ResourceAPI[T] {
	a.updateMethod = http.MethodPut
	return a
}

// Path returns the collection path.
func (a *ResourceAPI[T]) Path() string { return a.path }

func (a *ResourceAPI[T]) item(id string) string {
	return a.path + "/" + url.PathEscape(id)
}

func (a *ResourceAPI[T]) GetAll(ctx context.Context) ([]T, error) {
	var list []T
	if err := a.client.Get(ctx, a.path, &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = []T{}
	}
	return list, nil
}

func (a *ResourceAPI[T]) GetByID(ctx context.Context, id string) (T, error) {
	var v T
	err := a.client.Get(ctx, a.item(id), &v)
	return v, err
}

// Create posts attrs. The write counts as done on any 2xx, even when the echoed
// body has an unexpected shape; the zero T is returned then.
func (a *ResourceAPI[T]) Create(ctx context.Context, attrs model.Attrs) (T, error) {
	var v T
	err := a.client.Post(ctx, a.path, attrs, &v)
	return v, ignoreEcho(err)
}

func (a *ResourceAPI[T]) Update(ctx context.Context, id string, attrs model.Attrs) (T, error) {
	var v T
	err := a.client.Do(ctx, a.updateMethod, a.item(id), attrs, &v)
	return v, ignoreEcho(err)
}

func ignoreEcho(err error) error {
	if errors.Is(err, ErrDecode) {
		return nil
	}
	return err
}

func (a *ResourceAPI[T]) Remove(ctx context.Context, id string) error {
	return a.client.Delete(ctx, a.item(id))
}

// Sub issues a GET on a nested path below the collection, e.g.
// /recetas/plato/{id}.
func (a *ResourceAPI[T]) Sub(ctx context.Context, out any, segments ...string) error {
	p := a.path
	for _, s := range segments {
		p += "/" + url.PathEscape(s)
	}
	return a.client.Get(ctx, p, out)
}

// PatchSub issues a PATCH on a nested path below one item, e.g.
// /ingrediente/{id}/stock.
func (a *ResourceAPI[T]) PatchSub(ctx context.Context, id, sub string, body any) (T, error) {
	var v T
	err := a.client.Patch(ctx, a.item(id)+"/"+sub, body, &v)
	return v, ignoreEcho(err)
}
