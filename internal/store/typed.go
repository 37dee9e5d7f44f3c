package store

import "context"

// Collection is a typed view over one store collection. Caller packages keep
// records strongly typed at their boundary instead of passing raw maps
// through the core.
type Collection[T any] struct {
	store *Store
	name  string
}

func NewCollection[T any](s *Store, name string) Collection[T] {
	return Collection[T]{store: s, name: name}
}

func (c Collection[T]) Name() string { return c.name }

func (c Collection[T]) All(ctx context.Context) ([]T, error) {
	recs, err := c.store.GetAll(ctx, c.name)
	if err != nil {
		return nil, err
	}
	return decodeAll[T](recs)
}

// Get returns the typed record by id, nil when absent.
func (c Collection[T]) Get(ctx context.Context, id string) (*T, error) {
	rec, err := c.store.GetByID(ctx, c.name, id)
	if err != nil || rec == nil {
		return nil, err
	}
	return decode[T](rec)
}

func (c Collection[T]) Create(ctx context.Context, v T) (*T, error) {
	rec, err := ToRecord(v)
	if err != nil {
		return nil, err
	}
	created, err := c.store.Create(ctx, c.name, rec)
	if err != nil {
		return nil, err
	}
	return decode[T](created)
}

// Update merges the partial record over the stored one; nil when absent.
func (c Collection[T]) Update(ctx context.Context, id string, partial Record) (*T, error) {
	rec, err := c.store.Update(ctx, c.name, id, partial)
	if err != nil || rec == nil {
		return nil, err
	}
	return decode[T](rec)
}

func (c Collection[T]) Remove(ctx context.Context, id string) (bool, error) {
	return c.store.Remove(ctx, c.name, id)
}

func (c Collection[T]) Find(ctx context.Context, pred func(T) bool) ([]T, error) {
	all, err := c.All(ctx)
	if err != nil {
		return nil, err
	}
	out := []T{}
	for _, v := range all {
		if pred(v) {
			out = append(out, v)
		}
	}
	return out, nil
}

// FindOne returns the first typed match, nil when none.
func (c Collection[T]) FindOne(ctx context.Context, pred func(T) bool) (*T, error) {
	all, err := c.All(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if pred(all[i]) {
			return &all[i], nil
		}
	}
	return nil, nil
}

func (c Collection[T]) Count(ctx context.Context, pred func(T) bool) (int, error) {
	all, err := c.All(ctx)
	if err != nil {
		return 0, err
	}
	if pred == nil {
		return len(all), nil
	}
	n := 0
	for _, v := range all {
		if pred(v) {
			n++
		}
	}
	return n, nil
}

func decode[T any](rec Record) (*T, error) {
	var v T
	if err := FromRecord(rec, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func decodeAll[T any](recs []Record) ([]T, error) {
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		v, err := decode[T](rec)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}
