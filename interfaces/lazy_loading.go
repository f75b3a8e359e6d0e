package interfaces

import "context"

type LazyLoading[T Recognizable[K], K comparable] interface {
	Load(ctx context.Context, session Session[K], obj T) error
}
