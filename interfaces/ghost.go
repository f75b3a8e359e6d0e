package interfaces

// Ghost is a domain object that may hold only its id until it is loaded.
// lazy_loading.Status implements it.
type Ghost interface {
	IsGhost() bool
	IsLoaded() bool
	MarkLoading() error
	MarkLoaded() error
	Reset()
}
