package model

type LoadState string

const (
	StateIdle      LoadState = "idle"
	StateLoading   LoadState = "loading"
	StatePopulated LoadState = "populated"
	StateFailed    LoadState = "failed"
)

// Article is one news item as shown in a list row. It is passed by value, so
// a copy handed out by the binding cannot change what the binding holds.
type Article struct {
	Title   string
	Summary string
}
