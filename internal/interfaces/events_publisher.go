package interfaces

// EventPublisher receives post-commit notifications about recorded
// entries. Publishing happens outside the atomic unit; implementations
// must not assume they can veto a commit.
type EventPublisher interface {
	Publish(topic string, event any) error
}
