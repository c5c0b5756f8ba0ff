package account

type CreatedEvent struct {
	Result Account
}

type UpdatedEvent struct {
	Result Account
}

type DeletedEvent struct {
	Result Account
}
