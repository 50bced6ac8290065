package domain

import "context"

// Repos hands out repositories bound to one database transaction. Everything
// obtained from the same Repos shares the same transaction.
type Repos interface {
	Products() ProductRepo
	Inventory() InventoryRepo
	Orders() OrderRepo
	Promos() PromoRepo
	Users() UserRepo
}

// TxManager runs a unit of work atomically: if fn returns an error the whole
// transaction rolls back and no write inside it is visible; otherwise it
// commits as one indivisible unit.
type TxManager interface {
	Execute(ctx context.Context, fn func(r Repos) error) error
}
