package service

import "time"

// Collection names and the ordering field used by both collections.
const (
	TasksCollection    = "tasks"
	ProductsCollection = "products"
	OrderField         = "createdAt"
)

// Task is a single todo item.
type Task struct {
	ID        string
	Text      string
	CreatedAt time.Time
}

// Product is a single catalog entry.
type Product struct {
	ID        string
	Name      string
	Type      string
	Price     float64
	CreatedAt time.Time
}

// Fields returns the editable part of the product.
func (p Product) Fields() ProductFields {
	return ProductFields{Name: p.Name, Type: p.Type, Price: p.Price}
}

// ProductFields are the user-editable product fields.
type ProductFields struct {
	Name  string
	Type  string
	Price float64
}

// User is an account created by SignUp.
type User struct {
	UID   string
	Email string
}
